package report

import "testing"

func TestNormalizeDate(t *testing.T) {
	cases := map[string]string{
		"":           "",
		"2025-06-02": "2025-06-02",
		"2025/06/02": "2025-06-02",
		"02/06/2025": "2025-06-02",
		"45810":      "2025-06-02",
		"2/6/2025":   "2025-06-02",
		"06-02-25":   "06-02-25",
		"2025":       "2025",
		"next week":  "next week",
	}
	for in, want := range cases {
		if got := normalizeDate(in); got != want {
			t.Errorf("normalizeDate(%q) = %q, want %q", in, got, want)
		}
	}
}
