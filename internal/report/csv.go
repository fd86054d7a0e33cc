package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"candidate-tracker/internal/domain"
)

// WriteCSV writes a header row and one row per candidate.
func WriteCSV(w io.Writer, cands []domain.Candidate) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, c := range cands {
		if err := cw.Write(record(c)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ExportCSV(path string, cands []domain.Candidate) error {
	return writeFile(path, func(w io.Writer) error { return WriteCSV(w, cands) })
}

// writeFile renders into path.tmp and renames it over path on success.
func writeFile(path string, render func(w io.Writer) error) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("export %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
