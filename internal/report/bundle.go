package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"candidate-tracker/internal/domain"
)

// bundleWorkers bounds how many files are rendered at once.
const bundleWorkers = 4

const (
	BundleCSV  = "candidates.csv"
	BundleXLSX = "candidates.xlsx"
)

// ExportBundle writes candidates.csv, candidates.xlsx and one
// candidate-<id>.pdf per candidate into dir. It returns the written paths
// in sorted order. The first failure cancels the remaining renders.
func ExportBundle(ctx context.Context, dir string, cands []domain.Candidate) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	jobs := map[string]func(path string) error{
		filepath.Join(dir, BundleCSV):  func(p string) error { return ExportCSV(p, cands) },
		filepath.Join(dir, BundleXLSX): func(p string) error { return ExportXLSX(p, cands) },
	}
	for _, c := range cands {
		jobs[filepath.Join(dir, fmt.Sprintf("candidate-%d.pdf", c.ID))] = func(p string) error {
			return ExportCandidatePDF(p, c)
		}
	}

	paths := make([]string, 0, len(jobs))
	for p := range jobs {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bundleWorkers)
	for _, p := range paths {
		render := jobs[p]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return render(p)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}
