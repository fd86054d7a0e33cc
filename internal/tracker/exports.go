package tracker

import (
	"context"
	"strings"

	"candidate-tracker/internal/auth"
	"candidate-tracker/internal/domain"
	"candidate-tracker/internal/events"
	"candidate-tracker/internal/report"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Export writes the candidates matching f to path as CSV or XLSX.
func (t *Tracker) Export(ctx context.Context, sess auth.Session, format Format, path string, f domain.Filter) (int, error) {
	format = Format(strings.ToLower(string(format)))
	if format != FormatCSV && format != FormatXLSX {
		return 0, ErrUnknownFormat
	}
	cands, err := t.SearchCandidates(ctx, sess, f)
	if err != nil {
		return 0, err
	}
	if format == FormatCSV {
		err = report.ExportCSV(path, cands)
	} else {
		err = report.ExportXLSX(path, cands)
	}
	if err != nil {
		return 0, err
	}
	t.log.WithField("path", path).WithField("rows", len(cands)).Info("candidates exported")
	return len(cands), nil
}

// ExportBundle writes CSV, XLSX and one PDF per candidate into dir.
func (t *Tracker) ExportBundle(ctx context.Context, sess auth.Session, dir string) ([]string, error) {
	cands, err := t.ListCandidates(ctx, sess)
	if err != nil {
		return nil, err
	}
	paths, err := report.ExportBundle(ctx, dir, cands)
	if err != nil {
		return nil, err
	}
	t.log.WithField("dir", dir).WithField("files", len(paths)).Info("bundle exported")
	return paths, nil
}

func (t *Tracker) ExportCandidatePDF(ctx context.Context, sess auth.Session, id int64, path string) error {
	c, err := t.GetCandidate(ctx, sess, id)
	if err != nil {
		return err
	}
	return report.ExportCandidatePDF(path, c)
}

// ImportXLSX adds every valid row of the workbook at path. Rows that fail
// validation or collide on email are reported in the result.
func (t *Tracker) ImportXLSX(ctx context.Context, sess auth.Session, path string) (report.ImportResult, error) {
	if err := auth.Require(sess, domain.RoleUser); err != nil {
		return report.ImportResult{}, err
	}
	res, err := report.ImportXLSXFile(ctx, path, importAdder{t: t})
	if err != nil {
		return res, err
	}
	for _, skip := range res.Skipped {
		t.log.WithField("row", skip.Row).WithError(skip.Err).Warn("import row skipped")
	}
	t.log.WithField("added", res.Added).WithField("skipped", len(res.Skipped)).Info("import finished")
	if res.Added > 0 {
		t.publish(sess, events.CandidatesImported, map[string]any{"added": res.Added, "skipped": len(res.Skipped)})
	}
	return res, nil
}

// importAdder validates rows like interactive input, filling a missing
// application date with today.
type importAdder struct{ t *Tracker }

func (a importAdder) AddCandidate(ctx context.Context, c domain.Candidate) (domain.Candidate, error) {
	c = normalize(c)
	if c.AppliedOn == "" {
		c.AppliedOn = a.t.now().Format(domain.DateLayout)
	}
	if err := domain.ValidateCandidate(c); err != nil {
		return domain.Candidate{}, err
	}
	return a.t.store.AddCandidate(ctx, c)
}
