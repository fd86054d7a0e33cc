package tracker

import (
	"context"

	"candidate-tracker/internal/auth"
	"candidate-tracker/internal/domain"
	"candidate-tracker/internal/events"
	"candidate-tracker/internal/files"
)

// FileInput names source files to copy into the data directory. Empty
// fields are left alone.
type FileInput struct {
	Resume      string
	Photo       string
	Attachments []string
}

func (in FileInput) empty() bool {
	return in.Resume == "" && in.Photo == "" && len(in.Attachments) == 0
}

// AttachFiles copies the given files into storage and records their stored
// paths on the candidate. A new resume or photo replaces the old path; new
// attachments are appended. Every source is checked before anything is
// copied, and only the file columns are written, so rows whose legacy
// status or priority no longer validate can still take files.
func (t *Tracker) AttachFiles(ctx context.Context, sess auth.Session, id int64, in FileInput) (domain.Candidate, error) {
	if err := auth.Require(sess, domain.RoleUser); err != nil {
		return domain.Candidate{}, err
	}
	c, err := t.store.GetCandidate(ctx, id)
	if err != nil {
		return domain.Candidate{}, err
	}
	if in.empty() {
		return c, nil
	}
	if err := files.Check(append([]string{in.Resume, in.Photo}, in.Attachments...)...); err != nil {
		return domain.Candidate{}, err
	}

	if in.Resume != "" {
		if c.ResumePath, err = t.files.SaveResume(in.Resume); err != nil {
			return domain.Candidate{}, err
		}
	}
	if in.Photo != "" {
		if c.PhotoPath, err = t.files.SavePhoto(in.Photo); err != nil {
			return domain.Candidate{}, err
		}
	}
	if len(in.Attachments) > 0 {
		saved, err := t.files.SaveAttachments(in.Attachments)
		if err != nil {
			return domain.Candidate{}, err
		}
		c.Attachments = appendUnique(c.Attachments, saved...)
	}

	if err := t.store.UpdateFiles(ctx, id, c.ResumePath, c.Attachments, c.PhotoPath); err != nil {
		return domain.Candidate{}, err
	}
	t.publish(sess, events.CandidateUpdated, map[string]any{"id": id, "files": true})
	return c, nil
}

func appendUnique(dst []string, paths ...string) []string {
	seen := make(map[string]bool, len(dst))
	for _, p := range dst {
		seen[p] = true
	}
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			dst = append(dst, p)
		}
	}
	return dst
}
