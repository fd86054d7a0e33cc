package tracker

import (
	"context"
	"errors"

	"candidate-tracker/internal/auth"
	"candidate-tracker/internal/domain"
	"candidate-tracker/internal/events"
)

// AddCandidate validates c and stores it. Status and priority default to
// Pending and Medium when left empty.
func (t *Tracker) AddCandidate(ctx context.Context, sess auth.Session, c domain.Candidate) (domain.Candidate, error) {
	if err := auth.Require(sess, domain.RoleUser); err != nil {
		return domain.Candidate{}, err
	}
	c = normalize(c)
	if c.Status == "" {
		c.Status = domain.StatusPending
	}
	if c.Priority == "" {
		c.Priority = domain.PriorityMedium
	}
	if err := domain.ValidateCandidate(c); err != nil {
		return domain.Candidate{}, err
	}

	out, err := t.store.AddCandidate(ctx, c)
	if err != nil {
		return domain.Candidate{}, err
	}
	t.log.WithField("id", out.ID).WithField("by", sess.Username).Info("candidate added")
	t.publish(sess, events.CandidateAdded, map[string]any{"id": out.ID, "email": out.Email})
	return out, nil
}

func (t *Tracker) GetCandidate(ctx context.Context, sess auth.Session, id int64) (domain.Candidate, error) {
	if err := auth.Require(sess, domain.RoleUser); err != nil {
		return domain.Candidate{}, err
	}
	return t.store.GetCandidate(ctx, id)
}

func (t *Tracker) ListCandidates(ctx context.Context, sess auth.Session) ([]domain.Candidate, error) {
	if err := auth.Require(sess, domain.RoleUser); err != nil {
		return nil, err
	}
	return t.store.ListCandidates(ctx)
}

func (t *Tracker) SearchCandidates(ctx context.Context, sess auth.Session, f domain.Filter) ([]domain.Candidate, error) {
	if err := auth.Require(sess, domain.RoleUser); err != nil {
		return nil, err
	}
	return t.store.SearchCandidates(ctx, f)
}

func (t *Tracker) UpdateStatus(ctx context.Context, sess auth.Session, id int64, st domain.Status) error {
	if err := auth.Require(sess, domain.RoleUser); err != nil {
		return err
	}
	if _, err := domain.ParseStatus(string(st)); err != nil {
		return err
	}
	if err := t.store.UpdateStatus(ctx, id, st); err != nil {
		return err
	}
	t.publish(sess, events.CandidateUpdated, map[string]any{"id": id, "status": st})
	return nil
}

func (t *Tracker) UpdatePriority(ctx context.Context, sess auth.Session, id int64, p domain.Priority) error {
	if err := auth.Require(sess, domain.RoleUser); err != nil {
		return err
	}
	if _, err := domain.ParsePriority(string(p)); err != nil {
		return err
	}
	if err := t.store.UpdatePriority(ctx, id, p); err != nil {
		return err
	}
	t.publish(sess, events.CandidateUpdated, map[string]any{"id": id, "priority": p})
	return nil
}

// UpdateCandidate replaces every editable field of the candidate with c.ID.
func (t *Tracker) UpdateCandidate(ctx context.Context, sess auth.Session, c domain.Candidate) error {
	if err := auth.Require(sess, domain.RoleUser); err != nil {
		return err
	}
	c = normalize(c)
	if err := domain.ValidateCandidate(c); err != nil {
		return err
	}
	if err := t.store.UpdateCandidate(ctx, c); err != nil {
		return err
	}
	t.publish(sess, events.CandidateUpdated, map[string]any{"id": c.ID})
	return nil
}

// DeleteCandidate removes a candidate record. Admin only. Files the record
// pointed at stay on disk.
func (t *Tracker) DeleteCandidate(ctx context.Context, sess auth.Session, id int64) error {
	if err := auth.Require(sess, domain.RoleAdmin); err != nil {
		if errors.Is(err, auth.ErrForbidden) {
			t.log.WithField("id", id).WithField("by", sess.Username).Warn("delete refused")
		}
		return err
	}
	if err := t.store.DeleteCandidate(ctx, id); err != nil {
		return err
	}
	t.log.WithField("id", id).WithField("by", sess.Username).Info("candidate deleted")
	t.publish(sess, events.CandidateDeleted, map[string]any{"id": id})
	return nil
}

func (t *Tracker) Stats(ctx context.Context, sess auth.Session) (domain.Stats, error) {
	if err := auth.Require(sess, domain.RoleUser); err != nil {
		return domain.Stats{}, err
	}
	return t.store.Stats(ctx)
}
