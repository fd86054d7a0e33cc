package tracker

import (
	"context"

	"candidate-tracker/internal/auth"
	"candidate-tracker/internal/domain"
	"candidate-tracker/internal/events"
)

func (t *Tracker) Login(ctx context.Context, username, password string) (auth.Session, error) {
	sess, err := t.auth.Authenticate(ctx, username, password)
	if err != nil {
		return auth.Session{}, err
	}
	t.log.WithField("username", sess.Username).Info("logged in")
	return sess, nil
}

func (t *Tracker) ChangePassword(ctx context.Context, sess auth.Session, current, next, confirm string) error {
	return t.auth.ChangePassword(ctx, sess, current, next, confirm)
}

// CreateUser adds an account. Admin only.
func (t *Tracker) CreateUser(ctx context.Context, sess auth.Session, username, password string, role domain.Role) (domain.User, error) {
	u, err := t.auth.CreateUser(ctx, sess, username, password, role)
	if err != nil {
		return domain.User{}, err
	}
	t.publish(sess, events.UserCreated, map[string]any{"username": u.Username, "role": u.Role})
	return u, nil
}

// ListUsers returns every account without password digests. Admin only.
func (t *Tracker) ListUsers(ctx context.Context, sess auth.Session) ([]domain.User, error) {
	if err := auth.Require(sess, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return t.store.ListUsers(ctx)
}
