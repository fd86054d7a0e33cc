// Package auth verifies operator credentials and gates privileged actions.
//
// There are two roles. Admin may do everything; User may do everything except
// deleting candidates and creating accounts.
package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"candidate-tracker/internal/domain"
	"candidate-tracker/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("not logged in")
	ErrForbidden          = errors.New("permission denied: administrator role required")
	ErrPasswordMismatch   = errors.New("new password and confirmation do not match")
	ErrEmptyPassword      = errors.New("password must not be empty")
	ErrEmptyUsername      = errors.New("username must not be empty")
	ErrTooManyAttempts    = errors.New("too many login attempts, try again later")
)

// UserStore is the persistence the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string, role domain.Role) (domain.User, error)
	GetUser(ctx context.Context, username string) (domain.User, error)
	CountUsers(ctx context.Context) (int, error)
	UpdatePasswordHash(ctx context.Context, username, passwordHash string) error
}

// Session is the result of a successful login. The zero Session is
// unauthenticated.
type Session struct {
	ID       uuid.UUID   `json:"id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
	IssuedAt time.Time   `json:"issuedAt"`
}

func (s Session) IsZero() bool  { return s.ID == uuid.Nil }
func (s Session) IsAdmin() bool { return !s.IsZero() && s.Role == domain.RoleAdmin }

// Require checks that sess is logged in and holds at least role. Admin
// satisfies every role.
func Require(sess Session, role domain.Role) error {
	if sess.IsZero() {
		return ErrUnauthenticated
	}
	if role == domain.RoleAdmin && sess.Role != domain.RoleAdmin {
		return ErrForbidden
	}
	return nil
}

type Options struct {
	BcryptCost             int
	LoginAttemptsPerMinute float64
	LoginBurst             int
}

type Service struct {
	users    UserStore
	cost     int
	throttle *Throttle
	log      *logrus.Entry
	now      func() time.Time
}

func New(users UserStore, opts Options, log *logrus.Entry) *Service {
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = logrus.NewEntry(l)
	}
	return &Service{
		users:    users,
		cost:     cost,
		throttle: NewThrottle(opts.LoginAttemptsPerMinute, opts.LoginBurst),
		log:      log,
		now:      time.Now,
	}
}

// Bootstrap seeds one admin account when no account exists yet. It reports
// whether it created one.
func (s *Service) Bootstrap(ctx context.Context, username, password string) (bool, error) {
	n, err := s.users.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if strings.TrimSpace(username) == "" {
		return false, ErrEmptyUsername
	}
	if password == "" {
		return false, ErrEmptyPassword
	}

	hash, err := hashPassword(password, s.cost)
	if err != nil {
		return false, fmt.Errorf("hash default admin password: %w", err)
	}
	if _, err := s.users.CreateUser(ctx, username, hash, domain.RoleAdmin); err != nil {
		return false, err
	}
	s.log.WithField("username", username).Warn("seeded default admin account; change its password after first login")
	return true, nil
}

// Authenticate checks username and password. An unknown user and a wrong
// password both yield ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (Session, error) {
	if !s.throttle.Allow(username) {
		s.log.WithField("username", username).Warn("login throttled")
		return Session{}, ErrTooManyAttempts
	}

	u, err := s.users.GetUser(ctx, username)
	if errors.Is(err, store.ErrUserNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}

	ok, legacy := verifyPassword(u.PasswordHash, password)
	if !ok {
		s.log.WithField("username", username).Info("login failed")
		return Session{}, ErrInvalidCredentials
	}
	s.throttle.Reset(username)

	if legacy {
		s.upgradeHash(ctx, u.Username, password)
	}

	return Session{
		ID:       uuid.New(),
		Username: u.Username,
		Role:     u.Role,
		IssuedAt: s.now().UTC(),
	}, nil
}

// upgradeHash replaces a legacy digest with bcrypt. Failure leaves the old
// digest in place and does not fail the login.
func (s *Service) upgradeHash(ctx context.Context, username, password string) {
	entry := s.log.WithField("username", username)
	hash, err := hashPassword(password, s.cost)
	if err == nil {
		err = s.users.UpdatePasswordHash(ctx, username, hash)
	}
	if err != nil {
		entry.WithError(err).Error("could not upgrade legacy password digest")
		return
	}
	entry.Warn("upgraded legacy unsalted password digest to bcrypt")
}

// ChangePassword replaces the password of the session's own account after
// re-checking current. The confirmation check happens before any store
// access.
func (s *Service) ChangePassword(ctx context.Context, sess Session, current, next, confirm string) error {
	if err := Require(sess, domain.RoleUser); err != nil {
		return err
	}
	if next != confirm {
		return ErrPasswordMismatch
	}
	if next == "" {
		return ErrEmptyPassword
	}

	u, err := s.users.GetUser(ctx, sess.Username)
	if err != nil {
		return err
	}
	if ok, _ := verifyPassword(u.PasswordHash, current); !ok {
		return ErrInvalidCredentials
	}

	hash, err := hashPassword(next, s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePasswordHash(ctx, u.Username, hash); err != nil {
		return err
	}
	s.log.WithField("username", u.Username).Info("password changed")
	return nil
}

// CreateUser adds an account. Only admins may call it.
func (s *Service) CreateUser(ctx context.Context, sess Session, username, password string, role domain.Role) (domain.User, error) {
	if err := Require(sess, domain.RoleAdmin); err != nil {
		return domain.User{}, err
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.User{}, ErrEmptyUsername
	}
	if password == "" {
		return domain.User{}, ErrEmptyPassword
	}
	if !role.Valid() {
		return domain.User{}, fmt.Errorf("unknown role %q", role)
	}

	hash, err := hashPassword(password, s.cost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.users.CreateUser(ctx, username, hash, role)
	if err != nil {
		return domain.User{}, err
	}
	s.log.WithFields(logrus.Fields{"username": username, "role": role, "by": sess.Username}).Info("user created")
	return u, nil
}
