// Package tracker is the application service behind every front end. It
// owns the store, the auth service, file storage and the event hub, and
// checks the caller's session on every operation.
package tracker

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"candidate-tracker/internal/auth"
	"candidate-tracker/internal/config"
	"candidate-tracker/internal/domain"
	"candidate-tracker/internal/events"
	"candidate-tracker/internal/files"
	"candidate-tracker/internal/store"
)

const eventVersion = 1

type Tracker struct {
	cfg   config.Config
	store *store.Store
	auth  *auth.Service
	files *files.Store
	hub   *events.Hub
	log   *logrus.Entry
	now   func() time.Time
}

// Open prepares the data directory: it migrates the database, seeds the
// default admin on first run and creates the file folders.
func Open(ctx context.Context, cfg config.Config, log *logrus.Logger) (*Tracker, error) {
	entry := log.WithField("component", "tracker")

	st := store.New(cfg.DBPath(),
		store.WithBusyTimeout(cfg.BusyTimeout()),
		store.WithLogger(log.WithField("component", "store")),
	)
	if err := st.Init(ctx); err != nil {
		return nil, err
	}

	svc := auth.New(st, auth.Options{
		BcryptCost:             cfg.Auth.BcryptCost,
		LoginAttemptsPerMinute: cfg.Auth.LoginAttemptsPerMinute,
		LoginBurst:             cfg.Auth.LoginBurst,
	}, log.WithField("component", "auth"))

	seeded, err := svc.Bootstrap(ctx, cfg.Auth.DefaultAdminUsername, cfg.Auth.DefaultAdminPassword)
	if err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}

	for _, dir := range []string{cfg.AttachmentsPath(), cfg.PhotosPath()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	entry.WithFields(logrus.Fields{
		"db":     st.Path(),
		"seeded": seeded,
	}).Info("tracker ready")

	return &Tracker{
		cfg:   cfg,
		store: st,
		auth:  svc,
		files: files.New(cfg.AttachmentsPath(), cfg.PhotosPath()),
		hub:   events.NewHub(),
		log:   entry,
		now:   time.Now,
	}, nil
}

// Events returns the hub mutations are published on.
func (t *Tracker) Events() *events.Hub { return t.hub }

// Sources returns the suggested candidate source labels.
func (t *Tracker) Sources() []string {
	return append([]string(nil), t.cfg.Sources...)
}

func (t *Tracker) publish(sess auth.Session, typ string, data any) {
	t.hub.Publish(events.MakeEvent(sess.Username, typ, eventVersion, data))
}

// normalize tidies the identifying text fields. Everything else is stored
// as entered.
func normalize(c domain.Candidate) domain.Candidate {
	c.FullName = cleanText(c.FullName)
	c.Position = cleanText(c.Position)
	c.Email = strings.TrimSpace(c.Email)
	c.Source = strings.TrimSpace(c.Source)
	return c
}

// cleanText folds non-breaking spaces and runs of whitespace (common in
// names pasted from documents) into single spaces.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}
