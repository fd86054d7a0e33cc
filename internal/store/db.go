package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// DefaultBusyTimeout is how long an operation waits on a locked database
// file before giving up.
const DefaultBusyTimeout = 20 * time.Second

// Store is a handle on one SQLite database file. It holds no connection:
// every operation opens its own, runs, and closes it again.
type Store struct {
	path        string
	busyTimeout time.Duration
	log         *logrus.Entry
	now         func() time.Time
}

type Option func(*Store)

func WithBusyTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.busyTimeout = d
		}
	}
}

func WithLogger(l *logrus.Entry) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides the clock used for month-relative stats.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func New(path string, opts ...Option) *Store {
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	s := &Store{
		path:        path,
		busyTimeout: DefaultBusyTimeout,
		log:         logrus.NewEntry(discard),
		now:         time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) Path() string { return s.path }

// Init prepares the database file: it creates the parent directory and runs
// every pending migration. It must succeed before any other call.
func (s *Store) Init(ctx context.Context) error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &Error{Op: "init", Err: err}
		}
	}
	return s.withDB(ctx, "init", func(db *sql.DB) error {
		from, to, err := migrate(ctx, db)
		if err != nil {
			return err
		}
		if to != from {
			s.log.WithFields(logrus.Fields{"from": from, "to": to}).Info("schema migrated")
		}
		return nil
	})
}

func (s *Store) open(ctx context.Context) (*sql.DB, error) {
	// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", s.path, s.busyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// withDB runs fn on a fresh connection and closes it afterwards. Domain
// errors returned by fn pass through; anything else becomes an *Error.
func (s *Store) withDB(ctx context.Context, op string, fn func(db *sql.DB) error) error {
	db, err := s.open(ctx)
	if err != nil {
		return &Error{Op: op, Err: fmt.Errorf("open %s: %w", s.path, err)}
	}
	defer db.Close()

	if err := fn(db); err != nil {
		return wrap(op, err)
	}
	return nil
}
