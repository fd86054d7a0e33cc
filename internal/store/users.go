package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"candidate-tracker/internal/domain"
)

// CreateUser stores a new account with an already computed password hash.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string, role domain.Role) (domain.User, error) {
	if !role.Valid() {
		return domain.User{}, fmt.Errorf("unknown role %q", role)
	}

	u := domain.User{Username: username, PasswordHash: passwordHash, Role: role}
	err := s.withDB(ctx, "create user", func(db *sql.DB) error {
		res, err := db.ExecContext(ctx, `
INSERT INTO users (username, password_hash, role)
VALUES (?, ?, ?);`, username, passwordHash, string(role))
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateUsername
			}
			return err
		}
		u.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// GetUser looks an account up by exact username.
func (s *Store) GetUser(ctx context.Context, username string) (domain.User, error) {
	var u domain.User
	err := s.withDB(ctx, "get user", func(db *sql.DB) error {
		var role string
		err := db.QueryRowContext(ctx, `
SELECT id, username, password_hash, role
FROM users
WHERE username = ?
LIMIT 1;`, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &role)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		u.Role = domain.Role(role)
		return err
	})
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	err := s.withDB(ctx, "list users", func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `SELECT id, username, role FROM users ORDER BY id;`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var u domain.User
			var role string
			if err := rows.Scan(&u.ID, &u.Username, &role); err != nil {
				return err
			}
			u.Role = domain.Role(role)
			out = append(out, u)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := s.withDB(ctx, "count users", func(db *sql.DB) error {
		return db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users;`).Scan(&n)
	})
	return n, err
}

// UpdatePasswordHash replaces the stored digest for username.
func (s *Store) UpdatePasswordHash(ctx context.Context, username, passwordHash string) error {
	return s.withDB(ctx, "update password", func(db *sql.DB) error {
		res, err := db.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE username = ?;`, passwordHash, username)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}
