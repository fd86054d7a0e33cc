package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candidate-tracker/internal/domain"
	"candidate-tracker/internal/store"
)

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	n, err := s.CountUsers(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	admin, err := s.CreateUser(ctx, "admin", "hash-a", domain.RoleAdmin)
	require.NoError(t, err)
	assert.NotZero(t, admin.ID)

	_, err = s.CreateUser(ctx, "admin", "hash-b", domain.RoleUser)
	require.ErrorIs(t, err, store.ErrDuplicateUsername)

	_, err = s.CreateUser(ctx, "clerk", "hash-c", domain.Role("root"))
	require.Error(t, err)

	_, err = s.CreateUser(ctx, "clerk", "hash-c", domain.RoleUser)
	require.NoError(t, err)

	got, err := s.GetUser(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, "hash-a", got.PasswordHash)
	assert.Equal(t, domain.RoleAdmin, got.Role)

	_, err = s.GetUser(ctx, "Admin")
	require.ErrorIs(t, err, store.ErrUserNotFound)

	require.NoError(t, s.UpdatePasswordHash(ctx, "clerk", "hash-d"))
	got, err = s.GetUser(ctx, "clerk")
	require.NoError(t, err)
	assert.Equal(t, "hash-d", got.PasswordHash)
	require.ErrorIs(t, s.UpdatePasswordHash(ctx, "nobody", "x"), store.ErrUserNotFound)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "admin", users[0].Username)
	assert.Empty(t, users[0].PasswordHash)
}

func TestRoleConstraintInSchema(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	_, err := rawDB(t, s.Path()).ExecContext(ctx,
		`INSERT INTO users (username, password_hash, role) VALUES ('x', 'h', 'superuser');`)
	require.Error(t, err)
}
