package auth

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dori/taskmate/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) (*Service, *db.DB) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := db.Open(filepath.Join(t.TempDir(), "auth.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	gdb, err := OpenGorm(store.DB)
	require.NoError(t, err)

	svc := NewService(NewUserRepository(gdb), NewPasswordHasher(bcrypt.MinCost), newTestTokenManager(), log)
	return svc, store
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "  Alice@Example.com ", "password123", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)

	got, pair, err := svc.Login(ctx, "ALICE@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, int64(900), pair.ExpiresIn)

	id, err := svc.Resolve(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id.UserID)
	assert.Equal(t, "alice@example.com", id.Email)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		confirm  string
		want     error
	}{
		{"invalid email", "not-an-email", "password123", "", ErrInvalidEmail},
		{"short password", "a@example.com", "short", "", ErrWeakPassword},
		{"long password", "a@example.com", strings.Repeat("x", 73), "", ErrPasswordTooLong},
		{"mismatch", "a@example.com", "password123", "password124", ErrPasswordMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.email, tt.password, tt.confirm)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "bob@example.com", "password123", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "BOB@example.com", "password456", "")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "carol@example.com", "password123", "")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "carol@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "dave@example.com", "password123", "")
	require.NoError(t, err)
	_, pair, err := svc.Login(ctx, "dave@example.com", "password123")
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = svc.Refresh(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolve(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.Resolve(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.Resolve(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	user, err := svc.Register(ctx, "erin@example.com", "password123", "")
	require.NoError(t, err)
	_, pair, err := svc.Login(ctx, "erin@example.com", "password123")
	require.NoError(t, err)

	_, err = store.Exec(`DELETE FROM users WHERE id = ?`, user.ID)
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestStoreFailureIsNotAnAuthFailure(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "frank@example.com", "password123", "")
	require.NoError(t, err)
	pair, err := svc.IssueTokens(user)
	require.NoError(t, err)

	require.NoError(t, store.Close())

	_, err = svc.Resolve(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.NotErrorIs(t, err, ErrInvalidToken)

	_, _, err = svc.Login(ctx, "frank@example.com", "password123")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = svc.Register(ctx, "grace@example.com", "password123", "")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
