package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUserService_CreateAndAuthenticate(t *testing.T) {
	svc := NewUserService(newTestDB(t))
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, "alice", "alice@example.com", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.Empty(t, user.PasswordHash, "hash must not leave the service")

	got, err := svc.AuthenticateUser(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
	require.Empty(t, got.PasswordHash)
}

func TestUserService_AuthenticateWrongPassword(t *testing.T) {
	svc := NewUserService(newTestDB(t))
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "bob", "bob@example.com", "right")
	require.NoError(t, err)

	_, err = svc.AuthenticateUser(ctx, "bob@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_AuthenticateUnknownEmail(t *testing.T) {
	svc := NewUserService(newTestDB(t))

	// Must be indistinguishable from a wrong password.
	_, err := svc.AuthenticateUser(context.Background(), "nobody@example.com", "pw")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_DuplicateEmail(t *testing.T) {
	svc := NewUserService(newTestDB(t))
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "carol", "carol@example.com", "pw1")
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, "other", "carol@example.com", "pw2")
	require.ErrorIs(t, err, ErrDuplicateEmail)

	// First account is intact.
	_, err = svc.AuthenticateUser(ctx, "carol@example.com", "pw1")
	require.NoError(t, err)

	count, err := svc.CountUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count, "no partial row may be left behind")
}
