package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository/memory"
	"github.com/jwalitptl/dental-api/pkg/auth"
	"github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/security"
)

func setup(t *testing.T) (*Service, *memory.Store, *model.Account) {
	t.Helper()
	store := memory.New()
	hasher := security.NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("s3cret-password")
	require.NoError(t, err)
	account := &model.Account{
		Base:         model.Base{ID: uuid.New(), CreatedAt: time.Now()},
		Username:     "alice",
		PasswordHash: hash,
		IsAdmin:      true,
	}
	require.NoError(t, store.Accounts().Create(context.Background(), account))

	svc := NewService(store.Accounts(), auth.NewJWTService("secret", "dental-api", time.Hour), hasher)
	return svc, store, account
}

func TestLoginAndAuthenticate(t *testing.T) {
	svc, _, account := setup(t)
	ctx := context.Background()

	tok, err := svc.Login(ctx, model.LoginRequest{Username: "alice", Password: "s3cret-password"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.NotEmpty(t, tok.AccessToken)

	caller, err := svc.Authenticate(ctx, tok.AccessToken, "10.0.0.7")
	require.NoError(t, err)
	assert.Equal(t, account.ID, caller.AccountID)
	assert.Equal(t, "alice", caller.Username)
	assert.True(t, caller.IsAdmin)
	assert.Equal(t, "10.0.0.7", caller.IP)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, model.LoginRequest{Username: "alice", Password: "wrong-password"})
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))

	_, err = svc.Login(ctx, model.LoginRequest{Username: "nobody", Password: "s3cret-password"})
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
}

func TestAuthenticateRejectsDeletedAccount(t *testing.T) {
	svc, store, account := setup(t)
	ctx := context.Background()

	tok, err := svc.Login(ctx, model.LoginRequest{Username: "alice", Password: "s3cret-password"})
	require.NoError(t, err)
	require.NoError(t, store.Accounts().Delete(ctx, account.ID))

	_, err = svc.Authenticate(ctx, tok.AccessToken, "")
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))

	_, err = svc.Authenticate(ctx, "garbage", "")
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
}
