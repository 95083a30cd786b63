package auth

import (
	"context"
	stderrors "errors"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/policy"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/pkg/auth"
	"github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/security"
)

var ErrInvalidCredentials = stderrors.New("invalid credentials")

type Service struct {
	accounts repository.AccountRepository
	jwtSvc   auth.JWTService
	hasher   security.PasswordHasher
}

func NewService(accounts repository.AccountRepository, jwtSvc auth.JWTService, hasher security.PasswordHasher) *Service {
	return &Service{
		accounts: accounts,
		jwtSvc:   jwtSvc,
		hasher:   hasher,
	}
}

func (s *Service) Login(ctx context.Context, req model.LoginRequest) (*model.TokenResponse, error) {
	account, err := s.accounts.GetByUsername(ctx, req.Username)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.Unauthorized(ErrInvalidCredentials)
		}
		return nil, errors.Internal(err)
	}

	if err := s.hasher.Compare(account.PasswordHash, req.Password); err != nil {
		log.Warn().Str("username", req.Username).Msg("Failed login attempt")
		return nil, errors.Unauthorized(ErrInvalidCredentials)
	}

	token, expiresAt, err := s.jwtSvc.GenerateAccessToken(account.ID, account.Username, account.IsAdmin)
	if err != nil {
		return nil, errors.Internal(err)
	}

	return &model.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	}, nil
}

// Authenticate resolves a bearer token to a caller. The account is loaded again
// so a deleted account or a changed admin flag takes effect immediately.
func (s *Service) Authenticate(ctx context.Context, token, ip string) (policy.Caller, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return policy.Caller{}, errors.Unauthorized(err)
	}

	account, err := s.accounts.Get(ctx, claims.AccountID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return policy.Caller{}, errors.Unauthorized(err)
		}
		return policy.Caller{}, errors.Internal(err)
	}

	return policy.Caller{
		AccountID: account.ID,
		Username:  account.Username,
		IsAdmin:   account.IsAdmin,
		IP:        ip,
	}, nil
}
