package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	authtypes "github.com/Apurer/shelter-api/internal/domains/auth/application/types"
	"github.com/Apurer/shelter-api/internal/domains/auth/domain"
	"github.com/Apurer/shelter-api/internal/domains/auth/ports"
	"github.com/Apurer/shelter-api/internal/shared/failure"
)

var _ ports.Service = (*Service)(nil)

// Service issues and rotates staff tokens.
type Service struct {
	users  ports.UserRepository
	tokens ports.TokenIssuer
	store  ports.RefreshTokenStore
	newJTI func() string
}

type Option func(*Service)

// WithJTIGenerator overrides the refresh token id source.
func WithJTIGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newJTI = fn
		}
	}
}

func NewService(users ports.UserRepository, tokens ports.TokenIssuer, store ports.RefreshTokenStore, opts ...Option) *Service {
	s := &Service{users: users, tokens: tokens, store: store, newJTI: uuid.NewString}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Login verifies credentials and issues a fresh token pair. Any mismatch, including a blank field, is
// reported as invalid credentials.
func (s *Service) Login(ctx context.Context, input authtypes.LoginInput) (*authtypes.TokenPair, error) {
	if strings.TrimSpace(input.Email) == "" || input.Password == "" {
		return nil, invalidCredentials()
	}

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, invalidCredentials()
		}
		return nil, err
	}
	if !user.CheckPassword(input.Password) {
		return nil, invalidCredentials()
	}
	return s.issuePair(ctx, domain.Principal{UserID: user.ID, Role: user.Role})
}

// Refresh rotates a refresh token. A token whose jti is no longer stored is rejected as revoked.
func (s *Service) Refresh(ctx context.Context, input authtypes.RefreshInput) (*authtypes.TokenPair, error) {
	claims, err := s.parseRefresh(input.RefreshToken)
	if err != nil {
		return nil, err
	}
	ok, err := s.store.Consume(ctx, claims.Principal.UserID, claims.JTI)
	if err != nil {
		return nil, fmt.Errorf("consume refresh token: %w", err)
	}
	if !ok {
		return nil, refreshTokenRevoked()
	}
	return s.issuePair(ctx, claims.Principal)
}

// Logout revokes the refresh token. A missing, invalid or already revoked token is not an error;
// only a store failure is reported.
func (s *Service) Logout(ctx context.Context, input authtypes.LogoutInput) error {
	claims, err := s.parseRefresh(input.RefreshToken)
	if err != nil {
		return nil
	}
	if _, err := s.store.Consume(ctx, claims.Principal.UserID, claims.JTI); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// Authenticate resolves an access token into the caller's principal.
func (s *Service) Authenticate(_ context.Context, accessToken string) (domain.Principal, error) {
	if strings.TrimSpace(accessToken) == "" {
		return domain.Principal{}, failure.Unauthorized(string(failure.KindUnauthorized), "authorization token required")
	}
	principal, err := s.tokens.ParseAccess(accessToken)
	if err != nil {
		return domain.Principal{}, accessTokenError(err)
	}
	return principal, nil
}

func (s *Service) parseRefresh(token string) (ports.RefreshClaims, error) {
	if strings.TrimSpace(token) == "" {
		return ports.RefreshClaims{}, refreshTokenRequired()
	}
	claims, err := s.tokens.ParseRefresh(token)
	if err != nil {
		return ports.RefreshClaims{}, refreshTokenError(err)
	}
	if claims.Principal.UserID <= 0 || claims.JTI == "" {
		return ports.RefreshClaims{}, refreshTokenError(ports.ErrTokenInvalid)
	}
	return claims, nil
}

func (s *Service) issuePair(ctx context.Context, p domain.Principal) (*authtypes.TokenPair, error) {
	access, err := s.tokens.IssueAccess(p)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	jti := s.newJTI()
	refresh, err := s.tokens.IssueRefresh(p, jti)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	if err := s.store.Save(ctx, p.UserID, jti, s.tokens.RefreshTTL()); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return &authtypes.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
