package ports

import (
	"context"

	authtypes "github.com/Apurer/shelter-api/internal/domains/auth/application/types"
	"github.com/Apurer/shelter-api/internal/domains/auth/domain"
)

// Service exposes the auth use cases to adapters.
type Service interface {
	Login(ctx context.Context, input authtypes.LoginInput) (*authtypes.TokenPair, error)
	Refresh(ctx context.Context, input authtypes.RefreshInput) (*authtypes.TokenPair, error)
	Logout(ctx context.Context, input authtypes.LogoutInput) error
	Authenticate(ctx context.Context, accessToken string) (domain.Principal, error)
}
