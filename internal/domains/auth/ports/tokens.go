package ports

import (
	"errors"
	"time"

	"github.com/Apurer/shelter-api/internal/domains/auth/domain"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// RefreshClaims identifies one issued refresh token.
type RefreshClaims struct {
	Principal domain.Principal
	JTI       string
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies access and refresh tokens.
type TokenIssuer interface {
	IssueAccess(p domain.Principal) (string, error)
	IssueRefresh(p domain.Principal, jti string) (string, error)
	ParseAccess(token string) (domain.Principal, error)
	ParseRefresh(token string) (RefreshClaims, error)
	RefreshTTL() time.Duration
}
