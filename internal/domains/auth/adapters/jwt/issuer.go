// Package jwt signs shelter access and refresh tokens as HS256 JWTs.
package jwt

import (
	"errors"
	"strconv"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/Apurer/shelter-api/internal/domains/auth/domain"
	"github.com/Apurer/shelter-api/internal/domains/auth/ports"
)

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

var _ ports.TokenIssuer = (*Issuer)(nil)

type claims struct {
	Role string `json:"role"`
	gojwt.RegisteredClaims
}

// Config holds signing secrets and lifetimes. Access and refresh tokens use separate secrets.
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Issuer implements ports.TokenIssuer.
type Issuer struct {
	accessKey  []byte
	refreshKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewIssuer(cfg Config) (*Issuer, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("jwt secrets are required")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	return &Issuer{
		accessKey:  []byte(cfg.AccessSecret),
		refreshKey: []byte(cfg.RefreshSecret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}, nil
}

// WithClock overrides the time source used for signing and validation.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	if now != nil {
		i.now = now
	}
	return i
}

func (i *Issuer) RefreshTTL() time.Duration { return i.refreshTTL }

func (i *Issuer) IssueAccess(p domain.Principal) (string, error) {
	return i.sign(i.accessKey, p, "", i.accessTTL)
}

func (i *Issuer) IssueRefresh(p domain.Principal, jti string) (string, error) {
	if jti == "" {
		return "", errors.New("refresh token id is required")
	}
	return i.sign(i.refreshKey, p, jti, i.refreshTTL)
}

func (i *Issuer) ParseAccess(token string) (domain.Principal, error) {
	c, err := i.parse(i.accessKey, token)
	if err != nil {
		return domain.Principal{}, err
	}
	return principalFrom(c)
}

func (i *Issuer) ParseRefresh(token string) (ports.RefreshClaims, error) {
	c, err := i.parse(i.refreshKey, token)
	if err != nil {
		return ports.RefreshClaims{}, err
	}
	p, err := principalFrom(c)
	if err != nil {
		return ports.RefreshClaims{}, err
	}
	out := ports.RefreshClaims{Principal: p, JTI: c.ID}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.UTC()
	}
	return out, nil
}

func (i *Issuer) sign(key []byte, p domain.Principal, jti string, ttl time.Duration) (string, error) {
	now := i.now()
	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims{
		Role: string(p.Role),
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   strconv.FormatInt(p.UserID, 10),
			ID:        jti,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(key)
}

func (i *Issuer) parse(key []byte, token string) (*claims, error) {
	parsed, err := gojwt.ParseWithClaims(token, &claims{}, func(*gojwt.Token) (any, error) {
		return key, nil
	},
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithExpirationRequired(),
		gojwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, gojwt.ErrTokenExpired) {
			return nil, errors.Join(ports.ErrTokenExpired, err)
		}
		return nil, errors.Join(ports.ErrTokenInvalid, err)
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return nil, ports.ErrTokenInvalid
	}
	return c, nil
}

func principalFrom(c *claims) (domain.Principal, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return domain.Principal{}, ports.ErrTokenInvalid
	}
	role := domain.Role(c.Role)
	if !role.Valid() {
		return domain.Principal{}, ports.ErrTokenInvalid
	}
	return domain.Principal{UserID: id, Role: role}, nil
}
