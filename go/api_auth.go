package shelterserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	authtypes "github.com/Apurer/shelter-api/internal/domains/auth/application/types"
	authdomain "github.com/Apurer/shelter-api/internal/domains/auth/domain"
	authports "github.com/Apurer/shelter-api/internal/domains/auth/ports"
	"github.com/Apurer/shelter-api/internal/shared/failure"
)

const principalKey = "shelterserver.principal"

// AuthAPI serves token issuance and guards the protected routes.
type AuthAPI struct {
	service authports.Service
}

// NewAuthAPI creates an AuthAPI backed by the auth service.
func NewAuthAPI(service authports.Service) AuthAPI {
	return AuthAPI{service: service}
}

// Credential and token presence is checked by the service so failures keep the auth response codes.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Post /auth/login
func (api *AuthAPI) Login(c *gin.Context) {
	var payload loginRequest
	if err := bindOptionalJSON(c, &payload); err != nil {
		respondError(c, err)
		return
	}
	pair, err := api.service.Login(c.Request.Context(), authtypes.LoginInput{Email: payload.Email, Password: payload.Password})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

// Post /auth/refresh
// Rotates the refresh token. Presenting a consumed token is reported as revoked.
func (api *AuthAPI) Refresh(c *gin.Context) {
	var payload refreshRequest
	if err := bindOptionalJSON(c, &payload); err != nil {
		respondError(c, err)
		return
	}
	pair, err := api.service.Refresh(c.Request.Context(), authtypes.RefreshInput{RefreshToken: payload.RefreshToken})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

// Post /auth/logout
// Always 204 unless the token store fails; an unreadable body counts as no token.
func (api *AuthAPI) Logout(c *gin.Context) {
	var payload refreshRequest
	_ = c.ShouldBindJSON(&payload)
	if err := api.service.Logout(c.Request.Context(), authtypes.LogoutInput{RefreshToken: payload.RefreshToken}); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RequireAuth rejects requests without a valid bearer access token and stores the principal on the context.
func (api *AuthAPI) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			respondError(c, failure.Unauthorized(string(failure.KindUnauthorized), "Authorization token required"))
			return
		}
		if api.service == nil {
			respondError(c, failure.Unauthorized(string(failure.KindUnauthorized), "authentication is not configured"))
			return
		}
		principal, err := api.service.Authenticate(c.Request.Context(), token)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(roles ...authdomain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFrom(c)
		if !ok {
			respondError(c, failure.Unauthorized(string(failure.KindUnauthorized), "Authorization token required"))
			return
		}
		if !principal.HasRole(roles...) {
			respondError(c, failure.Forbidden("insufficient role"))
			return
		}
		c.Next()
	}
}

// PrincipalFrom returns the authenticated principal set by RequireAuth.
func PrincipalFrom(c *gin.Context) (authdomain.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return authdomain.Principal{}, false
	}
	p, ok := v.(authdomain.Principal)
	return p, ok
}
