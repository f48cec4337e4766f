package application

import (
	"errors"

	"github.com/Apurer/shelter-api/internal/domains/auth/ports"
	"github.com/Apurer/shelter-api/internal/shared/failure"
)

// Response codes carried by unauthorized failures.
const (
	CodeInvalidCredentials = "UNAUTHORIZED"
	CodeTokenInvalid       = "TOKEN_INVALID"
	CodeTokenRevoked       = "TOKEN_REVOKED"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeBadRequest         = "BAD_REQUEST"
)

func invalidCredentials() error {
	return failure.Unauthorized(CodeInvalidCredentials, "Invalid credentials")
}

func refreshTokenRequired() error {
	return failure.InvalidQuery("refreshToken is required", nil).WithCode(CodeBadRequest)
}

func refreshTokenError(err error) error {
	return failure.Wrap(failure.Unauthorized(CodeTokenInvalid, "Invalid refresh token"), err)
}

func refreshTokenRevoked() error {
	return failure.Unauthorized(CodeTokenRevoked, "Refresh token revoked")
}

func accessTokenError(err error) error {
	if errors.Is(err, ports.ErrTokenExpired) {
		return failure.Wrap(failure.Unauthorized(CodeTokenExpired, "access token expired"), err)
	}
	return failure.Wrap(failure.Unauthorized(CodeTokenExpired, "invalid or expired token"), err)
}
