// Package auth exchanges credentials for sessions and resolves bearer tokens to users.
package auth

import (
	"context"
	"strings"

	"contentengine/models"
	"contentengine/utils"
)

// MinPasswordLength is the shortest password accepted at sign-up
const MinPasswordLength = 6

// Gateway is the identity provider behind the API
type Gateway interface {
	SignUp(ctx context.Context, creds models.Credentials) (*models.User, error)
	SignIn(ctx context.Context, creds models.Credentials) (*models.Session, error)
	SignOut(ctx context.Context, token string) error
	// Verify resolves a bearer token. Failures are Unauthenticated AppErrors.
	Verify(ctx context.Context, token string) (*models.User, error)
}

// validateCredentials checks the form before anything is sent to a backend
func validateCredentials(creds models.Credentials, signUp bool) error {
	email := strings.TrimSpace(creds.Email)
	if email == "" || creds.Password == "" {
		return utils.BadRequestError("Email and password are required", nil).Localized("error_credentials_required")
	}
	if !signUp {
		return nil
	}
	if at := strings.Index(email, "@"); at <= 0 || at == len(email)-1 {
		return utils.BadRequestError("Unable to validate email address: invalid format", nil).Localized("error_invalid_email")
	}
	if len(creds.Password) < MinPasswordLength {
		return utils.BadRequestError("Password should be at least 6 characters", nil).Localized("error_password_short")
	}
	return nil
}

func invalidCredentials() error {
	return utils.UnauthorizedError("Invalid login credentials", nil).Localized("error_invalid_credentials")
}

func invalidToken(err error) error {
	return utils.UnauthorizedError("Invalid or expired token", err).Localized("error_invalid_token")
}
