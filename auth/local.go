package auth

import (
	"context"
	"errors"
	"time"

	"contentengine/models"
	"contentengine/storage"
	"contentengine/utils"
)

// LocalGateway keeps accounts in the local database and issues its own tokens
type LocalGateway struct {
	users   *storage.UserStorage
	tokens  *TokenIssuer
	revoked *utils.MemoryCache
}

// NewLocalGateway creates a gateway. revoked holds the ids of signed-out tokens.
func NewLocalGateway(users *storage.UserStorage, tokens *TokenIssuer, revoked *utils.MemoryCache) *LocalGateway {
	return &LocalGateway{users: users, tokens: tokens, revoked: revoked}
}

func (g *LocalGateway) SignUp(_ context.Context, creds models.Credentials) (*models.User, error) {
	if err := validateCredentials(creds, true); err != nil {
		return nil, err
	}

	user, err := g.users.CreateUser(creds.Email, creds.Password)
	if errors.Is(err, storage.ErrDuplicate) {
		return nil, utils.ConflictError("User already registered", err).Localized("error_email_taken")
	}
	if err != nil {
		return nil, utils.StoreError(err)
	}

	utils.Log.Info("Registered user %s", user.ID)
	return user, nil
}

func (g *LocalGateway) SignIn(_ context.Context, creds models.Credentials) (*models.Session, error) {
	if err := validateCredentials(creds, false); err != nil {
		return nil, err
	}

	user, err := g.users.Authenticate(creds.Email, creds.Password)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, invalidCredentials()
	}
	if err != nil {
		return nil, utils.StoreError(err)
	}

	session, err := g.tokens.Issue(*user)
	if err != nil {
		return nil, utils.InternalServerError("Failed to create session", err)
	}
	return session, nil
}

// SignOut revokes the token until it would have expired anyway
func (g *LocalGateway) SignOut(_ context.Context, token string) error {
	claims, err := g.tokens.Parse(token)
	if err != nil {
		return invalidToken(err)
	}
	if ttl := claims.remaining(g.tokens.now()); ttl > 0 {
		g.revoked.Set(claims.ID, true, ttl+time.Second)
	}
	return nil
}

func (g *LocalGateway) Verify(_ context.Context, token string) (*models.User, error) {
	claims, err := g.tokens.Parse(token)
	if err != nil {
		return nil, invalidToken(err)
	}
	if claims.ID != "" && g.revoked.Has(claims.ID) {
		return nil, invalidToken(nil)
	}
	return claims.User(), nil
}
