package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Smartsec916/Observe-and-Report-sub001/internal/server/repository"
	"github.com/Smartsec916/Observe-and-Report-sub001/internal/shared/models"
	"github.com/Smartsec916/Observe-and-Report-sub001/internal/shared/passhash"
)

var (
	// ErrInvalidCredentials never reveals whether the username or the
	// password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
)

const minPasswordLength = 6

// AuthService owns identities and sessions: login, logout, token
// resolution and account creation. Session tokens are HS256 JWTs that are
// additionally persisted so logout can revoke them and expiry is
// distinguishable from an unknown token.
type AuthService struct {
	repo              Repository
	jwtSecret         []byte
	sessionTTL        time.Duration
	bootstrapUser     string
	bootstrapPassword string
}

// Bootstrap creates the configured default account when no identities
// exist yet. Reports whether it created one.
func (a *AuthService) Bootstrap(ctx context.Context) (bool, error) {
	n, err := a.repo.CountIdentities(ctx)
	if err != nil || n > 0 {
		return false, err
	}
	phc, err := passhash.Hash(a.bootstrapPassword)
	if err != nil {
		return false, err
	}
	if _, err := a.repo.CreateIdentity(ctx, a.bootstrapUser, phc, true); err != nil {
		return false, err
	}
	return true, nil
}

// Login verifies credentials and issues a session with the configured TTL.
// The first successful login by a non-default identity clears the
// bootstrap default-account flag.
func (a *AuthService) Login(ctx context.Context, username, password string) (string, models.Identity, error) {
	ident, err := a.repo.GetIdentityByUsername(ctx, username)
	if err != nil {
		return "", models.Identity{}, ErrInvalidCredentials
	}
	ok, err := passhash.Verify(ident.CredentialHash, password)
	if err != nil || !ok {
		return "", models.Identity{}, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	expires := now.Add(a.sessionTTL)
	claims := jwt.MapClaims{
		"sub": ident.ID,
		"jti": uuid.NewString(),
		"exp": expires.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.jwtSecret)
	if err != nil {
		return "", models.Identity{}, err
	}
	if err := a.repo.CreateSession(ctx, models.Session{
		Token:      token,
		IdentityID: ident.ID,
		CreatedAt:  now,
		ExpiresAt:  expires,
	}); err != nil {
		return "", models.Identity{}, err
	}
	if !ident.IsDefaultAccount {
		_ = a.repo.ClearDefaultAccounts(ctx)
	}
	return token, ident, nil
}

// Logout destroys the session; unknown tokens are a no-op.
func (a *AuthService) Logout(ctx context.Context, token string) error {
	return a.repo.DeleteSession(ctx, token)
}

// Resolve maps a token to its identity. Returns repository.ErrSessionMissing
// for unknown or tampered tokens and repository.ErrSessionExpired for
// sessions past their TTL. Expiry is decided by the stored session row, so
// claims validation is disabled on the parse.
func (a *AuthService) Resolve(ctx context.Context, token string) (models.Identity, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}), jwt.WithoutClaimsValidation())
	parsed, err := parser.Parse(token, func(*jwt.Token) (interface{}, error) {
		return a.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return models.Identity{}, repository.ErrSessionMissing
	}
	sess, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return models.Identity{}, err
	}
	return a.repo.GetIdentity(ctx, sess.IdentityID)
}

// CreateAccount registers a new identity. Only reachable through the
// guarded surface: an existing session is the first-boot security gate.
func (a *AuthService) CreateAccount(ctx context.Context, username, password string) (models.Identity, error) {
	if username == "" || password == "" {
		return models.Identity{}, errors.New("username and password required")
	}
	if len(password) < minPasswordLength {
		return models.Identity{}, ErrWeakPassword
	}
	phc, err := passhash.Hash(password)
	if err != nil {
		return models.Identity{}, err
	}
	return a.repo.CreateIdentity(ctx, username, phc, false)
}
