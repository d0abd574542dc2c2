// Package auth holds the credential primitives of the session core: signed
// access and refresh tokens, password hashing and the per-request Principal.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/rms/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carries the identity id as the only application claim. The
// registered claims hold expiry, issue time and a random token id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
}

// TokenPair is the result of a successful login or registration.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type IssuerConfig struct {
	AccessSecret       string
	RefreshSecret      string
	AccessTTL          time.Duration
	RefreshedAccessTTL time.Duration
	RefreshTTL         time.Duration
}

// TokenIssuer signs and verifies tokens with two independent HS256 keys.
// A token signed with one key never verifies against the other.
type TokenIssuer struct {
	accessKey          []byte
	refreshKey         []byte
	accessTTL          time.Duration
	refreshedAccessTTL time.Duration
	refreshTTL         time.Duration
	now                func() time.Time
}

func NewTokenIssuer(cfg IssuerConfig) *TokenIssuer {
	return &TokenIssuer{
		accessKey:          []byte(cfg.AccessSecret),
		refreshKey:         []byte(cfg.RefreshSecret),
		accessTTL:          cfg.AccessTTL,
		refreshedAccessTTL: cfg.RefreshedAccessTTL,
		refreshTTL:         cfg.RefreshTTL,
		now:                time.Now,
	}
}

// RefreshTTL is the lifetime of refresh tokens, reused as the cookie max age.
func (i *TokenIssuer) RefreshTTL() time.Duration {
	return i.refreshTTL
}

// IssuePair mints an access token and a refresh token for userID.
func (i *TokenIssuer) IssuePair(userID string) (TokenPair, error) {
	access, err := i.sign(userID, i.accessKey, i.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := i.sign(userID, i.refreshKey, i.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// IssueAccessToken mints the access token handed out by the refresh flow.
func (i *TokenIssuer) IssueAccessToken(userID string) (string, error) {
	return i.sign(userID, i.accessKey, i.refreshedAccessTTL)
}

func (i *TokenIssuer) VerifyAccess(token string) (*Claims, error) {
	return i.verify(token, i.accessKey)
}

func (i *TokenIssuer) VerifyRefresh(token string) (*Claims, error) {
	return i.verify(token, i.refreshKey)
}

func (i *TokenIssuer) sign(userID string, key []byte, ttl time.Duration) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		UserID: userID,
	})

	return token.SignedString(key)
}

func (i *TokenIssuer) verify(tokenString string, key []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
