package rbac

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService issues and verifies the signed session tokens. Access and
// refresh tokens use separate signing secrets and separate lifetimes;
// both carry only the subject id.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	logger        Logger
}

// NewTokenService creates a new TokenService instance
func NewTokenService(cfg *Config, logger Logger) *TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenService{
		accessSecret:  []byte(cfg.AccessTokenSecret),
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
		logger:        logger,
	}
}

// AccessTokenTTL returns the configured access token lifetime.
func (ts *TokenService) AccessTokenTTL() time.Duration { return ts.accessTTL }

// RefreshTokenTTL returns the configured refresh token lifetime.
func (ts *TokenService) RefreshTokenTTL() time.Duration { return ts.refreshTTL }

// IssueAccessToken signs a short-lived token for the given subject id.
func (ts *TokenService) IssueAccessToken(subject string) (string, error) {
	return sign(subject, ts.accessSecret, ts.accessTTL)
}

// IssueRefreshToken signs a long-lived token for the given subject id.
func (ts *TokenService) IssueRefreshToken(subject string) (string, error) {
	return sign(subject, ts.refreshSecret, ts.refreshTTL)
}

// VerifyAccessToken checks signature and expiry. Any failure, including
// malformed input, yields ok=false; it never panics or errors out.
func (ts *TokenService) VerifyAccessToken(token string) (*jwt.RegisteredClaims, bool) {
	return verify(token, ts.accessSecret)
}

// VerifyRefreshToken checks signature and expiry against the refresh secret.
func (ts *TokenService) VerifyRefreshToken(token string) (*jwt.RegisteredClaims, bool) {
	return verify(token, ts.refreshSecret)
}

func sign(subject string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func verify(tokenString string, secret []byte) (*jwt.RegisteredClaims, bool) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, false
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return nil, false
	}
	return claims, true
}

// LooksLikeJWT is the structural check used to tell a signed session
// token apart from an opaque API token sharing the Authorization header:
// exactly three dot-separated segments.
func LooksLikeJWT(token string) bool {
	return len(strings.Split(token, ".")) == 3
}
