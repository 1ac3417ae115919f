package auth

import (
	"errors"
	"strconv"
	"time"

	"astrografia/src/helpers"
	"astrografia/src/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenKind string

const (
	Access  TokenKind = "access"
	Refresh TokenKind = "refresh"
)

type claims struct {
	Type TokenKind `json:"type"`
	jwt.RegisteredClaims
}

// -----------------------------------------------------------------------------

// TokenManager issues and verifies HS256 tokens whose subject is the user id.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// -----------------------------------------------------------------------------

func NewTokenManager(cfg models.MAuthConfig) *TokenManager {
	access := time.Duration(cfg.AccessTTLMinutes) * time.Minute
	if access <= 0 {
		access = time.Hour
	}
	refresh := time.Duration(cfg.RefreshTTLDays) * 24 * time.Hour
	if refresh <= 0 {
		refresh = 30 * 24 * time.Hour
	}
	return &TokenManager{
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  access,
		refreshTTL: refresh,
		now:        time.Now,
	}
}

// -----------------------------------------------------------------------------

func (tm *TokenManager) Issue(userID int64, kind TokenKind) (string, error) {
	return tm.issue(strconv.FormatInt(userID, 10), kind)
}

// -----------------------------------------------------------------------------

func (tm *TokenManager) issue(subject string, kind TokenKind) (string, error) {
	ttl := tm.accessTTL
	if kind == Refresh {
		ttl = tm.refreshTTL
	}
	now := tm.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Type: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(tm.secret)
}

// -----------------------------------------------------------------------------

// IssuePair returns a fresh access and refresh token.
func (tm *TokenManager) IssuePair(userID int64) (*models.MTokenPair, error) {
	access, err := tm.Issue(userID, Access)
	if err != nil {
		return nil, err
	}
	refresh, err := tm.Issue(userID, Refresh)
	if err != nil {
		return nil, err
	}
	return &models.MTokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// -----------------------------------------------------------------------------

// Subject verifies the token and its kind and returns the raw subject.
func (tm *TokenManager) Subject(tokenString string, kind TokenKind) (string, error) {
	var c claims
	_, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(tm.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", helpers.NewAuthError("token has expired")
		}
		return "", helpers.NewAuthError("invalid token")
	}
	if c.Type != kind {
		return "", helpers.NewAuthError("only " + string(kind) + " tokens are allowed")
	}
	return c.Subject, nil
}
