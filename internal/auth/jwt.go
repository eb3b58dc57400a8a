// Package auth covers administrator credentials: bcrypt password hashing and
// HS256 access/refresh token issuance and verification.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims carried by both access and refresh tokens.
type Claims struct {
	jwt.RegisteredClaims
	AdminID uint   `json:"admin_id"`
	Email   string `json:"email"`
	Refresh bool   `json:"refresh,omitempty"`
}

// TokenService issues and parses admin JWTs. The signing secret enters at
// construction time only.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenService(secret []byte, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssuePair returns an access token and a refresh token for the admin.
func (s *TokenService) IssuePair(adminID uint, email string, now time.Time) (access, refresh string, err error) {
	access, err = s.sign(adminID, email, now, s.accessTTL, false)
	if err != nil {
		return "", "", err
	}
	refresh, err = s.sign(adminID, email, now, s.refreshTTL, true)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (s *TokenService) sign(adminID uint, email string, now time.Time, ttl time.Duration, refresh bool) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(adminID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		AdminID: adminID,
		Email:   email,
		Refresh: refresh,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ParseAccess validates an access token and returns its claims. Refresh
// tokens are rejected here; they are only good for re-issuance.
func (s *TokenService) ParseAccess(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Refresh {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
