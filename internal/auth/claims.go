package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims represents the JWT claims issued by the ODG backend
type TokenClaims struct {
	UserID int64  `json:"id"`
	Email  string `json:"email,omitempty"`
	Role   Role   `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenInfo is what the console can tell about its bearer token without
// the signing key
type TokenInfo struct {
	Opaque    bool
	UserID    int64
	Email     string
	Role      Role
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry that has passed
func (i TokenInfo) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// Inspect decodes a bearer token's claims without verifying its signature.
// The backend remains the only authority; tokens that are not JWTs are
// reported as opaque.
func Inspect(token string) TokenInfo {
	claims := &TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenInfo{Opaque: true}
	}

	info := TokenInfo{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info
}

// Signer issues and validates HS256 tokens. The console never holds the
// backend key; the fake backend in apitest uses this.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

// NewSigner creates a signer. A zero ttl issues tokens without expiry.
func NewSigner(secret string, ttl time.Duration) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("JWT secret not initialized")
	}
	return &Signer{secret: []byte(secret), ttl: ttl}, nil
}

// Sign creates a new token for a user
func (s *Signer) Sign(userID int64, email string, role Role) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate verifies a token and returns its claims
func (s *Signer) Validate(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
