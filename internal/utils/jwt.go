package utils

import (
	"errors"
	"fmt"
	"time"

	"marketplace_auth/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMissingSecret is returned when a token is requested but no signing
	// secret has been configured.
	ErrMissingSecret = errors.New("jwt signing secret is not configured")
	// ErrInvalidToken wraps every verification failure (bad signature,
	// malformed structure, expiry) so callers can treat them alike.
	ErrInvalidToken = errors.New("invalid token")
)

// JWTClaims custom claims for JWT
type JWTClaims struct {
	UserID string     `json:"userId"`
	Role   model.Role `json:"role"`
	Phone  string     `json:"phone"`
	jwt.RegisteredClaims
}

// JWTUtil provides JWT generation and validation
type JWTUtil struct {
	secretKey []byte
	ttl       time.Duration
}

// NewJWTUtil creates a new JWTUtil. An empty secret is accepted here so the
// server can boot; GenerateToken refuses to sign with it.
func NewJWTUtil(secretKey string, ttl time.Duration) *JWTUtil {
	return &JWTUtil{secretKey: []byte(secretKey), ttl: ttl}
}

// TTL is the lifetime given to every issued token.
func (ju *JWTUtil) TTL() time.Duration {
	return ju.ttl
}

// GenerateToken signs a token carrying the user's id, role and phone.
func (ju *JWTUtil) GenerateToken(user *model.User) (string, error) {
	if len(ju.secretKey) == 0 {
		return "", ErrMissingSecret
	}

	now := time.Now()
	claims := &JWTClaims{
		UserID: user.ID,
		Role:   user.Role,
		Phone:  user.PhoneNumber,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ju.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(ju.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken validates the JWT token
func (ju *JWTUtil) ValidateToken(tokenString string) (*JWTClaims, error) {
	if len(ju.secretKey) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, ErrMissingSecret)
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ju.secretKey, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// DecodeUnverified reads the claims of a token without checking its
// signature, then rejects it if it carries no expiry or has expired. It is
// meant for clients that never hold the signing secret.
func DecodeUnverified(tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now()) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, jwt.ErrTokenExpired)
	}
	return claims, nil
}
