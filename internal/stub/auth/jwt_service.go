// Package auth holds the stub backend's token, password and authorization
// services.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/danaam/danaam-go/domain"
)

// JWTService implements domain.TokenService with HS256 tokens.
type JWTService struct {
	secretKey       []byte
	issuer          string
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

// NewJWTService creates a new JWT service.
func NewJWTService(secretKey, issuer string, accessTTL, refreshTTL time.Duration) *JWTService {
	return &JWTService{
		secretKey:       []byte(secretKey),
		issuer:          issuer,
		accessTokenTTL:  accessTTL,
		refreshTokenTTL: refreshTTL,
	}
}

func (j *JWTService) generateJTI() string {
	bytes := make([]byte, 16)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

func (j *JWTService) generate(userID string, role domain.Role, class domain.UserClass, ttl time.Duration, kind string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"role":  string(role),
		"class": string(class),
		"kind":  kind,
		"iss":   j.issuer,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
		"jti":   j.generateJTI(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secretKey)
}

// GenerateAccessToken implements domain.TokenService.
func (j *JWTService) GenerateAccessToken(userID string, role domain.Role, class domain.UserClass) (string, error) {
	return j.generate(userID, role, class, j.accessTokenTTL, "access")
}

// GenerateRefreshToken implements domain.TokenService.
func (j *JWTService) GenerateRefreshToken(userID string, role domain.Role, class domain.UserClass) (string, error) {
	return j.generate(userID, role, class, j.refreshTokenTTL, "refresh")
}

// ValidateAccessToken implements domain.TokenService.
func (j *JWTService) ValidateAccessToken(token string) (*domain.TokenClaims, error) {
	return j.validate(token, "access")
}

// ValidateRefreshToken implements domain.TokenService.
func (j *JWTService) ValidateRefreshToken(token string) (*domain.TokenClaims, error) {
	return j.validate(token, "refresh")
}

func (j *JWTService) validate(tokenString, kind string) (*domain.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrTokenMalformed
		}
		return j.secretKey, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}
	role, ok := claims["role"].(string)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}
	class, _ := claims["class"].(string)
	if k, _ := claims["kind"].(string); k != kind {
		return nil, domain.ErrTokenInvalid
	}
	iat, ok := claims["iat"].(float64)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}
	if time.Unix(int64(exp), 0).Before(time.Now()) {
		return nil, domain.ErrTokenExpired
	}

	return &domain.TokenClaims{
		UserID:    sub,
		Role:      domain.Role(role),
		UserClass: domain.UserClass(class),
		IssuedAt:  int64(iat),
		ExpiresAt: int64(exp),
	}, nil
}

// Compile-time interface compliance verification
var _ domain.TokenService = (*JWTService)(nil)
