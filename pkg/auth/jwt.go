package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
)

var ErrInvalidToken = errors.New("invalid token")

type JWTService interface {
	// GenerateAccessToken signs a token for principal bound to sessionID.
	GenerateAccessToken(principal model.Principal, sessionID string) (string, error)
	ValidateToken(token string) (*model.TokenClaims, error)
	Expiry() time.Duration
}

type jwtService struct {
	secret []byte
	issuer string
	expiry time.Duration
}

func NewJWTService(secret, issuer string, expiry time.Duration) JWTService {
	return &jwtService{secret: []byte(secret), issuer: issuer, expiry: expiry}
}

func (s *jwtService) GenerateAccessToken(principal model.Principal, sessionID string) (string, error) {
	now := time.Now()
	claims := model.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   principal.IdentityID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
		Username:  principal.Username,
		Role:      principal.Role,
		ProfileID: principal.ProfileID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *jwtService) ValidateToken(tokenString string) (*model.TokenClaims, error) {
	claims := &model.TokenClaims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return claims, nil
}

func (s *jwtService) Expiry() time.Duration {
	return s.expiry
}
