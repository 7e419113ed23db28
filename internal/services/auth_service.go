package services

import (
	"fmt"
	"log"

	"github.com/dgrijalva/jwt-go"

	"ordersvc/internal/models"
)

// AuthService verifies JWT tokens issued by the Users service. Token issuance
// lives in the Users service; this side only validates the shared-secret
// HS256 signature and extracts the acting identity.
type AuthService struct {
	jwtSecret []byte
}

// NewAuthService creates a new AuthService. The secret comes from
// configuration at process start; it must match the Users service.
func NewAuthService(jwtSecret string) *AuthService {
	return &AuthService{
		jwtSecret: []byte(jwtSecret),
	}
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// ActorFromToken validates a token and builds the acting identity from its
// claims, keeping the raw token for forwarding to downstream services.
func (s *AuthService) ActorFromToken(tokenString string) (models.Actor, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return models.Actor{}, err
	}

	userID, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if userID == "" {
		return models.Actor{}, fmt.Errorf("token is missing the subject claim")
	}

	return models.Actor{ID: userID, Role: role, Token: tokenString}, nil
}
