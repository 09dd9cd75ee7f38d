package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"folio/logging"
	"folio/models"
)

const (
	RoleAdmin = "admin"

	// ContextAdminSubject holds the authenticated admin's subject claim.
	ContextAdminSubject = "admin_subject"
)

var ErrInvalidToken = errors.New("invalid token")

// AdminClaims are the claims of an admin bearer token.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateAdminToken signs an HS256 admin token for subject valid for ttl.
func GenerateAdminToken(secret, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &AdminClaims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateAdminToken verifies signature, expiry and role.
func ValidateAdminToken(secret, tokenString string) (*AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*AdminClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Role != RoleAdmin {
		return nil, fmt.Errorf("%w: role %q", ErrInvalidToken, claims.Role)
	}
	return claims, nil
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
		Success: false,
		Error:   "Unauthorized",
		Message: message,
	})
}

// AdminAuth requires a valid admin bearer token.
func AdminAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		if authHeader == "" {
			unauthorized(c, "authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(c, "invalid authorization format")
			return
		}

		claims, err := ValidateAdminToken(secret, parts[1])
		if err != nil {
			logging.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("Rejected admin token")
			unauthorized(c, "invalid or expired token")
			return
		}

		c.Set(ContextAdminSubject, claims.Subject)

		c.Next()
	}
}
