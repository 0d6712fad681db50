package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"catalog-sync-service/internal/models"
)

// CapabilityCatalogManage guards the sync, reset and credential endpoints.
const CapabilityCatalogManage = "catalog:manage"

// Claims carries the authenticated user and the capabilities granted to them.
type Claims struct {
	UserID       uuid.UUID `json:"user_id"`
	Email        string    `json:"email"`
	Capabilities []string  `json:"capabilities"`
	jwt.RegisteredClaims
}

// ValidateToken parses and verifies an HS256 bearer token.
func ValidateToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}

// Auth validates the Authorization bearer token and stores the claims in the
// request context.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}

		claims, err := ValidateToken(parts[1], secret)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		c.Set("user_id", claims.UserID.String())
		c.Set("capabilities", claims.Capabilities)
		c.Next()
	}
}

// RequireCapability rejects the request with 403 before any handler side
// effects when the authenticated user lacks the named capability.
func RequireCapability(capability string) gin.HandlerFunc {
	return func(c *gin.Context) {
		caps, exists := c.Get("capabilities")
		if exists {
			if granted, ok := caps.([]string); ok {
				for _, g := range granted {
					if g == capability {
						c.Next()
						return
					}
				}
			}
		}

		c.JSON(http.StatusForbidden, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "CAPABILITY_REQUIRED",
				Message: fmt.Sprintf("Capability %s is required for this operation", capability),
			},
		})
		c.Abort()
	}
}

// DevelopmentAuthMiddleware grants a fixed dev identity with full catalog
// capabilities. Never enabled outside local development.
func DevelopmentAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, _ := c.Get("user_id")
		userID := ""
		if userIDVal != nil {
			userID = userIDVal.(string)
		}
		if userID == "" {
			userID = "00000000-0000-0000-0000-000000000001" // Valid UUID for dev
		}

		c.Set("user_id", userID)
		c.Set("capabilities", []string{CapabilityCatalogManage})
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    "UNAUTHORIZED",
			Message: message,
		},
	})
	c.Abort()
}
