package server

import (
	"strings"
	"time"

	svcErr "github.com/cinematch/cinematch/internal/errors"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const userIDKey = "user_id"

var jwtSecret []byte

// InitAuth sets the signing secret used for both issuing and validating
// tokens. Must be called before the router handles traffic.
func InitAuth(secret string) {
	jwtSecret = []byte(secret)
}

// Claims carries the authenticated user id inside the JWT.
type Claims struct {
	UserID uint64 `json:"user_id"`
	jwt.RegisteredClaims
}

// IssueToken signs a bearer token for userID valid for ttl.
func IssueToken(userID uint64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
}

// ValidateToken parses a bearer token and returns the user id it carries.
func ValidateToken(tokenString string) (uint64, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	})
	if err != nil {
		return 0, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims.UserID, nil
	}
	return 0, jwt.ErrSignatureInvalid
}

// AuthMiddleware rejects requests without a valid bearer token and stores
// the resolved caller id in the gin context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			AbortWithError(c, svcErr.Unauthorized("missing authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			AbortWithError(c, svcErr.Unauthorized("invalid authorization header"))
			return
		}

		userID, err := ValidateToken(parts[1])
		if err != nil {
			AbortWithError(c, svcErr.Unauthorized("invalid token"))
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// CurrentUserID returns the authenticated caller id set by AuthMiddleware.
func CurrentUserID(c *gin.Context) (uint64, bool) {
	v, exists := c.Get(userIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}
