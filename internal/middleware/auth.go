package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by the middlewares.
const (
	KeyRequestID = "request_id"
	KeyUserID    = "user_id"
	KeyUsername  = "username"
	KeyRoles     = "roles"
	KeyToken     = "token"
	KeyClaims    = "claims"
)

// SuperAdminRole passes every role check.
const SuperAdminRole = "superadmin"

// JWTClaims are the claims of a dashboard session token.
type JWTClaims struct {
	UserID   string   `json:"uid"`
	Username string   `json:"username"`
	FullName string   `json:"name"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

func abortJSON(c *gin.Context, status, code int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}

func bearerToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	// EventSource cannot set headers
	return c.Query("token")
}

// ParseToken verifies an HS256 token and returns its claims. issuer is checked
// when non-empty.
func ParseToken(tokenString, secret, issuer string) (*JWTClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.UserID == "" {
		return nil, errors.New("token has no user id")
	}
	return claims, nil
}

// JWTAuth authenticates the request and keeps the raw token for forwarding to
// the upstream API.
func JWTAuth(secret, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			abortJSON(c, http.StatusUnauthorized, 40100, "Authorization is required")
			return
		}

		claims, err := ParseToken(tokenString, secret, issuer)
		if err != nil {
			code := 40102
			if errors.Is(err, jwt.ErrTokenExpired) {
				code = 40101
			}
			abortJSON(c, http.StatusUnauthorized, code, "Your session has expired, please log in again")
			return
		}

		c.Set(KeyUserID, claims.UserID)
		c.Set(KeyUsername, claims.Username)
		c.Set(KeyRoles, claims.Roles)
		c.Set(KeyToken, tokenString)
		c.Set(KeyClaims, claims)
		c.Next()
	}
}

// HasRole reports whether the authenticated user holds one of roles.
func HasRole(c *gin.Context, roles ...string) bool {
	userRoles := c.GetStringSlice(KeyRoles)
	for _, have := range userRoles {
		if strings.EqualFold(have, SuperAdminRole) {
			return true
		}
		for _, want := range roles {
			if strings.EqualFold(have, want) {
				return true
			}
		}
	}
	return false
}

// RequireRole admits users holding any of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(KeyRoles); !ok {
			abortJSON(c, http.StatusForbidden, 40310, "No roles found")
			return
		}
		if !HasRole(c, roles...) {
			abortJSON(c, http.StatusForbidden, 40312, fmt.Sprintf("Role required: %s", strings.Join(roles, " or ")))
			return
		}
		c.Next()
	}
}
