package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"ctfcore/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Gin context keys set by AuthMiddleware.
const (
	ContextTeamID   = "teamID"
	ContextTeamName = "teamName"
	ContextIsAdmin  = "isAdmin"
	ContextVerified = "verified"
)

// AuthMiddleware validates the bearer token and puts the team identity
// into the request context. Token issuance lives in the auth service,
// this only consumes the claims: sub (team id), team (name), admin,
// verified.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(config.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid claims"})
			return
		}

		teamID, _ := claims["sub"].(string)
		if teamID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has no team"})
			return
		}
		teamName, _ := claims["team"].(string)
		isAdmin, _ := claims["admin"].(bool)
		verified, _ := claims["verified"].(bool)

		c.Set(ContextTeamID, teamID)
		c.Set(ContextTeamName, teamName)
		c.Set(ContextIsAdmin, isAdmin)
		c.Set(ContextVerified, verified)
		c.Next()
	}
}

// TeamFromContext reads the identity AuthMiddleware stored
func TeamFromContext(c *gin.Context) (teamID string, teamName string, isAdmin bool) {
	teamID = c.GetString(ContextTeamID)
	teamName = c.GetString(ContextTeamName)
	isAdmin = c.GetBool(ContextIsAdmin)
	return
}
