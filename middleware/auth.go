package middleware

import (
	"net/http"
	"strings"

	accountRepo "tillpoint/database/repository/account"
	"tillpoint/utils"

	"github.com/gin-gonic/gin"
)

// JWTAuthMiddleware protects session endpoints. The token must validate and
// its hash must still be present on one of the account's devices, so revoking
// a device kills its tokens immediately.
func JWTAuthMiddleware(accounts accountRepo.AccountRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		// Validate the token signature and expiration.
		token, err := utils.ValidateToken(tokenString)
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		// Query the accounts collection using the token hash.
		computedHash := utils.HashToken(tokenString)
		account, err := accounts.GetByTokenHash(computedHash)
		if err != nil || account == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token mismatch or account not found"})
			return
		}

		c.Set("accountID", account.ID)
		c.Set("accountRole", account.Role)
		c.Next()
	}
}
