package middleware

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/apostai/engine/internal/models"
	"github.com/apostai/engine/pkg/utils"
)

// ResolveUser loads the requesting user into the context.
//
// Resolution order: JWT user_id set by the auth middleware, then the
// X-Access-Code header for codeholder access without a login flow.
func ResolveUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user *models.User
		var err error

		if authenticated, _ := c.Get("authenticated"); authenticated == true {
			userIDValue, exists := c.Get("user_id")
			if !exists {
				utils.SendUnauthorized(c, "User ID not found")
				c.Abort()
				return
			}

			var userID uint
			switch v := userIDValue.(type) {
			case uint:
				userID = v
			case int:
				userID = uint(v)
			default:
				utils.SendInternalError(c, "Invalid user ID type")
				c.Abort()
				return
			}

			user, err = models.GetUserByID(db, userID)
			if err != nil {
				utils.SendUnauthorized(c, "Unknown user")
				c.Abort()
				return
			}
		} else if code := c.GetHeader("X-Access-Code"); code != "" {
			user, err = models.GetUserByAccessCode(db, code)
			if err != nil {
				utils.SendUnauthorized(c, "Invalid access code")
				c.Abort()
				return
			}
		} else {
			utils.SendUnauthorized(c, "Authentication or access code required")
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Next()
	}
}

// CheckCredits rejects requests from users with an exhausted balance.
// The actual debit happens in the handler after a successful analysis.
// Must run after ResolveUser.
func CheckCredits() gin.HandlerFunc {
	return func(c *gin.Context) {
		userValue, exists := c.Get("user")
		if !exists {
			utils.SendInternalError(c, "User not resolved")
			c.Abort()
			return
		}

		user := userValue.(*models.User)
		if user.Credits <= 0 {
			utils.SendPaymentRequired(c, "No analysis credits remaining")
			c.Abort()
			return
		}
		c.Next()
	}
}
