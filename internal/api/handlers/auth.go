package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/apostai/engine/internal/api/middleware"
	"github.com/apostai/engine/internal/models"
	"github.com/apostai/engine/pkg/utils"
)

type AuthHandler struct {
	db        *gorm.DB
	jwtSecret string
}

func NewAuthHandler(db *gorm.DB, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		db:        db,
		jwtSecret: jwtSecret,
	}
}

type loginRequest struct {
	AccessCode string `json:"access_code" binding:"required"`
}

// Login exchanges an access code for a JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	user, err := models.GetUserByAccessCode(h.db, req.AccessCode)
	if err != nil {
		utils.SendUnauthorized(c, "Invalid access code")
		return
	}

	token, err := middleware.IssueToken(h.jwtSecret, user.ID, user.Plan)
	if err != nil {
		utils.SendInternalError(c, "Failed to issue token")
		return
	}

	utils.SendSuccess(c, gin.H{
		"token":   token,
		"user_id": user.ID,
		"credits": user.Credits,
		"plan":    user.Plan,
	})
}
