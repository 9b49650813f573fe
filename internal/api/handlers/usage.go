package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/apostai/engine/internal/models"
	"github.com/apostai/engine/internal/services"
	"github.com/apostai/engine/pkg/utils"
)

type UsageHandler struct {
	usage *services.UsageService
}

func NewUsageHandler(usage *services.UsageService) *UsageHandler {
	return &UsageHandler{
		usage: usage,
	}
}

// GetProfile returns the requesting user's balance and plan.
func (h *UsageHandler) GetProfile(c *gin.Context) {
	user := c.MustGet("user").(*models.User)
	utils.SendSuccess(c, gin.H{
		"user_id": user.ID,
		"email":   user.Email,
		"credits": user.Credits,
		"plan":    user.Plan,
	})
}

// GetHistory returns the user's most recent analyses.
func (h *UsageHandler) GetHistory(c *gin.Context) {
	user := c.MustGet("user").(*models.User)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	records, err := h.usage.History(user.ID, limit)
	if err != nil {
		utils.SendInternalError(c, "Failed to load analysis history")
		return
	}
	utils.SendSuccessWithMeta(c, records, &utils.Meta{
		Count: len(records),
		Limit: limit,
	})
}
