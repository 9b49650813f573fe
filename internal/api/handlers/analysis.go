package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/apostai/engine/internal/analysis"
	"github.com/apostai/engine/internal/api/middleware"
	"github.com/apostai/engine/internal/models"
	"github.com/apostai/engine/internal/providers"
	"github.com/apostai/engine/internal/services"
	"github.com/apostai/engine/internal/suggestions"
	"github.com/apostai/engine/internal/websocket"
	"github.com/apostai/engine/pkg/utils"
)

type AnalysisHandler struct {
	provider  *providers.FootballDataClient
	engine    *analysis.Engine
	generator *suggestions.Generator
	usage     *services.UsageService
	hub       *websocket.AnalysisHub
	metrics   *middleware.Metrics
	logger    *logrus.Logger
}

func NewAnalysisHandler(provider *providers.FootballDataClient, engine *analysis.Engine, generator *suggestions.Generator, usage *services.UsageService, hub *websocket.AnalysisHub, metrics *middleware.Metrics, logger *logrus.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		provider:  provider,
		engine:    engine,
		generator: generator,
		usage:     usage,
		hub:       hub,
		metrics:   metrics,
		logger:    logger,
	}
}

type analyzeRequest struct {
	FixtureID int `json:"fixture_id" binding:"required"`
}

// AnalyzeGame runs the full analysis for a fixture and debits one credit.
func (h *AnalysisHandler) AnalyzeGame(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	fixture, err := h.provider.GetFixture(c.Request.Context(), req.FixtureID)
	if err != nil {
		utils.SendInternalError(c, "Failed to load fixture")
		return
	}
	if fixture == nil {
		utils.SendNotFound(c, "Fixture not found")
		return
	}

	user := c.MustGet("user").(*models.User)
	if err := h.usage.ConsumeCredit(user.ID); err != nil {
		if errors.Is(err, models.ErrNoCredits) {
			utils.SendPaymentRequired(c, "No analysis credits remaining")
			return
		}
		utils.SendInternalError(c, "Failed to debit credit")
		return
	}
	h.metrics.CreditsConsumed.Inc()

	result, _ := h.engine.AnalyzeGame(c.Request.Context(), *fixture)

	outcome := "ok"
	if result.Fallback {
		outcome = "fallback"
	}
	h.metrics.AnalysesTotal.WithLabelValues(outcome).Inc()
	h.metrics.AnalysisConfidence.Observe(result.Confidence)

	h.usage.RecordAnalysis(user.ID, *fixture, result)
	h.hub.BroadcastAnalysis(fixture.ID, result)

	utils.SendSuccess(c, result)
}

// GenerateSuggestions builds the ranked suggestion list for a fixture.
// Unlike AnalyzeGame this does not degrade silently: a failure to build
// the underlying analysis is surfaced as an error.
func (h *AnalysisHandler) GenerateSuggestions(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	fixture, err := h.provider.GetFixture(c.Request.Context(), req.FixtureID)
	if err != nil {
		utils.SendInternalError(c, "Failed to load fixture")
		return
	}
	if fixture == nil {
		utils.SendNotFound(c, "Fixture not found")
		return
	}

	result, data := h.engine.AnalyzeGame(c.Request.Context(), *fixture)
	if result.Fallback {
		utils.SendError(c, 503, utils.NewAppError(utils.ErrCodeInternal, "Could not generate suggestions", "match data unavailable"))
		return
	}

	in := &suggestions.Input{
		Fixture:      *fixture,
		Analysis:     result,
		HomeForm:     data.HomeForm,
		AwayForm:     data.AwayForm,
		HomeMatches:  data.HomeMatches,
		AwayMatches:  data.AwayMatches,
		HomeStats:    data.HomeStats,
		AwayStats:    data.AwayStats,
		H2H:          data.H2H,
		HomeAverages: data.HomeAverages,
		AwayAverages: data.AwayAverages,
	}
	list := h.generator.Generate(c.Request.Context(), in)
	h.metrics.SuggestionsEmitted.Observe(float64(len(list)))

	utils.SendSuccess(c, gin.H{
		"fixture_id":  fixture.ID,
		"suggestions": list,
	})
}
