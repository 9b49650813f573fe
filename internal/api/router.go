// Package api wires the HTTP surface: routes, handlers and middleware.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/apostai/engine/internal/analysis"
	"github.com/apostai/engine/internal/api/handlers"
	"github.com/apostai/engine/internal/api/middleware"
	"github.com/apostai/engine/internal/providers"
	"github.com/apostai/engine/internal/services"
	"github.com/apostai/engine/internal/suggestions"
	"github.com/apostai/engine/internal/websocket"
	"github.com/apostai/engine/pkg/config"
	"github.com/apostai/engine/pkg/database"
)

// Deps bundles the constructed services the routes need.
type Deps struct {
	DB       *database.DB
	Provider *providers.FootballDataClient
	Usage    *services.UsageService
	Hub      *websocket.AnalysisHub
	Metrics  *middleware.Metrics
	Logger   *logrus.Logger
}

// SetupRoutes configures all API routes on the given router group.
func SetupRoutes(group *gin.RouterGroup, cfg *config.Config, deps Deps) {
	engine := analysis.NewEngine(deps.Provider, deps.Logger)
	generator := suggestions.NewGenerator(deps.Provider, deps.Logger)

	teamsHandler := handlers.NewTeamsHandler(deps.Provider)
	authHandler := handlers.NewAuthHandler(deps.DB.DB, cfg.JWTSecret)
	usageHandler := handlers.NewUsageHandler(deps.Usage)
	analysisHandler := handlers.NewAnalysisHandler(deps.Provider, engine, generator, deps.Usage, deps.Hub, deps.Metrics, deps.Logger)

	// Public routes
	group.POST("/auth/login", authHandler.Login)
	group.GET("/teams/search", teamsHandler.SearchTeams)
	group.GET("/teams/:id/fixtures", teamsHandler.GetUpcomingFixtures)

	// Routes that need a resolved user
	user := group.Group("")
	user.Use(middleware.OptionalAuth(cfg.JWTSecret), middleware.ResolveUser(deps.DB.DB))
	{
		user.GET("/usage", usageHandler.GetProfile)
		user.GET("/usage/history", usageHandler.GetHistory)

		// Analysis routes also require a positive credit balance
		paid := user.Group("")
		paid.Use(middleware.CheckCredits())
		{
			paid.POST("/analysis", analysisHandler.AnalyzeGame)
			paid.POST("/analysis/suggestions", analysisHandler.GenerateSuggestions)
		}
	}
}
