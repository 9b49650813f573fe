package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/apostai/engine/internal/models"
)

// FixtureSource is the provider slice the refresher warms the cache
// through. Calls go through the normal cache-aside path, so a fetch both
// refreshes the data and repopulates the cache entry.
type FixtureSource interface {
	GetUpcomingFixtures(ctx context.Context, teamID int) ([]models.Fixture, error)
	GetTeamRecentMatches(ctx context.Context, teamID, limit int) ([]models.Fixture, error)
}

// RefreshNotifier receives a signal after every completed refresh pass.
type RefreshNotifier interface {
	BroadcastRefresh(teamIDs []int)
}

// RefreshService periodically re-fetches fixtures for the tracked teams
// so interactive analyses hit a warm cache.
type RefreshService struct {
	source   FixtureSource
	notifier RefreshNotifier
	cache    *CacheService
	cron     *cron.Cron
	logger   *logrus.Logger
	teamIDs  []int
	schedule string
	lastRun  time.Time
}

// NewRefreshService creates the scheduled refresher. notifier may be nil.
func NewRefreshService(source FixtureSource, cache *CacheService, notifier RefreshNotifier, teamIDs []int, schedule string, logger *logrus.Logger) *RefreshService {
	return &RefreshService{
		source:   source,
		notifier: notifier,
		cache:    cache,
		cron:     cron.New(),
		logger:   logger,
		teamIDs:  teamIDs,
		schedule: schedule,
	}
}

// Start registers the cron entry and begins scheduling.
func (s *RefreshService) Start() error {
	if len(s.teamIDs) == 0 {
		s.logger.Info("No tracked teams configured, fixture refresher disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.refreshAll); err != nil {
		return fmt.Errorf("failed to schedule fixture refresh: %w", err)
	}

	s.cron.Start()
	s.logger.WithFields(logrus.Fields{
		"component": "refresher",
		"schedule":  s.schedule,
		"teams":     len(s.teamIDs),
	}).Info("Fixture refresher started")
	return nil
}

// Stop halts scheduling and waits for a running pass to finish.
func (s *RefreshService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Fixture refresher stopped")
}

// RefreshNow runs one refresh pass immediately, outside the schedule.
func (s *RefreshService) RefreshNow() {
	s.refreshAll()
}

func (s *RefreshService) refreshAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	refreshed := 0
	for _, teamID := range s.teamIDs {
		// Drop the stale entries first so the provider fetch rebuilds them.
		if s.cache != nil {
			s.cache.Delete(ctx, UpcomingFixturesCacheKey(teamID))
			s.cache.Delete(ctx, RecentMatchesCacheKey(teamID, 10))
		}

		if _, err := s.source.GetUpcomingFixtures(ctx, teamID); err != nil {
			s.logger.WithField("team_id", teamID).Warnf("Upcoming fixtures refresh failed: %v", err)
			continue
		}
		if _, err := s.source.GetTeamRecentMatches(ctx, teamID, 10); err != nil {
			s.logger.WithField("team_id", teamID).Warnf("Recent matches refresh failed: %v", err)
			continue
		}
		refreshed++
	}

	s.lastRun = time.Now()
	s.logger.WithFields(logrus.Fields{
		"component": "refresher",
		"refreshed": refreshed,
		"tracked":   len(s.teamIDs),
	}).Info("Fixture refresh pass completed")

	if s.notifier != nil && refreshed > 0 {
		s.notifier.BroadcastRefresh(s.teamIDs)
	}
}

// Status reports scheduler state for the health endpoint.
func (s *RefreshService) Status() map[string]interface{} {
	return map[string]interface{}{
		"schedule":      s.schedule,
		"tracked_teams": len(s.teamIDs),
		"cron_jobs":     len(s.cron.Entries()),
		"last_run":      s.lastRun,
	}
}
