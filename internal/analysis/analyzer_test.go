package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apostai/engine/internal/models"
)

type stubProvider struct {
	stats       map[int]*models.TeamStats
	h2h         []models.Fixture
	recent      map[int][]models.Fixture
	matchStats  map[int]*models.FixtureStatistics
	leagues     map[int]*models.League
	failAll     bool
	statsCalls  int
	recentCalls int
}

var errProviderDown = errors.New("provider down")

func (p *stubProvider) GetTeamStatistics(ctx context.Context, teamID, leagueID, season int) (*models.TeamStats, error) {
	p.statsCalls++
	if p.failAll {
		return nil, errProviderDown
	}
	return p.stats[teamID], nil
}

func (p *stubProvider) GetHeadToHead(ctx context.Context, teamAID, teamBID, limit int) ([]models.Fixture, error) {
	if p.failAll {
		return nil, errProviderDown
	}
	return p.h2h, nil
}

func (p *stubProvider) GetTeamRecentMatches(ctx context.Context, teamID, limit int) ([]models.Fixture, error) {
	p.recentCalls++
	if p.failAll {
		return nil, errProviderDown
	}
	return p.recent[teamID], nil
}

func (p *stubProvider) GetFixtureStatistics(ctx context.Context, fixtureID int) (*models.FixtureStatistics, error) {
	if p.failAll {
		return nil, errProviderDown
	}
	return p.matchStats[fixtureID], nil
}

func (p *stubProvider) GetTeamCurrentLeague(ctx context.Context, teamID int) (*models.League, error) {
	if p.failAll {
		return nil, errProviderDown
	}
	return p.leagues[teamID], nil
}

func analyzerFixture() models.Fixture {
	return models.Fixture{
		ID:       500,
		League:   models.League{ID: 71, Name: "La Liga", Country: "Spain", Season: 2025},
		HomeTeam: models.Team{ID: 1, Name: "Real Madrid"},
		AwayTeam: models.Team{ID: 2, Name: "Getafe"},
	}
}

func strongRecent(teamID, opponentID int) []models.Fixture {
	var matches []models.Fixture
	for i := 0; i < 8; i++ {
		matches = append(matches, models.Fixture{
			ID:        1000 + teamID*100 + i,
			League:    models.League{Name: "La Liga", Country: "Spain"},
			HomeTeam:  models.Team{ID: teamID},
			AwayTeam:  models.Team{ID: opponentID},
			HomeGoals: intPtr(2),
			AwayGoals: intPtr(1),
		})
	}
	return matches
}

func TestAnalyzeGameHappyPath(t *testing.T) {
	provider := &stubProvider{
		stats: map[int]*models.TeamStats{
			1: {Played: 20, Wins: 15, Draws: 3, Losses: 2, GoalsFor: 45, GoalsAgainst: 15},
			2: {Played: 20, Wins: 5, Draws: 5, Losses: 10, GoalsFor: 18, GoalsAgainst: 30},
		},
		h2h: []models.Fixture{
			playedMatch(1, 1, 2, 3, 0),
			playedMatch(2, 2, 1, 1, 2),
			playedMatch(3, 1, 2, 2, 2),
			playedMatch(4, 1, 2, 1, 0),
			playedMatch(5, 2, 1, 0, 4),
		},
		recent: map[int][]models.Fixture{
			1: strongRecent(1, 30),
			2: strongRecent(2, 31),
		},
	}

	engine := NewEngine(provider, testLogger())
	result, data := engine.AnalyzeGame(context.Background(), analyzerFixture())

	assert.False(t, result.Fallback)
	assert.Equal(t, 500, result.FixtureID)

	assert.GreaterOrEqual(t, result.Confidence, 45.0)
	assert.LessOrEqual(t, result.Confidence, 88.0)
	assert.GreaterOrEqual(t, result.TotalGoalsExpected, 1.5)
	assert.LessOrEqual(t, result.TotalGoalsExpected, 4.5)
	assert.GreaterOrEqual(t, result.BothTeamsToScore, 20.0)
	assert.LessOrEqual(t, result.BothTeamsToScore, 80.0)

	assert.Len(t, result.Insights, 4)
	assert.Len(t, result.HomeFormInsights, 3)
	assert.Len(t, result.AwayFormInsights, 3)
	assert.Len(t, result.H2HInsights, 3)
	require.NotNil(t, result.Structural)

	assert.NotEmpty(t, result.KeyPredictions.MostLikely)
	assert.NotEmpty(t, result.KeyPredictions.SurpriseFactor)
	assert.NotEmpty(t, result.KeyPredictions.SafetyBet)

	// Both teams won every recent match, so both forms are strong.
	assert.Equal(t, 100.0, data.HomeForm.WinRate)
	assert.Equal(t, 100.0, data.AwayForm.WinRate)
}

func TestAnalyzeGameFallbackWhenProviderDown(t *testing.T) {
	provider := &stubProvider{failAll: true}
	engine := NewEngine(provider, testLogger())

	result, _ := engine.AnalyzeGame(context.Background(), analyzerFixture())

	assert.True(t, result.Fallback)
	assert.Equal(t, 50.0, result.HomeTeamScore)
	assert.Equal(t, 50.0, result.AwayTeamScore)
	assert.Equal(t, 2.5, result.TotalGoalsExpected)
	assert.Equal(t, 45.0, result.BothTeamsToScore)
	assert.Equal(t, 40.0, result.Confidence)
	assert.Len(t, result.Insights, 4)
	assert.Len(t, result.HomeFormInsights, 3)
	assert.Len(t, result.AwayFormInsights, 3)
	assert.Len(t, result.H2HInsights, 3)
}

func TestAnalyzeGameToleratesPartialFailure(t *testing.T) {
	// Only recent matches resolve; stats and H2H come back empty. The
	// analysis still completes, just with lower confidence.
	provider := &stubProvider{
		recent: map[int][]models.Fixture{
			1: strongRecent(1, 30),
			2: strongRecent(2, 31),
		},
	}

	engine := NewEngine(provider, testLogger())
	result, data := engine.AnalyzeGame(context.Background(), analyzerFixture())

	assert.False(t, result.Fallback)
	assert.Nil(t, data.HomeStats)
	assert.GreaterOrEqual(t, result.Confidence, 45.0)
}

func TestStructuralSplit(t *testing.T) {
	tests := []struct {
		name       string
		difference float64
		home       float64
		away       float64
	}{
		{"overwhelming home", 200, 85, 15},
		{"large away", -120, 22, 78},
		{"clear home", 60, 68, 32},
		{"moderate home", 30, 56, 44},
		{"negligible", 10, 50, 50},
		{"zero", 0, 50, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home, away := structuralSplit(tt.difference)
			assert.InDelta(t, tt.home, home, 0.001)
			assert.InDelta(t, tt.away, away, 0.001)
		})
	}
}

func TestAnalysisConfidence(t *testing.T) {
	full := &AnalysisData{
		HomeStats:   &models.TeamStats{},
		AwayStats:   &models.TeamStats{},
		H2H:         make([]models.Fixture, 5),
		HomeMatches: make([]models.Fixture, 8),
		AwayMatches: make([]models.Fixture, 8),
	}
	assert.Equal(t, 80.0, analysisConfidence(full))

	empty := &AnalysisData{}
	assert.Equal(t, 60.0, analysisConfidence(empty))

	lopsided := &AnalysisData{
		HomeMatches: make([]models.Fixture, 10),
		AwayMatches: make([]models.Fixture, 2),
	}
	assert.Equal(t, 54.0, analysisConfidence(lopsided))
}
