package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/apostai/engine/internal/models"
)

type stubResolver struct {
	leagues map[int]*models.League
	err     error
}

func (r *stubResolver) GetTeamCurrentLeague(ctx context.Context, teamID int) (*models.League, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.leagues[teamID], nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func fixtureBetween(home, away models.Team, league models.League) models.Fixture {
	return models.Fixture{
		ID:       99,
		League:   league,
		HomeTeam: home,
		AwayTeam: away,
	}
}

func TestAnalyzeStructuralStrengthAdvantage(t *testing.T) {
	// Giant in a top league at home against a fourth-tier unknown.
	fixture := fixtureBetween(
		models.Team{ID: 1, Name: "Real Madrid"},
		models.Team{ID: 2, Name: "CD Quintanar"},
		models.League{Name: "Copa del Rey", Country: "Spain"},
	)

	result := AnalyzeStructuralStrength(context.Background(), fixture, nil, nil, nil, testLogger())

	assert.Equal(t, models.AdvantageHome, result.Comparison.Advantage)
	assert.Greater(t, result.Comparison.Difference, float64(advantageThreshold))
	assert.GreaterOrEqual(t, result.Comparison.Confidence, 50.0)
	assert.LessOrEqual(t, result.Comparison.Confidence, 95.0)
	assert.Len(t, result.Comparison.Insights, 3)

	// Home FFS components for a giant: prestige 40, squad 30, cup bonus
	// 20 plus home bonus 15.
	assert.Equal(t, float64(40), result.Home.Prestige)
	assert.Equal(t, float64(30), result.Home.SquadStrength)
	assert.Equal(t, float64(35), result.Home.ContextBonus)
}

func TestAnalyzeStructuralStrengthBalancedAtThreshold(t *testing.T) {
	// Identical teams in the same league differ by exactly the home
	// context bonus being absent: equal prestige 0, equal league.
	fixture := fixtureBetween(
		models.Team{ID: 1, Name: "Team A"},
		models.Team{ID: 2, Name: "Team B"},
		models.League{Name: "Eredivisie", Country: "Netherlands"},
	)

	result := AnalyzeStructuralStrength(context.Background(), fixture, nil, nil, nil, testLogger())

	assert.Equal(t, models.AdvantageBalanced, result.Comparison.Advantage)
	assert.Zero(t, result.Comparison.Difference)
	assert.Equal(t, 60.0, result.Comparison.Confidence)
}

func TestAnalyzeStructuralStrengthConfidenceClamp(t *testing.T) {
	// A difference over 70 saturates confidence at 95.
	fixture := fixtureBetween(
		models.Team{ID: 1, Name: "Manchester City"},
		models.Team{ID: 2, Name: "Harrogate Town"},
		models.League{Name: "FA Cup", Country: "England"},
	)

	resolver := &stubResolver{leagues: map[int]*models.League{
		1: {Name: "Premier League", Country: "England"},
		2: {Name: "League Two", Country: "England"},
	}}

	result := AnalyzeStructuralStrength(context.Background(), fixture, nil, nil, resolver, testLogger())

	assert.Equal(t, models.AdvantageHome, result.Comparison.Advantage)
	assert.Equal(t, 95.0, result.Comparison.Confidence)
	assert.Equal(t, float64(120), result.Home.LeagueWeight)
	assert.Equal(t, float64(30), result.Away.LeagueWeight)
}

func TestAnalyzeStructuralStrengthResolverFallback(t *testing.T) {
	fixture := fixtureBetween(
		models.Team{ID: 1, Name: "Team A"},
		models.Team{ID: 2, Name: "Team B"},
		models.League{Name: "FA Cup", Country: "England"},
	)

	// Resolution failure silently falls back to the fixture league for
	// both sides, keeping the comparison symmetric.
	resolver := &stubResolver{err: errors.New("provider down")}
	result := AnalyzeStructuralStrength(context.Background(), fixture, nil, nil, resolver, testLogger())

	assert.Equal(t, result.Home.LeagueWeight, result.Away.LeagueWeight)
	assert.Equal(t, models.AdvantageBalanced, result.Comparison.Advantage)
}

func TestAnalyzeStructuralStrengthIdempotent(t *testing.T) {
	fixture := fixtureBetween(
		models.Team{ID: 1, Name: "Benfica"},
		models.Team{ID: 2, Name: "Porto"},
		models.League{Name: "Primeira Liga", Country: "Portugal"},
	)
	matches := []models.Fixture{
		playedMatch(11, 1, 3, 2, 0),
		playedMatch(12, 4, 1, 1, 1),
	}

	first := AnalyzeStructuralStrength(context.Background(), fixture, matches, nil, nil, testLogger())
	second := AnalyzeStructuralStrength(context.Background(), fixture, matches, nil, nil, testLogger())
	assert.Equal(t, first, second)
}

func TestResultAdjustmentBuckets(t *testing.T) {
	const teamID = 1
	// Own weight 100; opponent league weight 120 (> +20): a win there
	// scores +20.
	winUp := []models.Fixture{{
		ID:        1,
		League:    models.League{Name: "Premier League", Country: "England"},
		HomeTeam:  models.Team{ID: teamID},
		AwayTeam:  models.Team{ID: 2},
		HomeGoals: intPtr(2),
		AwayGoals: intPtr(0),
	}}
	assert.Equal(t, 20.0, resultAdjustment(winUp, teamID, 90))

	// Loss against much weaker opposition scores -20.
	lossDown := []models.Fixture{{
		ID:        2,
		League:    models.League{Name: "League Two", Country: "England"},
		HomeTeam:  models.Team{ID: teamID},
		AwayTeam:  models.Team{ID: 2},
		HomeGoals: intPtr(0),
		AwayGoals: intPtr(1),
	}}
	assert.Equal(t, -20.0, resultAdjustment(lossDown, teamID, 90))

	assert.Zero(t, resultAdjustment(nil, teamID, 90))
}

func TestSquadStrengthBuckets(t *testing.T) {
	assert.Equal(t, 30.0, squadStrength(40))
	assert.Equal(t, 15.0, squadStrength(20))
	assert.Equal(t, 5.0, squadStrength(10))
	assert.Zero(t, squadStrength(0))
}
