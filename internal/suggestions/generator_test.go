package suggestions

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apostai/engine/internal/models"
)

type stubMarketProvider struct {
	odds    *models.FixtureOdds
	scorers []models.TopScorer
	err     error
}

func (p *stubMarketProvider) GetFixtureOdds(ctx context.Context, fixtureID int) (*models.FixtureOdds, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.odds, nil
}

func (p *stubMarketProvider) GetLeagueTopScorers(ctx context.Context, leagueID, season int) ([]models.TopScorer, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.scorers, nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func baseInput() *Input {
	return &Input{
		Fixture: models.Fixture{
			ID:       500,
			League:   models.League{ID: 140, Name: "La Liga", Country: "Spain", Season: 2025},
			HomeTeam: models.Team{ID: 1, Name: "Osasuna"},
			AwayTeam: models.Team{ID: 2, Name: "Getafe"},
		},
		Analysis: models.GameAnalysis{
			FixtureID:          500,
			HomeTeamScore:      52,
			AwayTeamScore:      48,
			TotalGoalsExpected: 2.4,
			BothTeamsToScore:   50,
			Confidence:         70,
		},
		HomeForm:  models.RecentForm{Played: 8, Wins: 3, Draws: 3, Losses: 2, WinRate: 40, AvgGoalsFor: 1.4, AvgGoalsAgainst: 1.2},
		AwayForm:  models.RecentForm{Played: 8, Wins: 4, Draws: 1, Losses: 3, WinRate: 50, AvgGoalsFor: 1.6, AvgGoalsAgainst: 1.0},
		HomeStats: &models.TeamStats{Played: 20},
		AwayStats: &models.TeamStats{Played: 20},
		H2H:       make([]models.Fixture, 3),
	}
}

func TestGenerateEmitsDrawForBalancedFixture(t *testing.T) {
	gen := NewGenerator(&stubMarketProvider{}, testLogger())
	list := gen.Generate(context.Background(), baseInput())

	var draw *models.BetSuggestion
	for i := range list {
		if list[i].Type == models.SuggestionResult && list[i].Selection == "Empate" {
			draw = &list[i]
		}
	}
	require.NotNil(t, draw, "balanced fixture must produce a draw suggestion")
	assert.GreaterOrEqual(t, draw.Confidence, 50.0)
	assert.NotEmpty(t, draw.Reasoning)
	assert.NotEmpty(t, draw.Criteria)
	assert.NotEmpty(t, draw.ID)
}

func TestGenerateSortedByRiskThenConfidence(t *testing.T) {
	in := baseInput()
	in.Analysis.TotalGoalsExpected = 3.1
	in.Analysis.BothTeamsToScore = 65
	in.HomeForm.AvgGoalsFor = 2.2
	in.AwayForm.AvgGoalsAgainst = 1.4

	gen := NewGenerator(&stubMarketProvider{}, testLogger())
	list := gen.Generate(context.Background(), in)
	require.NotEmpty(t, list)

	for i := 1; i < len(list); i++ {
		prev, curr := list[i-1], list[i]
		prevRank, currRank := models.RiskRank(prev.RiskLevel), models.RiskRank(curr.RiskLevel)
		assert.LessOrEqual(t, prevRank, currRank, "risk tiers must be non-decreasing")
		if prevRank == currRank {
			assert.GreaterOrEqual(t, prev.Confidence, curr.Confidence, "confidence must be non-increasing within a tier")
		}
	}
}

func TestGenerateFilterInvariants(t *testing.T) {
	in := baseInput()
	in.Analysis.TotalGoalsExpected = 3.1
	in.Analysis.BothTeamsToScore = 65

	gen := NewGenerator(&stubMarketProvider{
		odds: &models.FixtureOdds{
			FixtureID: 500,
			Bookmaker: "Bet365",
			Markets: []models.OddMarket{
				{Name: "Goals Over/Under", Values: []models.OddValue{
					{Value: "Over 1.5", Odd: 1.12}, // below the floor, must be dropped
					{Value: "Over 2.5", Odd: 1.85},
				}},
				{Name: "Both Teams Score", Values: []models.OddValue{
					{Value: "Yes", Odd: 1.60},
				}},
			},
		},
	}, testLogger())
	list := gen.Generate(context.Background(), in)

	for _, s := range list {
		if s.RealOdd != nil {
			assert.GreaterOrEqual(t, *s.RealOdd, 1.30)
		} else {
			assert.GreaterOrEqual(t, s.Confidence, 50.0)
		}
		assert.NotEmpty(t, s.RiskLevel)
	}

	// The priced Over 1.5 at 1.12 must not appear even though its gate fired.
	for _, s := range list {
		assert.NotEqual(t, "Mais de 1.5 gols", s.Selection)
	}

	// Priced suggestions carry the bookmaker.
	for _, s := range list {
		if s.RealOdd != nil {
			assert.Equal(t, "Bet365", s.Bookmaker)
		}
	}
}

func TestGenerateAwayWinBlockedByStructuralAdvantage(t *testing.T) {
	in := baseInput()
	in.Analysis.HomeTeamScore = 40
	in.Analysis.AwayTeamScore = 60
	in.AwayForm.WinRate = 60
	in.Analysis.Structural = &models.StructuralAnalysis{
		Comparison: models.StructuralComparison{
			Difference: 80,
			Advantage:  models.AdvantageHome,
		},
	}

	gen := NewGenerator(&stubMarketProvider{}, testLogger())
	list := gen.Generate(context.Background(), in)

	for _, s := range list {
		assert.NotEqual(t, "Vitória do Getafe", s.Selection, "away win must not contradict a strong home structural advantage")
		assert.NotEqual(t, "Getafe ou empate", s.Selection)
	}
}

func TestGenerateAwayWinAllowedWithoutContradiction(t *testing.T) {
	in := baseInput()
	in.Analysis.HomeTeamScore = 40
	in.Analysis.AwayTeamScore = 60
	in.AwayForm.WinRate = 60

	gen := NewGenerator(&stubMarketProvider{}, testLogger())
	list := gen.Generate(context.Background(), in)

	found := false
	for _, s := range list {
		if s.Selection == "Vitória do Getafe" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestGeneratePlayerMarketFromTopScorers(t *testing.T) {
	in := baseInput()
	in.HomeForm.AvgGoalsFor = 1.8

	gen := NewGenerator(&stubMarketProvider{
		scorers: []models.TopScorer{
			{PlayerName: "Ante Budimir", TeamID: 1, TeamName: "Osasuna", Goals: 14},
		},
	}, testLogger())
	list := gen.Generate(context.Background(), in)

	var player *models.BetSuggestion
	for i := range list {
		if list[i].Type == models.SuggestionPlayer {
			player = &list[i]
		}
	}
	require.NotNil(t, player)
	assert.Equal(t, "Ante Budimir", player.PlayerName)
}

func TestGenerateToleratesMarketFetchFailure(t *testing.T) {
	gen := NewGenerator(&stubMarketProvider{err: errors.New("odds api down")}, testLogger())
	list := gen.Generate(context.Background(), baseInput())

	// Odds-dependent branches degrade; everything emitted is odd-less.
	for _, s := range list {
		assert.Nil(t, s.RealOdd)
		assert.Empty(t, s.Bookmaker)
	}
}

func TestGenerateEmptyResultIsValid(t *testing.T) {
	in := baseInput()
	// A data-starved, featureless fixture: the few gates that still fire
	// lose so much confidence to the missing data that the filter drops
	// everything.
	in.Analysis.HomeTeamScore = 51
	in.Analysis.AwayTeamScore = 49
	in.Analysis.TotalGoalsExpected = 2.2
	in.Analysis.BothTeamsToScore = 50
	in.HomeForm = models.RecentForm{NoRecentMatches: true}
	in.AwayForm = models.RecentForm{NoRecentMatches: true}
	in.HomeStats = nil
	in.AwayStats = nil
	in.H2H = nil

	gen := NewGenerator(&stubMarketProvider{}, testLogger())
	list := gen.Generate(context.Background(), in)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestRiskFromOdd(t *testing.T) {
	assert.Equal(t, models.RiskLow, riskFromOdd(1.30))
	assert.Equal(t, models.RiskLow, riskFromOdd(1.34))
	assert.Equal(t, models.RiskMedium, riskFromOdd(1.40))
	assert.Equal(t, models.RiskMedium, riskFromOdd(1.50))
	assert.Equal(t, models.RiskHigh, riskFromOdd(1.55))
	assert.Equal(t, models.RiskHigh, riskFromOdd(1.70))
	assert.Equal(t, models.RiskExtreme, riskFromOdd(1.71))
	assert.Equal(t, models.RiskExtreme, riskFromOdd(3.50))
}

func TestCalculateRealisticConfidence(t *testing.T) {
	full := baseInput()
	assert.Equal(t, 70.0, calculateRealisticConfidence(70, full))

	thin := baseInput()
	thin.HomeStats = nil
	thin.H2H = nil
	thin.HomeForm.Played = 3
	// 70 - 8 (missing stats) - 6 (shallow sample) - 5 (no H2H) = 51
	assert.Equal(t, 51.0, calculateRealisticConfidence(70, thin))

	floor := baseInput()
	floor.HomeStats = nil
	floor.AwayStats = nil
	floor.H2H = nil
	floor.HomeForm = models.RecentForm{NoRecentMatches: true}
	floor.AwayForm = models.RecentForm{NoRecentMatches: true}
	assert.Equal(t, 35.0, calculateRealisticConfidence(40, floor))
}
