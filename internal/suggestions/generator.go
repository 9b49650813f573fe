package suggestions

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/apostai/engine/internal/analysis"
	"github.com/apostai/engine/internal/models"
)

// Filtering thresholds.
const (
	minRealOdd         = 1.30
	minNoOddConfidence = 50.0
)

// MarketProvider is the slice of the football-data API the generator
// needs. Both calls are best-effort.
type MarketProvider interface {
	GetFixtureOdds(ctx context.Context, fixtureID int) (*models.FixtureOdds, error)
	GetLeagueTopScorers(ctx context.Context, leagueID, season int) ([]models.TopScorer, error)
}

// Input carries everything the rule table can inspect. The fetch-derived
// fields (Odds, Scorers, Rivalry) are populated by Generate itself.
type Input struct {
	Fixture      models.Fixture
	Analysis     models.GameAnalysis
	HomeForm     models.RecentForm
	AwayForm     models.RecentForm
	HomeMatches  []models.Fixture
	AwayMatches  []models.Fixture
	HomeStats    *models.TeamStats
	AwayStats    *models.TeamStats
	H2H          []models.Fixture
	HomeAverages *analysis.MatchAverages
	AwayAverages *analysis.MatchAverages

	Odds    *models.FixtureOdds
	Scorers []models.TopScorer
	Rivalry bool
}

func (in *Input) hasCardAverages() bool {
	return in.HomeAverages != nil && in.AwayAverages != nil
}

func (in *Input) combinedCards() float64 {
	var total float64
	if in.HomeAverages != nil {
		total += in.HomeAverages.Cards
	}
	if in.AwayAverages != nil {
		total += in.AwayAverages.Cards
	}
	return total
}

func (in *Input) combinedCorners() float64 {
	var total float64
	if in.HomeAverages != nil {
		total += in.HomeAverages.Corners
	}
	if in.AwayAverages != nil {
		total += in.AwayAverages.Corners
	}
	return total
}

// topScorerInFixture returns the first league top scorer who plays for
// one of the two teams, has double-digit goals, and whose team's attack
// is in scoring form.
func (in *Input) topScorerInFixture() *models.TopScorer {
	for i := range in.Scorers {
		scorer := &in.Scorers[i]
		if scorer.Goals < 10 {
			continue
		}
		switch scorer.TeamID {
		case in.Fixture.HomeTeam.ID:
			if in.HomeForm.AvgGoalsFor > 1.2 {
				return scorer
			}
		case in.Fixture.AwayTeam.ID:
			if in.AwayForm.AvgGoalsFor > 1.2 {
				return scorer
			}
		}
	}
	return nil
}

// Generator evaluates the suggestion rule table against an analysis.
type Generator struct {
	provider MarketProvider
	logger   *logrus.Logger
}

// NewGenerator creates a suggestion generator. A nil provider disables
// the odds and top-scorer rule branches.
func NewGenerator(provider MarketProvider, logger *logrus.Logger) *Generator {
	return &Generator{
		provider: provider,
		logger:   logger,
	}
}

// Generate evaluates every rule block and returns the filtered,
// risk-then-confidence sorted suggestion list. An empty result means no
// market cleared the thresholds for this fixture, which is a valid
// outcome, not an error.
func (g *Generator) Generate(ctx context.Context, in *Input) []models.BetSuggestion {
	g.fetchMarketData(ctx, in)
	in.Rivalry = analysis.IsRivalry(in.Fixture.HomeTeam.Name, in.Fixture.AwayTeam.Name)

	strengthGap := math.Abs(in.Analysis.HomeTeamScore - in.Analysis.AwayTeamScore)

	suggestions := make([]models.BetSuggestion, 0, len(ruleTable))
	for _, r := range ruleTable {
		if !r.when(in) {
			continue
		}
		c := r.build(in)

		suggestion := models.BetSuggestion{
			ID:            uuid.NewString(),
			Type:          r.category,
			Market:        c.market,
			Selection:     c.selection,
			Reasoning:     c.reasoning,
			Confidence:    c.confidence,
			Criteria:      c.criteria,
			PlayerName:    c.playerName,
			HandicapValue: c.handicap,
		}

		oddValue := r.oddValue
		if oddValue == "" {
			oddValue = c.playerName
		}
		if odd, ok := findOdd(in.Odds, r.oddMarket, oddValue); ok {
			suggestion.RealOdd = &odd
			suggestion.Bookmaker = in.Odds.Bookmaker
			suggestion.RiskLevel = riskFromOdd(odd)
		} else {
			suggestion.RiskLevel = riskFromConfidence(c.confidence, strengthGap)
		}

		if suggestion.RealOdd != nil && *suggestion.RealOdd < minRealOdd {
			continue
		}
		if suggestion.RealOdd == nil && suggestion.Confidence < minNoOddConfidence {
			continue
		}

		suggestions = append(suggestions, suggestion)
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		ri, rj := models.RiskRank(suggestions[i].RiskLevel), models.RiskRank(suggestions[j].RiskLevel)
		if ri != rj {
			return ri < rj
		}
		return suggestions[i].Confidence > suggestions[j].Confidence
	})

	return suggestions
}

// fetchMarketData pulls odds and top scorers best-effort. Failures only
// disable the rule branches that need them.
func (g *Generator) fetchMarketData(ctx context.Context, in *Input) {
	if g.provider == nil {
		return
	}

	if in.Odds == nil {
		odds, err := g.provider.GetFixtureOdds(ctx, in.Fixture.ID)
		if err != nil {
			g.logger.WithFields(logrus.Fields{
				"component":  "suggestions",
				"fixture_id": in.Fixture.ID,
			}).Warnf("Odds fetch failed, using confidence-based risk: %v", err)
		} else {
			in.Odds = odds
		}
	}

	if in.Scorers == nil {
		scorers, err := g.provider.GetLeagueTopScorers(ctx, in.Fixture.League.ID, in.Fixture.League.Season)
		if err != nil {
			g.logger.WithFields(logrus.Fields{
				"component":  "suggestions",
				"fixture_id": in.Fixture.ID,
				"league_id":  in.Fixture.League.ID,
			}).Warnf("Top scorers fetch failed, skipping player markets: %v", err)
		} else {
			in.Scorers = scorers
		}
	}
}

// findOdd scans the bookmaker odds tree for a market/value pair.
func findOdd(odds *models.FixtureOdds, market, value string) (float64, bool) {
	if odds == nil || market == "" || value == "" {
		return 0, false
	}
	for _, m := range odds.Markets {
		if !strings.EqualFold(m.Name, market) {
			continue
		}
		for _, v := range m.Values {
			if strings.EqualFold(v.Value, value) {
				return v.Odd, true
			}
		}
	}
	return 0, false
}
