package analysis

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/apostai/engine/internal/models"
)

// LeagueResolver resolves the league a team currently plays in. Cup ties
// in England can pair teams from different tiers, so the fixture's league
// alone may misstate either side's strength.
type LeagueResolver interface {
	GetTeamCurrentLeague(ctx context.Context, teamID int) (*models.League, error)
}

// Structural comparison policy constants.
const (
	advantageThreshold       = 50
	structuralBaseConfidence = 60
	structuralConfidenceMin  = 50
	structuralConfidenceMax  = 95
)

// AnalyzeStructuralStrength computes both teams' Final Structural Force
// and compares them. It never fails: league-resolution errors fall back
// silently to the fixture's league for both teams.
func AnalyzeStructuralStrength(ctx context.Context, fixture models.Fixture, homeMatches, awayMatches []models.Fixture, resolver LeagueResolver, logger *logrus.Logger) models.StructuralAnalysis {
	homeLeague := fixture.League
	awayLeague := fixture.League

	// English cups mix tiers; resolve each side's own league when possible.
	if resolver != nil && isEnglishLeague(fixture.League) {
		if league, err := resolver.GetTeamCurrentLeague(ctx, fixture.HomeTeam.ID); err == nil && league != nil {
			homeLeague = *league
		} else if err != nil && logger != nil {
			logger.WithField("team_id", fixture.HomeTeam.ID).Debugf("League resolution failed, using fixture league: %v", err)
		}
		if league, err := resolver.GetTeamCurrentLeague(ctx, fixture.AwayTeam.ID); err == nil && league != nil {
			awayLeague = *league
		} else if err != nil && logger != nil {
			logger.WithField("team_id", fixture.AwayTeam.ID).Debugf("League resolution failed, using fixture league: %v", err)
		}
	}

	home := teamStructure(fixture, fixture.HomeTeam, homeLeague, homeMatches, true)
	away := teamStructure(fixture, fixture.AwayTeam, awayLeague, awayMatches, false)

	difference := home.TotalFFS - away.TotalFFS

	advantage := models.AdvantageBalanced
	if difference > advantageThreshold {
		advantage = models.AdvantageHome
	} else if difference < -advantageThreshold {
		advantage = models.AdvantageAway
	}

	confidence := clamp(structuralBaseConfidence+math.Abs(difference)*0.5, structuralConfidenceMin, structuralConfidenceMax)

	insights := structuralInsights(fixture, home, away, difference, advantage)

	return models.StructuralAnalysis{
		Home: home,
		Away: away,
		Comparison: models.StructuralComparison{
			Difference: difference,
			Advantage:  advantage,
			Confidence: confidence,
			Insights:   insights,
		},
	}
}

func isEnglishLeague(league models.League) bool {
	return strings.EqualFold(league.Country, "england")
}

func teamStructure(fixture models.Fixture, team models.Team, league models.League, matches []models.Fixture, isHome bool) models.TeamStructure {
	prestige := Prestige(team.Name)
	leagueWeight := LeagueWeight(league.Name, league.Country)

	s := models.TeamStructure{
		LeagueWeight:     leagueWeight,
		Prestige:         prestige,
		OpponentQuality:  opponentQuality(matches, team.ID),
		ResultAdjustment: resultAdjustment(matches, team.ID, leagueWeight),
		SquadStrength:    squadStrength(prestige),
		ContextBonus:     contextBonus(fixture, prestige, isHome),
	}
	s.TotalFFS = s.LeagueWeight + s.Prestige + s.OpponentQuality + s.ResultAdjustment + s.SquadStrength + s.ContextBonus
	return s
}

// opponentQuality averages, over the last 5 matches, a score derived from
// each opponent's league weight plus half its prestige.
func opponentQuality(matches []models.Fixture, teamID int) float64 {
	considered := lastN(matches, 5)
	if len(considered) == 0 {
		return 0
	}

	total := 0.0
	for _, match := range considered {
		opponent := opponentOf(match, teamID)
		weight := LeagueWeight(match.League.Name, match.League.Country)

		var score float64
		switch {
		case weight >= 100:
			score = 25
		case weight >= 70:
			score = 15
		case weight >= 50:
			score = 5
		}
		score += Prestige(opponent.Name) / 2
		total += score
	}
	return total / float64(len(considered))
}

// resultAdjustment averages a signed adjustment over the last 5 matches,
// rewarding results against stronger opposition and punishing slips
// against weaker sides. Tiers bucket at ±20 league-weight difference.
func resultAdjustment(matches []models.Fixture, teamID int, ownWeight float64) float64 {
	considered := lastN(matches, 5)
	if len(considered) == 0 {
		return 0
	}

	total := 0.0
	counted := 0
	for _, match := range considered {
		if match.HomeGoals == nil || match.AwayGoals == nil {
			continue
		}

		var scored, conceded int
		if match.HomeTeam.ID == teamID {
			scored, conceded = *match.HomeGoals, *match.AwayGoals
		} else if match.AwayTeam.ID == teamID {
			scored, conceded = *match.AwayGoals, *match.HomeGoals
		} else {
			continue
		}

		oppWeight := LeagueWeight(match.League.Name, match.League.Country)
		diff := oppWeight - ownWeight

		switch {
		case scored > conceded: // win
			switch {
			case diff > 20:
				total += 20
			case diff < -20:
				total += -5
			default:
				total += 10
			}
		case scored == conceded: // draw
			switch {
			case diff > 20:
				total += 5
			case diff < -20:
				total += -10
			default:
				total += 0
			}
		default: // loss
			switch {
			case diff > 20:
				total += -5
			case diff < -20:
				total += -20
			default:
				total += -10
			}
		}
		counted++
	}

	if counted == 0 {
		return 0
	}
	return total / float64(counted)
}

// squadStrength is a prestige-bucketed proxy for roster depth.
func squadStrength(prestige float64) float64 {
	switch {
	case prestige >= 40:
		return 30
	case prestige >= 20:
		return 15
	case prestige >= 10:
		return 5
	default:
		return 0
	}
}

func contextBonus(fixture models.Fixture, prestige float64, isHome bool) float64 {
	bonus := 0.0
	if IsCupCompetition(fixture.League.Name) && prestige >= 20 {
		bonus += 20
	}
	if isHome && prestige >= 20 {
		bonus += 15
	}
	if IsFriendly(fixture.League.Name) {
		bonus -= 10
	}
	return bonus
}

func structuralInsights(fixture models.Fixture, home, away models.TeamStructure, difference float64, advantage string) []string {
	insights := []string{
		fmt.Sprintf("%s: liga %.0f, prestígio %.0f, qualidade de adversários %.1f, ajuste de resultados %.1f, elenco %.0f, contexto %.0f (FFS %.1f)",
			fixture.HomeTeam.Name, home.LeagueWeight, home.Prestige, home.OpponentQuality, home.ResultAdjustment, home.SquadStrength, home.ContextBonus, home.TotalFFS),
		fmt.Sprintf("%s: liga %.0f, prestígio %.0f, qualidade de adversários %.1f, ajuste de resultados %.1f, elenco %.0f, contexto %.0f (FFS %.1f)",
			fixture.AwayTeam.Name, away.LeagueWeight, away.Prestige, away.OpponentQuality, away.ResultAdjustment, away.SquadStrength, away.ContextBonus, away.TotalFFS),
	}

	switch advantage {
	case models.AdvantageHome:
		insights = append(insights, fmt.Sprintf("Vantagem estrutural do %s (diferença %.1f)", fixture.HomeTeam.Name, difference))
	case models.AdvantageAway:
		insights = append(insights, fmt.Sprintf("Vantagem estrutural do %s (diferença %.1f)", fixture.AwayTeam.Name, -difference))
	default:
		insights = append(insights, fmt.Sprintf("Forças estruturais equilibradas (diferença %.1f)", difference))
	}

	return insights
}

func opponentOf(match models.Fixture, teamID int) models.Team {
	if match.HomeTeam.ID == teamID {
		return match.AwayTeam
	}
	return match.HomeTeam
}

func lastN(matches []models.Fixture, n int) []models.Fixture {
	if len(matches) > n {
		return matches[:n]
	}
	return matches
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
