package analysis

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/apostai/engine/internal/models"
)

// MatchAverages carries the real per-match corner/card averages gathered
// from a team's recent fixture statistics. Nil when none could be fetched.
type MatchAverages struct {
	Corners float64 `json:"corners"`
	Cards   float64 `json:"cards"`
	Sampled int     `json:"sampled"`
}

// adjustmentInput is everything the traditional scoring pass can see.
type adjustmentInput struct {
	Fixture      models.Fixture
	HomeForm     models.RecentForm
	AwayForm     models.RecentForm
	HomeStats    *models.TeamStats
	AwayStats    *models.TeamStats
	H2H          []models.Fixture
	HomeMatches  []models.Fixture
	AwayMatches  []models.Fixture
	HomeAverages *MatchAverages
	AwayAverages *MatchAverages
	Structural   models.StructuralAnalysis
}

// scoreState is the mutable accumulator the adjustments fold over.
type scoreState struct {
	Home          float64
	Away          float64
	GoalsExpected float64
	BTTS          float64
	Risk          models.RiskFactors
}

// adjustment is one named, independently testable scoring rule.
type adjustment struct {
	name  string
	apply func(in *adjustmentInput, s *scoreState)
}

// structuralScale dampens form- and venue-based deltas when the
// structural gap already explains most of the difference, so the same
// signal is not counted twice.
func structuralScale(difference float64) float64 {
	abs := math.Abs(difference)
	switch {
	case abs > 100:
		return 0.5
	case abs > 50:
		return 0.75
	default:
		return 1.0
	}
}

// adjustments run in this exact order; each mutates the accumulator.
var adjustments = []adjustment{
	{"recent form", applyRecentForm},
	{"win streak", applyWinStreak},
	{"attack and defense", applyAttackDefense},
	{"match discipline", applyMatchDiscipline},
	{"club prestige", applyPrestige},
	{"rivalry", applyRivalry},
	{"bench strength", applyBenchStrength},
	{"home advantage", applyHomeAdvantage},
	{"psychological context", applyPsychology},
	{"competition type", applyCompetitionType},
	{"physical condition", applyPhysicalCondition},
	{"meta metrics", applyMetaMetrics},
	{"head to head", applyHeadToHead},
}

func runAdjustments(in *adjustmentInput) *scoreState {
	state := &scoreState{
		Home:          50,
		Away:          50,
		GoalsExpected: 2.5,
		BTTS:          50,
	}
	for _, adj := range adjustments {
		adj.apply(in, state)
	}
	return state
}

// applyRecentForm credits each side its recent win rate, damped when the
// structural gap is already large.
func applyRecentForm(in *adjustmentInput, s *scoreState) {
	scale := structuralScale(in.Structural.Comparison.Difference)
	if !in.HomeForm.NoRecentMatches {
		s.Home += (in.HomeForm.WinRate - 50) * 0.2 * scale
	}
	if !in.AwayForm.NoRecentMatches {
		s.Away += (in.AwayForm.WinRate - 50) * 0.2 * scale
	}
	if in.HomeForm.NoRecentMatches || in.AwayForm.NoRecentMatches {
		s.Risk.Medium = append(s.Risk.Medium, "Forma recente incompleta para pelo menos um dos times")
	}
}

func applyWinStreak(in *adjustmentInput, s *scoreState) {
	if streak := WinStreak(in.HomeMatches, in.Fixture.HomeTeam.ID); streak >= 3 {
		s.Home += 6
	} else if streak == 2 {
		s.Home += 3
	}
	if streak := WinStreak(in.AwayMatches, in.Fixture.AwayTeam.ID); streak >= 3 {
		s.Away += 6
	} else if streak == 2 {
		s.Away += 3
	}
}

// applyAttackDefense buckets goal averages into score deltas and anchors
// the expected-goals figure on both sides' attacking and defensive output.
func applyAttackDefense(in *adjustmentInput, s *scoreState) {
	bucket := func(form models.RecentForm) float64 {
		delta := 0.0
		switch {
		case form.AvgGoalsFor > 2.0:
			delta += 8
		case form.AvgGoalsFor > 1.5:
			delta += 4
		}
		switch {
		case form.AvgGoalsAgainst < 0.8:
			delta += 6
		case form.AvgGoalsAgainst > 1.8:
			delta -= 4
		}
		return delta
	}
	s.Home += bucket(in.HomeForm)
	s.Away += bucket(in.AwayForm)

	if in.HomeForm.Played > 0 && in.AwayForm.Played > 0 {
		s.GoalsExpected = (in.HomeForm.AvgGoalsFor + in.AwayForm.AvgGoalsFor +
			in.HomeForm.AvgGoalsAgainst + in.AwayForm.AvgGoalsAgainst) / 2

		bothScore := 50.0
		if in.HomeForm.AvgGoalsFor > 1.2 && in.AwayForm.AvgGoalsFor > 1.0 {
			bothScore += 12
		}
		if in.HomeForm.AvgGoalsAgainst < 0.7 || in.AwayForm.AvgGoalsAgainst < 0.7 {
			bothScore -= 10
		}
		s.BTTS = bothScore
	}
}

// applyMatchDiscipline folds in the real corner and card averages from
// recent fixture statistics when they were available.
func applyMatchDiscipline(in *adjustmentInput, s *scoreState) {
	for _, avg := range []*MatchAverages{in.HomeAverages, in.AwayAverages} {
		if avg == nil || avg.Sampled == 0 {
			continue
		}
		if avg.Corners > 6 {
			s.GoalsExpected += 0.15
		}
		if avg.Cards > 2.5 {
			s.Risk.Medium = append(s.Risk.Medium, fmt.Sprintf("Média alta de cartões (%.1f por jogo)", avg.Cards))
		}
	}
	if in.HomeAverages != nil && in.HomeAverages.Cards > 3.2 {
		s.Home -= 2
	}
	if in.AwayAverages != nil && in.AwayAverages.Cards > 3.2 {
		s.Away -= 2
	}
}

func applyPrestige(in *adjustmentInput, s *scoreState) {
	s.Home += Prestige(in.Fixture.HomeTeam.Name) * 0.15
	s.Away += Prestige(in.Fixture.AwayTeam.Name) * 0.15
}

// applyRivalry pulls a rivalry game toward balance and raises volatility.
func applyRivalry(in *adjustmentInput, s *scoreState) {
	if !IsRivalry(in.Fixture.HomeTeam.Name, in.Fixture.AwayTeam.Name) {
		return
	}
	if s.Home > s.Away {
		s.Home -= 5
	} else if s.Away > s.Home {
		s.Away -= 5
	}
	s.BTTS += 5
	s.Risk.High = append(s.Risk.High, "Clássico: histórico de jogos imprevisíveis entre os rivais")
}

// applyBenchStrength uses prestige as a proxy for squad depth off the bench.
func applyBenchStrength(in *adjustmentInput, s *scoreState) {
	if Prestige(in.Fixture.HomeTeam.Name) >= 20 {
		s.Home += 3
	}
	if Prestige(in.Fixture.AwayTeam.Name) >= 20 {
		s.Away += 3
	}
}

// applyHomeAdvantage credits the home side, scaled by its prestige and
// damped when the structural gap is already decisive.
func applyHomeAdvantage(in *adjustmentInput, s *scoreState) {
	scale := structuralScale(in.Structural.Comparison.Difference)
	s.Home += (8 + Prestige(in.Fixture.HomeTeam.Name)*0.05) * scale
}

// applyPsychology flags crisis and confidence regimes from win rates.
func applyPsychology(in *adjustmentInput, s *scoreState) {
	apply := func(form models.RecentForm, score *float64, teamName string) {
		if form.NoRecentMatches {
			return
		}
		if form.WinRate < 20 {
			*score -= 5
			s.Risk.Medium = append(s.Risk.Medium, fmt.Sprintf("%s em crise de resultados (%.0f%% de vitórias)", teamName, form.WinRate))
		} else if form.WinRate > 70 {
			*score += 4
		}
	}
	apply(in.HomeForm, &s.Home, in.Fixture.HomeTeam.Name)
	apply(in.AwayForm, &s.Away, in.Fixture.AwayTeam.Name)
}

// applyCompetitionType adjusts for knockout, friendly and decisive games
// keyed by substring match on the league name.
func applyCompetitionType(in *adjustmentInput, s *scoreState) {
	name := strings.ToLower(in.Fixture.League.Name)
	switch {
	case IsFriendly(in.Fixture.League.Name):
		s.Risk.High = append(s.Risk.High, "Amistoso: entrega e escalações imprevisíveis")
		s.GoalsExpected += 0.3
	case IsCupCompetition(in.Fixture.League.Name):
		s.GoalsExpected -= 0.2
		s.Risk.Medium = append(s.Risk.Medium, "Mata-mata: jogos tendem a ser mais travados")
		if strings.Contains(name, "final") {
			s.Risk.High = append(s.Risk.High, "Decisão: pressão máxima sobre os dois times")
		}
	}
}

// applyPhysicalCondition penalizes congested schedules and away travel
// across countries.
func applyPhysicalCondition(in *adjustmentInput, s *scoreState) {
	if gamesWithin(in.HomeMatches, 21*24*time.Hour, in.Fixture.Date) >= 4 {
		s.Home -= 3
		s.Risk.Low = append(s.Risk.Low, fmt.Sprintf("%s com calendário congestionado", in.Fixture.HomeTeam.Name))
	}
	if gamesWithin(in.AwayMatches, 21*24*time.Hour, in.Fixture.Date) >= 4 {
		s.Away -= 3
		s.Risk.Low = append(s.Risk.Low, fmt.Sprintf("%s com calendário congestionado", in.Fixture.AwayTeam.Name))
	}
	if in.Fixture.AwayTeam.Country != "" && in.Fixture.League.Country != "" &&
		!strings.EqualFold(in.Fixture.AwayTeam.Country, in.Fixture.League.Country) {
		s.Away -= 2
	}
}

// applyMetaMetrics folds in a synthetic rating from the season win/loss
// differential, capped so a runaway season cannot dominate the score.
func applyMetaMetrics(in *adjustmentInput, s *scoreState) {
	rating := func(stats *models.TeamStats) float64 {
		if stats == nil || stats.Played == 0 {
			return 0
		}
		r := float64(stats.Wins-stats.Losses) * 1.5
		return clamp(r, -10, 10)
	}
	s.Home += rating(in.HomeStats)
	s.Away += rating(in.AwayStats)
}

// applyHeadToHead folds in historical dominance, the both-scored rate and
// the goal averages of previous meetings.
func applyHeadToHead(in *adjustmentInput, s *scoreState) {
	if len(in.H2H) == 0 {
		return
	}

	scale := structuralScale(in.Structural.Comparison.Difference)
	homeWins, awayWins, bothScored := 0, 0, 0
	totalGoals, counted := 0, 0

	for _, match := range in.H2H {
		if match.HomeGoals == nil || match.AwayGoals == nil {
			continue
		}
		counted++
		hg, ag := *match.HomeGoals, *match.AwayGoals
		totalGoals += hg + ag
		if hg > 0 && ag > 0 {
			bothScored++
		}

		var winnerID int
		if hg > ag {
			winnerID = match.HomeTeam.ID
		} else if ag > hg {
			winnerID = match.AwayTeam.ID
		}
		if winnerID == in.Fixture.HomeTeam.ID {
			homeWins++
		} else if winnerID == in.Fixture.AwayTeam.ID {
			awayWins++
		}
	}

	if counted == 0 {
		return
	}

	if rate := float64(homeWins) / float64(counted); rate > 0.6 {
		s.Home += 6 * scale
	} else if rate := float64(awayWins) / float64(counted); rate > 0.6 {
		s.Away += 6 * scale
	}

	if float64(bothScored)/float64(counted) > 0.6 {
		s.BTTS += 10
	}

	avgGoals := float64(totalGoals) / float64(counted)
	s.GoalsExpected = s.GoalsExpected*0.75 + avgGoals*0.25
}

func gamesWithin(matches []models.Fixture, window time.Duration, reference time.Time) int {
	if reference.IsZero() {
		reference = time.Now()
	}
	count := 0
	for _, match := range matches {
		if match.Date.IsZero() {
			continue
		}
		if reference.Sub(match.Date) <= window && reference.After(match.Date) {
			count++
		}
	}
	return count
}
