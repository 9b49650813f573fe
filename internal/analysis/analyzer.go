package analysis

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/apostai/engine/internal/models"
)

// Provider is the slice of the football-data API the engine consumes.
type Provider interface {
	GetTeamStatistics(ctx context.Context, teamID, leagueID, season int) (*models.TeamStats, error)
	GetHeadToHead(ctx context.Context, teamAID, teamBID, limit int) ([]models.Fixture, error)
	GetTeamRecentMatches(ctx context.Context, teamID, limit int) ([]models.Fixture, error)
	GetFixtureStatistics(ctx context.Context, fixtureID int) (*models.FixtureStatistics, error)
	GetTeamCurrentLeague(ctx context.Context, teamID int) (*models.League, error)
}

// Blend and clamp policy constants. These are empirically chosen product
// values, not tunables.
const (
	structuralBlendWeight  = 0.60
	traditionalBlendWeight = 0.40

	goalsExpectedMin = 1.5
	goalsExpectedMax = 4.5
	bttsMin          = 20
	bttsMax          = 80
	confidenceMin    = 45
	confidenceMax    = 88

	fallbackConfidence = 40
)

// Engine runs game analyses against a data provider.
type Engine struct {
	provider Provider
	logger   *logrus.Logger
}

// NewEngine creates an analysis engine.
func NewEngine(provider Provider, logger *logrus.Logger) *Engine {
	return &Engine{
		provider: provider,
		logger:   logger,
	}
}

// AnalysisData bundles the fetched inputs alongside the analysis so the
// suggestion generator can reuse them without refetching.
type AnalysisData struct {
	HomeForm     models.RecentForm
	AwayForm     models.RecentForm
	HomeMatches  []models.Fixture
	AwayMatches  []models.Fixture
	HomeStats    *models.TeamStats
	AwayStats    *models.TeamStats
	H2H          []models.Fixture
	HomeAverages *MatchAverages
	AwayAverages *MatchAverages
}

// AnalyzeGame produces the full analysis for a fixture. It never returns
// an error: any failure inside the fetch/compute pipeline degrades to a
// fixed low-confidence fallback analysis.
func (e *Engine) AnalyzeGame(ctx context.Context, fixture models.Fixture) (analysis models.GameAnalysis, data AnalysisData) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.WithFields(logrus.Fields{
				"component":  "analyzer",
				"fixture_id": fixture.ID,
			}).Errorf("Analysis panicked, returning fallback: %v", r)
			analysis = fallbackAnalysis(fixture)
		}
	}()

	var ok bool
	data, ok = e.fetchAnalysisData(ctx, fixture)
	if !ok {
		return fallbackAnalysis(fixture), data
	}

	structural := AnalyzeStructuralStrength(ctx, fixture, data.HomeMatches, data.AwayMatches, e.provider, e.logger)
	data.HomeForm = AnalyzeRecentForm(data.HomeMatches, fixture.HomeTeam.ID)
	data.AwayForm = AnalyzeRecentForm(data.AwayMatches, fixture.AwayTeam.ID)

	in := &adjustmentInput{
		Fixture:      fixture,
		HomeForm:     data.HomeForm,
		AwayForm:     data.AwayForm,
		HomeStats:    data.HomeStats,
		AwayStats:    data.AwayStats,
		H2H:          data.H2H,
		HomeMatches:  data.HomeMatches,
		AwayMatches:  data.AwayMatches,
		HomeAverages: data.HomeAverages,
		AwayAverages: data.AwayAverages,
		Structural:   structural,
	}
	state := runAdjustments(in)

	// Traditional percentages from the accumulated scores.
	totalScore := state.Home + state.Away
	if totalScore <= 0 {
		totalScore = 100
	}
	traditionalHome := state.Home / totalScore * 100
	traditionalAway := state.Away / totalScore * 100

	// Structural percentages from the banded difference mapping.
	structuralHome, structuralAway := structuralSplit(structural.Comparison.Difference)

	homeScore := structuralHome*structuralBlendWeight + traditionalHome*traditionalBlendWeight
	awayScore := structuralAway*structuralBlendWeight + traditionalAway*traditionalBlendWeight

	goalsExpected := clamp(state.GoalsExpected, goalsExpectedMin, goalsExpectedMax)
	btts := clamp(state.BTTS, bttsMin, bttsMax)
	confidence := analysisConfidence(&data)

	analysis = models.GameAnalysis{
		FixtureID:          fixture.ID,
		HomeTeamScore:      round1(homeScore),
		AwayTeamScore:      round1(awayScore),
		TotalGoalsExpected: round2(goalsExpected),
		BothTeamsToScore:   round1(btts),
		Confidence:         confidence,
		Insights:           mainInsights(fixture, homeScore, awayScore, goalsExpected, data.HomeForm, data.AwayForm),
		HomeFormInsights:   formInsights(fixture.HomeTeam.Name, data.HomeForm),
		AwayFormInsights:   formInsights(fixture.AwayTeam.Name, data.AwayForm),
		H2HInsights:        h2hInsights(fixture, data.H2H),
		RiskFactors:        state.Risk,
		Structural:         &structural,
	}
	analysis.KeyPredictions = keyPredictions(fixture, analysis)

	return analysis, data
}

// fetchAnalysisData fans out the independent provider calls, waits for
// all of them, then runs the sequential per-match statistics loop. The
// second return is false only when every concurrent fetch failed, which
// is indistinguishable from total provider unavailability.
func (e *Engine) fetchAnalysisData(ctx context.Context, fixture models.Fixture) (AnalysisData, bool) {
	var data AnalysisData
	var wg sync.WaitGroup
	errs := make(chan error, 5)

	fetch := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				e.logger.WithFields(logrus.Fields{
					"component":  "analyzer",
					"fixture_id": fixture.ID,
					"fetch":      name,
				}).Warnf("Fetch failed: %v", err)
				errs <- err
			}
		}()
	}

	fetch("home_stats", func() error {
		stats, err := e.provider.GetTeamStatistics(ctx, fixture.HomeTeam.ID, fixture.League.ID, fixture.League.Season)
		data.HomeStats = stats
		return err
	})
	fetch("away_stats", func() error {
		stats, err := e.provider.GetTeamStatistics(ctx, fixture.AwayTeam.ID, fixture.League.ID, fixture.League.Season)
		data.AwayStats = stats
		return err
	})
	fetch("h2h", func() error {
		h2h, err := e.provider.GetHeadToHead(ctx, fixture.HomeTeam.ID, fixture.AwayTeam.ID, 10)
		data.H2H = h2h
		return err
	})
	fetch("home_matches", func() error {
		matches, err := e.provider.GetTeamRecentMatches(ctx, fixture.HomeTeam.ID, 10)
		data.HomeMatches = matches
		return err
	})
	fetch("away_matches", func() error {
		matches, err := e.provider.GetTeamRecentMatches(ctx, fixture.AwayTeam.ID, 10)
		data.AwayMatches = matches
		return err
	})

	wg.Wait()
	close(errs)

	failed := 0
	for range errs {
		failed++
	}
	if failed == 5 {
		return data, false
	}

	// Per-match statistics are fetched one by one; each failure only
	// drops that match's contribution.
	data.HomeAverages = e.matchAverages(ctx, data.HomeMatches, fixture.HomeTeam.ID)
	data.AwayAverages = e.matchAverages(ctx, data.AwayMatches, fixture.AwayTeam.ID)

	return data, true
}

func (e *Engine) matchAverages(ctx context.Context, matches []models.Fixture, teamID int) *MatchAverages {
	considered := lastN(matches, 5)
	if len(considered) == 0 {
		return nil
	}

	avg := &MatchAverages{}
	for _, match := range considered {
		stats, err := e.provider.GetFixtureStatistics(ctx, match.ID)
		if err != nil || stats == nil {
			continue
		}
		side := stats.Home
		if stats.Away.TeamID == teamID {
			side = stats.Away
		}
		avg.Corners += side.Corners
		avg.Cards += side.YellowCards + side.RedCards
		avg.Sampled++
	}

	if avg.Sampled == 0 {
		return nil
	}
	avg.Corners /= float64(avg.Sampled)
	avg.Cards /= float64(avg.Sampled)
	return avg
}

// structuralSplit maps the FFS difference onto a home/away percentage
// split through fixed bands.
func structuralSplit(difference float64) (home, away float64) {
	abs := math.Abs(difference)
	var strong, weak float64
	switch {
	case abs > 150:
		strong, weak = 85, 15
	case abs > 100:
		strong, weak = 78, 22
	case abs > 50:
		strong, weak = 68, 32
	case abs > 20:
		shift := abs / 100 * 20
		strong, weak = 50+shift, 50-shift
	default:
		return 50, 50
	}
	if difference > 0 {
		return strong, weak
	}
	return weak, strong
}

// analysisConfidence starts from a base and credits data completeness,
// penalizing a lopsided sample between the two teams.
func analysisConfidence(data *AnalysisData) float64 {
	confidence := 60.0

	if data.HomeStats != nil && data.AwayStats != nil {
		confidence += 8
	} else if data.HomeStats != nil || data.AwayStats != nil {
		confidence += 4
	}

	if len(data.H2H) >= 5 {
		confidence += 6
	} else if len(data.H2H) >= 2 {
		confidence += 3
	}

	homePlayed := len(data.HomeMatches)
	awayPlayed := len(data.AwayMatches)
	if homePlayed >= 8 && awayPlayed >= 8 {
		confidence += 6
	} else if homePlayed >= 5 && awayPlayed >= 5 {
		confidence += 3
	}

	if math.Abs(float64(homePlayed-awayPlayed)) > 5 {
		confidence -= 6
	}

	return clamp(confidence, confidenceMin, confidenceMax)
}

// mainInsights builds exactly four insight strings in fixed priority
// order: favorite margin, goal character, form gap, distinguishing factor.
func mainInsights(fixture models.Fixture, homeScore, awayScore, goalsExpected float64, homeForm, awayForm models.RecentForm) []string {
	insights := make([]string, 0, 4)

	gap := homeScore - awayScore
	switch {
	case gap > 10:
		insights = append(insights, fmt.Sprintf("%s é favorito com %.1f pontos de vantagem na análise", fixture.HomeTeam.Name, gap))
	case gap < -10:
		insights = append(insights, fmt.Sprintf("%s é favorito com %.1f pontos de vantagem na análise", fixture.AwayTeam.Name, -gap))
	default:
		insights = append(insights, "Jogo equilibrado, sem favorito claro na análise")
	}

	switch {
	case goalsExpected > 2.7:
		insights = append(insights, fmt.Sprintf("Perfil ofensivo: expectativa de %.2f gols na partida", goalsExpected))
	case goalsExpected < 2.2:
		insights = append(insights, fmt.Sprintf("Perfil defensivo: expectativa de apenas %.2f gols", goalsExpected))
	default:
		insights = append(insights, fmt.Sprintf("Expectativa de gols moderada (%.2f) para a partida", goalsExpected))
	}

	formGap := homeForm.WinRate - awayForm.WinRate
	if math.Abs(formGap) > 30 {
		leader := fixture.HomeTeam.Name
		if formGap < 0 {
			leader = fixture.AwayTeam.Name
		}
		insights = append(insights, fmt.Sprintf("%s em fase muito superior (%.0f%% contra %.0f%% de aproveitamento)", leader, math.Max(homeForm.WinRate, awayForm.WinRate), math.Min(homeForm.WinRate, awayForm.WinRate)))
	} else {
		insights = append(insights, "Fases recentes comparáveis entre os dois times")
	}

	insights = append(insights, distinguishingFactor(fixture, homeForm, awayForm))
	return insights
}

// distinguishingFactor picks the single most important differentiator by
// fixed priority: prestige gap, rivalry, strong attack, home field.
func distinguishingFactor(fixture models.Fixture, homeForm, awayForm models.RecentForm) string {
	prestigeGap := Prestige(fixture.HomeTeam.Name) - Prestige(fixture.AwayTeam.Name)
	if math.Abs(prestigeGap) > 15 {
		stronger := fixture.HomeTeam.Name
		if prestigeGap < 0 {
			stronger = fixture.AwayTeam.Name
		}
		return fmt.Sprintf("Diferença de prestígio relevante a favor do %s", stronger)
	}
	if IsRivalry(fixture.HomeTeam.Name, fixture.AwayTeam.Name) {
		return "Clássico entre rivais: fator emocional pode decidir"
	}
	if homeForm.AvgGoalsFor > 2.5 || awayForm.AvgGoalsFor > 2.5 {
		attacker := fixture.HomeTeam.Name
		if awayForm.AvgGoalsFor > homeForm.AvgGoalsFor {
			attacker = fixture.AwayTeam.Name
		}
		return fmt.Sprintf("Ataque do %s em grande fase é o principal destaque", attacker)
	}
	return fmt.Sprintf("Mando de campo do %s é o principal diferencial", fixture.HomeTeam.Name)
}

func formInsights(teamName string, form models.RecentForm) []string {
	if form.NoRecentMatches {
		return []string{
			fmt.Sprintf("%s sem jogos recentes registrados", teamName),
			"Forma recente indisponível",
			"Confiança reduzida por falta de dados",
		}
	}
	return []string{
		fmt.Sprintf("Últimos jogos: %s", form.LastFive),
		fmt.Sprintf("%d vitórias, %d empates e %d derrotas (%.0f%% de aproveitamento)", form.Wins, form.Draws, form.Losses, form.WinRate),
		fmt.Sprintf("Média de %.2f gols marcados e %.2f sofridos por jogo", form.AvgGoalsFor, form.AvgGoalsAgainst),
	}
}

func h2hInsights(fixture models.Fixture, h2h []models.Fixture) []string {
	if len(h2h) == 0 {
		return []string{
			"Sem histórico de confrontos diretos",
			"Análise baseada apenas em forma e estrutura",
			"Primeiro encontro registrado entre os times",
		}
	}

	homeWins, awayWins, draws, goals, counted := 0, 0, 0, 0, 0
	for _, match := range h2h {
		if match.HomeGoals == nil || match.AwayGoals == nil {
			continue
		}
		counted++
		hg, ag := *match.HomeGoals, *match.AwayGoals
		goals += hg + ag

		var winnerID int
		if hg > ag {
			winnerID = match.HomeTeam.ID
		} else if ag > hg {
			winnerID = match.AwayTeam.ID
		}
		switch winnerID {
		case fixture.HomeTeam.ID:
			homeWins++
		case fixture.AwayTeam.ID:
			awayWins++
		default:
			draws++
		}
	}

	if counted == 0 {
		return []string{
			"Confrontos diretos sem placar registrado",
			"Histórico não considerado na análise",
			"Confiança reduzida no peso do retrospecto",
		}
	}

	avgGoals := float64(goals) / float64(counted)
	return []string{
		fmt.Sprintf("%d confrontos diretos analisados", counted),
		fmt.Sprintf("%s venceu %d, %s venceu %d, %d empates", fixture.HomeTeam.Name, homeWins, fixture.AwayTeam.Name, awayWins, draws),
		fmt.Sprintf("Média de %.2f gols por confronto direto", avgGoals),
	}
}

func keyPredictions(fixture models.Fixture, analysis models.GameAnalysis) models.KeyPredictions {
	predictions := models.KeyPredictions{}

	gap := analysis.HomeTeamScore - analysis.AwayTeamScore
	switch {
	case gap > 10:
		predictions.MostLikely = fmt.Sprintf("Vitória do %s", fixture.HomeTeam.Name)
	case gap < -10:
		predictions.MostLikely = fmt.Sprintf("Vitória do %s", fixture.AwayTeam.Name)
	default:
		predictions.MostLikely = "Jogo aberto, considere dupla chance"
	}

	riskCount := len(analysis.RiskFactors.High) + len(analysis.RiskFactors.Medium) + len(analysis.RiskFactors.Low)
	if riskCount > 2 {
		predictions.SurpriseFactor = "Alta imprevisibilidade: vários fatores de risco mapeados"
	} else {
		predictions.SurpriseFactor = "Poucos fatores de risco identificados"
	}

	switch {
	case analysis.TotalGoalsExpected > 2.7 && analysis.BothTeamsToScore > 55:
		predictions.SafetyBet = "Mais de 2.5 gols + ambos marcam"
	case analysis.TotalGoalsExpected < 2.2:
		predictions.SafetyBet = "Menos de 2.5 gols"
	case gap > 10:
		predictions.SafetyBet = fmt.Sprintf("Dupla chance: %s ou empate", fixture.HomeTeam.Name)
	case gap < -10:
		predictions.SafetyBet = fmt.Sprintf("Dupla chance: %s ou empate", fixture.AwayTeam.Name)
	default:
		predictions.SafetyBet = "Mais de 1.5 gols na partida"
	}

	return predictions
}

// fallbackAnalysis is the fixed low-confidence result returned when the
// pipeline cannot complete.
func fallbackAnalysis(fixture models.Fixture) models.GameAnalysis {
	return models.GameAnalysis{
		FixtureID:          fixture.ID,
		HomeTeamScore:      50,
		AwayTeamScore:      50,
		TotalGoalsExpected: 2.5,
		BothTeamsToScore:   45,
		Confidence:         fallbackConfidence,
		Insights: []string{
			"Análise limitada: dados do provedor indisponíveis",
			"Expectativa de gols estimada pela média da competição",
			"Sem leitura de forma recente para os dois times",
			fmt.Sprintf("Mando de campo do %s considerado por padrão", fixture.HomeTeam.Name),
		},
		HomeFormInsights: []string{
			fmt.Sprintf("%s sem dados recentes disponíveis", fixture.HomeTeam.Name),
			"Forma recente indisponível",
			"Confiança reduzida por falta de dados",
		},
		AwayFormInsights: []string{
			fmt.Sprintf("%s sem dados recentes disponíveis", fixture.AwayTeam.Name),
			"Forma recente indisponível",
			"Confiança reduzida por falta de dados",
		},
		H2HInsights: []string{
			"Histórico de confrontos indisponível",
			"Análise baseada em valores padrão",
			"Recomenda-se cautela nas sugestões",
		},
		RiskFactors: models.RiskFactors{
			High: []string{"Dados externos indisponíveis no momento da análise"},
		},
		KeyPredictions: models.KeyPredictions{
			MostLikely:     "Jogo aberto, considere dupla chance",
			SurpriseFactor: "Alta imprevisibilidade: análise sem dados externos",
			SafetyBet:      "Mais de 1.5 gols na partida",
		},
		Fallback: true,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
