package suggestions

import (
	"fmt"
	"math"

	"github.com/apostai/engine/internal/models"
)

// rule is one declarative suggestion block: a gate, the bookmaker market
// to price it against, and a builder that interpolates the numbers the
// gate actually used.
type rule struct {
	name      string
	category  string
	oddMarket string
	oddValue  string
	when      func(in *Input) bool
	build     func(in *Input) candidate
}

// candidate is a suggestion before odds lookup, risk tiering and filtering.
type candidate struct {
	market     string
	selection  string
	reasoning  string
	confidence float64
	criteria   []string
	playerName string
	handicap   *float64
}

func scoreGap(in *Input) float64 {
	return in.Analysis.HomeTeamScore - in.Analysis.AwayTeamScore
}

// structuralDiff is the FFS difference, 0 when no structural analysis
// was embedded.
func structuralDiff(in *Input) float64 {
	if in.Analysis.Structural == nil {
		return 0
	}
	return in.Analysis.Structural.Comparison.Difference
}

// stronglyFavorsHome reports a structural advantage for the home side
// large enough to veto away/draw result markets.
func stronglyFavorsHome(in *Input) bool {
	if in.Analysis.Structural == nil {
		return false
	}
	c := in.Analysis.Structural.Comparison
	return c.Advantage == models.AdvantageHome && c.Difference > 50
}

func stronglyFavorsAway(in *Input) bool {
	if in.Analysis.Structural == nil {
		return false
	}
	c := in.Analysis.Structural.Comparison
	return c.Advantage == models.AdvantageAway && c.Difference < -50
}

func floatPtr(v float64) *float64 { return &v }

// ruleTable is evaluated in order by the generator driver. Order only
// affects tie-breaking after the risk/confidence sort.
var ruleTable = []rule{
	// ----- goals markets -----
	{
		name:      "over_2_5",
		category:  models.SuggestionGoals,
		oddMarket: "Goals Over/Under",
		oddValue:  "Over 2.5",
		when: func(in *Input) bool {
			return in.Analysis.TotalGoalsExpected > 2.8
		},
		build: func(in *Input) candidate {
			return candidate{
				market:     "Total de Gols",
				selection:  "Mais de 2.5 gols",
				reasoning:  fmt.Sprintf("Expectativa de %.2f gols na partida, bem acima da linha de 2.5", in.Analysis.TotalGoalsExpected),
				confidence: calculateRealisticConfidence(74, in),
				criteria:   []string{"gols esperados > 2.8"},
			}
		},
	},
	{
		name:      "over_1_5",
		category:  models.SuggestionGoals,
		oddMarket: "Goals Over/Under",
		oddValue:  "Over 1.5",
		when: func(in *Input) bool {
			return in.Analysis.TotalGoalsExpected > 2.3
		},
		build: func(in *Input) candidate {
			return candidate{
				market:     "Total de Gols",
				selection:  "Mais de 1.5 gols",
				reasoning:  fmt.Sprintf("Expectativa de %.2f gols torna a linha de 1.5 bastante segura", in.Analysis.TotalGoalsExpected),
				confidence: calculateRealisticConfidence(80, in),
				criteria:   []string{"gols esperados > 2.3"},
			}
		},
	},
	{
		name:      "under_2_5",
		category:  models.SuggestionGoals,
		oddMarket: "Goals Over/Under",
		oddValue:  "Under 2.5",
		when: func(in *Input) bool {
			return in.Analysis.TotalGoalsExpected < 2.1
		},
		build: func(in *Input) candidate {
			return candidate{
				market:     "Total de Gols",
				selection:  "Menos de 2.5 gols",
				reasoning:  fmt.Sprintf("Perfil defensivo: apenas %.2f gols esperados", in.Analysis.TotalGoalsExpected),
				confidence: calculateRealisticConfidence(70, in),
				criteria:   []string{"gols esperados < 2.1"},
			}
		},
	},
	{
		name:      "under_3_5",
		category:  models.SuggestionGoals,
		oddMarket: "Goals Over/Under",
		oddValue:  "Under 3.5",
		when: func(in *Input) bool {
			return in.Analysis.TotalGoalsExpected < 2.6
		},
		build: func(in *Input) candidate {
			return candidate{
				market:     "Total de Gols",
				selection:  "Menos de 3.5 gols",
				reasoning:  fmt.Sprintf("Expectativa de %.2f gols deixa folga sob a linha de 3.5", in.Analysis.TotalGoalsExpected),
				confidence: calculateRealisticConfidence(76, in),
				criteria:   []string{"gols esperados < 2.6"},
			}
		},
	},
	{
		name:      "btts_yes",
		category:  models.SuggestionGoals,
		oddMarket: "Both Teams Score",
		oddValue:  "Yes",
		when: func(in *Input) bool {
			return in.Analysis.BothTeamsToScore > 60
		},
		build: func(in *Input) candidate {
			return candidate{
				market:     "Ambos Marcam",
				selection:  "Sim",
				reasoning:  fmt.Sprintf("Probabilidade de %.0f%% de ambos os times marcarem", in.Analysis.BothTeamsToScore),
				confidence: calculateRealisticConfidence(68, in),
				criteria:   []string{"ambos marcam > 60%"},
			}
		},
	},
	{
		name:      "btts_no",
		category:  models.SuggestionGoals,
		oddMarket: "Both Teams Score",
		oddValue:  "No",
		when: func(in *Input) bool {
			return in.Analysis.BothTeamsToScore < 35
		},
		build: func(in *Input) candidate {
			return candidate{
				market:     "Ambos Marcam",
				selection:  "Não",
				reasoning:  fmt.Sprintf("Apenas %.0f%% de chance de ambos marcarem", in.Analysis.BothTeamsToScore),
				confidence: calculateRealisticConfidence(64, in),
				criteria:   []string{"ambos marcam < 35%"},
			}
		},
	},
	{
		name:      "home_team_over_1_5",
		category:  models.SuggestionGoals,
		oddMarket: "Total - Home",
		oddValue:  "Over 1.5",
		when: func(in *Input) bool {
			return in.HomeForm.AvgGoalsFor > 2.0 &&
				in.AwayForm.AvgGoalsAgainst > 1.1 &&
				!stronglyFavorsAway(in)
		},
		build: func(in *Input) candidate {
			return candidate{
				market:    "Gols do Time da Casa",
				selection: fmt.Sprintf("%s marca mais de 1.5 gols", in.Fixture.HomeTeam.Name),
				reasoning: fmt.Sprintf("%s marca %.2f gols por jogo e %s sofre %.2f",
					in.Fixture.HomeTeam.Name, in.HomeForm.AvgGoalsFor,
					in.Fixture.AwayTeam.Name, in.AwayForm.AvgGoalsAgainst),
				confidence: calculateRealisticConfidence(66, in),
				criteria:   []string{"ataque casa > 2.0 gols/jogo", "defesa visitante sofre > 1.1 gols/jogo"},
			}
		},
	},
	{
		name:      "away_team_over_1_5",
		category:  models.SuggestionGoals,
		oddMarket: "Total - Away",
		oddValue:  "Over 1.5",
		when: func(in *Input) bool {
			return in.AwayForm.AvgGoalsFor > 2.0 &&
				in.HomeForm.AvgGoalsAgainst > 1.1 &&
				!stronglyFavorsHome(in)
		},
		build: func(in *Input) candidate {
			return candidate{
				market:    "Gols do Visitante",
				selection: fmt.Sprintf("%s marca mais de 1.5 gols", in.Fixture.AwayTeam.Name),
				reasoning: fmt.Sprintf("%s marca %.2f gols por jogo e %s sofre %.2f",
					in.Fixture.AwayTeam.Name, in.AwayForm.AvgGoalsFor,
					in.Fixture.HomeTeam.Name, in.HomeForm.AvgGoalsAgainst),
				confidence: calculateRealisticConfidence(62, in),
				criteria:   []string{"ataque visitante > 2.0 gols/jogo", "defesa da casa sofre > 1.1 gols/jogo"},
			}
		},
	},
	{
		name:      "first_half_goal",
		category:  models.SuggestionGoals,
		oddMarket: "Goals Over/Under First Half",
		oddValue:  "Over 0.5",
		when: func(in *Input) bool {
			return in.Analysis.TotalGoalsExpected > 3.0 &&
				in.HomeForm.AvgGoalsFor+in.AwayForm.AvgGoalsFor > 2.8
		},
		build: func(in *Input) candidate {
			return candidate{
				market:     "Gols no 1º Tempo",
				selection:  "Mais de 0.5 gols no 1º tempo",
				reasoning:  fmt.Sprintf("Jogo de ataque: %.2f gols esperados no total", in.Analysis.TotalGoalsExpected),
				confidence: calculateRealisticConfidence(72, in),
				criteria:   []string{"gols esperados > 3.0", "ataques somam > 2.8 gols/jogo"},
			}
		},
	},

	// ----- result markets -----
	{
		name:      "home_win",
		category:  models.SuggestionResult,
		oddMarket: "Match Winner",
		oddValue:  "Home",
		when: func(in *Input) bool {
			return scoreGap(in) > 15 && in.HomeForm.WinRate > 40
		},
		build: func(in *Input) candidate {
			return candidate{
				market:    "Resultado Final",
				selection: fmt.Sprintf("Vitória do %s", in.Fixture.HomeTeam.Name),
				reasoning: fmt.Sprintf("%s tem %.1f pontos de vantagem na análise e %.0f%% de aproveitamento recente",
					in.Fixture.HomeTeam.Name, scoreGap(in), in.HomeForm.WinRate),
				confidence: calculateRealisticConfidence(70, in),
				criteria:   []string{"vantagem na análise > 15", "aproveitamento da casa > 40%"},
			}
		},
	},
	{
		name:      "away_win",
		category:  models.SuggestionResult,
		oddMarket: "Match Winner",
		oddValue:  "Away",
		when: func(in *Input) bool {
			return scoreGap(in) < -15 && in.AwayForm.WinRate > 45 && !stronglyFavorsHome(in)
		},
		build: func(in *Input) candidate {
			conf := calculateRealisticConfidence(64, in)
			// Even a mild structural lean to the home side makes an
			// away win call less trustworthy.
			if structuralDiff(in) > 20 {
				conf -= 6
			}
			return candidate{
				market:    "Resultado Final",
				selection: fmt.Sprintf("Vitória do %s", in.Fixture.AwayTeam.Name),
				reasoning: fmt.Sprintf("%s tem %.1f pontos de vantagem na análise e %.0f%% de aproveitamento recente",
					in.Fixture.AwayTeam.Name, -scoreGap(in), in.AwayForm.WinRate),
				confidence: conf,
				criteria:   []string{"vantagem na análise > 15", "aproveitamento do visitante > 45%", "sem contradição estrutural"},
			}
		},
	},
	{
		name:      "draw",
		category:  models.SuggestionResult,
		oddMarket: "Match Winner",
		oddValue:  "Draw",
		when: func(in *Input) bool {
			formGap := math.Abs(in.HomeForm.WinRate - in.AwayForm.WinRate)
			attackGap := math.Abs(in.HomeForm.AvgGoalsFor - in.AwayForm.AvgGoalsFor)
			return math.Abs(scoreGap(in)) < 10 &&
				formGap < 20 &&
				in.HomeForm.WinRate > 30 && in.HomeForm.WinRate < 70 &&
				in.AwayForm.WinRate > 30 && in.AwayForm.WinRate < 70 &&
				attackGap < 0.5 &&
				!stronglyFavorsHome(in) && !stronglyFavorsAway(in)
		},
		build: func(in *Input) candidate {
			return candidate{
				market:    "Resultado Final",
				selection: "Empate",
				reasoning: fmt.Sprintf("Equilíbrio total: %.1f pontos de diferença na análise e ataques de %.2f contra %.2f gols/jogo",
					math.Abs(scoreGap(in)), in.HomeForm.AvgGoalsFor, in.AwayForm.AvgGoalsFor),
				confidence: calculateRealisticConfidence(55, in),
				criteria:   []string{"diferença na análise < 10", "formas equilibradas", "ataques similares"},
			}
		},
	},
	{
		name:      "double_chance_home",
		category:  models.SuggestionResult,
		oddMarket: "Double Chance",
		oddValue:  "Home/Draw",
		when: func(in *Input) bool {
			return scoreGap(in) > 8
		},
		build: func(in *Input) candidate {
			return candidate{
				market:     "Dupla Chance",
				selection:  fmt.Sprintf("%s ou empate", in.Fixture.HomeTeam.Name),
				reasoning:  fmt.Sprintf("%s favorito com %.1f pontos de vantagem; dupla chance cobre o empate", in.Fixture.HomeTeam.Name, scoreGap(in)),
				confidence: calculateRealisticConfidence(78, in),
				criteria:   []string{"vantagem na análise > 8"},
			}
		},
	},
	{
		name:      "double_chance_away",
		category:  models.SuggestionResult,
		oddMarket: "Double Chance",
		oddValue:  "Draw/Away",
		when: func(in *Input) bool {
			return scoreGap(in) < -8 && !stronglyFavorsHome(in)
		},
		build: func(in *Input) candidate {
			return candidate{
				market:     "Dupla Chance",
				selection:  fmt.Sprintf("%s ou empate", in.Fixture.AwayTeam.Name),
				reasoning:  fmt.Sprintf("%s à frente por %.1f pontos na análise; dupla chance cobre o empate", in.Fixture.AwayTeam.Name, -scoreGap(in)),
				confidence: calculateRealisticConfidence(74, in),
				criteria:   []string{"vantagem na análise > 8", "sem contradição estrutural"},
			}
		},
	},
	{
		name:      "draw_no_bet_home",
		category:  models.SuggestionResult,
		oddMarket: "Home/Away",
		oddValue:  "Home",
		when: func(in *Input) bool {
			return scoreGap(in) > 12 && in.HomeForm.WinRate > 50
		},
		build: func(in *Input) candidate {
			return candidate{
				market:    "Empate Anula",
				selection: fmt.Sprintf("%s (empate anula)", in.Fixture.HomeTeam.Name),
				reasoning: fmt.Sprintf("%s com %.1f pontos de vantagem e %.0f%% de aproveitamento; o empate devolve a aposta",
					in.Fixture.HomeTeam.Name, scoreGap(in), in.HomeForm.WinRate),
				confidence: calculateRealisticConfidence(72, in),
				criteria:   []string{"vantagem na análise > 12", "aproveitamento da casa > 50%"},
			}
		},
	},

	// ----- handicap markets -----
	{
		name:      "home_minus_1",
		category:  models.SuggestionHandicap,
		oddMarket: "Asian Handicap",
		oddValue:  "Home -1",
		when: func(in *Input) bool {
			return scoreGap(in) > 25 && structuralDiff(in) > 100 && in.HomeForm.AvgGoalsFor > 1.8
		},
		build: func(in *Input) candidate {
			return candidate{
				market:    "Handicap Asiático",
				selection: fmt.Sprintf("%s -1.0", in.Fixture.HomeTeam.Name),
				reasoning: fmt.Sprintf("Domínio amplo: %.1f pontos de vantagem na análise e %.0f de diferença estrutural",
					scoreGap(in), structuralDiff(in)),
				confidence: calculateRealisticConfidence(58, in),
				criteria:   []string{"vantagem na análise > 25", "diferença estrutural > 100", "ataque casa > 1.8 gols/jogo"},
				handicap:   floatPtr(-1.0),
			}
		},
	},
	{
		name:      "away_plus_1_5",
		category:  models.SuggestionHandicap,
		oddMarket: "Asian Handicap",
		oddValue:  "Away +1.5",
		when: func(in *Input) bool {
			gap := scoreGap(in)
			return gap > 0 && gap < 15 && in.AwayForm.AvgGoalsAgainst < 1.3
		},
		build: func(in *Input) candidate {
			return candidate{
				market:    "Handicap Asiático",
				selection: fmt.Sprintf("%s +1.5", in.Fixture.AwayTeam.Name),
				reasoning: fmt.Sprintf("Favoritismo moderado da casa (%.1f pontos) e defesa visitante sólida (%.2f gols sofridos/jogo)",
					scoreGap(in), in.AwayForm.AvgGoalsAgainst),
				confidence: calculateRealisticConfidence(73, in),
				criteria:   []string{"vantagem da casa < 15", "defesa visitante sofre < 1.3 gols/jogo"},
				handicap:   floatPtr(1.5),
			}
		},
	},

	// ----- cards markets -----
	{
		name:      "rivalry_cards",
		category:  models.SuggestionCards,
		oddMarket: "Cards Over/Under",
		oddValue:  "Over 4.5",
		when: func(in *Input) bool {
			return in.Rivalry
		},
		build: func(in *Input) candidate {
			return candidate{
				market:    "Cartões",
				selection: "Mais de 4.5 cartões",
				reasoning: fmt.Sprintf("Clássico entre %s e %s: rivalidade historicamente eleva o número de cartões",
					in.Fixture.HomeTeam.Name, in.Fixture.AwayTeam.Name),
				confidence: 65,
				criteria:   []string{"clássico regional"},
			}
		},
	},
	{
		name:      "cards_over_avg",
		category:  models.SuggestionCards,
		oddMarket: "Cards Over/Under",
		oddValue:  "Over 4.5",
		when: func(in *Input) bool {
			return !in.Rivalry && in.combinedCards() > 4.5
		},
		build: func(in *Input) candidate {
			return candidate{
				market:     "Cartões",
				selection:  "Mais de 4.5 cartões",
				reasoning:  fmt.Sprintf("Times somam %.1f cartões por jogo nos últimos compromissos", in.combinedCards()),
				confidence: calculateRealisticConfidence(62, in),
				criteria:   []string{"média combinada > 4.5 cartões/jogo"},
			}
		},
	},
	{
		name:      "cards_under_avg",
		category:  models.SuggestionCards,
		oddMarket: "Cards Over/Under",
		oddValue:  "Under 3.5",
		when: func(in *Input) bool {
			return !in.Rivalry && in.hasCardAverages() && in.combinedCards() < 3.0
		},
		build: func(in *Input) candidate {
			return candidate{
				market:     "Cartões",
				selection:  "Menos de 3.5 cartões",
				reasoning:  fmt.Sprintf("Jogo disciplinado: times somam apenas %.1f cartões por jogo", in.combinedCards()),
				confidence: calculateRealisticConfidence(60, in),
				criteria:   []string{"média combinada < 3.0 cartões/jogo", "sem rivalidade"},
			}
		},
	},

	// ----- corners markets -----
	{
		name:      "corners_over",
		category:  models.SuggestionCorners,
		oddMarket: "Corners Over Under",
		oddValue:  "Over 9.5",
		when: func(in *Input) bool {
			return in.combinedCorners() > 10.5
		},
		build: func(in *Input) candidate {
			return candidate{
				market:     "Escanteios",
				selection:  "Mais de 9.5 escanteios",
				reasoning:  fmt.Sprintf("Times somam %.1f escanteios por jogo recentemente", in.combinedCorners()),
				confidence: calculateRealisticConfidence(64, in),
				criteria:   []string{"média combinada > 10.5 escanteios/jogo"},
			}
		},
	},
	{
		name:      "home_corners",
		category:  models.SuggestionCorners,
		oddMarket: "Home Corners Over/Under",
		oddValue:  "Over 5.5",
		when: func(in *Input) bool {
			return in.HomeAverages != nil && in.HomeAverages.Corners > 6 && scoreGap(in) > 10
		},
		build: func(in *Input) candidate {
			return candidate{
				market:    "Escanteios da Casa",
				selection: fmt.Sprintf("%s: mais de 5.5 escanteios", in.Fixture.HomeTeam.Name),
				reasoning: fmt.Sprintf("%s força %.1f escanteios por jogo e deve dominar a partida",
					in.Fixture.HomeTeam.Name, in.HomeAverages.Corners),
				confidence: calculateRealisticConfidence(58, in),
				criteria:   []string{"média da casa > 6 escanteios/jogo", "vantagem na análise > 10"},
			}
		},
	},

	// ----- player markets -----
	{
		name:      "top_scorer_anytime",
		category:  models.SuggestionPlayer,
		oddMarket: "Anytime Goal Scorer",
		when: func(in *Input) bool {
			return in.topScorerInFixture() != nil
		},
		build: func(in *Input) candidate {
			scorer := in.topScorerInFixture()
			return candidate{
				market:     "Jogador Marca",
				selection:  fmt.Sprintf("%s marca a qualquer momento", scorer.PlayerName),
				reasoning:  fmt.Sprintf("%s é artilheiro da competição com %d gols e seu time tem ataque em boa fase", scorer.PlayerName, scorer.Goals),
				confidence: calculateRealisticConfidence(56, in),
				criteria:   []string{"artilheiro com 10+ gols", "ataque do time > 1.2 gols/jogo"},
				playerName: scorer.PlayerName,
			}
		},
	},

	// ----- combo markets -----
	{
		name:      "favorite_and_over_1_5",
		category:  models.SuggestionCombo,
		oddMarket: "Result/Total Goals",
		oddValue:  "Home/Over 1.5",
		when: func(in *Input) bool {
			return scoreGap(in) > 20 && in.Analysis.TotalGoalsExpected > 2.5
		},
		build: func(in *Input) candidate {
			return candidate{
				market:    "Combinada",
				selection: fmt.Sprintf("%s vence + mais de 1.5 gols", in.Fixture.HomeTeam.Name),
				reasoning: fmt.Sprintf("Favoritismo claro (%.1f pontos) em jogo com %.2f gols esperados",
					scoreGap(in), in.Analysis.TotalGoalsExpected),
				confidence: calculateRealisticConfidence(54, in),
				criteria:   []string{"vantagem na análise > 20", "gols esperados > 2.5"},
			}
		},
	},
	{
		name:      "btts_and_over_2_5",
		category:  models.SuggestionCombo,
		oddMarket: "Both Teams To Score/Over Under",
		oddValue:  "Yes/Over 2.5",
		when: func(in *Input) bool {
			return in.Analysis.BothTeamsToScore > 60 && in.Analysis.TotalGoalsExpected > 2.8
		},
		build: func(in *Input) candidate {
			return candidate{
				market:    "Combinada",
				selection: "Ambos marcam + mais de 2.5 gols",
				reasoning: fmt.Sprintf("BTTS em %.0f%% e %.2f gols esperados apontam jogo aberto",
					in.Analysis.BothTeamsToScore, in.Analysis.TotalGoalsExpected),
				confidence: calculateRealisticConfidence(52, in),
				criteria:   []string{"ambos marcam > 60%", "gols esperados > 2.8"},
			}
		},
	},
}
