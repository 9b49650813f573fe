package models

// RecentForm is the reduction of a team's recent matches. It is always
// structurally valid: an empty input produces the zero value with
// NoRecentMatches set instead of an error.
type RecentForm struct {
	Wins            int     `json:"wins"`
	Draws           int     `json:"draws"`
	Losses          int     `json:"losses"`
	GoalsFor        int     `json:"goals_for"`
	GoalsAgainst    int     `json:"goals_against"`
	WinRate         float64 `json:"win_rate"`
	AvgGoalsFor     float64 `json:"avg_goals_for"`
	AvgGoalsAgainst float64 `json:"avg_goals_against"`
	Played          int     `json:"played"`
	LastFive        string  `json:"last_five"`
	NoRecentMatches bool    `json:"no_recent_matches,omitempty"`
}

// Structural advantage classifications.
const (
	AdvantageHome     = "home"
	AdvantageAway     = "away"
	AdvantageBalanced = "balanced"
)

// TeamStructure is the per-team breakdown of the Final Structural Force.
type TeamStructure struct {
	LeagueWeight     float64 `json:"league_weight"`
	Prestige         float64 `json:"prestige"`
	OpponentQuality  float64 `json:"opponent_quality"`
	ResultAdjustment float64 `json:"result_adjustment"`
	SquadStrength    float64 `json:"squad_strength"`
	ContextBonus     float64 `json:"context_bonus"`
	TotalFFS         float64 `json:"total_ffs"`
}

// StructuralComparison contrasts both teams' FFS totals.
type StructuralComparison struct {
	Difference float64  `json:"difference"`
	Advantage  string   `json:"structural_advantage"`
	Confidence float64  `json:"confidence"`
	Insights   []string `json:"insights"`
}

// StructuralAnalysis is the full output of the structural-strength analyzer.
type StructuralAnalysis struct {
	Home       TeamStructure        `json:"home"`
	Away       TeamStructure        `json:"away"`
	Comparison StructuralComparison `json:"comparison"`
}

// RiskFactors groups analysis caveats by severity.
type RiskFactors struct {
	High   []string `json:"high"`
	Medium []string `json:"medium"`
	Low    []string `json:"low"`
}

// KeyPredictions are the headline calls derived from an analysis.
type KeyPredictions struct {
	MostLikely     string `json:"most_likely"`
	SurpriseFactor string `json:"surprise_factor"`
	SafetyBet      string `json:"safety_bet"`
}

// GameAnalysis is the engine's primary output. HomeTeamScore and
// AwayTeamScore are independently blended percentages and are not
// renormalized to sum to 100; the UI displays both as-is.
type GameAnalysis struct {
	FixtureID          int                 `json:"fixture_id"`
	HomeTeamScore      float64             `json:"home_team_score"`
	AwayTeamScore      float64             `json:"away_team_score"`
	TotalGoalsExpected float64             `json:"total_goals_expected"`
	BothTeamsToScore   float64             `json:"both_teams_to_score"`
	Confidence         float64             `json:"confidence"`
	Insights           []string            `json:"insights"`
	HomeFormInsights   []string            `json:"home_form_insights"`
	AwayFormInsights   []string            `json:"away_form_insights"`
	H2HInsights        []string            `json:"h2h_insights"`
	RiskFactors        RiskFactors         `json:"risk_factors"`
	KeyPredictions     KeyPredictions      `json:"key_predictions"`
	Structural         *StructuralAnalysis `json:"structural_analysis,omitempty"`
	Suggestions        []BetSuggestion     `json:"bet_suggestions,omitempty"`
	Fallback           bool                `json:"fallback,omitempty"`
}

// Risk tiers, ordered from safest to most exposed. Labels are product
// vocabulary and surface to the UI untranslated.
const (
	RiskLow     = "Baixo"
	RiskMedium  = "Médio"
	RiskHigh    = "Alto"
	RiskExtreme = "Elevado"
)

// RiskRank maps a risk tier to its sort position.
func RiskRank(level string) int {
	switch level {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	case RiskExtreme:
		return 3
	default:
		return 4
	}
}

// Suggestion market categories.
const (
	SuggestionGoals    = "goals"
	SuggestionResult   = "result"
	SuggestionHandicap = "handicap"
	SuggestionCards    = "cards"
	SuggestionCorners  = "corners"
	SuggestionPlayer   = "player"
	SuggestionCombo    = "combo"
)

// BetSuggestion is one ranked betting-market recommendation. Suggestions
// are ephemeral: the full list is regenerated on every request.
type BetSuggestion struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"`
	Market        string   `json:"market"`
	Selection     string   `json:"selection"`
	Reasoning     string   `json:"reasoning"`
	Confidence    float64  `json:"confidence"`
	RealOdd       *float64 `json:"real_odd,omitempty"`
	Bookmaker     string   `json:"bookmaker,omitempty"`
	RiskLevel     string   `json:"risk_level"`
	Criteria      []string `json:"criteria"`
	PlayerName    string   `json:"player_name,omitempty"`
	HandicapValue *float64 `json:"handicap_value,omitempty"`
}
