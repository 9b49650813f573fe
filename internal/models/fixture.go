package models

import "time"

// Team identifies a club as returned by the football-data API.
type Team struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
	Founded int    `json:"founded,omitempty"`
	Logo    string `json:"logo,omitempty"`
}

// League identifies the competition a fixture belongs to.
type League struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
	Season  int    `json:"season"`
}

// Fixture is a scheduled or played match. Goal fields are nil until the
// match has a result; consumers must skip nil-goal matches when aggregating.
type Fixture struct {
	ID        int       `json:"id"`
	Date      time.Time `json:"date"`
	Venue     string    `json:"venue,omitempty"`
	Status    string    `json:"status,omitempty"`
	League    League    `json:"league"`
	HomeTeam  Team      `json:"home_team"`
	AwayTeam  Team      `json:"away_team"`
	HomeGoals *int      `json:"home_goals"`
	AwayGoals *int      `json:"away_goals"`
}

// TeamStats is the aggregate season record for a team within a league.
// A nil *TeamStats means the API had no data, which is a distinct,
// lower-confidence condition rather than a zero record.
type TeamStats struct {
	Played       int `json:"played"`
	Wins         int `json:"wins"`
	Draws        int `json:"draws"`
	Losses       int `json:"losses"`
	GoalsFor     int `json:"goals_for"`
	GoalsAgainst int `json:"goals_against"`
}

// FixtureSideStats holds the per-team counts from a single played fixture.
type FixtureSideStats struct {
	TeamID      int     `json:"team_id"`
	Corners     float64 `json:"corners"`
	YellowCards float64 `json:"yellow_cards"`
	RedCards    float64 `json:"red_cards"`
	ShotsOnGoal float64 `json:"shots_on_goal"`
}

// FixtureStatistics is the corner/card/shot breakdown of one fixture.
type FixtureStatistics struct {
	FixtureID int              `json:"fixture_id"`
	Home      FixtureSideStats `json:"home"`
	Away      FixtureSideStats `json:"away"`
}

// OddValue is a single priced selection within a betting market.
type OddValue struct {
	Value string  `json:"value"`
	Odd   float64 `json:"odd"`
}

// OddMarket is one market offered by a bookmaker ("Match Winner",
// "Goals Over/Under", ...).
type OddMarket struct {
	Name   string     `json:"name"`
	Values []OddValue `json:"values"`
}

// FixtureOdds is the bookmaker odds tree for one fixture.
type FixtureOdds struct {
	FixtureID int         `json:"fixture_id"`
	Bookmaker string      `json:"bookmaker"`
	Markets   []OddMarket `json:"markets"`
}

// TopScorer is one entry of a league's ranked scorer list.
type TopScorer struct {
	PlayerName string `json:"player_name"`
	TeamID     int    `json:"team_id"`
	TeamName   string `json:"team_name"`
	Goals      int    `json:"goals"`
}
