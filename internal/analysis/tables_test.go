package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeagueWeight(t *testing.T) {
	tests := []struct {
		name     string
		league   string
		country  string
		expected float64
	}{
		{"premier league", "Premier League", "England", 120},
		{"la liga", "La Liga", "Spain", 120},
		{"serie a", "Serie A", "Italy", 120},
		{"bundesliga", "Bundesliga", "Germany", 120},
		{"ligue 1", "Ligue 1", "France", 120},

		// English lower tiers must resolve before the top-5-country rule.
		{"league two", "League Two", "England", 30},
		{"league one", "League One", "England", 50},
		{"championship", "Championship", "England", 70},

		// English cups still rate as top-5-country competitions.
		{"fa cup", "FA Cup", "England", 120},

		{"generic first division", "Primera División", "Argentina", 100},
		{"brazilian top flight without keyword", "Serie A", "Brazil", 90},
		// "división" matches the first-division keywords before "segunda".
		{"segunda division", "Segunda División", "Spain", 100},
		{"portuguese segunda", "Segunda Liga", "Portugal", 100},
		{"weak country", "Veikkausliiga", "Finland", 80},
		{"unknown", "Some League", "Japan", 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LeagueWeight(tt.league, tt.country))
		})
	}
}

func TestPrestige(t *testing.T) {
	assert.Equal(t, float64(40), Prestige("Real Madrid"))
	assert.Equal(t, float64(40), Prestige("FC Bayern München"))
	assert.Equal(t, float64(20), Prestige("SSC Napoli"))
	assert.Equal(t, float64(10), Prestige("Celtic FC"))
	assert.Equal(t, float64(0), Prestige("Rotherham United"))
}

func TestIsRivalry(t *testing.T) {
	assert.True(t, IsRivalry("Real Madrid", "FC Barcelona"))
	assert.True(t, IsRivalry("FC Barcelona", "Real Madrid")) // order independent
	assert.True(t, IsRivalry("Celtic", "Rangers"))
	assert.False(t, IsRivalry("Real Madrid", "Sevilla"))
}

func TestCompetitionTypeDetection(t *testing.T) {
	assert.True(t, IsCupCompetition("Copa del Rey"))
	assert.True(t, IsCupCompetition("UEFA Champions League"))
	assert.True(t, IsCupCompetition("Copa Libertadores"))
	assert.False(t, IsCupCompetition("Premier League"))

	assert.True(t, IsFriendly("Club Friendlies"))
	assert.True(t, IsFriendly("Amistoso Internacional"))
	assert.False(t, IsFriendly("La Liga"))
}
