package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/apostai/engine/internal/models"
)

func intPtr(v int) *int { return &v }

func playedMatch(id, homeID, awayID, homeGoals, awayGoals int) models.Fixture {
	return models.Fixture{
		ID:        id,
		HomeTeam:  models.Team{ID: homeID},
		AwayTeam:  models.Team{ID: awayID},
		HomeGoals: intPtr(homeGoals),
		AwayGoals: intPtr(awayGoals),
	}
}

func TestAnalyzeRecentForm(t *testing.T) {
	const teamID = 10

	tests := []struct {
		name     string
		matches  []models.Fixture
		expected models.RecentForm
	}{
		{
			name: "mixed results",
			matches: []models.Fixture{
				playedMatch(1, teamID, 2, 3, 1), // win
				playedMatch(2, 3, teamID, 2, 2), // draw
				playedMatch(3, teamID, 4, 0, 1), // loss
			},
			expected: models.RecentForm{
				Wins: 1, Draws: 1, Losses: 1,
				GoalsFor: 5, GoalsAgainst: 4, Played: 3,
				WinRate:     100.0 / 3,
				AvgGoalsFor: 5.0 / 3, AvgGoalsAgainst: 4.0 / 3,
				LastFive: "V E D",
			},
		},
		{
			name: "all wins away",
			matches: []models.Fixture{
				playedMatch(1, 2, teamID, 0, 2),
				playedMatch(2, 3, teamID, 1, 3),
			},
			expected: models.RecentForm{
				Wins: 2, GoalsFor: 5, GoalsAgainst: 1, Played: 2,
				WinRate: 100, AvgGoalsFor: 2.5, AvgGoalsAgainst: 0.5,
				LastFive: "V V",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := AnalyzeRecentForm(tt.matches, teamID)
			assert.Equal(t, tt.expected.Wins, form.Wins)
			assert.Equal(t, tt.expected.Draws, form.Draws)
			assert.Equal(t, tt.expected.Losses, form.Losses)
			assert.Equal(t, tt.expected.Played, form.Played)
			assert.InDelta(t, tt.expected.WinRate, form.WinRate, 0.001)
			assert.InDelta(t, tt.expected.AvgGoalsFor, form.AvgGoalsFor, 0.001)
			assert.InDelta(t, tt.expected.AvgGoalsAgainst, form.AvgGoalsAgainst, 0.001)
			assert.Equal(t, tt.expected.LastFive, form.LastFive)
			assert.False(t, form.NoRecentMatches)
		})
	}
}

func TestAnalyzeRecentFormSkipsUnfinishedMatches(t *testing.T) {
	const teamID = 10

	matches := []models.Fixture{
		{ID: 1, HomeTeam: models.Team{ID: teamID}, AwayTeam: models.Team{ID: 2}}, // no score
		playedMatch(2, teamID, 3, 2, 0),
	}

	form := AnalyzeRecentForm(matches, teamID)
	assert.Equal(t, 1, form.Played)
	assert.Equal(t, 1, form.Wins)
	assert.Equal(t, "V", form.LastFive)
}

func TestAnalyzeRecentFormEmptyInput(t *testing.T) {
	form := AnalyzeRecentForm(nil, 10)
	assert.True(t, form.NoRecentMatches)
	assert.Equal(t, "sem jogos recentes", form.LastFive)
	assert.Zero(t, form.WinRate)
	assert.Zero(t, form.Played)
}

func TestAnalyzeRecentFormCapsAtTenMatches(t *testing.T) {
	const teamID = 10

	var matches []models.Fixture
	for i := 0; i < 15; i++ {
		matches = append(matches, playedMatch(i, teamID, 2, 1, 0))
	}

	form := AnalyzeRecentForm(matches, teamID)
	assert.Equal(t, 10, form.Played)
	assert.Equal(t, "V V V V V", form.LastFive)
}

func TestWinStreak(t *testing.T) {
	const teamID = 10

	matches := []models.Fixture{
		playedMatch(1, teamID, 2, 2, 0),
		playedMatch(2, 3, teamID, 0, 1),
		playedMatch(3, teamID, 4, 1, 1), // draw breaks the streak
		playedMatch(4, teamID, 5, 3, 0),
	}

	assert.Equal(t, 2, WinStreak(matches, teamID))
	assert.Equal(t, 0, WinStreak(nil, teamID))
}
