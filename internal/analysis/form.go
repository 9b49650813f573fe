package analysis

import (
	"strings"

	"github.com/apostai/engine/internal/models"
)

// maxFormMatches caps how many recent matches feed the form reduction.
const maxFormMatches = 10

// AnalyzeRecentForm reduces a team's recent matches into win/draw/loss
// counts, goal averages and a win-rate percentage. Matches without a
// final score are excluded from every aggregate. The function never
// fails: an empty or unusable input yields the zero result with
// NoRecentMatches set.
func AnalyzeRecentForm(matches []models.Fixture, teamID int) models.RecentForm {
	if len(matches) > maxFormMatches {
		matches = matches[:maxFormMatches]
	}

	form := models.RecentForm{}
	var lastFive []string

	for _, match := range matches {
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

		form.Played++
		form.GoalsFor += scored
		form.GoalsAgainst += conceded

		var letter string
		switch {
		case scored > conceded:
			form.Wins++
			letter = "V"
		case scored == conceded:
			form.Draws++
			letter = "E"
		default:
			form.Losses++
			letter = "D"
		}
		if len(lastFive) < 5 {
			lastFive = append(lastFive, letter)
		}
	}

	if form.Played == 0 {
		form.NoRecentMatches = true
		form.LastFive = "sem jogos recentes"
		return form
	}

	form.WinRate = float64(form.Wins) / float64(form.Played) * 100
	form.AvgGoalsFor = float64(form.GoalsFor) / float64(form.Played)
	form.AvgGoalsAgainst = float64(form.GoalsAgainst) / float64(form.Played)
	form.LastFive = strings.Join(lastFive, " ")

	return form
}

// WinStreak counts consecutive wins starting from the most recent match.
func WinStreak(matches []models.Fixture, teamID int) int {
	streak := 0
	for _, match := range matches {
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
		if scored > conceded {
			streak++
		} else {
			break
		}
	}
	return streak
}
