package analysis

import "strings"

// League weight tiers. The rules below are evaluated top to bottom and
// the FIRST match wins; the ordering is part of the contract ("League
// Two" must classify before any generic "division" fallback).
const (
	weightElite        = 120
	weightStrong       = 100
	weightDefault      = 90
	weightWeakCountry  = 80
	weightSecondTier   = 70
	weightThirdTier    = 50
	weightFourthTier   = 30
)

type leagueRule struct {
	name    string
	matches func(league, country string) bool
	weight  float64
}

var topFiveLeagues = []struct {
	league  string
	country string
}{
	{"premier league", "england"},
	{"la liga", "spain"},
	{"serie a", "italy"},
	{"bundesliga", "germany"},
	{"ligue 1", "france"},
}

var topFiveCountries = []string{"england", "spain", "italy", "germany", "france"}

var weakCoefficientCountries = []string{
	"finland", "ireland", "wales", "northern ireland", "iceland",
	"estonia", "latvia", "lithuania", "malta", "luxembourg",
	"andorra", "san marino", "gibraltar", "faroe islands", "armenia",
}

// leagueRules is the ordered classification table.
var leagueRules = []leagueRule{
	{
		name: "top-5 league",
		matches: func(league, country string) bool {
			for _, top := range topFiveLeagues {
				if strings.Contains(league, top.league) && country == top.country {
					return true
				}
			}
			return false
		},
		weight: weightElite,
	},
	{
		name:    "english fourth tier",
		matches: containsLeague("league two"),
		weight:  weightFourthTier,
	},
	{
		name:    "english third tier",
		matches: containsLeague("league one"),
		weight:  weightThirdTier,
	},
	{
		name:    "english second tier",
		matches: containsLeague("championship"),
		weight:  weightSecondTier,
	},
	{
		name:    "premier league",
		matches: containsLeague("premier league"),
		weight:  weightElite,
	},
	{
		name:    "first division",
		matches: containsLeague("liga", "division", "divisão", "división"),
		weight:  weightStrong,
	},
	{
		name:    "second division",
		matches: containsLeague("segunda", "second"),
		weight:  weightSecondTier,
	},
	{
		name:    "third division",
		matches: containsLeague("tercera", "third"),
		weight:  weightThirdTier,
	},
	{
		name:    "fourth division",
		matches: containsLeague("cuarta", "fourth"),
		weight:  weightFourthTier,
	},
	{
		// After the named-tier rules so English lower tiers keep their
		// explicit weights; covers cups and unnamed top-5 competitions.
		name: "top-5 country competition",
		matches: func(league, country string) bool {
			for _, top := range topFiveCountries {
				if country == top {
					return true
				}
			}
			return false
		},
		weight: weightElite,
	},
	{
		name: "weak coefficient country",
		matches: func(league, country string) bool {
			for _, weak := range weakCoefficientCountries {
				if country == weak {
					return true
				}
			}
			return false
		},
		weight: weightWeakCountry,
	},
}

func containsLeague(keywords ...string) func(league, country string) bool {
	return func(league, country string) bool {
		for _, kw := range keywords {
			if strings.Contains(league, kw) {
				return true
			}
		}
		return false
	}
}

// LeagueWeight classifies a league name/country pair against the ordered
// rule table, first match wins. Unmatched leagues get the default weight.
func LeagueWeight(league, country string) float64 {
	league = strings.ToLower(strings.TrimSpace(league))
	country = strings.ToLower(strings.TrimSpace(country))
	for _, rule := range leagueRules {
		if rule.matches(league, country) {
			return rule.weight
		}
	}
	return weightDefault
}

// Club prestige tiers. Substring match on the team name, first tier wins.
var giantClubs = []string{
	"real madrid", "barcelona", "manchester city", "manchester united",
	"liverpool", "bayern", "paris saint-germain", "paris saint germain",
	"juventus", "chelsea", "arsenal",
}

var bigClubs = []string{
	"atletico madrid", "atlético madrid", "ac milan", "inter", "napoli",
	"roma", "borussia dortmund", "tottenham", "benfica", "porto", "ajax",
	"flamengo", "palmeiras", "boca juniors", "river plate", "sevilla",
}

var establishedClubs = []string{
	"villarreal", "leverkusen", "lazio", "atalanta", "lyon", "marseille",
	"monaco", "sporting", "leicester", "west ham", "everton", "newcastle",
	"aston villa", "wolverhampton", "corinthians", "santos", "sao paulo",
	"são paulo", "gremio", "grêmio", "internacional", "fluminense",
	"celtic", "rangers", "fenerbahce", "galatasaray",
}

// Prestige buckets a club name into one of three known tiers.
func Prestige(teamName string) float64 {
	name := strings.ToLower(teamName)
	for _, club := range giantClubs {
		if strings.Contains(name, club) {
			return 40
		}
	}
	for _, club := range bigClubs {
		if strings.Contains(name, club) {
			return 20
		}
	}
	for _, club := range establishedClubs {
		if strings.Contains(name, club) {
			return 10
		}
	}
	return 0
}

// Rivalry name pairs. Order within a pair does not matter.
var rivalryPairs = [][2]string{
	{"real madrid", "barcelona"},
	{"real madrid", "atletico madrid"},
	{"manchester united", "liverpool"},
	{"manchester united", "manchester city"},
	{"arsenal", "tottenham"},
	{"chelsea", "tottenham"},
	{"inter", "ac milan"},
	{"roma", "lazio"},
	{"juventus", "inter"},
	{"borussia dortmund", "bayern"},
	{"flamengo", "fluminense"},
	{"palmeiras", "corinthians"},
	{"santos", "corinthians"},
	{"gremio", "internacional"},
	{"boca juniors", "river plate"},
	{"celtic", "rangers"},
	{"benfica", "porto"},
	{"fenerbahce", "galatasaray"},
}

// IsRivalry reports whether the two club names form a known rivalry.
func IsRivalry(teamA, teamB string) bool {
	a := strings.ToLower(teamA)
	b := strings.ToLower(teamB)
	for _, pair := range rivalryPairs {
		if (strings.Contains(a, pair[0]) && strings.Contains(b, pair[1])) ||
			(strings.Contains(a, pair[1]) && strings.Contains(b, pair[0])) {
			return true
		}
	}
	return false
}

// Competition type detection by league-name substring.
var cupKeywords = []string{"cup", "copa", "taça", "taca", "champions", "libertadores", "sudamericana", "europa", "knockout", "pokal"}
var friendlyKeywords = []string{"friendly", "friendlies", "amistoso"}

// IsCupCompetition reports whether the league name looks like a
// cup/knockout competition.
func IsCupCompetition(leagueName string) bool {
	name := strings.ToLower(leagueName)
	for _, kw := range cupKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// IsFriendly reports whether the league name looks like a friendly.
func IsFriendly(leagueName string) bool {
	name := strings.ToLower(leagueName)
	for _, kw := range friendlyKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}
