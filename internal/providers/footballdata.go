package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/apostai/engine/internal/models"
	"github.com/apostai/engine/internal/services"
)

// Cache is the subset of the cache service the client needs. A nil Cache
// disables caching entirely, which tests rely on.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// Breaker guards calls to the upstream API.
type Breaker interface {
	Execute(service string, fn func() (interface{}, error)) (interface{}, error)
}

// FootballDataClient talks to an API-Football style HTTP provider. Every
// response is treated as optionally absent: "no data" comes back as a nil
// result with a nil error, never as a failure.
type FootballDataClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cache      Cache
	breaker    Breaker
	limiter    *rate.Limiter
	logger     *logrus.Logger
}

// ClientOption configures the client.
type ClientOption func(*FootballDataClient)

// WithCache enables cache-aside reads through the given cache.
func WithCache(cache Cache) ClientOption {
	return func(c *FootballDataClient) {
		c.cache = cache
	}
}

// WithBreaker wraps upstream calls in circuit breakers.
func WithBreaker(breaker Breaker) ClientOption {
	return func(c *FootballDataClient) {
		c.breaker = breaker
	}
}

// WithTimeout overrides the HTTP client timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *FootballDataClient) {
		c.httpClient.Timeout = timeout
	}
}

// WithRateLimit sets the request budget in requests per second.
func WithRateLimit(rps float64) ClientOption {
	return func(c *FootballDataClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps))
	}
}

// NewFootballDataClient creates a provider client.
func NewFootballDataClient(baseURL, apiKey string, logger *logrus.Logger, opts ...ClientOption) *FootballDataClient {
	c := &FootballDataClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(8), 8),
		logger:  logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Raw API shapes. The provider wraps every payload in a "response" field.

type apiEnvelope struct {
	Response json.RawMessage `json:"response"`
}

type apiFixture struct {
	Fixture struct {
		ID    int    `json:"id"`
		Date  string `json:"date"`
		Venue struct {
			Name string `json:"name"`
		} `json:"venue"`
		Status struct {
			Short string `json:"short"`
		} `json:"status"`
	} `json:"fixture"`
	League struct {
		ID      int    `json:"id"`
		Name    string `json:"name"`
		Country string `json:"country"`
		Season  int    `json:"season"`
	} `json:"league"`
	Teams struct {
		Home apiTeam `json:"home"`
		Away apiTeam `json:"away"`
	} `json:"teams"`
	Goals struct {
		Home *int `json:"home"`
		Away *int `json:"away"`
	} `json:"goals"`
}

type apiTeam struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
	Founded int    `json:"founded"`
	Logo    string `json:"logo"`
}

type apiTeamSearch struct {
	Team apiTeam `json:"team"`
}

type apiTeamStatistics struct {
	Fixtures struct {
		Played struct {
			Total int `json:"total"`
		} `json:"played"`
		Wins struct {
			Total int `json:"total"`
		} `json:"wins"`
		Draws struct {
			Total int `json:"total"`
		} `json:"draws"`
		Loses struct {
			Total int `json:"total"`
		} `json:"loses"`
	} `json:"fixtures"`
	Goals struct {
		For struct {
			Total struct {
				Total int `json:"total"`
			} `json:"total"`
		} `json:"for"`
		Against struct {
			Total struct {
				Total int `json:"total"`
			} `json:"total"`
		} `json:"against"`
	} `json:"goals"`
}

type apiFixtureStatistics struct {
	Team       apiTeam `json:"team"`
	Statistics []struct {
		Type  string      `json:"type"`
		Value interface{} `json:"value"`
	} `json:"statistics"`
}

type apiOdds struct {
	Bookmakers []struct {
		Name string `json:"name"`
		Bets []struct {
			Name   string `json:"name"`
			Values []struct {
				Value string `json:"value"`
				Odd   string `json:"odd"`
			} `json:"values"`
		} `json:"bets"`
	} `json:"bookmakers"`
}

type apiTopScorer struct {
	Player struct {
		Name string `json:"name"`
	} `json:"player"`
	Statistics []struct {
		Team struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"team"`
		Goals struct {
			Total int `json:"total"`
		} `json:"goals"`
	} `json:"statistics"`
}

type apiLeagueEntry struct {
	League struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"league"`
	Country struct {
		Name string `json:"name"`
	} `json:"country"`
	Seasons []struct {
		Year    int  `json:"year"`
		Current bool `json:"current"`
	} `json:"seasons"`
}

// GetTeamsBySearch searches teams by name.
func (c *FootballDataClient) GetTeamsBySearch(ctx context.Context, name string) ([]models.Team, error) {
	params := url.Values{}
	params.Set("search", name)

	var raw []apiTeamSearch
	if err := c.get(ctx, services.BreakerFootballData, "/teams", params, &raw); err != nil {
		return nil, err
	}

	teams := make([]models.Team, 0, len(raw))
	for _, entry := range raw {
		teams = append(teams, models.Team{
			ID:      entry.Team.ID,
			Name:    entry.Team.Name,
			Country: entry.Team.Country,
			Founded: entry.Team.Founded,
			Logo:    entry.Team.Logo,
		})
	}
	return teams, nil
}

// GetUpcomingFixtures lists the next scheduled fixtures for a team.
func (c *FootballDataClient) GetUpcomingFixtures(ctx context.Context, teamID int) ([]models.Fixture, error) {
	cacheKey := services.UpcomingFixturesCacheKey(teamID)
	var cached []models.Fixture
	if c.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}

	params := url.Values{}
	params.Set("team", strconv.Itoa(teamID))
	params.Set("next", "10")

	var raw []apiFixture
	if err := c.get(ctx, services.BreakerFootballData, "/fixtures", params, &raw); err != nil {
		return nil, err
	}

	fixtures := mapFixtures(raw)
	c.cacheSet(ctx, cacheKey, fixtures, 30*time.Minute)
	return fixtures, nil
}

// GetFixture fetches a single fixture by ID.
func (c *FootballDataClient) GetFixture(ctx context.Context, fixtureID int) (*models.Fixture, error) {
	cacheKey := services.FixtureCacheKey(fixtureID)
	var cached models.Fixture
	if c.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	params := url.Values{}
	params.Set("id", strconv.Itoa(fixtureID))

	var raw []apiFixture
	if err := c.get(ctx, services.BreakerFootballData, "/fixtures", params, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	fixtures := mapFixtures(raw)
	c.cacheSet(ctx, cacheKey, fixtures[0], 10*time.Minute)
	return &fixtures[0], nil
}

// GetTeamStatistics fetches the season record of a team within a league.
// Returns nil when the provider has no data for the combination.
func (c *FootballDataClient) GetTeamStatistics(ctx context.Context, teamID, leagueID, season int) (*models.TeamStats, error) {
	cacheKey := services.TeamStatsCacheKey(teamID, leagueID, season)
	var cached models.TeamStats
	if c.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	params := url.Values{}
	params.Set("team", strconv.Itoa(teamID))
	params.Set("league", strconv.Itoa(leagueID))
	params.Set("season", strconv.Itoa(season))

	var raw apiTeamStatistics
	if err := c.get(ctx, services.BreakerFootballData, "/teams/statistics", params, &raw); err != nil {
		return nil, err
	}
	if raw.Fixtures.Played.Total == 0 {
		return nil, nil
	}

	stats := &models.TeamStats{
		Played:       raw.Fixtures.Played.Total,
		Wins:         raw.Fixtures.Wins.Total,
		Draws:        raw.Fixtures.Draws.Total,
		Losses:       raw.Fixtures.Loses.Total,
		GoalsFor:     raw.Goals.For.Total.Total,
		GoalsAgainst: raw.Goals.Against.Total.Total,
	}
	c.cacheSet(ctx, cacheKey, stats, 30*time.Minute)
	return stats, nil
}

// GetHeadToHead fetches the historical meetings of two teams.
func (c *FootballDataClient) GetHeadToHead(ctx context.Context, teamAID, teamBID, limit int) ([]models.Fixture, error) {
	cacheKey := services.HeadToHeadCacheKey(teamAID, teamBID)
	var cached []models.Fixture
	if c.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}

	params := url.Values{}
	params.Set("h2h", fmt.Sprintf("%d-%d", teamAID, teamBID))
	params.Set("last", strconv.Itoa(limit))

	var raw []apiFixture
	if err := c.get(ctx, services.BreakerFootballData, "/fixtures/headtohead", params, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	fixtures := mapFixtures(raw)
	c.cacheSet(ctx, cacheKey, fixtures, time.Hour)
	return fixtures, nil
}

// GetTeamRecentMatches fetches the last played matches of a team, most
// recent first.
func (c *FootballDataClient) GetTeamRecentMatches(ctx context.Context, teamID, limit int) ([]models.Fixture, error) {
	cacheKey := services.RecentMatchesCacheKey(teamID, limit)
	var cached []models.Fixture
	if c.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}

	params := url.Values{}
	params.Set("team", strconv.Itoa(teamID))
	params.Set("last", strconv.Itoa(limit))

	var raw []apiFixture
	if err := c.get(ctx, services.BreakerFootballData, "/fixtures", params, &raw); err != nil {
		return nil, err
	}

	fixtures := mapFixtures(raw)
	if len(fixtures) > 0 {
		c.cacheSet(ctx, cacheKey, fixtures, 30*time.Minute)
	}
	return fixtures, nil
}

// GetFixtureStatistics fetches the corner/card/shot counts of one played
// fixture. Returns nil when the provider has no statistics for it.
func (c *FootballDataClient) GetFixtureStatistics(ctx context.Context, fixtureID int) (*models.FixtureStatistics, error) {
	params := url.Values{}
	params.Set("fixture", strconv.Itoa(fixtureID))

	var raw []apiFixtureStatistics
	if err := c.get(ctx, services.BreakerFootballData, "/fixtures/statistics", params, &raw); err != nil {
		return nil, err
	}
	if len(raw) < 2 {
		return nil, nil
	}

	stats := &models.FixtureStatistics{
		FixtureID: fixtureID,
		Home:      mapSideStats(raw[0]),
		Away:      mapSideStats(raw[1]),
	}
	return stats, nil
}

// GetFixtureOdds fetches the first bookmaker's odds tree for a fixture.
// Absence of odds is a nil result, not an error.
func (c *FootballDataClient) GetFixtureOdds(ctx context.Context, fixtureID int) (*models.FixtureOdds, error) {
	cacheKey := services.OddsCacheKey(fixtureID)
	var cached models.FixtureOdds
	if c.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	params := url.Values{}
	params.Set("fixture", strconv.Itoa(fixtureID))

	var raw []apiOdds
	if err := c.get(ctx, services.BreakerOdds, "/odds", params, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 || len(raw[0].Bookmakers) == 0 {
		return nil, nil
	}

	book := raw[0].Bookmakers[0]
	odds := &models.FixtureOdds{
		FixtureID: fixtureID,
		Bookmaker: book.Name,
	}
	for _, bet := range book.Bets {
		market := models.OddMarket{Name: bet.Name}
		for _, v := range bet.Values {
			odd, err := strconv.ParseFloat(v.Odd, 64)
			if err != nil {
				continue
			}
			market.Values = append(market.Values, models.OddValue{Value: v.Value, Odd: odd})
		}
		if len(market.Values) > 0 {
			odds.Markets = append(odds.Markets, market)
		}
	}

	c.cacheSet(ctx, cacheKey, odds, 5*time.Minute)
	return odds, nil
}

// GetLeagueTopScorers fetches the ranked scorer list of a league season.
func (c *FootballDataClient) GetLeagueTopScorers(ctx context.Context, leagueID, season int) ([]models.TopScorer, error) {
	cacheKey := services.TopScorersCacheKey(leagueID, season)
	var cached []models.TopScorer
	if c.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}

	params := url.Values{}
	params.Set("league", strconv.Itoa(leagueID))
	params.Set("season", strconv.Itoa(season))

	var raw []apiTopScorer
	if err := c.get(ctx, services.BreakerScorers, "/players/topscorers", params, &raw); err != nil {
		return nil, err
	}

	scorers := make([]models.TopScorer, 0, len(raw))
	for _, entry := range raw {
		if len(entry.Statistics) == 0 {
			continue
		}
		scorers = append(scorers, models.TopScorer{
			PlayerName: entry.Player.Name,
			TeamID:     entry.Statistics[0].Team.ID,
			TeamName:   entry.Statistics[0].Team.Name,
			Goals:      entry.Statistics[0].Goals.Total,
		})
	}

	if len(scorers) > 0 {
		c.cacheSet(ctx, cacheKey, scorers, time.Hour)
	}
	return scorers, nil
}

// GetTeamCurrentLeague resolves the league a team currently plays in.
// Used for cross-tier cup ties; nil when the provider cannot tell.
func (c *FootballDataClient) GetTeamCurrentLeague(ctx context.Context, teamID int) (*models.League, error) {
	params := url.Values{}
	params.Set("team", strconv.Itoa(teamID))
	params.Set("current", "true")
	params.Set("type", "league")

	var raw []apiLeagueEntry
	if err := c.get(ctx, services.BreakerFootballData, "/leagues", params, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	entry := raw[0]
	league := &models.League{
		ID:      entry.League.ID,
		Name:    entry.League.Name,
		Country: entry.Country.Name,
	}
	for _, season := range entry.Seasons {
		if season.Current {
			league.Season = season.Year
		}
	}
	return league, nil
}

// get performs a rate-limited, breaker-guarded GET with retries and
// decodes the provider envelope into result.
func (c *FootballDataClient) get(ctx context.Context, breakerName, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	fn := func() (interface{}, error) {
		return nil, c.doRequest(ctx, u, result)
	}

	var err error
	if c.breaker != nil {
		_, err = c.breaker.Execute(breakerName, fn)
	} else {
		_, err = fn()
	}
	return err
}

func (c *FootballDataClient) doRequest(ctx context.Context, url string, result interface{}) error {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			wait := time.Duration(attempt) * 500 * time.Millisecond
			c.logger.WithFields(logrus.Fields{
				"component": "football_data",
				"attempt":   attempt + 1,
			}).Warnf("Retrying request after %v: %v", wait, lastErr)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("x-apisports-key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
			// Client errors won't heal on retry
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return lastErr
			}
			continue
		}

		var envelope apiEnvelope
		err = json.NewDecoder(resp.Body).Decode(&envelope)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("decode response: %w", err)
		}

		if len(envelope.Response) == 0 {
			return nil
		}
		if err := json.Unmarshal(envelope.Response, result); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		return nil
	}
	return fmt.Errorf("request failed after retries: %w", lastErr)
}

func (c *FootballDataClient) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if c.cache == nil {
		return false
	}
	return c.cache.Get(ctx, key, dest) == nil
}

func (c *FootballDataClient) cacheSet(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, key, value, ttl); err != nil {
		c.logger.WithFields(logrus.Fields{
			"component": "football_data",
			"key":       key,
		}).Warnf("Failed to cache response: %v", err)
	}
}

func mapFixtures(raw []apiFixture) []models.Fixture {
	fixtures := make([]models.Fixture, 0, len(raw))
	for _, entry := range raw {
		date, _ := time.Parse(time.RFC3339, entry.Fixture.Date)
		fixtures = append(fixtures, models.Fixture{
			ID:     entry.Fixture.ID,
			Date:   date,
			Venue:  entry.Fixture.Venue.Name,
			Status: entry.Fixture.Status.Short,
			League: models.League{
				ID:      entry.League.ID,
				Name:    entry.League.Name,
				Country: entry.League.Country,
				Season:  entry.League.Season,
			},
			HomeTeam: models.Team{
				ID:      entry.Teams.Home.ID,
				Name:    entry.Teams.Home.Name,
				Country: entry.League.Country,
			},
			AwayTeam: models.Team{
				ID:      entry.Teams.Away.ID,
				Name:    entry.Teams.Away.Name,
				Country: entry.League.Country,
			},
			HomeGoals: entry.Goals.Home,
			AwayGoals: entry.Goals.Away,
		})
	}
	return fixtures
}

func mapSideStats(raw apiFixtureStatistics) models.FixtureSideStats {
	side := models.FixtureSideStats{TeamID: raw.Team.ID}
	for _, stat := range raw.Statistics {
		value := toFloat(stat.Value)
		switch stat.Type {
		case "Corner Kicks":
			side.Corners = value
		case "Yellow Cards":
			side.YellowCards = value
		case "Red Cards":
			side.RedCards = value
		case "Shots on Goal":
			side.ShotsOnGoal = value
		}
	}
	return side
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	default:
		return 0
	}
}
