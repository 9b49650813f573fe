package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[key]
	if !ok {
		return fmt.Errorf("key not found")
	}
	return json.Unmarshal(data, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
	return nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func envelope(payload string) string {
	return fmt.Sprintf(`{"response": %s}`, payload)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...ClientOption) *FootballDataClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	opts = append(opts, WithRateLimit(1000))
	return NewFootballDataClient(server.URL, "test-key", quietLogger(), opts...)
}

func TestGetTeamRecentMatches(t *testing.T) {
	var gotKey, gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-apisports-key")
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, envelope(`[
			{
				"fixture": {"id": 900, "date": "2026-08-20T19:00:00+00:00", "status": {"short": "FT"}},
				"league": {"id": 140, "name": "La Liga", "country": "Spain", "season": 2026},
				"teams": {"home": {"id": 1, "name": "Osasuna"}, "away": {"id": 2, "name": "Getafe"}},
				"goals": {"home": 2, "away": 1}
			}
		]`))
	})

	fixtures, err := client.GetTeamRecentMatches(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, fixtures, 1)

	assert.Equal(t, "test-key", gotKey)
	assert.Contains(t, gotQuery, "team=1")
	assert.Contains(t, gotQuery, "last=10")

	match := fixtures[0]
	assert.Equal(t, 900, match.ID)
	assert.Equal(t, "Osasuna", match.HomeTeam.Name)
	require.NotNil(t, match.HomeGoals)
	assert.Equal(t, 2, *match.HomeGoals)
	assert.Equal(t, 2026, match.League.Season)
}

func TestGetTeamStatisticsNilWhenNoData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, envelope(`{"fixtures": {"played": {"total": 0}}}`))
	})

	stats, err := client.GetTeamStatistics(context.Background(), 1, 140, 2026)
	require.NoError(t, err)
	assert.Nil(t, stats)
}

func TestGetFixtureOddsFirstBookmaker(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, envelope(`[
			{
				"bookmakers": [
					{
						"name": "Bet365",
						"bets": [
							{
								"name": "Match Winner",
								"values": [
									{"value": "Home", "odd": "1.45"},
									{"value": "Draw", "odd": "4.20"},
									{"value": "Away", "odd": "not-a-number"}
								]
							}
						]
					},
					{"name": "Ignored Second Bookmaker", "bets": []}
				]
			}
		]`))
	})

	odds, err := client.GetFixtureOdds(context.Background(), 900)
	require.NoError(t, err)
	require.NotNil(t, odds)

	assert.Equal(t, "Bet365", odds.Bookmaker)
	require.Len(t, odds.Markets, 1)
	// The unparseable odd is skipped, the rest survive.
	require.Len(t, odds.Markets[0].Values, 2)
	assert.Equal(t, 1.45, odds.Markets[0].Values[0].Odd)
}

func TestGetFixtureOddsNilWhenAbsent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, envelope(`[]`))
	})

	odds, err := client.GetFixtureOdds(context.Background(), 900)
	require.NoError(t, err)
	assert.Nil(t, odds)
}

func TestCacheAside(t *testing.T) {
	calls := 0
	cache := newMemoryCache()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, envelope(`[
			{
				"fixture": {"id": 900, "date": "2026-08-20T19:00:00+00:00", "status": {"short": "FT"}},
				"league": {"id": 140, "name": "La Liga", "country": "Spain", "season": 2026},
				"teams": {"home": {"id": 1, "name": "Osasuna"}, "away": {"id": 2, "name": "Getafe"}},
				"goals": {"home": 2, "away": 1}
			}
		]`))
	}, WithCache(cache))

	_, err := client.GetTeamRecentMatches(context.Background(), 1, 10)
	require.NoError(t, err)
	_, err = client.GetTeamRecentMatches(context.Background(), 1, 10)
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "second read must come from cache")
}

func TestNoRetryOnClientError(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := client.GetTeamRecentMatches(context.Background(), 1, 10)
	require.Error(t, err)
	assert.Equal(t, 1, calls, "4xx responses must not be retried")
}

func TestRetriesOnServerError(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, envelope(`[]`))
	})

	fixtures, err := client.GetTeamRecentMatches(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Empty(t, fixtures)
	assert.Equal(t, 3, calls)
}

func TestEmptyEnvelopeIsNoData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})

	h2h, err := client.GetHeadToHead(context.Background(), 1, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, h2h)
}
