package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type CacheService struct {
	client *redis.Client
}

func NewCacheService(client *redis.Client) *CacheService {
	return &CacheService{
		client: client,
	}
}

func (s *CacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	if err := s.client.Set(ctx, key, data, expiration).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}

	return nil
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return fmt.Errorf("key not found")
		}
		return fmt.Errorf("failed to get cache: %w", err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("failed to unmarshal value: %w", err)
	}

	return nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache: %w", err)
	}
	return nil
}

// Cache key generators
func FixtureCacheKey(fixtureID int) string {
	return fmt.Sprintf("fixture:%d", fixtureID)
}

func TeamStatsCacheKey(teamID, leagueID, season int) string {
	return fmt.Sprintf("stats:%d:%d:%d", teamID, leagueID, season)
}

func UpcomingFixturesCacheKey(teamID int) string {
	return fmt.Sprintf("upcoming:%d", teamID)
}

func RecentMatchesCacheKey(teamID, limit int) string {
	return fmt.Sprintf("recent:%d:%d", teamID, limit)
}

func HeadToHeadCacheKey(teamA, teamB int) string {
	return fmt.Sprintf("h2h:%d:%d", teamA, teamB)
}

func OddsCacheKey(fixtureID int) string {
	return fmt.Sprintf("odds:%d", fixtureID)
}

func TopScorersCacheKey(leagueID, season int) string {
	return fmt.Sprintf("scorers:%d:%d", leagueID, season)
}

// Cache with retry logic
func (s *CacheService) SetWithRetry(ctx context.Context, key string, value interface{}, expiration time.Duration, maxRetries int) error {
	var err error
	for i := 0; i < maxRetries; i++ {
		if err = s.Set(ctx, key, value, expiration); err == nil {
			return nil
		}
		logrus.Warnf("Cache set failed (attempt %d/%d): %v", i+1, maxRetries, err)
		time.Sleep(time.Millisecond * 100 * time.Duration(i+1))
	}
	return err
}
