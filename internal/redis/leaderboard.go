package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/omega-realm/worldserver/internal/leaderboard"
)

const (
	// Leaderboard keys
	leaderboardPvPKey    = "leaderboard:pvp"
	leaderboardDeathsKey = "leaderboard:deaths"
)

// Leaderboard keeps kill and death counts in sorted sets keyed by
// character id
type Leaderboard struct {
	client *Client
}

func NewLeaderboard(c *Client) *Leaderboard {
	return &Leaderboard{client: c}
}

func member(id int64) string {
	return strconv.FormatInt(id, 10)
}

// RecordKill updates both killer and victim stats
func (l *Leaderboard) RecordKill(ctx context.Context, killerID, victimID int64) error {
	pipe := l.client.TxPipeline()
	pipe.ZIncrBy(ctx, leaderboardPvPKey, 1, member(killerID))
	pipe.ZIncrBy(ctx, leaderboardDeathsKey, 1, member(victimID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record kill: %w", err)
	}
	return nil
}

// TopKillers returns the top N characters by PvP kills
func (l *Leaderboard) TopKillers(ctx context.Context, limit int64) ([]leaderboard.Entry, error) {
	return l.top(ctx, leaderboardPvPKey, limit)
}

// TopDeaths returns the top N characters by deaths
func (l *Leaderboard) TopDeaths(ctx context.Context, limit int64) ([]leaderboard.Entry, error) {
	return l.top(ctx, leaderboardDeathsKey, limit)
}

func (l *Leaderboard) top(ctx context.Context, key string, limit int64) ([]leaderboard.Entry, error) {
	stop := limit - 1
	if limit <= 0 {
		stop = -1
	}
	players, err := l.client.ZRevRangeWithScores(ctx, key, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}

	entries := make([]leaderboard.Entry, 0, len(players))
	for i, z := range players {
		name, _ := z.Member.(string)
		id, err := strconv.ParseInt(name, 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, leaderboard.Entry{
			CharacterID: id,
			Score:       z.Score,
			Rank:        int64(i + 1),
		})
	}
	return entries, nil
}

// Stats returns the counts for one character. Characters never seen report
// zeros.
func (l *Leaderboard) Stats(ctx context.Context, characterID int64) (leaderboard.Stats, error) {
	pipe := l.client.Pipeline()
	kills := pipe.ZScore(ctx, leaderboardPvPKey, member(characterID))
	deaths := pipe.ZScore(ctx, leaderboardDeathsKey, member(characterID))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return leaderboard.Stats{}, fmt.Errorf("failed to get player stats: %w", err)
	}
	return leaderboard.Stats{
		CharacterID: characterID,
		PvPKills:    int(kills.Val()),
		Deaths:      int(deaths.Val()),
	}, nil
}
