// Package leaderboard ranks characters by kills and deaths.
package leaderboard

import (
	"context"
	"sort"
	"sync"
)

// Entry is one ranked character
type Entry struct {
	CharacterID   int64   `json:"character_id"`
	CharacterName string  `json:"character_name,omitempty"`
	Score         float64 `json:"score"`
	Rank          int64   `json:"rank"`
}

// Stats is a character's totals
type Stats struct {
	CharacterID int64 `json:"character_id"`
	PvPKills    int   `json:"pvp_kills"`
	Deaths      int   `json:"deaths"`
}

// Board records kills and answers ranking queries
type Board interface {
	RecordKill(ctx context.Context, killerID, victimID int64) error
	TopKillers(ctx context.Context, limit int64) ([]Entry, error)
	TopDeaths(ctx context.Context, limit int64) ([]Entry, error)
	Stats(ctx context.Context, characterID int64) (Stats, error)
}

// Memory is an in-process Board
type Memory struct {
	mu     sync.Mutex
	kills  map[int64]int
	deaths map[int64]int
}

func NewMemory() *Memory {
	return &Memory{kills: make(map[int64]int), deaths: make(map[int64]int)}
}

func (m *Memory) RecordKill(_ context.Context, killerID, victimID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kills[killerID]++
	m.deaths[victimID]++
	return nil
}

func (m *Memory) TopKillers(_ context.Context, limit int64) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return top(m.kills, limit), nil
}

func (m *Memory) TopDeaths(_ context.Context, limit int64) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return top(m.deaths, limit), nil
}

func (m *Memory) Stats(_ context.Context, characterID int64) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{CharacterID: characterID, PvPKills: m.kills[characterID], Deaths: m.deaths[characterID]}, nil
}

func top(scores map[int64]int, limit int64) []Entry {
	out := make([]Entry, 0, len(scores))
	for id, n := range scores {
		out = append(out, Entry{CharacterID: id, Score: float64(n)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].CharacterID < out[j].CharacterID
	})
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	for i := range out {
		out[i].Rank = int64(i + 1)
	}
	return out
}
