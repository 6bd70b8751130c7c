// Package world runs the periodic world loops: position snapshots, mana
// regeneration and the status report.
package world

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/omega-realm/worldserver/internal/presence"
	"github.com/omega-realm/worldserver/internal/protocol"
)

// Config holds the loop cadences
type Config struct {
	TickInterval   time.Duration
	RegenInterval  time.Duration
	RegenAmount    int
	StatusInterval time.Duration
}

// DefaultConfig returns the reference cadences
func DefaultConfig() Config {
	return Config{
		TickInterval:   50 * time.Millisecond,
		RegenInterval:  2 * time.Second,
		RegenAmount:    5,
		StatusInterval: 10 * time.Second,
	}
}

// Stats is the server status summary
type Stats struct {
	ActivePlayers int            `json:"active_players"`
	Accounts      int            `json:"accounts"`
	Characters    int            `json:"characters"`
	Sessions      int            `json:"sessions"`
	ActiveUsers   int            `json:"active_users"`
	Players       []PlayerStatus `json:"players"`
}

// PlayerStatus is one online player in the status report
type PlayerStatus struct {
	Name  string  `json:"name"`
	Level int     `json:"level"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Reporter produces the status summary
type Reporter interface {
	Stats(ctx context.Context) (Stats, error)
}

// Broadcaster runs the world loops until its context is cancelled
type Broadcaster struct {
	cfg       Config
	presences *presence.Table
	sender    presence.Sender
	reporter  Reporter
	wg        sync.WaitGroup
}

// NewBroadcaster creates a broadcaster. reporter may be nil to disable the
// status loop.
func NewBroadcaster(cfg Config, presences *presence.Table, sender presence.Sender, reporter Reporter) *Broadcaster {
	return &Broadcaster{cfg: cfg, presences: presences, sender: sender, reporter: reporter}
}

// Start launches the loops. They stop when ctx is done; Wait blocks until
// they have returned.
func (b *Broadcaster) Start(ctx context.Context) {
	b.run(ctx, b.cfg.TickInterval, b.Tick)
	b.run(ctx, b.cfg.RegenInterval, b.Regenerate)
	if b.reporter != nil {
		b.run(ctx, b.cfg.StatusInterval, func() { b.Report(ctx) })
	}
	log.Printf("[World] Started (tick=%s regen=%s/%d status=%s)",
		b.cfg.TickInterval, b.cfg.RegenInterval, b.cfg.RegenAmount, b.cfg.StatusInterval)
}

// Wait blocks until every loop started by Start has exited
func (b *Broadcaster) Wait() {
	b.wg.Wait()
}

func (b *Broadcaster) run(ctx context.Context, every time.Duration, fn func()) {
	if every <= 0 {
		return
	}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
}

// Tick sends one world snapshot to every presence over the lossy channel.
// Nothing is sent while the world is empty.
func (b *Broadcaster) Tick() {
	live := b.presences.Snapshot()
	if len(live) == 0 {
		return
	}
	update := protocol.WorldUpdate{Players: make([]protocol.PlayerState, 0, len(live))}
	for _, p := range live {
		v := p.Character.Vitals()
		update.Players = append(update.Players, protocol.PlayerState{
			PlayerID:  p.PlayerID,
			Name:      v.Name,
			Level:     v.Level,
			X:         v.X,
			Y:         v.Y,
			Health:    v.Health,
			MaxHealth: v.MaxHealth,
		})
	}
	for _, p := range live {
		b.sender.SendUnreliable(p.Conn, update)
	}
}

// Regenerate restores mana to every live character
func (b *Broadcaster) Regenerate() {
	for _, p := range b.presences.Snapshot() {
		p.Character.RegenMana(b.cfg.RegenAmount)
	}
}

// Report logs the status summary
func (b *Broadcaster) Report(ctx context.Context) {
	s, err := b.reporter.Stats(ctx)
	if err != nil {
		log.Printf("[World] Failed to collect status: %v", err)
		return
	}
	log.Printf("[World] Status: players=%d accounts=%d characters=%d sessions=%d users=%d",
		s.ActivePlayers, s.Accounts, s.Characters, s.Sessions, s.ActiveUsers)
	if len(s.Players) == 0 {
		return
	}
	lines := make([]string, 0, len(s.Players))
	for _, p := range s.Players {
		lines = append(lines, formatPlayer(p))
	}
	log.Printf("[World] Online: %s", strings.Join(lines, ", "))
}

func formatPlayer(p PlayerStatus) string {
	return fmt.Sprintf("%s (lvl %d) at %.1f,%.1f", p.Name, p.Level, p.X, p.Y)
}
