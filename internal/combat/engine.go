// Package combat resolves ability uses between live characters.
package combat

import (
	"context"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/omega-realm/worldserver/internal/apperrors"
	"github.com/omega-realm/worldserver/internal/character"
	"github.com/omega-realm/worldserver/internal/leaderboard"
	"github.com/omega-realm/worldserver/internal/models"
	"github.com/omega-realm/worldserver/internal/presence"
	"github.com/omega-realm/worldserver/internal/protocol"
)

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// Rand supplies uniform values in [0, 1)
type Rand interface {
	Float64() float64
}

// Scheduler runs f once after d without blocking the caller
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, f func()) { time.AfterFunc(d, f) }

// Config holds the combat constants
type Config struct {
	CritChance     float64
	CritMultiplier float64
	RespawnDelay   time.Duration
	SpawnX, SpawnY float64
}

// DefaultConfig returns the reference constants
func DefaultConfig() Config {
	return Config{
		CritChance:     0.15,
		CritMultiplier: 1.5,
		RespawnDelay:   3 * time.Second,
		SpawnX:         character.SpawnX,
		SpawnY:         character.SpawnY,
	}
}

// Engine resolves ability uses and broadcasts their results
type Engine struct {
	cfg       Config
	presences *presence.Table
	sender    presence.Sender
	board     leaderboard.Board

	clock Clock
	rand  Rand
	sched Scheduler
}

// Option customizes an Engine
type Option func(*Engine)

func WithClock(c Clock) Option         { return func(e *Engine) { e.clock = c } }
func WithRand(r Rand) Option           { return func(e *Engine) { e.rand = r } }
func WithScheduler(s Scheduler) Option { return func(e *Engine) { e.sched = s } }

// NewEngine creates an engine. board may be nil.
func NewEngine(cfg Config, presences *presence.Table, sender presence.Sender, board leaderboard.Board, opts ...Option) *Engine {
	e := &Engine{
		cfg:       cfg,
		presences: presences,
		sender:    sender,
		board:     board,
		clock:     systemClock{},
		rand:      globalRand{},
		sched:     timerScheduler{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Outcome is the result of one ability use. CasterMana and CasterHealth
// are filled on failure too.
type Outcome struct {
	Ability           models.Ability
	Target            *presence.Presence
	Damage            int
	Healing           int
	Critical          bool
	TargetHealthAfter int
	Killed            bool
	CasterMana        int
	CasterHealth      int
}

// UseAbility runs one ability use from attacker. targetID <= 0, or an id
// that is not connected, means no target.
func (e *Engine) UseAbility(attacker *presence.Presence, index int, targetID int64) (Outcome, error) {
	var target *presence.Presence
	var targetPos character.Vitals
	if targetID > 0 {
		if p, ok := e.presences.ByPlayerID(targetID); ok {
			target = p
			targetPos = p.Character.Vitals()
		}
	}

	// Only the attacker's lock is held inside Cast; the target was read above.
	now := e.clock.Now()
	ability, casterVitals, err := attacker.Character.Cast(index, now, func(a models.Ability, x, y float64) error {
		if target == nil {
			return nil
		}
		if targetPos.Health <= 0 {
			return apperrors.New(apperrors.TargetDead, "Target is dead")
		}
		if math.Hypot(x-targetPos.X, y-targetPos.Y) > a.Range {
			return apperrors.New(apperrors.TargetOutOfRange, "Target out of range")
		}
		return nil
	})
	if err != nil {
		return Outcome{CasterMana: casterVitals.Mana, CasterHealth: casterVitals.Health}, err
	}

	out := Outcome{Ability: ability, Target: target}
	var recipient *presence.Presence
	switch {
	case ability.Damage > 0 && target != nil:
		raw := ability.Damage
		if e.rand.Float64() < e.cfg.CritChance {
			out.Critical = true
			raw = int(float64(raw) * e.cfg.CritMultiplier)
		}
		out.Damage, out.TargetHealthAfter, out.Killed = target.Character.TakeDamage(raw)
		recipient = target
	case ability.Healing > 0:
		recipient = target
		if recipient == nil {
			recipient = attacker
		}
		out.Healing, out.TargetHealthAfter = recipient.Character.Heal(ability.Healing)
	}

	v := attacker.Character.Vitals()
	out.CasterMana, out.CasterHealth = v.Mana, v.Health
	out.Target = recipient
	if recipient == nil {
		return out, nil
	}

	if out.Killed {
		e.handleDeath(recipient, attacker)
	}
	e.presences.BroadcastReliable(e.sender, protocol.CombatEvent{
		AttackerID:        attacker.PlayerID,
		AttackerName:      attacker.Character.Name(),
		TargetID:          recipient.PlayerID,
		TargetName:        recipient.Character.Name(),
		AbilityName:       ability.Name,
		Damage:            out.Damage,
		Healing:           out.Healing,
		IsCritical:        out.Critical,
		TargetHealthAfter: out.TargetHealthAfter,
		AttackerManaAfter: out.CasterMana,
		Timestamp:         now.UnixMilli(),
	})
	log.Printf("[Combat] %s used %s on %s: damage=%d healing=%d crit=%v",
		attacker.Character.Name(), ability.Name, recipient.Character.Name(), out.Damage, out.Healing, out.Critical)
	return out, nil
}

func (e *Engine) handleDeath(victim, killer *presence.Presence) {
	e.presences.BroadcastReliable(e.sender, protocol.PlayerDeath{
		PlayerID:   victim.PlayerID,
		PlayerName: victim.Character.Name(),
		KillerID:   killer.PlayerID,
		KillerName: killer.Character.Name(),
	})
	log.Printf("[Combat] %s was killed by %s", victim.Character.Name(), killer.Character.Name())

	if e.board != nil {
		killerID, victimID := killer.Character.ID(), victim.Character.ID()
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := e.board.RecordKill(ctx, killerID, victimID); err != nil {
				log.Printf("[Combat] Failed to record kill %d -> %d: %v", killerID, victimID, err)
			}
		}()
	}

	e.sched.AfterFunc(e.cfg.RespawnDelay, func() {
		victim.Character.Respawn(e.cfg.SpawnX, e.cfg.SpawnY)
		// The character may have been reselected on another connection.
		current, ok := e.presences.ByCharacter(victim.Character.ID())
		if !ok {
			return
		}
		e.presences.BroadcastReliable(e.sender, protocol.PlayerRespawn{
			PlayerID: current.PlayerID,
			X:        e.cfg.SpawnX,
			Y:        e.cfg.SpawnY,
		})
		log.Printf("[Combat] %s respawned", victim.Character.Name())
	})
}
