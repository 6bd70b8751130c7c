package world

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/omega-realm/worldserver/internal/catalog"
	"github.com/omega-realm/worldserver/internal/character"
	"github.com/omega-realm/worldserver/internal/models"
	"github.com/omega-realm/worldserver/internal/presence"
	"github.com/omega-realm/worldserver/internal/protocol"
)

type counter struct {
	mu         sync.Mutex
	unreliable map[presence.ConnID][]protocol.Message
	reliable   int
}

func newCounter() *counter {
	return &counter{unreliable: make(map[presence.ConnID][]protocol.Message)}
}

func (c *counter) SendReliable(presence.ConnID, protocol.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reliable++
}

func (c *counter) SendUnreliable(conn presence.ConnID, m protocol.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unreliable[conn] = append(c.unreliable[conn], m)
}

func (c *counter) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, msgs := range c.unreliable {
		n += len(msgs)
	}
	return n
}

func populate(t *testing.T, tbl *presence.Table, n int) []*presence.Presence {
	t.Helper()
	store := character.NewStore(catalog.Default())
	out := make([]*presence.Presence, n)
	for i := range out {
		c, err := store.Create("owner", "Mage", models.ClassMage)
		if err != nil {
			t.Fatal(err)
		}
		p, _, err := tbl.Insert(presence.ConnID(i+1), "owner", c)
		if err != nil {
			t.Fatal(err)
		}
		out[i] = p
	}
	return out
}

func TestTickSkipsEmptyWorld(t *testing.T) {
	sink := newCounter()
	b := NewBroadcaster(DefaultConfig(), presence.NewTable(), sink, nil)
	b.Tick()
	if sink.total() != 0 {
		t.Fatal("sent snapshot with no presences")
	}
}

func TestTickSnapshotsEveryone(t *testing.T) {
	tbl := presence.NewTable()
	ps := populate(t, tbl, 3)
	ps[1].Character.Move(40, 60)

	sink := newCounter()
	NewBroadcaster(DefaultConfig(), tbl, sink, nil).Tick()

	if sink.reliable != 0 {
		t.Fatal("world update went over the reliable channel")
	}
	for _, p := range ps {
		msgs := sink.unreliable[p.Conn]
		if len(msgs) != 1 {
			t.Fatalf("conn %d got %d updates", p.Conn, len(msgs))
		}
		update := msgs[0].(protocol.WorldUpdate)
		if len(update.Players) != 3 {
			t.Fatalf("snapshot has %d players", len(update.Players))
		}
		moved := update.Players[1]
		if moved.PlayerID != ps[1].PlayerID || moved.X != 40 || moved.Y != 60 || moved.MaxHealth != 80 {
			t.Fatalf("entry = %+v", moved)
		}
	}
}

func TestRegenerateClamps(t *testing.T) {
	tbl := presence.NewTable()
	ps := populate(t, tbl, 1)
	c := ps[0].Character
	c.Cast(0, time.Now(), nil) // mage: 150 -> 140

	b := NewBroadcaster(DefaultConfig(), tbl, newCounter(), nil)
	b.Regenerate()
	if v := c.Vitals(); v.Mana != 145 {
		t.Fatalf("mana = %d, want 145", v.Mana)
	}
	b.Regenerate()
	b.Regenerate()
	if v := c.Vitals(); v.Mana != v.MaxMana {
		t.Fatalf("mana = %d, want clamp at %d", v.Mana, v.MaxMana)
	}
}

type staticReporter struct {
	calls int
	mu    sync.Mutex
}

func (r *staticReporter) Stats(context.Context) (Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return Stats{ActivePlayers: 1, Players: []PlayerStatus{{Name: "Hero", Level: 1, X: 100, Y: 100}}}, nil
}

func TestLoopsRunAndStop(t *testing.T) {
	tbl := presence.NewTable()
	populate(t, tbl, 1)
	sink := newCounter()
	rep := &staticReporter{}
	cfg := Config{TickInterval: 5 * time.Millisecond, RegenInterval: 5 * time.Millisecond, RegenAmount: 5, StatusInterval: 5 * time.Millisecond}
	b := NewBroadcaster(cfg, tbl, sink, rep)

	ctx, cancel := context.WithCancel(context.Background())
	b.Start(ctx)
	deadline := time.Now().Add(2 * time.Second)
	for sink.total() < 3 {
		if time.Now().After(deadline) {
			t.Fatal("tick loop never ran")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	b.Wait()

	stopped := sink.total()
	time.Sleep(20 * time.Millisecond)
	if sink.total() != stopped {
		t.Fatal("tick loop kept running after cancel")
	}
	rep.mu.Lock()
	defer rep.mu.Unlock()
	if rep.calls == 0 {
		t.Fatal("status loop never ran")
	}
}
