package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/omega-realm/worldserver/internal/account"
	"github.com/omega-realm/worldserver/internal/auth"
	"github.com/omega-realm/worldserver/internal/catalog"
	"github.com/omega-realm/worldserver/internal/character"
	"github.com/omega-realm/worldserver/internal/combat"
	"github.com/omega-realm/worldserver/internal/game"
	"github.com/omega-realm/worldserver/internal/leaderboard"
	"github.com/omega-realm/worldserver/internal/models"
	"github.com/omega-realm/worldserver/internal/presence"
	"github.com/omega-realm/worldserver/internal/protocol"
)

type sink struct {
	mu   sync.Mutex
	msgs map[presence.ConnID][]protocol.Message
}

func (s *sink) SendReliable(conn presence.ConnID, m protocol.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs[conn] = append(s.msgs[conn], m)
}

func (s *sink) SendUnreliable(conn presence.ConnID, m protocol.Message) {
	s.SendReliable(conn, m)
}

func (s *sink) drain(conn presence.ConnID) []protocol.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.msgs[conn]
	delete(s.msgs, conn)
	return out
}

func newDispatcher(t *testing.T) (*Dispatcher, *game.Server, *sink) {
	t.Helper()
	out := &sink{msgs: make(map[presence.ConnID][]protocol.Message)}
	table := presence.NewTable()
	board := leaderboard.NewMemory()
	srv := game.NewServer(game.Deps{
		Accounts: account.NewDirectory(account.NewMemoryRepository(), account.NewMemorySessions(),
			account.PlaintextVerifier{}, auth.NewIssuer([]byte("dispatch-test"), time.Hour)),
		Characters:  character.NewStore(catalog.Default()),
		Presences:   table,
		Combat:      combat.NewEngine(combat.DefaultConfig(), table, out, board),
		Sender:      out,
		Leaderboard: board,
	})
	return New(srv, out), srv, out
}

func TestEveryRequestRouted(t *testing.T) {
	d, _, _ := newDispatcher(t)
	ctx := context.Background()
	for _, name := range protocol.Types() {
		m, err := protocol.Decode([]byte(`{"type":"` + name + `"}`))
		if err != nil {
			t.Fatalf("decode %s: %v", name, err)
		}
		req, ok := m.(protocol.Request)
		if !ok {
			continue
		}
		if _, handled := d.route(ctx, 1, req); !handled {
			t.Errorf("%s has no handler", name)
		}
	}
}

func TestOneResponsePerRequest(t *testing.T) {
	d, _, out := newDispatcher(t)
	ctx := context.Background()

	d.HandleMessage(ctx, 1, protocol.RegisterRequest{Username: "alice", Password: "secret"})
	msgs := out.drain(1)
	if len(msgs) != 1 {
		t.Fatalf("got %d responses", len(msgs))
	}
	if r, ok := msgs[0].(protocol.RegisterResponse); !ok || !r.Success {
		t.Fatalf("response = %#v", msgs[0])
	}

	d.HandleMessage(ctx, 1, protocol.LoginRequest{Username: "alice", Password: "wrong"})
	msgs = out.drain(1)
	if r := msgs[0].(protocol.LoginResponse); r.Success || r.Message != "Invalid username or password" {
		t.Fatalf("login = %+v", r)
	}
}

func TestFireAndForgetAndIgnored(t *testing.T) {
	d, srv, out := newDispatcher(t)
	ctx := context.Background()

	d.HandleMessage(ctx, 1, protocol.PlayerMove{X: 1, Y: 2})
	d.HandleMessage(ctx, 1, protocol.ChatMessage{Message: "nobody hears"})
	d.HandleMessage(ctx, 1, protocol.WorldUpdate{})
	d.HandleMessage(ctx, 1, protocol.CombatEvent{})
	if msgs := out.drain(1); len(msgs) != 0 {
		t.Fatalf("unexpected responses: %#v", msgs)
	}
	if srv.Presences().Len() != 0 {
		t.Fatal("ignored messages created state")
	}
}

func TestSelectMoveDisconnect(t *testing.T) {
	d, srv, out := newDispatcher(t)
	ctx := context.Background()

	d.HandleMessage(ctx, 5, protocol.RegisterRequest{Username: "alice", Password: "secret"})
	d.HandleMessage(ctx, 5, protocol.LoginRequest{Username: "alice", Password: "secret"})
	msgs := out.drain(5)
	token := msgs[1].(protocol.LoginResponse).Token

	d.HandleMessage(ctx, 5, protocol.CreateCharacterRequest{Token: token, Name: "Aria", Class: models.ClassRogue})
	created := out.drain(5)[0].(protocol.CreateCharacterResponse)
	d.HandleMessage(ctx, 5, protocol.SelectCharacterRequest{Token: token, CharacterID: created.Character.ID})
	if sel := out.drain(5)[0].(protocol.SelectCharacterResponse); !sel.Success {
		t.Fatalf("select = %+v", sel)
	}

	d.HandleMessage(ctx, 5, protocol.PlayerMove{X: 7, Y: 9})
	p, ok := srv.Presences().ByConn(5)
	if !ok {
		t.Fatal("no presence after select")
	}
	if v := p.Character.Vitals(); v.X != 7 || v.Y != 9 {
		t.Fatalf("position = %v,%v", v.X, v.Y)
	}

	d.HandleDisconnect(5)
	if _, ok := srv.Presences().ByConn(5); ok {
		t.Fatal("presence survived disconnect")
	}
	if p.Online() {
		t.Fatal("presence still online")
	}
}
