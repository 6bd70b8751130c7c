// Package dispatch routes decoded client messages to the game server.
package dispatch

import (
	"context"
	"log"

	"github.com/omega-realm/worldserver/internal/game"
	"github.com/omega-realm/worldserver/internal/presence"
	"github.com/omega-realm/worldserver/internal/protocol"
)

// Dispatcher calls exactly one game operation per inbound message and sends
// the response, if any, back on the same connection.
type Dispatcher struct {
	server *game.Server
	sender presence.Sender
}

func New(server *game.Server, sender presence.Sender) *Dispatcher {
	return &Dispatcher{server: server, sender: sender}
}

// HandleMessage handles one inbound message. Messages that are not client
// requests are dropped.
func (d *Dispatcher) HandleMessage(ctx context.Context, conn presence.ConnID, m protocol.Message) {
	req, ok := m.(protocol.Request)
	if !ok {
		log.Printf("[Dispatch] Ignoring %s from conn %d", m.Type(), conn)
		return
	}
	resp, handled := d.route(ctx, conn, req)
	if !handled {
		log.Printf("[Dispatch] No handler for %s", req.Type())
		return
	}
	if resp != nil {
		d.sender.SendReliable(conn, resp)
	}
}

// HandleDisconnect takes the connection's character out of the world
func (d *Dispatcher) HandleDisconnect(conn presence.ConnID) {
	d.server.Disconnect(conn)
}

// route returns the response to send, nil for fire-and-forget messages, and
// false when no operation handles the request type
func (d *Dispatcher) route(ctx context.Context, conn presence.ConnID, req protocol.Request) (protocol.Message, bool) {
	s := d.server
	switch r := req.(type) {
	case protocol.LoginRequest:
		return s.Login(ctx, r), true
	case protocol.RegisterRequest:
		return s.Register(ctx, r), true
	case protocol.LogoutRequest:
		return s.Logout(ctx, conn, r), true
	case protocol.CharacterListRequest:
		return s.ListCharacters(ctx, r), true
	case protocol.CreateCharacterRequest:
		return s.CreateCharacter(ctx, r), true
	case protocol.SelectCharacterRequest:
		return s.SelectCharacter(ctx, conn, r), true
	case protocol.PlayerMove:
		s.Move(conn, r)
		return nil, true
	case protocol.ChatMessage:
		s.Chat(conn, r)
		return nil, true
	case protocol.UseAbilityRequest:
		return s.UseAbility(conn, r), true
	case protocol.AttackRequest:
		return s.Attack(conn, r), true
	case protocol.UseItemRequest:
		return s.UseItem(conn, r), true
	case protocol.EquipItemRequest:
		return s.Equip(conn, r), true
	case protocol.UnequipItemRequest:
		return s.Unequip(conn, r), true
	}
	return nil, false
}
