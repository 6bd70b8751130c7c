// Package game holds the server state and the operation behind every
// client request.
package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/omega-realm/worldserver/internal/account"
	"github.com/omega-realm/worldserver/internal/apperrors"
	"github.com/omega-realm/worldserver/internal/character"
	"github.com/omega-realm/worldserver/internal/combat"
	"github.com/omega-realm/worldserver/internal/leaderboard"
	"github.com/omega-realm/worldserver/internal/models"
	"github.com/omega-realm/worldserver/internal/presence"
	"github.com/omega-realm/worldserver/internal/protocol"
	"github.com/omega-realm/worldserver/internal/world"
)

// Deps are the components a Server is built from
type Deps struct {
	Accounts    *account.Directory
	Characters  *character.Store
	Presences   *presence.Table
	Combat      *combat.Engine
	Sender      presence.Sender
	Leaderboard leaderboard.Board
}

// Server is the shard state. It is safe for concurrent use by every
// connection goroutine.
type Server struct {
	accounts   *account.Directory
	characters *character.Store
	presences  *presence.Table
	combat     *combat.Engine
	sender     presence.Sender
	board      leaderboard.Board
	now        func() time.Time
}

func NewServer(d Deps) *Server {
	return &Server{
		accounts:   d.Accounts,
		characters: d.Characters,
		presences:  d.Presences,
		combat:     d.Combat,
		sender:     d.Sender,
		board:      d.Leaderboard,
		now:        time.Now,
	}
}

// SetClock overrides the chat timestamp source
func (s *Server) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Server) Accounts() *account.Directory   { return s.accounts }
func (s *Server) Characters() *character.Store   { return s.characters }
func (s *Server) Presences() *presence.Table     { return s.presences }
func (s *Server) Leaderboard() leaderboard.Board { return s.board }

// failure logs internal errors and returns the client-facing message
func failure(op string, err error) string {
	if apperrors.HasCode(err, apperrors.Internal) {
		log.Printf("[Server] %s failed: %v", op, err)
	}
	return apperrors.MessageOf(err)
}

func noCharacter() error {
	return apperrors.New(apperrors.NoActiveCharacter, "No character selected")
}

func (s *Server) Register(ctx context.Context, req protocol.RegisterRequest) protocol.RegisterResponse {
	if err := s.accounts.Register(ctx, req.Username, req.Password, req.Email); err != nil {
		return protocol.RegisterResponse{Message: failure("register", err)}
	}
	return protocol.RegisterResponse{Success: true, Message: "Account created successfully"}
}

func (s *Server) Login(ctx context.Context, req protocol.LoginRequest) protocol.LoginResponse {
	token, err := s.accounts.Login(ctx, req.Username, req.Password)
	if err != nil {
		return protocol.LoginResponse{Message: failure("login", err)}
	}
	return protocol.LoginResponse{Success: true, Message: "Login successful", Token: token}
}

// Logout revokes the token and takes the connection's character offline
func (s *Server) Logout(ctx context.Context, conn presence.ConnID, req protocol.LogoutRequest) protocol.LogoutResponse {
	if _, err := s.accounts.ResolveSession(ctx, req.Token); err != nil {
		return protocol.LogoutResponse{Message: failure("logout", err)}
	}
	if err := s.accounts.Revoke(ctx, req.Token); err != nil {
		return protocol.LogoutResponse{Message: failure("logout", err)}
	}
	s.leave(conn, "logged out")
	return protocol.LogoutResponse{Success: true, Message: "Logged out"}
}

func (s *Server) ListCharacters(ctx context.Context, req protocol.CharacterListRequest) protocol.CharacterListResponse {
	username, err := s.accounts.ResolveSession(ctx, req.Token)
	if err != nil {
		return protocol.CharacterListResponse{Message: failure("list characters", err), Characters: []models.CharacterData{}}
	}
	return protocol.CharacterListResponse{Success: true, Characters: s.CharactersOf(username)}
}

// CharactersOf snapshots every character owned by username
func (s *Server) CharactersOf(username string) []models.CharacterData {
	owned := s.characters.ListByOwner(username)
	out := make([]models.CharacterData, 0, len(owned))
	for _, c := range owned {
		out = append(out, c.Snapshot())
	}
	return out
}

func (s *Server) CreateCharacter(ctx context.Context, req protocol.CreateCharacterRequest) protocol.CreateCharacterResponse {
	username, err := s.accounts.ResolveSession(ctx, req.Token)
	if err != nil {
		return protocol.CreateCharacterResponse{Message: failure("create character", err)}
	}
	c, err := s.characters.Create(username, req.Name, req.Class)
	if err != nil {
		return protocol.CreateCharacterResponse{Message: failure("create character", err)}
	}
	data := c.Snapshot()
	return protocol.CreateCharacterResponse{Success: true, Message: "Character created successfully", Character: &data}
}

// SelectCharacter brings an owned character into the world on conn
func (s *Server) SelectCharacter(ctx context.Context, conn presence.ConnID, req protocol.SelectCharacterRequest) protocol.SelectCharacterResponse {
	username, err := s.accounts.ResolveSession(ctx, req.Token)
	if err != nil {
		return protocol.SelectCharacterResponse{Message: failure("select character", err)}
	}
	c, err := s.characters.GetOwned(username, req.CharacterID)
	if err != nil {
		return protocol.SelectCharacterResponse{Message: failure("select character", err)}
	}
	p, old, err := s.presences.Insert(conn, username, c)
	if errors.Is(err, presence.ErrCharacterActive) {
		err = apperrors.New(apperrors.CharacterInUse, "Character is already in the world")
	}
	if err != nil {
		return protocol.SelectCharacterResponse{Message: failure("select character", err)}
	}
	if old != nil {
		log.Printf("[Server] %s switched from %s to %s", username, old.Character.Name(), c.Name())
	}

	log.Printf("[Server] Player %s entered world as %s (player %d)", username, c.Name(), p.PlayerID)
	data := p.Data()
	return protocol.SelectCharacterResponse{Success: true, Message: "Character selected", PlayerData: &data}
}

// Move applies a position report; there is no response
func (s *Server) Move(conn presence.ConnID, req protocol.PlayerMove) {
	p, ok := s.presences.ByConn(conn)
	if !ok {
		return
	}
	p.Character.Move(req.X, req.Y)
	s.presences.UpdateActivity(conn)
}

// Chat stamps the message with the speaker's character name and the server
// time and relays it to everyone
func (s *Server) Chat(conn presence.ConnID, req protocol.ChatMessage) {
	p, ok := s.presences.ByConn(conn)
	if !ok {
		return
	}
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return
	}
	msg := protocol.ChatMessage{
		Sender:    p.Character.Name(),
		Message:   text,
		Timestamp: s.now().UnixMilli(),
	}
	log.Printf("[Server] Chat from %s: %s", msg.Sender, msg.Message)
	s.presences.BroadcastReliable(s.sender, msg)
}

func (s *Server) UseAbility(conn presence.ConnID, req protocol.UseAbilityRequest) protocol.UseAbilityResponse {
	return s.useAbility(conn, req.AbilityIndex, req.TargetPlayerID)
}

// Attack is UseAbility without a target position
func (s *Server) Attack(conn presence.ConnID, req protocol.AttackRequest) protocol.UseAbilityResponse {
	return s.useAbility(conn, req.AbilityIndex, req.TargetPlayerID)
}

func (s *Server) useAbility(conn presence.ConnID, index int, target int64) protocol.UseAbilityResponse {
	p, ok := s.presences.ByConn(conn)
	if !ok {
		return protocol.UseAbilityResponse{Message: failure("use ability", noCharacter())}
	}
	out, err := s.combat.UseAbility(p, index, target)
	resp := protocol.UseAbilityResponse{CurrentMana: out.CasterMana, CurrentHealth: out.CasterHealth}
	if err != nil {
		resp.Message = failure("use ability", err)
		return resp
	}
	resp.Success = true
	resp.Message = "Ability used successfully"
	return resp
}

func (s *Server) UseItem(conn presence.ConnID, req protocol.UseItemRequest) protocol.UseItemResponse {
	p, ok := s.presences.ByConn(conn)
	if !ok {
		return protocol.UseItemResponse{Message: failure("use item", noCharacter())}
	}
	res, err := p.Character.UseConsumable(req.SlotIndex)
	if err != nil {
		return protocol.UseItemResponse{Message: failure("use item", err)}
	}
	return protocol.UseItemResponse{
		Success:        true,
		Message:        "Used " + res.Item.Name,
		HealthRestored: res.HealthRestored,
		ManaRestored:   res.ManaRestored,
	}
}

func (s *Server) Equip(conn presence.ConnID, req protocol.EquipItemRequest) protocol.EquipItemResponse {
	p, ok := s.presences.ByConn(conn)
	if !ok {
		return protocol.EquipItemResponse{Message: failure("equip", noCharacter())}
	}
	item, err := p.Character.Equip(req.SlotIndex)
	if err != nil {
		return protocol.EquipItemResponse{Message: failure("equip", err)}
	}
	data := p.Character.Snapshot()
	return protocol.EquipItemResponse{Success: true, Message: "Equipped " + item.Name, UpdatedCharacter: &data}
}

func (s *Server) Unequip(conn presence.ConnID, req protocol.UnequipItemRequest) protocol.UnequipItemResponse {
	p, ok := s.presences.ByConn(conn)
	if !ok {
		return protocol.UnequipItemResponse{Message: failure("unequip", noCharacter())}
	}
	item, err := p.Character.Unequip(req.EquipmentSlot)
	if err != nil {
		return protocol.UnequipItemResponse{Message: failure("unequip", err)}
	}
	data := p.Character.Snapshot()
	return protocol.UnequipItemResponse{Success: true, Message: "Unequipped " + item.Name, UpdatedCharacter: &data}
}

// Disconnect removes the connection's presence. Calling it for a
// connection without one is a no-op.
func (s *Server) Disconnect(conn presence.ConnID) {
	s.leave(conn, "disconnected")
}

func (s *Server) leave(conn presence.ConnID, why string) {
	if p := s.presences.Remove(conn); p != nil {
		log.Printf("[Server] Player %s (%s) %s", p.Username, p.Character.Name(), why)
	}
}

// Stats implements world.Reporter
func (s *Server) Stats(ctx context.Context) (world.Stats, error) {
	accounts, sessions, err := s.accounts.Stats(ctx)
	if err != nil {
		return world.Stats{}, err
	}
	users, err := s.accounts.ActiveUsers(ctx)
	if err != nil {
		return world.Stats{}, err
	}
	live := s.presences.Snapshot()
	st := world.Stats{
		ActivePlayers: len(live),
		Accounts:      accounts,
		Characters:    s.characters.Count(),
		Sessions:      sessions,
		ActiveUsers:   users,
		Players:       make([]world.PlayerStatus, 0, len(live)),
	}
	for _, p := range live {
		v := p.Character.Vitals()
		st.Players = append(st.Players, world.PlayerStatus{Name: v.Name, Level: v.Level, X: v.X, Y: v.Y})
	}
	return st, nil
}

// Test account credentials created by SeedTestAccount
const (
	TestUsername      = "test"
	TestPassword      = "test"
	TestEmail         = "test@test.com"
	TestCharacterName = "TestWarrior"
)

// SeedTestAccount registers the local test account with one Warrior. It is
// a no-op when the account already exists.
func (s *Server) SeedTestAccount(ctx context.Context) error {
	exists, err := s.accounts.Exists(ctx, TestUsername)
	if err != nil {
		return fmt.Errorf("failed to check test account: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.accounts.Register(ctx, TestUsername, TestPassword, TestEmail); err != nil {
		return fmt.Errorf("failed to register test account: %w", err)
	}
	c, err := s.characters.Create(TestUsername, TestCharacterName, models.ClassWarrior)
	if err != nil {
		return fmt.Errorf("failed to create test character: %w", err)
	}
	log.Printf("[Server] Seeded test account %s/%s with %s (id=%d)", TestUsername, TestPassword, c.Name(), c.ID())
	return nil
}
