// Package presence tracks which characters are live on which connection.
package presence

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/omega-realm/worldserver/internal/character"
	"github.com/omega-realm/worldserver/internal/models"
)

// ErrCharacterActive is returned by Insert when the character is already
// live on another connection
var ErrCharacterActive = errors.New("character already in use")

// ConnID is the opaque connection identifier supplied by the transport
type ConnID uint64

// Handle addresses one arena slot. A handle whose generation no longer
// matches the slot refers to a presence that has been removed.
type Handle struct {
	Index      uint32
	Generation uint32
}

// Presence is the live binding of a character to a connection
type Presence struct {
	PlayerID  int64
	Conn      ConnID
	Username  string
	Character *character.Character

	online       atomic.Bool
	lastActivity atomic.Int64
}

// Online reports whether the presence is still in the table
func (p *Presence) Online() bool {
	return p.online.Load()
}

// LastActivity is the last time the client moved
func (p *Presence) LastActivity() time.Time {
	return time.UnixMilli(p.lastActivity.Load())
}

// Touch records client activity at t
func (p *Presence) Touch(t time.Time) {
	p.lastActivity.Store(t.UnixMilli())
}

// Data returns the wire view of the presence
func (p *Presence) Data() models.PlayerData {
	return models.PlayerData{
		PlayerID:     p.PlayerID,
		Username:     p.Username,
		Character:    p.Character.Snapshot(),
		Online:       p.Online(),
		LastActivity: p.LastActivity(),
	}
}

type slot struct {
	generation uint32
	presence   *Presence
}

// Table is a generational arena of presences indexed by connection and by
// player id.
type Table struct {
	mu     sync.RWMutex
	slots  []slot
	free   []uint32
	byConn map[ConnID]Handle
	byID   map[int64]Handle
	byChar map[int64]Handle
	nextID int64
	now    func() time.Time
}

func NewTable() *Table {
	return &Table{
		byConn: make(map[ConnID]Handle),
		byID:   make(map[int64]Handle),
		byChar: make(map[int64]Handle),
		now:    time.Now,
	}
}

// SetClock overrides the activity time source
func (t *Table) SetClock(now func() time.Time) {
	t.now = now
}

// Insert binds c to conn under a fresh player id. An existing presence on
// the same connection is replaced and returned as old. A character can be
// live on only one connection at a time.
func (t *Table) Insert(conn ConnID, username string, c *character.Character) (p *Presence, old *Presence, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if h, ok := t.byChar[c.ID()]; ok {
		if cur, _ := t.getLocked(h); cur != nil && cur.Conn != conn {
			return nil, nil, ErrCharacterActive
		}
	}
	if h, ok := t.byConn[conn]; ok {
		old = t.removeLocked(h)
	}

	t.nextID++
	p = &Presence{PlayerID: t.nextID, Conn: conn, Username: username, Character: c}
	p.online.Store(true)
	p.Touch(t.now())

	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		idx = uint32(len(t.slots))
		t.slots = append(t.slots, slot{})
	}
	t.slots[idx].presence = p
	h := Handle{Index: idx, Generation: t.slots[idx].generation}
	t.byConn[conn] = h
	t.byID[p.PlayerID] = h
	t.byChar[c.ID()] = h
	return p, old, nil
}

// Remove drops the presence on conn. Removing an absent connection is a no-op.
func (t *Table) Remove(conn ConnID) *Presence {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.byConn[conn]
	if !ok {
		return nil
	}
	return t.removeLocked(h)
}

func (t *Table) removeLocked(h Handle) *Presence {
	s := &t.slots[h.Index]
	if s.generation != h.Generation || s.presence == nil {
		return nil
	}
	p := s.presence
	p.online.Store(false)
	delete(t.byConn, p.Conn)
	delete(t.byID, p.PlayerID)
	delete(t.byChar, p.Character.ID())
	s.presence = nil
	s.generation++
	t.free = append(t.free, h.Index)
	return p
}

// Get resolves a handle
func (t *Table) Get(h Handle) (*Presence, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.getLocked(h)
}

func (t *Table) getLocked(h Handle) (*Presence, bool) {
	if int(h.Index) >= len(t.slots) {
		return nil, false
	}
	s := t.slots[h.Index]
	if s.generation != h.Generation || s.presence == nil {
		return nil, false
	}
	return s.presence, true
}

// ByConn returns the presence bound to conn
func (t *Table) ByConn(conn ConnID) (*Presence, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	h, ok := t.byConn[conn]
	if !ok {
		return nil, false
	}
	return t.getLocked(h)
}

// ByPlayerID returns the presence with the given player id
func (t *Table) ByPlayerID(id int64) (*Presence, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	h, ok := t.byID[id]
	if !ok {
		return nil, false
	}
	return t.getLocked(h)
}

// HandleOf returns the current handle for conn
func (t *Table) HandleOf(conn ConnID) (Handle, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	h, ok := t.byConn[conn]
	return h, ok
}

// ByCharacter returns the presence the character is currently bound to
func (t *Table) ByCharacter(characterID int64) (*Presence, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	h, ok := t.byChar[characterID]
	if !ok {
		return nil, false
	}
	return t.getLocked(h)
}

// UpdateActivity bumps the last-seen time of the presence on conn
func (t *Table) UpdateActivity(conn ConnID) {
	if p, ok := t.ByConn(conn); ok {
		p.Touch(t.now())
	}
}

// Snapshot copies the live presences in player id order. Callers iterate
// the copy without holding the table lock.
func (t *Table) Snapshot() []*Presence {
	t.mu.RLock()
	out := make([]*Presence, 0, len(t.byID))
	for _, s := range t.slots {
		if s.presence != nil {
			out = append(out, s.presence)
		}
	}
	t.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out
}

// Len is the number of live presences
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byID)
}
