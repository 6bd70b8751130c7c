package character

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/omega-realm/worldserver/internal/apperrors"
	"github.com/omega-realm/worldserver/internal/catalog"
	"github.com/omega-realm/worldserver/internal/models"
)

const (
	// MaxCharactersPerAccount bounds createCharacter per owner
	MaxCharactersPerAccount = 5

	maxNameLength = 50
	firstID       = 1000
)

// Store owns every character record and the owner index
type Store struct {
	mu      sync.RWMutex
	byID    map[int64]*Character
	byOwner map[string][]int64
	nextID  int64

	catalog catalog.Catalog
	now     func() time.Time
}

// NewStore creates an empty store. Starter kits are resolved against cat.
func NewStore(cat catalog.Catalog) *Store {
	return &Store{
		byID:    make(map[int64]*Character),
		byOwner: make(map[string][]int64),
		nextID:  firstID,
		catalog: cat,
		now:     time.Now,
	}
}

// SetClock overrides the creation timestamp source
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Create allocates a new character for owner
func (s *Store) Create(owner, name string, class models.CharacterClass) (*Character, error) {
	name = strings.TrimSpace(name)
	if err := validateCharacterName(name); err != nil {
		return nil, err
	}
	info, ok := class.Info()
	if !ok {
		return nil, apperrors.New(apperrors.InvalidClass, fmt.Sprintf("Unknown character class %q", class))
	}

	s.mu.Lock()
	if len(s.byOwner[owner]) >= MaxCharactersPerAccount {
		s.mu.Unlock()
		return nil, apperrors.New(apperrors.CharacterLimitReached,
			fmt.Sprintf("Maximum %d characters per account", MaxCharactersPerAccount))
	}
	s.nextID++
	c := newCharacter(s.nextID, owner, name, class, info, s.now())
	// Published only once the starter kit is in place.
	s.grantStarterKit(c)
	s.byID[c.id] = c
	s.byOwner[owner] = append(s.byOwner[owner], c.id)
	s.mu.Unlock()

	log.Printf("[Character] Created %s (%s, id=%d) for %s", c.name, class, c.id, owner)
	return c, nil
}

func (s *Store) grantStarterKit(c *Character) {
	for _, g := range catalog.StarterKit.Items {
		item, ok := s.catalog.Lookup(g.ItemID)
		if !ok {
			log.Printf("[Character] Starter item %d missing from catalog", g.ItemID)
			continue
		}
		c.GrantItem(item, g.Quantity)
	}
	c.GrantGold(catalog.StarterKit.Gold)
}

// Get returns a character by id
func (s *Store) Get(id int64) (*Character, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	return c, ok
}

// GetOwned returns a character only if owner owns it
func (s *Store) GetOwned(owner string, id int64) (*Character, error) {
	c, ok := s.Get(id)
	if !ok || c.owner != owner {
		return nil, apperrors.New(apperrors.CharacterNotFound, "Character not found")
	}
	return c, nil
}

// ListByOwner returns the owner's characters in creation order
func (s *Store) ListByOwner(owner string) []*Character {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byOwner[owner]
	out := make([]*Character, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.byID[id])
	}
	return out
}

// Count is the total number of characters
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func validateCharacterName(name string) error {
	if name == "" {
		return apperrors.New(apperrors.InvalidCharacterName, "Character name cannot be empty")
	}
	if len(name) > maxNameLength {
		return apperrors.New(apperrors.InvalidCharacterName,
			fmt.Sprintf("Character name must not exceed %d characters", maxNameLength))
	}
	for _, r := range name {
		if !isValidNameChar(r) {
			return apperrors.New(apperrors.InvalidCharacterName,
				"Character name contains invalid characters. Only letters, numbers, spaces, underscores, and hyphens are allowed")
		}
	}
	return nil
}

func isValidNameChar(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == ' ' || r == '_' || r == '-'
}
