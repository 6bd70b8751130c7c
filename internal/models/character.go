package models

import "time"

// InventoryEntry is one occupied inventory slot
type InventoryEntry struct {
	Item      Item `json:"item"`
	Quantity  int  `json:"quantity"`
	SlotIndex int  `json:"slot_index"`
}

// InventoryData is a point-in-time copy of an inventory
type InventoryData struct {
	MaxSize int              `json:"max_size"`
	Items   []InventoryEntry `json:"items"`
	Gold    int              `json:"gold"`
}

// CharacterData is a point-in-time copy of a character record, safe to
// serialize and share across goroutines.
type CharacterData struct {
	ID         int64          `json:"id"`
	Owner      string         `json:"owner"`
	Name       string         `json:"name"`
	Class      CharacterClass `json:"character_class"`
	Level      int            `json:"level"`
	Experience int            `json:"experience"`
	Health     int            `json:"health"`
	MaxHealth  int            `json:"max_health"`
	Mana       int            `json:"mana"`
	MaxMana    int            `json:"max_mana"`
	Attack     int            `json:"attack"`
	Defense    int            `json:"defense"`
	X          float64        `json:"x"`
	Y          float64        `json:"y"`
	CreatedAt  time.Time      `json:"created_at"`
	Abilities  []Ability      `json:"abilities"`
	// AbilityCooldowns holds, per ability slot, the unix millisecond time at
	// which the ability becomes usable again.
	AbilityCooldowns []int64                `json:"ability_cooldowns"`
	Inventory        InventoryData          `json:"inventory"`
	Equipment        map[EquipmentSlot]Item `json:"equipment"`
}

// PlayerData is the live binding of an account's character to a connection
type PlayerData struct {
	PlayerID     int64         `json:"player_id"`
	Username     string        `json:"username"`
	Character    CharacterData `json:"character"`
	Online       bool          `json:"online"`
	LastActivity time.Time     `json:"last_activity"`
}
