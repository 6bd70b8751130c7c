package models

// ItemType classifies catalog items
type ItemType string

const (
	ItemWeapon     ItemType = "WEAPON"
	ItemArmor      ItemType = "ARMOR"
	ItemConsumable ItemType = "CONSUMABLE"
	ItemMaterial   ItemType = "MATERIAL"
	ItemQuest      ItemType = "QUEST"
	ItemMisc       ItemType = "MISC"
)

// ItemRarity is an ordinal from Common to Legendary
type ItemRarity int

const (
	RarityCommon ItemRarity = iota
	RarityUncommon
	RarityRare
	RarityEpic
	RarityLegendary
)

func (r ItemRarity) String() string {
	switch r {
	case RarityCommon:
		return "Common"
	case RarityUncommon:
		return "Uncommon"
	case RarityRare:
		return "Rare"
	case RarityEpic:
		return "Epic"
	case RarityLegendary:
		return "Legendary"
	default:
		return "Unknown"
	}
}

// EquipmentSlot is a character-level attachment point
type EquipmentSlot string

const (
	SlotWeapon EquipmentSlot = "WEAPON"
	SlotArmor  EquipmentSlot = "ARMOR"
)

// Valid reports whether s names a known equipment slot
func (s EquipmentSlot) Valid() bool {
	return s == SlotWeapon || s == SlotArmor
}

// Item is a catalog-defined item. Items are plain values, so every grant
// into an inventory is an independent copy.
type Item struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	Type             ItemType   `json:"type"`
	Rarity           ItemRarity `json:"rarity"`
	Value            int        `json:"value"`
	Stackable        bool       `json:"stackable"`
	MaxStack         int        `json:"max_stack"`
	LevelRequirement int        `json:"level_requirement"`

	HealthBonus  int `json:"health_bonus,omitempty"`
	ManaBonus    int `json:"mana_bonus,omitempty"`
	AttackBonus  int `json:"attack_bonus,omitempty"`
	DefenseBonus int `json:"defense_bonus,omitempty"`

	HealthRestore int `json:"health_restore,omitempty"`
	ManaRestore   int `json:"mana_restore,omitempty"`
}

// EquipSlot returns the equipment slot an item occupies, if any
func (i Item) EquipSlot() (EquipmentSlot, bool) {
	switch i.Type {
	case ItemWeapon:
		return SlotWeapon, true
	case ItemArmor:
		return SlotArmor, true
	default:
		return "", false
	}
}

// Ability is one of the four class abilities of a character
type Ability struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ManaCost    int     `json:"mana_cost"`
	Cooldown    int     `json:"cooldown"` // seconds
	Damage      int     `json:"damage"`
	Healing     int     `json:"healing"`
	Range       float64 `json:"range"`
}
