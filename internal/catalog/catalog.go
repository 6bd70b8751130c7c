// Package catalog is the static item reference data.
package catalog

import (
	"sort"

	"github.com/omega-realm/worldserver/internal/models"
)

// Catalog is the read contract the character store depends on
type Catalog interface {
	// Lookup returns an independent copy of the item template.
	Lookup(id int64) (models.Item, bool)
}

// Reference item ids
const (
	HealthPotion        int64 = 1
	ManaPotion          int64 = 2
	GreaterHealthPotion int64 = 3
	GreaterManaPotion   int64 = 4
	IronSword           int64 = 5
	SteelSword          int64 = 6
	LegendaryBlade      int64 = 7
	LeatherArmor        int64 = 8
	ChainMail           int64 = 9
	DragonScaleArmor    int64 = 10
	Wood                int64 = 11
	IronOre             int64 = 12
	GoldOre             int64 = 13
)

// Static is an immutable in-memory catalog
type Static struct {
	items map[int64]models.Item
}

// NewStatic builds a catalog from item templates
func NewStatic(items ...models.Item) *Static {
	s := &Static{items: make(map[int64]models.Item, len(items))}
	for _, it := range items {
		s.items[it.ID] = it
	}
	return s
}

func (s *Static) Lookup(id int64) (models.Item, bool) {
	it, ok := s.items[id]
	return it, ok
}

// All returns every template ordered by id
func (s *Static) All() []models.Item {
	out := make([]models.Item, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Default returns the reference catalog
func Default() *Static {
	return NewStatic(
		potion(HealthPotion, "Health Potion", "Restores 50 HP", 50, 0, models.RarityCommon, 10),
		potion(ManaPotion, "Mana Potion", "Restores 30 MP", 0, 30, models.RarityCommon, 10),
		potion(GreaterHealthPotion, "Greater Health Potion", "Restores 100 HP", 100, 0, models.RarityUncommon, 25),
		potion(GreaterManaPotion, "Greater Mana Potion", "Restores 60 MP", 0, 60, models.RarityUncommon, 25),

		weapon(IronSword, "Iron Sword", "A basic iron sword", 10, models.RarityCommon, 1, 50),
		weapon(SteelSword, "Steel Sword", "A well-crafted steel sword", 20, models.RarityUncommon, 5, 150),
		weapon(LegendaryBlade, "Legendary Blade", "An ancient legendary weapon", 50, models.RarityLegendary, 10, 1000),

		armor(LeatherArmor, "Leather Armor", "Basic leather protection", 0, 5, models.RarityCommon, 1, 30),
		armor(ChainMail, "Chain Mail", "Sturdy chain mail armor", 10, 15, models.RarityUncommon, 5, 100),
		armor(DragonScaleArmor, "Dragon Scale Armor", "Armor made from dragon scales", 50, 50, models.RarityLegendary, 10, 2000),

		material(Wood, "Wood", "Common wooden material", models.RarityCommon, 1),
		material(IronOre, "Iron Ore", "Raw iron ore", models.RarityCommon, 5),
		material(GoldOre, "Gold Ore", "Raw gold ore", models.RarityRare, 20),
	)
}

// Grant is a quantity of one catalog item
type Grant struct {
	ItemID   int64
	Quantity int
}

// StarterKit is what every new character receives
var StarterKit = struct {
	Items []Grant
	Gold  int
}{
	Items: []Grant{
		{ItemID: HealthPotion, Quantity: 5},
		{ItemID: ManaPotion, Quantity: 5},
		{ItemID: IronSword, Quantity: 1},
		{ItemID: LeatherArmor, Quantity: 1},
	},
	Gold: 100,
}

func potion(id int64, name, desc string, hp, mp int, rarity models.ItemRarity, value int) models.Item {
	return models.Item{
		ID: id, Name: name, Description: desc,
		Type: models.ItemConsumable, Rarity: rarity, Value: value,
		Stackable: true, MaxStack: 99, LevelRequirement: 1,
		HealthRestore: hp, ManaRestore: mp,
	}
}

func weapon(id int64, name, desc string, atk int, rarity models.ItemRarity, level, value int) models.Item {
	return models.Item{
		ID: id, Name: name, Description: desc,
		Type: models.ItemWeapon, Rarity: rarity, Value: value,
		MaxStack: 1, LevelRequirement: level,
		AttackBonus: atk,
	}
}

func armor(id int64, name, desc string, hp, def int, rarity models.ItemRarity, level, value int) models.Item {
	return models.Item{
		ID: id, Name: name, Description: desc,
		Type: models.ItemArmor, Rarity: rarity, Value: value,
		MaxStack: 1, LevelRequirement: level,
		HealthBonus: hp, DefenseBonus: def,
	}
}

func material(id int64, name, desc string, rarity models.ItemRarity, value int) models.Item {
	return models.Item{
		ID: id, Name: name, Description: desc,
		Type: models.ItemMaterial, Rarity: rarity, Value: value,
		Stackable: true, MaxStack: 999, LevelRequirement: 1,
	}
}
