package models

import "fmt"

// CharacterClass is one of the fixed playable classes
type CharacterClass string

const (
	ClassWarrior CharacterClass = "WARRIOR"
	ClassMage    CharacterClass = "MAGE"
	ClassArcher  CharacterClass = "ARCHER"
	ClassRogue   CharacterClass = "ROGUE"
	ClassCleric  CharacterClass = "CLERIC"
)

// AbilitiesPerClass is the number of ability slots every class defines
const AbilitiesPerClass = 4

// ClassInfo holds the static definition of a class
type ClassInfo struct {
	DisplayName string
	Description string
	BaseHealth  int
	BaseMana    int
	BaseAttack  int
	BaseDefense int
	Abilities   [AbilitiesPerClass]struct {
		Name        string
		Description string
	}
}

var classes = map[CharacterClass]ClassInfo{
	ClassWarrior: newClassInfo("Warrior", "A mighty melee fighter with high health and defense",
		150, 50, 25, 30,
		"Slash", "A powerful sword attack",
		"Shield Bash", "Stun enemies with shield",
		"War Cry", "Boost team morale",
		"Charge", "Rush to target"),
	ClassMage: newClassInfo("Mage", "A master of arcane arts with powerful spells",
		80, 150, 35, 10,
		"Fireball", "Launch a ball of fire",
		"Ice Lance", "Freeze enemies",
		"Teleport", "Teleport short distance",
		"Meteor Storm", "Rain destruction from above"),
	ClassArcher: newClassInfo("Archer", "A skilled ranged fighter with precision and agility",
		100, 80, 22, 15,
		"Power Shot", "Charged arrow attack",
		"Multi-Shot", "Hit multiple targets",
		"Trap", "Set a trap",
		"Eagle Eye", "Increase critical chance"),
	ClassRogue: newClassInfo("Rogue", "A stealthy assassin with high critical damage",
		90, 70, 28, 12,
		"Backstab", "Critical strike from behind",
		"Vanish", "Become invisible",
		"Poison Blade", "Apply poison damage",
		"Shadow Step", "Teleport behind enemy"),
	ClassCleric: newClassInfo("Cleric", "A holy warrior who heals and protects allies",
		110, 120, 18, 20,
		"Heal", "Restore health",
		"Holy Shield", "Create protective barrier",
		"Smite", "Holy damage attack",
		"Divine Blessing", "Buff all allies"),
}

func newClassInfo(display, desc string, hp, mp, atk, def int, abilities ...string) ClassInfo {
	if len(abilities) != 2*AbilitiesPerClass {
		panic(fmt.Sprintf("class %s: expected %d ability name/description pairs", display, AbilitiesPerClass))
	}
	info := ClassInfo{
		DisplayName: display,
		Description: desc,
		BaseHealth:  hp,
		BaseMana:    mp,
		BaseAttack:  atk,
		BaseDefense: def,
	}
	for i := range info.Abilities {
		info.Abilities[i].Name = abilities[2*i]
		info.Abilities[i].Description = abilities[2*i+1]
	}
	return info
}

// Info returns the static definition for the class
func (c CharacterClass) Info() (ClassInfo, bool) {
	info, ok := classes[c]
	return info, ok
}

// Valid reports whether c is a known class
func (c CharacterClass) Valid() bool {
	_, ok := classes[c]
	return ok
}

// AllClasses lists the playable classes in display order
func AllClasses() []CharacterClass {
	return []CharacterClass{ClassWarrior, ClassMage, ClassArcher, ClassRogue, ClassCleric}
}

// ClericHealAmount is the healing of the Cleric's first ability
const ClericHealAmount = 20

// BuildAbilities instantiates the class abilities. Slot i costs 10+5i mana,
// cools down for 5+i seconds, deals baseAttack+5i damage and reaches
// 100+25i units. The Cleric's first slot heals instead of damaging.
func (c CharacterClass) BuildAbilities() []Ability {
	info, ok := c.Info()
	if !ok {
		return nil
	}
	abilities := make([]Ability, AbilitiesPerClass)
	for i := range abilities {
		a := Ability{
			Name:        info.Abilities[i].Name,
			Description: info.Abilities[i].Description,
			ManaCost:    10 + 5*i,
			Cooldown:    5 + i,
			Damage:      info.BaseAttack + 5*i,
			Range:       100 + 25*float64(i),
		}
		if i == 0 && c == ClassCleric {
			a.Damage = 0
			a.Healing = ClericHealAmount
		}
		abilities[i] = a
	}
	return abilities
}
