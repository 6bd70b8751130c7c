// Package character holds the mutable character records, their inventories
// and equipment, and the store that owns them.
package character

import (
	"fmt"
	"sync"
	"time"

	"github.com/omega-realm/worldserver/internal/apperrors"
	"github.com/omega-realm/worldserver/internal/models"
)

// Spawn point for new and respawned characters
const (
	SpawnX = 100
	SpawnY = 100
)

// pools is the stat block touched by equipment, consumables and combat
type pools struct {
	health, maxHealth int
	mana, maxMana     int
	attack, defense   int
}

// Character is a live character record. Every read and write goes through
// the record's own lock so concurrent readers never see a torn stat block.
type Character struct {
	mu sync.Mutex

	id        int64
	owner     string
	name      string
	class     models.CharacterClass
	level     int
	exp       int
	createdAt time.Time

	pools
	x, y float64

	abilities []models.Ability
	cooldowns [models.AbilitiesPerClass]time.Time
	inventory *Inventory
	equipped  map[models.EquipmentSlot]models.Item
}

func newCharacter(id int64, owner, name string, class models.CharacterClass, info models.ClassInfo, now time.Time) *Character {
	return &Character{
		id:        id,
		owner:     owner,
		name:      name,
		class:     class,
		level:     1,
		createdAt: now,
		pools: pools{
			health: info.BaseHealth, maxHealth: info.BaseHealth,
			mana: info.BaseMana, maxMana: info.BaseMana,
			attack: info.BaseAttack, defense: info.BaseDefense,
		},
		x:         SpawnX,
		y:         SpawnY,
		abilities: class.BuildAbilities(),
		inventory: NewInventory(MaxInventorySlots),
		equipped:  make(map[models.EquipmentSlot]models.Item),
	}
}

// FromData rebuilds a live record from a snapshot
func FromData(d models.CharacterData) *Character {
	c := &Character{
		id:        d.ID,
		owner:     d.Owner,
		name:      d.Name,
		class:     d.Class,
		level:     d.Level,
		exp:       d.Experience,
		createdAt: d.CreatedAt,
		pools: pools{
			health: d.Health, maxHealth: d.MaxHealth,
			mana: d.Mana, maxMana: d.MaxMana,
			attack: d.Attack, defense: d.Defense,
		},
		x:         d.X,
		y:         d.Y,
		abilities: append([]models.Ability(nil), d.Abilities...),
		inventory: NewInventory(MaxInventorySlots),
		equipped:  make(map[models.EquipmentSlot]models.Item, len(d.Equipment)),
	}
	if len(c.abilities) > models.AbilitiesPerClass {
		c.abilities = c.abilities[:models.AbilitiesPerClass]
	}
	if d.Inventory.MaxSize > 0 {
		c.inventory = NewInventory(d.Inventory.MaxSize)
	}
	for _, e := range d.Inventory.Items {
		c.inventory.slots[e.SlotIndex] = &entry{item: e.Item, quantity: e.Quantity}
	}
	c.inventory.gold = d.Inventory.Gold
	for slot, item := range d.Equipment {
		c.equipped[slot] = item
	}
	for i, ms := range d.AbilityCooldowns {
		if i < len(c.cooldowns) && ms > 0 {
			c.cooldowns[i] = time.UnixMilli(ms)
		}
	}
	return c
}

func (c *Character) ID() int64 {
	return c.id
}

func (c *Character) Owner() string {
	return c.owner
}

func (c *Character) Name() string {
	return c.name
}

func (c *Character) Class() models.CharacterClass {
	return c.class
}

// Snapshot returns a consistent copy of the whole record
func (c *Character) Snapshot() models.CharacterData {
	c.mu.Lock()
	defer c.mu.Unlock()

	data := models.CharacterData{
		ID:               c.id,
		Owner:            c.owner,
		Name:             c.name,
		Class:            c.class,
		Level:            c.level,
		Experience:       c.exp,
		Health:           c.health,
		MaxHealth:        c.maxHealth,
		Mana:             c.mana,
		MaxMana:          c.maxMana,
		Attack:           c.attack,
		Defense:          c.defense,
		X:                c.x,
		Y:                c.y,
		CreatedAt:        c.createdAt,
		Abilities:        append([]models.Ability(nil), c.abilities...),
		AbilityCooldowns: make([]int64, len(c.cooldowns)),
		Inventory:        c.inventory.Snapshot(),
		Equipment:        make(map[models.EquipmentSlot]models.Item, len(c.equipped)),
	}
	for i, t := range c.cooldowns {
		if !t.IsZero() {
			data.AbilityCooldowns[i] = t.UnixMilli()
		}
	}
	for slot, item := range c.equipped {
		data.Equipment[slot] = item
	}
	return data
}

// Vitals is the subset of the record the world tick and combat read
type Vitals struct {
	Name      string
	Level     int
	X, Y      float64
	Health    int
	MaxHealth int
	Mana      int
	MaxMana   int
	Defense   int
}

func (c *Character) Vitals() Vitals {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Vitals{
		Name: c.name, Level: c.level, X: c.x, Y: c.y,
		Health: c.health, MaxHealth: c.maxHealth,
		Mana: c.mana, MaxMana: c.maxMana,
		Defense: c.defense,
	}
}

// Move sets the position. Positions reported while dead are ignored.
func (c *Character) Move(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.health <= 0 {
		return
	}
	c.x, c.y = x, y
}

// RegenMana adds amount mana clamped to max and returns the applied delta
func (c *Character) RegenMana(amount int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	before := c.mana
	c.mana = clamp(c.mana+amount, 0, c.maxMana)
	return c.mana - before
}

// Respawn restores both pools to max and places the character at (x, y)
func (c *Character) Respawn(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.health = c.maxHealth
	c.mana = c.maxMana
	c.x, c.y = x, y
}

// Cast is the caster half of an ability use. Under the caster's lock it
// validates the ability index, liveness, cooldown and mana, then runs check
// with the ability and the caster's position. Only when every step passes
// is mana deducted and the cooldown set. On failure the returned Vitals
// reflect the untouched record so the caller can resynchronize.
func (c *Character) Cast(index int, now time.Time, check func(a models.Ability, x, y float64) error) (models.Ability, Vitals, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	vitals := func() Vitals {
		return Vitals{Name: c.name, Level: c.level, X: c.x, Y: c.y,
			Health: c.health, MaxHealth: c.maxHealth, Mana: c.mana, MaxMana: c.maxMana, Defense: c.defense}
	}

	if index < 0 || index >= len(c.abilities) {
		return models.Ability{}, vitals(), apperrors.New(apperrors.InvalidAbilityIndex, "Invalid ability index")
	}
	if c.health <= 0 {
		return models.Ability{}, vitals(), apperrors.New(apperrors.CasterDead, "You are dead")
	}
	if now.Before(c.cooldowns[index]) {
		return models.Ability{}, vitals(), apperrors.New(apperrors.AbilityOnCooldown, "Ability is on cooldown")
	}
	ability := c.abilities[index]
	if c.mana < ability.ManaCost {
		return models.Ability{}, vitals(), apperrors.New(apperrors.InsufficientMana, "Not enough mana")
	}
	if check != nil {
		if err := check(ability, c.x, c.y); err != nil {
			return models.Ability{}, vitals(), err
		}
	}

	c.mana -= ability.ManaCost
	c.cooldowns[index] = now.Add(time.Duration(ability.Cooldown) * time.Second)
	return ability, vitals(), nil
}

// TakeDamage mitigates raw by half the current defense with a floor of 1
// and applies it. killed is true only on the transition from alive to 0.
func (c *Character) TakeDamage(raw int) (dealt, healthAfter int, killed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.health <= 0 {
		return 0, 0, false
	}
	dealt = Mitigate(raw, c.defense)
	c.health = clamp(c.health-dealt, 0, c.maxHealth)
	return dealt, c.health, c.health == 0
}

// Mitigate returns max(1, raw - defense/2)
func Mitigate(raw, defense int) int {
	if d := raw - defense/2; d > 1 {
		return d
	}
	return 1
}

// Heal restores up to amount health, capped at max, and returns the applied
// delta. Dead characters cannot be healed.
func (c *Character) Heal(amount int) (healed, healthAfter int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.health <= 0 || amount <= 0 {
		return 0, c.health
	}
	before := c.health
	c.health = clamp(c.health+amount, 0, c.maxHealth)
	return c.health - before, c.health
}

// ConsumeResult reports the deltas a consumable actually applied
type ConsumeResult struct {
	Item           models.Item
	HealthRestored int
	ManaRestored   int
}

// UseConsumable eats one unit from slot, applying its restores clamped to max
func (c *Character) UseConsumable(slot int) (ConsumeResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.inventory.At(slot)
	if !ok {
		return ConsumeResult{}, apperrors.New(apperrors.EmptySlot, "No item in this slot")
	}
	if e.Item.Type != models.ItemConsumable {
		return ConsumeResult{}, apperrors.New(apperrors.NotConsumable, "This item cannot be used")
	}
	if c.health <= 0 {
		return ConsumeResult{}, apperrors.New(apperrors.CasterDead, "You are dead")
	}

	c.inventory.Take(slot, 1)
	res := ConsumeResult{Item: e.Item}
	if e.Item.HealthRestore > 0 {
		before := c.health
		c.health = clamp(c.health+e.Item.HealthRestore, 0, c.maxHealth)
		res.HealthRestored = c.health - before
	}
	if e.Item.ManaRestore > 0 {
		before := c.mana
		c.mana = clamp(c.mana+e.Item.ManaRestore, 0, c.maxMana)
		res.ManaRestored = c.mana - before
	}
	return res, nil
}

// txn is the full mutable state an equipment change may touch
type txn struct {
	pools
	inventory *Inventory
	equipped  map[models.EquipmentSlot]models.Item
}

func (c *Character) begin() *txn {
	t := &txn{
		pools:     c.pools,
		inventory: c.inventory.Clone(),
		equipped:  make(map[models.EquipmentSlot]models.Item, len(c.equipped)),
	}
	for slot, item := range c.equipped {
		t.equipped[slot] = item
	}
	return t
}

func (c *Character) commit(t *txn) {
	c.pools = t.pools
	c.inventory = t.inventory
	c.equipped = t.equipped
}

// Equip moves the item in inventory slot into its equipment slot, swapping
// any item already there back into the inventory. Nothing changes unless
// every step succeeds.
func (c *Character) Equip(slot int) (models.Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.inventory.At(slot)
	if !ok {
		return models.Item{}, apperrors.New(apperrors.EmptySlot, "No item in this slot")
	}
	eqSlot, ok := e.Item.EquipSlot()
	if !ok {
		return models.Item{}, apperrors.New(apperrors.NotEquippable, "This item cannot be equipped")
	}

	t := c.begin()
	if old, worn := t.equipped[eqSlot]; worn {
		t.removeBonuses(old)
		delete(t.equipped, eqSlot)
		// the outgoing item needs a slot while the incoming one still holds its own
		if _, ok := t.inventory.Add(old, 1); !ok {
			return models.Item{}, apperrors.New(apperrors.InventoryFull, "Inventory is full. Cannot swap equipment.")
		}
	}
	item, _, _ := t.inventory.Take(slot, 1)
	t.addBonuses(item)
	t.equipped[eqSlot] = item

	c.commit(t)
	return item, nil
}

// Unequip returns the item in an equipment slot to the inventory
func (c *Character) Unequip(eqSlot models.EquipmentSlot) (models.Item, error) {
	if !eqSlot.Valid() {
		return models.Item{}, apperrors.New(apperrors.InvalidEquipmentSlot, fmt.Sprintf("Invalid equipment slot %q", eqSlot))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.begin()
	item, worn := t.equipped[eqSlot]
	if !worn {
		return models.Item{}, apperrors.New(apperrors.NothingEquipped, "No item equipped in this slot")
	}
	if _, ok := t.inventory.Add(item, 1); !ok {
		return models.Item{}, apperrors.New(apperrors.InventoryFull, "Inventory is full")
	}
	t.removeBonuses(item)
	delete(t.equipped, eqSlot)

	c.commit(t)
	return item, nil
}

// GrantItem adds quantity units of item to the inventory
func (c *Character) GrantItem(item models.Item, quantity int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inventory.Add(item, quantity)
	return ok
}

// GrantGold adds gold to the inventory
func (c *Character) GrantGold(amount int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inventory.AddGold(amount)
}

func (t *txn) addBonuses(item models.Item) {
	alive := t.health > 0
	t.maxHealth += item.HealthBonus
	t.maxMana += item.ManaBonus
	if alive {
		t.health = clamp(t.health+item.HealthBonus, 0, t.maxHealth)
	}
	t.mana = clamp(t.mana+item.ManaBonus, 0, t.maxMana)
	t.attack += item.AttackBonus
	t.defense += item.DefenseBonus
}

// removeBonuses lowers the max pools and rescales current values so the
// fill ratio is kept and current never exceeds max.
func (t *txn) removeBonuses(item models.Item) {
	t.health, t.maxHealth = shrink(t.health, t.maxHealth, item.HealthBonus)
	t.mana, t.maxMana = shrink(t.mana, t.maxMana, item.ManaBonus)
	t.attack -= item.AttackBonus
	t.defense -= item.DefenseBonus
}

func shrink(current, oldMax, bonus int) (int, int) {
	if bonus == 0 {
		return current, oldMax
	}
	newMax := oldMax - bonus
	if newMax < 0 {
		newMax = 0
	}
	if oldMax <= 0 {
		return 0, newMax
	}
	scaled := current * newMax / oldMax
	if current > 0 && scaled == 0 && newMax > 0 {
		scaled = 1
	}
	return clamp(scaled, 0, newMax), newMax
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
