package character

import (
	"sort"

	"github.com/omega-realm/worldserver/internal/models"
)

// MaxInventorySlots is the capacity of every character inventory
const MaxInventorySlots = 20

type entry struct {
	item     models.Item
	quantity int
}

// Inventory is a fixed-capacity slot map plus a gold counter.
// It is not safe for concurrent use; the owning Character's lock guards it.
type Inventory struct {
	maxSize int
	slots   map[int]*entry
	gold    int
}

// NewInventory creates an empty inventory with maxSize slots
func NewInventory(maxSize int) *Inventory {
	return &Inventory{
		maxSize: maxSize,
		slots:   make(map[int]*entry),
	}
}

// Add places quantity units of item into the inventory. Stackable items
// coalesce into the first stack (lowest slot) with room for the whole
// quantity; otherwise the lowest free slot is used. It returns the slot the
// units landed in, or false when there is no room.
func (inv *Inventory) Add(item models.Item, quantity int) (int, bool) {
	if quantity <= 0 {
		return 0, false
	}
	if item.Stackable {
		for _, idx := range inv.sortedSlots() {
			e := inv.slots[idx]
			if e.item.ID == item.ID && e.quantity+quantity <= maxStack(item) {
				e.quantity += quantity
				return idx, true
			}
		}
	}
	idx, ok := inv.freeSlot()
	if !ok {
		return 0, false
	}
	inv.slots[idx] = &entry{item: item, quantity: quantity}
	return idx, true
}

// At returns the entry occupying slot
func (inv *Inventory) At(slot int) (models.InventoryEntry, bool) {
	e, ok := inv.slots[slot]
	if !ok {
		return models.InventoryEntry{}, false
	}
	return models.InventoryEntry{Item: e.item, Quantity: e.quantity, SlotIndex: slot}, true
}

// Take removes up to n units from slot and drops the entry once it is empty.
// It returns the item and how many units were taken.
func (inv *Inventory) Take(slot, n int) (models.Item, int, bool) {
	e, ok := inv.slots[slot]
	if !ok || n <= 0 {
		return models.Item{}, 0, false
	}
	if n > e.quantity {
		n = e.quantity
	}
	e.quantity -= n
	if e.quantity <= 0 {
		delete(inv.slots, slot)
	}
	return e.item, n, true
}

// Len is the number of occupied slots
func (inv *Inventory) Len() int {
	return len(inv.slots)
}

func (inv *Inventory) Gold() int {
	return inv.gold
}

func (inv *Inventory) AddGold(amount int) {
	inv.gold += amount
}

// Clone returns a deep copy
func (inv *Inventory) Clone() *Inventory {
	out := &Inventory{
		maxSize: inv.maxSize,
		slots:   make(map[int]*entry, len(inv.slots)),
		gold:    inv.gold,
	}
	for idx, e := range inv.slots {
		cp := *e
		out.slots[idx] = &cp
	}
	return out
}

// Snapshot returns the inventory contents ordered by slot
func (inv *Inventory) Snapshot() models.InventoryData {
	data := models.InventoryData{
		MaxSize: inv.maxSize,
		Items:   make([]models.InventoryEntry, 0, len(inv.slots)),
		Gold:    inv.gold,
	}
	for _, idx := range inv.sortedSlots() {
		e := inv.slots[idx]
		data.Items = append(data.Items, models.InventoryEntry{Item: e.item, Quantity: e.quantity, SlotIndex: idx})
	}
	return data
}

func (inv *Inventory) freeSlot() (int, bool) {
	for i := 0; i < inv.maxSize; i++ {
		if _, used := inv.slots[i]; !used {
			return i, true
		}
	}
	return 0, false
}

func (inv *Inventory) sortedSlots() []int {
	idx := make([]int, 0, len(inv.slots))
	for i := range inv.slots {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

func maxStack(item models.Item) int {
	if item.MaxStack < 1 {
		return 1
	}
	return item.MaxStack
}
