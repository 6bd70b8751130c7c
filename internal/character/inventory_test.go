package character

import (
	"testing"

	"github.com/omega-realm/worldserver/internal/catalog"
)

func TestInventoryStacksAndSlots(t *testing.T) {
	cat := catalog.Default()
	potion, _ := cat.Lookup(catalog.HealthPotion)
	sword, _ := cat.Lookup(catalog.IronSword)

	inv := NewInventory(3)
	if slot, ok := inv.Add(potion, 98); !ok || slot != 0 {
		t.Fatalf("Add potion = %d, %v", slot, ok)
	}
	if slot, ok := inv.Add(potion, 1); !ok || slot != 0 {
		t.Fatalf("coalesce = %d, %v", slot, ok)
	}
	// stack at 99 has no room for more
	if slot, ok := inv.Add(potion, 1); !ok || slot != 1 {
		t.Fatalf("overflow stack = %d, %v", slot, ok)
	}
	if slot, ok := inv.Add(sword, 1); !ok || slot != 2 {
		t.Fatalf("sword = %d, %v", slot, ok)
	}
	if _, ok := inv.Add(sword, 1); ok {
		t.Fatal("added to full inventory")
	}

	inv.Take(1, 1)
	if slot, ok := inv.Add(sword, 1); !ok || slot != 1 {
		t.Fatalf("lowest free slot = %d, %v", slot, ok)
	}
	if e, _ := inv.At(0); e.Quantity != 99 {
		t.Fatalf("potion stack = %d", e.Quantity)
	}
}

func TestInventorySlotsUnique(t *testing.T) {
	cat := catalog.Default()
	inv := NewInventory(MaxInventorySlots)
	for _, id := range []int64{catalog.Wood, catalog.IronSword, catalog.IronSword, catalog.IronOre, catalog.Wood} {
		item, _ := cat.Lookup(id)
		inv.Add(item, 1)
	}
	inv.Take(1, 1)
	sword, _ := cat.Lookup(catalog.SteelSword)
	inv.Add(sword, 1)

	seen := make(map[int]bool)
	for _, e := range inv.Snapshot().Items {
		if seen[e.SlotIndex] {
			t.Fatalf("slot %d reported twice", e.SlotIndex)
		}
		seen[e.SlotIndex] = true
	}
}

func TestInventoryCloneIsIndependent(t *testing.T) {
	wood, _ := catalog.Default().Lookup(catalog.Wood)
	inv := NewInventory(MaxInventorySlots)
	inv.Add(wood, 10)
	inv.AddGold(5)

	cp := inv.Clone()
	cp.Add(wood, 5)
	cp.AddGold(5)

	if e, _ := inv.At(0); e.Quantity != 10 || inv.Gold() != 5 {
		t.Fatalf("snapshot source mutated: qty %d gold %d", e.Quantity, inv.Gold())
	}
	if cp.Gold() != 10 {
		t.Fatalf("clone gold = %d", cp.Gold())
	}
}
