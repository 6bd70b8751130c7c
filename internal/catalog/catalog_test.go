package catalog

import (
	"testing"

	"github.com/omega-realm/worldserver/internal/models"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	all := c.All()
	if len(all) != 13 {
		t.Fatalf("got %d items, want 13", len(all))
	}
	for i, it := range all {
		if it.ID != int64(i+1) {
			t.Fatalf("item %d has id %d", i, it.ID)
		}
	}

	sword, ok := c.Lookup(IronSword)
	if !ok || sword.Type != models.ItemWeapon || sword.AttackBonus != 10 || sword.Stackable {
		t.Fatalf("iron sword = %+v", sword)
	}
	potion, _ := c.Lookup(HealthPotion)
	if !potion.Stackable || potion.MaxStack != 99 || potion.HealthRestore != 50 {
		t.Fatalf("health potion = %+v", potion)
	}
	if _, ok := c.Lookup(99); ok {
		t.Fatal("lookup of unknown id succeeded")
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	c := Default()
	it, _ := c.Lookup(ChainMail)
	it.DefenseBonus = 0
	again, _ := c.Lookup(ChainMail)
	if again.DefenseBonus != 15 {
		t.Fatalf("template mutated: defense = %d", again.DefenseBonus)
	}
}

func TestStarterKitResolves(t *testing.T) {
	c := Default()
	for _, g := range StarterKit.Items {
		if _, ok := c.Lookup(g.ItemID); !ok {
			t.Fatalf("starter item %d missing from catalog", g.ItemID)
		}
	}
	if StarterKit.Gold != 100 {
		t.Fatalf("starter gold = %d", StarterKit.Gold)
	}
}
