package models

import "testing"

func TestBuildAbilitiesScaling(t *testing.T) {
	for _, class := range AllClasses() {
		info, ok := class.Info()
		if !ok {
			t.Fatalf("%s: missing class info", class)
		}
		abilities := class.BuildAbilities()
		if len(abilities) != AbilitiesPerClass {
			t.Fatalf("%s: got %d abilities", class, len(abilities))
		}
		for i, a := range abilities {
			if a.ManaCost != 10+5*i {
				t.Errorf("%s[%d] mana cost = %d", class, i, a.ManaCost)
			}
			if a.Cooldown != 5+i {
				t.Errorf("%s[%d] cooldown = %d", class, i, a.Cooldown)
			}
			if a.Range != 100+25*float64(i) {
				t.Errorf("%s[%d] range = %v", class, i, a.Range)
			}
			if class == ClassCleric && i == 0 {
				if a.Damage != 0 || a.Healing != ClericHealAmount {
					t.Errorf("cleric heal = dmg %d heal %d", a.Damage, a.Healing)
				}
				continue
			}
			if a.Damage != info.BaseAttack+5*i {
				t.Errorf("%s[%d] damage = %d", class, i, a.Damage)
			}
		}
	}
}

func TestWarriorBaseStats(t *testing.T) {
	info, _ := ClassWarrior.Info()
	if info.BaseHealth != 150 || info.BaseMana != 50 {
		t.Fatalf("warrior base = %d/%d, want 150/50", info.BaseHealth, info.BaseMana)
	}
	if CharacterClass("BARD").Valid() {
		t.Fatal("unknown class reported valid")
	}
}

func TestItemEquipSlot(t *testing.T) {
	tests := []struct {
		typ  ItemType
		slot EquipmentSlot
		ok   bool
	}{
		{ItemWeapon, SlotWeapon, true},
		{ItemArmor, SlotArmor, true},
		{ItemConsumable, "", false},
		{ItemMaterial, "", false},
	}
	for _, tt := range tests {
		slot, ok := Item{Type: tt.typ}.EquipSlot()
		if slot != tt.slot || ok != tt.ok {
			t.Errorf("%s: got (%q, %v)", tt.typ, slot, ok)
		}
	}
}
