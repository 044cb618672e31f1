package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/universe/components"
	"github.com/pthm-cable/universe/config"
)

func artifactManager() *ArtifactManager {
	cfg := config.Default()
	cfg.Artifacts.PayloadCostRate = 0.1
	cfg.Artifacts.RepairSpend = 0.5
	cfg.Artifacts.RepairRate = 0.4
	cfg.Artifacts.PrestigeRate = 1.0
	cfg.Artifacts.MaintainerMinTicks = 10
	cfg.Artifacts.MaintainerMaxTicks = 20
	return NewArtifactManager(cfg)
}

func TestCreateChargesByPayload(t *testing.T) {
	m := artifactManager()
	energy := &components.Energy{Value: 5, Alive: true}
	payload := []byte{1, 2, 3, 4}

	a, cost, ok := m.Create(7, 1, 0, payload, energy, 1.0)
	if !ok {
		t.Fatal("create should succeed")
	}
	if math.Abs(cost-0.4) > 1e-12 {
		t.Errorf("cost = %v, want 0.4", cost)
	}
	if math.Abs(energy.Value-4.6) > 1e-12 {
		t.Errorf("energy = %v, want 4.6", energy.Value)
	}
	if a.Durability != 1.0 || a.CreatedAt != 7 {
		t.Errorf("artifact = %+v", a)
	}

	// Payload is copied, not aliased.
	payload[0] = 99
	if a.Payload[0] == 99 {
		t.Error("payload aliased the caller's buffer")
	}
}

func TestCreateFailsWhenBroke(t *testing.T) {
	m := artifactManager()
	energy := &components.Energy{Value: 0.1, Alive: true}
	if _, _, ok := m.Create(0, 1, 0, []byte{1, 2, 3, 4}, energy, 1.0); ok {
		t.Error("create should fail when the creator cannot pay")
	}
	if energy.Value != 0.1 {
		t.Errorf("failed create mutated energy to %v", energy.Value)
	}
	if _, _, ok := m.Create(0, 1, 0, nil, energy, 1.0); ok {
		t.Error("create with empty payload should fail")
	}
}

func TestRepairCapsAtFullDurability(t *testing.T) {
	m := artifactManager()
	rng := rand.New(rand.NewSource(1))
	energy := &components.Energy{Value: 10, Alive: true}
	state := &components.State{}

	a, _, _ := m.Create(0, 1, 0, []byte{1, 2, 3, 4}, energy, 1.0)
	a.Durability = 0.99

	res, ok := m.Repair(5, rng, a, energy, state)
	if !ok {
		t.Fatal("repair should succeed below full durability")
	}
	if a.Durability > 1.0+1e-12 {
		t.Errorf("durability = %v exceeded 1", a.Durability)
	}
	if res.Restored > 0.01+1e-12 {
		t.Errorf("restored = %v, want capped at missing 0.01", res.Restored)
	}

	if _, ok := m.Repair(6, rng, a, energy, state); ok {
		t.Error("repair of a whole artifact should fail")
	}
}

func TestRepairGrantsMaintainerInRange(t *testing.T) {
	m := artifactManager()
	rng := rand.New(rand.NewSource(2))
	energy := &components.Energy{Value: 10, Alive: true}
	state := &components.State{Buf: []byte{1, 2, 3, 4}}

	a, _, _ := m.Create(0, 1, 0, []byte{1, 2, 3, 4}, energy, 1.0)
	a.Durability = 0.2

	prestigeBefore := a.Prestige
	res, ok := m.Repair(100, rng, a, energy, state)
	if !ok {
		t.Fatal("repair should succeed")
	}
	if res.MaintainerUntil < 110 || res.MaintainerUntil > 120 {
		t.Errorf("MaintainerUntil = %d, want in [110,120]", res.MaintainerUntil)
	}
	if a.Prestige <= prestigeBefore {
		t.Error("prestige should grow with repair")
	}
	// Matching state and payload gives full similarity.
	if res.Similarity != 1.0 {
		t.Errorf("similarity = %v, want 1.0", res.Similarity)
	}
}

func TestRemoveSwapKeepsIndex(t *testing.T) {
	m := artifactManager()
	energy := &components.Energy{Value: 100, Alive: true}
	a1, _, _ := m.Create(0, 1, 0, []byte{1, 2, 3, 4}, energy, 1.0)
	a2, _, _ := m.Create(0, 1, 0, []byte{5, 6, 7, 8}, energy, 1.0)
	a3, _, _ := m.Create(0, 1, 0, []byte{9, 9, 9, 9}, energy, 1.0)

	m.Remove(a1.ID)
	if m.Count() != 2 {
		t.Fatalf("Count = %d, want 2", m.Count())
	}
	if m.Get(a1.ID) != nil {
		t.Error("removed artifact still resolvable")
	}
	if m.Get(a2.ID) == nil || m.Get(a3.ID) == nil {
		t.Error("surviving artifacts lost after swap-remove")
	}
	// Removing the last one and a missing id are both safe.
	m.Remove(a3.ID)
	m.Remove(a3.ID)
	if m.Count() != 1 {
		t.Errorf("Count = %d, want 1", m.Count())
	}
}

func TestSimilarityAndSkill(t *testing.T) {
	if got := Similarity([]byte{1, 2, 3, 4}, []byte{1, 2, 9, 9}); got != 0.5 {
		t.Errorf("Similarity = %v, want 0.5", got)
	}
	if got := Similarity([]byte{1, 2}, []byte{1, 2, 3, 4}); got != 1.0 {
		t.Errorf("Similarity over shorter buffer = %v, want 1.0", got)
	}
	if Similarity(nil, []byte{1}) != 0 {
		t.Error("empty buffer similarity should be 0")
	}

	if got := Skill([]byte{0, 1, 0, 2}); got != 0.5 {
		t.Errorf("Skill = %v, want 0.5", got)
	}
	if Skill(nil) != 0 {
		t.Error("empty buffer skill should be 0")
	}

	b := &config.BonusConfig{SkillBonusEnabled: false, SkillBonusCoefficient: 0.5}
	if SkillBonus(b, []byte{1, 1}) != 0 {
		t.Error("disabled skill bonus should be 0")
	}
	b.SkillBonusEnabled = true
	if got := SkillBonus(b, []byte{1, 1}); got != 0.5 {
		t.Errorf("SkillBonus = %v, want 0.5", got)
	}
}
