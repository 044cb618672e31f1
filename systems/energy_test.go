package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/universe/components"
	"github.com/pthm-cable/universe/config"
	"github.com/pthm-cable/universe/space"
)

func testNode() *space.Node {
	s := space.New()
	n := s.AddNode(0, 0, space.TerrainPlains, 0.5, 0, []float64{10, 20})
	n.Resources[0] = 5
	n.Resources[1] = 20
	return n
}

func TestChargeClampsAtZero(t *testing.T) {
	e := &components.Energy{Value: 1.0, Alive: true}
	if taken := Charge(e, 0.4); taken != 0.4 {
		t.Errorf("taken = %v, want 0.4", taken)
	}
	if taken := Charge(e, 2.0); taken != 0.6 {
		t.Errorf("taken = %v, want remaining 0.6", taken)
	}
	if e.Value != 0 {
		t.Errorf("Value = %v, want 0", e.Value)
	}
}

func TestHarvestSplitsGainAndWaste(t *testing.T) {
	n := testNode()
	gain, waste := Harvest(n, 0, 2.0, 0.8, 0)
	if math.Abs(gain-1.6) > 1e-12 {
		t.Errorf("gain = %v, want 1.6", gain)
	}
	if math.Abs(waste-0.4) > 1e-12 {
		t.Errorf("waste = %v, want 0.4", waste)
	}
	if math.Abs(n.Resources[0]-3.0) > 1e-12 {
		t.Errorf("pool = %v, want 3.0", n.Resources[0])
	}
	// Extraction plus waste equals what left the pool.
	if math.Abs((gain+waste)-2.0) > 1e-12 {
		t.Errorf("gain+waste = %v, want 2.0", gain+waste)
	}
}

func TestHarvestCappedByPool(t *testing.T) {
	n := testNode()
	gain, waste := Harvest(n, 0, 100, 1.0, 0)
	if math.Abs(gain-5.0) > 1e-12 || waste != 0 {
		t.Errorf("gain = %v, waste = %v, want pool-capped 5.0, 0", gain, waste)
	}
	if n.Resources[0] != 0 {
		t.Errorf("pool = %v, want 0", n.Resources[0])
	}

	gain, waste = Harvest(n, 0, 100, 1.0, 0)
	if gain != 0 || waste != 0 {
		t.Errorf("empty pool harvest = %v, %v, want 0, 0", gain, waste)
	}
}

func TestHarvestBonusScalesExtraction(t *testing.T) {
	n := testNode()
	gain, _ := Harvest(n, 1, 2.0, 1.0, 0.5)
	if math.Abs(gain-3.0) > 1e-12 {
		t.Errorf("gain = %v, want 3.0 with 50%% bonus", gain)
	}
}

func TestDeathReturnOverflowsToCaller(t *testing.T) {
	n := testNode()
	// Pool 0 has room for 5 more.
	returned, overflow := DeathReturn(n, 0, 8.0)
	if math.Abs(returned-5.0) > 1e-12 {
		t.Errorf("returned = %v, want 5.0", returned)
	}
	if math.Abs(overflow-3.0) > 1e-12 {
		t.Errorf("overflow = %v, want 3.0", overflow)
	}
	if math.Abs(n.Resources[0]-10.0) > 1e-12 {
		t.Errorf("pool = %v, want capacity 10", n.Resources[0])
	}
}

func TestRegenerateApproachesCapacity(t *testing.T) {
	n := testNode()
	added := Regenerate(n, 0.5)
	// Pool 0: (10-5)*0.5 = 2.5 added. Pool 1 is full.
	if math.Abs(added-2.5) > 1e-12 {
		t.Errorf("added = %v, want 2.5", added)
	}
	if math.Abs(n.Resources[0]-7.5) > 1e-12 {
		t.Errorf("pool = %v, want 7.5", n.Resources[0])
	}
	if n.Resources[1] != 20 {
		t.Errorf("full pool changed to %v", n.Resources[1])
	}
}

func TestActionCostMoveScalesWithDurability(t *testing.T) {
	cfg := &config.EnergyConfig{IdleCost: 0.01, MoveCost: 0.1}
	s := space.New()
	s.AddNode(0, 0, space.TerrainPlains, 0.5, 0, []float64{10})
	s.AddNode(10, 0, space.TerrainPlains, 0.5, 0, []float64{10})
	e, err := s.AddEdge(0, 1, 10, 1, 1)
	if err != nil {
		t.Fatalf("AddEdge: %v", err)
	}

	full := ActionCost(cfg, components.ActExplore, 2.0, e)
	if math.Abs(full-2.0) > 1e-12 {
		t.Errorf("cost = %v, want 2.0", full)
	}

	e.Durability = 0.5
	worn := ActionCost(cfg, components.ActExplore, 2.0, e)
	if math.Abs(worn-4.0) > 1e-12 {
		t.Errorf("cost on worn edge = %v, want doubled 4.0", worn)
	}
}
