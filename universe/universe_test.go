package universe

import (
	"math"
	"reflect"
	"testing"

	"github.com/pthm-cable/universe/config"
)

func testConfig(seed uint64) *config.Config {
	cfg := config.Default()
	cfg.Seed = seed
	cfg.World.Nodes = 12
	cfg.World.EdgeDensity = 0.3
	cfg.World.InitialEntities = 30
	cfg.World.MaxTypes = 4
	return cfg
}

func TestNewUniverse(t *testing.T) {
	u, err := New(testConfig(42))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if !u.Space().IsConnected() {
		t.Error("generated world should be connected")
	}
	if u.Space().NumNodes() != 12 {
		t.Errorf("NumNodes = %d, want 12", u.Space().NumNodes())
	}
	s := u.Stats()
	if s.EntityCount != 30 {
		t.Errorf("EntityCount = %d, want 30", s.EntityCount)
	}
	if u.TotalEnergy() <= 0 {
		t.Errorf("TotalEnergy = %v, want > 0", u.TotalEnergy())
	}
	// Every initial spawn appears in the event log at tick 0.
	created := 0
	for _, ev := range u.EventLog() {
		if ev.Type == EventEntityCreated && ev.Tick == 0 {
			created++
		}
	}
	if created != 30 {
		t.Errorf("entity_created events = %d, want 30", created)
	}
}

func TestInvalidConfigRejected(t *testing.T) {
	cfg := testConfig(1)
	cfg.World.Nodes = 1
	if _, err := New(cfg); err == nil {
		t.Error("expected error for a one-node world")
	}
}

func TestDeterminismSameSeed(t *testing.T) {
	u1, err := New(testConfig(42))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	u2, err := New(testConfig(42))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	u1.Run(300)
	u2.Run(300)

	log1, log2 := u1.EventLog(), u2.EventLog()
	if len(log1) != len(log2) {
		t.Fatalf("event log lengths differ: %d vs %d", len(log1), len(log2))
	}
	for i := range log1 {
		if !reflect.DeepEqual(log1[i], log2[i]) {
			t.Fatalf("event %d differs:\n%+v\n%+v", i, log1[i], log2[i])
		}
	}
	if !reflect.DeepEqual(u1.Stats(), u2.Stats()) {
		t.Errorf("stats differ:\n%+v\n%+v", u1.Stats(), u2.Stats())
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	u1, _ := New(testConfig(42))
	u2, _ := New(testConfig(43))
	u1.Run(100)
	u2.Run(100)

	if reflect.DeepEqual(u1.EventLog(), u2.EventLog()) {
		t.Error("different seeds produced identical histories")
	}
}

func TestConservationIdentity(t *testing.T) {
	u, err := New(testConfig(7))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 0; i < 500; i++ {
		u.Step()
		tol := 1e-9 * (u.InitialEnergy() + u.Stats().CumulativeRegenerated + 1)
		if err := u.ConservationError(); math.Abs(err) > tol {
			t.Fatalf("tick %d: conservation error %v exceeds %v", u.Tick(), err, tol)
		}
	}
}

func TestStateInvariants(t *testing.T) {
	u, err := New(testConfig(11))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	u.Run(400)

	for _, node := range u.Space().Nodes() {
		if node.WasteHeat < 0 {
			t.Errorf("node %d: negative waste heat %v", node.ID, node.WasteHeat)
		}
		for typ, r := range node.Resources {
			if r < 0 || r > node.Capacity[typ]+1e-9 {
				t.Errorf("node %d type %d: pool %v outside [0, %v]", node.ID, typ, r, node.Capacity[typ])
			}
		}
	}

	residents := make(map[uint32]int32)
	for _, node := range u.Space().Nodes() {
		for _, id := range node.Entities {
			if _, dup := residents[uint32(id)]; dup {
				t.Errorf("entity %d resident at two nodes", id)
			}
			residents[uint32(id)] = int32(node.ID)
		}
	}
	for _, view := range u.Entities() {
		if view.Energy < 0 {
			t.Errorf("entity %d: negative energy %v", view.ID, view.Energy)
		}
		node, resident := residents[uint32(view.ID)]
		if view.InTransit {
			if resident {
				t.Errorf("in-transit entity %d still resident at node %d", view.ID, node)
			}
			continue
		}
		if !resident {
			t.Errorf("entity %d missing from its node's resident list", view.ID)
		} else if node != int32(view.Node) {
			t.Errorf("entity %d resident at node %d but positioned at %d", view.ID, node, view.Node)
		}
	}

	for _, a := range u.Artifacts() {
		if a.Durability < 0 || a.Durability > 1+1e-12 {
			t.Errorf("artifact %d: durability %v outside [0,1]", a.ID, a.Durability)
		}
		if a.Prestige < 0 {
			t.Errorf("artifact %d: negative prestige %v", a.ID, a.Prestige)
		}
	}
}

func TestEventLogTicksMonotone(t *testing.T) {
	u, err := New(testConfig(3))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	u.Run(200)

	last := int64(0)
	for i, ev := range u.EventLog() {
		if ev.Tick < last {
			t.Fatalf("event %d: tick %d after tick %d", i, ev.Tick, last)
		}
		last = ev.Tick
	}
}

func TestPauseResumeStop(t *testing.T) {
	u, err := New(testConfig(5))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	u.Run(10)
	if u.Tick() != 10 {
		t.Fatalf("Tick = %d, want 10", u.Tick())
	}

	u.Pause()
	u.Run(10)
	if u.Tick() != 10 {
		t.Errorf("paused universe advanced to tick %d", u.Tick())
	}

	u.Resume()
	u.Run(5)
	if u.Tick() != 15 {
		t.Errorf("Tick = %d after resume, want 15", u.Tick())
	}

	u.Stop()
	u.Resume() // stop is permanent; resume must not revive it
	u.Run(5)
	u.Step()
	if u.Tick() != 15 {
		t.Errorf("stopped universe advanced to tick %d", u.Tick())
	}
}

func TestClearEventLog(t *testing.T) {
	u, err := New(testConfig(5))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	u.Run(20)
	if len(u.EventLog()) == 0 {
		t.Fatal("expected events after 20 ticks")
	}
	u.ClearEventLog()
	if len(u.EventLog()) != 0 {
		t.Error("ClearEventLog left events behind")
	}
	// Counters are cumulative and survive log clearing.
	if u.Counts().Births == 0 {
		t.Error("birth counter lost after log clear")
	}
}

func TestGini(t *testing.T) {
	if g := gini([]float64{5, 5, 5, 5}); math.Abs(g) > 1e-12 {
		t.Errorf("gini of equal values = %v, want 0", g)
	}
	if g := gini([]float64{0, 0, 0, 10}); math.Abs(g-0.75) > 1e-12 {
		t.Errorf("gini of one-hot = %v, want 0.75", g)
	}
	if g := gini(nil); g != 0 {
		t.Errorf("gini of empty = %v, want 0", g)
	}
	if g := gini([]float64{0, 0}); g != 0 {
		t.Errorf("gini of zeros = %v, want 0", g)
	}
}

func TestLongRunSurvival(t *testing.T) {
	if testing.Short() {
		t.Skip("long run")
	}
	cfg := testConfig(42)
	cfg.World.Nodes = 20
	cfg.World.EdgeDensity = 0.4
	cfg.World.InitialEntities = 50

	u, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	u.Run(5000)

	s := u.Stats()
	if s.EntityCount == 0 {
		t.Error("population went extinct within 5000 ticks under default rates")
	}
	tol := 1e-9 * (u.InitialEnergy() + s.CumulativeRegenerated + 1)
	if err := u.ConservationError(); math.Abs(err) > tol {
		t.Errorf("conservation error %v exceeds %v after long run", err, tol)
	}
}
