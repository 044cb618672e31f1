package space

import (
	"testing"

	"github.com/pthm-cable/universe/components"
)

func buildTransitSpace(t *testing.T) *Space {
	t.Helper()
	s := New()
	s.AddNode(0, 0, TerrainPlains, 0.5, 0, []float64{100})
	s.AddNode(10, 0, TerrainPlains, 0.5, 0, []float64{100})
	if _, err := s.AddEdge(0, 1, 10, 3, 2); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	return s
}

func entityItem(id components.EntityID, arrives int64) TransitItem {
	return TransitItem{
		Kind:      PayloadEntity,
		Entity:    id,
		Edge:      0,
		From:      0,
		To:        1,
		ArrivesAt: arrives,
	}
}

func TestStartRespectsCapacity(t *testing.T) {
	ts := NewTransitSystem(buildTransitSpace(t))

	if !ts.Start(entityItem(1, 3)) {
		t.Fatal("first start should succeed")
	}
	if !ts.Start(entityItem(2, 3)) {
		t.Fatal("second start should succeed")
	}
	if ts.Start(entityItem(3, 3)) {
		t.Error("third start should fail at capacity 2")
	}
	if ts.Len(0) != 2 || ts.InFlight() != 2 {
		t.Errorf("Len = %d, InFlight = %d, want 2, 2", ts.Len(0), ts.InFlight())
	}
}

func TestProcessArrivalsPartitions(t *testing.T) {
	ts := NewTransitSystem(buildTransitSpace(t))
	ts.Start(entityItem(1, 2))
	ts.Start(entityItem(2, 5))

	arrived := ts.ProcessArrivals(2)
	if len(arrived) != 1 || arrived[0].Entity != 1 {
		t.Fatalf("arrived = %+v, want entity 1 only", arrived)
	}
	if ts.InFlight() != 1 {
		t.Errorf("InFlight = %d after partial arrival, want 1", ts.InFlight())
	}

	// Capacity frees up as items arrive.
	if !ts.Start(entityItem(3, 8)) {
		t.Error("start should succeed after an arrival freed a slot")
	}

	arrived = ts.ProcessArrivals(10)
	if len(arrived) != 2 {
		t.Fatalf("arrived = %+v, want 2 items", arrived)
	}
	if arrived[0].Entity != 2 || arrived[1].Entity != 3 {
		t.Errorf("arrival order = %d, %d, want enqueue order 2, 3", arrived[0].Entity, arrived[1].Entity)
	}
}

func TestPendingEnergyCountsResourceOnly(t *testing.T) {
	ts := NewTransitSystem(buildTransitSpace(t))
	ts.Start(entityItem(1, 3))
	ts.Start(TransitItem{
		Kind:         PayloadResource,
		ResourceType: 0,
		Amount:       2.5,
		Edge:         0,
		From:         0,
		To:           1,
		ArrivesAt:    3,
	})

	if got := ts.PendingEnergy(); got != 2.5 {
		t.Errorf("PendingEnergy = %v, want 2.5", got)
	}

	ts.ProcessArrivals(3)
	if got := ts.PendingEnergy(); got != 0 {
		t.Errorf("PendingEnergy = %v after arrivals, want 0", got)
	}
}
