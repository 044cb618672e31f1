package space

import "github.com/pthm-cable/universe/components"

// PayloadKind discriminates what a transit item carries. The transit system
// itself never inspects payloads; the orchestrator finalizes arrivals.
type PayloadKind uint8

const (
	PayloadEntity PayloadKind = iota
	PayloadResource
	PayloadInfo
)

// TransitItem is a delayed delivery riding an edge.
type TransitItem struct {
	Kind PayloadKind

	Entity       components.EntityID // PayloadEntity
	ResourceType components.TypeID   // PayloadResource
	Amount       float64             // PayloadResource: energy carried
	Info         []byte              // PayloadInfo

	Edge       components.EdgeID
	From, To   components.NodeID
	DepartedAt int64
	ArrivesAt  int64
}

// TransitSystem holds one bounded queue per edge.
type TransitSystem struct {
	space  *Space
	queues [][]TransitItem
}

// NewTransitSystem creates transit queues for every edge of the space.
// The space must be fully constructed first.
func NewTransitSystem(s *Space) *TransitSystem {
	return &TransitSystem{
		space:  s,
		queues: make([][]TransitItem, s.NumEdges()),
	}
}

// Start enqueues an item on its edge. Returns false when the edge is at
// capacity; the caller treats that as a silent failure.
func (t *TransitSystem) Start(item TransitItem) bool {
	q := t.queues[item.Edge]
	if len(q) >= t.space.Edge(item.Edge).Capacity {
		return false
	}
	t.queues[item.Edge] = append(q, item)
	return true
}

// Len returns the number of in-flight items on an edge.
func (t *TransitSystem) Len(edge components.EdgeID) int {
	return len(t.queues[edge])
}

// InFlight returns the total number of in-flight items.
func (t *TransitSystem) InFlight() int {
	total := 0
	for _, q := range t.queues {
		total += len(q)
	}
	return total
}

// PendingEnergy returns the energy carried by in-flight resource payloads.
// It is part of the free-energy pool for conservation accounting.
func (t *TransitSystem) PendingEnergy() float64 {
	var sum float64
	for _, q := range t.queues {
		for _, it := range q {
			if it.Kind == PayloadResource {
				sum += it.Amount
			}
		}
	}
	return sum
}

// ProcessArrivals partitions every queue into arrived and still-in-flight
// items and returns the arrived ones in edge-id, then enqueue, order.
func (t *TransitSystem) ProcessArrivals(tick int64) []TransitItem {
	var arrived []TransitItem
	for i := range t.queues {
		q := t.queues[i]
		if len(q) == 0 {
			continue
		}
		keep := q[:0]
		for _, it := range q {
			if it.ArrivesAt <= tick {
				arrived = append(arrived, it)
			} else {
				keep = append(keep, it)
			}
		}
		t.queues[i] = keep
	}
	return arrived
}
