package universe

import (
	"sort"

	"github.com/pthm-cable/universe/components"
	"github.com/pthm-cable/universe/space"
	"github.com/pthm-cable/universe/systems"
)

// EnergyBreakdown partitions all energy in the world at an instant.
type EnergyBreakdown struct {
	EntityEnergy float64 // held by live entities
	FreeEnergy   float64 // node resource pools plus in-flight resource payloads
	WasteHeat    float64 // dissipated, pending radiation
}

// Total sums the three partitions.
func (b EnergyBreakdown) Total() float64 {
	return b.EntityEnergy + b.FreeEnergy + b.WasteHeat
}

// EnergyBreakdown measures the current energy partition. Valid between ticks.
func (u *Universe) EnergyBreakdown() EnergyBreakdown {
	var br EnergyBreakdown
	query := u.filter.Query()
	for query.Next() {
		_, energy, _, _, _, _ := query.Get()
		br.EntityEnergy += energy.Value
	}
	for _, n := range u.space.Nodes() {
		for _, r := range n.Resources {
			br.FreeEnergy += r
		}
		br.WasteHeat += n.WasteHeat
	}
	br.FreeEnergy += u.transit.PendingEnergy()
	return br
}

// TotalEnergy returns the total energy currently in the world.
func (u *Universe) TotalEnergy() float64 {
	return u.EnergyBreakdown().Total()
}

// InitialEnergy returns the total energy at construction time.
func (u *Universe) InitialEnergy() float64 { return u.initialEnergy }

// ConservationError returns the discrepancy between measured total energy
// and the ledger prediction. Anything beyond float accumulation error is a
// conservation bug.
func (u *Universe) ConservationError() float64 {
	predicted := u.initialEnergy + u.cumRegenerated - u.cumRadiated + u.cumReactionDelta
	return u.TotalEnergy() - predicted
}

// Stats is a point-in-time snapshot of aggregate simulation state.
type Stats struct {
	Tick          int64
	EntityCount   int
	ArtifactCount int
	InFlight      int

	AverageAge         float64
	AverageEnergy      float64
	AverageSkill       float64
	AverageKnowledge   float64 // mean state-buffer fill fraction
	AverageCooperation float64
	TypeDistribution   []int

	Energy      EnergyBreakdown
	SpatialGini float64 // inequality of entity energy across nodes

	CumulativeRegenerated   float64
	CumulativeRadiated      float64
	CumulativeReactionDelta float64

	Counts Counters
}

// Stats computes the current snapshot. Valid between ticks.
func (u *Universe) Stats() Stats {
	s := Stats{
		Tick:                    u.tick,
		EntityCount:             u.entityCount,
		ArtifactCount:           u.artifacts.Count(),
		InFlight:                u.transit.InFlight(),
		TypeDistribution:        make([]int, u.registry.NumTypes()),
		CumulativeRegenerated:   u.cumRegenerated,
		CumulativeRadiated:      u.cumRadiated,
		CumulativeReactionDelta: u.cumReactionDelta,
		Counts:                  u.counts,
	}

	nodeEnergy := make([]float64, u.space.NumNodes())
	var sumAge, sumEnergy, sumSkill, sumKnow, sumCoop float64
	n := 0

	query := u.filter.Query()
	for query.Next() {
		pos, energy, mat, genome, state, _ := query.Get()
		n++
		sumAge += float64(energy.Age)
		sumEnergy += energy.Value
		sumSkill += systems.Skill(state.Buf)
		sumKnow += float64(len(state.Buf)) / float64(u.cfg.Behavior.StateBytes)
		sumCoop += genome.Cooperation
		s.TypeDistribution[mat.Type]++
		nodeEnergy[pos.Node] += energy.Value
	}
	if n > 0 {
		s.AverageAge = sumAge / float64(n)
		s.AverageEnergy = sumEnergy / float64(n)
		s.AverageSkill = sumSkill / float64(n)
		s.AverageKnowledge = sumKnow / float64(n)
		s.AverageCooperation = sumCoop / float64(n)
	}

	for _, node := range u.space.Nodes() {
		for _, r := range node.Resources {
			s.Energy.FreeEnergy += r
		}
		s.Energy.WasteHeat += node.WasteHeat
	}
	s.Energy.EntityEnergy = sumEnergy
	s.Energy.FreeEnergy += u.transit.PendingEnergy()

	s.SpatialGini = gini(nodeEnergy)
	return s
}

// gini computes the Gini coefficient of a non-negative sample, 0 for an
// empty or all-zero sample.
func gini(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var sum, weighted float64
	for i, v := range sorted {
		sum += v
		weighted += float64(i+1) * v
	}
	if sum == 0 {
		return 0
	}
	n := float64(len(sorted))
	return (2*weighted)/(n*sum) - (n+1)/n
}

// EntityView is a read-only snapshot of one entity.
type EntityView struct {
	ID          components.EntityID
	Node        components.NodeID
	InTransit   bool
	Type        components.TypeID
	Mass        float64
	Energy      float64
	Age         int64
	Cooperation float64
	Skill       float64
	Maintainer  bool
	StateLen    int
}

// Entities returns snapshots of all live entities in store order.
func (u *Universe) Entities() []EntityView {
	out := make([]EntityView, 0, u.entityCount)
	query := u.filter.Query()
	for query.Next() {
		pos, energy, mat, genome, state, agent := query.Get()
		out = append(out, EntityView{
			ID:          agent.ID,
			Node:        pos.Node,
			InTransit:   pos.InTransit,
			Type:        mat.Type,
			Mass:        mat.Mass,
			Energy:      energy.Value,
			Age:         energy.Age,
			Cooperation: genome.Cooperation,
			Skill:       systems.Skill(state.Buf),
			Maintainer:  agent.Maintainer(u.tick),
			StateLen:    len(state.Buf),
		})
	}
	return out
}

// Entity returns a snapshot of one entity by id.
func (u *Universe) Entity(id components.EntityID) (EntityView, bool) {
	ent, ok := u.byID[id]
	if !ok {
		return EntityView{}, false
	}
	pos := u.posMap.Get(ent)
	energy := u.energyMap.Get(ent)
	mat := u.matMap.Get(ent)
	genome := u.genomeMap.Get(ent)
	state := u.stateMap.Get(ent)
	agent := u.agentMap.Get(ent)
	return EntityView{
		ID:          agent.ID,
		Node:        pos.Node,
		InTransit:   pos.InTransit,
		Type:        mat.Type,
		Mass:        mat.Mass,
		Energy:      energy.Value,
		Age:         energy.Age,
		Cooperation: genome.Cooperation,
		Skill:       systems.Skill(state.Buf),
		Maintainer:  agent.Maintainer(u.tick),
		StateLen:    len(state.Buf),
	}, true
}

// NodeSummary is a read-only snapshot of one node.
type NodeSummary struct {
	Node      components.NodeID
	Terrain   space.Terrain
	Resource  float64 // summed pools
	Capacity  float64 // summed capacity
	WasteHeat float64
	Shelter   float64
	Beacon    float64
	Entities  int
	Artifacts int
}

// Landscape returns per-node summaries in node id order.
func (u *Universe) Landscape() []NodeSummary {
	fctx := &systems.FeatureContext{Space: u.space, Artifacts: u.artifacts, Tick: u.tick}
	out := make([]NodeSummary, 0, u.space.NumNodes())
	for _, node := range u.space.Nodes() {
		sum := NodeSummary{
			Node:      node.ID,
			Terrain:   node.Terrain,
			WasteHeat: node.WasteHeat,
			Shelter:   systems.Shelter(systems.NodeShelterSum(fctx, node), u.cfg.Artifacts.ShelterRate),
			Beacon:    systems.NodeBeacon(fctx, node),
			Entities:  len(node.Entities),
			Artifacts: len(node.Artifacts),
		}
		for t := range node.Resources {
			sum.Resource += node.Resources[t]
			sum.Capacity += node.Capacity[t]
		}
		out = append(out, sum)
	}
	return out
}
