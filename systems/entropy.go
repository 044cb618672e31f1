package systems

import (
	"github.com/pthm-cable/universe/components"
	"github.com/pthm-cable/universe/space"
)

// Shelter returns the upkeep reduction factor in [0, 0.9] provided by the
// artifacts standing at a node. Durability sums scale by shelterRate; the
// cap keeps even an artifact-dense node from zeroing upkeep entirely.
func Shelter(durabilitySum, shelterRate float64) float64 {
	s := durabilitySum * shelterRate
	if s > 0.9 {
		s = 0.9
	}
	return s
}

// EntityUpkeep computes the per-tick energy an entity dissipates to exist.
// Upkeep scales with mass, shrinks with the material's stability, and shrinks
// again with local shelter. The caller deducts it and deposits the same
// amount into the node's waste heat.
func EntityUpkeep(entropyRate, mass, stability, shelter float64) float64 {
	upkeep := entropyRate * mass * (1 - 0.5*stability) * (1 - shelter)
	if upkeep < 0 {
		upkeep = 0
	}
	return upkeep
}

// DecayArtifact reduces durability on the fixed, stability-independent
// schedule. Returns true once durability reaches 0 and the artifact should
// be removed.
func DecayArtifact(a *components.Artifact, rate float64) bool {
	a.Durability -= rate
	if a.Durability <= 0 {
		a.Durability = 0
		return true
	}
	return false
}

// DecayEdge wears an edge down toward the floor. Edges are never removed at
// runtime; low durability shows up as higher movement cost instead.
func DecayEdge(e *space.Edge, rate, floor float64) {
	e.Durability -= rate
	if e.Durability < floor {
		e.Durability = floor
	}
}

// Radiate removes a fixed fraction of a node's waste heat from the system
// and returns the radiated amount. This is the only channel through which
// energy truly leaves the world.
func Radiate(node *space.Node, radiationRate float64) float64 {
	radiated := node.WasteHeat * radiationRate
	node.WasteHeat -= radiated
	return radiated
}
