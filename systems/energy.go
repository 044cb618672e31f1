package systems

import (
	"github.com/pthm-cable/universe/components"
	"github.com/pthm-cable/universe/config"
	"github.com/pthm-cable/universe/space"
)

// ActionCost returns the energy cost of performing an action. Movement cost
// scales with entity mass and edge distance, and rises as the edge wears
// down. Replication, artifact creation, and repair price themselves in their
// own subsystems; here they fall through to the idle cost charged when the
// action is attempted.
func ActionCost(cfg *config.EnergyConfig, action components.Action, mass float64, edge *space.Edge) float64 {
	switch action {
	case components.ActHarvest:
		return cfg.HarvestCost
	case components.ActMoveResource, components.ActMoveBeacon, components.ActExplore:
		if edge == nil {
			return cfg.IdleCost
		}
		return cfg.MoveCost * mass * edge.Distance / edge.Durability
	case components.ActInteract:
		return cfg.InteractCost
	default:
		return cfg.IdleCost
	}
}

// Charge deducts up to cost from the entity, returning the amount actually
// taken. Energy never goes negative; an entity that cannot pay in full pays
// what it has and dies at the removal pass.
func Charge(energy *components.Energy, cost float64) float64 {
	if cost > energy.Value {
		cost = energy.Value
	}
	energy.Value -= cost
	return cost
}

// Harvest extracts up to rate*(1+bonus) resource of the given type from the
// node pool, capped by what is present. The type's harvest efficiency splits
// the extraction into usable gain and dissipated waste; the caller routes the
// waste into the node's heat.
func Harvest(node *space.Node, t components.TypeID, rate, efficiency, bonus float64) (gain, waste float64) {
	amount := rate * (1 + bonus)
	if amount > node.Resources[t] {
		amount = node.Resources[t]
	}
	if amount <= 0 {
		return 0, 0
	}
	node.Resources[t] -= amount
	gain = amount * efficiency
	return gain, amount - gain
}

// DeathReturn puts a dead entity's remaining energy back into the node's
// resource pool for its own type. Whatever exceeds capacity is returned as
// overflow for the caller to route to waste heat, so nothing vanishes at the
// death boundary.
func DeathReturn(node *space.Node, t components.TypeID, energy float64) (returned, overflow float64) {
	if energy <= 0 {
		return 0, 0
	}
	room := node.Capacity[t] - node.Resources[t]
	if room < 0 {
		room = 0
	}
	returned = energy
	if returned > room {
		returned = room
	}
	node.Resources[t] += returned
	return returned, energy - returned
}

// Deposit adds energy to a node pool with the same capacity clamp as
// DeathReturn. Used when resource payloads arrive from transit.
func Deposit(node *space.Node, t components.TypeID, amount float64) (added, overflow float64) {
	return DeathReturn(node, t, amount)
}

// Regenerate moves every pool of the node a regenRate fraction of the way
// toward capacity and returns the externally injected energy.
func Regenerate(node *space.Node, regenRate float64) float64 {
	var added float64
	for t := range node.Resources {
		delta := (node.Capacity[t] - node.Resources[t]) * regenRate
		if delta > 0 {
			node.Resources[t] += delta
			added += delta
		}
	}
	return added
}
