package systems

import (
	"math/rand"

	"github.com/pthm-cable/universe/components"
)

// Reactant is one input to a reaction check.
type Reactant struct {
	Type   components.TypeID
	Mass   float64
	Energy float64
}

// ProductSpec is one output entity of a fired reaction.
type ProductSpec struct {
	Type   components.TypeID
	Mass   float64
	Energy float64
}

// ReactionOutcome describes a fired reaction. Both reactants are consumed;
// the orchestrator spawns one entity per product.
type ReactionOutcome struct {
	Products    []ProductSpec
	EnergyDelta float64 // mass deficit converted to energy (may be negative)
}

// ReactionEngine samples and executes probabilistic type transmutations.
// The conversion constant c fixes the mass-energy exchange rate: E = m*c.
type ReactionEngine struct {
	registry *TypeRegistry
	c        float64
}

// NewReactionEngine creates a reaction engine over a registry.
func NewReactionEngine(registry *TypeRegistry, conversionConstant float64) *ReactionEngine {
	return &ReactionEngine{registry: registry, c: conversionConstant}
}

// Registry returns the underlying type registry.
func (e *ReactionEngine) Registry() *TypeRegistry { return e.registry }

// Check looks up the reaction table for the reactants' type pair, scales the
// base probability by their mean reactivity, and draws once from rng to
// decide whether the reaction fires. A reaction whose products would carry
// negative total energy never fires.
func (e *ReactionEngine) Check(rng *rand.Rand, a, b Reactant) (*ReactionOutcome, bool) {
	res := e.registry.Reaction(a.Type, b.Type)
	if len(res.Products) == 0 {
		return nil, false
	}

	meanReactivity := (e.registry.Props(a.Type).Reactivity + e.registry.Props(b.Type).Reactivity) / 2
	if rng.Float64() >= res.Probability*meanReactivity {
		return nil, false
	}

	outcome := e.Execute(a, b, res.Products)
	if outcome == nil {
		return nil, false
	}
	return outcome, true
}

// Execute consumes both reactants and computes product masses and energies.
// The accounting identity holds exactly:
//
//	sum(input mass) + sum(input energy)/c == sum(output mass) + sum(output energy)/c
//
// Returns nil when the products cannot carry the required energy (it would
// go negative), in which case the reaction must not fire.
func (e *ReactionEngine) Execute(a, b Reactant, products []components.TypeID) *ReactionOutcome {
	inputMass := a.Mass + b.Mass
	inputEnergy := a.Energy + b.Energy

	var outputMass float64
	for _, p := range products {
		outputMass += e.registry.Props(p).Mass
	}

	deltaMass := inputMass - outputMass
	totalEnergy := inputEnergy + deltaMass*e.c
	if totalEnergy < 0 {
		return nil
	}

	per := totalEnergy / float64(len(products))
	outcome := &ReactionOutcome{
		Products:    make([]ProductSpec, len(products)),
		EnergyDelta: deltaMass * e.c,
	}
	for i, p := range products {
		outcome.Products[i] = ProductSpec{
			Type:   p,
			Mass:   e.registry.Props(p).Mass,
			Energy: per,
		}
	}
	return outcome
}
