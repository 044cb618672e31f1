// Package systems implements the simulation subsystems: the type registry and
// reaction engine, the energy cost model, entropy and waste heat, replication,
// artifacts, and the behavior decision math. Functions here operate on
// components and space records passed in explicitly; nothing reaches back
// into the orchestrator.
package systems

import (
	"math/rand"

	"github.com/pthm-cable/universe/components"
)

// TypeProps holds the physical properties of one material type.
type TypeProps struct {
	Mass              float64 // rest mass of an entity of this type
	Stability         float64 // in [0,1]; resistance to entropy upkeep
	Reactivity        float64 // in [0,1]; scales reaction probability
	HarvestEfficiency float64 // in (0,1]; fraction of harvested resource converted to energy
}

// ReactionResult describes the memoized outcome table for a type pair.
type ReactionResult struct {
	Products    []components.TypeID
	Probability float64 // base fire probability, before reactivity scaling
}

// TypeRegistry holds per-type properties and the lazily generated reaction
// table. Properties are read-only after world generation; reaction outcomes
// are memoized once computed so the table never changes under a fixed seed.
type TypeRegistry struct {
	seed        int64
	types       []TypeProps
	reactions   map[uint16]*ReactionResult
	baseProb    float64
	maxProducts int
}

// NewTypeRegistry populates n material types from the world RNG stream.
// The registry keeps the world seed so reaction generation can derive
// per-pair sub-streams independent of lookup order.
func NewTypeRegistry(seed int64, rng *rand.Rand, n int, baseProb float64, maxProducts int) *TypeRegistry {
	r := &TypeRegistry{
		seed:        seed,
		types:       make([]TypeProps, n),
		reactions:   make(map[uint16]*ReactionResult),
		baseProb:    baseProb,
		maxProducts: maxProducts,
	}
	for i := range r.types {
		r.types[i] = TypeProps{
			Mass:              0.5 + rng.Float64()*2.5,
			Stability:         rng.Float64(),
			Reactivity:        rng.Float64(),
			HarvestEfficiency: 0.5 + rng.Float64()*0.5,
		}
	}
	return r
}

// NewTypeRegistryFromProps builds a registry with explicit properties.
// Used by tests that need controlled masses and reactivities.
func NewTypeRegistryFromProps(seed int64, props []TypeProps, baseProb float64, maxProducts int) *TypeRegistry {
	return &TypeRegistry{
		seed:        seed,
		types:       props,
		reactions:   make(map[uint16]*ReactionResult),
		baseProb:    baseProb,
		maxProducts: maxProducts,
	}
}

// NumTypes returns the registry size.
func (r *TypeRegistry) NumTypes() int { return len(r.types) }

// Props returns the properties of a type.
func (r *TypeRegistry) Props(t components.TypeID) TypeProps { return r.types[t] }

// AllProps returns the property table in type order.
func (r *TypeRegistry) AllProps() []TypeProps { return r.types }

func pairKey(a, b components.TypeID) uint16 {
	if a > b {
		a, b = b, a
	}
	return uint16(a)<<8 | uint16(b)
}

// Reaction returns the memoized reaction table entry for an unordered type
// pair, generating it on first access. Generation draws from a sub-RNG
// derived from the world seed and the pair key, so the main RNG stream is
// untouched and first-access order cannot perturb determinism.
func (r *TypeRegistry) Reaction(a, b components.TypeID) *ReactionResult {
	key := pairKey(a, b)
	if res, ok := r.reactions[key]; ok {
		return res
	}

	sub := rand.New(rand.NewSource(r.seed ^ (int64(key)+1)*0x9e3779b9))
	res := &ReactionResult{
		Probability: r.baseProb * (0.25 + sub.Float64()*0.75),
	}
	numProducts := 1 + sub.Intn(r.maxProducts)
	res.Products = make([]components.TypeID, numProducts)
	for i := range res.Products {
		res.Products[i] = components.TypeID(sub.Intn(len(r.types)))
	}
	r.reactions[key] = res
	return res
}
