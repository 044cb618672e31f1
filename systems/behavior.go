package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/universe/components"
	"github.com/pthm-cable/universe/space"
)

// FeatureContext bundles the read-only world views feature extraction needs.
type FeatureContext struct {
	Space     *space.Space
	Artifacts *ArtifactManager
	Tick      int64
}

// NodeBeacon sums durability*prestige over the artifacts standing at a node.
func NodeBeacon(ctx *FeatureContext, node *space.Node) float64 {
	var sum float64
	for _, id := range node.Artifacts {
		if a := ctx.Artifacts.Get(id); a != nil {
			sum += a.Beacon()
		}
	}
	return sum
}

// NodeShelterSum sums artifact durability at a node, the input to Shelter.
func NodeShelterSum(ctx *FeatureContext, node *space.Node) float64 {
	var sum float64
	for _, id := range node.Artifacts {
		if a := ctx.Artifacts.Get(id); a != nil {
			sum += a.Durability
		}
	}
	return sum
}

// HasDamagedArtifact reports whether any artifact at the node is below full
// durability.
func HasDamagedArtifact(ctx *FeatureContext, node *space.Node) bool {
	for _, id := range node.Artifacts {
		if a := ctx.Artifacts.Get(id); a != nil && a.Durability < 1 {
			return true
		}
	}
	return false
}

// ExtractFeatures builds the fixed-length perception vector for one entity.
// All features land in [0,1] before noise so genomes transfer between
// contexts of different scale.
func ExtractFeatures(
	ctx *FeatureContext,
	node *space.Node,
	energy *components.Energy,
	mat *components.Material,
	agent *components.Agent,
	energyScale float64,
) components.Features {
	var f components.Features

	f[components.FeatSelfEnergy] = energy.Value / (energy.Value + energyScale)

	t := mat.Type
	if node.Capacity[t] > 0 {
		f[components.FeatLocalResource] = node.Resources[t] / node.Capacity[t]
	}

	var bestNeighborRes, bestNeighborBeacon float64
	for _, eid := range ctx.Space.Incident(node.ID) {
		other := ctx.Space.Node(ctx.Space.Edge(eid).Other(node.ID))
		if other.Capacity[t] > 0 {
			if r := other.Resources[t] / other.Capacity[t]; r > bestNeighborRes {
				bestNeighborRes = r
			}
		}
		if b := NodeBeacon(ctx, other); b > bestNeighborBeacon {
			bestNeighborBeacon = b
		}
	}
	f[components.FeatNeighborResource] = bestNeighborRes
	f[components.FeatLocalBeacon] = saturate(NodeBeacon(ctx, node) / 10)
	f[components.FeatNeighborBeacon] = saturate(bestNeighborBeacon / 10)
	f[components.FeatDensity] = saturate(float64(len(node.Entities)) / 8)
	if HasDamagedArtifact(ctx, node) {
		f[components.FeatDamagedArtifact] = 1
	}
	if agent.Maintainer(ctx.Tick) {
		f[components.FeatMaintainer] = 1
	}
	f[components.FeatBias] = 1
	return f
}

// AddNoise perturbs every feature except the bias term by a uniform draw in
// [-rate, rate]. The per-feature draw order is fixed; it is part of the
// reproducibility contract.
func AddNoise(rng *rand.Rand, f *components.Features, rate float64) {
	if rate <= 0 {
		return
	}
	for i := 0; i < components.FeatBias; i++ {
		f[i] += (rng.Float64()*2 - 1) * rate
	}
}

// Softmax converts action scores into a probability distribution at the
// given temperature. Scores are shifted by their max for numeric stability.
func Softmax(scores [components.NumActions]float64, temperature float64) [components.NumActions]float64 {
	maxScore := scores[0]
	for _, s := range scores[1:] {
		if s > maxScore {
			maxScore = s
		}
	}

	var probs [components.NumActions]float64
	var sum float64
	for i, s := range scores {
		p := math.Exp((s - maxScore) / temperature)
		probs[i] = p
		sum += p
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// SampleAction draws one action index from the distribution using a single
// RNG draw.
func SampleAction(rng *rand.Rand, probs [components.NumActions]float64) components.Action {
	r := rng.Float64()
	var cum float64
	for i, p := range probs {
		cum += p
		if r < cum {
			return components.Action(i)
		}
	}
	return components.Action(components.NumActions - 1)
}

// Decide runs the full perception-to-action pipeline for one entity:
// noise -> scores -> softmax -> sample.
func Decide(
	rng *rand.Rand,
	ctx *FeatureContext,
	node *space.Node,
	energy *components.Energy,
	mat *components.Material,
	genome *components.Genome,
	agent *components.Agent,
	noiseRate, temperature, energyScale float64,
) components.Action {
	f := ExtractFeatures(ctx, node, energy, mat, agent, energyScale)
	AddNoise(rng, &f, noiseRate)
	scores := genome.Scores(&f)
	probs := Softmax(scores, temperature)
	return SampleAction(rng, probs)
}

func saturate(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
