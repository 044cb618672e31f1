package components

import "math/rand"

// Feature indices for the behavior feature vector.
// These are compile-time constants so the genome can be a fixed-size array.
const (
	FeatSelfEnergy = iota // own energy, smoothly normalized to [0,1)
	FeatLocalResource
	FeatNeighborResource
	FeatLocalBeacon
	FeatNeighborBeacon
	FeatDensity
	FeatDamagedArtifact
	FeatMaintainer
	FeatBias

	NumFeatures
)

// Action is a discrete behavior choice sampled each tick.
type Action uint8

const (
	ActIdle Action = iota
	ActHarvest
	ActMoveResource // move toward the best adjacent resource pool
	ActMoveBeacon   // move toward the strongest beacon in the world
	ActExplore      // move along a random edge
	ActInteract
	ActReplicateSolo
	ActReplicatePartner
	ActCreateArtifact
	ActRepairArtifact

	NumActions = int(ActRepairArtifact) + 1
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActIdle:
		return "idle"
	case ActHarvest:
		return "harvest"
	case ActMoveResource:
		return "move_resource"
	case ActMoveBeacon:
		return "move_beacon"
	case ActExplore:
		return "explore"
	case ActInteract:
		return "interact"
	case ActReplicateSolo:
		return "replicate_solo"
	case ActReplicatePartner:
		return "replicate_partner"
	case ActCreateArtifact:
		return "create_artifact"
	case ActRepairArtifact:
		return "repair_artifact"
	default:
		return "unknown"
	}
}

// Features is the fixed-length perception vector fed to the genome.
type Features [NumFeatures]float64

// Genome is an entity's behavior rule set: one weight row per action plus a
// cooperation gene gating partnered replication.
type Genome struct {
	Weights     [NumActions][NumFeatures]float64
	Cooperation float64 // in [0,1]
}

// NewGenome creates a randomly initialized genome.
func NewGenome(rng *rand.Rand) Genome {
	var g Genome
	for i := range g.Weights {
		for j := range g.Weights[i] {
			g.Weights[i][j] = rng.NormFloat64() * 0.5
		}
	}
	g.Cooperation = rng.Float64()
	return g
}

// Scores computes one linear score per action.
func (g *Genome) Scores(f *Features) [NumActions]float64 {
	var scores [NumActions]float64
	for i := range g.Weights {
		var sum float64
		for j := range g.Weights[i] {
			sum += g.Weights[i][j] * f[j]
		}
		scores[i] = sum
	}
	return scores
}

// Mutate perturbs each gene with probability rate by a normal step of the
// given sigma, clamping to [-limit, limit]. The cooperation gene mutates on
// the same schedule and stays in [0,1]. Returns the number of mutated genes.
func (g *Genome) Mutate(rng *rand.Rand, rate, sigma, limit float64) int {
	mutated := 0
	for i := range g.Weights {
		for j := range g.Weights[i] {
			if rng.Float64() < rate {
				g.Weights[i][j] = clamp(g.Weights[i][j]+rng.NormFloat64()*sigma, -limit, limit)
				mutated++
			}
		}
	}
	if rng.Float64() < rate {
		g.Cooperation = clamp(g.Cooperation+rng.NormFloat64()*sigma*0.25, 0, 1)
		mutated++
	}
	return mutated
}

// Crossover builds a child genome taking each gene uniformly from either parent.
func Crossover(rng *rand.Rand, a, b *Genome) Genome {
	var child Genome
	for i := range child.Weights {
		for j := range child.Weights[i] {
			if rng.Float64() < 0.5 {
				child.Weights[i][j] = a.Weights[i][j]
			} else {
				child.Weights[i][j] = b.Weights[i][j]
			}
		}
	}
	if rng.Float64() < 0.5 {
		child.Cooperation = a.Cooperation
	} else {
		child.Cooperation = b.Cooperation
	}
	return child
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
