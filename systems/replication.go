package systems

import (
	"math/rand"

	"github.com/pthm-cable/universe/components"
	"github.com/pthm-cable/universe/config"
)

// ReplicationResult carries everything the orchestrator needs to spawn the
// child and balance the books: EnergyConsumed - ChildEnergy is the portion
// dissipated to waste heat.
type ReplicationResult struct {
	Genome         components.Genome
	Type           components.TypeID
	ChildEnergy    float64
	EnergyConsumed float64
	Inherited      []byte // state bytes copied into the child
	MutatedGenes   int
}

// minViableEnergy is the smallest child allocation worth spawning; parents
// below creationCost + this cannot replicate.
const minViableEnergy = 0.1

// ReplicateAlone attempts asexual reproduction. The parent pays a flat
// creation cost plus the child's energy allocation; genes mutate within the
// configured bounds and the material type occasionally rerolls. Returns
// (nil, false) without side effects when the parent cannot afford it.
func ReplicateAlone(
	rng *rand.Rand,
	energy *components.Energy,
	genome *components.Genome,
	mat *components.Material,
	state *components.State,
	cfg *config.Config,
) (*ReplicationResult, bool) {
	rep := &cfg.Replication
	if energy.Value <= rep.CreationCost+minViableEnergy {
		return nil, false
	}

	childEnergy := (energy.Value - rep.CreationCost) * rep.ChildFraction
	consumed := rep.CreationCost + childEnergy
	energy.Value -= consumed

	child := *genome
	mutated := child.Mutate(rng, rep.MutationRate, rep.MutationSigma, rep.GeneLimit)

	childType := mat.Type
	if rng.Float64() < rep.TypeMutationRate {
		childType = components.TypeID(rng.Intn(int(maxType(cfg))))
	}

	return &ReplicationResult{
		Genome:         child,
		Type:           childType,
		ChildEnergy:    childEnergy,
		EnergyConsumed: consumed,
		Inherited:      inheritBytes(state.Buf, cfg.Information.MaxBytes),
		MutatedGenes:   mutated,
	}, true
}

// ReplicateWithPartner attempts partnered reproduction. The initiating parent
// must carry a cooperation gene above the threshold and pays all costs; the
// partner contributes genes via uniform crossover. A missing partner or a
// cooperation gene below threshold is a silent no-op.
func ReplicateWithPartner(
	rng *rand.Rand,
	energy *components.Energy,
	genome *components.Genome,
	mat *components.Material,
	state *components.State,
	partnerGenome *components.Genome,
	cfg *config.Config,
) (*ReplicationResult, bool) {
	rep := &cfg.Replication
	if partnerGenome == nil || genome.Cooperation < rep.CooperationThreshold {
		return nil, false
	}
	if energy.Value <= rep.CreationCost+minViableEnergy {
		return nil, false
	}

	childEnergy := (energy.Value - rep.CreationCost) * rep.ChildFraction
	consumed := rep.CreationCost + childEnergy
	energy.Value -= consumed

	child := components.Crossover(rng, genome, partnerGenome)
	mutated := child.Mutate(rng, rep.MutationRate, rep.MutationSigma, rep.GeneLimit)

	childType := mat.Type
	if rng.Float64() < rep.TypeMutationRate {
		childType = components.TypeID(rng.Intn(int(maxType(cfg))))
	}

	return &ReplicationResult{
		Genome:         child,
		Type:           childType,
		ChildEnergy:    childEnergy,
		EnergyConsumed: consumed,
		Inherited:      inheritBytes(state.Buf, cfg.Information.MaxBytes),
		MutatedGenes:   mutated,
	}, true
}

func maxType(cfg *config.Config) int32 {
	return int32(cfg.World.MaxTypes)
}

// inheritBytes copies up to limit bytes of the parent's state for the child.
func inheritBytes(buf []byte, limit int) []byte {
	n := len(buf)
	if n > limit {
		n = limit
	}
	if n == 0 {
		return nil
	}
	out := make([]byte, n)
	copy(out, buf[:n])
	return out
}
