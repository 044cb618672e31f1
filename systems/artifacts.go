package systems

import (
	"math/rand"

	"github.com/pthm-cable/universe/components"
	"github.com/pthm-cable/universe/config"
)

// ArtifactManager owns the artifact arena. Artifacts live in a dense slice
// iterated in insertion order; the id index map is used only for point
// lookups, never iterated, so determinism is preserved.
type ArtifactManager struct {
	cfg       *config.Config
	artifacts []*components.Artifact
	byID      map[components.ArtifactID]int
	nextID    components.ArtifactID
}

// NewArtifactManager creates an empty manager.
func NewArtifactManager(cfg *config.Config) *ArtifactManager {
	return &ArtifactManager{
		cfg:  cfg,
		byID: make(map[components.ArtifactID]int),
	}
}

// Count returns the number of live artifacts.
func (m *ArtifactManager) Count() int { return len(m.artifacts) }

// All returns the live artifacts in insertion order.
func (m *ArtifactManager) All() []*components.Artifact { return m.artifacts }

// Get returns an artifact by id, or nil when it no longer exists. Stale ids
// are a normal runtime condition, not an error.
func (m *ArtifactManager) Get(id components.ArtifactID) *components.Artifact {
	idx, ok := m.byID[id]
	if !ok {
		return nil
	}
	return m.artifacts[idx]
}

// Create builds a new artifact at full durability. The creator pays energy
// proportional to payload size, scaled down by the skill cost multiplier.
// Returns the artifact and the energy spent (all of it dissipates; artifacts
// store no energy). Fails silently when the creator cannot pay.
func (m *ArtifactManager) Create(
	tick int64,
	creator components.EntityID,
	node components.NodeID,
	payload []byte,
	energy *components.Energy,
	costMultiplier float64,
) (*components.Artifact, float64, bool) {
	cost := m.cfg.Artifacts.PayloadCostRate * float64(len(payload)) * costMultiplier
	if cost <= 0 || energy.Value < cost {
		return nil, 0, false
	}
	energy.Value -= cost

	a := &components.Artifact{
		ID:         m.nextID,
		Creator:    creator,
		Node:       node,
		Payload:    append([]byte(nil), payload...),
		Durability: 1.0,
		CreatedAt:  tick,
	}
	m.nextID++
	m.byID[a.ID] = len(m.artifacts)
	m.artifacts = append(m.artifacts, a)
	return a, cost, true
}

// RepairResult reports what a repair did, for event logging and heat routing.
type RepairResult struct {
	Spent           float64 // energy dissipated by the repair
	Restored        float64 // durability gained
	Similarity      float64
	KnowledgeBonus  float64
	SkillBonus      float64
	AcquiredBytes   int   // payload bytes copied into the repairer's state
	MaintainerUntil int64 // expiry tick of the granted maintainer status
}

// Repair spends a fixed energy budget to restore durability, capped by
// (1 - current). Byte-level similarity between the repairer's state and the
// artifact payload yields a knowledge bonus, and the repairer's own skill a
// second multiplier. The repairer learns from the work: a few payload bytes
// are copied into its state, and it is granted maintainer status for a
// random duration within the configured range. Fails silently when the
// artifact is whole or the repairer has no energy.
func (m *ArtifactManager) Repair(
	tick int64,
	rng *rand.Rand,
	a *components.Artifact,
	energy *components.Energy,
	state *components.State,
) (RepairResult, bool) {
	art := &m.cfg.Artifacts
	if a.Durability >= 1 || energy.Value <= 0 {
		return RepairResult{}, false
	}

	spend := art.RepairSpend
	if spend > energy.Value {
		spend = energy.Value
	}

	similarity := Similarity(state.Buf, a.Payload)
	knowledgeBonus := 0.0
	if m.cfg.Bonuses.KnowledgeBonusEnabled {
		knowledgeBonus = similarity
	}
	skillBonus := SkillBonus(&m.cfg.Bonuses, state.Buf)

	restored := spend * art.RepairRate * (1 + knowledgeBonus) * (1 + skillBonus)
	if restored > 1-a.Durability {
		restored = 1 - a.Durability
	}

	energy.Value -= spend
	a.Durability += restored
	a.Prestige += spend * art.PrestigeRate

	acquired := m.acquire(state, a.Payload)

	span := art.MaintainerMaxTicks - art.MaintainerMinTicks
	until := tick + art.MaintainerMinTicks
	if span > 0 {
		until += rng.Int63n(span + 1)
	}

	return RepairResult{
		Spent:           spend,
		Restored:        restored,
		Similarity:      similarity,
		KnowledgeBonus:  knowledgeBonus,
		SkillBonus:      skillBonus,
		AcquiredBytes:   acquired,
		MaintainerUntil: until,
	}, true
}

// acquire copies payload bytes into the repairer's state, respecting the
// buffer bound. Returns the number of bytes actually copied.
func (m *ArtifactManager) acquire(state *components.State, payload []byte) int {
	limit := m.cfg.Behavior.StateBytes
	room := limit - len(state.Buf)
	if room <= 0 || len(payload) == 0 {
		return 0
	}
	n := m.cfg.Information.ExchangeBytes
	if n > room {
		n = room
	}
	if n > len(payload) {
		n = len(payload)
	}
	state.Buf = append(state.Buf, payload[:n]...)
	return n
}

// Remove deletes an artifact from the arena (swap-remove).
func (m *ArtifactManager) Remove(id components.ArtifactID) {
	idx, ok := m.byID[id]
	if !ok {
		return
	}
	last := len(m.artifacts) - 1
	moved := m.artifacts[last]
	m.artifacts[idx] = moved
	m.artifacts = m.artifacts[:last]
	delete(m.byID, id)
	if moved.ID != id {
		m.byID[moved.ID] = idx
	}
}

// Similarity returns the fraction of matching bytes over the shorter of the
// two buffers, 0 when either is empty.
func Similarity(a, b []byte) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}
	match := 0
	for i := 0; i < n; i++ {
		if a[i] == b[i] {
			match++
		}
	}
	return float64(match) / float64(n)
}

// Skill derives an entity's raw skill value from its state buffer: the
// fraction of non-zero bytes. An empty buffer means no skill.
func Skill(buf []byte) float64 {
	if len(buf) == 0 {
		return 0
	}
	nz := 0
	for _, b := range buf {
		if b != 0 {
			nz++
		}
	}
	return float64(nz) / float64(len(buf))
}

// SkillBonus applies the configured coefficient to the raw skill value,
// returning 0 when the bonus is disabled.
func SkillBonus(b *config.BonusConfig, buf []byte) float64 {
	if !b.SkillBonusEnabled {
		return 0
	}
	return b.SkillBonusCoefficient * Skill(buf)
}
