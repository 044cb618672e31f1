// Package components defines ECS components and plain data records for the
// simulation. It is the leaf package: everything else imports it.
package components

// NodeID indexes a node in the Space arena.
type NodeID int32

// EdgeID indexes an edge in the Space arena.
type EdgeID int32

// TypeID identifies a material type in the TypeRegistry.
type TypeID uint8

// EntityID identifies an entity across its lifetime. IDs are never reused.
type EntityID uint32

// ArtifactID identifies an artifact across its lifetime.
type ArtifactID uint32

// NoNode marks an absent node reference.
const NoNode NodeID = -1

// DeathCause records why an entity died.
type DeathCause uint8

const (
	CauseNone DeathCause = iota
	CauseStarvation
	CauseDisaster
	CauseReaction
)

// String returns the cause name for logging.
func (c DeathCause) String() string {
	switch c {
	case CauseStarvation:
		return "starvation"
	case CauseDisaster:
		return "disaster"
	case CauseReaction:
		return "reaction"
	default:
		return "none"
	}
}

// Position locates an entity in the world graph.
type Position struct {
	Node      NodeID
	InTransit bool // set while the entity rides a transit queue; it neither acts nor decays
}

// Energy holds an entity's energy state.
type Energy struct {
	Value float64 // >= 0; removal happens when it reaches 0
	Age   int64   // ticks since creation
	Alive bool
	Cause DeathCause // set when Alive flips to false
}

// Material holds an entity's physical identity.
type Material struct {
	Type        TypeID
	Mass        float64
	Composition []float64 // per-type mass fractions; len == registry size
}

// State is the bounded transmissible byte buffer. Its contents drive the
// knowledge and skill bonuses and flow between entities via interactions.
type State struct {
	Buf []byte
}

// Agent carries identity and social status.
type Agent struct {
	ID              EntityID
	MaintainerUntil int64 // tick until which maintainer status holds; 0 = never granted
}

// Maintainer reports whether the maintainer status is active at the given tick.
func (a *Agent) Maintainer(tick int64) bool {
	return a.MaintainerUntil > tick
}

// Artifact is a persistent object created by an entity. Artifacts are not ECS
// entities: they have a different lifecycle and are owned by the ArtifactManager.
type Artifact struct {
	ID         ArtifactID
	Creator    EntityID
	Node       NodeID
	Payload    []byte
	Durability float64 // in [0,1]; removed at 0
	Prestige   float64 // monotonic non-negative
	CreatedAt  int64
}

// Beacon returns the artifact's attractiveness signal.
func (a *Artifact) Beacon() float64 {
	return a.Durability * a.Prestige
}
