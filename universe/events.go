package universe

import "github.com/pthm-cable/universe/components"

// EventType identifies simulation events.
type EventType uint8

const (
	EventEntityCreated EventType = iota
	EventEntityDied
	EventEntityMoved
	EventInteraction
	EventReplication
	EventPartnerSelected
	EventArtifactCreated
	EventArtifactDecayed
	EventArtifactRepaired
	EventMaintainerGranted
	EventHarvest
	EventReaction
)

// String returns the event type name.
func (t EventType) String() string {
	switch t {
	case EventEntityCreated:
		return "entity_created"
	case EventEntityDied:
		return "entity_died"
	case EventEntityMoved:
		return "entity_moved"
	case EventInteraction:
		return "interaction"
	case EventReplication:
		return "replication"
	case EventPartnerSelected:
		return "partner_selected"
	case EventArtifactCreated:
		return "artifact_created"
	case EventArtifactDecayed:
		return "artifact_decayed"
	case EventArtifactRepaired:
		return "artifact_repaired"
	case EventMaintainerGranted:
		return "maintainer_granted"
	case EventHarvest:
		return "harvest"
	case EventReaction:
		return "reaction"
	default:
		return "unknown"
	}
}

// Event is one record of the append-only log. Fields beyond Type and Tick
// are populated per event type; unused fields stay zero.
type Event struct {
	Type EventType
	Tick int64

	Entity   components.EntityID
	Target   components.EntityID   // interaction target, replication child, selected partner
	Artifact components.ArtifactID

	From, To components.NodeID // entity_moved
	Cause    components.DeathCause

	Amount         float64 // harvest gain
	SkillBonus     float64
	KnowledgeBonus float64
	Similarity     float64
	Bytes          int // exchanged, inherited, or acquired bytes
	MutatedGenes   int

	IsMaintainer bool    // partner_selected: chosen partner held maintainer status
	NodePrestige float64 // partner_selected: total prestige at the node
	UntilTick    int64   // maintainer_granted

	ReactantTypes []components.TypeID
	ProductTypes  []components.TypeID
	EnergyDelta   float64 // reaction mass-energy conversion
}
