// Package universe owns the simulation: the world graph, the entity store,
// every subsystem, and the fixed per-tick pipeline. A Universe is a fully
// isolated unit of state; independent instances may run in parallel with no
// synchronization, but a single instance is strictly single-threaded.
package universe

import (
	"fmt"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/universe/components"
	"github.com/pthm-cable/universe/config"
	"github.com/pthm-cable/universe/space"
	"github.com/pthm-cable/universe/systems"
)

// Counters accumulate over the whole run. They feed Stats and telemetry.
type Counters struct {
	Births           int64
	Deaths           int64
	DeathsStarved    int64
	DeathsDisaster   int64
	DeathsReaction   int64
	Harvests         int64
	Repairs          int64
	Reactions        int64
	Interactions     int64
	Moves            int64
	ArtifactsCreated int64
	ArtifactsDecayed int64
}

// Universe is the orchestrator. All mutation happens inside Step; external
// callers observe state only between ticks.
type Universe struct {
	cfg *config.Config
	rng *rand.Rand

	tick int64

	space     *space.Space
	transit   *space.TransitSystem
	registry  *systems.TypeRegistry
	reactions *systems.ReactionEngine
	artifacts *systems.ArtifactManager

	world  *ecs.World
	mapper *ecs.Map6[
		components.Position,
		components.Energy,
		components.Material,
		components.Genome,
		components.State,
		components.Agent,
	]
	filter *ecs.Filter6[
		components.Position,
		components.Energy,
		components.Material,
		components.Genome,
		components.State,
		components.Agent,
	]

	// Individual component mappers for point lookups
	posMap    *ecs.Map1[components.Position]
	energyMap *ecs.Map1[components.Energy]
	matMap    *ecs.Map1[components.Material]
	genomeMap *ecs.Map1[components.Genome]
	stateMap  *ecs.Map1[components.State]
	agentMap  *ecs.Map1[components.Agent]

	// byID maps entity ids to ECS handles. Lookup only, never iterated.
	byID        map[components.EntityID]ecs.Entity
	nextID      components.EntityID
	entityCount int

	events  []Event
	paused  bool
	stopped bool

	// Conservation ledger
	cumRegenerated   float64
	cumRadiated      float64
	cumReactionDelta float64
	initialEnergy    float64

	counts Counters
}

// New constructs a universe from the config, generating the world from the
// seed. A structurally malformed world (an edge referencing a missing node)
// fails construction.
func New(cfg *config.Config) (*Universe, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	world := ecs.NewWorld()
	u := &Universe{
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(int64(cfg.Seed))),
		world: world,
		mapper: ecs.NewMap6[
			components.Position,
			components.Energy,
			components.Material,
			components.Genome,
			components.State,
			components.Agent,
		](world),
		filter: ecs.NewFilter6[
			components.Position,
			components.Energy,
			components.Material,
			components.Genome,
			components.State,
			components.Agent,
		](world),
		posMap:    ecs.NewMap1[components.Position](world),
		energyMap: ecs.NewMap1[components.Energy](world),
		matMap:    ecs.NewMap1[components.Material](world),
		genomeMap: ecs.NewMap1[components.Genome](world),
		stateMap:  ecs.NewMap1[components.State](world),
		agentMap:  ecs.NewMap1[components.Agent](world),
		byID:      make(map[components.EntityID]ecs.Entity),
	}

	u.artifacts = systems.NewArtifactManager(cfg)

	if err := u.generateWorld(); err != nil {
		return nil, fmt.Errorf("universe: world generation: %w", err)
	}
	u.transit = space.NewTransitSystem(u.space)
	u.reactions = systems.NewReactionEngine(u.registry, cfg.Physics.ConversionConstant)

	u.spawnInitialPopulation()
	u.initialEnergy = u.TotalEnergy()
	return u, nil
}

// Step advances the simulation by one tick. The pipeline order is fixed:
// time, transit arrivals, regeneration, entropy and radiation, behavior,
// then batch removal of dead entities.
func (u *Universe) Step() {
	if u.stopped {
		return
	}
	u.tick++
	u.deliverArrivals()
	u.regenerate()
	u.applyEntropy()
	u.processBehavior()
	u.removeDead()
}

// Run advances up to n ticks, checking pause and stop flags only at tick
// boundaries. Cancellation is cooperative; it never interrupts a tick.
func (u *Universe) Run(n int) {
	for i := 0; i < n; i++ {
		if u.paused || u.stopped {
			return
		}
		u.Step()
	}
}

// Pause suspends stepping at the next tick boundary.
func (u *Universe) Pause() { u.paused = true }

// Resume clears the pause flag.
func (u *Universe) Resume() { u.paused = false }

// Stop permanently halts the universe.
func (u *Universe) Stop() { u.stopped = true }

// Tick returns the current tick.
func (u *Universe) Tick() int64 { return u.tick }

// Space returns the world graph.
func (u *Universe) Space() *space.Space { return u.space }

// Registry returns the material type registry.
func (u *Universe) Registry() *systems.TypeRegistry { return u.registry }

// Artifacts returns the live artifacts in insertion order.
func (u *Universe) Artifacts() []*components.Artifact { return u.artifacts.All() }

// EventLog returns the append-only event log.
func (u *Universe) EventLog() []Event { return u.events }

// ClearEventLog discards all buffered events.
func (u *Universe) ClearEventLog() { u.events = u.events[:0] }

// Counts returns the cumulative counters.
func (u *Universe) Counts() Counters { return u.counts }

func (u *Universe) emit(ev Event) {
	ev.Tick = u.tick
	u.events = append(u.events, ev)
}

// spawn creates a new entity and registers it at its node.
func (u *Universe) spawn(
	node components.NodeID,
	typ components.TypeID,
	energy float64,
	genome components.Genome,
	stateBuf []byte,
	composition []float64,
) components.EntityID {
	id := u.nextID
	u.nextID++

	if composition == nil {
		composition = make([]float64, u.registry.NumTypes())
		composition[typ] = 1
	}

	pos := components.Position{Node: node}
	en := components.Energy{Value: energy, Alive: true}
	mat := components.Material{
		Type:        typ,
		Mass:        u.registry.Props(typ).Mass,
		Composition: composition,
	}
	st := components.State{Buf: stateBuf}
	agent := components.Agent{ID: id}

	ent := u.mapper.NewEntity(&pos, &en, &mat, &genome, &st, &agent)
	u.byID[id] = ent
	u.space.Node(node).AddResident(id)
	u.entityCount++
	u.counts.Births++
	u.emit(Event{Type: EventEntityCreated, Entity: id})
	return id
}

// deliverArrivals finalizes every transit item whose arrival tick has come.
func (u *Universe) deliverArrivals() {
	for _, it := range u.transit.ProcessArrivals(u.tick) {
		switch it.Kind {
		case space.PayloadEntity:
			ent, ok := u.byID[it.Entity]
			if !ok {
				continue // rider died before arrival
			}
			pos := u.posMap.Get(ent)
			pos.Node = it.To
			pos.InTransit = false
			u.space.Node(it.To).AddResident(it.Entity)
			u.counts.Moves++
			u.emit(Event{Type: EventEntityMoved, Entity: it.Entity, From: it.From, To: it.To})

		case space.PayloadResource:
			node := u.space.Node(it.To)
			_, overflow := systems.Deposit(node, it.ResourceType, it.Amount)
			node.WasteHeat += overflow

		case space.PayloadInfo:
			node := u.space.Node(it.To)
			if len(node.Entities) == 0 {
				continue // nobody to receive it; information is lost
			}
			ent, ok := u.byID[node.Entities[0]]
			if !ok {
				continue
			}
			u.mergeState(u.stateMap.Get(ent), it.Info)
		}
	}
}

// mergeState appends bytes into a state buffer up to the configured bound.
func (u *Universe) mergeState(st *components.State, data []byte) int {
	room := u.cfg.Behavior.StateBytes - len(st.Buf)
	if room <= 0 || len(data) == 0 {
		return 0
	}
	n := len(data)
	if n > room {
		n = room
	}
	st.Buf = append(st.Buf, data[:n]...)
	return n
}

// regenerate injects external energy by moving every pool toward capacity.
func (u *Universe) regenerate() {
	rate := u.cfg.Physics.RegenRate
	for _, node := range u.space.Nodes() {
		u.cumRegenerated += systems.Regenerate(node, rate)
	}
}

// applyEntropy runs the decay pass: entity upkeep and disasters, artifact
// and edge decay, then waste-heat radiation. All deducted energy lands in
// node waste heat before radiation; radiation is the only true sink.
func (u *Universe) applyEntropy() {
	cfg := u.cfg
	fctx := &systems.FeatureContext{Space: u.space, Artifacts: u.artifacts, Tick: u.tick}

	query := u.filter.Query()
	for query.Next() {
		pos, energy, mat, _, _, _ := query.Get()
		if !energy.Alive || pos.InTransit {
			continue
		}
		energy.Age++

		node := u.space.Node(pos.Node)
		shelter := systems.Shelter(systems.NodeShelterSum(fctx, node), cfg.Artifacts.ShelterRate)
		stability := u.registry.Props(mat.Type).Stability
		upkeep := systems.EntityUpkeep(cfg.Physics.EntropyRate, mat.Mass, stability, shelter)
		node.WasteHeat += systems.Charge(energy, upkeep)

		if node.DisasterRate > 0 && u.rng.Float64() < node.DisasterRate {
			u.strikeDisaster(node, energy, mat)
		}
	}

	// Artifact decay; removals happen after the scan.
	type expiredArtifact struct {
		id   components.ArtifactID
		node components.NodeID
	}
	var expired []expiredArtifact
	for _, a := range u.artifacts.All() {
		if systems.DecayArtifact(a, cfg.Artifacts.DecayRate) {
			expired = append(expired, expiredArtifact{id: a.ID, node: a.Node})
		}
	}
	for _, ex := range expired {
		u.space.Node(ex.node).RemoveArtifact(ex.id)
		u.artifacts.Remove(ex.id)
		u.counts.ArtifactsDecayed++
		u.emit(Event{Type: EventArtifactDecayed, Artifact: ex.id})
	}

	if cfg.Decay.EdgeDecayEnabled {
		for _, e := range u.space.Edges() {
			systems.DecayEdge(e, cfg.Decay.EdgeDecayRate, cfg.Decay.EdgeFloor)
		}
	}

	for _, node := range u.space.Nodes() {
		u.cumRadiated += systems.Radiate(node, cfg.Physics.RadiationRate)
	}
}

// strikeDisaster kills an entity in place, returning its energy to the node
// pool, and scatters part of that pool to a random neighbor as an in-flight
// resource payload.
func (u *Universe) strikeDisaster(node *space.Node, energy *components.Energy, mat *components.Material) {
	_, overflow := systems.DeathReturn(node, mat.Type, energy.Value)
	node.WasteHeat += overflow
	energy.Value = 0
	energy.Alive = false
	energy.Cause = components.CauseDisaster

	scatter := u.cfg.Decay.DisasterScatter
	incident := u.space.Incident(node.ID)
	if scatter <= 0 || len(incident) == 0 {
		return
	}
	eid := incident[u.rng.Intn(len(incident))]
	edge := u.space.Edge(eid)
	amount := node.Resources[mat.Type] * scatter
	if amount <= 0 {
		return
	}
	ok := u.transit.Start(space.TransitItem{
		Kind:         space.PayloadResource,
		ResourceType: mat.Type,
		Amount:       amount,
		Edge:         eid,
		From:         node.ID,
		To:           edge.Other(node.ID),
		DepartedAt:   u.tick,
		ArrivesAt:    u.tick + edge.TravelTime,
	})
	if ok {
		node.Resources[mat.Type] -= amount
	}
}

// removeDead removes entities whose energy reached zero, in a single batch
// at the end of the tick. Depletion is the ordinary termination condition,
// not an error path.
func (u *Universe) removeDead() {
	type deadInfo struct {
		ent       ecs.Entity
		id        components.EntityID
		node      components.NodeID
		inTransit bool
		cause     components.DeathCause
	}
	var toRemove []deadInfo

	query := u.filter.Query()
	for query.Next() {
		pos, energy, _, _, _, agent := query.Get()
		if energy.Alive && energy.Value > 0 {
			continue
		}
		cause := energy.Cause
		if cause == components.CauseNone {
			cause = components.CauseStarvation
		}
		toRemove = append(toRemove, deadInfo{
			ent:       query.Entity(),
			id:        agent.ID,
			node:      pos.Node,
			inTransit: pos.InTransit,
			cause:     cause,
		})
	}

	for _, dead := range toRemove {
		if !dead.inTransit {
			u.space.Node(dead.node).RemoveResident(dead.id)
		}
		u.mapper.Remove(dead.ent)
		delete(u.byID, dead.id)
		u.entityCount--
		u.counts.Deaths++
		switch dead.cause {
		case components.CauseDisaster:
			u.counts.DeathsDisaster++
		case components.CauseReaction:
			u.counts.DeathsReaction++
		default:
			u.counts.DeathsStarved++
		}
		u.emit(Event{Type: EventEntityDied, Entity: dead.id, Cause: dead.cause})
	}
}
