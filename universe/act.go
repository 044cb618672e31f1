package universe

import (
	"github.com/pthm-cable/universe/components"
	"github.com/pthm-cable/universe/space"
	"github.com/pthm-cable/universe/systems"
)

// pendingBirth is a spawn queued during the behavior pass. The entity store
// is locked while a query is open, so births apply after the pass completes.
type pendingBirth struct {
	node        components.NodeID
	typ         components.TypeID
	energy      float64
	genome      components.Genome
	state       []byte
	composition []float64

	parent          components.EntityID
	mutatedGenes    int
	emitReplication bool
}

// processBehavior runs the decision and action pass over every live,
// non-transit entity in store order. Failed actions degrade to the idle
// cost silently; construction-time errors are the only fatal ones.
func (u *Universe) processBehavior() {
	fctx := &systems.FeatureContext{Space: u.space, Artifacts: u.artifacts, Tick: u.tick}
	var births []pendingBirth

	query := u.filter.Query()
	for query.Next() {
		pos, energy, mat, genome, state, agent := query.Get()
		if !energy.Alive || pos.InTransit {
			continue
		}
		node := u.space.Node(pos.Node)
		action := systems.Decide(
			u.rng, fctx, node, energy, mat, genome, agent,
			u.cfg.Physics.NoiseRate, u.cfg.Behavior.Temperature, u.cfg.Energy.Initial,
		)
		u.execute(&births, fctx, action, pos, energy, mat, genome, state, agent)
	}

	for i := range births {
		u.applyBirth(&births[i])
	}
}

func (u *Universe) execute(
	births *[]pendingBirth,
	fctx *systems.FeatureContext,
	action components.Action,
	pos *components.Position,
	energy *components.Energy,
	mat *components.Material,
	genome *components.Genome,
	state *components.State,
	agent *components.Agent,
) {
	node := u.space.Node(pos.Node)

	switch action {
	case components.ActHarvest:
		u.doHarvest(node, energy, mat, state, agent)
	case components.ActMoveResource:
		u.doMoveResource(node, action, pos, energy, mat, agent)
	case components.ActMoveBeacon:
		u.doMoveBeacon(node, action, pos, energy, mat, agent, fctx)
	case components.ActExplore:
		u.doExplore(node, action, pos, energy, mat, agent)
	case components.ActInteract:
		u.doInteract(births, node, energy, mat, genome, state, agent)
	case components.ActReplicateSolo:
		u.doReplicateSolo(births, node, energy, mat, genome, state, agent)
	case components.ActReplicatePartner:
		u.doReplicatePartner(births, node, energy, mat, genome, state, agent)
	case components.ActCreateArtifact:
		u.doCreateArtifact(node, energy, state, agent)
	case components.ActRepairArtifact:
		u.doRepairArtifact(node, energy, state, agent)
	default:
		u.chargeIdle(node, energy)
	}
}

// chargeIdle applies the idle cost; it is also the fallback for every action
// whose preconditions fail at runtime.
func (u *Universe) chargeIdle(node *space.Node, energy *components.Energy) {
	node.WasteHeat += systems.Charge(energy, u.cfg.Energy.IdleCost)
}

func (u *Universe) doHarvest(
	node *space.Node,
	energy *components.Energy,
	mat *components.Material,
	state *components.State,
	agent *components.Agent,
) {
	node.WasteHeat += systems.Charge(energy, u.cfg.Energy.HarvestCost)

	skillBonus := systems.SkillBonus(&u.cfg.Bonuses, state.Buf)
	bonus := skillBonus
	if u.cfg.Bonuses.ToolEffectEnabled {
		bonus += u.cfg.Artifacts.ToolRate * u.bestArtifactDurability(node)
	}

	props := u.registry.Props(mat.Type)
	gain, waste := systems.Harvest(node, mat.Type, u.cfg.Energy.HarvestRate, props.HarvestEfficiency, bonus)
	if gain <= 0 {
		return // pool empty; the attempt cost is already paid
	}
	energy.Value += gain
	node.WasteHeat += waste
	u.counts.Harvests++
	u.emit(Event{Type: EventHarvest, Entity: agent.ID, Amount: gain, SkillBonus: skillBonus})
}

// bestArtifactDurability returns the highest artifact durability at the node,
// the basis of the tool effect.
func (u *Universe) bestArtifactDurability(node *space.Node) float64 {
	var best float64
	for _, id := range node.Artifacts {
		if a := u.artifacts.Get(id); a != nil && a.Durability > best {
			best = a.Durability
		}
	}
	return best
}

// startMove charges the movement cost at the origin and puts the entity on
// the edge. Falls back to idle when the entity cannot pay or the edge queue
// is full.
func (u *Universe) startMove(
	node *space.Node,
	action components.Action,
	eid components.EdgeID,
	pos *components.Position,
	energy *components.Energy,
	mat *components.Material,
	agent *components.Agent,
) {
	edge := u.space.Edge(eid)
	cost := systems.ActionCost(&u.cfg.Energy, action, mat.Mass, edge)
	if energy.Value < cost {
		u.chargeIdle(node, energy)
		return
	}
	started := u.transit.Start(space.TransitItem{
		Kind:       space.PayloadEntity,
		Entity:     agent.ID,
		Edge:       eid,
		From:       node.ID,
		To:         edge.Other(node.ID),
		DepartedAt: u.tick,
		ArrivesAt:  u.tick + edge.TravelTime,
	})
	if !started {
		u.chargeIdle(node, energy)
		return
	}
	node.WasteHeat += systems.Charge(energy, cost)
	node.RemoveResident(agent.ID)
	pos.InTransit = true
}

func (u *Universe) doMoveResource(
	node *space.Node,
	action components.Action,
	pos *components.Position,
	energy *components.Energy,
	mat *components.Material,
	agent *components.Agent,
) {
	t := mat.Type
	bestEdge := components.EdgeID(-1)
	var bestRatio float64
	for _, eid := range u.space.Incident(node.ID) {
		other := u.space.Node(u.space.Edge(eid).Other(node.ID))
		if other.Capacity[t] <= 0 {
			continue
		}
		if r := other.Resources[t] / other.Capacity[t]; r > bestRatio {
			bestRatio = r
			bestEdge = eid
		}
	}
	if bestEdge < 0 {
		u.chargeIdle(node, energy)
		return
	}
	u.startMove(node, action, bestEdge, pos, energy, mat, agent)
}

func (u *Universe) doMoveBeacon(
	node *space.Node,
	action components.Action,
	pos *components.Position,
	energy *components.Energy,
	mat *components.Material,
	agent *components.Agent,
	fctx *systems.FeatureContext,
) {
	target := components.NoNode
	var bestBeacon float64
	for _, n := range u.space.Nodes() {
		if n.ID == node.ID {
			continue
		}
		if b := systems.NodeBeacon(fctx, n); b > bestBeacon {
			bestBeacon = b
			target = n.ID
		}
	}
	if target == components.NoNode {
		u.chargeIdle(node, energy)
		return
	}
	path := u.space.ShortestPath(node.ID, target)
	if path == nil || len(path.Edges) == 0 {
		u.chargeIdle(node, energy)
		return
	}
	u.startMove(node, action, path.Edges[0], pos, energy, mat, agent)
}

func (u *Universe) doExplore(
	node *space.Node,
	action components.Action,
	pos *components.Position,
	energy *components.Energy,
	mat *components.Material,
	agent *components.Agent,
) {
	incident := u.space.Incident(node.ID)
	if len(incident) == 0 {
		u.chargeIdle(node, energy)
		return
	}
	u.startMove(node, action, incident[u.rng.Intn(len(incident))], pos, energy, mat, agent)
}

// coResidents returns the live co-residents of a node excluding self, in the
// node's resident order.
func (u *Universe) coResidents(node *space.Node, self components.EntityID) []components.EntityID {
	var out []components.EntityID
	for _, id := range node.Entities {
		if id == self {
			continue
		}
		ent, ok := u.byID[id]
		if !ok {
			continue
		}
		if u.energyMap.Get(ent).Alive {
			out = append(out, id)
		}
	}
	return out
}

func (u *Universe) doInteract(
	births *[]pendingBirth,
	node *space.Node,
	energy *components.Energy,
	mat *components.Material,
	genome *components.Genome,
	state *components.State,
	agent *components.Agent,
) {
	candidates := u.coResidents(node, agent.ID)
	if len(candidates) == 0 {
		u.chargeIdle(node, energy)
		return
	}
	node.WasteHeat += systems.Charge(energy, u.cfg.Energy.InteractCost)

	targetID := candidates[u.rng.Intn(len(candidates))]
	tEnt := u.byID[targetID]
	tEnergy := u.energyMap.Get(tEnt)
	tMat := u.matMap.Get(tEnt)
	tGenome := u.genomeMap.Get(tEnt)
	tState := u.stateMap.Get(tEnt)

	// Symmetric state exchange: each side offers a prefix of its buffer.
	offerSelf := prefixBytes(state.Buf, u.cfg.Information.ExchangeBytes)
	offerTarget := prefixBytes(tState.Buf, u.cfg.Information.ExchangeBytes)
	gotSelf := u.mergeState(state, offerTarget)
	gotTarget := u.mergeState(tState, offerSelf)

	u.counts.Interactions++
	u.emit(Event{Type: EventInteraction, Entity: agent.ID, Target: targetID, Bytes: gotSelf + gotTarget})

	// Received information may ripple outward along a random edge.
	if u.cfg.Information.Enabled && gotSelf > 0 {
		u.forwardInfo(node, offerTarget)
	}

	// Contact exposes both parties to a reaction roll.
	a := systems.Reactant{Type: mat.Type, Mass: mat.Mass, Energy: energy.Value}
	b := systems.Reactant{Type: tMat.Type, Mass: tMat.Mass, Energy: tEnergy.Value}
	outcome, fired := u.reactions.Check(u.rng, a, b)
	if !fired {
		return
	}

	energy.Value = 0
	energy.Alive = false
	energy.Cause = components.CauseReaction
	tEnergy.Value = 0
	tEnergy.Alive = false
	tEnergy.Cause = components.CauseReaction
	u.cumReactionDelta += outcome.EnergyDelta
	u.counts.Reactions++

	productTypes := make([]components.TypeID, len(outcome.Products))
	composition := blendComposition(mat.Composition, tMat.Composition)
	merged := mergedBytes(state.Buf, tState.Buf, u.cfg.Information.MaxBytes)
	for i, p := range outcome.Products {
		productTypes[i] = p.Type
		child := components.Crossover(u.rng, genome, tGenome)
		*births = append(*births, pendingBirth{
			node:        node.ID,
			typ:         p.Type,
			energy:      p.Energy,
			genome:      child,
			state:       append([]byte(nil), merged...),
			composition: append([]float64(nil), composition...),
			parent:      agent.ID,
		})
	}
	u.emit(Event{
		Type:          EventReaction,
		Entity:        agent.ID,
		Target:        targetID,
		ReactantTypes: []components.TypeID{mat.Type, tMat.Type},
		ProductTypes:  productTypes,
		EnergyDelta:   outcome.EnergyDelta,
	})
}

// forwardInfo launches an information payload along a random incident edge.
// A full queue drops it silently; information carries no energy.
func (u *Universe) forwardInfo(node *space.Node, data []byte) {
	incident := u.space.Incident(node.ID)
	if len(incident) == 0 || len(data) == 0 {
		return
	}
	blob := prefixBytes(data, u.cfg.Information.MaxBytes)
	eid := incident[u.rng.Intn(len(incident))]
	edge := u.space.Edge(eid)
	u.transit.Start(space.TransitItem{
		Kind:       space.PayloadInfo,
		Info:       blob,
		Edge:       eid,
		From:       node.ID,
		To:         edge.Other(node.ID),
		DepartedAt: u.tick,
		ArrivesAt:  u.tick + edge.TravelTime,
	})
}

func (u *Universe) doReplicateSolo(
	births *[]pendingBirth,
	node *space.Node,
	energy *components.Energy,
	mat *components.Material,
	genome *components.Genome,
	state *components.State,
	agent *components.Agent,
) {
	res, ok := systems.ReplicateAlone(u.rng, energy, genome, mat, state, u.cfg)
	if !ok {
		u.chargeIdle(node, energy)
		return
	}
	node.WasteHeat += res.EnergyConsumed - res.ChildEnergy
	*births = append(*births, pendingBirth{
		node:            node.ID,
		typ:             res.Type,
		energy:          res.ChildEnergy,
		genome:          res.Genome,
		state:           res.Inherited,
		parent:          agent.ID,
		mutatedGenes:    res.MutatedGenes,
		emitReplication: true,
	})
}

func (u *Universe) doReplicatePartner(
	births *[]pendingBirth,
	node *space.Node,
	energy *components.Energy,
	mat *components.Material,
	genome *components.Genome,
	state *components.State,
	agent *components.Agent,
) {
	if genome.Cooperation < u.cfg.Replication.CooperationThreshold {
		u.chargeIdle(node, energy)
		return
	}
	candidates := u.coResidents(node, agent.ID)
	if len(candidates) == 0 {
		u.chargeIdle(node, energy)
		return
	}

	partnerID := u.selectPartner(candidates)
	pEnt := u.byID[partnerID]
	pAgent := u.agentMap.Get(pEnt)
	u.emit(Event{
		Type:         EventPartnerSelected,
		Entity:       agent.ID,
		Target:       partnerID,
		IsMaintainer: pAgent.Maintainer(u.tick),
		NodePrestige: u.nodePrestige(node),
	})

	res, ok := systems.ReplicateWithPartner(
		u.rng, energy, genome, mat, state, u.genomeMap.Get(pEnt), u.cfg,
	)
	if !ok {
		u.chargeIdle(node, energy)
		return
	}
	node.WasteHeat += res.EnergyConsumed - res.ChildEnergy
	*births = append(*births, pendingBirth{
		node:            node.ID,
		typ:             res.Type,
		energy:          res.ChildEnergy,
		genome:          res.Genome,
		state:           res.Inherited,
		parent:          agent.ID,
		mutatedGenes:    res.MutatedGenes,
		emitReplication: true,
	})
}

// selectPartner runs a weighted lottery over the candidates. Maintainer
// status triples a candidate's weight, so tending artifacts pays off in
// reproductive access.
func (u *Universe) selectPartner(candidates []components.EntityID) components.EntityID {
	weights := make([]float64, len(candidates))
	var total float64
	for i, id := range candidates {
		w := 1.0
		if u.agentMap.Get(u.byID[id]).Maintainer(u.tick) {
			w = 3.0
		}
		weights[i] = w
		total += w
	}
	r := u.rng.Float64() * total
	var cum float64
	for i, w := range weights {
		cum += w
		if r < cum {
			return candidates[i]
		}
	}
	return candidates[len(candidates)-1]
}

func (u *Universe) nodePrestige(node *space.Node) float64 {
	var sum float64
	for _, id := range node.Artifacts {
		if a := u.artifacts.Get(id); a != nil {
			sum += a.Prestige
		}
	}
	return sum
}

// artifactPayloadCap bounds the payload written at creation time.
const artifactPayloadCap = 32

func (u *Universe) doCreateArtifact(
	node *space.Node,
	energy *components.Energy,
	state *components.State,
	agent *components.Agent,
) {
	payload := prefixBytes(state.Buf, artifactPayloadCap)
	if len(payload) == 0 {
		// A blank-state creator still leaves a mark, just not a learned one.
		payload = make([]byte, 8)
		for i := range payload {
			payload[i] = byte(u.rng.Intn(256))
		}
	}
	skillBonus := systems.SkillBonus(&u.cfg.Bonuses, state.Buf)
	a, cost, ok := u.artifacts.Create(u.tick, agent.ID, node.ID, payload, energy, 1/(1+skillBonus))
	if !ok {
		u.chargeIdle(node, energy)
		return
	}
	node.AddArtifact(a.ID)
	node.WasteHeat += cost
	u.counts.ArtifactsCreated++
	u.emit(Event{Type: EventArtifactCreated, Entity: agent.ID, Artifact: a.ID, SkillBonus: skillBonus})
}

func (u *Universe) doRepairArtifact(
	node *space.Node,
	energy *components.Energy,
	state *components.State,
	agent *components.Agent,
) {
	var target *components.Artifact
	for _, id := range node.Artifacts {
		a := u.artifacts.Get(id)
		if a == nil || a.Durability >= 1 {
			continue
		}
		if target == nil || a.Durability < target.Durability {
			target = a
		}
	}
	if target == nil {
		u.chargeIdle(node, energy)
		return
	}

	res, ok := u.artifacts.Repair(u.tick, u.rng, target, energy, state)
	if !ok {
		u.chargeIdle(node, energy)
		return
	}
	node.WasteHeat += res.Spent
	agent.MaintainerUntil = res.MaintainerUntil
	u.counts.Repairs++
	u.emit(Event{
		Type:           EventArtifactRepaired,
		Entity:         agent.ID,
		Artifact:       target.ID,
		Amount:         res.Restored,
		Similarity:     res.Similarity,
		KnowledgeBonus: res.KnowledgeBonus,
		SkillBonus:     res.SkillBonus,
		Bytes:          res.AcquiredBytes,
	})
	u.emit(Event{Type: EventMaintainerGranted, Entity: agent.ID, UntilTick: res.MaintainerUntil})
}

// applyBirth spawns a queued child and logs the replication lineage.
func (u *Universe) applyBirth(b *pendingBirth) {
	child := u.spawn(b.node, b.typ, b.energy, b.genome, b.state, b.composition)
	if b.emitReplication {
		u.emit(Event{
			Type:         EventReplication,
			Entity:       b.parent,
			Target:       child,
			Bytes:        len(b.state),
			MutatedGenes: b.mutatedGenes,
		})
	}
}

// prefixBytes copies up to limit leading bytes.
func prefixBytes(buf []byte, limit int) []byte {
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

// mergedBytes concatenates two buffers and truncates to limit.
func mergedBytes(a, b []byte, limit int) []byte {
	merged := make([]byte, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// blendComposition averages two composition vectors elementwise.
func blendComposition(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range out {
		out[i] = (a[i] + b[i]) / 2
	}
	return out
}
