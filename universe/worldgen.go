package universe

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/universe/components"
	"github.com/pthm-cable/universe/space"
	"github.com/pthm-cable/universe/systems"
)

// generateWorld builds the type registry, the node field, and the edge graph
// from the seeded RNG. Draw order is fixed and part of the reproducibility
// contract: registry first, then node placement, then the edge lottery.
// Terrain, temperature, disaster rates, and capacities come from noise fields
// sampled at node coordinates, so nearby nodes get correlated environments.
func (u *Universe) generateWorld() error {
	cfg := u.cfg
	seed := int64(cfg.Seed)

	u.registry = systems.NewTypeRegistry(
		seed, u.rng,
		cfg.World.MaxTypes,
		cfg.Reaction.BaseProbability,
		cfg.Reaction.MaxProducts,
	)

	tempNoise := opensimplex.NewNormalized(seed)
	disasterNoise := opensimplex.NewNormalized(seed + 1)
	capNoise := opensimplex.NewNormalized(seed + 2)

	u.space = space.New()
	numTypes := u.registry.NumTypes()
	span := cfg.World.MaxCapacity - cfg.World.MinCapacity
	for i := 0; i < cfg.World.Nodes; i++ {
		x := u.rng.Float64() * cfg.World.Extent
		y := u.rng.Float64() * cfg.World.Extent
		// Scale coordinates so the noise fields vary across the extent.
		nx := x / cfg.World.Extent * 4
		ny := y / cfg.World.Extent * 4

		temp := tempNoise.Eval2(nx, ny)
		disaster := disasterNoise.Eval2(nx, ny) * cfg.World.DisasterScale

		capacity := make([]float64, numTypes)
		for t := range capacity {
			// Offset per type so each resource gets its own spatial pattern.
			capacity[t] = cfg.World.MinCapacity + capNoise.Eval2(nx+float64(t)*7.13, ny)*span
		}

		node := u.space.AddNode(x, y, terrainFor(temp), temp, disaster, capacity)
		for t := range node.Resources {
			node.Resources[t] = node.Capacity[t] / 2
		}
	}

	// Spanning tree first so every node is reachable, then extra edges drawn
	// per pair at the configured density.
	for i := 1; i < cfg.World.Nodes; i++ {
		j := u.rng.Intn(i)
		if err := u.connect(components.NodeID(i), components.NodeID(j)); err != nil {
			return err
		}
	}
	for i := 0; i < cfg.World.Nodes; i++ {
		for j := i + 1; j < cfg.World.Nodes; j++ {
			if u.rng.Float64() >= cfg.World.EdgeDensity {
				continue
			}
			a, b := components.NodeID(i), components.NodeID(j)
			if u.space.HasEdge(a, b) {
				continue
			}
			if err := u.connect(a, b); err != nil {
				return err
			}
		}
	}
	return nil
}

// connect adds an edge with euclidean distance and a travel time derived
// from the configured travel speed, at least one tick.
func (u *Universe) connect(a, b components.NodeID) error {
	na, nb := u.space.Node(a), u.space.Node(b)
	dist := math.Hypot(na.X-nb.X, na.Y-nb.Y)
	travel := int64(math.Round(dist / u.cfg.World.TravelSpeed))
	if travel < 1 {
		travel = 1
	}
	_, err := u.space.AddEdge(a, b, dist, travel, u.cfg.World.TransitCapacity)
	return err
}

// terrainFor classifies a node by its normalized temperature.
func terrainFor(temperature float64) space.Terrain {
	switch {
	case temperature < 0.3:
		return space.TerrainMountain
	case temperature < 0.55:
		return space.TerrainForest
	case temperature < 0.8:
		return space.TerrainPlains
	default:
		return space.TerrainMarsh
	}
}

// spawnInitialPopulation seeds the starting entities: random node, random
// type, random genome, and a short random state buffer so skill and
// similarity effects have something to work with from tick zero.
func (u *Universe) spawnInitialPopulation() {
	cfg := u.cfg
	for i := 0; i < cfg.World.InitialEntities; i++ {
		node := components.NodeID(u.rng.Intn(u.space.NumNodes()))
		typ := components.TypeID(u.rng.Intn(u.registry.NumTypes()))
		genome := components.NewGenome(u.rng)

		buf := make([]byte, cfg.Behavior.StateBytes/4)
		for k := range buf {
			buf[k] = byte(u.rng.Intn(256))
		}
		u.spawn(node, typ, cfg.Energy.Initial, genome, buf, nil)
	}
}
