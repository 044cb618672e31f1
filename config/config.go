// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation parameters. Each Universe instance carries its
// own Config so that batch runs across seeds stay fully isolated.
type Config struct {
	Seed        uint64            `yaml:"seed"`
	World       WorldConfig       `yaml:"world"`
	Physics     PhysicsConfig     `yaml:"physics"`
	Energy      EnergyConfig      `yaml:"energy"`
	Replication ReplicationConfig `yaml:"replication"`
	Reaction    ReactionConfig    `yaml:"reaction"`
	Artifacts   ArtifactConfig    `yaml:"artifacts"`
	Behavior    BehaviorConfig    `yaml:"behavior"`
	Bonuses     BonusConfig       `yaml:"bonuses"`
	Information InformationConfig `yaml:"information"`
	Decay       DecayConfig       `yaml:"decay"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
}

// WorldConfig holds world-generation parameters.
type WorldConfig struct {
	Nodes           int     `yaml:"nodes"`            // Node count
	EdgeDensity     float64 `yaml:"edge_density"`     // Probability of an extra edge per node pair
	InitialEntities int     `yaml:"initial_entities"` // Starting population
	MaxTypes        int     `yaml:"max_types"`        // Material type count (registry size)
	Extent          float64 `yaml:"extent"`           // Coordinate span for node placement and noise sampling
	MinCapacity     float64 `yaml:"min_capacity"`     // Per-type resource capacity floor
	MaxCapacity     float64 `yaml:"max_capacity"`     // Per-type resource capacity ceiling
	TransitCapacity int     `yaml:"transit_capacity"` // Max in-flight items per edge
	TravelSpeed     float64 `yaml:"travel_speed"`     // Distance units per tick (sets edge travel time)
	DisasterScale   float64 `yaml:"disaster_scale"`   // Scales noise-derived per-node disaster rates
}

// PhysicsConfig holds the conservation-relevant rates.
type PhysicsConfig struct {
	EntropyRate        float64 `yaml:"entropy_rate"`        // Base per-tick upkeep per unit mass
	NoiseRate          float64 `yaml:"noise_rate"`          // Perception noise amplitude
	RegenRate          float64 `yaml:"regen_rate"`          // Resource pool regeneration toward capacity
	RadiationRate      float64 `yaml:"radiation_rate"`      // Fraction of waste heat radiated per tick
	ConversionConstant float64 `yaml:"conversion_constant"` // Mass-energy conversion c (E = m*c)
}

// EnergyConfig holds the action cost model.
// All spent action energy dissipates into the acting entity's node as waste heat.
type EnergyConfig struct {
	Initial      float64 `yaml:"initial"`       // Starting energy for generated entities
	IdleCost     float64 `yaml:"idle_cost"`     // Cost of idling (also charged on failed actions)
	HarvestCost  float64 `yaml:"harvest_cost"`  // Flat cost of a harvest attempt
	HarvestRate  float64 `yaml:"harvest_rate"`  // Max resource extracted per harvest
	MoveCost     float64 `yaml:"move_cost"`     // Per unit mass per unit distance
	InteractCost float64 `yaml:"interact_cost"` // Cost of an interaction attempt
}

// ReplicationConfig holds reproduction parameters.
type ReplicationConfig struct {
	CreationCost         float64 `yaml:"creation_cost"`         // Flat energy dissipated per replication
	ChildFraction        float64 `yaml:"child_fraction"`        // Fraction of remaining parent energy given to child
	CooperationThreshold float64 `yaml:"cooperation_threshold"` // Min cooperation gene for partnered replication
	MutationRate         float64 `yaml:"mutation_rate"`         // Per-gene mutation probability
	MutationSigma        float64 `yaml:"mutation_sigma"`        // Mutation step scale
	TypeMutationRate     float64 `yaml:"type_mutation_rate"`    // Probability the child's material type rerolls
	GeneLimit            float64 `yaml:"gene_limit"`            // Per-gene weight bound (|w| <= limit)
}

// ReactionConfig holds type-transmutation parameters.
type ReactionConfig struct {
	BaseProbability float64 `yaml:"base_probability"` // Base fire probability before reactivity scaling
	MaxProducts     int     `yaml:"max_products"`     // Max product entities per reaction
}

// ArtifactConfig holds artifact lifecycle parameters.
type ArtifactConfig struct {
	PayloadCostRate    float64 `yaml:"payload_cost_rate"`    // Creation energy per payload byte
	DecayRate          float64 `yaml:"decay_rate"`           // Durability lost per tick
	RepairSpend        float64 `yaml:"repair_spend"`         // Energy budget per repair attempt
	RepairRate         float64 `yaml:"repair_rate"`          // Durability restored per unit energy
	PrestigeRate       float64 `yaml:"prestige_rate"`        // Prestige gained per unit repair energy
	MaintainerMinTicks int64   `yaml:"maintainer_min_ticks"` // Maintainer status duration lower bound
	MaintainerMaxTicks int64   `yaml:"maintainer_max_ticks"` // Maintainer status duration upper bound
	ShelterRate        float64 `yaml:"shelter_rate"`         // Upkeep reduction per unit artifact durability
	ToolRate           float64 `yaml:"tool_rate"`            // Harvest bonus per unit artifact durability
}

// BehaviorConfig holds decision parameters.
type BehaviorConfig struct {
	Temperature float64 `yaml:"temperature"` // Softmax temperature for action sampling
	StateBytes  int     `yaml:"state_bytes"` // Max transmissible state buffer size
}

// BonusConfig toggles the multiplicative efficiency bonuses.
type BonusConfig struct {
	ToolEffectEnabled     bool    `yaml:"tool_effect_enabled"`
	KnowledgeBonusEnabled bool    `yaml:"knowledge_bonus_enabled"`
	SkillBonusEnabled     bool    `yaml:"skill_bonus_enabled"`
	SkillBonusCoefficient float64 `yaml:"skill_bonus_coefficient"`
}

// InformationConfig holds state-buffer transfer parameters.
type InformationConfig struct {
	Enabled       bool `yaml:"enabled"`        // Forward exchanged bytes over edges
	MaxBytes      int  `yaml:"max_bytes"`      // Cap on inherited/forwarded byte blobs
	ExchangeBytes int  `yaml:"exchange_bytes"` // Bytes swapped per interaction
}

// DecayConfig holds the optional edge-decay and disaster-scatter behavior.
type DecayConfig struct {
	EdgeDecayEnabled bool    `yaml:"edge_decay_enabled"`
	EdgeDecayRate    float64 `yaml:"edge_decay_rate"`
	EdgeFloor        float64 `yaml:"edge_floor"`       // Durability never drops below this
	DisasterScatter  float64 `yaml:"disaster_scatter"` // Fraction of a pool scattered per disaster
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow int `yaml:"stats_window"` // Ticks per stats window
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the embedded default configuration.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: invalid embedded defaults: %v", err))
	}
	return cfg
}

// Validate checks structural constraints that would make a world malformed.
func (c *Config) Validate() error {
	if c.World.Nodes < 2 {
		return fmt.Errorf("config: world.nodes must be >= 2, got %d", c.World.Nodes)
	}
	if c.World.MaxTypes < 1 || c.World.MaxTypes > 255 {
		return fmt.Errorf("config: world.max_types must be in [1,255], got %d", c.World.MaxTypes)
	}
	if c.World.TransitCapacity < 1 {
		return fmt.Errorf("config: world.transit_capacity must be >= 1, got %d", c.World.TransitCapacity)
	}
	if c.Physics.ConversionConstant <= 0 {
		return fmt.Errorf("config: physics.conversion_constant must be > 0, got %f", c.Physics.ConversionConstant)
	}
	if c.Physics.RadiationRate < 0 || c.Physics.RadiationRate > 1 {
		return fmt.Errorf("config: physics.radiation_rate must be in [0,1], got %f", c.Physics.RadiationRate)
	}
	if c.Replication.ChildFraction <= 0 || c.Replication.ChildFraction >= 1 {
		return fmt.Errorf("config: replication.child_fraction must be in (0,1), got %f", c.Replication.ChildFraction)
	}
	if c.Artifacts.MaintainerMaxTicks < c.Artifacts.MaintainerMinTicks {
		return fmt.Errorf("config: artifacts.maintainer_max_ticks < maintainer_min_ticks")
	}
	if c.Behavior.Temperature <= 0 {
		return fmt.Errorf("config: behavior.temperature must be > 0, got %f", c.Behavior.Temperature)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
