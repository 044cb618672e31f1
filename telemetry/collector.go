// Package telemetry aggregates simulation events into windowed statistics
// and writes them to CSV. It observes the universe through its event log and
// stats snapshots; the simulation core never depends on this package.
package telemetry

import (
	"github.com/pthm-cable/universe/components"
	"github.com/pthm-cable/universe/universe"
)

// Collector accumulates events within tick windows and produces WindowStats.
type Collector struct {
	windowTicks     int64
	windowStartTick int64

	births           int
	deaths           int
	deathsStarved    int
	deathsDisaster   int
	deathsReaction   int
	harvests         int
	moves            int
	interactions     int
	reactions        int
	replications     int
	artifactsCreated int
	artifactsDecayed int
	repairs          int
}

// NewCollector creates a collector with the given window length in ticks.
func NewCollector(windowTicks int64) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: windowTicks}
}

// Record folds one event into the current window.
func (c *Collector) Record(ev universe.Event) {
	switch ev.Type {
	case universe.EventEntityCreated:
		c.births++
	case universe.EventEntityDied:
		c.deaths++
		switch ev.Cause {
		case components.CauseDisaster:
			c.deathsDisaster++
		case components.CauseReaction:
			c.deathsReaction++
		default:
			c.deathsStarved++
		}
	case universe.EventEntityMoved:
		c.moves++
	case universe.EventHarvest:
		c.harvests++
	case universe.EventInteraction:
		c.interactions++
	case universe.EventReaction:
		c.reactions++
	case universe.EventReplication:
		c.replications++
	case universe.EventArtifactCreated:
		c.artifactsCreated++
	case universe.EventArtifactDecayed:
		c.artifactsDecayed++
	case universe.EventArtifactRepaired:
		c.repairs++
	}
}

// RecordAll folds a batch of events into the current window.
func (c *Collector) RecordAll(events []universe.Event) {
	for _, ev := range events {
		c.Record(ev)
	}
}

// ShouldFlush returns true once the current window is full.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// WindowTicks returns the window length in ticks.
func (c *Collector) WindowTicks() int64 { return c.windowTicks }

// Flush produces a WindowStats from the buffered counters and the given
// snapshot, then resets for the next window. energies are the live entities'
// energy values at window end.
func (c *Collector) Flush(s universe.Stats, energies []float64, conservationError float64) WindowStats {
	mean, std, p10, p50, p90 := ComputeEnergyStats(energies)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   s.Tick,

		EntityCount:   s.EntityCount,
		ArtifactCount: s.ArtifactCount,
		InFlight:      s.InFlight,

		Births:           c.births,
		Deaths:           c.deaths,
		DeathsStarved:    c.deathsStarved,
		DeathsDisaster:   c.deathsDisaster,
		DeathsReaction:   c.deathsReaction,
		Harvests:         c.harvests,
		Moves:            c.moves,
		Interactions:     c.interactions,
		Reactions:        c.reactions,
		Replications:     c.replications,
		ArtifactsCreated: c.artifactsCreated,
		ArtifactsDecayed: c.artifactsDecayed,
		Repairs:          c.repairs,

		EnergyMean: mean,
		EnergyStd:  std,
		EnergyP10:  p10,
		EnergyP50:  p50,
		EnergyP90:  p90,

		AverageAge:         s.AverageAge,
		AverageSkill:       s.AverageSkill,
		AverageKnowledge:   s.AverageKnowledge,
		AverageCooperation: s.AverageCooperation,
		TypeEntropy:        TypeEntropy(s.TypeDistribution),
		SpatialGini:        s.SpatialGini,

		EntityEnergy:      s.Energy.EntityEnergy,
		FreeEnergy:        s.Energy.FreeEnergy,
		WasteHeat:         s.Energy.WasteHeat,
		TotalEnergy:       s.Energy.Total(),
		CumRegenerated:    s.CumulativeRegenerated,
		CumRadiated:       s.CumulativeRadiated,
		CumReactionDelta:  s.CumulativeReactionDelta,
		ConservationError: conservationError,
	}

	c.windowStartTick = s.Tick
	c.births = 0
	c.deaths = 0
	c.deathsStarved = 0
	c.deathsDisaster = 0
	c.deathsReaction = 0
	c.harvests = 0
	c.moves = 0
	c.interactions = 0
	c.reactions = 0
	c.replications = 0
	c.artifactsCreated = 0
	c.artifactsDecayed = 0
	c.repairs = 0

	return stats
}
