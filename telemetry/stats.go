package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int64 `csv:"-"`
	WindowEndTick   int64 `csv:"window_end"`

	// Population at window end
	EntityCount   int `csv:"entities"`
	ArtifactCount int `csv:"artifacts"`
	InFlight      int `csv:"in_flight"`

	// Events during window
	Births           int `csv:"births"`
	Deaths           int `csv:"deaths"`
	DeathsStarved    int `csv:"deaths_starved"`
	DeathsDisaster   int `csv:"deaths_disaster"`
	DeathsReaction   int `csv:"deaths_reaction"`
	Harvests         int `csv:"harvests"`
	Moves            int `csv:"moves"`
	Interactions     int `csv:"interactions"`
	Reactions        int `csv:"reactions"`
	Replications     int `csv:"replications"`
	ArtifactsCreated int `csv:"artifacts_created"`
	ArtifactsDecayed int `csv:"artifacts_decayed"`
	Repairs          int `csv:"repairs"`

	// Entity energy distribution (sampled at window end)
	EnergyMean float64 `csv:"energy_mean"`
	EnergyStd  float64 `csv:"energy_std"`
	EnergyP10  float64 `csv:"energy_p10"`
	EnergyP50  float64 `csv:"energy_p50"`
	EnergyP90  float64 `csv:"energy_p90"`

	// Population character
	AverageAge         float64 `csv:"age_mean"`
	AverageSkill       float64 `csv:"skill_mean"`
	AverageKnowledge   float64 `csv:"knowledge_mean"`
	AverageCooperation float64 `csv:"cooperation_mean"`
	TypeEntropy        float64 `csv:"type_entropy"`
	SpatialGini        float64 `csv:"spatial_gini"`

	// Energy pools (for conservation validation)
	EntityEnergy      float64 `csv:"entity_energy"`
	FreeEnergy        float64 `csv:"free_energy"`
	WasteHeat         float64 `csv:"waste_heat"`
	TotalEnergy       float64 `csv:"total_energy"`
	CumRegenerated    float64 `csv:"cum_regenerated"`
	CumRadiated       float64 `csv:"cum_radiated"`
	CumReactionDelta  float64 `csv:"cum_reaction_delta"`
	ConservationError float64 `csv:"conservation_error"`
}

// Percentile calculates the p-th percentile of a sorted slice by linear
// interpolation. p should be in [0, 1]. Returns 0 if the slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeEnergyStats calculates mean, standard deviation, and percentiles
// from energy values.
func ComputeEnergyStats(values []float64) (mean, std, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)
	if len(values) > 1 {
		std = stat.StdDev(values, nil)
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)
	return mean, std, p10, p50, p90
}

// TypeEntropy computes the Shannon entropy of a material type distribution.
// Higher entropy means a more even spread of types in the population.
func TypeEntropy(counts []int) float64 {
	var total float64
	for _, c := range counts {
		total += float64(c)
	}
	if total == 0 {
		return 0
	}
	p := make([]float64, len(counts))
	for i, c := range counts {
		p[i] = float64(c) / total
	}
	return stat.Entropy(p)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"entities", s.EntityCount,
		"artifacts", s.ArtifactCount,
		"in_flight", s.InFlight,
		"births", s.Births,
		"deaths", s.Deaths,
		"deaths_starved", s.DeathsStarved,
		"deaths_disaster", s.DeathsDisaster,
		"deaths_reaction", s.DeathsReaction,
		"harvests", s.Harvests,
		"moves", s.Moves,
		"interactions", s.Interactions,
		"reactions", s.Reactions,
		"replications", s.Replications,
		"artifacts_created", s.ArtifactsCreated,
		"artifacts_decayed", s.ArtifactsDecayed,
		"repairs", s.Repairs,
		"energy_mean", s.EnergyMean,
		"energy_p50", s.EnergyP50,
		"age_mean", s.AverageAge,
		"skill_mean", s.AverageSkill,
		"knowledge_mean", s.AverageKnowledge,
		"cooperation_mean", s.AverageCooperation,
		"type_entropy", s.TypeEntropy,
		"spatial_gini", s.SpatialGini,
		"total_energy", s.TotalEnergy,
		"conservation_error", s.ConservationError,
	)
}
