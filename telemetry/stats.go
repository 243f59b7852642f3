package telemetry

import (
	"log/slog"
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/flock/flock"
)

// FlockStats holds statistics of one ensemble at the end of a window.
type FlockStats struct {
	WindowStartStep int     `csv:"-"`
	WindowEndStep   int     `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`
	Flock           string  `csv:"flock"`
	Count           int     `csv:"count"`

	// Speed distribution
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Order: |mean heading| in [0,1] and its direction in radians
	Polarization float64 `csv:"polarization"`
	MeanHeading  float64 `csv:"mean_heading"`

	// Neighbor tiers
	NeighborsMean float64 `csv:"neighbors_mean"`
	ReducedMean   float64 `csv:"reduced_mean"`
	EnlargedMean  float64 `csv:"enlarged_mean"`
	CappedAgents  int     `csv:"capped_agents"` // enlarged list at capacity

	// Gaussian-kernel local density over the enlarged tier
	DensityMean float64 `csv:"density_mean"`
	DensityP90  float64 `csv:"density_p90"`

	// Group geometry
	CentroidX      float64 `csv:"centroid_x"`
	CentroidY      float64 `csv:"centroid_y"`
	TargetDistMean float64 `csv:"target_dist_mean"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
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

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistribution calculates mean, population std and percentiles.
func ComputeDistribution(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)
	std = math.Sqrt(stat.MomentAbout(2, values, mean, nil))

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// LocalDensity returns ρ_i = Σ exp(−|p_j − p_i|² / 2σ²) over the enlarged
// neighbors of agent i. A non-positive σ yields 0.
func LocalDensity(f *flock.Flock, sigma float64, i int) float64 {
	if sigma <= 0 {
		return 0
	}
	pos := f.Positions()
	en := f.EnlargedNeighbors(i)
	inv := 1 / (2 * sigma * sigma)

	var rho float64
	for k := 0; k < en.Len(); k++ {
		rho += math.Exp(-r2.Norm2(r2.Sub(pos[en.At(k)], pos[i])) * inv)
	}
	return rho
}

// ComputeFlockStats samples the current state of f. Neighbor statistics
// reflect the lists of the last completed step.
func ComputeFlockStats(f *flock.Flock, p flock.Params) FlockStats {
	n := f.Len()
	s := FlockStats{Flock: f.Name(), Count: n}
	if n == 0 {
		return s
	}

	pos := f.Positions()
	vel := f.Velocities()
	headings := f.Headings()

	speeds := make([]float64, n)
	angles := make([]float64, n)
	neighbors := make([]float64, n)
	reduced := make([]float64, n)
	enlarged := make([]float64, n)
	density := make([]float64, n)
	targetDist := make([]float64, n)

	var centroid r2.Vec
	var headingSum complex128
	for i := 0; i < n; i++ {
		speeds[i] = r2.Norm(vel[i])
		angles[i] = cmplx.Phase(headings[i])
		headingSum += headings[i]

		neighbors[i] = float64(f.Neighbors(i).Len())
		reduced[i] = float64(f.ReducedNeighbors(i).Len())
		en := f.EnlargedNeighbors(i)
		enlarged[i] = float64(en.Len())
		if en.Full() {
			s.CappedAgents++
		}
		density[i] = LocalDensity(f, p.Sigma, i)

		centroid = r2.Add(centroid, pos[i])
		targetDist[i] = r2.Norm(r2.Sub(pos[i], p.Target))
	}

	s.SpeedMean, s.SpeedStd, s.SpeedP10, s.SpeedP50, s.SpeedP90 = ComputeDistribution(speeds)

	s.Polarization = cmplx.Abs(headingSum) / float64(n)
	s.MeanHeading = stat.CircularMean(angles, nil)

	s.NeighborsMean = stat.Mean(neighbors, nil)
	s.ReducedMean = stat.Mean(reduced, nil)
	s.EnlargedMean = stat.Mean(enlarged, nil)

	s.DensityMean, _, _, _, s.DensityP90 = ComputeDistribution(density)

	centroid = r2.Scale(1/float64(n), centroid)
	s.CentroidX, s.CentroidY = centroid.X, centroid.Y
	s.TargetDistMean = stat.Mean(targetDist, nil)

	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s FlockStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("flock", s.Flock),
		slog.Int("window_start", s.WindowStartStep),
		slog.Int("window_end", s.WindowEndStep),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("count", s.Count),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p10", s.SpeedP10),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("polarization", s.Polarization),
		slog.Float64("mean_heading", s.MeanHeading),
		slog.Float64("neighbors_mean", s.NeighborsMean),
		slog.Float64("reduced_mean", s.ReducedMean),
		slog.Float64("enlarged_mean", s.EnlargedMean),
		slog.Int("capped_agents", s.CappedAgents),
		slog.Float64("density_mean", s.DensityMean),
		slog.Float64("density_p90", s.DensityP90),
		slog.Float64("centroid_x", s.CentroidX),
		slog.Float64("centroid_y", s.CentroidY),
		slog.Float64("target_dist_mean", s.TargetDistMean),
	)
}

// LogStats logs the window stats using slog.
func (s FlockStats) LogStats() {
	slog.Info("stats",
		"flock", s.Flock,
		"window_end", s.WindowEndStep,
		"sim_time", s.SimTimeSec,
		"speed_mean", s.SpeedMean,
		"speed_p90", s.SpeedP90,
		"polarization", s.Polarization,
		"neighbors_mean", s.NeighborsMean,
		"enlarged_mean", s.EnlargedMean,
		"capped_agents", s.CappedAgents,
		"density_mean", s.DensityMean,
		"target_dist_mean", s.TargetDistMean,
	)
}
