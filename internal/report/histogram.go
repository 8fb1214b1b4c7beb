package report

import (
	"fmt"
	"math"
	"sort"

	"benchviz/internal/model"
)

// NewHistogram splits values into bins equal-width bins spanning [min, max].
// A constant series spans [v-0.5, v+0.5]; an empty one spans [0, 1].
func NewHistogram(values []float64, bins int) ([]model.HistogramBin, error) {
	if bins <= 0 {
		return nil, fmt.Errorf("bins must be > 0")
	}

	lo, hi := histogramRange(values)
	width := (hi - lo) / float64(bins)

	out := make([]model.HistogramBin, bins)
	for i := range out {
		out[i].Min = lo + float64(i)*width
		out[i].Max = lo + float64(i+1)*width
	}
	out[bins-1].Max = hi

	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		out[idx].Count++
	}
	return out, nil
}

func histogramRange(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 1
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return lo - 0.5, hi + 0.5
	}
	return lo, hi
}

// Summarize computes count, mean, extrema and linearly interpolated
// percentiles of values.
func Summarize(values []float64) model.LatencyStats {
	if len(values) == 0 {
		return model.LatencyStats{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	return model.LatencyStats{
		Count: len(sorted),
		Min:   sorted[0],
		Mean:  sum / float64(len(sorted)),
		P50:   percentile(sorted, 50),
		P90:   percentile(sorted, 90),
		P95:   percentile(sorted, 95),
		Max:   sorted[len(sorted)-1],
	}
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
