// Package vectorindex holds similarity scoring shared by the local index
// providers. Remote providers score server-side.
package vectorindex

import (
	"math"

	"rag/internal/domain"
)

// Score rates how close candidate is to query under the given metric. Higher
// is always more similar: euclidean distance is negated so that descending
// score order means nearest-first for every metric.
func Score(metric domain.Metric, query, candidate []float32) float64 {
	switch metric {
	case domain.MetricDot:
		return dot(query, candidate)
	case domain.MetricEuclidean:
		var sum float64
		for i := range query {
			d := float64(query[i]) - float64(candidate[i])
			sum += d * d
		}
		return -math.Sqrt(sum)
	default: // cosine
		normQ := math.Sqrt(dot(query, query))
		normC := math.Sqrt(dot(candidate, candidate))
		if normQ == 0 || normC == 0 {
			return 0
		}
		return dot(query, candidate) / (normQ * normC)
	}
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
