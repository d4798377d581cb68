package cluster

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	maxIterations = 300
	tolerance     = 1e-4
)

// KMeans partitions the rows of x into k clusters using k-means++ seeding
// followed by Lloyd iterations. The same seed always yields the same labels.
// Labels are numbered in order of first appearance.
func KMeans(x *mat.Dense, k int, seed uint64) ([]int, error) {
	n, d := x.Dims()
	if k < 1 || k > n {
		return nil, fmt.Errorf("cannot split %d rows into %d clusters", n, k)
	}

	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = x.RawRowView(i)
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	centers := seedCenters(rows, k, rng)
	labels := make([]int, n)

	// convergence is measured against the data scale
	var variance float64
	for j := 0; j < d; j++ {
		variance += stat.Variance(mat.Col(nil, j, x), nil)
	}
	tol := tolerance * variance / float64(d)

	counts := make([]int, k)
	for iter := 0; iter < maxIterations; iter++ {
		assign(rows, centers, labels)

		next := make([][]float64, k)
		for c := range next {
			next[c] = make([]float64, d)
			counts[c] = 0
		}
		for i, row := range rows {
			floats.Add(next[labels[i]], row)
			counts[labels[i]]++
		}

		var shift float64
		for c := range next {
			if counts[c] == 0 {
				// empty cluster keeps its previous center
				copy(next[c], centers[c])
				continue
			}
			floats.Scale(1/float64(counts[c]), next[c])
			shift += sqDist(next[c], centers[c])
		}
		centers = next

		if shift <= tol {
			break
		}
	}
	assign(rows, centers, labels)

	return relabel(labels, k), nil
}

// seedCenters picks k initial centers with k-means++ weighting.
func seedCenters(rows [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(rows)
	centers := make([][]float64, 0, k)
	centers = append(centers, append([]float64(nil), rows[rng.IntN(n)]...))

	dist := make([]float64, n)
	for i, row := range rows {
		dist[i] = sqDist(row, centers[0])
	}

	for len(centers) < k {
		total := floats.Sum(dist)

		pick := rng.IntN(n)
		if total > 0 {
			target := rng.Float64() * total
			var acc float64
			for i, dv := range dist {
				acc += dv
				if acc >= target && dv > 0 {
					pick = i
					break
				}
			}
		}

		center := append([]float64(nil), rows[pick]...)
		centers = append(centers, center)
		for i, row := range rows {
			if dv := sqDist(row, center); dv < dist[i] {
				dist[i] = dv
			}
		}
	}

	return centers
}

func assign(rows, centers [][]float64, labels []int) {
	for i, row := range rows {
		best, bestDist := 0, sqDist(row, centers[0])
		for c := 1; c < len(centers); c++ {
			if dv := sqDist(row, centers[c]); dv < bestDist {
				best, bestDist = c, dv
			}
		}
		labels[i] = best
	}
}

func relabel(labels []int, k int) []int {
	mapping := make([]int, k)
	for i := range mapping {
		mapping[i] = -1
	}

	next := 0
	out := make([]int, len(labels))
	for i, l := range labels {
		if mapping[l] < 0 {
			mapping[l] = next
			next++
		}
		out[i] = mapping[l]
	}
	return out
}

func sqDist(a, b []float64) float64 {
	dv := floats.Distance(a, b, 2)
	return dv * dv
}
