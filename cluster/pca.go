package cluster

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Project reduces the rows of x to two principal components. Each component
// is oriented so its largest loading is positive, which keeps the output
// stable across runs.
func Project(x *mat.Dense) (*mat.Dense, error) {
	n, d := x.Dims()
	if d < 2 {
		return nil, fmt.Errorf("need at least 2 embedding dimensions, got %d", d)
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return nil, errors.New("principal component analysis did not converge")
	}

	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	if _, c := vecs.Dims(); c < 2 {
		return nil, fmt.Errorf("expected at least 2 principal components, got %d", c)
	}
	components := mat.DenseCopyOf(vecs.Slice(0, d, 0, 2))

	for j := 0; j < 2; j++ {
		col := mat.Col(nil, j, components)
		maxIdx := 0
		for i, v := range col {
			if math.Abs(v) > math.Abs(col[maxIdx]) {
				maxIdx = i
			}
		}
		if col[maxIdx] < 0 {
			for i, v := range col {
				components.Set(i, j, -v)
			}
		}
	}

	means := make([]float64, d)
	for j := range means {
		means[j] = stat.Mean(mat.Col(nil, j, x), nil)
	}

	centered := mat.NewDense(n, d, nil)
	centered.Apply(func(_, j int, v float64) float64 {
		return v - means[j]
	}, x)

	projected := mat.NewDense(n, 2, nil)
	projected.Mul(centered, components)
	return projected, nil
}
