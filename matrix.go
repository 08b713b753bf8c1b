package greenspline

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// normalEquations returns N = AᵗSA and r = AᵗSb. S is diagonal: 1/σ² for
// WeightSigma rows, w for WeightDirect rows and 1 for unweighted rows.
func normalEquations(sys *System, weighted bool, kind WeightKind) ([]float64, []float64, error) {
	rows, cols := sys.Rows, sys.Cols
	scaled := make([]float64, len(sys.A))
	copy(scaled, sys.A)
	rhs := make([]float64, rows)
	copy(rhs, sys.B)

	if weighted {
		for i := 0; i < rows; i++ {
			w := sys.Weights[i]
			if w == 0 {
				continue
			}
			var s float64
			switch kind {
			case WeightSigma:
				if w < 0 {
					return nil, nil, fmt.Errorf("%w: negative sigma %g in row %d", ErrConfiguration, w, i)
				}
				s = 1 / w
			default:
				if w < 0 {
					return nil, nil, fmt.Errorf("%w: negative weight %g in row %d", ErrConfiguration, w, i)
				}
				s = math.Sqrt(w)
			}
			row := scaled[i*cols : (i+1)*cols]
			for j := range row {
				row[j] *= s
			}
			rhs[i] *= s
		}
	}

	a := mat.NewDense(rows, cols, scaled)
	var n mat.Dense
	n.Mul(a.T(), a)
	r := mat.NewVecDense(cols, nil)
	r.MulVec(a.T(), mat.NewVecDense(rows, rhs))

	out := make([]float64, cols*cols)
	for i := 0; i < cols; i++ {
		for j := 0; j < cols; j++ {
			out[i*cols+j] = n.At(i, j)
		}
	}
	return out, append([]float64(nil), r.RawVector().Data...), nil
}

// matVec returns A·x for a row-major rows×cols matrix.
func matVec(a []float64, rows, cols int, x []float64) []float64 {
	y := mat.NewVecDense(rows, nil)
	y.MulVec(mat.NewDense(rows, cols, a), mat.NewVecDense(cols, x))
	return append([]float64(nil), y.RawVector().Data...)
}
