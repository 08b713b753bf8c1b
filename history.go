package greenspline

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// EigenRow describes the fit obtained with the first Index eigenvalues.
type EigenRow struct {
	Index      int
	Eigenvalue float64
	// Ratio is the eigenvalue relative to the largest one.
	Ratio float64
	// Variance is the cumulative percentage of Σ s² explained.
	Variance float64
	// Misfit is the RMS misfit to the value constraints in physical units.
	Misfit float64
}

func (ip *Interpolator) svd() (*SVDSolution, error) {
	if err := ip.fitted(); err != nil {
		return nil, err
	}
	if ip.solution.SVD == nil {
		return nil, fmt.Errorf("%w: eigenvalue reports need an SVD solve", ErrConfiguration)
	}
	return ip.solution.SVD, nil
}

// EigenReport lists every eigenvalue of the factored system together with
// the misfit of the truncated solution that ends with it.
func (ip *Interpolator) EigenReport() ([]EigenRow, error) {
	svd, err := ip.svd()
	if err != nil {
		return nil, err
	}
	s := svd.Values
	total := 0.0
	for _, v := range s {
		total += v * v
	}

	values := ip.set.Values()
	n := len(values)
	alpha := make([]float64, svd.N)
	rows := make([]EigenRow, len(s))
	cum := 0.0
	for k := range s {
		floats.Add(alpha, svd.Component(k))
		pred := matVec(ip.system.A, ip.system.Rows, ip.system.Cols, alpha)
		ss := 0.0
		for i := 0; i < n; i++ {
			d := ip.norm.Undo(values[i].Position, pred[i]) - values[i].Value
			ss += d * d
		}
		cum += s[k] * s[k]
		rows[k] = EigenRow{Index: k + 1, Eigenvalue: s[k], Misfit: math.Sqrt(ss / float64(n))}
		if s[0] > 0 {
			rows[k].Ratio = s[k] / s[0]
		}
		if total > 0 {
			rows[k].Variance = 100 * cum / total
		}
	}
	return rows, nil
}

// History evaluates one lattice per eigenvalue. Cumulative grids hold the
// full surface built from the first k eigenvalues; incremental grids hold only
// the contribution of eigenvalue k, without the restored mean and trend.
func (ip *Interpolator) History(ctx context.Context, lat *Lattice, mask []float64, incremental bool) ([][]float64, error) {
	svd, err := ip.svd()
	if err != nil {
		return nil, err
	}
	out := make([][]float64, 0, len(svd.Values))
	alpha := make([]float64, svd.N)
	for k := range svd.Values {
		c := svd.Component(k)
		qu := query{alpha: c}
		if !incremental {
			floats.Add(alpha, c)
			qu = query{alpha: append([]float64(nil), alpha...), restore: true}
		}
		grid, err := ip.eval.lattice(ctx, lat, mask, qu)
		if err != nil {
			return nil, err
		}
		out = append(out, grid)
		ip.log.Debug().Int("eigenvalue", k+1).Bool("incremental", incremental).Msg("history grid evaluated")
	}
	return out, nil
}
