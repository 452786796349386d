// numerics/nullspace.go
package numerics

import (
	"fmt"
	"math"

	"github.com/katalvlaran/lvlath/matrix"
	"github.com/ratingkit/poprank/raterr"
)

// NullSpaceSolver is the external collaborator the laplacian package
// depends on: given a square matrix it returns a unit-norm vector
// spanning its (assumed one-dimensional) null space. Implementations may
// assume the caller has already verified the matrix is singular.
type NullSpaceSolver interface {
	NullVector(m [][]float64) ([]float64, error)
}

// DefaultNullSpaceSolver is the lvlath-backed adapter used by the
// laplacian package unless the caller supplies their own. lvlath does not
// expose a dedicated null-space routine, so the final reduction uses
// shifted inverse iteration on lvlath's Dense/MatVecMul primitives: it
// repeatedly solves (M + shift*I) and renormalizes, which converges to
// the eigenvector of the smallest-magnitude eigenvalue — the graph
// Laplacian's null vector when that eigenvalue is zero and simple, as for
// the directed Laplacians the laplacian package builds.
type DefaultNullSpaceSolver struct {
	// Shift nudges the matrix away from exact singularity before each
	// inverse solve. Defaults to 1e-8 when zero.
	Shift float64
	// Iterations bounds the inverse-iteration loop. Defaults to 100 when
	// zero.
	Iterations int
	// Tolerance is the convergence threshold on successive iterate
	// differences. Defaults to 1e-10 when zero.
	Tolerance float64
}

func (s DefaultNullSpaceSolver) NullVector(m [][]float64) ([]float64, error) {
	n := len(m)
	if n == 0 {
		return nil, fmt.Errorf("null vector of empty matrix: %w", raterr.ErrArityMismatch)
	}
	for _, row := range m {
		if len(row) != n {
			return nil, fmt.Errorf("matrix is not square: %w", raterr.ErrArityMismatch)
		}
	}

	shift := s.Shift
	if shift == 0 {
		shift = 1e-8
	}
	iterations := s.Iterations
	if iterations == 0 {
		iterations = 100
	}
	tolerance := s.Tolerance
	if tolerance == 0 {
		tolerance = 1e-10
	}

	shifted, err := matrix.NewZeros(n, n)
	if err != nil {
		return nil, fmt.Errorf("allocate shifted matrix: %w", raterr.ErrNumericFailure)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := m[i][j]
			if i == j {
				v += shift
			}
			if err := shifted.Set(i, j, v); err != nil {
				return nil, fmt.Errorf("set shifted matrix entry: %w", raterr.ErrNumericFailure)
			}
		}
	}

	inv, err := matrix.InverseOf(shifted)
	if err != nil {
		return nil, fmt.Errorf("invert shifted Laplacian: %w", raterr.ErrNonConvergent)
	}

	v := make([]float64, n)
	for i := range v {
		v[i] = 1.0 / math.Sqrt(float64(n))
	}

	for iter := 0; iter < iterations; iter++ {
		next, err := matrix.MatVecMul(inv, v)
		if err != nil {
			return nil, fmt.Errorf("inverse-iteration step: %w", raterr.ErrNumericFailure)
		}
		norm := l2Norm(next)
		if norm == 0 || math.IsNaN(norm) {
			return nil, fmt.Errorf("inverse-iteration degenerated to zero vector: %w", raterr.ErrNonConvergent)
		}
		for i := range next {
			next[i] /= norm
		}

		delta := 0.0
		for i := range v {
			d := next[i] - v[i]
			delta += d * d
		}
		v = next
		if math.Sqrt(delta) < tolerance {
			break
		}
	}

	return v, nil
}

func l2Norm(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
