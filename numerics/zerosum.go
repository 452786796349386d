// numerics/zerosum.go
package numerics

import (
	"fmt"
	"math"

	"github.com/katalvlaran/lvlath/matrix"
	"github.com/ratingkit/poprank/raterr"
)

// ZeroSumSolver is the external collaborator the nash package depends on:
// given an antisymmetric payoff matrix A (A[i][j] = -A[j][i], row player's
// expected log-odds payoff against column player), it returns a mixed
// strategy over the rows that is a Nash equilibrium of the zero-sum game.
type ZeroSumSolver interface {
	Equilibrium(payoff [][]float64) ([]float64, error)
}

// ReplicatorDynamicsSolver is the default ZeroSumSolver. No example repo in
// the retrieval pack ships a bimatrix/LP/Lemke-Howson solver, so this
// approximates the equilibrium via replicator dynamics: a population
// mixed-strategy vector is repeatedly reweighted towards strategies that
// outperform the population average, which converges to a Nash
// equilibrium of the zero-sum game and, because it starts from the uniform
// mixture and reweights multiplicatively rather than enumerating vertices, lands
// on a high-entropy point among the equilibria that exist.
type ReplicatorDynamicsSolver struct {
	// Iterations bounds the replicator loop. Defaults to 10000 when zero.
	Iterations int
	// StepSize scales each update. Defaults to 0.01 when zero.
	StepSize float64
}

func (s ReplicatorDynamicsSolver) Equilibrium(payoff [][]float64) ([]float64, error) {
	n := len(payoff)
	if n == 0 {
		return nil, fmt.Errorf("equilibrium of empty payoff matrix: %w", raterr.ErrArityMismatch)
	}
	for _, row := range payoff {
		if len(row) != n {
			return nil, fmt.Errorf("payoff matrix is not square: %w", raterr.ErrArityMismatch)
		}
	}

	iterations := s.Iterations
	if iterations == 0 {
		iterations = 10000
	}
	step := s.StepSize
	if step == 0 {
		step = 0.01
	}

	dense, err := matrix.NewZeros(n, n)
	if err != nil {
		return nil, fmt.Errorf("allocate payoff matrix: %w", raterr.ErrNumericFailure)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if err := dense.Set(i, j, payoff[i][j]); err != nil {
				return nil, fmt.Errorf("set payoff entry: %w", raterr.ErrNumericFailure)
			}
		}
	}

	x := make([]float64, n)
	for i := range x {
		x[i] = 1.0 / float64(n)
	}

	for iter := 0; iter < iterations; iter++ {
		fitness, err := matrix.MatVecMul(dense, x)
		if err != nil {
			return nil, fmt.Errorf("replicator fitness step: %w", raterr.ErrNumericFailure)
		}
		avg := dot(fitness, x)

		next := make([]float64, n)
		sum := 0.0
		for i := range x {
			next[i] = x[i] * (1.0 + step*(fitness[i]-avg))
			if next[i] < 0 {
				next[i] = 0
			}
			sum += next[i]
		}
		if sum == 0 || math.IsNaN(sum) {
			return nil, fmt.Errorf("replicator dynamics collapsed to zero mass: %w", raterr.ErrNonConvergent)
		}
		for i := range next {
			next[i] /= sum
		}
		x = next
	}

	return x, nil
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
