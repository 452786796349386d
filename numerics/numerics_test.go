// numerics/numerics_test.go
package numerics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigmoidHalfAtZero(t *testing.T) {
	assert.InDelta(t, 0.5, Sigmoid(0, 10), 1e-9)
}

func TestNormalPDFPeakAtZero(t *testing.T) {
	assert.InDelta(t, 0.3989422804014327, NormalPDF(0), 1e-9)
}

func TestNormalCDFSymmetry(t *testing.T) {
	assert.InDelta(t, 0.5, NormalCDF(0), 1e-9)
	assert.InDelta(t, 1.0, NormalCDF(0)+NormalCDF(-0), 1e-9)
	assert.Greater(t, NormalCDF(1), NormalCDF(-1))
}

func TestDefaultNullSpaceSolverTwoCycle(t *testing.T) {
	// Laplacian of a symmetric 2-node graph with equal edge weight in both
	// directions has [1,1] in its null space (up to scale).
	m := [][]float64{
		{1, -1},
		{-1, 1},
	}
	v, err := DefaultNullSpaceSolver{}.NullVector(m)
	require.NoError(t, err)
	require.Len(t, v, 2)
	assert.InDelta(t, v[0]*v[0]+v[1]*v[1], 1.0, 1e-6)
	assert.InDelta(t, v[0], v[1], 1e-3)
}

func TestReplicatorDynamicsRockPaperScissors(t *testing.T) {
	payoff := [][]float64{
		{0, -1, 1},
		{1, 0, -1},
		{-1, 1, 0},
	}
	x, err := ReplicatorDynamicsSolver{}.Equilibrium(payoff)
	require.NoError(t, err)
	require.Len(t, x, 3)
	sum := x[0] + x[1] + x[2]
	assert.InDelta(t, 1.0, sum, 1e-6)
	for _, p := range x {
		assert.InDelta(t, 1.0/3.0, p, 0.05)
	}
}
