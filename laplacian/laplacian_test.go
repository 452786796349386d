// laplacian/laplacian_test.go
package laplacian

import (
	"testing"

	"github.com/ratingkit/poprank/interaction"
	"github.com/ratingkit/poprank/rate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateRanksUndefeatedPlayerAboveCyclicTrio(t *testing.T) {
	// a beats everyone repeatedly; b, c, d form a symmetric 3-cycle among
	// themselves, so they should land near a tie below a.
	players := []string{"a", "b", "c", "d"}
	interactions := []interaction.Interaction{
		interaction.New([]string{"a", "b"}, []float64{1, 0}),
		interaction.New([]string{"a", "b"}, []float64{1, 0}),
		interaction.New([]string{"a", "c"}, []float64{1, 0}),
		interaction.New([]string{"a", "c"}, []float64{1, 0}),
		interaction.New([]string{"a", "d"}, []float64{1, 0}),
		interaction.New([]string{"a", "d"}, []float64{1, 0}),
		interaction.New([]string{"b", "c"}, []float64{1, 0}),
		interaction.New([]string{"c", "d"}, []float64{1, 0}),
		interaction.New([]string{"d", "b"}, []float64{1, 0}),
	}
	priors := []rate.Rate{{}, {}, {}, {}}

	out, err := Rate(players, interactions, priors, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, out, 4)

	for _, cyclic := range out[1:] {
		assert.Greater(t, out[0].Mu, cyclic.Mu)
	}
	assert.InDelta(t, out[1].Mu, out[2].Mu, 0.05)
	assert.InDelta(t, out[2].Mu, out[3].Mu, 0.05)
}

func TestRateEmptyInteractionsReturnsPriors(t *testing.T) {
	players := []string{"a", "b"}
	priors := []rate.Rate{{Mu: 10}, {Mu: 20}}
	out, err := Rate(players, nil, priors, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, priors, out)
}
