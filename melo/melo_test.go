// melo/melo_test.go
package melo

import (
	"context"
	"errors"
	"testing"

	"github.com/ratingkit/poprank/interaction"
	"github.com/ratingkit/poprank/rate"
	"github.com/ratingkit/poprank/raterr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rpsFixture(rounds int) ([]string, []interaction.Interaction, []rate.MultidimEloRate) {
	players := []string{"a", "b", "c"}
	var interactions []interaction.Interaction
	for i := 0; i < rounds; i++ {
		interactions = append(interactions,
			interaction.New([]string{"a", "b"}, []float64{1, 0}),
			interaction.New([]string{"b", "c"}, []float64{1, 0}),
			interaction.New([]string{"c", "a"}, []float64{1, 0}),
		)
	}
	elos := []rate.MultidimEloRate{
		rate.NewMultidimElo(0, 1),
		rate.NewMultidimElo(0, 1),
		rate.NewMultidimElo(0, 1),
	}
	return players, interactions, elos
}

func TestRateCapturesNonTransitiveCycle(t *testing.T) {
	players, interactions, elos := rpsFixture(200)
	out, err := Rate(context.Background(), players, interactions, elos, Options{K: 1, LR1: 1, LR2: 0.1, Iterations: 1})
	require.NoError(t, err)
	require.Len(t, out, 3)

	a, b, c := out[0], out[1], out[2]
	assert.Greater(t, a.ExpectedOutcome(b), 0.5)
	assert.Greater(t, b.ExpectedOutcome(c), 0.5)
	assert.Greater(t, c.ExpectedOutcome(a), 0.5)
}

func TestRateAntisymmetricPrediction(t *testing.T) {
	players, interactions, elos := rpsFixture(50)
	out, err := Rate(context.Background(), players, interactions, elos, Options{K: 1, LR1: 1, LR2: 0.1, Iterations: 1})
	require.NoError(t, err)

	for i := range out {
		for j := range out {
			if i == j {
				continue
			}
			sum := out[i].ExpectedOutcome(out[j]) + out[j].ExpectedOutcome(out[i])
			assert.InDelta(t, 1.0, sum, 1e-9)
		}
	}
}

func TestRateArityMismatch(t *testing.T) {
	players := []string{"a", "b"}
	elos := []rate.MultidimEloRate{rate.NewMultidimElo(0, 1)}
	_, err := Rate(context.Background(), players, nil, elos, DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, raterr.ErrArityMismatch))
}

func TestRateKMismatch(t *testing.T) {
	players := []string{"a", "b"}
	elos := []rate.MultidimEloRate{rate.NewMultidimElo(0, 2), rate.NewMultidimElo(0, 1)}
	_, err := Rate(context.Background(), players, nil, elos, Options{K: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, raterr.ErrIncompatibleRate))
}

func TestRateBipartite(t *testing.T) {
	players := []string{"a", "b", "c"}
	tasks := []string{"d", "e"}
	var interactions []interaction.Interaction
	for i := 0; i < 100; i++ {
		interactions = append(interactions,
			interaction.New([]string{"a", "d"}, []float64{1, 0}),
			interaction.New([]string{"b", "d"}, []float64{0, 1}),
			interaction.New([]string{"c", "d"}, []float64{1, 0}),
			interaction.New([]string{"a", "e"}, []float64{1, 0}),
			interaction.New([]string{"b", "e"}, []float64{0, 1}),
			interaction.New([]string{"c", "e"}, []float64{1, 0}),
		)
	}
	playerElos := []rate.MultidimEloRate{
		rate.NewMultidimElo(0, 1), rate.NewMultidimElo(0, 1), rate.NewMultidimElo(0, 1),
	}
	taskElos := []rate.MultidimEloRate{rate.NewMultidimElo(0, 1), rate.NewMultidimElo(0, 1)}

	outPlayers, outTasks, err := RateBipartite(context.Background(), players, tasks, interactions, playerElos, taskElos,
		Options{K: 1, LR1: 1, LR2: 0.1, Iterations: 1})
	require.NoError(t, err)
	require.Len(t, outPlayers, 3)
	require.Len(t, outTasks, 2)

	assert.Greater(t, outPlayers[0].ExpectedOutcome(outTasks[0]), 0.5)
	assert.Less(t, outPlayers[1].ExpectedOutcome(outTasks[0]), 0.5)
}
