// elo/elo_test.go
package elo

import (
	"errors"
	"testing"

	"github.com/ratingkit/poprank/interaction"
	"github.com/ratingkit/poprank/rate"
	"github.com/ratingkit/poprank/raterr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sixPlayerFixture() ([]string, []interaction.Interaction, []rate.EloRate) {
	players := []string{"a", "b", "c", "d", "e", "f"}
	interactions := []interaction.Interaction{
		interaction.New([]string{"a", "b"}, []float64{0, 1}),
		interaction.New([]string{"a", "c"}, []float64{0.5, 0.5}),
		interaction.New([]string{"a", "d"}, []float64{1, 0}),
		interaction.New([]string{"a", "e"}, []float64{1, 0}),
		interaction.New([]string{"a", "f"}, []float64{0, 1}),
	}
	elos := []rate.EloRate{
		rate.NewElo(1613, 0),
		rate.NewElo(1609, 0),
		rate.NewElo(1477, 0),
		rate.NewElo(1388, 0),
		rate.NewElo(1586, 0),
		rate.NewElo(1720, 0),
	}
	return players, interactions, elos
}

func TestAggregateSixPlayerExample(t *testing.T) {
	players, interactions, elos := sixPlayerFixture()
	out, err := Aggregate(players, interactions, elos, Options{KFactor: 32})
	require.NoError(t, err)

	want := []float64{1601, 1625, 1483, 1381, 1571, 1731}
	for i, w := range want {
		assert.InDelta(t, w, out[i].Mu, 1)
	}
}

func TestStreamSixPlayerExampleDiffersFromAggregate(t *testing.T) {
	players, interactions, elos := sixPlayerFixture()
	out, err := Stream(players, interactions, elos, Options{KFactor: 32})
	require.NoError(t, err)

	want := []float64{1603.191, 1625.184, 1482.309, 1380.429, 1570.602, 1731.285}
	for i, w := range want {
		assert.InDelta(t, w, out[i].Mu, 0.01)
	}
}

func TestAggregateArityMismatch(t *testing.T) {
	players := []string{"a", "b"}
	elos := []rate.EloRate{rate.NewElo(1500, 0)}
	_, err := Aggregate(players, nil, elos, DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, raterr.ErrArityMismatch))
}

func TestAggregateMalformedOutcomeWithoutWDL(t *testing.T) {
	players := []string{"a", "b"}
	elos := []rate.EloRate{rate.NewElo(1500, 0), rate.NewElo(1500, 0)}
	interactions := []interaction.Interaction{
		interaction.New([]string{"a", "b"}, []float64{3, 1}),
	}
	_, err := Aggregate(players, interactions, elos, DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, raterr.ErrMalformedOutcome))
}

func TestAggregateWDLConvertsRawScores(t *testing.T) {
	players := []string{"a", "b"}
	elos := []rate.EloRate{rate.NewElo(1500, 0), rate.NewElo(1500, 0)}
	interactions := []interaction.Interaction{
		interaction.New([]string{"a", "b"}, []float64{3, 1}),
	}
	out, err := Aggregate(players, interactions, elos, Options{KFactor: 32, WDL: true})
	require.NoError(t, err)
	assert.Greater(t, out[0].Mu, 1500.0)
	assert.Less(t, out[1].Mu, 1500.0)
}

func TestAggregateIncompatibleBaseSpread(t *testing.T) {
	players := []string{"a", "b"}
	elos := []rate.EloRate{
		rate.NewElo(1500, 0),
		{Rate: rate.Rate{Mu: 1500}, Base: 10, Spread: 200},
	}
	_, err := Aggregate(players, nil, elos, DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, raterr.ErrIncompatibleRate))
}

func TestAggregateUnknownPlayer(t *testing.T) {
	players := []string{"a", "b"}
	elos := []rate.EloRate{rate.NewElo(1500, 0), rate.NewElo(1500, 0)}
	interactions := []interaction.Interaction{
		interaction.New([]string{"a", "z"}, []float64{1, 0}),
	}
	_, err := Aggregate(players, interactions, elos, DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, raterr.ErrUnknownPlayer))
}
