// interaction/interaction_test.go
package interaction

import (
	"errors"
	"testing"

	"github.com/ratingkit/poprank/raterr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsPairsThreePlayer(t *testing.T) {
	i := New([]string{"a", "b", "c"}, []float64{1, 0.5, 0})
	pairs := i.AsPairs()
	require.Len(t, pairs, 3)
	assert.Equal(t, []string{"a", "b"}, pairs[0].Players)
	assert.Equal(t, []string{"a", "c"}, pairs[1].Players)
	assert.Equal(t, []string{"b", "c"}, pairs[2].Players)
}

func TestValidateArityMismatch(t *testing.T) {
	i := Interaction{Players: []string{"a", "b"}, Outcomes: []float64{1}}
	err := i.Validate(map[string]bool{"a": true, "b": true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, raterr.ErrArityMismatch))
}

func TestValidateUnknownPlayer(t *testing.T) {
	i := Interaction{Players: []string{"a", "z"}, Outcomes: []float64{1, 0}}
	err := i.Validate(map[string]bool{"a": true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, raterr.ErrUnknownPlayer))
}

func TestToPayoffMatrixSum(t *testing.T) {
	players := []string{"a", "b"}
	interactions := []Interaction{
		New([]string{"a", "b"}, []float64{1, 0}),
		New([]string{"a", "b"}, []float64{0, 1}),
	}
	m, err := ToPayoffMatrix(interactions, players, Sum)
	require.NoError(t, err)
	assert.Equal(t, 1.0, m[0][1])
	assert.Equal(t, 1.0, m[1][0])
}

func TestToPayoffMatrixAvg(t *testing.T) {
	players := []string{"a", "b"}
	interactions := []Interaction{
		New([]string{"a", "b"}, []float64{1, 0}),
		New([]string{"a", "b"}, []float64{0, 1}),
	}
	m, err := ToPayoffMatrix(interactions, players, Avg)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, m[0][1], 1e-9)
	assert.InDelta(t, 0.5, m[1][0], 1e-9)
}

func TestToWinMatrixNormalized(t *testing.T) {
	players := []string{"a", "b"}
	interactions := []Interaction{
		New([]string{"a", "b"}, []float64{1, 0}),
		New([]string{"a", "b"}, []float64{1, 0}),
		New([]string{"a", "b"}, []float64{0, 1}),
	}
	w, err := ToWinMatrix(interactions, players, true)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, w[0][1], 1e-9)
	assert.InDelta(t, 1.0/3.0, w[1][0], 1e-9)
}

func TestToMarginMatrix(t *testing.T) {
	players := []string{"a", "b"}
	interactions := []Interaction{
		New([]string{"a", "b"}, []float64{1, 0}),
		New([]string{"a", "b"}, []float64{1, 0}),
	}
	margin, err := ToMarginMatrix(interactions, players)
	require.NoError(t, err)
	assert.Equal(t, 2.0, margin[0][1])
	assert.Equal(t, -2.0, margin[1][0])
}

func TestToPayoffMatrixUnknownPlayer(t *testing.T) {
	players := []string{"a", "b"}
	interactions := []Interaction{New([]string{"a", "z"}, []float64{1, 0})}
	_, err := ToPayoffMatrix(interactions, players, Sum)
	require.Error(t, err)
	assert.True(t, errors.Is(err, raterr.ErrUnknownPlayer))
}

func TestWinDrawLoseSingleWinner(t *testing.T) {
	out := WinDrawLose([]float64{3, 1, 2})
	assert.Equal(t, []float64{1, 0, 0}, out)
}

func TestWinDrawLoseTiedWinners(t *testing.T) {
	out := WinDrawLose([]float64{3, 3, 1})
	assert.Equal(t, []float64{0.5, 0.5, 0}, out)
}

func TestWinLose(t *testing.T) {
	out := WinLose([]float64{5, 2})
	assert.Equal(t, []float64{1.0, 0.0}, out)

	tied := WinLose([]float64{3, 3})
	assert.Equal(t, []float64{1.0, 1.0}, tied)
}

func TestRatingsAccumulates(t *testing.T) {
	players := []string{"a", "b"}
	interactions := []Interaction{
		New([]string{"a", "b"}, []float64{1, 0}),
		New([]string{"a", "b"}, []float64{0, 1}),
	}
	out, err := Ratings(players, interactions, map[string]float64{}, 1, 0.5, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, out["a"])
	assert.Equal(t, 1.0, out["b"])
}
