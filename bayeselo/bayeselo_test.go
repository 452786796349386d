// bayeselo/bayeselo_test.go
package bayeselo

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

func twoPlayerElos() []rate.EloRate {
	return []rate.EloRate{rate.NewElo(1500, 0), rate.NewElo(1500, 0)}
}

func TestBayesEloEmptyInteractionsReturnsPriorsUnchanged(t *testing.T) {
	players := []string{"a", "b"}
	elos := twoPlayerElos()
	out, err := BayesElo(context.Background(), players, nil, elos, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, elos, out)
}

func TestBayesEloDominantPlayerRatesHigher(t *testing.T) {
	players := []string{"a", "b"}
	elos := twoPlayerElos()
	interactions := make([]interaction.Interaction, 0, 10)
	for i := 0; i < 8; i++ {
		interactions = append(interactions, interaction.New([]string{"a", "b"}, []float64{1, 0}))
	}
	for i := 0; i < 2; i++ {
		interactions = append(interactions, interaction.New([]string{"a", "b"}, []float64{0, 1}))
	}

	out, err := BayesElo(context.Background(), players, interactions, elos, DefaultOptions())
	require.NoError(t, err)
	assert.Greater(t, out[0].Mu, out[1].Mu)
}

func TestBayesEloInactivePlayerPassesThrough(t *testing.T) {
	players := []string{"a", "b", "c"}
	elos := []rate.EloRate{rate.NewElo(1500, 0), rate.NewElo(1500, 0), rate.NewElo(1700, 0)}
	interactions := []interaction.Interaction{
		interaction.New([]string{"a", "b"}, []float64{1, 0}),
	}
	out, err := BayesElo(context.Background(), players, interactions, elos, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1700.0, out[2].Mu)
}

func TestBayesEloArityMismatch(t *testing.T) {
	players := []string{"a", "b"}
	interactions := []interaction.Interaction{interaction.New([]string{"a", "b", "c"}, []float64{1, 0, 0})}
	_, err := BayesElo(context.Background(), players, interactions, twoPlayerElos(), DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, raterr.ErrArityMismatch))
}

func TestBayesEloUnknownPlayer(t *testing.T) {
	players := []string{"a", "b"}
	interactions := []interaction.Interaction{interaction.New([]string{"a", "z"}, []float64{1, 0})}
	_, err := BayesElo(context.Background(), players, interactions, twoPlayerElos(), DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, raterr.ErrUnknownPlayer))
}

func TestBayesEloIncompatibleRate(t *testing.T) {
	players := []string{"a", "b"}
	elos := []rate.EloRate{rate.NewElo(1500, 0), {Rate: rate.Rate{Mu: 1500}, Base: 2, Spread: 400}}
	interactions := []interaction.Interaction{interaction.New([]string{"a", "b"}, []float64{1, 0})}
	_, err := BayesElo(context.Background(), players, interactions, elos, DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, raterr.ErrIncompatibleRate))
}
