// glicko/glicko_test.go
package glicko

import (
	"testing"

	"github.com/ratingkit/poprank/interaction"
	"github.com/ratingkit/poprank/rate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func glickmanFixture() ([]string, []interaction.Interaction, []rate.GlickoRate) {
	players := []string{"a", "b", "c", "d"}
	interactions := []interaction.Interaction{
		interaction.New([]string{"a", "b"}, []float64{1, 0}),
		interaction.New([]string{"a", "c"}, []float64{0, 1}),
		interaction.New([]string{"a", "d"}, []float64{0, 1}),
		interaction.New([]string{"b", "c"}, []float64{0, 1}),
		interaction.New([]string{"b", "d"}, []float64{0, 1}),
		interaction.New([]string{"c", "d"}, []float64{0.5, 0.5}),
	}
	ratings := []rate.GlickoRate{
		rate.NewGlicko(1500, 200),
		rate.NewGlicko(1400, 30),
		rate.NewGlicko(1550, 100),
		rate.NewGlicko(1700, 300),
	}
	return players, interactions, ratings
}

func TestGlickoTextbookExample(t *testing.T) {
	players, interactions, ratings := glickmanFixture()
	out, err := Rate(players, interactions, ratings, DefaultOptions())
	require.NoError(t, err)

	wantMu := []float64{1464.106, 1396.046, 1588.344, 1742.969}
	wantStd := []float64{151.399, 29.800, 92.598, 194.514}
	for i := range out {
		assert.InDelta(t, wantMu[i], out[i].Mu, 0.01)
		assert.InDelta(t, wantStd[i], out[i].Std, 0.01)
	}
}

func TestGlickoNoGamesIncrementsAge(t *testing.T) {
	players := []string{"a", "b", "c"}
	ratings := []rate.GlickoRate{
		rate.NewGlicko(1500, 200),
		rate.NewGlicko(1500, 200),
		rate.NewGlicko(1500, 200),
	}
	interactions := []interaction.Interaction{
		interaction.New([]string{"a", "b"}, []float64{1, 0}),
	}
	out, err := Rate(players, interactions, ratings, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, out[2].TimeSinceLastCompetition)
	assert.Equal(t, 0, out[0].TimeSinceLastCompetition)
}

func TestAgeUnplayedInflatesDeviationAndIncrementsAge(t *testing.T) {
	ratings := []rate.GlickoRate{rate.NewGlicko(1500, 200)}
	out := AgeUnplayed(ratings, DefaultOptions())
	require.Len(t, out, 1)
	assert.Greater(t, out[0].Std, ratings[0].Std)
	assert.Equal(t, 1500.0, out[0].Mu)
	assert.Equal(t, 1, out[0].TimeSinceLastCompetition)
}

func TestGlicko2TextbookExample(t *testing.T) {
	players := []string{"a", "b", "c", "d"}
	interactions := []interaction.Interaction{
		interaction.New([]string{"a", "b"}, []float64{1, 0}),
		interaction.New([]string{"a", "c"}, []float64{0, 1}),
		interaction.New([]string{"a", "d"}, []float64{0, 1}),
		interaction.New([]string{"b", "c"}, []float64{0, 1}),
		interaction.New([]string{"b", "d"}, []float64{0, 1}),
		interaction.New([]string{"c", "d"}, []float64{0.5, 0.5}),
	}
	ratings := []rate.Glicko2Rate{
		rate.NewGlicko2(1500, 200),
		rate.NewGlicko2(1400, 30),
		rate.NewGlicko2(1550, 100),
		rate.NewGlicko2(1700, 300),
	}

	out, err := Rate2(players, interactions, ratings, DefaultGlicko2Options())
	require.NoError(t, err)

	wantMu := []float64{1464.051, 1395.575, 1588.701, 1742.991}
	wantStd := []float64{151.517, 31.522, 93.027, 194.563}
	for i := range out {
		assert.InDelta(t, wantMu[i], out[i].Mu, 0.01)
		assert.InDelta(t, wantStd[i], out[i].Std, 0.01)
	}
}
