// trueskill/trueskill_test.go
package trueskill

import (
	"context"
	"errors"
	"testing"

	"github.com/ratingkit/poprank/rate"
	"github.com/ratingkit/poprank/raterr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateTwoPlayerWinnerGainsMu(t *testing.T) {
	players := []string{"a", "b"}
	ratings := []rate.Rate{rate.NewTrueSkill(), rate.NewTrueSkill()}
	matches := []Match{{Teams: [][]string{{"a"}, {"b"}}, Ranks: []int{1, 2}}}

	out, err := Rate(context.Background(), players, matches, ratings, DefaultOptions())
	require.NoError(t, err)
	assert.Greater(t, out[0].Mu, out[1].Mu)
	assert.Less(t, out[0].Std, ratings[0].Std)
	assert.Less(t, out[1].Std, ratings[1].Std)
}

func TestRateDrawKeepsRatingsClose(t *testing.T) {
	players := []string{"a", "b"}
	ratings := []rate.Rate{rate.NewTrueSkill(), rate.NewTrueSkill()}
	matches := []Match{{Teams: [][]string{{"a"}, {"b"}}, Ranks: []int{1, 1}}}

	out, err := Rate(context.Background(), players, matches, ratings, DefaultOptions())
	require.NoError(t, err)
	assert.InDelta(t, out[0].Mu, out[1].Mu, 1e-9)
}

func TestRateFourTeamUnevenSizes(t *testing.T) {
	// Four teams of sizes [2, 1, 3, 2], finishing ranks [1, 2, 2, 3]:
	// team A wins outright, B and C draw for second, D comes last. This
	// exercises the multi-team zig-zag convergence loop (diffLen == 3)
	// with a tied pair of ranks in the middle, the non-trivial EP path
	// the two-player shortcut above never touches.
	players := []string{"a1", "a2", "b1", "c1", "c2", "c3", "d1", "d2"}
	ratings := make([]rate.Rate, len(players))
	for i := range ratings {
		ratings[i] = rate.NewTrueSkill()
	}
	matches := []Match{{
		Teams: [][]string{
			{"a1", "a2"},
			{"b1"},
			{"c1", "c2", "c3"},
			{"d1", "d2"},
		},
		Ranks: []int{1, 2, 2, 3},
	}}

	out, err := Rate(context.Background(), players, matches, ratings, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, out, len(players))

	meanOf := func(idxs ...int) float64 {
		total := 0.0
		for _, i := range idxs {
			total += out[i].Mu
		}
		return total / float64(len(idxs))
	}

	muA := meanOf(0, 1)
	muB := meanOf(2)
	muC := meanOf(3, 4, 5)
	muD := meanOf(6, 7)

	assert.Greater(t, muA, muB)
	assert.Greater(t, muA, muC)
	assert.InDelta(t, muB, muC, 0.5)
	assert.Greater(t, muB, muD)
	assert.Greater(t, muC, muD)

	for i, r := range out {
		assert.Less(t, r.Std, ratings[i].Std, "player %d should have reduced uncertainty", i)
	}
}

func TestRateArityMismatch(t *testing.T) {
	players := []string{"a", "b"}
	ratings := []rate.Rate{rate.NewTrueSkill()}
	_, err := Rate(context.Background(), players, nil, ratings, DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, raterr.ErrArityMismatch))
}

func TestRateUnknownPlayer(t *testing.T) {
	players := []string{"a", "b"}
	ratings := []rate.Rate{rate.NewTrueSkill(), rate.NewTrueSkill()}
	matches := []Match{{Teams: [][]string{{"a"}, {"z"}}, Ranks: []int{1, 2}}}
	_, err := Rate(context.Background(), players, matches, ratings, DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, raterr.ErrUnknownPlayer))
}

func TestRateScoresProduceSameOrderAsRanks(t *testing.T) {
	players := []string{"a", "b", "c"}
	ratings := []rate.Rate{rate.NewTrueSkill(), rate.NewTrueSkill(), rate.NewTrueSkill()}
	byRank := []Match{{Teams: [][]string{{"a"}, {"b"}, {"c"}}, Ranks: []int{1, 2, 3}}}
	byScore := []Match{{Teams: [][]string{{"a"}, {"b"}, {"c"}}, Scores: []float64{30, 20, 10}}}

	outRank, err := Rate(context.Background(), players, byRank, ratings, DefaultOptions())
	require.NoError(t, err)
	outScore, err := Rate(context.Background(), players, byScore, ratings, DefaultOptions())
	require.NoError(t, err)

	for i := range outRank {
		assert.InDelta(t, outRank[i].Mu, outScore[i].Mu, 1e-9)
		assert.InDelta(t, outRank[i].Std, outScore[i].Std, 1e-9)
	}
}

func TestRateSequentialMatchesChainPosteriors(t *testing.T) {
	players := []string{"a", "b"}
	ratings := []rate.Rate{rate.NewTrueSkill(), rate.NewTrueSkill()}
	matches := []Match{
		{Teams: [][]string{{"a"}, {"b"}}, Ranks: []int{1, 2}},
		{Teams: [][]string{{"a"}, {"b"}}, Ranks: []int{1, 2}},
	}

	oneMatch, err := Rate(context.Background(), players, matches[:1], ratings, DefaultOptions())
	require.NoError(t, err)
	twoMatches, err := Rate(context.Background(), players, matches, ratings, DefaultOptions())
	require.NoError(t, err)

	assert.Greater(t, twoMatches[0].Mu, oneMatch[0].Mu)
	assert.Less(t, twoMatches[0].Std, oneMatch[0].Std)
}
