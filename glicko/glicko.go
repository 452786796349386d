// glicko/glicko.go
// Package glicko implements the Glicko and Glicko-2 rating systems, grown
// from a from-scratch Glicko-2 implementation originally written for a
// card-game matchmaking service.
package glicko

import (
	"math"

	"github.com/ratingkit/poprank/interaction"
	"github.com/ratingkit/poprank/numerics"
	"github.com/ratingkit/poprank/rate"
	"github.com/ratingkit/poprank/raterr"
)

// Options configures a Glicko (v1) update.
type Options struct {
	// UncertaintyIncrease (c) governs how fast rating deviation grows for
	// every elapsed rating period without a game. Defaults to 34.6.
	UncertaintyIncrease float64
	// RatingDeviationUnrated caps the inflated rating deviation.
	// Defaults to 350.
	RatingDeviationUnrated float64
}

// DefaultOptions matches Glickman's published constants.
func DefaultOptions() Options {
	return Options{UncertaintyIncrease: 34.6, RatingDeviationUnrated: 350.0}
}

// Rate applies one Glicko rating period to every player: std is first
// inflated by the periods elapsed since their last recorded competition,
// then every interaction in the period is folded into a single update per
// spec — players untouched this period have their time_since_last_competition
// incremented instead.
func Rate(players []string, interactions []interaction.Interaction, ratings []rate.GlickoRate, opts Options) ([]rate.GlickoRate, error) {
	if len(players) != len(ratings) {
		return nil, raterr.ErrArityMismatch
	}
	c := opts.UncertaintyIncrease
	if c == 0 {
		c = 34.6
	}
	maxStd := opts.RatingDeviationUnrated
	if maxStd == 0 {
		maxStd = 350.0
	}

	index := make(map[string]int, len(players))
	for i, p := range players {
		index[p] = i
	}

	base, spread := rate.DefaultBase, rate.DefaultSpread
	if len(ratings) > 0 {
		base, spread = ratings[0].Base, ratings[0].Spread
	}
	for _, r := range ratings {
		if r.Base != base || r.Spread != spread {
			return nil, raterr.ErrIncompatibleRate
		}
	}

	next := make([]rate.GlickoRate, len(ratings))
	for i, r := range ratings {
		inflated := math.Min(
			math.Sqrt(r.Std*r.Std+float64(r.TimeSinceLastCompetition)*c*c),
			maxStd,
		)
		next[i] = rate.GlickoRate{EloRate: rate.EloRate{Rate: rate.Rate{Mu: r.Mu, Std: inflated}, Base: base, Spread: spread}}
	}

	q := math.Log(base) / spread

	improvements := make([]float64, len(players))
	variance := make([]float64, len(players))
	played := make([]bool, len(players))

	for _, pair := range interaction.ToPairwise(interactions) {
		a, ok := index[pair.Players[0]]
		if !ok {
			return nil, raterr.ErrUnknownPlayer
		}
		b, ok := index[pair.Players[1]]
		if !ok {
			return nil, raterr.ErrUnknownPlayer
		}

		gi, ei := skillImprovement(next[a], next[b], pair.Outcomes[0], q)
		improvements[a] += gi
		variance[a] += ei
		played[a] = true

		gj, ej := skillImprovement(next[b], next[a], pair.Outcomes[1], q)
		improvements[b] += gj
		variance[b] += ej
		played[b] = true
	}

	for i := range next {
		if !played[i] {
			next[i].TimeSinceLastCompetition = ratings[i].TimeSinceLastCompetition + 1
			continue
		}
		d2 := 1.0 / (q * q * variance[i])
		newVariance := 1.0/(next[i].Std*next[i].Std) + 1.0/d2
		next[i].Std = math.Sqrt(1.0 / newVariance)
		next[i].Mu = next[i].Mu + q/newVariance*improvements[i]
	}

	return next, nil
}

// AgeUnplayed applies the passive rating-deviation inflation step to every
// rating in a roster, for callers advancing a full rating period between
// batches of Rate calls rather than feeding interactions through Rate
// itself. It mirrors the TimeSinceLastCompetition branch inside Rate's own
// loop (the "no games this period" case), so calling it gives the same
// result as calling Rate with an empty interaction slice.
func AgeUnplayed(ratings []rate.GlickoRate, opts Options) []rate.GlickoRate {
	c := opts.UncertaintyIncrease
	if c == 0 {
		c = 34.6
	}
	maxStd := opts.RatingDeviationUnrated
	if maxStd == 0 {
		maxStd = 350.0
	}
	out := make([]rate.GlickoRate, len(ratings))
	for i, r := range ratings {
		inflated := math.Min(math.Sqrt(r.Std*r.Std+float64(r.TimeSinceLastCompetition)*c*c), maxStd)
		out[i] = r
		out[i].Std = inflated
		out[i].TimeSinceLastCompetition++
	}
	return out
}

// skillImprovement returns g(opponent.Std)*(outcome-E) and the match's
// contribution to the rating variance Σ, following Glickman's reduce_impact
// / predict pair.
func skillImprovement(player, opponent rate.GlickoRate, outcome, q float64) (float64, float64) {
	g := reduceImpact(opponent.Std, q)
	expected := expectedOutcome(player, opponent, g)
	improvement := g * (outcome - expected)
	v := g * g * expected * (1 - expected)
	return improvement, v
}

// reduceImpact (g(RD) in Glickman's notation) lessens the impact of a game
// played against a highly uncertain opponent.
func reduceImpact(opponentStd, q float64) float64 {
	return 1.0 / math.Sqrt(1.0+3.0*q*q*opponentStd*opponentStd/(math.Pi*math.Pi))
}

// expectedOutcome is the Glicko expected-score formula, scaling the usual
// Elo sigmoid by g(opponent.Std).
func expectedOutcome(player, opponent rate.GlickoRate, g float64) float64 {
	return numerics.Sigmoid(g*(player.Mu-opponent.Mu)/player.Spread, player.Base)
}
