// elo/elo.go
// Package elo implements batch and streaming Elo rating updates.
package elo

import (
	"fmt"

	"github.com/ratingkit/poprank/interaction"
	"github.com/ratingkit/poprank/rate"
	"github.com/ratingkit/poprank/raterr"
)

// Options configures an Elo update.
type Options struct {
	// KFactor bounds the maximum adjustment per game; larger values move
	// ratings faster. Defaults to 32 when zero.
	KFactor float64
	// WDL converts every interaction's raw outcomes into the (1, 0.5, 0)
	// win/draw/lose scale before accumulating true scores, instead of
	// requiring the caller to have already done so.
	WDL bool
}

// DefaultOptions returns the standard Elo configuration: K=32, no WDL
// conversion.
func DefaultOptions() Options {
	return Options{KFactor: 32}
}

func (o Options) kFactor() float64 {
	if o.KFactor == 0 {
		return 32
	}
	return o.KFactor
}

// Aggregate computes the new ratings after applying every interaction's
// expected-vs-actual score delta simultaneously: every interaction is
// scored against the same prior ratings, and the K-scaled sum of
// (actual - expected) is added once per player. This is not equivalent to
// calling Stream once per interaction — see Stream for that semantics.
func Aggregate(players []string, interactions []interaction.Interaction, elos []rate.EloRate, opts Options) ([]rate.EloRate, error) {
	if len(players) != len(elos) {
		return nil, fmt.Errorf("%d players but %d ratings: %w", len(players), len(elos), raterr.ErrArityMismatch)
	}
	if len(elos) > 0 {
		base, spread := elos[0].Base, elos[0].Spread
		for _, e := range elos[1:] {
			if e.Base != base || e.Spread != spread {
				return nil, fmt.Errorf("ratings must share one base/spread, got (%v,%v) and (%v,%v): %w", base, spread, e.Base, e.Spread, raterr.ErrIncompatibleRate)
			}
		}
	}

	index := make(map[string]int, len(players))
	for i, p := range players {
		index[p] = i
	}

	expected := make([]float64, len(players))
	actual := make([]float64, len(players))

	for _, inter := range interactions {
		if len(inter.Players) != 2 || len(inter.Outcomes) != 2 {
			return nil, fmt.Errorf("elo interaction must have exactly 2 players and 2 outcomes: %w", raterr.ErrArityMismatch)
		}
		a, ok := index[inter.Players[0]]
		if !ok {
			return nil, fmt.Errorf("player %q: %w", inter.Players[0], raterr.ErrUnknownPlayer)
		}
		b, ok := index[inter.Players[1]]
		if !ok {
			return nil, fmt.Errorf("player %q: %w", inter.Players[1], raterr.ErrUnknownPlayer)
		}

		if !opts.WDL {
			o0, o1 := inter.Outcomes[0], inter.Outcomes[1]
			valid := (o0 == 0 || o0 == 0.5 || o0 == 1) && (o1 == 0 || o1 == 0.5 || o1 == 1) && o0+o1 == 1
			if !valid {
				return nil, fmt.Errorf("outcome %v outside (1,0)/(0,1)/(.5,.5), set WDL to auto-convert: %w", inter.Outcomes, raterr.ErrMalformedOutcome)
			}
		}

		expected[a] += elos[a].ExpectedOutcome(elos[b])
		expected[b] += elos[b].ExpectedOutcome(elos[a])

		if opts.WDL {
			scored := interaction.WinDrawLose(inter.Outcomes)
			actual[a] += scored[0]
			actual[b] += scored[1]
		} else {
			actual[a] += inter.Outcomes[0]
			actual[b] += inter.Outcomes[1]
		}
	}

	k := opts.kFactor()
	out := make([]rate.EloRate, len(elos))
	for i, e := range elos {
		out[i] = rate.EloRate{
			Rate:   rate.Rate{Mu: e.Mu + k*(actual[i]-expected[i]), Std: e.Std},
			Base:   e.Base,
			Spread: e.Spread,
		}
	}
	return out, nil
}

// Stream applies interactions one at a time, feeding each update's
// posteriors forward as the next interaction's prior. Unlike Aggregate,
// order matters: rating a player twice in sequence reacts to the
// intermediate rating, not the original one.
func Stream(players []string, interactions []interaction.Interaction, elos []rate.EloRate, opts Options) ([]rate.EloRate, error) {
	current := elos
	for _, inter := range interactions {
		next, err := Aggregate(players, []interaction.Interaction{inter}, current, opts)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}
