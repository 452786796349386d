// bayeselo/bayeselo.go
// Package bayeselo rates players with Rémi Coulom's Bayesian Elo approach:
// a Minorization-Maximization fit of a generalized Bradley-Terry model
// with optional home-field and draw biases.
package bayeselo

import (
	"context"
	"fmt"
	"math"

	"github.com/ratingkit/poprank/interaction"
	"github.com/ratingkit/poprank/rate"
	"github.com/ratingkit/poprank/raterr"
	"github.com/sirupsen/logrus"
)

// Options configures a BayesElo run.
type Options struct {
	EloDraw      float64 // rating-point equivalent of the draw probability
	EloAdvantage float64 // home-field advantage, in rating points
	Iterations   int
	Tolerance    float64

	AddDrawPrior bool
	DrawPrior    float64

	LearnHomeFieldBias bool
	LearnDrawBias      bool

	Log logrus.FieldLogger
}

// DefaultOptions matches Coulom's reference defaults: elo_draw=97.3,
// elo_advantage=32.8, 10000 iterations, tolerance 1e-5, with a draw prior
// of 2.0 to avoid MM divide-by-zero on undefeated or winless players.
func DefaultOptions() Options {
	return Options{
		EloDraw:      97.3,
		EloAdvantage: 32.8,
		Iterations:   10000,
		Tolerance:    1e-5,
		AddDrawPrior: true,
		DrawPrior:    2.0,
	}
}

// BayesElo rates players by fitting the generalized Bradley-Terry model to
// a set of two-player win/draw/loss interactions via Minorization-
// Maximization. Players that appear in interactions but not in players
// are rejected; players in the roster that never played keep their prior
// rating unchanged.
//
// ctx is polled between MM sweeps; a canceled ctx stops the fit early and
// returns ctx.Err(). With context.Background() the fit runs until it
// converges or the iteration budget is spent; a fit that does not converge
// returns ErrNonConvergent.
func BayesElo(ctx context.Context, players []string, interactions []interaction.Interaction, elos []rate.EloRate, opts Options) ([]rate.EloRate, error) {
	if len(interactions) == 0 {
		return elos, nil
	}
	if len(players) != len(elos) {
		return nil, fmt.Errorf("%d players but %d ratings: %w", len(players), len(elos), raterr.ErrArityMismatch)
	}

	base, spread := rate.DefaultBase, rate.DefaultSpread
	if len(elos) > 0 {
		base, spread = elos[0].Base, elos[0].Spread
	}
	for _, e := range elos {
		if e.Base != base || e.Spread != spread {
			return nil, fmt.Errorf("ratings with different base/spread are not compatible: %w", raterr.ErrIncompatibleRate)
		}
	}

	known := make(map[string]bool, len(players))
	for _, p := range players {
		known[p] = true
	}
	active := make(map[string]bool)
	for _, inter := range interactions {
		if len(inter.Players) != 2 || len(inter.Outcomes) != 2 {
			return nil, fmt.Errorf("bayeselo only accepts 2-player interactions: %w", raterr.ErrArityMismatch)
		}
		for i, p := range inter.Players {
			if !known[p] {
				return nil, fmt.Errorf("player %q: %w", p, raterr.ErrUnknownPlayer)
			}
			o := inter.Outcomes[i]
			if o != 0 && o != 0.5 && o != 1 {
				return nil, fmt.Errorf("outcome %v outside (1,0)/(0,1)/(.5,.5): %w", inter.Outcomes, raterr.ErrMalformedOutcome)
			}
		}
		if inter.Outcomes[0]+inter.Outcomes[1] != 1 {
			return nil, fmt.Errorf("outcomes %v must sum to 1: %w", inter.Outcomes, raterr.ErrMalformedOutcome)
		}
		active[inter.Players[0]] = true
		active[inter.Players[1]] = true
	}

	activePlayers := make([]string, 0, len(active))
	activeElos := make([]rate.EloRate, 0, len(active))
	for i, p := range players {
		if active[p] {
			activePlayers = append(activePlayers, p)
			activeElos = append(activeElos, elos[i])
		}
	}

	stats, err := StatsFromInteractions(activePlayers, interactions, opts.AddDrawPrior, opts.DrawPrior)
	if err != nil {
		return nil, err
	}

	mm := newMMRating(stats, opts.EloAdvantage, opts.EloDraw, base, spread, opts.Log)
	mus, err := mm.minorizeMaximize(ctx, minorizeMaximizeOpts{
		LearnHomeFieldBias: opts.LearnHomeFieldBias,
		HomeFieldBias:      math.Pow(base, opts.EloAdvantage/spread),
		LearnDrawBias:      opts.LearnDrawBias,
		DrawBias:           math.Pow(base, opts.EloDraw/spread),
		Iterations:         opts.Iterations,
		Tolerance:          opts.Tolerance,
	})
	if err != nil {
		return nil, err
	}

	if opts.LearnHomeFieldBias {
		opts.EloAdvantage = mm.eloAdvantage
	}
	if opts.LearnDrawBias {
		opts.EloDraw = mm.eloDraw
	}
	mm.eloDraw = opts.EloDraw
	mus = mm.rescaleElos(mus)

	activeIdx := 0
	out := make([]rate.EloRate, len(players))
	for i, p := range players {
		if active[p] {
			out[i] = rate.EloRate{Rate: rate.Rate{Mu: mus[activeIdx], Std: elos[i].Std}, Base: base, Spread: spread}
			activeIdx++
		} else {
			out[i] = elos[i]
		}
	}
	return out, nil
}
