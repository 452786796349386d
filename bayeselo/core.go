// bayeselo/core.go
package bayeselo

import (
	"context"
	"fmt"
	"math"

	"github.com/ratingkit/poprank/raterr"
	"github.com/sirupsen/logrus"
)

// mmRating is the Minorization-Maximization solver for the generalized
// Bradley-Terry model with home-field and draw biases. It imitates
// https://www.remi-coulom.fr/Bayesian-Elo/, operating on raw (non-Elo)
// ratings internally and converting to Elo only once, in minorizeMaximize.
type mmRating struct {
	stats *Stats

	eloAdvantage float64
	eloDraw      float64
	base, spread float64

	ratings, nextRatings    []float64
	homeFieldBias, drawBias float64

	log logrus.FieldLogger
}

func newMMRating(stats *Stats, eloAdvantage, eloDraw, base, spread float64, log logrus.FieldLogger) *mmRating {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &mmRating{
		stats:        stats,
		eloAdvantage: eloAdvantage,
		eloDraw:      eloDraw,
		base:         base,
		spread:       spread,
		ratings:      make([]float64, stats.NumPlayers),
		nextRatings:  make([]float64, stats.NumPlayers),
		log:          log,
	}
}

// updateRatings performs one Gauss-Seidel sweep of the MM algorithm: each
// player's rating is recomputed from the current ratings of opponents not
// yet visited this sweep, and the already-updated ratings of opponents
// visited earlier.
func (r *mmRating) updateRatings() {
	for player := r.stats.NumPlayers - 1; player >= 0; player-- {
		a := 0.0
		b := 0.0

		opponents := r.stats.Statistics[player]
		for o := len(opponents) - 1; o >= 0; o-- {
			res := opponents[o]

			var opponentRating float64
			if res.OpponentIdx > player {
				opponentRating = r.nextRatings[res.OpponentIdx]
			} else {
				opponentRating = r.ratings[res.OpponentIdx]
			}

			a += res.WIJ + res.DIJ + res.LJI + res.DJI

			b += (res.DIJ+res.WIJ)*r.homeFieldBias/
				(r.homeFieldBias*r.ratings[player]+r.drawBias*opponentRating) +
				(res.DIJ+res.LIJ)*r.drawBias*r.homeFieldBias/
					(r.drawBias*r.homeFieldBias*r.ratings[player]+opponentRating) +
				(res.DJI+res.WJI)*r.drawBias/
					(r.homeFieldBias*opponentRating+r.drawBias*r.ratings[player]) +
				(res.DJI+res.LJI)/
					(r.drawBias*r.homeFieldBias*opponentRating+r.ratings[player])
		}

		r.nextRatings[player] = a / b
	}

	r.ratings, r.nextRatings = r.nextRatings, r.ratings
}

func (r *mmRating) updateHomeFieldBias() float64 {
	numerator, denominator := 0.0, 0.0

	for player := r.stats.NumPlayers - 1; player >= 0; player-- {
		for _, res := range r.stats.Statistics[player] {
			opponentRating := r.ratings[res.OpponentIdx]

			numerator += res.WIJ + res.DIJ
			denominator += (res.DIJ+res.WIJ)*r.ratings[player]/
				(r.homeFieldBias*r.ratings[player]+r.drawBias*opponentRating) +
				(res.DIJ+res.LIJ)*r.drawBias*r.ratings[player]/
					(r.drawBias*r.homeFieldBias*r.ratings[player]+opponentRating)
		}
	}

	return numerator / denominator
}

func (r *mmRating) updateDrawBias() float64 {
	numerator, denominator := 0.0, 0.0

	for player := r.stats.NumPlayers - 1; player >= 0; player-- {
		for _, res := range r.stats.Statistics[player] {
			opponentRating := r.ratings[res.OpponentIdx]

			numerator += res.DIJ
			denominator += (res.DIJ+res.WIJ)*opponentRating/
				(r.homeFieldBias*r.ratings[player]+r.drawBias*opponentRating) +
				(res.DIJ+res.LIJ)*r.homeFieldBias*r.ratings[player]/
					(r.drawBias*r.homeFieldBias*r.ratings[player]+opponentRating)
		}
	}

	c := numerator / denominator
	return c + math.Sqrt(c*c+1)
}

func (r *mmRating) computeDifference(a, b []float64) float64 {
	max := 0.0
	for i := range a {
		d := math.Abs(a[i]-b[i]) / (a[i] + b[i])
		if d > max {
			max = d
		}
	}
	return max
}

// minorizeMaximizeOpts configures the MM driver.
type minorizeMaximizeOpts struct {
	LearnHomeFieldBias bool
	HomeFieldBias      float64
	LearnDrawBias      bool
	DrawBias           float64
	Iterations         int
	Tolerance          float64
}

// minorizeMaximize runs the MM loop until it converges, then converts the
// raw ratings back to Elo scale, mean-centered across the population. If
// the iteration budget is spent first it returns ErrNonConvergent. ctx is
// polled once per sweep; a canceled ctx aborts the fit and returns
// ctx.Err().
func (r *mmRating) minorizeMaximize(ctx context.Context, opts minorizeMaximizeOpts) ([]float64, error) {
	r.homeFieldBias = opts.HomeFieldBias
	r.drawBias = opts.DrawBias
	for i := range r.ratings {
		r.ratings[i] = 1.0
	}

	converged := false
	iter := 0
	for ; iter < opts.Iterations; iter++ {
		if err := ctx.Err(); err != nil {
			r.log.WithField("iterations", iter).Debug("bayeselo minorize-maximize canceled")
			return nil, err
		}
		r.updateRatings()
		diff := r.computeDifference(r.ratings, r.nextRatings)

		if opts.LearnHomeFieldBias {
			newBias := r.updateHomeFieldBias()
			if d := math.Abs(r.homeFieldBias - newBias); d > diff {
				diff = d
			}
			r.homeFieldBias = newBias
		}
		if opts.LearnDrawBias {
			newBias := r.updateDrawBias()
			if d := math.Abs(r.drawBias - newBias); d > diff {
				diff = d
			}
			r.drawBias = newBias
		}

		if diff < opts.Tolerance {
			converged = true
			break
		}
	}

	r.log.WithFields(logrus.Fields{"iterations": iter, "converged": converged}).Debug("bayeselo minorize-maximize finished")
	if !converged {
		return nil, fmt.Errorf("minorize-maximize did not converge within %d iterations: %w", opts.Iterations, raterr.ErrNonConvergent)
	}

	elos := make([]float64, r.stats.NumPlayers)
	total := 0.0
	for player := 0; player < r.stats.NumPlayers; player++ {
		elos[player] = math.Log(r.ratings[player]) / math.Log(r.base) * r.spread
		total += elos[player]
	}
	offset := -total / float64(r.stats.NumPlayers)
	for player := range elos {
		elos[player] += offset
	}

	if opts.LearnHomeFieldBias {
		r.eloAdvantage = math.Log(r.homeFieldBias) / math.Log(r.base) * r.spread
	}
	if opts.LearnDrawBias {
		r.eloDraw = math.Log(r.drawBias) / math.Log(r.base) * r.spread
	}

	return elos, nil
}

// rescaleElos applies the common EloScale factor that corrects for the
// compression the draw model introduces, per Coulom's BayesElo writeup.
func (r *mmRating) rescaleElos(mus []float64) []float64 {
	x := math.Pow(r.base, -r.eloDraw/r.spread)
	eloScale := x * 4.0 / ((1 + x) * (1 + x))
	out := make([]float64, len(mus))
	for i, mu := range mus {
		out[i] = mu * eloScale
	}
	return out
}
