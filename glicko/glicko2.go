// glicko/glicko2.go
package glicko

import (
	"math"

	"github.com/ratingkit/poprank/interaction"
	"github.com/ratingkit/poprank/rate"
	"github.com/ratingkit/poprank/raterr"
)

// conversionStd is the Glicko-2 internal scale factor, 173.7178, the same
// constant the original card-game service's Glicko2Rating used to convert
// between the public 1500-based scale and the internal one.
const conversionStd = 173.7178

// unratedPlayerRate is the public-scale mean a Glicko-2 rating of 0 maps
// to.
const unratedPlayerRate = 1500.0

// Glicko2Options configures a Glicko-2 update.
type Glicko2Options struct {
	// RatingDeviationUnrated defaults to 350 when zero. Rate2 does not
	// apply it: no rating deviation is capped or replaced by this value.
	RatingDeviationUnrated float64
	// VolatilityConstraint (tau) bounds how fast volatility itself can
	// change between rating periods. Defaults to 0.5.
	VolatilityConstraint float64
	// Epsilon is the Illinois algorithm's convergence tolerance. Defaults
	// to 1e-6.
	Epsilon float64
}

// DefaultGlicko2Options matches Glickman's published constants.
func DefaultGlicko2Options() Glicko2Options {
	return Glicko2Options{RatingDeviationUnrated: 350.0, VolatilityConstraint: 0.5, Epsilon: 1e-6}
}

// Rate2 applies one Glicko-2 rating period: ratings are converted to the
// internal scale, accumulated the same way as Rate, then each player's new
// volatility is estimated with the Illinois bracketing root-finder before
// converting back to the public scale.
func Rate2(players []string, interactions []interaction.Interaction, ratings []rate.Glicko2Rate, opts Glicko2Options) ([]rate.Glicko2Rate, error) {
	if len(players) != len(ratings) {
		return nil, raterr.ErrArityMismatch
	}

	maxStd := opts.RatingDeviationUnrated
	if maxStd == 0 {
		maxStd = 350.0
	}
	tau := opts.VolatilityConstraint
	if tau == 0 {
		tau = 0.5
	}
	epsilon := opts.Epsilon
	if epsilon == 0 {
		epsilon = 1e-6
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

	index := make(map[string]int, len(players))
	for i, p := range players {
		index[p] = i
	}

	internal := make([]rate.Glicko2Rate, len(ratings))
	for i, r := range ratings {
		internal[i] = rate.Glicko2Rate{
			GlickoRate: rate.GlickoRate{EloRate: rate.EloRate{
				Rate:   rate.Rate{Mu: (r.Mu - unratedPlayerRate) / conversionStd, Std: r.Std / conversionStd},
				Base:   math.E,
				Spread: 1.0,
			}},
			Volatility: r.Volatility,
		}
	}

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

		gi, ei := skillImprovement(internal[a].GlickoRate, internal[b].GlickoRate, pair.Outcomes[0], 1.0)
		improvements[a] += gi
		variance[a] += ei
		played[a] = true

		gj, ej := skillImprovement(internal[b].GlickoRate, internal[a].GlickoRate, pair.Outcomes[1], 1.0)
		improvements[b] += gj
		variance[b] += ej
		played[b] = true
	}

	out := make([]rate.Glicko2Rate, len(ratings))
	for i := range internal {
		if !played[i] {
			newStd := math.Sqrt(internal[i].Std*internal[i].Std + internal[i].Volatility*internal[i].Volatility)
			out[i] = rate.Glicko2Rate{
				GlickoRate: rate.GlickoRate{EloRate: rate.EloRate{
					Rate:   rate.Rate{Mu: internal[i].Mu*conversionStd + unratedPlayerRate, Std: newStd * conversionStd},
					Base:   base,
					Spread: spread,
				}},
				Volatility: internal[i].Volatility,
			}
			continue
		}

		stepVariance := 1.0 / variance[i]
		delta := improvements[i] * stepVariance

		newVolatility, err := estimateVolatility(internal[i].Volatility, delta, internal[i].Std, stepVariance, tau, epsilon)
		if err != nil {
			return nil, err
		}

		estimatedStd := math.Sqrt(internal[i].Std*internal[i].Std + newVolatility*newVolatility)
		newVar := 1.0/(estimatedStd*estimatedStd) + 1.0/stepVariance
		newStd := 1.0 / math.Sqrt(newVar)
		newMu := internal[i].Mu + newStd*newStd*improvements[i]

		out[i] = rate.Glicko2Rate{
			GlickoRate: rate.GlickoRate{EloRate: rate.EloRate{
				Rate:   rate.Rate{Mu: newMu*conversionStd + unratedPlayerRate, Std: newStd * conversionStd},
				Base:   base,
				Spread: spread,
			}},
			Volatility: newVolatility,
		}
	}

	return out, nil
}

// estimateVolatility finds sigma' via the Illinois (regula falsi with
// acceleration) bracketing root-finder, exactly as the original card-game
// service's updateGlicko did for its single-opponent-average
// approximation, generalized to the per-player accumulated delta/v here.
func estimateVolatility(volatility, delta, std, v, tau, epsilon float64) (float64, error) {
	alpha := math.Log(volatility * volatility)

	volFunc := func(x float64) float64 {
		ex := math.Exp(x)
		num := ex * (delta*delta - std*std - v - ex)
		den := (std*std + v + ex) * (std*std + v + ex)
		return 0.5*num/den - (x-alpha)/(tau*tau)
	}

	var b float64
	if delta*delta > std*std+v {
		b = math.Log(delta*delta - std*std - v)
	} else {
		k := 1.0
		for volFunc(alpha-k*tau) < 0 {
			k *= 2
			if k > 1000 {
				return 0, raterr.ErrNonConvergent
			}
		}
		b = alpha - k*tau
	}

	fa := volFunc(alpha)
	fb := volFunc(b)

	for i := 0; math.Abs(b-alpha) > epsilon; i++ {
		if i > 1000 {
			return 0, raterr.ErrNonConvergent
		}
		c := alpha + (alpha-b)*fa/(fb-fa)
		fc := volFunc(c)

		if fc*fb < 0 {
			alpha, fa = b, fb
		} else {
			fa /= 2
		}
		b, fb = c, fc
	}

	return math.Exp(0.5 * alpha), nil
}
