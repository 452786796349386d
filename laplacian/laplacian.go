// laplacian/laplacian.go
// Package laplacian implements spectral ranking from a win-graph's
// directed Laplacian: a stationary preference vector extracted from the
// null space of the graph's Markov transition structure.
//
// See Devlin & Treloar, "A Network Diffusion Ranking Family That Includes
// the Methods of Markov, Massey, and Colley", J. Quant. Anal. Sports 2018.
package laplacian

import (
	"fmt"
	"math"

	"github.com/ratingkit/poprank/interaction"
	"github.com/ratingkit/poprank/numerics"
	"github.com/ratingkit/poprank/rate"
	"github.com/ratingkit/poprank/raterr"
	"github.com/sirupsen/logrus"
)

// Options configures a Laplacian rating run.
type Options struct {
	// Solver extracts the stationary vector from the directed Laplacian.
	// Defaults to numerics.DefaultNullSpaceSolver{}.
	Solver numerics.NullSpaceSolver
	// Log receives Debug-level solve progress. Defaults to
	// logrus.StandardLogger().
	Log logrus.FieldLogger
}

// DefaultOptions returns the lvlath-backed inverse-iteration null-space
// solver with its own defaults.
func DefaultOptions() Options {
	return Options{Solver: numerics.DefaultNullSpaceSolver{}}
}

func (o Options) solver() numerics.NullSpaceSolver {
	if o.Solver == nil {
		return numerics.DefaultNullSpaceSolver{}
	}
	return o.Solver
}

func (o Options) log() logrus.FieldLogger {
	if o.Log == nil {
		return logrus.StandardLogger()
	}
	return o.Log
}

// Rate computes the Laplacian rating of every player: the row-normalized
// win-rate matrix Ŵ is used to build the directed graph Laplacian
// L = D - Ŵᵀ, where D holds each player's total loss mass (the out-degree
// of the loser->winner walk), and the stationary preference vector is its left null
// vector (the vector pi with pi^T L = 0, equivalently L^T pi = 0 — the
// fixed point of the win-rate random walk). Sign is fixed by requiring
// the largest-magnitude entry to be positive; per spec, the testable
// output of this module is the ranking the vector induces, not its raw
// values, since the overall scale and sign of a null vector are
// arbitrary.
func Rate(players []string, interactions []interaction.Interaction, priors []rate.Rate, opts Options) ([]rate.Rate, error) {
	if len(players) != len(priors) {
		return nil, fmt.Errorf("%d players but %d ratings: %w", len(players), len(priors), raterr.ErrArityMismatch)
	}
	if len(interactions) == 0 {
		out := make([]rate.Rate, len(priors))
		copy(out, priors)
		return out, nil
	}

	w, err := interaction.ToWinMatrix(interactions, players, true)
	if err != nil {
		return nil, err
	}
	n := len(players)

	// The random walk that matters here moves rating mass from loser to
	// winner, so the Laplacian's out-degree is each player's total loss
	// mass (sum_j w[j][i]), not their win mass. laplacianT is already
	// L^T = D - W expanded, sparing a separate transpose step: the
	// solver wants L^T π = 0 (the left null vector of L, i.e. the
	// stationary distribution of the loser->winner walk).
	laplacianT := make([][]float64, n)
	for i := range laplacianT {
		laplacianT[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		lossMass := 0.0
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			laplacianT[i][j] = -w[i][j]
			lossMass += w[j][i]
		}
		laplacianT[i][i] = lossMass
	}

	v, err := opts.solver().NullVector(laplacianT)
	if err != nil {
		return nil, fmt.Errorf("laplacian null vector: %w", err)
	}
	opts.log().WithField("players", n).Debug("laplacian rating solved")

	maxAbs, sign := 0.0, 1.0
	for _, x := range v {
		if math.Abs(x) > maxAbs {
			maxAbs = math.Abs(x)
			if x < 0 {
				sign = -1
			} else {
				sign = 1
			}
		}
	}

	out := make([]rate.Rate, n)
	for i, x := range v {
		out[i] = rate.Rate{Mu: x * sign, Std: priors[i].Std}
	}
	return out, nil
}
