// trueskill/trueskill.go
package trueskill

import (
	"context"
	"fmt"

	"github.com/ratingkit/poprank/rate"
	"github.com/ratingkit/poprank/raterr"
)

// Options configures a TrueSkill update.
type Options struct {
	// Beta is the performance variance's standard deviation: how much a
	// single match's outcome can vary even between equally-skilled
	// players. Defaults to TrueSkillDefaultStd/2.
	Beta float64
	// Tau is the per-period dynamic factor added to a player's variance
	// before each match, letting skill drift over time. Defaults to
	// TrueSkillDefaultStd*0.01 (25/300).
	Tau float64
	// DrawProbability is the prior probability that any given match ends
	// in a draw. Defaults to 0.10.
	DrawProbability float64
	// Iterations bounds the zig-zag convergence loop over team-difference
	// factors. Defaults to 10.
	Iterations int
	// Tolerance is the convergence threshold on the maximum (pi, tau)
	// delta across a zig-zag sweep. Defaults to 1e-4.
	Tolerance float64
}

// DefaultOptions matches the published TrueSkill defaults, scaled from the
// default rating (mu=25, std=25/3): Beta=25/6, Tau=25/300, draw
// probability 0.10.
func DefaultOptions() Options {
	beta := rate.TrueSkillDefaultStd / 2
	return Options{
		Beta:            beta,
		Tau:             rate.TrueSkillDefaultStd * 0.01,
		DrawProbability: 0.10,
		Iterations:      10,
		Tolerance:       1e-4,
	}
}

// Match is one recorded game: Teams groups player identifiers by team,
// and Scores gives one raw score per team (higher is better); equal
// scores are treated as a draw between those teams. Use Ranks instead of
// Scores when ranks are already known (1 = best); at least one of the two
// must be set.
type Match struct {
	Teams  [][]string
	Scores []float64
	Ranks  []int
}

func (m Match) ranks() ([]int, error) {
	if m.Ranks != nil {
		if len(m.Ranks) != len(m.Teams) {
			return nil, raterr.ErrArityMismatch
		}
		return m.Ranks, nil
	}
	if len(m.Scores) != len(m.Teams) {
		return nil, raterr.ErrArityMismatch
	}
	return ranksFromScores(m.Scores), nil
}

// Rate applies a sequence of matches to the given player ratings,
// processing one match at a time: each match's posteriors become the next
// match's priors, the same streaming semantics elo.Stream uses.
//
// ctx is polled before each zig-zag EP sweep within a match; a canceled
// ctx aborts the match at the next sweep and returns ctx.Err(). Matches
// between exactly two teams run no sweeps and do not poll ctx.
func Rate(ctx context.Context, players []string, matches []Match, ratings []rate.Rate, opts Options) ([]rate.Rate, error) {
	if len(players) != len(ratings) {
		return nil, raterr.ErrArityMismatch
	}
	opts = withDefaults(opts)

	index := make(map[string]int, len(players))
	for i, p := range players {
		index[p] = i
	}

	current := make([]rate.Rate, len(ratings))
	copy(current, ratings)

	for _, match := range matches {
		ranks, err := match.ranks()
		if err != nil {
			return nil, err
		}

		teams := make([][]int, len(match.Teams))
		for t, team := range match.Teams {
			teams[t] = make([]int, len(team))
			for i, p := range team {
				idx, ok := index[p]
				if !ok {
					return nil, fmt.Errorf("player %q: %w", p, raterr.ErrUnknownPlayer)
				}
				teams[t][i] = idx
			}
		}

		posteriors, err := rateMatch(ctx, teams, ranks, current, opts)
		if err != nil {
			return nil, err
		}
		current = posteriors
	}

	return current, nil
}

func withDefaults(opts Options) Options {
	if opts.Beta == 0 {
		opts.Beta = rate.TrueSkillDefaultStd / 2
	}
	if opts.Tau == 0 {
		opts.Tau = rate.TrueSkillDefaultStd * 0.01
	}
	if opts.DrawProbability == 0 {
		opts.DrawProbability = 0.10
	}
	if opts.Iterations == 0 {
		opts.Iterations = 10
	}
	if opts.Tolerance == 0 {
		opts.Tolerance = 1e-4
	}
	return opts
}

// rateMatch builds the factor graph for one match (teams of player
// indices into ratings, plus their ranks, lower is better) and runs
// expectation propagation to produce updated ratings for exactly the
// players that appear in teams; everyone else in ratings passes through
// unchanged. ctx is polled once per zig-zag sweep.
func rateMatch(ctx context.Context, teams [][]int, ranks []int, ratings []rate.Rate, opts Options) ([]rate.Rate, error) {
	ratingVars := make(map[int]*Variable)
	perfVars := make(map[int]*Variable)
	var priorFactors []*PriorFactor
	var likelihoodFactors []*LikelihoodFactor

	for _, team := range teams {
		for _, p := range team {
			rv := NewVariable()
			pv := NewVariable()
			prior := NewPriorFactor(rv, NewGaussian(ratings[p].Mu, ratings[p].Std), opts.Tau)
			likelihood := NewLikelihoodFactor(rv, pv, opts.Beta*opts.Beta)
			ratingVars[p] = rv
			perfVars[p] = pv
			priorFactors = append(priorFactors, prior)
			likelihoodFactors = append(likelihoodFactors, likelihood)
		}
	}

	teamPerfVars := make([]*Variable, len(teams))
	teamPerfFactors := make([]*SumFactor, len(teams))
	for t, team := range teams {
		terms := make([]*Variable, len(team))
		weights := make([]float64, len(team))
		for i, p := range team {
			terms[i] = perfVars[p]
			weights[i] = 1
		}
		teamPerfVars[t] = NewVariable()
		teamPerfFactors[t] = NewSumFactor(teamPerfVars[t], terms, weights)
	}

	order := sortTeamsByRank(len(teams), ranks)

	diffVars := make([]*Variable, len(teams)-1)
	diffFactors := make([]*SumFactor, len(teams)-1)
	truncFactors := make([]*TruncateFactor, len(teams)-1)
	for e := 0; e < len(teams)-1; e++ {
		left, right := order[e], order[e+1]
		diffVars[e] = NewVariable()
		diffFactors[e] = NewSumFactor(diffVars[e], []*Variable{teamPerfVars[left], teamPerfVars[right]}, []float64{1, -1})

		margin := drawMargin(opts.DrawProbability, len(teams[left]), len(teams[right]), opts.Beta)
		if ranks[left] == ranks[right] {
			truncFactors[e] = NewTruncateFactor(diffVars[e], vDraw, wDraw, margin)
		} else {
			truncFactors[e] = NewTruncateFactor(diffVars[e], vWin, wWin, margin)
		}
	}

	for _, f := range priorFactors {
		if _, err := f.PassDown(); err != nil {
			return nil, err
		}
	}
	for _, f := range likelihoodFactors {
		if _, err := f.PassDown(); err != nil {
			return nil, err
		}
	}
	for _, f := range teamPerfFactors {
		if _, err := f.PassDown(); err != nil {
			return nil, err
		}
	}

	diffLen := len(diffFactors)
	if diffLen == 0 {
		return ratings, nil
	}

	if diffLen == 1 {
		if _, err := diffFactors[0].PassDown(); err != nil {
			return nil, err
		}
		if _, err := truncFactors[0].PassUp(0); err != nil {
			return nil, err
		}
	} else {
		converged := false
		for iter := 0; iter < opts.Iterations; iter++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			delta := 0.0
			for x := 0; x < diffLen-1; x++ {
				if _, err := diffFactors[x].PassDown(); err != nil {
					return nil, err
				}
				d, err := truncFactors[x].PassUp(0)
				if err != nil {
					return nil, err
				}
				if d > delta {
					delta = d
				}
				if _, err := diffFactors[x].PassUp(1); err != nil {
					return nil, err
				}
			}
			for x := diffLen - 1; x > 0; x-- {
				if _, err := diffFactors[x].PassDown(); err != nil {
					return nil, err
				}
				d, err := truncFactors[x].PassUp(0)
				if err != nil {
					return nil, err
				}
				if d > delta {
					delta = d
				}
				if _, err := diffFactors[x].PassUp(0); err != nil {
					return nil, err
				}
			}
			if delta <= opts.Tolerance {
				converged = true
				break
			}
		}
		if !converged {
			return nil, fmt.Errorf("trueskill EP did not converge within %d iterations: %w", opts.Iterations, raterr.ErrNonConvergent)
		}
	}

	if _, err := diffFactors[0].PassUp(0); err != nil {
		return nil, err
	}
	if _, err := diffFactors[diffLen-1].PassUp(1); err != nil {
		return nil, err
	}
	for t, f := range teamPerfFactors {
		for i := range teams[t] {
			if _, err := f.PassUp(i); err != nil {
				return nil, err
			}
		}
	}
	for _, f := range likelihoodFactors {
		if _, err := f.PassUp(0); err != nil {
			return nil, err
		}
	}

	out := make([]rate.Rate, len(ratings))
	copy(out, ratings)
	for p, rv := range ratingVars {
		out[p] = rate.Rate{Mu: rv.Mu(), Std: rv.Std()}
	}
	return out, nil
}

// sortTeamsByRank returns team indices [0, n) ordered by ascending rank
// (best first), so adjacent entries in the result are the adjacent ranks
// the team-difference layer compares.
func sortTeamsByRank(n int, ranks []int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	for i := 1; i < n; i++ {
		for j := i; j > 0 && ranks[order[j-1]] > ranks[order[j]]; j-- {
			order[j-1], order[j] = order[j], order[j-1]
		}
	}
	return order
}
