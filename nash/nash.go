// nash/nash.go
// Package nash computes the Nash average: the meta-game equilibrium
// rating of a population from its pairwise win record, plus the
// rectified and asymmetric (player-vs-task) variants.
package nash

import (
	"fmt"
	"math"

	"github.com/katalvlaran/lvlath/matrix"
	"github.com/ratingkit/poprank/interaction"
	"github.com/ratingkit/poprank/numerics"
	"github.com/ratingkit/poprank/rate"
	"github.com/ratingkit/poprank/raterr"
	"github.com/sirupsen/logrus"
)

// SelectionMethod names the strategy used to pick among multiple Nash
// equilibria when the payoff matrix admits more than one. MaxEntropy is
// the only method implemented: the replicator-dynamics solver converges
// to a single high-entropy fixed point per zero-sum game by construction
// (original_source's `_select_max_entropy`), so there is no selection
// step left to run after solving — this type exists to name that choice
// rather than to branch on it.
type SelectionMethod int

const (
	// MaxEntropy selects the maximum-entropy equilibrium. It is the
	// default and, currently, the only selection strategy.
	MaxEntropy SelectionMethod = iota
)

func (s SelectionMethod) String() string {
	switch s {
	case MaxEntropy:
		return "max-entropy"
	default:
		return "unknown"
	}
}

// Options configures a Nash average run.
type Options struct {
	// Solver computes the two-player zero-sum equilibrium from the
	// antisymmetric payoff matrix. Defaults to
	// numerics.ReplicatorDynamicsSolver{}.
	Solver numerics.ZeroSumSolver
	// Selection names the equilibrium-selection strategy for reporting
	// purposes; see SelectionMethod. Defaults to MaxEntropy.
	Selection SelectionMethod
	// Log receives Debug-level solve progress. Defaults to
	// logrus.StandardLogger().
	Log logrus.FieldLogger
}

// DefaultOptions returns the replicator-dynamics solver with its own
// defaults.
func DefaultOptions() Options {
	return Options{Solver: numerics.ReplicatorDynamicsSolver{}, Selection: MaxEntropy}
}

func (o Options) solver() numerics.ZeroSumSolver {
	if o.Solver == nil {
		return numerics.ReplicatorDynamicsSolver{}
	}
	return o.Solver
}

func (o Options) log() logrus.FieldLogger {
	if o.Log == nil {
		return logrus.StandardLogger()
	}
	return o.Log
}

// buildLogOddsMatrix builds the antisymmetric empirical payoff matrix
// M[i][j] = logit(win-rate of i over j) = log(W'_ij / W'_ji), where W'
// is the strict win count with 1 added to each side. Because
// win-rate(i,j) + win-rate(j,i) = 1, this is the true log-odds of i
// beating j and M is antisymmetric by construction, matching the
// "Because M is antisymmetric" invariant the solver below relies on.
func buildLogOddsMatrix(players []string, interactions []interaction.Interaction) ([][]float64, error) {
	w, err := interaction.ToWinMatrix(interactions, players, false)
	if err != nil {
		return nil, err
	}
	n := len(players)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			wij, wji := w[i][j]+1, w[j][i]+1
			logit := math.Log(wij / wji)
			m[i][j] = logit
			m[j][i] = -logit
		}
	}
	return m, nil
}

func relu(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			if v > 0 {
				out[i][j] = v
			}
		}
	}
	return out
}

func solve(players []string, m [][]float64, opts Options) ([]rate.Rate, error) {
	n := len(players)
	if n == 0 {
		return nil, nil
	}
	strategy, err := opts.solver().Equilibrium(m)
	if err != nil {
		return nil, fmt.Errorf("nash equilibrium: %w", err)
	}
	if len(strategy) != n {
		return nil, fmt.Errorf("solver returned a %d-length strategy for %d players: %w", len(strategy), n, raterr.ErrNumericFailure)
	}
	opts.log().WithFields(logrus.Fields{"players": n, "selection": opts.Selection}).Debug("nash average solved")
	out := make([]rate.Rate, n)
	for i, v := range strategy {
		out[i] = rate.New(v)
	}
	return out, nil
}

// Average computes the standard Nash average of the players: the
// maximum-entropy Nash equilibrium strategy of the symmetric zero-sum
// game (M, -M) built from their pairwise win record.
func Average(players []string, interactions []interaction.Interaction, opts Options) ([]rate.Rate, error) {
	m, err := buildLogOddsMatrix(players, interactions)
	if err != nil {
		return nil, err
	}
	return solve(players, m, opts)
}

// Rectified computes the rectified Nash average: ReLU is applied to the
// empirical payoff matrix before solving, discounting players' losses so
// only their wins contribute.
func Rectified(players []string, interactions []interaction.Interaction, opts Options) ([]rate.Rate, error) {
	m, err := buildLogOddsMatrix(players, interactions)
	if err != nil {
		return nil, err
	}
	return solve(players, relu(m), opts)
}

// buildBipartitePayoff builds the players x tasks matrix M where
// M[i][j] accumulates the player's zero-sum outcome against the task
// across every (player, task) interaction.
func buildBipartitePayoff(players, tasks []string, interactions []interaction.Interaction) ([][]float64, error) {
	pIdx := make(map[string]int, len(players))
	for i, p := range players {
		pIdx[p] = i
	}
	tIdx := make(map[string]int, len(tasks))
	for i, t := range tasks {
		tIdx[t] = i
	}
	m := make([][]float64, len(players))
	for i := range m {
		m[i] = make([]float64, len(tasks))
	}
	for _, inter := range interactions {
		if len(inter.Players) != 2 || len(inter.Outcomes) != 2 {
			return nil, fmt.Errorf("AvT interaction must have exactly one player and one task: %w", raterr.ErrArityMismatch)
		}
		p, ok := pIdx[inter.Players[0]]
		if !ok {
			return nil, fmt.Errorf("player %q: %w", inter.Players[0], raterr.ErrUnknownPlayer)
		}
		t, ok := tIdx[inter.Players[1]]
		if !ok {
			return nil, fmt.Errorf("task %q: %w", inter.Players[1], raterr.ErrUnknownPlayer)
		}
		m[p][t] += inter.Outcomes[0]
	}
	return m, nil
}

// AverageAvT computes the Nash average of a player population against a
// task population from an (generally rectangular) empirical payoff
// matrix. Because the two populations are distinct, the row and column
// marginals need not coincide, so this uses a two-population replicator
// dynamics solve rather than the single-population ZeroSumSolver used by
// Average/Rectified (no bimatrix/LP/Lemke-Howson solver ships in the
// retrieval pack; see DESIGN.md).
func AverageAvT(players, tasks []string, interactions []interaction.Interaction, opts Options) ([]rate.Rate, []rate.Rate, error) {
	m, err := buildBipartitePayoff(players, tasks, interactions)
	if err != nil {
		return nil, nil, err
	}
	playerStrategy, taskStrategy, err := twoPopulationEquilibrium(m, 10000, 0.01)
	if err != nil {
		return nil, nil, err
	}
	opts.log().WithFields(logrus.Fields{"players": len(players), "tasks": len(tasks)}).Debug("AvT nash average solved")

	playerOut := make([]rate.Rate, len(players))
	for i, v := range playerStrategy {
		playerOut[i] = rate.New(v)
	}
	taskOut := make([]rate.Rate, len(tasks))
	for i, v := range taskStrategy {
		taskOut[i] = rate.New(v)
	}
	return playerOut, taskOut, nil
}

// twoPopulationEquilibrium finds a Nash equilibrium of the zero-sum
// bimatrix game (M, -M^T) via two-population replicator dynamics: the
// player population's mixed strategy is reweighted toward rows that
// outperform the population average against the current task mixture,
// and symmetrically for the task population against -M^T.
func twoPopulationEquilibrium(m [][]float64, iterations int, step float64) ([]float64, []float64, error) {
	rows := len(m)
	if rows == 0 {
		return nil, nil, nil
	}
	cols := len(m[0])
	dense, err := matrix.NewZeros(rows, cols)
	if err != nil {
		return nil, nil, fmt.Errorf("allocate AvT payoff: %w", raterr.ErrNumericFailure)
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if err := dense.Set(i, j, m[i][j]); err != nil {
				return nil, nil, fmt.Errorf("set AvT payoff entry: %w", raterr.ErrNumericFailure)
			}
		}
	}
	denseT, err := matrix.Transpose(dense)
	if err != nil {
		return nil, nil, fmt.Errorf("transpose AvT payoff: %w", raterr.ErrNumericFailure)
	}

	x := uniform(rows)
	y := uniform(cols)

	for iter := 0; iter < iterations; iter++ {
		fitnessX, err := matrix.MatVecMul(dense, y)
		if err != nil {
			return nil, nil, fmt.Errorf("AvT row fitness: %w", raterr.ErrNumericFailure)
		}
		fitnessY, err := matrix.MatVecMul(denseT, x)
		if err != nil {
			return nil, nil, fmt.Errorf("AvT column fitness: %w", raterr.ErrNumericFailure)
		}
		for i := range fitnessY {
			fitnessY[i] = -fitnessY[i]
		}

		nextX, err := replicatorStep(x, fitnessX, step)
		if err != nil {
			return nil, nil, err
		}
		nextY, err := replicatorStep(y, fitnessY, step)
		if err != nil {
			return nil, nil, err
		}
		x, y = nextX, nextY
	}
	return x, y, nil
}

func uniform(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1.0 / float64(n)
	}
	return v
}

func replicatorStep(x, fitness []float64, step float64) ([]float64, error) {
	avg := 0.0
	for i := range x {
		avg += x[i] * fitness[i]
	}
	next := make([]float64, len(x))
	sum := 0.0
	for i := range x {
		next[i] = x[i] * (1.0 + step*(fitness[i]-avg))
		if next[i] < 0 {
			next[i] = 0
		}
		sum += next[i]
	}
	if sum == 0 || math.IsNaN(sum) {
		return nil, fmt.Errorf("AvT replicator dynamics collapsed to zero mass: %w", raterr.ErrNonConvergent)
	}
	for i := range next {
		next[i] /= sum
	}
	return next, nil
}
