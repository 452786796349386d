// melo/melo.go
// Package melo implements multidimensional Elo (mElo), a low-rank
// antisymmetric decomposition that captures non-transitive dominance
// (rock-paper-scissors style cycles) that a scalar rating cannot express.
package melo

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/katalvlaran/lvlath/matrix"
	"github.com/ratingkit/poprank/interaction"
	"github.com/ratingkit/poprank/numerics"
	"github.com/ratingkit/poprank/rate"
	"github.com/ratingkit/poprank/raterr"
	"github.com/sirupsen/logrus"
)

// Options configures an mElo run.
type Options struct {
	// K is the dimension parameter; ratings carry a length-2K cyclic
	// vector. Must match every input rating's K. Defaults to 1.
	K int
	// LR1 is the learning rate applied to the scalar mu component.
	// Defaults to 16.
	LR1 float64
	// LR2 is the learning rate applied to the cyclic component.
	// Defaults to 1.
	LR2 float64
	// Iterations is the number of epochs over the (shuffled) interaction
	// list. Defaults to 100.
	Iterations int
	// Rand supplies the per-epoch shuffle order. Defaults to a
	// fixed-seed *rand.Rand so repeated calls are reproducible; pass a
	// caller-seeded generator for a fresh shuffle each run.
	Rand *rand.Rand
	// Log receives Debug-level epoch progress. Defaults to
	// logrus.StandardLogger().
	Log logrus.FieldLogger
}

// DefaultOptions matches the reference mElo defaults: k=1, lr1=16, lr2=1,
// 100 iterations.
func DefaultOptions() Options {
	return Options{K: 1, LR1: 16, LR2: 1, Iterations: 100}
}

func (o Options) k() int {
	if o.K == 0 {
		return 1
	}
	return o.K
}

func (o Options) lr1() float64 {
	if o.LR1 == 0 {
		return 16
	}
	return o.LR1
}

func (o Options) lr2() float64 {
	if o.LR2 == 0 {
		return 1
	}
	return o.LR2
}

func (o Options) iterations() int {
	if o.Iterations == 0 {
		return 100
	}
	return o.Iterations
}

func (o Options) rng() *rand.Rand {
	if o.Rand == nil {
		return rand.New(rand.NewSource(1))
	}
	return o.Rand
}

func (o Options) log() logrus.FieldLogger {
	if o.Log == nil {
		return logrus.StandardLogger()
	}
	return o.Log
}

// buildOmega constructs the 2k x 2k antisymmetric block matrix with +1/-1
// on the off-diagonal of each 2x2 block, expressed as an lvlath Dense so
// its application to a cyclic vector is a MatVecMul rather than a
// hand-rolled loop.
func buildOmega(k int) (*matrix.Dense, error) {
	n := 2 * k
	om, err := matrix.NewZeros(n, n)
	if err != nil {
		return nil, fmt.Errorf("allocate omega: %w", raterr.ErrNumericFailure)
	}
	for i := 0; i < k; i++ {
		if err := om.Set(2*i, 2*i+1, 1); err != nil {
			return nil, fmt.Errorf("set omega: %w", raterr.ErrNumericFailure)
		}
		if err := om.Set(2*i+1, 2*i, -1); err != nil {
			return nil, fmt.Errorf("set omega: %w", raterr.ErrNumericFailure)
		}
	}
	return om, nil
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// predict returns P(i beats j) = sigmoid(mu_i - mu_j + c_i^T Omega c_j).
func predict(muI float64, cI []float64, muJ float64, omCJ []float64) float64 {
	return numerics.Sigmoid(muI-muJ+dot(cI, omCJ), math.E)
}

func validateRatings(elos []rate.MultidimEloRate, k int) error {
	for _, e := range elos {
		if e.K != k {
			return fmt.Errorf("rating k=%d but options k=%d: %w", e.K, k, raterr.ErrIncompatibleRate)
		}
		if len(e.Cyclic) != 2*k {
			return fmt.Errorf("cyclic vector has length %d, want %d: %w", len(e.Cyclic), 2*k, raterr.ErrIncompatibleRate)
		}
	}
	return nil
}

// Rate computes the mElo ratings of players against each other. Every
// interaction must be exactly pairwise with outcomes in [p, 1-p]; the
// input interactions list is never mutated, even though the reference
// shuffles its list in place each epoch — an internal index permutation
// stands in for that shuffle here. ctx is polled once per epoch; a
// canceled ctx stops after the in-flight epoch and returns ctx.Err().
func Rate(ctx context.Context, players []string, interactions []interaction.Interaction, elos []rate.MultidimEloRate, opts Options) ([]rate.MultidimEloRate, error) {
	if len(players) != len(elos) {
		return nil, fmt.Errorf("%d players but %d ratings: %w", len(players), len(elos), raterr.ErrArityMismatch)
	}
	k := opts.k()
	if err := validateRatings(elos, k); err != nil {
		return nil, err
	}

	index := make(map[string]int, len(players))
	for i, p := range players {
		index[p] = i
	}

	om, err := buildOmega(k)
	if err != nil {
		return nil, err
	}

	mu := make([]float64, len(elos))
	cyclic := make([][]float64, len(elos))
	for i, e := range elos {
		mu[i] = e.Mu
		cyclic[i] = append([]float64(nil), e.Cyclic...)
	}

	order := make([]int, len(interactions))
	for i := range order {
		order[i] = i
	}

	rng := opts.rng()
	lr1, lr2 := opts.lr1(), opts.lr2()
	log := opts.log()

	for epoch := 0; epoch < opts.iterations(); epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rng.Shuffle(len(order), func(a, b int) { order[a], order[b] = order[b], order[a] })
		for _, idx := range order {
			inter := interactions[idx]
			if len(inter.Players) != 2 || len(inter.Outcomes) != 2 {
				return nil, fmt.Errorf("melo interaction must have exactly 2 players and 2 outcomes: %w", raterr.ErrArityMismatch)
			}
			p, ok := index[inter.Players[0]]
			if !ok {
				return nil, fmt.Errorf("player %q: %w", inter.Players[0], raterr.ErrUnknownPlayer)
			}
			q, ok := index[inter.Players[1]]
			if !ok {
				return nil, fmt.Errorf("player %q: %w", inter.Players[1], raterr.ErrUnknownPlayer)
			}

			omCq, err := matrix.MatVecMul(om, cyclic[q])
			if err != nil {
				return nil, fmt.Errorf("omega*cyclic_j: %w", raterr.ErrNumericFailure)
			}
			omCp, err := matrix.MatVecMul(om, cyclic[p])
			if err != nil {
				return nil, fmt.Errorf("omega*cyclic_i: %w", raterr.ErrNumericFailure)
			}

			expected := predict(mu[p], cyclic[p], mu[q], omCq)
			delta := inter.Outcomes[0] - expected

			mu[p] += lr1 * delta
			mu[q] -= lr1 * delta

			nextP := make([]float64, len(cyclic[p]))
			nextQ := make([]float64, len(cyclic[q]))
			for i := range nextP {
				nextP[i] = cyclic[p][i] + lr2*delta*omCq[i]
			}
			for i := range nextQ {
				nextQ[i] = cyclic[q][i] - lr2*delta*omCp[i]
			}
			cyclic[p], cyclic[q] = nextP, nextQ
		}
		log.WithField("epoch", epoch).Debug("melo epoch complete")
	}

	out := make([]rate.MultidimEloRate, len(elos))
	for i := range out {
		out[i] = rate.MultidimEloRate{Rate: rate.Rate{Mu: mu[i], Std: elos[i].Std}, K: k, Cyclic: cyclic[i]}
	}
	return out, nil
}

// RateBipartite computes mElo ratings for a player-vs-task population:
// players and tasks keep separate rating banks, but every interaction's
// first player is looked up against the player bank and the second
// against the task bank, using the same update rule as Rate. ctx is
// polled once per epoch, same as Rate.
func RateBipartite(
	ctx context.Context,
	players, tasks []string,
	interactions []interaction.Interaction,
	playerElos, taskElos []rate.MultidimEloRate,
	opts Options,
) ([]rate.MultidimEloRate, []rate.MultidimEloRate, error) {
	if len(players) != len(playerElos) {
		return nil, nil, fmt.Errorf("%d players but %d ratings: %w", len(players), len(playerElos), raterr.ErrArityMismatch)
	}
	if len(tasks) != len(taskElos) {
		return nil, nil, fmt.Errorf("%d tasks but %d ratings: %w", len(tasks), len(taskElos), raterr.ErrArityMismatch)
	}
	k := opts.k()
	if err := validateRatings(playerElos, k); err != nil {
		return nil, nil, err
	}
	if err := validateRatings(taskElos, k); err != nil {
		return nil, nil, err
	}

	playerIndex := make(map[string]int, len(players))
	for i, p := range players {
		playerIndex[p] = i
	}
	taskIndex := make(map[string]int, len(tasks))
	for i, t := range tasks {
		taskIndex[t] = i
	}

	om, err := buildOmega(k)
	if err != nil {
		return nil, nil, err
	}

	pMu := make([]float64, len(playerElos))
	pCyclic := make([][]float64, len(playerElos))
	for i, e := range playerElos {
		pMu[i] = e.Mu
		pCyclic[i] = append([]float64(nil), e.Cyclic...)
	}
	tMu := make([]float64, len(taskElos))
	tCyclic := make([][]float64, len(taskElos))
	for i, e := range taskElos {
		tMu[i] = e.Mu
		tCyclic[i] = append([]float64(nil), e.Cyclic...)
	}

	order := make([]int, len(interactions))
	for i := range order {
		order[i] = i
	}

	rng := opts.rng()
	lr1, lr2 := opts.lr1(), opts.lr2()
	log := opts.log()

	for epoch := 0; epoch < opts.iterations(); epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		rng.Shuffle(len(order), func(a, b int) { order[a], order[b] = order[b], order[a] })
		for _, idx := range order {
			inter := interactions[idx]
			if len(inter.Players) != 2 || len(inter.Outcomes) != 2 {
				return nil, nil, fmt.Errorf("melo interaction must have exactly 2 participants and 2 outcomes: %w", raterr.ErrArityMismatch)
			}
			p, ok := playerIndex[inter.Players[0]]
			if !ok {
				return nil, nil, fmt.Errorf("player %q: %w", inter.Players[0], raterr.ErrUnknownPlayer)
			}
			t, ok := taskIndex[inter.Players[1]]
			if !ok {
				return nil, nil, fmt.Errorf("task %q: %w", inter.Players[1], raterr.ErrUnknownPlayer)
			}

			omCt, err := matrix.MatVecMul(om, tCyclic[t])
			if err != nil {
				return nil, nil, fmt.Errorf("omega*cyclic_task: %w", raterr.ErrNumericFailure)
			}
			omCp, err := matrix.MatVecMul(om, pCyclic[p])
			if err != nil {
				return nil, nil, fmt.Errorf("omega*cyclic_player: %w", raterr.ErrNumericFailure)
			}

			expected := predict(pMu[p], pCyclic[p], tMu[t], omCt)
			delta := inter.Outcomes[0] - expected

			pMu[p] += lr1 * delta
			tMu[t] -= lr1 * delta

			nextP := make([]float64, len(pCyclic[p]))
			nextT := make([]float64, len(tCyclic[t]))
			for i := range nextP {
				nextP[i] = pCyclic[p][i] + lr2*delta*omCt[i]
			}
			for i := range nextT {
				nextT[i] = tCyclic[t][i] - lr2*delta*omCp[i]
			}
			pCyclic[p], tCyclic[t] = nextP, nextT
		}
		log.WithField("epoch", epoch).Debug("melo bipartite epoch complete")
	}

	outPlayers := make([]rate.MultidimEloRate, len(playerElos))
	for i := range outPlayers {
		outPlayers[i] = rate.MultidimEloRate{Rate: rate.Rate{Mu: pMu[i], Std: playerElos[i].Std}, K: k, Cyclic: pCyclic[i]}
	}
	outTasks := make([]rate.MultidimEloRate, len(taskElos))
	for i := range outTasks {
		outTasks[i] = rate.MultidimEloRate{Rate: rate.Rate{Mu: tMu[i], Std: taskElos[i].Std}, K: k, Cyclic: tCyclic[i]}
	}
	return outPlayers, outTasks, nil
}
