// interaction/interaction.go
// Package interaction holds the immutable Interaction record and the
// normalization utilities that turn N-ary interactions into the pairwise
// payoff, win and margin matrices the rating modules consume.
package interaction

import (
	"fmt"

	"github.com/ratingkit/poprank/raterr"
)

// Interaction is one recorded game: an ordered set of two-or-more player
// identifiers and a matching vector of outcomes. Interactions are immutable
// to the core; normalization functions never mutate the slices they're
// given.
type Interaction struct {
	Players  []string
	Outcomes []float64
}

// New constructs an Interaction, defensively copying both slices so the
// caller's backing arrays can't be mutated out from under the core later.
func New(players []string, outcomes []float64) Interaction {
	p := make([]string, len(players))
	copy(p, players)
	o := make([]float64, len(outcomes))
	copy(o, outcomes)
	return Interaction{Players: p, Outcomes: o}
}

// Validate checks the arity invariant (equal players/outcomes length) and
// that every player referenced appears in known.
func (i Interaction) Validate(known map[string]bool) error {
	if len(i.Players) != len(i.Outcomes) {
		return fmt.Errorf("interaction has %d players but %d outcomes: %w",
			len(i.Players), len(i.Outcomes), raterr.ErrArityMismatch)
	}
	for _, p := range i.Players {
		if !known[p] {
			return fmt.Errorf("player %q: %w", p, raterr.ErrUnknownPlayer)
		}
	}
	return nil
}

// AsPairs expands an N-ary interaction into C(N,2) pairwise interactions,
// one per unordered pair of participants, each carrying the pair's own two
// outcomes in the source order.
func (i Interaction) AsPairs() []Interaction {
	n := len(i.Players)
	if n < 2 {
		return nil
	}
	pairs := make([]Interaction, 0, n*(n-1)/2)
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			pairs = append(pairs, Interaction{
				Players:  []string{i.Players[a], i.Players[b]},
				Outcomes: []float64{i.Outcomes[a], i.Outcomes[b]},
			})
		}
	}
	return pairs
}

// ToPairwise expands every interaction in the list into its pairwise
// sub-interactions, preserving order.
func ToPairwise(interactions []Interaction) []Interaction {
	out := make([]Interaction, 0, len(interactions))
	for _, i := range interactions {
		out = append(out, i.AsPairs()...)
	}
	return out
}

// Reduction selects how repeated pairings are combined into a payoff
// matrix entry.
type Reduction int

const (
	// Sum accumulates every pairwise outcome.
	Sum Reduction = iota
	// Avg averages every pairwise outcome observed between the pair.
	Avg
)

// ToPayoffMatrix builds the N x N matrix M where M[i][j] accumulates i's
// outcome against j across every pairwise sub-interaction, using the given
// reduction to combine repeated pairings.
func ToPayoffMatrix(interactions []Interaction, players []string, reduction Reduction) ([][]float64, error) {
	idx, err := indexOf(players)
	if err != nil {
		return nil, err
	}
	n := len(players)
	m := make([][]float64, n)
	counts := make([][]int, n)
	for i := range m {
		m[i] = make([]float64, n)
		counts[i] = make([]int, n)
	}

	for _, pair := range ToPairwise(interactions) {
		a, ok1 := idx[pair.Players[0]]
		b, ok2 := idx[pair.Players[1]]
		if !ok1 {
			return nil, fmt.Errorf("player %q: %w", pair.Players[0], raterr.ErrUnknownPlayer)
		}
		if !ok2 {
			return nil, fmt.Errorf("player %q: %w", pair.Players[1], raterr.ErrUnknownPlayer)
		}
		m[a][b] += pair.Outcomes[0]
		m[b][a] += pair.Outcomes[1]
		counts[a][b]++
		counts[b][a]++
	}

	if reduction == Avg {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if counts[i][j] > 0 {
					m[i][j] /= float64(counts[i][j])
				}
			}
		}
	}
	return m, nil
}

// ToWinMatrix builds W where W[i][j] counts i's strict wins over j
// (outcome_i > outcome_j). If normalize is set, every entry is divided by
// W[i][j]+W[j][i], skipping pairs that never played.
func ToWinMatrix(interactions []Interaction, players []string, normalize bool) ([][]float64, error) {
	idx, err := indexOf(players)
	if err != nil {
		return nil, err
	}
	n := len(players)
	w := make([][]float64, n)
	for i := range w {
		w[i] = make([]float64, n)
	}

	for _, pair := range ToPairwise(interactions) {
		a, ok1 := idx[pair.Players[0]]
		b, ok2 := idx[pair.Players[1]]
		if !ok1 {
			return nil, fmt.Errorf("player %q: %w", pair.Players[0], raterr.ErrUnknownPlayer)
		}
		if !ok2 {
			return nil, fmt.Errorf("player %q: %w", pair.Players[1], raterr.ErrUnknownPlayer)
		}
		if pair.Outcomes[0] > pair.Outcomes[1] {
			w[a][b]++
		} else if pair.Outcomes[1] > pair.Outcomes[0] {
			w[b][a]++
		}
	}

	if normalize {
		normalized := make([][]float64, n)
		for i := 0; i < n; i++ {
			normalized[i] = make([]float64, n)
			for j := 0; j < n; j++ {
				normalized[i][j] = w[i][j]
				total := w[i][j] + w[j][i]
				if total != 0 {
					normalized[i][j] /= total
				}
			}
		}
		return normalized, nil
	}
	return w, nil
}

// ToMarginMatrix returns W - W^T from the (non-normalized) win matrix.
func ToMarginMatrix(interactions []Interaction, players []string) ([][]float64, error) {
	w, err := ToWinMatrix(interactions, players, false)
	if err != nil {
		return nil, err
	}
	n := len(players)
	margin := make([][]float64, n)
	for i := 0; i < n; i++ {
		margin[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			margin[i][j] = w[i][j] - w[j][i]
		}
	}
	return margin, nil
}

func indexOf(players []string) (map[string]int, error) {
	idx := make(map[string]int, len(players))
	for i, p := range players {
		if _, dup := idx[p]; dup {
			return nil, fmt.Errorf("duplicate player %q: %w", p, raterr.ErrIncompatibleRate)
		}
		idx[p] = i
	}
	return idx, nil
}
