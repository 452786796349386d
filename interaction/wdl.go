// interaction/wdl.go
package interaction

import "fmt"

// ScoreWDL awards win, draw or loss points for a single interaction's raw
// scores: the single maximum-scoring player (if there is exactly one) gets
// win, every player tied for the maximum gets draw, and everyone else gets
// loss. This is the general N-player rule behind both WinDrawLose and
// WinLose.
func ScoreWDL(scores []float64, win, draw, loss float64) []float64 {
	out := make([]float64, len(scores))
	if len(scores) == 0 {
		return out
	}
	max := scores[0]
	for _, s := range scores[1:] {
		if s > max {
			max = s
		}
	}
	winners := 0
	for _, s := range scores {
		if s == max {
			winners++
		}
	}
	for i, s := range scores {
		switch {
		case s != max:
			out[i] = loss
		case winners == 1:
			out[i] = win
		default:
			out[i] = draw
		}
	}
	return out
}

// WinDrawLose returns the (1, 0.5, 0) scoring of ScoreWDL: a single winner
// gets 1, players tied for the top score share 0.5, everyone else gets 0.
func WinDrawLose(scores []float64) []float64 {
	return ScoreWDL(scores, 1, 0.5, 0)
}

// WinLose is WinDrawLose with ties broken in the winners' favor: every
// player tied for the top score gets the full win value instead of a
// draw.
func WinLose(scores []float64) []float64 {
	return ScoreWDL(scores, 1, 1, 0)
}

// Ratings applies ScoreWDL across every interaction, accumulating into the
// supplied base ratings keyed by player identifier, matching the additive
// semantics of windrawlose/winlose over a whole interaction history.
func Ratings(players []string, interactions []Interaction, base map[string]float64, win, draw, loss float64) (map[string]float64, error) {
	known := make(map[string]bool, len(players))
	out := make(map[string]float64, len(players))
	for _, p := range players {
		known[p] = true
		out[p] = base[p]
	}

	for _, inter := range interactions {
		if err := inter.Validate(known); err != nil {
			return nil, fmt.Errorf("interaction %v: %w", inter.Players, err)
		}
		scored := ScoreWDL(inter.Outcomes, win, draw, loss)
		for i, p := range inter.Players {
			out[p] += scored[i]
		}
	}
	return out, nil
}
