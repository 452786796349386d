// bayeselo/stats.go
package bayeselo

import (
	"fmt"

	"github.com/ratingkit/poprank/interaction"
	"github.com/ratingkit/poprank/raterr"
)

// PairwiseStatistics condenses every recorded game between a player and
// one specific opponent into win/draw/loss counts from each side's
// perspective.
type PairwiseStatistics struct {
	PlayerIdx     int
	OpponentIdx   int
	TotalGames    float64
	WIJ, DIJ, LIJ float64 // player i's wins/draws/losses against opponent j
	WJI, DJI, LJI float64 // opponent j's wins/draws/losses against player i
}

// Stats holds the pairwise statistics of an entire population: for each
// player, one PairwiseStatistics entry per distinct opponent they faced.
type Stats struct {
	NumPlayers            int
	NumOpponentsPerPlayer []int
	Statistics            [][]PairwiseStatistics
}

func newStats(numPlayers int) *Stats {
	return &Stats{
		NumPlayers:            numPlayers,
		NumOpponentsPerPlayer: make([]int, numPlayers),
		Statistics:            make([][]PairwiseStatistics, numPlayers),
	}
}

func (s *Stats) addOpponent(playerIdx, opponentIdx int, seen [][]int, indexOf map[string]int) {
	seen[playerIdx] = append(seen[playerIdx], opponentIdx)
	s.Statistics[playerIdx] = append(s.Statistics[playerIdx], PairwiseStatistics{
		PlayerIdx:   playerIdx,
		OpponentIdx: opponentIdx,
	})
	s.NumOpponentsPerPlayer[playerIdx]++
}

// FindOpponent returns the pairwise statistics player has recorded against
// opponent.
func (s *Stats) FindOpponent(playerIdx, opponentIdx int) (*PairwiseStatistics, error) {
	for x := 0; x < s.NumOpponentsPerPlayer[playerIdx]; x++ {
		if s.Statistics[playerIdx][x].OpponentIdx == opponentIdx {
			return &s.Statistics[playerIdx][x], nil
		}
	}
	return nil, fmt.Errorf("could not find opponent %d for player %d: %w", opponentIdx, playerIdx, raterr.ErrUnknownPlayer)
}

// CountTotalOpponentGames sums the games player has played against each of
// its opponents.
func (s *Stats) CountTotalOpponentGames(playerIdx int) float64 {
	total := 0.0
	for _, opp := range s.Statistics[playerIdx] {
		total += opp.TotalGames
	}
	return total
}

// AddPrior distributes draw_prior*0.25 pseudo-draws across every pairing,
// weighted by the number of games actually played, to keep the MM solver
// from dividing by zero when a player has only ever won or only ever
// lost.
func (s *Stats) AddPrior(drawPrior float64) error {
	for player := range s.Statistics {
		totalOpponentGames := s.CountTotalOpponentGames(player)
		if totalOpponentGames == 0 {
			continue
		}
		prior := drawPrior * 0.25 / totalOpponentGames

		for opponent := 0; opponent < s.NumOpponentsPerPlayer[player]; opponent++ {
			crPlayer := &s.Statistics[player][opponent]
			crOpponent, err := s.FindOpponent(crPlayer.OpponentIdx, player)
			if err != nil {
				return err
			}
			thisPrior := prior * crPlayer.TotalGames
			crPlayer.DIJ += thisPrior
			crPlayer.DJI += thisPrior
			crOpponent.DIJ += thisPrior
			crOpponent.DJI += thisPrior
		}
	}
	return nil
}

// StatsFromInteractions builds the pairwise statistics of players from a
// set of two-player interactions, optionally padding every pairing with a
// small prior number of draws.
func StatsFromInteractions(players []string, interactions []interaction.Interaction, addDrawPrior bool, drawPrior float64) (*Stats, error) {
	indexOf := make(map[string]int, len(players))
	for i, p := range players {
		indexOf[p] = i
	}

	seen := make([][]int, len(players))
	stats := newStats(len(players))

	for _, inter := range interactions {
		if len(inter.Players) != 2 || len(inter.Outcomes) != 2 {
			return nil, fmt.Errorf("bayeselo only accepts 2-player interactions: %w", raterr.ErrArityMismatch)
		}
		p0, ok := indexOf[inter.Players[0]]
		if !ok {
			return nil, fmt.Errorf("player %q: %w", inter.Players[0], raterr.ErrUnknownPlayer)
		}
		p1, ok := indexOf[inter.Players[1]]
		if !ok {
			return nil, fmt.Errorf("player %q: %w", inter.Players[1], raterr.ErrUnknownPlayer)
		}

		if !contains(seen[p0], p1) {
			stats.addOpponent(p0, p1, seen, indexOf)
			stats.addOpponent(p1, p0, seen, indexOf)
		}

		p1Relative := indexIn(seen[p0], p1)
		p0Relative := indexIn(seen[p1], p0)

		o0, o1 := inter.Outcomes[0], inter.Outcomes[1]
		switch {
		case o0 > o1:
			stats.Statistics[p0][p1Relative].WIJ++
			stats.Statistics[p1][p0Relative].WJI++
		case o0 < o1:
			stats.Statistics[p0][p1Relative].LIJ++
			stats.Statistics[p1][p0Relative].LJI++
		default:
			stats.Statistics[p0][p1Relative].DIJ++
			stats.Statistics[p1][p0Relative].DJI++
		}
		stats.Statistics[p0][p1Relative].TotalGames++
		stats.Statistics[p1][p0Relative].TotalGames++
	}

	if addDrawPrior {
		if err := stats.AddPrior(drawPrior); err != nil {
			return nil, err
		}
	}

	return stats, nil
}

func contains(xs []int, v int) bool {
	return indexIn(xs, v) >= 0
}

func indexIn(xs []int, v int) int {
	for i, x := range xs {
		if x == v {
			return i
		}
	}
	return -1
}
