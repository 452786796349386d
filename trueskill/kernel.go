// trueskill/kernel.go
package trueskill

import (
	"fmt"
	"math"
	"sort"

	"github.com/ratingkit/poprank/numerics"
	"github.com/ratingkit/poprank/raterr"
)

// vWin is the "V" truncation kernel for a decisive (non-draw) outcome: the
// mean shift a Gaussian undergoes once truncated to the region where the
// winner's performance exceeds the loser's by more than drawMargin.
func vWin(diff, drawMargin float64) float64 {
	x := diff - drawMargin
	denom := numerics.NormalCDF(x)
	if denom == 0 {
		return -x
	}
	return numerics.NormalPDF(x) / denom
}

// wWin is the matching "W" kernel (a variance-shrinkage factor). It must
// land strictly inside (0, 1); values outside that range indicate the
// truncation is numerically degenerate.
func wWin(diff, drawMargin float64) (float64, error) {
	x := diff - drawMargin
	v := vWin(diff, drawMargin)
	w := v * (v + x)
	if w > 0 && w < 1 {
		return w, nil
	}
	return 0, fmt.Errorf("trueskill win truncation produced w=%v outside (0,1): %w", w, raterr.ErrNumericFailure)
}

// vDraw is the "V" truncation kernel for a drawn outcome: the mean shift
// once truncated to the symmetric region [-drawMargin, drawMargin].
func vDraw(diff, drawMargin float64) float64 {
	absDiff := math.Abs(diff)
	a := drawMargin - absDiff
	b := -drawMargin - absDiff
	denom := numerics.NormalCDF(a) - numerics.NormalCDF(b)
	numer := numerics.NormalPDF(b) - numerics.NormalPDF(a)

	sign := 1.0
	if diff < 0 {
		sign = -1.0
	}
	if denom == 0 {
		return a * sign
	}
	return (numer / denom) * sign
}

// wDraw is the matching "W" kernel for a drawn outcome.
func wDraw(diff, drawMargin float64) (float64, error) {
	absDiff := math.Abs(diff)
	a := drawMargin - absDiff
	b := -drawMargin - absDiff
	denom := numerics.NormalCDF(a) - numerics.NormalCDF(b)
	if denom == 0 {
		return 0, fmt.Errorf("trueskill draw truncation denominator vanished: %w", raterr.ErrNumericFailure)
	}
	v := vDraw(absDiff, drawMargin)
	return v*v + (a*numerics.NormalPDF(a)-b*numerics.NormalPDF(b))/denom, nil
}

// drawMargin returns the performance-difference margin within which a
// match between teams of size teamSizeA and teamSizeB counts as a draw,
// derived from the configured draw probability.
func drawMargin(drawProbability float64, teamSizeA, teamSizeB int, beta float64) float64 {
	quantile := numerics.InverseNormalCDF((drawProbability + 1) / 2)
	return quantile * math.Sqrt(float64(teamSizeA+teamSizeB)) * beta
}

// ranksFromScores converts raw scores (higher is better) into 1-based
// competition ranks: a stable descending sort with ties collapsed, so
// tied scores share the rank of their group and the next distinct score
// resumes counting from the number of distinct scores seen so far, not
// the number of entries.
func ranksFromScores(scores []float64) []int {
	unique := append([]float64(nil), scores...)
	sort.Sort(sort.Reverse(sort.Float64Slice(unique)))
	dedup := unique[:0]
	for i, s := range unique {
		if i == 0 || s != dedup[len(dedup)-1] {
			dedup = append(dedup, s)
		}
	}

	rankOf := make(map[float64]int, len(dedup))
	for i, s := range dedup {
		rankOf[s] = i + 1
	}

	ranks := make([]int, len(scores))
	for i, s := range scores {
		ranks[i] = rankOf[s]
	}
	return ranks
}
