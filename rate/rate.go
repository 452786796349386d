// rate/rate.go
// Package rate holds the numeric representations of a rating and the
// expected-outcome operator each rating family exposes.
package rate

import "math"

// Rate is the base rating record: a mean and a standard deviation.
type Rate struct {
	Mu  float64
	Std float64
}

// New returns a Rate with the given mean and zero standard deviation,
// matching poprank's `Rate(value)` single-argument construction used by
// the Nash average and Laplacian modules.
func New(mu float64) Rate {
	return Rate{Mu: mu}
}

// EloRate extends Rate with the base and spread of the logistic curve used
// to turn a rating difference into a win probability.
type EloRate struct {
	Rate
	Base   float64
	Spread float64
}

// DefaultBase and DefaultSpread are the standard Elo constants: a 400-point
// advantage gives 10-to-1 odds.
const (
	DefaultBase   = 10.0
	DefaultSpread = 400.0
)

// NewElo returns an EloRate with the standard base and spread.
func NewElo(mu, std float64) EloRate {
	return EloRate{Rate: Rate{Mu: mu, Std: std}, Base: DefaultBase, Spread: DefaultSpread}
}

// ExpectedOutcome returns the probability that this rating beats other,
// sigma((self.Mu - other.Mu) / spread, base).
func (e EloRate) ExpectedOutcome(other EloRate) float64 {
	return sigmoidBase((e.Mu-other.Mu)/e.Spread, e.Base)
}

// sigmoidBase computes 1/(1+base**(-x)) the numerically stable way, via
// exp(-logaddexp(0, -x*ln(base))).
func sigmoidBase(x, base float64) float64 {
	z := -x * math.Log(base)
	// logaddexp(0, z) = max(0,z) + log1p(exp(-|z-0|... )) stable form:
	m := math.Max(0, z)
	lae := m + math.Log(math.Exp(0-m)+math.Exp(z-m))
	return math.Exp(-lae)
}

// GlickoRate extends EloRate with the number of rating periods elapsed
// since the player's last recorded competition.
type GlickoRate struct {
	EloRate
	TimeSinceLastCompetition int
}

// NewGlicko returns a GlickoRate at the standard Elo base/spread.
func NewGlicko(mu, std float64) GlickoRate {
	return GlickoRate{EloRate: NewElo(mu, std)}
}

// Glicko2Rate extends GlickoRate with a volatility term.
type Glicko2Rate struct {
	GlickoRate
	Volatility float64
}

// NewGlicko2 returns a Glicko2Rate with the default volatility of 0.06.
func NewGlicko2(mu, std float64) Glicko2Rate {
	return Glicko2Rate{GlickoRate: NewGlicko(mu, std), Volatility: 0.06}
}

// TrueSkillRate is a plain Rate defaulted to TrueSkill's standard prior:
// mean 25, standard deviation 25/3.
type TrueSkillRate = Rate

const (
	// TrueSkillDefaultMu is the default prior mean.
	TrueSkillDefaultMu = 25.0
	// TrueSkillDefaultStd is the default prior standard deviation.
	TrueSkillDefaultStd = 25.0 / 3.0
)

// NewTrueSkill returns a TrueSkillRate at the default prior.
func NewTrueSkill() TrueSkillRate {
	return Rate{Mu: TrueSkillDefaultMu, Std: TrueSkillDefaultStd}
}

// MultidimEloRate extends Rate with the low-rank antisymmetric component
// used by mElo to capture non-transitive dominance. Cyclic has length 2*K.
type MultidimEloRate struct {
	Rate
	K      int
	Cyclic []float64
}

// NewMultidimElo returns a MultidimEloRate of dimension k, with the cyclic
// vector initialized to all-ones (matching the reference implementation's
// initial C matrix, see original_source/functional/melo.py).
func NewMultidimElo(mu float64, k int) MultidimEloRate {
	cyclic := make([]float64, 2*k)
	for i := range cyclic {
		cyclic[i] = 1
	}
	return MultidimEloRate{Rate: Rate{Mu: mu}, K: k, Cyclic: cyclic}
}

// ExpectedOutcome returns P(self beats other) = sigmoid(mu_self - mu_other
// + cyclic_self^T * Omega * cyclic_other), where Omega is the 2k x 2k
// antisymmetric block matrix with +1/-1 off the diagonal of each 2x2
// block. This is a read-only prediction helper; the melo package's
// iterative fit expresses the same Omega application as a matrix-library
// multiply (see melo.buildOmega) since it runs it far more often.
func (m MultidimEloRate) ExpectedOutcome(other MultidimEloRate) float64 {
	adjustment := 0.0
	for i := 0; i < m.K; i++ {
		// Omega's (2i, 2i+1) block contributes c_self[2i]*c_other[2i+1]
		// and -c_self[2i+1]*c_other[2i].
		adjustment += m.Cyclic[2*i]*other.Cyclic[2*i+1] - m.Cyclic[2*i+1]*other.Cyclic[2*i]
	}
	return sigmoidBase(m.Mu-other.Mu+adjustment, math.E)
}
