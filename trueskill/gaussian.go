// trueskill/gaussian.go
// Package trueskill implements the TrueSkill rating system as expectation
// propagation over a Gaussian factor graph, ported from the (π, τ) message
// representation used by sublee/trueskill and Moserware's C# TrueSkill
// port of the original Microsoft Research paper.
package trueskill

import "math"

// Gaussian is a normal distribution in canonical (precision, precision-
// adjusted-mean) form: Pi = 1/σ², Tau = Pi*μ. Canonical form turns the
// factor graph's multiply/divide message combination into plain addition
// and subtraction of Pi and Tau.
type Gaussian struct {
	Pi  float64
	Tau float64
}

// NewGaussian builds a canonical Gaussian from the usual (mu, sigma) form.
func NewGaussian(mu, sigma float64) Gaussian {
	pi := 1.0 / (sigma * sigma)
	return Gaussian{Pi: pi, Tau: pi * mu}
}

// Mu returns the distribution's mean, 0 for the improper Gaussian (Pi=0).
func (g Gaussian) Mu() float64 {
	if g.Pi == 0 {
		return 0
	}
	return g.Tau / g.Pi
}

// Std returns the distribution's standard deviation.
func (g Gaussian) Std() float64 {
	return math.Sqrt(1.0 / g.Pi)
}

// Mul combines two Gaussian messages (canonical-form multiplication is
// addition of Pi and Tau).
func (g Gaussian) Mul(o Gaussian) Gaussian {
	return Gaussian{Pi: g.Pi + o.Pi, Tau: g.Tau + o.Tau}
}

// Div divides one Gaussian message by another (canonical-form division is
// subtraction of Pi and Tau).
func (g Gaussian) Div(o Gaussian) Gaussian {
	return Gaussian{Pi: g.Pi - o.Pi, Tau: g.Tau - o.Tau}
}
