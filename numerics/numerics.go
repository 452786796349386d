// numerics/numerics.go
// Package numerics holds the small pieces of numeric machinery shared by
// the rating modules: a stable sigmoid, the standard normal CDF/PDF used
// by TrueSkill's truncation factors, and the two external-collaborator
// interfaces (NullSpaceSolver, ZeroSumSolver) the Laplacian and Nash
// modules depend on.
package numerics

import "math"

// Sigmoid returns 1/(1+base**(-x)), computed the numerically stable way
// via a logaddexp-style reduction. Used by the glicko and melo packages.
func Sigmoid(x, base float64) float64 {
	z := -x * math.Log(base)
	m := math.Max(0, z)
	lae := m + math.Log(math.Exp(0-m)+math.Exp(z-m))
	return math.Exp(-lae)
}

const invSqrt2 = 0.7071067811865476 // 1/sqrt(2)
const invSqrt2Pi = 0.3989422804014327 // 1/sqrt(2*pi)

// NormalPDF is the standard normal density phi(x).
func NormalPDF(x float64) float64 {
	return invSqrt2Pi * math.Exp(-0.5*x*x)
}

// NormalCDF is the standard normal cumulative distribution Phi(x),
// computed from the error function.
func NormalCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x*invSqrt2)
}

// InverseNormalCDF is the standard normal quantile function Phi^-1(p),
// computed from the inverse error function.
func InverseNormalCDF(p float64) float64 {
	return math.Sqrt2 * math.Erfinv(2*p-1)
}
