// trueskill/factor.go
package trueskill

import "math"

// Variable is a node in the factor graph: a Gaussian belief plus the last
// message received from each incident factor, so a factor can recover
// "everything except my own message" via division.
type Variable struct {
	Gaussian
	messages map[Factor]Gaussian
}

// NewVariable returns a Variable with the improper (Pi=0, Tau=0) belief.
func NewVariable() *Variable {
	return &Variable{messages: map[Factor]Gaussian{}}
}

// register records that factor has a (initially null) message into this
// variable; factor constructors call this for every variable they touch.
func (v *Variable) register(f Factor) {
	v.messages[f] = Gaussian{}
}

// Set replaces the variable's belief, returning the update's magnitude so
// callers can track EP convergence.
func (v *Variable) Set(value Gaussian) float64 {
	d := v.delta(value)
	v.Gaussian = value
	return d
}

func (v *Variable) delta(other Gaussian) float64 {
	piDelta := math.Abs(v.Pi - other.Pi)
	if math.IsInf(piDelta, 1) {
		return 0
	}
	return math.Max(math.Abs(v.Tau-other.Tau), math.Sqrt(piDelta))
}

// UpdateMessage folds a new message from factor into the variable's belief
// (belief := belief / old_message * new_message) and remembers the new
// message.
func (v *Variable) UpdateMessage(f Factor, pi, tau float64) float64 {
	message := Gaussian{Pi: pi, Tau: tau}
	old := v.messages[f]
	v.messages[f] = message
	return v.Set(v.Gaussian.Div(old).Mul(message))
}

// UpdateValue replaces the variable's belief outright with value, and
// backs out what factor's message into it must have been
// (old_message := value * previous_message / previous_belief).
func (v *Variable) UpdateValue(f Factor, value Gaussian) float64 {
	old := v.messages[f]
	v.messages[f] = value.Mul(old).Div(v.Gaussian)
	return v.Set(value)
}

// Factor is a node in the factor graph that passes messages to and from
// its incident variables. PassUp's index selects which incident variable
// (for factors with more than one, e.g. SumFactor) receives the message;
// factors with a single variable ignore it.
type Factor interface {
	PassDown() (float64, error)
	PassUp(index int) (float64, error)
}

// PriorFactor anchors a player's rating variable to their prior belief,
// inflated by the per-period dynamic variance (tau²) that lets skill
// drift over time.
type PriorFactor struct {
	variable        *Variable
	rating          Gaussian
	dynamicVariance float64
}

// NewPriorFactor builds a PriorFactor and registers it with variable.
func NewPriorFactor(variable *Variable, rating Gaussian, dynamicVariance float64) *PriorFactor {
	f := &PriorFactor{variable: variable, rating: rating, dynamicVariance: dynamicVariance}
	variable.register(f)
	return f
}

func (f *PriorFactor) PassDown() (float64, error) {
	sigma := math.Sqrt(f.rating.Std()*f.rating.Std() + f.dynamicVariance*f.dynamicVariance)
	value := NewGaussian(f.rating.Mu(), sigma)
	return f.variable.UpdateValue(f, value), nil
}

func (f *PriorFactor) PassUp(int) (float64, error) { return 0, nil }

// LikelihoodFactor maps a skill variable to a noisy performance variable
// with variance, typically β² (the "luck" variance of a single game).
type LikelihoodFactor struct {
	mean, value *Variable
	variance    float64
}

// NewLikelihoodFactor builds a LikelihoodFactor and registers it with both
// incident variables.
func NewLikelihoodFactor(mean, value *Variable, variance float64) *LikelihoodFactor {
	f := &LikelihoodFactor{mean: mean, value: value, variance: variance}
	mean.register(f)
	value.register(f)
	return f
}

func (f *LikelihoodFactor) PassDown() (float64, error) {
	msg := f.mean.Gaussian.Div(f.mean.messages[f])
	a := 1.0 / (1.0 + f.variance*msg.Pi)
	return f.value.UpdateMessage(f, a*msg.Pi, a*msg.Tau), nil
}

func (f *LikelihoodFactor) PassUp(int) (float64, error) {
	msg := f.value.Gaussian.Div(f.value.messages[f])
	a := 1.0 / (1.0 + f.variance*msg.Pi)
	return f.mean.UpdateMessage(f, a*msg.Pi, a*msg.Tau), nil
}

// SumFactor combines term variables (e.g. individual performances) into a
// weighted sum variable (e.g. a team performance, or a difference of two
// team performances with weights [1, -1]).
type SumFactor struct {
	sum     *Variable
	terms   []*Variable
	weights []float64
}

// NewSumFactor builds a SumFactor and registers it with the sum and every
// term variable.
func NewSumFactor(sum *Variable, terms []*Variable, weights []float64) *SumFactor {
	f := &SumFactor{sum: sum, terms: terms, weights: weights}
	sum.register(f)
	for _, t := range terms {
		t.register(f)
	}
	return f
}

func (f *SumFactor) PassDown() (float64, error) {
	msgs := make([]Gaussian, len(f.terms))
	for i, t := range f.terms {
		msgs[i] = t.messages[f]
	}
	return f.update(f.sum, f.terms, msgs, f.weights), nil
}

// PassUp recovers term[index] from the sum and the other terms, e.g.
// solving "team performance = sum of member performances" for one member.
func (f *SumFactor) PassUp(index int) (float64, error) {
	weight := f.weights[index]
	weights := make([]float64, len(f.weights))
	for i, w := range f.weights {
		switch {
		case weight == 0:
			weights[i] = 0
		case i == index:
			weights[i] = 1.0 / weight
		default:
			weights[i] = -w / weight
		}
	}

	values := make([]*Variable, len(f.terms))
	copy(values, f.terms)
	values[index] = f.sum

	msgs := make([]Gaussian, len(values))
	for i, v := range values {
		msgs[i] = v.messages[f]
	}
	return f.update(f.terms[index], values, msgs, weights), nil
}

func (f *SumFactor) update(variable *Variable, values []*Variable, msgs []Gaussian, weights []float64) float64 {
	piInv := 0.0
	mu := 0.0
	for i, value := range values {
		div := value.Gaussian.Div(msgs[i])
		mu += weights[i] * div.Mu()
		if math.IsInf(piInv, 1) {
			continue
		}
		if div.Pi == 0 {
			piInv = math.Inf(1)
		} else {
			piInv += weights[i] * weights[i] / div.Pi
		}
	}
	pi := 1.0 / piInv
	tau := pi * mu
	return variable.UpdateMessage(f, pi, tau)
}

// TruncateFactor enforces the observed match outcome (one team's
// performance strictly above, or within a draw margin of, another's) by
// truncating the team-difference variable's Gaussian against a draw/win
// kernel.
type TruncateFactor struct {
	variable   *Variable
	vFunc      func(diff, drawMargin float64) float64
	wFunc      func(diff, drawMargin float64) (float64, error)
	drawMargin float64
}

// NewTruncateFactor builds a TruncateFactor and registers it with
// variable.
func NewTruncateFactor(variable *Variable, vFunc func(float64, float64) float64, wFunc func(float64, float64) (float64, error), drawMargin float64) *TruncateFactor {
	f := &TruncateFactor{variable: variable, vFunc: vFunc, wFunc: wFunc, drawMargin: drawMargin}
	variable.register(f)
	return f
}

func (f *TruncateFactor) PassDown() (float64, error) { return 0, nil }

func (f *TruncateFactor) PassUp(int) (float64, error) {
	div := f.variable.Gaussian.Div(f.variable.messages[f])
	sqrtPi := math.Sqrt(div.Pi)
	diff := div.Tau / sqrtPi
	drawMargin := f.drawMargin * sqrtPi

	v := f.vFunc(diff, drawMargin)
	w, err := f.wFunc(diff, drawMargin)
	if err != nil {
		return 0, err
	}
	denom := 1.0 - w
	pi := div.Pi / denom
	tau := (div.Tau + sqrtPi*v) / denom
	return f.variable.UpdateValue(f, Gaussian{Pi: pi, Tau: tau}), nil
}
