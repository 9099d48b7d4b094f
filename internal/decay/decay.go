// Package decay computes continuous exponential decay of a quantity from a
// per-second decay rate.
package decay

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrDomain is returned by ComputeStrict when inputs fall outside the range
// where the formula yields a finite, meaningful amount.
var ErrDomain = errors.New("decay: input outside valid domain")

// Compute returns initialAmount × 2^(elapsedTime × log2(1 − decayRate)).
//
// Inputs are not validated. A rate of 1 drives the amount to 0 for any
// positive elapsed time; rates above 1 yield NaN.
func Compute(initialAmount, decayRate, elapsedTime float64) float64 {
	return initialAmount * math.Exp2(elapsedTime*math.Log2(1-decayRate))
}

// ComputeStrict is Compute with the domain checked first.
func ComputeStrict(initialAmount, decayRate, elapsedTime float64) (float64, error) {
	if err := checkDomain(initialAmount, decayRate, elapsedTime); err != nil {
		return 0, err
	}
	return Compute(initialAmount, decayRate, elapsedTime), nil
}

func checkDomain(initialAmount, decayRate, elapsedTime float64) error {
	for _, in := range []struct {
		name string
		v    float64
	}{
		{"initialAmount", initialAmount},
		{"decayRate", decayRate},
		{"elapsedTime", elapsedTime},
	} {
		if math.IsNaN(in.v) || math.IsInf(in.v, 0) {
			return fmt.Errorf("%w: %s is %s", ErrDomain, in.name, FormatNumber(in.v))
		}
	}
	if decayRate >= 1 {
		return fmt.Errorf("%w: decayRate %s must be below 1", ErrDomain, FormatNumber(decayRate))
	}
	return nil
}

// Direct evaluates initialAmount × (1 − decayRate)^elapsedTime.
func Direct(initialAmount, decayRate, elapsedTime float64) float64 {
	return initialAmount * math.Pow(1-decayRate, elapsedTime)
}

// HalfLife returns the elapsed time after which half the amount remains.
// A zero rate never halves and returns +Inf.
func HalfLife(decayRate float64) float64 {
	l := math.Log2(1 - decayRate)
	if l == 0 {
		return math.Inf(1)
	}
	return -1 / l
}

// Params are the inputs of one evaluation.
type Params struct {
	InitialAmount float64 `json:"initialAmount" yaml:"initial_amount"`
	DecayRate     float64 `json:"decayRate" yaml:"decay_rate"`
	ElapsedTime   float64 `json:"elapsedTime" yaml:"elapsed_time"`
}

// Result is an evaluated Params.
type Result struct {
	Params
	DecayedAmount float64 `json:"decayedAmount"`
}

// Evaluate runs Compute on p.
func (p Params) Evaluate() Result {
	return Result{Params: p, DecayedAmount: Compute(p.InitialAmount, p.DecayRate, p.ElapsedTime)}
}

// EvaluateStrict runs ComputeStrict on p.
func (p Params) EvaluateStrict() (Result, error) {
	v, err := ComputeStrict(p.InitialAmount, p.DecayRate, p.ElapsedTime)
	if err != nil {
		return Result{}, err
	}
	return Result{Params: p, DecayedAmount: v}, nil
}

// String renders the result as a single labeled line.
func (r Result) String() string {
	return Labeled("decayedAmount", FormatNumber(r.DecayedAmount))
}

// Labeled renders one key-value pair in object-literal form.
func Labeled(key, value string) string {
	return "{ " + key + ": " + value + " }"
}

// FormatNumber renders v with the shortest digits that round-trip.
// Magnitudes in [1e-6, 1e21) print in plain decimal notation, everything
// else in exponent notation without zero padding (1e-7, 1e+21).
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0"
	}
	abs := math.Abs(v)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	s := strconv.FormatFloat(v, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	return mant + "e" + sign + digits
}
