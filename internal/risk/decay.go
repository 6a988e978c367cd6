package risk

import "math"

// DecayFunc shapes how an incident's influence falls off with distance.
// Input is the distance normalized by the influence radius (0 at the incident,
// 1 at the radius); every function is applied only inside the radius, the
// cutoff itself is handled by the caller.
type DecayFunc string

const (
	DecayLinear      DecayFunc = "linear"
	DecayExponential DecayFunc = "exponential"
	DecayInverse     DecayFunc = "inverse"
	DecayStep        DecayFunc = "step"
)

func (d DecayFunc) Apply(t float64) float64 {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		return 0
	}

	switch d {
	case DecayLinear:
		return 1.0 - t
	case DecayExponential:
		return math.Exp(-2.0 * t)
	case DecayInverse:
		return 1.0 / (1.0 + t)
	case DecayStep:
		return 1.0
	default:
		return 1.0 - t
	}
}
