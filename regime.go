package tardis

import "fmt"

// Regime is the perturbation model applied to an orbit.
type Regime int

const (
	// NearEarth uses atmospheric drag and zonal harmonics only.
	NearEarth Regime = iota
	// DeepSpace adds lunar-solar perturbations and, for 12 and 24 hour
	// orbits, geopotential resonance.
	DeepSpace
)

func (r Regime) String() string {
	switch r {
	case NearEarth:
		return "near-earth"
	case DeepSpace:
		return "deep-space"
	default:
		return fmt.Sprintf("Regime(%d)", int(r))
	}
}

// Classify selects the perturbation model for an element set from its
// recovered mean motion. An orbital period of exactly 225 minutes is deep space.
func Classify(el *OrbitalElements, dc DerivedConstants) Regime {
	if el == nil || dc.MeanMotion <= 0 {
		return NearEarth
	}
	return ClassifyPeriod(twoPi / dc.MeanMotion)
}

// ClassifyPeriod selects the perturbation model for an orbital period in minutes.
func ClassifyPeriod(minutes float64) Regime {
	if minutes >= deepSpacePeriod {
		return DeepSpace
	}
	return NearEarth
}
