package tardis

import "math"

// solveKepler solves Kepler's equation in the Lyddane variables
// axnl = e·cos(ω), aynl = e·sin(ω), starting from u = mean longitude minus
// node. It returns the sine and cosine of the eccentric longitude at the last
// iterate. Each Newton step is clamped to ±0.95 rad and ok is false when the
// step did not fall below tolerance within the iteration bound.
func solveKepler(u, axnl, aynl float64) (sineo1, coseo1 float64, iterations int, ok bool) {
	eo1 := u
	for iterations = 1; iterations <= keplerMaxIterations; iterations++ {
		sineo1 = math.Sin(eo1)
		coseo1 = math.Cos(eo1)
		tem5 := 1.0 - coseo1*axnl - sineo1*aynl
		tem5 = (u - aynl*coseo1 + axnl*sineo1 - eo1) / tem5
		if math.Abs(tem5) >= keplerMaxStep {
			tem5 = math.Copysign(keplerMaxStep, tem5)
		}
		eo1 += tem5
		if math.Abs(tem5) < keplerTolerance {
			return sineo1, coseo1, iterations, true
		}
	}
	return sineo1, coseo1, keplerMaxIterations, false
}
