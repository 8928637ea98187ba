package tardis

import "math"

// Mathematical and physical constants
const (
	twoPi         = 2 * math.Pi
	deg2rad       = math.Pi / 180.0
	rad2deg       = 180.0 / math.Pi
	minutesPerDay = 1440.0
	secondsPerDay = 86400.0

	// xpdotp converts rev/day to rad/min.
	xpdotp = minutesPerDay / twoPi

	// Orbits with a period at or above this many minutes use the deep-space model.
	deepSpacePeriod = 225.0

	// jd1950 is the origin of the sgp4init epoch (0 Jan 1950 0h UTC).
	jd1950  = 2433281.5
	jdJ2000 = 2451545.0

	// WGS-84 Earth model constants, used for geodetic output
	reWGS84 = 6378.137            // Earth's equatorial radius in km
	fWGS84  = 1.0 / 298.257223563 // Earth's flattening factor

	// OmegaEarth is the Earth rotation rate in rad/s used for TEME to ECEF velocities.
	OmegaEarth = 7.292115146706979e-5

	// Kepler iteration limits
	keplerTolerance     = 1.0e-12
	keplerMaxIterations = 32
	keplerMaxStep       = 0.95

	// Smallest eccentricity carried through propagation
	eccentricityFloor = 1.0e-6
)

// Vector3 is a Cartesian triple in kilometers or kilometers per second
// unless stated otherwise.
type Vector3 struct {
	X, Y, Z float64
}
