package tardis

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/nutation"
	"gonum.org/v1/gonum/mat"
)

const arcsec = deg2rad / 3600.0

// ECEFState is an Earth-fixed position and velocity in meters and meters
// per second.
type ECEFState struct {
	Time     time.Time
	Position Vector3 // m
	Velocity Vector3 // m/s
}

// ECIState is a position and velocity referred to the J2000 mean equator and
// equinox, in km and km/s.
type ECIState struct {
	Time     time.Time
	Position Vector3
	Velocity Vector3
}

// ECEF rotates the state by the Greenwich mean sidereal time at its own time
// and removes the velocity of the rotating frame.
func (sv StateVector) ECEF() ECEFState {
	return TEMEToECEF(sv.Position, sv.Velocity, sv.Time)
}

// TEMEToECEF converts a TEME position (km) and velocity (km/s) at t into
// the Earth-fixed frame, returning meters and meters per second. Polar motion
// is ignored.
func TEMEToECEF(r, v Vector3, t time.Time) ECEFState {
	rot := r3(GMST(ToJulian(t)))
	rp := mulVec(rot, r)
	omega := Vector3{Z: OmegaEarth}
	vp := mulVec(rot, v).Sub(omega.Cross(rp))
	return ECEFState{
		Time:     t,
		Position: rp.Scale(1000),
		Velocity: vp.Scale(1000),
	}
}

// TEME rotates an Earth-fixed state back to TEME in km and km/s.
func (e ECEFState) TEME() (r, v Vector3) {
	rot := r3(-GMST(ToJulian(e.Time)))
	rp := e.Position.Scale(1e-3)
	omega := Vector3{Z: OmegaEarth}
	vp := e.Velocity.Scale(1e-3).Add(omega.Cross(rp))
	return mulVec(rot, rp), mulVec(rot, vp)
}

// ECI converts the state to the J2000 frame.
func (sv StateVector) ECI() ECIState {
	m := temeToJ2000(ToJulian(sv.Time))
	return ECIState{
		Time:     sv.Time,
		Position: mulVec(m, sv.Position),
		Velocity: mulVec(m, sv.Velocity),
	}
}

// ToECI is the function form of StateVector.ECI.
func ToECI(sv StateVector) ECIState { return sv.ECI() }

// TEME converts a J2000 state back to TEME.
func (e ECIState) TEME() (r, v Vector3) {
	m := temeToJ2000(ToJulian(e.Time)).T()
	return mulVec(m, e.Position), mulVec(m, e.Velocity)
}

// temeToJ2000 returns the rotation taking TEME vectors at jd to J2000 through
// the true and mean of date frames, using IAU-76 precession and IAU-80
// nutation. UTC stands in for TT.
func temeToJ2000(jd JulianDate) *mat.Dense {
	jde := jd.Float()
	dpsi, deps := nutation.Nutation(jde)
	eps0 := nutation.MeanObliquity(jde).Rad()
	eps := eps0 + deps.Rad()

	// equation of the equinoxes without the lunar node terms
	eqe := dpsi.Rad() * math.Cos(eps0)

	t := ((jd.Day - jdJ2000) + jd.Fraction) / 36525.0
	t2 := t * t
	t3 := t2 * t
	zeta := (2306.2181*t + 0.30188*t2 + 0.017998*t3) * arcsec
	theta := (2004.3109*t - 0.42665*t2 - 0.041833*t3) * arcsec
	z := (2306.2181*t + 1.09468*t2 + 0.018203*t3) * arcsec

	prec := chain(r3(-z), r2(theta), r3(-zeta))
	nut := chain(r1(-eps), r3(-dpsi.Rad()), r1(eps0))
	return chain(prec.T(), nut.T(), r3(-eqe))
}
