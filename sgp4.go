package tardis

import (
	"math"
	"time"
)

// StateVector is a propagated position and velocity in the TEME frame.
type StateVector struct {
	Time              time.Time
	MinutesSinceEpoch float64
	Position          Vector3 // km
	Velocity          Vector3 // km/s
}

// Propagate computes the TEME state tsince minutes after the element epoch.
// Negative values propagate backwards. The session is not modified; a failed
// call returns a *PropagationError and later calls are unaffected.
func (s *Session) Propagate(tsince float64) (StateVector, error) {
	const x2o3 = 2.0 / 3.0
	g := s.grav

	// secular gravity and atmospheric drag
	t := tsince
	m := meanState{
		t:     t,
		xmdf:  s.mo + s.mdot*t,
		argpm: s.argpo + s.argpdot*t,
		nodem: s.nodeo + s.nodedot*t + s.nodecf*t*t,
		em:    s.ecco,
		inclm: s.inclo,
		nm:    s.no,
		tempa: 1.0 - s.cc1*t,
		tempe: s.bstar * s.cc4 * t,
		templ: s.t2cof * t * t,
	}
	m.mm = m.xmdf
	s.model.secular(s, &m)

	if m.nm <= 0.0 {
		return StateVector{}, &PropagationError{Kind: ModelLimits, Tsince: t, Reason: ReasonMeanMotion, Value: m.nm}
	}
	if m.tempa <= 0.0 {
		return StateVector{}, &PropagationError{Kind: Decayed, Tsince: t, Reason: ReasonDragTerm, Value: m.tempa}
	}
	am := math.Pow(g.xke/m.nm, x2o3) * m.tempa * m.tempa
	if am < 1.0 {
		return StateVector{}, &PropagationError{Kind: Decayed, Tsince: t, Reason: ReasonSemiMajorAxis, Value: am}
	}
	m.nm = g.xke / math.Pow(am, 1.5)
	m.em -= m.tempe
	if m.em >= 1.0 || m.em < -0.001 {
		return StateVector{}, &PropagationError{Kind: ModelLimits, Tsince: t, Reason: ReasonEccentricity, Value: m.em}
	}
	if m.em < eccentricityFloor {
		m.em = eccentricityFloor
	}
	m.mm += s.no * m.templ
	xlm := m.mm + m.argpm + m.nodem
	m.nodem = math.Mod(m.nodem, twoPi)
	m.argpm = math.Mod(m.argpm, twoPi)
	xlm = math.Mod(xlm, twoPi)
	m.mm = math.Mod(xlm-m.argpm-m.nodem, twoPi)

	p, err := s.model.periodics(s, &m)
	if err != nil {
		return StateVector{}, err
	}

	// long period periodics
	axnl := p.ep * math.Cos(p.argpp)
	temp := 1.0 / (am * (1.0 - p.ep*p.ep))
	aynl := p.ep*math.Sin(p.argpp) + temp*p.aycof
	xl := p.mp + p.argpp + p.nodep + temp*p.xlcof*axnl

	u := math.Mod(xl-p.nodep, twoPi)
	sineo1, coseo1, n, ok := solveKepler(u, axnl, aynl)
	if !ok {
		return StateVector{}, &PropagationError{Kind: NumericalDivergence, Tsince: t, Reason: ReasonKeplerIterations, Value: float64(n)}
	}

	// short period preliminary quantities
	ecose := axnl*coseo1 + aynl*sineo1
	esine := axnl*sineo1 - aynl*coseo1
	el2 := axnl*axnl + aynl*aynl
	pl := am * (1.0 - el2)
	if pl < 0.0 {
		return StateVector{}, &PropagationError{Kind: ModelLimits, Tsince: t, Reason: ReasonSemiLatusRectum, Value: pl}
	}

	rl := am * (1.0 - ecose)
	rdotl := math.Sqrt(am) * esine / rl
	rvdotl := math.Sqrt(pl) / rl
	betal := math.Sqrt(1.0 - el2)
	temp = esine / (1.0 + betal)
	sinu := am / rl * (sineo1 - aynl - axnl*temp)
	cosu := am / rl * (coseo1 - axnl + aynl*temp)
	su := math.Atan2(sinu, cosu)
	sin2u := (cosu + cosu) * sinu
	cos2u := 1.0 - 2.0*sinu*sinu
	temp = 1.0 / pl
	temp1 := 0.5 * g.j2 * temp
	temp2 := temp1 * temp

	// short period periodics
	mrt := rl*(1.0-1.5*temp2*betal*p.con41) + 0.5*temp1*p.x1mth2*cos2u
	su -= 0.25 * temp2 * p.x7thm1 * sin2u
	xnode := p.nodep + 1.5*temp2*p.cosip*sin2u
	xinc := p.inclp + 1.5*temp2*p.cosip*p.sinip*cos2u
	mvt := rdotl - m.nm*temp1*p.x1mth2*sin2u/g.xke
	rvdot := rvdotl + m.nm*temp1*(p.x1mth2*cos2u+1.5*p.con41)/g.xke

	// orientation vectors
	sinsu, cossu := math.Sincos(su)
	snod, cnod := math.Sincos(xnode)
	sini, cosi := math.Sincos(xinc)
	xmx := -snod * cosi
	xmy := cnod * cosi
	ux := xmx*sinsu + cnod*cossu
	uy := xmy*sinsu + snod*cossu
	uz := sini * sinsu
	vx := xmx*cossu - cnod*sinsu
	vy := xmy*cossu - snod*sinsu
	vz := sini * cossu

	vkmpersec := g.radius * g.xke / 60.0
	sv := StateVector{
		Time:              s.elements.Epoch.AddMinutes(t).Time(),
		MinutesSinceEpoch: t,
		Position: Vector3{
			X: mrt * ux * g.radius,
			Y: mrt * uy * g.radius,
			Z: mrt * uz * g.radius,
		},
		Velocity: Vector3{
			X: (mvt*ux + rvdot*vx) * vkmpersec,
			Y: (mvt*uy + rvdot*vy) * vkmpersec,
			Z: (mvt*uz + rvdot*vz) * vkmpersec,
		},
	}

	if mrt < 1.0 {
		return StateVector{}, &PropagationError{Kind: Decayed, Tsince: t, Reason: ReasonRadius, Value: mrt}
	}
	if !sv.Position.finite() || !sv.Velocity.finite() {
		return StateVector{}, &PropagationError{Kind: NumericalDivergence, Tsince: t, Reason: ReasonNonFiniteSolution, Value: mrt}
	}
	return sv, nil
}

// PropagateDuration propagates to epoch + d.
func (s *Session) PropagateDuration(d time.Duration) (StateVector, error) {
	return s.Propagate(d.Minutes())
}
