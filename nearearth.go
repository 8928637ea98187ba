package tardis

import "math"

// nearEarth carries the higher order drag terms of orbits with a period
// below 225 minutes. When simple is set (perigee below 220 km) only the
// terms shared with the deep-space model are applied.
type nearEarth struct {
	simple bool

	eta, omgcof, xmcof float64
	delmo, sinmao, cc5 float64
	d2, d3, d4         float64
	t3cof, t4cof       float64
	t5cof              float64
}

func (ne *nearEarth) regime() Regime { return NearEarth }

func (ne *nearEarth) secular(s *Session, m *meanState) {
	if ne.simple {
		return
	}
	t := m.t
	delomg := ne.omgcof * t
	delm := ne.xmcof * (math.Pow(1.0+ne.eta*math.Cos(m.xmdf), 3) - ne.delmo)
	temp := delomg + delm
	m.mm = m.xmdf + temp
	m.argpm -= temp

	t2 := t * t
	t3 := t2 * t
	t4 := t3 * t
	m.tempa = m.tempa - ne.d2*t2 - ne.d3*t3 - ne.d4*t4
	m.tempe += s.bstar * ne.cc5 * (math.Sin(m.mm) - ne.sinmao)
	m.templ += ne.t3cof*t3 + t4*(ne.t4cof+t*ne.t5cof)
}

func (ne *nearEarth) periodics(s *Session, m *meanState) (periodicState, error) {
	return periodicState{
		ep:                   m.em,
		inclp:                m.inclm,
		nodep:                m.nodem,
		argpp:                m.argpm,
		mp:                   m.mm,
		periodicCoefficients: s.epochPeriodics,
	}, nil
}
