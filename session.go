package tardis

import (
	"math"
	"time"
)

// DerivedConstants are computed once from an element set when a session is
// created.
type DerivedConstants struct {
	MeanMotion      float64 // recovered (un-Kozai) mean motion, rad/min
	SemiMajorAxis   float64 // earth radii
	SemiMajorAxisKm float64
	PerigeeAltitude float64 // km above the equatorial radius
	ApogeeAltitude  float64 // km above the equatorial radius
	Period          float64 // minutes
	Regime          Regime
}

// Option configures a Session.
type Option func(*sessionOptions)

type sessionOptions struct {
	gravity GravityModel
	opsMode OpsMode
}

// WithGravityModel selects the gravity constants. The default is WGS72.
func WithGravityModel(g GravityModel) Option {
	return func(o *sessionOptions) { o.gravity = g }
}

// WithOpsMode selects the AFSPC or improved operation mode. The default is
// OpsImproved.
func WithOpsMode(m OpsMode) Option {
	return func(o *sessionOptions) { o.opsMode = m }
}

// Session binds one element set to everything the propagator derives from it.
// It is never modified after NewSession returns, so Propagate may be called
// from any number of goroutines.
type Session struct {
	elements *OrbitalElements
	derived  DerivedConstants
	gravity  GravityModel
	opsMode  OpsMode
	grav     gravityConstants

	// epoch elements
	ecco, inclo, nodeo, argpo, mo float64
	no, bstar                     float64

	// secular rates and drag coefficients shared by both regimes
	mdot, argpdot, nodedot, nodecf float64
	cc1, cc4, t2cof                float64

	// short-period coefficients at the epoch inclination
	epochPeriodics periodicCoefficients

	model perturbation
}

// perturbation is implemented by the near-earth and deep-space variants.
// The variant is chosen once, in NewSession.
type perturbation interface {
	regime() Regime
	// secular applies the variant's secular terms to m.
	secular(s *Session, m *meanState)
	// periodics returns the elements the short-period terms start from.
	periodics(s *Session, m *meanState) (periodicState, error)
}

// meanState holds the mean elements at a query time.
type meanState struct {
	t                   float64
	xmdf                float64
	mm, argpm, nodem    float64
	em, inclm, nm       float64
	tempa, tempe, templ float64
}

type periodicCoefficients struct {
	sinip, cosip          float64
	con41, x1mth2, x7thm1 float64
	xlcof, aycof          float64
}

// periodicState holds the elements after long-period lunar-solar terms.
type periodicState struct {
	ep, inclp, nodep, argpp, mp float64
	periodicCoefficients
}

func newPeriodicCoefficients(incl, j3oj2 float64) periodicCoefficients {
	const temp4 = 1.5e-12
	c := periodicCoefficients{sinip: math.Sin(incl), cosip: math.Cos(incl)}
	cosisq := c.cosip * c.cosip
	c.con41 = 3.0*cosisq - 1.0
	c.x1mth2 = 1.0 - cosisq
	c.x7thm1 = 7.0*cosisq - 1.0
	c.aycof = -0.5 * j3oj2 * c.sinip
	den := 1.0 + c.cosip
	if math.Abs(den) <= temp4 {
		den = temp4
	}
	c.xlcof = -0.25 * j3oj2 * c.sinip * (3.0 + 5.0*c.cosip) / den
	return c
}

// NewSession validates el and computes the constants the propagator needs.
// It fails with a *SessionError when the elements cannot be propagated,
// including at their own epoch.
func NewSession(el *OrbitalElements, opts ...Option) (*Session, error) {
	if el == nil {
		return nil, &SessionError{Reason: "nil elements"}
	}
	o := sessionOptions{gravity: WGS72, opsMode: OpsImproved}
	for _, opt := range opts {
		opt(&o)
	}
	grav, err := o.gravity.constants()
	if err != nil {
		return nil, &SessionError{CatalogNumber: el.CatalogNumber, Reason: "gravity model", Err: err}
	}

	switch {
	case !(el.Eccentricity >= 0 && el.Eccentricity < 1):
		return nil, &SessionError{CatalogNumber: el.CatalogNumber, Reason: "eccentricity outside [0, 1)"}
	case !(el.MeanMotion > 0) || math.IsInf(el.MeanMotion, 0):
		return nil, &SessionError{CatalogNumber: el.CatalogNumber, Reason: "mean motion not positive"}
	case !(el.Inclination >= 0 && el.Inclination <= math.Pi):
		return nil, &SessionError{CatalogNumber: el.CatalogNumber, Reason: "inclination outside [0, π]"}
	}

	s := &Session{
		elements: el,
		gravity:  o.gravity,
		opsMode:  o.opsMode,
		grav:     grav,
		ecco:     el.Eccentricity,
		inclo:    el.Inclination,
		nodeo:    el.RightAscension,
		argpo:    el.ArgOfPerigee,
		mo:       el.MeanAnomaly,
		bstar:    el.BStar,
	}
	s.initialize(el.MeanMotion)

	if a := s.derived.SemiMajorAxis; math.IsNaN(a) || math.IsInf(a, 0) || a <= 0 {
		return nil, &SessionError{CatalogNumber: el.CatalogNumber, Reason: "semi-major axis not finite"}
	}
	if _, err := s.Propagate(0); err != nil {
		return nil, &SessionError{CatalogNumber: el.CatalogNumber, Reason: "propagation at epoch failed", Err: err}
	}
	return s, nil
}

// initialize recovers the un-Kozai mean motion and computes the secular and
// drag coefficients, then builds the regime specific variant.
func (s *Session) initialize(noKozai float64) {
	const x2o3 = 2.0 / 3.0
	g := s.grav

	// recover original mean motion and semi-major axis
	eccsq := s.ecco * s.ecco
	omeosq := 1.0 - eccsq
	rteosq := math.Sqrt(omeosq)
	cosio := math.Cos(s.inclo)
	sinio := math.Sin(s.inclo)
	cosio2 := cosio * cosio

	ak := math.Pow(g.xke/noKozai, x2o3)
	d1 := 0.75 * g.j2 * (3.0*cosio2 - 1.0) / (rteosq * omeosq)
	del := d1 / (ak * ak)
	adel := ak * (1.0 - del*del - del*(1.0/3.0+134.0*del*del/81.0))
	del = d1 / (adel * adel)
	s.no = noKozai / (1.0 + del)

	ao := math.Pow(g.xke/s.no, x2o3)
	po := ao * omeosq
	con42 := 1.0 - 5.0*cosio2
	con41 := -con42 - cosio2 - cosio2
	posq := po * po
	rp := ao * (1.0 - s.ecco)

	epoch := s.elements.Epoch.since1950()
	var gsto float64
	if s.opsMode == OpsAFSPC {
		gsto = gmstAFSPC(epoch)
	} else {
		gsto = GMST(s.elements.Epoch)
	}

	a := math.Pow(s.no*g.tumin, -x2o3)
	s.derived = DerivedConstants{
		MeanMotion:      s.no,
		SemiMajorAxis:   a,
		SemiMajorAxisKm: a * g.radius,
		PerigeeAltitude: (a*(1.0-s.ecco) - 1.0) * g.radius,
		ApogeeAltitude:  (a*(1.0+s.ecco) - 1.0) * g.radius,
		Period:          twoPi / s.no,
	}
	s.derived.Regime = Classify(s.elements, s.derived)

	// perigee below 220 km uses the simplified drag equations
	ne := &nearEarth{simple: rp < 220.0/g.radius+1.0}

	ss := 78.0/g.radius + 1.0
	qzms2t := math.Pow((120.0-78.0)/g.radius, 4)
	sfour := ss
	qzms24 := qzms2t
	perige := (rp - 1.0) * g.radius
	if perige < 156.0 {
		sfour = perige - 78.0
		if perige < 98.0 {
			sfour = 20.0
		}
		qzms24 = math.Pow((120.0-sfour)/g.radius, 4)
		sfour = sfour/g.radius + 1.0
	}

	pinvsq := 1.0 / posq
	tsi := 1.0 / (ao - sfour)
	eta := ao * s.ecco * tsi
	etasq := eta * eta
	eeta := s.ecco * eta
	psisq := math.Abs(1.0 - etasq)
	coef := qzms24 * math.Pow(tsi, 4)
	coef1 := coef / math.Pow(psisq, 3.5)
	cc2 := coef1 * s.no * (ao*(1.0+1.5*etasq+eeta*(4.0+etasq)) +
		0.375*g.j2*tsi/psisq*con41*(8.0+3.0*etasq*(8.0+etasq)))
	s.cc1 = s.bstar * cc2
	cc3 := 0.0
	if s.ecco > 1.0e-4 {
		cc3 = -2.0 * coef * tsi * g.j3oj2 * s.no * sinio / s.ecco
	}
	x1mth2 := 1.0 - cosio2
	s.cc4 = 2.0 * s.no * coef1 * ao * omeosq *
		(eta*(2.0+0.5*etasq) + s.ecco*(0.5+2.0*etasq) -
			g.j2*tsi/(ao*psisq)*(-3.0*con41*(1.0-2.0*eeta+etasq*(1.5-0.5*eeta))+
				0.75*x1mth2*(2.0*etasq-eeta*(1.0+etasq))*math.Cos(2.0*s.argpo)))
	ne.cc5 = 2.0 * coef1 * ao * omeosq * (1.0 + 2.75*(etasq+eeta) + eeta*etasq)

	cosio4 := cosio2 * cosio2
	temp1 := 1.5 * g.j2 * pinvsq * s.no
	temp2 := 0.5 * temp1 * g.j2 * pinvsq
	temp3 := -0.46875 * g.j4 * pinvsq * pinvsq * s.no
	s.mdot = s.no + 0.5*temp1*rteosq*con41 + 0.0625*temp2*rteosq*(13.0-78.0*cosio2+137.0*cosio4)
	s.argpdot = -0.5*temp1*con42 + 0.0625*temp2*(7.0-114.0*cosio2+395.0*cosio4) +
		temp3*(3.0-36.0*cosio2+49.0*cosio4)
	xhdot1 := -temp1 * cosio
	s.nodedot = xhdot1 + (0.5*temp2*(4.0-19.0*cosio2)+2.0*temp3*(3.0-7.0*cosio2))*cosio
	xpidot := s.argpdot + s.nodedot
	ne.eta = eta
	ne.omgcof = s.bstar * cc3 * math.Cos(s.argpo)
	if s.ecco > 1.0e-4 {
		ne.xmcof = -x2o3 * coef * s.bstar / eeta
	}
	s.nodecf = 3.5 * omeosq * xhdot1 * s.cc1
	s.t2cof = 1.5 * s.cc1
	s.epochPeriodics = newPeriodicCoefficients(s.inclo, g.j3oj2)
	ne.delmo = math.Pow(1.0+eta*math.Cos(s.mo), 3)
	ne.sinmao = math.Sin(s.mo)

	if s.derived.Regime == DeepSpace {
		s.model = newDeepSpace(s, gsto, eccsq, xpidot)
		return
	}

	if !ne.simple {
		cc1sq := s.cc1 * s.cc1
		ne.d2 = 4.0 * ao * tsi * cc1sq
		temp := ne.d2 * tsi * s.cc1 / 3.0
		ne.d3 = (17.0*ao + sfour) * temp
		ne.d4 = 0.5 * temp * ao * tsi * (221.0*ao + 31.0*sfour) * s.cc1
		ne.t3cof = ne.d2 + 2.0*cc1sq
		ne.t4cof = 0.25 * (3.0*ne.d3 + s.cc1*(12.0*ne.d2+10.0*cc1sq))
		ne.t5cof = 0.2 * (3.0*ne.d4 + 12.0*s.cc1*ne.d3 + 6.0*ne.d2*ne.d2 +
			15.0*cc1sq*(2.0*ne.d2+cc1sq))
	}
	s.model = ne
}

// Elements returns the element set the session was created from.
func (s *Session) Elements() *OrbitalElements { return s.elements }

// Derived returns the constants computed at session creation.
func (s *Session) Derived() DerivedConstants { return s.derived }

// Regime returns the perturbation model selected for the session.
func (s *Session) Regime() Regime { return s.model.regime() }

// GravityModel returns the gravity constants in use.
func (s *Session) GravityModel() GravityModel { return s.gravity }

// OpsMode returns the operation mode in use.
func (s *Session) OpsMode() OpsMode { return s.opsMode }

// Epoch returns the element epoch.
func (s *Session) Epoch() JulianDate { return s.elements.Epoch }

// PropagateAt propagates to an absolute time.
func (s *Session) PropagateAt(t time.Time) (StateVector, error) {
	return s.Propagate(MinutesSinceEpoch(s.elements.Epoch, ToJulian(t)))
}
