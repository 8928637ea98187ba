package tardis

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Classification is the security classification of an element set.
type Classification byte

const (
	Unclassified Classification = 'U'
	Classified   Classification = 'C'
	Secret       Classification = 'S'
)

func (c Classification) String() string {
	return string(rune(c))
}

func parseClassification(s string) (Classification, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "U":
		return Unclassified, true
	case "C":
		return Classified, true
	case "S":
		return Secret, true
	}
	return 0, false
}

// Designator is the international (COSPAR) designator of a launch piece.
type Designator struct {
	LaunchYear   int    // four-digit year
	LaunchNumber int    // launch of the year
	Piece        string // piece letters, "A" for the primary payload
}

// IsZero reports whether the designator is blank, as on some analyst sets.
func (d Designator) IsZero() bool {
	return d.LaunchYear == 0 && d.LaunchNumber == 0 && d.Piece == ""
}

// String returns the designator in the TLE column form, e.g. "98067A".
func (d Designator) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%02d%03d%s", d.LaunchYear%100, d.LaunchNumber, d.Piece)
}

// COSPAR returns the designator in the OMM OBJECT_ID form, e.g. "1998-067A".
func (d Designator) COSPAR() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%03d%s", d.LaunchYear, d.LaunchNumber, d.Piece)
}

// ParseDesignator parses the TLE form "YYNNNP{PP}". A blank string gives the
// zero designator.
func ParseDesignator(s string) (Designator, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Designator{}, nil
	}
	if len(s) < 6 {
		return Designator{}, fmt.Errorf("designator %q too short", s)
	}
	yy, err := strconv.Atoi(s[0:2])
	if err != nil {
		return Designator{}, fmt.Errorf("designator year %q: %w", s[0:2], err)
	}
	num, err := strconv.Atoi(strings.TrimSpace(s[2:5]))
	if err != nil {
		return Designator{}, fmt.Errorf("designator launch number %q: %w", s[2:5], err)
	}
	return Designator{LaunchYear: fullYear(yy), LaunchNumber: num, Piece: strings.TrimSpace(s[5:])}, nil
}

// parseCOSPAR parses the OMM form "YYYY-NNNP{PP}".
func parseCOSPAR(s string) (Designator, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Designator{}, nil
	}
	year, rest, ok := strings.Cut(s, "-")
	if !ok || len(year) != 4 || len(rest) < 4 {
		return Designator{}, fmt.Errorf("invalid OBJECT_ID format: expected 'YYYY-NNNP', got %q", s)
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return Designator{}, fmt.Errorf("OBJECT_ID year %q: %w", year, err)
	}
	num, err := strconv.Atoi(rest[0:3])
	if err != nil {
		return Designator{}, fmt.Errorf("OBJECT_ID launch number %q: %w", rest[0:3], err)
	}
	return Designator{LaunchYear: y, LaunchNumber: num, Piece: rest[3:]}, nil
}

// OrbitalElements is one mean element set, decoded from a TLE or an OMM.
// Angles are in radians and rates in radians per minute. Values are never
// modified once parsed, so a set can be shared between goroutines.
type OrbitalElements struct {
	Name           string
	CatalogNumber  int
	Classification Classification
	Designator     Designator
	Epoch          JulianDate

	MeanMotion     float64 // Kozai mean motion, rad/min
	MeanMotionDot  float64 // first derivative divided by two, rad/min^2
	MeanMotionDDot float64 // second derivative divided by six, rad/min^3
	BStar          float64 // drag term, 1/earth radii

	Inclination    float64 // rad, [0, π]
	RightAscension float64 // rad, [0, 2π)
	Eccentricity   float64 // [0, 1)
	ArgOfPerigee   float64 // rad, [0, 2π)
	MeanAnomaly    float64 // rad, [0, 2π)

	EphemerisType    int
	ElementSetNumber int
	RevolutionNumber int
}

// elementsInput carries the values of an element set in the units used on
// the wire (degrees and revolutions per day) before validation.
type elementsInput struct {
	inclination, raan, eccentricity, argp, meanAnomaly float64
	meanMotion, ndot, nddot                            float64
}

// setAngles validates in and stores it on el in internal units.
func (el *OrbitalElements) setAngles(in elementsInput) error {
	if math.IsNaN(in.inclination) || in.inclination < 0 || in.inclination > 180 {
		return &ParseError{Line: 2, Field: "inclination", Kind: OutOfRange, Value: strconv.FormatFloat(in.inclination, 'f', -1, 64)}
	}
	if math.IsNaN(in.eccentricity) || in.eccentricity < 0 || in.eccentricity >= 1 {
		return &ParseError{Line: 2, Field: "eccentricity", Kind: OutOfRange, Value: strconv.FormatFloat(in.eccentricity, 'f', -1, 64)}
	}
	if math.IsNaN(in.meanMotion) || math.IsInf(in.meanMotion, 0) || in.meanMotion <= 0 {
		return &ParseError{Line: 2, Field: "mean motion", Kind: OutOfRange, Value: strconv.FormatFloat(in.meanMotion, 'f', -1, 64)}
	}
	for _, a := range []struct {
		name string
		v    float64
	}{
		{"right ascension", in.raan},
		{"argument of perigee", in.argp},
		{"mean anomaly", in.meanAnomaly},
	} {
		if math.IsNaN(a.v) || math.IsInf(a.v, 0) {
			return &ParseError{Line: 2, Field: a.name, Kind: OutOfRange, Value: strconv.FormatFloat(a.v, 'f', -1, 64)}
		}
	}

	el.Inclination = in.inclination * deg2rad
	el.RightAscension = normalizeAngle(in.raan * deg2rad)
	el.Eccentricity = in.eccentricity
	el.ArgOfPerigee = normalizeAngle(in.argp * deg2rad)
	el.MeanAnomaly = normalizeAngle(in.meanAnomaly * deg2rad)
	el.MeanMotion = in.meanMotion / xpdotp
	el.MeanMotionDot = in.ndot / (xpdotp * minutesPerDay)
	el.MeanMotionDDot = in.nddot / (xpdotp * minutesPerDay * minutesPerDay)
	return nil
}

// normalizeAngle reduces a to [0, 2π).
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, twoPi)
	if a < 0 {
		a += twoPi
	}
	if a >= twoPi {
		a = 0
	}
	return a
}

// EpochTime returns the epoch as a UTC time.
func (el *OrbitalElements) EpochTime() time.Time {
	return el.Epoch.Time()
}

// MeanMotionRevPerDay returns the Kozai mean motion in revolutions per day.
func (el *OrbitalElements) MeanMotionRevPerDay() float64 {
	return el.MeanMotion * xpdotp
}

// MeanMotionDotRevPerDay2 returns the first derivative term in rev/day^2.
func (el *OrbitalElements) MeanMotionDotRevPerDay2() float64 {
	return el.MeanMotionDot * xpdotp * minutesPerDay
}

// MeanMotionDDotRevPerDay3 returns the second derivative term in rev/day^3.
func (el *OrbitalElements) MeanMotionDDotRevPerDay3() float64 {
	return el.MeanMotionDDot * xpdotp * minutesPerDay * minutesPerDay
}

// InclinationDeg returns the inclination in degrees.
func (el *OrbitalElements) InclinationDeg() float64 { return el.Inclination * rad2deg }

// RightAscensionDeg returns the right ascension of the ascending node in degrees.
func (el *OrbitalElements) RightAscensionDeg() float64 { return el.RightAscension * rad2deg }

// ArgOfPerigeeDeg returns the argument of perigee in degrees.
func (el *OrbitalElements) ArgOfPerigeeDeg() float64 { return el.ArgOfPerigee * rad2deg }

// MeanAnomalyDeg returns the mean anomaly in degrees.
func (el *OrbitalElements) MeanAnomalyDeg() float64 { return el.MeanAnomaly * rad2deg }

// IsGeostationary checks if the elements suggest a geostationary satellite.
// This is based on mean elements and does not guarantee station-keeping.
func (el *OrbitalElements) IsGeostationary() bool {
	const (
		idealGeoMeanMotion  = 1.0027379093509 // rev/day, one sidereal day
		meanMotionTolerance = 0.05
		maxInclinationDeg   = 5.0
		maxEccentricity     = 0.05
	)
	n := el.MeanMotionRevPerDay()
	if n < idealGeoMeanMotion-meanMotionTolerance || n > idealGeoMeanMotion+meanMotionTolerance {
		return false
	}
	return el.InclinationDeg() <= maxInclinationDeg && el.Eccentricity <= maxEccentricity
}
