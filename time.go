package tardis

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// jdUnixEpoch is the Julian date of 1970-01-01T00:00:00Z.
const jdUnixEpoch = 2440587.5

// JulianDate is a Julian date split into the whole-day part, which always ends
// in .5 (the preceding midnight), and the fraction of the day elapsed since.
// Keeping the parts apart preserves sub-millisecond resolution that a single
// float64 near 2.4e6 cannot hold.
type JulianDate struct {
	Day      float64
	Fraction float64
}

// NewJulianDate normalises day and fraction so that Day ends in .5 and
// Fraction lies in [0, 1).
func NewJulianDate(day, fraction float64) JulianDate {
	d0 := math.Floor(day-0.5) + 0.5
	extra := (day - d0) + fraction
	k := math.Floor(extra)
	return JulianDate{Day: d0 + k, Fraction: extra - k}
}

// ToJulian converts t to a split Julian date on the UTC time scale.
func ToJulian(t time.Time) JulianDate {
	t = t.UTC()
	y, m, d := t.Date()
	day := julian.CalendarGregorianToJD(y, int(m), float64(d))
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	frac := float64(t.Sub(midnight)) / float64(24*time.Hour)
	return JulianDate{Day: day, Fraction: frac}
}

// EpochFromTLE builds the epoch of a TLE from its two-digit year and
// fractional day of year. Years below 57 belong to the 21st century.
// It also returns the full year.
func EpochFromTLE(year2 int, dayOfYear float64) (JulianDate, int) {
	year := fullYear(year2)
	jan1 := julian.CalendarGregorianToJD(year, 1, 1)
	whole := math.Floor(dayOfYear)
	return NewJulianDate(jan1+whole-1, dayOfYear-whole), year
}

func fullYear(year2 int) int {
	if year2 < 57 {
		return 2000 + year2
	}
	return 1900 + year2
}

// Float collapses the date into a single value.
func (jd JulianDate) Float() float64 {
	return jd.Day + jd.Fraction
}

// Sub returns jd - o in days.
func (jd JulianDate) Sub(o JulianDate) float64 {
	return (jd.Day - o.Day) + (jd.Fraction - o.Fraction)
}

// AddMinutes returns the date offset by the given number of minutes.
func (jd JulianDate) AddMinutes(minutes float64) JulianDate {
	return NewJulianDate(jd.Day, jd.Fraction+minutes/minutesPerDay)
}

// Time converts the date back to a UTC time.Time, rounded to the nanosecond.
func (jd JulianDate) Time() time.Time {
	days := math.Round(jd.Day - jdUnixEpoch)
	ns := math.Round(jd.Fraction * secondsPerDay * 1e9)
	return time.Unix(int64(days)*86400, 0).UTC().Add(time.Duration(ns))
}

// YearDay returns the calendar year and the fractional day of year (1.0 is
// January 1st at midnight), the form used on TLE line 1.
func (jd JulianDate) YearDay() (int, float64) {
	year := jd.Time().Year()
	jan1 := julian.CalendarGregorianToJD(year, 1, 1)
	return year, (jd.Day - jan1 + 1) + jd.Fraction
}

// since1950 returns days elapsed since 0 Jan 1950 0h, the sgp4init epoch.
func (jd JulianDate) since1950() float64 {
	return (jd.Day - jd1950) + jd.Fraction
}

// MinutesSinceEpoch returns the signed number of minutes from epoch to t.
func MinutesSinceEpoch(epoch, t JulianDate) float64 {
	return t.Sub(epoch) * minutesPerDay
}

// GMST returns the Greenwich mean sidereal time in radians within [0, 2π)
// using the IAU-82 expression, treating UTC as UT1.
func GMST(jd JulianDate) float64 {
	tut1 := ((jd.Day - jdJ2000) + jd.Fraction) / 36525.0
	temp := -6.2e-6*tut1*tut1*tut1 + 0.093104*tut1*tut1 +
		(876600.0*3600+8640184.812866)*tut1 + 67310.54841 // seconds
	temp = math.Mod(temp*deg2rad/240.0, twoPi)
	if temp < 0.0 {
		temp += twoPi
	}
	return temp
}

// gmstAFSPC is the sidereal time at epoch used by the original AFSPC code,
// days counted from 0 Jan 1950.
func gmstAFSPC(epoch float64) float64 {
	const (
		c1    = 1.72027916940703639e-2
		thgr  = 1.7321343856509374
		fk5r  = 5.07551419432269442e-15
		c1p2p = c1 + twoPi
	)
	ts70 := epoch - 7305.0
	ds70 := math.Floor(ts70 + 1.0e-8)
	tfrac := ts70 - ds70
	gsto := math.Mod(thgr+c1*ds70+c1p2p*tfrac+ts70*ts70*fk5r, twoPi)
	if gsto < 0.0 {
		gsto += twoPi
	}
	return gsto
}
