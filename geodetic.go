package tardis

import "math"

// Geodetic is a position on or above the WGS-84 ellipsoid.
type Geodetic struct {
	Latitude  float64 // degrees, north positive
	Longitude float64 // degrees in (-180, 180], east positive
	Altitude  float64 // km above the ellipsoid
}

// Geodetic returns the sub-satellite point and height of the state.
func (sv StateVector) Geodetic() Geodetic {
	return ToGeodetic(sv)
}

// ToGeodetic converts a TEME state to geodetic coordinates, going through the
// Earth-fixed frame.
func ToGeodetic(sv StateVector) Geodetic {
	return sv.ECEF().Geodetic()
}

// Geodetic converts the Earth-fixed position to WGS-84 latitude, longitude
// and altitude. Latitude is found by fixed-point iteration.
func (e ECEFState) Geodetic() Geodetic {
	return ecefToGeodetic(e.Position.Scale(1e-3))
}

func ecefToGeodetic(p Vector3) Geodetic {
	const (
		maxIter = 10
		tol     = 1e-10
	)
	e2 := fWGS84 * (2.0 - fWGS84)

	lon := math.Atan2(p.Y, p.X)
	r := math.Hypot(p.X, p.Y)
	lat := math.Atan2(p.Z, r)
	for i := 0; i < maxIter; i++ {
		old := lat
		sinLat := math.Sin(lat)
		c := 1.0 / math.Sqrt(1.0-e2*sinLat*sinLat)
		lat = math.Atan2(p.Z+reWGS84*c*e2*sinLat, r)
		if math.Abs(lat-old) < tol {
			break
		}
	}

	sinLat, cosLat := math.Sincos(lat)
	n := reWGS84 / math.Sqrt(1.0-e2*sinLat*sinLat)
	var alt float64
	if math.Abs(cosLat) < 1e-10 {
		alt = math.Abs(p.Z) - reWGS84*math.Sqrt(1.0-e2)
	} else {
		alt = r/cosLat - n
	}
	return Geodetic{
		Latitude:  lat * rad2deg,
		Longitude: wrapLongitude(lon) * rad2deg,
		Altitude:  alt,
	}
}

// ECEF returns the Earth-fixed position of g in meters.
func (g Geodetic) ECEF() Vector3 {
	e2 := fWGS84 * (2.0 - fWGS84)
	sinLat, cosLat := math.Sincos(g.Latitude * deg2rad)
	sinLon, cosLon := math.Sincos(g.Longitude * deg2rad)
	n := reWGS84 / math.Sqrt(1.0-e2*sinLat*sinLat)
	return Vector3{
		X: (n + g.Altitude) * cosLat * cosLon,
		Y: (n + g.Altitude) * cosLat * sinLon,
		Z: (n*(1.0-e2) + g.Altitude) * sinLat,
	}.Scale(1000)
}

// wrapLongitude maps lon into (-π, π].
func wrapLongitude(lon float64) float64 {
	lon = math.Mod(lon, twoPi)
	if lon > math.Pi {
		lon -= twoPi
	} else if lon <= -math.Pi {
		lon += twoPi
	}
	return lon
}
