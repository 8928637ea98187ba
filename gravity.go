package tardis

import (
	"fmt"
	"math"
	"strings"
)

// GravityModel selects the Earth gravity constants used by the propagator.
type GravityModel int

const (
	// WGS72 is the model used to generate the public element sets.
	WGS72 GravityModel = iota
	// WGS72Old uses the truncated xke of the original Spacetrack Report #3.
	WGS72Old
	// WGS84 is provided for comparison; element sets are not fitted with it.
	WGS84
)

func (g GravityModel) String() string {
	switch g {
	case WGS72Old:
		return "wgs72old"
	case WGS72:
		return "wgs72"
	case WGS84:
		return "wgs84"
	default:
		return fmt.Sprintf("GravityModel(%d)", int(g))
	}
}

// ParseGravityModel maps a name such as "wgs72" to a GravityModel.
func ParseGravityModel(s string) (GravityModel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wgs72old":
		return WGS72Old, nil
	case "wgs72", "":
		return WGS72, nil
	case "wgs84":
		return WGS84, nil
	}
	return 0, fmt.Errorf("unknown gravity model %q", s)
}

// gravityConstants holds the derived constants of one gravity model.
type gravityConstants struct {
	mu     float64 // km^3/s^2
	radius float64 // km
	xke    float64 // sqrt(mu) in earth radii^1.5 per minute
	tumin  float64 // minutes per time unit
	j2     float64
	j3     float64
	j4     float64
	j3oj2  float64
}

func (g GravityModel) constants() (gravityConstants, error) {
	var c gravityConstants
	switch g {
	case WGS72Old:
		c.mu = 398600.79964
		c.radius = 6378.135
		c.xke = 0.0743669161
		c.j2 = 0.001082616
		c.j3 = -0.00000253881
		c.j4 = -0.00000165597
	case WGS72:
		c.mu = 398600.8
		c.radius = 6378.135
		c.xke = 60.0 / math.Sqrt(c.radius*c.radius*c.radius/c.mu)
		c.j2 = 0.001082616
		c.j3 = -0.00000253881
		c.j4 = -0.00000165597
	case WGS84:
		c.mu = 398600.5
		c.radius = 6378.137
		c.xke = 60.0 / math.Sqrt(c.radius*c.radius*c.radius/c.mu)
		c.j2 = 0.00108262998905
		c.j3 = -0.00000253215306
		c.j4 = -0.00000161098761
	default:
		return c, fmt.Errorf("unknown gravity model %d", int(g))
	}
	c.tumin = 1.0 / c.xke
	c.j3oj2 = c.j3 / c.j2
	return c, nil
}

// OpsMode selects between the historical AFSPC behaviour and the improved
// formulation of a few terms (sidereal time at epoch, deep-space node handling).
type OpsMode int

const (
	OpsImproved OpsMode = iota
	OpsAFSPC
)

func (m OpsMode) String() string {
	switch m {
	case OpsAFSPC:
		return "afspc"
	case OpsImproved:
		return "improved"
	default:
		return fmt.Sprintf("OpsMode(%d)", int(m))
	}
}

// ParseOpsMode maps "afspc" (or "a") and "improved" (or "i") to an OpsMode.
func ParseOpsMode(s string) (OpsMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "afspc", "a":
		return OpsAFSPC, nil
	case "improved", "i", "":
		return OpsImproved, nil
	}
	return 0, fmt.Errorf("unknown ops mode %q", s)
}
