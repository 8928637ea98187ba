package tardis

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats/scalar"
)

const (
	issLine1 = "1 25544U 98067A   25138.37048074  .00007749  00000+0  14567-3 0  9994"
	issLine2 = "2 25544  51.6369  94.7823 0002558 120.7586  15.7840 15.49587957510533"

	vanguardLine1 = "1 00005U 58002B   00179.78495062  .00000023  00000-0  28098-4 0  4753"
	vanguardLine2 = "2 00005  34.2682 348.7242 1859667 331.7664  19.3264 10.82419157413667"

	deepLine1 = "1 11801U          80230.29629788  .01431103  00000-0  14311-1      13"
	deepLine2 = "2 11801  46.7916 230.4354 7318036  47.4722  10.4117  2.28537848    13"

	molniyaLine1 = "1 08195U 75081A   06176.33215444  .00000099  00000-0  11873-3 0   813"
	molniyaLine2 = "2 08195  64.1586 279.0717 6877146 264.7651  20.2257  2.00491383225656"

	gpsLine1 = "1 28129U 03058A   06175.57071136 -.00000104  00000-0  10000-3 0   459"
	gpsLine2 = "2 28129  54.7298 324.8098 0048506 266.2640  93.1663  2.00562768 18443"

	geoLine1 = "1 28626U 05008A   06176.46683397 -.00000205  00000-0  10000-3 0  2190"
	geoLine2 = "2 28626   0.0019 286.9433 0000335  13.7918  55.6504  1.00270176  4891"
)

func mustParse(t *testing.T, name, l1, l2 string) *OrbitalElements {
	t.Helper()
	el, err := ParseTLELines(name, l1, l2)
	require.NoError(t, err)
	return el
}

func TestParseTLE(t *testing.T) {
	el, err := ParseTLE("ISS (ZARYA)\n" + issLine1 + "\n" + issLine2 + "\n")
	require.NoError(t, err)

	assert.Equal(t, "ISS (ZARYA)", el.Name)
	assert.Equal(t, 25544, el.CatalogNumber)
	assert.Equal(t, Unclassified, el.Classification)
	assert.Equal(t, Designator{LaunchYear: 1998, LaunchNumber: 67, Piece: "A"}, el.Designator)
	assert.Equal(t, 0, el.EphemerisType)
	assert.Equal(t, 999, el.ElementSetNumber)
	assert.Equal(t, 51053, el.RevolutionNumber)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"mean motion dot", el.MeanMotionDotRevPerDay2(), 0.00007749},
		{"mean motion ddot", el.MeanMotionDDotRevPerDay3(), 0},
		{"bstar", el.BStar, 0.14567e-3},
		{"inclination", el.InclinationDeg(), 51.6369},
		{"right ascension", el.RightAscensionDeg(), 94.7823},
		{"eccentricity", el.Eccentricity, 0.0002558},
		{"argument of perigee", el.ArgOfPerigeeDeg(), 120.7586},
		{"mean anomaly", el.MeanAnomalyDeg(), 15.7840},
		{"mean motion", el.MeanMotionRevPerDay(), 15.49587957},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, scalar.EqualWithinAbs(tt.got, tt.want, 1e-12), "got %.15g, want %.15g", tt.got, tt.want)
		})
	}

	want := time.Date(2025, 5, 18, 8, 53, 29, 535936000, time.UTC)
	assert.InDelta(t, 0, el.EpochTime().Sub(want).Seconds(), 1e-5)
	year, doy := el.Epoch.YearDay()
	assert.Equal(t, 2025, year)
	assert.InDelta(t, 138.37048074, doy, 1e-9)
}

func TestParseTLEVariants(t *testing.T) {
	t.Run("two lines", func(t *testing.T) {
		el, err := ParseTLE(issLine1 + "\r\n" + issLine2)
		require.NoError(t, err)
		assert.Empty(t, el.Name)
	})

	t.Run("catalog name prefix", func(t *testing.T) {
		el := mustParse(t, "0 VANGUARD 1", vanguardLine1, vanguardLine2)
		assert.Equal(t, "VANGUARD 1", el.Name)
	})

	t.Run("twentieth century epoch", func(t *testing.T) {
		el := mustParse(t, "", deepLine1, deepLine2)
		assert.Equal(t, 1980, el.EpochTime().Year())
		assert.True(t, el.Designator.IsZero())
		assert.InDelta(t, 0.01431103, el.MeanMotionDotRevPerDay2(), 1e-12)
	})

	t.Run("negative first derivative", func(t *testing.T) {
		el := mustParse(t, "", gpsLine1, gpsLine2)
		assert.InDelta(t, -0.00000104, el.MeanMotionDotRevPerDay2(), 1e-14)
	})

	t.Run("alpha-5 catalog number", func(t *testing.T) {
		el := mustParse(t, "",
			"1 A0001U 98067A   25138.37048074  .00007749  00000+0  14567-3 0  9995",
			"2 A0001  51.6369  94.7823 0002558 120.7586  15.7840 15.49587957510534")
		assert.Equal(t, 100001, el.CatalogNumber)
		l1, l2 := el.EncodeTLE()
		assert.Equal(t, "A0001", l1[2:7])
		assert.Equal(t, "A0001", l2[2:7])
	})

	t.Run("no checksum column", func(t *testing.T) {
		_, err := ParseTLELines("", issLine1[:68], issLine2[:68])
		require.NoError(t, err)
	})
}

func TestEncodeTLERoundTrip(t *testing.T) {
	el := mustParse(t, "ISS (ZARYA)", issLine1, issLine2)
	l1, l2 := el.EncodeTLE()
	assert.Equal(t, issLine1, l1)
	assert.Equal(t, issLine2, l2)
	assert.Equal(t, "ISS (ZARYA)\n"+issLine1+"\n"+issLine2, el.String())

	for _, fixture := range [][2]string{
		{vanguardLine1, vanguardLine2},
		{deepLine1, deepLine2},
		{molniyaLine1, molniyaLine2},
		{gpsLine1, gpsLine2},
		{geoLine1, geoLine2},
	} {
		orig := mustParse(t, "", fixture[0], fixture[1])
		l1, l2 := orig.EncodeTLE()
		again, err := ParseTLELines("", l1, l2)
		require.NoError(t, err, "%s\n%s", l1, l2)

		assert.Equal(t, orig.CatalogNumber, again.CatalogNumber)
		assert.Equal(t, orig.Designator, again.Designator)
		assert.InDelta(t, 0, again.Epoch.Sub(orig.Epoch)*secondsPerDay, 1e-3)
		assert.InDelta(t, orig.Inclination, again.Inclination, 1e-9)
		assert.InDelta(t, orig.RightAscension, again.RightAscension, 1e-9)
		assert.InDelta(t, orig.Eccentricity, again.Eccentricity, 1e-9)
		assert.InDelta(t, orig.ArgOfPerigee, again.ArgOfPerigee, 1e-9)
		assert.InDelta(t, orig.MeanAnomaly, again.MeanAnomaly, 1e-9)
		assert.InDelta(t, orig.MeanMotion, again.MeanMotion, 1e-12)
		assert.InDelta(t, orig.BStar, again.BStar, 1e-12)
		assert.Equal(t, fixture[1], l2)
	}
}

func TestIsDecimal(t *testing.T) {
	for _, s := range []string{"15.49587957", ".00007749", "-.00000104", "+1.5", "25138.37048074", "7"} {
		assert.True(t, isDecimal(s), s)
	}
	for _, s := range []string{"", "-", ".", "NaN", "Inf", "+Inf", "0x1p3", "1e5", "1.2.3", "1 2"} {
		assert.False(t, isDecimal(s), s)
	}
}

func TestChecksum(t *testing.T) {
	assert.Equal(t, 4, checksum(issLine1))
	assert.Equal(t, 3, checksum(issLine2))
	assert.Equal(t, 3, checksum(deepLine1))

	corrupted := issLine1[:68] + "5"
	_, err := ParseTLELines("", corrupted, issLine2)
	require.ErrorIs(t, err, ErrChecksum)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 1, pe.Line)
	assert.Equal(t, Checksum, pe.Kind)
}

func TestInvalidTLE(t *testing.T) {
	tests := []struct {
		name string
		tle  string
		want error
	}{
		{
			name: "Empty input",
			tle:  "",
			want: ErrLineCount,
		},
		{
			name: "Single line",
			tle:  issLine1,
			want: ErrLineCount,
		},
		{
			name: "Invalid line length",
			tle:  "1 25544U 98067A   25025.00048859\n" + issLine2,
			want: ErrLineLength,
		},
		{
			name: "Invalid line numbers",
			tle:  "3" + issLine1[1:] + "\n" + issLine2,
			want: ErrLineNumber,
		},
		{
			name: "Swapped lines",
			tle:  issLine2 + "\n" + issLine1,
			want: ErrLineNumber,
		},
		{
			name: "Catalog number mismatch",
			tle:  issLine1[:68] + "\n" + "2 25545" + issLine2[7:68],
			want: ErrMismatch,
		},
		{
			name: "Bad eccentricity",
			tle:  issLine1[:68] + "\n" + issLine2[:26] + "00-2558" + issLine2[33:68],
			want: ErrInvalidField,
		},
		{
			name: "Bad bstar",
			tle:  issLine1[:53] + " 14x67-3" + issLine1[61:68] + "\n" + issLine2[:68],
			want: ErrInvalidField,
		},
		{
			name: "Inclination out of range",
			tle:  issLine1[:68] + "\n" + issLine2[:8] + "181.0000" + issLine2[16:68],
			want: ErrOutOfRange,
		},
		{
			name: "Zero mean motion",
			tle:  issLine1[:68] + "\n" + issLine2[:52] + " 0.00000000" + issLine2[63:68],
			want: ErrOutOfRange,
		},
		{
			name: "Infinite mean motion",
			tle:  issLine1[:68] + "\n" + issLine2[:52] + "        Inf" + issLine2[63:68],
			want: ErrInvalidField,
		},
		{
			name: "Hex mean motion",
			tle:  issLine1[:68] + "\n" + issLine2[:52] + " 0x1.8p+03" + issLine2[63:68],
			want: ErrInvalidField,
		},
		{
			name: "NaN epoch day",
			tle:  issLine1[:20] + "         NaN" + issLine1[32:68] + "\n" + issLine2[:68],
			want: ErrInvalidField,
		},
		{
			name: "NaN mean motion dot",
			tle:  issLine1[:33] + "       NaN" + issLine1[43:68] + "\n" + issLine2[:68],
			want: ErrInvalidField,
		},
		{
			name: "NaN inclination",
			tle:  issLine1[:68] + "\n" + issLine2[:8] + "     NaN" + issLine2[16:68],
			want: ErrInvalidField,
		},
		{
			name: "Epoch day out of range",
			tle:  issLine1[:18] + "25000.37048074" + issLine1[32:68] + "\n" + issLine2[:68],
			want: ErrOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTLE(tt.tle)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			var pe *ParseError
			assert.ErrorAs(t, err, &pe)
		})
	}
}

func TestParseDesignator(t *testing.T) {
	tests := []struct {
		in     string
		want   Designator
		cospar string
	}{
		{"98067A", Designator{1998, 67, "A"}, "1998-067A"},
		{"11037PF", Designator{2011, 37, "PF"}, "2011-037PF"},
		{"58002B  ", Designator{1958, 2, "B"}, "1958-002B"},
		{"", Designator{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := ParseDesignator(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d)
			assert.Equal(t, tt.cospar, d.COSPAR())

			back, err := parseCOSPAR(d.COSPAR())
			require.NoError(t, err)
			assert.Equal(t, d, back)
		})
	}

	_, err := ParseDesignator("98A")
	assert.Error(t, err)
	_, err = parseCOSPAR("98-067A")
	assert.Error(t, err)
}

func TestIsGeostationary(t *testing.T) {
	assert.True(t, mustParse(t, "", geoLine1, geoLine2).IsGeostationary())
	assert.False(t, mustParse(t, "", gpsLine1, gpsLine2).IsGeostationary())
	assert.False(t, mustParse(t, "", issLine1, issLine2).IsGeostationary())
}
