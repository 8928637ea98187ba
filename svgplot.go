package tardis

import (
	"fmt"
	"html"
	"math"
	"strings"
)

// SVG plot constants
const (
	svgWidth            = 800
	svgHeight           = 460
	plotMargin          = 40
	plotWidth           = svgWidth - 2*plotMargin
	plotHeight          = (svgWidth - 2*plotMargin) / 2
	labelFontSize       = 10
	titleFontSize       = 14
	foregroundColor     = "black"
	secondaryColor      = "dimgray"
	gridLineStrokeWidth = "0.5"
	pathStrokeWidth     = "2"
	pointRadius         = 4.0
	labelOffsetPoints   = 8.0
)

// lonLatToXY projects a longitude and latitude in degrees onto the
// equirectangular plot area.
func lonLatToXY(lon, lat float64) (x, y float64) {
	x = plotMargin + (lon+180.0)/360.0*plotWidth
	y = plotMargin + (90.0-lat)/180.0*plotHeight
	return
}

// altitudeToColor maps an altitude within [lo, hi] km onto a blue to red ramp.
func altitudeToColor(alt, lo, hi float64) string {
	t := 0.5
	if hi > lo {
		t = (alt - lo) / (hi - lo)
	}
	t = math.Max(0, math.Min(1, t))
	r := int(255 * t)
	b := int(255 * (1.0 - t))
	return fmt.Sprintf("#%02x%02x%02x", r, 40, b)
}

// GroundTrackSVG renders points on an equirectangular world grid. Segments are
// coloured by altitude and broken where the track crosses the antimeridian or
// a sample failed.
func GroundTrackSVG(title string, points []TrackPoint) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg" style="background-color:white;">`, svgWidth, svgHeight)

	x0, y0 := lonLatToXY(-180, 90)
	fmt.Fprintf(&sb, `<rect x="%f" y="%f" width="%d" height="%d" stroke="%s" stroke-width="1" fill="none"/>`, x0, y0, plotWidth, plotHeight, foregroundColor)

	// graticule
	for lon := -150.0; lon < 180; lon += 30 {
		xa, ya := lonLatToXY(lon, 90)
		xb, yb := lonLatToXY(lon, -90)
		fmt.Fprintf(&sb, `<line x1="%f" y1="%f" x2="%f" y2="%f" stroke="%s" stroke-width="%s" stroke-dasharray="4,4"/>`, xa, ya, xb, yb, secondaryColor, gridLineStrokeWidth)
		fmt.Fprintf(&sb, `<text x="%f" y="%f" fill="%s" font-size="%d" text-anchor="middle" dominant-baseline="hanging">%d°</text>`, xb, yb+4, secondaryColor, labelFontSize, int(lon))
	}
	for lat := -60.0; lat <= 60; lat += 30 {
		xa, ya := lonLatToXY(-180, lat)
		xb, yb := lonLatToXY(180, lat)
		width := gridLineStrokeWidth
		if lat == 0 {
			width = "1"
		}
		fmt.Fprintf(&sb, `<line x1="%f" y1="%f" x2="%f" y2="%f" stroke="%s" stroke-width="%s" stroke-dasharray="4,4"/>`, xa, ya, xb, yb, secondaryColor, width)
		fmt.Fprintf(&sb, `<text x="%f" y="%f" fill="%s" font-size="%d" text-anchor="end" dominant-baseline="middle">%d°</text>`, xa-4, ya, secondaryColor, labelFontSize, int(lat))
	}

	if title != "" {
		fmt.Fprintf(&sb, `<text x="%d" y="%d" fill="%s" font-size="%d" text-anchor="middle">%s</text>`, svgWidth/2, plotMargin/2, foregroundColor, titleFontSize, html.EscapeString(title))
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	var first, last *TrackPoint
	for i := range points {
		if points[i].Err != nil {
			continue
		}
		lo = math.Min(lo, points[i].Geodetic.Altitude)
		hi = math.Max(hi, points[i].Geodetic.Altitude)
		if first == nil {
			first = &points[i]
		}
		last = &points[i]
	}
	if first == nil {
		fmt.Fprintf(&sb, `<text x="%d" y="%d" fill="%s">No valid positions for ground track.</text>`, plotMargin+10, plotMargin+20, foregroundColor)
		sb.WriteString(`</svg>`)
		return sb.String()
	}

	for i := 0; i < len(points)-1; i++ {
		p1, p2 := points[i], points[i+1]
		if p1.Err != nil || p2.Err != nil {
			continue
		}
		if math.Abs(p2.Geodetic.Longitude-p1.Geodetic.Longitude) > 180 {
			continue
		}
		x1, y1 := lonLatToXY(p1.Geodetic.Longitude, p1.Geodetic.Latitude)
		x2, y2 := lonLatToXY(p2.Geodetic.Longitude, p2.Geodetic.Latitude)
		color := altitudeToColor((p1.Geodetic.Altitude+p2.Geodetic.Altitude)/2.0, lo, hi)
		fmt.Fprintf(&sb, `<line x1="%f" y1="%f" x2="%f" y2="%f" stroke="%s" stroke-width="%s"/>`, x1, y1, x2, y2, color, pathStrokeWidth)
	}

	sx, sy := lonLatToXY(first.Geodetic.Longitude, first.Geodetic.Latitude)
	fmt.Fprintf(&sb, `<circle cx="%f" cy="%f" r="%f" fill="darkblue" stroke="black" stroke-width="0.5"/>`, sx, sy, pointRadius)
	fmt.Fprintf(&sb, `<text x="%f" y="%f" fill="darkblue" font-size="12" text-anchor="middle" dominant-baseline="text-after-edge">%s</text>`, sx, sy-labelOffsetPoints, first.Time.UTC().Format("15:04"))

	ex, ey := lonLatToXY(last.Geodetic.Longitude, last.Geodetic.Latitude)
	fmt.Fprintf(&sb, `<circle cx="%f" cy="%f" r="%f" fill="darkred" stroke="black" stroke-width="0.5"/>`, ex, ey, pointRadius)
	fmt.Fprintf(&sb, `<text x="%f" y="%f" fill="darkred" font-size="12" text-anchor="middle" dominant-baseline="text-before-edge">%s</text>`, ex, ey+labelOffsetPoints, last.Time.UTC().Format("15:04"))

	sb.WriteString(`</svg>`)
	return sb.String()
}
