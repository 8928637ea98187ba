package tardis

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	tleLineLength           = 69
	tleLineLengthNoCheck    = 68
	alpha5Letters           = "ABCDEFGHJKLMNPQRSTUVWXYZ" // I and O are skipped
	maxNumericCatalogNumber = 99999
)

// ParseTLE parses a two-line element set string.
// It accepts either a two-line or three-line format (with satellite name).
func ParseTLE(input string) (*OrbitalElements, error) {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(input, "\r\n", "\n"), "\n") {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}

	switch len(lines) {
	case 2:
		return ParseTLELines("", lines[0], lines[1])
	case 3:
		return ParseTLELines(lines[0], lines[1], lines[2])
	}
	return nil, &ParseError{Kind: LineCount, Value: strconv.Itoa(len(lines))}
}

// ParseTLELines decodes an element set whose lines are already split. name
// may be empty; a leading "0 " as used in some catalogs is removed.
func ParseTLELines(name, line1, line2 string) (*OrbitalElements, error) {
	line1 = strings.TrimRight(line1, " \t\r")
	line2 = strings.TrimRight(line2, " \t\r")
	if err := checkLine(1, line1); err != nil {
		return nil, err
	}
	if err := checkLine(2, line2); err != nil {
		return nil, err
	}

	el := &OrbitalElements{Name: cleanName(name)}

	r1 := &lineReader{line: line1, n: 1}
	el.CatalogNumber = r1.catalogNumber()
	class, ok := parseClassification(line1[7:8])
	if !ok && r1.err == nil {
		r1.err = &ParseError{Line: 1, Field: "classification", Kind: InvalidField, Value: line1[7:8]}
	}
	el.Classification = class
	if d, err := ParseDesignator(line1[9:17]); err != nil {
		r1.fail("international designator", line1[9:17], err)
	} else {
		el.Designator = d
	}
	yy := r1.int("epoch year", 18, 20)
	doy := r1.float("epoch day", 20, 32)
	ndot := r1.float("mean motion dot", 33, 43)
	nddot := r1.exp("mean motion ddot", 44, 52)
	el.BStar = r1.exp("bstar", 53, 61)
	el.EphemerisType = r1.optionalInt("ephemeris type", 62, 63)
	el.ElementSetNumber = r1.optionalInt("element number", 64, 68)
	if r1.err != nil {
		return nil, r1.err
	}
	if !(doy >= 1 && doy < 367) {
		return nil, &ParseError{Line: 1, Field: "epoch day", Kind: OutOfRange, Value: strings.TrimSpace(line1[20:32])}
	}
	el.Epoch, _ = EpochFromTLE(yy, doy)

	r2 := &lineReader{line: line2, n: 2}
	catalog2 := r2.catalogNumber()
	in := elementsInput{
		ndot:         ndot,
		nddot:        nddot,
		inclination:  r2.float("inclination", 8, 16),
		raan:         r2.float("right ascension", 17, 25),
		eccentricity: r2.decimal("eccentricity", 26, 33),
		argp:         r2.float("argument of perigee", 34, 42),
		meanAnomaly:  r2.float("mean anomaly", 43, 51),
		meanMotion:   r2.float("mean motion", 52, 63),
	}
	el.RevolutionNumber = r2.optionalInt("revolution number", 63, 68)
	if r2.err != nil {
		return nil, r2.err
	}
	if catalog2 != el.CatalogNumber {
		return nil, &ParseError{Line: 2, Field: "catalog number", Kind: Mismatch,
			Value: fmt.Sprintf("%d vs %d", el.CatalogNumber, catalog2)}
	}
	if err := el.setAngles(in); err != nil {
		return nil, err
	}
	return el, nil
}

func cleanName(name string) string {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, "0 ") {
		name = strings.TrimSpace(name[2:])
	}
	return name
}

// checkLine validates the length, line number and, when present, the checksum.
func checkLine(n int, line string) error {
	if len(line) != tleLineLength && len(line) != tleLineLengthNoCheck {
		return &ParseError{Line: n, Kind: LineLength, Value: strconv.Itoa(len(line))}
	}
	if line[0] != byte('0'+n) {
		return &ParseError{Line: n, Field: "line number", Kind: LineNumber, Value: line[0:1]}
	}
	if len(line) == tleLineLengthNoCheck {
		return nil
	}
	c := line[68]
	if c < '0' || c > '9' {
		return &ParseError{Line: n, Field: "checksum", Kind: InvalidField, Value: line[68:69]}
	}
	if want := checksum(line); int(c-'0') != want {
		return &ParseError{Line: n, Field: "checksum", Kind: Checksum,
			Value: fmt.Sprintf("expected %d, got %c", want, c)}
	}
	return nil
}

// checksum calculates the modulo-10 checksum for a TLE line.
// It sums all numerical digits, with '-' counting as 1. Other characters are ignored.
// The checksum is calculated for the first 68 characters of the line.
func checksum(line string) int {
	sum := 0
	for i := 0; i < len(line) && i < tleLineLengthNoCheck; i++ {
		switch c := line[i]; {
		case c >= '0' && c <= '9':
			sum += int(c - '0')
		case c == '-':
			sum++
		}
	}
	return sum % 10
}

// lineReader extracts fixed-column fields from one TLE line and keeps the
// first error encountered.
type lineReader struct {
	line string
	n    int
	err  error
}

func (r *lineReader) fail(field, value string, cause error) {
	if r.err == nil {
		r.err = &ParseError{Line: r.n, Field: field, Kind: InvalidField, Value: value, Err: cause}
	}
}

func (r *lineReader) int(field string, from, to int) int {
	s := strings.TrimSpace(r.line[from:to])
	v, err := strconv.Atoi(s)
	if err != nil {
		r.fail(field, s, err)
	}
	return v
}

// optionalInt reads an integer field that is blank on some element sets.
func (r *lineReader) optionalInt(field string, from, to int) int {
	if to > len(r.line) || strings.TrimSpace(r.line[from:to]) == "" {
		return 0
	}
	return r.int(field, from, to)
}

// float reads a plain decimal field. Only digits, one leading sign and a
// decimal point are accepted, so NaN, Inf and hex forms are rejected.
func (r *lineReader) float(field string, from, to int) float64 {
	s := strings.TrimSpace(r.line[from:to])
	if !isDecimal(s) {
		r.fail(field, s, nil)
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		r.fail(field, s, err)
	}
	return v
}

func isDecimal(s string) bool {
	if s != "" && (s[0] == '-' || s[0] == '+') {
		s = s[1:]
	}
	digits := false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			digits = true
		case c == '.':
		default:
			return false
		}
	}
	return digits && strings.Count(s, ".") <= 1
}

// decimal reads a field with an assumed leading decimal point, e.g. "0002558".
func (r *lineReader) decimal(field string, from, to int) float64 {
	s := strings.TrimSpace(r.line[from:to])
	if s == "" || strings.ContainsAny(s, "+-.") {
		r.fail(field, s, nil)
		return 0
	}
	v, err := strconv.ParseFloat("0."+s, 64)
	if err != nil {
		r.fail(field, s, err)
	}
	return v
}

// exp reads a field of the form "±NNNNN±E" meaning ±0.NNNNN × 10^±E.
func (r *lineReader) exp(field string, from, to int) float64 {
	raw := r.line[from:to]
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	sign := 1.0
	switch s[0] {
	case '-':
		sign = -1
		s = s[1:]
	case '+':
		s = s[1:]
	}
	if len(s) < 3 {
		r.fail(field, raw, nil)
		return 0
	}
	mant, exp := s[:len(s)-2], s[len(s)-2:]
	if strings.ContainsAny(mant, "+-. ") {
		r.fail(field, raw, nil)
		return 0
	}
	m, err := strconv.ParseFloat("0."+mant, 64)
	if err != nil {
		r.fail(field, raw, err)
		return 0
	}
	e, err := strconv.Atoi(exp)
	if err != nil || (exp[0] != '-' && exp[0] != '+') {
		r.fail(field, raw, err)
		return 0
	}
	return sign * m * math.Pow(10, float64(e))
}

// catalogNumber reads columns 3-7, accepting the Alpha-5 form where a
// leading letter stands for 10 to 33 ten-thousands.
func (r *lineReader) catalogNumber() int {
	s := strings.TrimSpace(r.line[2:7])
	if s != "" {
		if i := strings.IndexByte(alpha5Letters, s[0]); i >= 0 && len(s) == 5 {
			rest, err := strconv.Atoi(s[1:])
			if err != nil {
				r.fail("catalog number", s, err)
				return 0
			}
			return (i+10)*10000 + rest
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		r.fail("catalog number", s, err)
	}
	return v
}

func formatCatalogNumber(n int) string {
	if n <= maxNumericCatalogNumber || n >= (len(alpha5Letters)+10)*10000 {
		return fmt.Sprintf("%05d", n%100000)
	}
	return fmt.Sprintf("%c%04d", alpha5Letters[n/10000-10], n%10000)
}

// formatExp renders v in the "±NNNNN±E" form of the drag fields.
func formatExp(v float64) string {
	if v == 0 {
		return " 00000+0"
	}
	sign := " "
	if v < 0 {
		sign = "-"
		v = -v
	}
	e := int(math.Floor(math.Log10(v))) + 1
	m := int(math.Round(v / math.Pow(10, float64(e)) * 1e5))
	if m >= 100000 {
		m /= 10
		e++
	}
	if e < -9 {
		return " 00000+0"
	}
	if e > 9 {
		e = 9
		m = 99999
	}
	esign := "+"
	if e < 0 {
		esign = "-"
		e = -e
	}
	return fmt.Sprintf("%s%05d%s%d", sign, m, esign, e)
}

// formatNdot renders the first derivative field, " .NNNNNNNN".
func formatNdot(v float64) string {
	s := strconv.FormatFloat(math.Abs(v), 'f', 8, 64)
	s = strings.TrimPrefix(s, "0")
	if len(s) > 9 {
		s = ".99999999"
	}
	if v < 0 && s != ".00000000" {
		return "-" + s
	}
	return " " + s
}

// formatAngle renders an angle in degrees with four decimals, wrapping 360.
func formatAngle(deg float64) string {
	s := strconv.FormatFloat(deg, 'f', 4, 64)
	if s == "360.0000" {
		s = "0.0000"
	}
	return fmt.Sprintf("%8s", s)
}

// EncodeTLE renders the elements as the two standard lines with checksums.
func (el *OrbitalElements) EncodeTLE() (line1, line2 string) {
	year, doy := el.Epoch.YearDay()
	class := el.Classification
	if class == 0 {
		class = Unclassified
	}
	line1 = fmt.Sprintf("1 %s%c %-8s %02d%012.8f %s %s %s %d %4d",
		formatCatalogNumber(el.CatalogNumber), byte(class), el.Designator.String(),
		year%100, doy, formatNdot(el.MeanMotionDotRevPerDay2()),
		formatExp(el.MeanMotionDDotRevPerDay3()), formatExp(el.BStar),
		el.EphemerisType%10, el.ElementSetNumber%10000)
	line1 += strconv.Itoa(checksum(line1))

	ecc := int(math.Round(el.Eccentricity * 1e7))
	if ecc > 9999999 {
		ecc = 9999999
	}
	line2 = fmt.Sprintf("2 %s %s %s %07d %s %s %11.8f%5d",
		formatCatalogNumber(el.CatalogNumber), formatAngle(el.InclinationDeg()),
		formatAngle(el.RightAscensionDeg()), ecc, formatAngle(el.ArgOfPerigeeDeg()),
		formatAngle(el.MeanAnomalyDeg()), el.MeanMotionRevPerDay(), el.RevolutionNumber%100000)
	line2 += strconv.Itoa(checksum(line2))
	return line1, line2
}

// String returns the element set in three-line form when it has a name.
func (el *OrbitalElements) String() string {
	l1, l2 := el.EncodeTLE()
	if el.Name == "" {
		return l1 + "\n" + l2
	}
	return el.Name + "\n" + l1 + "\n" + l2
}
