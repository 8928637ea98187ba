package tardis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// OMM represents a single Orbit Mean-elements Message object from a JSON representation.
// Fields are based on the CCSDS OMM standard and common JSON outputs (e.g., from space-track.org).
type OMM struct {
	ObjectName string `json:"OBJECT_NAME"`
	// ObjectID is the COSPAR designator, e.g. "1998-067A".
	ObjectID string `json:"OBJECT_ID"`
	// EpochStr is ISO 8601, e.g. "2025-05-26T13:06:57.824640". UTC when no zone is given.
	EpochStr string `json:"EPOCH" validate:"required"`

	// Mean motion in rev/day, angles in degrees.
	MeanMotion      float64 `json:"MEAN_MOTION" validate:"gt=0"`
	Eccentricity    float64 `json:"ECCENTRICITY" validate:"gte=0,lt=1"`
	Inclination     float64 `json:"INCLINATION" validate:"gte=0,lte=180"`
	RAOfAscNode     float64 `json:"RA_OF_ASC_NODE"`
	ArgOfPericenter float64 `json:"ARG_OF_PERICENTER"`
	MeanAnomaly     float64 `json:"MEAN_ANOMALY"`

	EphemerisType      int    `json:"EPHEMERIS_TYPE" validate:"gte=0,lte=9"`
	ClassificationType string `json:"CLASSIFICATION_TYPE" validate:"omitempty,oneof=U C S"`
	NoradCatID         int    `json:"NORAD_CAT_ID" validate:"gte=0,lt=340000"`
	ElementSetNo       int    `json:"ELEMENT_SET_NO" validate:"gte=0"`
	RevAtEpoch         int    `json:"REV_AT_EPOCH" validate:"gte=0"`

	// BStar is in 1/earth radii, MeanMotionDot is n-dot/2 in rev/day^2 and
	// MeanMotionDDot is n-ddot/6 in rev/day^3, as on a TLE.
	BStar          float64 `json:"BSTAR"`
	MeanMotionDot  float64 `json:"MEAN_MOTION_DOT"`
	MeanMotionDDot float64 `json:"MEAN_MOTION_DDOT"`

	// Optional fields that might appear in more complete CCSDS OMM JSON representations
	CenterName        string `json:"CENTER_NAME,omitempty"`
	RefFrame          string `json:"REF_FRAME,omitempty" validate:"omitempty,eq=TEME"`
	TimeSystem        string `json:"TIME_SYSTEM,omitempty" validate:"omitempty,eq=UTC"`
	MeanElementTheory string `json:"MEAN_ELEMENT_THEORY,omitempty" validate:"omitempty,oneof=SGP4 SGP/SGP4"`
}

var ommValidator = newOMMValidator()

func newOMMValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ParseOMM parses a JSON byte slice containing either an array of OMM
// objects or a single object.
func ParseOMM(data []byte) ([]OMM, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var o OMM
		if err := json.Unmarshal(data, &o); err != nil {
			return nil, fmt.Errorf("error unmarshalling OMM JSON: %w", err)
		}
		return []OMM{o}, nil
	}
	var omms []OMM
	if err := json.Unmarshal(data, &omms); err != nil {
		return nil, fmt.Errorf("error unmarshalling OMM JSON: %w", err)
	}
	return omms, nil
}

// validate checks field ranges and returns a *ParseError naming the first
// offending field.
func (o *OMM) validate() error {
	err := ommValidator.Struct(o)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ParseError{Kind: InvalidField, Err: err}
	}
	fe := verrs[0]
	kind := InvalidField
	switch fe.Tag() {
	case "gt", "gte", "lt", "lte":
		kind = OutOfRange
	}
	return &ParseError{Field: fe.Field(), Kind: kind, Value: fmt.Sprint(fe.Value()),
		Err: fmt.Errorf("failed on %q", strings.TrimSuffix(fe.Tag()+"="+fe.Param(), "="))}
}

// parseOMMEpoch parses an OMM epoch string (ISO 8601). A string without a
// zone designator is taken as UTC.
func parseOMMEpoch(epochStr string) (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04:05.999999999",
	}
	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, strings.TrimSpace(epochStr), time.UTC)
		if err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("error parsing OMM epoch string %q", epochStr)
}

// Elements validates the message and converts it to the same OrbitalElements
// a TLE parse would produce.
func (o *OMM) Elements() (*OrbitalElements, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}

	el := &OrbitalElements{
		Name:             strings.TrimSpace(o.ObjectName),
		CatalogNumber:    o.NoradCatID,
		BStar:            o.BStar,
		EphemerisType:    o.EphemerisType,
		ElementSetNumber: o.ElementSetNo,
		RevolutionNumber: o.RevAtEpoch,
	}
	el.Classification, _ = parseClassification(o.ClassificationType)

	var err error
	if el.Designator, err = parseCOSPAR(o.ObjectID); err != nil {
		return nil, &ParseError{Field: "OBJECT_ID", Kind: InvalidField, Value: o.ObjectID, Err: err}
	}

	t, err := parseOMMEpoch(o.EpochStr)
	if err != nil {
		return nil, &ParseError{Field: "EPOCH", Kind: InvalidField, Value: o.EpochStr, Err: err}
	}
	el.Epoch = ToJulian(t)

	err = el.setAngles(elementsInput{
		inclination:  o.Inclination,
		raan:         o.RAOfAscNode,
		eccentricity: o.Eccentricity,
		argp:         o.ArgOfPericenter,
		meanAnomaly:  o.MeanAnomaly,
		meanMotion:   o.MeanMotion,
		ndot:         o.MeanMotionDot,
		nddot:        o.MeanMotionDDot,
	})
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Line = 0
		}
		return nil, err
	}
	return el, nil
}

// OMM renders the elements as an OMM JSON object.
func (el *OrbitalElements) OMM() OMM {
	return OMM{
		ObjectName:         el.Name,
		ObjectID:           el.Designator.COSPAR(),
		EpochStr:           el.EpochTime().Format("2006-01-02T15:04:05.000000"),
		MeanMotion:         el.MeanMotionRevPerDay(),
		Eccentricity:       el.Eccentricity,
		Inclination:        el.InclinationDeg(),
		RAOfAscNode:        el.RightAscensionDeg(),
		ArgOfPericenter:    el.ArgOfPerigeeDeg(),
		MeanAnomaly:        el.MeanAnomalyDeg(),
		EphemerisType:      el.EphemerisType,
		ClassificationType: el.Classification.String(),
		NoradCatID:         el.CatalogNumber,
		ElementSetNo:       el.ElementSetNumber,
		RevAtEpoch:         el.RevolutionNumber,
		BStar:              el.BStar,
		MeanMotionDot:      el.MeanMotionDotRevPerDay2(),
		MeanMotionDDot:     el.MeanMotionDDotRevPerDay3(),
		CenterName:         "EARTH",
		RefFrame:           "TEME",
		TimeSystem:         "UTC",
		MeanElementTheory:  "SGP4",
	}
}
