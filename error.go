package tardis

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every error returned by the package wraps one of them so
// callers can branch with errors.Is.
var (
	ErrLineCount    = errors.New("invalid line count")
	ErrLineLength   = errors.New("invalid line length")
	ErrLineNumber   = errors.New("invalid line number")
	ErrChecksum     = errors.New("checksum mismatch")
	ErrInvalidField = errors.New("invalid field")
	ErrOutOfRange   = errors.New("value out of range")
	ErrMismatch     = errors.New("catalog numbers do not match")

	ErrInvalidElements = errors.New("invalid orbital elements")

	ErrDecayed             = errors.New("satellite has decayed")
	ErrNumericalDivergence = errors.New("numerical divergence")
	ErrModelLimits         = errors.New("model limits exceeded")
)

// ParseErrorKind identifies what was wrong with an element set.
type ParseErrorKind int

const (
	LineCount ParseErrorKind = iota
	LineLength
	LineNumber
	Checksum
	InvalidField
	OutOfRange
	Mismatch
)

func (k ParseErrorKind) sentinel() error {
	switch k {
	case LineCount:
		return ErrLineCount
	case LineLength:
		return ErrLineLength
	case LineNumber:
		return ErrLineNumber
	case Checksum:
		return ErrChecksum
	case OutOfRange:
		return ErrOutOfRange
	case Mismatch:
		return ErrMismatch
	default:
		return ErrInvalidField
	}
}

// ParseError is returned when an element set cannot be decoded.
type ParseError struct {
	Line  int    // 1 or 2 for TLE lines, 0 when not line specific
	Field string // name of the offending field
	Kind  ParseErrorKind
	Value string // raw text of the field
	Err   error  // underlying cause, if any
}

// Error returns the error message for ParseError.
func (e *ParseError) Error() string {
	msg := e.Kind.sentinel().Error()
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	if e.Value != "" {
		msg += fmt.Sprintf(" (%q)", e.Value)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return "parse: " + msg
}

// Is reports whether target is the sentinel matching the error kind.
func (e *ParseError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// SessionError is returned when a propagation session cannot be initialised
// from a set of elements.
type SessionError struct {
	CatalogNumber int
	Reason        string
	Err           error
}

// Error returns the error message for SessionError.
func (e *SessionError) Error() string {
	msg := fmt.Sprintf("session for %05d: %s", e.CatalogNumber, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SessionError) Is(target error) bool {
	return target == ErrInvalidElements
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// PropagationErrorKind classifies a failed propagation.
type PropagationErrorKind int

const (
	Decayed PropagationErrorKind = iota
	NumericalDivergence
	ModelLimits
)

// ModelLimitsReason defines the specific reason for a model limit violation.
type ModelLimitsReason string

const (
	ReasonMeanMotion        ModelLimitsReason = "mean motion not positive"
	ReasonEccentricity      ModelLimitsReason = "mean eccentricity outside [-0.001, 1)"
	ReasonPerturbedEcc      ModelLimitsReason = "perturbed eccentricity outside [0, 1]"
	ReasonSemiLatusRectum   ModelLimitsReason = "semi-latus rectum negative"
	ReasonDragTerm          ModelLimitsReason = "drag term reached zero"
	ReasonSemiMajorAxis     ModelLimitsReason = "semi-major axis below one earth radius"
	ReasonRadius            ModelLimitsReason = "radius below one earth radius"
	ReasonKeplerIterations  ModelLimitsReason = "kepler equation did not converge"
	ReasonNonFiniteSolution ModelLimitsReason = "non-finite state"
)

// PropagationError is returned when a state vector cannot be produced for a
// query time. The session that produced it stays usable.
type PropagationError struct {
	Kind   PropagationErrorKind
	Tsince float64 // minutes since epoch
	Reason ModelLimitsReason
	Value  float64 // value that triggered the failure
}

// Error returns the error message for PropagationError.
func (e *PropagationError) Error() string {
	var kind string
	switch e.Kind {
	case Decayed:
		kind = ErrDecayed.Error()
	case NumericalDivergence:
		kind = ErrNumericalDivergence.Error()
	default:
		kind = ErrModelLimits.Error()
	}
	return fmt.Sprintf("sgp4: %s at tsince %.4f min: %s (value: %.6e)", kind, e.Tsince, e.Reason, e.Value)
}

// Is matches ErrDecayed, ErrNumericalDivergence or ErrModelLimits.
func (e *PropagationError) Is(target error) bool {
	switch e.Kind {
	case Decayed:
		return target == ErrDecayed
	case NumericalDivergence:
		return target == ErrNumericalDivergence
	default:
		return target == ErrModelLimits
	}
}
