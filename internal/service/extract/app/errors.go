package app

import (
	"errors"
	"fmt"

	"github.com/Cleo-Systems/elevate-extract/internal/service/extract/fhir"
)

// Kind classifies a processing failure. Every kind currently gets the same
// remedial action, immediate re-visibility, but the classification is carried
// on the error so per-kind policy (e.g. dead-lettering deterministic failures
// directly) can be added without reworking the loop.
type Kind string

const (
	KindBadNotification  Kind = "bad_notification"   // unparseable queue message
	KindFetchError       Kind = "fetch_error"        // input object unreachable
	KindMalformedBundle  Kind = "malformed_bundle"   // input fails structural parse
	KindNoPatientRecords Kind = "no_patient_records" // parsed but zero qualifying records
	KindUnknown          Kind = "unknown"            // anything else, publish and filesystem included
)

// Error is a classified pipeline failure.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func failure(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf reports the kind of a pipeline error, KindUnknown for anything
// unclassified.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

// extractionKind maps extractor errors onto failure kinds.
func extractionKind(err error) Kind {
	switch {
	case errors.Is(err, fhir.ErrMalformedBundle):
		return KindMalformedBundle
	case errors.Is(err, fhir.ErrNoPatientRecords):
		return KindNoPatientRecords
	default:
		return KindUnknown
	}
}
