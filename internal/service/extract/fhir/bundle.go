package fhir

import (
	"encoding/json"
	"errors"
)

var (
	// ErrMalformedBundle means the document has no recognizable entry list.
	ErrMalformedBundle = errors.New("bundle has no entry list")
	// ErrNoPatientRecords means the bundle parsed fine but produced zero rows.
	ErrNoPatientRecords = errors.New("bundle contains no patient records")
)

// Bundle is the parsed input document: an HL7 bundle wrapping a list of entries.
// Entry is a pointer so a document missing the "entry" key entirely can be told
// apart from one carrying an empty list.
type Bundle struct {
	Entry *[]Entry `json:"entry"`
}

// Entry wraps one resource of a Bundle. The resource stays untyped: the feed is
// loosely shaped and every field is individually optional, so extraction walks
// the raw document instead of forcing it through a schema.
type Entry struct {
	FullURL  string         `json:"fullUrl"`
	Resource map[string]any `json:"resource"`
}

// ParseBundle decodes raw bundle bytes. A JSON-level failure is reported as
// ErrMalformedBundle since the document is structurally unusable either way.
func ParseBundle(data []byte) (*Bundle, error) {
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, errors.Join(ErrMalformedBundle, err)
	}
	return &b, nil
}
