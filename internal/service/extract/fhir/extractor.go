package fhir

import (
	"strings"

	"github.com/rs/zerolog"
)

// Extractor flattens bundle entries into rows. It is pure apart from the
// diagnostics it logs for skipped entries.
type Extractor struct {
	log zerolog.Logger
}

func NewExtractor(log zerolog.Logger) *Extractor {
	return &Extractor{log: log}
}

// Extract produces one Row per patient entry, preserving entry order.
//
// Entries without a resource, and resources that are not patients, are skipped
// with a diagnostic but never fail the bundle. Within a qualifying resource
// every field is optional: a missing value yields an empty cell (false for the
// active flag). A bundle with no entry list is malformed; a bundle that yields
// zero rows is unusable and reported as such so the caller can decide policy.
func (e *Extractor) Extract(b *Bundle) ([]Row, error) {
	if b == nil || b.Entry == nil {
		return nil, ErrMalformedBundle
	}

	var rows []Row
	for _, entry := range *b.Entry {
		res := entry.Resource
		if len(res) == 0 {
			e.log.Warn().Str("url", entry.FullURL).Msg("entry has no resource, skipping")
			continue
		}
		if rt := str(res, "resourceType"); !strings.EqualFold(rt, "patient") {
			e.log.Warn().Str("url", entry.FullURL).Str("resource_type", rt).
				Msg("resource is not a patient, skipping")
			continue
		}
		rows = append(rows, rowFromResource(entry.FullURL, res))
	}

	if len(rows) == 0 {
		return nil, ErrNoPatientRecords
	}
	return rows, nil
}

func rowFromResource(url string, res map[string]any) Row {
	name := firstObj(res, "name")
	return Row{
		URL:         url,
		ResourceID:  str(res, "id"),
		LastUpdated: str(obj(res, "meta"), "lastUpdated"),
		Status:      strings.ToLower(str(obj(res, "text"), "status")),
		SystemID:    str(obj(res, "text"), "value"),
		Active:      boolean(res, "active"),
		FirstName:   firstStr(strList(name, "given")),
		LastName:    strList(name, "family"),
		Phone:       str(firstObj(res, "telecom"), "value"),
		Gender:      str(res, "gender"),
		Address:     str(firstObj(res, "address"), "value"),
	}
}

// Defensive accessors: every lookup tolerates a nil map, a missing key, or a
// value of the wrong shape, and falls back to the zero value.

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func boolean(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func obj(m map[string]any, key string) map[string]any {
	o, _ := m[key].(map[string]any)
	return o
}

func list(m map[string]any, key string) []any {
	l, _ := m[key].([]any)
	return l
}

func firstObj(m map[string]any, key string) map[string]any {
	l := list(m, key)
	if len(l) == 0 {
		return nil
	}
	o, _ := l[0].(map[string]any)
	return o
}

func strList(m map[string]any, key string) []string {
	var out []string
	for _, v := range list(m, key) {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func firstStr(l []string) string {
	if len(l) == 0 {
		return ""
	}
	return l[0]
}
