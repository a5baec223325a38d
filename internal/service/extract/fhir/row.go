package fhir

import "strings"

// Columns is the fixed output header, in the order the extract has always
// been published with.
var Columns = []string{
	"url",
	"resource_id",
	"last_updated",
	"status",
	"system_id",
	"active",
	"first_name",
	"last_name",
	"phone",
	"gender",
	"address",
}

// Row is one flat patient record derived from a qualifying bundle entry.
// LastName keeps its list shape from the source document; see Record.
type Row struct {
	URL         string
	ResourceID  string
	LastUpdated string
	Status      string
	SystemID    string
	Active      bool
	FirstName   string
	LastName    []string
	Phone       string
	Gender      string
	Address     string
}

// Record renders the row as output cells, aligned with Columns.
func (r Row) Record() []string {
	return []string{
		r.URL,
		r.ResourceID,
		r.LastUpdated,
		r.Status,
		r.SystemID,
		formatActive(r.Active),
		r.FirstName,
		formatFamily(r.LastName),
		r.Phone,
		r.Gender,
		r.Address,
	}
}

func formatActive(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// formatFamily renders the family-name list as a list literal, e.g. ['Lee'].
// Downstream consumers of the historical extract parse this shape, so it is
// kept byte-compatible rather than unwrapped to a scalar like the sibling
// name fields. An absent family name renders as an empty cell.
func formatFamily(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return "['" + strings.Join(names, "', '") + "']"
}
