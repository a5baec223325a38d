package tabular

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cleo-Systems/elevate-extract/internal/service/extract/fhir"
)

func TestWriteHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter().Write(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, fhir.Columns, records[0])
}

func TestWriteRoundTrip(t *testing.T) {
	rows := []fhir.Row{
		{
			URL:        "u1",
			ResourceID: "p1",
			Active:     true,
			FirstName:  "Ann",
			LastName:   []string{"Lee"},
			Phone:      "555-1234",
			Gender:     "female",
			Address:    "1 Main St",
		},
		{
			// awkward cell contents must survive quoting
			URL:       "u2",
			FirstName: `Ann "Danger"`,
			Phone:     "555,1234",
			Address:   "1 Main St\nApt 2",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewWriter().Write(&buf, rows))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, fhir.Columns, records[0])
	for i, row := range rows {
		assert.Equal(t, row.Record(), records[i+1])
	}
}

func TestWritePreservesRowOrder(t *testing.T) {
	rows := []fhir.Row{{ResourceID: "a"}, {ResourceID: "b"}, {ResourceID: "c"}}

	var buf bytes.Buffer
	require.NoError(t, NewWriter().Write(&buf, rows))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "a", records[1][1])
	assert.Equal(t, "b", records[2][1])
	assert.Equal(t, "c", records[3][1])
}
