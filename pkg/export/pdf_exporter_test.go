package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDFExporterRendersNonEmptyDocument(t *testing.T) {
	e := NewPDFExporter()
	out, err := e.Render(Dataset{
		Headers: []string{"semester", "course_id"},
		Rows:    []map[string]string{{"semester": "0", "course_id": "CAS-CS-111"}},
	}, "fall 2026 plan")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestPDFExporterRejectsEmptyHeaders(t *testing.T) {
	e := NewPDFExporter()
	_, err := e.Render(Dataset{}, "")
	assert.Error(t, err)
}

func TestPDFExporterRendersWithoutTitle(t *testing.T) {
	e := NewPDFExporter()
	out, err := e.Render(Dataset{Headers: []string{"a"}}, "")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
