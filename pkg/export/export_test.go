package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() Dataset {
	return Dataset{
		Headers: []string{"id", "name", "gpa"},
		Rows: [][]string{
			{"1", "Alice, A.", "6.86"},
			{"2", "Bob", "4.00"},
		},
		Footer: []string{"", "average", "5.43"},
	}
}

func TestCSVRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sample())
	require.NoError(t, err)
	assert.Equal(t, "id,name,gpa\n1,\"Alice, A.\",6.86\n2,Bob,4.00\n,average,5.43\n", string(out))
}

func TestCSVRejectsRaggedRows(t *testing.T) {
	data := sample()
	data.Rows = append(data.Rows, []string{"3"})
	_, err := NewCSVExporter().Render(data)
	assert.Error(t, err)

	_, err = NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sample(), "GPA Report", "generated now")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}
