package output_test

import (
	"bytes"
	"testing"

	"github.com/fzdarsky/srp6a/internal/cli/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `yaml:"name" json:"name"`
	Ready bool   `yaml:"ready" json:"ready"`
}

func TestWrite(t *testing.T) {
	tests := []struct {
		format   output.Format
		expected string
	}{
		{format: output.FormatYAML, expected: "name: alice\nready: true\n"},
		{format: output.FormatJSON, expected: "{\n  \"name\": \"alice\",\n  \"ready\": true\n}\n"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, output.Write(&buf, sample{Name: "alice", Ready: true}, tt.format))
			assert.Equal(t, tt.expected, buf.String())
		})
	}

	assert.Error(t, output.Write(&bytes.Buffer{}, sample{}, output.Format("xml")))
}

func TestParseFormat(t *testing.T) {
	for input, expected := range map[string]output.Format{
		"yaml": output.FormatYAML,
		"yml":  output.FormatYAML,
		"json": output.FormatJSON,
	} {
		format, err := output.ParseFormat(input)
		require.NoError(t, err)
		assert.Equal(t, expected, format)
	}

	_, err := output.ParseFormat("xml")
	assert.ErrorContains(t, err, "must be 'yaml' or 'json'")
}
