package services

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDumpWriterWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	payload := map[string]interface{}{"company_id": "c1", "count": 2}

	tests := []struct {
		format string
		ext    string
	}{
		{format: "json", ext: ".json"},
		{format: "yml", ext: ".yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			writer, err := NewDumpWriter(dir, tt.format)
			require.NoError(t, err)

			path, err := writer.Write("products_c1/../x", payload)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, "products_c1_.._x"+tt.ext), path)

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

			data, err := os.ReadFile(path)
			require.NoError(t, err)

			var decoded map[string]interface{}
			require.NoError(t, yaml.Unmarshal(data, &decoded))
			assert.Equal(t, "c1", decoded["company_id"])
		})
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestDumpWriterPrintAndFormat(t *testing.T) {
	_, err := NewDumpWriter("", "xml")
	assert.Error(t, err)

	writer, err := NewDumpWriter("", "")
	require.NoError(t, err)
	assert.Equal(t, ".", writer.Dir)

	var buf bytes.Buffer
	require.NoError(t, writer.Print(&buf, []string{"a"}))
	assert.JSONEq(t, `["a"]`, buf.String())
}
