package u

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		n   int64
		exp string
	}{
		{0, "0 bytes"},
		{1023, "1023 bytes"},
		{1024, "1 kB"},
		{1536, "1.50 kB"},
		{5 * 1024 * 1024, "5 MB"},
		{3 * 1024 * 1024 * 1024, "3 GB"},
	}
	for _, test := range tests {
		assert.Equal(t, test.exp, FormatSize(test.n))
	}
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Car", Capitalize("car"))
	assert.Equal(t, "Bar", Capitalize("BAR"))
	assert.Equal(t, "", Capitalize(""))
}

func TestFileHelpers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cars.json")
	assert.False(t, FileExists(path))
	assert.Equal(t, int64(-1), FileSize(path))

	assert.NoError(t, os.WriteFile(path, []byte("[]\n"), 0644))
	assert.True(t, FileExists(path))
	assert.False(t, FileExists(dir))
	assert.Equal(t, int64(3), FileSize(path))
}

func TestExpandTildeInPath(t *testing.T) {
	home, err := os.UserHomeDir()
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "records", "cars.json"), ExpandTildeInPath("~/records/cars.json"))
	assert.Equal(t, home, ExpandTildeInPath("~"))
	assert.Equal(t, "/tmp/cars.json", ExpandTildeInPath("/tmp/cars.json"))
	assert.Equal(t, "~cars.json", ExpandTildeInPath("~cars.json"))
}
