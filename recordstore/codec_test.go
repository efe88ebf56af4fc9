package recordstore

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert"
)

func writeTestFile(t *testing.T, name string, s string) string {
	path := filepath.Join(t.TempDir(), name)
	err := os.WriteFile(path, []byte(s), 0644)
	assert.NoError(t, err)
	return path
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		exp  Format
	}{
		{"cars.json", FormatJSON},
		{"dir/CARS.JSON", FormatJSON},
		{"cars.json.gz", FormatJSON},
		{"cars.json.br", FormatJSON},
		{"cars.toon", FormatTOON},
		{"cars.toon.zst", FormatTOON},
	}
	for _, test := range tests {
		got, err := FormatFromPath(test.path)
		assert.NoError(t, err)
		assert.Equal(t, test.exp, got, "path: %s", test.path)
	}
	for _, path := range []string{"cars.txt", "cars", "cars.gz"} {
		_, err := FormatFromPath(path)
		assert.Error(t, err, "path: %s", path)
	}
}

func TestExportJSONLayout(t *testing.T) {
	s := New(testCarKind, seqIDs())
	_, err := s.Add(Fields{"make": "Toyota", "model": "Corolla", "year": 2020})
	assert.NoError(t, err)

	var buf bytes.Buffer
	err = s.ExportTo(&buf, FormatJSON)
	assert.NoError(t, err)
	exp := `[
    {
        "id": "car-1",
        "make": "Toyota",
        "model": "Corolla",
        "year": 2020
    }
]
`
	assert.Equal(t, exp, buf.String())
}

func TestExportImportEmpty(t *testing.T) {
	for _, name := range []string{"cars.json", "cars.toon"} {
		path := filepath.Join(t.TempDir(), name)
		s := New(testCarKind)
		err := s.Export(path)
		assert.NoError(t, err)

		s2 := newTestStore(t)
		report, err := s2.Import(path)
		assert.NoError(t, err, "path: %s", path)
		assert.Equal(t, 0, report.Imported)
		assert.Equal(t, 0, len(report.Rejected))
		assert.Equal(t, 0, s2.Len())
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	names := []string{
		"cars.json",
		"cars.toon",
		"cars.json.gz",
		"cars.json.br",
		"cars.json.zst",
		"cars.toon.br",
	}
	for _, name := range names {
		s := newTestStore(t)
		_, err := s.Add(Fields{"make": "Ford", "model": "Model T", "year": 1908})
		assert.NoError(t, err)

		path := filepath.Join(t.TempDir(), name)
		err = s.Export(path)
		assert.NoError(t, err, "path: %s", path)

		s2 := New(testCarKind)
		report, err := s2.Import(path)
		assert.NoError(t, err, "path: %s", path)
		assert.Equal(t, 3, report.Imported)
		assert.Equal(t, 0, len(report.Rejected))
		assert.Equal(t, s.List(), s2.List(), "path: %s", path)
	}
}

func TestExportOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cars.json")
	s := newTestStore(t)
	assert.NoError(t, s.Export(path))
	_, err := s.RemoveAt(0)
	assert.NoError(t, err)
	assert.NoError(t, s.Export(path))

	s2 := New(testCarKind)
	_, err = s2.Import(path)
	assert.NoError(t, err)
	assert.Equal(t, []string{"car-2"}, ids(s2.List()))
}

func TestImportRejectsInvalidEntries(t *testing.T) {
	data := `[
    {"id": "a", "make": "Toyota", "model": "Corolla", "year": 2020},
    {"id": "b", "make": "Ford", "model": "T", "year": 1850},
    {"make": "Honda", "model": "Civic", "year": 2018.0},
    {"id": "a", "make": "Fiat", "model": "500", "year": 2010},
    {"id": 5, "make": "Fiat", "model": "500", "year": 2010},
    {"id": "c", "make": "Fiat", "model": "500", "year": 2010.5}
]`
	path := writeTestFile(t, "cars.json", data)
	s := New(testCarKind, seqIDs())
	report, err := s.Import(path)
	assert.NoError(t, err)
	assert.Equal(t, 2, report.Imported)
	assert.Equal(t, 2, s.Len())

	var positions []int
	for _, r := range report.Rejected {
		positions = append(positions, r.Position)
		assert.True(t, errors.Is(r.Err, ErrValidation), "err: %v", r.Err)
	}
	assert.Equal(t, []int{1, 3, 4, 5}, positions)
	assert.Equal(t, "b", report.Rejected[0].ID)

	recs := s.List()
	assert.Equal(t, "a", recs[0].ID)
	assert.Equal(t, testCar{"Toyota", "Corolla", 2020}, recs[0].Value)
	// entries without id get a new one
	assert.Equal(t, "car-1", recs[1].ID)
	assert.Equal(t, 2018, recs[1].Value.Year)
}

func TestImportMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"cars.json", ""},
		{"cars.json", "not json"},
		{"cars.json", `{"make": "Toyota"}`},
		{"cars.json", `[{"make": "Toyota"}`},
		{"cars.json", `[1, 2]`},
		{"cars.json", `[] []`},
		{"cars.json", `null`},
		{"cars.json", ` "cars" `},
		{"cars.json", `42`},
		{"cars.json.gz", "this is not gzip"},
		{"cars.json.zst", "this is not zstd"},
		{"cars.toon", ""},
	}
	for _, test := range tests {
		path := writeTestFile(t, test.name, test.data)
		s := newTestStore(t)
		before := s.List()
		_, err := s.Import(path)
		assert.True(t, errors.Is(err, ErrFormat), "data: '%s', err: %v", test.data, err)
		assert.False(t, errors.Is(err, ErrIO))
		assert.Equal(t, before, s.List())
	}
}

func TestImportMissingFile(t *testing.T) {
	s := newTestStore(t)
	path := filepath.Join(t.TempDir(), "missing.json")
	_, err := s.Import(path)
	assert.True(t, errors.Is(err, ErrIO))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Equal(t, 2, s.Len())

	// a directory can be opened but not read
	dir := filepath.Join(t.TempDir(), "cars.json")
	assert.NoError(t, os.Mkdir(dir, 0755))
	_, err = s.Import(dir)
	assert.True(t, errors.Is(err, ErrIO), "err: %v", err)
	assert.Equal(t, 2, s.Len())
}

func TestExportErrors(t *testing.T) {
	s := newTestStore(t)
	dir := t.TempDir()

	err := s.Export(filepath.Join(dir, "no", "such", "dir", "cars.json"))
	assert.True(t, errors.Is(err, ErrIO))

	err = s.Export(filepath.Join(dir, "cars.csv"))
	assert.True(t, errors.Is(err, ErrIO))
	assert.True(t, strings.Contains(err.Error(), "unsupported file type"))
}
