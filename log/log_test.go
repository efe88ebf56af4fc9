package log

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert"
)

func readToday(t *testing.T, dir string, sub string) string {
	d, err := os.ReadFile(NewDailyFile(filepath.Join(dir, sub)).Path(time.Now()))
	assert.NoError(t, err)
	return string(d)
}

func TestLogf(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	Init(&Config{Dir: dir, Console: &buf})
	defer Init(&Config{})

	Logf("added %d records\n", 3)
	Logf("100% done\n")
	Verbosef("not logged\n")
	Verbose = true
	Verbosef("logged\n")
	Close()

	exp := "added 3 records\n100% done\nlogged\n"
	assert.Equal(t, exp, buf.String())
	assert.Equal(t, exp, readToday(t, dir, "log"))
}

func TestLogWithoutDir(t *testing.T) {
	Init(&Config{})
	Logf("goes nowhere\n")
	Errorf("goes nowhere")
	Event("nowhere", "n", 1)
	Close()
}

func TestErrorf(t *testing.T) {
	dir := t.TempDir()
	Init(&Config{Dir: dir})
	defer Init(&Config{})

	assert.False(t, IfErrf(nil))
	assert.True(t, IfErrf(errors.New("import failed")))
	assert.True(t, IfErrf(errors.New("x"), "saving '%s' failed", "cars.json"))
	Close()

	s := readToday(t, dir, "errors")
	assert.True(t, strings.HasPrefix(s, "import failed\n"), "s: %s", s)
	assert.True(t, strings.Contains(s, "\nsaving 'cars.json' failed\n"), "s: %s", s)
	lines := strings.Split(s, "\n")
	assert.True(t, strings.Contains(lines[1], "log_test.go:"), "line: %s", lines[1])
	assert.Equal(t, s, readToday(t, dir, "log"))
}

func TestEvent(t *testing.T) {
	dir := t.TempDir()
	Init(&Config{Dir: dir})
	defer Init(&Config{})

	Event("store_change", "kind", "car", "op", "add")
	Event("no_values")
	Close()

	s := readToday(t, dir, "events")
	lines := strings.Split(strings.TrimSpace(s), "\n")
	assert.True(t, len(lines) >= 4, "s: %s", s)
	assert.True(t, strings.HasSuffix(lines[0], " store_change"), "line: %s", lines[0])
	assert.True(t, strings.Contains(s, "kind: car"), "s: %s", s)
	assert.True(t, strings.Contains(s, "op: add"), "s: %s", s)
	last := lines[len(lines)-1]
	assert.True(t, strings.HasPrefix(last, "0 "), "line: %s", last)
	assert.True(t, strings.HasSuffix(last, " no_values"), "line: %s", last)
}

func TestMarshalEvent(t *testing.T) {
	tm := time.UnixMilli(1704067200000)
	got := MarshalEvent("export", tm, []byte("count: 3"))
	assert.Equal(t, "8 1704067200000 export\ncount: 3\n", string(got))
}

func TestEventOddValsPanics(t *testing.T) {
	defer func() {
		assert.True(t, recover() != nil)
	}()
	Event("bad", "key")
}

func TestInitRemovesOldLogs(t *testing.T) {
	dir := t.TempDir()
	logDir := filepath.Join(dir, "log")
	assert.NoError(t, os.MkdirAll(logDir, 0755))
	old := filepath.Join(logDir, time.Now().UTC().AddDate(0, 0, -40).Format(dayFormat)+".txt")
	recent := filepath.Join(logDir, time.Now().UTC().AddDate(0, 0, -2).Format(dayFormat)+".txt")
	for _, path := range []string{old, recent} {
		assert.NoError(t, os.WriteFile(path, []byte("x\n"), 0644))
	}

	Init(&Config{Dir: dir, KeepDays: 30})
	defer Init(&Config{})
	_, err := os.Stat(old)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(recent)
	assert.NoError(t, err)
}
