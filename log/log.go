package log

import (
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/toon-format/toon-go"
)

var (
	logFile    *DailyFile
	errorsFile *DailyFile
	eventsFile *DailyFile

	// if set, Logf() also writes there. nil for the interactive
	// menu where log lines would mix with prompts
	console   io.Writer
	muConsole sync.Mutex

	// if true, Verbosef() logs
	Verbose bool
)

type Config struct {
	// log, errors and events go to log/, errors/ and events/
	// sub-directories. If empty, nothing is written to disk
	Dir string
	// if set, Logf() also writes there
	Console io.Writer
	// enables Verbosef()
	Verbose bool
	// if > 0, files older than that many days are deleted by Init
	KeepDays int
}

// Init (re)configures logging. It's fine to call it more than once.
func Init(config *Config) {
	Close()
	muConsole.Lock()
	console = config.Console
	muConsole.Unlock()
	Verbose = config.Verbose
	if config.Dir == "" {
		return
	}
	logFile = NewDailyFile(filepath.Join(config.Dir, "log"))
	errorsFile = NewDailyFile(filepath.Join(config.Dir, "errors"))
	eventsFile = NewDailyFile(filepath.Join(config.Dir, "events"))
	for _, d := range []*DailyFile{logFile, errorsFile, eventsFile} {
		removed, err := d.RemoveOlderThan(config.KeepDays)
		if err != nil {
			Logf("failed to remove old logs in '%s': %s\n", d.Dir, err)
		}
		if len(removed) > 0 {
			Verbosef("removed %d old log files from '%s'\n", len(removed), d.Dir)
		}
	}
}

func Close() {
	logFile.Close()
	errorsFile.Close()
	eventsFile.Close()
	logFile = nil
	errorsFile = nil
	eventsFile = nil
}

func writeConsole(s string) {
	muConsole.Lock()
	defer muConsole.Unlock()
	if console != nil {
		io.WriteString(console, s)
	}
}

func Logf(format string, args ...any) {
	s := format
	if len(args) > 0 {
		s = fmt.Sprintf(format, args...)
	}
	writeConsole(s)
	io.WriteString(logFile, s)
}

func Verbosef(format string, args ...any) {
	if Verbose {
		Logf(format, args...)
	}
}

// callstack returns "file:line" of callers, one per line, skipping
// skip frames and frames inside Go runtime
func callstack(skip int) string {
	var pcs [32]uintptr
	n := runtime.Callers(skip+2, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])
	var lines []string
	for {
		frame, more := frames.Next()
		if !strings.HasPrefix(frame.Function, "runtime.") && frame.File != "" {
			lines = append(lines, frame.File+":"+strconv.Itoa(frame.Line))
		}
		if !more {
			break
		}
	}
	return strings.Join(lines, "\n")
}

func errorf(skip int, format string, args ...any) {
	s := format
	if len(args) > 0 {
		s = fmt.Sprintf(format, args...)
	}
	s = strings.TrimRight(s, "\n") + "\n" + callstack(skip+1) + "\n"
	Logf("%s", s)
	io.WriteString(errorsFile, s)
}

// Errorf logs a message with the callstack to both regular and errors log
func Errorf(format string, args ...any) {
	errorf(1, format, args...)
}

// IfErrf logs err and returns true if err != nil.
// IfErrf(err) logs err.Error(), IfErrf(err, "saving %s", path) logs
// the formatted message.
func IfErrf(err error, args ...any) bool {
	if err == nil {
		return false
	}
	if len(args) == 0 {
		errorf(1, "%s", err.Error())
		return true
	}
	format, ok := args[0].(string)
	if !ok {
		format = fmt.Sprint(args[0])
	}
	errorf(1, format, args[1:]...)
	return true
}

// MarshalEvent formats an event as:
// <len(data)> <unix_ms> <name>\n<data>\n
// data is toon-encoded and can span multiple lines
func MarshalEvent(name string, t time.Time, data []byte) []byte {
	hdr := strconv.Itoa(len(data)) + " " + strconv.FormatInt(t.UTC().UnixMilli(), 10) + " " + name + "\n"
	res := make([]byte, 0, len(hdr)+len(data)+1)
	res = append(res, hdr...)
	res = append(res, data...)
	return append(res, '\n')
}

// Event logs an event. vals are key, value pairs:
// Event("export", "kind", "car", "records", 3)
func Event(name string, vals ...any) {
	if len(vals)%2 != 0 {
		panic(fmt.Sprintf("Event(%s): odd number of vals", name))
	}
	m := make(map[string]any, len(vals)/2)
	for i := 0; i < len(vals); i += 2 {
		k, ok := vals[i].(string)
		if !ok {
			k = fmt.Sprint(vals[i])
		}
		m[k] = vals[i+1]
	}
	if err := EventMap(name, m); err != nil {
		Logf("event '%s' not logged: %s\n", name, err)
	}
}

// EventMap logs an event with values from m, encoded with toon
func EventMap(name string, m map[string]any) error {
	var d []byte
	if len(m) > 0 {
		var err error
		if d, err = toon.Marshal(m); err != nil {
			return err
		}
	}
	_, err := eventsFile.Write(MarshalEvent(name, time.Now(), d))
	return err
}

// EventWithDuration logs an event with "durmicro" set to dur in microseconds
func EventWithDuration(name string, dur time.Duration, vals ...any) {
	vals = append(vals, "durmicro", dur.Microseconds())
	Event(name, vals...)
}

// ErrorEvent logs an event for a failed operation, with "error" set to err
func ErrorEvent(err error, name string, vals ...any) {
	vals = append(vals, "error", err.Error())
	Event(name, vals...)
}
