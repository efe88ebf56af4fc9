package changelog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

var ErrClosed = errors.New("changelog is closed")

type Entry struct {
	// offset in data file
	Offset int64
	// 0 means no data
	Size int64
	// time in utc unix milliseconds
	TimestampMs int64
	// e.g. "add", "update", can't contain spaces or newlines
	Op string
	// optional, can't contain newlines
	Meta string
}

func (e *Entry) Time() time.Time {
	return time.UnixMilli(e.TimestampMs).UTC()
}

type Log struct {
	Dir           string
	IndexFileName string
	DataFileName  string

	indexFilePath string
	dataFilePath  string
	entries       []*Entry
	closed        bool
	mu            sync.Mutex
}

// Open opens (creating if needed) a log named name in dir.
// The files are <name>.index.txt and <name>.data.txt
func Open(dir string, name string) (*Log, error) {
	if name == "" {
		return nil, fmt.Errorf("name is empty")
	}
	l := &Log{
		Dir:           dir,
		IndexFileName: name + ".index.txt",
		DataFileName:  name + ".data.txt",
	}
	if err := OpenLog(l); err != nil {
		return nil, err
	}
	return l, nil
}

// OpenLog opens a log described by l. Empty file names get defaults.
func OpenLog(l *Log) error {
	if l.Dir == "" {
		return fmt.Errorf("directory is not set. For current directory, use '.'")
	}
	if l.IndexFileName == "" {
		l.IndexFileName = "index.txt"
	}
	if l.DataFileName == "" {
		l.DataFileName = "data.txt"
	}

	var err error
	l.indexFilePath, err = filepath.Abs(filepath.Join(l.Dir, l.IndexFileName))
	if err != nil {
		return fmt.Errorf("failed to get absolute path for index file: %w", err)
	}
	l.dataFilePath, err = filepath.Abs(filepath.Join(l.Dir, l.DataFileName))
	if err != nil {
		return fmt.Errorf("failed to get absolute path for data file: %w", err)
	}

	if err = os.MkdirAll(l.Dir, 0755); err != nil {
		return err
	}
	l.entries, err = readIndex(l.indexFilePath)
	if err != nil {
		return fmt.Errorf("failed to read index file: %w", err)
	}
	l.closed = false
	return nil
}

// Entries returns a copy of all entries, oldest first
func (l *Log) Entries() []*Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*Entry{}, l.entries...)
}

// Last returns up to n most recent entries, oldest first
func (l *Log) Last(n int) []*Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n > len(l.entries) {
		n = len(l.entries)
	}
	return append([]*Entry{}, l.entries[len(l.entries)-n:]...)
}

func (l *Log) Close() error {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	return nil
}

// returns offset at which the data was written.
// offset is taken from file size so that a partial write that wasn't
// recorded in the index doesn't corrupt subsequent entries
func appendToFileRobust(path string, data []byte) (int64, error) {
	info, err := os.Stat(path)
	if err != nil && !os.IsNotExist(err) {
		return 0, err
	}
	var offset int64
	if info != nil {
		offset = info.Size()
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return 0, err
	}
	if _, err = f.Write(data); err != nil {
		f.Close()
		return 0, err
	}
	if err = f.Sync(); err != nil {
		f.Close()
		return 0, err
	}
	if err = f.Close(); err != nil {
		return 0, err
	}
	return offset, nil
}

func validate(op string, meta string) error {
	if op == "" {
		return fmt.Errorf("op is empty")
	}
	if strings.ContainsAny(op, " \t\r\n") {
		return fmt.Errorf("op '%s' can't contain whitespace", op)
	}
	if strings.ContainsAny(meta, "\r\n") {
		return fmt.Errorf("meta can't contain newlines")
	}
	return nil
}

// Append writes data to the data file and records an entry in the index
func (l *Log) Append(op string, data []byte, meta string) (*Entry, error) {
	if err := validate(op, meta); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, ErrClosed
	}

	e := &Entry{
		Op:          op,
		Meta:        meta,
		Size:        int64(len(data)),
		TimestampMs: time.Now().UTC().UnixMilli(),
	}
	var err error
	if len(data) > 0 {
		if e.Offset, err = appendToFileRobust(l.dataFilePath, data); err != nil {
			return nil, err
		}
	}
	if _, err = appendToFileRobust(l.indexFilePath, []byte(FormatIndexLine(e))); err != nil {
		return nil, err
	}
	l.entries = append(l.entries, e)
	return e, nil
}

// ReadData returns the data of e. It's nil for entries without data.
func (l *Log) ReadData(e *Entry) ([]byte, error) {
	if e.Size == 0 {
		return nil, nil
	}
	f, err := os.Open(l.dataFilePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if _, err = f.Seek(e.Offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to offset %d: %w", e.Offset, err)
	}
	buf := make([]byte, e.Size)
	n, err := io.ReadFull(f, buf)
	if err != nil {
		return nil, fmt.Errorf("read %d bytes, expected %d: %w", n, e.Size, err)
	}
	return buf, nil
}

// FormatIndexLine returns the index line for e, including the newline
func FormatIndexLine(e *Entry) string {
	if e.Meta == "" {
		return fmt.Sprintf("%d %d %d %s\n", e.Offset, e.Size, e.TimestampMs, e.Op)
	}
	return fmt.Sprintf("%d %d %d %s %s\n", e.Offset, e.Size, e.TimestampMs, e.Op, e.Meta)
}

// perf: allow re-using Entry
func ParseIndexLine(line string, res *Entry) error {
	parts := strings.SplitN(line, " ", 5)
	if len(parts) < 4 {
		return fmt.Errorf("invalid index line: %s", line)
	}

	var err error
	if res.Offset, err = strconv.ParseInt(parts[0], 10, 64); err != nil {
		return fmt.Errorf("invalid offset in index line: %s", line)
	}
	if res.Size, err = strconv.ParseInt(parts[1], 10, 64); err != nil {
		return fmt.Errorf("invalid size in index line: %s", line)
	}
	if res.TimestampMs, err = strconv.ParseInt(parts[2], 10, 64); err != nil {
		return fmt.Errorf("invalid time in index line: %s", line)
	}
	res.Op = parts[3]
	res.Meta = ""
	if len(parts) > 4 {
		res.Meta = parts[4]
	}
	if res.Offset < 0 || res.Size < 0 || res.TimestampMs < 0 || res.Op == "" {
		return fmt.Errorf("invalid index line: %s", line)
	}
	return nil
}

func parseIndex(r io.Reader) ([]*Entry, error) {
	var res []*Entry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		e := &Entry{}
		if err := ParseIndexLine(line, e); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func readIndex(path string) ([]*Entry, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseIndex(f)
}
