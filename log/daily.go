package log

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const dayFormat = "2006-01-02"

// DailyFile appends to one file per UTC day, <Dir>/YYYY-MM-DD.txt.
// The file is created on first write so a day without logs leaves no file.
// Methods are safe to call on nil receiver, which discards the data.
type DailyFile struct {
	Dir string
	// for tests, time.Now if nil
	Now func() time.Time

	mu  sync.Mutex
	day string
	f   *os.File
}

func NewDailyFile(dir string) *DailyFile {
	return &DailyFile{Dir: dir}
}

func (d *DailyFile) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

// Path returns path of the file for the day of t
func (d *DailyFile) Path(t time.Time) string {
	return filepath.Join(d.Dir, t.UTC().Format(dayFormat)+".txt")
}

// must be called with mu held
func (d *DailyFile) open() error {
	now := d.now()
	day := now.Format(dayFormat)
	if d.f != nil && d.day == day {
		return nil
	}
	if err := d.closeFile(); err != nil {
		return err
	}
	if err := os.MkdirAll(d.Dir, 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(d.Path(now), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	d.f = f
	d.day = day
	return nil
}

func (d *DailyFile) Write(p []byte) (int, error) {
	if d == nil {
		return len(p), nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.open(); err != nil {
		return 0, err
	}
	return d.f.Write(p)
}

func (d *DailyFile) closeFile() error {
	if d.f == nil {
		return nil
	}
	err := d.f.Close()
	d.f = nil
	d.day = ""
	return err
}

// Close closes the current file. Writing after Close opens it again.
func (d *DailyFile) Close() error {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.f != nil {
		_ = d.f.Sync()
	}
	return d.closeFile()
}

// Days returns days for which a file exists, oldest first
func (d *DailyFile) Days() ([]time.Time, error) {
	entries, err := os.ReadDir(d.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var res []time.Time
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".txt") {
			continue
		}
		day, err := time.Parse(dayFormat, strings.TrimSuffix(name, ".txt"))
		if err != nil {
			continue
		}
		res = append(res, day)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Before(res[j])
	})
	return res, nil
}

// RemoveOlderThan deletes files of days more than keepDays before today.
// Files not named like a day are left alone.
// Returns paths of deleted files.
func (d *DailyFile) RemoveOlderThan(keepDays int) ([]string, error) {
	if d == nil || keepDays <= 0 {
		return nil, nil
	}
	days, err := d.Days()
	if err != nil {
		return nil, err
	}
	today, _ := time.Parse(dayFormat, d.now().Format(dayFormat))
	cutoff := today.AddDate(0, 0, -keepDays)
	var removed []string
	for _, day := range days {
		if !day.Before(cutoff) {
			break
		}
		path := d.Path(day)
		if err := os.Remove(path); err != nil {
			return removed, err
		}
		removed = append(removed, path)
	}
	return removed, nil
}
