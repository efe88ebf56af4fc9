package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/kjk/records/changelog"
	"github.com/kjk/records/cli"
	"github.com/kjk/records/kinds"
	"github.com/kjk/records/log"
	"github.com/kjk/records/recordstore"
	"github.com/kjk/records/u"
)

type runOptions struct {
	Seed bool
	In   io.Reader
	Out  io.Writer
	// tests use it to get predictable ids
	StoreOptions []recordstore.Option
}

// run sets up logging and runs the menu for the configured kind of records
func run(cfg *appConfig, opts *runOptions) error {
	log.Init(&log.Config{
		Dir:      cfg.LogDir,
		Verbose:  cfg.Verbose,
		KeepDays: cfg.LogKeepDays,
	})
	defer log.Close()
	log.Logf("records %s starting, kind: %s, config: '%s'\n", version, cfg.Kind, cfg.ConfigPath)

	so := opts.StoreOptions
	switch cfg.Kind {
	case "car":
		return runStore(cfg, opts, kinds.NewCarStore(so...), kinds.SeedCars, nil)
	case "vehicle":
		return runStore(cfg, opts, kinds.NewVehicleStore(so...), kinds.SeedVehicles, vehicleActions)
	case "book":
		return runStore(cfg, opts, kinds.NewBookStore(so...), kinds.SeedBooks, bookActions)
	case "email":
		return runStore(cfg, opts, kinds.NewEmailStore(so...), kinds.SeedEmails, emailActions)
	case "device":
		return runStore(cfg, opts, kinds.NewDeviceStore(so...), kinds.SeedDevices, deviceActions)
	}
	return fmt.Errorf("unknown kind '%s'", cfg.Kind)
}

func runStore[T any](cfg *appConfig, opts *runOptions, s *recordstore.Store[T], seed func(*recordstore.Store[T]) error, extra func(*recordstore.Store[T]) []cli.Action) error {
	p := cli.NewPrompt(opts.In, opts.Out)
	kindName := s.Kind().Name
	dataFile := cfg.dataFilePath()

	autosave := cfg.Autosave
	if cfg.Autoload && u.FileExists(dataFile) {
		canSave, err := load(p, s, dataFile)
		if err != nil {
			return err
		}
		if !canSave && autosave {
			// saving would drop data from the file
			autosave = false
			p.Printf("Autosave is off for this session.\n")
		}
	}

	var history *changelog.Log
	if cfg.ChangelogDir != "" {
		var err error
		history, err = changelog.Open(cfg.ChangelogDir, kindName)
		if err != nil {
			return fmt.Errorf("opening changelog: %w", err)
		}
		defer history.Close()
	}
	s.OnChange = func(c recordstore.Change) {
		recordChange(history, c)
	}

	if opts.Seed && s.Len() == 0 {
		if err := seed(s); err != nil {
			return err
		}
		p.Printf("Added %d sample records.\n", s.Len())
	}

	sm := &cli.StoreMenu[T]{
		Store:    s,
		DataFile: dataFile,
		History:  history,
	}
	actions := sm.Actions()
	if extra != nil {
		actions = append(actions, extra(s)...)
	}
	if cfg.BackupEnabled {
		b := &backupActions[T]{
			store:  s,
			config: cfg.backupConfig(),
		}
		actions = append(actions, b.Actions()...)
	}
	m := &cli.Menu{
		Title:   fmt.Sprintf("Records: %ss", u.Capitalize(kindName)),
		Actions: actions,
		OnError: func(action string, err error) {
			log.Verbosef("action '%s' failed: %s\n", action, err)
			log.ErrorEvent(err, "action_failed", "kind", kindName, "action", action)
		},
	}
	if err := m.Run(p); err != nil {
		return err
	}

	if autosave {
		return save(p, s, dataFile)
	}
	return nil
}

// load imports records at startup. It returns false if the file must not
// be overwritten on quit: when the data is malformed (the program starts
// with no records) or when some records were rejected. A file that can't
// be read is fatal.
func load[T any](p *cli.Prompt, s *recordstore.Store[T], path string) (bool, error) {
	timeStart := time.Now()
	report, err := s.Import(path)
	if errors.Is(err, recordstore.ErrFormat) {
		p.Printf("Warning: %s\nStarting with no records.\n", err)
		log.Errorf("autoload of '%s' failed: %s", path, err)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	log.EventWithDuration("autoload", time.Since(timeStart), "kind", s.Kind().Name, "imported", report.Imported, "rejected", len(report.Rejected))
	if len(report.Rejected) > 0 {
		cli.PrintImportReport(p, report)
		p.Printf("Warning: '%s' has invalid records, fix them or use Export to save the valid ones.\n", path)
		log.Errorf("autoload of '%s' rejected %d records", path, len(report.Rejected))
		return false, nil
	}
	return true, nil
}

func save[T any](p *cli.Prompt, s *recordstore.Store[T], path string) error {
	timeStart := time.Now()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := s.Export(path); err != nil {
		return err
	}
	size := u.FileSize(path)
	log.EventWithDuration("autosave", time.Since(timeStart), "kind", s.Kind().Name, "records", s.Len(), "size", size)
	p.Printf("Saved %d records to '%s' (%s).\n", s.Len(), path, u.FormatSize(size))
	return nil
}

// recordChange writes c to the changelog and the event log
func recordChange(history *changelog.Log, c recordstore.Change) {
	log.Event("change", "kind", c.Kind, "op", string(c.Op), "id", c.ID)
	if history == nil {
		return
	}
	var data []byte
	if c.Fields != nil {
		var err error
		data, err = jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(c.Fields)
		if log.IfErrf(err) {
			return
		}
	}
	meta := c.Kind
	if c.ID != "" {
		meta += " " + c.ID
	}
	_, err := history.Append(string(c.Op), data, meta)
	log.IfErrf(err, "changelog append failed: %s", err)
}
