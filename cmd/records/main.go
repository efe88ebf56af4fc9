package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
)

// Build variables - set by ldflags during build.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	var (
		configPath      string
		kind            string
		dataFile        string
		seed            bool
		showVersion     bool
		writeConfigPath string
	)

	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/records/config.yml)")
	flag.StringVar(&kind, "kind", "", "kind of records: car, vehicle, book, email or device")
	flag.StringVar(&dataFile, "data-file", "", "file to load records from and save to (.json or .toon, optionally .gz, .br or .zst)")
	flag.BoolVar(&seed, "seed", false, "add sample records if there are none")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.StringVar(&writeConfigPath, "write-config", "", "write config file with default values to a given path and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("records - manage collections of records\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
		fmt.Printf("  Go version: %s\n", runtime.Version())
		return
	}

	if writeConfigPath != "" {
		if err := writeDefaultConfig(writeConfigPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote config to '%s'\n", writeConfigPath)
		return
	}

	// flags win over config file and environment
	if kind != "" {
		os.Setenv("RECORDS_KIND", kind)
	}
	if dataFile != "" {
		os.Setenv("RECORDS_DATA_FILE", dataFile)
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	opts := &runOptions{
		Seed: seed,
		In:   os.Stdin,
		Out:  os.Stdout,
	}
	if err := run(&cfg, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
