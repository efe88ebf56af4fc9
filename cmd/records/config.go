package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/kjk/records/atomicfile"
	"github.com/kjk/records/backup"
	"github.com/kjk/records/u"
)

const (
	defaultKind         = "car"
	defaultBackupPrefix = "records"
	defaultLogKeepDays  = 30
)

var validKinds = []string{"car", "vehicle", "book", "email", "device"}

// appConfig is the runtime configuration, read from the config file and
// RECORDS_* environment variables
type appConfig struct {
	Kind string `mapstructure:"kind" yaml:"kind"`
	// if empty, <data-dir>/<kind>.json
	DataFile     string `mapstructure:"data-file" yaml:"data-file"`
	DataDir      string `mapstructure:"data-dir" yaml:"data-dir"`
	Autoload     bool   `mapstructure:"autoload" yaml:"autoload"`
	Autosave     bool   `mapstructure:"autosave" yaml:"autosave"`
	LogDir       string `mapstructure:"log-dir" yaml:"log-dir"`
	LogKeepDays  int    `mapstructure:"log-keep-days" yaml:"log-keep-days"`
	ChangelogDir string `mapstructure:"changelog-dir" yaml:"changelog-dir"`
	Verbose      bool   `mapstructure:"verbose" yaml:"verbose"`

	BackupEnabled   bool   `mapstructure:"backup-enabled" yaml:"backup-enabled"`
	BackupEndpoint  string `mapstructure:"backup-endpoint" yaml:"backup-endpoint"`
	BackupRegion    string `mapstructure:"backup-region" yaml:"backup-region"`
	BackupBucket    string `mapstructure:"backup-bucket" yaml:"backup-bucket"`
	BackupAccessKey string `mapstructure:"backup-access-key" yaml:"backup-access-key"`
	BackupSecretKey string `mapstructure:"backup-secret-key" yaml:"backup-secret-key"`
	BackupUseSSL    bool   `mapstructure:"backup-use-ssl" yaml:"backup-use-ssl"`
	BackupPrefix    string `mapstructure:"backup-prefix" yaml:"backup-prefix"`

	ConfigPath string `mapstructure:"-" yaml:"-"` // not from config file
}

func defaultConfigPath(home string) string {
	return filepath.Join(home, ".config", "records", "config.yml")
}

func defaultConfig(home string) appConfig {
	dataDir := filepath.Join(home, ".local", "share", "records")
	return appConfig{
		Kind:          defaultKind,
		DataDir:       dataDir,
		Autoload:      true,
		Autosave:      true,
		LogDir:        filepath.Join(dataDir, "logs"),
		LogKeepDays:   defaultLogKeepDays,
		ChangelogDir:  filepath.Join(dataDir, "changelog"),
		BackupUseSSL:  true,
		BackupPrefix:  defaultBackupPrefix,
		BackupEnabled: false,
	}
}

func loadConfig(configPath string) (appConfig, error) {
	var cfg appConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}
	def := defaultConfig(home)

	v := viper.New()
	v.SetEnvPrefix("RECORDS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("kind", def.Kind)
	v.SetDefault("data-file", def.DataFile)
	v.SetDefault("data-dir", def.DataDir)
	v.SetDefault("autoload", def.Autoload)
	v.SetDefault("autosave", def.Autosave)
	v.SetDefault("log-dir", def.LogDir)
	v.SetDefault("log-keep-days", def.LogKeepDays)
	v.SetDefault("changelog-dir", def.ChangelogDir)
	v.SetDefault("verbose", false)
	v.SetDefault("backup-enabled", def.BackupEnabled)
	v.SetDefault("backup-endpoint", "")
	v.SetDefault("backup-region", "")
	v.SetDefault("backup-bucket", "")
	v.SetDefault("backup-access-key", "")
	v.SetDefault("backup-secret-key", "")
	v.SetDefault("backup-use-ssl", def.BackupUseSSL)
	v.SetDefault("backup-prefix", def.BackupPrefix)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(defaultConfigPath(home))
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	cfg.ConfigPath = v.ConfigFileUsed()

	cfg.DataFile = u.ExpandTildeInPath(cfg.DataFile)
	cfg.DataDir = u.ExpandTildeInPath(cfg.DataDir)
	cfg.LogDir = u.ExpandTildeInPath(cfg.LogDir)
	cfg.ChangelogDir = u.ExpandTildeInPath(cfg.ChangelogDir)

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func isValidKind(kind string) bool {
	for _, k := range validKinds {
		if k == kind {
			return true
		}
	}
	return false
}

func (c *appConfig) validate() error {
	c.Kind = strings.ToLower(strings.TrimSpace(c.Kind))
	if !isValidKind(c.Kind) {
		return fmt.Errorf("invalid kind: '%s', must be one of: %s", c.Kind, strings.Join(validKinds, ", "))
	}
	if c.LogKeepDays < 0 {
		return fmt.Errorf("invalid log-keep-days: %d, must be 0 (keep all) or more", c.LogKeepDays)
	}
	if c.BackupEnabled {
		if err := c.backupConfig().Validate(); err != nil {
			return fmt.Errorf("backup-enabled is set but %w", err)
		}
	}
	return nil
}

// dataFilePath returns the file used by autoload, autosave and as the
// default for export and import
func (c *appConfig) dataFilePath() string {
	if c.DataFile != "" {
		return c.DataFile
	}
	return filepath.Join(c.DataDir, c.Kind+".json")
}

func (c *appConfig) backupConfig() *backup.Config {
	return &backup.Config{
		Access:   c.BackupAccessKey,
		Secret:   c.BackupSecretKey,
		Bucket:   c.BackupBucket,
		Endpoint: c.BackupEndpoint,
		Region:   c.BackupRegion,
		Secure:   c.BackupUseSSL,
		Prefix:   c.BackupPrefix,
	}
}

// writeDefaultConfig writes a config file with default values, as
// a starting point for editing
func writeDefaultConfig(path string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("finding home directory: %w", err)
	}
	if path == "" {
		path = defaultConfigPath(home)
	}
	d, err := yaml.Marshal(defaultConfig(home))
	if err != nil {
		return err
	}
	if err = os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	// will hold backup credentials
	f, err := atomicfile.NewWithPerm(path, 0600)
	if err != nil {
		return err
	}
	defer f.RemoveIfNotClosed()
	if _, err = f.Write(d); err != nil {
		return err
	}
	return f.Close()
}
