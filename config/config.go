package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/fahmaliyi/passkeeper/logging"
	"github.com/fahmaliyi/passkeeper/vault"
	"gopkg.in/yaml.v3"
)

const (
	AppDirName     = "passkeeper"
	VaultFileName  = "passwords.enc"
	ConfigFileName = "config.yaml"
)

// Config holds runtime settings for the passkeeper CLI.
type Config struct {
	VaultPath        string        `yaml:"vault_path"`
	BackupDir        string        `yaml:"backup_dir"`
	LogLevel         string        `yaml:"log_level"`
	ClipboardTimeout time.Duration `yaml:"clipboard_timeout"`
	VerifyOnUnlock   bool          `yaml:"verify_on_unlock"`
	KDF              KDF           `yaml:"kdf"`
}

// KDF holds the argon2id cost used when a new vault file is created.
// Existing files keep the parameters stored in their header.
type KDF struct {
	Time    uint32 `yaml:"time"`
	Memory  uint32 `yaml:"memory_kib"`
	Threads uint8  `yaml:"threads"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	dir := DefaultDataDir()
	d := vault.DefaultKDFParams()

	c.VaultPath = filepath.Join(dir, VaultFileName)
	c.BackupDir = filepath.Join(dir, "backup")
	c.LogLevel = "warn"
	c.ClipboardTimeout = 30 * time.Second
	c.VerifyOnUnlock = false
	c.KDF = KDF{Time: d.Time, Memory: d.Memory, Threads: d.Threads}
}

// Load builds a Config from defaults overlaid with the YAML file at path.
// With an empty path the default config file is used if it exists.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	explicit := path != ""
	if !explicit {
		path = filepath.Join(DefaultDataDir(), ConfigFileName)
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		return cfg, cfg.Validate()
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.VaultPath == "" {
		return errors.New("config: vault_path is empty")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.ClipboardTimeout < 0 {
		return errors.New("config: clipboard_timeout must not be negative")
	}
	if c.KDF.Time == 0 || c.KDF.Memory == 0 || c.KDF.Threads == 0 {
		return errors.New("config: kdf time, memory_kib and threads must be positive")
	}
	return nil
}

func (c *Config) KDFParams() *vault.KDFParams {
	return &vault.KDFParams{Time: c.KDF.Time, Memory: c.KDF.Memory, Threads: c.KDF.Threads}
}

// DefaultDataDir is the per-user application data directory:
// $XDG_DATA_HOME or ~/.local/share on Unix, the user config dir
// (Application Support, %AppData%) on macOS and Windows.
func DefaultDataDir() string {
	switch runtime.GOOS {
	case "darwin", "windows":
		if dir, err := os.UserConfigDir(); err == nil {
			return filepath.Join(dir, AppDirName)
		}
	default:
		if dir := os.Getenv("XDG_DATA_HOME"); filepath.IsAbs(dir) {
			return filepath.Join(dir, AppDirName)
		}
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, ".local", "share", AppDirName)
		}
	}
	return filepath.Join(".", "."+AppDirName)
}
