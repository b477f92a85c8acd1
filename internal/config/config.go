// Package config resolves client settings from defaults, config.toml, the environment and flags.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	FileName = "config.toml"

	DefaultAPIURL  = "http://localhost:8080/api"
	DefaultTimeout = 15 * time.Second
	DefaultLevel   = "info"
)

type Config struct {
	APIURL   string        `toml:"api_url"`
	DataDir  string        `toml:"data_dir"`
	Timeout  time.Duration `toml:"timeout"`
	LogFile  string        `toml:"log_file"`
	LogLevel string        `toml:"log_level"`

	// Path is the config file that was read, or the path that would be read.
	Path string `toml:"-"`
}

// Overrides carries flag values; empty fields leave the lower layers alone.
type Overrides struct {
	APIURL   string
	DataDir  string
	LogLevel string
}

// Dir returns the config directory: $TASKDECK_CONFIG_DIR, else ~/.taskdeck.
func Dir() (string, error) {
	// Keeps tests away from the real home directory.
	if v := strings.TrimSpace(os.Getenv("TASKDECK_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".taskdeck"), nil
}

func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load applies, in order: defaults, the TOML file at path (DefaultPath when empty; a
// missing file is fine), TASKDECK_* environment variables, then flag overrides.
func Load(path string, o Overrides) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := &Config{
		APIURL:   DefaultAPIURL,
		Timeout:  DefaultTimeout,
		LogLevel: DefaultLevel,
		Path:     path,
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading config file %s: %w", path, err)
	}
	cfg.Path = path

	cfg.applyEnv()
	cfg.apply(o)

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("TASKDECK_API_URL")); v != "" {
		c.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKDECK_DIR")); v != "" {
		c.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKDECK_LOG_LEVEL")); v != "" {
		c.LogLevel = v
	}
}

func (c *Config) apply(o Overrides) {
	if v := strings.TrimSpace(o.APIURL); v != "" {
		c.APIURL = v
	}
	if v := strings.TrimSpace(o.DataDir); v != "" {
		c.DataDir = v
	}
	if v := strings.TrimSpace(o.LogLevel); v != "" {
		c.LogLevel = v
	}
}

func (c *Config) finalize() error {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("api_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api_url must be an http(s) URL, got %q", c.APIURL)
	}
	if u.Host == "" {
		return fmt.Errorf("api_url has no host: %q", c.APIURL)
	}

	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}

	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = filepath.Dir(c.Path)
	}
	c.DataDir = filepath.Clean(c.DataDir)

	if strings.TrimSpace(c.LogFile) == "" {
		c.LogFile = filepath.Join(c.DataDir, "taskdeck.log")
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = DefaultLevel
	}
	return nil
}

// Save writes c to its Path as TOML.
func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.Path), 0o700); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(c.Path), FileName+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, c.Path)
}
