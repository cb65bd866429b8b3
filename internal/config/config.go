package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const (
	DefaultServer  = "http://localhost:5000"
	DefaultTimeout = 3 * time.Minute
	appDirName     = "playlistdl"
)

// Environment variables read on top of the config file.
const (
	EnvServer   = "PLAYLISTDL_SERVER"
	EnvUsername = "PLAYLISTDL_USERNAME"
	EnvPassword = "PLAYLISTDL_PASSWORD"
	EnvOutput   = "PLAYLISTDL_OUTPUT"
)

// ClientConfig holds the settings for talking to a playlist-dl server and for
// handling finished artifacts.
type ClientConfig struct {
	Server    string            `yaml:"server"`
	OutputDir string            `yaml:"output_dir"`
	Timeout   time.Duration     `yaml:"timeout"`
	UserAgent string            `yaml:"user_agent"`
	Proxy     string            `yaml:"proxy"`
	Headers   map[string]string `yaml:"headers"`
	Fetch     *bool             `yaml:"fetch"`
	Extract   bool              `yaml:"extract"`
	Open      bool              `yaml:"open"`
	S3Target  string            `yaml:"s3_target"`
	S3Profile string            `yaml:"s3_profile"`

	Username string `yaml:"username"`
	Password string `yaml:"-"`
}

func Default() ClientConfig {
	return ClientConfig{
		Server:    DefaultServer,
		OutputDir: ".",
		Timeout:   DefaultTimeout,
		Headers:   map[string]string{},
	}
}

// Dir is the per-user configuration directory.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("error locating config directory: %w", err)
	}
	return filepath.Join(base, appDirName), nil
}

func DefaultPath() string {
	dir, err := Dir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads path (a missing file is not an error), then applies .env and the
// process environment. Flags are applied by the caller afterwards.
func Load(path string) (ClientConfig, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			log.Debug().Str("op", "config/config").Msgf("no config file at %s", path)
		case err != nil:
			return cfg, fmt.Errorf("error reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("error parsing config file: %w", err)
			}
			log.Debug().Str("op", "config/config").Msgf("loaded config from %s", path)
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Str("op", "config/config").Err(err).Msg("error reading .env")
	}
	cfg.applyEnv()
	cfg.normalize()
	return cfg, nil
}

func (c *ClientConfig) applyEnv() {
	if v := os.Getenv(EnvServer); v != "" {
		c.Server = v
	}
	if v := os.Getenv(EnvUsername); v != "" {
		c.Username = v
	}
	if v := os.Getenv(EnvPassword); v != "" {
		c.Password = v
	}
	if v := os.Getenv(EnvOutput); v != "" {
		c.OutputDir = v
	}
}

func (c *ClientConfig) normalize() {
	c.Server = strings.TrimRight(strings.TrimSpace(c.Server), "/")
	if c.Server == "" {
		c.Server = DefaultServer
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Headers == nil {
		c.Headers = map[string]string{}
	}
}

// ShouldFetch reports whether finished artifacts are downloaded locally.
func (c ClientConfig) ShouldFetch() bool {
	return c.Fetch == nil || *c.Fetch
}

// Overrides holds values given explicitly on the command line. Zero values
// leave the loaded configuration untouched.
type Overrides struct {
	Server    string
	OutputDir string
	Timeout   time.Duration
	UserAgent string
	Proxy     string
	Headers   map[string]string
}

func (c *ClientConfig) Apply(o Overrides) {
	if o.Server != "" {
		c.Server = o.Server
	}
	if o.OutputDir != "" {
		c.OutputDir = o.OutputDir
	}
	if o.Timeout > 0 {
		c.Timeout = o.Timeout
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
	if o.Proxy != "" {
		c.Proxy = o.Proxy
	}
	for k, v := range o.Headers {
		c.Headers[k] = v
	}
	c.normalize()
}
