// ABOUTME: Configuration from an optional YAML file overlaid by CORKBOARD_* environment variables.
// ABOUTME: Refuses to bind the web UI to a non-loopback address.
package app

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/2389-research/corkboard/remote"
	"github.com/2389-research/corkboard/store"
)

// ErrNonLoopbackBind is returned when CORKBOARD_BIND names an address other
// than loopback. There is no authentication layer to protect a wider bind.
var ErrNonLoopbackBind = errors.New(
	"CORKBOARD_BIND is a non-loopback address; corkboard serves a single local user and refuses remote binds",
)

// Default storage keys.
const (
	DefaultBoardKey     = "corkboard-board"
	DefaultVersionKey   = "corkboard-board-version"
	DefaultDecisionsKey = "corkboard-decisions"
	DefaultBind         = "127.0.0.1:7780"
)

// Config holds everything needed to open storage, pick a remote, and serve.
type Config struct {
	DataDir     string `yaml:"data_dir"`     // CORKBOARD_DATA_DIR, default XDG data dir
	Bind        string `yaml:"bind"`         // CORKBOARD_BIND
	Store       string `yaml:"store"`        // CORKBOARD_STORE: memory, file, sqlite, redis
	RedisAddr   string `yaml:"redis_addr"`   // CORKBOARD_REDIS_ADDR
	RedisPrefix string `yaml:"redis_prefix"` // CORKBOARD_REDIS_PREFIX

	RemoteURL  string `yaml:"remote_url"`  // CORKBOARD_REMOTE_URL
	RemoteFile string `yaml:"remote_file"` // CORKBOARD_REMOTE_FILE
	GitURL     string `yaml:"git_url"`     // CORKBOARD_GIT_URL
	GitBranch  string `yaml:"git_branch"`  // CORKBOARD_GIT_BRANCH
	GitPath    string `yaml:"git_path"`    // CORKBOARD_GIT_PATH

	BoardKey     string `yaml:"board_key"`
	VersionKey   string `yaml:"version_key"`
	DecisionsKey string `yaml:"decisions_key"`
}

// DefaultConfig returns the built-in settings rooted at dataDir.
func DefaultConfig(dataDir string) Config {
	return Config{
		DataDir:      dataDir,
		Bind:         DefaultBind,
		Store:        store.BackendFile,
		RedisPrefix:  "corkboard:",
		GitPath:      "board.json",
		BoardKey:     DefaultBoardKey,
		VersionKey:   DefaultVersionKey,
		DecisionsKey: DefaultDecisionsKey,
	}
}

// LoadConfig builds a Config from defaults, then the YAML file at path (if
// path is non-empty), then the environment.
func LoadConfig(path string) (*Config, error) {
	dataDir, err := DefaultDataDir()
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig(dataDir)

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	overlayEnv(&cfg)

	if err := CheckBind(cfg.Bind); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func overlayEnv(cfg *Config) {
	setFromEnv(&cfg.DataDir, "CORKBOARD_DATA_DIR")
	setFromEnv(&cfg.Bind, "CORKBOARD_BIND")
	setFromEnv(&cfg.Store, "CORKBOARD_STORE")
	setFromEnv(&cfg.RedisAddr, "CORKBOARD_REDIS_ADDR")
	setFromEnv(&cfg.RedisPrefix, "CORKBOARD_REDIS_PREFIX")
	setFromEnv(&cfg.RemoteURL, "CORKBOARD_REMOTE_URL")
	setFromEnv(&cfg.RemoteFile, "CORKBOARD_REMOTE_FILE")
	setFromEnv(&cfg.GitURL, "CORKBOARD_GIT_URL")
	setFromEnv(&cfg.GitBranch, "CORKBOARD_GIT_BRANCH")
	setFromEnv(&cfg.GitPath, "CORKBOARD_GIT_PATH")
}

func setFromEnv(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// CheckBind accepts only 127.0.0.0/8, ::1 and "localhost".
func CheckBind(bind string) error {
	host, _, err := net.SplitHostPort(bind)
	if err != nil {
		return fmt.Errorf("invalid bind address %q: %w", bind, err)
	}
	ip := net.ParseIP(host)
	switch {
	case ip != nil && ip.IsLoopback():
	case host == "localhost":
	default:
		// Includes the empty host, which listens on every interface.
		return fmt.Errorf("%w: CORKBOARD_BIND=%s", ErrNonLoopbackBind, bind)
	}
	return nil
}

// StoreOptions maps the config onto store.Open.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Backend:     c.Store,
		DataDir:     c.DataDir,
		RedisAddr:   c.RedisAddr,
		RedisPrefix: c.RedisPrefix,
	}
}

// Source returns the configured remote snapshot source, or nil when none is
// set. A URL takes precedence over a git repository, which takes precedence
// over a local file.
func (c *Config) Source() remote.Source {
	switch {
	case c.RemoteURL != "":
		return remote.NewHTTPSource(c.RemoteURL)
	case c.GitURL != "":
		return &remote.GitSource{
			URL:      c.GitURL,
			Branch:   c.GitBranch,
			Path:     c.GitPath,
			CacheDir: filepath.Join(c.DataDir, "remote"),
		}
	case c.RemoteFile != "":
		return &remote.FileSource{Path: c.RemoteFile}
	}
	return nil
}
