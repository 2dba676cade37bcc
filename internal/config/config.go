// Package config resolves where session logs live and where the
// store goes. Directory roots come from defaults layered under
// environment overrides, materialized once at startup and passed
// down; nothing reads the environment at sync time.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config holds all application configuration.
type Config struct {
	ClaudeProjectsDir string
	CodexSessionsDir  string
	DataDir           string
	DBPath            string
	Machine           string
}

// Default returns a Config with default values rooted at the
// user's home directory.
func Default() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf(
			"determining home directory: %w", err,
		)
	}
	dataDir := filepath.Join(home, ".sessionsync")
	return Config{
		ClaudeProjectsDir: filepath.Join(home, ".claude", "projects"),
		CodexSessionsDir:  filepath.Join(home, ".codex", "sessions"),
		DataDir:           dataDir,
		DBPath:            filepath.Join(dataDir, "sessions.db"),
		Machine:           "local",
	}, nil
}

// Load builds a Config by layering defaults under environment
// overrides.
func Load() (Config, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, err
	}
	cfg.loadEnv()
	cfg.DBPath = filepath.Join(cfg.DataDir, "sessions.db")
	return cfg, nil
}

func (c *Config) loadEnv() {
	if v := os.Getenv("CLAUDE_PROJECTS_DIR"); v != "" {
		c.ClaudeProjectsDir = v
	}
	if v := os.Getenv("CODEX_SESSIONS_DIR"); v != "" {
		c.CodexSessionsDir = v
	}
	if v := os.Getenv("SESSIONSYNC_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("SESSIONSYNC_MACHINE"); v != "" {
		c.Machine = v
	}
}
