// Package config loads the layered focus configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tailscale/hujson"

	"github.com/calvinalkan/focus/internal/model"
)

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	DataDir       string `json:"data_dir"`
	SwitchDelayMS int    `json:"switch_delay_ms"`
	Day           string `json:"day,omitempty"`

	// Resolved (computed, not serialized)
	EffectiveCwd string  `json:"-"` // Absolute working directory (from -C flag or os.Getwd)
	DataDirAbs   string  `json:"-"` // Absolute path to the data directory
	Sources      Sources `json:"-"`
}

// Sources tracks which config files were loaded.
type Sources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project config if loaded, empty otherwise
}

// SwitchDelay is how long the context switching pulse lasts.
func (c Config) SwitchDelay() time.Duration {
	return time.Duration(c.SwitchDelayMS) * time.Millisecond
}

// DefaultSwitchDelayMS is the default switching pulse in milliseconds.
const DefaultSwitchDelayMS = 50

// Default returns the default configuration.
func Default() Config {
	return Config{
		DataDir:       ".focus",
		SwitchDelayMS: DefaultSwitchDelayMS,
	}
}

// FileName is the default project config file name.
const FileName = ".focus.json"

// globalPath returns $XDG_CONFIG_HOME/focus/config.json, falling back to
// ~/.config/focus/config.json. Empty if neither variable is set.
func globalPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "focus", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "focus", "config.json")
	}

	return ""
}

// LoadInput holds the inputs for Load.
type LoadInput struct {
	WorkDirOverride string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath      string            // -c/--config flag value
	DataDirOverride string            // --data-dir flag value; empty means no override
	DayOverride     string            // --day flag value; empty means no override
	Env             map[string]string // environment variables
}

// Load loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config
// 3. Project config file (.focus.json, if exists)
// 4. Explicit config file via ConfigPath (replaces 3)
// 5. CLI overrides.
func Load(input LoadInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := Default()

	global, path, err := loadFile(globalPath(input.Env), false)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Global = path
	cfg = merge(cfg, global)

	project, path, err := loadProject(workDir, input.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Project = path
	cfg = merge(cfg, project)

	if input.DataDirOverride != "" {
		cfg.DataDir = input.DataDirOverride
	}

	if input.DayOverride != "" {
		cfg.Day = input.DayOverride
	}

	err = validate(cfg)
	if err != nil {
		return Config{}, err
	}

	cfg.EffectiveCwd = workDir

	if filepath.IsAbs(cfg.DataDir) {
		cfg.DataDirAbs = cfg.DataDir
	} else {
		cfg.DataDirAbs = filepath.Join(workDir, cfg.DataDir)
	}

	return cfg, nil
}

// fileConfig is one config file. Pointers tell unset fields from explicit
// zero values.
type fileConfig struct {
	DataDir       *string `json:"data_dir"`
	SwitchDelayMS *int    `json:"switch_delay_ms"`
	Day           *string `json:"day"`
}

func loadProject(workDir, configPath string) (fileConfig, string, error) {
	if configPath == "" {
		return loadFile(filepath.Join(workDir, FileName), false)
	}

	cfgFile := configPath
	if !filepath.IsAbs(cfgFile) {
		cfgFile = filepath.Join(workDir, cfgFile)
	}

	// Check existence first to provide a clear "not found" error
	_, statErr := os.Stat(cfgFile)
	if statErr != nil {
		return fileConfig{}, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
	}

	return loadFile(cfgFile, true)
}

// loadFile loads a config file. If mustExist is false, a missing file yields
// an empty config and an empty path.
func loadFile(path string, mustExist bool) (fileConfig, string, error) {
	if path == "" {
		return fileConfig{}, "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return fileConfig{}, "", nil
		}

		return fileConfig{}, "", fmt.Errorf("%w: %s", ErrConfigFileRead, path)
	}

	cfg, err := parse(data)
	if err != nil {
		return fileConfig{}, "", fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	return cfg, path, nil
}

func parse(data []byte) (fileConfig, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg fileConfig

	err = json.Unmarshal(standardized, &cfg)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSON: %w", err)
	}

	if cfg.DataDir != nil && *cfg.DataDir == "" {
		return fileConfig{}, ErrDataDirEmpty
	}

	if cfg.SwitchDelayMS != nil && *cfg.SwitchDelayMS <= 0 {
		return fileConfig{}, fmt.Errorf("%w: got %d", ErrInvalidSwitchDelay, *cfg.SwitchDelayMS)
	}

	return cfg, nil
}

func merge(base Config, overlay fileConfig) Config {
	if overlay.DataDir != nil {
		base.DataDir = *overlay.DataDir
	}

	if overlay.SwitchDelayMS != nil {
		base.SwitchDelayMS = *overlay.SwitchDelayMS
	}

	if overlay.Day != nil {
		base.Day = *overlay.Day
	}

	return base
}

func validate(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrDataDirEmpty
	}

	if cfg.SwitchDelayMS <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidSwitchDelay, cfg.SwitchDelayMS)
	}

	if cfg.Day != "" {
		_, err := model.ParseWorklogDay(cfg.Day)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidDay, cfg.Day)
		}
	}

	return nil
}

// Format returns the serialized part of cfg as indented JSON.
func Format(cfg Config) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format config: %w", err)
	}

	return string(data), nil
}
