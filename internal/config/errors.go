package config

import "errors"

// Error variables for configuration loading.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrDataDirEmpty       = errors.New("data-dir cannot be empty")
	ErrInvalidSwitchDelay = errors.New("switch_delay_ms must be positive")
	ErrInvalidDay         = errors.New("day must be YYYY-MM-DD")
)
