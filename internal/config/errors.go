package config

import "errors"

// Validation errors returned by Config.Validate.
var (
	ErrUnknownSolver      = errors.New("invalid solver: must be \"dense\" or \"sparse\"")
	ErrInvalidPrecision   = errors.New("invalid precision: must be between 0 and 15")
	ErrInvalidTimeout     = errors.New("invalid timeout: must be non-negative")
	ErrInvalidMaxUnknowns = errors.New("invalid max unknowns: must be non-negative")
	ErrInvalidCacheSize   = errors.New("invalid cache size: must be non-negative")
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")
	ErrInvalidGmin        = errors.New("invalid gmin: must be non-negative and finite")
	ErrUnknownFormat      = errors.New("invalid format: must be \"text\", \"json\" or \"markdown\"")

	// ErrConfigNotFound is returned when an explicitly named file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
