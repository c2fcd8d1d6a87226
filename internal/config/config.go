// Package config holds the runtime settings of the solver and loads them
// from a YAML file.
package config

import (
	"math"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/edp1096/opspice/internal/consts"
	"github.com/edp1096/opspice/pkg/matrix"
	"github.com/edp1096/opspice/pkg/report"
)

const (
	AppName = "opspice"

	DefaultSolver      = matrix.SolverDense
	DefaultFormat      = report.FormatText
	DefaultTimeout     = 10 * time.Second
	DefaultMaxUnknowns = 2000 // dense LU is O(n³); beyond this use the sparse backend
	DefaultCacheSize   = 128
	DefaultConcurrency = 4
)

// Config is populated from defaults, then the config file, then CLI flags.
type Config struct {
	// Solver selects the linear solver backend, "dense" or "sparse".
	Solver string `yaml:"solver"`

	// Precision is the number of decimals in query answers.
	Precision int `yaml:"precision"`

	// Timeout bounds each simulation request. Zero disables it.
	Timeout time.Duration `yaml:"timeout"`

	// MaxUnknowns rejects larger MNA systems. Zero disables the limit.
	MaxUnknowns int `yaml:"max_unknowns"`

	// CacheSize is the number of solutions kept for repeated netlists.
	// Zero disables the cache.
	CacheSize int `yaml:"cache_size"`

	// Concurrency is the number of netlists solved at once in batches.
	Concurrency int `yaml:"concurrency"`

	// Gmin is a conductance added from every node to ground. Zero solves
	// the circuit exactly as written.
	Gmin float64 `yaml:"gmin"`

	// FirstLineTitle reads the first netlist line as the title.
	FirstLineTitle bool `yaml:"first_line_title"`

	// Format is the report format of the op command.
	Format string `yaml:"format"`

	Verbose bool `yaml:"verbose"`
}

func NewConfig() *Config {
	return &Config{
		Solver:      DefaultSolver,
		Precision:   consts.DefaultPrecision,
		Timeout:     DefaultTimeout,
		MaxUnknowns: DefaultMaxUnknowns,
		CacheSize:   DefaultCacheSize,
		Concurrency: DefaultConcurrency,
		Format:      DefaultFormat,
	}
}

// XDGConfigDir returns the per-user configuration directory, e.g.
// ~/.config/opspice on Linux.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate returns the first invalid setting.
func (c *Config) Validate() error {
	if c.Solver != matrix.SolverDense && c.Solver != matrix.SolverSparse {
		return ErrUnknownSolver
	}
	if c.Precision < 0 || c.Precision > consts.MaxPrecision {
		return ErrInvalidPrecision
	}
	if c.Timeout < 0 {
		return ErrInvalidTimeout
	}
	if c.MaxUnknowns < 0 {
		return ErrInvalidMaxUnknowns
	}
	if c.CacheSize < 0 {
		return ErrInvalidCacheSize
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.Gmin < 0 || math.IsInf(c.Gmin, 0) || math.IsNaN(c.Gmin) {
		return ErrInvalidGmin
	}
	switch c.Format {
	case report.FormatText, report.FormatJSON, report.FormatMarkdown:
	default:
		return ErrUnknownFormat
	}
	return nil
}
