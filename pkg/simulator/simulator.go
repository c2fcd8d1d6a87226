// Package simulator is the request/response entry point of the solver.
// A Simulator parses, validates and solves netlists, shares results of
// identical circuits through a cache and never runs two solves of the same
// canonical netlist at once.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/edp1096/opspice/pkg/analysis"
	"github.com/edp1096/opspice/pkg/circuit"
	"github.com/edp1096/opspice/pkg/matrix"
	"github.com/edp1096/opspice/pkg/netlist"
	"github.com/edp1096/opspice/pkg/spiceerr"
)

const (
	DefaultCacheSize   = 128
	DefaultConcurrency = 4
)

type Simulator struct {
	logger      *zap.Logger
	solver      matrix.Solver
	circuitOpts circuit.Options
	parseOpts   netlist.Options
	timeout     time.Duration
	maxUnknowns int
	concurrency int
	cacheSize   int
	precision   int

	cache  *lru.Cache[string, *analysis.Solution] // nil when disabled
	flight singleflight.Group
	solves atomic.Int64
}

type Option func(*Simulator)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Simulator) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithSolver(solver matrix.Solver) Option {
	return func(s *Simulator) {
		if solver != nil {
			s.solver = solver
		}
	}
}

// WithGmin adds gmin to every node diagonal before solving.
func WithGmin(gmin float64) Option {
	return func(s *Simulator) { s.circuitOpts.Gmin = gmin }
}

// WithTimeout bounds each request. Zero disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(s *Simulator) { s.timeout = d }
}

// WithMaxUnknowns rejects circuits whose MNA system is larger than n.
// Zero disables the limit.
func WithMaxUnknowns(n int) Option {
	return func(s *Simulator) { s.maxUnknowns = n }
}

// WithCacheSize sets the number of cached solutions. Zero disables the cache.
func WithCacheSize(n int) Option {
	return func(s *Simulator) { s.cacheSize = n }
}

// WithConcurrency sets how many netlists SolveAll solves at once.
func WithConcurrency(n int) Option {
	return func(s *Simulator) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithPrecision sets the default number of decimals in query answers.
func WithPrecision(p int) Option {
	return func(s *Simulator) { s.precision = p }
}

func WithParseOptions(opts netlist.Options) Option {
	return func(s *Simulator) { s.parseOpts = opts }
}

func New(opts ...Option) (*Simulator, error) {
	s := &Simulator{
		logger:      zap.NewNop(),
		solver:      matrix.DenseLU{},
		concurrency: DefaultConcurrency,
		cacheSize:   DefaultCacheSize,
		precision:   -1,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.cacheSize > 0 {
		cache, err := lru.New[string, *analysis.Solution](s.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating result cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

// Solves reports how many netlists were actually solved, cache hits and
// shared in-flight results excluded.
func (s *Simulator) Solves() int64 {
	return s.solves.Load()
}

// Solve parses text and returns its operating point.
func (s *Simulator) Solve(ctx context.Context, text string) (*analysis.Solution, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	nl, err := netlist.ParseWithOptions(text, s.parseOpts)
	if err != nil {
		s.logger.Debug("parse failed", zap.Error(err))
		return nil, err
	}
	key := netlist.Format(nl)

	if sol, ok := s.cached(key); ok {
		s.logger.Debug("cache hit", zap.String("title", nl.Title))
		return sol, nil
	}

	ch := s.flight.DoChan(key, func() (any, error) {
		return s.solveCached(ctx, key, nl)
	})

	select {
	case <-ctx.Done():
		return nil, timeoutErr(ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			// The request that started the shared solve ran out of time;
			// this one still has some left.
			if res.Shared && ctx.Err() == nil && spiceerr.KindOf(res.Err) == spiceerr.KindTimeout {
				return s.solveCached(ctx, key, nl)
			}
			return nil, res.Err
		}
		if res.Shared {
			s.logger.Debug("shared in-flight solve", zap.String("title", nl.Title))
		}
		return res.Val.(*analysis.Solution), nil
	}
}

func (s *Simulator) solveCached(ctx context.Context, key string, nl *netlist.Netlist) (*analysis.Solution, error) {
	if sol, ok := s.cached(key); ok {
		return sol, nil
	}
	sol, err := s.solve(ctx, nl)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Add(key, sol)
	}
	return sol, nil
}

func (s *Simulator) cached(key string) (*analysis.Solution, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(key)
}

func (s *Simulator) solve(ctx context.Context, nl *netlist.Netlist) (*analysis.Solution, error) {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, timeoutErr(err)
	}
	g, err := circuit.Build(nl)
	if err != nil {
		s.logger.Debug("topology check failed", zap.Error(err))
		return nil, err
	}

	if s.maxUnknowns > 0 && g.Size() > s.maxUnknowns {
		return nil, spiceerr.New(spiceerr.KindLimit, 0, spiceerr.ErrTooLarge,
			"circuit has %d unknowns, the limit is %d", g.Size(), s.maxUnknowns)
	}

	sol, err := analysis.Solve(ctx, g, s.solver, s.circuitOpts)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, timeoutErr(err)
		}
		s.logger.Debug("solve failed", zap.String("solver", s.solver.Name()), zap.Error(err))
		return nil, err
	}
	s.solves.Add(1)

	s.logger.Debug("solved operating point",
		zap.String("title", g.Title()),
		zap.String("solver", s.solver.Name()),
		zap.Int("nodes", g.NumNodes()),
		zap.Int("branches", g.NumBranches()),
		zap.Duration("elapsed", time.Since(start)))
	return sol, nil
}

// Result is the outcome of one netlist of a batch.
type Result struct {
	Solution *analysis.Solution
	Err      error
}

// SolveAll solves texts concurrently. Results keep the input order; a
// failing netlist does not stop the others. The returned error is set only
// when ctx ends before the batch completes.
func (s *Simulator) SolveAll(ctx context.Context, texts []string) ([]Result, error) {
	s.logger.Debug("starting batch", zap.Int("netlists", len(texts)), zap.Int("concurrency", s.concurrency))

	results := make([]Result, len(texts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, text := range texts {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				results[i] = Result{Err: timeoutErr(ctx.Err())}
				return ctx.Err()
			default:
			}

			sol, err := s.Solve(ctx, text)
			results[i] = Result{Solution: sol, Err: err}
			return nil
		})
	}

	err := g.Wait()
	return results, err
}

func (s *Simulator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return context.WithCancel(ctx)
}

func timeoutErr(err error) error {
	return spiceerr.New(spiceerr.KindTimeout, 0, err, "simulation aborted: %v", err)
}
