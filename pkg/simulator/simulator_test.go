package simulator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/edp1096/opspice/pkg/matrix"
	"github.com/edp1096/opspice/pkg/netlist"
	"github.com/edp1096/opspice/pkg/spiceerr"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const divider = "* divider\nV1 in 0 10\nR1 in out 1k\nR2 out 0 1k\n.op\n.end\n"

func newSimulator(t *testing.T, opts ...Option) *Simulator {
	t.Helper()
	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)
	sim, err := New(opts...)
	require.NoError(t, err)
	return sim
}

func TestSolve(t *testing.T) {
	sim := newSimulator(t)

	sol, err := sim.Solve(context.Background(), divider)
	require.NoError(t, err)

	v, ok := sol.Voltage("out")
	require.True(t, ok)
	assert.InDelta(t, 5.0, v, 1e-12)
	assert.Equal(t, int64(1), sim.Solves())
}

func TestSolveCache(t *testing.T) {
	sim := newSimulator(t)

	first, err := sim.Solve(context.Background(), divider)
	require.NoError(t, err)

	// Same circuit, different spelling.
	respelled := "* divider\nV1 in 0 DC 10V ; supply\nR1 in out\n+ 1000\nR2 out 0 1e3\n.op\n"
	second, err := sim.Solve(context.Background(), respelled)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int64(1), sim.Solves())

	_, err = sim.Solve(context.Background(), strings.Replace(divider, "10", "12", 1))
	require.NoError(t, err)
	assert.Equal(t, int64(2), sim.Solves())
}

func TestSolveCacheDisabled(t *testing.T) {
	sim := newSimulator(t, WithCacheSize(0))

	for range 3 {
		_, err := sim.Solve(context.Background(), divider)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(3), sim.Solves())
}

func TestSolveConcurrentIdentical(t *testing.T) {
	sim := newSimulator(t)

	const callers = 32
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = sim.Solve(context.Background(), divider)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int64(1), sim.Solves())
}

func TestSolveErrors(t *testing.T) {
	sim := newSimulator(t)

	tests := []struct {
		name  string
		input string
		kind  spiceerr.Kind
	}{
		{"parse", "R1 1 0", spiceerr.KindParse},
		{"value", "R1 1 0 1x", spiceerr.KindValue},
		{"duplicate", "V1 1 0 1\nR1 1 0 1\nR1 1 0 2", spiceerr.KindDuplicate},
		{"topology", "V1 1 0 1\nR1 1 2 1", spiceerr.KindTopology},
		{"singular", "V1 1 0 1\nV2 1 0 2\nR1 1 0 1", spiceerr.KindSingular},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Solve(context.Background(), tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.kind, spiceerr.KindOf(err))
		})
	}
	assert.Zero(t, sim.Solves())
	assert.Zero(t, sim.cache.Len(), "failures are not cached")
}

func TestSolveLimit(t *testing.T) {
	sim := newSimulator(t, WithMaxUnknowns(2))

	_, err := sim.Solve(context.Background(), divider)
	require.Error(t, err)
	assert.ErrorIs(t, err, spiceerr.ErrTooLarge)
	assert.Equal(t, spiceerr.KindLimit, spiceerr.KindOf(err))

	_, err = sim.Solve(context.Background(), "V1 1 0 1\nR1 1 0 1")
	assert.NoError(t, err)
}

func TestSolveTimeout(t *testing.T) {
	sim := newSimulator(t)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := sim.Solve(ctx, divider)
	require.Error(t, err)
	assert.Equal(t, spiceerr.KindTimeout, spiceerr.KindOf(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, sim.Solves())

	// The aborted request leaves nothing behind.
	sol, err := sim.Solve(context.Background(), divider)
	require.NoError(t, err)
	assert.NotNil(t, sol)
}

func TestSolveSparse(t *testing.T) {
	dense := newSimulator(t)
	sparse := newSimulator(t, WithSolver(matrix.SparseLU{}), WithGmin(0))

	a, err := dense.Solve(context.Background(), divider)
	require.NoError(t, err)
	b, err := sparse.Solve(context.Background(), divider)
	require.NoError(t, err)

	assert.InDeltaSlice(t, a.Unknowns(), b.Unknowns(), 1e-9)
}

func TestSolveFirstLineTitle(t *testing.T) {
	sim := newSimulator(t, WithParseOptions(netlist.Options{FirstLineTitle: true}))

	sol, err := sim.Solve(context.Background(), "Bias point\nV1 1 0 1\nR1 1 0 1\n")
	require.NoError(t, err)
	assert.Equal(t, "Bias point", sol.Graph().Title())
}

func TestSolveAll(t *testing.T) {
	sim := newSimulator(t, WithConcurrency(2))

	texts := make([]string, 0, 9)
	for i := range 8 {
		texts = append(texts, fmt.Sprintf("V1 1 0 %d\nR1 1 0 1\n", i+1))
	}
	texts = append(texts, "R1 1 0")

	results, err := sim.SolveAll(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, results, len(texts))

	for i, r := range results[:8] {
		require.NoError(t, r.Err)
		v, _ := r.Solution.Voltage("1")
		assert.InDelta(t, float64(i+1), v, 1e-12)
	}
	assert.Nil(t, results[8].Solution)
	assert.Equal(t, spiceerr.KindParse, spiceerr.KindOf(results[8].Err))
}

func TestSolveAllCanceled(t *testing.T) {
	sim := newSimulator(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := sim.SolveAll(ctx, []string{divider, divider})
	require.Error(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, spiceerr.KindTimeout, spiceerr.KindOf(r.Err))
	}
}
