package vector

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/exascience/parclust"
	"github.com/exascience/parclust/pool"
)

func forcedParallel(p *pool.Pool) *parclust.Config {
	cfg := parclust.NewConfig(4)
	cfg.SetParallelismEnabled(true)
	cfg.SetMaxSerialLength(0)
	cfg.SetMaxParallelChunkSize(3)
	cfg.Executor = p
	return cfg
}

func forcedSerial() *parclust.Config {
	cfg := parclust.NewConfig(4)
	cfg.SetParallelismEnabled(false)
	return cfg
}

func randomSlice(rnd *rand.Rand, n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = rnd.NormFloat64()
	}
	return xs
}

func TestAnyNaN(t *testing.T) {
	p := pool.New(4)
	defer p.Close()

	var testcases = map[string]struct {
		input    []float64
		expected bool
	}{
		`with_nan`:    {input: []float64{1.0, 2.0, math.NaN(), 4.0}, expected: true},
		`without_nan`: {input: []float64{1.0, 2.0, 3.0}, expected: false},
		`only_nan`:    {input: []float64{math.NaN()}, expected: true},
		`inf_is_not_nan`: {
			input:    []float64{math.Inf(1), 0, math.Inf(-1)},
			expected: false,
		},
	}

	for name, tc := range testcases {
		t.Run(name, func(t *testing.T) {
			for _, cfg := range []*parclust.Config{forcedSerial(), forcedParallel(p), nil} {
				got, err := AnyNaN(cfg, tc.input)
				require.NoError(t, err)
				require.Equal(t, tc.expected, got)
			}
		})
	}

	_, err := AnyNaN(nil, nil)
	require.ErrorIs(t, err, parclust.ErrDimension)
}

func TestAnyNonFinite(t *testing.T) {
	p := pool.New(4)
	defer p.Close()

	for _, cfg := range []*parclust.Config{forcedSerial(), forcedParallel(p)} {
		got, err := AnyNonFinite(cfg, []float64{1, 2, 3, 4, 5, math.Inf(-1), 7})
		require.NoError(t, err)
		require.True(t, got)

		got, err = AnyNonFinite(cfg, []float64{1, 2, 3, 4, 5, 6, 7})
		require.NoError(t, err)
		require.False(t, got)
	}
}

func TestReductions(t *testing.T) {
	p := pool.New(4)
	defer p.Close()
	rnd := rand.New(rand.NewPCG(1, 2))

	for _, n := range []int{1, 2, 3, 4, 17, 1000} {
		t.Run(fmt.Sprintf("n=%v", n), func(t *testing.T) {
			xs := randomSlice(rnd, n)
			ys := randomSlice(rnd, n)
			par := forcedParallel(p)

			s, err := Sum(par, xs)
			require.NoError(t, err)
			require.InDelta(t, floats.Sum(xs), s, 1e-9)

			mx, err := Max(par, xs)
			require.NoError(t, err)
			require.Equal(t, floats.Max(xs), mx)

			mn, err := Min(par, xs)
			require.NoError(t, err)
			require.Equal(t, floats.Min(xs), mn)

			d, err := Dot(par, xs, ys)
			require.NoError(t, err)
			require.InDelta(t, floats.Dot(xs, ys), d, 1e-9)

			sq, err := SquaredEuclidean(par, xs, ys)
			require.NoError(t, err)
			dist := floats.Distance(xs, ys, 2)
			require.InDelta(t, dist*dist, sq, 1e-9)

			serial, err := SquaredEuclidean(forcedSerial(), xs, ys)
			require.NoError(t, err)
			require.InDelta(t, serial, sq, 1e-9)
		})
	}
}

func TestMaxMinSkipNaN(t *testing.T) {
	p := pool.New(4)
	defer p.Close()

	nan := math.NaN()
	var testcases = map[string]struct {
		input    []float64
		max, min float64
	}{
		`nan_leaf`:     {input: []float64{1, 2, 3, nan, nan, 6, 7}, max: 7, min: 1},
		`nan_at_ends`:  {input: []float64{nan, -2, 3, 4, 5, 9, nan}, max: 9, min: -2},
		`mixed_leaves`: {input: []float64{nan, 8, nan, nan, nan, nan, -1, nan}, max: 8, min: -1},
	}

	for name, tc := range testcases {
		t.Run(name, func(t *testing.T) {
			for _, cfg := range []*parclust.Config{forcedSerial(), forcedParallel(p)} {
				got, err := Max(cfg, tc.input)
				require.NoError(t, err)
				require.Equal(t, tc.max, got)

				got, err = Min(cfg, tc.input)
				require.NoError(t, err)
				require.Equal(t, tc.min, got)
			}
		})
	}

	allNaN := []float64{nan, nan, nan, nan, nan, nan, nan}
	for _, cfg := range []*parclust.Config{forcedSerial(), forcedParallel(p)} {
		got, err := Max(cfg, allNaN)
		require.NoError(t, err)
		require.True(t, math.IsNaN(got))

		got, err = Min(cfg, allNaN)
		require.NoError(t, err)
		require.True(t, math.IsNaN(got))
	}
}

func TestEmptyInputs(t *testing.T) {
	s, err := Sum(nil, nil)
	require.NoError(t, err)
	require.Zero(t, s)

	d, err := Dot(nil, []float64{}, []float64{})
	require.NoError(t, err)
	require.Zero(t, d)

	eq, err := EqualWithinTolerance(nil, nil, nil, 0)
	require.NoError(t, err)
	require.True(t, eq)

	_, err = Max(nil, nil)
	require.ErrorIs(t, err, parclust.ErrDimension)
	_, err = Min(nil, []float64{})
	require.ErrorIs(t, err, parclust.ErrDimension)
	_, err = AnyNonFinite(nil, nil)
	require.ErrorIs(t, err, parclust.ErrDimension)
}

func TestEqualWithinTolerance(t *testing.T) {
	p := pool.New(4)
	defer p.Close()

	xs := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	ys := []float64{1, 2, 3, 4, 5, 6, 7, 8.0001}

	for _, cfg := range []*parclust.Config{forcedSerial(), forcedParallel(p)} {
		eq, err := EqualWithinTolerance(cfg, xs, ys, 1e-3)
		require.NoError(t, err)
		require.True(t, eq)

		eq, err = EqualWithinTolerance(cfg, xs, ys, 1e-8)
		require.NoError(t, err)
		require.False(t, eq)

		_, err = EqualWithinTolerance(cfg, xs, ys[:7], 1e-3)
		require.ErrorIs(t, err, parclust.ErrDimension)
	}
}

func TestDualLengthMismatch(t *testing.T) {
	_, err := Dot(nil, []float64{1, 2, 3}, []float64{1, 2, 3, 4})
	require.ErrorIs(t, err, parclust.ErrDimension)
	_, err = SquaredEuclidean(nil, []float64{1}, nil)
	require.ErrorIs(t, err, parclust.ErrDimension)
}

func ExampleAnyNaN() {
	hasNaN, _ := AnyNaN(nil, []float64{1.0, 2.0, math.NaN(), 4.0})
	fmt.Println(hasNaN)
	hasNaN, _ = AnyNaN(nil, []float64{1.0, 2.0, 3.0})
	fmt.Println(hasNaN)

	// Output:
	// true
	// false
}
