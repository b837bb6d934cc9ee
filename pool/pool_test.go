package pool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/exascience/parclust"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// tree forks down to leaves of size 1 over [low, high) and calls leaf for each.
func tree(p *Pool, low, high int, leaf func(int)) {
	if high-low == 1 {
		leaf(low)
		return
	}
	mid := low + (high-low)/2
	p.Fork(
		func() { tree(p, low, mid, leaf) },
		func() { tree(p, mid, high, leaf) },
	)
}

func TestForkVisitsEveryLeafOnce(t *testing.T) {
	p := New(4)
	defer p.Close()

	const n = 1000
	visits := make([]int32, n)
	err := p.Submit(func() {
		tree(p, 0, n, func(i int) { atomic.AddInt32(&visits[i], 1) })
	})
	require.NoError(t, err)
	for i, v := range visits {
		if v != 1 {
			t.Fatalf("leaf %v visited %v times", i, v)
		}
	}
}

func TestForkIsBounded(t *testing.T) {
	const workers = 3
	p := New(workers)
	defer p.Close()

	var running, peak int32
	err := p.Submit(func() {
		tree(p, 0, 64, func(int) {
			r := atomic.AddInt32(&running, 1)
			for {
				old := atomic.LoadInt32(&peak)
				if r <= old || atomic.CompareAndSwapInt32(&peak, old, r) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&running, -1)
		})
	})
	require.NoError(t, err)
	require.LessOrEqual(t, int(peak), workers)
	require.GreaterOrEqual(t, int(peak), 1)
}

func TestSingleWorkerRunsInline(t *testing.T) {
	p := New(1)
	defer p.Close()

	var order []int
	err := p.Submit(func() {
		tree(p, 0, 8, func(i int) { order = append(order, i) })
	})
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, order)
	require.Equal(t, float64(7), testutil.ToFloat64(p.metrics.inlineForks))
	require.Equal(t, float64(0), testutil.ToFloat64(p.metrics.spawnedForks))
}

func TestForkPropagatesPanics(t *testing.T) {
	for _, workers := range []int{1, 2} {
		p := New(workers)

		require.PanicsWithValue(t, "left", func() {
			p.Fork(func() { panic("left") }, func() {})
		})
		require.PanicsWithValue(t, "right", func() {
			p.Fork(func() {}, func() { panic("right") })
		})
		require.PanicsWithValue(t, "left", func() {
			p.Fork(func() { panic("left") }, func() { panic("right") })
		})

		var rightDone atomic.Bool
		require.PanicsWithValue(t, "leaf", func() {
			_ = p.Submit(func() {
				tree(p, 0, 16, func(i int) {
					if i == 3 {
						panic("leaf")
					}
				})
			})
		})
		require.PanicsWithValue(t, "left", func() {
			p.Fork(func() { panic("left") }, func() { rightDone.Store(true) })
		})
		if workers > 1 {
			require.True(t, rightDone.Load())
		}

		p.Close()
	}
}

func TestSubmitAfterClose(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	p := New(2, WithLogger(zap.New(core)))
	require.Equal(t, 1, logs.FilterMessage("worker pool created").Len())

	p.Close()
	p.Close()
	require.Equal(t, 1, logs.FilterMessage("worker pool closed").Len())

	ran := false
	err := p.Submit(func() { ran = true })
	require.ErrorIs(t, err, parclust.ErrSchedulingRejected)
	require.False(t, ran)
	require.Equal(t, float64(1), testutil.ToFloat64(p.metrics.rejections))
	require.Equal(t, 1, logs.FilterMessage("worker pool rejected submission").Len())
}

func TestCloseWaitsForSubmissions(t *testing.T) {
	p := New(2)

	started := make(chan struct{})
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = p.Submit(func() {
			close(started)
			<-release
		})
	}()
	<-started

	closed := make(chan struct{})
	go func() {
		p.Close()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close returned while a submission was running")
	case <-time.After(20 * time.Millisecond):
	}
	close(release)
	<-closed
	wg.Wait()
}

func TestMetricsRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := New(2, WithRegisterer(reg))
	defer p.Close()

	require.NoError(t, p.Submit(func() {
		p.Fork(func() {}, func() {})
	}))

	require.Equal(t, float64(1), testutil.ToFloat64(p.metrics.submissions))
	forks := testutil.ToFloat64(p.metrics.spawnedForks) + testutil.ToFloat64(p.metrics.inlineForks)
	require.Equal(t, float64(1), forks)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(mfs))
	for _, mf := range mfs {
		names = append(names, mf.GetName())
	}
	require.Contains(t, names, "parclust_pool_submissions_total")
	require.Contains(t, names, "parclust_pool_forks_total")

	require.Panics(t, func() { New(2, WithRegisterer(reg)) })
}

func TestShared(t *testing.T) {
	require.Same(t, Shared(), Shared())
	require.Equal(t, parclust.Default().CoreCount, Shared().Workers())
}

func TestNewInvalid(t *testing.T) {
	require.Panics(t, func() { New(0) })
}
