// Package matrix provides matrix multiplication on top of package parallel.
//
// Large products are decomposed into blocks of rows of the left operand.
// Each leaf of the task tree computes a contiguous block of rows of the
// pre-allocated result with the same loop nest as the serial algorithm, so
// the serial and the parallel path produce bit-identical results.
package matrix

import (
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/exascience/parclust"
	"github.com/exascience/parclust/parallel"
)

const opMultiply = "Multiply"

func checkDims(a, b *mat.Dense) (m, k, n int, err error) {
	if a == nil || b == nil || a.IsEmpty() || b.IsEmpty() {
		err = parclust.NewDimensionError(opMultiply, "empty operand")
		return
	}
	m, k = a.Dims()
	kb, n := b.Dims()
	if k != kb {
		err = parclust.NewDimensionError(opMultiply, "%vx%v times %vx%v", m, k, kb, n)
	}
	return
}

// Multiply returns the product of the m×k matrix a and the k×n matrix b.
//
// If parallelism is enabled in cfg and the larger operand has more than
// cfg.MaxSerialLength elements, the rows of the result are computed in
// parallel, in blocks of at most cfg.ChunkSize(m*k)/k rows (but at least
// one). Otherwise the product is computed on the calling goroutine.
//
// Multiply returns a parclust.DimensionError if an operand is nil or empty,
// or if the number of columns of a differs from the number of rows of b. It
// returns an error wrapping parclust.ErrSchedulingRejected if the executor
// rejects the work.
func Multiply(cfg *parclust.Config, a, b *mat.Dense) (*mat.Dense, error) {
	m, k, n, err := checkDims(a, b)
	if err != nil {
		return nil, err
	}
	cfg = parclust.OrDefault(cfg)
	c := mat.NewDense(m, n, nil)

	size := max(m*k, k*n)
	if !cfg.ShouldParallelize(size) {
		cfg.Log().Debug("serial multiply", zap.Int("m", m), zap.Int("k", k), zap.Int("n", n))
		multiplyRows(a, b, c, 0, m)
		return c, nil
	}

	rows := max(1, cfg.ChunkSize(m*k)/k)
	cfg.Log().Debug("parallel multiply",
		zap.Int("m", m), zap.Int("k", k), zap.Int("n", n),
		zap.Int("rows", rows),
	)
	err = parallel.ForkJoinRange(cfg, m, rows, func(low, high int) {
		multiplyRows(a, b, c, low, high)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// MultiplySerial returns the product of a and b, computed on the calling
// goroutine regardless of any configuration. It reports dimension errors
// like Multiply.
func MultiplySerial(a, b *mat.Dense) (*mat.Dense, error) {
	m, _, n, err := checkDims(a, b)
	if err != nil {
		return nil, err
	}
	c := mat.NewDense(m, n, nil)
	multiplyRows(a, b, c, 0, m)
	return c, nil
}

// multiplyRows adds the product of rows low to high of a with b to the same
// rows of c. Each cell accumulates its inner product in ascending order of
// the shared dimension.
func multiplyRows(a, b, c *mat.Dense, low, high int) {
	_, k := a.Dims()
	for i := low; i < high; i++ {
		ai := a.RawRowView(i)
		ci := c.RawRowView(i)
		for p := 0; p < k; p++ {
			aip := ai[p]
			for j, bpj := range b.RawRowView(p) {
				ci[j] += aip * bpj
			}
		}
	}
}
