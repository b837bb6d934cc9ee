// Package parclust provides an adaptive data-parallel reduce framework for the
// numeric kernels of a clustering toolkit. Each invocation decides, based on a
// Config, whether an operation over a vector or matrix runs directly on the
// calling goroutine or is recursively split into a binary task tree that is
// executed by a bounded fork/join worker pool. Results are combined
// bottom-up, so the answer does not depend on where the splits occurred as
// long as the combine function is associative.
//
// Parclust provides the following subpackages:
//
// parclust/parallel provides the generic single-array and dual-array reducers,
// as well as the underlying fork/join range tree.
//
// parclust/sequential provides an executor that runs the same task trees on the
// calling goroutine, for testing and debugging purposes.
//
// parclust/pool provides the bounded, process-wide fork/join worker pool.
//
// parclust/vector provides the reductions used by the clustering algorithms,
// such as NaN checks, sums, and distance kernels.
//
// parclust/matrix provides row-decomposed matrix multiplication over gonum
// matrices.
//
// The decomposition follows the usual divide-and-conquer scheme from Cilk and
// Java's fork/join framework. See http://supertech.csail.mit.edu/papers/steal.pdf
// for some theoretical background.
package parclust
