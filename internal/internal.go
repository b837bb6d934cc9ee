package internal

import "fmt"

// CheckRange panics if the range from low to high is invalid, or if chunk is
// smaller than 1.
func CheckRange(low, high, chunk int) {
	if (low < 0) || (high < low) {
		panic(fmt.Sprintf("invalid range: %v:%v", low, high))
	}
	if chunk < 1 {
		panic(fmt.Sprintf("invalid chunk size: %v", chunk))
	}
}

// IsLeaf reports whether the range from low to high is processed directly
// instead of being split.
func IsLeaf(low, high, chunk int) bool {
	return high-low <= chunk
}

// Split returns the point at which the range from low to high is divided
// into two children, [low, mid) and [mid, high).
func Split(low, high int) (mid int) {
	return low + (high-low)/2
}

// A Span is a half-open range of indices.
type Span struct {
	Low, High int
}

// Leaves returns the leaf ranges of the task tree over the range from low to
// high, in ascending order. Their union is the whole range, without overlaps.
func Leaves(low, high, chunk int) (leaves []Span) {
	CheckRange(low, high, chunk)
	var recur func(int, int)
	recur = func(low, high int) {
		if IsLeaf(low, high, chunk) {
			leaves = append(leaves, Span{low, high})
			return
		}
		mid := Split(low, high)
		recur(low, mid)
		recur(mid, high)
	}
	recur(low, high)
	return
}
