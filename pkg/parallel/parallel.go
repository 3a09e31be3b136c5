// Package parallel runs independent loop iterations across goroutines in
// contiguous chunks and joins them before returning.
package parallel

import (
	"golang.org/x/sync/errgroup"
)

// Chunk is a half-open index range [Start, End).
type Chunk struct {
	Start, End int
}

// Chunks splits [0, total) into at most workers contiguous ranges of nearly
// equal size. Empty ranges are omitted.
func Chunks(total, workers int) []Chunk {
	if total <= 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	size := total / workers
	if total%workers != 0 {
		size++
	}
	var out []Chunk
	for start := 0; start < total; start += size {
		out = append(out, Chunk{Start: start, End: min(start+size, total)})
	}
	return out
}

// For runs fn over [0, total) split into chunks, one goroutine per chunk,
// and waits for all of them. The first error returned by any chunk is
// returned; the other chunks still run to completion.
func For(total, workers int, fn func(start, end int) error) error {
	var g errgroup.Group
	for _, c := range Chunks(total, workers) {
		g.Go(func() error {
			return fn(c.Start, c.End)
		})
	}
	return g.Wait()
}

// Each is For for loops that cannot fail.
func Each(total, workers int, fn func(start, end int)) {
	_ = For(total, workers, func(start, end int) error {
		fn(start, end)
		return nil
	})
}
