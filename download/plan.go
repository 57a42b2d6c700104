package download

import (
	"slices"

	"github.com/xeptore/tunedl/iterutil"
	"github.com/xeptore/tunedl/mathutil"
	"github.com/xeptore/tunedl/must"
)

// EffectiveParallelism is the chunk size used for n items: p, but never more than n and never less than 1.
func EffectiveParallelism(n, p int) int {
	return mathutil.Clamp(p, 1, max(n, 1))
}

// Plan splits items into consecutive chunks of at most EffectiveParallelism(len(items), p) elements.
// Only the last chunk may be shorter.
func Plan[T any](items []T, p int) [][]T {
	if len(items) == 0 {
		return nil
	}

	size := EffectiveParallelism(len(items), p)
	chunks := make([][]T, mathutil.DivCeil(len(items), size))
	for i, chunk := range iterutil.WithIndex(slices.Chunk(items, size)) {
		chunks[i] = chunk
	}
	must.Be(nil != chunks[len(chunks)-1], "every chunk must be filled")

	return chunks
}
