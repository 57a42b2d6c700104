package mathutil

// MakeShape allocates a jagged matrix of zero K values with the same row lengths as in.
// Rows share one backing array but are capacity limited so that appending to one row never
// spills into the next.
func MakeShape[T, K any](in [][]T) [][]K {
	if in == nil {
		return nil
	}

	total := 0
	for _, row := range in {
		total += len(row)
	}

	var (
		out  = make([][]K, len(in))
		data = make([]K, total)
		off  int
	)
	for i, row := range in {
		l := len(row)
		out[i] = data[off : off+l : off+l]
		off += l
	}

	return out
}
