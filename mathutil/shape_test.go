package mathutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xeptore/tunedl/mathutil"
)

func TestMakeShapeNilInput(t *testing.T) {
	t.Parallel()

	var src [][]int
	assert.Nil(t, mathutil.MakeShape[int, string](src))
}

func TestMakeShapePreservesShape(t *testing.T) {
	t.Parallel()

	src := [][]int{
		{1, 2, 3},
		{4},
		{},
		{5, 6},
	}
	dst := mathutil.MakeShape[int, string](src)

	assert.Len(t, dst, len(src))
	for i, want := range []int{3, 1, 0, 2} {
		assert.Len(t, dst[i], want, "row %d length", i)
		assert.Len(t, dst[i], cap(dst[i]), "row %d capacity", i)
		for j := range dst[i] {
			assert.Empty(t, dst[i][j])
		}
	}
}

func TestMakeShapeRowsAreDisjoint(t *testing.T) {
	t.Parallel()

	dst := mathutil.MakeShape[int, int]([][]int{{0, 0}, {0}, {0, 0, 0}})

	dst[0][1] = 42
	assert.Zero(t, dst[1][0])

	dst[0] = append(dst[0], 99)
	assert.Zero(t, dst[1][0], "append must not spill into the next row")

	dst[2][2] = 7
	assert.Equal(t, 42, dst[0][1])
}
