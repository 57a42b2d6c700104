package mathutil

import (
	"golang.org/x/exp/constraints"
)

// DivCeil rounds the quotient of a and b towards positive infinity.
func DivCeil[T constraints.Signed](a, b T) T {
	if b == 0 {
		panic("division by zero")
	}
	q, r := a/b, a%b
	sameSign := (a >= 0 && b > 0) || (a <= 0 && b < 0)
	if r != 0 && sameSign {
		q++
	}
	return q
}

func Clamp[T constraints.Integer](v, lo, hi T) T {
	return min(max(v, lo), hi)
}
