package domain

import "math"

// Aritmética int64 con pánico en overflow. Un overflow en ticks significa que
// la simulación está corrupta: no hay nada que recuperar.

func safeAdd(a, b int64) int64 {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		panic("domain: int64 add overflow")
	}
	return a + b
}

func safeSub(a, b int64) int64 {
	if (b > 0 && a < math.MinInt64+b) || (b < 0 && a > math.MaxInt64+b) {
		panic("domain: int64 sub overflow")
	}
	return a - b
}

func safeMul(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	c := a * b
	if c/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		panic("domain: int64 mul overflow")
	}
	return c
}

func abs64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
