package core

import (
	"math"
	"math/bits"

	"github.com/chewxy/math32"
)

func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

func Clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}

// FloorPowerOfTwo returns the largest power of two not above n, or 0 for n < 1.
func FloorPowerOfTwo(n int) int {
	if n < 1 {
		return 0
	}
	return 1 << (bits.Len(uint(n)) - 1)
}

// PhysicalSize converts a logical size to device pixels.
func PhysicalSize(width, height int, dpr float64) (int, int) {
	return int(math.Round(float64(width) * dpr)), int(math.Round(float64(height) * dpr))
}
