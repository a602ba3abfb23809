package clean

import (
	"math"
	"sort"

	"github.com/JonMunkholm/datatidy/internal/table"
)

// numbers returns the numeric cells of values, sorted ascending.
func numbers(values []table.Value) []float64 {
	nums := make([]float64, 0, len(values))
	for _, v := range values {
		if v.IsNumber() {
			f, _ := v.Float()
			nums = append(nums, f)
		}
	}
	sort.Float64s(nums)
	return nums
}

// quantile interpolates linearly between the closest ranks of sorted.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// meanStd uses Welford's online update; std is the sample deviation and is
// NaN for fewer than two values.
func meanStd(nums []float64) (mean, std float64) {
	if len(nums) == 0 {
		return math.NaN(), math.NaN()
	}
	var m2 float64
	for i, x := range nums {
		n := float64(i + 1)
		delta := x - mean
		// Scaling before subtracting keeps the mean finite for values near
		// the float64 limits; m2 may still overflow.
		mean += x/n - mean/n
		m2 += delta * (x - mean)
	}
	if len(nums) < 2 {
		return mean, math.NaN()
	}
	return mean, math.Sqrt(m2 / float64(len(nums)-1))
}
