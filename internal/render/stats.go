package render

import (
	"math"
	"sort"
)

// Summary holds the five-number summary plus the mean of one group.
type Summary struct {
	Count  int
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
	Mean   float64
}

// BoxValue returns the value layout echarts expects for a box item.
func (s Summary) BoxValue() []float64 {
	return []float64{s.Min, s.Q1, s.Median, s.Q3, s.Max}
}

// Summarize 计算一组样本的分位数摘要；NaN 会被忽略。
func Summarize(values []float64) Summary {
	sorted := make([]float64, 0, len(values))
	sum := 0.0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sorted = append(sorted, v)
		sum += v
	}
	if len(sorted) == 0 {
		return Summary{}
	}
	sort.Float64s(sorted)
	return Summary{
		Count:  len(sorted),
		Min:    sorted[0],
		Q1:     quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		Q3:     quantile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
		Mean:   sum / float64(len(sorted)),
	}
}

// quantile interpolates linearly between closest ranks of a sorted slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// groupPoints splits predictions by the group index at the same position.
// Entries whose index falls outside [0, groups) are dropped.
func groupPoints(x []float64, y []int, groups int) [][]float64 {
	out := make([][]float64, groups)
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	for i := 0; i < n; i++ {
		g := y[i]
		if g < 0 || g >= groups {
			continue
		}
		out[g] = append(out[g], x[i])
	}
	return out
}
