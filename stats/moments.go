package stats

import "math"

// moments accumulates count, mean, variance, skewness and kurtosis with a
// single pass and constant memory, via the numerically stable online
// algorithm attributed to Welford/Terriberry (spec.md §4.6: "Running
// moments ... via a numerically stable online algorithm").
type moments struct {
	n          int64
	mean       float64
	m2, m3, m4 float64
	min, max   float64
	hasRange   bool
}

func (m *moments) Add(x float64) {
	if !m.hasRange {
		m.min, m.max = x, x
		m.hasRange = true
	} else {
		if x < m.min {
			m.min = x
		}
		if x > m.max {
			m.max = x
		}
	}

	n1 := m.n
	m.n++
	n := float64(m.n)
	delta := x - m.mean
	deltaN := delta / n
	deltaN2 := deltaN * deltaN
	term1 := delta * deltaN * float64(n1)

	m.mean += deltaN
	m.m4 += term1*deltaN2*(n*n-3*n+3) + 6*deltaN2*m.m2 - 4*deltaN*m.m3
	m.m3 += term1*deltaN*(n-2) - 3*deltaN*m.m2
	m.m2 += term1
}

func (m *moments) Variance() float64 {
	if m.n < 2 {
		return 0
	}
	return m.m2 / float64(m.n-1)
}

func (m *moments) StdDev() float64 {
	return math.Sqrt(m.Variance())
}

// Skewness returns the sample skewness, 0 below two observations.
func (m *moments) Skewness() float64 {
	if m.n < 2 || m.m2 == 0 {
		return 0
	}
	n := float64(m.n)
	return math.Sqrt(n) * m.m3 / math.Pow(m.m2, 1.5)
}

// Kurtosis returns the excess kurtosis, 0 below two observations.
func (m *moments) Kurtosis() float64 {
	if m.n < 2 || m.m2 == 0 {
		return 0
	}
	n := float64(m.n)
	return n*m.m4/(m.m2*m.m2) - 3
}
