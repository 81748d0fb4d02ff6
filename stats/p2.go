package stats

import "sort"

// p2Quantile is a streaming, constant-memory quantile estimator for a
// single target probability p, implementing the P² algorithm (Jain &
// Chlamtac 1985): spec.md §4.6 "Quantiles p25/p50/p75 via the P² algorithm
// ... exact quantiles are NOT required."
type p2Quantile struct {
	p       float64
	count   int
	initial []float64

	n    [5]int
	npos [5]float64
	dn   [5]float64
	q    [5]float64
}

func newP2Quantile(p float64) *p2Quantile {
	return &p2Quantile{p: p}
}

func (m *p2Quantile) Add(x float64) {
	m.count++
	if m.count <= 5 {
		m.initial = append(m.initial, x)
		if m.count == 5 {
			sort.Float64s(m.initial)
			for i := 0; i < 5; i++ {
				m.q[i] = m.initial[i]
				m.n[i] = i + 1
			}
			m.npos = [5]float64{1, 1 + 2*m.p, 1 + 4*m.p, 3 + 2*m.p, 5}
			m.dn = [5]float64{0, m.p / 2, m.p, (1 + m.p) / 2, 1}
		}
		return
	}

	var k int
	switch {
	case x < m.q[0]:
		m.q[0] = x
		k = 0
	case x < m.q[1]:
		k = 0
	case x < m.q[2]:
		k = 1
	case x < m.q[3]:
		k = 2
	case x <= m.q[4]:
		k = 3
	default:
		m.q[4] = x
		k = 3
	}

	for i := k + 1; i < 5; i++ {
		m.n[i]++
	}
	for i := 0; i < 5; i++ {
		m.npos[i] += m.dn[i]
	}

	for i := 1; i <= 3; i++ {
		d := m.npos[i] - float64(m.n[i])
		if (d >= 1 && m.n[i+1]-m.n[i] > 1) || (d <= -1 && m.n[i-1]-m.n[i] < -1) {
			sign := 1.0
			if d < 0 {
				sign = -1.0
			}
			newQ := m.parabolic(i, sign)
			if m.q[i-1] < newQ && newQ < m.q[i+1] {
				m.q[i] = newQ
			} else {
				m.q[i] = m.linear(i, sign)
			}
			m.n[i] += int(sign)
		}
	}
}

func (m *p2Quantile) parabolic(i int, d float64) float64 {
	np1, nm1, ni := float64(m.n[i+1]), float64(m.n[i-1]), float64(m.n[i])
	return m.q[i] + d/(np1-nm1)*(
		(ni-nm1+d)*(m.q[i+1]-m.q[i])/(np1-ni)+
			(np1-ni-d)*(m.q[i]-m.q[i-1])/(ni-nm1))
}

func (m *p2Quantile) linear(i int, d float64) float64 {
	j := i + int(d)
	return m.q[i] + d*(m.q[j]-m.q[i])/float64(m.n[j]-m.n[i])
}

// Value returns the current quantile estimate.
func (m *p2Quantile) Value() float64 {
	if m.count == 0 {
		return 0
	}
	if m.count < 5 {
		sorted := append([]float64(nil), m.initial...)
		sort.Float64s(sorted)
		idx := int(m.p * float64(len(sorted)-1))
		return sorted[idx]
	}
	return m.q[2]
}
