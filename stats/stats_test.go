package stats

import (
	"math"
	"testing"

	"github.com/ambrydata/mpr/object"
	"github.com/ambrydata/mpr/rowstore"
)

func approxEqual(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want within %v of %v", name, got, tol, want)
	}
}

func TestMomentsAgainstKnownSample(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	m := &moments{}
	for _, x := range xs {
		m.Add(x)
	}
	approxEqual(t, "mean", m.mean, 5, 1e-9)
	approxEqual(t, "stddev", m.StdDev(), 2.13809, 1e-4)
}

func TestP2QuantileApproximatesMedian(t *testing.T) {
	p := newP2Quantile(0.5)
	for i := 1; i <= 1000; i++ {
		p.Add(float64(i))
	}
	approxEqual(t, "p50", p.Value(), 500, 30)
}

func TestCardinalityTopK(t *testing.T) {
	c := newCardinality(2)
	for i := 0; i < 5; i++ {
		c.Observe("a")
	}
	for i := 0; i < 3; i++ {
		c.Observe("b")
	}
	c.Observe("c")
	if c.NUniques() != 3 {
		t.Fatalf("NUniques = %d, want 3", c.NUniques())
	}
	top := c.TopK()
	if len(top) != 2 {
		t.Fatalf("len(TopK()) = %d, want 2", len(top))
	}
	if top["a"] != 5 || top["b"] != 3 {
		t.Errorf("TopK = %v, want a:5 b:3", top)
	}
}

func TestHistogramBinsWithinRange(t *testing.T) {
	h := newHistogram(10, 4)
	for i := 0; i < 10; i++ {
		if h.Observe(float64(i)) {
			h.CompletePrimer(4.5, 2.87)
		}
	}
	total := 0
	for _, b := range h.Bins() {
		total += b
	}
	if total == 0 {
		t.Fatal("expected some values classified into bins")
	}
}

func TestProfileResolveIntervalColumn(t *testing.T) {
	p := NewProfile([]rowstore.LOM{rowstore.LOMInterval}, Options{PrimerSize: 20, NumBins: 4, TopK: 10})
	for i := 1; i <= 50; i++ {
		p.Observe(object.Row{object.Int64(i)})
	}
	schema := p.Resolve()
	c := schema.Columns[0]
	approxEqual(t, "mean", c.Mean, 25.5, 1)
	if c.StatCount != 50 {
		t.Errorf("StatCount = %d, want 50", c.StatCount)
	}
	if c.NUniques != 50 {
		t.Errorf("NUniques = %d, want 50", c.NUniques)
	}
}

func TestProfileDowngradesLowCardinalityInterval(t *testing.T) {
	p := NewProfile([]rowstore.LOM{rowstore.LOMInterval}, Options{PrimerSize: 500, NumBins: 4, TopK: 10})
	for i := 0; i < 600; i++ {
		p.Observe(object.Row{object.Int64(int64(i % 2))})
	}
	schema := p.Resolve()
	c := schema.Columns[0]
	if c.LOM != rowstore.LOMOrdinal {
		t.Errorf("LOM = %v, want ORDINAL after downgrade", c.LOM)
	}
	if c.Mean != 0 || c.Std != 0 {
		t.Errorf("numeric stats should be discarded after downgrade, got mean=%v std=%v", c.Mean, c.Std)
	}
}

func TestRenderTextASCIIFallback(t *testing.T) {
	s := RenderText([]int{0, 1, 5, 10}, true)
	if len(s) != 4 {
		t.Fatalf("len(RenderText) = %d, want 4", len(s))
	}
}
