// Package stats implements the streaming stats engine (C6): per-column
// moments, P² quantiles, top-K cardinality and a primed histogram, bound to
// each column's Level of Measurement.
//
// Grounded on FINNGEN-mmpio's src/math.go (gonum.org/v1/gonum/stat and
// distuv consumed for meta-analysis statistics over []float64 slices),
// adapted here from a one-shot batch computation to a streaming accumulator:
// gonum computes the exact mean/stddev of the buffered histogram primer at
// the moment it fills, while the moving moments/quantiles/cardinality
// counters are maintained incrementally across the whole scanned column
// (see moments.go, p2.go, cardinality.go, histogram.go).
package stats

import (
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/ambrydata/mpr/object"
	"github.com/ambrydata/mpr/rowstore"
)

// downgradeThreshold is "distinct count is <1% of primer size" (§4.6).
const downgradeThreshold = 0.01

// Options configures the stats engine's constants away from their spec
// defaults (used by tests and by config.Config).
type Options struct {
	TopK       int
	PrimerSize int
	NumBins    int
	SampleFrom int
}

// StatSet is one column's accumulator, bound to a Level of Measurement.
type StatSet struct {
	lom    rowstore.LOM
	mo     *moments
	p25    *p2Quantile
	p50    *p2Quantile
	p75    *p2Quantile
	card   *cardinality
	hist   *histogram
	count  int
	primer int
}

func newStatSet(lom rowstore.LOM, opts Options) *StatSet {
	return &StatSet{
		lom:    lom,
		mo:     &moments{},
		p25:    newP2Quantile(0.25),
		p50:    newP2Quantile(0.50),
		p75:    newP2Quantile(0.75),
		card:   newCardinality(opts.TopK),
		hist:   newHistogram(opts.PrimerSize, opts.NumBins),
		primer: effective(opts.PrimerSize, DefaultPrimerSize),
	}
}

func effective(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Observe folds one cell into the accumulator. Numeric observations feed
// moments/quantiles/histogram; everything else (including an unparseable
// numeric, per spec.md §4.6 "an unparseable value ... is counted as a
// string rather than erroring") feeds only the cardinality counter.
func (s *StatSet) Observe(v object.Value) {
	switch t := v.(type) {
	case object.Int64:
		s.observeNumeric(float64(t))
		s.card.Observe(t.String())
	case object.Float64:
		s.observeNumeric(float64(t))
		s.card.Observe(t.String())
	case nil, object.Null:
		return
	default:
		s.card.Observe(v.String())
	}
}

func (s *StatSet) observeNumeric(f float64) {
	s.count++
	s.mo.Add(f)
	s.p25.Add(f)
	s.p50.Add(f)
	s.p75.Add(f)
	if s.hist.Observe(f) {
		values := append([]float64(nil), s.hist.primer...)
		mean, std := stat.MeanStdDev(values, nil)
		s.hist.CompletePrimer(mean, std)
	}
}

// Profile drives a stats run across every column of a row stream.
type Profile struct {
	opts Options
	cols []*StatSet
	lom  []rowstore.LOM
}

// NewProfile returns a stats profile for the given column LOMs, derived
// from a prior type-intuition pass (rowstore.Schema.Columns[i].LOM).
func NewProfile(loms []rowstore.LOM, opts Options) *Profile {
	p := &Profile{opts: opts, lom: loms}
	p.cols = make([]*StatSet, len(loms))
	for i, lom := range loms {
		p.cols[i] = newStatSet(lom, opts)
	}
	return p
}

// Observe folds one row into every column's accumulator.
func (p *Profile) Observe(row object.Row) {
	for i, v := range row {
		if i >= len(p.cols) {
			break
		}
		p.cols[i].Observe(v)
	}
}

// Run scans every row next returns, striding when total exceeds the
// large-sample threshold (spec.md §4.6 sample_from).
func (p *Profile) Run(next func() (object.Row, bool, error), total int) error {
	sampleFrom := p.opts.SampleFrom
	if sampleFrom == 0 {
		sampleFrom = total
	}
	stride := 1
	if sampleFrom > 10000 {
		stride = sampleFrom / 10000
		if stride < 1 {
			stride = 1
		}
	}
	i := 0
	for {
		row, ok, err := next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if i%stride == 0 {
			p.Observe(row)
		}
		i++
	}
	return nil
}

// Resolve produces the finished schema: one column per accumulator, with
// stat fields filled in and the INTERVAL->ORDINAL downgrade applied.
func (p *Profile) Resolve() rowstore.Schema {
	schema := rowstore.NewSchema(len(p.cols))
	for i, s := range p.cols {
		c := &schema.Columns[i]
		c.LOM = s.lom
		c.StatCount = s.count
		c.NUniques = s.card.NUniques()
		c.UValues = s.card.TopK()
		c.Hist = s.hist.Bins()

		if s.lom != rowstore.LOMInterval || s.count == 0 {
			continue
		}
		c.Mean = s.mo.mean
		c.Std = s.mo.StdDev()
		c.Min = s.mo.min
		c.Max = s.mo.max
		c.P25 = s.p25.Value()
		c.P50 = s.p50.Value()
		c.P75 = s.p75.Value()
		c.Skewness = s.mo.Skewness()
		c.Kurtosis = s.mo.Kurtosis()

		if s.hist.primed && s.hist.primerSize > 0 &&
			float64(c.NUniques)/float64(s.hist.primerSize) < downgradeThreshold {
			c.LOM = rowstore.LOMOrdinal
			c.Mean, c.Std, c.Min, c.Max = 0, 0, 0, 0
			c.P25, c.P50, c.P75 = 0, 0, 0
			c.Skewness, c.Kurtosis = 0, 0
			c.Hist = nil
		}
	}
	return schema
}

// TextHistogram renders column c's histogram as a bar-chart string.
func TextHistogram(c rowstore.Column, asciiFallback bool) string {
	return RenderText(c.Hist, asciiFallback)
}

// FormatCell renders a Value for the top-K cardinality map key, matching
// the key shape used when Observe folds a value in (exported for external
// callers building lookup keys consistently, e.g. the SQL adapter).
func FormatCell(v object.Value) string {
	switch t := v.(type) {
	case object.Int64:
		return strconv.FormatInt(int64(t), 10)
	default:
		return v.String()
	}
}
