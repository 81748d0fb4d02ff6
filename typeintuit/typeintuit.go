// Package typeintuit implements the type intuiter (C5): per-column value
// kind counts and a resolved type, derived by sampling a row stream.
//
// Grounded on kokes/smda's column-type sniffing
// (other_examples/6a234b30_kokes-smda__src-database-loader.go.go), adapted
// from a single parse-order sniff to the spec's counted, threshold-based
// resolution, and wired into rowstore.Schema (SPEC_FULL.md §5) rather than
// a bespoke column type.
package typeintuit

import (
	"unicode/utf8"

	"github.com/ambrydata/mpr/object"
	"github.com/ambrydata/mpr/rowstore"
)

// resolveThreshold is the spec's "accounts for >=95% of non-none values".
const resolveThreshold = 0.95

// codeThreshold is the has_codes heuristic: <1% uniqueness on a string column.
const codeThreshold = 0.01

// Profile accumulates per-column value-kind counts across a scan.
type Profile struct {
	schema  rowstore.Schema
	seen    []map[string]int // distinct string-rendered values, to back has_codes
	started bool
}

// NewProfile returns an empty profile.
func NewProfile() *Profile {
	return &Profile{}
}

// ProcessHeader records column names ahead of any row scan (spec.md §4.5
// process_header). It is safe to call before or instead of scanning rows.
func (p *Profile) ProcessHeader(headers []string) *Profile {
	p.ensure(len(headers))
	p.schema.SetHeaders(headers)
	return p
}

func (p *Profile) ensure(n int) {
	if len(p.schema.Columns) >= n {
		return
	}
	grown := rowstore.NewSchema(n)
	copy(grown.Columns, p.schema.Columns)
	p.schema = grown
	for len(p.seen) < n {
		p.seen = append(p.seen, map[string]int{})
	}
}

// Observe folds one row's cells into the running counts.
func (p *Profile) Observe(row object.Row) {
	p.ensure(len(row))
	for i, v := range row {
		p.observeCell(i, v)
	}
}

func (p *Profile) observeCell(i int, v object.Value) {
	c := &p.schema.Columns[i]
	c.TypeCount++
	switch t := v.(type) {
	case nil, object.Null:
		c.Nones++
		return
	case object.Int64:
		c.Ints++
		p.track(i, t.String())
	case object.Float64:
		c.Floats++
		p.track(i, t.String())
	case object.Date:
		c.Dates++
	case object.Time:
		c.Times++
	case object.DateTime:
		c.DateTimes++
	case object.String:
		c.Strs++
		if n := utf8.RuneCountInString(string(t)); n > c.Length {
			c.Length = n
		}
		p.track(i, string(t))
	case object.Bytes:
		c.Strs++
		p.track(i, string(t))
	default:
		c.Strs++
	}
}

func (p *Profile) track(col int, s string) {
	if p.seen[col] == nil {
		p.seen[col] = map[string]int{}
	}
	p.seen[col][s]++
}

// Run scans every row Next returns (raw mode recommended), optionally
// striding when total exceeds the large-sample threshold (spec.md §4.5/§5:
// "processes approximately every sample_from/10,000-th row").
func (p *Profile) Run(next func() (object.Row, bool, error), total int) error {
	stride := 1
	if total > 10000 {
		stride = total / 10000
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

// Resolve computes each column's resolved type, has_codes and LOM, and
// returns the finished schema (spec.md §4.5).
func (p *Profile) Resolve() rowstore.Schema {
	for i := range p.schema.Columns {
		c := &p.schema.Columns[i]
		nonNone := c.TypeCount - c.Nones
		c.ResolvedType = resolveType(c, nonNone)
		c.LOM = rowstore.LOMForType(c.ResolvedType)
		if c.ResolvedType == rowstore.TypeString && nonNone > 0 {
			uniques := len(p.seen[i])
			if float64(uniques)/float64(nonNone) < codeThreshold {
				c.HasCodes = true
			}
		}
	}
	return p.schema
}

func resolveType(c *rowstore.Column, nonNone int) rowstore.ResolvedType {
	if nonNone == 0 {
		return rowstore.TypeString
	}
	meets := func(n int) bool { return float64(n)/float64(nonNone) >= resolveThreshold }
	switch {
	case meets(c.Ints):
		return rowstore.TypeInt
	case meets(c.Ints + c.Floats):
		return rowstore.TypeFloat
	case meets(c.Dates):
		return rowstore.TypeDate
	case meets(c.Times):
		return rowstore.TypeTime
	case meets(c.DateTimes):
		return rowstore.TypeDateTime
	default:
		return rowstore.TypeString
	}
}
