// Package rowstore implements the MPR row store (C3): the Writer and
// Reader state machines layered over container (C1) and object (C2).
//
// Grounded on pranavdb's data/rowFileHandler.go (rowFile: header +
// schema + append/read over a single *os.File, re-open-from-header
// semantics) generalized from a fixed-width binary row layout to the
// spec's compressed, self-describing, append-only stream, and on
// index/indexFile.go's FileHeader pattern for the header/meta split.
package rowstore

import (
	"github.com/ambrydata/mpr/internal/mangle"
)

// ResolvedType is the per-column logical type spec.md §3/§4.5 names.
type ResolvedType string

const (
	TypeInt      ResolvedType = "int"
	TypeFloat    ResolvedType = "float"
	TypeString   ResolvedType = "string"
	TypeBytes    ResolvedType = "bytes"
	TypeDate     ResolvedType = "date"
	TypeTime     ResolvedType = "time"
	TypeDateTime ResolvedType = "datetime"
)

// LOM is the Level of Measurement inferred from a column's resolved type
// (§4.6): NOMINAL for strings, ORDINAL for date/time/ordinal types,
// INTERVAL for numeric types.
type LOM string

const (
	LOMNominal  LOM = "NOMINAL"
	LOMOrdinal  LOM = "ORDINAL"
	LOMInterval LOM = "INTERVAL"
)

// LOMForType maps a resolved type to its default Level of Measurement.
func LOMForType(t ResolvedType) LOM {
	switch t {
	case TypeInt, TypeFloat:
		return LOMInterval
	case TypeDate, TypeTime, TypeDateTime:
		return LOMOrdinal
	default:
		return LOMNominal
	}
}

// Column is the in-memory projection of one schema[i>=1] row: attributes
// filled in progressively by row-spec assignment (C3), type intuition
// (C5) and the stats engine (C6). Field order here has no bearing on the
// wire order, which schema.go's ToRows/FromRows fix against
// container.SchemaTemplate.
type Column struct {
	Pos         int
	Name        string
	Type        ResolvedType
	Description string
	Start       int // fixed-width source column start, 0 if not fixed-width
	Width       int // fixed-width source column width, 0 if not fixed-width

	// Type intuition (C5)
	TypeCount    int
	Ints         int
	Floats       int
	Strs         int
	Nones        int
	Dates        int
	Times        int
	DateTimes    int
	ResolvedType ResolvedType
	HasCodes     bool
	Length       int
	LOM          LOM

	// Stats engine (C6)
	StatCount int
	NUniques  int
	Mean      float64
	Std       float64
	Min       float64
	P25       float64
	P50       float64
	P75       float64
	Max       float64
	Skewness  float64
	Kurtosis  float64
	Hist      []int
	UValues   map[string]int
}

// Schema is the ordered list of Columns, the in-memory projection of
// meta.schema (design note §9: "Implementations SHOULD project this to a
// list of typed column-descriptor structs in memory and re-project on
// write").
type Schema struct {
	Columns []Column
}

// NewSchema returns a schema with n unnamed columns, positions 1..n.
func NewSchema(n int) Schema {
	cols := make([]Column, n)
	for i := range cols {
		cols[i] = Column{Pos: i + 1}
	}
	return Schema{Columns: cols}
}

// Column returns the column at 1-based position pos, or by mangled name.
// ok is false if nameOrPos matches nothing.
func (s *Schema) Column(nameOrPos interface{}) (*Column, bool) {
	switch v := nameOrPos.(type) {
	case int:
		for i := range s.Columns {
			if s.Columns[i].Pos == v {
				return &s.Columns[i], true
			}
		}
	case string:
		want := mangle.Name(v)
		for i := range s.Columns {
			if s.Columns[i].Name == want {
				return &s.Columns[i], true
			}
		}
	}
	return nil, false
}

// Headers returns the mangled column names in position order.
func (s *Schema) Headers() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Name
	}
	return out
}

// SetHeaders mangles each name (internal/mangle.Name) and assigns it to the
// matching column by position, growing the schema if headers is wider than
// the current column count. Idempotent: re-applying the same headers is a
// no-op.
func (s *Schema) SetHeaders(headers []string) {
	for len(s.Columns) < len(headers) {
		s.Columns = append(s.Columns, Column{Pos: len(s.Columns) + 1})
	}
	for i, h := range headers {
		s.Columns[i].Name = mangle.Name(h)
	}
}
