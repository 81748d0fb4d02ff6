// Package source defines the row-producing source contract the
// orchestrator (C8) consumes: a minimal iterable-of-rows interface, plus
// three optional capability interfaces a concrete source may additionally
// implement (spec.md §6).
//
// Grounded on pranavdb's data/rowFileHandler.go (a narrow, single-purpose
// row source interface consumed by the writer) generalized from one
// concrete file format to an arbitrary external source, and on aistore's
// cluster package convention of small capability interfaces one concrete
// type can optionally satisfy.
package source

import "github.com/ambrydata/mpr/object"

// Source is the minimal row-producing contract: an iterable of rows, each
// an ordered sequence of scalars the orchestrator coerces via
// object.FromAny before writing.
type Source interface {
	// Next returns the next row, or ok=false once the source is exhausted.
	Next() (row []interface{}, ok bool, err error)
}

// HeaderedSource is implemented by a Source that can name its columns
// ahead of scanning any rows.
type HeaderedSource interface {
	Headers() []string
}

// ColumnDescriptor is one entry of a DescribedSource's meta.columns.
type ColumnDescriptor struct {
	Position    int
	Name        string
	Description string
}

// DescribedSource is implemented by a Source that carries per-column
// descriptors richer than a bare name.
type DescribedSource interface {
	Columns() []ColumnDescriptor
}

// Spec is a SourceSpec (spec.md §6): provenance and row-classification
// metadata a source may already know, sparing the orchestrator a row-intuit
// pass.
type Spec struct {
	URL         string
	FileType    string
	URLType     string
	Encoding    string
	Segment     string
	HasRowSpec  bool
	HeaderLines []int
	StartLine   int
	EndLine     int
	Columns     []ColumnDescriptor
}

// SpecifiedSource is implemented by a Source that exposes a Spec.
type SpecifiedSource interface {
	Spec() Spec
}

// Row coerces a raw source row into an object.Row, applying object.FromAny
// cell by cell.
func Row(raw []interface{}) (object.Row, error) {
	row := make(object.Row, len(raw))
	for i, cell := range raw {
		v, err := object.FromAny(cell)
		if err != nil {
			return nil, err
		}
		row[i] = v
	}
	return row, nil
}

// SliceSource adapts an in-memory slice of raw rows (and optional headers)
// into a Source, useful for tests and for small, already-loaded datasets.
type SliceSource struct {
	rows    [][]interface{}
	headers []string
	pos     int
}

// NewSliceSource returns a Source over rows, optionally naming headers.
func NewSliceSource(rows [][]interface{}, headers []string) *SliceSource {
	return &SliceSource{rows: rows, headers: headers}
}

func (s *SliceSource) Next() ([]interface{}, bool, error) {
	if s.pos >= len(s.rows) {
		return nil, false, nil
	}
	row := s.rows[s.pos]
	s.pos++
	return row, true, nil
}

// Headers satisfies HeaderedSource; it returns nil when no headers were
// supplied.
func (s *SliceSource) Headers() []string { return s.headers }
