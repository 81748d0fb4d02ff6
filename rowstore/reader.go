package rowstore

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/ambrydata/mpr/container"
	"github.com/ambrydata/mpr/errs"
	"github.com/ambrydata/mpr/object"
)

// Mode selects which rows an Iterator yields (spec.md §4.3).
type Mode int

const (
	// ModeRaw yields every row in file order.
	ModeRaw Mode = iota
	// ModeData yields only rows within [DataStartRow, DataEndRow].
	ModeData
	// ModeClassified yields every row together with its H/C/D/B label.
	ModeClassified
)

// RowLabel classifies a row under ModeClassified.
type RowLabel byte

const (
	LabelHeader  RowLabel = 'H'
	LabelComment RowLabel = 'C'
	LabelData    RowLabel = 'D'
	LabelBlank   RowLabel = 'B'
)

// Info is a point-in-time summary of an MPR file, computable without
// opening an iterator (SPEC_FULL.md §6, supplemented from ambry's
// MPRowsFile.info).
type Info struct {
	Path         string
	NRows        uint32
	NCols        uint32
	DataStartRow uint32
	DataEndRow   uint32
	Finalized    bool
	Headers      []string
}

// Reader is the MPR row store's read-only reader, bound to one open file
// handle used for header/meta access (ReaderAt-based, so it never
// interferes with any iterator's own handle).
type Reader struct {
	path   string
	file   *os.File
	header container.FileHeader
	meta   container.Meta
	schema Schema
}

// Open opens path for reading and loads its header and meta block.
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rowstore: open %s: %w", path, errs.IOError)
	}
	h, err := container.ReadHeader(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("rowstore: stat %s: %w", path, errs.IOError)
	}
	m, err := container.ReadMeta(file, int64(h.MetaStart), info.Size())
	if err != nil {
		file.Close()
		return nil, err
	}
	return &Reader{
		path:   path,
		file:   file,
		header: h,
		meta:   m,
		schema: FromRows(m.Schema),
	}, nil
}

// Close releases the reader's own file handle. It never affects iterators
// already in progress, since each opened its own handle (see Iter).
func (r *Reader) Close() error {
	return r.file.Close()
}

// Info summarizes the file without iterating its rows.
func (r *Reader) Info() Info {
	return Info{
		Path:         r.path,
		NRows:        r.header.NRows,
		NCols:        r.header.NCols,
		DataStartRow: r.header.DataStartRow,
		DataEndRow:   r.header.DataEndRow,
		Finalized:    r.meta.Process.Finalized,
		Headers:      r.schema.Headers(),
	}
}

// Schema returns the reader's column schema.
func (r *Reader) Schema() *Schema { return &r.schema }

// Headers returns the mangled column names in position order.
func (r *Reader) Headers() []string { return r.schema.Headers() }

// Meta exposes the raw decoded meta block (row_spec, warnings, about, ...).
func (r *Reader) Meta() container.Meta { return r.meta }

// Iter opens a new, forward-only Iterator over the row stream in mode.
// Iterators are single-pass: a new call always re-seeks to the start of
// the stream via a fresh file handle, independent of any other iterator or
// of Reader's own handle (spec.md §4.3, §5).
func (r *Reader) Iter(mode Mode) (*Iterator, error) {
	file, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("rowstore: open %s for iteration: %w", r.path, errs.IOError)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("rowstore: stat %s: %w", r.path, errs.IOError)
	}
	n := int64(r.header.MetaStart) - container.HeaderSize
	if n < 0 {
		n = 0
	}
	_ = info
	gz, err := gzip.NewReader(container.NewBoundedReader(file, container.HeaderSize, n))
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("rowstore: open gzip row stream for %s: %w", r.path, errs.CorruptFile)
	}
	it := &Iterator{
		reader:      r,
		file:        file,
		gz:          gz,
		dec:         msgpack.NewDecoder(gz),
		mode:        mode,
		headerRows:  toSet(r.meta.RowSpec.HeaderRows),
		commentRows: toSet(r.meta.RowSpec.CommentRows),
	}
	it.proxy.schema = &r.schema
	return it, nil
}

func toSet(xs []int) map[int]bool {
	m := make(map[int]bool, len(xs))
	for _, x := range xs {
		m[x] = true
	}
	return m
}

// RowResult is one row yielded by an Iterator.
type RowResult struct {
	Index uint32
	Label RowLabel
	Row   object.Row
}

// Iterator is a single-pass, forward-only cursor over the row stream.
type Iterator struct {
	reader      *Reader
	file        *os.File
	gz          *gzip.Reader
	dec         *msgpack.Decoder
	mode        Mode
	idx         uint32
	headerRows  map[int]bool
	commentRows map[int]bool
	proxy       RowProxy
	done        bool
}

// Next decodes and returns the next row an owned copy at a time; ok is
// false once the stream is exhausted. This is the default, safe path
// (design note §9: "return owned row objects by default").
func (it *Iterator) Next() (RowResult, bool, error) {
	for {
		if it.done {
			return RowResult{}, false, nil
		}
		row, err := object.DecodeRow(it.dec)
		if err == io.EOF {
			it.done = true
			return RowResult{}, false, nil
		}
		if err != nil {
			return RowResult{}, false, err
		}
		res := RowResult{Index: it.idx, Row: row}
		if it.mode == ModeClassified {
			res.Label = it.classify(it.idx)
		}
		idx := it.idx
		it.idx++

		if it.mode == ModeData {
			if idx < it.reader.header.DataStartRow || idx > it.reader.header.DataEndRow {
				continue
			}
		}
		return res, true, nil
	}
}

func (it *Iterator) classify(idx uint32) RowLabel {
	i := int(idx)
	if it.headerRows[i] {
		return LabelHeader
	}
	if it.commentRows[i] {
		return LabelComment
	}
	if idx >= it.reader.header.DataStartRow && idx <= it.reader.header.DataEndRow && it.reader.header.NRows > 0 {
		return LabelData
	}
	return LabelBlank
}

// NextProxy is the opt-in zero-copy path: it returns the same *RowProxy
// instance on every call, mutated in place to the newly decoded row. The
// caller MUST NOT retain the pointer across calls to NextProxy, or read
// stale data after the next call aliases over it (design note §9).
func (it *Iterator) NextProxy() (*RowProxy, bool, error) {
	res, ok, err := it.Next()
	if err != nil || !ok {
		return nil, ok, err
	}
	it.proxy.row = res.Row
	return &it.proxy, true, nil
}

// Close releases the iterator's own file handle.
func (it *Iterator) Close() error {
	it.gz.Close()
	return it.file.Close()
}

// Select returns a lazy, filtered and projected view: only rows for which
// pred returns true are yielded, and only the named fields are retained
// (in the order given), the field name -> position lookup going through
// the iterator's schema.
func (it *Iterator) Select(pred func(RowResult) bool, fields []string) *Selection {
	positions := make([]int, len(fields))
	for i, f := range fields {
		if c, ok := it.reader.schema.Column(f); ok {
			positions[i] = c.Pos - 1
		} else {
			positions[i] = -1
		}
	}
	return &Selection{it: it, pred: pred, positions: positions}
}

// Selection is the lazy sequence Iterator.Select returns.
type Selection struct {
	it        *Iterator
	pred      func(RowResult) bool
	positions []int
}

// Next advances the underlying iterator until pred matches (or the stream
// ends), then projects the matching row down to the selected fields.
func (s *Selection) Next() (RowResult, bool, error) {
	for {
		res, ok, err := s.it.Next()
		if err != nil || !ok {
			return RowResult{}, ok, err
		}
		if s.pred != nil && !s.pred(res) {
			continue
		}
		if len(s.positions) > 0 {
			projected := make(object.Row, len(s.positions))
			for i, pos := range s.positions {
				if pos >= 0 && pos < len(res.Row) {
					projected[i] = res.Row[pos]
				} else {
					projected[i] = object.Null{}
				}
			}
			res.Row = projected
		}
		return res, true, nil
	}
}

// RowProxy is a flyweight view exposing a row's cells by column name. A
// RowProxy obtained from Iterator.NextProxy is reused across calls;
// Materialize copies it out to an owned object.Row for retention.
type RowProxy struct {
	row    object.Row
	schema *Schema
}

// Get returns the value of the named column, or object.Null{} if the name
// is unknown or the row is short.
func (p *RowProxy) Get(name string) object.Value {
	c, ok := p.schema.Column(name)
	if !ok {
		return object.Null{}
	}
	i := c.Pos - 1
	if i < 0 || i >= len(p.row) {
		return object.Null{}
	}
	return p.row[i]
}

// At returns the value at 0-based position i, or object.Null{} if out of
// range.
func (p *RowProxy) At(i int) object.Value {
	if i < 0 || i >= len(p.row) {
		return object.Null{}
	}
	return p.row[i]
}

// Materialize copies the proxy's current row into an owned, independent
// object.Row safe to retain past the next NextProxy call.
func (p *RowProxy) Materialize() object.Row {
	out := make(object.Row, len(p.row))
	copy(out, p.row)
	return out
}
