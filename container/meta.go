package container

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/ambrydata/mpr/errs"
)

// RowSpecMeta is the meta.row_spec bucket: the row intuiter's (C4) output,
// persisted so a re-opened file remembers its header/comment/data
// classification without re-running intuition.
type RowSpecMeta struct {
	HeaderRows  []int  `msgpack:"header_rows"`
	CommentRows []int  `msgpack:"comment_rows"`
	DataPattern string `msgpack:"data_pattern"`
}

// ProcessMeta is the meta.process bucket: orchestrator (C8) run bookkeeping.
type ProcessMeta struct {
	Finalized     bool   `msgpack:"finalized"`
	RowIntuited   bool   `msgpack:"row_intuited"`
	TypeIntuited  bool   `msgpack:"type_intuited"`
	StatsRun      bool   `msgpack:"stats_run"`
	LoadStartedAt string `msgpack:"load_started_at,omitempty"`
}

// Meta is the decoded form of the trailing compressed meta block. Schema is
// kept in the wire "schema-as-rows" shape described in spec.md §9: index 0
// is the column-descriptor template row, indices 1..N are one row per
// column with values positioned to match the template. Higher layers
// (rowstore.Schema) project this to a list of typed column structs and
// re-project it on write; container itself only re-checks the invariant.
type Meta struct {
	About    map[string]interface{} `msgpack:"about"`
	Geo      map[string]interface{} `msgpack:"geo"`
	Excel    map[string]interface{} `msgpack:"excel"`
	Source   map[string]interface{} `msgpack:"source"`
	RowSpec  RowSpecMeta             `msgpack:"row_spec"`
	Comments []string                `msgpack:"comments"`
	Process  ProcessMeta             `msgpack:"process"`
	Warnings []string                `msgpack:"warnings"`
	Schema   [][]interface{}         `msgpack:"schema"`
	Stats    map[string]interface{}  `msgpack:"stats"`
}

// NewMeta returns an empty meta block with the reserved schema template row
// already in place, matching spec.md §3's Column attribute list.
func NewMeta() Meta {
	return Meta{
		About:    map[string]interface{}{},
		Geo:      map[string]interface{}{},
		Excel:    map[string]interface{}{},
		Source:   map[string]interface{}{},
		Comments: []string{},
		Warnings: []string{},
		Stats:    map[string]interface{}{},
		Schema:   [][]interface{}{SchemaTemplate()},
	}
}

// SchemaTemplate is the canonical attribute list every schema[0] row must
// equal; schema[i>=1] values are positional against this list.
func SchemaTemplate() []interface{} {
	names := []string{
		"pos", "name", "type", "description", "start", "width",
		"type_count", "ints", "floats", "strs", "nones", "dates", "times", "datetimes",
		"resolved_type", "has_codes", "length", "lom",
		"stat_count", "nuniques", "mean", "std", "min", "p25", "p50", "p75", "max",
		"skewness", "kurtosis", "hist", "uvalues",
	}
	out := make([]interface{}, len(names))
	for i, n := range names {
		out[i] = n
	}
	return out
}

// checkSchemaInvariant re-verifies spec.md §3: schema[0] must equal the
// canonical template every time meta is read.
func checkSchemaInvariant(schema [][]interface{}) error {
	if len(schema) == 0 {
		return nil
	}
	want := SchemaTemplate()
	got := schema[0]
	if len(got) != len(want) {
		return fmt.Errorf("container: schema template has %d fields, want %d: %w", len(got), len(want), errs.CorruptFile)
	}
	for i := range want {
		gs, ok := got[i].(string)
		if !ok || gs != want[i] {
			return fmt.Errorf("container: schema template field %d is %v, want %q: %w", i, got[i], want[i], errs.CorruptFile)
		}
	}
	return nil
}

// ReadMeta decompresses and decodes the meta block starting at metaStart
// and running to the end of the file (fileSize bytes total). An empty meta
// region (fileSize <= metaStart), such as a brand-new file with no meta
// written yet, yields NewMeta() rather than an error.
func ReadMeta(r io.ReaderAt, metaStart, fileSize int64) (Meta, error) {
	if fileSize <= metaStart {
		return NewMeta(), nil
	}
	gz, err := gzip.NewReader(NewBoundedReader(r, metaStart, fileSize-metaStart))
	if err != nil {
		return Meta{}, fmt.Errorf("container: meta block is not gzip: %w", errs.CorruptFile)
	}
	defer gz.Close()
	raw, err := io.ReadAll(gz)
	if err != nil {
		return Meta{}, fmt.Errorf("container: decompress meta: %w", errs.CorruptFile)
	}
	var m Meta
	if err := msgpack.Unmarshal(raw, &m); err != nil {
		return Meta{}, fmt.Errorf("container: decode meta: %w", errs.CorruptFile)
	}
	if err := checkSchemaInvariant(m.Schema); err != nil {
		return Meta{}, err
	}
	return m, nil
}

// Truncater is implemented by *os.File; WriteMeta uses it, when available,
// to drop any bytes left over from a previous, longer meta block.
type Truncater interface {
	Truncate(size int64) error
}

// WriteMeta gzip-compresses and writes m starting at metaStart, truncating
// w to the new end of file when w implements Truncater. It returns the new
// file length (the header's updated meta_start stays metaStart; the
// returned value is for callers that need the final EOF, e.g. to size a
// bounded reader on next open).
func WriteMeta(w io.WriterAt, metaStart int64, m Meta) (int64, error) {
	if err := checkSchemaInvariant(m.Schema); err != nil {
		return 0, err
	}
	encoded, err := msgpack.Marshal(&m)
	if err != nil {
		return 0, fmt.Errorf("container: encode meta: %w", err)
	}
	var buf bytes.Buffer
	gz, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return 0, fmt.Errorf("container: gzip meta: %w", err)
	}
	if _, err := gz.Write(encoded); err != nil {
		return 0, fmt.Errorf("container: gzip meta: %w", err)
	}
	if err := gz.Close(); err != nil {
		return 0, fmt.Errorf("container: gzip meta: %w", err)
	}
	if _, err := w.WriteAt(buf.Bytes(), metaStart); err != nil {
		return 0, fmt.Errorf("container: write meta: %w", errs.IOError)
	}
	end := metaStart + int64(buf.Len())
	if t, ok := w.(Truncater); ok {
		if err := t.Truncate(end); err != nil {
			return 0, fmt.Errorf("container: truncate after meta write: %w", errs.IOError)
		}
	}
	return end, nil
}
