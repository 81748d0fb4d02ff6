package rowstore

import (
	"compress/gzip"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/ambrydata/mpr/container"
	"github.com/ambrydata/mpr/errs"
	"github.com/ambrydata/mpr/object"
)

// writerState is the Writer's state machine position (spec.md §4.3):
//
//	Fresh --create_header--> Open --append(row)*--> Open
//	Open --set_meta_field--> Open
//	Open --close--> Closed      (writes header + meta)
//	Open --abort--> Removed     (deletes file)
//
// openedForMeta marks a writer that re-opened an already-closed file: per
// design note §9 ("meta-only re-open"), such a writer may mutate meta but
// never append rows, regardless of the finalized flag.
type writerState int

const (
	stateOpen writerState = iota
	stateClosed
	stateRemoved
	statePoisoned
)

// DefaultBatchSize is the row count the Writer buffers in memory before
// flushing a batch to the gzip stream (spec.md §9, Open Question: "flush on
// a configurable batch size, default 1000").
const DefaultBatchSize = 1000

// Writer is the MPR row store's append-only writer.
type Writer struct {
	path          string
	file          *os.File
	lock          *os.File
	state         writerState
	openedForMeta bool

	header container.FileHeader
	meta   container.Meta
	schema Schema

	gz        *gzip.Writer
	ow        *container.OffsetWriter
	enc       *msgpack.Encoder
	batch     []object.Row
	batchSize int
}

// Create makes a brand-new MPR file at path and returns a Writer positioned
// to append rows.
func Create(path string) (*Writer, error) {
	lock, err := acquireLock(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Create(path)
	if err != nil {
		releaseLock(lock, path)
		return nil, fmt.Errorf("rowstore: create %s: %w", path, errs.IOError)
	}
	h := container.NewFileHeader()
	h.MetaStart = container.HeaderSize
	if err := container.WriteHeader(file, h); err != nil {
		file.Close()
		releaseLock(lock, path)
		return nil, err
	}

	ow := container.NewOffsetWriter(file, container.HeaderSize)
	gz, err := gzip.NewWriterLevel(ow, gzip.BestCompression)
	if err != nil {
		file.Close()
		releaseLock(lock, path)
		return nil, fmt.Errorf("rowstore: open gzip row stream: %w", errs.IOError)
	}

	w := &Writer{
		path:      path,
		file:      file,
		lock:      lock,
		state:     stateOpen,
		header:    h,
		meta:      container.NewMeta(),
		gz:        gz,
		ow:        ow,
		enc:       msgpack.NewEncoder(gz),
		batchSize: DefaultBatchSize,
	}
	return w, nil
}

// OpenForMeta re-opens an existing, previously-closed MPR file to mutate
// its meta block only (row spec, type profile, stats, finalize).
// Appending rows is never permitted on the returned Writer.
func OpenForMeta(path string) (*Writer, error) {
	lock, err := acquireLock(path)
	if err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		releaseLock(lock, path)
		return nil, fmt.Errorf("rowstore: open %s: %w", path, errs.IOError)
	}
	h, err := container.ReadHeader(file)
	if err != nil {
		file.Close()
		releaseLock(lock, path)
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		releaseLock(lock, path)
		return nil, fmt.Errorf("rowstore: stat %s: %w", path, errs.IOError)
	}
	m, err := container.ReadMeta(file, int64(h.MetaStart), info.Size())
	if err != nil {
		file.Close()
		releaseLock(lock, path)
		return nil, err
	}
	return &Writer{
		path:          path,
		file:          file,
		lock:          lock,
		state:         stateOpen,
		openedForMeta: true,
		header:        h,
		meta:          m,
		schema:        FromRows(m.Schema),
	}, nil
}

// Append encodes row and buffers it; every batchSize rows (or on Close) the
// batch is flushed through the gzip encoder. O(1) amortized per spec.md
// §4.3. Failure to write poisons the writer: the caller must call Abort.
func (w *Writer) Append(row object.Row) error {
	if w.openedForMeta {
		return fmt.Errorf("rowstore: %s was re-opened for meta only: %w", w.path, errs.AlreadyFinalized)
	}
	if w.meta.Process.Finalized {
		return fmt.Errorf("rowstore: %s is finalized: %w", w.path, errs.AlreadyFinalized)
	}
	switch w.state {
	case statePoisoned:
		return fmt.Errorf("rowstore: %w", errs.Poisoned)
	case stateOpen:
	default:
		return fmt.Errorf("rowstore: writer for %s is not open", w.path)
	}

	w.batch = append(w.batch, row)
	w.header.NRows++
	if uint32(len(row)) > w.header.NCols {
		w.header.NCols = uint32(len(row))
	}
	if len(w.batch) >= w.batchSize {
		if err := w.flush(); err != nil {
			w.state = statePoisoned
			return err
		}
	}
	return nil
}

func (w *Writer) flush() error {
	if len(w.batch) == 0 {
		return nil
	}
	glog.V(2).Infof("rowstore: flushing batch of %d rows to %s", len(w.batch), w.path)
	for _, row := range w.batch {
		if err := object.EncodeRow(w.enc, row); err != nil {
			return fmt.Errorf("rowstore: encode row: %w", err)
		}
	}
	w.batch = w.batch[:0]
	return nil
}

// SetBatchSize overrides DefaultBatchSize; must be called before the first
// Append past the current buffer, otherwise it takes effect on the next
// flush threshold check.
func (w *Writer) SetBatchSize(n int) {
	if n > 0 {
		w.batchSize = n
	}
}

// SetHeaders mangles and assigns column names (idempotent, spec.md §4.3).
func (w *Writer) SetHeaders(headers []string) {
	w.schema.SetHeaders(headers)
}

// Schema exposes the writer's in-progress schema for direct mutation by
// the type intuiter / stats engine / row intuiter before Close.
func (w *Writer) Schema() *Schema { return &w.schema }

// NRows reports the row count appended so far.
func (w *Writer) NRows() uint32 { return w.header.NRows }

// SetRowSpec applies a row intuiter result: data range, row classification
// and coalesced headers (spec.md §4.3 set_row_spec).
func (w *Writer) SetRowSpec(headerRows, commentRows []int, dataStart, dataEnd int, pattern string, headers []string) {
	w.header.DataStartRow = uint32(dataStart)
	w.header.DataEndRow = uint32(dataEnd)
	w.meta.RowSpec = container.RowSpecMeta{
		HeaderRows:  headerRows,
		CommentRows: commentRows,
		DataPattern: pattern,
	}
	if len(headers) > 0 {
		w.schema.SetHeaders(headers)
	}
	w.meta.Process.RowIntuited = true
}

// SetTypes merges the per-column type-intuition fields (Ints, Floats,
// Strs, Nones, Dates, Times, DateTimes, ResolvedType, HasCodes, Length)
// from profile into the writer's schema, matched by column position
// (spec.md §4.3 set_types).
func (w *Writer) SetTypes(profile Schema) {
	for _, pc := range profile.Columns {
		c, ok := w.schema.Column(pc.Pos)
		if !ok {
			continue
		}
		c.TypeCount = pc.TypeCount
		c.Ints, c.Floats, c.Strs, c.Nones = pc.Ints, pc.Floats, pc.Strs, pc.Nones
		c.Dates, c.Times, c.DateTimes = pc.Dates, pc.Times, pc.DateTimes
		c.ResolvedType = pc.ResolvedType
		c.HasCodes = pc.HasCodes
		c.Length = pc.Length
		c.LOM = pc.LOM
	}
	w.meta.Process.TypeIntuited = true
}

// SetStats merges the per-column statistical fields from profile into the
// writer's schema, matched by column position (spec.md §4.3 set_stats).
func (w *Writer) SetStats(profile Schema) {
	for _, pc := range profile.Columns {
		c, ok := w.schema.Column(pc.Pos)
		if !ok {
			continue
		}
		c.StatCount = pc.StatCount
		c.NUniques = pc.NUniques
		c.Mean, c.Std = pc.Mean, pc.Std
		c.Min, c.P25, c.P50, c.P75, c.Max = pc.Min, pc.P25, pc.P50, pc.P75, pc.Max
		c.Skewness, c.Kurtosis = pc.Skewness, pc.Kurtosis
		c.Hist = pc.Hist
		c.UValues = pc.UValues
		c.LOM = pc.LOM
	}
	w.meta.Process.StatsRun = true
}

// Finalize marks the file as finalized; only Close persists this.
func (w *Writer) Finalize() {
	w.meta.Process.Finalized = true
}

// AddWarning appends a recovered-failure warning to meta.warnings
// (spec.md §7 propagation policy: load-time C4/C5/C6 failures are
// recovered, not fatal).
func (w *Writer) AddWarning(msg string) {
	w.meta.Warnings = append(w.meta.Warnings, msg)
	glog.Warningf("rowstore: %s: %s", w.path, msg)
}

// Close flushes pending rows, closes the compressor, records meta_start,
// rewrites the header and writes the meta block (spec.md §4.3).
func (w *Writer) Close() error {
	if w.state == stateRemoved {
		return nil
	}
	if w.openedForMeta {
		return w.closeMetaOnly()
	}
	if err := w.flush(); err != nil {
		w.state = statePoisoned
		return err
	}
	if err := w.gz.Close(); err != nil {
		w.state = statePoisoned
		return fmt.Errorf("rowstore: close gzip row stream: %w", errs.IOError)
	}
	w.header.MetaStart = uint64(w.ow.Tell())
	w.meta.Schema = w.schema.ToRows()
	if _, err := container.WriteMeta(w.file, int64(w.header.MetaStart), w.meta); err != nil {
		w.state = statePoisoned
		return err
	}
	if err := container.WriteHeader(w.file, w.header); err != nil {
		w.state = statePoisoned
		return err
	}
	w.state = stateClosed
	err := w.file.Close()
	releaseLock(w.lock, w.path)
	if err != nil {
		return fmt.Errorf("rowstore: close %s: %w", w.path, errs.IOError)
	}
	return nil
}

func (w *Writer) closeMetaOnly() error {
	w.meta.Schema = w.schema.ToRows()
	if _, err := container.WriteMeta(w.file, int64(w.header.MetaStart), w.meta); err != nil {
		return err
	}
	if err := container.WriteHeader(w.file, w.header); err != nil {
		return err
	}
	w.state = stateClosed
	err := w.file.Close()
	releaseLock(w.lock, w.path)
	if err != nil {
		return fmt.Errorf("rowstore: close %s: %w", w.path, errs.IOError)
	}
	return nil
}

// Abort deletes the partial file (spec.md §4.3/§5: an interrupted writer
// must delete the artifact before propagating cancellation).
func (w *Writer) Abort() error {
	if w.state == stateRemoved {
		return nil
	}
	_ = w.file.Close()
	releaseLock(w.lock, w.path)
	if err := os.Remove(w.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("rowstore: abort: remove %s: %w", w.path, errs.IOError)
	}
	w.state = stateRemoved
	return nil
}

func acquireLock(path string) (*os.File, error) {
	lockPath := path + ".lock"
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("rowstore: %s is locked by another writer: %w", path, errs.IOError)
		}
		// Filesystems without advisory-lock support (e.g. remote object
		// stores exposed through a filesystem abstraction) trust
		// single-process use instead, per spec.md §4.3.
		return nil, nil
	}
	return f, nil
}

func releaseLock(lock *os.File, path string) {
	if lock == nil {
		return
	}
	lock.Close()
	os.Remove(path + ".lock")
}
