package container

import "io"

// offsetReader adapts an io.ReaderAt into a sequential io.Reader starting
// at a fixed base offset, with an advertised EOF at limit bytes past base.
// This is the "bounded view" spec.md §4.1 requires so the row-stream gzip
// member never reads into the trailing meta block: limit is set so the view
// ends at meta_start, and the gzip reader sees an ordinary EOF there instead of
// decoding meta bytes as if they were more deflate input.
//
// Because it is built on ReaderAt rather than a shared *os.File read
// position, opening one never disturbs any other reader or writer using
// the same file concurrently (§4.3 "reserves this; the codec saves and
// restores" is satisfied trivially: there is no shared position to save).
type offsetReader struct {
	r     io.ReaderAt
	base  int64
	pos   int64
	limit int64 // byte count readable from base; -1 means unbounded
}

// NewBoundedReader returns a reader over r starting at base and stopping
// after n bytes.
func NewBoundedReader(r io.ReaderAt, base, n int64) io.Reader {
	return &offsetReader{r: r, base: base, limit: n}
}

// NewOffsetReader returns an unbounded sequential reader over r starting at
// base, reading until the underlying ReaderAt reports io.EOF.
func NewOffsetReader(r io.ReaderAt, base int64) io.Reader {
	return &offsetReader{r: r, base: base, limit: -1}
}

func (o *offsetReader) Read(p []byte) (int, error) {
	if o.limit >= 0 {
		remaining := o.limit - o.pos
		if remaining <= 0 {
			return 0, io.EOF
		}
		if int64(len(p)) > remaining {
			p = p[:remaining]
		}
	}
	n, err := o.r.ReadAt(p, o.base+o.pos)
	o.pos += int64(n)
	return n, err
}

// offsetWriter adapts an io.WriterAt into a sequential io.Writer starting at
// a fixed base offset, tracking how many bytes have been written so callers
// can recover the new end-of-stream offset.
type offsetWriter struct {
	w    io.WriterAt
	base int64
	pos  int64
}

// NewOffsetWriter returns a sequential writer over w starting at base.
func NewOffsetWriter(w io.WriterAt, base int64) *OffsetWriter {
	return &OffsetWriter{inner: &offsetWriter{w: w, base: base}}
}

// OffsetWriter is the exported handle returned by NewOffsetWriter; Tell
// reports the absolute file offset immediately past the last byte written.
type OffsetWriter struct {
	inner *offsetWriter
}

func (o *OffsetWriter) Write(p []byte) (int, error) {
	n, err := o.inner.w.WriteAt(p, o.inner.base+o.inner.pos)
	o.inner.pos += int64(n)
	return n, err
}

// Tell returns the absolute offset of the next byte to be written.
func (o *OffsetWriter) Tell() int64 {
	return o.inner.base + o.inner.pos
}
