// Package container implements the MPR container codec (C1): the fixed
// file header, the bounded view that keeps the row-stream decompressor from
// reading into the trailing meta block, and the compressed meta block
// itself (meta.go).
//
// Grounded on pranavdb's data/rowFileHandler.go (fixed on-disk header
// read/write over an *os.File) and index/indexFile.go (a second,
// independent magic/version/offset header in the same repo), generalized
// to the wire layout SPEC_FULL.md §3 mandates: `>8sHIIQII` big-endian.
package container

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ambrydata/mpr/errs"
)

// Magic is the 8-byte file signature every MPR file starts with.
const Magic = "AMBRMPDF"

// Version is the only header version this codec understands.
const Version uint16 = 1

// HeaderSize is the on-disk size of FileHeader: 8 (magic) + 2 (version) +
// 4 (n_rows) + 4 (n_cols) + 8 (meta_start) + 4 (data_start_row) +
// 4 (data_end_row) = 34 bytes, per the `>8sHIIQII` struct format.
const HeaderSize = 8 + 2 + 4 + 4 + 8 + 4 + 4

// FileHeader is the 34-byte, big-endian fixed struct at offset 0 of every
// MPR file.
type FileHeader struct {
	Version      uint16
	NRows        uint32
	NCols        uint32
	MetaStart    uint64
	DataStartRow uint32
	DataEndRow   uint32
}

// NewFileHeader returns a zero-value header for a freshly created file.
func NewFileHeader() FileHeader {
	return FileHeader{Version: Version}
}

// Seeker is the minimal interface the container codec needs from its
// backing file: random-access read/write plus seek, matching *os.File.
type Seeker interface {
	io.ReaderAt
	io.WriterAt
	io.Seeker
}

// ReadHeader reads and validates the fixed header at offset 0 of r.
func ReadHeader(r io.ReaderAt) (FileHeader, error) {
	buf := make([]byte, HeaderSize)
	if _, err := r.ReadAt(buf, 0); err != nil {
		if err == io.EOF {
			return FileHeader{}, fmt.Errorf("container: header truncated: %w", errs.CorruptFile)
		}
		return FileHeader{}, fmt.Errorf("container: read header: %w", errs.IOError)
	}
	if string(buf[0:8]) != Magic {
		return FileHeader{}, fmt.Errorf("container: bad magic %q: %w", buf[0:8], errs.CorruptFile)
	}
	h := FileHeader{
		Version:      binary.BigEndian.Uint16(buf[8:10]),
		NRows:        binary.BigEndian.Uint32(buf[10:14]),
		NCols:        binary.BigEndian.Uint32(buf[14:18]),
		MetaStart:    binary.BigEndian.Uint64(buf[18:26]),
		DataStartRow: binary.BigEndian.Uint32(buf[26:30]),
		DataEndRow:   binary.BigEndian.Uint32(buf[30:34]),
	}
	if h.Version != Version {
		return FileHeader{}, fmt.Errorf("container: unsupported version %d: %w", h.Version, errs.CorruptFile)
	}
	if h.MetaStart < HeaderSize {
		return FileHeader{}, fmt.Errorf("container: meta_start %d below header size %d: %w", h.MetaStart, HeaderSize, errs.CorruptFile)
	}
	if h.NRows > 0 && !(h.DataStartRow <= h.DataEndRow && h.DataEndRow < h.NRows) {
		return FileHeader{}, fmt.Errorf("container: data range [%d,%d] invalid for n_rows %d: %w", h.DataStartRow, h.DataEndRow, h.NRows, errs.CorruptFile)
	}
	return h, nil
}

// WriteHeader writes h at offset 0 of w.
func WriteHeader(w io.WriterAt, h FileHeader) error {
	buf := make([]byte, HeaderSize)
	copy(buf[0:8], Magic)
	binary.BigEndian.PutUint16(buf[8:10], h.Version)
	binary.BigEndian.PutUint32(buf[10:14], h.NRows)
	binary.BigEndian.PutUint32(buf[14:18], h.NCols)
	binary.BigEndian.PutUint64(buf[18:26], h.MetaStart)
	binary.BigEndian.PutUint32(buf[26:30], h.DataStartRow)
	binary.BigEndian.PutUint32(buf[30:34], h.DataEndRow)
	if _, err := w.WriteAt(buf, 0); err != nil {
		return fmt.Errorf("container: write header: %w", errs.IOError)
	}
	return nil
}
