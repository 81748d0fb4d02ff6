// Package errs defines the sealed error kinds raised by the MPR container,
// row store, intuiters, stats engine and SQL adapter. Callers distinguish
// them with errors.Is against the sentinel values; wrapped context is added
// with fmt.Errorf("...: %w", errs.CorruptFile).
package errs

import "errors"

var (
	// CorruptFile is raised on header magic/version mismatch, truncation, or
	// an unknown tagged object in the meta block.
	CorruptFile = errors.New("mpr: corrupt file")

	// IOError wraps an underlying filesystem failure.
	IOError = errors.New("mpr: io error")

	// UnsupportedValue is raised when the object codec cannot coerce a value
	// to one of the supported wire types or to a string fallback.
	UnsupportedValue = errors.New("mpr: unsupported value")

	// RowIntuitError is raised when the row intuiter cannot find at least
	// three data-pattern rows in the sample.
	RowIntuitError = errors.New("mpr: row intuition failed")

	// AlreadyFinalized is raised when append is attempted on a writer whose
	// file was already finalized.
	AlreadyFinalized = errors.New("mpr: file already finalized")

	// MissingCredentials is raised when a credential callback omits a
	// required field.
	MissingCredentials = errors.New("mpr: missing credentials")

	// VirtualTableError is raised when the SQL adapter is asked to mount a
	// non-existent or unreadable MPR file.
	VirtualTableError = errors.New("mpr: virtual table error")

	// ConfigurationError is raised on misuse at an external boundary, e.g. a
	// zip entry pattern that matched nothing.
	ConfigurationError = errors.New("mpr: configuration error")

	// Poisoned is raised when append is attempted on a writer that failed a
	// prior I/O operation; the caller must call Abort.
	Poisoned = errors.New("mpr: writer poisoned, abort required")
)
