// Package object implements the MPR object codec (C2): encoding and
// decoding of scalar row values to and from the typed, self-describing wire
// form the row stream is made of (§4.2 of SPEC_FULL.md).
package object

import "fmt"

// Value is the sealed variant of scalar kinds a row cell can hold. The
// concrete types below are the only implementations; isValue is unexported
// so no other package can add a case, keeping the switch in codec.go
// exhaustive by construction.
type Value interface {
	isValue()
	fmt.Stringer
}

// Null represents the MessagePack nil / the object codec's "none".
type Null struct{}

func (Null) isValue()        {}
func (Null) String() string  { return "<null>" }

// Int64 is a signed 64-bit integer cell.
type Int64 int64

func (Int64) isValue()          {}
func (v Int64) String() string  { return fmt.Sprintf("%d", int64(v)) }

// Float64 is a 64-bit floating point cell.
type Float64 float64

func (Float64) isValue()          {}
func (v Float64) String() string  { return fmt.Sprintf("%g", float64(v)) }

// String is a UTF-8 string cell.
type String string

func (String) isValue()          {}
func (v String) String() string  { return string(v) }

// Bytes is a raw byte-string cell.
type Bytes []byte

func (Bytes) isValue()         {}
func (v Bytes) String() string { return fmt.Sprintf("%x", []byte(v)) }

// Date is a calendar date with no time-of-day component. Wire-encoded as
// {__date__: true, value: [y,m,d]} per spec.md §4.2.
type Date struct {
	Year, Month, Day int
}

func (Date) isValue() {}
func (v Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", v.Year, v.Month, v.Day)
}

// Time is a time-of-day with no calendar date. Wire-encoded as
// {__time__: true, value: [H,M,S]}.
type Time struct {
	Hour, Minute, Second int
}

func (Time) isValue() {}
func (v Time) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", v.Hour, v.Minute, v.Second)
}

// DateTime combines a Date and a Time. Wire-encoded as
// {__datetime__: true, value: [y,m,d,H,M,S]}.
type DateTime struct {
	Year, Month, Day, Hour, Minute, Second int
}

func (DateTime) isValue() {}
func (v DateTime) String() string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d", v.Year, v.Month, v.Day, v.Hour, v.Minute, v.Second)
}

// Row is an ordered sequence of cell values, the in-memory form of one row
// of the stream.
type Row []Value
