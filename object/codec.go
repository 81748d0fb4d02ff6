package object

import (
	"fmt"
	"io"
	"reflect"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/ambrydata/mpr/errs"
)

// NaT is the "not a time" sentinel. A caller coercing a time.Time through
// FromAny that equals NaT gets Null rather than a DateTime, matching the
// pandas/ambry convention the original loader relied on (§4.2).
var NaT = time.Time{}

// FromAny coerces an arbitrary external cell (as produced by a row source
// that only knows Go's empty interface) into a Value. Native Go kinds map
// to their matching Value; anything else falls back to its fmt.Sprintf
// "%v" rendering as a String, mirroring the near-universal
// hasattr(obj, '__str__') fallback ambry_sources' mpf.py relies on. Only
// func and chan values (which %v renders uselessly) are rejected as
// errs.UnsupportedValue.
func FromAny(v interface{}) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return t, nil
	case int:
		return Int64(t), nil
	case int8:
		return Int64(t), nil
	case int16:
		return Int64(t), nil
	case int32:
		return Int64(t), nil
	case int64:
		return Int64(t), nil
	case uint:
		return Int64(t), nil
	case uint8:
		return Int64(t), nil
	case uint16:
		return Int64(t), nil
	case uint32:
		return Int64(t), nil
	case uint64:
		return Int64(t), nil
	case float32:
		return Float64(t), nil
	case float64:
		return Float64(t), nil
	case string:
		return String(t), nil
	case []byte:
		return Bytes(t), nil
	case bool:
		if t {
			return Int64(1), nil
		}
		return Int64(0), nil
	case time.Time:
		if t.Equal(NaT) {
			return Null{}, nil
		}
		return DateTime{
			Year: t.Year(), Month: int(t.Month()), Day: t.Day(),
			Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(),
		}, nil
	default:
		switch reflect.ValueOf(v).Kind() {
		case reflect.Func, reflect.Chan:
			return nil, fmt.Errorf("object: cannot coerce %T to a wire value: %w", v, errs.UnsupportedValue)
		default:
			return String(fmt.Sprintf("%v", v)), nil
		}
	}
}

// EncodeRow appends the msgpack encoding of row (an array of tagged
// scalars) to enc's underlying writer.
func EncodeRow(enc *msgpack.Encoder, row Row) error {
	if err := enc.EncodeArrayLen(len(row)); err != nil {
		return fmt.Errorf("object: encode row header: %w", err)
	}
	for i, v := range row {
		if err := encodeValue(enc, v); err != nil {
			return fmt.Errorf("object: encode field %d: %w", i, err)
		}
	}
	return nil
}

func encodeValue(enc *msgpack.Encoder, v Value) error {
	switch t := v.(type) {
	case nil, Null:
		return enc.EncodeNil()
	case Int64:
		return enc.EncodeInt64(int64(t))
	case Float64:
		return enc.EncodeFloat64(float64(t))
	case String:
		return enc.EncodeString(string(t))
	case Bytes:
		return enc.EncodeBytes([]byte(t))
	case Date:
		return encodeTagged(enc, "__date__", []int{t.Year, t.Month, t.Day})
	case Time:
		return encodeTagged(enc, "__time__", []int{t.Hour, t.Minute, t.Second})
	case DateTime:
		return encodeTagged(enc, "__datetime__", []int{t.Year, t.Month, t.Day, t.Hour, t.Minute, t.Second})
	default:
		return fmt.Errorf("object: %T: %w", v, errs.UnsupportedValue)
	}
}

func encodeTagged(enc *msgpack.Encoder, tag string, value []int) error {
	if err := enc.EncodeMapLen(2); err != nil {
		return err
	}
	if err := enc.EncodeString(tag); err != nil {
		return err
	}
	if err := enc.EncodeBool(true); err != nil {
		return err
	}
	if err := enc.EncodeString("value"); err != nil {
		return err
	}
	if err := enc.EncodeArrayLen(len(value)); err != nil {
		return err
	}
	for _, p := range value {
		if err := enc.EncodeInt64(int64(p)); err != nil {
			return err
		}
	}
	return nil
}

// DecodeRow reads one row (a msgpack array of tagged scalars) from dec.
func DecodeRow(dec *msgpack.Decoder) (Row, error) {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("object: decode row header: %w", errs.CorruptFile)
	}
	if n < 0 {
		return nil, nil
	}
	row := make(Row, n)
	for i := 0; i < n; i++ {
		v, err := decodeValue(dec)
		if err != nil {
			return nil, fmt.Errorf("object: decode field %d: %w", i, err)
		}
		row[i] = v
	}
	return row, nil
}

// decodeValue reads one generic msgpack value and classifies it into a
// Value. Classification goes through DecodeInterface rather than peeking at
// wire codes directly. DecodeInterface reports each number at its wire
// width and every map as map[string]interface{}; EncodeRow writes every
// integer as a full-width int64 and every float as a float64, so those are
// the widths a row written by this package carries. Integer widths other
// than int64, uint64 and int8 are rejected as errs.CorruptFile.
func decodeValue(dec *msgpack.Decoder) (Value, error) {
	raw, err := dec.DecodeInterface()
	if err != nil {
		return nil, fmt.Errorf("%w", errs.CorruptFile)
	}
	return classify(raw)
}

func classify(raw interface{}) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return Null{}, nil
	case int64:
		return Int64(t), nil
	case uint64:
		return Int64(int64(t)), nil
	case int8:
		return Int64(t), nil
	case int:
		return Int64(t), nil
	case float32:
		return Float64(float64(t)), nil
	case float64:
		return Float64(t), nil
	case []byte:
		return Bytes(t), nil
	case string:
		return String(t), nil
	case map[string]interface{}:
		return decodeTagged(t)
	default:
		return nil, fmt.Errorf("object: unhandled wire value %T: %w", raw, errs.CorruptFile)
	}
}

func decodeTagged(m map[string]interface{}) (Value, error) {
	var tag string
	for _, candidate := range []string{"__date__", "__time__", "__datetime__"} {
		if _, ok := m[candidate]; ok {
			tag = candidate
			break
		}
	}
	if tag == "" {
		return nil, fmt.Errorf("object: tagged object missing a marker key: %w", errs.CorruptFile)
	}
	raw, ok := m["value"]
	if !ok {
		return nil, fmt.Errorf("object: tagged object %q missing \"value\": %w", tag, errs.CorruptFile)
	}
	arr, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("object: tagged object %q value is not an array: %w", tag, errs.CorruptFile)
	}
	nums := make([]int, len(arr))
	for i, v := range arr {
		n, err := toInt(v)
		if err != nil {
			return nil, fmt.Errorf("object: tagged object %q field %d: %w", tag, i, errs.CorruptFile)
		}
		nums[i] = n
	}
	switch tag {
	case "__date__":
		if len(nums) != 3 {
			return nil, fmt.Errorf("object: __date__ wants 3 fields, got %d: %w", len(nums), errs.CorruptFile)
		}
		return Date{Year: nums[0], Month: nums[1], Day: nums[2]}, nil
	case "__time__":
		if len(nums) != 3 {
			return nil, fmt.Errorf("object: __time__ wants 3 fields, got %d: %w", len(nums), errs.CorruptFile)
		}
		return Time{Hour: nums[0], Minute: nums[1], Second: nums[2]}, nil
	default: // "__datetime__"
		if len(nums) != 6 {
			return nil, fmt.Errorf("object: __datetime__ wants 6 fields, got %d: %w", len(nums), errs.CorruptFile)
		}
		return DateTime{
			Year: nums[0], Month: nums[1], Day: nums[2],
			Hour: nums[3], Minute: nums[4], Second: nums[5],
		}, nil
	}
}

func toInt(v interface{}) (int, error) {
	switch t := v.(type) {
	case int64:
		return int(t), nil
	case uint64:
		return int(t), nil
	case int:
		return t, nil
	case float64:
		return int(t), nil
	default:
		return 0, fmt.Errorf("object: %T is not numeric", v)
	}
}
