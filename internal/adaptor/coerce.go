package adaptor

import (
	"fmt"
	"strconv"

	"jsonadaptor/internal/jsonvalue"
)

// boundColumn is a schema column together with its configured path.
type boundColumn struct {
	Column
	path   string
	mapped bool
}

// coercer turns fully unfolded records into typed rows.
type coercer struct {
	dates          DateFactory
	symmetricInt32 bool
}

// row converts rec into one slot per column. The first failing column
// aborts the row.
func (c *coercer) row(rec Record, cols []boundColumn) (Row, error) {
	out := make(Row, len(cols))
	for i, col := range cols {
		if !col.mapped {
			continue
		}
		fv, ok := rec.Get(col.path)
		if !ok {
			continue
		}
		if fv.IsGroup() {
			return nil, &IncompatibleTypeError{Column: col.Name, Type: col.Type, JSONKind: jsonvalue.KindArray.String(), Value: "[...]"}
		}
		if fv.Scalar.Kind() == jsonvalue.KindNull {
			continue
		}
		v, err := c.value(col.Column, fv.Scalar)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// value converts a single non-null scalar for col.
func (c *coercer) value(col Column, v jsonvalue.Value) (any, error) {
	switch col.Type {
	case TypeBitVector8:
		if b, ok := v.(jsonvalue.Bool); ok {
			return uint8(boolInt(b)), nil
		}
		return nil, incompatible(col, v)

	case TypeUInt8, TypeUInt16, TypeUInt32, TypeUInt64,
		TypeInt8, TypeInt16, TypeInt32, TypeInt64:
		switch x := v.(type) {
		case jsonvalue.Number:
			return c.integer(col, x)
		case jsonvalue.Bool:
			return castInt(col.Type, boolInt(x)), nil
		}
		return nil, incompatible(col, v)

	case TypeDouble:
		if n, ok := v.(jsonvalue.Number); ok {
			return n.Float64(), nil
		}
		return nil, incompatible(col, v)

	case TypeFloat:
		if n, ok := v.(jsonvalue.Number); ok {
			return float32(n.Float64()), nil
		}
		return nil, incompatible(col, v)

	case TypeShortDate, TypeDate, TypeTime, TypeTimestamp:
		n, ok := v.(jsonvalue.Number)
		if !ok {
			return nil, incompatible(col, v)
		}
		ms, ok := n.Int64()
		if !ok {
			return nil, &OutOfRangeError{Column: col.Name, Type: col.Type, Bounds: "[-9223372036854775808,9223372036854775807]", Value: n.Text()}
		}
		d, err := c.dates.NewDate(col.Type, ms)
		if err != nil {
			return nil, &DateError{Column: col.Name, Type: col.Type, Millis: ms, Err: err}
		}
		return d, nil

	case TypeVarString:
		if s, ok := v.(jsonvalue.String); ok {
			return string(s), nil
		}
		return v.Text(), nil

	case TypeBlob:
		return nil, &UnsupportedTypeError{Column: col.Name, Type: col.Type}

	default:
		return nil, &ConfigError{Msg: fmt.Sprintf("unknown column type for column (%s): %s", col.Name, col.Type)}
	}
}

// integer truncates n and checks it against the bounds of col.Type.
func (c *coercer) integer(col Column, n jsonvalue.Number) (any, error) {
	r := intRanges[col.Type]
	i, ok := n.Int64()
	if !ok {
		return nil, &OutOfRangeError{Column: col.Name, Type: col.Type, Bounds: r.boundsText, Value: n.Text()}
	}
	checkMin := r.checkMin || (col.Type == TypeInt32 && c.symmetricInt32)
	if i > r.max || (checkMin && i < r.min) {
		return nil, &OutOfRangeError{Column: col.Name, Type: col.Type, Bounds: r.boundsText, Value: strconv.FormatInt(i, 10)}
	}
	// a wrapped INT32 must not land on the reserved top value either
	if col.Type == TypeInt32 && !checkMin && int64(int32(i)) > r.max {
		return nil, &OutOfRangeError{Column: col.Name, Type: col.Type, Bounds: r.boundsText, Value: strconv.FormatInt(i, 10)}
	}
	return castInt(col.Type, i), nil
}

// castInt converts i to the Go type held by integer columns of type t.
// Without a lower bound INT32 keeps the low 32 bits.
func castInt(t ColumnType, i int64) any {
	switch t {
	case TypeUInt8:
		return uint8(i)
	case TypeUInt16:
		return uint16(i)
	case TypeUInt32:
		return uint32(i)
	case TypeUInt64:
		return uint64(i)
	case TypeInt8:
		return int8(i)
	case TypeInt16:
		return int16(i)
	case TypeInt32:
		return int32(i)
	default:
		return i
	}
}

func boolInt(b jsonvalue.Bool) int64 {
	if b {
		return 1
	}
	return 0
}

func incompatible(col Column, v jsonvalue.Value) error {
	return &IncompatibleTypeError{Column: col.Name, Type: col.Type, JSONKind: v.Kind().String(), Value: v.Text()}
}
