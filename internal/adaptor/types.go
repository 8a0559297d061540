package adaptor

import (
	"fmt"
	"strings"
)

// ColumnType is the declared type of a target column.
type ColumnType int

const (
	TypeUnknown ColumnType = iota
	TypeUInt8
	TypeUInt16
	TypeUInt32
	TypeUInt64
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeFloat
	TypeDouble
	TypeVarString
	TypeShortDate
	TypeDate
	TypeTime
	TypeTimestamp
	TypeBitVector8
	TypeBlob
)

var typeNames = map[ColumnType]string{
	TypeUInt8:      "UINT8",
	TypeUInt16:     "UINT16",
	TypeUInt32:     "UINT32",
	TypeUInt64:     "UINT64",
	TypeInt8:       "INT8",
	TypeInt16:      "INT16",
	TypeInt32:      "INT32",
	TypeInt64:      "INT64",
	TypeFloat:      "FLOAT",
	TypeDouble:     "DOUBLE",
	TypeVarString:  "VARSTRING",
	TypeShortDate:  "SHORTDATE",
	TypeDate:       "DATE",
	TypeTime:       "TIME",
	TypeTimestamp:  "TIMESTAMP",
	TypeBitVector8: "BITVECTOR8",
	TypeBlob:       "BLOB",
}

func (t ColumnType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ColumnType(%d)", int(t))
}

// ParseColumnType resolves a type name such as "uint16" or "VARSTRING".
func ParseColumnType(name string) (ColumnType, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for t, n := range typeNames {
		if n == upper {
			return t, nil
		}
	}
	return TypeUnknown, &ConfigError{Msg: fmt.Sprintf("unknown column type %q", name)}
}

// IsTemporal reports whether values of t are built by a DateFactory.
func (t ColumnType) IsTemporal() bool {
	switch t {
	case TypeShortDate, TypeDate, TypeTime, TypeTimestamp:
		return true
	}
	return false
}

// intRange is the accepted integer interval of a column type. The top
// value of every integer type is reserved by the database and therefore
// excluded.
type intRange struct {
	min, max   int64
	checkMin   bool
	boundsText string
}

var intRanges = map[ColumnType]intRange{
	TypeUInt8:  {min: 0, max: 254, checkMin: true, boundsText: "[0,254]"},
	TypeUInt16: {min: 0, max: 65534, checkMin: true, boundsText: "[0,65534]"},
	TypeUInt32: {min: 0, max: 4294967294, checkMin: true, boundsText: "[0,4294967294]"},
	// UINT64 shares the UINT32 bound.
	TypeUInt64: {min: 0, max: 4294967294, checkMin: true, boundsText: "[0,4294967294]"},
	TypeInt8:   {min: -128, max: 126, checkMin: true, boundsText: "[-128,126]"},
	TypeInt16:  {min: -32768, max: 32766, checkMin: true, boundsText: "[-32768,32766]"},
	// INT32 only enforces its upper bound unless WithSymmetricInt32 is set.
	TypeInt32: {min: -2147483648, max: 2147483646, checkMin: false, boundsText: "[-2147483648,2147483646]"},
	TypeInt64: {min: -9223372036854775808, max: 9223372036854775806, checkMin: true, boundsText: "[-9223372036854775808,9223372036854775806]"},
}

// Column is one typed slot of the target schema.
type Column struct {
	Name string     `json:"name" yaml:"name"`
	Type ColumnType `json:"type" yaml:"type"`
}

// Row is one output row: one slot per schema column, nil for null.
type Row []any

func (t ColumnType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *ColumnType) UnmarshalText(b []byte) error {
	parsed, err := ParseColumnType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
