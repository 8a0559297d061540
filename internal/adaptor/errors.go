package adaptor

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig marks a schema or mapping that cannot be used.
	ErrConfig = errors.New("adaptor configuration error")
	// ErrIncompatibleType marks a JSON value whose kind the column type
	// cannot accept.
	ErrIncompatibleType = errors.New("incompatible data type")
	// ErrOutOfRange marks a number outside the bounds of its column type.
	ErrOutOfRange = errors.New("value out of range")
	// ErrUnsupportedType marks a column type that cannot be decoded into.
	ErrUnsupportedType = errors.New("unsupported column type")
	// ErrNotObject is returned when a document is neither null nor an
	// object.
	ErrNotObject = errors.New("document is not a JSON object")
)

// ConfigError describes an invalid schema or mapping.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string        { return e.Msg }
func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// IncompatibleTypeError is returned when a value's kind does not fit the
// column type.
type IncompatibleTypeError struct {
	Column   string
	Type     ColumnType
	JSONKind string
	Value    string
}

func (e *IncompatibleTypeError) Error() string {
	return fmt.Sprintf("incompatible data types for column (%s): database type is %s, JSON type is %s, value attempted for insertion: %s",
		e.Column, e.Type, e.JSONKind, e.Value)
}

func (e *IncompatibleTypeError) Is(target error) bool { return target == ErrIncompatibleType }

// OutOfRangeError is returned when a number does not fit its column type.
type OutOfRangeError struct {
	Column string
	Type   ColumnType
	Bounds string
	Value  string
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("insertion value out of range for column (%s): type %s, value range %s, attempted value for insertion %s",
		e.Column, e.Type, e.Bounds, e.Value)
}

func (e *OutOfRangeError) Is(target error) bool { return target == ErrOutOfRange }

// UnsupportedTypeError is returned for column types that cannot hold
// decoded JSON, such as BLOB.
type UnsupportedTypeError struct {
	Column string
	Type   ColumnType
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("column (%s): %s column type not supported for decoding", e.Column, e.Type)
}

func (e *UnsupportedTypeError) Is(target error) bool { return target == ErrUnsupportedType }

// DateError wraps a failure of the DateFactory.
type DateError struct {
	Column string
	Type   ColumnType
	Millis int64
	Err    error
}

func (e *DateError) Error() string {
	return fmt.Sprintf("column (%s): cannot build %s from %d: %v", e.Column, e.Type, e.Millis, e.Err)
}

func (e *DateError) Unwrap() error { return e.Err }
