package jsonvalue

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	json "github.com/goccy/go-json"
)

// Parse decodes exactly one JSON text into a Value.
func Parse(data []byte) (Value, error) {
	return ParseReader(bytes.NewReader(data))
}

// ParseReader decodes exactly one JSON text from r. Anything but
// whitespace after the value is an error.
func ParseReader(r io.Reader) (Value, error) {
	s := NewStream(r)
	v, err := s.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse json: %w", io.ErrUnexpectedEOF)
		}
		return nil, err
	}
	if _, err := s.dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("parse json: unexpected data after top-level value")
	}
	return v, nil
}

// Stream reads a sequence of whitespace-separated JSON values, such as
// newline-delimited JSON.
type Stream struct {
	dec *json.Decoder
}

// NewStream wraps r. Numbers are kept as literals.
func NewStream(r io.Reader) *Stream {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &Stream{dec: dec}
}

// Next returns the next top-level value, or io.EOF once the input is
// exhausted.
func (s *Stream) Next() (Value, error) {
	tok, err := s.dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return s.value(tok)
}

func (s *Stream) value(tok any) (Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return s.object()
		case '[':
			return s.array()
		default:
			return nil, fmt.Errorf("parse json: unexpected delimiter %q", rune(t))
		}
	case string:
		return String(t), nil
	case json.Number:
		return Number(t), nil
	case float64:
		// Only reached if UseNumber was bypassed.
		return Number(strconv.FormatFloat(t, 'g', -1, 64)), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null{}, nil
	}
	return nil, fmt.Errorf("parse json: unexpected token %v", tok)
}

func (s *Stream) object() (Value, error) {
	obj := Object{}
	for {
		tok, err := s.next()
		if err != nil {
			return nil, err
		}
		if d, ok := tok.(json.Delim); ok && d == '}' {
			return obj, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("parse json: expected object key, got %v", tok)
		}
		tok, err = s.next()
		if err != nil {
			return nil, err
		}
		v, err := s.value(tok)
		if err != nil {
			return nil, err
		}
		obj = append(obj, Member{Key: key, Value: v})
	}
}

func (s *Stream) array() (Value, error) {
	arr := Array{}
	for {
		tok, err := s.next()
		if err != nil {
			return nil, err
		}
		if d, ok := tok.(json.Delim); ok && d == ']' {
			return arr, nil
		}
		v, err := s.value(tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}

// next reads a token inside a container, where EOF is always premature.
func (s *Stream) next() (any, error) {
	tok, err := s.dec.Token()
	if err == io.EOF {
		return nil, fmt.Errorf("parse json: %w", io.ErrUnexpectedEOF)
	}
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return tok, nil
}
