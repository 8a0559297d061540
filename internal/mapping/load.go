package mapping

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magiconair/properties"
	"gopkg.in/yaml.v3"

	"jsonadaptor/internal/adaptor"
)

const (
	columnPrefix = "column."
	typePrefix   = "type."
)

// LoadFile reads a mapping file. ".ini" and ".properties" files use the
// key/value format, ".yaml" and ".yml" the YAML format.
func LoadFile(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping: %w", err)
	}

	var m *Mapping
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".ini", ".properties":
		m, err = ParseProperties(data)
	case ".yaml", ".yml":
		m, err = ParseYAML(data)
	default:
		return nil, &adaptor.ConfigError{Msg: fmt.Sprintf("unsupported mapping file extension %q", ext)}
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ParseProperties reads the key/value format:
//
//	column.name = person.name
//	column.phone = person.telephone
//	type.phone = UINT32
//
// Keys outside the column. and type. prefixes are ignored. Columns keep
// the order of their keys in the file.
func ParseProperties(data []byte) (*Mapping, error) {
	p, err := properties.Load(data, properties.UTF8)
	if err != nil {
		return nil, &adaptor.ConfigError{Msg: fmt.Sprintf("parse properties: %v", err)}
	}

	m := New()
	var typed []string
	for _, key := range p.Keys() {
		switch {
		case strings.HasPrefix(key, columnPrefix):
			path, _ := p.Get(key)
			m.Add(strings.TrimPrefix(key, columnPrefix), strings.TrimSpace(path), adaptor.TypeUnknown)
		case strings.HasPrefix(key, typePrefix):
			typed = append(typed, key)
		}
	}
	for _, key := range typed {
		name, _ := p.Get(key)
		typ, err := adaptor.ParseColumnType(name)
		if err != nil {
			return nil, err
		}
		if err := m.SetType(strings.TrimPrefix(key, typePrefix), typ); err != nil {
			return nil, err
		}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

type yamlFile struct {
	Columns []Entry `yaml:"columns"`
}

// ParseYAML reads the YAML format:
//
//	columns:
//	  - name: phone
//	    path: person.telephone
//	    type: UINT32
func ParseYAML(data []byte) (*Mapping, error) {
	var f yamlFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, &adaptor.ConfigError{Msg: fmt.Sprintf("parse yaml: %v", err)}
	}

	m := New()
	for _, e := range f.Columns {
		m.Add(e.Column, e.Path, e.Type)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
