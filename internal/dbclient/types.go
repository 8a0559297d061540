package dbclient

import (
	"strings"

	"jsonadaptor/internal/adaptor"
)

var sqlTypes = map[string]adaptor.ColumnType{
	"tinyint":   adaptor.TypeInt8,
	"smallint":  adaptor.TypeInt16,
	"int2":      adaptor.TypeInt16,
	"mediumint": adaptor.TypeInt32,
	"int":       adaptor.TypeInt32,
	"integer":   adaptor.TypeInt32,
	"int4":      adaptor.TypeInt32,
	"serial":    adaptor.TypeInt32,
	"bigint":    adaptor.TypeInt64,
	"int8":      adaptor.TypeInt64,
	"bigserial": adaptor.TypeInt64,

	"float":            adaptor.TypeFloat,
	"real":             adaptor.TypeFloat,
	"float4":           adaptor.TypeFloat,
	"double":           adaptor.TypeDouble,
	"double precision": adaptor.TypeDouble,
	"float8":           adaptor.TypeDouble,
	"numeric":          adaptor.TypeDouble,
	"decimal":          adaptor.TypeDouble,

	"date":                        adaptor.TypeDate,
	"time":                        adaptor.TypeTime,
	"time without time zone":      adaptor.TypeTime,
	"datetime":                    adaptor.TypeTimestamp,
	"timestamp":                   adaptor.TypeTimestamp,
	"timestamptz":                 adaptor.TypeTimestamp,
	"timestamp without time zone": adaptor.TypeTimestamp,
	"timestamp with time zone":    adaptor.TypeTimestamp,

	"bit":     adaptor.TypeBitVector8,
	"bool":    adaptor.TypeBitVector8,
	"boolean": adaptor.TypeBitVector8,

	"blob":       adaptor.TypeBlob,
	"tinyblob":   adaptor.TypeBlob,
	"mediumblob": adaptor.TypeBlob,
	"longblob":   adaptor.TypeBlob,
	"bytea":      adaptor.TypeBlob,
	"binary":     adaptor.TypeBlob,
	"varbinary":  adaptor.TypeBlob,
}

var unsignedTypes = map[adaptor.ColumnType]adaptor.ColumnType{
	adaptor.TypeInt8:  adaptor.TypeUInt8,
	adaptor.TypeInt16: adaptor.TypeUInt16,
	adaptor.TypeInt32: adaptor.TypeUInt32,
	adaptor.TypeInt64: adaptor.TypeUInt64,
}

// ColumnTypeForSQL maps a declared SQL column type such as
// "int(10) unsigned" or "character varying" onto a row column type.
// Character, JSON and unrecognised types become VARSTRING. SQLite
// integers are always 64 bit.
func ColumnTypeForSQL(driverName, decl string) adaptor.ColumnType {
	d := strings.ToLower(strings.TrimSpace(decl))
	unsigned := strings.Contains(d, "unsigned")
	if i := strings.IndexByte(d, '('); i >= 0 {
		rest := ""
		if j := strings.IndexByte(d[i:], ')'); j >= 0 {
			rest = d[i+j+1:]
		}
		d = d[:i] + rest
	}
	d = strings.TrimSpace(strings.NewReplacer("unsigned", "", "zerofill", "").Replace(d))
	d = strings.Join(strings.Fields(d), " ")

	if driverName == "sqlite" {
		return sqliteAffinity(d)
	}

	t, ok := sqlTypes[d]
	if !ok {
		return adaptor.TypeVarString
	}
	if unsigned {
		if u, ok := unsignedTypes[t]; ok {
			return u
		}
	}
	return t
}

// sqliteAffinity follows SQLite's column affinity rules, refined by the
// declared name for dates and booleans. REAL and NUMERIC affinity both
// map to DOUBLE.
func sqliteAffinity(d string) adaptor.ColumnType {
	if t, ok := sqlTypes[d]; ok && (t.IsTemporal() || t == adaptor.TypeBitVector8) {
		return t
	}
	switch {
	case strings.Contains(d, "int"):
		return adaptor.TypeInt64
	case strings.Contains(d, "char"), strings.Contains(d, "clob"), strings.Contains(d, "text"):
		return adaptor.TypeVarString
	case d == "", strings.Contains(d, "blob"):
		return adaptor.TypeBlob
	default:
		return adaptor.TypeDouble
	}
}
