package adaptor

import (
	"jsonadaptor/internal/jsonvalue"
)

// Flatten inlines obj into a single record keyed by dotted paths, each
// prefixed with prefix when it is non-empty. Nested objects are merged
// into the same record; arrays become array groups under the path of
// their key, except empty arrays which leave no entry at all.
func Flatten(obj jsonvalue.Object, prefix string) Record {
	rec := NewRecord()
	for _, m := range obj {
		path := joinPath(prefix, m.Key)
		switch v := m.Value.(type) {
		case jsonvalue.Object:
			rec.Merge(Flatten(v, path))
		case jsonvalue.Array:
			if len(v) == 0 {
				continue
			}
			rec.SetGroup(path, flattenArray(v, path))
		case nil:
			rec.SetScalar(path, jsonvalue.Null{})
		default:
			rec.SetScalar(path, v)
		}
	}
	return rec
}

// flattenArray builds the group for arr stored at path. Array elements do
// not add an index segment to the path.
func flattenArray(arr jsonvalue.Array, path string) ArrayGroup {
	group := make(ArrayGroup, 0, len(arr))
	for _, elem := range arr {
		switch v := elem.(type) {
		case jsonvalue.Object:
			group = append(group, Flatten(v, path))
		case jsonvalue.Array:
			sub := NewRecord()
			if len(v) > 0 {
				sub.SetGroup(path, flattenArray(v, path))
			}
			group = append(group, sub)
		case nil:
			sub := NewRecord()
			sub.SetScalar(path, jsonvalue.Null{})
			group = append(group, sub)
		default:
			sub := NewRecord()
			sub.SetScalar(path, v)
			group = append(group, sub)
		}
	}
	return group
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
