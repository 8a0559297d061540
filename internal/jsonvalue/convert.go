package jsonvalue

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// FromBSON converts a MongoDB document. Element order is kept.
func FromBSON(doc bson.D) Object {
	obj := make(Object, 0, len(doc))
	for _, e := range doc {
		obj = append(obj, Member{Key: e.Key, Value: FromAny(e.Value)})
	}
	return obj
}

// FromAny converts a Go value as produced by encoding/json, goccy/go-json
// or the MongoDB driver. Maps without an intrinsic order get their keys
// sorted. BSON dates and time.Time become epoch-millisecond numbers,
// object IDs their hex string.
func FromAny(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null{}
	case Value:
		return x
	case bool:
		return Bool(x)
	case string:
		return String(x)
	case json.Number:
		return Number(x)
	case float64:
		return floatNumber(x)
	case float32:
		return floatNumber(float64(x))
	case int:
		return Number(strconv.Itoa(x))
	case int32:
		return Number(strconv.FormatInt(int64(x), 10))
	case int64:
		return Number(strconv.FormatInt(x, 10))
	case uint32:
		return Number(strconv.FormatUint(uint64(x), 10))
	case uint64:
		return Number(strconv.FormatUint(x, 10))
	case bson.D:
		return FromBSON(x)
	case bson.A:
		return fromSlice(x)
	case []any:
		return fromSlice(x)
	case bson.M:
		return fromMap(x)
	case map[string]any:
		return fromMap(x)
	case bson.ObjectID:
		return String(x.Hex())
	case bson.DateTime:
		return Number(strconv.FormatInt(int64(x), 10))
	case bson.Decimal128:
		return Number(x.String())
	case time.Time:
		return Number(strconv.FormatInt(x.UnixMilli(), 10))
	default:
		return String(fmt.Sprint(x))
	}
}

func floatNumber(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null{}
	}
	return Number(strconv.FormatFloat(f, 'g', -1, 64))
}

func fromSlice(s []any) Array {
	arr := make(Array, 0, len(s))
	for _, e := range s {
		arr = append(arr, FromAny(e))
	}
	return arr
}

func fromMap(m map[string]any) Object {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	obj := make(Object, 0, len(m))
	for _, k := range keys {
		obj = append(obj, Member{Key: k, Value: FromAny(m[k])})
	}
	return obj
}
