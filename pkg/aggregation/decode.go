package aggregation

import (
	"github.com/tidwall/gjson"

	"github.com/moonwalker/searchkit/pkg/parse"
)

// OtherDocsKey is the synthetic value holding the overflow count a terms
// bucket reports for documents outside its returned values.
const OtherDocsKey = "__other_docs"

const (
	bucketsKey   = "buckets"
	keyKey       = "key"
	docCountKey  = "doc_count"
	countMetric  = "count"
	otherDocsKey = "sum_other_doc_count"
)

// Bucket is a named group of decoded aggregation values.
type Bucket struct {
	Name   string
	Values []*Value
}

// Value is one bucket entry: its scalar identity, scalar metrics and any
// drill-down sub-aggregations. A metric sharing its name with a
// sub-aggregation is dropped, the sub-aggregation takes precedence.
type Value struct {
	Value   interface{}
	Metrics map[string]interface{}
	Buckets map[string]*Bucket
}

func (v *Value) Metric(name string) interface{} {
	return v.Metrics[name]
}

func (v *Value) Count() int64 {
	return parse.ParseInt64(v.Metrics[countMetric])
}

// Decode walks a raw aggregations object into a bucket tree. Tolerates
// empty or partial input: absent keys decode to an empty map, a missing
// overflow count means no overflow.
func Decode(raw []byte) map[string]*Bucket {
	return decodeLevel(gjson.ParseBytes(raw))
}

func decodeLevel(parsed gjson.Result) map[string]*Bucket {
	result := map[string]*Bucket{}
	if !parsed.IsObject() {
		return result
	}
	parsed.ForEach(func(key, value gjson.Result) bool {
		if value.IsObject() && isBucketShaped(value) {
			result[key.String()] = decodeBucket(key.String(), value)
		}
		return true
	})
	return result
}

func decodeBucket(name string, raw gjson.Result) *Bucket {
	raw = unwrap(name, raw)
	bucket := &Bucket{Name: name}

	buckets := childByName(raw, bucketsKey)
	if buckets.Exists() {
		buckets.ForEach(func(key, item gjson.Result) bool {
			bucket.Values = append(bucket.Values, decodeValue(key, item))
			return true
		})
	}

	if other := childByName(raw, otherDocsKey).Int(); other > 0 {
		bucket.Values = append(bucket.Values, &Value{
			Value:   OtherDocsKey,
			Metrics: map[string]interface{}{countMetric: other},
			Buckets: map[string]*Bucket{},
		})
	}

	return bucket
}

func decodeValue(key, item gjson.Result) *Value {
	v := &Value{
		Metrics: map[string]interface{}{},
		Buckets: map[string]*Bucket{},
	}

	// the engine's bucket key is the value identity; map-shaped bucket
	// lists fall back to the raw map key
	if k := childByName(item, keyKey); k.Exists() {
		v.Value = k.Value()
	} else {
		v.Value = key.String()
	}

	item.ForEach(func(k, val gjson.Result) bool {
		name := k.String()
		if name == keyKey {
			return true
		}

		if val.IsObject() && isBucketShaped(val) {
			v.Buckets[name] = decodeBucket(name, val)
			return true
		}

		if name == docCountKey {
			v.Metrics[countMetric] = val.Int()
			return true
		}
		v.Metrics[name] = metricValue(val)
		return true
	})

	// sub-aggregation takes precedence over a same-named metric
	for name := range v.Buckets {
		delete(v.Metrics, name)
	}

	return v
}

// the engine sometimes nests a bucket one level under its own name,
// unwrap until the nesting stops
func unwrap(name string, raw gjson.Result) gjson.Result {
	for {
		inner := childByName(raw, name)
		if !inner.Exists() || !inner.IsObject() {
			return raw
		}
		raw = inner
	}
}

// isBucketShaped reports whether the object holds a bucket list, directly
// or one same-named level down.
func isBucketShaped(raw gjson.Result) bool {
	if childByName(raw, bucketsKey).Exists() {
		return true
	}
	nested := false
	raw.ForEach(func(key, value gjson.Result) bool {
		if value.IsObject() && isBucketShaped(value) {
			nested = true
			return false
		}
		return true
	})
	return nested
}

// metric values may be objects; prefer the formatted string, then the
// bare value, else keep the raw shape
func metricValue(val gjson.Result) interface{} {
	if val.IsObject() {
		if s := childByName(val, "value_as_string"); s.Exists() {
			return s.Value()
		}
		if v := childByName(val, "value"); v.Exists() {
			return v.Value()
		}
	}
	return val.Value()
}

// child lookup by literal key, immune to gjson path syntax in key names
func childByName(raw gjson.Result, name string) gjson.Result {
	var found gjson.Result
	raw.ForEach(func(key, value gjson.Result) bool {
		if key.String() == name {
			found = value
			return false
		}
		return true
	})
	return found
}
