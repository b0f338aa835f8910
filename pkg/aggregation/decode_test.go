// $ go test -v pkg/aggregation/*.go

package aggregation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSameNameUnwrapAndOtherDocs(t *testing.T) {
	raw := []byte(`{
		"color": {
			"color": {
				"buckets": [{"key": "red", "doc_count": 5}],
				"sum_other_doc_count": 2
			}
		}
	}`)

	buckets := Decode(raw)
	require.Len(t, buckets, 1)

	color := buckets["color"]
	require.NotNil(t, color)
	require.Len(t, color.Values, 2)

	assert.Equal(t, "red", color.Values[0].Value)
	assert.Equal(t, int64(5), color.Values[0].Count())

	other := color.Values[1]
	assert.Equal(t, OtherDocsKey, other.Value)
	assert.Equal(t, int64(2), other.Count())
	assert.Len(t, other.Metrics, 1)
}

func TestDecodeNoOverflowNoSyntheticValue(t *testing.T) {
	raw := []byte(`{
		"color": {
			"buckets": [{"key": "red", "doc_count": 5}],
			"sum_other_doc_count": 0
		}
	}`)

	color := Decode(raw)["color"]
	require.NotNil(t, color)
	require.Len(t, color.Values, 1)
	assert.Equal(t, "red", color.Values[0].Value)

	// absent overflow count means no overflow either
	raw = []byte(`{"color": {"buckets": [{"key": "red", "doc_count": 5}]}}`)
	color = Decode(raw)["color"]
	require.Len(t, color.Values, 1)
}

func TestDecodeSubAggregations(t *testing.T) {
	raw := []byte(`{
		"category": {
			"buckets": [
				{
					"key": "shoes",
					"doc_count": 10,
					"brand": {
						"buckets": [{"key": "acme", "doc_count": 4}]
					}
				}
			]
		}
	}`)

	category := Decode(raw)["category"]
	require.NotNil(t, category)
	require.Len(t, category.Values, 1)

	shoes := category.Values[0]
	assert.Equal(t, "shoes", shoes.Value)
	assert.Equal(t, int64(10), shoes.Count())

	brand := shoes.Buckets["brand"]
	require.NotNil(t, brand)
	require.Len(t, brand.Values, 1)
	assert.Equal(t, "acme", brand.Values[0].Value)
	assert.Equal(t, int64(4), brand.Values[0].Count())
}

func TestDecodeMetricSubAggregationPrecedence(t *testing.T) {
	raw := []byte(`{
		"category": {
			"buckets": [
				{
					"key": "shoes",
					"doc_count": 10,
					"count": {
						"buckets": [{"key": "x", "doc_count": 1}]
					}
				}
			]
		}
	}`)

	shoes := Decode(raw)["category"].Values[0]

	// the doc_count metric renames to count, but the sub-aggregation
	// of the same name takes precedence
	assert.NotContains(t, shoes.Metrics, "count")
	assert.Contains(t, shoes.Buckets, "count")
}

func TestDecodeMetricNormalization(t *testing.T) {
	raw := []byte(`{
		"price": {
			"buckets": [
				{
					"key": "0-50",
					"doc_count": 3,
					"min_price": {"value": 9.99, "value_as_string": "9.99 EUR"},
					"max_price": {"value": 49.5}
				}
			]
		}
	}`)

	v := Decode(raw)["price"].Values[0]
	assert.Equal(t, "9.99 EUR", v.Metric("min_price"))
	assert.Equal(t, 49.5, v.Metric("max_price"))
	assert.Equal(t, int64(3), v.Count())
}

func TestDecodeKeyedBuckets(t *testing.T) {
	raw := []byte(`{
		"stock": {
			"buckets": {
				"in_stock": {"doc_count": 7},
				"out_of_stock": {"doc_count": 1}
			}
		}
	}`)

	stock := Decode(raw)["stock"]
	require.NotNil(t, stock)
	require.Len(t, stock.Values, 2)

	byValue := map[interface{}]*Value{}
	for _, v := range stock.Values {
		byValue[v.Value] = v
	}
	assert.Equal(t, int64(7), byValue["in_stock"].Count())
	assert.Equal(t, int64(1), byValue["out_of_stock"].Count())
}

func TestDecodeDegradedInput(t *testing.T) {
	assert.Empty(t, Decode(nil))
	assert.Empty(t, Decode([]byte(`{}`)))
	assert.Empty(t, Decode([]byte(`not json`)))
	assert.Empty(t, Decode([]byte(`[1,2,3]`)))
}
