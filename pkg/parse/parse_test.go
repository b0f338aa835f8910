// $ go test -v pkg/parse/*.go

package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseString(t *testing.T) {
	assert.Equal(t, "", ParseString(nil))
	assert.Equal(t, "true", ParseString(true))
	assert.Equal(t, "1", ParseString(1))
	assert.Equal(t, "3.14", ParseString(3.14))
	assert.Equal(t, "test", ParseString("test"))
}

func TestParseFloat(t *testing.T) {
	assert.Equal(t, 3.14, ParseFloat("3.14"))
	assert.Equal(t, 3.14, ParseFloat(3.14))
	assert.Equal(t, float64(42), ParseFloat(42))
	assert.Equal(t, float64(0), ParseFloat("not a number"))
	assert.Equal(t, float64(0), ParseFloat(nil))
}

func TestParseInt(t *testing.T) {
	assert.Equal(t, 42, ParseInt("42"))
	assert.Equal(t, 42, ParseInt(42.9))
	assert.Equal(t, 0, ParseInt("foo"))
}

func TestParseBool(t *testing.T) {
	assert.True(t, ParseBool(true))
	assert.True(t, ParseBool("true"))
	assert.True(t, ParseBool("1"))
	assert.True(t, ParseBool(1))
	assert.False(t, ParseBool("0"))
	assert.False(t, ParseBool("no"))
	assert.False(t, ParseBool(nil))
}
