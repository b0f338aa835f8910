package s3cache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/moonwalker/searchkit/pkg/cache"
)

func TestNew(t *testing.T) {
	// the bucket is opened lazily, construction takes no credentials
	var c cache.Cache = New("searchkit-cache-test")
	assert.NotNil(t, c)
}
