package engine

import (
	"github.com/tidwall/sjson"
)

// WithPagination sets the window on an already-rendered request body.
func WithPagination(query []byte, from, size int) []byte {
	q, err := sjson.SetBytes(query, "from", from)
	if err != nil {
		return query
	}
	q, err = sjson.SetBytes(q, "size", size)
	if err != nil {
		return query
	}
	return q
}

// WithTrackTotalHits disables the default 10k total-count ceiling.
func WithTrackTotalHits(query []byte) []byte {
	q, err := sjson.SetBytes(query, "track_total_hits", true)
	if err != nil {
		return query
	}
	return q
}
