package engine

import "encoding/json"

type ResultHit struct {
	Index  string          `json:"_index"`
	ID     string          `json:"_id"`
	Score  float64         `json:"_score"`
	Source json.RawMessage `json:"_source"`
	Sort   []interface{}   `json:"sort,omitempty"`
}

type ResultTotal struct {
	Value    int    `json:"value"`
	Relation string `json:"relation"`
}

type ResultHits struct {
	Total    ResultTotal `json:"total"`
	MaxScore float64     `json:"max_score"`
	Hits     []ResultHit `json:"hits"`
}

type ResultShards struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

type SearchResult struct {
	Took         int             `json:"took"`
	TimedOut     bool            `json:"timed_out"`
	Shards       ResultShards    `json:"_shards"`
	Hits         ResultHits      `json:"hits"`
	Aggregations json.RawMessage `json:"aggregations"`
}

type IndexStats struct {
	DocumentCount int64
	ShardCount    int
}
