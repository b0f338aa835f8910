package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"log/slog"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	"github.com/tidwall/gjson"

	"github.com/moonwalker/searchkit/pkg/env"
)

// Client is the thin call boundary to the search engine. Everything above
// it only produces and consumes JSON-shaped documents; retries, auth and
// transport policy stay out here.
type Client struct {
	es *elasticsearch.Client
}

func NewClient() (*Client, error) {
	cfg := elasticsearch.Config{}
	if url := env.Get("ELASTICSEARCH_URL", ""); url != "" {
		cfg.Addresses = strings.Split(url, ",")
	}
	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{es}, nil
}

func (c *Client) Search(ctx context.Context, index string, query []byte) (*SearchResult, error) {
	slog.Debug("engine query",
		"query", string(query),
		"index", index,
	)

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(index),
		c.es.Search.WithBody(bytes.NewReader(query)),
	)
	if err != nil {
		slog.Error("Error getting response",
			"err", err.Error(),
			"query", string(query),
			"index", index,
		)
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		err = responseError("failed to run query", res)
		slog.Error("Engine search error",
			"err", err.Error(),
			"query", string(query),
			"index", index,
		)
		return nil, err
	}

	var r SearchResult
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		slog.Error("Error parsing the response body",
			"err", err.Error(),
		)
		return nil, err
	}

	slog.Debug("engine query time", "took", r.Took)

	return &r, nil
}

// SafeSearch absorbs engine failures into an empty result; search
// degrades rather than failing the user-facing request.
func (c *Client) SafeSearch(ctx context.Context, index string, query []byte) *SearchResult {
	res, err := c.Search(ctx, index, query)
	if err != nil {
		return &SearchResult{}
	}
	return res
}

// TermVectors looks up term statistics for an artificial document.
func (c *Client) TermVectors(ctx context.Context, index string, doc map[string]interface{}, fields []string) ([]byte, error) {
	body, err := json.Marshal(map[string]interface{}{
		"doc":              doc,
		"fields":           fields,
		"term_statistics":  true,
		"field_statistics": false,
	})
	if err != nil {
		return nil, err
	}

	req := esapi.TermvectorsRequest{
		Index: strings.ToLower(index),
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		slog.Error("Error running term vectors request",
			"err", err.Error(),
			"index", index,
		)
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		err = responseError("failed to get term vectors", res)
		slog.Error("Engine term vectors error",
			"err", err.Error(),
			"index", index,
		)
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(res.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// IndexStats reports the document and shard counts of an index.
func (c *Client) IndexStats(ctx context.Context, index string) (*IndexStats, error) {
	req := esapi.IndicesStatsRequest{
		Index:  []string{strings.ToLower(index)},
		Metric: []string{"docs"},
	}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, responseError("failed to get index stats", res)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(res.Body); err != nil {
		return nil, err
	}

	return &IndexStats{
		DocumentCount: gjson.GetBytes(buf.Bytes(), "_all.primaries.docs.count").Int(),
		ShardCount:    int(gjson.GetBytes(buf.Bytes(), "_shards.total").Int()),
	}, nil
}

// DocumentCount satisfies the spellcheck engine contract.
func (c *Client) DocumentCount(ctx context.Context, index string) (int64, error) {
	stats, err := c.IndexStats(ctx, index)
	if err != nil {
		return 0, err
	}
	return stats.DocumentCount, nil
}

func responseError(msg string, res *esapi.Response) error {
	var e map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&e); err != nil {
		return fmt.Errorf("%s: [%s]", msg, res.Status())
	}
	if em, ok := e["error"].(map[string]interface{}); ok {
		return fmt.Errorf("%s: [%s] %s: %s", msg, res.Status(), em["type"], em["reason"])
	}
	return fmt.Errorf("%s: [%s] %v", msg, res.Status(), e["error"])
}
