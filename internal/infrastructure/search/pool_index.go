package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/villagemarket/village-market/internal/domain/entity"
)

var ErrUnavailable = errors.New("search unavailable")

const requestTimeout = 3 * time.Second

// PoolIndex mirrors pools into an Elasticsearch index for full-text search.
// A nil client turns every call into a no-op or ErrUnavailable.
type PoolIndex struct {
	ES     *elasticsearch.Client
	Index  string
	Logger *logrus.Logger
}

func NewPoolIndex(es *elasticsearch.Client, index string, logger *logrus.Logger) *PoolIndex {
	return &PoolIndex{ES: es, Index: index, Logger: logger}
}

func (p *PoolIndex) enabled() bool { return p != nil && p.ES != nil && p.Index != "" }

const poolMapping = `{
  "mappings": {
    "properties": {
      "title":       {"type": "text"},
      "description": {"type": "text"},
      "category":    {"type": "keyword"},
      "status":      {"type": "keyword"},
      "state":       {"type": "keyword"},
      "city":        {"type": "text"},
      "slug":        {"type": "keyword"},
      "creator_id":  {"type": "keyword"},
      "updated_at":  {"type": "date"}
    }
  }
}`

// EnsureIndex creates the index with its mapping when missing.
func (p *PoolIndex) EnsureIndex(ctx context.Context) error {
	if !p.enabled() {
		return nil
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := p.ES.Indices.Exists([]string{p.Index}, p.ES.Indices.Exists.WithContext(c))
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = p.ES.Indices.Create(p.Index, p.ES.Indices.Create.WithBody(strings.NewReader(poolMapping)), p.ES.Indices.Create.WithContext(c))
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && !strings.Contains(res.String(), "resource_already_exists_exception") {
		return fmt.Errorf("create index %s: %s", p.Index, res.Status())
	}
	return nil
}

// IndexPool upserts a pool document. Failures are logged, not returned to
// callers on the request path.
func (p *PoolIndex) IndexPool(ctx context.Context, pool *entity.Pool) {
	if !p.enabled() || pool == nil {
		return
	}
	doc := map[string]any{
		"id":          pool.ID,
		"slug":        pool.Slug,
		"title":       pool.Title,
		"description": pool.Description,
		"category":    string(pool.Category),
		"status":      string(pool.Status),
		"state":       pool.State,
		"city":        pool.City,
		"creator_id":  pool.CreatorID,
		"updated_at":  pool.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: p.Index, DocumentID: pool.ID, Body: strings.NewReader(string(b)), Refresh: "false"}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, p.ES)
	if err != nil {
		p.warn(err, pool.ID, "es index failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && p.Logger != nil {
		p.Logger.WithField("status", res.Status()).WithField("pool_id", pool.ID).Warn("es index response error")
	}
}

func (p *PoolIndex) DeletePool(ctx context.Context, id string) {
	if !p.enabled() {
		return
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := esapi.DeleteRequest{Index: p.Index, DocumentID: id}.Do(c, p.ES)
	if err != nil {
		p.warn(err, id, "es delete failed")
		return
	}
	_ = res.Body.Close()
}

// SearchPools returns matching pool ids, best match first. status narrows
// the hits when non-empty.
func (p *PoolIndex) SearchPools(ctx context.Context, q, status string, size int) ([]string, error) {
	if !p.enabled() {
		return nil, ErrUnavailable
	}
	if size <= 0 || size > 50 {
		size = 10
	}

	boolQuery := map[string]any{
		"must": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"title^3", "description", "city^2", "state^2"},
				"fuzziness": "AUTO",
			},
		},
	}
	if status != "" {
		boolQuery["filter"] = map[string]any{"term": map[string]any{"status": status}}
	}
	b, _ := json.Marshal(map[string]any{
		"query":   map[string]any{"bool": boolQuery},
		"size":    size,
		"_source": false,
	})

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := p.ES.Search(p.ES.Search.WithContext(c), p.ES.Search.WithIndex(p.Index), p.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

func (p *PoolIndex) warn(err error, id, msg string) {
	if p.Logger != nil {
		p.Logger.WithError(err).WithField("pool_id", id).Warn(msg)
	}
}
