package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T, h http.HandlerFunc) *PoolIndex {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewPoolIndex(es, "pools", nil)
}

func TestSearchPools(t *testing.T) {
	var lastPath, lastBody string
	idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		lastPath, lastBody = r.URL.Path, string(body)
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_id":"p2"},{"_id":"p1"}]}}`))
	})

	ids, err := idx.SearchPools(context.Background(), "rice", "ACTIVE", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p1"}, ids)
	assert.True(t, strings.HasSuffix(lastPath, "/pools/_search"))

	var q map[string]any
	require.NoError(t, json.Unmarshal([]byte(lastBody), &q))
	assert.Contains(t, lastBody, `"status":"ACTIVE"`)
}

func TestSearchPools_ErrorStatus(t *testing.T) {
	idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"down"}`))
	})

	_, err := idx.SearchPools(context.Background(), "rice", "", 0)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestPoolIndex_Disabled(t *testing.T) {
	var idx *PoolIndex
	_, err := idx.SearchPools(context.Background(), "rice", "", 10)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NoError(t, idx.EnsureIndex(context.Background()))
	idx.IndexPool(context.Background(), nil)
	idx.DeletePool(context.Background(), "p1")
}
