package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ValentinKolb/japi/lib/model"
	"github.com/ValentinKolb/japi/rpc/common"
	"github.com/ValentinKolb/japi/rpc/serializer"
	"github.com/ValentinKolb/japi/rpc/transport"
	"github.com/ValentinKolb/japi/rpc/transport/memory"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --------------------------------------------------------------------------
// Fixtures
// --------------------------------------------------------------------------

const articleJSON = `{
  "data": {
    "type": "articles",
    "id": "1",
    "attributes": {"title": "JSON:API paints my bikeshed!"},
    "relationships": {
      "author": {"data": {"type": "people", "id": "9"}},
      "comments": {"data": [{"type": "comments", "id": "5"}]}
    }
  }
}`

func testRegistry(t *testing.T) *model.Registry {
	t.Helper()
	registry, err := model.NewRegistry(
		model.New("article", model.WithBelongsTo("author", "person"), model.WithHasMany("comments", "comment")),
		model.New("person"),
		model.New("comment"),
	)
	require.NoError(t, err)
	return registry
}

// newDocumentServer starts a document server backed by a memory fetcher.
func newDocumentServer(t *testing.T) (*httptest.Server, *memory.Fetcher) {
	t.Helper()
	source := memory.NewMemoryFetcher()
	source.PutCollection("person", &common.Document{Data: common.CollectionData(
		common.Resource{Type: "people", ID: "9", Attributes: map[string]any{"firstName": "Dan"}},
		common.Resource{Type: "people", ID: "2", Attributes: map[string]any{"firstName": "Jane"}},
	)})
	source.PutDocument("article", "1", &common.Document{
		Data: common.SingleData(common.Resource{
			Type:       "articles",
			ID:         "1",
			Attributes: map[string]any{"title": "JSON:API paints my bikeshed!"},
			Relationships: map[string]common.Relationship{
				"author": common.ToOne(common.Identifier{Type: "people", ID: "9"}),
			},
		}),
		Included: []common.Resource{{Type: "people", ID: "9"}},
	})
	source.PutRelated("article", "1", "comments", &common.Document{Data: common.CollectionData(
		common.Resource{Type: "comments", ID: "5"},
	)})
	source.PutRelated("article", "1", "author", &common.Document{Data: common.SingleData(
		common.Resource{Type: "people", ID: "9"},
	)})

	server := httptest.NewServer(NewDocumentServer(testRegistry(t), source, serializer.NewJSONSerializer(), true))
	t.Cleanup(server.Close)
	return server, source
}

func connect(t *testing.T, config common.ClientConfig) transport.IDocumentFetcher {
	t.Helper()
	f := NewHTTPFetcher(serializer.NewJSONSerializer())
	require.NoError(t, f.Connect(config))
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func configFor(endpoints ...string) common.ClientConfig {
	config := common.DefaultClientConfig()
	config.Endpoints = endpoints
	config.RetryCount = 1
	return config
}

// --------------------------------------------------------------------------
// Fetches against the document server
// --------------------------------------------------------------------------

func TestFetchFromDocumentServer(t *testing.T) {
	server, _ := newDocumentServer(t)
	f := connect(t, configFor(server.URL))
	ctx := context.Background()

	t.Run("collection", func(t *testing.T) {
		doc, err := f.FetchDocument(ctx, "person", "", nil)
		require.NoError(t, err)
		require.True(t, doc.Data.IsCollection())
		require.Len(t, doc.Data.Resources(), 2)
		assert.Equal(t, "9", doc.Data.Resources()[0].ID)
		assert.Equal(t, "Jane", doc.Data.Resources()[1].Attributes["firstName"])
	})

	t.Run("single resource", func(t *testing.T) {
		doc, err := f.FetchDocument(ctx, "article", "1", &common.FetchOptions{Include: []string{"author"}})
		require.NoError(t, err)
		res, ok := doc.Data.One()
		require.True(t, ok)
		assert.Equal(t, "JSON:API paints my bikeshed!", res.Attributes["title"])
		require.Len(t, doc.Included, 1)

		ids, many, present, err := res.Relationships["author"].Linkage()
		require.NoError(t, err)
		assert.True(t, present)
		assert.False(t, many)
		assert.Equal(t, []common.Identifier{{Type: "people", ID: "9"}}, ids)
	})

	t.Run("related", func(t *testing.T) {
		doc, err := f.FetchHasMany(ctx, "article", "1", "comments")
		require.NoError(t, err)
		assert.Len(t, doc.Data.Resources(), 1)

		doc, err = f.FetchBelongsTo(ctx, "article", "1", "author")
		require.NoError(t, err)
		res, ok := doc.Data.One()
		require.True(t, ok)
		assert.Equal(t, "9", res.ID)
	})

	t.Run("shape mismatch", func(t *testing.T) {
		_, err := f.FetchHasMany(ctx, "article", "1", "author")
		assert.Error(t, err)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := f.FetchDocument(ctx, "article", "404", nil)
		require.ErrorIs(t, err, transport.ErrHTTPStatus)

		var apiErr *common.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
		require.Len(t, apiErr.Errors, 1)
		assert.Equal(t, "404", apiErr.Errors[0].Status)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := f.FetchDocument(ctx, "tag", "1", nil)
		var apiErr *common.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
		assert.Equal(t, "Unknown type", apiErr.Errors[0].Title)
	})
}

func TestDocumentServerPassesAPIErrors(t *testing.T) {
	server, source := newDocumentServer(t)
	f := connect(t, configFor(server.URL))

	source.FailWith(&common.APIError{
		StatusCode: http.StatusForbidden,
		Status:     "403 Forbidden",
		Errors:     []common.ErrorObject{{Status: "403", Detail: "Editing secret powers is not authorized on Sundays."}},
	})

	_, err := f.FetchDocument(context.Background(), "article", "1", nil)
	var apiErr *common.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "Editing secret powers is not authorized on Sundays.")
}

func TestDocumentServerUnknownRelationship(t *testing.T) {
	server, _ := newDocumentServer(t)

	resp, err := http.Get(server.URL + "/articles/1/tags")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, serializer.MediaType, resp.Header.Get("Content-Type"))
}

// --------------------------------------------------------------------------
// Request construction
// --------------------------------------------------------------------------

func TestRequestConstruction(t *testing.T) {
	var (
		mu     sync.Mutex
		path   string
		query  url.Values
		header http.Header
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		path, query, header = r.URL.EscapedPath(), r.URL.Query(), r.Header.Clone()
		mu.Unlock()
		w.Header().Set("Content-Type", serializer.MediaType)
		if strings.HasSuffix(r.URL.Path, "/comments") {
			_, _ = w.Write([]byte(`{"data": []}`))
			return
		}
		_, _ = w.Write([]byte(articleJSON))
	}))
	defer server.Close()

	config := configFor(server.URL + "/api/")
	config.Headers = map[string]string{"Authorization": "Bearer secret"}
	f := connect(t, config)

	_, err := f.FetchDocument(context.Background(), "person", "a/b", &common.FetchOptions{
		Include: []string{"author", "comments.author"},
		Fields:  map[string][]string{"people": {"firstName", "lastName"}},
		Sort:    []string{"-created"},
		Filter:  map[string]string{"author": "9"},
	})
	require.NoError(t, err)

	mu.Lock()
	assert.Equal(t, "/api/people/a%2Fb", path)
	assert.Equal(t, "author,comments.author", query.Get("include"))
	assert.Equal(t, "firstName,lastName", query.Get("fields[people]"))
	assert.Equal(t, "-created", query.Get("sort"))
	assert.Equal(t, "9", query.Get("filter[author]"))
	assert.Equal(t, serializer.MediaType, header.Get("Accept"))
	assert.Equal(t, serializer.MediaType, header.Get("Content-Type"))
	assert.Equal(t, "Bearer secret", header.Get("Authorization"))
	mu.Unlock()

	_, err = f.FetchHasMany(context.Background(), "article", "1", "comments")
	require.NoError(t, err)
	mu.Lock()
	assert.Equal(t, "/api/articles/1/comments", path)
	assert.Empty(t, query)
	mu.Unlock()
}

func TestEncodeOptions(t *testing.T) {
	opts := &common.FetchOptions{
		Include: []string{"author", "comments"},
		Fields:  map[string][]string{"person": {"firstName", "lastName"}},
		Sort:    []string{"-created"},
		Filter:  map[string]string{"author": "9"},
	}

	query := EncodeOptions(opts)
	assert.Equal(t, "fields%5Bperson%5D=firstName%2ClastName&filter%5Bauthor%5D=9&include=author%2Ccomments&sort=-created", query.Encode())
	assert.Equal(t, opts, DecodeOptions(query))

	assert.Empty(t, EncodeOptions(nil))
	assert.Equal(t, &common.FetchOptions{}, DecodeOptions(url.Values{"fields[]": {"x"}, "page[size]": {"10"}}))
}

// --------------------------------------------------------------------------
// Connection handling
// --------------------------------------------------------------------------

func TestNotConnected(t *testing.T) {
	f := NewHTTPFetcher(serializer.NewJSONSerializer())
	_, err := f.FetchDocument(context.Background(), "article", "1", nil)
	assert.ErrorIs(t, err, transport.ErrNotConnected)

	require.NoError(t, f.Connect(configFor("http://localhost:1")))
	require.NoError(t, f.Close())
	_, err = f.FetchDocument(context.Background(), "article", "1", nil)
	assert.ErrorIs(t, err, transport.ErrNotConnected)
}

func TestConnectValidatesConfig(t *testing.T) {
	f := NewHTTPFetcher(serializer.NewJSONSerializer())

	assert.Error(t, f.Connect(configFor()))
	assert.Error(t, f.Connect(configFor("not a url")))

	config := configFor("http://localhost:8080")
	config.RetryCount = 0
	assert.Error(t, f.Connect(config))
}

func TestRoundRobin(t *testing.T) {
	var hits [2]atomic.Int32
	newServer := func(i int) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits[i].Add(1)
			_, _ = w.Write([]byte(articleJSON))
		}))
	}
	first, second := newServer(0), newServer(1)
	defer first.Close()
	defer second.Close()

	f := connect(t, configFor(first.URL, second.URL))
	for i := 0; i < 4; i++ {
		_, err := f.FetchDocument(context.Background(), "article", "1", nil)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), hits[0].Load())
	assert.Equal(t, int32(2), hits[1].Load())
}

func TestRetries(t *testing.T) {
	var attempts atomic.Int32
	failFirst := func(n int32) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if attempts.Add(1) <= n {
				// drop the connection without a response
				conn, _, err := w.(http.Hijacker).Hijack()
				if err == nil {
					_ = conn.Close()
				}
				return
			}
			_, _ = w.Write([]byte(articleJSON))
		}
	}

	t.Run("succeeds within retry count", func(t *testing.T) {
		attempts.Store(0)
		server := httptest.NewServer(failFirst(2))
		defer server.Close()

		config := configFor(server.URL)
		config.RetryCount = 3
		f := connect(t, config)

		doc, err := f.FetchDocument(context.Background(), "article", "1", nil)
		require.NoError(t, err)
		assert.False(t, doc.Data.IsCollection())
		assert.Equal(t, int32(3), attempts.Load())
	})

	t.Run("gives up", func(t *testing.T) {
		attempts.Store(0)
		server := httptest.NewServer(failFirst(1000))
		defer server.Close()

		config := configFor(server.URL)
		config.RetryCount = 2
		f := connect(t, config)

		_, err := f.FetchDocument(context.Background(), "article", "1", nil)
		require.Error(t, err)
		assert.GreaterOrEqual(t, attempts.Load(), int32(2))
	})

	t.Run("stops on canceled context", func(t *testing.T) {
		config := configFor("http://localhost:1")
		config.RetryCount = 5
		f := connect(t, config)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := f.FetchDocument(ctx, "article", "1", nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestCircuitBreaker(t *testing.T) {
	newServer := func(status int, hits *atomic.Int32) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"errors":[{"status":"` + http.StatusText(status) + `"}]}`))
		}))
	}
	breakerConfig := func(endpoint string) common.ClientConfig {
		config := configFor(endpoint)
		config.Breaker = common.BreakerConfig{
			Enabled:          true,
			MaxRequests:      1,
			TimeoutSecond:    60,
			FailureThreshold: 0.5,
			MinRequests:      2,
		}
		return config
	}

	t.Run("opens on server errors", func(t *testing.T) {
		var hits atomic.Int32
		server := newServer(http.StatusInternalServerError, &hits)
		defer server.Close()
		f := connect(t, breakerConfig(server.URL))

		for i := 0; i < 2; i++ {
			_, err := f.FetchDocument(context.Background(), "article", "1", nil)
			assert.ErrorIs(t, err, transport.ErrHTTPStatus)
		}
		_, err := f.FetchDocument(context.Background(), "article", "1", nil)
		assert.True(t, errors.Is(err, gobreaker.ErrOpenState), "got %v", err)
		assert.Equal(t, int32(2), hits.Load())
	})

	t.Run("ignores client errors", func(t *testing.T) {
		var hits atomic.Int32
		server := newServer(http.StatusNotFound, &hits)
		defer server.Close()
		f := connect(t, breakerConfig(server.URL))

		for i := 0; i < 4; i++ {
			_, err := f.FetchDocument(context.Background(), "article", "1", nil)
			assert.ErrorIs(t, err, transport.ErrHTTPStatus)
		}
		assert.Equal(t, int32(4), hits.Load())
	})
}
