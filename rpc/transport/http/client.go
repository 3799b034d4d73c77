package http

import (
	"context"
	"errors"
	"fmt"
	"github.com/ValentinKolb/japi/rpc/common"
	"github.com/ValentinKolb/japi/rpc/serializer"
	"github.com/ValentinKolb/japi/rpc/transport"
	"github.com/jinzhu/inflection"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/sony/gobreaker"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"
)

var Logger = logger.GetLogger("fetcher/http")

// NewHTTPFetcher creates a fetcher for a JSON:API service. It must be connected before use.
func NewHTTPFetcher(s serializer.IDocumentSerializer) transport.IDocumentFetcher {
	return &httpFetcher{serializer: s}
}

type httpFetcher struct {
	serverURLs []*url.URL
	client     *http.Client
	counter    uint32
	retryCount int
	headers    map[string]string
	serializer serializer.IDocumentSerializer
	breaker    *gobreaker.CircuitBreaker
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IDocumentFetcher)
// --------------------------------------------------------------------------

func (f *httpFetcher) Connect(config common.ClientConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	// Parse each server URL
	parsedURLs := make([]*url.URL, len(config.Endpoints))
	for i, server := range config.Endpoints {
		parsedURL, err := url.Parse(strings.TrimRight(server, "/"))
		if err != nil {
			return err
		}
		parsedURLs[i] = parsedURL
	}

	// Create client with default transport
	client := &http.Client{
		Timeout: time.Duration(config.TimeoutSecond) * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	headers := make(map[string]string, len(config.Headers))
	for k, v := range config.Headers {
		headers[k] = v
	}

	// Set the client and server URLs
	f.client = client
	f.serverURLs = parsedURLs
	f.counter = 0
	f.retryCount = config.RetryCount
	f.headers = headers
	f.breaker = nil
	if config.Breaker.Enabled {
		f.breaker = newBreaker(config.Breaker)
	}

	// No error
	return nil
}

func (f *httpFetcher) FetchDocument(ctx context.Context, typeName, id string, opts *common.FetchOptions) (*common.Document, error) {
	segments := []string{inflection.Plural(typeName)}
	if id != "" {
		segments = append(segments, id)
	}
	return f.get(ctx, segments, EncodeOptions(opts))
}

func (f *httpFetcher) FetchHasMany(ctx context.Context, typeName, id, relationship string) (*common.Document, error) {
	doc, err := f.get(ctx, []string{inflection.Plural(typeName), id, relationship}, nil)
	if err != nil {
		return nil, err
	}
	if err := transport.CheckHasMany(doc); err != nil {
		return nil, fmt.Errorf("%w: %s#%s.%s is not a collection", err, typeName, id, relationship)
	}
	return doc, nil
}

func (f *httpFetcher) FetchBelongsTo(ctx context.Context, typeName, id, relationship string) (*common.Document, error) {
	doc, err := f.get(ctx, []string{inflection.Plural(typeName), id, relationship}, nil)
	if err != nil {
		return nil, err
	}
	if err := transport.CheckBelongsTo(doc); err != nil {
		return nil, fmt.Errorf("%w: %s#%s.%s is a collection", err, typeName, id, relationship)
	}
	return doc, nil
}

func (f *httpFetcher) Close() error {
	// Close the client
	if f.client != nil {
		f.client.CloseIdleConnections()
	}

	// Reset the client and server URLs
	f.client = nil
	f.serverURLs = nil

	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// get sends a GET request for the path segments (through the circuit breaker, if enabled)
func (f *httpFetcher) get(ctx context.Context, segments []string, query url.Values) (*common.Document, error) {
	// Check if the fetcher is initialized
	if f.client == nil {
		return nil, transport.ErrNotConnected
	}

	// Select the next server via round-robin
	idx := atomic.AddUint32(&f.counter, 1) % uint32(len(f.serverURLs))
	escaped := make([]string, len(segments))
	for i, segment := range segments {
		escaped[i] = url.PathEscape(segment)
	}
	requestURL := f.serverURLs[idx].JoinPath(escaped...)
	requestURL.RawQuery = query.Encode()

	if f.breaker == nil {
		return f.send(ctx, requestURL)
	}
	result, err := f.breaker.Execute(func() (interface{}, error) {
		return f.send(ctx, requestURL)
	})
	if err != nil {
		return nil, err
	}
	return result.(*common.Document), nil
}

// send performs the request (with retries) and decodes the response body
func (f *httpFetcher) send(ctx context.Context, requestURL *url.URL) (*common.Document, error) {
	var (
		httpResponse *http.Response
		err          error
	)
	for i := 0; i < f.retryCount; i++ {
		var httpRequest *http.Request
		httpRequest, err = http.NewRequestWithContext(ctx, http.MethodGet, requestURL.String(), nil)
		if err != nil {
			return nil, err
		}
		httpRequest.Header.Set("Accept", f.serializer.ContentType())
		httpRequest.Header.Set("Content-Type", f.serializer.ContentType())
		for k, v := range f.headers {
			httpRequest.Header.Set(k, v)
		}

		httpResponse, err = f.client.Do(httpRequest)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return nil, err
		}
		Logger.Warningf("GET %s failed (attempt %d/%d): %v", requestURL, i+1, f.retryCount, err)
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := httpResponse.Body.Close(); err != nil {
			Logger.Errorf("Failed to close response body: %v", err)
		}
	}()

	// Read the response body
	body, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return nil, err
	}
	Logger.Debugf("GET %s => %d (%d bytes)", requestURL, httpResponse.StatusCode, len(body))

	// Check if the response status code is OK
	if httpResponse.StatusCode < 200 || httpResponse.StatusCode > 299 {
		apiErr := &common.APIError{
			StatusCode: httpResponse.StatusCode,
			Status:     httpResponse.Status,
		}
		var errDoc common.Document
		if f.serializer.Deserialize(body, &errDoc) == nil {
			apiErr.Errors = errDoc.Errors
		}
		return nil, fmt.Errorf("%w: %w", transport.ErrHTTPStatus, apiErr)
	}

	doc := &common.Document{}
	if err := f.serializer.Deserialize(body, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// newBreaker creates the circuit breaker. Responses with a 4xx status count as
// successful requests, only transport failures and 5xx responses trip the breaker.
func newBreaker(config common.BreakerConfig) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "japi-http-fetcher",
		MaxRequests: config.MaxRequests,
		Interval:    time.Duration(config.IntervalSecond) * time.Second,
		Timeout:     time.Duration(config.TimeoutSecond) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Only trip if we have enough requests to make a decision
			if counts.Requests < config.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= config.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			Logger.Warningf("Circuit breaker '%s' state changed from %v to %v", name, from, to)
		},
		IsSuccessful: func(err error) bool {
			var apiErr *common.APIError
			if errors.As(err, &apiErr) {
				return apiErr.StatusCode < 500
			}
			return err == nil
		},
	})
}

// EncodeOptions converts fetch options into JSON:API query parameters.
func EncodeOptions(opts *common.FetchOptions) url.Values {
	query := url.Values{}
	if opts == nil {
		return query
	}
	if len(opts.Include) > 0 {
		query.Set("include", strings.Join(opts.Include, ","))
	}
	if len(opts.Sort) > 0 {
		query.Set("sort", strings.Join(opts.Sort, ","))
	}
	for typeName, fields := range opts.Fields {
		query.Set(fmt.Sprintf("fields[%s]", typeName), strings.Join(fields, ","))
	}
	for name, value := range opts.Filter {
		query.Set(fmt.Sprintf("filter[%s]", name), value)
	}
	return query
}

// DecodeOptions is the inverse of EncodeOptions.
func DecodeOptions(query url.Values) *common.FetchOptions {
	opts := &common.FetchOptions{}
	if v := query.Get("include"); v != "" {
		opts.Include = strings.Split(v, ",")
	}
	if v := query.Get("sort"); v != "" {
		opts.Sort = strings.Split(v, ",")
	}
	for key, values := range query {
		if len(values) == 0 {
			continue
		}
		if name, ok := bracketed(key, "fields"); ok {
			if opts.Fields == nil {
				opts.Fields = map[string][]string{}
			}
			opts.Fields[name] = strings.Split(values[0], ",")
		}
		if name, ok := bracketed(key, "filter"); ok {
			if opts.Filter == nil {
				opts.Filter = map[string]string{}
			}
			opts.Filter[name] = values[0]
		}
	}
	return opts
}

// bracketed extracts "name" from "prefix[name]".
func bracketed(key, prefix string) (string, bool) {
	if !strings.HasPrefix(key, prefix+"[") || !strings.HasSuffix(key, "]") {
		return "", false
	}
	name := key[len(prefix)+1 : len(key)-1]
	return name, name != ""
}

