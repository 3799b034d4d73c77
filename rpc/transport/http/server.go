package http

import (
	"errors"
	"github.com/ValentinKolb/japi/lib/model"
	"github.com/ValentinKolb/japi/rpc/common"
	"github.com/ValentinKolb/japi/rpc/serializer"
	"github.com/ValentinKolb/japi/rpc/transport"
	"net/http"
	"strconv"
	"time"
)

// NewDocumentServer creates a read-only JSON:API endpoint that answers requests with
// documents from the given fetcher (usually a memory fetcher with fixtures).
// Wire type names are resolved with the registry.
//
// Routes:
//
//	GET /{type}                  -> FetchDocument (collection)
//	GET /{type}/{id}             -> FetchDocument (single resource)
//	GET /{type}/{id}/{relation}  -> FetchHasMany or FetchBelongsTo
func NewDocumentServer(registry *model.Registry, source transport.IDocumentFetcher, s serializer.IDocumentSerializer, debug bool) http.Handler {
	srv := &documentServer{
		registry:   registry,
		source:     source,
		serializer: s,
	}

	// Create a new HTTP mux
	mux := http.NewServeMux()

	// Register handler
	handlers := map[string]http.HandlerFunc{
		"GET /{type}":                 srv.handleCollection,
		"GET /{type}/{id}":            srv.handleResource,
		"GET /{type}/{id}/{relation}": srv.handleRelated,
	}
	for pattern, handler := range handlers {
		if debug {
			mux.HandleFunc(pattern, loggerMiddleware(handler))
		} else {
			mux.HandleFunc(pattern, handler)
		}
	}
	return mux
}

type documentServer struct {
	registry   *model.Registry
	source     transport.IDocumentFetcher
	serializer serializer.IDocumentSerializer
}

// --------------------------------------------------------------------------
// Handlers
// --------------------------------------------------------------------------

func (s *documentServer) handleCollection(w http.ResponseWriter, r *http.Request) {
	m, ok := s.resolve(w, r)
	if !ok {
		return
	}
	doc, err := s.source.FetchDocument(r.Context(), m.Name(), "", DecodeOptions(r.URL.Query()))
	s.respond(w, doc, err)
}

func (s *documentServer) handleResource(w http.ResponseWriter, r *http.Request) {
	m, ok := s.resolve(w, r)
	if !ok {
		return
	}
	doc, err := s.source.FetchDocument(r.Context(), m.Name(), r.PathValue("id"), DecodeOptions(r.URL.Query()))
	s.respond(w, doc, err)
}

func (s *documentServer) handleRelated(w http.ResponseWriter, r *http.Request) {
	m, ok := s.resolve(w, r)
	if !ok {
		return
	}

	id, relation := r.PathValue("id"), r.PathValue("relation")
	var (
		doc *common.Document
		err error
	)
	switch _, kind, _ := m.Relationship(relation); kind {
	case model.RelationHasMany:
		doc, err = s.source.FetchHasMany(r.Context(), m.Name(), id, relation)
	case model.RelationBelongsTo:
		doc, err = s.source.FetchBelongsTo(r.Context(), m.Name(), id, relation)
	default:
		s.writeError(w, http.StatusNotFound, "Unknown relationship", m.Name()+" has no relationship "+relation)
		return
	}
	s.respond(w, doc, err)
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// resolve maps the {type} path value to a registered model, writing a 404 if there is none
func (s *documentServer) resolve(w http.ResponseWriter, r *http.Request) (*model.Model, bool) {
	m, err := s.registry.Resolve(r.PathValue("type"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, "Unknown type", err.Error())
		return nil, false
	}
	return m, true
}

// respond writes the document or maps the fetch error to a status code
func (s *documentServer) respond(w http.ResponseWriter, doc *common.Document, err error) {
	var apiErr *common.APIError
	switch {
	case err == nil:
		s.write(w, http.StatusOK, doc)
	case errors.As(err, &apiErr):
		s.write(w, apiErr.StatusCode, &common.Document{Errors: apiErr.Errors})
	case errors.Is(err, transport.ErrDocumentNotFound):
		s.writeError(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
	}
}

func (s *documentServer) writeError(w http.ResponseWriter, status int, title, detail string) {
	s.write(w, status, &common.Document{Errors: []common.ErrorObject{{
		Status: strconv.Itoa(status),
		Title:  title,
		Detail: detail,
	}}})
}

func (s *documentServer) write(w http.ResponseWriter, status int, doc *common.Document) {
	body, err := s.serializer.Serialize(doc)
	if err != nil {
		http.Error(w, "Failed to serialize document", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", s.serializer.ContentType())
	w.WriteHeader(status)
	if _, err = w.Write(body); err != nil {
		Logger.Errorf("Failed to write response: %v", err)
	}
}

// --------------------------------------------------------------------------
// Middleware (logging)
// --------------------------------------------------------------------------

// responseWriter is a custom ResponseWriter that captures status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code before writing it
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// loggerMiddleware is a middleware that logs HTTP requests
func loggerMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create custom response writer to capture status code
		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		// Process request
		next.ServeHTTP(rw, r)

		// Log the request
		duration := time.Since(start)
		Logger.Debugf("%s %s => %d took %s", r.Method, r.URL.Path, rw.statusCode, duration)
	}
}
