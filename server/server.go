// Package server exposes a built subgraph schema over HTTP: the SDL, the
// introspection result, the entity manifest and query validation.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	subgraph "github.com/AstarNetwork/yoki2-subgraph"
	"github.com/AstarNetwork/yoki2-subgraph/config"
	"github.com/AstarNetwork/yoki2-subgraph/errors"
	"github.com/AstarNetwork/yoki2-subgraph/introspection"
	"github.com/AstarNetwork/yoki2-subgraph/validation"
)

const maxBodyBytes = 1 << 20

type Server struct {
	cfg       *config.Config
	schema    *subgraph.Schema
	validator *validation.Validator
	logger    *zap.Logger

	sdl           []byte
	introspection []byte
}

// New prepares the read-only views of schema. The schema is never modified
// afterwards, so handlers share them without locking.
func New(cfg *config.Config, schema *subgraph.Schema, logger *zap.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if schema == nil {
		return nil, fmt.Errorf("nil schema")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	introspected, err := introspection.JSON(schema)
	if err != nil {
		return nil, fmt.Errorf("introspect schema: %w", err)
	}
	return &Server{
		cfg:    cfg,
		schema: schema,
		validator: validation.New(schema,
			validation.MaxFirst(cfg.Schema.MaxFirst),
			validation.MaxSkip(cfg.Schema.MaxSkip),
			validation.Logger(logger),
		),
		logger:        logger,
		sdl:           []byte(schema.SDL()),
		introspection: introspected,
	}, nil
}

// Router returns the HTTP routes of the service.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Logger(s.logger))
	r.Use(Metrics)
	r.Use(Recovery(s.logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Get("/schema.graphql", s.handleSDL)
	r.Get("/schema.json", s.handleIntrospection)
	r.Get("/entities", HandleError(s.handleEntities))
	r.Post("/validate", HandleError(s.handleValidate))

	if s.cfg.Metrics.Enabled {
		r.Handle(s.cfg.Metrics.Path, promhttp.Handler())
		s.logger.Info("Metrics enabled", zap.String("path", s.cfg.Metrics.Path))
	}
	return r
}

// NewHTTPServer binds handler to the configured address and timeouts.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

// Run serves until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	srv := NewHTTPServer(s.cfg.Server, s.Router())
	return ServeAndWait(ctx, s.logger, srv, s.cfg.Server.ShutdownTimeout)
}

func (s *Server) handleSDL(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/graphql; charset=utf-8")
	_, _ = w.Write(s.sdl)
}

func (s *Server) handleIntrospection(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(s.introspection)
}

func (s *Server) handleEntities(w http.ResponseWriter, _ *http.Request) error {
	return writeJSON(w, map[string]interface{}{"entities": s.schema.Entities()})
}

// ValidateResponse is the body returned by POST /validate.
type ValidateResponse struct {
	Valid  bool              `json:"valid"`
	Errors errors.MultiError `json:"errors,omitempty"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) error {
	var params validation.Params
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&params); err != nil {
		return BadRequest("invalid request body", err)
	}
	if params.Query == "" {
		return BadRequest("missing query", nil)
	}
	setOperationName(r.Context(), params.OperationName)

	errs := s.validator.Validate(params)
	return writeJSON(w, ValidateResponse{Valid: len(errs) == 0, Errors: errs})
}

func writeJSON(w http.ResponseWriter, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	return nil
}
