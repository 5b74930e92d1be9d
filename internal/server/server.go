// Package server exposes the packing engine over HTTP. Each request is an
// independent engine run; the server keeps no state between requests.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/piwi3910/guillocut/internal/model"
)

const (
	maxBodyBytes    = 4 << 20
	maxInFlight     = 16
	requestDeadline = 30 * time.Second
)

// Server holds the defaults applied to every request.
type Server struct {
	logger   *log.Logger
	defaults model.AppConfig
	stock    model.StockInventory
}

// New returns the HTTP handler for the packing service. Requests that leave
// settings unset get cfg's defaults, and may name a preset from stock instead
// of a bin size.
func New(logger *log.Logger, cfg model.AppConfig, stock model.StockInventory) http.Handler {
	s := &Server{logger: logger, defaults: cfg, stock: stock}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Throttle(maxInFlight))
	r.Use(middleware.Timeout(requestDeadline))

	r.Get("/healthz", makeHealthHandler())
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/pack", s.makePackHandler())
		r.Post("/compare", s.makeCompareHandler())
	})
	return r
}

func makeHealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}

// logRequests logs one line per request with status and duration.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		logf := s.logger.Info
		if status >= http.StatusInternalServerError {
			logf = s.logger.Error
		}
		logf("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"id", middleware.GetReqID(r.Context()),
		)
	})
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error()})
}

// decode reads a JSON body into v, rejecting unknown fields and bodies over
// maxBodyBytes.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("request body must hold a single JSON object")
	}
	return nil
}
