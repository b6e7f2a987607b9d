// Package server exposes the listings of an extracted schema as a read-only
// JSON API.
package server

import (
	"context"
	"dbdocs/internal/filter"
	"dbdocs/internal/listing"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	pages    map[listing.PageType]*listing.Page
	database string
	port     int
}

type Config struct {
	Pages    map[listing.PageType]*listing.Page
	Database string
	Port     int
}

func New(cfg Config) *Server {
	return &Server{
		pages:    cfg.Pages,
		database: cfg.Database,
		port:     cfg.Port,
	}
}

// PageSummary describes one listing in the index.
type PageSummary struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Rows  int    `json:"rows"`
}

type ButtonResponse struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Token  string `json:"token"`
	Active bool   `json:"active"`
}

// PageResponse is a filtered listing.
type PageResponse struct {
	Page    string           `json:"page"`
	Title   string           `json:"title"`
	Filter  string           `json:"filter"`
	Buttons []ButtonResponse `json:"buttons"`
	Header  []string         `json:"header"`
	Rows    [][]string       `json:"rows"`
	Visible []int            `json:"visible"`
	Total   int              `json:"total"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler returns the router of the API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		requestLogger,
		middleware.Recoverer,
	)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": s.database})
	})

	r.Route("/api/pages", func(r chi.Router) {
		r.Get("/", s.handleIndex)
		r.Get("/{page}", s.handlePage)
	})

	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	summaries := make([]PageSummary, 0, len(listing.PageTypes))
	for _, p := range listing.PageTypes {
		page, ok := s.pages[p]
		if !ok {
			continue
		}
		summaries = append(summaries, PageSummary{Name: string(p), Title: page.Title, Rows: page.Data.Len()})
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	pt, err := listing.ParsePageType(chi.URLParam(r, "page"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	page, ok := s.pages[pt]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("page %s was not built", pt)})
		return
	}

	// Each request gets its own controller; the page data is shared and never
	// mutated.
	c := page.Controller(nil)
	if token := r.URL.Query().Get("filter"); token != "" {
		c.SetFilter(token)
	}

	writeJSON(w, http.StatusOK, pageResponse(page, c))
}

func pageResponse(page *listing.Page, c *filter.Controller) PageResponse {
	resp := PageResponse{
		Page:    string(page.Type),
		Title:   page.Title,
		Filter:  c.ActiveToken(),
		Header:  page.Data.Header,
		Visible: c.Visible(),
		Total:   page.Data.Len(),
	}

	for _, b := range c.Buttons() {
		resp.Buttons = append(resp.Buttons, ButtonResponse(b))
	}

	resp.Rows = make([][]string, 0, len(resp.Visible))
	for _, idx := range resp.Visible {
		resp.Rows = append(resp.Rows, page.Data.Rows[idx])
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", middleware.GetReqID(r.Context())).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// Serve runs the API until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Info().Str("addr", fmt.Sprintf("http://localhost:%d", s.port)).Msg("starting API server")

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		log.Debug().Msg("shutting down API server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
