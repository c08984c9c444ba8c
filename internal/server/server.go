// Package server exposes the exported tables over HTTP. Table records are
// read back from the parquet exports and memoized in a TTL cache so repeated
// dashboard requests do not re-read the files.
package server

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"tradestats/internal/cache"
	"tradestats/internal/config"
	"tradestats/internal/exporter"
	"tradestats/internal/frame"
)

// Server serves the processed trade-statistics tables.
type Server struct {
	cfg    *config.Config
	cache  *cache.Cache[*frame.Frame]
	logger *slog.Logger
}

// New builds a server over the processed-data directory from cfg.
func New(cfg *config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:    cfg,
		cache:  cache.New[*frame.Frame](cfg.Cache.TTL),
		logger: logger.With(slog.String("component", "server")),
	}
}

// Router assembles the chi router with the middleware stack.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	if s.cfg.Server.RateLimit.Enabled {
		r.Use(rateLimit(s.cfg.Server.RateLimit, s.logger))
	}

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/tables", s.handleListTables)
		r.Get("/tables/{tableID}", s.handleGetTable)
		r.Get("/cache", s.handleCacheStats)
		r.Post("/cache/clear", s.handleCacheClear)
	})

	return r
}

// tableInfo describes one table in the list endpoint.
type tableInfo struct {
	TableID     string `json:"table_id"`
	LogicalName string `json:"logical_name"`
	SourceFile  string `json:"source_file"`
	Exported    bool   `json:"exported"`
}

// handleHealth handles GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

// handleListTables handles GET /api/tables: every known table identifier,
// flagged with whether its parquet export exists on disk.
func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	ids := config.AllTableIDs()
	tables := make([]tableInfo, 0, len(ids))
	for _, id := range ids {
		file, _ := config.TableFile(id)
		_, err := os.Stat(s.cfg.Paths.ParquetPath(id))
		tables = append(tables, tableInfo{
			TableID:     id,
			LogicalName: config.LogicalName(id),
			SourceFile:  file,
			Exported:    err == nil,
		})
	}

	render.JSON(w, r, map[string]any{
		"status": "success",
		"data":   tables,
		"count":  len(tables),
	})
}

// handleGetTable handles GET /api/tables/{tableID}: the exported records as
// JSON, served through the TTL cache.
func (s *Server) handleGetTable(w http.ResponseWriter, r *http.Request) {
	tableID := chi.URLParam(r, "tableID")
	if !config.IsValidTable(tableID) {
		respondError(w, r, errNotFound("UNKNOWN_TABLE",
			fmt.Sprintf("unknown table identifier %q", tableID)))
		return
	}

	f, err := s.cache.GetOrCompute(tableID, func() (*frame.Frame, error) {
		return exporter.ReadParquet(s.cfg.Paths.ParquetPath(tableID))
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			respondError(w, r, errNotFound("TABLE_NOT_EXPORTED",
				fmt.Sprintf("table %q has no parquet export; run the pipeline first", tableID)))
			return
		}
		s.logger.ErrorContext(r.Context(), "failed to read table export",
			slog.String("table_id", tableID),
			slog.String("error", err.Error()))
		respondError(w, r, errInternal("failed to read table export"))
		return
	}

	render.JSON(w, r, map[string]any{
		"status":   "success",
		"table_id": tableID,
		"columns":  f.Names(),
		"data":     frameRecords(f),
		"count":    f.NumRows(),
	})
}

// handleCacheStats handles GET /api/cache.
func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	stats := s.cache.Stats()
	render.JSON(w, r, map[string]any{
		"status": "success",
		"data": map[string]any{
			"entries":     stats.Entries,
			"hits":        stats.Hits,
			"misses":      stats.Misses,
			"ttl_seconds": stats.TTL.Seconds(),
		},
	})
}

// handleCacheClear handles POST /api/cache/clear.
func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	s.cache.Clear()
	s.logger.InfoContext(r.Context(), "cache cleared",
		slog.String("request_id", middleware.GetReqID(r.Context())))
	render.JSON(w, r, map[string]string{"status": "success"})
}

// frameRecords flattens a frame into record-oriented maps. Missing cells
// become JSON nulls.
func frameRecords(f *frame.Frame) []map[string]any {
	records := make([]map[string]any, 0, f.NumRows())
	for r := 0; r < f.NumRows(); r++ {
		rec := make(map[string]any, f.NumCols())
		for c := 0; c < f.NumCols(); c++ {
			col := f.ColumnAt(c)
			if col.IsMissing(r) {
				rec[col.Name] = nil
				continue
			}
			switch col.Kind {
			case frame.Number:
				rec[col.Name] = col.Nums[r]
			default:
				rec[col.Name] = col.Text[r]
			}
		}
		records = append(records, rec)
	}
	return records
}
