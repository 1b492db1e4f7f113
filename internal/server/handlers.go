package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/leapstack-labs/salesprep/internal/dataset"
)

const defaultRunsLimit = 20

type errorResponse struct {
	Error string `json:"error"`
}

type summaryResponse struct {
	dataset.Summary
	Source   string    `json:"source"`
	LoadedAt time.Time `json:"loaded_at"`
}

type salesResponse struct {
	Count int                   `json:"count"`
	Sales []dataset.SalesRecord `json:"sales"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, errorResponse{Error: fmt.Sprintf(format, args...)})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	_, summary, loadedAt := s.snapshot()
	writeJSON(w, http.StatusOK, summaryResponse{
		Summary:  summary,
		Source:   s.cfg.SalesPath,
		LoadedAt: loadedAt,
	})
}

// intParam parses an optional non-negative integer query parameter.
func intParam(r *http.Request, name string, maxValue int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 || (maxValue > 0 && v > maxValue) {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return v, nil
}

func (s *Server) handleSales(w http.ResponseWriter, r *http.Request) {
	var (
		f   dataset.SalesFilter
		err error
	)
	if f.Year, err = intParam(r, "year", 0); err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	if f.Month, err = intParam(r, "month", 12); err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	if f.Limit, err = intParam(r, "limit", 0); err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	f.State = r.URL.Query().Get("state")
	f.Category = r.URL.Query().Get("category")

	records, _, _ := s.snapshot()
	sales := dataset.Select(records, f)
	writeJSON(w, http.StatusOK, salesResponse{Count: len(sales), Sales: sales})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "run history not configured")
		return
	}

	limit, err := intParam(r, "limit", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	if limit == 0 {
		limit = defaultRunsLimit
	}

	runs, err := s.cfg.Store.ListRuns(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list runs", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// handleEvents streams a "reload" server-sent event after every dataset reload.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := s.notifier.subscribe()
	defer s.notifier.unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ch:
			_, summary, _ := s.snapshot()
			if _, err := fmt.Fprintf(w, "event: reload\ndata: {\"rows\":%d}\n\n", summary.Rows); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
