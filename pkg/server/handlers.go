package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Sumatoshi-tech/threadlens/pkg/aggregate"
	"github.com/Sumatoshi-tech/threadlens/pkg/analysis"
	"github.com/Sumatoshi-tech/threadlens/pkg/cache"
	"github.com/Sumatoshi-tech/threadlens/pkg/chartspec"
	"github.com/Sumatoshi-tech/threadlens/pkg/progressive"
	"github.com/Sumatoshi-tech/threadlens/pkg/thread"
)

// Response headers.
const (
	HeaderCache = "X-Threadlens-Cache"
	HeaderBias  = "X-Threadlens-Bias"
)

const (
	formatHTML = "html"
	formatJSON = "json"
)

type outcome struct {
	result *analysis.Result
	err    error
	cached bool
}

type threadResponse struct {
	URL        string                  `json:"url"`
	Title      string                  `json:"title,omitempty"`
	CapturedAt time.Time               `json:"capturedAt"`
	Cached     bool                    `json:"cached"`
	HasBias    bool                    `json:"hasBias"`
	Error      string                  `json:"error,omitempty"`
	Notices    []string                `json:"notices,omitempty"`
	State      progressive.RenderState `json:"state"`
	Analysis   aggregate.Analysis      `json:"analysis"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleThread(w http.ResponseWriter, r *http.Request) {
	out, ok := s.resolve(w, r)
	if !ok {
		return
	}

	status := statusFor(out.err)

	format := r.URL.Query().Get("format")
	if format == "" {
		format = formatHTML
	}

	switch format {
	case formatHTML:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)

		if err := out.result.Sink.WritePage(w, s.opts.Title, r.URL.Query().Get("url")); err != nil {
			s.logger.ErrorContext(r.Context(), "write page", "error", err)
		}
	case formatJSON:
		snap := out.result.Snapshot
		if snap == nil {
			s.writeError(r.Context(), w, status, out.err.Error())

			return
		}

		resp := threadResponse{
			URL:        snap.URL,
			Title:      snap.Title,
			CapturedAt: snap.CapturedAt,
			Cached:     out.cached,
			HasBias:    snap.HasBias(),
			Notices:    snap.Notices,
			State:      out.result.State,
			Analysis:   aggregate.Analyze(snap.Latest()),
		}

		if out.err != nil {
			resp.Error = out.err.Error()
		}

		s.writeJSON(r.Context(), w, status, resp)
	default:
		s.writeError(r.Context(), w, http.StatusBadRequest, "format must be html or json")
	}
}

func (s *Server) handleSpecs(w http.ResponseWriter, r *http.Request) {
	out, ok := s.resolve(w, r)
	if !ok {
		return
	}

	snap := out.result.Snapshot
	if snap == nil {
		s.writeError(r.Context(), w, statusFor(out.err), out.err.Error())

		return
	}

	s.writeJSON(r.Context(), w, http.StatusOK, chartspec.Build(snap.Latest(), chartspec.BuildOptions{Title: snap.Title}))
}

func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	if s.opts.Cache == nil {
		s.writeError(r.Context(), w, http.StatusNotFound, "cache disabled")

		return
	}

	threadURL, err := thread.Detect(r.URL.Query().Get("url")).Require()
	if err != nil {
		s.writeError(r.Context(), w, http.StatusBadRequest, err.Error())

		return
	}

	if err := s.opts.Cache.Invalidate(r.Context(), threadURL); err != nil {
		s.writeError(r.Context(), w, http.StatusInternalServerError, err.Error())

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	if s.opts.Cache == nil {
		s.writeError(r.Context(), w, http.StatusNotFound, "cache disabled")

		return
	}

	stats := s.opts.Cache.Stats()

	s.writeJSON(r.Context(), w, http.StatusOK, struct {
		cache.Stats
		HitRate float64 `json:"hitRate"`
	}{stats, stats.HitRate()})
}

// resolve validates the url parameter and runs or replays the analysis. It
// writes the error response itself and reports false when nothing is left
// to render.
func (s *Server) resolve(w http.ResponseWriter, r *http.Request) (outcome, bool) {
	threadURL, err := thread.Detect(r.URL.Query().Get("url")).Require()
	if err != nil {
		s.writeError(r.Context(), w, http.StatusBadRequest, err.Error())

		return outcome{}, false
	}

	out := s.analyze(r.Context(), threadURL, r.URL.Query().Get("refresh") != "")
	if out.result == nil {
		s.writeError(r.Context(), w, statusFor(out.err), out.err.Error())

		return out, false
	}

	if out.cached {
		w.Header().Set(HeaderCache, "hit")
	} else {
		w.Header().Set(HeaderCache, "miss")
	}

	if errors.Is(out.err, progressive.ErrBiasPhase) {
		w.Header().Set(HeaderBias, "failed")
	}

	return out, true
}

// analyze serves from the cache when possible. Concurrent misses for the same
// URL share one backend run, which outlives any single request.
func (s *Server) analyze(ctx context.Context, threadURL string, refresh bool) outcome {
	if s.opts.Cache != nil && !refresh {
		snap, ok, err := s.opts.Cache.Get(ctx, threadURL)
		if err != nil {
			s.logger.WarnContext(ctx, "cache read failed", "url", threadURL, "error", err)
		}

		if ok {
			return outcome{result: s.opts.Analyzer.Replay(ctx, snap), cached: true}
		}
	}

	v, _, _ := s.group.Do(threadURL, func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.AnalyzeTimeout)
		defer cancel()

		result, err := s.opts.Analyzer.Run(runCtx, threadURL)
		if err == nil && s.opts.Cache != nil && result.Snapshot != nil {
			if putErr := s.opts.Cache.Put(runCtx, result.Snapshot); putErr != nil {
				s.logger.WarnContext(ctx, "cache write failed", "url", threadURL, "error", putErr)
			}
		}

		return outcome{result: result, err: err}, nil
	})

	out, _ := v.(outcome)

	return out
}

func statusFor(err error) int {
	switch {
	case err == nil, errors.Is(err, progressive.ErrBiasPhase):
		return http.StatusOK
	case errors.Is(err, thread.ErrInvalidThread):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, progressive.ErrSentimentPhase):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON encodes data before sending the status line, so an encoding
// failure still produces a well-formed 500 response.
func (s *Server) writeJSON(ctx context.Context, w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		s.logger.ErrorContext(ctx, "encode response", "error", err)

		status = http.StatusInternalServerError
		body, _ = json.Marshal(map[string]string{"error": "encode response: " + err.Error()}) //nolint:errchkjson // string map.
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if _, err := w.Write(append(body, '\n')); err != nil {
		s.logger.DebugContext(ctx, "write response", "error", err)
	}
}

func (s *Server) writeError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	s.writeJSON(ctx, w, status, map[string]string{"error": message})
}
