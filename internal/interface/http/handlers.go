package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROBES
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves basic service information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSONError(w, http.StatusNotFound, "not_found", "no such endpoint")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":    "dota-pulse-bot",
		"version": s.config.Version,
		"endpoints": map[string]string{
			"health": "/health",
			"ready":  "/ready",
			"live":   "/live",
		},
	})
}

// handleLive reports process liveness. Always 200 while the server runs.
func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// handleHealth reports liveness plus uptime.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"uptime_ms": s.Uptime().Milliseconds(),
	})
}

// handleReady pings the backing stores. A failed ping answers 503 so the
// orchestrator holds traffic until the stores recover.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{}
	ready := true

	for name, pinger := range map[string]Pinger{
		"postgres": s.deps.Postgres,
		"redis":    s.deps.Redis,
	} {
		if pinger == nil {
			continue
		}
		if err := pinger.Ping(ctx); err != nil {
			checks[name] = err.Error()
			ready = false
		} else {
			checks[name] = "ok"
		}
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]interface{}{
		"ready":  ready,
		"checks": checks,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// ADMIN SURFACE
// ══════════════════════════════════════════════════════════════════════════════

// adminAuth guards admin endpoints with a bearer token. The configured
// value is a bcrypt hash, so a leaked config file does not leak the token.
func (s *Server) adminAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.config.AdminTokenHash == "" {
			writeJSONError(w, http.StatusNotFound, "not_found", "admin surface disabled")
			return
		}

		token, ok := bearerToken(r)
		if !ok {
			w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(s.config.AdminTokenHash), []byte(token)); err != nil {
			writeJSONError(w, http.StatusForbidden, "forbidden", "invalid token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(auth, prefix))
	return token, token != ""
}

// handleStats serves the bot update-loop counters.
func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	if s.deps.BotStats == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "unavailable", "bot stats not wired")
		return
	}
	writeJSON(w, http.StatusOK, s.deps.BotStats.GetStats())
}

// handleMetrics serves the per-command metrics snapshot.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	if s.deps.Metrics == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "unavailable", "metrics not wired")
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Metrics.Snapshot())
}

// handleJobs lists registered scheduler jobs with their next run times.
func (s *Server) handleJobs(w http.ResponseWriter, _ *http.Request) {
	if s.deps.Jobs == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "unavailable", "scheduler not wired")
		return
	}

	jobs := s.deps.Jobs.ListJobs()
	out := make([]map[string]interface{}, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, map[string]interface{}{
			"name":        j.Name,
			"description": j.Description,
			"enabled":     j.Enabled,
			"schedule":    j.Schedule,
			"last_run":    j.LastRun,
			"next_run":    j.NextRun,
			"run_count":   j.RunCount,
			"fail_count":  j.FailCount,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleJobHistory serves recent job results, newest first.
func (s *Server) handleJobHistory(w http.ResponseWriter, r *http.Request) {
	if s.deps.Jobs == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "unavailable", "scheduler not wired")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	history := s.deps.Jobs.GetHistory(limit)
	out := make([]map[string]interface{}, 0, len(history))
	for _, res := range history {
		entry := map[string]interface{}{
			"job":          res.JobName,
			"started_at":   res.StartedAt,
			"completed_at": res.CompletedAt,
			"duration_ms":  res.Duration.Milliseconds(),
			"success":      res.Success,
		}
		if res.Error != nil {
			entry["error"] = res.Error.Error()
		}
		out = append(out, entry)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleEvents serves domain event counters from the audit handler.
func (s *Server) handleEvents(w http.ResponseWriter, _ *http.Request) {
	if s.deps.Events == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "unavailable", "event audit not wired")
		return
	}

	counts := s.deps.Events.Counts()
	out := make(map[string]int64, len(counts))
	for eventType, n := range counts {
		out[string(eventType)] = n
	}
	writeJSON(w, http.StatusOK, out)
}
