package server

import (
	"net/http"

	"golang.org/x/sync/errgroup"
)

func (s *Server) liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readiness(w http.ResponseWriter, r *http.Request) {
	g, ctx := errgroup.WithContext(r.Context())
	for _, check := range s.Readiness {
		g.Go(func() error { return check(ctx) })
	}

	if err := g.Wait(); err != nil {
		s.Logger.WarnContext(r.Context(), "Readiness check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
