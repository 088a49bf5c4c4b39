package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"saleor-stripe-app/internal/apperror"
	"saleor-stripe-app/internal/logcontext"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error           string   `json:"error"`
	ConfigurationID string   `json:"configurationId,omitempty"`
	Errors          []string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperror.StatusCode(err)
	if status >= http.StatusInternalServerError {
		s.Logger.ErrorContext(r.Context(), "Request failed", "error", err, "status", status)
	} else {
		s.Logger.WarnContext(r.Context(), "Request rejected", "error", err, "status", status)
	}

	resp := errorResponse{Error: err.Error()}
	var notFound *apperror.EntryNotFoundError
	if errors.As(err, &notFound) {
		resp.ConfigurationID = notFound.ConfigurationID
	}
	var report *apperror.UnexpectedReportError
	if errors.As(err, &report) {
		resp.Errors = report.Errors
	}
	writeJSON(w, status, resp)
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(apperror.ErrInvalidInput, "reading request body")
	}
	return body, nil
}

func decodeBody(r *http.Request, out any) error {
	body, err := readBody(r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(apperror.ErrInvalidInput, err.Error())
	}
	return nil
}

// withRequestContext sets a request id as a correlation id for all logs in scope.
func (s *Server) withRequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logcontext.AppendCtx(r.Context(), slog.String("requestId", uuid.NewString()))
		s.Logger.DebugContext(ctx, "Handling request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
