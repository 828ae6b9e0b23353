package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

const (
	contentTypeHeader      = "Content-Type"
	applicationJSON        = "application/json"
	textHTML               = "text/html; charset=utf-8"
	failedToEncodeResponse = "failed to encode response"
	maxBodyBytes           = 1 << 20
)

type errorResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

func (s *APIServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(contentTypeHeader, applicationJSON)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error(failedToEncodeResponse, slog.String("error", err.Error()))
	}
}

func (s *APIServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Message: message})
}

// writeValidationError lists every joined violation.
func (s *APIServer) writeValidationError(w http.ResponseWriter, err error) {
	resp := errorResponse{Message: "validation failed"}

	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			resp.Errors = append(resp.Errors, e.Error())
		}
	} else {
		resp.Errors = []string{err.Error()}
	}

	s.writeJSON(w, http.StatusUnprocessableEntity, resp)
}

func (s *APIServer) writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	s.writeError(w, http.StatusInternalServerError, "internal server error")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}
