package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/chaspy/toeic-assessment-poc/internal/assessment"
)

// Error codes returned in the "error" field.
const (
	CodeSessionNotFound = "session_not_found"
	CodeNotFound        = "not_found"
	CodeInvalidItem     = "invalid_item"
	CodeValidation      = "validation_error"
	CodeInsightsFailed  = "insights_generation_failed"
	CodeConflict        = "session_conflict"
	CodeInternal        = "internal_error"
	CodeUnavailable     = "unavailable"
)

const maxRequestBodyBytes = 1 << 20

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: code, Message: msg})
}

// writeEngineErr maps an engine error onto a status and error code.
// notFoundCode lets the result endpoint report a missing result rather than
// a missing session.
func (s *Server) writeEngineErr(w http.ResponseWriter, r *http.Request, err error, notFoundCode string) {
	switch {
	case errors.Is(err, assessment.ErrNotFound):
		writeErr(w, http.StatusNotFound, notFoundCode, err.Error())
	case errors.Is(err, assessment.ErrInvalidItem):
		writeErr(w, http.StatusBadRequest, CodeInvalidItem, err.Error())
	case errors.Is(err, assessment.ErrValidation):
		writeErr(w, http.StatusBadRequest, CodeValidation, err.Error())
	case errors.Is(err, assessment.ErrGeneratorUnavailable):
		writeErr(w, http.StatusBadGateway, CodeInsightsFailed, err.Error())
	case errors.Is(err, assessment.ErrConflict):
		writeErr(w, http.StatusConflict, CodeConflict, err.Error())
	default:
		s.logger.Error("unhandled engine error", zap.String("path", r.URL.Path), zap.Error(err))
		writeErr(w, http.StatusInternalServerError, CodeInternal, "internal error")
	}
}

// decode reads a JSON body into dst. Unknown fields are ignored.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErr(w, http.StatusBadRequest, CodeValidation, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}
