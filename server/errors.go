package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/spektr-org/gccdash/engine"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Code: code, Message: message})
}

// writeEngineError reports an engine error outside of an operation outcome.
func writeEngineError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), engine.Code(err), engine.ErrorMessage(err).Text)
}

// statusFor maps engine errors to HTTP statuses. Guided states (no criteria,
// no match) are not failures of the request.
func statusFor(err error) int {
	switch {
	case err == nil,
		errors.Is(err, engine.ErrEmptyCriteria),
		errors.Is(err, engine.ErrNoMatch):
		return http.StatusOK
	case errors.Is(err, engine.ErrNoData):
		return http.StatusServiceUnavailable
	case errors.Is(err, engine.ErrStaleSelection),
		errors.Is(err, engine.ErrNoSelection):
		return http.StatusConflict
	case errors.Is(err, engine.ErrBadIndex),
		errors.Is(err, engine.ErrUnknownAxis):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Request body must be valid JSON.")
		return false
	}
	return true
}
