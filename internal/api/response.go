package api

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/roach88/repledger/internal/recovery"
	"github.com/roach88/repledger/internal/store"
)

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("failed to write response: %s", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps a service error to a status code. Storage failures
// are 503 and flagged retryable so the client can offer "try again".
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, recovery.ErrInvalidExerciseType):
		writeError(w, http.StatusBadRequest, err.Error())
	case recovery.IsStorageError(err):
		log.Errorf("%s failed: %s", op, err)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error:     op + " failed, storage unavailable",
			Retryable: recovery.IsRetryable(err),
		})
	default:
		log.Errorf("%s failed: %s", op, err)
		writeError(w, http.StatusInternalServerError, op+" failed")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, into any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(into)
}
