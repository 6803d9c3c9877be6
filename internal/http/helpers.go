package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"triplog/internal/core"
	"triplog/internal/log"
	"triplog/internal/ports"
	"triplog/internal/services"
	"triplog/internal/storage"
	"triplog/internal/voice"
)

const maxBodyBytes = 1 << 20

// errorResponse is the body of every failed request. Validation failures
// of a voice capture also carry the draft so the client can correct it.
type errorResponse struct {
	Error        string      `json:"error"`
	Kind         string      `json:"kind,omitempty"`
	Field        string      `json:"field,omitempty"`
	Draft        voice.Draft `json:"draft,omitempty"`
	Confirmation string      `json:"confirmation,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if status >= http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed", log.FieldError, msg, log.FieldPath, r.URL.Path)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeFailure maps err to a status: validation 422, unknown id 404, empty
// transcript 400, everything else 500.
func writeFailure(w http.ResponseWriter, r *http.Request, err error, body errorResponse) {
	status := http.StatusInternalServerError
	switch ve, ok := core.AsValidationError(err); {
	case ok:
		status = http.StatusUnprocessableEntity
		body.Kind = string(ve.Kind)
		body.Field = ve.Field
	case errors.Is(err, ports.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrNoInput):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed", log.FieldError, err, log.FieldPath, r.URL.Path)
		body.Error = http.StatusText(status)
	} else {
		body.Error = err.Error()
	}
	writeJSON(w, status, body)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// sanitizeInput trims and strips control characters except tab and newlines.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// Records are served in their persisted JSON shape.
func expenseJSON(e core.Expense) (json.RawMessage, error) {
	return storage.EncodeExpense(e)
}

func mileageJSON(m core.MileageEntry) (json.RawMessage, error) {
	return storage.EncodeMileage(m)
}
