package http

import (
	"encoding/json"
	"net/http"

	"triplog/internal/core"
	"triplog/internal/log"
	"triplog/internal/voice"
)

type voiceRequest struct {
	Text   string `json:"text"`
	Intent string `json:"intent"`
}

type voiceResponse struct {
	Intent       voice.Intent    `json:"intent"`
	Confirmation string          `json:"confirmation"`
	Draft        voice.Draft     `json:"draft,omitempty"`
	Missing      []string        `json:"missing,omitempty"`
	Kind         core.RecordKind `json:"kind,omitempty"`
	Record       json.RawMessage `json:"record,omitempty"`
	Warnings     []string        `json:"warnings,omitempty"`
}

// readVoice decodes the request. An unknown intent falls back to generic.
func (s *Server) readVoice(w http.ResponseWriter, r *http.Request) (string, voice.Intent, bool) {
	var req voiceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return "", "", false
	}
	intent, err := voice.ParseIntent(req.Intent)
	if err != nil {
		log.FromContext(r.Context()).DebugContext(r.Context(), "Unknown intent, using generic", log.FieldIntent, req.Intent)
		intent = voice.IntentGeneric
	}
	return sanitizeInput(req.Text), intent, true
}

func (s *Server) handleVoicePreview(w http.ResponseWriter, r *http.Request) {
	text, intent, ok := s.readVoice(w, r)
	if !ok {
		return
	}
	res, err := s.ledger.Preview(r.Context(), text, intent)
	if err != nil {
		writeFailure(w, r, err, errorResponse{Confirmation: res.Confirmation})
		return
	}
	writeJSON(w, http.StatusOK, voiceResponse{
		Intent:       res.Intent,
		Confirmation: res.Confirmation,
		Draft:        res.Draft,
		Missing:      res.Missing,
	})
}

func (s *Server) handleVoiceCapture(w http.ResponseWriter, r *http.Request) {
	text, intent, ok := s.readVoice(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	res, err := s.ledger.CaptureVoice(ctx, text, intent)
	log.NewStructuredLogger(log.FromContext(ctx).WithComponent(log.ComponentVoice)).LogVoiceCapture(ctx, string(intent), res.Confirmation, err)
	if err != nil {
		writeFailure(w, r, err, errorResponse{Draft: res.Draft, Confirmation: res.Confirmation})
		return
	}

	out := voiceResponse{
		Intent:       res.Intent,
		Confirmation: res.Confirmation,
		Draft:        res.Draft,
		Missing:      res.Missing,
		Warnings:     res.Warnings,
	}
	switch {
	case res.Expense != nil:
		out.Kind = core.KindExpense
		out.Record, err = expenseJSON(*res.Expense)
	case res.Mileage != nil:
		out.Kind = core.KindMileage
		out.Record, err = mileageJSON(*res.Mileage)
	}
	if err != nil {
		writeFailure(w, r, err, errorResponse{})
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

