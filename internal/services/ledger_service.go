package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"triplog/internal/amqp"
	"triplog/internal/core"
	"triplog/internal/derive"
	"triplog/internal/log"
	"triplog/internal/ports"
	"triplog/internal/storage"
	"triplog/internal/voice"
)

// ErrNoInput is returned when a transcript is empty after trimming.
var ErrNoInput = errors.New("no voice input")

// EventPublisher announces record changes. The AMQP client implements it.
type EventPublisher interface {
	PublishRecordEvent(ctx context.Context, evt *amqp.RecordEvent) error
}

type LedgerConfig struct {
	Store  ports.RecordStore
	Rates  *core.RateTable
	IDs    core.IDGenerator
	Clock  func() time.Time
	Events EventPublisher // optional
	Logger *log.Logger    // defaults to the slog default handler
}

// LedgerService owns the record collection for a session: it turns
// transcripts and form input into records, stores them and announces
// changes.
type LedgerService struct {
	store    ports.RecordStore
	rates    *core.RateTable
	ids      core.IDGenerator
	now      func() time.Time
	parser   *voice.Parser
	deriver  *derive.Deriver
	events   EventPublisher
	logger   *log.Logger
	revision atomic.Int64
}

func NewLedgerService(cfg LedgerConfig) *LedgerService {
	if cfg.Rates == nil {
		cfg.Rates = core.DefaultRateTable()
	}
	if cfg.IDs == nil {
		cfg.IDs = core.UUIDGenerator{}
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(log.Config{Handler: slog.Default().Handler()})
	}
	return &LedgerService{
		logger:  cfg.Logger.WithComponent(log.ComponentLedger),
		store:   cfg.Store,
		rates:   cfg.Rates,
		ids:     cfg.IDs,
		now:     cfg.Clock,
		parser:  voice.NewParser(voice.WithClock(cfg.Clock)),
		deriver: derive.New(cfg.Rates, cfg.IDs, derive.WithClock(cfg.Clock)),
		events:  cfg.Events,
	}
}

// CaptureResult is the outcome of one parse-and-confirm cycle. Draft is
// always set when a transcript was present, so a rejected capture can be
// corrected and resubmitted.
type CaptureResult struct {
	Intent       voice.Intent       `json:"intent"`
	Draft        voice.Draft        `json:"draft,omitempty"`
	Missing      []string           `json:"missing,omitempty"`
	Expense      *core.Expense      `json:"expense,omitempty"`
	Mileage      *core.MileageEntry `json:"mileage,omitempty"`
	Confirmation string             `json:"confirmation"`
	Warnings     []string           `json:"warnings,omitempty"`
}

// Preview parses text without saving anything.
func (s *LedgerService) Preview(ctx context.Context, text string, intent voice.Intent) (CaptureResult, error) {
	text = voice.Transcript(text)
	if text == "" {
		return CaptureResult{Intent: intent, Confirmation: voice.MsgNoInput}, ErrNoInput
	}
	draft := s.parser.ParseWithHints(text, intent, s.hints(ctx, intent))
	s.logger.DebugContext(ctx, "Parsed voice entry",
		log.NewFields().WithOperation(log.OpPreview).WithIntent(string(intent)).ToSlice()...)
	return CaptureResult{
		Intent:       intent,
		Draft:        draft,
		Missing:      voice.MissingFields(draft),
		Confirmation: voice.Prompt(intent),
	}, nil
}

// CaptureVoice parses text, derives a record, stores it and publishes a
// created event. Validation failures return the draft with the failure
// message and store nothing.
func (s *LedgerService) CaptureVoice(ctx context.Context, text string, intent voice.Intent) (CaptureResult, error) {
	res, err := s.Preview(ctx, text, intent)
	if err != nil {
		return res, err
	}

	s.logger.InfoContext(ctx, "Capturing voice entry",
		log.FieldOperation, log.OpCapture,
		log.FieldIntent, intent,
		"missing", res.Missing)

	if intent == voice.IntentMileage {
		m, err := s.deriver.Mileage(res.Draft)
		if err != nil {
			return s.rejected(ctx, res, err)
		}
		if err := s.storeMileage(ctx, m); err != nil {
			return s.rejected(ctx, res, err)
		}
		res.Mileage = &m
		res.Confirmation = voice.MsgMileageAdded
		return res, nil
	}

	e, err := s.deriver.Expense(res.Draft, "")
	if err != nil {
		return s.rejected(ctx, res, err)
	}
	if err := s.storeExpense(ctx, e); err != nil {
		return s.rejected(ctx, res, err)
	}
	res.Expense = &e
	res.Warnings = derive.Warnings(e)
	res.Confirmation = voice.MsgExpenseAdded
	return res, nil
}

func (s *LedgerService) rejected(ctx context.Context, res CaptureResult, err error) (CaptureResult, error) {
	s.logger.WarnContext(ctx, "Voice entry rejected", log.FieldIntent, res.Intent, log.FieldError, err)
	res.Confirmation = voice.MsgProcessFailed
	return res, err
}

// hints supplies the latest odometer reading to mileage parsing.
func (s *LedgerService) hints(ctx context.Context, intent voice.Intent) voice.Hints {
	if intent != voice.IntentMileage {
		return voice.Hints{}
	}
	c, err := s.store.Snapshot(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to read odometer hint", log.FieldError, err)
		return voice.Hints{}
	}
	if reading, ok := c.LatestOdometer(); ok {
		return voice.Hints{PriorOdometer: &reading}
	}
	return voice.Hints{}
}

// AddExpense validates manual form input and stores the expense.
func (s *LedgerService) AddExpense(ctx context.Context, in core.ExpenseInput) (core.Expense, []string, error) {
	if in.Date.IsZero() {
		in.Date = core.DateOf(s.now())
	}
	e, err := core.NewExpense(s.ids.NewID(), in)
	if err != nil {
		return core.Expense{}, nil, err
	}
	if err := s.storeExpense(ctx, e); err != nil {
		return core.Expense{}, nil, err
	}
	return e, derive.Warnings(e), nil
}

// AddMileage validates manual form input and stores the trip.
func (s *LedgerService) AddMileage(ctx context.Context, in core.MileageInput) (core.MileageEntry, error) {
	if in.Date.IsZero() {
		in.Date = core.DateOf(s.now())
	}
	m, err := core.NewMileageEntry(s.ids.NewID(), in, s.rates)
	if err != nil {
		return core.MileageEntry{}, err
	}
	if err := s.storeMileage(ctx, m); err != nil {
		return core.MileageEntry{}, err
	}
	return m, nil
}

func (s *LedgerService) storeExpense(ctx context.Context, e core.Expense) error {
	if err := s.store.AddExpense(ctx, e); err != nil {
		return fmt.Errorf("save expense: %w", err)
	}
	s.revision.Add(1)
	s.logger.InfoContext(ctx, "Expense created",
		log.NewFields().
			WithOperation(log.OpCreate).
			WithRecord(string(core.KindExpense), e.ID, string(e.Category), e.Amount).
			ToSlice()...)
	payload, err := storage.EncodeExpense(e)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to encode event payload", log.FieldRecordID, e.ID, log.FieldError, err)
	}
	s.publish(ctx, amqp.NewRecordEvent(amqp.ActionCreated, core.KindExpense, e.ID, payload))
	return nil
}

func (s *LedgerService) storeMileage(ctx context.Context, m core.MileageEntry) error {
	if err := s.store.AddMileage(ctx, m); err != nil {
		return fmt.Errorf("save mileage entry: %w", err)
	}
	s.revision.Add(1)
	s.logger.InfoContext(ctx, "Mileage entry created",
		append(log.NewFields().
			WithOperation(log.OpCreate).
			WithRecord(string(core.KindMileage), m.ID, string(core.Transportation), m.Amount).
			ToSlice(), "distance", m.Distance.String())...)
	payload, err := storage.EncodeMileage(m)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to encode event payload", log.FieldRecordID, m.ID, log.FieldError, err)
	}
	s.publish(ctx, amqp.NewRecordEvent(amqp.ActionCreated, core.KindMileage, m.ID, payload))
	return nil
}

func (s *LedgerService) DeleteExpense(ctx context.Context, id string) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.revision.Add(1)
	s.publish(ctx, amqp.NewRecordEvent(amqp.ActionDeleted, core.KindExpense, id, nil))
	return nil
}

func (s *LedgerService) DeleteMileage(ctx context.Context, id string) error {
	if err := s.store.DeleteMileage(ctx, id); err != nil {
		return fmt.Errorf("delete mileage entry: %w", err)
	}
	s.revision.Add(1)
	s.publish(ctx, amqp.NewRecordEvent(amqp.ActionDeleted, core.KindMileage, id, nil))
	return nil
}

// publish never fails the caller: the record is already stored.
func (s *LedgerService) publish(ctx context.Context, evt *amqp.RecordEvent) {
	if s.events == nil {
		s.logger.DebugContext(ctx, "Event publisher not available, skipping record event", log.FieldRecordID, evt.ID)
		return
	}
	if err := s.events.PublishRecordEvent(ctx, evt); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish record event",
			"action", evt.Action,
			"kind", evt.Kind,
			log.FieldRecordID, evt.ID,
			log.FieldError, err)
	}
}

// Snapshot returns the current record collection.
func (s *LedgerService) Snapshot(ctx context.Context) (core.Collection, error) {
	c, err := s.store.Snapshot(ctx)
	if err != nil {
		return core.Collection{}, fmt.Errorf("load records: %w", err)
	}
	return c, nil
}

// Revision changes after every successful mutation through this service.
func (s *LedgerService) Revision() int64 {
	return s.revision.Load()
}

func (s *LedgerService) Rates() *core.RateTable {
	return s.rates
}

func (s *LedgerService) Now() time.Time {
	return s.now()
}

// LatestOdometer is the end reading of the most recent trip, if any.
func (s *LedgerService) LatestOdometer(ctx context.Context) (decimal.Decimal, bool, error) {
	c, err := s.Snapshot(ctx)
	if err != nil {
		return decimal.Zero, false, err
	}
	reading, ok := c.LatestOdometer()
	return reading, ok, nil
}

// Close closes the store and publisher when they hold resources.
func (s *LedgerService) Close() error {
	var errs []error

	if c, ok := s.store.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if c, ok := s.events.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %w", errors.Join(errs...))
	}
	return nil
}
