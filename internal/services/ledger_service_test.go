package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triplog/internal/amqp"
	"triplog/internal/core"
	"triplog/internal/log"
	"triplog/internal/ports"
	"triplog/internal/ports/memory"
	"triplog/internal/storage"
	"triplog/internal/voice"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*amqp.RecordEvent
	err    error
}

func (p *recordingPublisher) PublishRecordEvent(_ context.Context, evt *amqp.RecordEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

func newTestLedger(t *testing.T, pub EventPublisher) (*LedgerService, *memory.Store) {
	t.Helper()
	store := memory.New()
	svc := NewLedgerService(LedgerConfig{
		Store:  store,
		Rates:  core.NewRateTable([]core.YearRate{{Year: 2024, Rate: decimal.RequireFromString("0.68")}}),
		IDs:    &core.SequenceGenerator{Prefix: "t"},
		Clock:  func() time.Time { return time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC) },
		Events: pub,
	})
	return svc, store
}

func TestCaptureVoiceMileageUsesLatestOdometer(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc, _ := newTestLedger(t, pub)

	first, err := svc.CaptureVoice(ctx, "from Home 45100 to Depot 45180", voice.IntentMileage)
	require.NoError(t, err)
	require.NotNil(t, first.Mileage)
	assert.Equal(t, voice.MsgMileageAdded, first.Confirmation)

	res, err := svc.CaptureVoice(ctx,
		"Odometer 45230 to ABC Corp Toronto meeting with John Smith for contract discussion", voice.IntentMileage)
	require.NoError(t, err)
	require.NotNil(t, res.Mileage)
	m := res.Mileage
	assert.True(t, m.StartOdometer.Equal(decimal.RequireFromString("45180")))
	assert.True(t, m.Distance.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, "34.00", core.FormatAmount(m.Amount))
	assert.Equal(t, "ABC Corp Toronto meeting", m.EndLocation)
	assert.Equal(t, "Home Office", m.StartLocation)

	require.Len(t, pub.events, 2)
	evt := pub.events[1]
	assert.Equal(t, amqp.ActionCreated, evt.Action)
	assert.Equal(t, core.KindMileage, evt.Kind)
	_, decoded, err := storage.DecodeRecord(evt.Record)
	require.NoError(t, err)
	assert.Equal(t, m.ID, decoded.ID)
	assert.Equal(t, int64(2), svc.Revision())
}

func TestCaptureVoiceExpense(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestLedger(t, nil)

	res, err := svc.CaptureVoice(ctx, "  65 dollars at Shell gas station odometer 45280 ", voice.IntentFuel)
	require.NoError(t, err)
	require.NotNil(t, res.Expense)
	assert.Equal(t, voice.MsgExpenseAdded, res.Confirmation)
	assert.Equal(t, core.Fuel, res.Expense.Category)
	assert.Empty(t, res.Warnings)

	stored, err := store.Expense(ctx, res.Expense.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-03", stored.Date.String())
}

func TestCaptureVoiceKeepsTranscriptVerbatim(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestLedger(t, nil)

	res, err := svc.CaptureVoice(ctx, "\t lunch  20 at Cafe  Nero \n", voice.IntentMeal)
	require.NoError(t, err)
	require.NotNil(t, res.Expense)

	stored, err := store.Expense(ctx, res.Expense.ID)
	require.NoError(t, err)
	assert.Equal(t, "lunch  20 at Cafe  Nero", stored.Description)
	assert.Equal(t, "Cafe Nero", stored.Location)
}

func TestCaptureVoiceLogsUnderLedgerComponent(t *testing.T) {
	var buf bytes.Buffer
	svc := NewLedgerService(LedgerConfig{
		Store:  memory.New(),
		IDs:    &core.SequenceGenerator{Prefix: "t"},
		Clock:  func() time.Time { return time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC) },
		Logger: log.New(log.Config{Handler: log.NewHandler(&buf, "json", slog.LevelInfo)}),
	})

	res, err := svc.CaptureVoice(context.Background(), "65 dollars at Shell", voice.IntentFuel)
	require.NoError(t, err)

	var created map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(line, &rec))
		if rec["msg"] == "Expense created" {
			created = rec
		}
	}
	require.NotNil(t, created, "no creation log in %s", buf.String())
	assert.Equal(t, log.ComponentLedger, created[log.FieldComponent])
	assert.Equal(t, res.Expense.ID, created[log.FieldRecordID])
	assert.Equal(t, "expense", created[log.FieldRecordKind])
	assert.Equal(t, "65.00", created[log.FieldAmount])
}

func TestCaptureVoiceRejectsInvalidTrip(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc, store := newTestLedger(t, pub)

	res, err := svc.CaptureVoice(ctx, "odometer 100 and 100", voice.IntentMileage)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidOdometerRange)
	assert.Equal(t, voice.MsgProcessFailed, res.Confirmation)
	require.NotNil(t, res.Draft)

	snap, _ := store.Snapshot(ctx)
	assert.Zero(t, snap.Len())
	assert.Empty(t, pub.events)
}

func TestCaptureVoiceEmptyTranscript(t *testing.T) {
	svc, _ := newTestLedger(t, nil)
	res, err := svc.CaptureVoice(context.Background(), "   ", voice.IntentMeal)
	assert.ErrorIs(t, err, ErrNoInput)
	assert.Equal(t, voice.MsgNoInput, res.Confirmation)
}

func TestZeroAmountWarns(t *testing.T) {
	svc, _ := newTestLedger(t, nil)
	res, err := svc.CaptureVoice(context.Background(), "comped lunch at Cafe Nero", voice.IntentMeal)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Warnings)
}

func TestPublisherFailureDoesNotFailCapture(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc, _ := newTestLedger(t, pub)
	_, err := svc.CaptureVoice(context.Background(), "parking 12", voice.IntentMiscellaneous)
	assert.NoError(t, err)
	assert.Len(t, pub.events, 1)
}

func TestManualEntriesAndDelete(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc, _ := newTestLedger(t, pub)

	e, warnings, err := svc.AddExpense(ctx, core.ExpenseInput{
		Title:    "Printer paper",
		Amount:   decimal.RequireFromString("18.40"),
		Category: core.OfficeSupplies,
	})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "2024-06-03", e.Date.String())

	_, err = svc.AddMileage(ctx, core.MileageInput{
		StartLocation: "A", EndLocation: "B",
		StartOdometer: decimal.NewFromInt(10), EndOdometer: decimal.NewFromInt(5),
	})
	assert.ErrorIs(t, err, core.ErrInvalidOdometerRange)

	require.NoError(t, svc.DeleteExpense(ctx, e.ID))
	assert.ErrorIs(t, svc.DeleteExpense(ctx, e.ID), ports.ErrNotFound)

	require.Len(t, pub.events, 2)
	assert.Equal(t, amqp.ActionDeleted, pub.events[1].Action)
}

func TestPreviewStoresNothing(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestLedger(t, nil)
	res, err := svc.Preview(ctx, "42 at The Keg", voice.IntentMeal)
	require.NoError(t, err)
	assert.Equal(t, voice.Prompt(voice.IntentMeal), res.Confirmation)
	assert.Contains(t, res.Missing, "attendees")
	snap, _ := store.Snapshot(ctx)
	assert.Zero(t, snap.Len())
}

func TestCloseWithoutResources(t *testing.T) {
	svc, _ := newTestLedger(t, nil)
	assert.NoError(t, svc.Close())
}
