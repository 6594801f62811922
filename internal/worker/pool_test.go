package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextStep(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name     string
		attempts int
		err      error
		want     step
	}{
		{"success on first attempt", 1, nil, stepDone},
		{"first failure is retried", 1, boom, stepRetry},
		{"second failure is retried", 2, boom, stepRetry},
		{"third failure goes to the DLQ", MaxAttempts, boom, stepDeadLetter},
		{"success on last attempt", MaxAttempts, nil, stepDone},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, nextStep(Job{Attempts: tc.attempts}, tc.err))
		})
	}
}

func TestNilDispatcherDropsJobs(t *testing.T) {
	var d *Dispatcher
	assert.Nil(t, NewDispatcher(nil))
	assert.NoError(t, d.EnqueueLowStock(context.Background(), StockAlert{MedicineID: 1}))
}

func TestNilFeedIsEmpty(t *testing.T) {
	var f *AlertFeed
	got, err := f.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRenderAlert(t *testing.T) {
	low := StockAlert{MedicineName: "Paracetamol 500mg", Unit: "tablet", CurrentStock: 4, MinStock: 10}
	assert.Equal(t, "Paracetamol 500mg is low on stock: 4 tablet left (minimum 10)", RenderAlert(low))

	out := StockAlert{MedicineName: "Amoxicillin", Unit: "capsule", CurrentStock: 0, MinStock: 5}
	assert.Equal(t, "Amoxicillin is out of stock (minimum 5 capsule)", RenderAlert(out))
}

func TestStockAlertWorkerRejectsMalformedPayload(t *testing.T) {
	w := NewStockAlertWorker(nil)
	err := w.Process(context.Background(), json.RawMessage(`{"medicine_id":"x"`))
	assert.Error(t, err)
}
