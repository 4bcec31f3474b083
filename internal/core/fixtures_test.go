package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"poms/pkg/domain"
)

var testNow = time.Date(2025, 5, 6, 9, 30, 0, 0, time.UTC)

const testToday = "2025-05-06"

func fixedClock() Clock {
	return ClockFunc(func() time.Time { return testNow })
}

// newSeededService returns an in-memory service holding the sample dataset.
func newSeededService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	svc := NewInMemoryService(append([]Option{WithClock(fixedClock())}, opts...)...)
	_, err := svc.ResetToSeed(context.Background())
	require.NoError(t, err)
	return svc
}

func intPtr(v int) *int { return &v }

func billsFor(bills []Bill, patientID int) []Bill {
	var out []Bill
	for _, b := range bills {
		if b.PatientID == patientID {
			out = append(out, b)
		}
	}
	return out
}

type capturingNotifier struct {
	mu    sync.Mutex
	bills []domain.Bill
	err   error
}

func (n *capturingNotifier) NotifyBills(_ context.Context, bills []domain.Bill) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.bills = append(n.bills, bills...)
	return n.err
}

func (n *capturingNotifier) received() []domain.Bill {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Bill(nil), n.bills...)
}
