package kitchen

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvle/dacsan-backend/internal/orders"
	"github.com/tuanvle/dacsan-backend/pkg/config"
	pkgerrors "github.com/tuanvle/dacsan-backend/pkg/errors"
	"github.com/tuanvle/dacsan-backend/pkg/logger"
)

type stubUpdater struct {
	calls []orders.UpdateStatusInput
	err   error
}

func (s *stubUpdater) UpdateSubOrderStatus(ctx context.Context, input orders.UpdateStatusInput) (*orders.StatusChange, error) {
	s.calls = append(s.calls, input)
	if s.err != nil {
		return nil, s.err
	}
	return &orders.StatusChange{Changed: true}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "kitchen-test", Output: io.Discard})
}

func newTestScheduler(t *testing.T, ticks int, updater *stubUpdater) *Scheduler {
	t.Helper()
	sched, err := NewScheduler(config.KitchenConfig{
		CountdownSeconds: ticks,
		TickInterval:     time.Second,
	}, updater, testLogger())
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	return sched
}

func TestSchedulerFiresExactlyOnce(t *testing.T) {
	updater := &stubUpdater{}
	sched := newTestScheduler(t, 30, updater)
	ctx := context.Background()

	subOrderID := uuid.New()
	sched.Arm(subOrderID)

	for i := 0; i < 29; i++ {
		sched.tick(ctx)
	}
	if left, ok := sched.Remaining(subOrderID); !ok || left != 1 {
		t.Fatalf("after 29 ticks remaining = %d,%v, want 1,true", left, ok)
	}
	if len(updater.calls) != 0 {
		t.Fatalf("fired early after %d calls", len(updater.calls))
	}

	sched.tick(ctx)
	if _, ok := sched.Remaining(subOrderID); ok {
		t.Fatal("expired countdown must be removed")
	}
	if len(updater.calls) != 1 {
		t.Fatalf("expected exactly one automatic transition, got %d", len(updater.calls))
	}
	call := updater.calls[0]
	if call.SubOrderID != subOrderID || !call.Automatic {
		t.Fatalf("unexpected call %+v", call)
	}

	for i := 0; i < 5; i++ {
		sched.tick(ctx)
	}
	if len(updater.calls) != 1 {
		t.Fatalf("countdown fired again, got %d calls", len(updater.calls))
	}
}

func TestSchedulerRearmIsNoOp(t *testing.T) {
	updater := &stubUpdater{}
	sched := newTestScheduler(t, 30, updater)
	ctx := context.Background()

	subOrderID := uuid.New()
	sched.Arm(subOrderID)
	for i := 0; i < 10; i++ {
		sched.tick(ctx)
	}
	sched.Arm(subOrderID)
	if left, _ := sched.Remaining(subOrderID); left != 20 {
		t.Fatalf("re-arm reset the clock, remaining = %d, want 20", left)
	}
}

func TestSchedulerDisarmCancels(t *testing.T) {
	updater := &stubUpdater{}
	sched := newTestScheduler(t, 3, updater)
	ctx := context.Background()

	subOrderID := uuid.New()
	sched.Arm(subOrderID)
	sched.tick(ctx)
	sched.Disarm(subOrderID)

	for i := 0; i < 10; i++ {
		sched.tick(ctx)
	}
	if len(updater.calls) != 0 {
		t.Fatalf("disarmed countdown still fired %d times", len(updater.calls))
	}
}

func TestSchedulerConflictIsNotRearmed(t *testing.T) {
	updater := &stubUpdater{err: pkgerrors.New(pkgerrors.CodeStateConflict, "invalid status transition")}
	sched := newTestScheduler(t, 1, updater)
	ctx := context.Background()

	subOrderID := uuid.New()
	sched.Arm(subOrderID)
	sched.tick(ctx)

	if len(updater.calls) != 1 {
		t.Fatalf("expected one attempt, got %d", len(updater.calls))
	}
	if _, ok := sched.Remaining(subOrderID); ok {
		t.Fatal("failed countdown must not be re-armed")
	}
	sched.tick(ctx)
	if len(updater.calls) != 1 {
		t.Fatal("failed countdown must not retry")
	}
}

func TestSchedulerIgnoresNilID(t *testing.T) {
	updater := &stubUpdater{}
	sched := newTestScheduler(t, 1, updater)

	sched.Arm(uuid.Nil)
	sched.tick(context.Background())
	if len(updater.calls) != 0 {
		t.Fatal("nil id must never arm a countdown")
	}
}
