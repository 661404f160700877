package kitchen

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvle/dacsan-backend/internal/orders"
	"github.com/tuanvle/dacsan-backend/pkg/config"
	"github.com/tuanvle/dacsan-backend/pkg/enums"
	pkgerrors "github.com/tuanvle/dacsan-backend/pkg/errors"
	"github.com/tuanvle/dacsan-backend/pkg/logger"
)

// statusUpdater is the slice of the orders service the countdown needs.
type statusUpdater interface {
	UpdateSubOrderStatus(ctx context.Context, input orders.UpdateStatusInput) (*orders.StatusChange, error)
}

// Scheduler tracks per sub-order cooking countdowns. When a countdown
// expires the sub-order is moved to PICKED_UP on behalf of the system.
// All state lives in memory; a restart simply forgets armed countdowns
// and the vendor advances the sub-order by hand.
type Scheduler struct {
	mu    sync.Mutex
	armed map[uuid.UUID]int

	ticks    int
	interval time.Duration

	updater statusUpdater
	logg    *logger.Logger
}

// NewScheduler builds a countdown scheduler from the kitchen config.
func NewScheduler(cfg config.KitchenConfig, updater statusUpdater, logg *logger.Logger) (*Scheduler, error) {
	if updater == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "status updater required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	ticks := cfg.CountdownSeconds
	if ticks <= 0 {
		ticks = 30
	}
	interval := cfg.TickInterval
	if interval <= 0 {
		interval = time.Second
	}
	return &Scheduler{
		armed:    make(map[uuid.UUID]int),
		ticks:    ticks,
		interval: interval,
		updater:  updater,
		logg:     logg,
	}, nil
}

// Arm starts the countdown for a sub-order. Re-arming an already armed
// sub-order is a no-op so duplicate confirms cannot reset the clock.
func (s *Scheduler) Arm(subOrderID uuid.UUID) {
	if subOrderID == uuid.Nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.armed[subOrderID]; ok {
		return
	}
	s.armed[subOrderID] = s.ticks
}

// Disarm cancels a pending countdown. Unknown ids are ignored.
func (s *Scheduler) Disarm(subOrderID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.armed, subOrderID)
}

// Remaining reports the ticks left for a sub-order, false when not armed.
func (s *Scheduler) Remaining(subOrderID uuid.UUID) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	left, ok := s.armed[subOrderID]
	return left, ok
}

// Run decrements armed countdowns once per interval until the context is
// cancelled. Intended to be launched as a goroutine next to the HTTP server.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	ctx = s.logg.WithFields(ctx, map[string]any{
		"countdown_ticks": s.ticks,
		"tick_interval":   s.interval.String(),
	})
	s.logg.Info(ctx, "kitchen countdown scheduler started")

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "kitchen countdown scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick advances every armed countdown by one and fires the expired ones.
// The expired set is collected under the lock and dispatched outside it so
// a slow database write never stalls the other countdowns.
func (s *Scheduler) tick(ctx context.Context) {
	var expired []uuid.UUID

	s.mu.Lock()
	for id, left := range s.armed {
		left--
		if left <= 0 {
			delete(s.armed, id)
			expired = append(expired, id)
			continue
		}
		s.armed[id] = left
	}
	s.mu.Unlock()

	for _, id := range expired {
		s.fire(ctx, id)
	}
}

// fire applies the automatic COOKING to PICKED_UP transition. Conflicts are
// expected when a vendor raced the timer; those are logged and dropped, the
// countdown is never re-armed.
func (s *Scheduler) fire(ctx context.Context, subOrderID uuid.UUID) {
	ctx = s.logg.WithField(ctx, "sub_order_id", subOrderID.String())

	_, err := s.updater.UpdateSubOrderStatus(ctx, orders.UpdateStatusInput{
		SubOrderID: subOrderID,
		Target:     enums.SubOrderStatusPickedUp,
		Automatic:  true,
	})
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) || pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
			s.logg.Warn(ctx, "countdown expired after sub-order already moved")
			return
		}
		s.logg.Error(ctx, "automatic pickup failed", err)
		return
	}
	s.logg.Info(ctx, "sub-order picked up by countdown")
}
