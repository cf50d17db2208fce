package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tleroux/chiffrage-api/internal/domain/repository"
)

type pendingTotals struct {
	totalHT  int64
	totalTax int64
	totalTTC int64
}

// TotalsFlusher persists estimate version totals after a quiet period
// instead of on every keystroke-level mutation. Each Schedule call
// resets the version's timer, so only the last write within the
// debounce window reaches the database. Reads flush synchronously so
// they never observe stale totals.
type TotalsFlusher struct {
	versionRepo repository.EstimateVersionRepository
	delay       time.Duration
	logger      *zap.Logger

	mu      sync.Mutex
	timers  map[uuid.UUID]*time.Timer
	pending map[uuid.UUID]pendingTotals
	stopped bool
}

// NewTotalsFlusher creates a new totals flusher with the given debounce
// delay.
func NewTotalsFlusher(versionRepo repository.EstimateVersionRepository, delay time.Duration, logger *zap.Logger) *TotalsFlusher {
	return &TotalsFlusher{
		versionRepo: versionRepo,
		delay:       delay,
		logger:      logger,
		timers:      make(map[uuid.UUID]*time.Timer),
		pending:     make(map[uuid.UUID]pendingTotals),
	}
}

// Schedule records the latest totals for the version and (re)arms its
// debounce timer.
func (f *TotalsFlusher) Schedule(versionID uuid.UUID, totalHT, totalTax, totalTTC int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stopped {
		return
	}

	f.pending[versionID] = pendingTotals{totalHT: totalHT, totalTax: totalTax, totalTTC: totalTTC}

	if timer, ok := f.timers[versionID]; ok {
		timer.Stop()
	}
	f.timers[versionID] = time.AfterFunc(f.delay, func() {
		f.fire(versionID)
	})
}

func (f *TotalsFlusher) fire(versionID uuid.UUID) {
	f.mu.Lock()
	totals, ok := f.pending[versionID]
	delete(f.pending, versionID)
	delete(f.timers, versionID)
	f.mu.Unlock()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := f.versionRepo.UpdateTotals(ctx, versionID, totals.totalHT, totals.totalTax, totals.totalTTC); err != nil {
		f.logger.Error("failed to flush estimate totals",
			zap.String("version_id", versionID.String()), zap.Error(err))
	}
}

// Flush persists any pending totals for the version immediately and
// cancels its timer. A no-op when nothing is pending.
func (f *TotalsFlusher) Flush(ctx context.Context, versionID uuid.UUID) error {
	f.mu.Lock()
	totals, ok := f.pending[versionID]
	if ok {
		delete(f.pending, versionID)
		if timer, exists := f.timers[versionID]; exists {
			timer.Stop()
			delete(f.timers, versionID)
		}
	}
	f.mu.Unlock()
	if !ok {
		return nil
	}
	return f.versionRepo.UpdateTotals(ctx, versionID, totals.totalHT, totals.totalTax, totals.totalTTC)
}

// Stop cancels all timers and drops pending totals. Used on shutdown
// after a final FlushAll.
func (f *TotalsFlusher) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	for id, timer := range f.timers {
		timer.Stop()
		delete(f.timers, id)
	}
}

// FlushAll synchronously persists every pending totals block.
func (f *TotalsFlusher) FlushAll(ctx context.Context) {
	f.mu.Lock()
	ids := make([]uuid.UUID, 0, len(f.pending))
	for id := range f.pending {
		ids = append(ids, id)
	}
	f.mu.Unlock()

	for _, id := range ids {
		if err := f.Flush(ctx, id); err != nil {
			f.logger.Error("failed to flush estimate totals on shutdown",
				zap.String("version_id", id.String()), zap.Error(err))
		}
	}
}
