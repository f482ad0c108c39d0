package worker

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Purger drops expired entries and reports how many went.
type Purger interface {
	Purge() int
}

// RevocationSweeper periodically purges expired refresh token revocations
// from the in-memory store.
type RevocationSweeper struct {
	cron   *cron.Cron
	store  Purger
	logger *zap.Logger
}

// NewRevocationSweeper schedules sweeps on spec, a standard cron expression
// or a descriptor such as "@every 1m".
func NewRevocationSweeper(spec string, store Purger, logger *zap.Logger) (*RevocationSweeper, error) {
	s := &RevocationSweeper{
		cron:   cron.New(),
		store:  store,
		logger: logger,
	}
	if _, err := s.cron.AddFunc(spec, s.sweep); err != nil {
		return nil, fmt.Errorf("schedule revocation sweep %q: %w", spec, err)
	}
	return s, nil
}

// Start runs the scheduler in its own goroutine.
func (s *RevocationSweeper) Start() {
	s.cron.Start()
	s.logger.Info("revocation sweeper started")
}

// Stop halts the scheduler and waits for a running sweep.
func (s *RevocationSweeper) Stop() {
	<-s.cron.Stop().Done()
}

func (s *RevocationSweeper) sweep() {
	if purged := s.store.Purge(); purged > 0 {
		s.logger.Debug("purged expired revocations", zap.Int("count", purged))
	}
}
