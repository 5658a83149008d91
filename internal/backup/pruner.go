package backup

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Pruner deletes expired local artifacts on a cron schedule.
type Pruner struct {
	cron      *cron.Cron
	store     *LocalStore
	retention time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewPruner schedules store pruning. schedule uses the standard five-field
// cron syntax or descriptors such as "@daily".
func NewPruner(store *LocalStore, schedule string, retention time.Duration, logger *slog.Logger) (*Pruner, error) {
	if retention <= 0 {
		return nil, fmt.Errorf("backup retention must be positive")
	}
	p := &Pruner{
		cron:      cron.New(),
		store:     store,
		retention: retention,
		logger:    logger,
		now:       time.Now,
	}
	if _, err := p.cron.AddFunc(schedule, p.RunOnce); err != nil {
		return nil, fmt.Errorf("invalid prune schedule %q: %w", schedule, err)
	}
	return p, nil
}

// Start begins running the schedule in the background.
func (p *Pruner) Start() {
	p.cron.Start()
	p.logger.Info("backup pruner started", "dir", p.store.Dir(), "retention", p.retention)
}

// Stop halts the schedule and waits for a running prune to finish.
func (p *Pruner) Stop() {
	<-p.cron.Stop().Done()
	p.logger.Info("backup pruner stopped")
}

// RunOnce prunes immediately.
func (p *Pruner) RunOnce() {
	removed, err := p.store.Prune(p.retention, p.now())
	if err != nil {
		p.logger.Warn("backup prune failed", "error", err)
		return
	}
	if removed > 0 {
		p.logger.Info("pruned expired backups", "removed", removed)
	}
}
