package maintenance

import (
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/chartnote/chartnote/internal/common"
)

// Service runs scheduled badger value-log garbage collection. Badger never
// reclaims value-log space on its own, so a long-lived store accumulates
// stale image payloads without this.
type Service struct {
	store  *badgerhold.Store
	cron   *cron.Cron
	config *common.MaintenanceConfig
	logger arbor.ILogger
}

// NewService creates a new maintenance service
func NewService(store *badgerhold.Store, config *common.MaintenanceConfig, logger arbor.ILogger) *Service {
	return &Service{
		store:  store,
		cron:   cron.New(),
		config: config,
		logger: logger,
	}
}

// Start schedules value-log GC. No-op when maintenance is disabled.
func (s *Service) Start() error {
	if !s.config.Enabled {
		s.logger.Debug().Msg("Maintenance disabled, skipping GC schedule")
		return nil
	}

	schedule := s.config.Schedule
	if schedule == "" {
		schedule = "0 */6 * * *"
	}

	if _, err := s.cron.AddFunc(schedule, s.runGC); err != nil {
		return fmt.Errorf("invalid maintenance schedule '%s': %w", schedule, err)
	}

	s.cron.Start()
	s.logger.Info().Str("schedule", schedule).Msg("Maintenance service started")
	return nil
}

// Stop halts the schedule and waits for a running GC pass to finish
func (s *Service) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Debug().Msg("Maintenance service stopped")
}

// runGC repeats value-log GC passes until badger reports nothing to rewrite
func (s *Service) runGC() {
	passes := 0
	for {
		err := s.store.Badger().RunValueLogGC(0.5)
		if err != nil {
			if err != badgerdb.ErrNoRewrite {
				s.logger.Warn().Err(err).Msg("Value log GC failed")
			}
			break
		}
		passes++
	}

	if passes > 0 {
		s.logger.Info().Int("passes", passes).Msg("Value log GC completed")
	}
}
