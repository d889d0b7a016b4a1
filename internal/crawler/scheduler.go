package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler runs crawl cycles on a fixed interval. The first cycle fires
// immediately on Start so a fresh deployment has a corpus before the first
// tick; cron owns every run after that.
type Scheduler struct {
	svc    *Service
	cron   *cron.Cron
	spec   string
	cancel context.CancelFunc
	first  sync.WaitGroup
	logger *slog.Logger
}

func NewScheduler(svc *Service, intervalHours int, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if intervalHours <= 0 {
		intervalHours = 6
	}
	return &Scheduler{
		svc:    svc,
		cron:   cron.New(),
		spec:   fmt.Sprintf("@every %dh", intervalHours),
		logger: logger,
	}
}

func (s *Scheduler) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	if _, err := s.cron.AddFunc(s.spec, func() {
		s.svc.RunCycle(ctx)
	}); err != nil {
		cancel()
		return fmt.Errorf("schedule crawl: %w", err)
	}

	s.cron.Start()
	s.logger.Info("crawl scheduler started", "interval", s.spec)

	s.first.Add(1)
	go func() {
		defer s.first.Done()
		s.svc.RunCycle(ctx)
	}()
	return nil
}

// Stop cancels the running cycle and waits for both the immediate first run
// and any in-flight cron job to return before handing control back, so the
// database can be closed safely.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	<-s.cron.Stop().Done()
	s.first.Wait()
	s.logger.Info("crawl scheduler stopped")
}
