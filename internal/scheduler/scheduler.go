// Package scheduler drives the billing cron: monthly generation and the
// daily overdue sweep.
package scheduler

import (
	"context"
	"time"

	"github.com/Behzodbek19981230/lms-sub004/internal/clock"
	"github.com/Behzodbek19981230/lms-sub004/internal/config"
	"github.com/Behzodbek19981230/lms-sub004/internal/generator"
	ledgerdomain "github.com/Behzodbek19981230/lms-sub004/internal/ledger/domain"
	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log       *zap.Logger
	Cfg       config.Config
	Clock     clock.Clock
	Generator *generator.Generator
	LedgerSvc ledgerdomain.Service
}

type Scheduler struct {
	log       *zap.Logger
	cfg       config.Config
	clock     clock.Clock
	generator *generator.Generator
	ledgerSvc ledgerdomain.Service
	cron      *cron.Cron
}

func New(p Params) *Scheduler {
	return &Scheduler{
		log:       p.Log.Named("scheduler"),
		cfg:       p.Cfg,
		clock:     p.Clock,
		generator: p.Generator,
		ledgerSvc: p.LedgerSvc,
		cron:      cron.New(cron.WithLocation(time.UTC)),
	}
}

// Start registers the cron entries and begins running them.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.GenerateSchedule, s.runGeneration); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.OverdueSchedule, s.runOverdueSweep); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("scheduler started",
		zap.String("generate_schedule", s.cfg.GenerateSchedule),
		zap.String("overdue_schedule", s.cfg.OverdueSchedule),
	)
	return nil
}

// Stop halts the cron and waits for running jobs.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) runGeneration() {
	ctx := context.Background()
	report, err := s.generator.RunCurrentMonth(ctx)
	if err != nil {
		s.log.Error("scheduled generation failed", zap.Error(err))
		return
	}
	s.log.Info("scheduled generation finished",
		zap.Time("month", report.Month),
		zap.Int("created", report.Created),
	)
}

func (s *Scheduler) runOverdueSweep() {
	ctx := context.Background()
	flipped, err := s.ledgerSvc.SweepOverdue(ctx, s.clock.Now())
	if err != nil {
		s.log.Error("scheduled overdue sweep failed", zap.Error(err))
		return
	}
	s.log.Info("scheduled overdue sweep finished", zap.Int64("flipped", flipped))
}
