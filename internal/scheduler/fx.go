package scheduler

import (
	"context"

	"github.com/Behzodbek19981230/lms-sub004/internal/config"
	"go.uber.org/fx"
)

// Module runs the billing cron under the fx lifecycle. Disabled schedulers
// (e.g. when a second replica should not also generate) still build; the
// unique ledger key makes overlapping runs harmless anyway.
var Module = fx.Module("scheduler",
	fx.Provide(New),
	fx.Invoke(func(lc fx.Lifecycle, s *Scheduler, cfg config.Config) {
		if !cfg.SchedulerEnabled {
			return
		}
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error { return s.Start() },
			OnStop:  func(ctx context.Context) error { return s.Stop(ctx) },
		})
	}),
)
