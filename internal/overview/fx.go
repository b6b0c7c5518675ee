package overview

import (
	"github.com/Behzodbek19981230/lms-sub004/internal/overview/service"
	"go.uber.org/fx"
)

var Module = fx.Module("overview.service",
	fx.Provide(service.NewService),
)
