package ledger

import (
	"github.com/Behzodbek19981230/lms-sub004/internal/ledger/repository"
	"github.com/Behzodbek19981230/lms-sub004/internal/ledger/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ledger.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
