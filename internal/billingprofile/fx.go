package billingprofile

import (
	"github.com/Behzodbek19981230/lms-sub004/internal/billingprofile/repository"
	"github.com/Behzodbek19981230/lms-sub004/internal/billingprofile/service"
	"go.uber.org/fx"
)

var Module = fx.Module("billingprofile.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
