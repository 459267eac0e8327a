package timeentry

import (
	"github.com/cogentahq/timebill/internal/timeentry/repository"
	"github.com/cogentahq/timebill/internal/timeentry/service"
	"go.uber.org/fx"
)

var Module = fx.Module("timeentry",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewLoader),
)
