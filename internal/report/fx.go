package report

import (
	"github.com/cogentahq/timebill/internal/report/service"
	"go.uber.org/fx"
)

var Module = fx.Module("report",
	fx.Provide(
		service.NewService,
	),
)
