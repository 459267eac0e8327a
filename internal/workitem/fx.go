package workitem

import (
	"github.com/cogentahq/timebill/internal/workitem/repository"
	"github.com/cogentahq/timebill/internal/workitem/service"
	"go.uber.org/fx"
)

var Module = fx.Module("workitem",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewResolver),
)
