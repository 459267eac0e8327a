package sequence

import (
	"github.com/cogentahq/timebill/internal/sequence/service"
	"go.uber.org/fx"
)

var Module = fx.Module("sequence",
	fx.Provide(service.NewService),
)
