package client

import (
	"github.com/cogentahq/timebill/internal/client/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("client",
	fx.Provide(repository.NewRepository),
)
