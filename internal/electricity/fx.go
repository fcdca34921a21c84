package electricity

import (
	"github.com/smallbiznis/roomledger/internal/electricity/repository"
	"github.com/smallbiznis/roomledger/internal/electricity/service"
	"go.uber.org/fx"
)

var Module = fx.Module("electricity.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
