package landlord

import (
	"github.com/smallbiznis/roomledger/internal/landlord/repository"
	"github.com/smallbiznis/roomledger/internal/landlord/service"
	"go.uber.org/fx"
)

var Module = fx.Module("landlord.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
