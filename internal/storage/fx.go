package storage

import (
	tenantdomain "github.com/smallbiznis/roomledger/internal/tenant/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("storage",
	fx.Provide(NewLocal),
	fx.Provide(func(l *Local) tenantdomain.DocumentStore { return l }),
)
