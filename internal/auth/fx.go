package auth

import (
	"github.com/smallbiznis/roomledger/internal/auth/token"
	"go.uber.org/fx"
)

var Module = fx.Module("auth",
	fx.Provide(token.Provide),
)
