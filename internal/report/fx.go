package report

import (
	"github.com/smallbiznis/roomledger/internal/report/pdf"
	"github.com/smallbiznis/roomledger/internal/report/service"
	"go.uber.org/fx"
)

var Module = fx.Module("report.service",
	fx.Provide(pdf.New),
	fx.Provide(service.New),
)
