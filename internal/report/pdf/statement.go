package pdf

import (
	"context"
	"fmt"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/smallbiznis/roomledger/internal/report/domain"
)

type StatementRenderer struct{}

func New() domain.Renderer {
	return &StatementRenderer{}
}

var (
	headerText = props.Text{Style: fontstyle.Bold, Size: 9}
	cellText   = props.Text{Size: 9}
	amountText = props.Text{Size: 9, Align: align.Right}
)

func (r *StatementRenderer) RenderStatement(ctx context.Context, details domain.MonthlyDetails) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	period := time.Date(details.Year, time.Month(details.Month), 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
	m.AddRow(20,
		text.NewCol(8, "Monthly statement", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, period, props.Text{Size: 12, Align: align.Right, Top: 4}),
	)
	m.AddRow(10,
		text.NewCol(12, details.PropertyName, props.Text{Size: 12, Style: fontstyle.Bold}),
	)

	for _, room := range details.Rooms {
		status := "Vacant"
		if room.IsOccupied {
			status = "Occupied"
		}
		m.AddRow(12,
			text.NewCol(8, "Room "+room.RoomNumber, props.Text{Size: 11, Style: fontstyle.Bold, Top: 4}),
			text.NewCol(4, status, props.Text{Size: 9, Align: align.Right, Top: 5}),
		)

		if len(room.MeterReadings) > 0 {
			m.AddRow(7,
				text.NewCol(3, "Reading date", headerText),
				text.NewCol(2, "Last", headerText),
				text.NewCol(2, "Current", headerText),
				text.NewCol(2, "Units", headerText),
				text.NewCol(1, "Rate", headerText),
				text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
			)
			for _, reading := range room.MeterReadings {
				m.AddRow(6,
					text.NewCol(3, reading.ReadingDate.Format("2006-01-02"), cellText),
					text.NewCol(2, formatNumber(reading.LastReading), cellText),
					text.NewCol(2, formatNumber(reading.CurrentReading), cellText),
					text.NewCol(2, formatNumber(reading.Consumption), cellText),
					text.NewCol(1, formatNumber(reading.Rate), cellText),
					text.NewCol(2, formatNumber(reading.TotalAmount), amountText),
				)
			}
		}

		if len(room.Payments) > 0 {
			m.AddRow(7,
				text.NewCol(3, "Payment date", headerText),
				text.NewCol(3, "Status", headerText),
				text.NewCol(3, "Due", headerText),
				text.NewCol(3, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
			)
			for _, payment := range room.Payments {
				paid := "Unpaid"
				if payment.IsPaid {
					paid = "Paid"
				}
				due := "-"
				if payment.PaymentDue != nil {
					due = formatNumber(*payment.PaymentDue)
				}
				m.AddRow(6,
					text.NewCol(3, payment.PaymentDate.Format("2006-01-02"), cellText),
					text.NewCol(3, paid, cellText),
					text.NewCol(3, due, cellText),
					text.NewCol(3, formatNumber(payment.Amount), amountText),
				)
			}
		}

		if len(room.MeterReadings) == 0 && len(room.Payments) == 0 {
			m.AddRow(6, text.NewCol(12, "No activity this month", cellText))
		}
	}

	totals := details.Totals
	m.AddRow(10, col.New(12))
	addTotal(m, "Units consumed", totals.Consumption)
	addTotal(m, "Electricity billed", totals.ElectricityAmount)
	addTotal(m, "Payments raised", totals.PaymentAmount)
	addTotal(m, "Payments received", totals.PaidAmount)
	addTotal(m, "Outstanding dues", totals.DueAmount)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func addTotal(m core.Maroto, label string, value float64) {
	m.AddRow(7,
		col.New(6),
		text.NewCol(3, label, cellText),
		text.NewCol(3, formatNumber(value), props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
	)
}

func formatNumber(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
