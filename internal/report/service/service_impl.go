package service

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/roomledger/internal/clock"
	electricitydomain "github.com/smallbiznis/roomledger/internal/electricity/domain"
	electricityservice "github.com/smallbiznis/roomledger/internal/electricity/service"
	paymentdomain "github.com/smallbiznis/roomledger/internal/payment/domain"
	propertydomain "github.com/smallbiznis/roomledger/internal/property/domain"
	"github.com/smallbiznis/roomledger/internal/report/domain"
	roomdomain "github.com/smallbiznis/roomledger/internal/room/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Clock        clock.Clock
	PropertyRepo propertydomain.Repository
	RoomRepo     roomdomain.Repository
	ReadingRepo  electricitydomain.Repository
	PaymentRepo  paymentdomain.Repository
	Renderer     domain.Renderer
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	clock        clock.Clock
	propertyRepo propertydomain.Repository
	roomRepo     roomdomain.Repository
	readingRepo  electricitydomain.Repository
	paymentRepo  paymentdomain.Repository
	renderer     domain.Renderer
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("report.service"),
		clock:        p.Clock,
		propertyRepo: p.PropertyRepo,
		roomRepo:     p.RoomRepo,
		readingRepo:  p.ReadingRepo,
		paymentRepo:  p.PaymentRepo,
		renderer:     p.Renderer,
	}
}

func (s *Service) MonthlyDetails(ctx context.Context, propertyID snowflake.ID, month, year int) (domain.MonthlyDetails, error) {
	from, to, year, err := electricityservice.Period(s.clock, month, year)
	if err != nil {
		if errors.Is(err, electricitydomain.ErrInvalidMonth) {
			return domain.MonthlyDetails{}, domain.ErrInvalidMonth
		}
		return domain.MonthlyDetails{}, err
	}

	property, err := s.propertyRepo.FindByID(ctx, s.db, propertyID)
	if err != nil {
		return domain.MonthlyDetails{}, err
	}
	if property == nil {
		return domain.MonthlyDetails{}, propertydomain.ErrNotFound
	}

	rooms, err := s.roomRepo.ListByProperty(ctx, s.db, propertyID)
	if err != nil {
		return domain.MonthlyDetails{}, err
	}
	if len(rooms) == 0 {
		return domain.MonthlyDetails{}, domain.ErrNoRooms
	}

	readings, err := s.readingRepo.ListByPeriod(ctx, s.db, propertyID, from, to)
	if err != nil {
		return domain.MonthlyDetails{}, err
	}
	payments, err := s.paymentRepo.ListByPeriod(ctx, s.db, propertyID, month, year)
	if err != nil {
		return domain.MonthlyDetails{}, err
	}

	readingsByRoom := make(map[snowflake.ID][]electricitydomain.Reading, len(rooms))
	for _, r := range readings {
		readingsByRoom[r.RoomID] = append(readingsByRoom[r.RoomID], r)
	}
	paymentsByRoom := make(map[snowflake.ID][]paymentdomain.Payment, len(rooms))
	for _, p := range payments {
		paymentsByRoom[p.RoomID] = append(paymentsByRoom[p.RoomID], p)
	}

	details := domain.MonthlyDetails{
		PropertyID:   property.ID,
		PropertyName: property.PropertyName,
		Month:        month,
		Year:         year,
		Rooms:        make([]domain.RoomDetails, 0, len(rooms)),
	}
	for _, room := range rooms {
		rd := domain.RoomDetails{
			RoomID:        room.ID,
			RoomNumber:    room.RoomNumber,
			IsOccupied:    room.IsOccupied,
			MeterReadings: readingsByRoom[room.ID],
			Payments:      paymentsByRoom[room.ID],
		}
		if rd.MeterReadings == nil {
			rd.MeterReadings = []electricitydomain.Reading{}
		}
		if rd.Payments == nil {
			rd.Payments = []paymentdomain.Payment{}
		}
		for _, r := range rd.MeterReadings {
			details.Totals.Consumption += r.Consumption
			details.Totals.ElectricityAmount += r.TotalAmount
		}
		for _, p := range rd.Payments {
			details.Totals.PaymentAmount += p.Amount
			if p.IsPaid {
				details.Totals.PaidAmount += p.Amount
			}
			if p.PaymentDue != nil {
				details.Totals.DueAmount += *p.PaymentDue
			}
		}
		details.Rooms = append(details.Rooms, rd)
	}
	return details, nil
}

func (s *Service) Statement(ctx context.Context, propertyID snowflake.ID, month, year int) ([]byte, error) {
	details, err := s.MonthlyDetails(ctx, propertyID, month, year)
	if err != nil {
		return nil, err
	}
	doc, err := s.renderer.RenderStatement(ctx, details)
	if err != nil {
		s.log.Error("failed to render statement",
			zap.String("property_id", propertyID.String()),
			zap.Error(err),
		)
		return nil, err
	}
	return doc, nil
}
