package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/roomledger/internal/clock"
	"github.com/smallbiznis/roomledger/internal/config"
	"github.com/smallbiznis/roomledger/internal/electricity/domain"
	obsmetrics "github.com/smallbiznis/roomledger/internal/observability/metrics"
	paymentdomain "github.com/smallbiznis/roomledger/internal/payment/domain"
	propertydomain "github.com/smallbiznis/roomledger/internal/property/domain"
	roomdomain "github.com/smallbiznis/roomledger/internal/room/domain"
	tenantdomain "github.com/smallbiznis/roomledger/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	SourceSingle = "single"
	SourceBulk   = "bulk"

	paymentSource = "electricity"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Billing      *config.BillingConfigHolder
	Repo         domain.Repository
	RoomRepo     roomdomain.Repository
	PropertyRepo propertydomain.Repository
	TenantRepo   tenantdomain.Repository
	Payments     paymentdomain.Service
	Metrics      *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	billing      *config.BillingConfigHolder
	repo         domain.Repository
	roomRepo     roomdomain.Repository
	propertyRepo propertydomain.Repository
	tenantRepo   tenantdomain.Repository
	payments     paymentdomain.Service
	metrics      *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("electricity.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		billing:      p.Billing,
		repo:         p.Repo,
		roomRepo:     p.RoomRepo,
		propertyRepo: p.PropertyRepo,
		tenantRepo:   p.TenantRepo,
		payments:     p.Payments,
		metrics:      p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateReadingRequest) (domain.Reading, error) {
	var created domain.Reading
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = s.create(ctx, tx, req)
		return err
	})
	if err != nil {
		return domain.Reading{}, err
	}

	s.metrics.RecordReading(ctx, SourceSingle)
	return created, nil
}

func (s *Service) CreateBulk(ctx context.Context, reqs []domain.CreateReadingRequest) ([]domain.Reading, error) {
	if len(reqs) == 0 {
		return nil, domain.ErrEmptyBatch
	}

	created := make([]domain.Reading, 0, len(reqs))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, req := range reqs {
			reading, err := s.create(ctx, tx, req)
			if err != nil {
				s.log.Debug("bulk reading rejected", zap.Int("index", i), zap.Error(err))
				return err
			}
			created = append(created, reading)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for range created {
		s.metrics.RecordReading(ctx, SourceBulk)
	}
	s.log.Info("bulk readings recorded", zap.Int("count", len(created)))
	return created, nil
}

func (s *Service) List(ctx context.Context, req domain.ListReadingRequest) ([]domain.Reading, error) {
	return s.list(ctx, domain.ListReadingFilter{}, req)
}

func (s *Service) ListByRoom(ctx context.Context, roomID snowflake.ID, req domain.ListReadingRequest) ([]domain.Reading, error) {
	room, err := s.roomRepo.FindByID(ctx, s.db, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, roomdomain.ErrNotFound
	}
	return s.list(ctx, domain.ListReadingFilter{RoomID: &roomID}, req)
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Reading, error) {
	reading, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Reading{}, err
	}
	if reading == nil {
		return domain.Reading{}, domain.ErrNotFound
	}
	return *reading, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateReadingRequest) (domain.Reading, error) {
	var updated domain.Reading
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reading, err := s.repo.FindByID(ctx, tx, req.ID)
		if err != nil {
			return err
		}
		if reading == nil {
			return domain.ErrNotFound
		}

		if req.ReadingDate != nil && !req.ReadingDate.IsZero() {
			reading.ReadingDate = dateOnly(*req.ReadingDate)
		}
		if req.LastReading != nil {
			reading.LastReading = *req.LastReading
		}
		if req.CurrentReading != nil {
			reading.CurrentReading = *req.CurrentReading
		}
		if req.Rate != nil {
			reading.Rate = *req.Rate
		}
		if err := validateMeter(reading.LastReading, reading.CurrentReading, reading.Rate); err != nil {
			return err
		}
		reading.Recalculate()
		reading.UpdatedAt = s.clock.Now()

		if err := s.repo.Update(ctx, tx, reading); err != nil {
			return err
		}
		updated = *reading
		return nil
	})
	if err != nil {
		return domain.Reading{}, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reading, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if reading == nil {
			return domain.ErrNotFound
		}
		return s.repo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}
	s.log.Info("electricity reading deleted", zap.String("reading_id", id.String()))
	return nil
}

func (s *Service) MonthlyReport(ctx context.Context, propertyID snowflake.ID, month, year int) (domain.MonthlyReport, error) {
	from, to, year, err := Period(s.clock, month, year)
	if err != nil {
		return domain.MonthlyReport{}, err
	}

	property, err := s.propertyRepo.FindByID(ctx, s.db, propertyID)
	if err != nil {
		return domain.MonthlyReport{}, err
	}
	if property == nil {
		return domain.MonthlyReport{}, propertydomain.ErrNotFound
	}

	readings, err := s.repo.ListByPeriod(ctx, s.db, propertyID, from, to)
	if err != nil {
		return domain.MonthlyReport{}, err
	}
	return Summarize(propertyID, month, year, readings), nil
}

// Summarize folds readings into a MonthlyReport.
func Summarize(propertyID snowflake.ID, month, year int, readings []domain.Reading) domain.MonthlyReport {
	report := domain.MonthlyReport{
		PropertyID: propertyID,
		Month:      month,
		Year:       year,
		Count:      len(readings),
		Readings:   readings,
	}
	if report.Readings == nil {
		report.Readings = []domain.Reading{}
	}
	for _, r := range readings {
		report.TotalConsumption += r.Consumption
		report.TotalAmount += r.TotalAmount
	}
	return report
}

// Period returns the [from, to) range of a calendar month. A zero year is
// the current year of c.
func Period(c clock.Clock, month, year int) (time.Time, time.Time, int, error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, 0, domain.ErrInvalidMonth
	}
	if year == 0 {
		year = c.Now().UTC().Year()
	}
	if year < 2000 || year > 9999 {
		return time.Time{}, time.Time{}, 0, domain.ErrInvalidYear
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0), year, nil
}

func (s *Service) create(ctx context.Context, tx *gorm.DB, req domain.CreateReadingRequest) (domain.Reading, error) {
	roomNumber := strings.TrimSpace(req.RoomNumber)
	if roomNumber == "" {
		return domain.Reading{}, domain.ErrInvalidRoomNumber
	}

	property, err := s.propertyRepo.FindByID(ctx, tx, req.PropertyID)
	if err != nil {
		return domain.Reading{}, err
	}
	if property == nil {
		return domain.Reading{}, propertydomain.ErrNotFound
	}
	room, err := s.roomRepo.FindByNumber(ctx, tx, property.ID, roomNumber)
	if err != nil {
		return domain.Reading{}, err
	}
	if room == nil {
		return domain.Reading{}, roomdomain.ErrNotFound
	}

	billing := s.billing.Get()
	now := s.clock.Now()

	reading := domain.Reading{
		ID:             s.genID.Generate(),
		RoomID:         room.ID,
		PropertyID:     property.ID,
		RoomNumber:     room.RoomNumber,
		ReadingDate:    clock.Today(s.clock),
		CurrentReading: req.CurrentReading,
		Rate:           billing.Electricity.DefaultRate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.ReadingDate != nil && !req.ReadingDate.IsZero() {
		reading.ReadingDate = dateOnly(*req.ReadingDate)
	}
	if req.Rate != nil {
		reading.Rate = *req.Rate
	}
	if req.LastReading != nil {
		reading.LastReading = *req.LastReading
	} else {
		latest, err := s.repo.LatestByRoom(ctx, tx, room.ID)
		if err != nil {
			return domain.Reading{}, err
		}
		if latest != nil {
			reading.LastReading = latest.CurrentReading
		}
	}

	if err := validateMeter(reading.LastReading, reading.CurrentReading, reading.Rate); err != nil {
		return domain.Reading{}, err
	}
	reading.Recalculate()

	if err := s.repo.Insert(ctx, tx, &reading); err != nil {
		return domain.Reading{}, err
	}

	tenant, err := s.tenantRepo.FindActiveByRoom(ctx, tx, room.ID, 0)
	if err != nil {
		return domain.Reading{}, err
	}
	if tenant != nil {
		payment, err := s.payments.Generate(ctx, tx, paymentdomain.GenerateRequest{
			TenantID:    tenant.ID,
			RoomID:      room.ID,
			PropertyID:  property.ID,
			Month:       int(now.Month()),
			Year:        now.Year(),
			Amount:      reading.TotalAmount,
			IsPaid:      billing.Electricity.MarkGeneratedPaid,
			PaymentDate: clock.Today(s.clock),
			Source:      paymentSource,
		})
		if err != nil {
			return domain.Reading{}, err
		}
		reading.GeneratedPaymentID = &payment.ID
	}

	s.log.Info("electricity reading recorded",
		zap.String("reading_id", reading.ID.String()),
		zap.String("room_id", room.ID.String()),
		zap.Float64("consumption", reading.Consumption),
		zap.Bool("payment_generated", reading.GeneratedPaymentID != nil),
	)
	return reading, nil
}

func (s *Service) list(ctx context.Context, filter domain.ListReadingFilter, req domain.ListReadingRequest) ([]domain.Reading, error) {
	readings, err := s.repo.List(ctx, s.db, filter, req.Pagination)
	if err != nil {
		return nil, err
	}
	if readings == nil {
		readings = []domain.Reading{}
	}
	return readings, nil
}

func validateMeter(last, current, rate float64) error {
	if last < 0 || current < 0 {
		return domain.ErrInvalidReading
	}
	if current < last {
		return domain.ErrReadingDecreased
	}
	if rate < 0 {
		return domain.ErrInvalidRate
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
