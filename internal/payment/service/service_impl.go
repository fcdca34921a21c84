package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/roomledger/internal/clock"
	obsmetrics "github.com/smallbiznis/roomledger/internal/observability/metrics"
	"github.com/smallbiznis/roomledger/internal/payment/domain"
	propertydomain "github.com/smallbiznis/roomledger/internal/property/domain"
	roomdomain "github.com/smallbiznis/roomledger/internal/room/domain"
	tenantdomain "github.com/smallbiznis/roomledger/internal/tenant/domain"
	"github.com/smallbiznis/roomledger/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	minYear = 2000
	maxYear = 9999

	SourceManual = "manual"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         domain.Repository
	TenantRepo   tenantdomain.Repository
	RoomRepo     roomdomain.Repository
	PropertyRepo propertydomain.Repository
	Metrics      *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         domain.Repository
	tenantRepo   tenantdomain.Repository
	roomRepo     roomdomain.Repository
	propertyRepo propertydomain.Repository
	metrics      *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("payment.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		tenantRepo:   p.TenantRepo,
		roomRepo:     p.RoomRepo,
		propertyRepo: p.PropertyRepo,
		metrics:      p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePaymentRequest) (domain.Payment, error) {
	if err := validatePeriod(req.Month, req.Year); err != nil {
		return domain.Payment{}, err
	}
	if req.Amount < 0 || (req.PaymentDue != nil && *req.PaymentDue < 0) {
		return domain.Payment{}, domain.ErrInvalidAmount
	}

	paymentDate := clock.Today(s.clock)
	if req.PaymentDate != nil && !req.PaymentDate.IsZero() {
		paymentDate = dateOnly(*req.PaymentDate)
	}

	// Manual payments are recorded as settled unless the caller says otherwise.
	isPaid := true
	if req.IsPaid != nil {
		isPaid = *req.IsPaid
	}

	var created domain.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tenant, err := s.tenantRepo.FindByID(ctx, tx, req.TenantID)
		if err != nil {
			return err
		}
		if tenant == nil {
			return tenantdomain.ErrNotFound
		}
		room, err := s.roomRepo.FindByID(ctx, tx, req.RoomID)
		if err != nil {
			return err
		}
		if room == nil {
			return roomdomain.ErrNotFound
		}
		if tenant.AssignedRoomID != room.ID {
			return domain.ErrTenantNotInRoom
		}

		created, err = s.insert(ctx, tx, domain.Payment{
			TenantID:    tenant.ID,
			RoomID:      room.ID,
			PropertyID:  room.PropertyID,
			Month:       req.Month,
			Year:        req.Year,
			Amount:      req.Amount,
			PaymentDue:  req.PaymentDue,
			IsPaid:      isPaid,
			PaymentDate: paymentDate,
		})
		return err
	})
	if err != nil {
		return domain.Payment{}, err
	}

	s.metrics.RecordPayment(ctx, SourceManual)
	s.log.Info("payment created",
		zap.String("payment_id", created.ID.String()),
		zap.String("tenant_id", created.TenantID.String()),
		zap.Int("month", created.Month),
		zap.Int("year", created.Year),
	)
	return created, nil
}

// Generate inserts a payment inside the caller's transaction. The caller is
// responsible for having resolved the tenant and room.
func (s *Service) Generate(ctx context.Context, tx *gorm.DB, req domain.GenerateRequest) (domain.Payment, error) {
	if tx == nil {
		tx = s.db
	}
	if err := validatePeriod(req.Month, req.Year); err != nil {
		return domain.Payment{}, err
	}
	if req.Amount < 0 {
		return domain.Payment{}, domain.ErrInvalidAmount
	}

	paymentDate := req.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = clock.Today(s.clock)
	}

	created, err := s.insert(ctx, tx, domain.Payment{
		TenantID:    req.TenantID,
		RoomID:      req.RoomID,
		PropertyID:  req.PropertyID,
		Month:       req.Month,
		Year:        req.Year,
		Amount:      req.Amount,
		IsPaid:      req.IsPaid,
		PaymentDate: dateOnly(paymentDate),
	})
	if err != nil {
		return domain.Payment{}, err
	}

	source := req.Source
	if source == "" {
		source = SourceManual
	}
	s.metrics.RecordPayment(ctx, source)
	s.log.Debug("payment generated",
		zap.String("payment_id", created.ID.String()),
		zap.String("source", source),
	)
	return created, nil
}

func (s *Service) List(ctx context.Context, req domain.ListPaymentRequest) ([]domain.Payment, error) {
	return s.list(ctx, domain.ListPaymentFilter{}, req)
}

func (s *Service) ListByTenant(ctx context.Context, tenantID snowflake.ID, req domain.ListPaymentRequest) ([]domain.Payment, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, tenantdomain.ErrNotFound
	}
	return s.list(ctx, domain.ListPaymentFilter{TenantID: &tenantID}, req)
}

func (s *Service) ListByRoom(ctx context.Context, roomID snowflake.ID, req domain.ListPaymentRequest) ([]domain.Payment, error) {
	room, err := s.roomRepo.FindByID(ctx, s.db, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, roomdomain.ErrNotFound
	}
	return s.list(ctx, domain.ListPaymentFilter{RoomID: &roomID}, req)
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Payment, error) {
	payment, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Payment{}, err
	}
	if payment == nil {
		return domain.Payment{}, domain.ErrNotFound
	}
	return *payment, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdatePaymentRequest) (domain.Payment, error) {
	var updated domain.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment, err := s.repo.FindByID(ctx, tx, req.ID)
		if err != nil {
			return err
		}
		if payment == nil {
			return domain.ErrNotFound
		}

		if req.Amount != nil {
			if *req.Amount < 0 {
				return domain.ErrInvalidAmount
			}
			payment.Amount = *req.Amount
		}
		if req.PaymentDue != nil {
			if *req.PaymentDue < 0 {
				return domain.ErrInvalidAmount
			}
			due := *req.PaymentDue
			payment.PaymentDue = &due
		}
		if req.IsPaid != nil {
			payment.IsPaid = *req.IsPaid
		}
		if req.PaymentDate != nil && !req.PaymentDate.IsZero() {
			payment.PaymentDate = dateOnly(*req.PaymentDate)
		}
		payment.UpdatedAt = s.clock.Now()

		if err := s.repo.Update(ctx, tx, payment); err != nil {
			return err
		}
		updated = *payment
		return nil
	})
	if err != nil {
		return domain.Payment{}, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if payment == nil {
			return domain.ErrNotFound
		}
		return s.repo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}
	s.log.Info("payment deleted", zap.String("payment_id", id.String()))
	return nil
}

func (s *Service) MonthlyReport(ctx context.Context, propertyID snowflake.ID, month, year int) (domain.MonthlyReport, error) {
	if month < 1 || month > 12 {
		return domain.MonthlyReport{}, domain.ErrInvalidMonth
	}
	if year != 0 && (year < minYear || year > maxYear) {
		return domain.MonthlyReport{}, domain.ErrInvalidYear
	}

	property, err := s.propertyRepo.FindByID(ctx, s.db, propertyID)
	if err != nil {
		return domain.MonthlyReport{}, err
	}
	if property == nil {
		return domain.MonthlyReport{}, propertydomain.ErrNotFound
	}

	payments, err := s.repo.ListByPeriod(ctx, s.db, propertyID, month, year)
	if err != nil {
		return domain.MonthlyReport{}, err
	}
	return Summarize(propertyID, month, year, payments), nil
}

// Summarize folds payments into a MonthlyReport.
func Summarize(propertyID snowflake.ID, month, year int, payments []domain.Payment) domain.MonthlyReport {
	report := domain.MonthlyReport{
		PropertyID: propertyID,
		Month:      month,
		Year:       year,
		Count:      len(payments),
		Payments:   payments,
	}
	if report.Payments == nil {
		report.Payments = []domain.Payment{}
	}
	for _, p := range payments {
		report.TotalAmount += p.Amount
		if p.IsPaid {
			report.TotalPaid += p.Amount
		} else {
			report.TotalUnpaid += p.Amount
		}
		if p.PaymentDue != nil {
			report.TotalDue += *p.PaymentDue
		}
	}
	return report
}

func (s *Service) insert(ctx context.Context, tx *gorm.DB, payment domain.Payment) (domain.Payment, error) {
	existing, err := s.repo.FindByPeriod(ctx, tx, payment.TenantID, payment.RoomID, payment.Month, payment.Year)
	if err != nil {
		return domain.Payment{}, err
	}
	if existing != nil {
		return domain.Payment{}, domain.ErrDuplicatePeriod
	}

	now := s.clock.Now()
	payment.ID = s.genID.Generate()
	payment.CreatedAt = now
	payment.UpdatedAt = now

	if err := s.repo.Insert(ctx, tx, &payment); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Payment{}, domain.ErrDuplicatePeriod
		}
		return domain.Payment{}, err
	}
	return payment, nil
}

func (s *Service) list(ctx context.Context, filter domain.ListPaymentFilter, req domain.ListPaymentRequest) ([]domain.Payment, error) {
	if req.Month != nil && (*req.Month < 1 || *req.Month > 12) {
		return nil, domain.ErrInvalidMonth
	}
	filter.Month = req.Month
	filter.Year = req.Year
	filter.IsPaid = req.IsPaid

	payments, err := s.repo.List(ctx, s.db, filter, req.Pagination)
	if err != nil {
		return nil, err
	}
	if payments == nil {
		payments = []domain.Payment{}
	}
	return payments, nil
}

func validatePeriod(month, year int) error {
	if month < 1 || month > 12 {
		return domain.ErrInvalidMonth
	}
	if year < minYear || year > maxYear {
		return domain.ErrInvalidYear
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
