package service

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/roomledger/internal/clock"
	"github.com/smallbiznis/roomledger/internal/config"
	"github.com/smallbiznis/roomledger/internal/dbtest"
	"github.com/smallbiznis/roomledger/internal/electricity/domain"
	"github.com/smallbiznis/roomledger/internal/electricity/repository"
	paymentdomain "github.com/smallbiznis/roomledger/internal/payment/domain"
	paymentrepo "github.com/smallbiznis/roomledger/internal/payment/repository"
	paymentservice "github.com/smallbiznis/roomledger/internal/payment/service"
	propertydomain "github.com/smallbiznis/roomledger/internal/property/domain"
	propertyrepo "github.com/smallbiznis/roomledger/internal/property/repository"
	roomdomain "github.com/smallbiznis/roomledger/internal/room/domain"
	roomrepo "github.com/smallbiznis/roomledger/internal/room/repository"
	tenantrepo "github.com/smallbiznis/roomledger/internal/tenant/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type harness struct {
	svc      domain.Service
	db       *gorm.DB
	clock    *clock.FakeClock
	fixtures *dbtest.Fixtures
	property propertydomain.Property
}

func setup(t *testing.T, billing config.BillingConfig) harness {
	t.Helper()
	db := dbtest.Open(t)
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	clk := clock.NewFakeClock(now)
	log := zap.NewNop()

	tenants := tenantrepo.Provide()
	rooms := roomrepo.Provide()
	properties := propertyrepo.Provide()
	payments := paymentservice.New(paymentservice.Params{
		DB:           db,
		Log:          log,
		GenID:        dbtest.Node(t),
		Clock:        clk,
		Repo:         paymentrepo.Provide(),
		TenantRepo:   tenants,
		RoomRepo:     rooms,
		PropertyRepo: properties,
	})
	svc := New(Params{
		DB:           db,
		Log:          log,
		GenID:        dbtest.Node(t),
		Clock:        clk,
		Billing:      config.NewStaticBillingConfig(billing),
		Repo:         repository.Provide(),
		RoomRepo:     rooms,
		PropertyRepo: properties,
		TenantRepo:   tenants,
		Payments:     payments,
	})

	fixtures := dbtest.NewFixtures(t, db, dbtest.Node(t), now)
	property := fixtures.Property(fixtures.Landlord("owner@example.com").ID, "Lake View")
	return harness{svc: svc, db: db, clock: clk, fixtures: fixtures, property: property}
}

func (h harness) payments(t *testing.T) []paymentdomain.Payment {
	t.Helper()
	var payments []paymentdomain.Payment
	require.NoError(t, h.db.Order("id asc").Find(&payments).Error)
	return payments
}

func (h harness) readingCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.db.Table("electricity_readings").Count(&n).Error)
	return n
}

func f(v float64) *float64 { return &v }

func TestCreateWithActiveTenantGeneratesPayment(t *testing.T) {
	h := setup(t, config.DefaultBillingConfig())
	room := h.fixtures.Room(h.property.ID, "101")
	tenant := h.fixtures.Tenant(room, "Meera", true)

	reading, err := h.svc.Create(context.Background(), domain.CreateReadingRequest{
		PropertyID:     h.property.ID,
		RoomNumber:     "101",
		LastReading:    f(100),
		CurrentReading: 150,
		Rate:           f(10),
	})
	require.NoError(t, err)
	assert.Equal(t, 50.0, reading.Consumption)
	assert.Equal(t, 500.0, reading.TotalAmount)
	require.NotNil(t, reading.GeneratedPaymentID)

	payments := h.payments(t)
	require.Len(t, payments, 1)
	assert.Equal(t, *reading.GeneratedPaymentID, payments[0].ID)
	assert.Equal(t, tenant.ID, payments[0].TenantID)
	assert.Equal(t, 500.0, payments[0].Amount)
	assert.Equal(t, 3, payments[0].Month)
	assert.Equal(t, 2025, payments[0].Year)
	assert.False(t, payments[0].IsPaid)
	assert.Nil(t, payments[0].PaymentDue)
}

func TestCreateWithoutTenantSkipsPayment(t *testing.T) {
	h := setup(t, config.DefaultBillingConfig())
	h.fixtures.Room(h.property.ID, "101")

	reading, err := h.svc.Create(context.Background(), domain.CreateReadingRequest{
		PropertyID:     h.property.ID,
		RoomNumber:     "101",
		CurrentReading: 20,
	})
	require.NoError(t, err)
	assert.Zero(t, reading.LastReading)
	assert.Equal(t, config.DefaultElectricityRate, reading.Rate)
	assert.InDelta(t, 202.0, reading.TotalAmount, 1e-9)
	assert.Nil(t, reading.GeneratedPaymentID)
	assert.Empty(t, h.payments(t))
}

func TestCreateDefaultsLastReadingToPrevious(t *testing.T) {
	h := setup(t, config.DefaultBillingConfig())
	h.fixtures.Room(h.property.ID, "101")
	ctx := context.Background()

	_, err := h.svc.Create(ctx, domain.CreateReadingRequest{PropertyID: h.property.ID, RoomNumber: "101", CurrentReading: 120, Rate: f(5)})
	require.NoError(t, err)

	h.clock.Advance(24 * time.Hour)
	next, err := h.svc.Create(ctx, domain.CreateReadingRequest{PropertyID: h.property.ID, RoomNumber: "101", CurrentReading: 180, Rate: f(5)})
	require.NoError(t, err)
	assert.Equal(t, 120.0, next.LastReading)
	assert.Equal(t, 60.0, next.Consumption)
	assert.Equal(t, 300.0, next.TotalAmount)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	h := setup(t, config.DefaultBillingConfig())
	h.fixtures.Room(h.property.ID, "101")
	ctx := context.Background()

	_, err := h.svc.Create(ctx, domain.CreateReadingRequest{PropertyID: h.property.ID, RoomNumber: "101", LastReading: f(200), CurrentReading: 150})
	assert.ErrorIs(t, err, domain.ErrReadingDecreased)

	_, err = h.svc.Create(ctx, domain.CreateReadingRequest{PropertyID: h.property.ID, RoomNumber: "999", CurrentReading: 150})
	assert.ErrorIs(t, err, roomdomain.ErrNotFound)

	_, err = h.svc.Create(ctx, domain.CreateReadingRequest{PropertyID: 1, RoomNumber: "101", CurrentReading: 150})
	assert.ErrorIs(t, err, propertydomain.ErrNotFound)

	_, err = h.svc.Create(ctx, domain.CreateReadingRequest{PropertyID: h.property.ID, RoomNumber: "101", CurrentReading: 150, Rate: f(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidRate)

	assert.Zero(t, h.readingCount(t))
}

func TestDuplicatePeriodRollsBackReading(t *testing.T) {
	h := setup(t, config.DefaultBillingConfig())
	room := h.fixtures.Room(h.property.ID, "101")
	h.fixtures.Tenant(room, "Meera", true)
	ctx := context.Background()

	_, err := h.svc.Create(ctx, domain.CreateReadingRequest{PropertyID: h.property.ID, RoomNumber: "101", CurrentReading: 50, Rate: f(10)})
	require.NoError(t, err)

	_, err = h.svc.Create(ctx, domain.CreateReadingRequest{PropertyID: h.property.ID, RoomNumber: "101", CurrentReading: 80, Rate: f(10)})
	assert.ErrorIs(t, err, paymentdomain.ErrDuplicatePeriod)
	assert.Equal(t, int64(1), h.readingCount(t))
	assert.Len(t, h.payments(t), 1)
}

func TestGeneratedPaymentHonorsBillingConfig(t *testing.T) {
	billing := config.DefaultBillingConfig()
	billing.Electricity.MarkGeneratedPaid = true
	h := setup(t, billing)
	room := h.fixtures.Room(h.property.ID, "101")
	h.fixtures.Tenant(room, "Meera", true)

	_, err := h.svc.Create(context.Background(), domain.CreateReadingRequest{PropertyID: h.property.ID, RoomNumber: "101", CurrentReading: 10, Rate: f(2)})
	require.NoError(t, err)
	payments := h.payments(t)
	require.Len(t, payments, 1)
	assert.True(t, payments[0].IsPaid)
}

func TestCreateBulkIsAllOrNothing(t *testing.T) {
	h := setup(t, config.DefaultBillingConfig())
	h.fixtures.Room(h.property.ID, "101")
	h.fixtures.Room(h.property.ID, "102")
	ctx := context.Background()

	_, err := h.svc.CreateBulk(ctx, []domain.CreateReadingRequest{
		{PropertyID: h.property.ID, RoomNumber: "101", CurrentReading: 10},
		{PropertyID: h.property.ID, RoomNumber: "404", CurrentReading: 10},
	})
	assert.ErrorIs(t, err, roomdomain.ErrNotFound)
	assert.Zero(t, h.readingCount(t))

	created, err := h.svc.CreateBulk(ctx, []domain.CreateReadingRequest{
		{PropertyID: h.property.ID, RoomNumber: "101", CurrentReading: 10},
		{PropertyID: h.property.ID, RoomNumber: "102", CurrentReading: 30},
	})
	require.NoError(t, err)
	assert.Len(t, created, 2)
	assert.Equal(t, int64(2), h.readingCount(t))

	_, err = h.svc.CreateBulk(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrEmptyBatch)
}

func TestUpdateRecomputes(t *testing.T) {
	h := setup(t, config.DefaultBillingConfig())
	h.fixtures.Room(h.property.ID, "101")
	ctx := context.Background()

	reading, err := h.svc.Create(ctx, domain.CreateReadingRequest{PropertyID: h.property.ID, RoomNumber: "101", LastReading: f(10), CurrentReading: 20, Rate: f(3)})
	require.NoError(t, err)

	updated, err := h.svc.Update(ctx, domain.UpdateReadingRequest{ID: reading.ID, CurrentReading: f(40), Rate: f(4)})
	require.NoError(t, err)
	assert.Equal(t, 30.0, updated.Consumption)
	assert.Equal(t, 120.0, updated.TotalAmount)

	_, err = h.svc.Update(ctx, domain.UpdateReadingRequest{ID: reading.ID, LastReading: f(50)})
	assert.ErrorIs(t, err, domain.ErrReadingDecreased)

	got, err := h.svc.GetByID(ctx, reading.ID)
	require.NoError(t, err)
	assert.Equal(t, 120.0, got.TotalAmount)

	require.NoError(t, h.svc.Delete(ctx, reading.ID))
	assert.ErrorIs(t, h.svc.Delete(ctx, reading.ID), domain.ErrNotFound)
}

func TestMonthlyReport(t *testing.T) {
	h := setup(t, config.DefaultBillingConfig())
	h.fixtures.Room(h.property.ID, "101")
	ctx := context.Background()

	march := time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)
	april := time.Date(2025, time.April, 2, 0, 0, 0, 0, time.UTC)
	_, err := h.svc.Create(ctx, domain.CreateReadingRequest{PropertyID: h.property.ID, RoomNumber: "101", LastReading: f(0), CurrentReading: 10, Rate: f(2), ReadingDate: &march})
	require.NoError(t, err)
	_, err = h.svc.Create(ctx, domain.CreateReadingRequest{PropertyID: h.property.ID, RoomNumber: "101", LastReading: f(10), CurrentReading: 25, Rate: f(2), ReadingDate: &march})
	require.NoError(t, err)
	_, err = h.svc.Create(ctx, domain.CreateReadingRequest{PropertyID: h.property.ID, RoomNumber: "101", LastReading: f(25), CurrentReading: 30, Rate: f(2), ReadingDate: &april})
	require.NoError(t, err)

	report, err := h.svc.MonthlyReport(ctx, h.property.ID, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, 2025, report.Year)
	assert.Equal(t, 2, report.Count)
	assert.Equal(t, 25.0, report.TotalConsumption)
	assert.Equal(t, 50.0, report.TotalAmount)

	_, err = h.svc.MonthlyReport(ctx, h.property.ID, 13, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidMonth)
	_, err = h.svc.MonthlyReport(ctx, 1, 3, 2025)
	assert.ErrorIs(t, err, propertydomain.ErrNotFound)
}

func TestListByRoom(t *testing.T) {
	h := setup(t, config.DefaultBillingConfig())
	room := h.fixtures.Room(h.property.ID, "101")
	h.fixtures.Room(h.property.ID, "102")
	ctx := context.Background()

	_, err := h.svc.Create(ctx, domain.CreateReadingRequest{PropertyID: h.property.ID, RoomNumber: "101", CurrentReading: 10})
	require.NoError(t, err)
	_, err = h.svc.Create(ctx, domain.CreateReadingRequest{PropertyID: h.property.ID, RoomNumber: "102", CurrentReading: 10})
	require.NoError(t, err)

	got, err := h.svc.ListByRoom(ctx, room.ID, domain.ListReadingRequest{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "101", got[0].RoomNumber)

	_, err = h.svc.ListByRoom(ctx, 1, domain.ListReadingRequest{})
	assert.ErrorIs(t, err, roomdomain.ErrNotFound)
}
