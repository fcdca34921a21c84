package service

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/roomledger/internal/clock"
	"github.com/smallbiznis/roomledger/internal/dbtest"
	"github.com/smallbiznis/roomledger/internal/payment/domain"
	"github.com/smallbiznis/roomledger/internal/payment/repository"
	propertydomain "github.com/smallbiznis/roomledger/internal/property/domain"
	propertyrepo "github.com/smallbiznis/roomledger/internal/property/repository"
	roomdomain "github.com/smallbiznis/roomledger/internal/room/domain"
	roomrepo "github.com/smallbiznis/roomledger/internal/room/repository"
	tenantdomain "github.com/smallbiznis/roomledger/internal/tenant/domain"
	tenantrepo "github.com/smallbiznis/roomledger/internal/tenant/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type harness struct {
	svc      domain.Service
	db       *gorm.DB
	fixtures *dbtest.Fixtures
	property propertydomain.Property
	room     roomdomain.Room
	tenant   tenantdomain.Tenant
}

func setup(t *testing.T) harness {
	t.Helper()
	db := dbtest.Open(t)
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	svc := New(Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        dbtest.Node(t),
		Clock:        clock.NewFakeClock(now),
		Repo:         repository.Provide(),
		TenantRepo:   tenantrepo.Provide(),
		RoomRepo:     roomrepo.Provide(),
		PropertyRepo: propertyrepo.Provide(),
	})
	fixtures := dbtest.NewFixtures(t, db, dbtest.Node(t), now)
	property := fixtures.Property(fixtures.Landlord("owner@example.com").ID, "Lake View")
	room := fixtures.Room(property.ID, "101")
	tenant := fixtures.Tenant(room, "Meera", true)
	return harness{svc: svc, db: db, fixtures: fixtures, property: property, room: room, tenant: tenant}
}

func (h harness) count(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.db.Table("payments").Count(&n).Error)
	return n
}

func TestCreatePayment(t *testing.T) {
	h := setup(t)
	paid := true
	due := 250.0

	payment, err := h.svc.Create(context.Background(), domain.CreatePaymentRequest{
		TenantID:   h.tenant.ID,
		RoomID:     h.room.ID,
		Month:      3,
		Year:       2025,
		Amount:     4500,
		PaymentDue: &due,
		IsPaid:     &paid,
	})
	require.NoError(t, err)
	assert.Equal(t, h.property.ID, payment.PropertyID)
	assert.True(t, payment.IsPaid)
	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), payment.PaymentDate)

	got, err := h.svc.GetByID(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, 4500.0, got.Amount)
	require.NotNil(t, got.PaymentDue)
	assert.Equal(t, 250.0, *got.PaymentDue)
}

func TestCreateDefaultsToPaid(t *testing.T) {
	h := setup(t)
	ctx := context.Background()

	payment, err := h.svc.Create(ctx, domain.CreatePaymentRequest{TenantID: h.tenant.ID, RoomID: h.room.ID, Month: 4, Year: 2025, Amount: 4500})
	require.NoError(t, err)
	assert.True(t, payment.IsPaid)

	got, err := h.svc.GetByID(ctx, payment.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPaid)

	unpaid := false
	pending, err := h.svc.Create(ctx, domain.CreatePaymentRequest{TenantID: h.tenant.ID, RoomID: h.room.ID, Month: 5, Year: 2025, Amount: 4500, IsPaid: &unpaid})
	require.NoError(t, err)
	assert.False(t, pending.IsPaid)
}

func TestCreateRejectsDuplicatePeriod(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	req := domain.CreatePaymentRequest{TenantID: h.tenant.ID, RoomID: h.room.ID, Month: 3, Year: 2025, Amount: 100}

	_, err := h.svc.Create(ctx, req)
	require.NoError(t, err)

	_, err = h.svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrDuplicatePeriod)
	assert.Equal(t, int64(1), h.count(t))

	req.Year = 2024
	_, err = h.svc.Create(ctx, req)
	assert.NoError(t, err)
}

func TestCreateValidatesReferences(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	otherRoom := h.fixtures.Room(h.property.ID, "102")

	tests := []struct {
		name string
		req  domain.CreatePaymentRequest
		err  error
	}{
		{"missing tenant", domain.CreatePaymentRequest{TenantID: 1, RoomID: h.room.ID, Month: 3, Year: 2025}, tenantdomain.ErrNotFound},
		{"missing room", domain.CreatePaymentRequest{TenantID: h.tenant.ID, RoomID: 1, Month: 3, Year: 2025}, roomdomain.ErrNotFound},
		{"tenant not in room", domain.CreatePaymentRequest{TenantID: h.tenant.ID, RoomID: otherRoom.ID, Month: 3, Year: 2025}, domain.ErrTenantNotInRoom},
		{"month out of range", domain.CreatePaymentRequest{TenantID: h.tenant.ID, RoomID: h.room.ID, Month: 13, Year: 2025}, domain.ErrInvalidMonth},
		{"negative amount", domain.CreatePaymentRequest{TenantID: h.tenant.ID, RoomID: h.room.ID, Month: 3, Year: 2025, Amount: -1}, domain.ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.svc.Create(ctx, tt.req)
			assert.ErrorIs(t, err, tt.err)
		})
	}
	assert.Zero(t, h.count(t))
}

func TestGenerateRunsInCallerTransaction(t *testing.T) {
	h := setup(t)
	ctx := context.Background()

	err := h.db.Transaction(func(tx *gorm.DB) error {
		_, err := h.svc.Generate(ctx, tx, domain.GenerateRequest{
			TenantID:   h.tenant.ID,
			RoomID:     h.room.ID,
			PropertyID: h.property.ID,
			Month:      3,
			Year:       2025,
			Amount:     500,
			Source:     "electricity",
		})
		require.NoError(t, err)

		_, err = h.svc.Generate(ctx, tx, domain.GenerateRequest{
			TenantID:   h.tenant.ID,
			RoomID:     h.room.ID,
			PropertyID: h.property.ID,
			Month:      3,
			Year:       2025,
			Amount:     500,
		})
		return err
	})
	assert.ErrorIs(t, err, domain.ErrDuplicatePeriod)
	assert.Zero(t, h.count(t))
}

func TestUpdateAndDelete(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	payment, err := h.svc.Create(ctx, domain.CreatePaymentRequest{TenantID: h.tenant.ID, RoomID: h.room.ID, Month: 3, Year: 2025, Amount: 100})
	require.NoError(t, err)

	unpaid := false
	updated, err := h.svc.Update(ctx, domain.UpdatePaymentRequest{ID: payment.ID, IsPaid: &unpaid})
	require.NoError(t, err)
	assert.False(t, updated.IsPaid)
	assert.Equal(t, 100.0, updated.Amount)

	negative := -5.0
	_, err = h.svc.Update(ctx, domain.UpdatePaymentRequest{ID: payment.ID, Amount: &negative})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	require.NoError(t, h.svc.Delete(ctx, payment.ID))
	_, err = h.svc.GetByID(ctx, payment.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListByTenantAndRoom(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	for month := 1; month <= 3; month++ {
		_, err := h.svc.Create(ctx, domain.CreatePaymentRequest{TenantID: h.tenant.ID, RoomID: h.room.ID, Month: month, Year: 2025, Amount: 100})
		require.NoError(t, err)
	}

	byTenant, err := h.svc.ListByTenant(ctx, h.tenant.ID, domain.ListPaymentRequest{})
	require.NoError(t, err)
	assert.Len(t, byTenant, 3)
	assert.Equal(t, 3, byTenant[0].Month)

	february := 2
	byRoom, err := h.svc.ListByRoom(ctx, h.room.ID, domain.ListPaymentRequest{Month: &february})
	require.NoError(t, err)
	assert.Len(t, byRoom, 1)

	_, err = h.svc.ListByTenant(ctx, 1, domain.ListPaymentRequest{})
	assert.ErrorIs(t, err, tenantdomain.ErrNotFound)
	_, err = h.svc.ListByRoom(ctx, 1, domain.ListPaymentRequest{})
	assert.ErrorIs(t, err, roomdomain.ErrNotFound)
}

func TestMonthlyReportTotals(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	second := h.fixtures.Tenant(h.fixtures.Room(h.property.ID, "102"), "Ravi", true)

	paid, unpaid := true, false
	due := 40.0
	_, err := h.svc.Create(ctx, domain.CreatePaymentRequest{TenantID: h.tenant.ID, RoomID: h.room.ID, Month: 3, Year: 2025, Amount: 300, IsPaid: &paid})
	require.NoError(t, err)
	_, err = h.svc.Create(ctx, domain.CreatePaymentRequest{TenantID: second.ID, RoomID: second.AssignedRoomID, Month: 3, Year: 2025, Amount: 200, PaymentDue: &due, IsPaid: &unpaid})
	require.NoError(t, err)
	_, err = h.svc.Create(ctx, domain.CreatePaymentRequest{TenantID: h.tenant.ID, RoomID: h.room.ID, Month: 3, Year: 2024, Amount: 999})
	require.NoError(t, err)

	report, err := h.svc.MonthlyReport(ctx, h.property.ID, 3, 2025)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Count)
	assert.Equal(t, 500.0, report.TotalAmount)
	assert.Equal(t, 300.0, report.TotalPaid)
	assert.Equal(t, 200.0, report.TotalUnpaid)
	assert.Equal(t, 40.0, report.TotalDue)

	anyYear, err := h.svc.MonthlyReport(ctx, h.property.ID, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, anyYear.Count)

	_, err = h.svc.MonthlyReport(ctx, 1, 3, 2025)
	assert.ErrorIs(t, err, propertydomain.ErrNotFound)
	_, err = h.svc.MonthlyReport(ctx, h.property.ID, 0, 2025)
	assert.ErrorIs(t, err, domain.ErrInvalidMonth)
}
