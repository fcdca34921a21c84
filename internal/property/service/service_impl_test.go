package service

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/roomledger/internal/clock"
	"github.com/smallbiznis/roomledger/internal/dbtest"
	landlorddomain "github.com/smallbiznis/roomledger/internal/landlord/domain"
	landlordrepo "github.com/smallbiznis/roomledger/internal/landlord/repository"
	"github.com/smallbiznis/roomledger/internal/property/domain"
	"github.com/smallbiznis/roomledger/internal/property/repository"
	"github.com/smallbiznis/roomledger/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (domain.Service, *gorm.DB, *dbtest.Fixtures) {
	t.Helper()
	db := dbtest.Open(t)
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	svc := New(Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        dbtest.Node(t),
		Clock:        clock.NewFakeClock(now),
		Repo:         repository.Provide(),
		LandlordRepo: landlordrepo.Provide(),
	})
	return svc, db, dbtest.NewFixtures(t, db, dbtest.Node(t), now)
}

func TestCreateStartsWithZeroRooms(t *testing.T) {
	svc, _, fixtures := setupService(t)
	landlord := fixtures.Landlord("owner@example.com")

	property, err := svc.Create(context.Background(), domain.CreatePropertyRequest{
		LandlordID:   landlord.ID,
		PropertyName: " Lake View ",
		Address:      "12 Ring Road",
		City:         "Pune",
	})
	require.NoError(t, err)
	assert.Equal(t, "Lake View", property.PropertyName)
	assert.Zero(t, property.TotalRooms)
	assert.True(t, property.IsActive)
}

func TestCreateRequiresLandlord(t *testing.T) {
	svc, _, fixtures := setupService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreatePropertyRequest{
		LandlordID:   12345,
		PropertyName: "Lake View",
		Address:      "12 Ring Road",
	})
	assert.ErrorIs(t, err, landlorddomain.ErrNotFound)

	landlord := fixtures.Landlord("owner@example.com")
	_, err = svc.Create(ctx, domain.CreatePropertyRequest{LandlordID: landlord.ID, Address: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidPropertyName)
	_, err = svc.Create(ctx, domain.CreatePropertyRequest{LandlordID: landlord.ID, PropertyName: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidAddress)
}

func TestListByLandlord(t *testing.T) {
	svc, _, fixtures := setupService(t)
	ctx := context.Background()
	owner := fixtures.Landlord("owner@example.com")
	other := fixtures.Landlord("other@example.com")
	fixtures.Property(owner.ID, "A")
	fixtures.Property(owner.ID, "B")
	fixtures.Property(other.ID, "C")

	got, err := svc.ListByLandlord(ctx, owner.ID, pagination.Pagination{})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = svc.ListByLandlord(ctx, 999, pagination.Pagination{})
	assert.ErrorIs(t, err, landlorddomain.ErrNotFound)
}

func TestUpdateKeepsUnsetFields(t *testing.T) {
	svc, _, fixtures := setupService(t)
	ctx := context.Background()
	landlord := fixtures.Landlord("owner@example.com")
	property := fixtures.Property(landlord.ID, "Lake View")

	city := "Mumbai"
	inactive := false
	updated, err := svc.Update(ctx, domain.UpdatePropertyRequest{ID: property.ID, City: &city, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Mumbai", updated.City)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "Lake View", updated.PropertyName)

	_, err = svc.Update(ctx, domain.UpdatePropertyRequest{ID: 42})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteCascades(t *testing.T) {
	svc, db, fixtures := setupService(t)
	ctx := context.Background()
	landlord := fixtures.Landlord("owner@example.com")
	property := fixtures.Property(landlord.ID, "Lake View")
	keep := fixtures.Property(landlord.ID, "Hill Top")
	room := fixtures.Room(property.ID, "101")
	fixtures.Room(keep.ID, "201")
	fixtures.Tenant(room, "Meera", true)

	require.NoError(t, svc.Delete(ctx, property.ID))

	var rooms, tenants int64
	require.NoError(t, db.Table("rooms").Count(&rooms).Error)
	require.NoError(t, db.Table("tenants").Count(&tenants).Error)
	assert.Equal(t, int64(1), rooms)
	assert.Zero(t, tenants)

	_, err := svc.GetByID(ctx, property.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
