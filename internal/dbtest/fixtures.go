package dbtest

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	landlorddomain "github.com/smallbiznis/roomledger/internal/landlord/domain"
	propertydomain "github.com/smallbiznis/roomledger/internal/property/domain"
	roomdomain "github.com/smallbiznis/roomledger/internal/room/domain"
	tenantdomain "github.com/smallbiznis/roomledger/internal/tenant/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var nodes atomic.Int64

// Fixtures writes rows directly, bypassing service rules.
type Fixtures struct {
	t    *testing.T
	db   *gorm.DB
	node *snowflake.Node
	now  time.Time
}

func NewFixtures(t *testing.T, db *gorm.DB, node *snowflake.Node, now time.Time) *Fixtures {
	return &Fixtures{t: t, db: db, node: node, now: now.UTC()}
}

// Node returns a snowflake node with a number no other caller in the test
// binary shares.
func Node(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(nodes.Add(1) % 1024)
	require.NoError(t, err)
	return node
}

func (f *Fixtures) Landlord(email string) landlorddomain.Landlord {
	f.t.Helper()
	landlord := landlorddomain.Landlord{
		ID:           f.node.Generate(),
		Username:     "owner",
		Email:        email,
		MobileNumber: "9000000000",
		PasswordHash: "unused",
		IsActive:     true,
		CreatedAt:    f.now,
		UpdatedAt:    f.now,
	}
	require.NoError(f.t, f.db.Create(&landlord).Error)
	return landlord
}

func (f *Fixtures) Property(landlordID snowflake.ID, name string) propertydomain.Property {
	f.t.Helper()
	property := propertydomain.Property{
		ID:           f.node.Generate(),
		LandlordID:   landlordID,
		PropertyName: name,
		Address:      "1 Main Road",
		City:         "Pune",
		IsActive:     true,
		CreatedAt:    f.now,
		UpdatedAt:    f.now,
	}
	require.NoError(f.t, f.db.Create(&property).Error)
	return property
}

func (f *Fixtures) Room(propertyID snowflake.ID, number string) roomdomain.Room {
	f.t.Helper()
	room := roomdomain.Room{
		ID:         f.node.Generate(),
		PropertyID: propertyID,
		RoomNumber: number,
		CreatedAt:  f.now,
		UpdatedAt:  f.now,
	}
	require.NoError(f.t, f.db.Create(&room).Error)
	require.NoError(f.t, f.db.Exec(`UPDATE properties SET total_rooms = total_rooms + 1 WHERE id = ?`, propertyID).Error)
	return room
}

// Tenant inserts a tenant in room and marks the room occupied when active.
func (f *Fixtures) Tenant(room roomdomain.Room, name string, active bool) tenantdomain.Tenant {
	f.t.Helper()
	tenant := tenantdomain.Tenant{
		ID:             f.node.Generate(),
		PropertyID:     room.PropertyID,
		AssignedRoomID: room.ID,
		Name:           name,
		Email:          "tenant@example.com",
		MobileNumber:   "9111111111",
		TotalPerson:    1,
		MoveInDate:     time.Date(f.now.Year(), f.now.Month(), 1, 0, 0, 0, 0, time.UTC),
		IsActive:       active,
		CreatedAt:      f.now,
		UpdatedAt:      f.now,
	}
	require.NoError(f.t, f.db.Select("*").Create(&tenant).Error)
	if active {
		require.NoError(f.t, f.db.Exec(`UPDATE rooms SET is_occupied = ? WHERE id = ?`, true, room.ID).Error)
	}
	return tenant
}
