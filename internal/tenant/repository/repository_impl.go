package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/roomledger/internal/tenant/domain"
	"github.com/smallbiznis/roomledger/pkg/db/option"
	"github.com/smallbiznis/roomledger/pkg/db/pagination"
	"gorm.io/gorm"
)

const tenantColumns = `id, property_id, assigned_room_id, name, email, mobile_number, total_person,
	aadhar_photo, other_images, move_in_date, is_active, created_at, updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, tenant *domain.Tenant) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO tenants (`+tenantColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tenant.ID,
		tenant.PropertyID,
		tenant.AssignedRoomID,
		tenant.Name,
		tenant.Email,
		tenant.MobileNumber,
		tenant.TotalPerson,
		tenant.AadharPhoto,
		tenant.OtherImages,
		tenant.MoveInDate,
		tenant.IsActive,
		tenant.CreatedAt,
		tenant.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, tenant *domain.Tenant) error {
	return db.WithContext(ctx).Exec(
		`UPDATE tenants
		 SET name = ?, email = ?, mobile_number = ?, total_person = ?, aadhar_photo = ?,
		     other_images = ?, move_in_date = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		tenant.Name,
		tenant.Email,
		tenant.MobileNumber,
		tenant.TotalPerson,
		tenant.AadharPhoto,
		tenant.OtherImages,
		tenant.MoveInDate,
		tenant.IsActive,
		tenant.UpdatedAt,
		tenant.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	if err := db.WithContext(ctx).Exec(`DELETE FROM payments WHERE tenant_id = ?`, id).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).Exec(`DELETE FROM tenants WHERE id = ?`, id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Tenant, error) {
	return r.findOne(ctx, db, `SELECT `+tenantColumns+` FROM tenants WHERE id = ?`, id)
}

func (r *repo) FindActiveByRoom(ctx context.Context, db *gorm.DB, roomID, excludeID snowflake.ID) (*domain.Tenant, error) {
	return r.findOne(ctx, db,
		`SELECT `+tenantColumns+` FROM tenants
		 WHERE assigned_room_id = ? AND is_active = ? AND id <> ?
		 ORDER BY move_in_date DESC, id DESC
		 LIMIT 1`,
		roomID,
		true,
		excludeID,
	)
}

func (r *repo) ListByRoomIDs(ctx context.Context, db *gorm.DB, roomIDs []snowflake.ID) ([]domain.Tenant, error) {
	if len(roomIDs) == 0 {
		return nil, nil
	}
	var tenants []domain.Tenant
	err := db.WithContext(ctx).Raw(
		`SELECT `+tenantColumns+` FROM tenants
		 WHERE assigned_room_id IN ?
		 ORDER BY move_in_date ASC, id ASC`,
		roomIDs,
	).Scan(&tenants).Error
	if err != nil {
		return nil, err
	}
	return tenants, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListTenantFilter, page pagination.Pagination) ([]domain.Tenant, error) {
	var tenants []domain.Tenant
	stmt := db.WithContext(ctx).Model(&domain.Tenant{})
	if filter.PropertyID != nil {
		stmt = stmt.Where("property_id = ?", *filter.PropertyID)
	}
	if filter.RoomID != nil {
		stmt = stmt.Where("assigned_room_id = ?", *filter.RoomID)
	}
	if filter.IsActive != nil {
		stmt = stmt.Where("is_active = ?", *filter.IsActive)
	}
	stmt = option.Apply(stmt, option.ApplyPagination(page))
	if err := stmt.Order("created_at asc, id asc").Find(&tenants).Error; err != nil {
		return nil, err
	}
	return tenants, nil
}

func (r *repo) ListReferencing(ctx context.Context, db *gorm.DB, paths []string, excludeID snowflake.ID) ([]domain.Tenant, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	images := "CAST(other_images AS TEXT)"
	if db.Dialector.Name() == "mysql" {
		images = "CAST(other_images AS CHAR)"
	}
	match := db.Session(&gorm.Session{NewDB: true}).Where("aadhar_photo IN ?", paths)
	for _, p := range paths {
		match = match.Or(images+" LIKE ?", "%"+p+"%")
	}

	var tenants []domain.Tenant
	err := db.WithContext(ctx).
		Model(&domain.Tenant{}).
		Where("id <> ?", excludeID).
		Where(match).
		Find(&tenants).Error
	if err != nil {
		return nil, err
	}
	return tenants, nil
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, query string, args ...interface{}) (*domain.Tenant, error) {
	var tenant domain.Tenant
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&tenant).Error; err != nil {
		return nil, err
	}
	if tenant.ID == 0 {
		return nil, nil
	}
	return &tenant, nil
}
