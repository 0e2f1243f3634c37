package tenants

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ibrahem-systems/daftar-backend/pkg/db/models"
	"github.com/ibrahem-systems/daftar-backend/pkg/enums"
)

// Repository exposes tenant persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a tenants repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a tenant row.
func (r *Repository) Create(ctx context.Context, tenant *models.Tenant) error {
	return r.db.WithContext(ctx).Create(tenant).Error
}

// FindByID loads a tenant.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.WithContext(ctx).First(&tenant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

// FindByName loads a tenant by its unique name.
func (r *Repository) FindByName(ctx context.Context, name string) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&tenant).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

// Save persists field changes on an already-loaded tenant.
func (r *Repository) Save(ctx context.Context, tenant *models.Tenant) error {
	return r.db.WithContext(ctx).Save(tenant).Error
}

// Delete removes the tenant row. Dependent rows ride the FK cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Tenant{}).Error
}

// List returns all tenants, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Tenant, error) {
	var rows []models.Tenant
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error
	return rows, err
}

// UpdateStatus rewrites only the cached status column.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.SubscriptionStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Tenant{}).
		Where("id = ?", id).
		UpdateColumn("status", status).Error
}

// ListOrphanOwners returns owner accounts whose tenant row never landed,
// the residue of a provisioning run that failed midway.
func (r *Repository) ListOrphanOwners(ctx context.Context) ([]models.User, error) {
	var rows []models.User
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Joins("LEFT JOIN tenants ON tenants.id = users.tenant_id").
		Where("users.role = ? AND tenants.id IS NULL", enums.UserRoleStoreOwner).
		Find(&rows).
		Error
	return rows, err
}
