package notifications

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ibrahem-systems/daftar-backend/pkg/db/models"
	"github.com/ibrahem-systems/daftar-backend/pkg/enums"
	pkgerrors "github.com/ibrahem-systems/daftar-backend/pkg/errors"
)

const defaultListLimit = 50

// Service reads and writes in-app notifications. The reconcile job is the
// producer; tenant members consume and mark them read.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List returns the tenant's notifications, newest first.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, unreadOnly bool) ([]models.Notification, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id is required")
	}
	q := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Limit(defaultListLimit)
	if unreadOnly {
		q = q.Where("read_at IS NULL")
	}

	var rows []models.Notification
	if err := q.Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing notifications")
	}
	return rows, nil
}

// MarkRead stamps a notification as read within the tenant scope.
func (s *Service) MarkRead(ctx context.Context, tenantID, id uuid.UUID) error {
	now := time.Now().UTC()
	res := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND tenant_id = ? AND read_at IS NULL", id, tenantID).
		Update("read_at", now)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "marking notification read")
	}
	if res.RowsAffected == 0 {
		// Either missing, cross-tenant, or already read; re-check to keep
		// marking an already-read row idempotent.
		var existing models.Notification
		err := s.db.WithContext(ctx).
			Where("id = ? AND tenant_id = ?", id, tenantID).
			First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading notification")
		}
	}
	return nil
}

// Push inserts a notification row. Used by the subscription reconcile job.
func (s *Service) Push(ctx context.Context, tenantID uuid.UUID, kind enums.NotificationKind, message string, daysRemaining int) error {
	row := &models.Notification{
		Kind:          kind,
		Message:       message,
		DaysRemaining: daysRemaining,
	}
	row.ID = uuid.New()
	row.TenantID = tenantID
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing notification")
	}
	return nil
}

// HasRecent reports whether a notification of the kind was pushed to the
// tenant inside the window. The reconcile job uses it to avoid nagging on
// every run.
func (s *Service) HasRecent(ctx context.Context, tenantID uuid.UUID, kind enums.NotificationKind, window time.Duration) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("tenant_id = ? AND kind = ? AND created_at > ?", tenantID, kind, time.Now().UTC().Add(-window)).
		Count(&count).Error
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking recent notifications")
	}
	return count > 0, nil
}
