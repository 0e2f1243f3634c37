package audit

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ibrahem-systems/daftar-backend/pkg/db"
	"github.com/ibrahem-systems/daftar-backend/pkg/db/models"
	"github.com/ibrahem-systems/daftar-backend/pkg/logger"
	"github.com/ibrahem-systems/daftar-backend/pkg/metrics"
)

// Entry captures one action for the trail. TenantID is nil for platform-level
// actions.
type Entry struct {
	TenantID   *uuid.UUID
	ActorID    *uuid.UUID
	ActorEmail string
	Action     string
	EntityType string
	EntityID   *uuid.UUID
	Details    any
}

// Writer persists trail entries best-effort: a failed write is logged and
// counted but never propagated, so auditing can't fail the business action
// it describes.
type Writer struct {
	db      *gorm.DB
	logg    *logger.Logger
	metrics *metrics.AuditMetrics
}

// NewWriter builds a Writer on the shared connection.
func NewWriter(client *db.Client, logg *logger.Logger, m *metrics.AuditMetrics) *Writer {
	return &Writer{db: client.DB(), logg: logg, metrics: m}
}

// Record writes the entry to the trail.
func (w *Writer) Record(ctx context.Context, e Entry) {
	row := models.AuditLog{
		TenantID:   e.TenantID,
		ActorID:    e.ActorID,
		ActorEmail: e.ActorEmail,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if e.Details != nil {
		if data, err := json.Marshal(e.Details); err == nil {
			row.Details = data
		}
	}

	if err := w.db.WithContext(ctx).Create(&row).Error; err != nil {
		w.metrics.IncDropped(e.Action)
		if w.logg != nil {
			ctx = w.logg.WithFields(ctx, map[string]any{
				"action": e.Action,
				"error":  err.Error(),
			})
			w.logg.Warn(ctx, "audit entry dropped")
		}
		return
	}
	w.metrics.IncWritten(e.Action)
}

// List returns trail rows, newest first. A nil tenantID returns the whole
// platform trail; super-admin only.
func (w *Writer) List(ctx context.Context, tenantID *uuid.UUID, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := w.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if tenantID != nil {
		q = q.Where("tenant_id = ?", *tenantID)
	}
	var rows []models.AuditLog
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
