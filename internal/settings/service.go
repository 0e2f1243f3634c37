package settings

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/ibrahem-systems/daftar-backend/internal/audit"
	"github.com/ibrahem-systems/daftar-backend/pkg/config"
	"github.com/ibrahem-systems/daftar-backend/pkg/db/models"
	pkgerrors "github.com/ibrahem-systems/daftar-backend/pkg/errors"
)

// Setting keys the support contact endpoint reads.
const (
	KeySupportPhone    = "support_phone"
	KeySupportWhatsApp = "support_whatsapp"
	KeySupportEmail    = "support_email"
)

type settingsRepository interface {
	GetAll(ctx context.Context) ([]models.SystemSetting, error)
	Upsert(ctx context.Context, key, value string) error
}

type auditRecorder interface {
	Record(ctx context.Context, e audit.Entry)
}

// SupportContact is the public contact card shown to signed-out visitors.
type SupportContact struct {
	Phone    string `json:"phone"`
	WhatsApp string `json:"whatsapp"`
	Email    string `json:"email"`
}

// Service manages platform settings. Mutations are super-admin only; the
// controller enforces that, the service records who did it.
type Service struct {
	repo       settingsRepository
	trail      auditRecorder
	supportCfg config.SupportConfig
}

// NewService builds the settings service.
func NewService(repo settingsRepository, trail auditRecorder, supportCfg config.SupportConfig) (*Service, error) {
	if repo == nil {
		return nil, errors.New("settings repository required")
	}
	if trail == nil {
		return nil, errors.New("audit recorder required")
	}
	return &Service{repo: repo, trail: trail, supportCfg: supportCfg}, nil
}

// GetAll returns every stored setting.
func (s *Service) GetAll(ctx context.Context) ([]models.SystemSetting, error) {
	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading settings")
	}
	return rows, nil
}

// Upsert stores a setting and leaves a trail entry naming the admin.
func (s *Service) Upsert(ctx context.Context, actorID uuid.UUID, actorEmail, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "setting key is required")
	}
	if err := s.repo.Upsert(ctx, key, value); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing setting")
	}
	s.trail.Record(ctx, audit.Entry{
		ActorID:    &actorID,
		ActorEmail: actorEmail,
		Action:     "setting.update",
		EntityType: "system_setting",
		Details:    map[string]any{"key": key},
	})
	return nil
}

// SupportContact merges stored support settings over the configured defaults,
// so a fresh deployment answers with something before anyone edits settings.
func (s *Service) SupportContact(ctx context.Context) SupportContact {
	contact := SupportContact{
		Phone:    s.supportCfg.Phone,
		WhatsApp: s.supportCfg.WhatsApp,
		Email:    s.supportCfg.Email,
	}

	// Stored values are an overlay; on any read failure the defaults stand.
	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		return contact
	}
	for _, row := range rows {
		value := strings.TrimSpace(row.Value)
		if value == "" {
			continue
		}
		switch row.Key {
		case KeySupportPhone:
			contact.Phone = value
		case KeySupportWhatsApp:
			contact.WhatsApp = value
		case KeySupportEmail:
			contact.Email = value
		}
	}
	return contact
}
