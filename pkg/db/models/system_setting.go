package models

import "time"

// SystemSetting is a platform-wide key/value pair editable by super admins.
type SystemSetting struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     string    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
