package models

import "time"

// DeviceSetting is a single persisted key/value pair.
type DeviceSetting struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     string    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (DeviceSetting) TableName() string { return "device_settings" }
