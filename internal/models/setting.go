package models

import "time"

// Setting stores a key/value configuration entry in the database.
type Setting struct {
	Key         string `gorm:"type:varchar(255);primaryKey"` // Configuration key.
	Value       string `gorm:"type:text;not null"`           // Configuration value.
	Description string `gorm:"type:text"`                    // Human-readable purpose of the key.

	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
	UpdatedBy *uint64   // Admin who last changed the value, when known.
}
