package model

import "time"

// Record is one named collection or preference value as persisted by the
// SQL repository. Value holds the JSON document exactly as written.
type Record struct {
	Key       string    `gorm:"column:record_key;primaryKey;size:128"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
