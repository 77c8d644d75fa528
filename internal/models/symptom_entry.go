package models

import (
	"time"
)

// SymptomEntry is one diary record: what the patient felt, how bad, and when.
// Tags is a freeform comma-separated string, matched by substring when
// filtering.
type SymptomEntry struct {
	BaseModel
	UserID      string    `gorm:"size:36;index;not null" json:"userId"`
	Title       string    `gorm:"size:150;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Severity    int       `gorm:"not null" json:"severity"`
	Timestamp   time.Time `gorm:"not null;index" json:"timestamp"`
	Tags        string    `gorm:"size:255" json:"tags,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
