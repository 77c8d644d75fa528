package models

// Snapshot is a stored textual digest of the user's symptom history,
// generated on demand from all entries present at the time.
type Snapshot struct {
	BaseModel
	UserID      string `gorm:"size:36;index;not null" json:"userId"`
	SummaryText string `gorm:"type:text;not null" json:"summaryText"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
