// Package audit keeps the history of report exports.
package audit

import "time"

// ExportRun is one export attempt.
type ExportRun struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Report      string    `json:"report" gorm:"size:50;not null;index"`
	Format      string    `json:"format" gorm:"size:10;not null"`
	UserID      string    `json:"user_id" gorm:"size:64;index"`
	Filters     string    `json:"filters" gorm:"type:text"`
	RecordCount int       `json:"record_count"`
	Filename    string    `json:"filename" gorm:"size:255"`
	ObjectKey   string    `json:"object_key,omitempty" gorm:"size:512"`
	Status      string    `json:"status" gorm:"size:20;not null;index"`
	Error       string    `json:"error,omitempty" gorm:"type:text"`
	DurationMS  int64     `json:"duration_ms"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}

func (ExportRun) TableName() string {
	return "export_runs"
}

// ExportFilters is the JSON form of the filters a run used.
type ExportFilters struct {
	Search    string `json:"search,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Filter    string `json:"filter,omitempty"`
}
