package common

import (
	"path/filepath"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Job lifecycle states
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// Supported document formats
const (
	FormatCSV    = "csv"
	FormatNDJSON = "ndjson"
)

// Importable and exportable resources
const (
	ResourceClients   = "clients"
	ResourceEmployees = "employees"
	ResourceBooks     = "books"
	ResourceOrders    = "orders"
)

// Resources lists every resource type in import order
var Resources = []string{ResourceClients, ResourceEmployees, ResourceBooks, ResourceOrders}

// FormatFromFilename picks the document format from a file extension
func FormatFromFilename(name string) (string, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return FormatCSV, true
	case ".ndjson", ".jsonl", ".json":
		return FormatNDJSON, true
	}
	return "", false
}

// ImportJob tracks the status of import operations
type ImportJob struct {
	ID             string     `gorm:"primaryKey;type:text" json:"id"`
	IdempotencyKey string     `gorm:"uniqueIndex;not null" json:"idempotency_key"`
	ResourceType   string     `gorm:"not null" json:"resource_type"`      // clients, employees, books, orders
	Format         string     `gorm:"not null" json:"format"`             // csv, ndjson
	Options        string     `gorm:"type:text" json:"options,omitempty"` // JSON dialect options
	Status         string     `gorm:"not null" json:"status"`             // pending, processing, completed, failed
	FilePath       string     `json:"file_path,omitempty"`
	TotalRecords   int        `gorm:"default:0" json:"total_records"`
	ProcessedCount int        `gorm:"default:0" json:"processed_count"`
	SuccessCount   int        `gorm:"default:0" json:"success_count"`
	FailCount      int        `gorm:"default:0" json:"fail_count"`
	Errors         string     `gorm:"type:text" json:"errors,omitempty"` // JSON array of errors
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null" json:"updated_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// ExportJob tracks the status of export operations
type ExportJob struct {
	ID             string     `gorm:"primaryKey;type:text" json:"id"`
	IdempotencyKey string     `gorm:"uniqueIndex;not null" json:"idempotency_key"`
	ResourceType   string     `gorm:"not null" json:"resource_type"`
	Format         string     `gorm:"not null" json:"format"`             // csv, ndjson
	Options        string     `gorm:"type:text" json:"options,omitempty"` // JSON dialect options
	Filters        string     `gorm:"type:text" json:"filters,omitempty"` // JSON filters
	Fields         string     `gorm:"type:text" json:"fields,omitempty"`  // JSON column selection
	Status         string     `gorm:"not null" json:"status"`
	FilePath       string     `json:"file_path,omitempty"`
	DownloadURL    string     `json:"download_url,omitempty"`
	TotalRecords   int        `gorm:"default:0" json:"total_records"`
	Error          string     `gorm:"type:text" json:"error,omitempty"`
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// ApiMetric tracks API performance metrics
type ApiMetric struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	RequestID     string    `gorm:"index" json:"request_id"`
	Endpoint      string    `gorm:"not null" json:"endpoint"`
	Method        string    `gorm:"not null" json:"method"`
	StatusCode    int       `gorm:"not null" json:"status_code"`
	DurationMs    int       `gorm:"not null" json:"duration_ms"`
	RowsProcessed int       `gorm:"default:0" json:"rows_processed"`
	Errors        string    `gorm:"type:text" json:"errors,omitempty"` // JSON errors
	Timestamp     time.Time `gorm:"not null" json:"timestamp"`
}

func (ImportJob) TableName() string { return "import_jobs" }
func (ExportJob) TableName() string { return "export_jobs" }
func (ApiMetric) TableName() string { return "api_metrics" }

// AutoMigrateJobs creates job tracking tables
func AutoMigrateJobs(db *gorm.DB) error {
	return db.AutoMigrate(&ImportJob{}, &ExportJob{}, &ApiMetric{})
}
