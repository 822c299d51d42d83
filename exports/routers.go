package exports

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"bookstore-csv/common"
	"bookstore-csv/parsers"
)

// BatchSize is the number of records fetched in a single query
const BatchSize = 2000

// runAsync starts background work; tests replace it to run jobs inline.
var runAsync = func(f func()) { go f() }

// RegisterRoutes mounts the export endpoints on router
func RegisterRoutes(router *gin.RouterGroup) {
	router.GET("", StreamExport)
	router.POST("", CreateExport)
	router.GET("/:job_id", GetExport)
	router.GET("/:job_id/download", DownloadExport)
}

func checkResourceAndFormat(resource, format string) (exporter, string) {
	e, ok := exporters[resource]
	if !ok {
		return nil, "invalid resource, must be: " + strings.Join(common.Resources, ", ")
	}
	if format != common.FormatCSV && format != common.FormatNDJSON {
		return nil, "invalid format, must be: csv or ndjson"
	}
	return e, ""
}

func contentType(format string, d parsers.Dialect) string {
	if format == common.FormatNDJSON {
		return "application/x-ndjson"
	}
	return "text/csv; charset=" + d.Options()[parsers.OptionEncoding]
}

// StreamExport streams a whole resource table as CSV or NDJSON. CSV dialect options are read
// from the query string and default to the configured dialect.
func StreamExport(c *gin.Context) {
	resource := c.Query("resource")
	format := c.Query("format")

	if resource == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resource parameter is required (" + strings.Join(common.Resources, "|") + ")"})
		return
	}
	if format == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format parameter is required (csv|ndjson)"})
		return
	}
	e, msg := checkResourceAndFormat(resource, format)
	if e == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	d, _, err := common.RequestDialect(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	c.Header("Content-Type", contentType(format, d))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_%s.%s", resource, timestamp, format))

	c.Status(http.StatusOK)

	total, err := e.stream(common.GetDB(), c.Writer, format, d)
	if err != nil {
		// the status line is already sent, so the client only sees a truncated body
		common.Logger().Error("export stream failed", zap.String("resource", resource), zap.Error(err))
		c.Error(err)
	}
	c.Set(common.RowsProcessedKey, total)
}

// CreateExportRequest represents the request for async export
type CreateExportRequest struct {
	IdempotencyKey string            `json:"idempotency_key" binding:"required"`
	ResourceType   string            `json:"resource_type" binding:"required,oneof=clients employees books orders"`
	Format         string            `json:"format" binding:"required,oneof=csv ndjson"`
	Options        map[string]string `json:"options,omitempty"` // dialect options for csv
	Filters        map[string]string `json:"filters,omitempty"` // column equality filters
	Fields         []string          `json:"fields,omitempty"`  // column selection
}

// CreateExportResponse represents the response for async export creation
type CreateExportResponse struct {
	JobID     string    `json:"job_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateExport creates an export job that writes a filtered document to the exports directory
func CreateExport(c *gin.Context) {
	var req CreateExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := common.GetDB()

	// Check idempotency
	var existingJob common.ExportJob
	if err := db.Where("idempotency_key = ?", req.IdempotencyKey).First(&existingJob).Error; err == nil {
		c.JSON(http.StatusOK, CreateExportResponse{
			JobID:     existingJob.ID,
			Status:    existingJob.Status,
			CreatedAt: existingJob.CreatedAt,
		})
		return
	}

	e, msg := checkResourceAndFormat(req.ResourceType, req.Format)
	if e == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	for column := range req.Filters {
		if !slices.Contains(e.filterable(), column) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("cannot filter %s by %q", req.ResourceType, column)})
			return
		}
	}
	for _, field := range req.Fields {
		if !slices.Contains(e.selectable(), field) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown %s field %q", req.ResourceType, field)})
			return
		}
	}

	options := make(map[string]string, len(common.DialectOptions)+len(req.Options))
	for k, v := range common.DialectOptions {
		options[k] = v
	}
	for k, v := range req.Options {
		options[k] = v
	}
	if _, err := parsers.NewDialect(options); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	optionsJSON, _ := json.Marshal(options)
	filtersJSON, _ := json.Marshal(req.Filters)
	fieldsJSON, _ := json.Marshal(req.Fields)

	job := common.ExportJob{
		ID:             uuid.New().String(),
		IdempotencyKey: req.IdempotencyKey,
		ResourceType:   req.ResourceType,
		Format:         req.Format,
		Options:        string(optionsJSON),
		Filters:        string(filtersJSON),
		Fields:         string(fieldsJSON),
		Status:         common.JobStatusPending,
		CreatedAt:      time.Now(),
	}

	if err := db.Create(&job).Error; err != nil {
		common.Logger().Error("failed to create export job", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create export job"})
		return
	}

	jobID := job.ID
	runAsync(func() { ProcessExportJob(jobID) })

	c.JSON(http.StatusAccepted, CreateExportResponse{
		JobID:     job.ID,
		Status:    job.Status,
		CreatedAt: job.CreatedAt,
	})
}

// GetExport returns the status and download URL of an export job
func GetExport(c *gin.Context) {
	var job common.ExportJob
	if err := common.GetDB().Where("id = ?", c.Param("job_id")).First(&job).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Export job not found"})
		return
	}

	// Set rows processed for metrics
	c.Set(common.RowsProcessedKey, job.TotalRecords)

	response := gin.H{
		"job_id":        job.ID,
		"resource_type": job.ResourceType,
		"format":        job.Format,
		"status":        job.Status,
		"total_records": job.TotalRecords,
		"created_at":    job.CreatedAt,
	}
	if job.CompletedAt != nil {
		response["completed_at"] = job.CompletedAt
	}
	if job.DownloadURL != "" {
		response["download_url"] = job.DownloadURL
	}
	if job.Error != "" {
		response["error"] = job.Error
	}

	c.JSON(http.StatusOK, response)
}

// DownloadExport serves the file written by a completed export job
func DownloadExport(c *gin.Context) {
	var job common.ExportJob
	if err := common.GetDB().Where("id = ?", c.Param("job_id")).First(&job).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Export job not found"})
		return
	}
	if job.Status != common.JobStatusCompleted {
		c.JSON(http.StatusConflict, gin.H{"error": "Export job is " + job.Status})
		return
	}

	var options map[string]string
	if err := json.Unmarshal([]byte(job.Options), &options); err != nil {
		common.Logger().Error("corrupt export job options", zap.String("job_id", job.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Export job options are unreadable"})
		return
	}
	d, err := parsers.NewDialect(options)
	if err != nil {
		d = parsers.DefaultDialect()
	}

	c.Set(common.RowsProcessedKey, job.TotalRecords)
	c.Header("Content-Type", contentType(job.Format, d))
	c.FileAttachment(job.FilePath, filepath.Base(job.FilePath))
}

// ProcessExportJob processes an export job in the background
func ProcessExportJob(jobID string) {
	db := common.GetDB()
	log := common.Logger().With(zap.String("job_id", jobID))

	var job common.ExportJob
	if err := db.Where("id = ?", jobID).First(&job).Error; err != nil {
		log.Error("export job not found", zap.Error(err))
		return
	}

	job.Status = common.JobStatusProcessing
	db.Save(&job)

	exportErr := runExport(&job)

	now := time.Now()
	job.CompletedAt = &now
	if exportErr != nil {
		job.Status = common.JobStatusFailed
		job.Error = exportErr.Error()
		log.Warn("export failed", zap.String("resource", job.ResourceType), zap.Error(exportErr))
	} else {
		job.Status = common.JobStatusCompleted
		job.DownloadURL = fmt.Sprintf("/api/v1/exports/%s/download", job.ID)
		log.Info("export completed", zap.String("resource", job.ResourceType), zap.Int("rows", job.TotalRecords))
	}

	db.Save(&job)
}

func runExport(job *common.ExportJob) error {
	e, msg := checkResourceAndFormat(job.ResourceType, job.Format)
	if e == nil {
		return errors.New(msg)
	}

	var (
		options, filters map[string]string
		fields           []string
	)
	if err := json.Unmarshal([]byte(job.Options), &options); err != nil {
		return fmt.Errorf("invalid dialect options: %w", err)
	}
	if job.Filters != "" {
		if err := json.Unmarshal([]byte(job.Filters), &filters); err != nil {
			return fmt.Errorf("invalid filters: %w", err)
		}
	}
	if job.Fields != "" {
		if err := json.Unmarshal([]byte(job.Fields), &fields); err != nil {
			return fmt.Errorf("invalid fields: %w", err)
		}
	}
	d, err := parsers.NewDialect(options)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(common.ExportsDir, 0750); err != nil {
		return err
	}
	timestamp := time.Now().Format("20060102 150405")
	filename := fmt.Sprintf("%s.%s", slug.Make(job.ResourceType+" "+job.ID[:8]+" "+timestamp), job.Format)
	job.FilePath = filepath.Join(common.ExportsDir, filename)

	file, err := os.Create(job.FilePath)
	if err != nil {
		return err
	}

	// document closes file
	job.TotalRecords, err = e.document(common.GetDB(), file, job.Format, d, filters, fields)
	return err
}
