package imports

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"bookstore-csv/common"
	"bookstore-csv/parsers"
)

// runAsync starts background work; tests replace it to run jobs inline.
var runAsync = func(f func()) { go f() }

// CreateImportRequest represents the request body for imports from a remote file
type CreateImportRequest struct {
	ResourceType string            `json:"resource_type" binding:"required,oneof=clients employees books orders"`
	Format       string            `json:"format" binding:"required,oneof=csv ndjson"`
	FileURL      string            `json:"file_url" binding:"required"`
	Options      map[string]string `json:"options,omitempty"` // dialect options for csv
}

// CreateImportResponse represents the response for import job creation
type CreateImportResponse struct {
	JobID     string `json:"job_id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// GetImportResponse represents the response for import job status
type GetImportResponse struct {
	JobID          string                          `json:"job_id"`
	ResourceType   string                          `json:"resource_type"`
	Format         string                          `json:"format"`
	Status         string                          `json:"status"`
	TotalRecords   int                             `json:"total_records"`
	ProcessedCount int                             `json:"processed_count"`
	SuccessCount   int                             `json:"success_count"`
	FailCount      int                             `json:"fail_count"`
	Errors         []common.RecordValidationResult `json:"errors,omitempty"`
	CreatedAt      string                          `json:"created_at"`
	UpdatedAt      string                          `json:"updated_at"`
	CompletedAt    *string                         `json:"completed_at,omitempty"`
}

// RegisterRoutes mounts the import endpoints on router
func RegisterRoutes(router *gin.RouterGroup) {
	router.POST("", CreateImport)
	router.GET("", ListImports)
	router.GET("/:job_id", GetImport)
}

// CreateImport creates an import job from an uploaded file (multipart "file" field) or from
// a JSON body naming a remote file. Dialect options are taken from form fields or the JSON
// "options" object and fall back to the configured defaults.
func CreateImport(c *gin.Context) {
	db := common.GetDB()

	// Get required idempotency key from header
	idempotencyKey := c.GetHeader("Idempotency-Key")
	if idempotencyKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Idempotency-Key header is required"})
		return
	}

	// Check for existing job with same idempotency key
	var existingJob common.ImportJob
	if err := db.Where("idempotency_key = ?", idempotencyKey).First(&existingJob).Error; err == nil {
		c.JSON(http.StatusOK, CreateImportResponse{
			JobID:     existingJob.ID,
			Status:    existingJob.Status,
			CreatedAt: existingJob.CreatedAt.Format(time.RFC3339),
		})
		return
	}

	var (
		filePath     string
		resourceType string
		format       string
		options      map[string]string
	)

	if strings.HasPrefix(c.GetHeader("Content-Type"), "multipart/form-data") {
		file, header, err := c.Request.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
			return
		}
		defer file.Close()

		resourceType = c.PostForm("resource_type")
		if !slices.Contains(common.Resources, resourceType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "resource_type must be one of: " + strings.Join(common.Resources, ", ")})
			return
		}

		var ok bool
		if format, ok = common.FormatFromFilename(header.Filename); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "File must be .csv or .ndjson"})
			return
		}
		options = common.RequestDialectOptions(c)

		filePath, err = saveUpload(file, filepath.Ext(header.Filename))
		if err != nil {
			common.Logger().Error("failed to save upload", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
			return
		}
	} else {
		var req CreateImportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		resourceType = req.ResourceType
		format = req.Format
		options = common.RequestDialectOptions(c)
		for k, v := range req.Options {
			options[k] = v
		}

		var err error
		if filePath, err = downloadFile(req.FileURL, "."+format); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Failed to download file: %v", err)})
			return
		}
	}

	// Reject unusable dialects before queueing anything
	if format == common.FormatCSV {
		if _, err := parsers.NewDialect(options); err != nil {
			os.Remove(filePath)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	optionsJSON, _ := json.Marshal(options)

	now := time.Now()
	job := common.ImportJob{
		ID:             uuid.New().String(),
		IdempotencyKey: idempotencyKey,
		ResourceType:   resourceType,
		Format:         format,
		Options:        string(optionsJSON),
		Status:         common.JobStatusPending,
		FilePath:       filePath,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := db.Create(&job).Error; err != nil {
		common.Logger().Error("failed to create import job", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create import job"})
		return
	}

	common.Logger().Info("import job queued",
		zap.String("job_id", job.ID),
		zap.String("resource", job.ResourceType),
		zap.String("format", job.Format),
	)

	// Queue job for background processing
	jobID := job.ID
	runAsync(func() { ProcessImportJob(jobID) })

	c.JSON(http.StatusAccepted, CreateImportResponse{
		JobID:     job.ID,
		Status:    job.Status,
		CreatedAt: job.CreatedAt.Format(time.RFC3339),
	})
}

// GetImport returns the status, counters and row errors of an import job
func GetImport(c *gin.Context) {
	db := common.GetDB()
	jobID := c.Param("job_id")

	var job common.ImportJob
	if err := db.Where("id = ?", jobID).First(&job).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Import job not found"})
		return
	}

	// Set rows processed for metrics
	c.Set(common.RowsProcessedKey, job.ProcessedCount)

	c.JSON(http.StatusOK, importResponse(job))
}

// ListImports returns the most recent import jobs, newest first
func ListImports(c *gin.Context) {
	var jobs []common.ImportJob
	if err := common.GetDB().Order("created_at desc").Limit(100).Find(&jobs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list import jobs"})
		return
	}

	response := make([]GetImportResponse, 0, len(jobs))
	for _, job := range jobs {
		r := importResponse(job)
		r.Errors = nil
		response = append(response, r)
	}
	c.JSON(http.StatusOK, gin.H{"jobs": response})
}

func importResponse(job common.ImportJob) GetImportResponse {
	response := GetImportResponse{
		JobID:          job.ID,
		ResourceType:   job.ResourceType,
		Format:         job.Format,
		Status:         job.Status,
		TotalRecords:   job.TotalRecords,
		ProcessedCount: job.ProcessedCount,
		SuccessCount:   job.SuccessCount,
		FailCount:      job.FailCount,
		CreatedAt:      job.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      job.UpdatedAt.Format(time.RFC3339),
	}

	if job.CompletedAt != nil {
		completedStr := job.CompletedAt.Format(time.RFC3339)
		response.CompletedAt = &completedStr
	}

	// Parse errors JSON
	if job.Errors != "" {
		var errors []common.RecordValidationResult
		if err := json.Unmarshal([]byte(job.Errors), &errors); err == nil {
			response.Errors = errors
		}
	}
	return response
}

func uploadPath(ext string) (string, error) {
	if err := os.MkdirAll(common.UploadsDir, 0750); err != nil {
		return "", err
	}
	fileName := fmt.Sprintf("%s_%s%s", time.Now().Format("20060102_150405"), uuid.New().String()[:8], ext)
	return filepath.Join(common.UploadsDir, fileName), nil
}

// saveUpload copies an uploaded file into the uploads directory
func saveUpload(src io.Reader, ext string) (string, error) {
	path, err := uploadPath(ext)
	if err != nil {
		return "", err
	}
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return "", err
	}
	return path, nil
}

// downloadFile downloads a file from URL into the uploads directory
func downloadFile(url, ext string) (string, error) {
	resp, err := http.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad status: %s", resp.Status)
	}
	return saveUpload(resp.Body, ext)
}
