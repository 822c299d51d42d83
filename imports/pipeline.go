package imports

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bookstore-csv/catalog"
	"bookstore-csv/common"
	"bookstore-csv/parsers"
	"bookstore-csv/users"
)

const (
	// BatchSize is the number of records processed in a single database transaction
	BatchSize = 2000

	// ProgressUpdateFrequency controls how often we save job progress to database
	// (every N batches). Set to 1 to update after every batch write
	ProgressUpdateFrequency = 1
)

// pipeline describes how one resource type is decoded, checked and stored
type pipeline[T any] struct {
	fromCSV   parsers.RecordMapper[*T]
	validate  func(*T, int) *common.RecordValidationResult
	normalize func(*T) error
	conflict  clause.OnConflict
}

func upsertOn(key string, columns ...string) clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: key}},
		DoUpdates: clause.AssignmentColumns(append(columns, "updated_at")),
	}
}

// ProcessImportJob processes an import job in the background
func ProcessImportJob(jobID string) {
	db := common.GetDB()
	log := common.Logger().With(zap.String("job_id", jobID))

	var job common.ImportJob
	if err := db.Where("id = ?", jobID).First(&job).Error; err != nil {
		log.Error("import job not found", zap.Error(err))
		return
	}

	job.Status = common.JobStatusProcessing
	job.UpdatedAt = time.Now()
	db.Save(&job)

	processErr := runImport(db, &job)

	now := time.Now()
	job.CompletedAt = &now
	job.UpdatedAt = now

	if processErr != nil {
		job.Status = common.JobStatusFailed
		if job.Errors == "" {
			job.Errors = jobError(processErr)
		}
		log.Warn("import failed", zap.String("resource", job.ResourceType), zap.Error(processErr))
	} else {
		job.Status = common.JobStatusCompleted
		log.Info("import completed",
			zap.String("resource", job.ResourceType),
			zap.Int("rows", job.TotalRecords),
			zap.Int("succeeded", job.SuccessCount),
			zap.Int("failed", job.FailCount),
		)
	}

	db.Save(&job)
}

func runImport(db *gorm.DB, job *common.ImportJob) error {
	file, err := os.Open(job.FilePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var opts map[string]string
	if job.Options != "" {
		if err := json.Unmarshal([]byte(job.Options), &opts); err != nil {
			return fmt.Errorf("invalid dialect options: %w", err)
		}
	}

	switch job.ResourceType {
	case common.ResourceClients:
		return importRecords(db, job, opts, file, pipeline[users.Client]{
			fromCSV:   users.ClientFromCSV,
			validate:  users.NewClientValidator().ValidateClient,
			normalize: users.NormalizeClient,
			conflict:  upsertOn("email", "password_hash", "name", "balance"),
		})
	case common.ResourceEmployees:
		return importRecords(db, job, opts, file, pipeline[users.Employee]{
			fromCSV:   users.EmployeeFromCSV,
			validate:  users.NewEmployeeValidator().ValidateEmployee,
			normalize: users.NormalizeEmployee,
			conflict:  upsertOn("email", "password_hash", "name", "phone", "birth_date"),
		})
	case common.ResourceBooks:
		return importRecords(db, job, opts, file, pipeline[catalog.Book]{
			fromCSV:  catalog.BookFromCSV,
			validate: catalog.NewBookValidator().ValidateBook,
			normalize: func(b *catalog.Book) error {
				catalog.NormalizeBook(b)
				return nil
			},
			conflict: upsertOn("slug", "name", "genre", "age_group", "price", "publication_date",
				"author", "number_of_pages", "characteristics", "description", "language"),
		})
	case common.ResourceOrders:
		validator, err := catalog.NewOrderValidator(db)
		if err != nil {
			return err
		}
		return importRecords(db, job, opts, file, pipeline[catalog.Order]{
			fromCSV:   catalog.OrderFromCSV,
			validate:  validator.ValidateOrder,
			normalize: func(*catalog.Order) error { return nil },
			conflict:  upsertOn("id", "client_id", "employee_id", "book_id", "number_of_books", "order_date", "price"),
		})
	default:
		return fmt.Errorf("unknown resource type: %s", job.ResourceType)
	}
}

// decode reads the whole document with the codec matching format
func decode[T any](format string, opts map[string]string, src io.Reader, fromCSV parsers.RecordMapper[*T]) ([]*T, int, error) {
	switch format {
	case common.FormatCSV:
		d, err := parsers.NewDialect(opts)
		if err != nil {
			return nil, 0, err
		}
		firstRow := 1
		if d.HeaderLine {
			firstRow = 2
		}
		row := firstRow - 1
		records, err := parsers.Read[*T](d, src, func(fields []string) (*T, error) {
			row++
			record, err := fromCSV(fields)
			if err != nil {
				return nil, &RowError{Row: row, Err: err}
			}
			return record, nil
		})
		return records, firstRow, err
	case common.FormatNDJSON:
		records, err := parsers.ReadNDJSON[*T](src)
		return records, 1, err
	default:
		return nil, 0, fmt.Errorf("unknown format: %s", format)
	}
}

func importRecords[T any](db *gorm.DB, job *common.ImportJob, opts map[string]string, src io.Reader, p pipeline[T]) error {
	records, firstRow, err := decode(job.Format, opts, src, p.fromCSV)
	if err != nil {
		return err
	}
	job.TotalRecords = len(records)

	var allErrors []common.RecordValidationResult
	batchesProcessed := 0

	for start := 0; start < len(records); start += BatchSize {
		end := min(start+BatchSize, len(records))
		failed := processBatch(db, records[start:end], firstRow+start, p)

		job.ProcessedCount += end - start
		job.FailCount += len(failed)
		job.SuccessCount += end - start - len(failed)
		allErrors = append(allErrors, failed...)

		// Update progress less frequently (every N batches)
		batchesProcessed++
		if batchesProcessed%ProgressUpdateFrequency == 0 {
			job.UpdatedAt = time.Now()
			db.Save(job)
		}
	}

	// Store errors as JSON
	if len(allErrors) > 0 {
		errorsJSON, _ := json.Marshal(allErrors)
		job.Errors = string(errorsJSON)
	}
	return nil
}

// processBatch validates and upserts one batch inside a transaction, returning the rows that failed
func processBatch[T any](db *gorm.DB, batch []*T, startRow int, p pipeline[T]) []common.RecordValidationResult {
	var failed []common.RecordValidationResult

	txErr := db.Transaction(func(tx *gorm.DB) error {
		for i, record := range batch {
			result := p.validate(record, startRow+i)
			if result.Valid {
				if err := p.normalize(record); err != nil {
					result.AddError("record", err.Error())
				}
			}
			if result.Valid {
				if err := tx.Clauses(p.conflict).Create(record).Error; err != nil {
					result.AddError("record", fmt.Sprintf("upsert failed: %v", err))
				}
			}
			if !result.Valid {
				failed = append(failed, *result)
			}
		}
		return nil
	})
	if txErr != nil {
		common.Logger().Error("import batch failed", zap.Int("start_row", startRow), zap.Error(txErr))
		failed = failed[:0]
		for i := range batch {
			result := common.RecordValidationResult{RowNumber: startRow + i}
			result.AddError("record", fmt.Sprintf("batch rolled back: %v", txErr))
			failed = append(failed, result)
		}
	}
	return failed
}

// RowError reports the document row whose fields could not be mapped to a record
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// jobError renders a processing error as the errors column of a job
func jobError(err error) string {
	result := common.RecordValidationResult{}
	var (
		rowErr    *RowError
		malformed *parsers.MalformedRecordError
	)
	switch {
	case errors.As(err, &rowErr):
		result.RowNumber = rowErr.Row
	case errors.As(err, &malformed):
		result.RowNumber = malformed.Line
	}
	result.AddError("file", err.Error())
	data, _ := json.Marshal([]common.RecordValidationResult{result})
	return string(data)
}
