package scheduler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"genba_backend/internal/adapters/storage"
	"genba_backend/internal/receipts/ocr"
	"genba_backend/internal/receipts/repository"
	"genba_backend/platform/apperr"
	"genba_backend/platform/config"
	"genba_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rwcarlsen/goexif/exif"
)

// Photos above this size are rejected before OCR.
const maxReceiptImageBytes = 20 << 20

// ReceiptStore is the subset of the receipts repository the worker needs.
type ReceiptStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*repository.Receipt, error)
	UpdateOCRResult(ctx context.Context, id uuid.UUID, status string, patch repository.OCRPatch) error
}

// Worker consumes background tasks from the Redis queue. It owns the receipt
// OCR pipeline: download the photo, read its EXIF capture date, run OCR
// through the invoker, and record vendor, amount and occurred-on.
type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	repo    ReceiptStore
	storage storage.Service
	ocr     ocr.Invoker
	bucket  string
	log     *logger.Logger
}

// NewWorker creates a new scheduler worker.
func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, objStorage storage.Service, ocrInvoker ocr.Invoker, bucket string, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:  server,
		mux:     mux,
		repo:    repository.New(pool),
		storage: objStorage,
		ocr:     ocrInvoker,
		bucket:  bucket,
		log:     log,
	}

	mux.HandleFunc(TaskReceiptOCR, w.handleReceiptOCR)

	return w, nil
}

// Run serves tasks until the context is canceled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleReceiptOCR(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseReceiptOCRPayload(task)
	if err != nil {
		return err
	}

	receiptID, err := uuid.Parse(payload.ReceiptID)
	if err != nil {
		return err
	}

	rec, err := w.repo.GetByID(ctx, receiptID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			w.log.Warn("receipt gone before ocr ran", "receipt_id", payload.ReceiptID)
			return nil
		}
		return err
	}

	if w.storage == nil || w.ocr == nil {
		return w.repo.UpdateOCRResult(ctx, receiptID, repository.OCRStatusFailed, repository.OCRPatch{})
	}

	obj, err := w.storage.DownloadFile(ctx, w.bucket, payload.FileKey)
	if err != nil {
		// Return the error so asynq retries; the upload may still be in flight.
		return fmt.Errorf("failed to download receipt %s: %w", payload.ReceiptID, err)
	}
	image, err := io.ReadAll(io.LimitReader(obj, maxReceiptImageBytes))
	obj.Close()
	if err != nil {
		return fmt.Errorf("failed to read receipt %s: %w", payload.ReceiptID, err)
	}

	exifDate := extractCaptureDate(bytes.NewReader(image))
	if exifDate == nil {
		w.log.Debug("receipt photo has no exif capture date", "receipt_id", payload.ReceiptID)
	}

	extraction, err := w.ocr.ExtractReceipt(ctx, rec.ContentType, image)
	if err != nil {
		w.log.Warn("receipt ocr failed", "receipt_id", payload.ReceiptID, "error", err)
		return w.repo.UpdateOCRResult(ctx, receiptID, repository.OCRStatusFailed, repository.OCRPatch{
			OccurredOn: exifDate,
		})
	}

	patch := repository.OCRPatch{OccurredOn: exifDate}
	if extraction.OccurredOn != nil {
		patch.OccurredOn = extraction.OccurredOn
	}
	if rec.Vendor == nil && extraction.Vendor != "" {
		patch.Vendor = &extraction.Vendor
	}
	if rec.Amount == 0 && extraction.Amount > 0 {
		patch.Amount = &extraction.Amount
	}

	return w.repo.UpdateOCRResult(ctx, receiptID, repository.OCRStatusDone, patch)
}

// extractCaptureDate reads the EXIF DateTimeOriginal from a photo. Photos
// without EXIF data (screenshots, edited images) yield nil.
func extractCaptureDate(r io.Reader) *time.Time {
	x, err := exif.Decode(r)
	if err != nil {
		return nil
	}
	taken, err := x.DateTime()
	if err != nil {
		return nil
	}
	return &taken
}
