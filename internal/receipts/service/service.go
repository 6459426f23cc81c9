// Package service implements receipt capture: presigned uploads, the
// capture row itself, and fire-and-forget OCR enqueueing.
package service

import (
	"context"
	"time"

	"genba_backend/internal/adapters/storage"
	"genba_backend/internal/events"
	"genba_backend/internal/receipts/repository"
	"genba_backend/platform/apperr"
	"genba_backend/platform/logger"

	"github.com/google/uuid"
)

// Receipt kinds.
const (
	KindReceipt  = "receipt"
	KindDelivery = "delivery"
	KindOther    = "other"
)

// ReceiptStore is the persistence boundary for receipts.
type ReceiptStore interface {
	Insert(ctx context.Context, rec *repository.Receipt) error
	GetByID(ctx context.Context, id uuid.UUID) (*repository.Receipt, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]repository.Receipt, error)
}

// ObjectStorage is the subset of the storage adapter the service needs.
type ObjectStorage interface {
	GenerateUploadURL(ctx context.Context, bucket, folder, fileName, contentType string, sizeBytes int64) (*storage.PresignedURL, error)
	GenerateDownloadURL(ctx context.Context, bucket, fileKey string) (*storage.PresignedURL, error)
}

// OCREnqueuer schedules background OCR for a captured receipt. Nil disables
// background processing.
type OCREnqueuer interface {
	EnqueueReceiptOCR(ctx context.Context, receiptID uuid.UUID, fileKey string) error
}

// CaptureInput is a receipt capture request. The files must already be
// uploaded under FileRefs via presigned URLs; the first ref is the photo OCR
// runs against.
type CaptureInput struct {
	SiteID      uuid.UUID
	Kind        string
	Description string
	Account     string
	Vendor      string
	Amount      int64
	FileRefs    []string
	ContentType string
	OccurredOn  *time.Time
}

// CaptureResult is returned after a successful capture.
type CaptureResult struct {
	ReceiptID uuid.UUID `json:"receiptId"`
	OCRStatus string    `json:"ocrStatus"`
}

// Service coordinates storage, persistence and background OCR for receipts.
type Service struct {
	store    ReceiptStore
	storage  ObjectStorage
	enqueuer OCREnqueuer
	bucket   string
	bus      events.Bus
	log      *logger.Logger
}

// New creates the receipts service. storage and enqueuer may be nil when the
// corresponding infrastructure is not configured.
func New(store ReceiptStore, objStorage ObjectStorage, enqueuer OCREnqueuer, bucket string, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, storage: objStorage, enqueuer: enqueuer, bucket: bucket, bus: bus, log: log}
}

// UploadURL returns a presigned PUT URL for a receipt photo or document.
func (s *Service) UploadURL(ctx context.Context, siteID uuid.UUID, fileName, contentType string, sizeBytes int64) (*storage.PresignedURL, error) {
	if s.storage == nil {
		return nil, apperr.External("object storage is not configured")
	}
	folder := siteID.String() + "/" + time.Now().Format("2006-01")
	presigned, err := s.storage.GenerateUploadURL(ctx, s.bucket, folder, fileName, contentType, sizeBytes)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "failed to create upload url", err)
	}
	return presigned, nil
}

// Capture records the receipt row. Amounts are integer yen. OCR is enqueued
// for photos; an enqueue failure downgrades to a warning and never fails the
// capture itself.
func (s *Service) Capture(ctx context.Context, in CaptureInput) (*CaptureResult, error) {
	if in.Amount < 0 {
		return nil, apperr.Validation("amount must not be negative")
	}
	if len(in.FileRefs) == 0 {
		return nil, apperr.Validation("at least one file reference is required")
	}
	for _, ref := range in.FileRefs {
		if ref == "" {
			return nil, apperr.Validation("file references must not be empty")
		}
	}
	kind := in.Kind
	if kind == "" {
		kind = KindReceipt
	}
	if kind != KindReceipt && kind != KindDelivery && kind != KindOther {
		return nil, apperr.Validation("kind must be receipt, delivery or other")
	}

	ocrStatus := repository.OCRStatusDone
	if storage.IsImageContentType(in.ContentType) {
		ocrStatus = repository.OCRStatusPending
	}

	var vendor *string
	if in.Vendor != "" {
		vendor = &in.Vendor
	}

	rec := &repository.Receipt{
		ID:          uuid.New(),
		ProjectID:   in.SiteID,
		Kind:        kind,
		Description: in.Description,
		Amount:      in.Amount,
		Currency:    "JPY",
		Account:     in.Account,
		Vendor:      vendor,
		FileRefs:    in.FileRefs,
		ContentType: in.ContentType,
		OCRStatus:   ocrStatus,
		OccurredOn:  in.OccurredOn,
		CreatedAt:   time.Now(),
	}

	if err := s.store.Insert(ctx, rec); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to save receipt", err)
	}

	if ocrStatus == repository.OCRStatusPending {
		if s.enqueuer == nil {
			s.log.Warn("ocr queue not configured; receipt stays pending",
				"receipt_id", rec.ID.String())
		} else if err := s.enqueuer.EnqueueReceiptOCR(ctx, rec.ID, rec.FileRefs[0]); err != nil {
			s.log.Warn("failed to enqueue receipt ocr", "receipt_id", rec.ID.String(), "error", err)
		}
	}

	s.bus.Publish(ctx, events.ReceiptCaptured{
		BaseEvent: events.NewBaseEvent(),
		ReceiptID: rec.ID,
		ProjectID: in.SiteID,
		Kind:      kind,
		Amount:    in.Amount,
	})

	return &CaptureResult{ReceiptID: rec.ID, OCRStatus: ocrStatus}, nil
}

// Get returns a receipt with a fresh download URL for the primary file when
// storage is configured.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*repository.Receipt, string, error) {
	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}

	var downloadURL string
	if s.storage != nil && len(rec.FileRefs) > 0 {
		if presigned, err := s.storage.GenerateDownloadURL(ctx, s.bucket, rec.FileRefs[0]); err == nil {
			downloadURL = presigned.URL
		} else {
			s.log.Warn("failed to presign receipt download", "receipt_id", id.String(), "error", err)
		}
	}
	return rec, downloadURL, nil
}

// List returns the receipts for a site, newest first.
func (s *Service) List(ctx context.Context, siteID uuid.UUID) ([]repository.Receipt, error) {
	return s.store.ListByProject(ctx, siteID)
}
