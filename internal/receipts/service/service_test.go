package service

import (
	"context"
	"errors"
	"testing"

	"genba_backend/internal/adapters/storage"
	"genba_backend/internal/events"
	"genba_backend/internal/receipts/repository"
	"genba_backend/platform/apperr"
	"genba_backend/platform/logger"

	"github.com/google/uuid"
)

type stubStore struct {
	receipts map[uuid.UUID]*repository.Receipt
}

func newStubStore() *stubStore {
	return &stubStore{receipts: make(map[uuid.UUID]*repository.Receipt)}
}

func (s *stubStore) Insert(_ context.Context, rec *repository.Receipt) error {
	s.receipts[rec.ID] = rec
	return nil
}

func (s *stubStore) GetByID(_ context.Context, id uuid.UUID) (*repository.Receipt, error) {
	rec, ok := s.receipts[id]
	if !ok {
		return nil, apperr.NotFound("receipt not found")
	}
	return rec, nil
}

func (s *stubStore) ListByProject(_ context.Context, projectID uuid.UUID) ([]repository.Receipt, error) {
	var out []repository.Receipt
	for _, rec := range s.receipts {
		if rec.ProjectID == projectID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

type stubStorage struct{}

func (stubStorage) GenerateUploadURL(_ context.Context, _, folder, fileName, _ string, _ int64) (*storage.PresignedURL, error) {
	return &storage.PresignedURL{URL: "https://minio.local/put", FileKey: folder + "/" + fileName}, nil
}

func (stubStorage) GenerateDownloadURL(_ context.Context, _, fileKey string) (*storage.PresignedURL, error) {
	return &storage.PresignedURL{URL: "https://minio.local/get/" + fileKey, FileKey: fileKey}, nil
}

type stubEnqueuer struct {
	calls   int
	fileKey string
	err     error
}

func (s *stubEnqueuer) EnqueueReceiptOCR(_ context.Context, _ uuid.UUID, fileKey string) error {
	s.calls++
	s.fileKey = fileKey
	return s.err
}

func testService(store ReceiptStore, enqueuer OCREnqueuer) *Service {
	log := logger.New("development")
	return New(store, stubStorage{}, enqueuer, "receipts", events.NewInMemoryBus(log), log)
}

func TestCapture_ImageGoesPendingAndEnqueuesOCR(t *testing.T) {
	store := newStubStore()
	enqueuer := &stubEnqueuer{}
	svc := testService(store, enqueuer)

	result, err := svc.Capture(context.Background(), CaptureInput{
		SiteID:      uuid.New(),
		Amount:      3480,
		Account:     "消耗品費",
		FileRefs:    []string{"site/2024-07/receipt_ab12.jpg", "site/2024-07/receipt_ab12_back.jpg"},
		ContentType: "image/jpeg",
	})
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if result.OCRStatus != repository.OCRStatusPending {
		t.Fatalf("expected pending ocr status for image, got %s", result.OCRStatus)
	}
	if enqueuer.calls != 1 {
		t.Fatalf("expected 1 ocr enqueue, got %d", enqueuer.calls)
	}
	if enqueuer.fileKey != "site/2024-07/receipt_ab12.jpg" {
		t.Fatalf("expected ocr on first file ref, got %s", enqueuer.fileKey)
	}

	rec := store.receipts[result.ReceiptID]
	if rec.Currency != "JPY" {
		t.Fatalf("expected JPY currency, got %s", rec.Currency)
	}
	if rec.Kind != KindReceipt {
		t.Fatalf("expected default kind receipt, got %s", rec.Kind)
	}
	if rec.Account != "消耗品費" {
		t.Fatalf("expected account persisted, got %s", rec.Account)
	}
	if len(rec.FileRefs) != 2 {
		t.Fatalf("expected both file refs persisted, got %v", rec.FileRefs)
	}
}

func TestCapture_VendorIsOptional(t *testing.T) {
	store := newStubStore()
	svc := testService(store, &stubEnqueuer{})

	withVendor, err := svc.Capture(context.Background(), CaptureInput{
		SiteID:      uuid.New(),
		Kind:        KindDelivery,
		Vendor:      "建材センター",
		FileRefs:    []string{"site/2024-07/slip.jpg"},
		ContentType: "image/jpeg",
	})
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	rec := store.receipts[withVendor.ReceiptID]
	if rec.Vendor == nil || *rec.Vendor != "建材センター" {
		t.Fatalf("expected vendor persisted, got %v", rec.Vendor)
	}

	without, err := svc.Capture(context.Background(), CaptureInput{
		SiteID:      uuid.New(),
		FileRefs:    []string{"site/2024-07/receipt.jpg"},
		ContentType: "image/jpeg",
	})
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if store.receipts[without.ReceiptID].Vendor != nil {
		t.Fatal("expected nil vendor when none was given")
	}
}

func TestCapture_EnqueueFailureDoesNotFailCapture(t *testing.T) {
	store := newStubStore()
	enqueuer := &stubEnqueuer{err: errors.New("redis unreachable")}
	svc := testService(store, enqueuer)

	result, err := svc.Capture(context.Background(), CaptureInput{
		SiteID:      uuid.New(),
		Amount:      1200,
		FileRefs:    []string{"site/2024-07/receipt_cd34.jpg"},
		ContentType: "image/jpeg",
	})
	if err != nil {
		t.Fatalf("expected capture to succeed despite enqueue failure, got %v", err)
	}
	if store.receipts[result.ReceiptID] == nil {
		t.Fatal("receipt not persisted")
	}
}

func TestCapture_NilEnqueuerLeavesReceiptPending(t *testing.T) {
	store := newStubStore()
	svc := testService(store, nil)

	result, err := svc.Capture(context.Background(), CaptureInput{
		SiteID:      uuid.New(),
		Amount:      980,
		FileRefs:    []string{"site/2024-07/receipt_ef99.jpg"},
		ContentType: "image/jpeg",
	})
	if err != nil {
		t.Fatalf("expected capture to succeed without a queue, got %v", err)
	}
	if result.OCRStatus != repository.OCRStatusPending {
		t.Fatalf("expected pending status without a queue, got %s", result.OCRStatus)
	}
}

func TestCapture_PDFSkipsOCR(t *testing.T) {
	enqueuer := &stubEnqueuer{}
	svc := testService(newStubStore(), enqueuer)

	result, err := svc.Capture(context.Background(), CaptureInput{
		SiteID:      uuid.New(),
		Kind:        KindOther,
		FileRefs:    []string{"site/2024-07/contract.pdf"},
		ContentType: "application/pdf",
	})
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if result.OCRStatus != repository.OCRStatusDone {
		t.Fatalf("expected done status for pdf, got %s", result.OCRStatus)
	}
	if enqueuer.calls != 0 {
		t.Fatalf("expected no ocr enqueue for pdf, got %d", enqueuer.calls)
	}
}

func TestCapture_Validation(t *testing.T) {
	svc := testService(newStubStore(), &stubEnqueuer{})

	if _, err := svc.Capture(context.Background(), CaptureInput{
		SiteID: uuid.New(), Amount: -1, FileRefs: []string{"k"}, ContentType: "image/jpeg",
	}); err == nil {
		t.Fatal("expected error for negative amount")
	}
	if _, err := svc.Capture(context.Background(), CaptureInput{
		SiteID: uuid.New(), ContentType: "image/jpeg",
	}); err == nil {
		t.Fatal("expected error for missing file refs")
	}
	if _, err := svc.Capture(context.Background(), CaptureInput{
		SiteID: uuid.New(), FileRefs: []string{""}, ContentType: "image/jpeg",
	}); err == nil {
		t.Fatal("expected error for empty file ref")
	}
	if _, err := svc.Capture(context.Background(), CaptureInput{
		SiteID: uuid.New(), Kind: "photo", FileRefs: []string{"k"}, ContentType: "image/jpeg",
	}); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestGet_IncludesDownloadURL(t *testing.T) {
	store := newStubStore()
	svc := testService(store, &stubEnqueuer{})

	result, err := svc.Capture(context.Background(), CaptureInput{
		SiteID:      uuid.New(),
		Amount:      500,
		FileRefs:    []string{"site/2024-07/receipt_ef56.jpg"},
		ContentType: "image/jpeg",
	})
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}

	_, downloadURL, err := svc.Get(context.Background(), result.ReceiptID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if downloadURL == "" {
		t.Fatal("expected presigned download url")
	}
}
