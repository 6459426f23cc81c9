package transport

import (
	"github.com/google/uuid"
)

// UploadURLRequest is the request body for a presigned upload URL.
type UploadURLRequest struct {
	SiteID      uuid.UUID `json:"siteId" validate:"required"`
	FileName    string    `json:"fileName" validate:"required,max=255"`
	ContentType string    `json:"contentType" validate:"required"`
	SizeBytes   int64     `json:"sizeBytes" validate:"required,gt=0"`
}

// CaptureRequest is the request body for recording a captured receipt.
// OccurredOn may be given up front when the user knows the purchase date;
// otherwise the OCR worker fills it in from the photo.
type CaptureRequest struct {
	SiteID      uuid.UUID `json:"siteId" validate:"required"`
	Kind        string    `json:"kind" validate:"omitempty,oneof=receipt delivery other"`
	Description string    `json:"description" validate:"max=500"`
	Account     string    `json:"account" validate:"max=100"`
	Vendor      string    `json:"vendor" validate:"max=200"`
	Amount      int64     `json:"amount" validate:"min=0"`
	FileRefs    []string  `json:"fileRefs" validate:"required,min=1,dive,required,max=512"`
	ContentType string    `json:"contentType" validate:"required"`
	OccurredOn  string    `json:"occurredOn" validate:"omitempty,datetime=2006-01-02"`
}

// ReceiptResponse is a persisted receipt.
type ReceiptResponse struct {
	ID          uuid.UUID `json:"id"`
	SiteID      uuid.UUID `json:"siteId"`
	Kind        string    `json:"kind"`
	Description string    `json:"description,omitempty"`
	Amount      int64     `json:"amount"`
	Currency    string    `json:"currency"`
	Account     string    `json:"account,omitempty"`
	Vendor      *string   `json:"vendor,omitempty"`
	FileRefs    []string  `json:"fileRefs"`
	OCRStatus   string    `json:"ocrStatus"`
	OccurredOn  *string   `json:"occurredOn,omitempty"`
	DownloadURL string    `json:"downloadUrl,omitempty"`
}
