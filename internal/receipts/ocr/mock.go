package ocr

import "context"

// MockInvoker serves a fixed extraction so the OCR pipeline can run end to
// end without an API key.
type MockInvoker struct{}

// NewMockInvoker creates the canned OCR invoker.
func NewMockInvoker() *MockInvoker {
	return &MockInvoker{}
}

// ExtractReceipt returns the canned extraction. The date is left empty so
// the worker's EXIF fallback stays exercised.
func (MockInvoker) ExtractReceipt(_ context.Context, _ string, _ []byte) (Extraction, error) {
	return Extraction{Vendor: "現場金物店", Amount: 3480}, nil
}
