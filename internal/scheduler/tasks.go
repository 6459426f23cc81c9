package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskReceiptOCR extracts the capture date and text from a receipt photo.
const TaskReceiptOCR = "receipts.ocr"

// ReceiptOCRPayload identifies the receipt and its stored object.
type ReceiptOCRPayload struct {
	ReceiptID string `json:"receiptId"`
	FileKey   string `json:"fileKey"`
}

// NewReceiptOCRTask builds the asynq task for a receipt OCR run.
func NewReceiptOCRTask(payload ReceiptOCRPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReceiptOCR, data), nil
}

// ParseReceiptOCRPayload decodes a receipt OCR task payload.
func ParseReceiptOCRPayload(task *asynq.Task) (ReceiptOCRPayload, error) {
	var payload ReceiptOCRPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ReceiptOCRPayload{}, err
	}
	return payload, nil
}
