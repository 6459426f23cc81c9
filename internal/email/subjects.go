package email

const (
	subjectInvoiceIssuedFmt = "請求書 %s を発行しました"
)
