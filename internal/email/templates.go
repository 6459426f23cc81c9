package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
	CTALabel   string
	CTAURL     string
}

type invoiceIssuedEmailData struct {
	baseEmailData
	InvoiceNumber  string
	PeriodLabel    string
	TotalFormatted string
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

var jpyPrinter = message.NewPrinter(language.Japanese)

// formatCurrencyJPY renders an integer yen amount with grouping, e.g. ¥1,234,567.
func formatCurrencyJPY(amount int64) string {
	return jpyPrinter.Sprintf("¥%d", amount)
}
