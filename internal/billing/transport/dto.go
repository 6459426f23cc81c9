package transport

// SettingsResponse is the billing settings representation returned to clients.
type SettingsResponse struct {
	SiteID          string  `json:"siteId"`
	BillingMode     string  `json:"billingMode"`
	TaxRule         string  `json:"taxRule"`
	TaxRate         float64 `json:"taxRate"`
	ClosingDay      string  `json:"closingDay"`
	PaymentTermDays int     `json:"paymentTermDays"`
	Rounding        string  `json:"rounding"`
}

// PatchRequest is the request body for patching billing settings. Either a
// free-text command or explicit fields; explicit fields win when both are set.
type PatchRequest struct {
	Command         string   `json:"command"`
	BillingMode     *string  `json:"billingMode" validate:"omitempty,oneof=progress daily milestone"`
	TaxRule         *string  `json:"taxRule" validate:"omitempty,oneof=inclusive exclusive"`
	TaxRate         *float64 `json:"taxRate" validate:"omitempty,min=0"`
	ClosingDay      *string  `json:"closingDay"`
	PaymentTermDays *int     `json:"paymentTermDays" validate:"omitempty,min=0"`
	Rounding        *string  `json:"rounding" validate:"omitempty,oneof=cut round ceil"`
}
