package models

type StartOnboardingRequest struct {
	Tier         Tier    `json:"tier"`
	Price        float64 `json:"price"`
	Currency     string  `json:"currency"`
	BillingCycle string  `json:"billing_cycle"`
}

// UpdateFieldRequest sets one field, several fields, or both.
type UpdateFieldRequest struct {
	Field  string            `json:"field"`
	Value  string            `json:"value"`
	Fields map[string]string `json:"fields"`
}
