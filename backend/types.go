package backend

import "encoding/json"

type RegisterRequest struct {
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	CompanyName string `json:"company_name"`
	CompanySize string `json:"company_size"`
	Industry    string `json:"industry"`
	Phone       string `json:"phone"`
	Tier        string `json:"tier"`
	Password    string `json:"password,omitempty"`
}

type RegisterResponse struct {
	ID      json.RawMessage `json:"id,omitempty"`
	Email   string          `json:"email,omitempty"`
	Message string          `json:"message,omitempty"`
}

// SubscriptionTier is one entry of the tiers listing. ID is opaque: the backend may
// send a number or a string.
type SubscriptionTier struct {
	ID           json.RawMessage `json:"id"`
	Tier         string          `json:"tier"`
	Name         string          `json:"name"`
	PriceMonthly json.Number     `json:"price_monthly,omitempty"`
	PriceAnnual  json.Number     `json:"price_annual,omitempty"`
	Currency     string          `json:"currency,omitempty"`
}

type CheckoutRequest struct {
	TierID        json.RawMessage   `json:"tier_id"`
	Currency      string            `json:"currency"`
	BillingCycle  string            `json:"billing_cycle"`
	SuccessURL    string            `json:"success_url"`
	CancelURL     string            `json:"cancel_url"`
	CustomerEmail string            `json:"customer_email"`
	Metadata      map[string]string `json:"metadata"`
}

type CheckoutSession struct {
	CheckoutURL string `json:"checkout_url"`
	SessionID   string `json:"session_id"`
}
