package models

import "time"

// SignupAttempt is one completion attempt as kept in the audit log. It never
// carries passwords.
type SignupAttempt struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	CompanyName string    `json:"company_name"`
	Tier        Tier      `json:"tier"`
	Action      string    `json:"action"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency"`
	Succeeded   bool      `json:"succeeded"`
	Stage       string    `json:"stage,omitempty"`
	Error       string    `json:"error,omitempty"`
	SessionID   string    `json:"session_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
