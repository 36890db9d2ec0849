package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is the TENANT-role profile wrapping a User.
type Tenant struct {
	ID                uuid.UUID `json:"id"`
	UserID            uuid.UUID `json:"user_id"`
	AnnualIncomeCents *int64    `json:"annual_income_cents,omitempty"`
	EmployerName      *string   `json:"employer_name,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}
