package models

import (
	"time"

	"github.com/google/uuid"
)

// Landlord is the LANDLORD-role profile wrapping a User.
type Landlord struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	BusinessName    string    `json:"business_name"`
	BusinessAddress string    `json:"business_address"`
	City            string    `json:"city"`
	State           string    `json:"state"`
	ZipCode         string    `json:"zip_code"`
	CreatedAt       time.Time `json:"created_at"`
}
