// go-models/unit.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Unit is a leasable space inside a property.
type Unit struct {
	ID         uuid.UUID `json:"id"`
	PropertyID uuid.UUID `json:"property_id"`
	UnitNumber string    `json:"unit_number"`
	Bedrooms   int       `json:"bedrooms"`
	Bathrooms  float64   `json:"bathrooms"`
	CreatedAt  time.Time `json:"created_at"`
}
