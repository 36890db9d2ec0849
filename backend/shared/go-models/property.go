package models

import (
	"time"

	"github.com/google/uuid"
)

type Property struct {
	ID           uuid.UUID `json:"id"`
	LandlordID   uuid.UUID `json:"landlord_id"`
	PropertyName string    `json:"property_name"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	ZipCode      string    `json:"zip_code"`
	TimeZone     string    `json:"timezone"`
	CreatedAt    time.Time `json:"created_at"`
}
