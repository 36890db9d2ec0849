package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationLeaseSignatureRequested NotificationType = "LEASE_SIGNATURE_REQUESTED"
	NotificationSignatureRecorded       NotificationType = "SIGNATURE_RECORDED"
	NotificationLeaseActivated          NotificationType = "LEASE_ACTIVATED"
	NotificationLeaseExpiringSoon       NotificationType = "LEASE_EXPIRING_SOON"
	NotificationLeaseExpired            NotificationType = "LEASE_EXPIRED"
	NotificationLeaseTerminated         NotificationType = "LEASE_TERMINATED"
)

// Notification is the in-app copy of every dispatched message.
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	ActionURL string           `json:"action_url"`
	Metadata  *json.RawMessage `json:"metadata,omitempty"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}
