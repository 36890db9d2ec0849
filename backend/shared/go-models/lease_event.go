// backend/shared/go-models/lease_event.go
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type LeaseEventAction string

const (
	LeaseEventCreated            LeaseEventAction = "CREATED"
	LeaseEventTermsUpdated       LeaseEventAction = "TERMS_UPDATED"
	LeaseEventSentForSignature   LeaseEventAction = "SENT_FOR_SIGNATURE"
	LeaseEventLandlordSigned     LeaseEventAction = "LANDLORD_SIGNED"
	LeaseEventTenantSigned       LeaseEventAction = "TENANT_SIGNED"
	LeaseEventActivated          LeaseEventAction = "ACTIVATED"
	LeaseEventInvitationResent   LeaseEventAction = "INVITATION_RESENT"
	LeaseEventMarkedExpiringSoon LeaseEventAction = "MARKED_EXPIRING_SOON"
	LeaseEventExpired            LeaseEventAction = "EXPIRED"
	LeaseEventTerminated         LeaseEventAction = "TERMINATED"
)

// LeaseEvent is one row of a lease's audit trail. ActorUserID is nil for
// system transitions (the expiry job).
type LeaseEvent struct {
	ID          uuid.UUID        `json:"id"`
	LeaseID     uuid.UUID        `json:"lease_id"`
	ActorUserID *uuid.UUID       `json:"actor_user_id,omitempty"`
	Action      LeaseEventAction `json:"action"`
	Details     *json.RawMessage `json:"details,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

func NewLeaseEvent(leaseID uuid.UUID, actorUserID *uuid.UUID, action LeaseEventAction, details map[string]any) LeaseEvent {
	ev := LeaseEvent{
		ID:          uuid.New(),
		LeaseID:     leaseID,
		ActorUserID: actorUserID,
		Action:      action,
		CreatedAt:   time.Now().UTC(),
	}
	if len(details) > 0 {
		if raw, err := json.Marshal(details); err == nil {
			msg := json.RawMessage(raw)
			ev.Details = &msg
		}
	}
	return ev
}
