package dtos

import (
	"encoding/json"
	"time"

	"github.com/keystonepm/mono-repo/backend/shared/go-models"
)

type Notification struct {
	ID        string                  `json:"id"`
	Type      models.NotificationType `json:"type"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	ActionURL string                  `json:"action_url"`
	Metadata  *json.RawMessage        `json:"metadata,omitempty"`
	ReadAt    *string                 `json:"read_at"`
	CreatedAt string                  `json:"created_at"`
}

func NewNotificationFromModel(n models.Notification) Notification {
	return Notification{
		ID:        n.ID.String(),
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		ActionURL: n.ActionURL,
		Metadata:  n.Metadata,
		ReadAt:    FormatTimestamp(n.ReadAt),
		CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type LeaseEvent struct {
	ID          string                  `json:"id"`
	Action      models.LeaseEventAction `json:"action"`
	ActorUserID *string                 `json:"actor_user_id"`
	Details     *json.RawMessage        `json:"details,omitempty"`
	CreatedAt   string                  `json:"created_at"`
}

func NewLeaseEventFromModel(ev models.LeaseEvent) LeaseEvent {
	var actor *string
	if ev.ActorUserID != nil {
		s := ev.ActorUserID.String()
		actor = &s
	}
	return LeaseEvent{
		ID:          ev.ID.String(),
		Action:      ev.Action,
		ActorUserID: actor,
		Details:     ev.Details,
		CreatedAt:   ev.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}
