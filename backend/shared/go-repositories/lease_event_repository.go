// backend/shared/go-repositories/lease_event_repository.go
package repositories

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgtype"
	"github.com/keystonepm/mono-repo/backend/shared/go-models"
)

type LeaseEventRepository interface {
	Create(ctx context.Context, ev *models.LeaseEvent) error
	ListByLeaseID(ctx context.Context, leaseID uuid.UUID) ([]*models.LeaseEvent, error)
}

type leaseEventRepo struct {
	db DB
}

func NewLeaseEventRepository(db DB) LeaseEventRepository {
	return &leaseEventRepo{db: db}
}

func (r *leaseEventRepo) Create(ctx context.Context, ev *models.LeaseEvent) error {
	return insertLeaseEvents(ctx, r.db, []models.LeaseEvent{*ev})
}

func (r *leaseEventRepo) ListByLeaseID(ctx context.Context, leaseID uuid.UUID) ([]*models.LeaseEvent, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, lease_id, actor_user_id, action, details, created_at
		FROM lease_events
		WHERE lease_id = $1
		ORDER BY created_at, id`,
		leaseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.LeaseEvent
	for rows.Next() {
		var ev models.LeaseEvent
		var actor pgtype.UUID
		var action string
		var details pgtype.JSONB
		if err := rows.Scan(&ev.ID, &ev.LeaseID, &actor, &action, &details, &ev.CreatedAt); err != nil {
			return nil, err
		}
		ev.Action = models.LeaseEventAction(action)
		if actor.Status == pgtype.Present {
			id := uuid.UUID(actor.Bytes)
			ev.ActorUserID = &id
		}
		ev.Details = rawFromJSONB(details)
		out = append(out, &ev)
	}
	return out, rows.Err()
}

func insertLeaseEvents(ctx context.Context, db DB, events []models.LeaseEvent) error {
	q := `
        INSERT INTO lease_events (
            id, lease_id, actor_user_id, action, details, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6)
    `
	for _, ev := range events {
		if _, err := db.Exec(ctx, q,
			ev.ID,
			ev.LeaseID,
			ev.ActorUserID,
			string(ev.Action),
			jsonbParam(ev.Details),
			ev.CreatedAt,
		); err != nil {
			return err
		}
	}
	return nil
}

func jsonbParam(raw *json.RawMessage) pgtype.JSONB {
	if raw == nil {
		return pgtype.JSONB{Status: pgtype.Null}
	}
	return pgtype.JSONB{Bytes: *raw, Status: pgtype.Present}
}

func rawFromJSONB(j pgtype.JSONB) *json.RawMessage {
	if j.Status != pgtype.Present {
		return nil
	}
	msg := json.RawMessage(append([]byte(nil), j.Bytes...))
	return &msg
}
