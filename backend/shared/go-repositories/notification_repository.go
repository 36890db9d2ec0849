package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
	"github.com/keystonepm/mono-repo/backend/shared/go-models"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUserID(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*models.Notification, error)

	// MarkRead returns pgx.ErrNoRows when the notification is missing or
	// belongs to someone else. Marking twice keeps the first read_at.
	MarkRead(ctx context.Context, id, userID uuid.UUID) (*models.Notification, error)
}

type notificationRepo struct {
	db DB
}

func NewNotificationRepository(db DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, n *models.Notification) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO notifications (
			id,user_id,type,title,message,action_url,metadata,created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		n.ID, n.UserID, string(n.Type), n.Title, n.Message, n.ActionURL,
		jsonbParam(n.Metadata), n.CreatedAt,
	)
	return err
}

func (r *notificationRepo) ListByUserID(
	ctx context.Context,
	userID uuid.UUID,
	unreadOnly bool,
	limit int,
) ([]*models.Notification, error) {
	q := baseSelectNotification() + " WHERE user_id=$1"
	if unreadOnly {
		q += " AND read_at IS NULL"
	}
	q += " ORDER BY created_at DESC, id LIMIT $2"

	rows, err := r.db.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *notificationRepo) MarkRead(ctx context.Context, id, userID uuid.UUID) (*models.Notification, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE notifications SET read_at = COALESCE(read_at, NOW())
		WHERE id=$1 AND user_id=$2
		RETURNING id,user_id,type,title,message,action_url,metadata,read_at,created_at`,
		id, userID,
	)
	return scanNotification(row)
}

func baseSelectNotification() string {
	return `
		SELECT id,user_id,type,title,message,action_url,metadata,read_at,created_at
		FROM notifications`
}

func scanNotification(row pgx.Row) (*models.Notification, error) {
	var n models.Notification
	var typ string
	var meta pgtype.JSONB
	err := row.Scan(&n.ID, &n.UserID, &typ, &n.Title, &n.Message, &n.ActionURL, &meta, &n.ReadAt, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	n.Type = models.NotificationType(typ)
	n.Metadata = rawFromJSONB(meta)
	return &n, nil
}
