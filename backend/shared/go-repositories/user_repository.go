package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
	"github.com/keystonepm/mono-repo/backend/shared/go-models"
)

// UserRepository is read-mostly here; accounts are provisioned by the auth backend.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type userRepo struct {
	db DB
}

func NewUserRepository(db DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (
			id,email,phone_number,first_name,last_name,role,status,
			created_at,updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,NOW(),NOW())`,
		u.ID, u.Email, u.PhoneNumber, u.FirstName, u.LastName, string(u.Role), string(u.Status),
	)
	return err
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return nilIfNoRows(scanUser(r.db.QueryRow(ctx, baseSelectUser()+" WHERE id=$1 AND deleted_at IS NULL", id)))
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return nilIfNoRows(scanUser(r.db.QueryRow(ctx, baseSelectUser()+" WHERE email=$1 AND deleted_at IS NULL", email)))
}

func baseSelectUser() string {
	return `
		SELECT id,email,phone_number,first_name,last_name,role,status,
		       created_at,updated_at,deleted_at
		FROM users`
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	var role, status string
	var deletedAt pgtype.Timestamptz

	err := row.Scan(
		&u.ID, &u.Email, &u.PhoneNumber, &u.FirstName, &u.LastName, &role, &status,
		&u.CreatedAt, &u.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Role = models.RoleType(role)
	u.Status = models.UserStatusType(status)
	if deletedAt.Status == pgtype.Present {
		u.DeletedAt = &deletedAt.Time
	}
	return &u, nil
}
