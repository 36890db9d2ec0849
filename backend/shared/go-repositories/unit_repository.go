package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/keystonepm/mono-repo/backend/shared/go-models"
)

/* ───────────── public interface ───────────── */

type UnitRepository interface {
	Create(ctx context.Context, u *models.Unit) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Unit, error)
}

/* ───────────── implementation ───────────── */

type unitRepo struct {
	db DB
}

func NewUnitRepository(db DB) UnitRepository {
	return &unitRepo{db: db}
}

/* ---------- create ---------- */

func (r *unitRepo) Create(ctx context.Context, u *models.Unit) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO units (
			id, property_id, unit_number, bedrooms, bathrooms, created_at
		) VALUES ($1,$2,$3,$4,$5, NOW())
	`, u.ID, u.PropertyID, u.UnitNumber, u.Bedrooms, u.Bathrooms)
	return err
}

/* ---------- reads ---------- */

func (r *unitRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	return nilIfNoRows(scanUnit(r.db.QueryRow(ctx, baseSelectUnit()+" WHERE id=$1", id)))
}

/* ---------- helpers ---------- */

func baseSelectUnit() string {
	return `
		SELECT id, property_id, unit_number, bedrooms, bathrooms::float8, created_at
		FROM units`
}

func scanUnit(row pgx.Row) (*models.Unit, error) {
	var u models.Unit
	if err := row.Scan(&u.ID, &u.PropertyID, &u.UnitNumber, &u.Bedrooms, &u.Bathrooms, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
