package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/keystonepm/mono-repo/backend/shared/go-models"
)

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

type LandlordRepository interface {
	Create(ctx context.Context, l *models.Landlord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Landlord, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Landlord, error)
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type landlordRepo struct {
	db DB
}

func NewLandlordRepository(db DB) LandlordRepository {
	return &landlordRepo{db: db}
}

/* ---------- Create ---------- */

func (r *landlordRepo) Create(ctx context.Context, l *models.Landlord) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO landlords (
			id,user_id,
			business_name,business_address,city,state,zip_code,
			created_at
		) VALUES (
			$1,$2,
			$3,$4,$5,$6,$7,
			NOW()
		)`,
		l.ID, l.UserID,
		l.BusinessName, l.BusinessAddress, l.City, l.State, l.ZipCode,
	)
	return err
}

/* ---------- Reads ---------- */

func (r *landlordRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Landlord, error) {
	return nilIfNoRows(scanLandlord(r.db.QueryRow(ctx, baseSelectLandlord()+" WHERE id=$1", id)))
}

func (r *landlordRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Landlord, error) {
	return nilIfNoRows(scanLandlord(r.db.QueryRow(ctx, baseSelectLandlord()+" WHERE user_id=$1", userID)))
}

/* ---------- internals ---------- */

func baseSelectLandlord() string {
	return `
		SELECT id,user_id,
		       business_name,business_address,city,state,zip_code,
		       created_at
		FROM landlords`
}

func scanLandlord(row pgx.Row) (*models.Landlord, error) {
	var l models.Landlord
	err := row.Scan(
		&l.ID, &l.UserID,
		&l.BusinessName, &l.BusinessAddress, &l.City, &l.State, &l.ZipCode,
		&l.CreatedAt,
	)
	if err != nil {
		// The caller is responsible for interpreting the error (e.g., pgx.ErrNoRows).
		return nil, err
	}
	return &l, nil
}
