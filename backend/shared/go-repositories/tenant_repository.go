package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/keystonepm/mono-repo/backend/shared/go-models"
)

type TenantRepository interface {
	Create(ctx context.Context, t *models.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Tenant, error)
}

type tenantRepo struct {
	db DB
}

func NewTenantRepository(db DB) TenantRepository {
	return &tenantRepo{db: db}
}

func (r *tenantRepo) Create(ctx context.Context, t *models.Tenant) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO tenants (id,user_id,annual_income_cents,employer_name,created_at)
		VALUES ($1,$2,$3,$4,NOW())`,
		t.ID, t.UserID, t.AnnualIncomeCents, t.EmployerName,
	)
	return err
}

func (r *tenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	return nilIfNoRows(scanTenant(r.db.QueryRow(ctx, baseSelectTenant()+" WHERE id=$1", id)))
}

func (r *tenantRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Tenant, error) {
	return nilIfNoRows(scanTenant(r.db.QueryRow(ctx, baseSelectTenant()+" WHERE user_id=$1", userID)))
}

func baseSelectTenant() string {
	return `SELECT id,user_id,annual_income_cents,employer_name,created_at FROM tenants`
}

func scanTenant(row pgx.Row) (*models.Tenant, error) {
	var t models.Tenant
	if err := row.Scan(&t.ID, &t.UserID, &t.AnnualIncomeCents, &t.EmployerName, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}
