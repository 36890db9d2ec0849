package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
	"github.com/keystonepm/mono-repo/backend/shared/go-models"
)

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

type LeaseRepository interface {
	// Create inserts the lease, its tenant rows and any queued events together.
	Create(ctx context.Context, lease *models.Lease) error

	// GetByID returns nil, nil for missing or soft-deleted leases.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Lease, error)
	ListByLandlordID(ctx context.Context, landlordID uuid.UUID) ([]*models.Lease, error)
	ListByTenantID(ctx context.Context, tenantID uuid.UUID) ([]*models.Lease, error)
	ListByStatusEndingBefore(ctx context.Context, statuses []models.LeaseStatus, before time.Time) ([]*models.Lease, error)

	// Optimistic‑lock helpers, term edits on drafts only.
	UpdateIfVersion(ctx context.Context, lease *models.Lease, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Lease) error) error

	SoftDelete(ctx context.Context, id uuid.UUID) error

	// LockAndUpdate holds the lease row lock while mutate runs, then writes
	// status, signatures and PendingEvents in the same transaction. An error
	// from mutate rolls everything back and is returned unchanged. Missing
	// leases yield pgx.ErrNoRows.
	LockAndUpdate(ctx context.Context, id uuid.UUID, mutate func(*models.Lease) error) (*models.Lease, error)
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

// Row lock waits longer than this surface as 55P03.
const leaseLockTimeout = "5s"

type leaseRepo struct {
	*BaseVersionedRepo[*models.Lease]
	db DB
}

/* ---------- constructor ---------- */

func NewLeaseRepository(db DB) LeaseRepository {
	r := &leaseRepo{db: db}
	selectStmt := baseSelectLease() + " WHERE id=$1 AND deleted_at IS NULL"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, scanLease, hydrateLeaseTenants)
	return r
}

/* ---------- Create ---------- */

func (r *leaseRepo) Create(ctx context.Context, lease *models.Lease) error {
	return WithTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO leases (
				id,unit_id,landlord_id,
				rent_amount_cents,deposit_cents,start_date,end_date,
				status,landlord_signed_at,all_tenants_signed_at,
				created_at,updated_at,row_version
			) VALUES (
				$1,$2,$3,
				$4,$5,$6,$7,
				$8,$9,$10,
				NOW(),NOW(),1
			)`,
			lease.ID, lease.UnitID, lease.LandlordID,
			lease.RentAmountCents, lease.DepositCents, dateParam(lease.StartDate), dateParam(lease.EndDate),
			string(lease.Status), lease.LandlordSignedAt, lease.AllTenantsSignedAt,
		)
		if err != nil {
			return err
		}
		for _, t := range lease.Tenants {
			if _, err := tx.Exec(ctx, `
				INSERT INTO lease_tenants (id,lease_id,tenant_id,is_primary_tenant,signed_at)
				VALUES ($1,$2,$3,$4,$5)`,
				t.ID, lease.ID, t.TenantID, t.IsPrimaryTenant, t.SignedAt,
			); err != nil {
				return err
			}
		}
		if err := insertLeaseEvents(ctx, tx, lease.PendingEvents); err != nil {
			return err
		}
		lease.PendingEvents = nil
		lease.RowVersion = 1
		return nil
	})
}

/* ---------- Reads ---------- */

func (r *leaseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Lease, error) {
	return nilIfNoRows(r.BaseVersionedRepo.GetByID(ctx, id.String()))
}

func (r *leaseRepo) ListByLandlordID(ctx context.Context, landlordID uuid.UUID) ([]*models.Lease, error) {
	return r.list(ctx,
		baseSelectLease()+" WHERE landlord_id=$1 AND deleted_at IS NULL ORDER BY created_at DESC",
		landlordID,
	)
}

func (r *leaseRepo) ListByTenantID(ctx context.Context, tenantID uuid.UUID) ([]*models.Lease, error) {
	return r.list(ctx,
		baseSelectLease()+`
		WHERE deleted_at IS NULL
		  AND id IN (SELECT lease_id FROM lease_tenants WHERE tenant_id=$1)
		ORDER BY created_at DESC`,
		tenantID,
	)
}

func (r *leaseRepo) ListByStatusEndingBefore(
	ctx context.Context,
	statuses []models.LeaseStatus,
	before time.Time,
) ([]*models.Lease, error) {
	ss := make([]string, len(statuses))
	for i, s := range statuses {
		ss[i] = string(s)
	}
	return r.list(ctx,
		baseSelectLease()+`
		WHERE deleted_at IS NULL
		  AND status = ANY($1::text[])
		  AND end_date < $2
		ORDER BY end_date`,
		ss, dateParam(before),
	)
}

/* ---------- Updates ---------- */

func (r *leaseRepo) UpdateIfVersion(ctx context.Context, lease *models.Lease, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
		UPDATE leases SET
			unit_id=$1,rent_amount_cents=$2,deposit_cents=$3,
			start_date=$4,end_date=$5,
			updated_at=NOW(),row_version=row_version+1
		WHERE id=$6 AND row_version=$7 AND deleted_at IS NULL`,
		lease.UnitID, lease.RentAmountCents, lease.DepositCents,
		dateParam(lease.StartDate), dateParam(lease.EndDate),
		lease.ID, expected,
	)
}

func (r *leaseRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Lease) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *leaseRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE leases SET deleted_at=NOW() WHERE id=$1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// LockAndUpdate locks the lease row with SELECT ... FOR UPDATE, loads its
// tenants, runs mutate and writes the result plus PendingEvents in one
// transaction. A mutate error rolls back and is returned as is.
func (r *leaseRepo) LockAndUpdate(
	ctx context.Context,
	id uuid.UUID,
	mutate func(*models.Lease) error,
) (*models.Lease, error) {
	var out *models.Lease
	err := WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SET LOCAL lock_timeout = '"+leaseLockTimeout+"'"); err != nil {
			return err
		}

		row := tx.QueryRow(ctx, baseSelectLease()+" WHERE id=$1 AND deleted_at IS NULL FOR UPDATE", id)
		lease, err := scanLease(row)
		if err != nil {
			return err
		}
		// Tenant rows are read after the lock so they reflect the last committed signer.
		if err := hydrateLeaseTenants(ctx, tx, lease); err != nil {
			return err
		}

		before := snapshotSignatures(lease)
		if err := mutate(lease); err != nil {
			return err
		}

		var updatedAt time.Time
		err = tx.QueryRow(ctx, `
			UPDATE leases SET
				status=$1,landlord_signed_at=$2,all_tenants_signed_at=$3,termination_reason=$4,
				updated_at=NOW(),row_version=row_version+1
			WHERE id=$5
			RETURNING updated_at`,
			string(lease.Status), lease.LandlordSignedAt, lease.AllTenantsSignedAt, lease.TerminationReason,
			lease.ID,
		).Scan(&updatedAt)
		if err != nil {
			return err
		}

		for _, t := range lease.Tenants {
			if sameTime(before[t.ID], t.SignedAt) {
				continue
			}
			if _, err := tx.Exec(ctx,
				`UPDATE lease_tenants SET signed_at=$1 WHERE id=$2 AND lease_id=$3`,
				t.SignedAt, t.ID, lease.ID,
			); err != nil {
				return err
			}
		}

		if err := insertLeaseEvents(ctx, tx, lease.PendingEvents); err != nil {
			return err
		}

		lease.PendingEvents = nil
		lease.RowVersion++
		lease.UpdatedAt = updatedAt
		out = lease
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

/* ---------- internals ---------- */

func (r *leaseRepo) list(ctx context.Context, sql string, args ...any) ([]*models.Lease, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leases []*models.Lease
	for rows.Next() {
		l, err := scanLease(rows)
		if err != nil {
			return nil, err
		}
		leases = append(leases, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Tenants must load after rows is drained; a pooled conn serves one query at a time.
	for _, l := range leases {
		if err := hydrateLeaseTenants(ctx, r.db, l); err != nil {
			return nil, err
		}
	}
	return leases, nil
}

func baseSelectLease() string {
	return `
		SELECT id,unit_id,landlord_id,
		       rent_amount_cents,deposit_cents,start_date,end_date,
		       status,landlord_signed_at,all_tenants_signed_at,termination_reason,
		       row_version,created_at,updated_at,deleted_at
		FROM leases`
}

func scanLease(row pgx.Row) (*models.Lease, error) {
	var l models.Lease
	var status string
	var deletedAt pgtype.Timestamptz

	err := row.Scan(
		&l.ID, &l.UnitID, &l.LandlordID,
		&l.RentAmountCents, &l.DepositCents, &l.StartDate, &l.EndDate,
		&status, &l.LandlordSignedAt, &l.AllTenantsSignedAt, &l.TerminationReason,
		&l.RowVersion, &l.CreatedAt, &l.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}
	l.Status = models.LeaseStatus(status)
	if deletedAt.Status == pgtype.Present {
		l.DeletedAt = &deletedAt.Time
	}
	return &l, nil
}

func hydrateLeaseTenants(ctx context.Context, db DB, lease *models.Lease) error {
	rows, err := db.Query(ctx, `
		SELECT id,lease_id,tenant_id,is_primary_tenant,signed_at
		FROM lease_tenants
		WHERE lease_id=$1
		ORDER BY is_primary_tenant DESC, id`,
		lease.ID,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	lease.Tenants = lease.Tenants[:0]
	for rows.Next() {
		var t models.LeaseTenant
		if err := rows.Scan(&t.ID, &t.LeaseID, &t.TenantID, &t.IsPrimaryTenant, &t.SignedAt); err != nil {
			return err
		}
		lease.Tenants = append(lease.Tenants, t)
	}
	return rows.Err()
}

func snapshotSignatures(lease *models.Lease) map[uuid.UUID]*time.Time {
	m := make(map[uuid.UUID]*time.Time, len(lease.Tenants))
	for _, t := range lease.Tenants {
		m[t.ID] = t.SignedAt
	}
	return m
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// dateParam sends only the calendar day, so a UTC midnight never shifts across the date column.
func dateParam(t time.Time) pgtype.Date {
	return pgtype.Date{
		Time:   time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC),
		Status: pgtype.Present,
	}
}
