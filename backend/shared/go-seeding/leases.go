package seeding

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/keystonepm/mono-repo/backend/shared/go-models"
	"github.com/keystonepm/mono-repo/backend/shared/go-utils"
)

const DefaultLeaseID = "77777777-7777-7777-7777-777777777777"

// SeedAll seeds the demo landlord, tenants and one lease awaiting signatures.
func SeedAll(ctx context.Context, r Repos) error {
	if err := SeedDefaultLandlord(ctx, r); err != nil {
		return err
	}
	if err := SeedDefaultTenants(ctx, r); err != nil {
		return err
	}
	return SeedDemoLease(ctx, r, time.Now().UTC())
}

// SeedDemoLease creates a one-year lease starting the first of next month.
func SeedDemoLease(ctx context.Context, r Repos, now time.Time) error {
	leaseID := uuid.MustParse(DefaultLeaseID)
	if existing, err := r.Leases.GetByID(ctx, leaseID); err != nil {
		return fmt.Errorf("check existing lease: %w", err)
	} else if existing != nil {
		utils.Logger.Info("seeding: demo lease already present; skipping")
		return nil
	}

	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	lease := &models.Lease{
		ID:              leaseID,
		UnitID:          uuid.MustParse(DefaultUnitID),
		LandlordID:      uuid.MustParse(DefaultLandlordID),
		RentAmountCents: 145000,
		DepositCents:    145000,
		StartDate:       start,
		EndDate:         start.AddDate(1, 0, -1),
		Status:          models.LeaseStatusPendingSignature,
	}
	for i, tenantID := range DefaultTenantIDs() {
		lease.Tenants = append(lease.Tenants, models.LeaseTenant{
			ID:              uuid.New(),
			LeaseID:         leaseID,
			TenantID:        tenantID,
			IsPrimaryTenant: i == 0,
		})
	}
	lease.QueueEvent(nil, models.LeaseEventCreated, map[string]any{"source": "seed"})

	if err := r.Leases.Create(ctx, lease); err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("create demo lease: %w", err)
	}
	utils.Logger.Infof("seeding: created demo lease id=%s", leaseID)
	return nil
}
