package app

import (
	"context"

	"github.com/keystonepm/mono-repo/backend/shared/go-repositories"
	"github.com/keystonepm/mono-repo/backend/shared/go-seeding"
)

// SeedAllTestData writes the demo landlord, tenants and lease.
func (a *App) SeedAllTestData(ctx context.Context) error {
	return seeding.SeedAll(ctx, seeding.Repos{
		Users:      repositories.NewUserRepository(a.DB),
		Landlords:  repositories.NewLandlordRepository(a.DB),
		Tenants:    repositories.NewTenantRepository(a.DB),
		Properties: repositories.NewPropertyRepository(a.DB),
		Units:      repositories.NewUnitRepository(a.DB),
		Leases:     repositories.NewLeaseRepository(a.DB),
	})
}
