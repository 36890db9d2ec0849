package seeding

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/keystonepm/mono-repo/backend/shared/go-models"
	"github.com/keystonepm/mono-repo/backend/shared/go-utils"
)

type demoTenant struct {
	userID, tenantID, email, phone, first string
}

var demoTenants = []demoTenant{
	{"55555555-5555-5555-5555-555555555551", "66666666-6666-6666-6666-666666666661", "tenant.a@keystonepm.com", "+12565550001", "Avery"},
	{"55555555-5555-5555-5555-555555555552", "66666666-6666-6666-6666-666666666662", "tenant.b@keystonepm.com", "+12565550002", "Blake"},
}

// DefaultTenantIDs lists the demo tenant profile IDs in primary-first order.
func DefaultTenantIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(demoTenants))
	for i, d := range demoTenants {
		ids[i] = uuid.MustParse(d.tenantID)
	}
	return ids
}

// SeedDefaultTenants creates the two demo tenants if needed.
func SeedDefaultTenants(ctx context.Context, r Repos) error {
	for _, d := range demoTenants {
		tenantID := uuid.MustParse(d.tenantID)
		existing, err := r.Tenants.GetByID(ctx, tenantID)
		if err != nil {
			return fmt.Errorf("check existing tenant: %w", err)
		}
		if existing != nil {
			continue
		}

		user := &models.User{
			ID:          uuid.MustParse(d.userID),
			Email:       d.email,
			PhoneNumber: utils.Ptr(d.phone),
			FirstName:   d.first,
			LastName:    "Tenant",
			Role:        models.RoleTenant,
			Status:      models.UserStatusActive,
		}
		if err := r.Users.Create(ctx, user); err != nil && !isUniqueViolation(err) {
			return fmt.Errorf("create tenant user %s: %w", d.email, err)
		}
		if err := r.Tenants.Create(ctx, &models.Tenant{ID: tenantID, UserID: user.ID}); err != nil && !isUniqueViolation(err) {
			return fmt.Errorf("create tenant %s: %w", d.email, err)
		}
		utils.Logger.Infof("seeding: created tenant id=%s", tenantID)
	}
	return nil
}
