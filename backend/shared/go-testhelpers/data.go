// backend/shared/go-testhelpers/data.go

package testhelpers

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/keystonepm/mono-repo/backend/shared/go-models"
	"github.com/keystonepm/mono-repo/backend/shared/go-utils"
	"github.com/stretchr/testify/require"
)

// UniquePhone generates a unique phone number for testing.
func UniquePhone() string {
	return fmt.Sprintf("+1555%07d", rand.New(rand.NewSource(time.Now().UnixNano())).Int31n(1e7))
}

// UniqueEmail generates a unique email for testing.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d-%s@keystone.test", prefix, time.Now().UnixNano(), uuid.NewString()[:8])
}

// LandlordFixture is a landlord user with one property and unit.
type LandlordFixture struct {
	User     *models.User
	Landlord *models.Landlord
	Property *models.Property
	Unit     *models.Unit
}

// TenantFixture is a tenant user and profile.
type TenantFixture struct {
	User   *models.User
	Tenant *models.Tenant
}

func (h *TestHelper) createUser(ctx context.Context, prefix string, role models.RoleType) *models.User {
	u := &models.User{
		ID:          uuid.New(),
		Email:       UniqueEmail(prefix),
		PhoneNumber: utils.Ptr(UniquePhone()),
		FirstName:   prefix,
		LastName:    "Test",
		Role:        role,
		Status:      models.UserStatusActive,
	}
	require.NoError(h.T, h.UserRepo.Create(ctx, u), "Failed to create test user")
	return u
}

// CreateTestLandlord persists a landlord user, profile, property and unit.
func (h *TestHelper) CreateTestLandlord(ctx context.Context, prefix string) *LandlordFixture {
	u := h.createUser(ctx, prefix, models.RoleLandlord)
	l := &models.Landlord{
		ID:              uuid.New(),
		UserID:          u.ID,
		BusinessName:    prefix + " Holdings",
		BusinessAddress: "456 Test Ave",
		City:            "Testville",
		State:           "TX",
		ZipCode:         "54321",
	}
	require.NoError(h.T, h.LandlordRepo.Create(ctx, l), "Failed to create test landlord")

	p := &models.Property{
		ID:           uuid.New(),
		LandlordID:   l.ID,
		PropertyName: prefix + " Court",
		Address:      "1 Main St",
		City:         "Testville",
		State:        "TX",
		ZipCode:      "54321",
		TimeZone:     "America/Chicago",
	}
	require.NoError(h.T, h.PropertyRepo.Create(ctx, p), "Failed to create test property")

	unit := &models.Unit{ID: uuid.New(), PropertyID: p.ID, UnitNumber: "101", Bedrooms: 2, Bathrooms: 1}
	require.NoError(h.T, h.UnitRepo.Create(ctx, unit), "Failed to create test unit")

	return &LandlordFixture{User: u, Landlord: l, Property: p, Unit: unit}
}

// CreateTestTenant persists a tenant user and profile.
func (h *TestHelper) CreateTestTenant(ctx context.Context, prefix string) *TenantFixture {
	u := h.createUser(ctx, prefix, models.RoleTenant)
	t := &models.Tenant{ID: uuid.New(), UserID: u.ID}
	require.NoError(h.T, h.TenantRepo.Create(ctx, t), "Failed to create test tenant")
	return &TenantFixture{User: u, Tenant: t}
}

// CreateTestLease persists a one-year lease starting next month. The first
// tenant is primary.
func (h *TestHelper) CreateTestLease(
	ctx context.Context,
	ll *LandlordFixture,
	status models.LeaseStatus,
	tenants ...*TenantFixture,
) *models.Lease {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return h.CreateTestLeaseWithDates(ctx, ll, status, start, start.AddDate(1, 0, -1), tenants...)
}

// CreateTestLeaseWithDates is CreateTestLease with explicit dates.
func (h *TestHelper) CreateTestLeaseWithDates(
	ctx context.Context,
	ll *LandlordFixture,
	status models.LeaseStatus,
	start, end time.Time,
	tenants ...*TenantFixture,
) *models.Lease {
	lease := &models.Lease{
		ID:              uuid.New(),
		UnitID:          ll.Unit.ID,
		LandlordID:      ll.Landlord.ID,
		RentAmountCents: 150000,
		DepositCents:    150000,
		StartDate:       start,
		EndDate:         end,
		Status:          status,
	}
	for i, tf := range tenants {
		lease.Tenants = append(lease.Tenants, models.LeaseTenant{
			ID:              uuid.New(),
			LeaseID:         lease.ID,
			TenantID:        tf.Tenant.ID,
			IsPrimaryTenant: i == 0,
		})
	}
	require.NoError(h.T, h.LeaseRepo.Create(ctx, lease), "Failed to create test lease")

	created, err := h.LeaseRepo.GetByID(ctx, lease.ID)
	require.NoError(h.T, err)
	require.NotNil(h.T, created, "Failed to fetch lease immediately after creation")
	return created
}
