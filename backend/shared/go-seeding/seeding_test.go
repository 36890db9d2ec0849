package seeding

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/keystonepm/mono-repo/backend/shared/go-models"
	"github.com/keystonepm/mono-repo/backend/shared/go-testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedAll_Idempotent(t *testing.T) {
	store := testhelpers.NewMemoryStore()
	r := Repos{
		Users:      store.Users(),
		Landlords:  store.Landlords(),
		Tenants:    store.Tenants(),
		Properties: store.Properties(),
		Units:      store.Units(),
		Leases:     store.Leases(),
	}
	ctx := context.Background()

	require.NoError(t, SeedAll(ctx, r))
	require.NoError(t, SeedAll(ctx, r))

	lease, err := r.Leases.GetByID(ctx, uuid.MustParse(DefaultLeaseID))
	require.NoError(t, err)
	require.NotNil(t, lease)
	assert.Equal(t, models.LeaseStatusPendingSignature, lease.Status)
	require.Len(t, lease.Tenants, 2)
	assert.True(t, lease.Tenants[0].IsPrimaryTenant)
	assert.True(t, lease.EndDate.After(lease.StartDate))

	byLandlord, err := r.Leases.ListByLandlordID(ctx, uuid.MustParse(DefaultLandlordID))
	require.NoError(t, err)
	assert.Len(t, byLandlord, 1)
	assert.Len(t, store.Events(lease.ID), 1)
}
