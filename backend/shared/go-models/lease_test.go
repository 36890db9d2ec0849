package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leaseWithTenants(n int) *Lease {
	l := &Lease{ID: uuid.New(), Status: LeaseStatusPendingSignature}
	for i := 0; i < n; i++ {
		l.Tenants = append(l.Tenants, LeaseTenant{
			ID:              uuid.New(),
			LeaseID:         l.ID,
			TenantID:        uuid.New(),
			IsPrimaryTenant: i == 0,
		})
	}
	return l
}

func TestSigningProgress_TwoOfFourTenantsOnly(t *testing.T) {
	l := leaseWithTenants(3)
	now := time.Now()
	l.Tenants[0].SignedAt = &now
	l.Tenants[2].SignedAt = &now

	p := l.SigningProgress()
	assert.Equal(t, 2, p.TotalSigned)
	assert.Equal(t, 4, p.TotalNeeded)
	assert.Equal(t, 50, p.Percentage)
	assert.False(t, p.IsFullySigned)
	assert.False(t, l.AllPartiesSigned())
}

func TestSigningProgress_RoundsTwoThirdsUp(t *testing.T) {
	l := leaseWithTenants(2)
	now := time.Now()
	l.LandlordSignedAt = &now
	l.Tenants[0].SignedAt = &now

	p := l.SigningProgress()
	assert.Equal(t, 2, p.TotalSigned)
	assert.Equal(t, 3, p.TotalNeeded)
	assert.Equal(t, 67, p.Percentage)
}

func TestAllPartiesSigned(t *testing.T) {
	l := leaseWithTenants(2)
	now := time.Now()
	for i := range l.Tenants {
		l.Tenants[i].SignedAt = &now
	}
	assert.False(t, l.AllPartiesSigned(), "landlord has not signed")

	l.LandlordSignedAt = &now
	assert.True(t, l.AllPartiesSigned())
	assert.True(t, l.SigningProgress().IsFullySigned)
	assert.Equal(t, 100, l.SigningProgress().Percentage)
	assert.Empty(t, l.UnsignedTenants())
}

func TestAllPartiesSigned_NoTenants(t *testing.T) {
	now := time.Now()
	l := &Lease{LandlordSignedAt: &now}
	assert.False(t, l.AllPartiesSigned())
}

func TestTenantByTenantID(t *testing.T) {
	l := leaseWithTenants(2)
	lt := l.TenantByTenantID(l.Tenants[1].TenantID)
	require.NotNil(t, lt)

	now := time.Now()
	lt.SignedAt = &now
	assert.NotNil(t, l.Tenants[1].SignedAt, "returned pointer must alias the slice element")
	assert.Nil(t, l.TenantByTenantID(uuid.New()))
}

func TestQueueEvent(t *testing.T) {
	l := leaseWithTenants(1)
	actor := uuid.New()
	l.QueueEvent(&actor, LeaseEventTenantSigned, map[string]any{"tenant_id": l.Tenants[0].TenantID})

	require.Len(t, l.PendingEvents, 1)
	ev := l.PendingEvents[0]
	assert.Equal(t, l.ID, ev.LeaseID)
	assert.Equal(t, LeaseEventTenantSigned, ev.Action)
	require.NotNil(t, ev.Details)
	assert.Contains(t, string(*ev.Details), l.Tenants[0].TenantID.String())
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("TENANT")
	assert.True(t, ok)
	assert.Equal(t, RoleTenant, r)

	_, ok = ParseRole("tenant")
	assert.False(t, ok)
}
