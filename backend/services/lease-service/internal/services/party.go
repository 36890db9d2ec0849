package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	internal_utils "github.com/keystonepm/mono-repo/backend/services/lease-service/internal/utils"
	"github.com/keystonepm/mono-repo/backend/shared/go-models"
	"github.com/keystonepm/mono-repo/backend/shared/go-repositories"
)

// SigningParty is who the caller is on one particular lease: the landlord
// of record or one of its tenant members. LandlordParty and TenantParty
// are the only implementations.
type SigningParty interface {
	Role() models.RoleType
	// SignedAt is the party's signature on lease, nil when unsigned.
	SignedAt(lease *models.Lease) *time.Time
	sign(lease *models.Lease, at time.Time) models.LeaseEventAction
}

type LandlordParty struct {
	LandlordID uuid.UUID
}

func (LandlordParty) Role() models.RoleType { return models.RoleLandlord }

func (LandlordParty) SignedAt(lease *models.Lease) *time.Time { return lease.LandlordSignedAt }

func (LandlordParty) sign(lease *models.Lease, at time.Time) models.LeaseEventAction {
	lease.LandlordSignedAt = &at
	return models.LeaseEventLandlordSigned
}

type TenantParty struct {
	TenantID      uuid.UUID
	LeaseTenantID uuid.UUID
}

func (TenantParty) Role() models.RoleType { return models.RoleTenant }

func (p TenantParty) SignedAt(lease *models.Lease) *time.Time {
	if lt := lease.TenantByTenantID(p.TenantID); lt != nil {
		return lt.SignedAt
	}
	return nil
}

func (p TenantParty) sign(lease *models.Lease, at time.Time) models.LeaseEventAction {
	if lt := lease.TenantByTenantID(p.TenantID); lt != nil {
		lt.SignedAt = &at
	}
	return models.LeaseEventTenantSigned
}

// PartyResolver maps a session onto lease parties through the profile tables.
type PartyResolver struct {
	landlordRepo repositories.LandlordRepository
	tenantRepo   repositories.TenantRepository
}

func NewPartyResolver(
	landlordRepo repositories.LandlordRepository,
	tenantRepo repositories.TenantRepository,
) *PartyResolver {
	return &PartyResolver{landlordRepo: landlordRepo, tenantRepo: tenantRepo}
}

// ResolveParty fails with ErrNotLeaseParty when the caller is neither the
// landlord of record nor a tenant member.
func (r *PartyResolver) ResolveParty(ctx context.Context, rc models.RequestContext, lease *models.Lease) (SigningParty, error) {
	switch rc.Role {
	case models.RoleLandlord:
		ll, err := r.landlordRepo.GetByUserID(ctx, rc.UserID)
		if err != nil {
			return nil, fmt.Errorf("lookup landlord profile: %w", err)
		}
		if ll != nil && ll.ID == lease.LandlordID {
			return LandlordParty{LandlordID: ll.ID}, nil
		}
	case models.RoleTenant:
		t, err := r.tenantRepo.GetByUserID(ctx, rc.UserID)
		if err != nil {
			return nil, fmt.Errorf("lookup tenant profile: %w", err)
		}
		if t != nil {
			if lt := lease.TenantByTenantID(t.ID); lt != nil {
				return TenantParty{TenantID: t.ID, LeaseTenantID: lt.ID}, nil
			}
		}
	}
	return nil, internal_utils.ErrNotLeaseParty
}

// LandlordProfile returns the caller's landlord profile or ErrNotLeaseParty.
func (r *PartyResolver) LandlordProfile(ctx context.Context, rc models.RequestContext) (*models.Landlord, error) {
	if rc.Role != models.RoleLandlord {
		return nil, internal_utils.ErrNotLeaseParty
	}
	ll, err := r.landlordRepo.GetByUserID(ctx, rc.UserID)
	if err != nil {
		return nil, fmt.Errorf("lookup landlord profile: %w", err)
	}
	if ll == nil {
		return nil, internal_utils.ErrNotLeaseParty
	}
	return ll, nil
}

// TenantProfile returns the caller's tenant profile or ErrNotLeaseParty.
func (r *PartyResolver) TenantProfile(ctx context.Context, rc models.RequestContext) (*models.Tenant, error) {
	if rc.Role != models.RoleTenant {
		return nil, internal_utils.ErrNotLeaseParty
	}
	t, err := r.tenantRepo.GetByUserID(ctx, rc.UserID)
	if err != nil {
		return nil, fmt.Errorf("lookup tenant profile: %w", err)
	}
	if t == nil {
		return nil, internal_utils.ErrNotLeaseParty
	}
	return t, nil
}

// partyUsers are the user IDs behind a lease's parties.
type partyUsers struct {
	landlord uuid.UUID
	// tenant profile ID -> user ID
	tenants map[uuid.UUID]uuid.UUID
}

// all lists the landlord first, then tenants in lease order.
func (p partyUsers) all(lease *models.Lease) []uuid.UUID {
	return p.except(lease, uuid.Nil)
}

func (p partyUsers) except(lease *models.Lease, skip uuid.UUID) []uuid.UUID {
	var out []uuid.UUID
	if p.landlord != uuid.Nil && p.landlord != skip {
		out = append(out, p.landlord)
	}
	for _, lt := range lease.Tenants {
		if u, ok := p.tenants[lt.TenantID]; ok && u != skip {
			out = append(out, u)
		}
	}
	return out
}

func (r *PartyResolver) partyUsers(ctx context.Context, lease *models.Lease) (partyUsers, error) {
	pu := partyUsers{tenants: make(map[uuid.UUID]uuid.UUID, len(lease.Tenants))}
	ll, err := r.landlordRepo.GetByID(ctx, lease.LandlordID)
	if err != nil {
		return pu, fmt.Errorf("lookup landlord %s: %w", lease.LandlordID, err)
	}
	if ll != nil {
		pu.landlord = ll.UserID
	}
	for _, lt := range lease.Tenants {
		t, err := r.tenantRepo.GetByID(ctx, lt.TenantID)
		if err != nil {
			return pu, fmt.Errorf("lookup tenant %s: %w", lt.TenantID, err)
		}
		if t != nil {
			pu.tenants[lt.TenantID] = t.UserID
		}
	}
	return pu, nil
}
