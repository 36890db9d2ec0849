// go-models/lease.go
package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type LeaseStatus string

const (
	LeaseStatusDraft            LeaseStatus = "DRAFT"
	LeaseStatusPendingSignature LeaseStatus = "PENDING_SIGNATURE"
	LeaseStatusActive           LeaseStatus = "ACTIVE"
	LeaseStatusExpiringSoon     LeaseStatus = "EXPIRING_SOON"
	LeaseStatusExpired          LeaseStatus = "EXPIRED"
	LeaseStatusTerminated       LeaseStatus = "TERMINATED"
)

// Lease is the rental agreement aggregate. Tenants is always loaded with
// the lease; signature completeness is computed over it.
type Lease struct {
	Versioned

	ID                 uuid.UUID   `json:"id"`
	UnitID             uuid.UUID   `json:"unit_id"`
	LandlordID         uuid.UUID   `json:"landlord_id"`
	RentAmountCents    int64       `json:"rent_amount_cents"`
	DepositCents       int64       `json:"deposit_cents"`
	StartDate          time.Time   `json:"start_date"`
	EndDate            time.Time   `json:"end_date"`
	Status             LeaseStatus `json:"status"`
	LandlordSignedAt   *time.Time  `json:"landlord_signed_at,omitempty"`
	AllTenantsSignedAt *time.Time  `json:"all_tenants_signed_at,omitempty"`
	TerminationReason  *string     `json:"termination_reason,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
	DeletedAt          *time.Time  `json:"deleted_at,omitempty"`

	Tenants []LeaseTenant `json:"tenants"`

	// PendingEvents are audit rows queued by a locked mutation; the
	// repository writes them in the same transaction and clears the slice.
	PendingEvents []LeaseEvent `json:"-"`
}

// LeaseTenant is one tenant's membership on a lease.
type LeaseTenant struct {
	ID              uuid.UUID  `json:"id"`
	LeaseID         uuid.UUID  `json:"lease_id"`
	TenantID        uuid.UUID  `json:"tenant_id"`
	IsPrimaryTenant bool       `json:"is_primary_tenant"`
	SignedAt        *time.Time `json:"signed_at,omitempty"`
}

func (l *Lease) GetID() string { return l.ID.String() }

// TenantByTenantID returns the membership row for a tenant profile, or nil.
func (l *Lease) TenantByTenantID(tenantID uuid.UUID) *LeaseTenant {
	for i := range l.Tenants {
		if l.Tenants[i].TenantID == tenantID {
			return &l.Tenants[i]
		}
	}
	return nil
}

// UnsignedTenants lists memberships that still lack a signature.
func (l *Lease) UnsignedTenants() []LeaseTenant {
	var out []LeaseTenant
	for _, t := range l.Tenants {
		if t.SignedAt == nil {
			out = append(out, t)
		}
	}
	return out
}

// AllPartiesSigned is the activation predicate: landlord signed and every
// tenant signed. A lease without tenants never qualifies.
func (l *Lease) AllPartiesSigned() bool {
	if l.LandlordSignedAt == nil || len(l.Tenants) == 0 {
		return false
	}
	return len(l.UnsignedTenants()) == 0
}

// IsTerminal reports statuses no signing or lifecycle job may leave.
func (l *Lease) IsTerminal() bool {
	return l.Status == LeaseStatusExpired || l.Status == LeaseStatusTerminated
}

// QueueEvent appends an audit event to be persisted with the next locked write.
func (l *Lease) QueueEvent(actorUserID *uuid.UUID, action LeaseEventAction, details map[string]any) {
	l.PendingEvents = append(l.PendingEvents, NewLeaseEvent(l.ID, actorUserID, action, details))
}

// SigningProgress is derived, never persisted.
type SigningProgress struct {
	TotalSigned   int
	TotalNeeded   int
	Percentage    int
	IsFullySigned bool
}

func (l *Lease) SigningProgress() SigningProgress {
	signed := 0
	if l.LandlordSignedAt != nil {
		signed++
	}
	for _, t := range l.Tenants {
		if t.SignedAt != nil {
			signed++
		}
	}
	needed := 1 + len(l.Tenants)
	return SigningProgress{
		TotalSigned:   signed,
		TotalNeeded:   needed,
		Percentage:    int(math.Round(float64(signed) / float64(needed) * 100)),
		IsFullySigned: signed == needed,
	}
}
