package dtos

import (
	"time"

	"github.com/keystonepm/mono-repo/backend/shared/go-models"
)

// DateLayout is how calendar dates cross the API boundary.
const DateLayout = "2006-01-02"

type LeaseTenant struct {
	ID              string  `json:"id"`
	TenantID        string  `json:"tenant_id"`
	IsPrimaryTenant bool    `json:"is_primary_tenant"`
	SignedAt        *string `json:"signed_at"`
}

type Lease struct {
	ID                 string             `json:"id"`
	UnitID             string             `json:"unit_id"`
	LandlordID         string             `json:"landlord_id"`
	RentAmount         float64            `json:"rent_amount"`
	Deposit            float64            `json:"deposit"`
	StartDate          string             `json:"start_date"`
	EndDate            string             `json:"end_date"`
	Status             models.LeaseStatus `json:"status"`
	LandlordSignedAt   *string            `json:"landlord_signed_at"`
	AllTenantsSignedAt *string            `json:"all_tenants_signed_at"`
	TerminationReason  *string            `json:"termination_reason,omitempty"`
	RowVersion         int64              `json:"row_version"`
	CreatedAt          string             `json:"created_at"`
	UpdatedAt          string             `json:"updated_at"`
	Tenants            []LeaseTenant      `json:"tenants"`
	SigningProgress    SigningProgress    `json:"signing_progress"`
}

type SigningProgress struct {
	TotalSigned   int  `json:"total_signed"`
	TotalNeeded   int  `json:"total_needed"`
	Percentage    int  `json:"percentage"`
	IsFullySigned bool `json:"is_fully_signed"`
}

// UserSigningStatus is the caller's own place in the signing flow.
type UserSigningStatus struct {
	Role      string  `json:"role"`
	HasSigned bool    `json:"has_signed"`
	SignedAt  *string `json:"signed_at"`
}

type SigningView struct {
	Lease             Lease             `json:"lease"`
	UserSigningStatus UserSigningStatus `json:"user_signing_status"`
	SigningProgress   SigningProgress   `json:"signing_progress"`
}

// NewLeaseFromModel is the one projection of a lease used by every endpoint.
func NewLeaseFromModel(l models.Lease) Lease {
	tenants := make([]LeaseTenant, 0, len(l.Tenants))
	for _, t := range l.Tenants {
		tenants = append(tenants, NewLeaseTenantFromModel(t))
	}
	return Lease{
		ID:                 l.ID.String(),
		UnitID:             l.UnitID.String(),
		LandlordID:         l.LandlordID.String(),
		RentAmount:         CentsToDollars(l.RentAmountCents),
		Deposit:            CentsToDollars(l.DepositCents),
		StartDate:          l.StartDate.Format(DateLayout),
		EndDate:            l.EndDate.Format(DateLayout),
		Status:             l.Status,
		LandlordSignedAt:   FormatTimestamp(l.LandlordSignedAt),
		AllTenantsSignedAt: FormatTimestamp(l.AllTenantsSignedAt),
		TerminationReason:  l.TerminationReason,
		RowVersion:         l.RowVersion,
		CreatedAt:          l.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:          l.UpdatedAt.UTC().Format(time.RFC3339),
		Tenants:            tenants,
		SigningProgress:    NewSigningProgressFromModel(l.SigningProgress()),
	}
}

func NewLeaseTenantFromModel(t models.LeaseTenant) LeaseTenant {
	return LeaseTenant{
		ID:              t.ID.String(),
		TenantID:        t.TenantID.String(),
		IsPrimaryTenant: t.IsPrimaryTenant,
		SignedAt:        FormatTimestamp(t.SignedAt),
	}
}

func NewSigningProgressFromModel(p models.SigningProgress) SigningProgress {
	return SigningProgress{
		TotalSigned:   p.TotalSigned,
		TotalNeeded:   p.TotalNeeded,
		Percentage:    p.Percentage,
		IsFullySigned: p.IsFullySigned,
	}
}

// CentsToDollars converts stored integer cents to the decimal amount clients display.
func CentsToDollars(cents int64) float64 {
	return float64(cents) / 100
}

// DollarsToCents rounds half away from zero.
func DollarsToCents(amount float64) int64 {
	if amount < 0 {
		return -int64(-amount*100 + 0.5)
	}
	return int64(amount*100 + 0.5)
}

func FormatTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339Nano)
	return &s
}
