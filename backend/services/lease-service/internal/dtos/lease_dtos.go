package dtos

import (
	"github.com/google/uuid"
	shared_dtos "github.com/keystonepm/mono-repo/backend/shared/go-dtos"
)

/*
CreateLeaseRequest is the body of POST /api/v1/leases. Amounts are in
dollars, dates are YYYY-MM-DD.
*/
type CreateLeaseRequest struct {
	UnitID           uuid.UUID   `json:"unit_id" validate:"required"`
	TenantIDs        []uuid.UUID `json:"tenant_ids" validate:"required,min=1,max=10,dive,required"`
	PrimaryTenantID  *uuid.UUID  `json:"primary_tenant_id,omitempty"`
	RentAmount       float64     `json:"rent_amount" validate:"required,gt=0"`
	Deposit          float64     `json:"deposit" validate:"gte=0"`
	StartDate        string      `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate          string      `json:"end_date" validate:"required,datetime=2006-01-02"`
	SendForSignature bool        `json:"send_for_signature"`
}

// UpdateLeaseTermsRequest patches a DRAFT lease. Nil fields are left alone.
type UpdateLeaseTermsRequest struct {
	UnitID     *uuid.UUID `json:"unit_id,omitempty"`
	RentAmount *float64   `json:"rent_amount,omitempty" validate:"omitempty,gt=0"`
	Deposit    *float64   `json:"deposit,omitempty" validate:"omitempty,gte=0"`
	StartDate  *string    `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate    *string    `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type TerminateLeaseRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

type ListLeasesResponse struct {
	Results []shared_dtos.Lease `json:"results"`
	Total   int                 `json:"total"`
}

type SignLeaseResponse struct {
	Lease         shared_dtos.Lease `json:"lease"`
	AlreadySigned bool              `json:"already_signed"`
	Activated     bool              `json:"activated"`
}

type ResendInvitationResponse struct {
	NotifiedTenantIDs []string `json:"notified_tenant_ids"`
}

type ListLeaseEventsResponse struct {
	Results []shared_dtos.LeaseEvent `json:"results"`
}

type ListNotificationsResponse struct {
	Results []shared_dtos.Notification `json:"results"`
}

type HealthCheckResponse struct {
	Status string `json:"status"`
}
