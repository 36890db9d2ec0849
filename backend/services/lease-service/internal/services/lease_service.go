package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/keystonepm/mono-repo/backend/services/lease-service/internal/dtos"
	internal_utils "github.com/keystonepm/mono-repo/backend/services/lease-service/internal/utils"
	shared_dtos "github.com/keystonepm/mono-repo/backend/shared/go-dtos"
	"github.com/keystonepm/mono-repo/backend/shared/go-models"
	"github.com/keystonepm/mono-repo/backend/shared/go-repositories"
	"github.com/keystonepm/mono-repo/backend/shared/go-utils"
)

// LeaseService owns the lease lifecycle outside of signing: drafting,
// sending, termination and the audit trail.
type LeaseService struct {
	leaseRepo  repositories.LeaseRepository
	eventRepo  repositories.LeaseEventRepository
	unitRepo   repositories.UnitRepository
	propRepo   repositories.PropertyRepository
	tenantRepo repositories.TenantRepository
	parties    *PartyResolver
	signing    *LeaseSigningService
	notifier   Notifier
}

func NewLeaseService(
	leaseRepo repositories.LeaseRepository,
	eventRepo repositories.LeaseEventRepository,
	unitRepo repositories.UnitRepository,
	propRepo repositories.PropertyRepository,
	tenantRepo repositories.TenantRepository,
	parties *PartyResolver,
	signing *LeaseSigningService,
	notifier Notifier,
) *LeaseService {
	return &LeaseService{
		leaseRepo:  leaseRepo,
		eventRepo:  eventRepo,
		unitRepo:   unitRepo,
		propRepo:   propRepo,
		tenantRepo: tenantRepo,
		parties:    parties,
		signing:    signing,
		notifier:   notifier,
	}
}

// CreateLease drafts a lease on one of the landlord's units, optionally
// sending it straight out for signature.
func (s *LeaseService) CreateLease(ctx context.Context, rc models.RequestContext, req dtos.CreateLeaseRequest) (*models.Lease, error) {
	ll, err := s.parties.LandlordProfile(ctx, rc)
	if err != nil {
		return nil, err
	}
	if err := s.checkUnitOwnership(ctx, ll.ID, req.UnitID); err != nil {
		return nil, err
	}

	start, end, err := parseTermDates(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if req.RentAmount <= 0 {
		return nil, fmt.Errorf("%w: rent_amount must be positive", internal_utils.ErrInvalidLeaseTerms)
	}
	if req.Deposit < 0 {
		return nil, fmt.Errorf("%w: deposit cannot be negative", internal_utils.ErrInvalidLeaseTerms)
	}

	leaseID := uuid.New()
	members, err := s.buildMembers(ctx, leaseID, req.TenantIDs, req.PrimaryTenantID)
	if err != nil {
		return nil, err
	}

	lease := &models.Lease{
		ID:              leaseID,
		UnitID:          req.UnitID,
		LandlordID:      ll.ID,
		RentAmountCents: shared_dtos.DollarsToCents(req.RentAmount),
		DepositCents:    shared_dtos.DollarsToCents(req.Deposit),
		StartDate:       start,
		EndDate:         end,
		Status:          models.LeaseStatusDraft,
		Tenants:         members,
	}
	lease.QueueEvent(&rc.UserID, models.LeaseEventCreated, map[string]any{
		"tenant_count": len(members),
	})
	if req.SendForSignature {
		lease.Status = models.LeaseStatusPendingSignature
		lease.QueueEvent(&rc.UserID, models.LeaseEventSentForSignature, nil)
	}

	if err := s.leaseRepo.Create(ctx, lease); err != nil {
		return nil, fmt.Errorf("create lease: %w", err)
	}
	utils.Logger.WithField("leaseID", lease.ID).WithField("status", lease.Status).Info("Lease created")

	created, err := s.signing.loadLease(ctx, lease.ID)
	if err != nil {
		return nil, err
	}
	if req.SendForSignature {
		s.signing.inviteTenants(ctx, created, created.Tenants, false)
	}
	return created, nil
}

func (s *LeaseService) checkUnitOwnership(ctx context.Context, landlordID, unitID uuid.UUID) error {
	unit, err := s.unitRepo.GetByID(ctx, unitID)
	if err != nil {
		return fmt.Errorf("lookup unit: %w", err)
	}
	if unit == nil {
		return fmt.Errorf("%w: unknown unit %s", internal_utils.ErrInvalidLeaseTerms, unitID)
	}
	prop, err := s.propRepo.GetByID(ctx, unit.PropertyID)
	if err != nil {
		return fmt.Errorf("lookup property: %w", err)
	}
	if prop == nil || prop.LandlordID != landlordID {
		return internal_utils.ErrNotLeaseParty
	}
	return nil
}

func (s *LeaseService) buildMembers(
	ctx context.Context,
	leaseID uuid.UUID,
	tenantIDs []uuid.UUID,
	primary *uuid.UUID,
) ([]models.LeaseTenant, error) {
	if len(tenantIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one tenant is required", internal_utils.ErrInvalidLeaseTerms)
	}
	primaryID := tenantIDs[0]
	if primary != nil {
		primaryID = *primary
	}

	seen := make(map[uuid.UUID]bool, len(tenantIDs))
	members := make([]models.LeaseTenant, 0, len(tenantIDs))
	for _, tid := range tenantIDs {
		if seen[tid] {
			return nil, fmt.Errorf("%w: tenant %s listed twice", internal_utils.ErrInvalidLeaseTerms, tid)
		}
		seen[tid] = true

		t, err := s.tenantRepo.GetByID(ctx, tid)
		if err != nil {
			return nil, fmt.Errorf("lookup tenant: %w", err)
		}
		if t == nil {
			return nil, fmt.Errorf("%w: unknown tenant %s", internal_utils.ErrInvalidLeaseTerms, tid)
		}
		members = append(members, models.LeaseTenant{
			ID:              uuid.New(),
			LeaseID:         leaseID,
			TenantID:        tid,
			IsPrimaryTenant: tid == primaryID,
		})
	}
	if !seen[primaryID] {
		return nil, fmt.Errorf("%w: primary tenant must be one of the tenants", internal_utils.ErrInvalidLeaseTerms)
	}
	return members, nil
}

func parseTermDates(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse(shared_dtos.DateLayout, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: bad start_date", internal_utils.ErrInvalidLeaseTerms)
	}
	end, err := time.Parse(shared_dtos.DateLayout, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: bad end_date", internal_utils.ErrInvalidLeaseTerms)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end_date must be after start_date", internal_utils.ErrInvalidLeaseTerms)
	}
	return start, end, nil
}

// ListMyLeases returns the landlord's leases or the tenant's memberships.
func (s *LeaseService) ListMyLeases(ctx context.Context, rc models.RequestContext) ([]*models.Lease, error) {
	switch rc.Role {
	case models.RoleLandlord:
		ll, err := s.parties.LandlordProfile(ctx, rc)
		if err != nil {
			return nil, err
		}
		return s.leaseRepo.ListByLandlordID(ctx, ll.ID)
	case models.RoleTenant:
		t, err := s.parties.TenantProfile(ctx, rc)
		if err != nil {
			return nil, err
		}
		return s.leaseRepo.ListByTenantID(ctx, t.ID)
	}
	return nil, internal_utils.ErrNotLeaseParty
}

func (s *LeaseService) GetLease(ctx context.Context, rc models.RequestContext, leaseID uuid.UUID) (*models.Lease, error) {
	lease, _, err := s.loadForParty(ctx, rc, leaseID)
	return lease, err
}

func (s *LeaseService) loadForParty(ctx context.Context, rc models.RequestContext, leaseID uuid.UUID) (*models.Lease, SigningParty, error) {
	lease, err := s.signing.loadLease(ctx, leaseID)
	if err != nil {
		return nil, nil, err
	}
	party, err := s.parties.ResolveParty(ctx, rc, lease)
	if err != nil {
		return nil, nil, err
	}
	return lease, party, nil
}

func (s *LeaseService) loadForLandlord(ctx context.Context, rc models.RequestContext, leaseID uuid.UUID) (*models.Lease, error) {
	lease, party, err := s.loadForParty(ctx, rc, leaseID)
	if err != nil {
		return nil, err
	}
	if _, ok := party.(LandlordParty); !ok {
		return nil, internal_utils.ErrNotLeaseParty
	}
	return lease, nil
}

// UpdateDraftTerms edits a DRAFT lease under optimistic locking.
func (s *LeaseService) UpdateDraftTerms(
	ctx context.Context,
	rc models.RequestContext,
	leaseID uuid.UUID,
	req dtos.UpdateLeaseTermsRequest,
) (*models.Lease, error) {
	lease, err := s.loadForLandlord(ctx, rc, leaseID)
	if err != nil {
		return nil, err
	}
	if req.UnitID != nil && *req.UnitID != lease.UnitID {
		if err := s.checkUnitOwnership(ctx, lease.LandlordID, *req.UnitID); err != nil {
			return nil, err
		}
	}

	changed := map[string]any{}
	err = s.leaseRepo.UpdateWithRetry(ctx, leaseID, func(l *models.Lease) error {
		if l.Status != models.LeaseStatusDraft {
			return internal_utils.ErrWrongStatus
		}
		if req.UnitID != nil {
			l.UnitID = *req.UnitID
			changed["unit_id"] = req.UnitID.String()
		}
		if req.RentAmount != nil {
			if *req.RentAmount <= 0 {
				return fmt.Errorf("%w: rent_amount must be positive", internal_utils.ErrInvalidLeaseTerms)
			}
			l.RentAmountCents = shared_dtos.DollarsToCents(*req.RentAmount)
			changed["rent_amount_cents"] = l.RentAmountCents
		}
		if req.Deposit != nil {
			if *req.Deposit < 0 {
				return fmt.Errorf("%w: deposit cannot be negative", internal_utils.ErrInvalidLeaseTerms)
			}
			l.DepositCents = shared_dtos.DollarsToCents(*req.Deposit)
			changed["deposit_cents"] = l.DepositCents
		}
		startStr := l.StartDate.Format(shared_dtos.DateLayout)
		endStr := l.EndDate.Format(shared_dtos.DateLayout)
		if req.StartDate != nil {
			startStr = *req.StartDate
			changed["start_date"] = startStr
		}
		if req.EndDate != nil {
			endStr = *req.EndDate
			changed["end_date"] = endStr
		}
		start, end, err := parseTermDates(startStr, endStr)
		if err != nil {
			return err
		}
		l.StartDate, l.EndDate = start, end
		return nil
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, internal_utils.ErrLeaseNotFound
	}
	if err != nil {
		return nil, err
	}

	ev := models.NewLeaseEvent(leaseID, &rc.UserID, models.LeaseEventTermsUpdated, changed)
	if err := s.eventRepo.Create(ctx, &ev); err != nil {
		utils.Logger.WithError(err).WithField("leaseID", leaseID).Warn("Failed to record terms update")
	}
	return s.signing.loadLease(ctx, leaseID)
}

// SendForSignature moves a DRAFT to PENDING_SIGNATURE and invites every tenant.
func (s *LeaseService) SendForSignature(ctx context.Context, rc models.RequestContext, leaseID uuid.UUID) (*models.Lease, error) {
	if _, err := s.loadForLandlord(ctx, rc, leaseID); err != nil {
		return nil, err
	}
	updated, err := s.leaseRepo.LockAndUpdate(ctx, leaseID, func(l *models.Lease) error {
		if l.Status != models.LeaseStatusDraft {
			return internal_utils.ErrWrongStatus
		}
		l.Status = models.LeaseStatusPendingSignature
		l.QueueEvent(&rc.UserID, models.LeaseEventSentForSignature, nil)
		return nil
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, internal_utils.ErrLeaseNotFound
	}
	if err != nil {
		return nil, err
	}
	s.signing.inviteTenants(ctx, updated, updated.Tenants, false)
	return updated, nil
}

// TerminateLease ends an ACTIVE or EXPIRING_SOON lease early.
func (s *LeaseService) TerminateLease(
	ctx context.Context,
	rc models.RequestContext,
	leaseID uuid.UUID,
	reason string,
) (*models.Lease, error) {
	if _, err := s.loadForLandlord(ctx, rc, leaseID); err != nil {
		return nil, err
	}
	updated, err := s.leaseRepo.LockAndUpdate(ctx, leaseID, func(l *models.Lease) error {
		if l.Status != models.LeaseStatusActive && l.Status != models.LeaseStatusExpiringSoon {
			return internal_utils.ErrWrongStatus
		}
		l.Status = models.LeaseStatusTerminated
		l.TerminationReason = &reason
		l.QueueEvent(&rc.UserID, models.LeaseEventTerminated, map[string]any{"reason": reason})
		return nil
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, internal_utils.ErrLeaseNotFound
	}
	if err != nil {
		return nil, err
	}

	users, err := s.parties.partyUsers(ctx, updated)
	if err != nil {
		utils.Logger.WithError(err).WithField("leaseID", leaseID).Error("Failed to resolve parties for termination notice")
		return updated, nil
	}
	var reqs []NotificationRequest
	for _, uid := range users.except(updated, rc.UserID) {
		reqs = append(reqs, leaseTerminatedNotification(updated, uid))
	}
	notifyAll(ctx, s.notifier, reqs)
	return updated, nil
}

// DeleteDraft soft-deletes a lease that was never sent.
func (s *LeaseService) DeleteDraft(ctx context.Context, rc models.RequestContext, leaseID uuid.UUID) error {
	lease, err := s.loadForLandlord(ctx, rc, leaseID)
	if err != nil {
		return err
	}
	if lease.Status != models.LeaseStatusDraft {
		return internal_utils.ErrWrongStatus
	}
	if err := s.leaseRepo.SoftDelete(ctx, leaseID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return internal_utils.ErrLeaseNotFound
		}
		return err
	}
	return nil
}

// ListEvents is the lease's audit trail, oldest first.
func (s *LeaseService) ListEvents(ctx context.Context, rc models.RequestContext, leaseID uuid.UUID) ([]*models.LeaseEvent, error) {
	if _, _, err := s.loadForParty(ctx, rc, leaseID); err != nil {
		return nil, err
	}
	return s.eventRepo.ListByLeaseID(ctx, leaseID)
}
