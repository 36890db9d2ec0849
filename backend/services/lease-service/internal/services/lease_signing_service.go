package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/keystonepm/mono-repo/backend/services/lease-service/internal/constants"
	internal_utils "github.com/keystonepm/mono-repo/backend/services/lease-service/internal/utils"
	"github.com/keystonepm/mono-repo/backend/shared/go-dtos"
	"github.com/keystonepm/mono-repo/backend/shared/go-models"
	"github.com/keystonepm/mono-repo/backend/shared/go-repositories"
	"github.com/keystonepm/mono-repo/backend/shared/go-utils"
)

// SignResult is the outcome of one sign call. Activated is true for exactly
// one call per lease: the one whose signature completed it.
type SignResult struct {
	Lease         *models.Lease
	AlreadySigned bool
	Activated     bool
}

type LeaseSigningService struct {
	leaseRepo repositories.LeaseRepository
	eventRepo repositories.LeaseEventRepository
	parties   *PartyResolver
	notifier  Notifier
	metrics   *Metrics
}

func NewLeaseSigningService(
	leaseRepo repositories.LeaseRepository,
	eventRepo repositories.LeaseEventRepository,
	parties *PartyResolver,
	notifier Notifier,
	metrics *Metrics,
) *LeaseSigningService {
	return &LeaseSigningService{
		leaseRepo: leaseRepo,
		eventRepo: eventRepo,
		parties:   parties,
		notifier:  notifier,
		metrics:   metrics,
	}
}

func (s *LeaseSigningService) loadLease(ctx context.Context, leaseID uuid.UUID) (*models.Lease, error) {
	lease, err := s.leaseRepo.GetByID(ctx, leaseID)
	if err != nil {
		return nil, fmt.Errorf("load lease %s: %w", leaseID, err)
	}
	if lease == nil {
		return nil, internal_utils.ErrLeaseNotFound
	}
	return lease, nil
}

// Sign records the caller's signature. The completeness check and the
// ACTIVE transition happen under the lease row lock, so concurrent final
// signers serialize and only one of them sees the lease complete.
// Signing again is a no-op that reports AlreadySigned.
func (s *LeaseSigningService) Sign(ctx context.Context, rc models.RequestContext, leaseID uuid.UUID) (*SignResult, error) {
	lease, err := s.loadLease(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	party, err := s.parties.ResolveParty(ctx, rc, lease)
	if err != nil {
		return nil, err
	}

	var (
		updated   *models.Lease
		activated bool
	)
	err = repositories.RetryTransient(ctx, constants.SignAttempts, func(ctx context.Context) error {
		activated = false
		var lockErr error
		updated, lockErr = s.leaseRepo.LockAndUpdate(ctx, leaseID, func(l *models.Lease) error {
			if !stillParty(party, l) {
				return internal_utils.ErrNotLeaseParty
			}
			if party.SignedAt(l) != nil {
				return internal_utils.ErrAlreadySigned
			}
			if l.Status != models.LeaseStatusPendingSignature {
				return internal_utils.ErrWrongStatus
			}

			now := utils.NowUTC()
			action := party.sign(l, now)
			l.QueueEvent(&rc.UserID, action, map[string]any{
				"signed_at": now,
			})

			if l.AllPartiesSigned() {
				completedAt := latestSignature(l)
				l.Status = models.LeaseStatusActive
				l.AllTenantsSignedAt = &completedAt
				l.QueueEvent(&rc.UserID, models.LeaseEventActivated, map[string]any{
					"all_tenants_signed_at": completedAt,
				})
				activated = true
			}
			return nil
		})
		return lockErr
	})

	switch {
	case errors.Is(err, internal_utils.ErrAlreadySigned):
		current, err := s.loadLease(ctx, leaseID)
		if err != nil {
			return nil, err
		}
		return &SignResult{Lease: current, AlreadySigned: true}, nil
	case errors.Is(err, pgx.ErrNoRows):
		return nil, internal_utils.ErrLeaseNotFound
	case repositories.IsTransient(err):
		return nil, fmt.Errorf("%w: %w", utils.ErrRowVersionConflict, err)
	case err != nil:
		return nil, err
	}

	s.metrics.Signatures.WithLabelValues(strings.ToLower(string(party.Role()))).Inc()
	if activated {
		s.metrics.Activations.Inc()
		utils.Logger.WithField("leaseID", leaseID).Info("Lease activated")
	}

	s.notifyAfterSign(ctx, rc, party, updated, activated)
	return &SignResult{Lease: updated, Activated: activated}, nil
}

func (s *LeaseSigningService) notifyAfterSign(
	ctx context.Context,
	rc models.RequestContext,
	party SigningParty,
	lease *models.Lease,
	activated bool,
) {
	users, err := s.parties.partyUsers(ctx, lease)
	if err != nil {
		utils.Logger.WithError(err).WithField("leaseID", lease.ID).Error("Failed to resolve lease parties for notification")
		return
	}

	var reqs []NotificationRequest
	for _, uid := range users.except(lease, rc.UserID) {
		reqs = append(reqs, signatureRecordedNotification(lease, uid, party.Role()))
	}
	if activated {
		for _, uid := range users.all(lease) {
			reqs = append(reqs, leaseActivatedNotification(lease, uid))
		}
	}
	notifyAll(ctx, s.notifier, reqs)
}

// ResendInvitation re-notifies every tenant who has not signed and returns
// their tenant IDs. The lease row is not touched.
func (s *LeaseSigningService) ResendInvitation(ctx context.Context, rc models.RequestContext, leaseID uuid.UUID) ([]uuid.UUID, error) {
	lease, err := s.loadLease(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	party, err := s.parties.ResolveParty(ctx, rc, lease)
	if err != nil {
		return nil, err
	}
	if _, ok := party.(LandlordParty); !ok {
		return nil, internal_utils.ErrNotLeaseParty
	}
	switch lease.Status {
	case models.LeaseStatusDraft, models.LeaseStatusTerminated, models.LeaseStatusExpired:
		return nil, internal_utils.ErrWrongStatus
	}

	notified := s.inviteTenants(ctx, lease, lease.UnsignedTenants(), true)
	if len(notified) > 0 {
		ids := make([]string, len(notified))
		for i, id := range notified {
			ids[i] = id.String()
		}
		ev := models.NewLeaseEvent(lease.ID, &rc.UserID, models.LeaseEventInvitationResent, map[string]any{
			"tenant_ids": ids,
		})
		if err := s.eventRepo.Create(ctx, &ev); err != nil {
			utils.Logger.WithError(err).WithField("leaseID", lease.ID).Warn("Failed to record invitation resend")
		}
	}
	return notified, nil
}

// inviteTenants sends LEASE_SIGNATURE_REQUESTED to each listed member and
// returns the tenant IDs it attempted.
func (s *LeaseSigningService) inviteTenants(
	ctx context.Context,
	lease *models.Lease,
	members []models.LeaseTenant,
	reminder bool,
) []uuid.UUID {
	notified := make([]uuid.UUID, 0, len(members))
	if len(members) == 0 {
		return notified
	}
	users, err := s.parties.partyUsers(ctx, lease)
	if err != nil {
		utils.Logger.WithError(err).WithField("leaseID", lease.ID).Error("Failed to resolve tenants for invitation")
		return notified
	}
	var reqs []NotificationRequest
	for _, lt := range members {
		uid, ok := users.tenants[lt.TenantID]
		if !ok {
			utils.Logger.WithField("tenantID", lt.TenantID).Warn("Tenant profile missing, skipping invitation")
			continue
		}
		reqs = append(reqs, signatureRequestedNotification(lease, uid, reminder))
		notified = append(notified, lt.TenantID)
	}
	notifyAll(ctx, s.notifier, reqs)
	return notified
}

// GetSigningView is the lease as the signing page shows it to one party.
func (s *LeaseSigningService) GetSigningView(ctx context.Context, rc models.RequestContext, leaseID uuid.UUID) (*dtos.SigningView, error) {
	lease, err := s.loadLease(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	party, err := s.parties.ResolveParty(ctx, rc, lease)
	if err != nil {
		return nil, err
	}

	signedAt := party.SignedAt(lease)
	view := &dtos.SigningView{
		Lease: dtos.NewLeaseFromModel(*lease),
		UserSigningStatus: dtos.UserSigningStatus{
			Role:      strings.ToLower(string(party.Role())),
			HasSigned: signedAt != nil,
			SignedAt:  dtos.FormatTimestamp(signedAt),
		},
		SigningProgress: dtos.NewSigningProgressFromModel(lease.SigningProgress()),
	}
	return view, nil
}

// stillParty re-checks membership against the locked row.
func stillParty(p SigningParty, l *models.Lease) bool {
	switch p := p.(type) {
	case LandlordParty:
		return l.LandlordID == p.LandlordID
	case TenantParty:
		return l.TenantByTenantID(p.TenantID) != nil
	}
	return false
}

// latestSignature is the newest signature on a fully signed lease.
func latestSignature(l *models.Lease) time.Time {
	latest := *l.LandlordSignedAt
	for _, t := range l.Tenants {
		if t.SignedAt != nil && t.SignedAt.After(latest) {
			latest = *t.SignedAt
		}
	}
	return latest
}
