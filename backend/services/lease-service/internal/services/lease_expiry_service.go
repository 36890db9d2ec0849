package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/keystonepm/mono-repo/backend/services/lease-service/internal/constants"
	internal_utils "github.com/keystonepm/mono-repo/backend/services/lease-service/internal/utils"
	"github.com/keystonepm/mono-repo/backend/shared/go-models"
	"github.com/keystonepm/mono-repo/backend/shared/go-repositories"
	"github.com/keystonepm/mono-repo/backend/shared/go-utils"
)

// ExpiryCheckResult lists the leases one run moved.
type ExpiryCheckResult struct {
	MarkedExpiringSoon []uuid.UUID
	Expired            []uuid.UUID
}

// LeaseExpiryService is the daily lifecycle sweep run from cron.
type LeaseExpiryService struct {
	leaseRepo repositories.LeaseRepository
	parties   *PartyResolver
	notifier  Notifier
	metrics   *Metrics
	now       func() time.Time
}

func NewLeaseExpiryService(
	leaseRepo repositories.LeaseRepository,
	parties *PartyResolver,
	notifier Notifier,
	metrics *Metrics,
) *LeaseExpiryService {
	return &LeaseExpiryService{
		leaseRepo: leaseRepo,
		parties:   parties,
		notifier:  notifier,
		metrics:   metrics,
		now:       utils.NowUTC,
	}
}

// RunExpiryCheck expires leases whose end date has passed, then marks
// ACTIVE leases ending within ExpiringSoonWindow. A failure on one lease
// is logged and the sweep moves on; the joined errors are returned.
func (s *LeaseExpiryService) RunExpiryCheck(ctx context.Context) (*ExpiryCheckResult, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	res := &ExpiryCheckResult{}
	var errs []error

	ended, err := s.leaseRepo.ListByStatusEndingBefore(ctx,
		[]models.LeaseStatus{models.LeaseStatusActive, models.LeaseStatusExpiringSoon}, today)
	if err != nil {
		return nil, fmt.Errorf("list ended leases: %w", err)
	}
	for _, l := range ended {
		moved, err := s.transition(ctx, l.ID, models.LeaseStatusExpired, func(l *models.Lease) bool {
			return (l.Status == models.LeaseStatusActive || l.Status == models.LeaseStatusExpiringSoon) &&
				l.EndDate.Before(today)
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if moved != nil {
			res.Expired = append(res.Expired, moved.ID)
			s.notifyParties(ctx, moved, leaseExpiredNotification)
		}
	}

	horizon := today.Add(constants.ExpiringSoonWindow)
	ending, err := s.leaseRepo.ListByStatusEndingBefore(ctx,
		[]models.LeaseStatus{models.LeaseStatusActive}, horizon)
	if err != nil {
		return res, errors.Join(append(errs, fmt.Errorf("list ending leases: %w", err))...)
	}
	for _, l := range ending {
		moved, err := s.transition(ctx, l.ID, models.LeaseStatusExpiringSoon, func(l *models.Lease) bool {
			return l.Status == models.LeaseStatusActive && !l.EndDate.Before(today) && l.EndDate.Before(horizon)
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if moved != nil {
			res.MarkedExpiringSoon = append(res.MarkedExpiringSoon, moved.ID)
			s.notifyParties(ctx, moved, leaseExpiringSoonNotification)
		}
	}

	utils.Logger.
		WithField("expired", len(res.Expired)).
		WithField("expiringSoon", len(res.MarkedExpiringSoon)).
		Info("Lease expiry check finished")
	return res, errors.Join(errs...)
}

// transition re-checks eligible under the row lock. A lease that changed
// since it was listed is skipped, returning (nil, nil).
func (s *LeaseExpiryService) transition(
	ctx context.Context,
	leaseID uuid.UUID,
	to models.LeaseStatus,
	eligible func(*models.Lease) bool,
) (*models.Lease, error) {
	updated, err := s.leaseRepo.LockAndUpdate(ctx, leaseID, func(l *models.Lease) error {
		if !eligible(l) {
			return internal_utils.ErrWrongStatus
		}
		action := models.LeaseEventExpired
		if to == models.LeaseStatusExpiringSoon {
			action = models.LeaseEventMarkedExpiringSoon
		}
		l.QueueEvent(nil, action, map[string]any{"from": string(l.Status)})
		l.Status = to
		return nil
	})
	if errors.Is(err, internal_utils.ErrWrongStatus) || errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		utils.Logger.WithError(err).WithField("leaseID", leaseID).Errorf("Failed to move lease to %s", to)
		return nil, fmt.Errorf("lease %s to %s: %w", leaseID, to, err)
	}
	s.metrics.LifecycleTransitions.WithLabelValues(string(to)).Inc()
	return updated, nil
}

func (s *LeaseExpiryService) notifyParties(
	ctx context.Context,
	lease *models.Lease,
	build func(*models.Lease, uuid.UUID) NotificationRequest,
) {
	users, err := s.parties.partyUsers(ctx, lease)
	if err != nil {
		utils.Logger.WithError(err).WithField("leaseID", lease.ID).Error("Failed to resolve lease parties for notification")
		return
	}
	var reqs []NotificationRequest
	for _, uid := range users.all(lease) {
		reqs = append(reqs, build(lease, uid))
	}
	notifyAll(ctx, s.notifier, reqs)
}
