package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/keystonepm/mono-repo/backend/services/lease-service/internal/constants"
	"github.com/keystonepm/mono-repo/backend/shared/go-models"
)

func leaseMetadata(lease *models.Lease, extra map[string]any) map[string]any {
	md := map[string]any{
		"lease_id": lease.ID.String(),
		"unit_id":  lease.UnitID.String(),
		"status":   string(lease.Status),
	}
	for k, v := range extra {
		md[k] = v
	}
	return md
}

func signatureRequestedNotification(lease *models.Lease, userID uuid.UUID, reminder bool) NotificationRequest {
	title := "Lease ready for your signature"
	msg := fmt.Sprintf("Your lease starting %s is ready to sign.", lease.StartDate.Format("Jan 2, 2006"))
	if reminder {
		title = "Reminder: lease awaiting your signature"
		msg = fmt.Sprintf("Your lease starting %s is still waiting for your signature.", lease.StartDate.Format("Jan 2, 2006"))
	}
	return NotificationRequest{
		UserID:    userID,
		Type:      models.NotificationLeaseSignatureRequested,
		Title:     title,
		Message:   msg,
		ActionURL: fmt.Sprintf(constants.LeaseSigningPathFmt, lease.ID),
		Metadata:  leaseMetadata(lease, map[string]any{"reminder": reminder}),
	}
}

func signatureRecordedNotification(lease *models.Lease, userID uuid.UUID, signer models.RoleType) NotificationRequest {
	p := lease.SigningProgress()
	who := "A tenant"
	if signer == models.RoleLandlord {
		who = "The landlord"
	}
	return NotificationRequest{
		UserID:    userID,
		Type:      models.NotificationSignatureRecorded,
		Title:     "New signature on your lease",
		Message:   fmt.Sprintf("%s signed the lease. %d of %d signatures collected.", who, p.TotalSigned, p.TotalNeeded),
		ActionURL: fmt.Sprintf(constants.LeaseSigningPathFmt, lease.ID),
		Metadata: leaseMetadata(lease, map[string]any{
			"signed_by_role": strings.ToLower(string(signer)),
			"percentage":     p.Percentage,
		}),
	}
}

func leaseActivatedNotification(lease *models.Lease, userID uuid.UUID) NotificationRequest {
	return NotificationRequest{
		UserID:    userID,
		Type:      models.NotificationLeaseActivated,
		Title:     "Lease is now active",
		Message:   "All parties have signed. Your lease is now active.",
		ActionURL: fmt.Sprintf(constants.LeasePathFmt, lease.ID),
		Metadata:  leaseMetadata(lease, nil),
	}
}

func leaseExpiringSoonNotification(lease *models.Lease, userID uuid.UUID) NotificationRequest {
	return NotificationRequest{
		UserID:    userID,
		Type:      models.NotificationLeaseExpiringSoon,
		Title:     "Lease ending soon",
		Message:   fmt.Sprintf("Your lease ends on %s.", lease.EndDate.Format("Jan 2, 2006")),
		ActionURL: fmt.Sprintf(constants.LeasePathFmt, lease.ID),
		Metadata:  leaseMetadata(lease, nil),
	}
}

func leaseExpiredNotification(lease *models.Lease, userID uuid.UUID) NotificationRequest {
	return NotificationRequest{
		UserID:    userID,
		Type:      models.NotificationLeaseExpired,
		Title:     "Lease expired",
		Message:   fmt.Sprintf("Your lease ended on %s.", lease.EndDate.Format("Jan 2, 2006")),
		ActionURL: fmt.Sprintf(constants.LeasePathFmt, lease.ID),
		Metadata:  leaseMetadata(lease, nil),
	}
}

func leaseTerminatedNotification(lease *models.Lease, userID uuid.UUID) NotificationRequest {
	reason := ""
	if lease.TerminationReason != nil {
		reason = *lease.TerminationReason
	}
	return NotificationRequest{
		UserID:    userID,
		Type:      models.NotificationLeaseTerminated,
		Title:     "Lease terminated",
		Message:   "Your landlord terminated the lease. Reason: " + reason,
		ActionURL: fmt.Sprintf(constants.LeasePathFmt, lease.ID),
		Metadata:  leaseMetadata(lease, map[string]any{"reason": reason}),
	}
}
