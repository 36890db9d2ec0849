package routes

const (
	// Health
	Health  = "/health"
	Metrics = "/metrics"

	// ───────────────────────────────
	// Leases
	// ───────────────────────────────
	LeasesBase     = "/api/v1/leases"
	Lease          = "/api/v1/leases/{id}"
	LeaseSend      = "/api/v1/leases/{id}/send"
	LeaseTerminate = "/api/v1/leases/{id}/terminate"
	LeaseEvents    = "/api/v1/leases/{id}/events"

	// ───────────────────────────────
	// Signing
	// ───────────────────────────────
	LeaseSigning          = "/api/v1/leases/{id}/signing"
	LeaseSign             = "/api/v1/leases/{id}/sign"
	LeaseResendInvitation = "/api/v1/leases/{id}/resend-invitation"

	// ───────────────────────────────
	// In-app notifications
	// ───────────────────────────────
	NotificationsBase    = "/api/v1/notifications"
	NotificationMarkRead = "/api/v1/notifications/{id}/read"
)
