package constants

import "time"

// Lease lifecycle windows
const (
	// ACTIVE leases ending within this window become EXPIRING_SOON.
	ExpiringSoonWindow = 60 * 24 * time.Hour

	// One immediate retry after a lock or serialization failure.
	SignAttempts = 2
)

// Deep links placed in notifications, relative to the web app.
const (
	LeaseSigningPathFmt = "/leases/%s/signing"
	LeasePathFmt        = "/leases/%s"
)
