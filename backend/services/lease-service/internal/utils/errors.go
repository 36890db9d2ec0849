// backend/services/lease-service/internal/utils/errors.go

package utils

import (
	"errors"
)

/*
Sentinel errors for lease-service domain logic.
The controller can do: if errors.Is(err, ErrXYZ) { ... }
*/
var (
	ErrLeaseNotFound     = errors.New("lease_not_found")
	ErrNotLeaseParty     = errors.New("not_lease_party")
	ErrWrongStatus       = errors.New("wrong_status")
	ErrInvalidLeaseTerms = errors.New("invalid_lease_terms")

	// Internal: the caller's party already signed. Sign turns it into a no-op result.
	ErrAlreadySigned = errors.New("already_signed")

	ErrNotificationNotFound = errors.New("notification_not_found")
)
