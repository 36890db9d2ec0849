package models

import "github.com/google/uuid"

// RequestContext is the authenticated caller, resolved once by the auth
// middleware and handed explicitly to every service call.
type RequestContext struct {
	UserID uuid.UUID
	Role   RoleType
}
