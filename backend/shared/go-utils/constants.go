package utils

const (
	OrganizationName                      = "Keystone"
	CORSLowSecurityAllowedOriginLocalhost = "http://localhost:*"

	// Default page size for list endpoints.
	DefaultListLimit = 50
	MaxListLimit     = 200
)
