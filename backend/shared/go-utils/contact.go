package utils

import (
	"net/mail"
	"regexp"
	"strings"
)

var e164Regex = regexp.MustCompile(`^\+[1-9]\d{7,14}$`) // ITU-T E.164

// IsE164 reports basic E.164 compliance
func IsE164(number string) bool { return e164Regex.MatchString(number) }

// IsDeliverableEmail is a syntax-only check used before handing an address to SendGrid.
func IsDeliverableEmail(addr string) bool {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return false
	}
	parsed, err := mail.ParseAddress(addr)
	return err == nil && parsed.Address == addr
}
