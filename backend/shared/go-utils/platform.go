package utils

import (
	"fmt"
	"net/http"
	"strings"
)

// PlatformType enumerates how the client is connecting.
type PlatformType int

const (
	PlatformWeb PlatformType = iota
	PlatformAndroid
	PlatformIOS
)

func (p PlatformType) String() string {
	switch p {
	case PlatformWeb:
		return "web"
	case PlatformAndroid:
		return "android"
	case PlatformIOS:
		return "ios"
	default:
		return "unknown"
	}
}

// ParsePlatform converts strings ("web", "android", "ios") to the enum.
func ParsePlatform(s string) (PlatformType, error) {
	switch s {
	case "web":
		return PlatformWeb, nil
	case "android":
		return PlatformAndroid, nil
	case "ios":
		return PlatformIOS, nil
	default:
		return -1, fmt.Errorf("invalid platform: %q", s)
	}
}

// GetClientPlatform reads the "X-Platform" header and returns an enum.
// Defaults to "web" if empty or invalid.
func GetClientPlatform(r *http.Request) PlatformType {
	raw := strings.ToLower(r.Header.Get("X-Platform"))
	if raw == "" {
		return PlatformWeb
	}
	if p, err := ParsePlatform(raw); err == nil {
		return p
	}
	return PlatformWeb
}
