// Package useragent reduces a User-Agent header to a coarse client description
// that is safe to log next to anonymised addresses.
package useragent

import (
	"strings"

	"github.com/mssola/useragent"
)

const unknownClient = "Unknown Client"

// Describe returns "Browser on OS" (e.g. "Chrome on macOS"). Mobile clients
// report their platform instead of the OS string ("Safari on iPhone").
func Describe(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return unknownClient
	}

	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	os := ua.OS()

	if ua.Mobile() {
		if platform := ua.Platform(); platform != "" {
			return strings.TrimSpace(browser + " on " + platform)
		}
	}
	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = "Unknown OS"
	}
	return strings.TrimSpace(browser + " on " + os)
}

// Kind classifies the client as "mobile", "desktop", "bot" or "unknown".
func Kind(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return "unknown"
	}
	ua := useragent.New(userAgent)
	switch {
	case ua.Bot():
		return "bot"
	case ua.Mobile():
		return "mobile"
	default:
		return "desktop"
	}
}
