// Package privacy reduces personal data before it reaches logs and audit trails.
// Registrant e-mails and caller addresses are never logged in full.
package privacy

import (
	"fmt"
	"net/netip"
	"strings"
)

// AnonymizeIP truncates an address to its network prefix.
// IPv4 keeps the /24 ("192.168.1.47" -> "192.168.1.0"), IPv6 keeps the /48
// ("2001:db8:85a3::8a2e:370:7334" -> "2001:0db8:85a3::").
//
// Returns "unknown" for empty input and "invalid" for anything unparseable.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}

	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}
	addr = addr.Unmap()

	if addr.Is4() {
		b := addr.As4()
		return fmt.Sprintf("%d.%d.%d.0", b[0], b[1], b[2])
	}

	b := addr.As16()
	return fmt.Sprintf("%02x%02x:%02x%02x:%02x%02x::", b[0], b[1], b[2], b[3], b[4], b[5])
}

// MaskEmail keeps the first character of the local part and the full domain
// ("ana.silva@empresa.com" -> "a***@empresa.com"). Malformed input is fully masked.
func MaskEmail(email string) string {
	local, domain, ok := strings.Cut(strings.TrimSpace(email), "@")
	if !ok || local == "" || domain == "" {
		return "***"
	}
	first := []rune(local)[0]
	return string(first) + "***@" + domain
}
