package codes

import (
	"fmt"
	"strconv"
	"strings"
)

// Raw codes arrive in whatever width the log line used ("0x0", "0x1a",
// "0xe"); each table is keyed by one fixed convention, so every lookup
// normalizes first. A raw value that does not parse normalizes to "",
// which can never hit a table entry.

// parseCode parses a raw numeric code. It accepts "0x" prefixed hex,
// decimal, and bare hex digits.
func parseCode(raw string) (uint64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseUint(s, 0, 32); err == nil {
		return v, true
	}
	// Bare hex without the 0x prefix, optionally with a trailing "h"
	// ("1A", "1ah").
	s = strings.TrimSuffix(strings.ToLower(s), "h")
	if v, err := strconv.ParseUint(s, 16, 32); err == nil {
		return v, true
	}
	return 0, false
}

// normOpCode keys operation codes as 2-digit uppercase hex: "0x1a" -> "1A".
func normOpCode(raw string) string {
	v, ok := parseCode(raw)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%02X", v)
}

// normHostStatus keys host status as 0x-prefixed 2-digit lowercase hex:
// "0x0" -> "0x00".
func normHostStatus(raw string) string {
	v, ok := parseCode(raw)
	if !ok {
		return ""
	}
	return fmt.Sprintf("0x%02x", v)
}

// normDeviceStatus keys device status as 2-digit lowercase hex with an "h"
// suffix: "0x2" -> "02h".
func normDeviceStatus(raw string) string {
	v, ok := parseCode(raw)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%02xh", v)
}

// normSenseKey keys sense keys as variable-width uppercase hex with an "h"
// suffix: "0xe" -> "Eh".
func normSenseKey(raw string) string {
	v, ok := parseCode(raw)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%Xh", v)
}

// normAdditionalSense keys ASC/ASCQ pairs as "XXh/YYh", each 2-digit
// uppercase hex: ("0x1d", "0x0") -> "1Dh/00h".
func normAdditionalSense(asc, ascq string) string {
	a, ok := parseCode(asc)
	if !ok {
		return ""
	}
	q, ok := parseCode(ascq)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%02Xh/%02Xh", a, q)
}

// splitSensePair splits a single ad-hoc ASC/ASCQ value ("0x1d 0x0",
// "1D/00", "1Dh/00h") into its two halves.
func splitSensePair(raw string) (string, string, bool) {
	s := strings.TrimSpace(raw)
	for _, sep := range []string{"/", " "} {
		if a, q, found := strings.Cut(s, sep); found {
			return strings.TrimSpace(a), strings.TrimSpace(q), true
		}
	}
	return "", "", false
}
