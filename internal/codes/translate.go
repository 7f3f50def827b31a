package codes

import "strings"

// ParseCategory maps a user-supplied category name to a Category.
// Matching is case-insensitive and tolerates a few common short forms.
func ParseCategory(name string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "operationcode", "opcode", "op":
		return OperationCode, true
	case "hoststatus", "host":
		return HostStatus, true
	case "devicestatus", "device":
		return DeviceStatus, true
	case "pluginstatus", "plugin":
		return PluginStatus, true
	case "sensekey", "key":
		return SenseKey, true
	case "additionalsensedata", "additionalsense", "asc":
		return AdditionalSenseData, true
	default:
		return "", false
	}
}

// Translate performs a standalone single-code lookup: the raw value is
// normalized under the category's key convention and looked up. The
// second return value reports whether the table had an entry; a miss is
// signalled, not raised.
//
// For AdditionalSenseData the value carries both bytes in one string,
// separated by a space or slash ("0x1d 0x0", "1Dh/00h").
func (s *Set) Translate(cat Category, raw string) (string, bool) {
	var key string
	switch cat {
	case OperationCode:
		key = normOpCode(raw)
	case HostStatus:
		key = normHostStatus(raw)
	case DeviceStatus:
		key = normDeviceStatus(raw)
	case PluginStatus:
		key = raw
	case SenseKey:
		key = normSenseKey(raw)
	case AdditionalSenseData:
		asc, ascq, ok := splitSensePair(raw)
		if !ok {
			return "", false
		}
		key = normAdditionalSense(asc, ascq)
	default:
		return "", false
	}

	if key == "" {
		return "", false
	}
	desc, ok := s.tables[cat][key]
	return desc, ok
}
