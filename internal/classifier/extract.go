package classifier

import (
	"regexp"
	"strings"

	"github.com/ovasik/scsidecode/internal/record"
)

// extract pulls the raw field tokens out of a classified line. Missing
// optional fields stay empty; extraction itself never fails.
func extract(entry *record.Entry, line string) {
	switch entry.Type {
	case record.ThrottledDeviceLog:
		entry.OpCode = firstGroup(throttledCmdRe, line)
		entry.Path = firstGroup(pathRe, line)
		entry.Action = strings.TrimSpace(firstGroup(actionRe, line))
	case record.DeviceIOLog:
		entry.OpCode = firstGroup(deviceIOCmdRe, line)
		entry.SourceWorld = firstGroup(sourceWorldRe, line)
	}

	entry.TargetDevice = firstGroup(targetDevRe, line)

	if m := statusTripleRe.FindStringSubmatch(line); len(m) == 4 {
		entry.HostStatus = m[1]
		entry.DeviceStatus = m[2]
		entry.PluginStatus = m[3]
	}

	entry.SenseValid = firstGroup(senseValidRe, line)
	if m := senseDataRe.FindStringSubmatch(line); len(m) == 4 {
		entry.SenseKey = m[1]
		entry.SenseASC = m[2]
		entry.SenseASCQ = m[3]
	}
}

// firstGroup returns the first capture group of the first match, or "".
func firstGroup(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); len(m) >= 2 {
		return m[1]
	}
	return ""
}
