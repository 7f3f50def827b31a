// Package classifier matches raw vmkernel log lines against the two known
// SCSI failure entry shapes and extracts their fields.
package classifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/ovasik/scsidecode/internal/record"
)

// Classify examines one raw log line and returns an extracted Entry, or
// nil if the line matches neither known shape. Non-matching lines are not
// an error; a matching line whose timestamp cannot be parsed is, because
// time-window admission cannot be evaluated for it.
func Classify(line string) (*record.Entry, error) {
	logType, ok := classifyShape(line)
	if !ok {
		return nil, nil
	}

	ts, err := parseTimestamp(line)
	if err != nil {
		return nil, err
	}

	entry := &record.Entry{
		Raw:       line,
		Type:      logType,
		Timestamp: ts,
	}
	extract(entry, line)
	return entry, nil
}

// classifyShape matches the subsystem tag within the bracketed prefix.
// The tag search is restricted to the prefix so a device name or action
// text mentioning a subsystem cannot misclassify the line.
func classifyShape(line string) (record.LogType, bool) {
	prefix := line
	if i := strings.Index(line, " Cmd"); i >= 0 {
		prefix = line[:i]
	}

	switch {
	case strings.Contains(prefix, throttledTag):
		return record.ThrottledDeviceLog, true
	case strings.Contains(prefix, deviceIOTag):
		return record.DeviceIOLog, true
	default:
		return "", false
	}
}

// timestampLayouts are the date-time forms seen at the head of vmkernel
// lines across versions.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z07:00",
}

// parseTimestamp parses the first whitespace-delimited token as the entry
// timestamp.
func parseTimestamp(line string) (time.Time, error) {
	token, _, _ := strings.Cut(line, " ")
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, token); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", token)
}
