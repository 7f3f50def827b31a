// Package record defines the core data model for decoded SCSI log entries.
package record

import "time"

// LogType identifies which of the two known vmkernel entry shapes a line
// matched.
type LogType string

const (
	// ThrottledDeviceLog is the NMP rate-limited per-device error summary
	// line (nmp_ThrottleLogForDevice).
	ThrottledDeviceLog LogType = "ThrottledDeviceLog"
	// DeviceIOLog is the per-command SCSI device I/O failure line
	// (ScsiDeviceIO).
	DeviceIOLog LogType = "DeviceIOLog"
)

// Label returns a human-readable label for the log type.
func (t LogType) Label() string {
	switch t {
	case ThrottledDeviceLog:
		return "Throttled Device Log"
	case DeviceIOLog:
		return "Device I/O Log"
	default:
		return string(t)
	}
}

// Mode selects how a Field is rendered.
type Mode string

const (
	// Raw renders the code as it appeared in the log line.
	Raw Mode = "raw"
	// Decoded renders only the resolved description.
	Decoded Mode = "decoded"
	// Combined renders the code and the description joined by one space.
	Combined Mode = "combined"
)

// ParseMode maps a mode name to a Mode. Unknown names fall back to Combined.
func ParseMode(s string) Mode {
	switch s {
	case string(Raw):
		return Raw
	case string(Decoded):
		return Decoded
	default:
		return Combined
	}
}

// Field pairs a raw code with its resolved description. A field whose code
// could not be resolved carries an empty Text.
type Field struct {
	Code string
	Text string
}

// Render formats the field under the given presentation mode. Combined is
// the exact concatenation of the Raw and Decoded renderings with a single
// space, so the three modes stay mutually consistent.
func (f Field) Render(mode Mode) string {
	switch mode {
	case Raw:
		return f.Code
	case Decoded:
		return f.Text
	default:
		return f.Code + " " + f.Text
	}
}

// Entry holds the raw fields extracted from one classified log line,
// before any code resolution or inventory enrichment.
type Entry struct {
	Raw       string
	Type      LogType
	Timestamp time.Time

	OpCode       string
	TargetDevice string
	SourceWorld  string // DeviceIOLog only
	Path         string // ThrottledDeviceLog only
	HostStatus   string
	DeviceStatus string
	PluginStatus string
	SenseValid   string
	SenseKey     string
	SenseASC     string
	SenseASCQ    string
	Action       string // ThrottledDeviceLog only
}

// Record is one fully assembled output record. Ids increase strictly by 1
// across emitted records, independent of skipped input lines.
type Record struct {
	ID        int
	Timestamp time.Time
	Type      LogType

	OpCode          Field
	SourceWorld     Field
	TargetDevice    Field
	Datastore       string
	Path            Field
	Adapter         Field
	HostStatus      Field
	DeviceStatus    Field
	PluginStatus    Field
	SenseValid      string
	SenseKey        Field
	AdditionalSense Field
	Action          string
}
