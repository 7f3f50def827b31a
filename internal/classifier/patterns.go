package classifier

import "regexp"

// Subsystem tags inside the bracketed vmkernel prefix. Exactly one of
// these decides the entry shape; lines carrying neither are skipped.
//
// Throttled form:
//
//	2024-03-02T14:22:06.038Z cpu32:2097411)NMP: nmp_ThrottleLogForDevice:3802: Cmd 0x1a (0x45b8c05e3e80, 2098065) to dev "naa.6000..." on path "vmhba64:C0:T1:L0" Failed: H:0x0 D:0x2 P:0x0 Valid sense data: 0x5 0x24 0x0. Act:NONE
//
// Device I/O form:
//
//	2024-03-02T14:22:06.038Z cpu32:2097411)ScsiDeviceIO: 3449: Cmd(0x45b8c05e3e80) 0x1a, CmdSN 0x379e2 from world 2098065 to dev "naa.6000..." failed H:0x0 D:0x2 P:0x0 Valid sense data: 0x5 0x24 0x0.
const (
	throttledTag = "nmp_ThrottleLogForDevice"
	deviceIOTag  = "ScsiDeviceIO"
)

// throttledCmdRe extracts the opcode from the throttled form, where the
// opcode directly follows the Cmd marker.
// Example: "Cmd 0x1a (0x45b8c05e3e80, 2098065)"
var throttledCmdRe = regexp.MustCompile(`\bCmd (0x[0-9a-fA-F]+)`)

// deviceIOCmdRe extracts the opcode from the device I/O form, where the
// Cmd marker carries the command token address first.
// Example: "Cmd(0x45b8c05e3e80) 0x1a, CmdSN 0x379e2"
var deviceIOCmdRe = regexp.MustCompile(`\bCmd\(0x[0-9a-fA-F]+\) (0x[0-9a-fA-F]+)`)

// targetDevRe extracts the target device after the "to dev" marker.
// Quotes are stripped; some vmkernel versions omit them entirely.
var targetDevRe = regexp.MustCompile(`to dev "?([^"\s]+)"?`)

// sourceWorldRe extracts the issuing world id (device I/O form only).
// Example: "from world 2098065"
var sourceWorldRe = regexp.MustCompile(`from world (\S+)`)

// pathRe extracts the runtime path name (throttled form only).
// Example: `on path "vmhba64:C0:T1:L0"`
var pathRe = regexp.MustCompile(`on path "?([^"\s]+)"?`)

// statusTripleRe extracts the three-layer host/device/plugin status.
// Whitespace after each marker is optional: historical vmkernel versions
// emit both "H:0x0" and "H: 0x0".
var statusTripleRe = regexp.MustCompile(`H:\s*(0x[0-9a-fA-F]+)\s+D:\s*(0x[0-9a-fA-F]+)\s+P:\s*(0x[0-9a-fA-F]+)`)

// senseValidRe extracts the validity token immediately preceding the
// "sense data:" marker ("Valid", "Possible", or "Invalid").
var senseValidRe = regexp.MustCompile(`(\S+) sense data:`)

// senseDataRe extracts the three sense bytes (key, ASC, ASCQ).
// Example: "sense data: 0x5 0x24 0x0."
var senseDataRe = regexp.MustCompile(`sense data: (0x[0-9a-fA-F]+) (0x[0-9a-fA-F]+) (0x[0-9a-fA-F]+)`)

// actionRe extracts the NMP recovery action (throttled form only).
// Example: "Act:NONE"
var actionRe = regexp.MustCompile(`Act:(.+)$`)
