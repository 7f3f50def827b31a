// Package decoder turns raw vmkernel log lines into resolved records. It
// is a synchronous, forward-only pass over the input: lines are classified,
// filtered by time window, resolved against the code tables, enriched from
// the host inventory snapshot, and emitted in arrival order.
package decoder

import (
	"bufio"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/ovasik/scsidecode/internal/classifier"
	"github.com/ovasik/scsidecode/internal/codes"
	"github.com/ovasik/scsidecode/internal/inventory"
	"github.com/ovasik/scsidecode/internal/record"
)

// Options configures a decode run.
type Options struct {
	// Tables is the loaded code table set. Required.
	Tables *codes.Set
	// Inventory enriches identifier fields. Nil disables enrichment.
	Inventory *inventory.Snapshot
	// Start and Finish bound the admitted timestamp range, inclusive.
	// A zero Start admits from the Unix epoch; a zero Finish admits
	// until the time the decoder was created.
	Start  time.Time
	Finish time.Time
}

// Decoder streams records out of a line source. Records are produced
// lazily: each Scan advances past skipped lines to the next admitted
// entry. A Decoder is not restartable.
type Decoder struct {
	scanner *bufio.Scanner
	opts    Options
	nextID  int
	rec     record.Record
}

// New creates a Decoder reading raw log lines from r.
func New(r io.Reader, opts Options) *Decoder {
	if opts.Start.IsZero() {
		opts.Start = time.Unix(0, 0)
	}
	if opts.Finish.IsZero() {
		opts.Finish = time.Now()
	}
	return &Decoder{
		scanner: bufio.NewScanner(r),
		opts:    opts,
		nextID:  1,
	}
}

// Scan advances to the next admitted record. It returns false at end of
// input or on a read error; see Err.
func (d *Decoder) Scan() bool {
	for d.scanner.Scan() {
		line := d.scanner.Text()

		entry, err := classifier.Classify(line)
		if err != nil {
			slog.Warn("rejecting line with malformed timestamp", "line", truncate(line, 60))
			continue
		}
		if entry == nil {
			continue
		}

		if entry.Timestamp.Before(d.opts.Start) || entry.Timestamp.After(d.opts.Finish) {
			continue
		}

		d.rec = d.assemble(entry)
		d.nextID++
		return true
	}
	return false
}

// Record returns the record produced by the last successful Scan.
func (d *Decoder) Record() record.Record {
	return d.rec
}

// Err returns the first error encountered reading the input.
func (d *Decoder) Err() error {
	return d.scanner.Err()
}

// assemble resolves and enriches one extracted entry into a record.
func (d *Decoder) assemble(e *record.Entry) record.Record {
	t := d.opts.Tables
	inv := d.opts.Inventory

	rec := record.Record{
		ID:        d.nextID,
		Timestamp: e.Timestamp,
		Type:      e.Type,

		OpCode:       record.Field{Code: e.OpCode, Text: t.ResolveOpCode(e.OpCode)},
		SourceWorld:  record.Field{Code: e.SourceWorld, Text: inv.WorldName(e.SourceWorld)},
		TargetDevice: record.Field{Code: e.TargetDevice, Text: inv.DeviceName(e.TargetDevice)},
		Datastore:    inv.DatastoreName(e.TargetDevice),
		Path:         record.Field{Code: e.Path, Text: inv.PathDescription(e.Path)},
		HostStatus:   record.Field{Code: e.HostStatus, Text: t.ResolveHostStatus(e.HostStatus)},
		DeviceStatus: record.Field{Code: e.DeviceStatus, Text: t.ResolveDeviceStatus(e.DeviceStatus)},
		PluginStatus: record.Field{Code: e.PluginStatus, Text: t.ResolvePluginStatus(e.PluginStatus)},
		SenseValid:   e.SenseValid,
		Action:       e.Action,
	}

	adapter := adapterID(e.Path)
	rec.Adapter = record.Field{Code: adapter, Text: inv.AdapterName(adapter)}

	rec.SenseKey = record.Field{Code: e.SenseKey}
	rec.AdditionalSense = record.Field{Code: senseRaw(e.SenseASC, e.SenseASCQ)}
	if senseUsable(e.SenseValid) {
		rec.SenseKey.Text = t.ResolveSenseKey(e.SenseKey)
		rec.AdditionalSense.Text = t.ResolveAdditionalSense(e.SenseASC, e.SenseASCQ)
	}

	return rec
}

// senseUsable reports whether the sense bytes carry meaning worth
// resolving. Invalid sense data keeps its raw bytes but stays undecoded.
func senseUsable(validity string) bool {
	return validity == "Valid" || validity == "Possible"
}

func senseRaw(asc, ascq string) string {
	if asc == "" && ascq == "" {
		return ""
	}
	return asc + " " + ascq
}

// adapterID derives the adapter from a runtime path name
// ("vmhba64:C0:T1:L0" -> "vmhba64").
func adapterID(path string) string {
	if path == "" {
		return ""
	}
	adapter, _, _ := strings.Cut(path, ":")
	return adapter
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
