// Package codes loads the six SCSI reference tables and resolves raw log
// codes to their descriptions.
package codes

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Category names one of the six reference tables.
type Category string

const (
	OperationCode       Category = "OperationCode"
	HostStatus          Category = "HostStatus"
	DeviceStatus        Category = "DeviceStatus"
	PluginStatus        Category = "PluginStatus"
	SenseKey            Category = "SenseKey"
	AdditionalSenseData Category = "AdditionalSenseData"
)

// Categories lists all table categories in a stable order.
var Categories = []Category{
	OperationCode,
	HostStatus,
	DeviceStatus,
	PluginStatus,
	SenseKey,
	AdditionalSenseData,
}

// tableFiles maps each category to its two-column dataset file name. The
// same names are used for the embedded defaults and for overrides loaded
// from a tables directory.
var tableFiles = map[Category]string{
	OperationCode:       "operation_codes.tsv",
	HostStatus:          "host_status.tsv",
	DeviceStatus:        "device_status.tsv",
	PluginStatus:        "plugin_status.tsv",
	SenseKey:            "sense_keys.tsv",
	AdditionalSenseData: "additional_sense.tsv",
}

//go:embed tables/*.tsv
var embedded embed.FS

// Set holds the six loaded tables. A Set is read-only after Load.
type Set struct {
	tables map[Category]map[string]string
}

// Load builds a Set from the embedded reference tables. If dir is
// non-empty, a file matching a category's name under dir replaces that
// category's embedded table.
func Load(dir string) (*Set, error) {
	s := &Set{tables: make(map[Category]map[string]string, len(Categories))}

	for _, cat := range Categories {
		name := tableFiles[cat]

		if dir != "" {
			path := filepath.Join(dir, name)
			if f, err := os.Open(path); err == nil {
				table, perr := parseTable(f)
				f.Close()
				if perr != nil {
					return nil, fmt.Errorf("parsing table %s: %w", path, perr)
				}
				s.tables[cat] = table
				continue
			} else if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading table %s: %w", path, err)
			}
		}

		f, err := embedded.Open("tables/" + name)
		if err != nil {
			return nil, fmt.Errorf("opening embedded table %s: %w", name, err)
		}
		table, perr := parseTable(f)
		f.Close()
		if perr != nil {
			return nil, fmt.Errorf("parsing embedded table %s: %w", name, perr)
		}
		s.tables[cat] = table
	}

	return s, nil
}

// parseTable reads a two-column tab-separated dataset. Blank lines and
// lines starting with '#' are skipped.
func parseTable(r io.Reader) (map[string]string, error) {
	table := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, desc, found := strings.Cut(line, "\t")
		if !found {
			continue
		}
		table[strings.TrimSpace(key)] = strings.TrimSpace(desc)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return table, nil
}

// lookup returns the description for a normalized key, or "" on a miss.
// A miss is not an error condition.
func (s *Set) lookup(cat Category, key string) string {
	if key == "" {
		return ""
	}
	return s.tables[cat][key]
}

// ResolveOpCode resolves a raw operation code ("0x1a") to its description.
func (s *Set) ResolveOpCode(raw string) string {
	return s.lookup(OperationCode, normOpCode(raw))
}

// ResolveHostStatus resolves a raw host status ("0x0").
func (s *Set) ResolveHostStatus(raw string) string {
	return s.lookup(HostStatus, normHostStatus(raw))
}

// ResolveDeviceStatus resolves a raw device status ("0x2").
func (s *Set) ResolveDeviceStatus(raw string) string {
	return s.lookup(DeviceStatus, normDeviceStatus(raw))
}

// ResolvePluginStatus resolves a raw plugin status. Plugin status keys are
// the raw strings, unchanged.
func (s *Set) ResolvePluginStatus(raw string) string {
	return s.lookup(PluginStatus, raw)
}

// ResolveSenseKey resolves a raw sense key byte ("0xe").
func (s *Set) ResolveSenseKey(raw string) string {
	return s.lookup(SenseKey, normSenseKey(raw))
}

// ResolveAdditionalSense resolves a raw ASC/ASCQ byte pair
// ("0x1d", "0x0").
func (s *Set) ResolveAdditionalSense(asc, ascq string) string {
	return s.lookup(AdditionalSenseData, normAdditionalSense(asc, ascq))
}
