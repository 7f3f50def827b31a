package inventory

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Fixed relative paths of the pre-captured command outputs inside an
// extracted diagnostic bundle tree. Each needs its own structural parser.
const (
	bundleWorldsFile   = "commands/ps_-PTgtz.txt"
	bundleAdaptersFile = "commands/localcli_storage-core-adapter-list.txt"
	bundleDevicesFile  = "commands/localcli_storage-core-device-list.txt"
	bundlePathsFile    = "commands/localcli_storage-core-path-list.txt"
	bundleExtentsFile  = "commands/localcli_storage-vmfs-extent-list.txt"
)

// loadBundle parses all five captured command outputs. A missing or
// malformed file fails enrichment as a whole.
func loadBundle(root string) (*Snapshot, error) {
	s := newSnapshot()

	parsers := []struct {
		file  string
		parse func(io.Reader) ([]Pair, error)
		into  *map[string]string
	}{
		{bundleWorldsFile, parseWorldTable, &s.worlds},
		{bundleAdaptersFile, parseAdapterTable, &s.adapters},
		{bundleDevicesFile, parseDeviceBlocks, &s.devices},
		{bundlePathsFile, parsePathBlocks, &s.paths},
		{bundleExtentsFile, parseExtentTable, &s.datastores},
	}

	for _, p := range parsers {
		path := filepath.Join(root, filepath.FromSlash(p.file))
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("bundle inventory: %w", err)
		}
		pairs, perr := p.parse(f)
		f.Close()
		if perr != nil {
			return nil, fmt.Errorf("bundle inventory %s: %w", p.file, perr)
		}
		*p.into = asMap(pairs)
	}

	return s, nil
}

// parseWorldTable parses the ps world table. Columns are whitespace
// separated and located by header name:
//
//	WID      CID      WorldName                GID      GroupName
//	2098065  2098065  vmx-vcpu-0:websrv01      2097960  host/user
func parseWorldTable(r io.Reader) ([]Pair, error) {
	scanner := bufio.NewScanner(r)

	widIdx, nameIdx := -1, -1
	var pairs []Pair
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		if widIdx < 0 {
			for i, f := range fields {
				switch f {
				case "WID":
					widIdx = i
				case "WorldName":
					nameIdx = i
				}
			}
			if widIdx < 0 || nameIdx < 0 {
				return nil, fmt.Errorf("world table header not found in %q", line)
			}
			continue
		}

		if len(fields) <= widIdx || len(fields) <= nameIdx {
			continue
		}
		pairs = append(pairs, Pair{ID: fields[widIdx], Name: fields[nameIdx]})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if widIdx < 0 {
		return nil, fmt.Errorf("world table header not found")
	}
	return pairs, nil
}

// parseAdapterTable parses the adapter list. The description column may
// contain spaces, so it is sliced by the header's column offset:
//
//	HBA Name  Driver      Link State  UID          Capabilities  Description
//	--------  ----------  ----------  -----------  ------------  -----------
//	vmhba64   qlnativefc  link-up     fc.2000...                 (0000:82:00.0) QLogic Corp ISP2532 8Gb FC HBA
func parseAdapterTable(r io.Reader) ([]Pair, error) {
	scanner := bufio.NewScanner(r)

	descOff := -1
	var pairs []Pair
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		if descOff < 0 {
			descOff = strings.Index(line, "Description")
			if descOff < 0 {
				return nil, fmt.Errorf("adapter table header not found in %q", line)
			}
			continue
		}

		if strings.HasPrefix(strings.TrimSpace(line), "-") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) == 0 || len(line) <= descOff {
			continue
		}
		pairs = append(pairs, Pair{
			ID:   fields[0],
			Name: strings.TrimSpace(line[descOff:]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if descOff < 0 {
		return nil, fmt.Errorf("adapter table header not found")
	}
	return pairs, nil
}

// parseDeviceBlocks parses the per-device block output. An unindented
// line opens a device block; the indented "Display Name" property names
// it:
//
//	naa.60003ff44dc75adc8e0c8e31a15f4aab
//	   Display Name: MSFT iSCSI Disk (naa.6000...)
//	   Size: 1048576
func parseDeviceBlocks(r io.Reader) ([]Pair, error) {
	scanner := bufio.NewScanner(r)

	var pairs []Pair
	var current string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		if !isIndented(line) {
			current = strings.TrimSuffix(strings.TrimSpace(line), ":")
			continue
		}
		if current == "" {
			continue
		}

		if name, ok := blockProperty(line, "Display Name"); ok {
			pairs = append(pairs, Pair{ID: current, Name: name})
		}
	}
	return pairs, scanner.Err()
}

// parsePathBlocks parses the per-path block output. The path is keyed by
// its runtime name; the description combines the adapter and the device
// the path leads to, matching the shape the live endpoint reports:
//
//	fc.2000...-fc.5006...-naa.6000...
//	   Runtime Name: vmhba64:C0:T1:L0
//	   Device: naa.6000...
//	   Adapter: vmhba64
func parsePathBlocks(r io.Reader) ([]Pair, error) {
	scanner := bufio.NewScanner(r)

	var pairs []Pair
	var runtime, device, adapter string

	flush := func() {
		if runtime == "" {
			return
		}
		pairs = append(pairs, Pair{
			ID:   runtime,
			Name: fmt.Sprintf("%s -> %s", adapter, device),
		})
		runtime, device, adapter = "", "", ""
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		if !isIndented(line) {
			flush()
			continue
		}

		if v, ok := blockProperty(line, "Runtime Name"); ok {
			runtime = v
		} else if v, ok := blockProperty(line, "Device"); ok {
			device = v
		} else if v, ok := blockProperty(line, "Adapter"); ok {
			adapter = v
		}
	}
	flush()
	return pairs, scanner.Err()
}

// parseExtentTable parses the VMFS extent list and maps each extent's
// device to its volume name. Volume names may contain spaces, so columns
// are sliced by header offsets:
//
//	Volume Name  VMFS UUID                            Extent Number  Device Name  Partition
//	-----------  -----------------------------------  -------------  -----------  ---------
//	datastore01  5f8a9c2e-1b3d4e5f-6a7b-8c9d0e1f2a3b  0              naa.6000...  1
func parseExtentTable(r io.Reader) ([]Pair, error) {
	scanner := bufio.NewScanner(r)

	uuidOff, devOff, partOff := -1, -1, -1
	var pairs []Pair
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		if uuidOff < 0 {
			uuidOff = strings.Index(line, "VMFS UUID")
			devOff = strings.Index(line, "Device Name")
			partOff = strings.Index(line, "Partition")
			if uuidOff < 0 || devOff < 0 || partOff < 0 {
				return nil, fmt.Errorf("extent table header not found in %q", line)
			}
			continue
		}

		if strings.HasPrefix(strings.TrimSpace(line), "-") {
			continue
		}
		if len(line) <= devOff {
			continue
		}

		volume := strings.TrimSpace(line[:uuidOff])
		rest := line[devOff:]
		if partOff-devOff < len(rest) {
			rest = rest[:partOff-devOff]
		}
		device := strings.TrimSpace(rest)
		if volume == "" || device == "" {
			continue
		}
		pairs = append(pairs, Pair{ID: device, Name: volume})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if uuidOff < 0 {
		return nil, fmt.Errorf("extent table header not found")
	}
	return pairs, nil
}

func isIndented(line string) bool {
	return strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
}

// blockProperty matches an indented "Key: value" property line. The key
// must match exactly so "Device Display Name" is not taken for "Device".
func blockProperty(line, key string) (string, bool) {
	k, v, found := strings.Cut(strings.TrimSpace(line), ":")
	if !found || strings.TrimSpace(k) != key {
		return "", false
	}
	return strings.TrimSpace(v), true
}
