// Package inventory resolves raw host identifiers (worlds, devices,
// adapters, paths) to descriptive names. A snapshot is sourced exactly
// once per run from a live management endpoint, from previously persisted
// cache files, or from an extracted support bundle; a sourcing failure
// degrades the run to raw identifiers instead of aborting it.
package inventory

// Pair is one (identifier, descriptive name) row as returned by every
// sourcing mode.
type Pair struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Snapshot holds the five category mappings for one host. It is immutable
// once built. A nil Snapshot is valid and resolves nothing, which is how
// a run without enrichment behaves.
type Snapshot struct {
	worlds     map[string]string
	devices    map[string]string
	datastores map[string]string
	adapters   map[string]string
	paths      map[string]string
}

func newSnapshot() *Snapshot {
	return &Snapshot{
		worlds:     make(map[string]string),
		devices:    make(map[string]string),
		datastores: make(map[string]string),
		adapters:   make(map[string]string),
		paths:      make(map[string]string),
	}
}

func asMap(pairs []Pair) map[string]string {
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		if p.ID == "" {
			continue
		}
		m[p.ID] = p.Name
	}
	return m
}

// WorldName resolves a world id to the owning process name.
func (s *Snapshot) WorldName(id string) string {
	if s == nil {
		return ""
	}
	return s.worlds[id]
}

// DeviceName resolves a device id to its display name.
func (s *Snapshot) DeviceName(id string) string {
	if s == nil {
		return ""
	}
	return s.devices[id]
}

// DatastoreName resolves a device id to the datastore extending onto it.
func (s *Snapshot) DatastoreName(deviceID string) string {
	if s == nil {
		return ""
	}
	return s.datastores[deviceID]
}

// AdapterName resolves an adapter id (vmhbaN) to its description.
func (s *Snapshot) AdapterName(id string) string {
	if s == nil {
		return ""
	}
	return s.adapters[id]
}

// PathDescription resolves a runtime path name to its description.
func (s *Snapshot) PathDescription(id string) string {
	if s == nil {
		return ""
	}
	return s.paths[id]
}
