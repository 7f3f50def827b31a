package inventory

import (
	"context"
	"fmt"
	"log/slog"
)

// Source is the enrichment-source configuration. Exactly one variant is
// selected per run, and each variant carries exactly the inputs its mode
// needs.
type Source interface {
	// Load builds the snapshot. The three modes are mutually exclusive;
	// any failure disables enrichment for the whole run.
	Load(ctx context.Context) (*Snapshot, error)
	// Describe names the source for log output.
	Describe() string
}

// Live fetches the five inventory categories from a connected management
// endpoint and persists them as cache files for later offline reuse.
type Live struct {
	Client Client
	Host   string
	// CacheDir receives the persisted category files. Empty uses
	// DefaultCacheDir. Persistence is best effort: a write failure is
	// logged and does not fail the fetch.
	CacheDir string
}

// Load issues one query per category, builds the snapshot, then persists
// each category file keyed by host identity.
func (l Live) Load(ctx context.Context) (*Snapshot, error) {
	if l.Client == nil {
		return nil, fmt.Errorf("live inventory: no endpoint client")
	}

	s := newSnapshot()
	for _, c := range categories {
		pairs, err := c.list(l.Client, ctx, l.Host)
		if err != nil {
			return nil, fmt.Errorf("live inventory %s for %s: %w", c.name, l.Host, err)
		}
		*c.target(s) = asMap(pairs)
	}

	if err := saveCache(l.CacheDir, l.Host, s); err != nil {
		slog.Warn("failed to persist inventory cache", "host", l.Host, "error", err)
	}
	return s, nil
}

func (l Live) Describe() string {
	return fmt.Sprintf("live endpoint (host %s)", l.Host)
}

// Cached loads previously persisted cache files by host identity. All five
// category files must be present and readable; a partial cache fails the
// whole load.
type Cached struct {
	Host     string
	CacheDir string
}

func (c Cached) Load(ctx context.Context) (*Snapshot, error) {
	return loadCache(c.CacheDir, c.Host)
}

func (c Cached) Describe() string {
	return fmt.Sprintf("cache files (host %s)", c.Host)
}

// Bundle parses pre-captured command output from an extracted diagnostic
// bundle directory tree.
type Bundle struct {
	Root string
}

func (b Bundle) Load(ctx context.Context) (*Snapshot, error) {
	return loadBundle(b.Root)
}

func (b Bundle) Describe() string {
	return fmt.Sprintf("support bundle at %s", b.Root)
}

// category binds a category name to its endpoint query and its slot in
// the snapshot. The names double as cache file name components.
type category struct {
	name   string
	list   func(c Client, ctx context.Context, host string) ([]Pair, error)
	target func(*Snapshot) *map[string]string
}

var categories = []category{
	{"worlds", Client.ListWorlds, func(s *Snapshot) *map[string]string { return &s.worlds }},
	{"devices", Client.ListLUNs, func(s *Snapshot) *map[string]string { return &s.devices }},
	{"datastores", Client.ListDatastoreExtents, func(s *Snapshot) *map[string]string { return &s.datastores }},
	{"adapters", Client.ListAdapters, func(s *Snapshot) *map[string]string { return &s.adapters }},
	{"paths", Client.ListLUNPaths, func(s *Snapshot) *map[string]string { return &s.paths }},
}
