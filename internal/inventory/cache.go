package inventory

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Cache files are flat two-column (id, name) tab-separated files under a
// temporary directory, one per category, named by host identity:
// <dir>/<host>.<category>.tsv. Concurrent runs writing the same files are
// unsupported; there is no locking discipline.

// DefaultCacheDir returns the cache location under the platform temporary
// directory.
func DefaultCacheDir() string {
	return filepath.Join(os.TempDir(), "scsidecode")
}

func cachePath(dir, host, category string) string {
	if dir == "" {
		dir = DefaultCacheDir()
	}
	return filepath.Join(dir, fmt.Sprintf("%s.%s.tsv", host, category))
}

// saveCache persists each category of the snapshot to its cache file.
func saveCache(dir, host string, s *Snapshot) error {
	if dir == "" {
		dir = DefaultCacheDir()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	for _, c := range categories {
		if err := writeCacheFile(cachePath(dir, host, c.name), *c.target(s)); err != nil {
			return fmt.Errorf("writing %s cache: %w", c.name, err)
		}
	}
	return nil
}

func writeCacheFile(path string, m map[string]string) error {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	for _, id := range ids {
		fmt.Fprintf(&b, "%s\t%s\n", id, m[id])
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// loadCache reads all five category files for a host. A missing or
// unreadable file fails the load as a whole, not per category.
func loadCache(dir, host string) (*Snapshot, error) {
	s := newSnapshot()
	for _, c := range categories {
		path := cachePath(dir, host, c.name)
		m, err := readCacheFile(path)
		if err != nil {
			return nil, fmt.Errorf("cached inventory for %s: %w", host, err)
		}
		*c.target(s) = m
	}
	return s, nil
}

func readCacheFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		id, name, found := strings.Cut(line, "\t")
		if !found {
			continue
		}
		m[id] = name
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return m, nil
}
