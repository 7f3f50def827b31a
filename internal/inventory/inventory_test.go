package inventory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// fakeEndpoint serves the five inventory resources as the management
// endpoint would.
func fakeEndpoint(t *testing.T, data map[string][]Pair) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for resource, pairs := range data {
		pairs := pairs
		mux.HandleFunc("/hosts/esx01/"+resource, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(pairs)
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func endpointData() map[string][]Pair {
	return map[string][]Pair{
		"worlds": {
			{ID: "2098065", Name: "vmx-vcpu-0:websrv01"},
			{ID: "2098123", Name: "vmx-vcpu-0:sqldb02"},
		},
		"adapters": {
			{ID: "vmhba64", Name: "(0000:82:00.0) QLogic Corp ISP2532-based 8Gb Fibre Channel HBA"},
		},
		"luns": {
			{ID: "naa.60003ff44dc75adc8e0c8e31a15f4aab", Name: "MSFT iSCSI Disk (naa.60003ff44dc75adc8e0c8e31a15f4aab)"},
		},
		"paths": {
			{ID: "vmhba64:C0:T1:L0", Name: "vmhba64 -> naa.60003ff44dc75adc8e0c8e31a15f4aab"},
		},
		"extents": {
			{ID: "naa.60003ff44dc75adc8e0c8e31a15f4aab", Name: "datastore 01"},
		},
	}
}

func TestLiveLoadAndCachePersistence(t *testing.T) {
	srv := fakeEndpoint(t, endpointData())
	cacheDir := t.TempDir()

	live := Live{
		Client:   NewHTTPClient(srv.URL, srv.Client()),
		Host:     "esx01",
		CacheDir: cacheDir,
	}

	s, err := live.Load(context.Background())
	if err != nil {
		t.Fatalf("live load: %v", err)
	}

	if got := s.WorldName("2098065"); got != "vmx-vcpu-0:websrv01" {
		t.Errorf("WorldName = %q", got)
	}
	if got := s.DatastoreName("naa.60003ff44dc75adc8e0c8e31a15f4aab"); got != "datastore 01" {
		t.Errorf("DatastoreName = %q", got)
	}

	// All five category files were persisted for offline reuse.
	for _, c := range categories {
		path := filepath.Join(cacheDir, "esx01."+c.name+".tsv")
		if _, err := os.Stat(path); err != nil {
			t.Errorf("cache file %s not written: %v", path, err)
		}
	}

	// A later Cached-mode run resolves the same names.
	cached, err := Cached{Host: "esx01", CacheDir: cacheDir}.Load(context.Background())
	if err != nil {
		t.Fatalf("cached load: %v", err)
	}
	if got := cached.PathDescription("vmhba64:C0:T1:L0"); got != s.PathDescription("vmhba64:C0:T1:L0") {
		t.Errorf("cached PathDescription = %q, want %q", got, s.PathDescription("vmhba64:C0:T1:L0"))
	}
	if got := cached.AdapterName("vmhba64"); got != s.AdapterName("vmhba64") {
		t.Errorf("cached AdapterName = %q, want %q", got, s.AdapterName("vmhba64"))
	}
}

func TestLiveLoadEndpointFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	live := Live{
		Client:   NewHTTPClient(srv.URL, srv.Client()),
		Host:     "esx01",
		CacheDir: t.TempDir(),
	}
	if _, err := live.Load(context.Background()); err == nil {
		t.Fatal("expected error from failing endpoint")
	}
}

func TestCachedLoadMissingCategoryFailsWhole(t *testing.T) {
	srv := fakeEndpoint(t, endpointData())
	cacheDir := t.TempDir()

	live := Live{Client: NewHTTPClient(srv.URL, srv.Client()), Host: "esx01", CacheDir: cacheDir}
	if _, err := live.Load(context.Background()); err != nil {
		t.Fatalf("live load: %v", err)
	}

	// Remove one category: the cached load must fail as a whole, not
	// degrade per category.
	if err := os.Remove(filepath.Join(cacheDir, "esx01.adapters.tsv")); err != nil {
		t.Fatal(err)
	}
	if _, err := (Cached{Host: "esx01", CacheDir: cacheDir}).Load(context.Background()); err == nil {
		t.Fatal("expected error for missing cache category")
	}
}

// Bundle-mode and live-mode enrichment must resolve identical names for
// identical raw identifiers when the underlying inventory data matches.
func TestBundleMatchesLive(t *testing.T) {
	srv := fakeEndpoint(t, endpointData())
	live, err := Live{
		Client:   NewHTTPClient(srv.URL, srv.Client()),
		Host:     "esx01",
		CacheDir: t.TempDir(),
	}.Load(context.Background())
	if err != nil {
		t.Fatalf("live load: %v", err)
	}

	bundle, err := Bundle{Root: writeBundle(t)}.Load(context.Background())
	if err != nil {
		t.Fatalf("bundle load: %v", err)
	}

	ids := []struct {
		name    string
		resolve func(*Snapshot) string
	}{
		{"world", func(s *Snapshot) string { return s.WorldName("2098065") }},
		{"device", func(s *Snapshot) string { return s.DeviceName("naa.60003ff44dc75adc8e0c8e31a15f4aab") }},
		{"datastore", func(s *Snapshot) string { return s.DatastoreName("naa.60003ff44dc75adc8e0c8e31a15f4aab") }},
		{"adapter", func(s *Snapshot) string { return s.AdapterName("vmhba64") }},
		{"path", func(s *Snapshot) string { return s.PathDescription("vmhba64:C0:T1:L0") }},
	}

	for _, tt := range ids {
		t.Run(tt.name, func(t *testing.T) {
			lv, bv := tt.resolve(live), tt.resolve(bundle)
			if lv == "" || lv != bv {
				t.Errorf("live = %q, bundle = %q", lv, bv)
			}
		})
	}
}

func TestNilSnapshotResolvesNothing(t *testing.T) {
	var s *Snapshot
	if s.WorldName("1") != "" || s.DeviceName("x") != "" || s.DatastoreName("x") != "" ||
		s.AdapterName("x") != "" || s.PathDescription("x") != "" {
		t.Error("nil snapshot must resolve to empty names")
	}
}
