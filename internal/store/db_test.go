package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ovasik/scsidecode/internal/record"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "records.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testRecord(id int, ts time.Time, device string) record.Record {
	return record.Record{
		ID:           id,
		Timestamp:    ts,
		Type:         record.DeviceIOLog,
		OpCode:       record.Field{Code: "0x1a", Text: "MODE SENSE(6)"},
		TargetDevice: record.Field{Code: device},
		HostStatus:   record.Field{Code: "0x0", Text: "NO error"},
		DeviceStatus: record.Field{Code: "0x2", Text: "CHECK CONDITION"},
		SenseKey:     record.Field{Code: "0xe", Text: "MISCOMPARE"},
	}
}

func TestInsertAndQuery(t *testing.T) {
	db := openTestDB(t)
	runID := NewRunID()
	now := time.Now().UTC().Truncate(time.Millisecond)

	for i := 1; i <= 3; i++ {
		rec := testRecord(i, now.Add(time.Duration(i)*time.Minute), "naa.abc")
		if err := db.Insert(runID, rec); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	recs, err := db.Query(QueryFilter{RunID: runID})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}

	// Most recent first.
	if recs[0].ID != 3 {
		t.Errorf("first record id = %d, want 3", recs[0].ID)
	}
	if recs[0].HostStatus.Text != "NO error" {
		t.Errorf("round-tripped HostStatus.Text = %q", recs[0].HostStatus.Text)
	}
	if recs[0].RunID != runID {
		t.Errorf("RunID = %q, want %q", recs[0].RunID, runID)
	}
}

func TestQueryFilters(t *testing.T) {
	db := openTestDB(t)
	runID := NewRunID()
	base := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)

	devices := []string{"naa.aaa", "naa.bbb", "naa.aaa"}
	for i, dev := range devices {
		rec := testRecord(i+1, base.Add(time.Duration(i)*time.Hour), dev)
		if err := db.Insert(runID, rec); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	byDevice, err := db.Query(QueryFilter{Device: "naa.aaa"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(byDevice) != 2 {
		t.Errorf("device filter returned %d records, want 2", len(byDevice))
	}

	bySince, err := db.Query(QueryFilter{Since: base.Add(90 * time.Minute)})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(bySince) != 1 {
		t.Errorf("since filter returned %d records, want 1", len(bySince))
	}

	limited, err := db.Query(QueryFilter{Limit: 1})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limit filter returned %d records, want 1", len(limited))
	}
}

func TestTopDevices(t *testing.T) {
	db := openTestDB(t)
	runID := NewRunID()
	base := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)

	devices := []string{"naa.aaa", "naa.aaa", "naa.aaa", "naa.bbb"}
	for i, dev := range devices {
		rec := testRecord(i+1, base.Add(time.Duration(i)*time.Minute), dev)
		if err := db.Insert(runID, rec); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	sums, err := db.TopDevices(base.Add(-time.Hour), 10)
	if err != nil {
		t.Fatalf("TopDevices: %v", err)
	}
	if len(sums) != 2 {
		t.Fatalf("got %d summaries, want 2", len(sums))
	}
	if sums[0].Device != "naa.aaa" || sums[0].Count != 3 {
		t.Errorf("top device = %+v", sums[0])
	}
	if !sums[0].Last.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("top device last = %v", sums[0].Last)
	}
}

func TestPurge(t *testing.T) {
	db := openTestDB(t)
	runID := NewRunID()

	old := testRecord(1, time.Now().Add(-48*time.Hour), "naa.old")
	fresh := testRecord(2, time.Now(), "naa.new")
	if err := db.Insert(runID, old); err != nil {
		t.Fatal(err)
	}
	if err := db.Insert(runID, fresh); err != nil {
		t.Fatal(err)
	}

	purged, err := db.Purge(24 * time.Hour)
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if purged != 1 {
		t.Errorf("purged = %d, want 1", purged)
	}

	n, err := db.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("count after purge = %d, want 1", n)
	}
}
