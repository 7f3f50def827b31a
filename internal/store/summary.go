package store

import (
	"fmt"
	"time"
)

// DeviceSummary aggregates stored failures for one device.
type DeviceSummary struct {
	Device string
	Count  int
	Last   time.Time
}

// TopDevices returns the devices with the most stored failures since the
// given time, worst first.
func (d *DB) TopDevices(since time.Time, limit int) ([]DeviceSummary, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := d.db.Query(`
		SELECT device, COUNT(*), MAX(timestamp)
		FROM records
		WHERE timestamp >= ? AND device != ''
		GROUP BY device
		ORDER BY COUNT(*) DESC
		LIMIT ?`,
		since.UTC().Format(time.RFC3339Nano), limit)
	if err != nil {
		return nil, fmt.Errorf("aggregating devices: %w", err)
	}
	defer rows.Close()

	var sums []DeviceSummary
	for rows.Next() {
		var s DeviceSummary
		var last string
		if err := rows.Scan(&s.Device, &s.Count, &last); err != nil {
			return nil, fmt.Errorf("scanning summary: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, last); err == nil {
			s.Last = ts
		}
		sums = append(sums, s)
	}
	return sums, rows.Err()
}
