// Package injection loads the per-run sidecar inputs: the injection
// table with true source parameters and the per-event recovered SNR
// files.
package injection

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrNoRecord reports an event index with no entry in the injection table.
var ErrNoRecord = errors.New("injection: no record for event index")

// Record holds one injected signal's parameters. Only the end time feeds
// the pipeline math; the true sky location is carried for reference.
type Record struct {
	// GeocentEndTime is the geocentric end time in GPS seconds.
	GeocentEndTime float64 `json:"geocent_end_time"`

	RADeg  float64 `json:"ra_deg"`
	DecDeg float64 `json:"dec_deg"`
}

// Table is the full injection set, indexed by event number.
type Table struct {
	records []Record
}

// Load reads an injection table from a JSON array file.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("injection: open %s: %w", path, err)
	}
	defer f.Close()

	var records []Record
	if err := json.NewDecoder(f).Decode(&records); err != nil {
		return nil, fmt.Errorf("injection: decode %s: %w", path, err)
	}
	return &Table{records: records}, nil
}

// Len returns the number of records.
func (t *Table) Len() int { return len(t.records) }

// Record returns the injection for an event index.
func (t *Table) Record(index int) (Record, error) {
	if index < 0 || index >= len(t.records) {
		return Record{}, fmt.Errorf("%w: %d (table holds %d)", ErrNoRecord, index, len(t.records))
	}
	return t.records[index], nil
}
