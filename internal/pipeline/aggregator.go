package pipeline

import (
	"sync"

	"github.com/signalsfoundry/skymap-correlator/model"
)

// Aggregator owns the mapping from configuration label to its
// append-only, ordered sequence of aggregate records. A single-threaded
// run appends from one goroutine; the mutex keeps the structure safe if
// events are ever parallelized across a worker pool.
type Aggregator struct {
	mu      sync.RWMutex
	records map[string][]model.AggregateRecord
	order   []string
}

// NewAggregator constructs an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{records: make(map[string][]model.AggregateRecord)}
}

// Append adds one record under a label, registering the label on first
// use.
func (a *Aggregator) Append(label string, rec model.AggregateRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, seen := a.records[label]; !seen {
		a.order = append(a.order, label)
	}
	a.records[label] = append(a.records[label], rec)
}

// Labels returns the labels in first-appended order.
func (a *Aggregator) Labels() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

// Records returns a copy of the record sequence for a label, preserving
// append order.
func (a *Aggregator) Records(label string) []model.AggregateRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()
	recs := a.records[label]
	out := make([]model.AggregateRecord, len(recs))
	copy(out, recs)
	return out
}

// Summary is the descriptive per-label aggregation reported at the end
// of a run. No statistics beyond ranges and means.
type Summary struct {
	Label        string
	Count        int
	NonConverged int

	MinArea68, MaxArea68, MeanArea68 float64
	MeanSNR                          float64
	MeanResponse                     float64
}

// Summarize reduces one label's records to a Summary. A label with no
// records yields a zero Summary with the label set.
func (a *Aggregator) Summarize(label string) Summary {
	recs := a.Records(label)
	s := Summary{Label: label, Count: len(recs)}
	if len(recs) == 0 {
		return s
	}

	s.MinArea68 = recs[0].CredibleArea68
	s.MaxArea68 = recs[0].CredibleArea68
	for _, r := range recs {
		if r.CredibleArea68 < s.MinArea68 {
			s.MinArea68 = r.CredibleArea68
		}
		if r.CredibleArea68 > s.MaxArea68 {
			s.MaxArea68 = r.CredibleArea68
		}
		s.MeanArea68 += r.CredibleArea68
		s.MeanSNR += r.NetworkSNR
		s.MeanResponse += r.AntennaResponse
		if !r.Converged {
			s.NonConverged++
		}
	}
	n := float64(len(recs))
	s.MeanArea68 /= n
	s.MeanSNR /= n
	s.MeanResponse /= n
	return s
}
