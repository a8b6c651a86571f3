package pipeline

import (
	"math"
	"testing"

	"github.com/signalsfoundry/skymap-correlator/model"
)

func TestAggregatorLabelsInAppendOrder(t *testing.T) {
	a := NewAggregator()
	a.Append("three_det", model.AggregateRecord{EventIndex: 0})
	a.Append("four_det", model.AggregateRecord{EventIndex: 0})
	a.Append("three_det", model.AggregateRecord{EventIndex: 1})

	labels := a.Labels()
	if len(labels) != 2 || labels[0] != "three_det" || labels[1] != "four_det" {
		t.Fatalf("Labels = %v, want [three_det four_det]", labels)
	}
	if got := len(a.Records("three_det")); got != 2 {
		t.Fatalf("three_det records = %d, want 2", got)
	}
}

func TestAggregatorRecordsAreCopies(t *testing.T) {
	a := NewAggregator()
	a.Append("x", model.AggregateRecord{CredibleArea68: 5})

	recs := a.Records("x")
	recs[0].CredibleArea68 = 100
	if got := a.Records("x")[0].CredibleArea68; got != 5 {
		t.Fatalf("mutating a returned slice leaked into the aggregator: %v", got)
	}
}

func TestSummarize(t *testing.T) {
	a := NewAggregator()
	a.Append("x", model.AggregateRecord{CredibleArea68: 2, NetworkSNR: 10, AntennaResponse: 0.4, Converged: true})
	a.Append("x", model.AggregateRecord{CredibleArea68: 8, NetworkSNR: 14, AntennaResponse: 0.6, Converged: true})
	a.Append("x", model.AggregateRecord{CredibleArea68: 200, NetworkSNR: 6, AntennaResponse: 0.2, Converged: false})

	s := a.Summarize("x")
	if s.Count != 3 {
		t.Fatalf("Count = %d, want 3", s.Count)
	}
	if s.NonConverged != 1 {
		t.Fatalf("NonConverged = %d, want 1", s.NonConverged)
	}
	if s.MinArea68 != 2 || s.MaxArea68 != 200 {
		t.Fatalf("area range [%v, %v], want [2, 200]", s.MinArea68, s.MaxArea68)
	}
	if math.Abs(s.MeanArea68-70) > 1e-12 {
		t.Fatalf("MeanArea68 = %v, want 70", s.MeanArea68)
	}
	if math.Abs(s.MeanSNR-10) > 1e-12 {
		t.Fatalf("MeanSNR = %v, want 10", s.MeanSNR)
	}
	if math.Abs(s.MeanResponse-0.4) > 1e-12 {
		t.Fatalf("MeanResponse = %v, want 0.4", s.MeanResponse)
	}
}

func TestSummarizeEmptyLabel(t *testing.T) {
	a := NewAggregator()
	s := a.Summarize("absent")
	if s.Label != "absent" || s.Count != 0 {
		t.Fatalf("Summarize(absent) = %+v", s)
	}
}
