package metrics

import (
	"errors"
	"testing"
	"time"
)

type recordingBackend struct {
	counters  map[string]float64
	labels    map[string]Labels
	durations map[string]float64
	flushed   int
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{
		counters:  map[string]float64{},
		labels:    map[string]Labels{},
		durations: map[string]float64{},
	}
}

func (r *recordingBackend) IncCounter(name string, delta float64, labels Labels) {
	r.counters[name] += delta
	r.labels[name] = labels
}

func (r *recordingBackend) ObserveDuration(name string, value float64, labels Labels) {
	r.durations[name] = value
}

func (r *recordingBackend) Flush() error {
	r.flushed++
	return nil
}

// Backend state is package-global, so these tests must not run in
// parallel with each other.

func TestRecordStage(t *testing.T) {
	b := newRecordingBackend()
	SetBackend(b)
	defer SetBackend(nopBackend{})

	RecordStage("merge", "dedupe", nil, 250*time.Millisecond)

	if b.counters["flight_stage_total"] != 1 {
		t.Fatalf("stage counter = %v", b.counters)
	}
	lbls := b.labels["flight_stage_total"]
	if lbls["pipeline"] != "merge" || lbls["stage"] != "dedupe" || lbls["status"] != "success" {
		t.Fatalf("labels = %v", lbls)
	}
	if b.durations["flight_stage_duration_seconds"] != 0.25 {
		t.Fatalf("duration = %v", b.durations)
	}

	RecordStage("merge", "dedupe", errors.New("boom"), time.Millisecond)
	if b.labels["flight_stage_total"]["status"] != "failure" {
		t.Fatalf("error status not recorded")
	}
}

func TestRecordRows(t *testing.T) {
	b := newRecordingBackend()
	SetBackend(b)
	defer SetBackend(nopBackend{})

	RecordRows("merge", "in", 100)
	RecordRows("merge", "in", 50)
	RecordRows("merge", "skipped", 0) // no-op

	if b.counters["flight_rows_total"] != 150 {
		t.Fatalf("rows counter = %v", b.counters["flight_rows_total"])
	}
	if b.labels["flight_rows_total"]["kind"] != "in" {
		t.Fatalf("labels = %v", b.labels["flight_rows_total"])
	}
}

func TestSetBackend_NilKeepsCurrent(t *testing.T) {
	b := newRecordingBackend()
	SetBackend(b)
	defer SetBackend(nopBackend{})

	SetBackend(nil)
	if err := Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if b.flushed != 1 {
		t.Fatalf("nil SetBackend must keep the installed backend")
	}
}
