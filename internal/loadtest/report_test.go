package loadtest

import (
	"math"
	"sort"
	"testing"
	"time"
)

func TestAggregate_CommutativeMerge(t *testing.T) {
	a := &WorkerResult{
		Latencies: []float64{5, 6, 7, 8, 9},
		Statuses:  map[int]int{200: 5},
		Errors:    map[ErrorKind]int{},
		Completed: 5,
	}
	b := &WorkerResult{
		Latencies: []float64{1, 2, 3, 4},
		Statuses:  map[int]int{200: 3, 500: 1},
		Errors:    map[ErrorKind]int{KindTimeout: 2},
		Completed: 4,
	}

	forward := Aggregate([]*WorkerResult{a, b}, time.Second)
	backward := Aggregate([]*WorkerResult{b, a}, time.Second)

	for _, r := range []*Report{forward, backward} {
		if r.Statuses[200] != 8 || r.Statuses[500] != 1 {
			t.Errorf("status merge = %v, want map[200:8 500:1]", r.Statuses)
		}
		if r.TotalCompleted != 9 {
			t.Errorf("TotalCompleted = %d, want 9", r.TotalCompleted)
		}
		if r.TotalErrored != 2 {
			t.Errorf("TotalErrored = %d, want 2", r.TotalErrored)
		}
		if r.TotalDone != 11 {
			t.Errorf("TotalDone = %d, want 11", r.TotalDone)
		}
		if !sort.Float64sAreSorted(r.Latencies) {
			t.Errorf("latencies not sorted: %v", r.Latencies)
		}
		if len(r.Latencies) != 9 {
			t.Errorf("len(latencies) = %d, want 9", len(r.Latencies))
		}
	}
}

func TestAggregate_OKSubset(t *testing.T) {
	w := &WorkerResult{
		Latencies: []float64{1, 2, 3, 4, 5, 6},
		Statuses:  map[int]int{200: 3, 301: 1, 404: 1, 503: 1},
		Errors:    map[ErrorKind]int{},
		Completed: 6,
	}

	r := Aggregate([]*WorkerResult{w}, time.Second)

	// 2xx-3xx only; 4xx/5xx still count as completed.
	if r.OK != 4 {
		t.Errorf("OK = %d, want 4", r.OK)
	}
	if r.TotalCompleted != 6 {
		t.Errorf("TotalCompleted = %d, want 6", r.TotalCompleted)
	}
}

func TestAggregate_RPS(t *testing.T) {
	w := &WorkerResult{
		Latencies: []float64{1, 1, 1, 1, 1},
		Statuses:  map[int]int{200: 5},
		Errors:    map[ErrorKind]int{KindConnect: 5},
		Completed: 5,
	}

	r := Aggregate([]*WorkerResult{w}, 2*time.Second)

	// RPS divides completed-or-errored by elapsed, not just successes.
	if r.RPS != 5.0 {
		t.Errorf("RPS = %v, want 5.0", r.RPS)
	}

	r = Aggregate([]*WorkerResult{w}, 0)
	if !math.IsInf(r.RPS, 1) {
		t.Errorf("RPS with zero elapsed = %v, want +Inf", r.RPS)
	}
}

func TestAggregate_AllFailed(t *testing.T) {
	w := NewWorkerResult()
	w.RecordError(KindTimeout)
	w.RecordError(KindTimeout)
	w.RecordError(KindConnect)

	r := Aggregate([]*WorkerResult{w}, time.Second)

	if r.HasLatencies() {
		t.Error("HasLatencies() = true for all-failed run")
	}
	if r.TotalDone != 3 || r.TotalErrored != 3 || r.TotalCompleted != 0 {
		t.Errorf("totals = done=%d errored=%d completed=%d, want 3/3/0",
			r.TotalDone, r.TotalErrored, r.TotalCompleted)
	}
	if !math.IsNaN(r.P50()) || !math.IsNaN(r.Min()) || !math.IsNaN(r.Avg()) {
		t.Error("latency stats of empty report must be NaN")
	}
	if r.RPS != 3.0 {
		t.Errorf("RPS = %v, want 3.0", r.RPS)
	}
}

func TestAggregate_Empty(t *testing.T) {
	r := Aggregate(nil, time.Second)
	if r.TotalDone != 0 || r.RPS != 0 {
		t.Errorf("empty aggregate: done=%d rps=%v, want 0/0", r.TotalDone, r.RPS)
	}
}

func TestWorkerResult_Invariant(t *testing.T) {
	w := NewWorkerResult()
	w.RecordSuccess(200, 12.5)
	w.RecordSuccess(404, 3.25)
	w.RecordError(KindReset)

	if w.Completed != len(w.Latencies) {
		t.Errorf("Completed = %d, len(Latencies) = %d; must be equal", w.Completed, len(w.Latencies))
	}
	if w.Errored() != 1 {
		t.Errorf("Errored() = %d, want 1", w.Errored())
	}
	if w.Statuses[404] != 1 {
		t.Errorf("Statuses[404] = %d, want 1", w.Statuses[404])
	}
}

func TestReport_LatencyStats(t *testing.T) {
	w := &WorkerResult{
		Latencies: []float64{4, 1, 3, 2},
		Statuses:  map[int]int{200: 4},
		Errors:    map[ErrorKind]int{},
		Completed: 4,
	}

	r := Aggregate([]*WorkerResult{w}, time.Second)

	if r.Min() != 1 || r.Max() != 4 {
		t.Errorf("min/max = %v/%v, want 1/4", r.Min(), r.Max())
	}
	if r.Avg() != 2.5 {
		t.Errorf("Avg() = %v, want 2.5", r.Avg())
	}
	if r.P50() != 2.5 {
		t.Errorf("P50() = %v, want 2.5", r.P50())
	}
}
