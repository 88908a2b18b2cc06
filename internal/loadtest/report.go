package loadtest

import (
	"math"
	"sort"
	"time"
)

// Report is the aggregated outcome of a whole run. Latencies are sorted
// ascending exactly once, here, before any percentile is computed.
type Report struct {
	Latencies []float64
	Statuses  map[int]int
	Errors    map[ErrorKind]int

	TotalCompleted int // cycles that produced a status code
	TotalErrored   int // cycles that produced an error kind
	TotalDone      int // TotalCompleted + TotalErrored
	OK             int // 2xx-3xx subset, display-only

	Elapsed time.Duration
	RPS     float64 // TotalDone / Elapsed seconds
}

// Aggregate merges all workers' private results into one report. The merge
// is commutative and associative: collection order never affects the output.
func Aggregate(results []*WorkerResult, elapsed time.Duration) *Report {
	r := &Report{
		Statuses: make(map[int]int),
		Errors:   make(map[ErrorKind]int),
		Elapsed:  elapsed,
	}

	for _, w := range results {
		r.Latencies = append(r.Latencies, w.Latencies...)
		for code, count := range w.Statuses {
			r.Statuses[code] += count
		}
		for kind, count := range w.Errors {
			r.Errors[kind] += count
		}
		r.TotalCompleted += w.Completed
	}

	sort.Float64s(r.Latencies)

	for code, count := range r.Statuses {
		if code >= 200 && code < 400 {
			r.OK += count
		}
	}
	for _, count := range r.Errors {
		r.TotalErrored += count
	}
	r.TotalDone = r.TotalCompleted + r.TotalErrored

	if secs := elapsed.Seconds(); secs > 0 {
		r.RPS = float64(r.TotalDone) / secs
	} else {
		r.RPS = math.Inf(1)
	}

	return r
}

// HasLatencies reports whether at least one successful cycle was recorded.
func (r *Report) HasLatencies() bool {
	return len(r.Latencies) > 0
}

// P50 returns the median latency in milliseconds.
func (r *Report) P50() float64 { return Percentile(r.Latencies, 50) }

// P90 returns the 90th percentile latency in milliseconds.
func (r *Report) P90() float64 { return Percentile(r.Latencies, 90) }

// P95 returns the 95th percentile latency in milliseconds.
func (r *Report) P95() float64 { return Percentile(r.Latencies, 95) }

// P99 returns the 99th percentile latency in milliseconds.
func (r *Report) P99() float64 { return Percentile(r.Latencies, 99) }

// Min returns the smallest recorded latency, or NaN without data.
func (r *Report) Min() float64 {
	if len(r.Latencies) == 0 {
		return math.NaN()
	}
	return r.Latencies[0]
}

// Max returns the largest recorded latency, or NaN without data.
func (r *Report) Max() float64 {
	if len(r.Latencies) == 0 {
		return math.NaN()
	}
	return r.Latencies[len(r.Latencies)-1]
}

// Avg returns the mean latency, or NaN without data.
func (r *Report) Avg() float64 {
	if len(r.Latencies) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range r.Latencies {
		sum += v
	}
	return sum / float64(len(r.Latencies))
}
