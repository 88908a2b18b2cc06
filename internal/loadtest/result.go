package loadtest

// WorkerResult is the private result set of a single worker. It is owned by
// one goroutine for the whole run and handed off read-only when the worker
// exits, so no locking is needed anywhere on the hot path.
//
// Invariant: Completed == len(Latencies), and every classified outcome
// increments exactly one of a status bucket or an error bucket.
type WorkerResult struct {
	Latencies []float64 // milliseconds, one per completed cycle, in completion order
	Statuses  map[int]int
	Errors    map[ErrorKind]int
	Completed int
}

// NewWorkerResult creates an empty result set for one worker.
func NewWorkerResult() *WorkerResult {
	return &WorkerResult{
		Statuses: make(map[int]int),
		Errors:   make(map[ErrorKind]int),
	}
}

// RecordSuccess records a fully drained response. 4xx/5xx statuses still
// count as completed, timed cycles.
func (w *WorkerResult) RecordSuccess(statusCode int, latencyMs float64) {
	w.Statuses[statusCode]++
	w.Latencies = append(w.Latencies, latencyMs)
	w.Completed++
}

// RecordError records a failed cycle under its classified kind.
func (w *WorkerResult) RecordError(kind ErrorKind) {
	w.Errors[kind]++
}

// Errored returns the total number of failed cycles in this result set.
func (w *WorkerResult) Errored() int {
	n := 0
	for _, c := range w.Errors {
		n += c
	}
	return n
}
