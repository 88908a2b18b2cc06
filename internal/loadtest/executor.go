package loadtest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Executor drives one load test run: it owns the shared HTTP client, the
// dispatch discipline (deadline or token queue), and the worker pool. It is
// built once per run and not reused.
type Executor struct {
	opts   *Options
	client *http.Client
	logger *zap.Logger

	method  string
	headers http.Header
	body    []byte

	// Fixed-count mode: the queue holds exactly opts.Requests tokens and is
	// fully drained by run end. Channel receive gives each token to exactly
	// one worker.
	tokens chan struct{}

	// Duration mode: read-only after Run starts.
	deadline time.Time

	testStart time.Time

	// Live counters for the progress display only; the report is built from
	// the workers' private result sets, never from these.
	completed atomic.Int64
	errored   atomic.Int64
	active    atomic.Int32
}

// Snapshot is a point-in-time view of a running test for progress display.
type Snapshot struct {
	Completed int64
	Errored   int64
	Active    int32
	Elapsed   time.Duration
	Total     int           // configured request count, 0 in duration mode
	Duration  time.Duration // configured duration, 0 in count mode
}

// NewExecutor validates the options and builds the shared resources. All
// configuration errors surface here, before any network activity.
func NewExecutor(opts *Options, logger *zap.Logger) (*Executor, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	parsed, err := ParseHeaders(opts.Headers)
	if err != nil {
		return nil, err
	}
	headers := make(http.Header, len(parsed))
	for k, v := range parsed {
		headers.Set(k, v)
	}

	body, impliedType := opts.Body()
	if impliedType != "" && headers.Get("Content-Type") == "" {
		headers.Set("Content-Type", impliedType)
	}

	return &Executor{
		opts:    opts,
		client:  buildHTTPClient(opts),
		logger:  logger,
		method:  opts.NormalizedMethod(),
		headers: headers,
		body:    body,
	}, nil
}

// Run executes the whole test and blocks until every worker has returned its
// private result set. Per-request errors are classified and counted, never
// fatal; the run always produces a report.
func (e *Executor) Run(ctx context.Context) *Report {
	concurrency := e.opts.Concurrency
	e.testStart = time.Now()

	if e.opts.DurationMode() {
		e.deadline = e.testStart.Add(e.opts.GetDuration())
		e.logger.Info("starting duration run",
			zap.String("url", e.opts.URL),
			zap.Int("concurrency", concurrency),
			zap.Duration("duration", e.opts.GetDuration()))
	} else {
		e.tokens = make(chan struct{}, e.opts.Requests)
		for i := 0; i < e.opts.Requests; i++ {
			e.tokens <- struct{}{}
		}
		e.logger.Info("starting fixed-count run",
			zap.String("url", e.opts.URL),
			zap.Int("concurrency", concurrency),
			zap.Int("requests", e.opts.Requests))
	}

	results := make([]*WorkerResult, concurrency)
	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(slot int) {
			defer wg.Done()
			results[slot] = e.worker(ctx)
		}(i)
	}
	wg.Wait()

	elapsed := time.Since(e.testStart)
	e.client.CloseIdleConnections()

	report := Aggregate(results, elapsed)
	e.logger.Info("run complete",
		zap.Int("completed", report.TotalCompleted),
		zap.Int("errored", report.TotalErrored),
		zap.Duration("elapsed", elapsed))
	return report
}

// worker runs request cycles under the configured dispatch discipline and
// returns its private result set.
func (e *Executor) worker(ctx context.Context) *WorkerResult {
	res := NewWorkerResult()

	if e.opts.DurationMode() {
		// The deadline is only observed at loop top: a request already in
		// flight when it passes is allowed to finish.
		for time.Now().Before(e.deadline) {
			e.cycle(ctx, res)
		}
		return res
	}

	for {
		select {
		case <-e.tokens:
			e.cycle(ctx, res)
		default:
			// Queue empty: done immediately, no waiting on slower peers.
			return res
		}
	}
}

// cycle performs exactly one request/response attempt. The response body is
// fully drained before the latency is taken so the connection can be reused
// by the next cycle, and the timing covers the entire exchange.
func (e *Executor) cycle(ctx context.Context, res *WorkerResult) {
	e.active.Add(1)
	defer e.active.Add(-1)

	var bodyReader io.Reader
	if len(e.body) > 0 {
		bodyReader = bytes.NewReader(e.body)
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, e.method, e.opts.URL, bodyReader)
	if err != nil {
		res.RecordError(Classify(err))
		e.errored.Add(1)
		return
	}
	for key, values := range e.headers {
		req.Header[key] = values
	}

	resp, err := e.client.Do(req)
	if err != nil {
		res.RecordError(Classify(err))
		e.errored.Add(1)
		return
	}

	_, err = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if err != nil {
		res.RecordError(Classify(err))
		e.errored.Add(1)
		return
	}

	latencyMs := time.Since(start).Seconds() * 1000.0
	res.RecordSuccess(resp.StatusCode, latencyMs)
	e.completed.Add(1)
}

// Snapshot returns the current live counters (thread-safe).
func (e *Executor) Snapshot() Snapshot {
	return Snapshot{
		Completed: e.completed.Load(),
		Errored:   e.errored.Load(),
		Active:    e.active.Load(),
		Elapsed:   time.Since(e.testStart),
		Total:     e.opts.Requests,
		Duration:  e.opts.GetDuration(),
	}
}
