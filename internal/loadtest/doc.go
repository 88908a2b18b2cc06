/*
Package loadtest implements the concurrent load-generation core: a pool of
workers hammering one HTTP target under a dispatch discipline, with outcome
classification and latency aggregation.

# Dispatch disciplines

Exactly one of two modes is active per run:

 1. Duration mode: the coordinator computes a deadline once and every worker
    independently polls it at loop top. A request in flight when the deadline
    passes is allowed to finish (soft bound).
 2. Fixed-count mode: the coordinator pre-fills a buffered channel with one
    token per request. Workers drain it with a non-blocking receive and exit
    the moment it is empty. Each token is consumed exactly once.

# Architecture

The Executor owns the run:
  - One shared http.Client whose connection pool is bounded to the worker
    count, so workers map 1:1 onto connections in steady state.
  - N worker goroutines, each owning a private WorkerResult. Nothing on the
    hot path is shared mutably; the only cross-worker synchronization is the
    token channel receive.
  - A structured join: the run completes only when every worker has returned
    its result set.

# Outcome classification

Every request cycle ends in exactly one bucket. A fully drained response is
a completed, timed cycle regardless of status code (4xx/5xx included);
failures map onto a closed set of ErrorKind values so the error histogram
has stable keys.

# Statistics

Aggregate merges the per-worker results with a commutative, order-independent
merge, sorts the concatenated latencies once, and derives percentiles via
linear interpolation between the two nearest ranks (see Percentile).

# Errors

Per-request errors are never fatal: they are classified, counted, and the
worker continues. There are no retries anywhere in this package. Only
configuration errors (validated in NewExecutor, before any network activity)
abort a run.
*/
package loadtest
