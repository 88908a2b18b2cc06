package loadtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultConcurrency is the worker count used when none is given
	DefaultConcurrency = 50
	// DefaultTimeoutSec is the per-request timeout used when none is given
	DefaultTimeoutSec = 10.0
)

// Options describes a single load test run. Exactly one of DurationSec or
// Requests must be positive: DurationSec selects duration mode (run until a
// shared deadline), Requests selects fixed-count mode (drain a shared token
// queue).
type Options struct {
	URL         string
	Method      string
	Concurrency int
	DurationSec float64
	Requests    int
	TimeoutSec  float64
	Headers     []string // raw "Key: Value" strings
	JSONBody    string   // mutually exclusive with RawBody
	RawBody     string
	NoKeepAlive bool
}

// Validate checks the configuration and fails before any network activity.
func (o *Options) Validate() error {
	if o.URL == "" {
		return fmt.Errorf("target URL is required")
	}
	if _, err := url.ParseRequestURI(o.URL); err != nil {
		return fmt.Errorf("invalid URL %q: %w", o.URL, err)
	}
	if o.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be greater than 0")
	}
	if (o.DurationSec <= 0) == (o.Requests <= 0) {
		return fmt.Errorf("provide exactly one of duration (seconds) or total requests")
	}
	if o.TimeoutSec <= 0 {
		return fmt.Errorf("timeout must be greater than 0")
	}
	if o.JSONBody != "" && o.RawBody != "" {
		return fmt.Errorf("json body and raw body are mutually exclusive")
	}
	if o.JSONBody != "" {
		if !json.Valid([]byte(o.JSONBody)) {
			return fmt.Errorf("json body is not valid JSON")
		}
	}
	if _, err := ParseHeaders(o.Headers); err != nil {
		return err
	}
	return nil
}

// NormalizedMethod returns the HTTP method upper-cased, defaulting to GET.
func (o *Options) NormalizedMethod() string {
	m := strings.ToUpper(strings.TrimSpace(o.Method))
	if m == "" {
		return http.MethodGet
	}
	return m
}

// GetTimeout returns the per-request timeout as a time.Duration.
func (o *Options) GetTimeout() time.Duration {
	return time.Duration(o.TimeoutSec * float64(time.Second))
}

// GetDuration returns the test duration as a time.Duration (0 in count mode).
func (o *Options) GetDuration() time.Duration {
	if o.DurationSec <= 0 {
		return 0
	}
	return time.Duration(o.DurationSec * float64(time.Second))
}

// DurationMode reports whether the run is deadline-driven.
func (o *Options) DurationMode() bool {
	return o.DurationSec > 0
}

// Body returns the request body bytes (nil when the run has no body) and the
// Content-Type it implies. A JSON body implies application/json unless the
// header list already sets one.
func (o *Options) Body() ([]byte, string) {
	if o.JSONBody != "" {
		return []byte(o.JSONBody), "application/json"
	}
	if o.RawBody != "" {
		return []byte(o.RawBody), ""
	}
	return nil, ""
}

// ParseHeader splits a single "Key: Value" string. A missing colon is a
// configuration error.
func ParseHeader(raw string) (string, string, error) {
	idx := strings.Index(raw, ":")
	if idx < 0 {
		return "", "", fmt.Errorf("bad header format %q: use 'Key: Value'", raw)
	}
	key := strings.TrimSpace(raw[:idx])
	value := strings.TrimSpace(raw[idx+1:])
	if key == "" {
		return "", "", fmt.Errorf("bad header format %q: empty key", raw)
	}
	return key, value, nil
}

// ParseHeaders parses the raw header list into a map. Later entries with the
// same key overwrite earlier ones.
func ParseHeaders(raw []string) (map[string]string, error) {
	headers := make(map[string]string, len(raw))
	for _, h := range raw {
		k, v, err := ParseHeader(h)
		if err != nil {
			return nil, err
		}
		headers[k] = v
	}
	return headers, nil
}
