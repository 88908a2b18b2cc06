// Package scenario loads load test defaults from a YAML scenario file.
// Explicit command-line flags always win over scenario values.
package scenario

import (
	"fmt"
	"os"

	"github.com/studiowebux/loadcli/internal/loadtest"
	"gopkg.in/yaml.v3"
)

// Scenario mirrors the flag surface of a run. Zero values mean "not set".
type Scenario struct {
	URL         string            `yaml:"url"`
	Method      string            `yaml:"method"`
	Concurrency int               `yaml:"concurrency"`
	Duration    float64           `yaml:"duration"` // seconds
	Requests    int               `yaml:"requests"`
	Timeout     float64           `yaml:"timeout"` // seconds
	Headers     map[string]string `yaml:"headers"`
	JSON        string            `yaml:"json"`
	Data        string            `yaml:"data"`
	NoKeepAlive bool              `yaml:"no_keepalive"`
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario file: %w", err)
	}
	return &s, nil
}

// Apply fills unset option fields from the scenario. Scenario headers are
// appended in "Key: Value" form, skipping keys already given on the command
// line so flags keep priority.
func (s *Scenario) Apply(opts *loadtest.Options) error {
	if opts.URL == "" {
		opts.URL = s.URL
	}
	if opts.Method == "" {
		opts.Method = s.Method
	}
	if opts.Concurrency == 0 {
		opts.Concurrency = s.Concurrency
	}
	if opts.DurationSec == 0 && opts.Requests == 0 {
		opts.DurationSec = s.Duration
		opts.Requests = s.Requests
	}
	if opts.TimeoutSec == 0 {
		opts.TimeoutSec = s.Timeout
	}
	if opts.JSONBody == "" && opts.RawBody == "" {
		opts.JSONBody = s.JSON
		opts.RawBody = s.Data
	}
	if s.NoKeepAlive {
		opts.NoKeepAlive = true
	}

	if len(s.Headers) > 0 {
		existing, err := loadtest.ParseHeaders(opts.Headers)
		if err != nil {
			return err
		}
		for k, v := range s.Headers {
			if _, ok := existing[k]; ok {
				continue
			}
			opts.Headers = append(opts.Headers, fmt.Sprintf("%s: %s", k, v))
		}
	}
	return nil
}
