package loadtest

import (
	"testing"
	"time"
)

func validOptions() *Options {
	return &Options{
		URL:         "http://127.0.0.1:8000/api/ping",
		Concurrency: 10,
		Requests:    100,
		TimeoutSec:  10,
	}
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{"valid count mode", func(o *Options) {}, false},
		{"valid duration mode", func(o *Options) { o.Requests = 0; o.DurationSec = 5 }, false},
		{"missing url", func(o *Options) { o.URL = "" }, true},
		{"invalid url", func(o *Options) { o.URL = "not a url" }, true},
		{"zero concurrency", func(o *Options) { o.Concurrency = 0 }, true},
		{"neither mode", func(o *Options) { o.Requests = 0 }, true},
		{"both modes", func(o *Options) { o.DurationSec = 5 }, true},
		{"zero timeout", func(o *Options) { o.TimeoutSec = 0 }, true},
		{"json and data conflict", func(o *Options) { o.JSONBody = `{"x":1}`; o.RawBody = "x" }, true},
		{"invalid json body", func(o *Options) { o.JSONBody = `{"x":` }, true},
		{"valid json body", func(o *Options) { o.JSONBody = `{"x":1}` }, false},
		{"bad header", func(o *Options) { o.Headers = []string{"BadHeader"} }, true},
		{"good header", func(o *Options) { o.Headers = []string{"Authorization: Bearer X"} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := validOptions()
			tt.mutate(opts)
			err := opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseHeader(t *testing.T) {
	key, value, err := ParseHeader("Authorization: Bearer X")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "Authorization" || value != "Bearer X" {
		t.Errorf("got (%q, %q), want (Authorization, Bearer X)", key, value)
	}

	if _, _, err := ParseHeader("BadHeader"); err == nil {
		t.Error("expected error for header without colon")
	}
	if _, _, err := ParseHeader(": value-only"); err == nil {
		t.Error("expected error for empty header key")
	}
}

func TestParseHeaders(t *testing.T) {
	headers, err := ParseHeaders([]string{
		"Authorization: Bearer X",
		"X-Trace: a:b:c",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if headers["Authorization"] != "Bearer X" {
		t.Errorf("Authorization = %q, want %q", headers["Authorization"], "Bearer X")
	}
	// Only the first colon separates key from value.
	if headers["X-Trace"] != "a:b:c" {
		t.Errorf("X-Trace = %q, want %q", headers["X-Trace"], "a:b:c")
	}
}

func TestOptions_NormalizedMethod(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "GET"},
		{"get", "GET"},
		{"Post", "POST"},
		{" delete ", "DELETE"},
	}
	for _, tt := range tests {
		opts := &Options{Method: tt.in}
		if got := opts.NormalizedMethod(); got != tt.want {
			t.Errorf("NormalizedMethod(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOptions_Body(t *testing.T) {
	opts := &Options{JSONBody: `{"x":1}`}
	body, contentType := opts.Body()
	if string(body) != `{"x":1}` || contentType != "application/json" {
		t.Errorf("JSON body: got (%q, %q)", body, contentType)
	}

	opts = &Options{RawBody: "plain"}
	body, contentType = opts.Body()
	if string(body) != "plain" || contentType != "" {
		t.Errorf("raw body: got (%q, %q)", body, contentType)
	}

	opts = &Options{}
	body, _ = opts.Body()
	if body != nil {
		t.Errorf("empty body: got %q, want nil", body)
	}
}

func TestOptions_Durations(t *testing.T) {
	opts := &Options{DurationSec: 1.5, TimeoutSec: 0.25}
	if got := opts.GetDuration(); got != 1500*time.Millisecond {
		t.Errorf("GetDuration() = %v, want 1.5s", got)
	}
	if got := opts.GetTimeout(); got != 250*time.Millisecond {
		t.Errorf("GetTimeout() = %v, want 250ms", got)
	}
	if !opts.DurationMode() {
		t.Error("DurationMode() = false, want true")
	}
}
