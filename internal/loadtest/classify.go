package loadtest

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"
)

// ErrorKind is a stable classification key for a failed request cycle.
// The report's error histogram is keyed by these values so that output is
// independent of the transport's error message wording.
type ErrorKind string

const (
	KindTimeout  ErrorKind = "timeout"
	KindConnect  ErrorKind = "connect"
	KindDNS      ErrorKind = "dns"
	KindTLS      ErrorKind = "tls"
	KindReset    ErrorKind = "reset"
	KindProtocol ErrorKind = "protocol"
	KindOther    ErrorKind = "other"
)

// Classify maps a transport-layer error to exactly one ErrorKind.
// Timeouts are checked first: an http.Client timeout surfaces as a
// *url.Error wrapping context.DeadlineExceeded, and must not be mistaken
// for a generic connection failure.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindOther
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindDNS
	}

	var certErr x509.CertificateInvalidError
	var authErr x509.UnknownAuthorityError
	var hostErr x509.HostnameError
	var recordErr tls.RecordHeaderError
	if errors.As(err, &certErr) || errors.As(err, &authErr) ||
		errors.As(err, &hostErr) || errors.As(err, &recordErr) {
		return KindTLS
	}

	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return KindReset
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH) {
		return KindConnect
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return KindConnect
	}

	return classifyMessage(err.Error())
}

// classifyMessage is the string fallback for errors the transport does not
// expose as typed values (e.g. "malformed HTTP response", bare EOF from a
// server that hung up mid-body).
func classifyMessage(msg string) ErrorKind {
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "timed out"):
		return KindTimeout
	case strings.Contains(lower, "no such host") || strings.Contains(lower, "lookup"):
		return KindDNS
	case strings.Contains(lower, "tls") || strings.Contains(lower, "x509") ||
		strings.Contains(lower, "certificate"):
		return KindTLS
	case strings.Contains(lower, "connection reset") || strings.Contains(lower, "broken pipe"):
		return KindReset
	case strings.Contains(lower, "connection refused") ||
		strings.Contains(lower, "network is unreachable") ||
		strings.Contains(lower, "no route to host"):
		return KindConnect
	case strings.Contains(lower, "malformed") || strings.Contains(lower, "eof") ||
		strings.Contains(lower, "unsupported protocol") ||
		strings.Contains(lower, "bad response"):
		return KindProtocol
	default:
		return KindOther
	}
}
