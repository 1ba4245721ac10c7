package bugzilla

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"

	"github.com/pkg/errors"
)

const errorBodyLimit int64 = 4096

var (
	// ErrMalformedResponse is returned when the response body is not the JSON we expect.
	ErrMalformedResponse = errors.New("malformed bugzilla response")
	// ErrMissingBugs is returned when the response is valid JSON but has no "bugs" key.
	ErrMissingBugs = errors.New(`bugzilla response has no "bugs" key`)
)

// APIError describes a non-2xx response from Bugzilla. Code and Message are filled from the
// standard Bugzilla error body ({"error": true, "code": N, "message": "..."}) when present.
type APIError struct {
	StatusCode int
	Status     string
	Code       int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("bugzilla returned %d (code %d): %s", e.StatusCode, e.Code, e.Message)
	}
	if e.Body == "" {
		return fmt.Sprintf("bugzilla returned %d", e.StatusCode)
	}
	return fmt.Sprintf("bugzilla returned %d: %q", e.StatusCode, e.Body)
}

func newAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(body),
	}

	var bzErr struct {
		Error   bool   `json:"error"`
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &bzErr); err == nil && bzErr.Error {
		apiErr.Code = bzErr.Code
		apiErr.Message = bzErr.Message
	}
	return apiErr
}

// IsConnectionError reports whether err means the server could not be reached at all: DNS failures,
// refused or reset connections, failed TLS handshakes, and connections closed before any response
// was read. Timeouts and cancellations are not connection errors, they are the caller's to handle.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return false
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}

	if isTLSError(err) {
		return true
	}

	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}

// isTLSError matches handshake failures: untrusted or mismatched certificates, alerts sent by the
// server, and peers that do not speak TLS at all.
func isTLSError(err error) bool {
	var certErr *tls.CertificateVerificationError
	var unknownAuthority x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	var invalidCert x509.CertificateInvalidError
	var recordHeaderErr tls.RecordHeaderError
	var alertErr tls.AlertError
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "remote error" {
		return true
	}
	return errors.As(err, &certErr) ||
		errors.As(err, &unknownAuthority) ||
		errors.As(err, &hostnameErr) ||
		errors.As(err, &invalidCert) ||
		errors.As(err, &recordHeaderErr) ||
		errors.As(err, &alertErr)
}
