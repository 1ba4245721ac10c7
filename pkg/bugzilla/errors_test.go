package bugzilla

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestIsConnectionError(t *testing.T) {
	wrap := func(err error) error {
		return &url.Error{Op: "Get", URL: "https://bugzilla.example.org/rest/bug", Err: err}
	}

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil", err: nil, expected: false},
		{name: "refused", err: wrap(&net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}), expected: true},
		{name: "no such host", err: wrap(&net.OpError{Op: "dial", Net: "tcp", Err: &net.DNSError{Err: "no such host", IsNotFound: true}}), expected: true},
		{name: "reset by peer", err: wrap(&net.OpError{Op: "read", Net: "tcp", Err: os.NewSyscallError("read", syscall.ECONNRESET)}), expected: true},
		{name: "closed before response", err: wrap(io.EOF), expected: true},
		{name: "unexpected eof", err: wrap(fmt.Errorf("reading headers: %w", io.ErrUnexpectedEOF)), expected: true},
		{name: "dns timeout", err: wrap(&net.DNSError{Err: "i/o timeout", IsTimeout: true}), expected: false},
		{name: "dial timeout", err: wrap(&net.OpError{Op: "dial", Net: "tcp", Err: timeoutError{}}), expected: false},
		{name: "deadline", err: wrap(context.DeadlineExceeded), expected: false},
		{name: "canceled", err: wrap(context.Canceled), expected: false},
		{name: "unknown authority", err: wrap(&tls.CertificateVerificationError{Err: x509.UnknownAuthorityError{}}), expected: true},
		{name: "hostname mismatch", err: wrap(x509.HostnameError{Host: "bugzilla.example.org"}), expected: true},
		{name: "expired certificate", err: wrap(x509.CertificateInvalidError{Reason: x509.Expired}), expected: true},
		{name: "not a tls server", err: wrap(tls.RecordHeaderError{Msg: "first record does not look like a TLS handshake"}), expected: true},
		{name: "handshake alert", err: wrap(fmt.Errorf("remote error: %w", tls.AlertError(40))), expected: true},
		{name: "alert over tcp", err: wrap(&net.OpError{Op: "remote error", Err: errors.New("tls: handshake failure")}), expected: true},
		{name: "other", err: wrap(fmt.Errorf("proxy returned malformed response")), expected: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsConnectionError(tc.err))
		})
	}
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		name            string
		status          int
		body            string
		expectedCode    int
		expectedMessage string
		expectedError   string
	}{
		{
			name:            "bugzilla error body",
			status:          http.StatusBadRequest,
			body:            `{"error": true, "code": 51, "message": "There is no user named 'nobody'."}`,
			expectedCode:    51,
			expectedMessage: "There is no user named 'nobody'.",
			expectedError:   "bugzilla returned 400 (code 51): There is no user named 'nobody'.",
		},
		{
			name:          "plain body",
			status:        http.StatusBadGateway,
			body:          "upstream unavailable",
			expectedError: `bugzilla returned 502: "upstream unavailable"`,
		},
		{
			name:          "empty body",
			status:        http.StatusInternalServerError,
			expectedError: "bugzilla returned 500",
		},
		{
			name:          "json without error flag",
			status:        http.StatusNotFound,
			body:          `{"code": 1, "message": "ignored"}`,
			expectedError: `bugzilla returned 404: "{\"code\": 1, \"message\": \"ignored\"}"`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := &http.Response{
				StatusCode: tc.status,
				Status:     http.StatusText(tc.status),
				Body:       io.NopCloser(strings.NewReader(tc.body)),
			}
			apiErr := newAPIError(resp)
			assert.Equal(t, tc.status, apiErr.StatusCode)
			assert.Equal(t, tc.expectedCode, apiErr.Code)
			assert.Equal(t, tc.expectedMessage, apiErr.Message)
			assert.Equal(t, tc.expectedError, apiErr.Error())
		})
	}
}

func TestAPIErrorBodyIsLimited(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusInternalServerError,
		Body:       io.NopCloser(strings.NewReader(strings.Repeat("a", 10000))),
	}
	apiErr := newAPIError(resp)
	assert.Len(t, apiErr.Body, int(errorBodyLimit))
}
