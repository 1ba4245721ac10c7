package bugzilla

import (
	"context"
	"encoding/json"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	bugsv1 "github.com/openshift/newbugs/pkg/apis/bugs/v1"
)

const (
	DefaultServerURL = "https://bugzilla.mozilla.org"

	// StatusNew and NewBugsLimit are fixed query parameters of GetNewBugs.
	StatusNew    = "NEW"
	NewBugsLimit = 10

	apiKeyHeader = "X-BUGZILLA-API-KEY"
)

// Client queries a Bugzilla server for the bugs assigned to one account. It is not modified after New
// returns, so a single Client can be shared between goroutines.
type Client struct {
	account    string
	server     string
	apiKey     string
	httpClient *http.Client
}

// Option is a functional option for configuring the client
type Option func(*Client)

// WithServerURL sets the Bugzilla base URL, e.g. https://bugzilla.redhat.com
func WithServerURL(server string) Option {
	return func(c *Client) {
		if server != "" {
			c.server = strings.TrimSuffix(server, "/")
		}
	}
}

// WithAPIKey sets the API key sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = strings.TrimSpace(key)
	}
}

// WithHTTPClient sets a custom HTTP client. It is reused for every request, so connections are kept
// alive between calls.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// New creates a client for the given account. No timeout is set on the default HTTP client; callers
// bound requests through the context they pass in.
func New(account string, opts ...Option) *Client {
	c := &Client{
		account:    account,
		server:     DefaultServerURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Account() string {
	return c.account
}

func (c *Client) Server() string {
	return c.server
}

// BugLink returns the human-facing URL of a bug. The id is neither validated nor escaped.
func (c *Client) BugLink(bugID interface{}) string {
	return c.server + "/show_bug.cgi?id=" + bugsv1.FormatValue(bugID)
}

// GetNewBugs fetches up to NewBugsLimit bugs in status NEW assigned to the client's account. The request
// is made before GetNewBugs returns; the returned sequence adds the link to each bug as it is pulled.
//
// If Bugzilla cannot be reached at all the sequence is empty and the error is nil. Every other failure
// is returned: *APIError for non-2xx responses, ErrMalformedResponse or ErrMissingBugs for bodies we
// cannot use, and transport errors such as timeouts unchanged.
func (c *Client) GetNewBugs(ctx context.Context) (iter.Seq[bugsv1.Bug], error) {
	bugs, err := c.fetchNewBugs(ctx)
	if err != nil {
		return nil, err
	}

	return func(yield func(bugsv1.Bug) bool) {
		for _, bug := range bugs {
			bug.SetLink(c.BugLink(bug.ID()))
			bugsYieldedMetric.Inc()
			if !yield(bug) {
				return
			}
		}
	}, nil
}

func (c *Client) newBugsQuery() url.Values {
	v := url.Values{}
	v.Set("assigned_to", c.account)
	v.Set("status", StatusNew)
	v.Set("limit", strconv.Itoa(NewBugsLimit))
	return v
}

func (c *Client) fetchNewBugs(ctx context.Context) ([]bugsv1.Bug, error) {
	reqURL := c.server + "/rest/bug?" + c.newBugsQuery().Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	logger := log.WithFields(log.Fields{"server": c.server, "account": c.account})
	logger.Debug("querying new bugs")
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	requestDurationMetric.Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		if IsConnectionError(err) {
			requestsMetric.WithLabelValues(resultConnectionError).Inc()
			logger.WithError(err).Warn("could not connect to bugzilla, treating as no new bugs")
			return []bugsv1.Bug{}, nil
		}
		requestsMetric.WithLabelValues(resultError).Inc()
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		requestsMetric.WithLabelValues(resultError).Inc()
		return nil, newAPIError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		requestsMetric.WithLabelValues(resultError).Inc()
		return nil, errors.Wrap(err, "failed to read response")
	}

	bugs, err := decodeBugs(body)
	if err != nil {
		requestsMetric.WithLabelValues(resultError).Inc()
		return nil, err
	}
	requestsMetric.WithLabelValues(resultOK).Inc()
	logger.Debugf("bugzilla returned %d new bugs in %s", len(bugs), time.Since(start))
	return bugs, nil
}

// decodeBugs pulls the "bugs" array out of a /rest/bug response. Numbers are kept as json.Number so
// the records are handed back exactly as the server sent them.
func decodeBugs(body []byte) ([]bugsv1.Bug, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.Wrap(ErrMalformedResponse, "response is not valid JSON")
	}
	result := gjson.ParseBytes(body)
	if !result.IsObject() {
		return nil, errors.Wrapf(ErrMalformedResponse, "expected a JSON object, got %s", result.Type)
	}
	raw := result.Get("bugs")
	if !raw.Exists() {
		return nil, ErrMissingBugs
	}
	if !raw.IsArray() {
		return nil, errors.Wrapf(ErrMalformedResponse, `"bugs" is %s, not a list`, raw.Type)
	}
	for i, item := range raw.Array() {
		if !item.IsObject() {
			return nil, errors.Wrapf(ErrMalformedResponse, "bug %d is %s, not an object", i, item.Type)
		}
	}

	bugs := []bugsv1.Bug{}
	dec := json.NewDecoder(strings.NewReader(raw.Raw))
	dec.UseNumber()
	if err := dec.Decode(&bugs); err != nil {
		return nil, errors.Wrapf(ErrMalformedResponse, "could not decode bugs: %v", err)
	}
	return bugs, nil
}
