// Package apicheck runs the HTTP checks against the httpbin style API
// used next to the UI scenarios.
package apicheck

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"
	"github.com/zeebo/errs"
)

// Error is the class of failed API checks
var Error = errs.Class("apicheck")

// MaxDelaySeconds is the longest delay the API honors
const MaxDelaySeconds = 10

// Response is the part of an HTTP response the checks look at
type Response struct {
	Status int
	Body   []byte
}

// OK reports a 2xx status
func (r Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Requester sends requests relative to the API base URL
type Requester interface {
	Do(ctx context.Context, method, path string, headers map[string]string) (Response, error)
	Close() error
}

// BasicAuthResult is the body returned by /basic-auth
type BasicAuthResult struct {
	Authenticated bool   `json:"authenticated"`
	User          string `json:"user"`
}

// DelayResult describes a delayed response
type DelayResult struct {
	Status  int    `json:"status"`
	Seconds int    `json:"seconds"`
	URL     string `json:"url"`
}

type Client struct {
	requester Requester
	logger    *logrus.Logger
}

// New creates a client on top of requester
func New(requester Requester, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Client{requester: requester, logger: logger}
}

// BasicAuthHeader returns the Authorization header value for user and password
func BasicAuthHeader(user, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+password))
}

// BasicAuth calls /basic-auth/{user}/{password} with matching credentials and
// expects a successful, authenticated response.
func (c *Client) BasicAuth(ctx context.Context, user, password string) (*BasicAuthResult, error) {
	path := fmt.Sprintf("/basic-auth/%s/%s", url.PathEscape(user), url.PathEscape(password))
	resp, err := c.requester.Do(ctx, http.MethodGet, path, map[string]string{
		"Accept":        "application/json",
		"Authorization": BasicAuthHeader(user, password),
	})
	if err != nil {
		return nil, Error.Wrap(err)
	}
	c.logger.Infof("Response status: %d", resp.Status)
	if !resp.OK() {
		return nil, Error.New("basic auth for %q returned status %d", user, resp.Status)
	}

	var result BasicAuthResult
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, Error.New("decoding basic auth response: %w", err)
	}
	if !result.Authenticated {
		return nil, Error.New("basic auth for %q was not authenticated", user)
	}
	return &result, nil
}

// DelayedResponse POSTs /delay/{n} and expects a successful response.
// Delays are clamped to [0, MaxDelaySeconds].
func (c *Client) DelayedResponse(ctx context.Context, seconds int) (*DelayResult, error) {
	seconds = ClampDelay(seconds)
	resp, err := c.requester.Do(ctx, http.MethodPost, fmt.Sprintf("/delay/%d", seconds), map[string]string{
		"Accept": "application/json",
	})
	if err != nil {
		return nil, Error.Wrap(err)
	}
	c.logger.Infof("Response status: %d", resp.Status)
	if !resp.OK() {
		return nil, Error.New("delayed response of %ds returned status %d", seconds, resp.Status)
	}

	result := DelayResult{Status: resp.Status, Seconds: seconds}
	var body struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(resp.Body, &body); err == nil {
		result.URL = body.URL
	}
	return &result, nil
}

// ClampDelay bounds seconds to what the API accepts
func ClampDelay(seconds int) int {
	return max(0, min(seconds, MaxDelaySeconds))
}

// Close releases the underlying requester
func (c *Client) Close() error {
	return c.requester.Close()
}
