package apicheck

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type request struct {
	method  string
	path    string
	headers map[string]string
}

type fakeRequester struct {
	requests []request
	response Response
	err      error
	closed   bool
}

func (f *fakeRequester) Do(ctx context.Context, method, path string, headers map[string]string) (Response, error) {
	f.requests = append(f.requests, request{method: method, path: path, headers: headers})
	return f.response, f.err
}

func (f *fakeRequester) Close() error {
	f.closed = true
	return nil
}

func newClient(f *fakeRequester) *Client {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return New(f, logger)
}

func TestNew_DefaultsLogger(t *testing.T) {
	f := &fakeRequester{response: Response{Status: http.StatusOK, Body: []byte(`{"authenticated": true, "user": "user"}`)}}
	c := New(f, nil)

	require.NotPanics(t, func() {
		_, err := c.BasicAuth(context.Background(), "user", "pass")
		require.NoError(t, err)
	})
}

func TestBasicAuthHeader(t *testing.T) {
	assert.Equal(t, "Basic dXNlcjpwYXNz", BasicAuthHeader("user", "pass"))
}

func TestBasicAuth(t *testing.T) {
	f := &fakeRequester{response: Response{Status: http.StatusOK, Body: []byte(`{"authenticated": true, "user": "user"}`)}}
	c := newClient(f)

	result, err := c.BasicAuth(context.Background(), "user", "pass")
	require.NoError(t, err)
	assert.Equal(t, &BasicAuthResult{Authenticated: true, User: "user"}, result)

	require.Len(t, f.requests, 1)
	got := f.requests[0]
	assert.Equal(t, http.MethodGet, got.method)
	assert.Equal(t, "/basic-auth/user/pass", got.path)
	assert.Equal(t, "Basic dXNlcjpwYXNz", got.headers["Authorization"])
	assert.Equal(t, "application/json", got.headers["Accept"])
}

func TestBasicAuth_EscapesPath(t *testing.T) {
	f := &fakeRequester{response: Response{Status: http.StatusOK, Body: []byte(`{"authenticated": true, "user": "a/b"}`)}}

	_, err := newClient(f).BasicAuth(context.Background(), "a/b", "p w")
	require.NoError(t, err)
	assert.Equal(t, "/basic-auth/a%2Fb/p%20w", f.requests[0].path)
}

func TestBasicAuth_Failures(t *testing.T) {
	cases := map[string]*fakeRequester{
		"unauthorized":      {response: Response{Status: http.StatusUnauthorized}},
		"not authenticated": {response: Response{Status: http.StatusOK, Body: []byte(`{"authenticated": false}`)}},
		"garbage body":      {response: Response{Status: http.StatusOK, Body: []byte(`<html>`)}},
		"transport error":   {err: errors.New("connection refused")},
	}
	for name, f := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := newClient(f).BasicAuth(context.Background(), "user", "pass")
			require.Error(t, err)
			assert.True(t, Error.Has(err))
		})
	}
}

func TestDelayedResponse(t *testing.T) {
	f := &fakeRequester{response: Response{Status: http.StatusOK, Body: []byte(`{"url": "https://httpbin.org/delay/7"}`)}}

	result, err := newClient(f).DelayedResponse(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, &DelayResult{Status: http.StatusOK, Seconds: 7, URL: "https://httpbin.org/delay/7"}, result)
	assert.Equal(t, http.MethodPost, f.requests[0].method)
	assert.Equal(t, "/delay/7", f.requests[0].path)
}

func TestDelayedResponse_Clamped(t *testing.T) {
	f := &fakeRequester{response: Response{Status: http.StatusOK}}
	c := newClient(f)

	result, err := c.DelayedResponse(context.Background(), 45)
	require.NoError(t, err)
	assert.Equal(t, MaxDelaySeconds, result.Seconds)
	assert.Equal(t, "/delay/10", f.requests[0].path)

	_, err = c.DelayedResponse(context.Background(), -3)
	require.NoError(t, err)
	assert.Equal(t, "/delay/0", f.requests[1].path)
}

func TestDelayedResponse_ServerError(t *testing.T) {
	f := &fakeRequester{response: Response{Status: http.StatusBadGateway}}

	_, err := newClient(f).DelayedResponse(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, Error.Has(err))
	assert.Contains(t, err.Error(), "502")
}

func TestClose(t *testing.T) {
	f := &fakeRequester{}
	require.NoError(t, newClient(f).Close())
	assert.True(t, f.closed)
}
