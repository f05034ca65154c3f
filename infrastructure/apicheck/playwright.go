package apicheck

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/zeebo/errs"
)

// requestTimeout covers the longest delay plus transfer time
const requestTimeout = (MaxDelaySeconds + 20) * time.Second

type playwrightRequester struct {
	pw      *playwright.Playwright
	request playwright.APIRequestContext
	baseURL string
}

// NewPlaywrightRequester - starts playwright and opens an API request context for baseURL
func NewPlaywrightRequester(baseURL string) (Requester, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, Error.New("failed to start playwright: %w", err)
	}

	request, err := pw.Request.NewContext(playwright.APIRequestNewContextOptions{
		IgnoreHttpsErrors: playwright.Bool(true),
	})
	if err != nil {
		return nil, errs.Combine(Error.New("failed to create request context: %w", err), pw.Stop())
	}

	return &playwrightRequester{pw: pw, request: request, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Do - sends the request and reads the whole body
func (r *playwrightRequester) Do(ctx context.Context, method, path string, headers map[string]string) (Response, error) {
	timeout := requestTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if timeout < time.Millisecond {
		return Response{}, context.DeadlineExceeded
	}
	ms := playwright.Float(float64(timeout.Milliseconds()))
	target := r.baseURL + path

	var (
		resp playwright.APIResponse
		err  error
	)
	switch method {
	case http.MethodGet:
		resp, err = r.request.Get(target, playwright.APIRequestContextGetOptions{Headers: headers, Timeout: ms})
	case http.MethodPost:
		resp, err = r.request.Post(target, playwright.APIRequestContextPostOptions{Headers: headers, Timeout: ms})
	default:
		return Response{}, Error.New("unsupported method %s", method)
	}
	if err != nil {
		return Response{}, err
	}
	defer resp.Dispose()

	body, err := resp.Body()
	if err != nil {
		return Response{}, err
	}
	return Response{Status: resp.Status(), Body: body}, nil
}

// Close - disposes the request context and stops playwright
func (r *playwrightRequester) Close() error {
	return Error.Wrap(errs.Combine(r.request.Dispose(), r.pw.Stop()))
}
