package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/cryptofolio/cryptofolio/internal/pipelineerror"
)

// explorerClient is the HTTP plumbing shared by all chain fetchers: one
// request per call, a hard request deadline, token-bucket throttling, and
// JSON decoding into the provider-specific shape.
type explorerClient struct {
	provider string
	http     *http.Client
	limiter  *rate.Limiter
	timeout  time.Duration
}

func newExplorerClient(provider string, timeout time.Duration, limiter *rate.Limiter) *explorerClient {
	return &explorerClient{
		provider: provider,
		http:     &http.Client{Timeout: timeout},
		limiter:  limiter,
		timeout:  timeout,
	}
}

// getJSON issues a GET against url and decodes the body into out. Timeouts
// and transport failures surface as typed FetchErrors; non-2xx statuses
// include the provider's response body verbatim.
func (c *explorerClient) getJSON(ctx context.Context, url string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return c.wrapErr(err, "rate limit wait aborted")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &pipelineerror.FetchError{Provider: c.provider, Reason: err.Error(), Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.wrapErr(err, "request failed")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return c.wrapErr(err, "reading response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &pipelineerror.FetchError{
			Provider: c.provider,
			Reason:   fmt.Sprintf("%s - %s", resp.Status, string(body)),
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &pipelineerror.MalformedResponseError{
			Provider: c.provider,
			Detail:   fmt.Sprintf("not valid JSON: %v", err),
		}
	}
	return nil
}

func (c *explorerClient) wrapErr(err error, reason string) error {
	timeout := errors.Is(err, context.DeadlineExceeded)
	if !timeout {
		// The http client reports its own deadline through the url.Error
		// Timeout method rather than context.DeadlineExceeded.
		var te interface{ Timeout() bool }
		if errors.As(err, &te) && te.Timeout() {
			timeout = true
		}
	}
	return &pipelineerror.FetchError{
		Provider: c.provider,
		Reason:   fmt.Sprintf("%s: %v", reason, err),
		Timeout:  timeout,
		Err:      err,
	}
}
