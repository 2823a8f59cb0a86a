package cli

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	apiPrefix         = "/api/v1/notifications"
	defaultAPITimeout = 30 * time.Second
)

// apiClient is a thin JSON client for the push service HTTP API.
type apiClient struct {
	client *resty.Client
}

func newAPIClient(opts *globalOptions) *apiClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.server, "/") + apiPrefix).
		SetTimeout(defaultAPITimeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetDisableWarn(true)
	if opts.token != "" {
		client.SetAuthToken(opts.token)
	}
	return &apiClient{client: client}
}

func (c *apiClient) post(ctx context.Context, path string, body, dest any) error {
	req := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(dest)
	return c.do(req, resty.MethodPost, path)
}

func (c *apiClient) get(ctx context.Context, path string, query url.Values, dest any) error {
	req := c.client.R().
		SetContext(ctx).
		SetQueryParamsFromValues(query).
		SetResult(dest)
	return c.do(req, resty.MethodGet, path)
}

func (c *apiClient) do(req *resty.Request, method, path string) error {
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status(), strings.TrimSpace(resp.String()))
	}
	return nil
}
