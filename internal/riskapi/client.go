// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package riskapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/jeranaias/riskapi-console/internal/config"
	"github.com/jeranaias/riskapi-console/internal/logger"
)

// API path layout: /{customer}/api/v1/{resource}
const (
	apiBase    = "api"
	apiVersion = "v1"

	// DefaultTimeout bounds a single request.
	DefaultTimeout = config.DefaultTimeoutSecs * time.Second

	jsonMediaType = "application/json"
)

// ClientOptions configures a Client beyond its connection parameters.
type ClientOptions struct {
	// Timeout bounds a single request; zero means DefaultTimeout.
	Timeout time.Duration

	// RequestsPerSecond throttles requests; zero disables throttling.
	RequestsPerSecond float64

	// PageSize is used by paginated resources; zero means config.DefaultPageSize.
	PageSize int

	// Logger receives request traces; nil discards them.
	Logger *logger.Logger
}

// Client is a connection to one RiskAPI customer endpoint.
// It performs a single attempt per request: failures are reported, never
// retried.
type Client struct {
	params    Params
	http      *resty.Client
	limiter   *rate.Limiter
	pageSize  int
	log       *logger.Logger
	resources any
}

// NewClient builds a client for params. It does not contact the server;
// see Library.Connect for the validating constructor.
func NewClient(params Params, opts ClientOptions) (*Client, error) {
	if params.Scheme != "http" && params.Scheme != "https" {
		return nil, &ClientError{Op: "connect", Err: fmt.Errorf("invalid scheme '%s' (http or https expected)", params.Scheme)}
	}
	if strings.TrimSpace(params.Host) == "" {
		return nil, &ClientError{Op: "connect", Err: errors.New("host is required")}
	}
	if strings.Contains(params.Host, "/") {
		return nil, &ClientError{Op: "connect", Err: fmt.Errorf("invalid host %q", params.Host)}
	}

	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.PageSize <= 0 {
		opts.PageSize = config.DefaultPageSize
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}

	cli := resty.New().
		SetBaseURL(params.BaseURL()).
		SetTimeout(opts.Timeout).
		SetHeader("Connection", "Keep-Alive").
		SetHeader("Content-Type", jsonMediaType).
		SetHeader("Accept", jsonMediaType+",*/*")
	if params.Username != "" {
		cli.SetBasicAuth(params.Username, params.Password)
	}

	c := &Client{
		params:   params,
		http:     cli,
		pageSize: opts.PageSize,
		log:      opts.Logger.Child("riskapi"),
	}
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return c, nil
}

// Params returns the connection parameters.
func (c *Client) Params() Params {
	return c.params
}

// Resources returns the resource listing fetched by Ping.
func (c *Client) Resources() any {
	return c.resources
}

// Ping fetches system/resources, which validates host and credentials,
// and caches the result.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.get(ctx, "system/resources", nil)
	if err != nil {
		return err
	}
	c.resources = res
	return nil
}

// String describes the connection without credentials.
func (c *Client) String() string {
	who := c.params.Username
	if who == "" {
		who = "anonymous"
	}
	return fmt.Sprintf("<Connection %s customer=%q as %s>", c.params.BaseURL(), c.params.Customer, who)
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.GetClient().CloseIdleConnections()
}

// url returns the server path of resource for this customer.
func (c *Client) url(resource string) string {
	fragments := []string{apiBase, apiVersion, resource}
	if c.params.Customer != "" {
		fragments = append([]string{c.params.Customer}, fragments...)
	}
	return "/" + strings.Join(fragments, "/")
}

// =============================================================================
// REQUESTS
// =============================================================================

func (c *Client) get(ctx context.Context, resource string, query map[string]string) (any, error) {
	return c.do(ctx, http.MethodGet, resource, query, nil)
}

func (c *Client) post(ctx context.Context, resource string, body any) (any, error) {
	return c.do(ctx, http.MethodPost, resource, nil, body)
}

// do performs one request and decodes the JSON response.
func (c *Client) do(ctx context.Context, method, resource string, query map[string]string, body any) (any, error) {
	path := c.url(resource)
	op := method + " " + path

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &ClientError{Op: op, Err: err}
		}
	}

	req := c.http.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if body != nil {
		req.SetBody(body)
	}

	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		c.log.Debug().Str("op", op).Err(err).Msg("request failed")
		return nil, &ClientError{Op: op, Err: err}
	}
	c.log.Debug().
		Str("op", op).
		Int("status", resp.StatusCode()).
		Dur("elapsed", time.Since(start)).
		Msg("request")

	if err := mapHTTPError(resp); err != nil {
		return nil, err
	}
	if len(resp.Body()) == 0 {
		return "", nil
	}
	var out any
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, &ClientError{Op: op, Err: fmt.Errorf("invalid JSON response: %w", err)}
	}
	return out, nil
}

// fetchPaginated collects every item of a {count, data} resource using
// start/limit paging.
func (c *Client) fetchPaginated(ctx context.Context, resource string, extra map[string]string) ([]any, error) {
	page := func(start int) (int, []any, error) {
		query := map[string]string{
			"start": strconv.Itoa(start),
			"limit": strconv.Itoa(c.pageSize),
		}
		for k, v := range extra {
			query[k] = v
		}
		res, err := c.get(ctx, resource, query)
		if err != nil {
			return 0, nil, err
		}
		return decodePage(res)
	}

	total, results, err := page(0)
	if err != nil {
		return nil, err
	}
	if total < c.pageSize {
		return results, nil
	}
	pages := total/c.pageSize + 1
	for i := 1; i < pages; i++ {
		_, data, err := page(i * c.pageSize)
		if err != nil {
			return nil, err
		}
		results = append(results, data...)
	}
	return results, nil
}

// decodePage extracts count and data from a paginated response.
func decodePage(res any) (int, []any, error) {
	obj, ok := res.(map[string]any)
	if !ok {
		return 0, nil, fmt.Errorf("unexpected page type %T", res)
	}
	count, ok := obj["count"].(float64)
	if !ok {
		return 0, nil, errors.New("page has no count")
	}
	data, _ := obj["data"].([]any)
	return int(count), data, nil
}
