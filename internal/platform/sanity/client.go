// Package sanity is a read-only client for the Sanity content lake query API.
package sanity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout    = 10 * time.Second
	defaultAPIVersion = "2024-01-01"
	// Longer GET URLs are rejected by the API gateway; such queries are sent as POST.
	maxGetURLLength = 11264
	maxErrorBody    = 2048
)

// Config describes how to reach a dataset.
type Config struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	Token      string
	UseCDN     bool
	Timeout    time.Duration
	// BaseURL replaces the derived https://{project}.api.sanity.io host, mainly for tests.
	BaseURL    string
	HTTPClient *http.Client
}

// Client issues GROQ queries.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
}

// ErrMissingProject is returned when no project or dataset is configured.
var ErrMissingProject = errors.New("sanity: project id and dataset are required")

// NewClient validates cfg and builds a client.
func NewClient(cfg Config) (*Client, error) {
	projectID := strings.TrimSpace(cfg.ProjectID)
	dataset := strings.TrimSpace(cfg.Dataset)
	if dataset == "" || (projectID == "" && cfg.BaseURL == "") {
		return nil, ErrMissingProject
	}

	version := strings.TrimPrefix(strings.TrimSpace(cfg.APIVersion), "v")
	if version == "" {
		version = defaultAPIVersion
	}

	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		host := "api"
		// Authenticated requests bypass the CDN.
		if cfg.UseCDN && cfg.Token == "" {
			host = "apicdn"
		}
		base = fmt.Sprintf("https://%s.%s.sanity.io", projectID, host)
	}

	endpoint, err := url.JoinPath(base, "v"+version, "data", "query", dataset)
	if err != nil {
		return nil, fmt.Errorf("sanity: build endpoint: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		endpoint: endpoint,
		token:    strings.TrimSpace(cfg.Token),
		http:     httpClient,
	}, nil
}

// Endpoint returns the query URL without parameters.
func (c *Client) Endpoint() string {
	return c.endpoint
}

type queryResponse struct {
	Result json.RawMessage `json:"result"`
}

type errorResponse struct {
	Error struct {
		Description string `json:"description"`
		Type        string `json:"type"`
	} `json:"error"`
	Message string `json:"message"`
}

// Query runs a GROQ query and decodes its result into dest. Params are exposed to the query
// as $name. A null result is reported as a not-found error.
func (c *Client) Query(ctx context.Context, query string, params map[string]any, dest any) error {
	op := "sanity.Query"
	req, err := c.newRequest(ctx, query, params)
	if err != nil {
		return &Error{op: op, err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &Error{op: op, err: err, unavailable: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return statusError(op, resp)
	}

	var payload queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return &Error{op: op, err: fmt.Errorf("decode response: %w", err)}
	}
	if len(payload.Result) == 0 || bytes.Equal(bytes.TrimSpace(payload.Result), []byte("null")) {
		return &Error{op: op, err: errNoResult, notFound: true}
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(payload.Result, dest); err != nil {
		return &Error{op: op, err: fmt.Errorf("decode result: %w", err)}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, query string, params map[string]any) (*http.Request, error) {
	values := url.Values{}
	values.Set("query", query)
	encoded := make(map[string]json.RawMessage, len(params))
	for name, value := range params {
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode param %s: %w", name, err)
		}
		values.Set("$"+name, string(raw))
		encoded[name] = raw
	}

	target := c.endpoint + "?" + values.Encode()
	var (
		req *http.Request
		err error
	)
	if len(target) <= maxGetURLLength {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	} else {
		body, marshalErr := json.Marshal(map[string]any{"query": query, "params": encoded})
		if marshalErr != nil {
			return nil, marshalErr
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err == nil {
			req.Header.Set("Content-Type", "application/json")
		}
	}
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func statusError(op string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	message := strings.TrimSpace(string(raw))
	var payload errorResponse
	if err := json.Unmarshal(raw, &payload); err == nil {
		switch {
		case payload.Error.Description != "":
			message = payload.Error.Description
		case payload.Message != "":
			message = payload.Message
		}
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	e := &Error{op: op, status: resp.StatusCode, err: fmt.Errorf("status %d: %s", resp.StatusCode, message)}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		e.notFound = true
	case resp.StatusCode == http.StatusConflict:
		e.conflict = true
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= http.StatusInternalServerError:
		e.unavailable = true
	}
	return e
}
