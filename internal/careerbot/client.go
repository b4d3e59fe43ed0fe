// Package careerbot is the REST client for the career chatbot backend.
package careerbot

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultAPIURL    = "http://localhost:8080"
	DefaultUserAgent = "careerbot-cli"
	DefaultTimeout   = 10 * time.Second

	contentType = "application/json"
)

// TokenSource provides the bearer token for protected calls.
type TokenSource interface {
	Token() string
}

type Client struct {
	logger *zap.Logger
	tokens TokenSource

	// OnUnauthorized runs after a 401 answer to a request that carried a
	// bearer token.
	OnUnauthorized func(ctx context.Context)

	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(logger *zap.Logger, tokens TokenSource) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		logger: logger,
		tokens: tokens,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		UserAgent: DefaultUserAgent,
		APIURL:    DefaultAPIURL,
	}
}

func (c *Client) url(path string) string {
	return strings.TrimRight(c.APIURL, "/") + path
}

func (c *Client) getJSON(ctx context.Context, path string, protected bool) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", contentType)

	return c.do(ctx, req, protected)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload any, protected bool) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", contentType)

	return c.do(ctx, req, protected)
}

// do sends req and returns the body of a 2xx response. Protected requests
// without a token are never sent.
func (c *Client) do(ctx context.Context, req *http.Request, protected bool) ([]byte, error) {
	var token string
	if protected {
		if c.tokens != nil {
			token = c.tokens.Token()
		}
		if token == "" {
			return nil, &Error{Kind: KindLoginRequired, Message: DefaultMessage(KindLoginRequired)}
		}
	}

	c.setHeaders(req, token)

	resp, err := c.request(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &Error{Kind: KindNetwork, Message: DefaultMessage(KindNetwork), Err: err}
	}
	defer resp.Body.Close()

	data, err := readBody(resp)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: DefaultMessage(KindNetwork), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := statusError(resp.StatusCode, data)
		c.logger.Debug("request failed",
			zap.String("url", req.URL.String()),
			zap.Int("status", resp.StatusCode),
			zap.String("kind", apiErr.Kind.String()),
		)

		if resp.StatusCode == http.StatusUnauthorized && token != "" && c.OnUnauthorized != nil {
			c.OnUnauthorized(context.WithoutCancel(ctx))
		}

		return nil, apiErr
	}

	return data, nil
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("method", req.Method), zap.String("url", req.URL.String()))
	return c.HTTPClient.Do(req)
}

func (c *Client) setHeaders(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept-Encoding", "gzip")
}

func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	}

	return io.ReadAll(reader)
}
