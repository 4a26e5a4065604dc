package client

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
	DefaultBaseURL = "http://localhost:5000"
	DefaultTimeout = 10 * time.Second

	apiPrefix = "/api"
)

// TokenSource yields the bearer token to attach, or "" for none.
type TokenSource interface {
	Token() string
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
	Details string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s (%d): %s", e.Message, e.Status, e.Details)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// HTTPClient sends JSON requests to the API under baseURL + "/api".
type HTTPClient struct {
	baseURL string
	tokens  TokenSource
	client  *http.Client
}

func NewHTTPClient(baseURL string, tokens TokenSource) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/") + apiPrefix,
		tokens:  tokens,
		client: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// Do sends in as the JSON body (when non-nil) and decodes the response into
// out (when non-nil). Cancelling ctx aborts the request and returns ctx's
// error.
func (c *HTTPClient) Do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	raw, _ := io.ReadAll(resp.Body)
	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err == nil {
		if eb.Error != "" {
			apiErr.Message = eb.Error
		}
		apiErr.Details = eb.Details
	}
	return apiErr
}

// IsCanceled reports whether err comes from a cancelled request.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
