package taskhubsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
)

func (c *Client) url(path string) string {
	return c.BaseURL + APIPrefix + path
}

// do sends body (if non-nil) as JSON and returns the raw response. bearer
// may be empty.
func (c *Client) do(ctx context.Context, method, path, bearer string, body any) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		r = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), r)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// decodeJSON reads the response and decodes it into target when the status
// is one of expected. Any other status becomes an *APIError. It returns the
// status that was received.
func decodeJSON(resp *http.Response, target any, expected ...int) (int, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	if !slices.Contains(expected, resp.StatusCode) {
		return resp.StatusCode, parseErrorResponse(resp, body)
	}
	if target == nil || len(body) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp.StatusCode, nil
}

// call is do + decodeJSON for the common single-status case.
func (c *Client) call(ctx context.Context, method, path, bearer string, body, target any, expected int) error {
	resp, err := c.do(ctx, method, path, bearer, body)
	if err != nil {
		return err
	}
	_, err = decodeJSON(resp, target, expected)
	return err
}
