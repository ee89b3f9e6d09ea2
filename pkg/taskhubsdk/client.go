package taskhubsdk

import (
	"net/http"
	"strings"
	"time"
)

// APIPrefix is prepended to every API route.
const APIPrefix = "/api-v1"

// Client talks to a TaskHub server.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a client for baseURL (scheme and host, no prefix).
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewSession wraps a session token obtained from Login.
func (c *Client) NewSession(token string) *Session {
	return &Session{client: c, token: token}
}
