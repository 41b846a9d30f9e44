package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// Client provides methods for making HTTP requests to the Chorus backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	token      *oauth2.Token
}

// NewClient creates a new backend client.
//
// The rate limit is expressed in requests per second; zero or negative
// disables limiting.
func NewClient(baseURL string, client *http.Client, rateLimit float64) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	if client == nil {
		client = http.DefaultClient
	}

	var limiter *rate.Limiter
	if rateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(rateLimit), 1)
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		limiter:    limiter,
	}
}

// SetToken attaches session credentials sent with subsequent requests.
// A nil token clears the credentials.
func (c *Client) SetToken(token *oauth2.Token) {
	c.token = token
}

// SessionCookies recovers session credentials from the client's cookie jar.
//
// The backend sets access_token and refresh_token cookies when a login or
// code exchange succeeds; a client built with a jar captures them. Returns
// nil when no jar is configured or no access token cookie is present.
func (c *Client) SessionCookies() *oauth2.Token {
	if c.httpClient.Jar == nil {
		return nil
	}

	base, err := url.Parse(c.baseURL)
	if err != nil {
		return nil
	}

	token := &oauth2.Token{TokenType: "bearer"}
	for _, cookie := range c.httpClient.Jar.Cookies(base) {
		switch cookie.Name {
		case "access_token":
			token.AccessToken = cookie.Value
		case "refresh_token":
			token.RefreshToken = cookie.Value
		}
	}

	if token.AccessToken == "" {
		return nil
	}
	return token
}

// Response represents a raw backend response with status and body.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Get performs a GET request to the specified path and returns the raw response.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, nil, "")
}

// Post performs a POST request with the given JSON body and returns the raw response.
func (c *Client) Post(ctx context.Context, path string, data []byte) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, data, "application/json")
}

// PostForm performs a POST request with URL-encoded form values.
// The backend's password login endpoint expects this encoding.
func (c *Client) PostForm(ctx context.Context, path string, values url.Values) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, []byte(values.Encode()), "application/x-www-form-urlencoded")
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, contentType string) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	fullURL := c.baseURL + path

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	// The backend reads session credentials from cookies.
	if c.token != nil && c.token.AccessToken != "" {
		req.AddCookie(&http.Cookie{Name: "access_token", Value: c.token.AccessToken})
		if c.token.RefreshToken != "" {
			req.AddCookie(&http.Cookie{Name: "refresh_token", Value: c.token.RefreshToken})
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       raw,
	}

	var jsonData any
	if err := json.Unmarshal(raw, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// decode unmarshals a 2xx response body into target, converting any failure
// status into an [*Error].
func decode(resp *Response, target any) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errorFromResponse(resp)
	}
	if target == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
