// Package client is the Go SDK for the sign-up flow: an HTTP client for the
// public endpoints plus the debounced username-availability monitor the
// sign-up form builds on.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// SignUpInput is the registration payload.
type SignUpInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// APIError is a non-success response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Client talks to the registration service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// CheckUsername queries the availability of a candidate name. It returns
// (true, nil) when available and (false, nil) when taken; validation
// failures and transport errors come back as errors.
func (c *Client) CheckUsername(ctx context.Context, name string) (bool, error) {
	u := fmt.Sprintf("%s/check-username-unique?name=%s", c.baseURL, url.QueryEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}

	// 200 carries the tri-state answer; anything else is a failure.
	if resp.StatusCode != http.StatusOK {
		return false, &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	return env.Success, nil
}

// SignUp submits a registration and returns the server's message.
func (c *Client) SignUp(ctx context.Context, in SignUpInput) (string, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sign-up", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sign up: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if !env.Success {
		return "", &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	return env.Message, nil
}
