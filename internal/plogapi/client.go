package plogapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aweisser/plog/internal/push"
)

// APIError is a non-2xx answer from the plog API. Local timer state is
// never touched when one occurs, so the push can be retried as-is.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("plog API returned status %d: %s", e.Status, e.Body)
}

// Client talks to the plog API, the gateway in front of the HR
// timekeeping system.
type Client struct {
	baseURL     string
	token       string
	functionKey string
	httpClient  *http.Client
}

func NewClient(baseURL, token, functionKey string) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		token:       token,
		functionKey: functionKey,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Submit posts a single attendance. Implements push.Submitter.
func (c *Client) Submit(ctx context.Context, attendance push.Request) error {
	payload := struct {
		Attendances []push.Request `json:"attendances"`
	}{Attendances: []push.Request{attendance}}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/plog/attendances", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.New().String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("posting attendance: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}
	return nil
}

// Token fetches a personalized API token for the given user. Admin
// feature, gated by the function key header.
func (c *Client) Token(ctx context.Context, email string) (string, error) {
	u := c.baseURL + "/api/plog/token?email=" + url.QueryEscape(email)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("x-functions-key", c.functionKey)
	req.Header.Set("X-Request-Id", uuid.New().String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("requesting token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return strings.TrimSpace(string(body)), nil
}
