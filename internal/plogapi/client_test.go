package plogapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aweisser/plog/internal/push"
)

func TestSubmitSendsAttendance(t *testing.T) {
	var gotPath, gotAuth, gotRequestID string
	var gotBody struct {
		Attendances []push.Request `json:"attendances"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-Id")

		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatal(err)
		}
		if err := json.Unmarshal(body, &gotBody); err != nil {
			t.Fatalf("request body is not valid JSON: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret-token", "")
	req := push.Request{Date: "2024-05-01", DurationHours: 1.5, Comment: "review"}

	if err := c.Submit(context.Background(), req); err != nil {
		t.Fatalf("Submit() error: %v", err)
	}

	if gotPath != "/api/plog/attendances" {
		t.Errorf("path = %q, want /api/plog/attendances", gotPath)
	}
	if gotAuth != "Bearer secret-token" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotRequestID == "" {
		t.Error("expected an X-Request-Id header")
	}
	if len(gotBody.Attendances) != 1 {
		t.Fatalf("payload has %d attendances, want 1", len(gotBody.Attendances))
	}
	if gotBody.Attendances[0] != req {
		t.Errorf("submitted attendance = %+v, want %+v", gotBody.Attendances[0], req)
	}
}

func TestSubmitNon2xxIsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, "bad token")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "wrong", "")
	err := c.Submit(context.Background(), push.Request{Date: "2024-05-01", DurationHours: 1})
	if err == nil {
		t.Fatal("expected error for 401 response")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %T, want *APIError", err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", apiErr.Status)
	}
	if apiErr.Body != "bad token" {
		t.Errorf("body = %q, want response body", apiErr.Body)
	}
}

func TestSubmitNetworkErrorIsWrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // closed on purpose

	c := NewClient(srv.URL, "token", "")
	if err := c.Submit(context.Background(), push.Request{Date: "2024-05-01"}); err == nil {
		t.Fatal("expected error when the server is unreachable")
	}
}

func TestTokenSendsFunctionKey(t *testing.T) {
	var gotKey, gotEmail string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/plog/token" {
			t.Errorf("path = %q, want /api/plog/token", r.URL.Path)
		}
		gotKey = r.Header.Get("x-functions-key")
		gotEmail = r.URL.Query().Get("email")
		io.WriteString(w, "personal-token\n")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "func-key")
	token, err := c.Token(context.Background(), "jane@example.com")
	if err != nil {
		t.Fatalf("Token() error: %v", err)
	}

	if gotKey != "func-key" {
		t.Errorf("function key header = %q", gotKey)
	}
	if gotEmail != "jane@example.com" {
		t.Errorf("email query = %q", gotEmail)
	}
	if token != "personal-token" {
		t.Errorf("token = %q, want trimmed response body", token)
	}
}

func TestTokenNon200IsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "wrong-key")
	_, err := c.Token(context.Background(), "jane@example.com")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %T, want *APIError", err)
	}
	if apiErr.Status != http.StatusForbidden {
		t.Errorf("status = %d, want 403", apiErr.Status)
	}
}

func TestNewClientTrimsTrailingSlash(t *testing.T) {
	c := NewClient("https://plog.example.com/", "t", "k")
	if c.baseURL != "https://plog.example.com" {
		t.Errorf("baseURL = %q, trailing slash should be trimmed", c.baseURL)
	}
}
