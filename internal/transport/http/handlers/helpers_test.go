package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shiftdesk/internal/app/server"
	"shiftdesk/internal/platform/config"
)

const (
	ownerEmail    = "owner@test.local"
	ownerPassword = "ChangeMe123!"
)

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     any             `json:"error"`
	RequestID string          `json:"requestId"`
}

func testConfig() config.Config {
	return config.Config{
		StoreDriver:               config.StoreDriverMemory,
		JWTSecret:                 "test-secret",
		TokenTTL:                  time.Hour,
		Environment:               "test",
		Timezone:                  "UTC",
		Areas:                     config.DefaultAreas(),
		AvailabilityHorizonDays:   14,
		AvailabilityRetentionDays: 90,
		StandardLeaveHours:        8,
		SeedOwnerEmail:            ownerEmail,
		SeedOwnerPassword:         ownerPassword,
		SeedOwnerName:             "Olga Owner",
		EmailFrom:                 "no-reply@test.local",
		RunSeed:                   true,
		RequestTimeout:            5 * time.Second,
		MaxBodyBytes:              1048576,
		RateLimitPerMinute:        1000,
		MetricsEnabled:            true,
	}
}

func newTestServer(t *testing.T, cfg config.Config) (*server.App, *httptest.Server) {
	t.Helper()
	app, err := server.New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	ts := httptest.NewServer(app.Router)
	t.Cleanup(func() {
		ts.Close()
		app.Close()
	})
	return app, ts
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	resp := postJSONStatus(t, client, baseURL+"/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	}, http.StatusOK)
	payload := envelopeDataMap(t, resp)
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatal("expected token")
	}
	return token
}

// createEmployee provisions a user through the owner account and returns its id.
func createEmployee(t *testing.T, client *http.Client, baseURL, ownerToken, name, email, role string) string {
	t.Helper()
	resp := postJSONStatus(t, client, baseURL+"/api/v1/staff", ownerToken, map[string]any{
		"fullName":     name,
		"email":        email,
		"role":         role,
		"monthlyHours": 160,
		"password":     "Secret123!",
	}, http.StatusCreated)
	id, _ := envelopeDataMap(t, resp)["id"].(string)
	if id == "" {
		t.Fatal("expected employee id")
	}
	return id
}

func doJSONStatus(t *testing.T, client *http.Client, method, url, token string, body any, want int) envelope {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewBuffer(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if resp.StatusCode != want {
		t.Fatalf("%s %s: expected status %d, got %d: %s", method, url, want, resp.StatusCode, string(raw))
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return env
}

func postJSONStatus(t *testing.T, client *http.Client, url, token string, body any, want int) envelope {
	t.Helper()
	return doJSONStatus(t, client, http.MethodPost, url, token, body, want)
}

func getJSONStatus(t *testing.T, client *http.Client, url, token string, want int) envelope {
	t.Helper()
	return doJSONStatus(t, client, http.MethodGet, url, token, nil, want)
}

func getJSON(t *testing.T, client *http.Client, url, token string) envelope {
	t.Helper()
	return getJSONStatus(t, client, url, token, http.StatusOK)
}

func getRaw(t *testing.T, client *http.Client, url, token string, want int) (http.Header, []byte) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if resp.StatusCode != want {
		t.Fatalf("GET %s: expected status %d, got %d: %s", url, want, resp.StatusCode, string(raw))
	}
	return resp.Header, raw
}

func envelopeErrorCode(env envelope) string {
	if env.Error == nil {
		return ""
	}
	if m, ok := env.Error.(map[string]any); ok {
		if code, ok := m["code"].(string); ok {
			return code
		}
	}
	return ""
}

func envelopeDataMap(t *testing.T, env envelope) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("failed to decode data object: %v (%s)", err, string(env.Data))
	}
	return out
}

func envelopeDataSlice(t *testing.T, env envelope) []map[string]any {
	t.Helper()
	var out []map[string]any
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("failed to decode data array: %v (%s)", err, string(env.Data))
	}
	return out
}

func assertValidationErrorField(t *testing.T, env envelope, field string) {
	t.Helper()
	if code := envelopeErrorCode(env); code != "validation_error" {
		t.Fatalf("expected validation_error, got %+v", env.Error)
	}
	errMap, ok := env.Error.(map[string]any)
	if !ok {
		t.Fatalf("expected error object, got %T", env.Error)
	}
	details, ok := errMap["details"].(map[string]any)
	if !ok {
		t.Fatalf("expected details object, got %+v", errMap["details"])
	}
	fieldsRaw, ok := details["fields"].([]any)
	if !ok {
		t.Fatalf("expected details.fields array, got %+v", details["fields"])
	}
	for _, item := range fieldsRaw {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if value, _ := entry["field"].(string); value == field {
			return
		}
	}
	t.Fatalf("expected validation field %q in %+v", field, fieldsRaw)
}
