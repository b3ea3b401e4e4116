package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ranchwatch/telemetry-hub/api/middleware"
	"github.com/ranchwatch/telemetry-hub/internal/config"
	"github.com/ranchwatch/telemetry-hub/internal/errors"
	"github.com/ranchwatch/telemetry-hub/internal/hubservice"
	"github.com/ranchwatch/telemetry-hub/internal/models"
	"github.com/ranchwatch/telemetry-hub/internal/monitoring"
	"github.com/ranchwatch/telemetry-hub/internal/repository"
)

// fakeTelemetryRepo substitutes the engine-backed repository in handler
// tests.
type fakeTelemetryRepo struct {
	mu           sync.Mutex
	written      []models.Point
	writeErr     error
	location     *models.LastLocation
	locationErr  error
	telemetry    *models.LastTelemetry
	telemetryErr error
	lastLookback time.Duration
}

func (f *fakeTelemetryRepo) WritePoints(_ context.Context, points []models.Point) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.written = append(f.written, points...)
	return nil
}

func (f *fakeTelemetryRepo) LastLocation(_ context.Context, deviceID string, lookback time.Duration) (*models.LastLocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLookback = lookback
	if f.locationErr != nil {
		return nil, f.locationErr
	}
	if f.location == nil {
		return nil, repository.ErrNotFound
	}
	loc := *f.location
	loc.DeviceID = deviceID
	return &loc, nil
}

func (f *fakeTelemetryRepo) LastTelemetry(_ context.Context, deviceID string, lookback time.Duration) (*models.LastTelemetry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLookback = lookback
	if f.telemetryErr != nil {
		return nil, f.telemetryErr
	}
	if f.telemetry == nil {
		return nil, repository.ErrNotFound
	}
	row := *f.telemetry
	row.DeviceID = deviceID
	return &row, nil
}

func (f *fakeTelemetryRepo) Ping(_ context.Context) error { return nil }
func (f *fakeTelemetryRepo) Close()                       {}

func (f *fakeTelemetryRepo) writtenPoints() []models.Point {
	f.mu.Lock()
	defer f.mu.Unlock()
	points := make([]models.Point, len(f.written))
	copy(points, f.written)
	return points
}

func (f *fakeTelemetryRepo) seenLookback() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastLookback
}

func newTestServer(t *testing.T, fake *fakeTelemetryRepo, writeToken string) *httptest.Server {
	t.Helper()

	svc := hubservice.New(fake, monitoring.NewService(monitoring.Config{LogLevel: "debug"}), config.QueryConfig{
		Lookback:    7 * 24 * time.Hour,
		MaxLookback: 30 * 24 * time.Hour,
	})
	router := NewRouter(svc, middleware.WriteTokenConfig{Token: writeToken}, []string{"*"})

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

func postTelemetry(t *testing.T, ts *httptest.Server, body, bearer string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/telemetry/", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, &fakeTelemetryRepo{}, "")

	resp, err := ts.Client().Get(ts.URL + "/health/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d want=%d", resp.StatusCode, http.StatusOK)
	}
	body := decodeBody(t, resp)
	if body["status"] != "ok" {
		t.Fatalf("status=%v want=ok", body["status"])
	}
}

func TestIngestNoTokenConfiguredSkipsAuth(t *testing.T) {
	fake := &fakeTelemetryRepo{}
	ts := newTestServer(t, fake, "")

	resp := postTelemetry(t, ts, `{"device_id":"dev1","amb":{"ok":true,"temp_c":21.5}}`, "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status=%d want=%d", resp.StatusCode, http.StatusCreated)
	}
	body := decodeBody(t, resp)
	if body["status"] != "created" {
		t.Fatalf("body=%v want status=created", body)
	}

	points := fake.writtenPoints()
	if len(points) != 1 || points[0].Measurement != models.MeasurementTelemetry {
		t.Fatalf("expected one telemetry point written, got %+v", points)
	}
}

func TestIngestAuth(t *testing.T) {
	cases := []struct {
		name       string
		bearer     string
		wantStatus int
		wantDetail string
	}{
		{"missing header", "", http.StatusUnauthorized, "Authentication credentials were not provided."},
		{"wrong token", "wrong", http.StatusUnauthorized, "Invalid token."},
		{"correct token", "secret", http.StatusCreated, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(t, &fakeTelemetryRepo{}, "secret")

			resp := postTelemetry(t, ts, `{"device_id":"dev1","amb":{"ok":true,"temp_c":21.5}}`, tc.bearer)
			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("status=%d want=%d", resp.StatusCode, tc.wantStatus)
			}
			if tc.wantDetail != "" {
				body := decodeBody(t, resp)
				if body["detail"] != tc.wantDetail {
					t.Fatalf("detail=%v want=%q", body["detail"], tc.wantDetail)
				}
			}
		})
	}
}

func TestIngestValidationFailure(t *testing.T) {
	fake := &fakeTelemetryRepo{}
	ts := newTestServer(t, fake, "")

	resp := postTelemetry(t, ts, `{"device_id":"dev1","bat":{"pct":150}}`, "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status=%d want=%d", resp.StatusCode, http.StatusBadRequest)
	}

	body := decodeBody(t, resp)
	fieldErrs, ok := body["errors"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected errors object, got %v", body)
	}
	if _, ok := fieldErrs["bat.pct"]; !ok {
		t.Fatalf("expected bat.pct error, got %v", fieldErrs)
	}
	if len(fake.writtenPoints()) != 0 {
		t.Fatalf("rejected payload must not reach the gateway")
	}
}

func TestIngestMalformedJSON(t *testing.T) {
	ts := newTestServer(t, &fakeTelemetryRepo{}, "")

	resp := postTelemetry(t, ts, `{"device_id":`, "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status=%d want=%d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestIngestGatewayFailure(t *testing.T) {
	fake := &fakeTelemetryRepo{writeErr: errors.NewGatewayError("engine down", nil)}
	ts := newTestServer(t, fake, "")

	resp := postTelemetry(t, ts, `{"device_id":"dev1","amb":{"ok":true,"temp_c":21.5}}`, "")
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status=%d want=%d", resp.StatusCode, http.StatusBadGateway)
	}
	body := decodeBody(t, resp)
	if body["detail"] != "Failed to write telemetry" {
		t.Fatalf("detail=%v, engine internals must not leak", body["detail"])
	}
}

func TestIngestEmptyPayloadSucceedsWithoutWrites(t *testing.T) {
	fake := &fakeTelemetryRepo{}
	ts := newTestServer(t, fake, "")

	resp := postTelemetry(t, ts, `{"device_id":"dev1","amb":{"ok":false},"gps":{"valid":false}}`, "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status=%d want=%d", resp.StatusCode, http.StatusCreated)
	}
	if len(fake.writtenPoints()) != 0 {
		t.Fatalf("expected no writes for a pointless payload")
	}
}

func TestLastLocationNotFound(t *testing.T) {
	ts := newTestServer(t, &fakeTelemetryRepo{}, "")

	resp, err := ts.Client().Get(ts.URL + "/api/v1/last-location/dev1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d want=%d", resp.StatusCode, http.StatusOK)
	}
	body := decodeBody(t, resp)
	if body["device_id"] != "dev1" || body["found"] != false {
		t.Fatalf("body=%v want device_id=dev1 found=false", body)
	}
}

func TestLastLocationWithoutFixIsNotFound(t *testing.T) {
	lat := 10.5
	fake := &fakeTelemetryRepo{location: &models.LastLocation{Found: true, Ts: time.Now(), Lat: &lat}}
	ts := newTestServer(t, fake, "")

	resp, err := ts.Client().Get(ts.URL + "/api/v1/last-location/dev1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	body := decodeBody(t, resp)
	if body["found"] != false {
		t.Fatalf("a row without both lat and lon must count as not found, got %v", body)
	}
}

func TestLastLocationFound(t *testing.T) {
	lat, lon, hdop := 10.5, 20.1, 1.2
	sats := int64(7)
	fake := &fakeTelemetryRepo{location: &models.LastLocation{
		Found: true,
		Ts:    time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		Lat:   &lat, Lon: &lon, Sats: &sats, Hdop: &hdop,
	}}
	ts := newTestServer(t, fake, "")

	resp, err := ts.Client().Get(ts.URL + "/api/v1/last-location/dev1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	body := decodeBody(t, resp)
	if body["found"] != true || body["lat"] != 10.5 || body["lon"] != 20.1 {
		t.Fatalf("body=%v want found=true lat=10.5 lon=20.1", body)
	}
	if body["alt_m"] != nil || body["vel_kmh"] != nil {
		t.Fatalf("missing fields must serialize as null, got %v", body)
	}
}

func TestLastTelemetryPartialRowIsFound(t *testing.T) {
	probe := 30.0
	fake := &fakeTelemetryRepo{telemetry: &models.LastTelemetry{
		Found:      true,
		Ts:         time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		ProbeTempC: &probe,
	}}
	ts := newTestServer(t, fake, "")

	resp, err := ts.Client().Get(ts.URL + "/api/v1/last-telemetry/dev1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	body := decodeBody(t, resp)
	if body["found"] != true {
		t.Fatalf("partial row still counts as found, got %v", body)
	}
	if body["probe_temp_c"] != 30.0 {
		t.Fatalf("probe_temp_c=%v want=30.0", body["probe_temp_c"])
	}
	if body["amb_temp_c"] != nil || body["amb_hum_pct"] != nil {
		t.Fatalf("absent fields must be null, got %v", body)
	}
}

func TestLastTelemetryGatewayFailure(t *testing.T) {
	fake := &fakeTelemetryRepo{telemetryErr: errors.NewGatewayError("engine down", nil)}
	ts := newTestServer(t, fake, "")

	resp, err := ts.Client().Get(ts.URL + "/api/v1/last-telemetry/dev1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status=%d want=%d", resp.StatusCode, http.StatusBadGateway)
	}
}

func TestLastValueWindowParameter(t *testing.T) {
	cases := []struct {
		name  string
		query string
		want  time.Duration
	}{
		{"default", "", 7 * 24 * time.Hour},
		{"explicit", "?window=24h", 24 * time.Hour},
		{"clamped", "?window=9000h", 30 * 24 * time.Hour},
		{"garbage falls back", "?window=nonsense", 7 * 24 * time.Hour},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fake := &fakeTelemetryRepo{}
			ts := newTestServer(t, fake, "")

			resp, err := ts.Client().Get(ts.URL + "/api/v1/last-telemetry/dev1" + tc.query)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			resp.Body.Close()

			if got := fake.seenLookback(); got != tc.want {
				t.Fatalf("lookback=%v want=%v", got, tc.want)
			}
		})
	}
}
