package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Smartsec916/Observe-and-Report-sub001/internal/server/config"
	"github.com/Smartsec916/Observe-and-Report-sub001/internal/server/repository/sqlite"
	"github.com/Smartsec916/Observe-and-Report-sub001/internal/server/service"
)

var testServerSeq int

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	return newTestServerTTL(t, 24*time.Hour)
}

func newTestServerTTL(t *testing.T, ttl time.Duration) http.Handler {
	t.Helper()
	return newTestServerLimits(t, ttl, 1<<20)
}

func newTestServerLimits(t *testing.T, ttl time.Duration, maxBytes int64) http.Handler {
	t.Helper()
	testServerSeq++
	dsn := fmt.Sprintf("file:httpapi_%s_%d?mode=memory&cache=shared", t.Name(), testServerSeq)
	repo, err := sqlite.New(dsn)
	if err != nil {
		t.Fatalf("repo: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	svcs := service.NewServices(repo, config.Config{
		JWTSecret:         "test",
		SessionTTL:        ttl,
		BootstrapUser:     "admin",
		BootstrapPassword: "password123",
		MaxRequestBytes:   maxBytes,
	})
	if _, err := svcs.Auth.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return NewRouter(svcs, nil, maxBytes)
}

func doJSON(t *testing.T, ts http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		buf = bytes.NewBuffer(b)
	} else {
		buf = &bytes.Buffer{}
	}
	req, _ := http.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	ts.ServeHTTP(rr, req)
	return rr
}

func login(t *testing.T, ts http.Handler, username, password string) string {
	t.Helper()
	rr := doJSON(t, ts, "POST", "/login", map[string]string{"username": username, "password": password}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("login %s: %d %s", username, rr.Code, rr.Body.String())
	}
	var out struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &out)
	if out.Token == "" {
		t.Fatalf("empty token")
	}
	return out.Token
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	rr := doJSON(t, ts, "GET", "/health", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("health status: %d", rr.Code)
	}
}

func TestFirstBootSetupFlow(t *testing.T) {
	ts := newTestServer(t)

	// default admin logs in and is flagged for setup
	adminToken := login(t, ts, "admin", "password123")
	rr := doJSON(t, ts, "GET", "/current-user", nil, bearer(adminToken))
	if rr.Code != http.StatusOK {
		t.Fatalf("current-user: %d", rr.Code)
	}
	var cu struct {
		User          map[string]any `json:"user"`
		RequiresSetup bool           `json:"requiresSetup"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &cu)
	if cu.User == nil || !cu.RequiresSetup {
		t.Fatalf("admin setup flag: %+v", cu)
	}

	// admin creates a personal account while authenticated
	rr = doJSON(t, ts, "POST", "/create-account", map[string]string{"username": "alice", "password": "secret1"}, bearer(adminToken))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create-account: %d %s", rr.Code, rr.Body.String())
	}

	// alice logs in and needs no setup
	aliceToken := login(t, ts, "alice", "secret1")
	rr = doJSON(t, ts, "GET", "/current-user", nil, bearer(aliceToken))
	_ = json.Unmarshal(rr.Body.Bytes(), &cu)
	if cu.User == nil || cu.RequiresSetup {
		t.Fatalf("alice setup flag: %+v", cu)
	}
	if cu.User["username"] != "alice" {
		t.Fatalf("wrong user: %+v", cu.User)
	}
}

func TestObservationLifecycle(t *testing.T) {
	ts := newTestServer(t)
	token := login(t, ts, "admin", "password123")
	authz := bearer(token)

	body := map[string]any{
		"date":    "2024-01-15",
		"time":    "09:30",
		"person":  map[string]string{"name": "John Doe", "hairColor": "brown"},
		"vehicle": map[string]string{"make": "Toyota", "licensePlate": "ABC123"},
		"location": map[string]any{
			"streetNumber": "42", "streetName": "Oak Ave", "city": "Portland", "state": "OR", "zipCode": "97201",
		},
	}
	rr := doJSON(t, ts, "POST", "/observations", body, authz)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rr.Code, rr.Body.String())
	}
	var rec struct {
		ID       int64 `json:"id"`
		Location struct {
			FormattedAddress string `json:"formattedAddress"`
		} `json:"location"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &rec)
	if rec.ID != 1 {
		t.Fatalf("first id: %d", rec.ID)
	}
	if rec.Location.FormattedAddress != "42 Oak Ave, Portland, OR 97201" {
		t.Fatalf("formatted address: %q", rec.Location.FormattedAddress)
	}

	rr = doJSON(t, ts, "GET", "/observations", nil, authz)
	if rr.Code != http.StatusOK {
		t.Fatalf("list: %d", rr.Code)
	}

	rr = doJSON(t, ts, "GET", "/observations/1", nil, authz)
	if rr.Code != http.StatusOK {
		t.Fatalf("get: %d", rr.Code)
	}

	// partial update touches only the supplied block
	rr = doJSON(t, ts, "PATCH", "/observations/1", map[string]any{
		"person": map[string]string{"name": "Jane Roe"},
	}, authz)
	if rr.Code != http.StatusOK {
		t.Fatalf("patch: %d %s", rr.Code, rr.Body.String())
	}
	var patched struct {
		Person  map[string]string `json:"person"`
		Vehicle map[string]string `json:"vehicle"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &patched)
	if patched.Person["name"] != "Jane Roe" || patched.Vehicle["make"] != "Toyota" {
		t.Fatalf("merge: %+v", patched)
	}

	rr = doJSON(t, ts, "PATCH", "/observations/999", map[string]any{"time": "10:00"}, authz)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("patch unknown: %d", rr.Code)
	}
	rr = doJSON(t, ts, "GET", "/observations/999", nil, authz)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("get unknown: %d", rr.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	ts := newTestServer(t)
	token := login(t, ts, "admin", "password123")
	authz := bearer(token)

	for _, d := range []string{"2024-01-15", "2024-02-01"} {
		rr := doJSON(t, ts, "POST", "/observations", map[string]any{"date": d, "time": "12:00"}, authz)
		if rr.Code != http.StatusCreated {
			t.Fatalf("seed: %d", rr.Code)
		}
	}

	rr := doJSON(t, ts, "POST", "/observations/search", map[string]string{"dateFrom": "2024-01-01", "dateTo": "2024-01-31"}, authz)
	if rr.Code != http.StatusOK {
		t.Fatalf("search: %d", rr.Code)
	}
	var results []map[string]any
	_ = json.Unmarshal(rr.Body.Bytes(), &results)
	if len(results) != 1 || results[0]["date"] != "2024-01-15" {
		t.Fatalf("search results: %+v", results)
	}

	// empty filter returns everything
	rr = doJSON(t, ts, "POST", "/observations/search", map[string]string{}, authz)
	_ = json.Unmarshal(rr.Body.Bytes(), &results)
	if len(results) != 2 {
		t.Fatalf("empty filter: %+v", results)
	}
}

func TestExportImportEndpoints(t *testing.T) {
	ts := newTestServer(t)
	token := login(t, ts, "admin", "password123")
	authz := bearer(token)

	rr := doJSON(t, ts, "POST", "/observations", map[string]any{"date": "2024-01-15", "time": "09:30"}, authz)
	if rr.Code != http.StatusCreated {
		t.Fatalf("seed: %d", rr.Code)
	}

	rr = doJSON(t, ts, "POST", "/observations/export", nil, authz)
	if rr.Code != http.StatusOK {
		t.Fatalf("export: %d %s", rr.Code, rr.Body.String())
	}
	if cd := rr.Header().Get("Content-Disposition"); cd != `attachment; filename="observations.json"` {
		t.Fatalf("content disposition: %q", cd)
	}
	exported := rr.Body.String()

	rr = doJSON(t, ts, "POST", "/observations/import", map[string]string{"data": exported}, authz)
	if rr.Code != http.StatusOK {
		t.Fatalf("import: %d %s", rr.Code, rr.Body.String())
	}
	var result struct {
		ImportedCount int      `json:"importedCount"`
		Errors        []string `json:"errors"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &result)
	if result.ImportedCount != 1 || len(result.Errors) != 0 {
		t.Fatalf("import result: %+v", result)
	}

	rr = doJSON(t, ts, "GET", "/observations", nil, authz)
	var list []map[string]any
	_ = json.Unmarshal(rr.Body.Bytes(), &list)
	if len(list) != 2 {
		t.Fatalf("records after import: %d", len(list))
	}
}
