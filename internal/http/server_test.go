package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sanko/internal/core"
	"sanko/internal/state"
	"sanko/internal/storage"
)

func emptyState() core.AppState {
	return core.AppState{Groups: []core.Group{}, CurrentView: core.ViewDashboard}
}

func newTestServer(t *testing.T, initial core.AppState) (*Server, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	eng := state.New(initial)
	srv := NewServer("127.0.0.1:0", eng, store, emptyState, time.Minute, nil)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, store
}

func doRequest(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func createGroup(t *testing.T, srv *Server, name string, contribution float64) string {
	t.Helper()
	rec := doRequest(t, srv, http.MethodPost, "/api/groups", map[string]any{
		"name":                  name,
		"targetAmount":          500000,
		"contributionAmount":    contribution,
		"contributionFrequency": "monthly",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create group: status %d, body %s", rec.Code, rec.Body.String())
	}
	return decodeBody[map[string]string](t, rec)["id"]
}

func TestGroupLifecycle(t *testing.T) {
	srv, _ := newTestServer(t, emptyState())

	id := createGroup(t, srv, "Ajo Circle", 50000)
	if id == "" {
		t.Fatal("create group returned empty id")
	}

	for _, name := range []string{"Adaeze", "Bola"} {
		rec := doRequest(t, srv, http.MethodPost, "/api/groups/"+id+"/members", map[string]any{"name": name})
		if rec.Code != http.StatusCreated {
			t.Fatalf("add member %s: status %d, body %s", name, rec.Code, rec.Body.String())
		}
	}

	rec := doRequest(t, srv, http.MethodGet, "/api/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: status %d", rec.Code)
	}
	m := decodeBody[metricsResponse](t, rec)
	if m.ExpectedMonthly != 100000 {
		t.Errorf("expectedMonthly = %v, want 100000", m.ExpectedMonthly)
	}
	if m.ExpectedMonthlyDisplay != "₦100,000" {
		t.Errorf("expectedMonthlyDisplay = %q, want ₦100,000", m.ExpectedMonthlyDisplay)
	}
	if m.Groups != 1 {
		t.Errorf("groups = %d, want 1", m.Groups)
	}

	snap := decodeBody[core.AppState](t, doRequest(t, srv, http.MethodGet, "/api/state", nil))
	memberID := snap.Groups[0].Members[0].ID

	rec = doRequest(t, srv, http.MethodPost, "/api/groups/"+id+"/payments", map[string]any{
		"memberId": memberID,
		"amount":   50000,
		"type":     "contribution",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add payment: status %d, body %s", rec.Code, rec.Body.String())
	}

	m = decodeBody[metricsResponse](t, doRequest(t, srv, http.MethodGet, "/api/metrics", nil))
	if m.TotalBalance != 50000 {
		t.Errorf("totalBalance after payment = %v, want 50000", m.TotalBalance)
	}
}

func TestUnknownGroupReturnsNotFound(t *testing.T) {
	srv, _ := newTestServer(t, emptyState())

	rec := doRequest(t, srv, http.MethodPost, "/api/groups/ghost/members", map[string]any{"name": "Chidi"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("add member to unknown group: status %d, want 404", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodPost, "/api/groups/ghost/payments", map[string]any{
		"memberId": "m1", "amount": 100, "type": "contribution",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("add payment to unknown group: status %d, want 404", rec.Code)
	}

	snap := decodeBody[core.AppState](t, doRequest(t, srv, http.MethodGet, "/api/state", nil))
	if len(snap.Groups) != 0 {
		t.Errorf("state gained %d groups from rejected writes", len(snap.Groups))
	}
}

func TestPaymentAmountAcceptsFormattedString(t *testing.T) {
	srv, _ := newTestServer(t, emptyState())
	id := createGroup(t, srv, "Esusu", 25000)

	doRequest(t, srv, http.MethodPost, "/api/groups/"+id+"/members", map[string]any{"name": "Femi"})
	snap := decodeBody[core.AppState](t, doRequest(t, srv, http.MethodGet, "/api/state", nil))
	memberID := snap.Groups[0].Members[0].ID

	rec := doRequest(t, srv, http.MethodPost, "/api/groups/"+id+"/payments", map[string]any{
		"memberId": memberID,
		"amount":   "₦25,000",
		"type":     "contribution",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("payment with string amount: status %d, body %s", rec.Code, rec.Body.String())
	}

	snap = decodeBody[core.AppState](t, doRequest(t, srv, http.MethodGet, "/api/state", nil))
	if got := snap.Groups[0].CurrentAmount; got != 25000 {
		t.Errorf("currentAmount = %v, want 25000", got)
	}
}

func TestCreateGroupValidation(t *testing.T) {
	srv, _ := newTestServer(t, emptyState())

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing name", map[string]any{
			"targetAmount": 1000, "contributionAmount": 100, "contributionFrequency": "monthly",
		}},
		{"bad frequency", map[string]any{
			"name": "X", "targetAmount": 1000, "contributionAmount": 100, "contributionFrequency": "daily",
		}},
		{"zero target", map[string]any{
			"name": "X", "targetAmount": 0, "contributionAmount": 100, "contributionFrequency": "monthly",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodPost, "/api/groups", tt.body)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Errorf("status %d, want 422", rec.Code)
			}
		})
	}
}

func TestSetViewEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, emptyState())

	rec := doRequest(t, srv, http.MethodPost, "/api/view", map[string]string{"view": "planner"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid view: status %d, want 422", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodPost, "/api/view", map[string]string{"view": "groups"})
	if rec.Code != http.StatusOK {
		t.Fatalf("set view: status %d", rec.Code)
	}
	snap := decodeBody[core.AppState](t, doRequest(t, srv, http.MethodGet, "/api/state", nil))
	if snap.CurrentView != core.ViewGroups {
		t.Errorf("currentView = %q, want groups", snap.CurrentView)
	}
}

type groupEnvelope struct {
	Group *core.Group `json:"group"`
}

func TestSelectedGroupEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, emptyState())

	env := decodeBody[groupEnvelope](t, doRequest(t, srv, http.MethodGet, "/api/selected-group", nil))
	if env.Group != nil {
		t.Errorf("initial selection = %+v, want null", env.Group)
	}

	id := createGroup(t, srv, "Village Meeting", 10000)
	rec := doRequest(t, srv, http.MethodPost, "/api/selected-group", map[string]any{"groupId": id})
	if rec.Code != http.StatusOK {
		t.Fatalf("select group: status %d", rec.Code)
	}
	env = decodeBody[groupEnvelope](t, doRequest(t, srv, http.MethodGet, "/api/selected-group", nil))
	if env.Group == nil || env.Group.ID != id {
		t.Errorf("selection = %+v, want group %s", env.Group, id)
	}

	// A dangling id is stored but resolves to null.
	doRequest(t, srv, http.MethodPost, "/api/selected-group", map[string]any{"groupId": "ghost"})
	env = decodeBody[groupEnvelope](t, doRequest(t, srv, http.MethodGet, "/api/selected-group", nil))
	if env.Group != nil {
		t.Errorf("dangling selection = %+v, want null", env.Group)
	}

	doRequest(t, srv, http.MethodPost, "/api/selected-group", map[string]any{"groupId": nil})
	env = decodeBody[groupEnvelope](t, doRequest(t, srv, http.MethodGet, "/api/selected-group", nil))
	if env.Group != nil {
		t.Errorf("cleared selection = %+v, want null", env.Group)
	}
}

func TestMetricsMemoizedUntilMutation(t *testing.T) {
	srv, _ := newTestServer(t, emptyState())
	createGroup(t, srv, "First", 1000)

	before := decodeBody[metricsResponse](t, doRequest(t, srv, http.MethodGet, "/api/metrics", nil))

	// Mutating behind the API does not invalidate the memo.
	srv.engine.CreateGroup(core.GroupSpec{
		Name: "Backdoor", TargetAmount: 1, ContributionAmount: 1,
		ContributionFrequency: core.Monthly, Status: core.GroupActive,
	})
	cached := decodeBody[metricsResponse](t, doRequest(t, srv, http.MethodGet, "/api/metrics", nil))
	if cached.Groups != before.Groups {
		t.Errorf("groups = %d, want cached %d", cached.Groups, before.Groups)
	}

	// A mutation through the API does.
	createGroup(t, srv, "Second", 1000)
	after := decodeBody[metricsResponse](t, doRequest(t, srv, http.MethodGet, "/api/metrics", nil))
	if after.Groups != 3 {
		t.Errorf("groups after invalidation = %d, want 3", after.Groups)
	}
}

func TestResetClearsStoreAndState(t *testing.T) {
	srv, store := newTestServer(t, emptyState())
	createGroup(t, srv, "Doomed", 5000)
	if err := store.Save(context.Background(), srv.engine.Snapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}

	rec := doRequest(t, srv, http.MethodPost, "/api/reset", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset: status %d, body %s", rec.Code, rec.Body.String())
	}

	if _, ok, _ := store.Load(context.Background()); ok {
		t.Error("store still holds a snapshot after reset")
	}
	snap := decodeBody[core.AppState](t, doRequest(t, srv, http.MethodGet, "/api/state", nil))
	if len(snap.Groups) != 0 || snap.CurrentView != core.ViewDashboard {
		t.Errorf("state after reset = %+v, want empty dashboard", snap)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, emptyState())

	if rec := doRequest(t, srv, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Errorf("healthz: status %d", rec.Code)
	}
	if rec := doRequest(t, srv, http.MethodGet, "/readyz", nil); rec.Code != http.StatusOK {
		t.Errorf("readyz: status %d", rec.Code)
	}
}

func TestIndexRenders(t *testing.T) {
	srv, _ := newTestServer(t, emptyState())
	createGroup(t, srv, "Harvest Club", 2000)

	rec := doRequest(t, srv, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("index: status %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("Harvest Club")) {
		t.Error("index page does not list the group")
	}
}
