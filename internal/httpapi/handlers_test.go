package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"callboard/internal/appointments"
	"callboard/internal/audit"
	"callboard/internal/calls"
	"callboard/internal/contacts"
	"callboard/internal/customers"
	"callboard/internal/detail"
	"callboard/internal/lifecycle"
	"callboard/internal/listview"
	"callboard/internal/reporting"
	"callboard/internal/store"
	"callboard/internal/timewindow"

	"github.com/gin-gonic/gin"
)

func boardTime(t *testing.T) (*time.Location, time.Time) {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}
	return loc, time.Date(2024, time.June, 15, 12, 0, 0, 0, loc)
}

func newTestRouter(t *testing.T, mem *store.Memory) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	loc, now := boardTime(t)
	resolver := timewindow.NewResolver(loc, func() time.Time { return now })

	filter := NewContactFilter()
	callsCtrl := listview.New(resolver, func(ctx context.Context, w timewindow.Window) ([]calls.Call, error) {
		return mem.ListCalls(ctx, store.CallQuery{Window: &w})
	}, nil)
	contactsCtrl := listview.New(resolver, func(ctx context.Context, w timewindow.Window) ([]contacts.Contact, error) {
		return mem.ListContacts(ctx, store.ContactQuery{Window: &w, Status: filter.Get()})
	}, nil)
	apptsCtrl := listview.New(resolver, func(ctx context.Context, w timewindow.Window) ([]appointments.Appointment, error) {
		return mem.ListAppointments(ctx, store.AppointmentQuery{Window: &w, EarliestFirst: true})
	}, nil)

	h := Handlers{
		Calls:         callsCtrl,
		Contacts:      contactsCtrl,
		Appointments:  apptsCtrl,
		ContactFilter: filter,
		Lifecycle:     lifecycle.New(mem, nil, callsCtrl, contactsCtrl, apptsCtrl),
		Detail:        detail.NewAggregator(mem),
		Store:         mem,
		Summary:       reporting.NewService(mem, resolver),
		Audit:         audit.NewService(audit.NewMemoryRepo()),
		Expansion:     detail.NewExpansion(),
	}

	r := gin.New()
	h.Register(r.Group("/v1"))
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, out
}

func seedCallsAroundToday(t *testing.T, mem *store.Memory) {
	loc, _ := boardTime(t)
	mem.Calls = []calls.Call{
		{ID: "c-midnight", PhoneNumber: "555-0001", CallTime: time.Date(2024, time.June, 15, 0, 0, 0, 0, loc), FollowupStatus: calls.FollowupPending, NeedsFollowup: true},
		{ID: "c-late", PhoneNumber: "555-0002", CallTime: time.Date(2024, time.June, 15, 23, 59, 59, 0, loc), FollowupStatus: calls.FollowupPending, NeedsFollowup: true},
		{ID: "c-tomorrow", PhoneNumber: "555-0003", CallTime: time.Date(2024, time.June, 16, 0, 0, 0, 0, loc), FollowupStatus: calls.FollowupPending, NeedsFollowup: true},
	}
}

func TestListCalls_TodayWindow(t *testing.T) {
	mem := store.NewMemory()
	seedCallsAroundToday(t, mem)
	r := newTestRouter(t, mem)

	w, body := doJSON(t, r, http.MethodGet, "/v1/calls?timeframe=today", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	items := body["items"].([]any)
	if len(items) != 2 {
		t.Fatalf("expected the two same-day calls, got %d", len(items))
	}
	first := items[0].(map[string]any)
	if first["id"] != "c-late" {
		t.Fatalf("expected most-recent-first, got %v", first["id"])
	}
}

func TestListCalls_InvalidCustomRange(t *testing.T) {
	mem := store.NewMemory()
	r := newTestRouter(t, mem)

	w, _ := doJSON(t, r, http.MethodGet, "/v1/calls?timeframe=custom&start=2024-06-10&end=2024-06-01", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for inverted range, got %d", w.Code)
	}
}

func TestListCalls_UnknownTimeframeDoesNotPoisonView(t *testing.T) {
	mem := store.NewMemory()
	seedCallsAroundToday(t, mem)
	r := newTestRouter(t, mem)

	w, _ := doJSON(t, r, http.MethodGet, "/v1/calls?timeframe=bogus", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown timeframe, got %d", w.Code)
	}

	// The refused request must leave the view on its previous selection.
	w, body := doJSON(t, r, http.MethodGet, "/v1/calls", "")
	if w.Code != http.StatusOK {
		t.Fatalf("plain fetch after refused timeframe: %d, body %s", w.Code, w.Body.String())
	}
	if body["timeframe"] != "today" {
		t.Fatalf("selection changed by refused request: %v", body["timeframe"])
	}
	if len(body["items"].([]any)) != 2 {
		t.Fatalf("expected today's calls, got %v", body["items"])
	}
}

func TestSetCallFollowup_PersistsAndReQueries(t *testing.T) {
	mem := store.NewMemory()
	seedCallsAroundToday(t, mem)
	r := newTestRouter(t, mem)

	// Prime the controller's list.
	doJSON(t, r, http.MethodGet, "/v1/calls?timeframe=today", "")

	w, _ := doJSON(t, r, http.MethodPost, "/v1/calls/c-late/followup", `{"status":"Booked"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	got, err := mem.GetCall(context.Background(), "c-late")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.FollowupStatus != calls.FollowupBooked || got.NeedsFollowup {
		t.Fatalf("want Booked/false, got %s/%v", got.FollowupStatus, got.NeedsFollowup)
	}

	// The authoritative re-read must be visible on the next list fetch.
	_, body := doJSON(t, r, http.MethodGet, "/v1/calls", "")
	for _, raw := range body["items"].([]any) {
		item := raw.(map[string]any)
		if item["id"] == "c-late" && item["needs_followup"] == true {
			t.Fatalf("list still shows stale derived flag: %v", item)
		}
	}
}

func TestSetCallFollowup_UnknownStatus(t *testing.T) {
	mem := store.NewMemory()
	seedCallsAroundToday(t, mem)
	r := newTestRouter(t, mem)

	w, _ := doJSON(t, r, http.MethodPost, "/v1/calls/c-late/followup", `{"status":"Archived"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestListContacts_StatusFilter(t *testing.T) {
	loc, _ := boardTime(t)
	created := time.Date(2024, time.June, 15, 9, 0, 0, 0, loc)
	mem := store.NewMemory()
	mem.Contacts = []contacts.Contact{
		{ID: "ct1", Name: "A", Status: contacts.StatusNeedsAttention, CreatedAt: created},
		{ID: "ct2", Name: "B", Status: contacts.StatusBooked, CreatedAt: created},
	}
	r := newTestRouter(t, mem)

	_, body := doJSON(t, r, http.MethodGet, "/v1/contacts?status=Booked", "")
	items := body["items"].([]any)
	if len(items) != 1 || items[0].(map[string]any)["id"] != "ct2" {
		t.Fatalf("unexpected items: %v", items)
	}

	_, body = doJSON(t, r, http.MethodGet, "/v1/contacts?status=all", "")
	if len(body["items"].([]any)) != 2 {
		t.Fatalf("status=all must not filter")
	}

	w, _ := doJSON(t, r, http.MethodGet, "/v1/contacts?status=Sleeping", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", w.Code)
	}
}

func TestCompleteAppointment_Lifecycle(t *testing.T) {
	loc, _ := boardTime(t)
	at := time.Date(2024, time.June, 15, 10, 0, 0, 0, loc)
	mem := store.NewMemory()
	mem.Appointments = []appointments.Appointment{
		{ID: "a-booked", Status: appointments.StatusBooked, AppointmentTime: at},
		{ID: "a-cancelled", Status: appointments.StatusCancelled, AppointmentTime: at},
	}
	r := newTestRouter(t, mem)

	w, body := doJSON(t, r, http.MethodPost, "/v1/appointments/a-booked/complete", "")
	if w.Code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("unexpected response: %d %v", w.Code, body)
	}
	got, _ := mem.GetAppointment(context.Background(), "a-booked")
	if got.Status != appointments.StatusCompleted {
		t.Fatalf("status = %s", got.Status)
	}

	// Non-Booked: caller sees a no-op, status untouched.
	w, body = doJSON(t, r, http.MethodPost, "/v1/appointments/a-cancelled/complete", "")
	if w.Code != http.StatusOK || body["status"] != "unchanged" {
		t.Fatalf("unexpected response: %d %v", w.Code, body)
	}
	got, _ = mem.GetAppointment(context.Background(), "a-cancelled")
	if got.Status != appointments.StatusCancelled {
		t.Fatalf("refused completion must not change status, got %s", got.Status)
	}

	w, _ = doJSON(t, r, http.MethodPost, "/v1/appointments/a-missing/complete", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestContactDetail_WithHistoryAndLatestCall(t *testing.T) {
	loc, _ := boardTime(t)
	mem := store.NewMemory()
	mem.Contacts = []contacts.Contact{{ID: "ct1", Name: "Dana", Status: contacts.StatusContacted}}
	mem.Calls = []calls.Call{
		{ID: "c-old", ContactID: "ct1", CallTime: time.Date(2024, time.June, 10, 9, 0, 0, 0, loc)},
		{ID: "c-new", ContactID: "ct1", CallTime: time.Date(2024, time.June, 14, 9, 0, 0, 0, loc), ServiceInterest: "install"},
	}
	r := newTestRouter(t, mem)

	w, body := doJSON(t, r, http.MethodGet, "/v1/contacts/ct1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	latest := body["latest_call"].(map[string]any)
	if latest["id"] != "c-new" || latest["service_interest"] != "install" {
		t.Fatalf("unexpected latest call: %v", latest)
	}
	if len(body["expanded"].([]any)) != 0 {
		t.Fatalf("nothing toggled yet, got %v", body["expanded"])
	}

	// Call history rows participate in the same expansion state.
	doJSON(t, r, http.MethodPost, "/v1/history/c-old/toggle", "")
	_, body = doJSON(t, r, http.MethodGet, "/v1/contacts/ct1", "")
	expanded := body["expanded"].([]any)
	if len(expanded) != 1 || expanded[0] != "c-old" {
		t.Fatalf("expected c-old expanded, got %v", expanded)
	}

	w, _ = doJSON(t, r, http.MethodGet, "/v1/contacts/nope", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestHistoryExpansion_NeverTouchesStore(t *testing.T) {
	loc, _ := boardTime(t)
	at := time.Date(2024, time.June, 15, 10, 0, 0, 0, loc)
	mem := store.NewMemory()
	mem.Customers = []customers.Customer{{ID: "cu1", Name: "Sam"}}
	mem.Appointments = []appointments.Appointment{
		{ID: "a1", CustomerID: "cu1", Status: appointments.StatusBooked, AppointmentTime: at},
		{ID: "a2", CustomerID: "cu1", Status: appointments.StatusCompleted, AppointmentTime: at.Add(time.Hour)},
	}
	r := newTestRouter(t, mem)

	doJSON(t, r, http.MethodPost, "/v1/history/expand-all", `{"ids":["a1","a2"]}`)
	_, body := doJSON(t, r, http.MethodPost, "/v1/history/a2/toggle", "")
	if body["expanded"] != false {
		t.Fatalf("toggle after expand-all should collapse a2")
	}

	// Expanding while the store is down must still work: view state only.
	mem.FailWith = context.DeadlineExceeded
	w, _ := doJSON(t, r, http.MethodPost, "/v1/history/a1/toggle", "")
	if w.Code != http.StatusOK {
		t.Fatalf("view state mutation must not depend on the store, got %d", w.Code)
	}
	mem.FailWith = nil

	_, body = doJSON(t, r, http.MethodGet, "/v1/customers/cu1", "")
	expanded := body["expanded"].([]any)
	if len(expanded) != 0 {
		t.Fatalf("a1 toggled twice should be collapsed, got %v", expanded)
	}

	doJSON(t, r, http.MethodPost, "/v1/history/a1/toggle", "")
	_, body = doJSON(t, r, http.MethodGet, "/v1/customers/cu1", "")
	expanded = body["expanded"].([]any)
	if len(expanded) != 1 || expanded[0] != "a1" {
		t.Fatalf("expected a1 expanded, got %v", expanded)
	}
}

func TestBoardSummary(t *testing.T) {
	mem := store.NewMemory()
	seedCallsAroundToday(t, mem)
	r := newTestRouter(t, mem)

	w, body := doJSON(t, r, http.MethodGet, "/v1/summary", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	callStats := body["calls"].(map[string]any)
	if callStats["total"].(float64) != 2 {
		t.Fatalf("expected 2 calls in today's window, got %v", callStats["total"])
	}

	w, _ = doJSON(t, r, http.MethodGet, "/v1/summary?timeframe=custom&start=2024-06-10", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing end bound, got %d", w.Code)
	}
}

func TestRecentActivity_RecordsMutations(t *testing.T) {
	mem := store.NewMemory()
	seedCallsAroundToday(t, mem)
	r := newTestRouter(t, mem)

	doJSON(t, r, http.MethodPost, "/v1/calls/c-late/followup", `{"status":"Booked"}`)

	w, body := doJSON(t, r, http.MethodGet, "/v1/activity", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	items := body["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected 1 activity event, got %d", len(items))
	}
	ev := items[0].(map[string]any)
	if ev["type"] != "call_followup" || ev["record_id"] != "c-late" {
		t.Fatalf("unexpected event: %v", ev)
	}
}

func TestListCustomers(t *testing.T) {
	loc, _ := boardTime(t)
	mem := store.NewMemory()
	mem.Customers = []customers.Customer{
		{ID: "cu1", Name: "Sam", CreatedAt: time.Date(2024, time.June, 1, 0, 0, 0, 0, loc)},
		{ID: "cu2", Name: "Lee", CreatedAt: time.Date(2024, time.June, 10, 0, 0, 0, 0, loc)},
	}
	r := newTestRouter(t, mem)

	_, body := doJSON(t, r, http.MethodGet, "/v1/customers", "")
	items := body["items"].([]any)
	if len(items) != 2 || items[0].(map[string]any)["id"] != "cu2" {
		t.Fatalf("expected newest-first customers, got %v", items)
	}
}
