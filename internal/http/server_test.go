package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"workjournal/internal/export"
	"workjournal/internal/notify"
	"workjournal/internal/services"
	"workjournal/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *export.SessionGrant, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := storage.NewRepository(filepath.Join(dir, "workjournal.db"))
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	grant := &export.SessionGrant{}
	title := notify.NewTitle()
	svc := services.NewJournalService(repo, nil, export.NewFileSink(grant), nil, title)
	return NewServer(":0", svc, nil, grant, title), grant, dir
}

func doRequest(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func TestSaveAndGetWeek(t *testing.T) {
	s, _, _ := newTestServer(t)

	// Saving by a Wednesday stores under that week's Saturday.
	rec := doRequest(t, s, http.MethodPut, "/api/weeks/2024-01-10",
		`{"saturdayHours":8,"paid":"400"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("save status = %d body=%s", rec.Code, rec.Body)
	}
	var saved weekPayload
	if err := json.NewDecoder(rec.Body).Decode(&saved); err != nil {
		t.Fatalf("decode save response: %v", err)
	}
	if saved.WeekStart != "2024-01-06" {
		t.Fatalf("weekStart = %s, want 2024-01-06", saved.WeekStart)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/weeks/2024-01-06", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var got weekPayload
	json.NewDecoder(rec.Body).Decode(&got)
	if got.SaturdayHours != 8 || got.Paid != "400" {
		t.Fatalf("got %+v", got)
	}
}

func TestGetWeekAbsent(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/weeks/2024-01-06", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}

func TestSaveWeekBadInput(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPut, "/api/weeks/not-a-date", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad date status = %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodPut, "/api/weeks/2024-01-06", `{"sundayHours":-1}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("negative value status = %d", rec.Code)
	}
}

func TestGetYear(t *testing.T) {
	s, _, _ := newTestServer(t)

	doRequest(t, s, http.MethodPut, "/api/weeks/2024-01-06", `{"daysWorked":5}`)
	doRequest(t, s, http.MethodPut, "/api/weeks/2024-02-03", `{"daysWorked":4}`)

	rec := doRequest(t, s, http.MethodGet, "/api/weeks?year=2024", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Year  int           `json:"year"`
		Weeks []weekPayload `json:"weeks"`
	}
	json.NewDecoder(rec.Body).Decode(&body)
	if body.Year != 2024 || len(body.Weeks) != 2 {
		t.Fatalf("year=%d weeks=%d", body.Year, len(body.Weeks))
	}
	if body.Weeks[0].WeekStart != "2024-01-06" {
		t.Fatalf("weeks not sorted: %s first", body.Weeks[0].WeekStart)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/weeks?year=abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid year status = %d", rec.Code)
	}
}

func TestExportRequiresGrantedFolder(t *testing.T) {
	s, _, dir := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/export?year=2024", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("ungranted export status = %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodPost, "/api/export-folder",
		`{"folder":"`+filepath.Join(dir, "exports")+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("grant status = %d body=%s", rec.Code, rec.Body)
	}

	rec = doRequest(t, s, http.MethodPost, "/api/export?year=2024", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d body=%s", rec.Code, rec.Body)
	}
	var body struct {
		Path string `json:"path"`
	}
	json.NewDecoder(rec.Body).Decode(&body)
	if filepath.Base(body.Path) != "WorkJournal_2024.xlsx" {
		t.Fatalf("path = %s", body.Path)
	}

	// Revoking shuts exports down again.
	rec = doRequest(t, s, http.MethodDelete, "/api/export-folder", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("revoke status = %d", rec.Code)
	}
	rec = doRequest(t, s, http.MethodPost, "/api/export?year=2024", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("revoked export status = %d", rec.Code)
	}
}

func TestStatusReflectsLastSave(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Title string `json:"title"`
	}
	json.NewDecoder(rec.Body).Decode(&body)
	if body.Title != "" {
		t.Fatalf("initial title = %q", body.Title)
	}

	doRequest(t, s, http.MethodPut, "/api/weeks/2024-01-10", `{"daysWorked":5}`)

	rec = doRequest(t, s, http.MethodGet, "/api/status", "")
	json.NewDecoder(rec.Body).Decode(&body)
	if body.Title != "Savaitė 2024-01-06" {
		t.Fatalf("title = %q", body.Title)
	}
}

func TestHealthz(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz = %d %q", rec.Code, rec.Body)
	}
}

func TestExportWithDirectGrant(t *testing.T) {
	s, grant, dir := newTestServer(t)
	grant.Grant(filepath.Join(dir, "direct"))

	rec := doRequest(t, s, http.MethodPost, "/api/export?year=2025", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export with direct grant = %d", rec.Code)
	}
}
