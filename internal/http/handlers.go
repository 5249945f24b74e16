package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"workjournal/internal/core"
	"workjournal/internal/export"
)

// weekPayload is the wire form of a week record.
type weekPayload struct {
	WeekStart        string `json:"weekStart,omitempty"`
	SaturdayHours    int    `json:"saturdayHours"`
	SundayHours      int    `json:"sundayHours"`
	KilometersDriven int    `json:"kilometersDriven"`
	DaysWorked       int    `json:"daysWorked"`
	HoursDriven      int    `json:"hoursDriven"`
	OtherWork        string `json:"otherWork"`
	TotalWorked      string `json:"totalWorked"`
	Paid             string `json:"paid"`
	Comment          string `json:"comment"`
	IsVacationWeek   bool   `json:"isVacationWeek"`
}

func payloadFromRecord(key core.WeekKey, rec core.WeekRecord) weekPayload {
	return weekPayload{
		WeekStart:        key.String(),
		SaturdayHours:    rec.SaturdayHours,
		SundayHours:      rec.SundayHours,
		KilometersDriven: rec.KilometersDriven,
		DaysWorked:       rec.DaysWorked,
		HoursDriven:      rec.HoursDriven,
		OtherWork:        rec.OtherWork,
		TotalWorked:      rec.TotalWorked,
		Paid:             rec.Paid,
		Comment:          rec.Comment,
		IsVacationWeek:   rec.IsVacationWeek,
	}
}

func (p weekPayload) record() core.WeekRecord {
	return core.WeekRecord{
		SaturdayHours:    p.SaturdayHours,
		SundayHours:      p.SundayHours,
		KilometersDriven: p.KilometersDriven,
		DaysWorked:       p.DaysWorked,
		HoursDriven:      p.HoursDriven,
		OtherWork:        p.OtherWork,
		TotalWorked:      p.TotalWorked,
		Paid:             p.Paid,
		Comment:          p.Comment,
		IsVacationWeek:   p.IsVacationWeek,
	}
}

// handleSaveWeek stores the record for the week containing the path date.
// The stored key is the week's Saturday, whatever day was addressed.
func (s *Server) handleSaveWeek(w http.ResponseWriter, r *http.Request) {
	key, err := core.ParseWeekKey(r.PathValue("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	var payload weekPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.service.SaveWeek(r.Context(), key, payload.record()); err != nil {
		if errors.Is(err, core.ErrNegativeValue) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Failed to save week", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save week")
		return
	}

	writeJSON(w, http.StatusOK, payloadFromRecord(core.NewWeekKey(key.Time), payload.record()))
}

func (s *Server) handleGetWeek(w http.ResponseWriter, r *http.Request) {
	key, err := core.ParseWeekKey(r.PathValue("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	rec, err := s.service.LoadWeek(r.Context(), key)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load week", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load week")
		return
	}
	if rec == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, payloadFromRecord(core.NewWeekKey(key.Time), *rec))
}

func (s *Server) handleGetYear(w http.ResponseWriter, r *http.Request) {
	year, ok := parseYear(w, r)
	if !ok {
		return
	}

	records, err := s.service.LoadYear(r.Context(), year)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load year", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load year")
		return
	}

	payloads := make([]weekPayload, 0, len(records))
	for key, rec := range records {
		payloads = append(payloads, payloadFromRecord(key, rec))
	}
	sortPayloads(payloads)

	writeJSON(w, http.StatusOK, map[string]any{
		"year":  year,
		"weeks": payloads,
	})
}

// handleExport regenerates the year's spreadsheet. With a queue
// configured the request is handed to the worker; otherwise it runs
// inline.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	year, ok := parseYear(w, r)
	if !ok {
		return
	}

	if s.queue != nil {
		if err := s.queue.PublishExportRequest(r.Context(), year); err != nil {
			slog.ErrorContext(r.Context(), "Failed to queue export", "year", year, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to queue export")
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]any{"year": year, "status": "queued"})
		return
	}

	path, err := s.service.ExportYear(r.Context(), year)
	if err != nil {
		if errors.Is(err, export.ErrDestinationUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "no export folder granted")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to export year", "year", year, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to export year")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"year": year, "path": path})
}

func (s *Server) handleGrantFolder(w http.ResponseWriter, r *http.Request) {
	if s.grant == nil {
		writeError(w, http.StatusConflict, "export folder is fixed by configuration")
		return
	}

	var body struct {
		Folder string `json:"folder"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Folder == "" {
		writeError(w, http.StatusBadRequest, "folder is required")
		return
	}

	s.grant.Grant(body.Folder)
	slog.InfoContext(r.Context(), "Export folder granted", "folder", body.Folder)
	writeJSON(w, http.StatusOK, map[string]any{"folder": body.Folder})
}

func (s *Server) handleRevokeFolder(w http.ResponseWriter, r *http.Request) {
	if s.grant == nil {
		writeError(w, http.StatusConflict, "export folder is fixed by configuration")
		return
	}
	s.grant.Revoke()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	title := ""
	if s.title != nil {
		title = s.title.Get()
	}
	writeJSON(w, http.StatusOK, map[string]any{"title": title})
}
