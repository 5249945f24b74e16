package http

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// parseYear reads the year query parameter, defaulting to the current
// year. A malformed value is a client error.
func parseYear(w http.ResponseWriter, r *http.Request) (int, bool) {
	v := strings.TrimSpace(r.URL.Query().Get("year"))
	if v == "" {
		return time.Now().UTC().Year(), true
	}
	year, err := strconv.Atoi(v)
	if err != nil || year < 1 || year > 9999 {
		writeError(w, http.StatusBadRequest, "invalid year")
		return 0, false
	}
	return year, true
}

func sortPayloads(payloads []weekPayload) {
	sort.Slice(payloads, func(i, j int) bool {
		return payloads[i].WeekStart < payloads[j].WeekStart
	})
}
