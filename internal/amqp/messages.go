package amqp

import (
	"encoding/json"
	"time"
)

// ExportRequest asks the worker to regenerate one year's report. The
// worker reloads everything from the database, so the year is all the
// message needs to carry.
type ExportRequest struct {
	Year        int       `json:"year"`
	RequestedAt time.Time `json:"requested_at"`
}

func NewExportRequest(year int) *ExportRequest {
	return &ExportRequest{
		Year:        year,
		RequestedAt: time.Now(),
	}
}

func (m *ExportRequest) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExportRequestFromJSON(data []byte) (*ExportRequest, error) {
	var msg ExportRequest
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
