package sheets

import "context"

// Ports for outbound spreadsheet adapters.
type (
	// ReportWriter mirrors a rendered yearly report into an external
	// spreadsheet. Rows carry the full layout, header included; values
	// only, styling stays with the local file export.
	ReportWriter interface {
		WriteReport(ctx context.Context, year int, rows [][]any) error
	}
)
