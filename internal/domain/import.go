package domain

// RowStatus classifies the outcome of one bulk import row. These strings
// appear verbatim in the status column of the downloadable annotated
// report.
const (
	RowInserted  = "Success"
	RowDuplicate = "Duplicate"
	RowPartial   = "Partial Success"
	RowError     = "Error"
)

// ImportReport summarizes a bulk CSV import. Inserted, Duplicates, and
// Errors always sum to Total; partially successful rows count as inserted.
// ReportFile names the stored annotated copy of the input, one status
// column appended per row.
type ImportReport struct {
	Total      int
	Inserted   int
	Duplicates int
	Errors     int
	ReportFile string
}
