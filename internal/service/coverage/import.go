package coverage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"covtrack/internal/domain"
	"covtrack/internal/reports"
	"covtrack/internal/service/histutil"
)

// Coverage CSVs are positional: tc_id, title, metrics, metric_variant,
// region, engine. The metrics, region, and engine cells hold
// comma-separated lists; encoding/csv quoting keeps them in one cell.
const (
	colTCID = iota
	colTitle
	colMetrics
	colVariant
	colRegion
	colEngine
)

var exportHeader = []string{"tc_id", "title", "metrics", "metric_variant", "region", "engine"}

// Importer runs CSV bulk imports of coverage entries.
type Importer struct {
	svc   *Service
	store *reports.Store
}

// NewImporter creates a new coverage Importer.
func NewImporter(svc *Service, store *reports.Store) *Importer {
	return &Importer{svc: svc, store: store}
}

// Import reads a coverage CSV and records each row through AddEntry. The
// first row is a header and is skipped; data rows are positional. Rows
// settle independently, each in its own transaction, so one bad row never
// poisons its neighbors. The annotated input is stored as a report file and
// the returned counts always sum to the row total.
func (im *Importer) Import(ctx context.Context, r io.Reader) (*domain.ImportReport, error) {
	in := csv.NewReader(r)
	in.FieldsPerRecord = -1

	header, err := in.Read()
	if err != nil {
		return nil, domain.ErrValidation("empty or unreadable CSV")
	}

	out, name, err := im.store.Create("coverage_import")
	if err != nil {
		return nil, err
	}
	defer out.Close()
	w := csv.NewWriter(out)
	if err := w.Write(append(header, "status")); err != nil {
		return nil, err
	}

	report := &domain.ImportReport{ReportFile: name}
	for {
		record, err := in.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			report.Total++
			report.Errors++
			if werr := w.Write([]string{fmt.Sprintf("%s: malformed row: %v", domain.RowError, err)}); werr != nil {
				return nil, werr
			}
			continue
		}
		report.Total++

		status := im.importRow(ctx, record)
		switch {
		case status == domain.RowInserted || strings.HasPrefix(status, domain.RowPartial):
			report.Inserted++
		case status == domain.RowDuplicate:
			report.Duplicates++
		default:
			report.Errors++
		}
		if err := w.Write(append(record, status)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	details := fmt.Sprintf("total=%d inserted=%d duplicates=%d errors=%d",
		report.Total, report.Inserted, report.Duplicates, report.Errors)
	histutil.Log(ctx, im.svc.history, "bulk_import", "coverage_links", name, &details)
	return report, nil
}

// importRow maps one positional record to an AddEntry call. A row whose
// links all already exist counts as a duplicate, and a row whose unknown
// metrics were skipped reports them by name in a partial-success status.
func (im *Importer) importRow(ctx context.Context, record []string) string {
	field := func(i int) string {
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	if len(record) <= colVariant {
		return fmt.Sprintf("%s: expected at least %d columns, got %d",
			domain.RowError, colVariant+1, len(record))
	}

	v, err := domain.ParseVariant(field(colVariant))
	if err != nil {
		return fmt.Sprintf("%s: %v", domain.RowError, err)
	}

	in := AddEntryInput{
		TCID:    field(colTCID),
		Variant: v,
		Metrics: splitList(field(colMetrics)),
		Regions: splitList(field(colRegion)),
		Engines: splitList(field(colEngine)),
	}
	if title := field(colTitle); title != "" {
		in.Title = &title
	}

	res, err := im.svc.AddEntry(ctx, in)
	if err != nil {
		return fmt.Sprintf("%s: %v", domain.RowError, err)
	}
	if len(res.SkippedMetrics) > 0 {
		return fmt.Sprintf("%s: unknown metrics: %s",
			domain.RowPartial, strings.Join(res.SkippedMetrics, ", "))
	}
	if res.Inserted == 0 {
		return domain.RowDuplicate
	}
	return domain.RowInserted
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Export writes the live coverage links of one variant in the import
// column order so a downloaded file can be corrected and re-uploaded,
// absent dimensions rendered with their sentinel values.
func (s *Service) Export(ctx context.Context, v domain.Variant, w io.Writer) error {
	sums, err := s.repo.MetricSummaries(ctx, v)
	if err != nil {
		return err
	}

	out := csv.NewWriter(w)
	if err := out.Write(exportHeader); err != nil {
		return err
	}
	for _, mc := range sums {
		for _, d := range mc.Details {
			record := []string{
				d.TCID,
				derefOr(d.Title, ""),
				mc.MetricName,
				string(v),
				derefOr(d.Region, domain.NoRegion),
				derefOr(d.Engine, domain.NoEngine),
			}
			if err := out.Write(record); err != nil {
				return err
			}
		}
	}
	out.Flush()
	return out.Error()
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
