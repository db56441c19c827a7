package metrics

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

// Metric CSVs are positional: name, category, expiration, description,
// search_metric, cross_reference. Columns after name are optional.
const (
	colName = iota
	colCategory
	colExpiration
	colDescription
	colSearchMetric
	colCrossReference
)

var importHeader = []string{"name", "category", "expiration", "description", "search_metric", "cross_reference"}

// Importer runs CSV bulk imports of metric definitions.
type Importer struct {
	svc   *Service
	store *reports.Store
}

// NewImporter creates a new metric Importer.
func NewImporter(svc *Service, store *reports.Store) *Importer {
	return &Importer{svc: svc, store: store}
}

// Import reads a metric CSV and inserts each row under the given variant.
// The first row is a header and is skipped; data rows are positional.
// Every row is settled independently: a bad row is annotated and counted,
// never aborting the rest. The annotated copy is stored as a report file.
func (im *Importer) Import(ctx context.Context, v domain.Variant, r io.Reader) (*domain.ImportReport, error) {
	if !v.Valid() {
		return nil, domain.ErrValidation("unknown metric variant %q", v)
	}

	in := csv.NewReader(r)
	in.FieldsPerRecord = -1

	header, err := in.Read()
	if err != nil {
		return nil, domain.ErrValidation("empty or unreadable CSV")
	}

	out, name, err := im.store.Create(string(v) + "_metrics_import")
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

		status := im.importRow(ctx, v, record)
		switch {
		case status == domain.RowInserted:
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

	histutil.Log(ctx, im.svc.history, "bulk_import", metricHistoryTable(v), name,
		importDetails(report))
	return report, nil
}

func (im *Importer) importRow(ctx context.Context, v domain.Variant, record []string) string {
	field := func(i int) string {
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	m := &domain.Metric{
		Name:         field(colName),
		Variant:      v,
		Category:     field(colCategory),
		SearchMetric: isTruthy(field(colSearchMetric)),
	}
	if s := field(colExpiration); s != "" {
		m.Expiration = &s
	}
	if s := field(colDescription); s != "" {
		m.Description = &s
	}
	if s := field(colCrossReference); s != "" {
		m.CrossReference = &s
	}

	_, err := im.svc.repo.Create(ctx, m)
	switch {
	case err == nil:
		return domain.RowInserted
	case isConflict(err):
		return domain.RowDuplicate
	default:
		return fmt.Sprintf("%s: %v", domain.RowError, err)
	}
}

func isTruthy(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}

func isConflict(err error) bool {
	var conflict *domain.ConflictError
	return errors.As(err, &conflict)
}

func importDetails(r *domain.ImportReport) *string {
	d := fmt.Sprintf("total=%d inserted=%d duplicates=%d errors=%d",
		r.Total, r.Inserted, r.Duplicates, r.Errors)
	return &d
}

// Export writes the live metrics of one variant as CSV.
func (s *Service) Export(ctx context.Context, v domain.Variant, w io.Writer) error {
	list, err := s.repo.List(ctx, v, false)
	if err != nil {
		return err
	}

	out := csv.NewWriter(w)
	if err := out.Write(importHeader); err != nil {
		return err
	}
	for _, m := range list {
		record := []string{
			m.Name,
			m.Category,
			deref(m.Expiration),
			deref(m.Description),
			fmt.Sprintf("%t", m.SearchMetric),
			deref(m.CrossReference),
		}
		if err := out.Write(record); err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
