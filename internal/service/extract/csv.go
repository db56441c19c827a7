package extract

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"covtrack/internal/domain"
)

// AnnotateCSV copies the input CSV to w with three columns appended per
// row: the probes, regions, and engines found anywhere in that row's
// fields. Malformed rows are annotated in place, never fatal.
func (s *Service) AnnotateCSV(ctx context.Context, r io.Reader, w io.Writer) error {
	in := csv.NewReader(r)
	in.FieldsPerRecord = -1

	header, err := in.Read()
	if err != nil {
		return domain.ErrValidation("empty or unreadable CSV")
	}

	out := csv.NewWriter(w)
	if err := out.Write(append(header, "found_probes", "found_regions", "found_engines")); err != nil {
		return err
	}
	for {
		record, err := in.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if werr := out.Write([]string{fmt.Sprintf("malformed row: %v", err)}); werr != nil {
				return werr
			}
			continue
		}

		res, err := s.Analyze(ctx, strings.Join(record, " "))
		if err != nil {
			return err
		}
		record = append(record,
			RenderProbes(res.Probes),
			joinOr(res.Regions, domain.NoRegion),
			joinOr(res.Engines, domain.NoEngine),
		)
		if err := out.Write(record); err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}

// RotationCSV reduces a rotation export to one row per test case, shaped
// for the coverage importer: the normalized TCID, its title, and the
// single (region, engine) pair the row's text mentions first.
func (s *Service) RotationCSV(ctx context.Context, r io.Reader, w io.Writer) error {
	in := csv.NewReader(r)
	in.FieldsPerRecord = -1

	header, err := in.Read()
	if err != nil {
		return domain.ErrValidation("empty or unreadable CSV")
	}
	idIdx, titleIdx := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "tc_id", "id", "case_id":
			if idIdx < 0 {
				idIdx = i
			}
		case "title", "name":
			if titleIdx < 0 {
				titleIdx = i
			}
		}
	}
	if idIdx < 0 {
		return domain.ErrValidation("CSV is missing a tc_id column")
	}

	out := csv.NewWriter(w)
	if err := out.Write([]string{"tc_id", "title", "regions", "engines"}); err != nil {
		return err
	}
	for {
		record, err := in.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil || idIdx >= len(record) {
			continue
		}
		tcid := domain.NormalizeTCID(strings.TrimSpace(record[idIdx]))
		if tcid == "" {
			continue
		}
		title := ""
		if titleIdx >= 0 && titleIdx < len(record) {
			title = strings.TrimSpace(record[titleIdx])
		}

		region, engine, err := s.Rotation(ctx, strings.Join(record, " "))
		if err != nil {
			return err
		}
		if err := out.Write([]string{tcid, title, region, engine}); err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}

func joinOr(items []string, sentinel string) string {
	if len(items) == 0 {
		return sentinel
	}
	return strings.Join(items, ", ")
}
