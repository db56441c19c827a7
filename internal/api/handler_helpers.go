package api

import (
	"io"
	"net/http"
	"strings"

	"covtrack/internal/domain"
)

// uploadedCSV returns the CSV payload of an import request. Multipart
// uploads use the "file" field; otherwise the raw body is taken as CSV.
func uploadedCSV(r *http.Request) (io.ReadCloser, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return nil, domain.ErrValidation("invalid multipart upload")
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, domain.ErrValidation("missing file field")
		}
		return file, nil
	}
	return r.Body, nil
}

type linkDetailResponse struct {
	LinkID int64   `json:"link_id"`
	TCID   string  `json:"tc_id"`
	Title  *string `json:"title,omitempty"`
	Region string  `json:"region"`
	Engine string  `json:"engine"`
}

type coverageResponse struct {
	MetricName  string               `json:"metric_name"`
	Variant     string               `json:"variant"`
	Category    string               `json:"category"`
	RegionCount int                  `json:"region_count"`
	EngineCount int                  `json:"engine_count"`
	TCIDCount   int                  `json:"tc_id_count"`
	Details     []linkDetailResponse `json:"details"`
}

func linkDetailToAPI(d domain.LinkDetail) linkDetailResponse {
	out := linkDetailResponse{
		LinkID: d.LinkID,
		TCID:   d.TCID,
		Title:  d.Title,
		Region: domain.NoRegion,
		Engine: domain.NoEngine,
	}
	if d.Region != nil {
		out.Region = *d.Region
	}
	if d.Engine != nil {
		out.Engine = *d.Engine
	}
	return out
}

func coverageToAPI(mc domain.MetricCoverage) coverageResponse {
	out := coverageResponse{
		MetricName:  mc.MetricName,
		Variant:     string(mc.Variant),
		Category:    mc.Category,
		RegionCount: mc.RegionCount,
		EngineCount: mc.EngineCount,
		TCIDCount:   mc.TCIDCount,
		Details:     make([]linkDetailResponse, 0, len(mc.Details)),
	}
	for _, d := range mc.Details {
		out.Details = append(out.Details, linkDetailToAPI(d))
	}
	return out
}

type importReportResponse struct {
	Total      int    `json:"total"`
	Inserted   int    `json:"inserted"`
	Duplicates int    `json:"duplicates"`
	Errors     int    `json:"errors"`
	ReportFile string `json:"report_file"`
}

func importReportToAPI(r *domain.ImportReport) importReportResponse {
	return importReportResponse{
		Total:      r.Total,
		Inserted:   r.Inserted,
		Duplicates: r.Duplicates,
		Errors:     r.Errors,
		ReportFile: r.ReportFile,
	}
}
