package server

import (
	"net/http"

	"github.com/jrsteele09/npl-portal/reports"
	"github.com/rs/zerolog/log"
)

// ReportView is the content of the reports page
type ReportView struct {
	Kind    reports.Kind
	Kinds   []reports.Kind
	NPL     []reports.NPLBranchSummary
	Buckets []reports.CollectionBucket
	Metrics reports.CollectionMetrics
}

// ReportsHandler renders one report tab (GET /reports?type=npl|collection)
func (s *Server) ReportsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, ok := reports.ParseKind(r.URL.Query().Get("type"))
		if !ok {
			kind = reports.KindNPL
		}

		data := s.newPageData(r, RouteReports, "Reports & Analytics")
		data.Error = r.URL.Query().Get("error")
		view := ReportView{Kind: kind, Kinds: []reports.Kind{reports.KindNPL, reports.KindCollection}}

		records, err := s.api.Report(r.Context(), kind)
		if err != nil {
			msg, handled := s.backendFailure(w, r, err)
			if handled {
				return
			}
			data.Error = msg
			records = nil
		}

		if err := view.project(records); err != nil {
			log.Err(err).Str("report", string(kind)).Msg("Unexpected report shape")
			data.Error = requestFailMsg
		}
		data.Content = view

		s.render(w, http.StatusOK, pageReports, data)
	}
}

func (v *ReportView) project(records []reports.Record) error {
	var err error
	switch v.Kind {
	case reports.KindCollection:
		v.Buckets, err = reports.CollectionBuckets(records)
		v.Metrics = reports.Metrics(v.Buckets)
	default:
		v.NPL, err = reports.NPLBranches(records)
	}
	return err
}

// ReportExportHandler downloads a report as CSV (GET /reports/{kind}/export)
func (s *Server) ReportExportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, ok := reports.ParseKind(r.PathValue("kind"))
		if !ok {
			redirectWithError(w, r, RouteReports, "Unknown report type")
			return
		}

		records, err := s.api.Report(r.Context(), kind)
		if err != nil {
			msg, handled := s.backendFailure(w, r, err)
			if handled {
				return
			}
			redirectWithError(w, r, RouteReports, msg)
			return
		}

		csv, err := reports.ExportCSV(records)
		if err != nil {
			log.Err(err).Str("report", string(kind)).Msg("Failed to export report")
			redirectWithError(w, r, RouteReports, requestFailMsg)
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", "attachment; filename="+reports.FileName(kind, reports.NowTimeFunc()))
		_, _ = w.Write([]byte(csv))
	}
}
