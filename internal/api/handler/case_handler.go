package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"

	"olexparser/internal/api/util"
	"olexparser/internal/core/service"
	"olexparser/internal/discovery"
)

type CaseHandler struct {
	caseService service.CaseService
}

func NewCaseHandler(caseService service.CaseService) *CaseHandler {
	return &CaseHandler{
		caseService: caseService,
	}
}

type analyzeRequest struct {
	Path string `json:"path"`
}

func (h *CaseHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	fields := logrus.Fields{"path": req.Path}
	if claims, err := util.GetUserClaims(r); err == nil {
		fields["user"] = claims.UserID
	}
	logrus.WithFields(fields).Info("analyze requested")

	report, err := h.caseService.Analyze(r.Context(), req.Path)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyPath):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, os.ErrNotExist), errors.Is(err, discovery.ErrNotDirectory):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, report)
}

func (h *CaseHandler) GetReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.caseService.ListReports(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, reports)
}

func (h *CaseHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Report ID required", http.StatusBadRequest)
		return
	}

	report, err := h.caseService.GetReport(r.Context(), id)
	if err != nil {
		writeLookupError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Export returns a handler rendering the requested report in format
func (h *CaseHandler) Export(format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "Report ID required", http.StatusBadRequest)
			return
		}

		data, err := h.caseService.Export(r.Context(), id, format)
		if err != nil {
			writeLookupError(w, err)
			return
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+id+"."+format+`"`)
		w.Write(data)
	}
}

// writeJSON encodes v before committing the status so an encoding failure
// still reaches the client as a 500
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logrus.WithError(err).Error("failed to encode response")
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(data, '\n'))
}

func writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrReportNotFound) {
		http.Error(w, "Report not found", http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
