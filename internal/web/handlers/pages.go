package handlers

import (
	"fmt"
	"image/png"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/event-report/internal/constants"
	"github.com/kozaktomas/event-report/internal/export"
	"github.com/kozaktomas/event-report/internal/layout"
	"github.com/kozaktomas/event-report/internal/report"
)

// PageInfo describes one page of the preview.
type PageInfo struct {
	Number int             `json:"number"`
	Kind   layout.PageKind `json:"kind"`
	Title  string          `json:"title"`
}

// PreviewPagesResponse lists the pages of the opened preview.
type PreviewPagesResponse struct {
	Pages    []PageInfo `json:"pages"`
	Warnings []string   `json:"warnings"`
}

// EnterPreview opens the paginated preview if the form is complete.
func (h *ReportHandler) EnterPreview(w http.ResponseWriter, r *http.Request) {
	state, err := h.store.Dispatch(report.EnterPreview{})
	if err != nil {
		respondErr(w, err)
		return
	}

	pages := h.pages(state)
	resp := PreviewPagesResponse{
		Pages:    make([]PageInfo, 0, len(pages)),
		Warnings: []string{},
	}
	for i, p := range pages {
		resp.Pages = append(resp.Pages, PageInfo{Number: i + 1, Kind: p.Kind, Title: p.Title})
	}
	for _, warn := range layout.Validate(pages) {
		resp.Warnings = append(resp.Warnings, warn.String())
	}
	respondJSON(w, http.StatusOK, resp)
}

// ExitPreview returns to the form.
func (h *ReportHandler) ExitPreview(w http.ResponseWriter, r *http.Request) {
	state, err := h.store.Dispatch(report.ExitPreview{})
	if err != nil {
		respondErr(w, err)
		return
	}
	h.respondState(w, http.StatusOK, state)
}

// Page renders one preview page as PNG. Pages are numbered from 1.
func (h *ReportHandler) Page(w http.ResponseWriter, r *http.Request) {
	state, ok := h.requirePreview(w)
	if !ok {
		return
	}

	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid page number")
		return
	}
	pages := h.pages(state)
	if n < 1 || n > len(pages) {
		respondError(w, http.StatusNotFound, fmt.Sprintf("page %d not found", n))
		return
	}

	img, err := h.rasterizer.Rasterize(pages[n-1])
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if err := png.Encode(w, img); err != nil {
		log.Printf("Failed to write page %d: %v", n, err)
	}
}

// ExportResponse is returned when the PDF is saved on the server.
type ExportResponse struct {
	Path   string               `json:"path"`
	Report *export.ExportReport `json:"report"`
}

// Export renders every page into the PDF. The document is sent as a download,
// or saved into the output directory with ?save=true.
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	state, ok := h.requirePreview(w)
	if !ok {
		return
	}
	pages := h.pages(state)

	if r.URL.Query().Get("save") == "true" {
		path, res, err := h.exporter.ExportFile(pages, h.config.Report.OutputDir)
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, http.StatusOK, ExportResponse{Path: path, Report: res.Report})
		return
	}

	res, err := h.exporter.Export(pages)
	if err != nil {
		respondErr(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", constants.OutputFileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.PDF)))
	w.Header().Set("X-Report-Pages", strconv.Itoa(res.Report.PageCount))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.PDF); err != nil {
		log.Printf("Failed to send export: %v", err)
	}
}
