package web

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"SeapMonitor/internal/domain"
	"SeapMonitor/internal/infrastructure/seap"
	"SeapMonitor/internal/ports"
	"SeapMonitor/internal/usecase"
)

// Handler exposes the tender store and the scrape pipeline over HTTP.
type Handler struct {
	repository ports.TenderRepository
	pipeline   *usecase.Pipeline
	logger     *slog.Logger
	location   *time.Location
	now        func() time.Time
	// pause spaces out the per-day scrapes of a range request.
	pause func(time.Duration)
}

// NewHandler wires the API handler. location decides what "today" means
// for the on-demand scrape endpoint.
func NewHandler(repository ports.TenderRepository, pipeline *usecase.Pipeline, location *time.Location, logger *slog.Logger) *Handler {
	if location == nil {
		location = time.UTC
	}
	return &Handler{
		repository: repository,
		pipeline:   pipeline,
		logger:     logger,
		location:   location,
		now:        time.Now,
		pause:      time.Sleep,
	}
}

func (h *Handler) listTenders(w http.ResponseWriter, r *http.Request) {
	filter := domain.TenderFilter{
		Search:   r.URL.Query().Get("search"),
		Location: r.URL.Query().Get("location"),
		Status:   r.URL.Query().Get("status"),
	}

	tenders, err := h.repository.List(r.Context(), filter)
	if err != nil {
		h.error(w, r, http.StatusInternalServerError, "failed to list tenders", err)
		return
	}
	if tenders == nil {
		tenders = []domain.Tender{}
	}

	h.respond(w, http.StatusOK, tenders)
}

func (h *Handler) getTender(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.error(w, r, http.StatusBadRequest, "invalid tender id", err)
		return
	}

	tender, err := h.repository.Get(r.Context(), id)
	if err != nil {
		h.error(w, r, http.StatusInternalServerError, "failed to load tender", err)
		return
	}
	if tender == nil {
		h.error(w, r, http.StatusNotFound, "tender not found", nil)
		return
	}

	h.respond(w, http.StatusOK, tender)
}

type createTenderRequest struct {
	NoticeNumber string `json:"noticeNumber"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Authority    string `json:"authority"`
	Value        string `json:"value"`
	Currency     string `json:"currency"`
	Location     string `json:"location"`
	Status       string `json:"status"`
	Link         string `json:"link"`
}

func (h *Handler) createTender(w http.ResponseWriter, r *http.Request) {
	var req createTenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.error(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.NoticeNumber == "" || req.Title == "" || req.Authority == "" {
		h.error(w, r, http.StatusBadRequest, "noticeNumber, title and authority are required", nil)
		return
	}

	tender := domain.Tender{
		NoticeNumber: req.NoticeNumber,
		Title:        req.Title,
		Description:  req.Description,
		Authority:    req.Authority,
		Value:        req.Value,
		Currency:     req.Currency,
		Location:     req.Location,
		Status:       req.Status,
		Link:         req.Link,
	}
	if tender.Value == "" {
		tender.Value = "0"
	}
	if tender.Currency == "" {
		tender.Currency = domain.DefaultCurrency
	}
	if tender.Status == "" {
		tender.Status = domain.StatusOpen
	}

	stored, err := h.repository.Create(r.Context(), tender)
	if err != nil {
		h.error(w, r, http.StatusInternalServerError, "failed to create tender", err)
		return
	}

	h.respond(w, http.StatusCreated, stored)
}

func (h *Handler) deleteAllTenders(w http.ResponseWriter, r *http.Request) {
	if err := h.repository.DeleteAll(r.Context()); err != nil {
		h.error(w, r, http.StatusInternalServerError, "failed to delete tenders", err)
		return
	}
	h.respond(w, http.StatusOK, map[string]string{"message": "all tenders deleted"})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.repository.Stats(r.Context())
	if err != nil {
		h.error(w, r, http.StatusInternalServerError, "failed to compute stats", err)
		return
	}
	h.respond(w, http.StatusOK, stats)
}

type scrapeResponse struct {
	Date    string          `json:"date"`
	Scanned int             `json:"scanned"`
	Matches int             `json:"matches"`
	Saved   []domain.Tender `json:"saved"`
}

func (h *Handler) scrapeToday(w http.ResponseWriter, r *http.Request) {
	date := h.now().In(h.location).Format(seap.DateLayout)

	saved, report, err := h.pipeline.ScrapeAndSave(r.Context(), date)
	if err != nil {
		h.error(w, r, http.StatusInternalServerError, "scrape failed", err)
		return
	}
	if saved == nil {
		saved = []domain.Tender{}
	}

	h.respond(w, http.StatusOK, scrapeResponse{
		Date:    date,
		Scanned: report.TotalScanned(),
		Matches: len(report.Matches),
		Saved:   saved,
	})
}

type scrapeRangeRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type scrapeRangeResponse struct {
	Days    []scrapeResponse `json:"days"`
	Scanned int              `json:"scanned"`
	Saved   int              `json:"saved"`
	Failed  []string         `json:"failed,omitempty"`
}

// scrapeRange walks each civil day of an inclusive range. A failing day
// is recorded and the walk continues; days are paced one second apart.
func (h *Handler) scrapeRange(w http.ResponseWriter, r *http.Request) {
	var req scrapeRangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.error(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	start, err := time.Parse(seap.DateLayout, req.StartDate)
	if err != nil {
		h.error(w, r, http.StatusBadRequest, "invalid startDate", err)
		return
	}
	end, err := time.Parse(seap.DateLayout, req.EndDate)
	if err != nil {
		h.error(w, r, http.StatusBadRequest, "invalid endDate", err)
		return
	}
	if end.Before(start) {
		h.error(w, r, http.StatusBadRequest, "endDate precedes startDate", nil)
		return
	}

	var resp scrapeRangeResponse
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		date := day.Format(seap.DateLayout)

		saved, report, err := h.pipeline.ScrapeAndSave(r.Context(), date)
		if err != nil {
			h.warn("range scrape day failed", "date", date, "error", err)
			resp.Failed = append(resp.Failed, date)
		} else {
			if saved == nil {
				saved = []domain.Tender{}
			}
			resp.Days = append(resp.Days, scrapeResponse{
				Date:    date,
				Scanned: report.TotalScanned(),
				Matches: len(report.Matches),
				Saved:   saved,
			})
			resp.Scanned += report.TotalScanned()
			resp.Saved += len(saved)
		}

		if day.Before(end) {
			h.pause(time.Second)
		}
	}

	h.respond(w, http.StatusOK, resp)
}

func (h *Handler) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.warn("failed to encode response", "error", err)
	}
}

func (h *Handler) error(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	if err != nil && status >= http.StatusInternalServerError {
		h.warn("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	detail := message
	if err != nil && status < http.StatusInternalServerError {
		detail = fmt.Sprintf("%s: %v", message, err)
	}
	h.respond(w, status, map[string]string{"error": detail})
}

func (h *Handler) warn(msg string, args ...any) {
	if h.logger != nil {
		h.logger.Warn(msg, args...)
	}
}
