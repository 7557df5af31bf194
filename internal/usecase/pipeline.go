package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"SeapMonitor/internal/domain"
	"SeapMonitor/internal/infrastructure/seap"
	"SeapMonitor/internal/ports"
)

// PipelineDeps wires the driven adapters into the ingestion pipeline.
type PipelineDeps struct {
	Orchestrator *Orchestrator
	Repository   ports.TenderRepository
	Notifier     ports.Notifier
	Logger       *slog.Logger
	// LinkBaseURL prefixes the public notice link built for each record.
	LinkBaseURL string
	// Location decides what "today" means for the daily job.
	Location *time.Location
	Now      func() time.Time
}

// Pipeline maps classified acquisitions into canonical tender records,
// persists them and triggers the daily notification.
type Pipeline struct {
	orchestrator *Orchestrator
	repository   ports.TenderRepository
	notifier     ports.Notifier
	logger       *slog.Logger
	linkBaseURL  string
	location     *time.Location
	now          func() time.Time
}

// NewPipeline constructs the ingestion pipeline.
func NewPipeline(deps PipelineDeps) *Pipeline {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		orchestrator: deps.Orchestrator,
		repository:   deps.Repository,
		notifier:     deps.Notifier,
		logger:       deps.Logger,
		linkBaseURL:  strings.TrimSuffix(deps.LinkBaseURL, "/"),
		location:     loc,
		now:          now,
	}
}

// SaveMatches upserts every match, keyed on notice number. A failing
// item is logged and skipped; the rest of the batch continues.
func (p *Pipeline) SaveMatches(ctx context.Context, matches []domain.ClassifiedAcquisition) []domain.Tender {
	saved := make([]domain.Tender, 0, len(matches))
	for _, match := range matches {
		record := p.tenderFromMatch(match)
		stored, err := p.repository.Upsert(ctx, record)
		if err != nil {
			p.error("failed to save tender", err, "notice_number", record.NoticeNumber)
			continue
		}
		saved = append(saved, stored)
	}
	return saved
}

// ScrapeAndSave runs the full retrieve-classify-persist pipeline for one
// civil day and returns the saved records alongside the scrape report.
func (p *Pipeline) ScrapeAndSave(ctx context.Context, date string) ([]domain.Tender, *domain.ScrapeReport, error) {
	report, err := p.orchestrator.ScrapeDay(ctx, date)
	if err != nil {
		return nil, nil, err
	}
	return p.SaveMatches(ctx, report.Matches), report, nil
}

// RunDailyJob executes the scheduled pipeline for today. Every failure
// is absorbed here: the scheduler must survive a bad day and fire again
// tomorrow.
func (p *Pipeline) RunDailyJob(ctx context.Context) domain.JobResult {
	runID := uuid.NewString()
	today := p.now().In(p.location).Format(seap.DateLayout)
	logger := p.jobLogger(runID, today)
	logger.Info("daily job started")

	saved, report, err := p.ScrapeAndSave(ctx, today)
	if err != nil {
		logger.Error("daily scrape failed", "error", err)
		return domain.JobResult{}
	}

	sent := false
	if p.notifier != nil {
		sent, err = p.notifier.SendDailyReport(ctx, saved, report.TotalScanned())
		if err != nil {
			logger.Error("notification failed", "error", err)
			sent = false
		}
	}

	logger.Info("daily job finished",
		"scanned", report.TotalScanned(),
		"matches", len(report.Matches),
		"saved", len(saved),
		"email_sent", sent)

	return domain.JobResult{Saved: len(saved), EmailSent: sent}
}

func (p *Pipeline) tenderFromMatch(match domain.ClassifiedAcquisition) domain.Tender {
	value := "0"
	if match.ClosingValue != nil {
		value = strconv.FormatFloat(*match.ClosingValue, 'f', -1, 64)
	}

	contractType := ""
	if match.ContractType != nil {
		contractType = match.ContractType.Text
	}

	return domain.Tender{
		NoticeNumber:    match.PublicNoticeNo,
		Title:           match.Name,
		Description:     match.Description,
		Authority:       match.Authority,
		Value:           value,
		Currency:        domain.DefaultCurrency,
		CpvCode:         match.CpvCode,
		PublicationDate: parsePublicationDate(match.PublicationDate),
		Status:          domain.StatusClosed,
		MatchedKeyword:  match.MatchedKeyword,
		Link:            fmt.Sprintf("%s/pub/direct-acquisition/view/%d", p.linkBaseURL, match.DirectAcquisitionID),
		ContractType:    contractType,
	}
}

// The catalog emits timestamps with and without an offset suffix.
func parsePublicationDate(raw string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func (p *Pipeline) jobLogger(runID, date string) *slog.Logger {
	if p.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return p.logger.With("run_id", runID, "date", date)
}

func (p *Pipeline) error(msg string, err error, args ...any) {
	if p.logger != nil {
		p.logger.Error(msg, append([]any{"error", err}, args...)...)
	}
}
