package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"SeapMonitor/internal/domain"
	"SeapMonitor/internal/infrastructure/seap"
	"SeapMonitor/internal/keyword"
	"SeapMonitor/internal/ports"
)

// DefaultPageSize matches the catalog web client.
const DefaultPageSize = 100

type fetchFunc func(ctx context.Context, dateStart, dateEnd string, pageIndex, pageSize int) (*domain.AcquisitionPage, error)

// Orchestrator runs both fetch modes for one civil day and classifies
// every item. It performs no persistence.
type Orchestrator struct {
	source     ports.AcquisitionSource
	classifier *keyword.Classifier
	pageSize   int
	minDelay   time.Duration
	maxDelay   time.Duration
	sleep      func(time.Duration)
	logger     *slog.Logger
}

// NewOrchestrator wires the catalog source with the keyword taxonomy.
// pageSize <= 0 falls back to DefaultPageSize.
func NewOrchestrator(source ports.AcquisitionSource, classifier *keyword.Classifier, pageSize int, logger *slog.Logger) *Orchestrator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Orchestrator{
		source:     source,
		classifier: classifier,
		pageSize:   pageSize,
		minDelay:   300 * time.Millisecond,
		maxDelay:   500 * time.Millisecond,
		sleep:      time.Sleep,
		logger:     logger,
	}
}

// SetDelayBounds adjusts the inter-page courtesy delay.
func (o *Orchestrator) SetDelayBounds(min, max time.Duration) {
	if min > 0 && max >= min {
		o.minDelay, o.maxDelay = min, max
	}
}

// ScrapeDay retrieves and classifies every acquisition of one civil day,
// finalized mode first, then ongoing. Fetch failures end the affected
// mode without failing the scrape; only a malformed date is an error.
func (o *Orchestrator) ScrapeDay(ctx context.Context, date string) (*domain.ScrapeReport, error) {
	if _, err := time.Parse(seap.DateLayout, date); err != nil {
		return nil, fmt.Errorf("scrape day: %w", err)
	}

	o.info("starting scrape", "date", date, "keywords", o.classifier.Size())

	report := &domain.ScrapeReport{Date: date}

	finalized := o.scrapeMode(ctx, date, domain.ModeFinalized, o.source.FetchFinalized, &report.Finalized)
	ongoing := o.scrapeMode(ctx, date, domain.ModeOngoing, o.source.FetchOngoing, &report.Ongoing)

	report.Matches = append(finalized, ongoing...)

	o.info("scrape finished",
		"date", date,
		"scanned", report.TotalScanned(),
		"matches", len(report.Matches))

	return report, nil
}

func (o *Orchestrator) scrapeMode(ctx context.Context, date string, mode domain.FetchMode, fetch fetchFunc, stats *domain.ModeStats) []domain.ClassifiedAcquisition {
	var results []domain.ClassifiedAcquisition
	pageIndex := 0

	for {
		page, err := fetch(ctx, date, date, pageIndex, o.pageSize)
		if err != nil {
			// Failures are indistinguishable from exhaustion for the
			// loop, but the report keeps them apart.
			o.warn("mode stopped on fetch error", "mode", mode, "page", pageIndex, "error", err)
			stats.StoppedOnError = true
			break
		}
		if len(page.Items) == 0 {
			break
		}

		stats.Scanned += len(page.Items)

		for _, item := range page.Items {
			kw, ok := o.classifier.ClassifyItem(item.Name, item.Description)
			if !ok {
				continue
			}
			authority := item.ContractingAuthority
			if authority == "" {
				authority = domain.UnknownAuthority
			}
			results = append(results, domain.ClassifiedAcquisition{
				RawAcquisition: item,
				MatchedKeyword: kw,
				Authority:      authority,
				Mode:           mode,
			})
		}

		// The reported total is advisory; a short page always ends the loop.
		if len(page.Items) < o.pageSize || stats.Scanned >= page.Total {
			break
		}
		pageIndex++
		o.sleep(o.jitter())
	}

	stats.Matched = len(results)
	o.info("mode done", "mode", mode, "scanned", stats.Scanned, "matches", stats.Matched, "stopped_on_error", stats.StoppedOnError)
	return results
}

func (o *Orchestrator) jitter() time.Duration {
	spread := o.maxDelay - o.minDelay
	if spread <= 0 {
		return o.minDelay
	}
	return o.minDelay + time.Duration(rand.Int63n(int64(spread)))
}

func (o *Orchestrator) info(msg string, args ...any) {
	if o.logger != nil {
		o.logger.Info(msg, args...)
	}
}

func (o *Orchestrator) warn(msg string, args ...any) {
	if o.logger != nil {
		o.logger.Warn(msg, args...)
	}
}
