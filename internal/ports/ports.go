package ports

import (
	"context"
	"time"

	"SeapMonitor/internal/domain"
)

// AcquisitionSource issues paginated queries against the external catalog.
// A failure return means "stop paginating this mode"; callers never retry.
type AcquisitionSource interface {
	FetchFinalized(ctx context.Context, dateStart, dateEnd string, pageIndex, pageSize int) (*domain.AcquisitionPage, error)
	FetchOngoing(ctx context.Context, dateStart, dateEnd string, pageIndex, pageSize int) (*domain.AcquisitionPage, error)
}

// TenderRepository persists canonical tender records keyed by notice number.
type TenderRepository interface {
	Upsert(ctx context.Context, tender domain.Tender) (domain.Tender, error)
	Create(ctx context.Context, tender domain.Tender) (domain.Tender, error)
	List(ctx context.Context, filter domain.TenderFilter) ([]domain.Tender, error)
	Get(ctx context.Context, id int64) (*domain.Tender, error)
	DeleteAll(ctx context.Context) error
	Stats(ctx context.Context) (*domain.TenderStats, error)
}

// Notifier delivers the daily report. The boolean reports whether a send
// was confirmed; a disabled or misconfigured notifier returns false, nil.
type Notifier interface {
	SendDailyReport(ctx context.Context, tenders []domain.Tender, totalScanned int) (bool, error)
}

// Scheduler controls when the daily job executes.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
