package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"SeapMonitor/internal/domain"
	"SeapMonitor/internal/keyword"
)

type fakeRepository struct {
	byNotice map[string]domain.Tender
	nextID   int64
	failOn   map[string]bool
	upserts  int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{byNotice: map[string]domain.Tender{}, failOn: map[string]bool{}}
}

func (r *fakeRepository) Upsert(_ context.Context, tender domain.Tender) (domain.Tender, error) {
	r.upserts++
	if r.failOn[tender.NoticeNumber] {
		return domain.Tender{}, errors.New("constraint violation")
	}
	if existing, ok := r.byNotice[tender.NoticeNumber]; ok {
		tender.ID = existing.ID
	} else {
		r.nextID++
		tender.ID = r.nextID
	}
	r.byNotice[tender.NoticeNumber] = tender
	return tender, nil
}

func (r *fakeRepository) Create(_ context.Context, tender domain.Tender) (domain.Tender, error) {
	r.nextID++
	tender.ID = r.nextID
	r.byNotice[tender.NoticeNumber] = tender
	return tender, nil
}

func (r *fakeRepository) List(context.Context, domain.TenderFilter) ([]domain.Tender, error) {
	tenders := make([]domain.Tender, 0, len(r.byNotice))
	for _, t := range r.byNotice {
		tenders = append(tenders, t)
	}
	return tenders, nil
}

func (r *fakeRepository) Get(context.Context, int64) (*domain.Tender, error) { return nil, nil }

func (r *fakeRepository) DeleteAll(context.Context) error {
	r.byNotice = map[string]domain.Tender{}
	return nil
}

func (r *fakeRepository) Stats(context.Context) (*domain.TenderStats, error) {
	return &domain.TenderStats{}, nil
}

type fakeNotifier struct {
	calls   int
	tenders []domain.Tender
	scanned int
	sent    bool
	err     error
}

func (n *fakeNotifier) SendDailyReport(_ context.Context, tenders []domain.Tender, totalScanned int) (bool, error) {
	n.calls++
	n.tenders = tenders
	n.scanned = totalScanned
	return n.sent, n.err
}

func floatPtr(v float64) *float64 { return &v }

func newTestPipeline(source *fakeSource, repo *fakeRepository, notifier *fakeNotifier) *Pipeline {
	return NewPipeline(PipelineDeps{
		Orchestrator: newTestOrchestrator(source, 100),
		Repository:   repo,
		Notifier:     notifier,
		LinkBaseURL:  "https://e-licitatie.ro",
		Location:     time.FixedZone("UTC+2", 2*60*60),
		Now: func() time.Time {
			return time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
		},
	})
}

func TestTenderFromMatchMapsFields(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(&fakeSource{finalized: emptyFetch, ongoing: emptyFetch}, newFakeRepository(), nil)

	match := domain.ClassifiedAcquisition{
		RawAcquisition: domain.RawAcquisition{
			DirectAcquisitionID: 42,
			PublicNoticeNo:      "DA42",
			Name:                "Actualizare ortofotoplan",
			Description:         "zbor fotogrammetric",
			ClosingValue:        floatPtr(15000.5),
			CpvCode:             "71354100-5",
			PublicationDate:     "2024-03-14T12:30:00",
			ContractType:        &domain.ContractType{Text: "Servicii"},
		},
		MatchedKeyword: "ortofotoplan",
		Authority:      "Primăria X",
		Mode:           domain.ModeFinalized,
	}

	tender := p.tenderFromMatch(match)

	if tender.NoticeNumber != "DA42" || tender.Title != "Actualizare ortofotoplan" {
		t.Fatalf("unexpected identity fields: %+v", tender)
	}
	if tender.Value != "15000.5" {
		t.Fatalf("expected decimal value string, got %q", tender.Value)
	}
	if tender.Currency != domain.DefaultCurrency {
		t.Fatalf("expected RON, got %q", tender.Currency)
	}
	if tender.Status != domain.StatusClosed {
		t.Fatalf("expected closed status, got %q", tender.Status)
	}
	if tender.Link != "https://e-licitatie.ro/pub/direct-acquisition/view/42" {
		t.Fatalf("unexpected link %q", tender.Link)
	}
	if tender.ContractType != "Servicii" {
		t.Fatalf("unexpected contract type %q", tender.ContractType)
	}
	want := time.Date(2024, 3, 14, 12, 30, 0, 0, time.UTC)
	if !tender.PublicationDate.Equal(want) {
		t.Fatalf("unexpected publication date %v", tender.PublicationDate)
	}
}

func TestTenderFromMatchDefaultsMissingValue(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(&fakeSource{finalized: emptyFetch, ongoing: emptyFetch}, newFakeRepository(), nil)

	tender := p.tenderFromMatch(domain.ClassifiedAcquisition{
		RawAcquisition: domain.RawAcquisition{PublicNoticeNo: "DA1"},
		Authority:      domain.UnknownAuthority,
	})

	if tender.Value != "0" {
		t.Fatalf("expected \"0\" fallback, got %q", tender.Value)
	}
	if tender.ContractType != "" {
		t.Fatalf("expected empty contract type, got %q", tender.ContractType)
	}
	if !tender.PublicationDate.IsZero() {
		t.Fatalf("expected zero publication date, got %v", tender.PublicationDate)
	}
}

func TestSaveMatchesSkipsFailingItems(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	repo.failOn["DA1"] = true
	p := newTestPipeline(&fakeSource{finalized: emptyFetch, ongoing: emptyFetch}, repo, nil)

	saved := p.SaveMatches(context.Background(), []domain.ClassifiedAcquisition{
		{RawAcquisition: domain.RawAcquisition{PublicNoticeNo: "DA1"}, Authority: "A"},
		{RawAcquisition: domain.RawAcquisition{PublicNoticeNo: "DA2"}, Authority: "B"},
	})

	if len(saved) != 1 || saved[0].NoticeNumber != "DA2" {
		t.Fatalf("expected only DA2 to survive, got %+v", saved)
	}
	if repo.upserts != 2 {
		t.Fatalf("expected both items attempted, got %d", repo.upserts)
	}
}

func TestRunDailyJobEndToEnd(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		finalized: func(_ context.Context, dateStart, dateEnd string, _, _ int) (*domain.AcquisitionPage, error) {
			if dateStart != "2024-03-15" || dateEnd != "2024-03-15" {
				t.Errorf("unexpected window %q..%q", dateStart, dateEnd)
			}
			return &domain.AcquisitionPage{Total: 2, Items: []domain.RawAcquisition{
				{
					DirectAcquisitionID:  7,
					PublicNoticeNo:       "DA7",
					Name:                 "Actualizare ortofotoplan comuna Y",
					ContractingAuthority: "Primăria Y",
					ClosingValue:         floatPtr(42000),
				},
				{
					DirectAcquisitionID: 8,
					PublicNoticeNo:      "DA8",
					Name:                "Furnizare combustibil",
				},
			}}, nil
		},
		ongoing: emptyFetch,
	}

	repo := newFakeRepository()
	notifier := &fakeNotifier{sent: true}
	p := newTestPipeline(source, repo, notifier)

	result := p.RunDailyJob(context.Background())

	if result.Saved != 1 || !result.EmailSent {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(repo.byNotice) != 1 {
		t.Fatalf("expected exactly one stored record, got %d", len(repo.byNotice))
	}

	stored := repo.byNotice["DA7"]
	if stored.Status != domain.StatusClosed || stored.Currency != domain.DefaultCurrency {
		t.Fatalf("unexpected stored record: %+v", stored)
	}
	if stored.MatchedKeyword != "ortofotoplan" {
		t.Fatalf("unexpected keyword %q", stored.MatchedKeyword)
	}

	if notifier.calls != 1 {
		t.Fatalf("expected one notification, got %d", notifier.calls)
	}
	if len(notifier.tenders) != 1 || notifier.scanned != 2 {
		t.Fatalf("notifier got %d tenders, %d scanned", len(notifier.tenders), notifier.scanned)
	}

	// Re-running the same day upserts in place: still one record.
	again := p.RunDailyJob(context.Background())
	if again.Saved != 1 {
		t.Fatalf("expected saved=1 on rerun, got %d", again.Saved)
	}
	if len(repo.byNotice) != 1 {
		t.Fatalf("rerun must not duplicate records, got %d", len(repo.byNotice))
	}
	if repo.byNotice["DA7"].ID != stored.ID {
		t.Fatal("rerun must keep the original row id")
	}
}

func TestRunDailyJobNotifiesOnZeroMatches(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		finalized: func(context.Context, string, string, int, int) (*domain.AcquisitionPage, error) {
			return &domain.AcquisitionPage{Total: 3, Items: []domain.RawAcquisition{
				{PublicNoticeNo: "DA1", Name: "Furnizare hârtie"},
				{PublicNoticeNo: "DA2", Name: "Servicii de pază"},
				{PublicNoticeNo: "DA3", Name: "Reparații auto"},
			}}, nil
		},
		ongoing: emptyFetch,
	}

	notifier := &fakeNotifier{sent: true}
	p := newTestPipeline(source, newFakeRepository(), notifier)

	result := p.RunDailyJob(context.Background())

	if result.Saved != 0 || !result.EmailSent {
		t.Fatalf("unexpected result: %+v", result)
	}
	if notifier.calls != 1 {
		t.Fatal("zero-match days still produce a report email")
	}
	if notifier.scanned != 3 {
		t.Fatalf("expected totalScanned=3, got %d", notifier.scanned)
	}
}

func TestRunDailyJobAbsorbsNotifierError(t *testing.T) {
	t.Parallel()

	notifier := &fakeNotifier{err: errors.New("resend down")}
	p := newTestPipeline(&fakeSource{finalized: emptyFetch, ongoing: emptyFetch}, newFakeRepository(), notifier)

	result := p.RunDailyJob(context.Background())

	if result.EmailSent {
		t.Fatal("failed notification must not be reported as sent")
	}
}

func TestScrapeAndSavePropagatesDateError(t *testing.T) {
	t.Parallel()

	p := NewPipeline(PipelineDeps{
		Orchestrator: NewOrchestrator(&fakeSource{finalized: emptyFetch, ongoing: emptyFetch}, keyword.NewDefault(), 100, nil),
		Repository:   newFakeRepository(),
	})

	if _, _, err := p.ScrapeAndSave(context.Background(), "not-a-date"); err == nil {
		t.Fatal("expected error for malformed date")
	}
}
