package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"SeapMonitor/internal/domain"
	"SeapMonitor/internal/ports"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var tenderColumns = []string{
	"id", "notice_number", "title", "description", "authority", "supplier",
	"value", "currency", "location", "cpv_code", "publication_date",
	"deadline", "status", "contract_type", "matched_keyword", "link",
}

// PostgresRepository persists tenders into the tenders table, unique on
// notice_number.
type PostgresRepository struct {
	db *sql.DB
}

var _ ports.TenderRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert inserts the tender or, when the notice number is already known,
// updates the stored row in place. The uniqueness invariant lives in the
// single statement; there is no separate existence check.
func (r *PostgresRepository) Upsert(ctx context.Context, tender domain.Tender) (domain.Tender, error) {
	query, args, err := upsertQuery(tender).ToSql()
	if err != nil {
		return domain.Tender{}, fmt.Errorf("build upsert: %w", err)
	}

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&tender.ID); err != nil {
		return domain.Tender{}, fmt.Errorf("upsert tender %s: %w", tender.NoticeNumber, err)
	}
	return tender, nil
}

// Create inserts a tender without conflict handling, for manual entries.
func (r *PostgresRepository) Create(ctx context.Context, tender domain.Tender) (domain.Tender, error) {
	query, args, err := insertQuery(tender).Suffix("RETURNING id").ToSql()
	if err != nil {
		return domain.Tender{}, fmt.Errorf("build insert: %w", err)
	}

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&tender.ID); err != nil {
		return domain.Tender{}, fmt.Errorf("insert tender: %w", err)
	}
	return tender, nil
}

// List returns tenders matching the filter, ordered by publication date.
func (r *PostgresRepository) List(ctx context.Context, filter domain.TenderFilter) ([]domain.Tender, error) {
	query, args, err := listQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tenders: %w", err)
	}
	defer rows.Close()

	var tenders []domain.Tender
	for rows.Next() {
		tender, err := scanTender(rows)
		if err != nil {
			return nil, err
		}
		tenders = append(tenders, tender)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return tenders, nil
}

// Get fetches one tender by primary key; nil when absent.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*domain.Tender, error) {
	query, args, err := psql.Select(tenderColumns...).
		From("tenders").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tender %d: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	tender, err := scanTender(rows)
	if err != nil {
		return nil, err
	}
	return &tender, nil
}

// DeleteAll clears the table; administrative use only.
func (r *PostgresRepository) DeleteAll(ctx context.Context) error {
	query, args, err := psql.Delete("tenders").ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete tenders: %w", err)
	}
	return nil
}

// Stats aggregates stored records for the reporting endpoint.
func (r *PostgresRepository) Stats(ctx context.Context) (*domain.TenderStats, error) {
	stats := &domain.TenderStats{
		KeywordStats: map[string]int{},
		Currency:     domain.DefaultCurrency,
	}

	query, args, err := psql.Select("COUNT(*)", "COALESCE(SUM(value), 0)").
		From("tenders").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build stats: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&stats.TotalTenders, &stats.TotalValue); err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}

	query, args, err = psql.Select("matched_keyword", "COUNT(*)").
		From("tenders").
		Where(sq.NotEq{"matched_keyword": nil}).
		GroupBy("matched_keyword").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build keyword stats: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query keyword stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var keyword string
		var count int
		if err := rows.Scan(&keyword, &count); err != nil {
			return nil, fmt.Errorf("scan keyword stat: %w", err)
		}
		stats.KeywordStats[keyword] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("keyword stats iteration: %w", err)
	}

	return stats, nil
}

func insertQuery(tender domain.Tender) sq.InsertBuilder {
	return psql.Insert("tenders").
		Columns("notice_number", "title", "description", "authority", "supplier",
			"value", "currency", "location", "cpv_code", "publication_date",
			"deadline", "status", "contract_type", "matched_keyword", "link").
		Values(tender.NoticeNumber, tender.Title, nullableString(tender.Description),
			tender.Authority, nullableString(tender.Supplier), tender.Value,
			tender.Currency, nullableString(tender.Location), nullableString(tender.CpvCode),
			nullableTime(tender.PublicationDate), nullableTimePtr(tender.Deadline), tender.Status,
			nullableString(tender.ContractType), nullableString(tender.MatchedKeyword),
			nullableString(tender.Link))
}

func upsertQuery(tender domain.Tender) sq.InsertBuilder {
	return insertQuery(tender).
		Suffix(`ON CONFLICT (notice_number) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			authority = EXCLUDED.authority,
			value = EXCLUDED.value,
			currency = EXCLUDED.currency,
			cpv_code = EXCLUDED.cpv_code,
			publication_date = EXCLUDED.publication_date,
			status = EXCLUDED.status,
			contract_type = EXCLUDED.contract_type,
			matched_keyword = EXCLUDED.matched_keyword,
			link = EXCLUDED.link
			RETURNING id`)
}

func listQuery(filter domain.TenderFilter) sq.SelectBuilder {
	builder := psql.Select(tenderColumns...).From("tenders")

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"title": pattern},
			sq.ILike{"description": pattern},
			sq.ILike{"authority": pattern},
		})
	}
	if filter.Location != "" {
		builder = builder.Where(sq.ILike{"location": "%" + filter.Location + "%"})
	}
	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"status": filter.Status})
	}

	return builder.OrderBy("publication_date")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTender(row rowScanner) (domain.Tender, error) {
	var (
		tender                                   domain.Tender
		description, supplier, location, cpvCode sql.NullString
		contractType, matchedKeyword, link       sql.NullString
		publicationDate, deadline                sql.NullTime
	)

	err := row.Scan(&tender.ID, &tender.NoticeNumber, &tender.Title, &description,
		&tender.Authority, &supplier, &tender.Value, &tender.Currency, &location,
		&cpvCode, &publicationDate, &deadline, &tender.Status, &contractType,
		&matchedKeyword, &link)
	if err != nil {
		return domain.Tender{}, fmt.Errorf("scan tender: %w", err)
	}

	tender.Description = description.String
	tender.Supplier = supplier.String
	tender.Location = location.String
	tender.CpvCode = cpvCode.String
	tender.ContractType = contractType.String
	tender.MatchedKeyword = matchedKeyword.String
	tender.Link = link.String
	if publicationDate.Valid {
		tender.PublicationDate = publicationDate.Time
	}
	if deadline.Valid {
		t := deadline.Time
		tender.Deadline = &t
	}

	return tender, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return value
}

func nullableTimePtr(value *time.Time) any {
	if value == nil {
		return nil
	}
	return *value
}
