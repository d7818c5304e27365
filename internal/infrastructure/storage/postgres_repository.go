package storage

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"JournalCrawler/internal/domain"
	"JournalCrawler/internal/ports"
)

const defaultTable = "articles"

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

var articleColumns = []string{
	"id", "entry_number", "article_number", "title", "authors", "journal", "year",
	"volume", "number", "pages", "abstract", "keywords", "doi", "issn",
	"created_at", "updated_at",
}

type pgPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

// PostgresRepository persists reconciled articles into Postgres.
type PostgresRepository struct {
	db    pgPool
	table string
	psql  sq.StatementBuilderType
	now   func() time.Time
}

var _ ports.ArticleStore = (*PostgresRepository)(nil)

// NewPostgresRepository opens a lazily connecting pool; an unreachable
// server surfaces later as LookupUnavailable / ErrStoreUnavailable.
func NewPostgresRepository(ctx context.Context, dsn, table string, maxConns int32) (*PostgresRepository, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if maxConns > 0 {
		poolCfg.MaxConns = maxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	return NewPostgresRepositoryWithPool(pool, table)
}

// NewPostgresRepositoryWithPool wires an existing pool (pgxmock in tests).
func NewPostgresRepositoryWithPool(db pgPool, table string) (*PostgresRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = defaultTable
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &PostgresRepository{
		db:    db,
		table: table,
		psql:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		now:   time.Now,
	}, nil
}

// Close releases the pool.
func (r *PostgresRepository) Close() {
	if r == nil || r.db == nil {
		return
	}
	r.db.Close()
}

// EnsureSchema creates the article table and its lookup index.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id BIGSERIAL PRIMARY KEY,
	entry_number TEXT NOT NULL UNIQUE,
	article_number TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL DEFAULT '',
	authors TEXT[],
	journal TEXT NOT NULL DEFAULT '',
	year TEXT NOT NULL DEFAULT '',
	volume TEXT NOT NULL DEFAULT '',
	number TEXT NOT NULL DEFAULT '',
	pages TEXT NOT NULL DEFAULT '',
	abstract TEXT NOT NULL DEFAULT '',
	keywords TEXT[],
	doi TEXT NOT NULL DEFAULT '',
	issn TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`, r.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_article_number_idx ON %s (article_number)`, r.table, r.table),
	}
	for _, stmt := range stmts {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return wrapStoreErr("ensure schema", err)
		}
	}
	return nil
}

// FindByArticleNumber looks up an article by its listing-time number.
func (r *PostgresRepository) FindByArticleNumber(ctx context.Context, number string) (domain.Lookup, error) {
	return r.findOne(ctx, sq.Eq{"article_number": number})
}

// FindByEntryNumber looks up an article by its citation entry number.
func (r *PostgresRepository) FindByEntryNumber(ctx context.Context, entry string) (domain.Lookup, error) {
	return r.findOne(ctx, sq.Eq{"entry_number": entry})
}

func (r *PostgresRepository) findOne(ctx context.Context, pred sq.Eq) (domain.Lookup, error) {
	query, args, err := r.psql.Select(articleColumns...).From(r.table).Where(pred).Limit(1).ToSql()
	if err != nil {
		return domain.Lookup{}, fmt.Errorf("build lookup: %w", err)
	}

	var a domain.Article
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&a.ID, &a.EntryNumber, &a.ArticleNumber, &a.Title, &a.Authors, &a.Journal, &a.Year,
		&a.Volume, &a.Number, &a.Pages, &a.Abstract, &a.Keywords, &a.DOI, &a.ISSN,
		&a.CreatedAt, &a.UpdatedAt,
	)
	switch {
	case err == nil:
		return domain.Lookup{Status: domain.LookupFound, Article: a}, nil
	case errors.Is(err, pgx.ErrNoRows):
		return domain.Lookup{Status: domain.LookupNotFound}, nil
	case isUnavailable(err):
		return domain.Lookup{Status: domain.LookupUnavailable}, nil
	default:
		return domain.Lookup{}, fmt.Errorf("query article: %w", err)
	}
}

// Save upserts the article by entry number and fills ID and timestamps.
func (r *PostgresRepository) Save(ctx context.Context, article *domain.Article) error {
	if article == nil || article.EntryNumber == "" {
		return fmt.Errorf("entry number is required")
	}

	now := r.now().UTC()
	query, args, err := r.psql.Insert(r.table).
		Columns(
			"entry_number", "article_number", "title", "authors", "journal", "year",
			"volume", "number", "pages", "abstract", "keywords", "doi", "issn",
			"created_at", "updated_at",
		).
		Values(
			article.EntryNumber, article.ArticleNumber, article.Title, article.Authors,
			article.Journal, article.Year, article.Volume, article.Number, article.Pages,
			article.Abstract, article.Keywords, article.DOI, article.ISSN, now, now,
		).
		Suffix(`ON CONFLICT (entry_number) DO UPDATE SET
	article_number = EXCLUDED.article_number,
	title = EXCLUDED.title,
	authors = EXCLUDED.authors,
	journal = EXCLUDED.journal,
	year = EXCLUDED.year,
	volume = EXCLUDED.volume,
	number = EXCLUDED.number,
	pages = EXCLUDED.pages,
	abstract = EXCLUDED.abstract,
	keywords = EXCLUDED.keywords,
	doi = EXCLUDED.doi,
	issn = EXCLUDED.issn,
	updated_at = EXCLUDED.updated_at
RETURNING id, created_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	var (
		id        int64
		createdAt time.Time
	)
	if err := r.db.QueryRow(ctx, query, args...).Scan(&id, &createdAt); err != nil {
		return wrapStoreErr("upsert article", err)
	}

	article.ID = id
	article.CreatedAt = createdAt
	article.UpdatedAt = now
	return nil
}

func wrapStoreErr(op string, err error) error {
	if isUnavailable(err) {
		return fmt.Errorf("%s: %w: %w", op, ports.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isUnavailable reports connection-level failures as opposed to query errors.
func isUnavailable(err error) bool {
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	if pgconn.Timeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
