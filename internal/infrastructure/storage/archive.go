package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"TweetCleaner/internal/domain"
	"TweetCleaner/internal/ports"
)

const table = "deleted_posts"

const schema = `CREATE TABLE IF NOT EXISTS deleted_posts (
    run_id          TEXT NOT NULL,
    post_id         TEXT NOT NULL,
    text            TEXT NOT NULL,
    posted_at       TIMESTAMP,
    deleted_at      TIMESTAMP NOT NULL,
    keywords        TEXT NOT NULL,
    oracle_response TEXT NOT NULL,
    PRIMARY KEY (run_id, post_id)
)`

// Archive persists deleted posts into SQLite or Postgres.
type Archive struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.Archive = (*Archive)(nil)

// Open connects to the configured database and ensures the schema exists.
// driver is "sqlite" or "postgres".
func Open(ctx context.Context, driver, dsn string) (*Archive, error) {
	name, err := driverName(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s archive: %w", name, err)
	}
	if name == "sqlite" {
		// SQLite serialises writers anyway.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s archive: %w", name, err)
	}

	archive := NewArchive(db, name)
	if err := archive.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return archive, nil
}

// NewArchive wires a sql.DB implementation.
func NewArchive(db *sql.DB, driver string) *Archive {
	var placeholder sq.PlaceholderFormat = sq.Question
	if driver == "postgres" {
		placeholder = sq.Dollar
	}
	return &Archive{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholder),
	}
}

// Migrate creates the archive table if it does not exist.
func (a *Archive) Migrate(ctx context.Context) error {
	if _, err := a.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate archive: %w", err)
	}
	return nil
}

// Record inserts the deleted post. Recording the same post twice for a run is a no-op.
func (a *Archive) Record(ctx context.Context, post domain.ArchivedPost) error {
	if a.db == nil {
		return nil
	}

	_, err := a.builder.
		Insert(table).
		Columns("run_id", "post_id", "text", "posted_at", "deleted_at", "keywords", "oracle_response").
		Values(post.RunID, post.PostID, post.Text, nullTime(post.PostedAt), post.DeletedAt.UTC(), post.Keywords.String(), post.OracleResponse).
		Suffix("ON CONFLICT (run_id, post_id) DO NOTHING").
		RunWith(a.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("insert archived post %s: %w", post.PostID, err)
	}

	return nil
}

// postIDs lists the posts archived for a run in deletion order.
func (a *Archive) postIDs(ctx context.Context, runID string) ([]string, error) {
	rows, err := a.builder.
		Select("post_id").
		From(table).
		Where(sq.Eq{"run_id": runID}).
		OrderBy("deleted_at", "post_id").
		RunWith(a.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query archived posts: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan post id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return ids, nil
}

// Close releases the database handle.
func (a *Archive) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func driverName(driver string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3":
		return "sqlite", nil
	case "postgres", "postgresql", "pg":
		return "postgres", nil
	default:
		return "", fmt.Errorf("unsupported archive driver %q (use sqlite or postgres)", driver)
	}
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}
