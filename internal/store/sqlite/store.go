// Package sqlite implements the document store over a SQLite blogs table.
// Embedding vectors persist as a JSON array in a nullable text column.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"blogsearch/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS blogs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	tags TEXT NOT NULL DEFAULT '',
	embedding TEXT,
	published_at DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS index_blogs_on_published_at ON blogs(published_at);
CREATE INDEX IF NOT EXISTS index_blogs_on_created_at ON blogs(created_at);
`

const columns = "id, title, content, tags, embedding, published_at, created_at, updated_at"

// Store is a SQLite-backed document store.
type Store struct {
	db  *sqlx.DB
	log *zap.Logger
}

// Open connects to the SQLite database at path, creating the schema if
// needed.
func Open(path string, log *zap.Logger) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: connect: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: init schema: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error { return s.db.Close() }

type blogRow struct {
	ID          int64          `db:"id"`
	Title       string         `db:"title"`
	Content     string         `db:"content"`
	Tags        string         `db:"tags"`
	Embedding   sql.NullString `db:"embedding"`
	PublishedAt sql.NullTime   `db:"published_at"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// document maps a row to the domain type. A stored embedding that fails to
// parse is logged and treated as absent; one corrupt record must not abort a
// whole query.
func (s *Store) document(r blogRow) domain.Document {
	doc := domain.Document{
		ID:        r.ID,
		Title:     r.Title,
		Content:   r.Content,
		Tags:      r.Tags,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.PublishedAt.Valid {
		t := r.PublishedAt.Time
		doc.PublishedAt = &t
	}
	if r.Embedding.Valid && strings.TrimSpace(r.Embedding.String) != "" {
		var values []float64
		if err := json.Unmarshal([]byte(r.Embedding.String), &values); err != nil {
			s.log.Warn("skipping stored embedding with invalid JSON",
				zap.Int64("document_id", r.ID),
				zap.Error(err))
		} else {
			doc.Embedding = domain.NewEmbedding(values)
		}
	}
	return doc
}

func (s *Store) documents(rows []blogRow) []domain.Document {
	docs := make([]domain.Document, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, s.document(r))
	}
	return docs
}

// Create inserts a document and fills in its id and timestamps.
func (s *Store) Create(ctx context.Context, doc *domain.Document) error {
	now := time.Now().UTC()
	var embedding any
	if doc.Embedding.Present {
		data, err := json.Marshal(doc.Embedding.Values)
		if err != nil {
			return fmt.Errorf("sqlite: encode embedding: %w", err)
		}
		embedding = string(data)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO blogs (title, content, tags, embedding, published_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		doc.Title, doc.Content, doc.Tags, embedding, doc.PublishedAt, now, now)
	if err != nil {
		return fmt.Errorf("sqlite: insert document: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: read insert id: %w", err)
	}
	doc.ID = id
	doc.CreatedAt = now
	doc.UpdatedAt = now
	return nil
}

// ByID returns the document with the given id, or domain.ErrNotFound.
func (s *Store) ByID(ctx context.Context, id int64) (domain.Document, error) {
	var row blogRow
	err := s.db.GetContext(ctx, &row,
		`SELECT `+columns+` FROM blogs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Document{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Document{}, fmt.Errorf("sqlite: select document: %w", err)
	}
	return s.document(row), nil
}

// All returns every document, most recently created first.
func (s *Store) All(ctx context.Context) ([]domain.Document, error) {
	var rows []blogRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+columns+` FROM blogs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: select documents: %w", err)
	}
	return s.documents(rows), nil
}

// Published returns published documents, most recently published first.
func (s *Store) Published(ctx context.Context) ([]domain.Document, error) {
	var rows []blogRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+columns+` FROM blogs WHERE published_at IS NOT NULL ORDER BY published_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: select published documents: %w", err)
	}
	return s.documents(rows), nil
}

// PublishedByIDs returns the published subset of the given ids. Ids that are
// unknown or unpublished are silently skipped.
func (s *Store) PublishedByIDs(ctx context.Context, ids []int64) ([]domain.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(
		`SELECT `+columns+` FROM blogs WHERE id IN (?) AND published_at IS NOT NULL ORDER BY published_at DESC`, ids)
	if err != nil {
		return nil, fmt.Errorf("sqlite: build id query: %w", err)
	}
	var rows []blogRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("sqlite: select documents by id: %w", err)
	}
	return s.documents(rows), nil
}

// PublishedMissingEmbedding returns published documents that still need a
// vector computed.
func (s *Store) PublishedMissingEmbedding(ctx context.Context) ([]domain.Document, error) {
	var rows []blogRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+columns+` FROM blogs
		 WHERE published_at IS NOT NULL AND (embedding IS NULL OR embedding = '')
		 ORDER BY published_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: select documents missing embedding: %w", err)
	}
	return s.documents(rows), nil
}

// UpdateEmbedding persists a freshly computed vector for the document.
// updated_at is left untouched; the article content did not change.
func (s *Store) UpdateEmbedding(ctx context.Context, id int64, values []float64) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("sqlite: encode embedding: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE blogs SET embedding = ? WHERE id = ?`, string(data), id)
	if err != nil {
		return fmt.Errorf("sqlite: update embedding: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: update embedding: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
