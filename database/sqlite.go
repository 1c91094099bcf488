package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rpupo63/colbee-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps each collection in a table of JSON documents.
type SQLiteStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewSQLiteStore opens dsn, which may be a file path or ":memory:".
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection keeps ":memory:" databases shared and serialises writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: log.With().Str("store", "sqlite").Logger(),
	}, nil
}

func (s *SQLiteStore) Name() string { return "sqlite" }

func (s *SQLiteStore) Collection(name string) Collection {
	return sqliteCollection{db: s.db, table: quoteIdent(name)}
}

func (s *SQLiteStore) Migrate(ctx context.Context, name string) error {
	table := quoteIdent(name)
	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    internal_id TEXT PRIMARY KEY,
    doc TEXT NOT NULL CHECK (json_valid(doc)),
    id TEXT GENERATED ALWAYS AS (json_extract(doc, '$.id')) VIRTUAL,
    project_id TEXT GENERATED ALWAYS AS (json_extract(doc, '$.projectId')) VIRTUAL
)`, table),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (id)`, quoteIdent(name+"_id_key"), table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (project_id)`, quoteIdent(name+"_project_id_idx"), table),
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", name, err)
		}
	}
	s.logger.Debug().Str("collection", name).Msg("collection migrated")
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close(context.Context) error {
	return s.db.Close()
}

type sqliteCollection struct {
	db    *sql.DB
	table string
}

func (c sqliteCollection) FindOne(ctx context.Context, filter Filter) (models.RawRecord, error) {
	where, args, err := whereClause(filter)
	if err != nil {
		return nil, err
	}
	query := "SELECT internal_id, doc FROM " + c.table + where + " LIMIT 1"
	return c.queryRow(ctx, query, args...)
}

func (c sqliteCollection) FindMany(ctx context.Context, filter Filter) ([]models.RawRecord, error) {
	where, args, err := whereClause(filter)
	if err != nil {
		return nil, err
	}
	query := "SELECT internal_id, doc FROM " + c.table + where + " ORDER BY rowid"

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: find %s: %w", c.table, err)
	}
	defer rows.Close()

	records := []models.RawRecord{}
	for rows.Next() {
		var row documentRow
		if err := rows.Scan(&row.InternalID, &row.Doc); err != nil {
			return nil, fmt.Errorf("sqlite: scan %s: %w", c.table, err)
		}
		records = append(records, row.record())
	}
	return records, rows.Err()
}

func (c sqliteCollection) InsertOne(ctx context.Context, doc models.RawRecord) (string, error) {
	internalID := primitive.NewObjectID().Hex()
	_, err := c.db.ExecContext(ctx,
		"INSERT INTO "+c.table+" (internal_id, doc) VALUES (?, ?)",
		internalID, toJSONMap(doc),
	)
	if err != nil {
		return "", fmt.Errorf("sqlite: insert %s: %w", c.table, err)
	}
	return internalID, nil
}

func (c sqliteCollection) UpdateOne(ctx context.Context, filter Filter, update Update) (models.RawRecord, error) {
	if filter.IsZero() {
		return nil, fmt.Errorf("sqlite: update %s: empty filter", c.table)
	}
	where, whereArgs, err := whereClause(filter)
	if err != nil {
		return nil, err
	}

	expr, args := jsonRemove("doc", update.Unset)
	args = append(args, toJSONMap(update.Set))
	args = append(args, whereArgs...)

	query := "UPDATE " + c.table + " SET doc = json_patch(" + expr + ", ?)" + where + " RETURNING internal_id, doc"
	return c.queryRow(ctx, query, args...)
}

func (c sqliteCollection) ToggleOne(ctx context.Context, filter Filter, toggle Toggle) (models.RawRecord, error) {
	if filter.IsZero() {
		return nil, fmt.Errorf("sqlite: toggle %s: empty filter", c.table)
	}
	where, whereArgs, err := whereClause(filter)
	if err != nil {
		return nil, err
	}

	removed, args := jsonRemove("doc", toggle.Fallbacks)
	args = append(args, jsonPath(toggle.Field))

	// the CASE reads the row as it was before this statement
	current := make([]string, 0, len(toggle.Fallbacks)+2)
	for _, key := range append([]string{toggle.Field}, toggle.Fallbacks...) {
		current = append(current, "json_extract(doc, ?)")
		args = append(args, jsonPath(key))
	}
	current = append(current, "0")
	flipped := "CASE WHEN COALESCE(" + strings.Join(current, ", ") + ") IN (0, '') THEN json('true') ELSE json('false') END"

	args = append(args, toJSONMap(toggle.Set))
	args = append(args, whereArgs...)

	query := "UPDATE " + c.table +
		" SET doc = json_patch(json_set(" + removed + ", ?, " + flipped + "), ?)" +
		where + " RETURNING internal_id, doc"
	return c.queryRow(ctx, query, args...)
}

func (c sqliteCollection) DeleteOne(ctx context.Context, filter Filter) error {
	if filter.IsZero() {
		return fmt.Errorf("sqlite: delete %s: empty filter", c.table)
	}
	where, args, err := whereClause(filter)
	if err != nil {
		return err
	}

	// SQLite has no DELETE ... LIMIT without a compile option
	query := "DELETE FROM " + c.table + " WHERE rowid = (SELECT rowid FROM " + c.table + where + " LIMIT 1)"
	result, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("sqlite: delete %s: %w", c.table, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: delete %s: %w", c.table, err)
	}
	if affected == 0 {
		return ErrNoRecord
	}
	return nil
}

func (c sqliteCollection) queryRow(ctx context.Context, query string, args ...any) (models.RawRecord, error) {
	var row documentRow
	err := c.db.QueryRowContext(ctx, query, args...).Scan(&row.InternalID, &row.Doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: %s: %w", c.table, err)
	}
	return row.record(), nil
}

// jsonRemove renders json_remove(target, paths...) with one placeholder per
// key, or target itself when there is nothing to remove.
func jsonRemove(target string, keys []string) (string, []any) {
	if len(keys) == 0 {
		return target, nil
	}
	placeholders := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, key := range keys {
		placeholders[i] = "?"
		args[i] = jsonPath(key)
	}
	return "json_remove(" + target + ", " + strings.Join(placeholders, ", ") + ")", args
}

func jsonPath(key string) string {
	return `$."` + key + `"`
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
