package database

import (
	"context"
	"fmt"
	stdlog "log"
	"os"
	"strings"
	"time"

	"github.com/rpupo63/colbee-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

// PostgresStore keeps each collection in a JSONB document table.
type PostgresStore struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewPostgresStore connects to dsn. SELECTs are spread over replicaDSNs when
// any are given; writes and RETURNING statements always hit the primary.
func NewPostgresStore(dsn string, replicaDSNs ...string) (*PostgresStore, error) {
	gormLogger := logger.New(
		stdlog.New(os.Stdout, "\r\n", stdlog.LstdFlags),
		logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt: false,
		Logger:      gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if len(replicaDSNs) > 0 {
		replicas := make([]gorm.Dialector, 0, len(replicaDSNs))
		for _, replica := range replicaDSNs {
			replicas = append(replicas, postgres.New(postgres.Config{
				DSN:                  replica,
				PreferSimpleProtocol: true,
			}))
		}
		if err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		})); err != nil {
			return nil, fmt.Errorf("failed to register postgres replicas: %w", err)
		}
	}

	return NewPostgresStoreFromDB(db), nil
}

// NewPostgresStoreFromDB wraps an already opened connection.
func NewPostgresStoreFromDB(db *gorm.DB) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: log.With().Str("store", "postgres").Logger(),
	}
}

func (s *PostgresStore) Name() string { return "postgres" }

func (s *PostgresStore) Collection(name string) Collection {
	return postgresCollection{db: s.db, table: quoteIdent(name)}
}

func (s *PostgresStore) Migrate(ctx context.Context, name string) error {
	table := quoteIdent(name)
	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    seq BIGSERIAL,
    internal_id TEXT PRIMARY KEY,
    doc JSONB NOT NULL DEFAULT '{}'::jsonb,
    id TEXT GENERATED ALWAYS AS (doc->>'id') STORED,
    project_id TEXT GENERATED ALWAYS AS (doc->>'projectId') STORED
)`, table),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (id)`, quoteIdent(name+"_id_key"), table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (project_id)`, quoteIdent(name+"_project_id_idx"), table),
	}

	db := s.db.WithContext(ctx)
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to migrate %s: %w", name, err)
		}
	}
	s.logger.Debug().Str("collection", name).Msg("collection migrated")
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	var result int
	return s.db.WithContext(ctx).Raw("SELECT 1").Scan(&result).Error
}

func (s *PostgresStore) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type postgresCollection struct {
	db    *gorm.DB
	table string
}

func (c postgresCollection) FindOne(ctx context.Context, filter Filter) (models.RawRecord, error) {
	where, args, err := whereClause(filter)
	if err != nil {
		return nil, err
	}
	return c.one(ctx, "SELECT internal_id, doc FROM "+c.table+where+" LIMIT 1", args...)
}

func (c postgresCollection) FindMany(ctx context.Context, filter Filter) ([]models.RawRecord, error) {
	where, args, err := whereClause(filter)
	if err != nil {
		return nil, err
	}

	var rows []documentRow
	query := "SELECT internal_id, doc FROM " + c.table + where + " ORDER BY seq"
	if err := c.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("postgres: find %s: %w", c.table, err)
	}

	records := make([]models.RawRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record())
	}
	return records, nil
}

func (c postgresCollection) InsertOne(ctx context.Context, doc models.RawRecord) (string, error) {
	internalID := primitive.NewObjectID().Hex()
	err := c.db.WithContext(ctx).
		Exec("INSERT INTO "+c.table+" (internal_id, doc) VALUES (?, ?::jsonb)", internalID, toJSONMap(doc)).
		Error
	if err != nil {
		return "", fmt.Errorf("postgres: insert %s: %w", c.table, err)
	}
	return internalID, nil
}

func (c postgresCollection) UpdateOne(ctx context.Context, filter Filter, update Update) (models.RawRecord, error) {
	if filter.IsZero() {
		return nil, fmt.Errorf("postgres: update %s: empty filter", c.table)
	}
	where, whereArgs, err := whereClause(filter)
	if err != nil {
		return nil, err
	}

	expr, args := jsonbRemove("doc", update.Unset)
	args = append(args, toJSONMap(update.Set))
	args = append(args, whereArgs...)

	query := "UPDATE " + c.table + " SET doc = " + expr + " || ?::jsonb" + where + " RETURNING internal_id, doc"
	return c.one(ctx, query, args...)
}

func (c postgresCollection) ToggleOne(ctx context.Context, filter Filter, toggle Toggle) (models.RawRecord, error) {
	if filter.IsZero() {
		return nil, fmt.Errorf("postgres: toggle %s: empty filter", c.table)
	}
	where, whereArgs, err := whereClause(filter)
	if err != nil {
		return nil, err
	}

	removed, args := jsonbRemove("doc", toggle.Fallbacks)
	args = append(args, toggle.Field)

	truthy, truthyArgs := jsonbTruthy("doc", append([]string{toggle.Field}, toggle.Fallbacks...))
	args = append(args, truthyArgs...)

	args = append(args, toJSONMap(toggle.Set))
	args = append(args, whereArgs...)

	query := "UPDATE " + c.table +
		" SET doc = jsonb_set(" + removed + ", ARRAY[?::text], to_jsonb(NOT " + truthy + ")) || ?::jsonb" +
		where + " RETURNING internal_id, doc"
	return c.one(ctx, query, args...)
}

func (c postgresCollection) DeleteOne(ctx context.Context, filter Filter) error {
	if filter.IsZero() {
		return fmt.Errorf("postgres: delete %s: empty filter", c.table)
	}
	where, args, err := whereClause(filter)
	if err != nil {
		return err
	}

	query := "DELETE FROM " + c.table + " WHERE internal_id = (SELECT internal_id FROM " + c.table + where + " LIMIT 1)"
	result := c.db.WithContext(ctx).Exec(query, args...)
	if result.Error != nil {
		return fmt.Errorf("postgres: delete %s: %w", c.table, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNoRecord
	}
	return nil
}

func (c postgresCollection) one(ctx context.Context, query string, args ...any) (models.RawRecord, error) {
	var rows []documentRow
	if err := c.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("postgres: %s: %w", c.table, err)
	}
	if len(rows) == 0 {
		return nil, ErrNoRecord
	}
	return rows[0].record(), nil
}

// jsonbTruthy renders whether the first non-null of keys on target is
// truthy: false, any numeric zero and "" are false, a missing value is false
// and objects and arrays are true.
func jsonbTruthy(target string, keys []string) (string, []any) {
	var args []any
	value := func() string {
		current := make([]string, 0, len(keys))
		for _, key := range keys {
			current = append(current, "NULLIF("+target+" -> ?::text, 'null'::jsonb)")
			args = append(args, key)
		}
		return "COALESCE(" + strings.Join(current, ", ") + ")"
	}

	expr := "CASE jsonb_typeof(" + value() + ")" +
		" WHEN 'boolean' THEN " + value() + " = 'true'::jsonb" +
		" WHEN 'number' THEN (" + value() + ")::text::numeric <> 0" +
		" WHEN 'string' THEN " + value() + " <> '\"\"'::jsonb" +
		" ELSE " + value() + " IS NOT NULL END"
	return expr, args
}

// jsonbRemove renders target minus each key, one placeholder per key.
func jsonbRemove(target string, keys []string) (string, []any) {
	var b strings.Builder
	b.WriteString(target)
	args := make([]any, 0, len(keys))
	for _, key := range keys {
		b.WriteString(" - ?::text")
		args = append(args, key)
	}
	return b.String(), args
}
