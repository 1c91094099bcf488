package database

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"gorm.io/gorm"
)

// ColumnReport lists, for one table, the columns the document layout expects
// but the database lacks, and those the database has but the layout ignores.
type ColumnReport struct {
	Table      string
	Exists     bool
	Missing    []string
	Unexpected []string
}

// generated and bookkeeping columns that documentRow does not scan
var documentExtraColumns = []string{"seq", "id", "project_id"}

// ColumnReports compares every collection table with the document layout.
func (s *PostgresStore) ColumnReports(ctx context.Context) ([]ColumnReport, error) {
	expected := append(modelColumns(documentRow{}), documentExtraColumns...)

	reports := make([]ColumnReport, 0, len(collectionNames))
	for _, name := range collectionNames {
		columns, err := tableColumns(s.db.WithContext(ctx), name)
		if err != nil {
			return nil, err
		}
		report := ColumnReport{Table: name, Exists: len(columns) > 0}
		if report.Exists {
			report.Missing = columnDifference(expected, columns)
			report.Unexpected = columnDifference(columns, expected)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// LogColumnReports runs ColumnReports and logs the outcome per table.
func (s *PostgresStore) LogColumnReports(ctx context.Context) error {
	reports, err := s.ColumnReports(ctx)
	if err != nil {
		return err
	}
	total := 0
	for _, report := range reports {
		event := s.logger.Info()
		if !report.Exists || len(report.Missing) > 0 || len(report.Unexpected) > 0 {
			event = s.logger.Warn()
		}
		event.
			Str("table", report.Table).
			Bool("exists", report.Exists).
			Strs("missing", report.Missing).
			Strs("unexpected", report.Unexpected).
			Msg("column report")
		total += len(report.Missing) + len(report.Unexpected)
	}
	s.logger.Info().Int("mismatches", total).Msg("column report complete")
	return nil
}

func tableColumns(db *gorm.DB, table string) ([]string, error) {
	var columns []string
	query := `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_name = ?
		AND table_schema = CURRENT_SCHEMA()
		ORDER BY ordinal_position
	`
	if err := db.Raw(query, table).Scan(&columns).Error; err != nil {
		return nil, fmt.Errorf("error querying columns for table %s: %w", table, err)
	}
	return columns, nil
}

// modelColumns extracts the gorm column names declared on model's fields.
func modelColumns(model any) []string {
	var columns []string
	t := reflect.TypeOf(model)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			continue
		}
		if column := columnFromGormTag(field.Tag.Get("gorm")); column != "" {
			columns = append(columns, column)
		}
	}
	return columns
}

func columnFromGormTag(tag string) string {
	for _, part := range strings.Split(tag, ";") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "column:") {
			return strings.TrimPrefix(part, "column:")
		}
	}
	return ""
}

// columnDifference returns the entries of a that are not in b.
func columnDifference(a, b []string) []string {
	seen := make(map[string]bool, len(b))
	for _, column := range b {
		seen[column] = true
	}
	var diff []string
	for _, column := range a {
		if !seen[column] {
			diff = append(diff, column)
		}
	}
	return diff
}
