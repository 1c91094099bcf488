package database

import (
	"fmt"

	"github.com/rpupo63/colbee-backend/models"
	"gorm.io/datatypes"
)

// documentRow is how the SQL stores persist a record: the internal id as
// the primary key and the rest of the document as JSON. `id` and
// `project_id` are generated columns extracted from doc.
type documentRow struct {
	InternalID string            `gorm:"column:internal_id"`
	Doc        datatypes.JSONMap `gorm:"column:doc"`
}

func (r documentRow) record() models.RawRecord {
	raw := models.RawRecord(r.Doc)
	if raw == nil {
		raw = models.RawRecord{}
	}
	raw[models.KeyInternalID] = r.InternalID
	return raw
}

func toJSONMap(doc models.RawRecord) datatypes.JSONMap {
	if doc == nil {
		return datatypes.JSONMap{}
	}
	return datatypes.JSONMap(doc.Without(models.KeyInternalID))
}

// sqlColumn maps a Filter field onto its indexed column.
func sqlColumn(field string) (string, error) {
	switch field {
	case models.KeyID:
		return "id", nil
	case models.KeyInternalID:
		return "internal_id", nil
	case models.KeyProjectID:
		return "project_id", nil
	}
	return "", fmt.Errorf("unsupported filter field %q", field)
}

// whereClause renders filter as a SQL condition with a single placeholder.
func whereClause(filter Filter) (string, []any, error) {
	if filter.IsZero() {
		return "", nil, nil
	}
	column, err := sqlColumn(filter.Field)
	if err != nil {
		return "", nil, err
	}
	return " WHERE " + column + " = ?", []any{filter.Value}, nil
}
