package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAndNormalize(t *testing.T) {
	tests := []struct {
		name       string
		sql        string
		wantSQL    string
		wantErr    error
	}{
		{
			name:    "plain select",
			sql:     "SELECT * FROM tide_predictions",
			wantSQL: "SELECT * FROM tide_predictions",
		},
		{
			name:    "trailing semicolon stripped",
			sql:     "SELECT port_name, height_m FROM tide_predictions;",
			wantSQL: "SELECT port_name, height_m FROM tide_predictions",
		},
		{
			name:    "trailing semicolon with whitespace",
			sql:     "  SELECT 1 ;  \n",
			wantSQL: "SELECT 1",
		},
		{
			name:    "with CTE",
			sql:     "WITH daily AS (SELECT date_trunc('day', tide_time) d FROM tide_predictions) SELECT * FROM daily",
			wantSQL: "WITH daily AS (SELECT date_trunc('day', tide_time) d FROM tide_predictions) SELECT * FROM daily",
		},
		{
			name:    "semicolon inside string literal is fine",
			sql:     "SELECT * FROM events WHERE name = 'a;b'",
			wantSQL: "SELECT * FROM events WHERE name = 'a;b'",
		},
		{
			name:    "multiple statements",
			sql:     "SELECT 1; SELECT 2",
			wantErr: ErrMultipleStatements,
		},
		{
			name:    "piggybacked drop",
			sql:     "SELECT 1; DROP TABLE documents",
			wantErr: ErrMultipleStatements,
		},
		{
			name:    "insert rejected",
			sql:     "INSERT INTO events (name) VALUES ('x')",
			wantErr: ErrNotSelect,
		},
		{
			name:    "update rejected",
			sql:     "UPDATE documents SET status = 'SUCCESS'",
			wantErr: ErrNotSelect,
		},
		{
			name:    "delete rejected",
			sql:     "DELETE FROM chunks",
			wantErr: ErrNotSelect,
		},
		{
			name:    "ddl rejected",
			sql:     "DROP TABLE tide_predictions",
			wantErr: ErrNotSelect,
		},
		{
			name:    "data-modifying CTE rejected",
			sql:     "WITH gone AS (DELETE FROM chunks RETURNING id) SELECT count(*) FROM gone",
			wantErr: ErrNotSelect,
		},
		{
			name:    "write verb inside string literal is fine",
			sql:     "WITH e AS (SELECT * FROM events WHERE category = 'delete me') SELECT * FROM e",
			wantSQL: "WITH e AS (SELECT * FROM events WHERE category = 'delete me') SELECT * FROM e",
		},
		{
			name:    "column name containing a write verb is fine",
			sql:     "WITH c AS (SELECT created_at, updated_by FROM documents) SELECT * FROM c",
			wantSQL: "WITH c AS (SELECT created_at, updated_by FROM documents) SELECT * FROM c",
		},
		{
			name:    "leading comment skipped",
			sql:     "-- busiest ports\nSELECT port_name FROM tide_predictions",
			wantSQL: "-- busiest ports\nSELECT port_name FROM tide_predictions",
		},
		{
			name:    "empty statement",
			sql:     "   ",
			wantSQL: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateAndNormalize(tt.sql)
			if tt.wantErr != nil {
				assert.ErrorIs(t, result.Error, tt.wantErr)
				return
			}
			assert.NoError(t, result.Error)
			assert.Equal(t, tt.wantSQL, result.NormalizedSQL)
		})
	}
}

func TestStripTrailingSemicolonOnlyRemovesOne(t *testing.T) {
	assert.Equal(t, "SELECT 1;", stripTrailingSemicolon("SELECT 1;;"))
}
