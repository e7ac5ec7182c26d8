package clickhouse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaStatementsQualifyDatabase(t *testing.T) {
	stmts := schemaStatements("analytics")
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0], "analytics.order_facts")
	assert.Contains(t, stmts[1], "analytics.order_item_facts")
	for _, stmt := range stmts {
		assert.Contains(t, stmt, "IF NOT EXISTS")
		assert.Contains(t, stmt, "date_key")
	}
}
