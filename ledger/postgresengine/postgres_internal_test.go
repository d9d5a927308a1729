package postgresengine

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookledger/lendingledger/ledger"
)

func newStoreForSQL(t *testing.T) *LedgerStore {
	t.Helper()

	s, err := newLedgerStore(nil)
	require.NoError(t, err)

	return s
}

func Test_BuildSelectQuery_MatchingAllActions(t *testing.T) {
	s := newStoreForSQL(t)

	sqlQuery, err := s.buildSelectQuery(ledger.MatchingAllActions())

	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "kind", "book_id", "member_id", "action_date", "sequence_number" FROM "ledger_actions" ORDER BY "sequence_number" ASC`,
		sqlQuery,
	)
}

func Test_BuildSelectQuery_WithAllCriteria(t *testing.T) {
	// arrange
	s := newStoreForSQL(t)
	filter := ledger.BuildFilter().
		ForBooks(5).
		OfKinds(ledger.ActionOut).
		WithSequenceNumberHigherThan(3).
		Finalize()

	// act
	sqlQuery, err := s.buildSelectQuery(filter)

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `"book_id" IN (5)`)
	assert.Contains(t, sqlQuery, `"kind" IN ('OUT')`)
	assert.Contains(t, sqlQuery, `"sequence_number" > 3`)
	assert.Contains(t, sqlQuery, `ORDER BY "sequence_number" ASC`)
}

func Test_BuildAppendQuery_SingleAction(t *testing.T) {
	// arrange
	s := newStoreForSQL(t)
	action, err := ledger.BuildAction(ledger.ActionOut, 5, "4444", time.Date(2024, 5, 14, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	// act
	sqlQuery, buildErr := s.buildAppendQuery(ledger.Actions{action}, ledger.BuildFilter().ForBooks(5).Finalize(), 3)

	// assert
	require.NoError(t, buildErr)
	assert.Contains(t, sqlQuery, `WITH context AS (SELECT MAX("sequence_number") AS "max_seq" FROM "ledger_actions"`)
	assert.Contains(t, sqlQuery, `"book_id" IN (5)`)
	assert.Contains(t, sqlQuery, `INSERT INTO "ledger_actions" ("kind", "book_id", "member_id", "action_date")`)
	assert.Contains(t, sqlQuery, `'OUT'::text, 5::integer, '4444'::text, '2024-05-14'::date`)
	assert.Contains(t, sqlQuery, `COALESCE("max_seq", 0) = 3`)
	assert.NotContains(t, sqlQuery, "UNION ALL")
}

func Test_BuildAppendQuery_MultipleActions(t *testing.T) {
	// arrange
	s := newStoreForSQL(t)
	s.tableName = "lending"
	day := time.Date(2024, 5, 14, 0, 0, 0, 0, time.UTC)
	returned, err := ledger.BuildAction(ledger.ActionReturn, 5, "4444", day)
	require.NoError(t, err)
	dereserved, err := ledger.BuildAction(ledger.ActionDereserve, 5, "3333", day)
	require.NoError(t, err)

	// act
	sqlQuery, buildErr := s.buildAppendQuery(ledger.Actions{returned, dereserved}, ledger.MatchingAllActions(), 0)

	// assert
	require.NoError(t, buildErr)
	assert.Contains(t, sqlQuery, `INSERT INTO "lending"`)
	assert.Contains(t, sqlQuery, "UNION ALL")
	assert.Contains(t, sqlQuery, `'RETURN'::text`)
	assert.Contains(t, sqlQuery, `'DERESERVE'::text`)
	assert.Less(t, strings.Index(sqlQuery, "'RETURN'"), strings.Index(sqlQuery, "'DERESERVE'"), "records keep their order")
	assert.Contains(t, sqlQuery, `COALESCE("max_seq", 0) = 0`)
}

func Test_SchemaStatements(t *testing.T) {
	s := newStoreForSQL(t)

	statements := s.schemaStatements()

	require.Len(t, statements, 2)
	assert.Contains(t, statements[0], `CREATE TABLE IF NOT EXISTS "ledger_actions"`)
	assert.Contains(t, statements[0], "sequence_number BIGSERIAL PRIMARY KEY")
	assert.Contains(t, statements[1], `CREATE INDEX IF NOT EXISTS "ledger_actions_book_id_idx"`)
}

func Test_WithTableName_Empty(t *testing.T) {
	_, err := newLedgerStore(nil, WithTableName(""))

	assert.ErrorIs(t, err, ledger.ErrEmptyTableName)
}

func Test_ToAction_RejectsUnknownKind(t *testing.T) {
	_, err := toAction(queryResultRow{kind: "LOST", bookID: 1, memberID: "1111"})

	assert.ErrorIs(t, err, ledger.ErrUnknownActionKind)
}
