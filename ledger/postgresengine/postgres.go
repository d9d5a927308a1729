package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/bookledger/lendingledger/ledger"
	"github.com/bookledger/lendingledger/ledger/internal/observe"
	"github.com/bookledger/lendingledger/ledger/postgresengine/internal/adapters"
)

const (
	engineName             = "postgres"
	defaultTableName       = "ledger_actions"
	logMsgBuildQueryFailed = "failed to build sql"
	logMsgDBQueryFailed    = "database query execution failed"
	logMsgCloseRowsFailed  = "failed to close database rows"
	logMsgScanRowFailed    = "failed to scan database row"
	logMsgDBExecFailed     = "database execution failed during append"
	logMsgRowsAffected     = "failed to get rows affected count"
	logMsgInvalidAction    = "refusing to append an invalid action"
	logMsgSQLExecuted      = "executed sql for: "
	logAttrQuery           = "query"
	logAttrDurationMS      = "duration_ms"
	logActionQuery         = "query"
	logActionAppend        = "append"
	logActionSchema        = "schema"
	errorTypeBuildQuery    = "build_query"
	errorTypeDatabase      = "database"
	errorTypeScan          = "scan"
	errorTypeInvalidAction = "invalid_action"
	colSequenceNumber      = "sequence_number"
	colKind                = "kind"
	colBookID              = "book_id"
	colMemberID            = "member_id"
	colActionDate          = "action_date"
	cteContext             = "context"
	cteVals                = "vals"
	dialectPostgres        = "postgres"
	aliasMaxSeq            = "max_seq"
	castText               = "?::text"
	castInteger            = "?::integer"
	castDate               = "?::date"
)

type sqlQueryString = string

// LedgerStore keeps the ledger in a PostgreSQL table.
type LedgerStore struct {
	db        adapters.DBAdapter
	tableName string
	observer  observe.Observer
}

type queryResultRow struct {
	kind           string
	bookID         int64
	memberID       string
	actionDate     time.Time
	sequenceNumber int64
}

// NewLedgerStoreFromPGXPool creates a new LedgerStore using a pgx Pool with optional configuration.
func NewLedgerStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*LedgerStore, error) {
	if db == nil {
		return nil, ledger.ErrNilDatabaseConnection
	}

	return newLedgerStore(adapters.NewPGXAdapter(db), options...)
}

// NewLedgerStoreFromSQLDB creates a new LedgerStore using a sql.DB with optional configuration.
func NewLedgerStoreFromSQLDB(db *sql.DB, options ...Option) (*LedgerStore, error) {
	if db == nil {
		return nil, ledger.ErrNilDatabaseConnection
	}

	return newLedgerStore(adapters.NewSQLAdapter(db), options...)
}

// NewLedgerStoreFromSQLX creates a new LedgerStore using a sqlx.DB with optional configuration.
func NewLedgerStoreFromSQLX(db *sqlx.DB, options ...Option) (*LedgerStore, error) {
	if db == nil {
		return nil, ledger.ErrNilDatabaseConnection
	}

	return newLedgerStore(adapters.NewSQLXAdapter(db), options...)
}

func newLedgerStore(db adapters.DBAdapter, options ...Option) (*LedgerStore, error) {
	s := &LedgerStore{
		db:        db,
		tableName: defaultTableName,
		observer:  observe.Observer{Engine: engineName},
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// TableName returns the name of the table holding the ledger.
func (s *LedgerStore) TableName() string {
	return s.tableName
}

// CreateSchema creates the ledger table and its index if they do not exist yet.
func (s *LedgerStore) CreateSchema(ctx context.Context) error {
	for _, statement := range s.schemaStatements() {
		start := time.Now()
		_, execErr := s.db.Exec(ctx, statement)
		s.logSQL(ctx, statement, logActionSchema, time.Since(start))

		if execErr != nil {
			s.observer.Error(ctx, logMsgDBExecFailed, execErr, logAttrQuery, statement)
			return ledger.StorageError(ledger.ErrAppendingActionFailed, execErr)
		}
	}

	return nil
}

func (s *LedgerStore) schemaStatements() []sqlQueryString {
	table := pgx.Identifier{s.tableName}.Sanitize()
	index := pgx.Identifier{s.tableName + "_book_id_idx"}.Sanitize()

	return []sqlQueryString{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s BIGSERIAL PRIMARY KEY,
	%s TEXT NOT NULL CHECK (%s IN ('OUT', 'RETURN', 'RESERVE', 'DERESERVE')),
	%s INTEGER NOT NULL CHECK (%s > 0),
	%s CHAR(4) NOT NULL,
	%s DATE NOT NULL
)`, table, colSequenceNumber, colKind, colKind, colBookID, colBookID, colMemberID, colActionDate),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (%s, %s)`, index, table, colBookID, colSequenceNumber),
	}
}

// ReadAll returns every record of the ledger in append order.
func (s *LedgerStore) ReadAll(ctx context.Context) (ledger.Actions, error) {
	actions, _, err := s.Query(ctx, ledger.MatchingAllActions())

	return actions, err
}

// Query retrieves the records matching filter in append order,
// as well as the sequence number of the last matching record.
func (s *LedgerStore) Query(ctx context.Context, filter ledger.Filter) (
	ledger.Actions,
	ledger.MaxSequenceNumberUint,
	error,
) {

	ctx, op := s.observer.StartQuery(ctx)

	sqlQuery, buildQueryErr := s.buildSelectQuery(filter)
	if buildQueryErr != nil {
		op.Failed(logMsgBuildQueryFailed, errorTypeBuildQuery, buildQueryErr)
		return nil, 0, buildQueryErr
	}

	start := time.Now()
	rows, queryErr := s.db.Query(ctx, sqlQuery)
	s.logSQL(ctx, sqlQuery, logActionQuery, time.Since(start))

	if queryErr != nil {
		op.Failed(logMsgDBQueryFailed, errorTypeDatabase, queryErr, logAttrQuery, sqlQuery)
		return nil, 0, ledger.StorageError(ledger.ErrReadingLedgerFailed, queryErr)
	}
	defer s.closeRows(ctx, rows)

	actions, maxSequenceNumber, scanErr := s.processQueryResults(rows)
	if scanErr != nil {
		op.Failed(logMsgScanRowFailed, errorTypeScan, scanErr)
		return nil, 0, scanErr
	}

	op.QuerySucceeded(len(actions), maxSequenceNumber)

	return actions, maxSequenceNumber, nil
}

func (s *LedgerStore) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		s.observer.Warn(ctx, logMsgCloseRowsFailed, closeErr)
	}
}

func (s *LedgerStore) processQueryResults(rows adapters.DBRows) (
	ledger.Actions,
	ledger.MaxSequenceNumberUint,
	error,
) {

	result := queryResultRow{}
	actions := make(ledger.Actions, 0)
	maxSequenceNumber := ledger.MaxSequenceNumberUint(0)

	for rows.Next() {
		rowScanErr := rows.Scan(&result.kind, &result.bookID, &result.memberID, &result.actionDate, &result.sequenceNumber)
		if rowScanErr != nil {
			return nil, 0, ledger.StorageError(ledger.ErrScanningDBRowFailed, rowScanErr)
		}

		action, buildErr := toAction(result)
		if buildErr != nil {
			return nil, 0, ledger.StorageError(ledger.ErrMalformedRecord, buildErr)
		}

		actions = append(actions, action)
		maxSequenceNumber = ledger.MaxSequenceNumberUint(result.sequenceNumber)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, 0, ledger.StorageError(ledger.ErrReadingLedgerFailed, rowsErr)
	}

	return actions, maxSequenceNumber, nil
}

func toAction(row queryResultRow) (ledger.Action, error) {
	kind, parseErr := ledger.ParseActionKind(row.kind)
	if parseErr != nil {
		return ledger.Action{}, parseErr
	}

	return ledger.BuildAction(kind, int(row.bookID), row.memberID, row.actionDate)
}

// Append inserts one or multiple actions, as long as the sequence number of the last record
// matching filter still equals expectedMaxSequenceNumber.
//
// Otherwise, no row is inserted and ledger.ErrConcurrencyConflict is returned.
// The filter should be the same as the one used for the Query the decision was based on.
func (s *LedgerStore) Append(
	ctx context.Context,
	filter ledger.Filter,
	expectedMaxSequenceNumber ledger.MaxSequenceNumberUint,
	action ledger.Action,
	additionalActions ...ledger.Action,
) error {

	allActions := append(ledger.Actions{action}, additionalActions...)

	ctx, op := s.observer.StartAppend(ctx, len(allActions), expectedMaxSequenceNumber)

	for _, a := range allActions {
		if err := a.Validate(); err != nil {
			op.Failed(logMsgInvalidAction, errorTypeInvalidAction, err)
			return err
		}
	}

	sqlQuery, buildQueryErr := s.buildAppendQuery(allActions, filter, expectedMaxSequenceNumber)
	if buildQueryErr != nil {
		op.Failed(logMsgBuildQueryFailed, errorTypeBuildQuery, buildQueryErr)
		return buildQueryErr
	}

	start := time.Now()
	result, execErr := s.db.Exec(ctx, sqlQuery)
	s.logSQL(ctx, sqlQuery, logActionAppend, time.Since(start))

	if execErr != nil {
		op.Failed(logMsgDBExecFailed, errorTypeDatabase, execErr, logAttrQuery, sqlQuery)
		return ledger.StorageError(ledger.ErrAppendingActionFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		op.Failed(logMsgRowsAffected, errorTypeDatabase, rowsAffectedErr)
		return ledger.StorageError(ledger.ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	if rowsAffected < int64(len(allActions)) {
		// the actual sequence number is unknown here, a conflict only tells that it moved
		op.Conflicted(expectedMaxSequenceNumber, expectedMaxSequenceNumber)
		return ledger.ErrConcurrencyConflict
	}

	op.AppendSucceeded(len(allActions))

	return nil
}

func (s *LedgerStore) buildAppendQuery(
	allActions ledger.Actions,
	filter ledger.Filter,
	expectedMaxSequenceNumber ledger.MaxSequenceNumberUint,
) (sqlQueryString, error) {

	if len(allActions) == 1 {
		return s.buildInsertQueryForSingleAction(allActions[0], filter, expectedMaxSequenceNumber)
	}

	return s.buildInsertQueryForMultipleActions(allActions, filter, expectedMaxSequenceNumber)
}

func (s *LedgerStore) buildSelectQuery(filter ledger.Filter) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.tableName).
		Select(colKind, colBookID, colMemberID, colActionDate, colSequenceNumber).
		Order(goqu.I(colSequenceNumber).Asc())

	selectStmt = s.addWhereClause(filter, selectStmt)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ledger.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (s *LedgerStore) buildContextCTE(filter ledger.Filter) *goqu.SelectDataset {
	cteStmt := goqu.Dialect(dialectPostgres).
		From(s.tableName).
		Select(goqu.MAX(colSequenceNumber).As(aliasMaxSeq))

	return s.addWhereClause(filter, cteStmt)
}

func (s *LedgerStore) buildInsertQueryForSingleAction(
	action ledger.Action,
	filter ledger.Filter,
	expectedMaxSequenceNumber ledger.MaxSequenceNumberUint,
) (sqlQueryString, error) {

	builder := goqu.Dialect(dialectPostgres)

	selectStmt := builder.
		From(cteContext).
		Select(
			goqu.L(castText, string(action.Kind)),
			goqu.L(castInteger, action.BookID),
			goqu.L(castText, action.MemberID),
			goqu.L(castDate, action.Date.Format(ledger.DateLayout)),
		).
		Where(goqu.COALESCE(goqu.C(aliasMaxSeq), 0).Eq(goqu.V(expectedMaxSequenceNumber)))

	insertStmt := builder.
		Insert(s.tableName).
		Cols(colKind, colBookID, colMemberID, colActionDate).
		FromQuery(selectStmt).
		With(cteContext, s.buildContextCTE(filter))

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ledger.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (s *LedgerStore) buildInsertQueryForMultipleActions(
	actions ledger.Actions,
	filter ledger.Filter,
	expectedMaxSequenceNumber ledger.MaxSequenceNumberUint,
) (sqlQueryString, error) {

	builder := goqu.Dialect(dialectPostgres)

	// one SELECT per record, glued with UNION ALL in append order
	var valuesStmt *goqu.SelectDataset
	for _, action := range actions {
		stmt := builder.Select(
			goqu.L(castText, string(action.Kind)).As(colKind),
			goqu.L(castInteger, action.BookID).As(colBookID),
			goqu.L(castText, action.MemberID).As(colMemberID),
			goqu.L(castDate, action.Date.Format(ledger.DateLayout)).As(colActionDate),
		)

		if valuesStmt == nil {
			valuesStmt = stmt
			continue
		}

		valuesStmt = valuesStmt.UnionAll(stmt)
	}

	insertStmt := builder.
		Insert(s.tableName).
		Cols(colKind, colBookID, colMemberID, colActionDate).
		With(cteContext, s.buildContextCTE(filter)).
		With(cteVals, valuesStmt).
		FromQuery(
			builder.From(cteContext, cteVals).
				Select(
					fmt.Sprintf("%s.%s", cteVals, colKind),
					fmt.Sprintf("%s.%s", cteVals, colBookID),
					fmt.Sprintf("%s.%s", cteVals, colMemberID),
					fmt.Sprintf("%s.%s", cteVals, colActionDate),
				).
				Where(goqu.COALESCE(goqu.C(aliasMaxSeq), 0).Eq(goqu.V(expectedMaxSequenceNumber))),
		)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ledger.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (s *LedgerStore) addWhereClause(filter ledger.Filter, selectStmt *goqu.SelectDataset) *goqu.SelectDataset {
	expressions := make([]goqu.Expression, 0, 3)

	if bookIDs := filter.BookIDs(); len(bookIDs) > 0 {
		expressions = append(expressions, goqu.C(colBookID).In(bookIDs))
	}

	if kinds := filter.Kinds(); len(kinds) > 0 {
		kindValues := make([]string, 0, len(kinds))
		for _, kind := range kinds {
			kindValues = append(kindValues, string(kind))
		}

		expressions = append(expressions, goqu.C(colKind).In(kindValues))
	}

	if seq := filter.SequenceNumberHigherThan(); seq > 0 {
		expressions = append(expressions, goqu.C(colSequenceNumber).Gt(seq))
	}

	if len(expressions) == 0 {
		return selectStmt
	}

	return selectStmt.Where(goqu.And(expressions...))
}

func (s *LedgerStore) logSQL(ctx context.Context, sqlQuery string, action string, duration time.Duration) {
	s.observer.Debug(ctx, logMsgSQLExecuted+action, logAttrDurationMS, observe.ToMilliseconds(duration), logAttrQuery, sqlQuery)
}
