package postgresengine_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookledger/lendingledger/ledger"
	"github.com/bookledger/lendingledger/ledger/postgresengine"
)

const dsnEnv = "LEDGER_TEST_POSTGRES_DSN"

var tableCounter atomic.Int64

func Test_FactoryFunctions_ShouldFail_WithNilDatabaseConnection(t *testing.T) {
	testCases := []struct {
		name        string
		factoryFunc func() (*postgresengine.LedgerStore, error)
	}{
		{
			name: "NewLedgerStoreFromPGXPool with nil",
			factoryFunc: func() (*postgresengine.LedgerStore, error) {
				return postgresengine.NewLedgerStoreFromPGXPool(nil)
			},
		},
		{
			name: "NewLedgerStoreFromSQLDB with nil",
			factoryFunc: func() (*postgresengine.LedgerStore, error) {
				return postgresengine.NewLedgerStoreFromSQLDB(nil)
			},
		},
		{
			name: "NewLedgerStoreFromSQLX with nil",
			factoryFunc: func() (*postgresengine.LedgerStore, error) {
				return postgresengine.NewLedgerStoreFromSQLX(nil)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store, err := tc.factoryFunc()

			assert.ErrorIs(t, err, ledger.ErrNilDatabaseConnection)
			assert.Nil(t, store)
		})
	}
}

func Test_Postgres_AppendAndQuery(t *testing.T) {
	for adapterName, store := range stores(t) {
		t.Run(adapterName, func(t *testing.T) {
			// arrange
			ctx := context.Background()
			out := buildAction(t, ledger.ActionOut, 5, "4444")
			reserve := buildAction(t, ledger.ActionReserve, 5, "3333")
			other := buildAction(t, ledger.ActionOut, 9, "1111")

			// act
			require.NoError(t, store.Append(ctx, ledger.MatchingAllActions(), 0, out))
			require.NoError(t, store.Append(ctx, ledger.MatchingAllActions(), 1, reserve, other))
			all, readErr := store.ReadAll(ctx)
			forBook, maxSeq, queryErr := store.Query(ctx, ledger.BuildFilter().ForBooks(5).Finalize())

			// assert
			require.NoError(t, readErr)
			assert.Equal(t, ledger.Actions{out, reserve, other}, all)

			require.NoError(t, queryErr)
			assert.Equal(t, ledger.Actions{out, reserve}, forBook)
			assert.Equal(t, uint(2), maxSeq)
		})
	}
}

func Test_Postgres_Append_ConcurrencyConflict(t *testing.T) {
	for adapterName, store := range stores(t) {
		t.Run(adapterName, func(t *testing.T) {
			// arrange
			ctx := context.Background()
			filter := ledger.BuildFilter().ForBooks(17).Finalize()
			require.NoError(t, store.Append(ctx, filter, 0, buildAction(t, ledger.ActionOut, 17, "1111")))

			// act
			err := store.Append(
				ctx,
				filter,
				0,
				buildAction(t, ledger.ActionReturn, 17, "1111"),
				buildAction(t, ledger.ActionOut, 17, "2222"),
			)

			// assert
			assert.ErrorIs(t, err, ledger.ErrConcurrencyConflict)
			actions, readErr := store.ReadAll(ctx)
			require.NoError(t, readErr)
			assert.Len(t, actions, 1)
		})
	}
}

func Test_Postgres_ConcurrentAppends_AtLeastOneWins(t *testing.T) {
	for adapterName, store := range stores(t) {
		t.Run(adapterName, func(t *testing.T) {
			// arrange
			ctx := context.Background()
			filter := ledger.BuildFilter().ForBooks(42).Finalize()
			const writers = 5

			var wg sync.WaitGroup
			var succeeded atomic.Int32

			// act
			for i := 0; i < writers; i++ {
				wg.Add(1)
				go func(memberID string) {
					defer wg.Done()
					if err := store.Append(ctx, filter, 0, buildAction(t, ledger.ActionOut, 42, memberID)); err == nil {
						succeeded.Add(1)
					}
				}(fmt.Sprintf("%04d", i))
			}

			wg.Wait()

			// assert
			assert.GreaterOrEqual(t, succeeded.Load(), int32(1))
			actions, readErr := store.ReadAll(ctx)
			require.NoError(t, readErr)
			assert.Len(t, actions, int(succeeded.Load()))
		})
	}
}

func Test_Postgres_CreateSchema_IsIdempotent(t *testing.T) {
	for adapterName, store := range stores(t) {
		t.Run(adapterName, func(t *testing.T) {
			assert.NoError(t, store.CreateSchema(context.Background()))
		})
	}
}

func stores(t *testing.T) map[string]*postgresengine.LedgerStore {
	t.Helper()

	dsn := os.Getenv(dsnEnv)
	if dsn == "" {
		t.Skipf("%s is not set", dsnEnv)
	}

	ctx := context.Background()

	pool, poolErr := pgxpool.New(ctx, dsn)
	require.NoError(t, poolErr)
	t.Cleanup(pool.Close)

	sqlDB, sqlErr := sql.Open("postgres", dsn)
	require.NoError(t, sqlErr)
	t.Cleanup(func() { _ = sqlDB.Close() })

	sqlxDB := sqlx.NewDb(sqlDB, "postgres")

	factories := map[string]func(tableName string) (*postgresengine.LedgerStore, error){
		"pgx.pool": func(tableName string) (*postgresengine.LedgerStore, error) {
			return postgresengine.NewLedgerStoreFromPGXPool(pool, postgresengine.WithTableName(tableName))
		},
		"sql.db": func(tableName string) (*postgresengine.LedgerStore, error) {
			return postgresengine.NewLedgerStoreFromSQLDB(sqlDB, postgresengine.WithTableName(tableName))
		},
		"sqlx.db": func(tableName string) (*postgresengine.LedgerStore, error) {
			return postgresengine.NewLedgerStoreFromSQLX(sqlxDB, postgresengine.WithTableName(tableName))
		},
	}

	result := make(map[string]*postgresengine.LedgerStore, len(factories))

	for name, factory := range factories {
		tableName := fmt.Sprintf("ledger_it_%d_%d", time.Now().UnixNano(), tableCounter.Add(1))

		store, err := factory(tableName)
		require.NoError(t, err)
		require.NoError(t, store.CreateSchema(ctx))

		t.Cleanup(func() {
			_, _ = pool.Exec(context.Background(), "DROP TABLE IF EXISTS "+pgx.Identifier{tableName}.Sanitize())
		})

		result[name] = store
	}

	return result
}

func buildAction(t *testing.T, kind ledger.ActionKind, bookID int, memberID string) ledger.Action {
	t.Helper()

	action, err := ledger.BuildAction(kind, bookID, memberID, time.Date(2024, 5, 14, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	return action
}
