package returnbook_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookledger/lendingledger/circulation/core"
	"github.com/bookledger/lendingledger/circulation/features/command/returnbook"
	"github.com/bookledger/lendingledger/ledger"
)

var now = time.Date(2024, 5, 14, 9, 0, 0, 0, time.UTC)

func Test_Decide_ReturnNamesTheBorrower(t *testing.T) {
	// arrange
	history := ledger.Actions{
		given(t, ledger.ActionOut, 17, "1111"),
	}

	// act
	result := returnbook.Decide(history, returnbook.BuildCommand(17, now))

	// assert
	require.NoError(t, result.HasError())
	require.Len(t, result.Actions, 1)
	assert.Equal(t, ledger.ActionReturn, result.Actions[0].Kind)
	assert.Equal(t, "1111", result.Actions[0].MemberID)
}

func Test_Decide_ReturnAlsoCancelsOldestReservation(t *testing.T) {
	// arrange
	history := ledger.Actions{
		given(t, ledger.ActionOut, 5, "4444"),
		given(t, ledger.ActionReserve, 5, "3333"),
	}

	// act
	result := returnbook.Decide(history, returnbook.BuildCommand(5, now))

	// assert
	require.NoError(t, result.HasError())
	require.Len(t, result.Actions, 2)
	assert.Equal(t, ledger.ActionReturn, result.Actions[0].Kind)
	assert.Equal(t, "4444", result.Actions[0].MemberID)
	assert.Equal(t, ledger.ActionDereserve, result.Actions[1].Kind)
	assert.Equal(t, "3333", result.Actions[1].MemberID)
}

func Test_Decide_Error_WhenNotCheckedOut(t *testing.T) {
	testCases := []struct {
		name    string
		history func(t *testing.T) ledger.Actions
	}{
		{
			name:    "no history",
			history: func(*testing.T) ledger.Actions { return ledger.Actions{} },
		},
		{
			name: "already returned",
			history: func(t *testing.T) ledger.Actions {
				return ledger.Actions{
					given(t, ledger.ActionOut, 17, "1111"),
					given(t, ledger.ActionReturn, 17, "1111"),
				}
			},
		},
		{
			name: "only reserved",
			history: func(t *testing.T) ledger.Actions {
				return ledger.Actions{
					given(t, ledger.ActionReserve, 17, "1111"),
				}
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			result := returnbook.Decide(tc.history(t), returnbook.BuildCommand(17, now))

			// assert
			assert.False(t, result.HasActionsToAppend())

			var txErr *core.TransactionError
			require.ErrorAs(t, result.HasError(), &txErr)
			assert.Equal(t, core.ReasonNotReturnable, txErr.Reason)
			assert.True(t, txErr.HasCause(core.CauseNoOpenLoan))
			assert.NotErrorIs(t, result.HasError(), core.ErrNoOpenReservation)
		})
	}
}

func given(t *testing.T, kind ledger.ActionKind, bookID int, memberID string) ledger.Action {
	t.Helper()

	action, err := ledger.BuildAction(kind, bookID, memberID, now.Add(-24*time.Hour))
	require.NoError(t, err)

	return action
}
