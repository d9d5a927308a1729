package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookledger/lendingledger/circulation/core"
	"github.com/bookledger/lendingledger/ledger"
)

func Test_SuccessDecision(t *testing.T) {
	ret := act(t, ledger.ActionReturn, 5, "4444")
	deres := act(t, ledger.ActionDereserve, 5, "3333")

	result := core.SuccessDecision(ret, deres)

	assert.True(t, result.HasActionsToAppend())
	assert.NoError(t, result.HasError())
	assert.Equal(t, ledger.Actions{ret, deres}, result.Actions)
}

func Test_ErrorDecision(t *testing.T) {
	err := core.NewTransactionError(core.ReasonNotReturnable, 5, "", core.CauseNoOpenLoan)

	result := core.ErrorDecision(err)

	assert.False(t, result.HasActionsToAppend())
	assert.ErrorIs(t, result.HasError(), core.ErrTransactionRejected)
	assert.Empty(t, result.Actions)
}
