package core_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookledger/lendingledger/circulation/core"
)

func Test_ValidateMemberID(t *testing.T) {
	testCases := []struct {
		memberID string
		valid    bool
	}{
		{memberID: "1234", valid: true},
		{memberID: "0000", valid: true},
		{memberID: "123", valid: false},
		{memberID: "12345", valid: false},
		{memberID: "12a4", valid: false},
		{memberID: "", valid: false},
		{memberID: "١٢٣٤", valid: false},
	}

	for _, tc := range testCases {
		t.Run(tc.memberID, func(t *testing.T) {
			err := core.ValidateMemberID(tc.memberID)

			if tc.valid {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, core.ErrValidationFailed)
			assert.ErrorIs(t, err, core.ErrInvalidMemberID)

			var validationErr *core.ValidationError
			assert.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tc.memberID, validationErr.MemberID)
		})
	}
}

func Test_UnknownBookError(t *testing.T) {
	err := error(core.NewUnknownBookError(99))

	assert.ErrorIs(t, err, core.ErrValidationFailed)
	assert.ErrorIs(t, err, core.ErrUnknownBook)
	assert.NotErrorIs(t, err, core.ErrInvalidMemberID)
	assert.EqualError(t, err, "validation failed: book is not in the catalog: 99")
}

func Test_TransactionError(t *testing.T) {
	// arrange
	err := error(core.NewTransactionError(
		core.ReasonCheckoutNotAllowed,
		17,
		"2222",
		core.CauseAlreadyLoaned,
		core.CauseReservedByOtherMember,
	))

	// act
	var txErr *core.TransactionError
	isTxErr := errors.As(err, &txErr)

	// assert
	assert.True(t, isTxErr)
	assert.ErrorIs(t, err, core.ErrTransactionRejected)
	assert.NotErrorIs(t, err, core.ErrNoOpenReservation)
	assert.Equal(t, core.ReasonCheckoutNotAllowed, txErr.Reason)
	assert.True(t, txErr.HasCause(core.CauseAlreadyLoaned))
	assert.False(t, txErr.HasCause(core.CauseNoOpenLoan))
	assert.EqualError(t, err,
		"transaction rejected: checkout_not_allowed for book 17 member 2222 (already_loaned, reserved_by_other_member)")
}

func Test_TransactionError_NoOpenReservation(t *testing.T) {
	err := error(core.NewTransactionError(core.ReasonNoOpenReservation, 9, "", core.CauseNoOpenReservation))

	assert.ErrorIs(t, err, core.ErrTransactionRejected)
	assert.ErrorIs(t, err, core.ErrNoOpenReservation)
	assert.EqualError(t, err, "transaction rejected: no_open_reservation for book 9 (no_open_reservation)")
}
