package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookledger/lendingledger/ledger"
)

func Test_BuildAction_Success(t *testing.T) {
	// arrange
	date := time.Date(2024, 3, 9, 17, 45, 12, 0, time.FixedZone("CET", 3600))

	// act
	action, err := ledger.BuildAction(ledger.ActionOut, 17, "1111", date)

	// assert
	require.NoError(t, err)
	assert.Equal(t, ledger.ActionOut, action.Kind)
	assert.Equal(t, 17, action.BookID)
	assert.Equal(t, "1111", action.MemberID)
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), action.Date)
}

//nolint:funlen
func Test_BuildAction_ErrorCases(t *testing.T) {
	validDate := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		kind        ledger.ActionKind
		bookID      int
		memberID    string
		expectedErr error
	}{
		{
			name:        "unknown kind",
			kind:        "BORROW",
			bookID:      1,
			memberID:    "1234",
			expectedErr: ledger.ErrUnknownActionKind,
		},
		{
			name:        "zero book id",
			kind:        ledger.ActionOut,
			bookID:      0,
			memberID:    "1234",
			expectedErr: ledger.ErrNonPositiveBookID,
		},
		{
			name:        "negative book id",
			kind:        ledger.ActionReserve,
			bookID:      -3,
			memberID:    "1234",
			expectedErr: ledger.ErrNonPositiveBookID,
		},
		{
			name:        "member id too short",
			kind:        ledger.ActionOut,
			bookID:      1,
			memberID:    "123",
			expectedErr: ledger.ErrMalformedMemberID,
		},
		{
			name:        "member id too long",
			kind:        ledger.ActionOut,
			bookID:      1,
			memberID:    "12345",
			expectedErr: ledger.ErrMalformedMemberID,
		},
		{
			name:        "member id with letters",
			kind:        ledger.ActionOut,
			bookID:      1,
			memberID:    "12a4",
			expectedErr: ledger.ErrMalformedMemberID,
		},
		{
			name:        "member id with non-ascii digits",
			kind:        ledger.ActionOut,
			bookID:      1,
			memberID:    "١٢٣٤",
			expectedErr: ledger.ErrMalformedMemberID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ledger.BuildAction(tt.kind, tt.bookID, tt.memberID, validDate)

			assert.ErrorIs(t, err, ledger.ErrInvalidAction)
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func Test_ParseActionKind(t *testing.T) {
	for _, kind := range ledger.AllActionKinds() {
		parsed, err := ledger.ParseActionKind(kind.String())

		assert.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}

	_, err := ledger.ParseActionKind("out")
	assert.ErrorIs(t, err, ledger.ErrUnknownActionKind, "kinds are case-sensitive")
}

func Test_ActionKind_IsOpening(t *testing.T) {
	assert.True(t, ledger.ActionOut.IsOpening())
	assert.True(t, ledger.ActionReserve.IsOpening())
	assert.False(t, ledger.ActionReturn.IsOpening())
	assert.False(t, ledger.ActionDereserve.IsOpening())
}

func Test_ToActionDate_KeepsCalendarDayOfTheGivenLocation(t *testing.T) {
	lateEvening := time.Date(2024, 12, 31, 23, 30, 0, 0, time.FixedZone("PST", -8*3600))

	assert.Equal(t, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), ledger.ToActionDate(lateEvening))
}
