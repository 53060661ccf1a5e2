package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	user, err := NewUser("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Name)
	assert.Equal(t, int64(0), user.Point)

	_, err = NewUser("   ")
	require.ErrorIs(t, err, ErrValidation)
}

func TestUserChargePoint(t *testing.T) {
	cases := []struct {
		name        string
		point       int64
		amount      int64
		wantPoint   int64
		wantErrType error
	}{
		{name: "ok", point: 100, amount: 50, wantPoint: 150},
		{name: "zero amount", point: 100, amount: 0, wantErrType: ErrValidation},
		{name: "negative amount", point: 100, amount: -10, wantErrType: ErrValidation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			user := &User{ID: 1, Name: "alice", Point: tc.point}

			err := user.ChargePoint(tc.amount)

			if tc.wantErrType != nil {
				require.ErrorIs(t, err, tc.wantErrType)
				assert.Equal(t, tc.point, user.Point)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantPoint, user.Point)
		})
	}
}

func TestUserUsePoint(t *testing.T) {
	cases := []struct {
		name        string
		point       int64
		amount      int64
		wantPoint   int64
		wantErrType error
	}{
		{name: "ok", point: 100, amount: 40, wantPoint: 60},
		{name: "exact balance", point: 100, amount: 100, wantPoint: 0},
		{name: "insufficient balance", point: 30, amount: 40, wantErrType: ErrInsufficientBalance},
		{name: "zero amount", point: 100, amount: 0, wantErrType: ErrValidation},
		{name: "negative amount", point: 100, amount: -5, wantErrType: ErrValidation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			user := &User{ID: 1, Name: "alice", Point: tc.point}

			err := user.UsePoint(tc.amount)

			if tc.wantErrType != nil {
				require.ErrorIs(t, err, tc.wantErrType)
				// Неудачное списание не трогает баланс.
				assert.Equal(t, tc.point, user.Point)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantPoint, user.Point)
		})
	}
}

func TestNewPointHistory(t *testing.T) {
	user := &User{ID: 7, Name: "alice", Point: 60}

	cases := []struct {
		name        string
		user        *User
		transType   PointTransactionType
		amount      int64
		wantErrType error
	}{
		{name: "charge", user: user, transType: PointTransactionCharge, amount: 50},
		{name: "use", user: user, transType: PointTransactionUse, amount: 40},
		{name: "nil user", user: nil, transType: PointTransactionUse, amount: 40, wantErrType: ErrValidation},
		{name: "unknown type", user: user, transType: PointTransactionType("REFUND"), amount: 40, wantErrType: ErrValidation},
		{name: "zero amount", user: user, transType: PointTransactionCharge, amount: 0, wantErrType: ErrValidation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			history, err := NewPointHistory(tc.user, tc.transType, tc.amount)

			if tc.wantErrType != nil {
				require.ErrorIs(t, err, tc.wantErrType)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, user.ID, history.UserID)
			assert.Equal(t, tc.transType, history.Type)
			assert.Equal(t, tc.amount, history.Amount)
			// BalanceAfter фиксирует баланс после применения операции.
			assert.Equal(t, user.Point, history.BalanceAfter)
		})
	}
}
