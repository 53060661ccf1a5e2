package domain

import "strings"

// NewUser создает нового пользователя с нулевым балансом.
func NewUser(name string) (*User, error) {
	if strings.TrimSpace(name) == "" {
		return nil, NewValidationError("user name must not be blank")
	}
	return &User{
		Name:  name,
		Point: 0,
	}, nil
}

// ChargePoint увеличивает баланс пользователя на amount.
func (u *User) ChargePoint(amount int64) error {
	if amount <= 0 {
		return NewValidationError("charge amount must be positive, got %d", amount)
	}
	u.Point += amount
	return nil
}

// UsePoint списывает amount с баланса пользователя. Если баланса недостаточно,
// возвращает ErrInsufficientBalance, баланс при этом не меняется.
func (u *User) UsePoint(amount int64) error {
	if amount <= 0 {
		return NewValidationError("use amount must be positive, got %d", amount)
	}
	if u.Point < amount {
		return ErrInsufficientBalance
	}
	u.Point -= amount
	return nil
}

// NewPointHistory создает запись истории баланса. BalanceAfter фиксирует
// баланс пользователя после применения операции.
func NewPointHistory(user *User, transType PointTransactionType, amount int64) (*PointHistory, error) {
	if user == nil {
		return nil, NewValidationError("user must not be nil")
	}
	if transType != PointTransactionCharge && transType != PointTransactionUse {
		return nil, NewValidationError("unknown point transaction type %q", transType)
	}
	if amount <= 0 {
		return nil, NewValidationError("history amount must be positive, got %d", amount)
	}
	if user.Point < 0 {
		return nil, NewValidationError("balance after operation must not be negative, got %d", user.Point)
	}
	return &PointHistory{
		UserID:       user.ID,
		Type:         transType,
		Amount:       amount,
		BalanceAfter: user.Point,
	}, nil
}
