package domain

import "time"

// Все денежные значения (цены, баланс, суммы заказов) хранятся в минимальных
// единицах валюты как целые числа.

type User struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Name      string
	Point     int64
}

type PointHistory struct {
	ID           int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	UserID       int64
	Type         PointTransactionType
	Amount       int64
	BalanceAfter int64
}

type Product struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Name      string
	Price     int64
	Stock     int64
}

type Order struct {
	ID          int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	UserID      int64
	Status      OrderStatusType
	TotalAmount int64
	Items       []OrderItem
}

type OrderItem struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	ProductName string
	Quantity    int64
	// Price фиксируется на момент создания заказа. Последующие изменения цены
	// товара на существующие заказы не влияют.
	Price int64
}

// TotalPrice возвращает стоимость позиции заказа.
func (i OrderItem) TotalPrice() int64 {
	return i.Price * i.Quantity
}
