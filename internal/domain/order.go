package domain

// NewOrderItem создает позицию заказа со снимком текущей цены товара.
func NewOrderItem(product *Product, quantity int64) (OrderItem, error) {
	if product == nil {
		return OrderItem{}, NewValidationError("product must not be nil")
	}
	if quantity <= 0 {
		return OrderItem{}, NewValidationError("order item quantity must be positive, got %d", quantity)
	}
	return OrderItem{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		Price:       product.Price,
	}, nil
}

// NewOrder создает заказ в статусе PENDING. Итоговая сумма вычисляется один
// раз из снимков цен позиций и далее не пересчитывается.
func NewOrder(userID int64, items []OrderItem) (*Order, error) {
	if userID <= 0 {
		return nil, NewValidationError("order user id must be positive, got %d", userID)
	}
	if len(items) == 0 {
		return nil, NewValidationError("order must contain at least one item")
	}

	var total int64
	for _, item := range items {
		total += item.TotalPrice()
	}

	return &Order{
		UserID:      userID,
		Status:      OrderStatusPending,
		TotalAmount: total,
		Items:       items,
	}, nil
}

// Pay переводит заказ из PENDING в PAID. Баланс списывается при создании
// заказа, поэтому здесь меняется только статус. Повторная оплата и оплата
// отмененного заказа возвращают ErrInvalidOrderState.
func (o *Order) Pay() error {
	if o.Status != OrderStatusPending {
		return ErrInvalidOrderState
	}
	if len(o.Items) == 0 {
		return NewValidationError("order has no items")
	}
	o.Status = OrderStatusPaid
	return nil
}

// Cancel переводит заказ в CANCELLED. Статус CANCELLED терминальный: повторная
// отмена возвращает ErrInvalidOrderState без изменения состояния. Возврат
// баланса и восстановление остатков выполняет оркестратор в той же транзакции.
func (o *Order) Cancel() error {
	if o.Status == OrderStatusCancelled {
		return ErrInvalidOrderState
	}
	o.Status = OrderStatusCancelled
	return nil
}
