package domain

import "strings"

// NewProduct создает товар с начальным остатком на складе.
func NewProduct(name string, price int64, stock int64) (*Product, error) {
	if strings.TrimSpace(name) == "" {
		return nil, NewValidationError("product name must not be blank")
	}
	if price < 0 {
		return nil, NewValidationError("product price must not be negative, got %d", price)
	}
	if stock < 0 {
		return nil, NewValidationError("product stock must not be negative, got %d", stock)
	}
	return &Product{
		Name:  name,
		Price: price,
		Stock: stock,
	}, nil
}

// DecreaseStock уменьшает остаток на quantity. Если остатка недостаточно,
// возвращает ErrInsufficientStock, остаток не меняется. Вызывающая сторона
// обязана удерживать эксклюзивную блокировку строки товара на всем протяжении
// чтения и записи.
func (p *Product) DecreaseStock(quantity int64) error {
	if quantity <= 0 {
		return NewValidationError("decrease quantity must be positive, got %d", quantity)
	}
	if p.Stock < quantity {
		return ErrInsufficientStock
	}
	p.Stock -= quantity
	return nil
}

// IncreaseStock увеличивает остаток на quantity.
func (p *Product) IncreaseStock(quantity int64) error {
	if quantity <= 0 {
		return NewValidationError("increase quantity must be positive, got %d", quantity)
	}
	p.Stock += quantity
	return nil
}

// UpdatePrice меняет цену товара. На стоимость уже созданных заказов
// изменение не влияет: позиции заказов хранят снимок цены.
func (p *Product) UpdatePrice(price int64) error {
	if price < 0 {
		return NewValidationError("product price must not be negative, got %d", price)
	}
	p.Price = price
	return nil
}
