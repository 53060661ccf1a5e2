package pgrepo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/groph-commerce/internal/domain"
	"github.com/fsdevblog/groph-commerce/pkg/uow"
)

const (
	orderColumns     = "id, created_at, updated_at, user_id, status, total_amount"
	orderItemColumns = "id, order_id, product_id, product_name, quantity, price"
)

type OrderRepository struct {
	db uow.DBTX
}

func NewOrderRepository(db uow.DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateOrder сохраняет заказ вместе с позициями. Позиции вставляются батчем
// в рамках того же соединения (и транзакции), что и сам заказ.
func (r *OrderRepository) CreateOrder(ctx context.Context, order domain.Order) (*domain.Order, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO orders (user_id, status, total_amount) VALUES ($1, $2, $3) RETURNING `+orderColumns,
		order.UserID, order.Status, order.TotalAmount,
	)
	saved, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "creating order for user %d", order.UserID)
	}

	batch := new(pgx.Batch)
	for _, item := range order.Items {
		batch.Queue(
			`INSERT INTO order_items (order_id, product_id, product_name, quantity, price)
			 VALUES ($1, $2, $3, $4, $5) RETURNING `+orderItemColumns,
			saved.ID, item.ProductID, item.ProductName, item.Quantity, item.Price,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	saved.Items = make([]domain.OrderItem, len(order.Items))
	for i := range order.Items {
		item, scanErr := scanOrderItem(results.QueryRow())
		if scanErr != nil {
			_ = results.Close()
			return nil, convertErr(scanErr, "creating items of order %d", saved.ID)
		}
		saved.Items[i] = *item
	}
	if closeErr := results.Close(); closeErr != nil {
		return nil, convertErr(closeErr, "creating items of order %d", saved.ID)
	}

	return saved, nil
}

func (r *OrderRepository) Find(ctx context.Context, id int64) (*domain.Order, error) {
	row := r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "finding order by id %d", id)
	}
	if loadErr := r.loadItems(ctx, []*domain.Order{order}); loadErr != nil {
		return nil, loadErr
	}
	return order, nil
}

// FindForUpdate читает строку заказа с блокировкой FOR UPDATE. Конкурентные
// переходы статуса одного заказа (оплата, отмена) сериализуются на ней.
func (r *OrderRepository) FindForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	row := r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "locking order by id %d", id)
	}
	if loadErr := r.loadItems(ctx, []*domain.Order{order}); loadErr != nil {
		return nil, loadErr
	}
	return order, nil
}

// GetByUserID возвращает заказы юзера с позициями, отсортированные по дате
// создания по убыванию.
func (r *OrderRepository) GetByUserID(ctx context.Context, userID int64) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, convertErr(err, "getting orders by userID %d", userID)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, scanErr := scanOrder(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning order")
		}
		orders = append(orders, *order)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting orders by userID %d", userID)
	}

	refs := make([]*domain.Order, len(orders))
	for i := range orders {
		refs[i] = &orders[i]
	}
	if loadErr := r.loadItems(ctx, refs); loadErr != nil {
		return nil, loadErr
	}
	return orders, nil
}

func (r *OrderRepository) UpdateStatus(
	ctx context.Context,
	id int64,
	status domain.OrderStatusType,
) (*domain.Order, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE orders SET status = $2, updated_at = now() WHERE id = $1 RETURNING `+orderColumns,
		id, status,
	)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "updating status of order %d", id)
	}
	if loadErr := r.loadItems(ctx, []*domain.Order{order}); loadErr != nil {
		return nil, loadErr
	}
	return order, nil
}

// loadItems подгружает позиции для набора заказов одним запросом.
func (r *OrderRepository) loadItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[int64]*domain.Order, len(orders))
	ids := make([]int64, len(orders))
	for i, order := range orders {
		ids[i] = order.ID
		byID[order.ID] = order
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+orderItemColumns+` FROM order_items WHERE order_id = ANY($1) ORDER BY id`,
		ids,
	)
	if err != nil {
		return convertErr(err, "loading items of orders %v", ids)
	}
	defer rows.Close()

	for rows.Next() {
		item, scanErr := scanOrderItem(rows)
		if scanErr != nil {
			return convertErr(scanErr, "scanning order item")
		}
		if order, ok := byID[item.OrderID]; ok {
			order.Items = append(order.Items, *item)
		}
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return convertErr(rowsErr, "loading items of orders %v", ids)
	}
	return nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	if err := row.Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt, &o.UserID, &o.Status, &o.TotalAmount); err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &o, nil
}

func scanOrderItem(row pgx.Row) (*domain.OrderItem, error) {
	var i domain.OrderItem
	if err := row.Scan(&i.ID, &i.OrderID, &i.ProductID, &i.ProductName, &i.Quantity, &i.Price); err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &i, nil
}
