package service

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/fsdevblog/groph-commerce/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupConcurrencyServices собирает полный сервисный слой поверх in-memory
// хранилища с транзакционной семантикой. Конкурентные сценарии гоняются
// через те же Create/Pay/Cancel, что и в продакшене.
func setupConcurrencyServices(t *testing.T) (*AppServices, *memStore) {
	t.Helper()

	store := newMemStore()
	services, err := Factory(newMemUOW(store))
	require.NoError(t, err)
	return services, store
}

func TestOrderCreateConcurrentOversell(t *testing.T) {
	services, _ := setupConcurrencyServices(t)
	ctx := t.Context()

	product, err := services.ProductService.Create(ctx, "limited drop", 100, 10)
	require.NoError(t, err)

	// 15 покупателей с достаточным балансом претендуют на 10 единиц товара.
	const buyers = 15
	userIDs := make([]int64, buyers)
	for i := range buyers {
		user, userErr := services.UserService.Create(ctx, fmt.Sprintf("buyer-%d", i))
		require.NoError(t, userErr)
		_, chargeErr := services.UserService.ChargePoint(ctx, user.ID, 1000)
		require.NoError(t, chargeErr)
		userIDs[i] = user.ID
	}

	errs := make([]error, buyers)
	var wg sync.WaitGroup
	for i := range buyers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = services.OrderService.Create(ctx, userIDs[i], map[int64]int64{product.ID: 1})
		}()
	}
	wg.Wait()

	var succeeded, outOfStock int
	for _, orderErr := range errs {
		switch {
		case orderErr == nil:
			succeeded++
		case errors.Is(orderErr, domain.ErrInsufficientStock):
			outOfStock++
		default:
			t.Fatalf("unexpected error: %v", orderErr)
		}
	}

	// Продано ровно столько, сколько было на складе, оверсела нет.
	assert.Equal(t, 10, succeeded)
	assert.Equal(t, 5, outOfStock)

	remaining, err := services.ProductService.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), remaining.Stock)

	// У победителей списано ровно по цене заказа, у остальных баланс цел.
	for i, orderErr := range errs {
		user, findErr := services.UserService.Get(ctx, userIDs[i])
		require.NoError(t, findErr)
		if orderErr == nil {
			assert.Equal(t, int64(900), user.Point)
		} else {
			assert.Equal(t, int64(1000), user.Point)
		}
	}
}

func TestOrderCreateConcurrentExactStock(t *testing.T) {
	services, _ := setupConcurrencyServices(t)
	ctx := t.Context()

	product, err := services.ProductService.Create(ctx, "keyboard", 200, 10)
	require.NoError(t, err)

	// Спрос равен остатку: отказов быть не должно.
	const buyers = 10
	userIDs := make([]int64, buyers)
	for i := range buyers {
		user, userErr := services.UserService.Create(ctx, fmt.Sprintf("buyer-%d", i))
		require.NoError(t, userErr)
		_, chargeErr := services.UserService.ChargePoint(ctx, user.ID, 500)
		require.NoError(t, chargeErr)
		userIDs[i] = user.ID
	}

	errs := make([]error, buyers)
	var wg sync.WaitGroup
	for i := range buyers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = services.OrderService.Create(ctx, userIDs[i], map[int64]int64{product.ID: 1})
		}()
	}
	wg.Wait()

	for _, orderErr := range errs {
		require.NoError(t, orderErr)
	}

	remaining, err := services.ProductService.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), remaining.Stock)
}

func TestOrderCreateConcurrentBalanceContention(t *testing.T) {
	services, _ := setupConcurrencyServices(t)
	ctx := t.Context()

	product, err := services.ProductService.Create(ctx, "keyboard", 100, 100)
	require.NoError(t, err)

	// Один юзер с балансом на 5 заказов выполняет 10 конкурентных попыток.
	user, err := services.UserService.Create(ctx, "alice")
	require.NoError(t, err)
	_, err = services.UserService.ChargePoint(ctx, user.ID, 500)
	require.NoError(t, err)

	const attempts = 10
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = services.OrderService.Create(ctx, user.ID, map[int64]int64{product.ID: 1})
		}()
	}
	wg.Wait()

	var succeeded, broke int
	for _, orderErr := range errs {
		switch {
		case orderErr == nil:
			succeeded++
		case errors.Is(orderErr, domain.ErrInsufficientBalance):
			broke++
		default:
			t.Fatalf("unexpected error: %v", orderErr)
		}
	}

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 5, broke)

	// Баланс не ушел в минус, неудачные попытки вернули остаток на склад.
	after, err := services.UserService.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), after.Point)

	remaining, err := services.ProductService.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(95), remaining.Stock)

	// История баланса сходится: пополнение и пять списаний.
	history, err := services.UserService.PointHistory(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, history, 6)
}

func TestOrderCancelConcurrent(t *testing.T) {
	services, _ := setupConcurrencyServices(t)
	ctx := t.Context()

	product, err := services.ProductService.Create(ctx, "keyboard", 100, 10)
	require.NoError(t, err)

	user, err := services.UserService.Create(ctx, "alice")
	require.NoError(t, err)
	_, err = services.UserService.ChargePoint(ctx, user.ID, 1000)
	require.NoError(t, err)

	order, err := services.OrderService.Create(ctx, user.ID, map[int64]int64{product.ID: 3})
	require.NoError(t, err)

	// Две конкурентные отмены одного заказа: возврат выполняется ровно раз.
	const attempts = 2
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = services.OrderService.Cancel(ctx, order.ID)
		}()
	}
	wg.Wait()

	var succeeded, invalidState int
	for _, cancelErr := range errs {
		switch {
		case cancelErr == nil:
			succeeded++
		case errors.Is(cancelErr, domain.ErrInvalidOrderState):
			invalidState++
		default:
			t.Fatalf("unexpected error: %v", cancelErr)
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, invalidState)

	after, err := services.UserService.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), after.Point)

	remaining, err := services.ProductService.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), remaining.Stock)

	cancelled, err := services.OrderService.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)
}

func TestOrderLifecycle(t *testing.T) {
	services, _ := setupConcurrencyServices(t)
	ctx := t.Context()

	keyboard, err := services.ProductService.Create(ctx, "keyboard", 1500, 9)
	require.NoError(t, err)
	mouse, err := services.ProductService.Create(ctx, "mouse", 700, 4)
	require.NoError(t, err)

	user, err := services.UserService.Create(ctx, "alice")
	require.NoError(t, err)
	_, err = services.UserService.ChargePoint(ctx, user.ID, 10000)
	require.NoError(t, err)

	order, err := services.OrderService.Create(ctx, user.ID, map[int64]int64{
		keyboard.ID: 2,
		mouse.ID:    1,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, int64(3700), order.TotalAmount)

	// Баланс заморожен при создании.
	afterCreate, err := services.UserService.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(6300), afterCreate.Point)

	// Смена цены товара не влияет на сумму уже созданного заказа.
	_, err = services.ProductService.UpdatePrice(ctx, keyboard.ID, 9999)
	require.NoError(t, err)

	paid, err := services.OrderService.Pay(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPaid, paid.Status)
	assert.Equal(t, int64(3700), paid.TotalAmount)

	// Повторная оплата отклоняется.
	_, err = services.OrderService.Pay(ctx, order.ID)
	require.ErrorIs(t, err, domain.ErrInvalidOrderState)

	// Отмена оплаченного заказа возвращает замороженную сумму и остатки.
	cancelled, err := services.OrderService.Cancel(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)

	afterCancel, err := services.UserService.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), afterCancel.Point)

	restored, err := services.ProductService.Get(ctx, keyboard.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(9), restored.Stock)

	// Оплата отмененного заказа невозможна.
	_, err = services.OrderService.Pay(ctx, order.ID)
	require.ErrorIs(t, err, domain.ErrInvalidOrderState)
}
