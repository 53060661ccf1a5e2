package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/fsdevblog/groph-commerce/internal/domain"
	"github.com/fsdevblog/groph-commerce/internal/repository/repoargs"
	"github.com/fsdevblog/groph-commerce/pkg/uow"
)

// OrderService оркестратор заказов. Каждая многошаговая операция (создание,
// оплата, отмена) выполняется внутри одной uow-транзакции: либо фиксируются
// все мутации остатков, баланса и самого заказа, либо ни одна из них.
type OrderService struct {
	uow       uow.UOW
	orderRepo OrderRepository
	stock     StockManager
	ledger    PointLedger
}

func NewOrderService(u uow.UOW, stock StockManager, ledger PointLedger) (*OrderService, error) {
	orderRepo, orderRepoErr := uow.GetRepositoryAs[OrderRepository](u, uow.RepositoryName(repoargs.OrderRepoName))
	if orderRepoErr != nil {
		return nil, orderRepoErr
	}
	return &OrderService{
		uow:       u,
		orderRepo: orderRepo,
		stock:     stock,
		ledger:    ledger,
	}, nil
}

// Create создает заказ для юзера userID из пар (товар, количество).
//
// Алгоритм в рамках одной транзакции:
//  1. Находит юзера.
//  2. Для каждого товара, в порядке возрастания id (стабильный порядок
//     блокировок исключает взаимные блокировки конкурентных многотоварных
//     заказов), списывает остаток под блокировкой строки и снимает снимок цены.
//  3. Собирает агрегат заказа; итоговая сумма фиксируется.
//  4. Списывает с баланса юзера итоговую сумму.
//  5. Сохраняет заказ с позициями.
//
// Любая ошибка (domain.ErrRecordNotFound, domain.ErrValidation,
// domain.ErrInsufficientStock, domain.ErrInsufficientBalance) откатывает
// транзакцию целиком: частичных списаний не остается.
func (s *OrderService) Create(
	ctx context.Context,
	userID int64,
	quantities map[int64]int64,
) (*domain.Order, error) {
	if len(quantities) == 0 {
		return nil, domain.NewValidationError("order must contain at least one item")
	}

	productIDs := make([]int64, 0, len(quantities))
	for productID := range quantities {
		productIDs = append(productIDs, productID)
	}
	sort.Slice(productIDs, func(i, j int) bool { return productIDs[i] < productIDs[j] })

	var order *domain.Order
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		userRepo, userRepoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if userRepoErr != nil {
			return userRepoErr //nolint:wrapcheck
		}
		user, userErr := userRepo.Find(c, userID)
		if userErr != nil {
			return userErr //nolint:wrapcheck
		}

		items := make([]domain.OrderItem, 0, len(productIDs))
		for _, productID := range productIDs {
			quantity := quantities[productID]

			product, decreaseErr := s.stock.DecreaseStockTx(c, tx, productID, quantity)
			if decreaseErr != nil {
				return decreaseErr //nolint:wrapcheck
			}

			item, itemErr := domain.NewOrderItem(product, quantity)
			if itemErr != nil {
				return itemErr //nolint:wrapcheck
			}
			items = append(items, item)
		}

		aggregate, aggregateErr := domain.NewOrder(user.ID, items)
		if aggregateErr != nil {
			return aggregateErr //nolint:wrapcheck
		}

		if _, useErr := s.ledger.UsePointTx(c, tx, user.ID, aggregate.TotalAmount); useErr != nil {
			return useErr //nolint:wrapcheck
		}

		orderRepo, orderRepoErr := uow.GetAs[OrderRepository](tx, uow.RepositoryName(repoargs.OrderRepoName))
		if orderRepoErr != nil {
			return orderRepoErr //nolint:wrapcheck
		}
		var createErr error
		order, createErr = orderRepo.CreateOrder(c, *aggregate)
		return createErr //nolint:wrapcheck
	})

	if txErr != nil {
		return nil, fmt.Errorf("creating order: %w", txErr)
	}
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := s.orderRepo.Find(ctx, id)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return order, nil
}

// GetByUserID возвращает заказы юзера, отсортированные по дате создания по
// убыванию.
func (s *OrderService) GetByUserID(ctx context.Context, userID int64) ([]domain.Order, error) {
	orders, err := s.orderRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return orders, nil
}

// Pay переводит заказ в PAID. Баланс списан при создании заказа, поэтому
// оплата меняет только статус. Повторная оплата возвращает
// domain.ErrInvalidOrderState без изменения состояния.
func (s *OrderService) Pay(ctx context.Context, orderID int64) (*domain.Order, error) {
	var order *domain.Order
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		orderRepo, orderRepoErr := uow.GetAs[OrderRepository](tx, uow.RepositoryName(repoargs.OrderRepoName))
		if orderRepoErr != nil {
			return orderRepoErr //nolint:wrapcheck
		}

		current, findErr := orderRepo.FindForUpdate(c, orderID)
		if findErr != nil {
			return findErr //nolint:wrapcheck
		}
		if payErr := current.Pay(); payErr != nil {
			return payErr //nolint:wrapcheck
		}

		var updateErr error
		order, updateErr = orderRepo.UpdateStatus(c, current.ID, current.Status)
		return updateErr //nolint:wrapcheck
	})

	if txErr != nil {
		return nil, fmt.Errorf("paying order %d: %w", orderID, txErr)
	}
	return order, nil
}

// Cancel отменяет заказ: восстанавливает остатки всех позиций, возвращает
// юзеру замороженную сумму заказа (она была списана при создании) и переводит
// заказ в CANCELLED. Все в одной транзакции: неудача любого шага не оставляет
// ни возврата, ни смены статуса. Повторная отмена возвращает
// domain.ErrInvalidOrderState.
func (s *OrderService) Cancel(ctx context.Context, orderID int64) (*domain.Order, error) {
	var order *domain.Order
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		orderRepo, orderRepoErr := uow.GetAs[OrderRepository](tx, uow.RepositoryName(repoargs.OrderRepoName))
		if orderRepoErr != nil {
			return orderRepoErr //nolint:wrapcheck
		}

		current, findErr := orderRepo.FindForUpdate(c, orderID)
		if findErr != nil {
			return findErr //nolint:wrapcheck
		}
		if cancelErr := current.Cancel(); cancelErr != nil {
			return cancelErr //nolint:wrapcheck
		}

		for _, item := range current.Items {
			if increaseErr := s.stock.IncreaseStockTx(c, tx, item.ProductID, item.Quantity); increaseErr != nil {
				return increaseErr //nolint:wrapcheck
			}
		}

		if _, chargeErr := s.ledger.ChargePointTx(c, tx, current.UserID, current.TotalAmount); chargeErr != nil {
			return chargeErr //nolint:wrapcheck
		}

		var updateErr error
		order, updateErr = orderRepo.UpdateStatus(c, current.ID, current.Status)
		return updateErr //nolint:wrapcheck
	})

	if txErr != nil {
		return nil, fmt.Errorf("cancelling order %d: %w", orderID, txErr)
	}
	return order, nil
}
