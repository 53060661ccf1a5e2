package service

import (
	"context"

	"github.com/fsdevblog/groph-commerce/internal/domain"
	"github.com/fsdevblog/groph-commerce/internal/repository/repoargs"
	"github.com/fsdevblog/groph-commerce/pkg/uow"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type UserRepository interface {
	CreateUser(ctx context.Context, args repoargs.CreateUser) (*domain.User, error)
	Find(ctx context.Context, id int64) (*domain.User, error)
	// FindForUpdate читает строку пользователя под эксклюзивной блокировкой.
	// Блокировка удерживается до конца объемлющей транзакции.
	FindForUpdate(ctx context.Context, id int64) (*domain.User, error)
	UpdatePoint(ctx context.Context, id int64, point int64) (*domain.User, error)
}

type ProductRepository interface {
	CreateProduct(ctx context.Context, args repoargs.CreateProduct) (*domain.Product, error)
	Find(ctx context.Context, id int64) (*domain.Product, error)
	// FindForUpdate читает строку товара под эксклюзивной блокировкой.
	// Конкурентные списания одного товара сериализуются на этой блокировке.
	FindForUpdate(ctx context.Context, id int64) (*domain.Product, error)
	GetAll(ctx context.Context) ([]domain.Product, error)
	UpdateStock(ctx context.Context, id int64, stock int64) (*domain.Product, error)
	// IncreaseStock атомарно прибавляет quantity к остатку одним UPDATE.
	// Аддитивная операция не требует предварительной блокировки строки.
	IncreaseStock(ctx context.Context, id int64, quantity int64) (*domain.Product, error)
	UpdatePrice(ctx context.Context, id int64, price int64) (*domain.Product, error)
}

type OrderRepository interface {
	// CreateOrder сохраняет заказ вместе с позициями.
	CreateOrder(ctx context.Context, order domain.Order) (*domain.Order, error)
	// Find возвращает заказ вместе с позициями.
	Find(ctx context.Context, id int64) (*domain.Order, error)
	// FindForUpdate читает строку заказа под эксклюзивной блокировкой, чтобы
	// конкурентные переходы статуса одного заказа выполнялись по очереди.
	FindForUpdate(ctx context.Context, id int64) (*domain.Order, error)
	// GetByUserID возвращает заказы юзера с позициями, отсортированные по дате
	// создания по убыванию.
	GetByUserID(ctx context.Context, userID int64) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatusType) (*domain.Order, error)
}

type PointHistoryRepository interface {
	Create(ctx context.Context, args repoargs.CreatePointHistory) (*domain.PointHistory, error)
	GetByUserID(ctx context.Context, userID int64) ([]domain.PointHistory, error)
}

// StockManager часть ProductService, нужная оркестратору заказов: списание и
// восстановление остатков внутри чужой транзакции.
type StockManager interface {
	DecreaseStockTx(ctx context.Context, tx uow.TX, productID int64, quantity int64) (*domain.Product, error)
	IncreaseStockTx(ctx context.Context, tx uow.TX, productID int64, quantity int64) error
}

// PointLedger часть UserService, нужная оркестратору заказов: списание и
// возврат баланса внутри чужой транзакции.
type PointLedger interface {
	UsePointTx(ctx context.Context, tx uow.TX, userID int64, amount int64) (*domain.User, error)
	ChargePointTx(ctx context.Context, tx uow.TX, userID int64, amount int64) (*domain.User, error)
}
