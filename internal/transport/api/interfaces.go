package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/fsdevblog/groph-commerce/internal/domain"
)

// UserServicer интерфейс исключительно для моков.
type UserServicer interface {
	Create(ctx context.Context, name string) (*domain.User, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
	ChargePoint(ctx context.Context, userID int64, amount int64) (*domain.User, error)
	UsePoint(ctx context.Context, userID int64, amount int64) (*domain.User, error)
	PointHistory(ctx context.Context, userID int64) ([]domain.PointHistory, error)
}

type ProductServicer interface {
	Create(ctx context.Context, name string, price int64, stock int64) (*domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	GetAll(ctx context.Context) ([]domain.Product, error)
	UpdatePrice(ctx context.Context, id int64, price int64) (*domain.Product, error)
}

type OrderServicer interface {
	Create(ctx context.Context, userID int64, quantities map[int64]int64) (*domain.Order, error)
	Get(ctx context.Context, id int64) (*domain.Order, error)
	GetByUserID(ctx context.Context, userID int64) ([]domain.Order, error)
	Pay(ctx context.Context, orderID int64) (*domain.Order, error)
	Cancel(ctx context.Context, orderID int64) (*domain.Order, error)
}
