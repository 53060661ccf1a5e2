package repoargs

import "github.com/fsdevblog/groph-commerce/internal/domain"

type CreateUser struct {
	Name  string
	Point int64
}

type CreatePointHistory struct {
	UserID       int64
	Type         domain.PointTransactionType
	Amount       int64
	BalanceAfter int64
}
