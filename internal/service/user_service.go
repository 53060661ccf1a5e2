package service

import (
	"context"
	"fmt"

	"github.com/fsdevblog/groph-commerce/internal/domain"
	"github.com/fsdevblog/groph-commerce/internal/repository/repoargs"
	"github.com/fsdevblog/groph-commerce/pkg/uow"
)

// UserService владеет балансом пользователей. Каждая мутация баланса проходит
// через блокировку строки юзера и добавляет запись в историю, так что в любой
// момент баланс равен сумме знаковых сумм истории.
type UserService struct {
	uow         uow.UOW
	userRepo    UserRepository
	historyRepo PointHistoryRepository
}

func NewUserService(u uow.UOW) (*UserService, error) {
	userRepo, userRepoErr := uow.GetRepositoryAs[UserRepository](u, uow.RepositoryName(repoargs.UserRepoName))
	if userRepoErr != nil {
		return nil, userRepoErr
	}
	historyRepo, historyRepoErr :=
		uow.GetRepositoryAs[PointHistoryRepository](u, uow.RepositoryName(repoargs.PointHistoryRepoName))
	if historyRepoErr != nil {
		return nil, historyRepoErr
	}
	return &UserService{
		uow:         u,
		userRepo:    userRepo,
		historyRepo: historyRepo,
	}, nil
}

// Create регистрирует пользователя с нулевым балансом.
func (s *UserService) Create(ctx context.Context, name string) (*domain.User, error) {
	user, userErr := domain.NewUser(name)
	if userErr != nil {
		return nil, userErr
	}
	created, createErr := s.userRepo.CreateUser(ctx, repoargs.CreateUser{
		Name:  user.Name,
		Point: user.Point,
	})
	if createErr != nil {
		return nil, fmt.Errorf("creating user: %w", createErr)
	}
	return created, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.Find(ctx, id)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return user, nil
}

// PointHistory возвращает историю баланса юзера в порядке добавления записей.
func (s *UserService) PointHistory(ctx context.Context, userID int64) ([]domain.PointHistory, error) {
	history, err := s.historyRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return history, nil
}

// ChargePoint пополняет баланс юзера в отдельной транзакции.
func (s *UserService) ChargePoint(ctx context.Context, userID int64, amount int64) (*domain.User, error) {
	var user *domain.User
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		var err error
		user, err = s.ChargePointTx(c, tx, userID, amount)
		return err
	})
	if txErr != nil {
		return nil, fmt.Errorf("charging point: %w", txErr)
	}
	return user, nil
}

// UsePoint списывает amount с баланса юзера в отдельной транзакции.
func (s *UserService) UsePoint(ctx context.Context, userID int64, amount int64) (*domain.User, error) {
	var user *domain.User
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		var err error
		user, err = s.UsePointTx(c, tx, userID, amount)
		return err
	})
	if txErr != nil {
		return nil, fmt.Errorf("using point: %w", txErr)
	}
	return user, nil
}

// ChargePointTx пополняет баланс внутри транзакции tx. Строка юзера читается
// под блокировкой, поэтому конкурентные пополнения и списания одного юзера
// выполняются строго по очереди.
func (s *UserService) ChargePointTx(
	ctx context.Context,
	tx uow.TX,
	userID int64,
	amount int64,
) (*domain.User, error) {
	return s.applyPointTx(ctx, tx, userID, amount, domain.PointTransactionCharge)
}

// UsePointTx списывает баланс внутри транзакции tx. Если баланса недостаточно,
// возвращает domain.ErrInsufficientBalance; никаких изменений при этом не
// фиксируется.
func (s *UserService) UsePointTx(
	ctx context.Context,
	tx uow.TX,
	userID int64,
	amount int64,
) (*domain.User, error) {
	return s.applyPointTx(ctx, tx, userID, amount, domain.PointTransactionUse)
}

func (s *UserService) applyPointTx(
	ctx context.Context,
	tx uow.TX,
	userID int64,
	amount int64,
	transType domain.PointTransactionType,
) (*domain.User, error) {
	if amount <= 0 {
		return nil, domain.NewValidationError("point amount must be positive, got %d", amount)
	}

	userRepo, userRepoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
	if userRepoErr != nil {
		return nil, userRepoErr //nolint:wrapcheck
	}
	historyRepo, historyRepoErr :=
		uow.GetAs[PointHistoryRepository](tx, uow.RepositoryName(repoargs.PointHistoryRepoName))
	if historyRepoErr != nil {
		return nil, historyRepoErr //nolint:wrapcheck
	}

	user, findErr := userRepo.FindForUpdate(ctx, userID)
	if findErr != nil {
		return nil, findErr //nolint:wrapcheck
	}

	var mutateErr error
	switch transType {
	case domain.PointTransactionCharge:
		mutateErr = user.ChargePoint(amount)
	case domain.PointTransactionUse:
		mutateErr = user.UsePoint(amount)
	}
	if mutateErr != nil {
		return nil, mutateErr //nolint:wrapcheck
	}

	updated, updateErr := userRepo.UpdatePoint(ctx, user.ID, user.Point)
	if updateErr != nil {
		return nil, updateErr //nolint:wrapcheck
	}

	history, historyErr := domain.NewPointHistory(updated, transType, amount)
	if historyErr != nil {
		return nil, historyErr //nolint:wrapcheck
	}
	if _, createErr := historyRepo.Create(ctx, repoargs.CreatePointHistory{
		UserID:       history.UserID,
		Type:         history.Type,
		Amount:       history.Amount,
		BalanceAfter: history.BalanceAfter,
	}); createErr != nil {
		return nil, createErr //nolint:wrapcheck
	}

	return updated, nil
}
