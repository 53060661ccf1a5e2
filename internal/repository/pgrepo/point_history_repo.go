package pgrepo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/groph-commerce/internal/domain"
	"github.com/fsdevblog/groph-commerce/internal/repository/repoargs"
	"github.com/fsdevblog/groph-commerce/pkg/uow"
)

const pointHistoryColumns = "id, created_at, updated_at, user_id, type, amount, balance_after"

type PointHistoryRepository struct {
	db uow.DBTX
}

func NewPointHistoryRepository(db uow.DBTX) *PointHistoryRepository {
	return &PointHistoryRepository{db: db}
}

// Create добавляет запись истории баланса. Записи только добавляются, update
// и delete для этой таблицы не существуют.
func (r *PointHistoryRepository) Create(
	ctx context.Context,
	args repoargs.CreatePointHistory,
) (*domain.PointHistory, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO point_history (user_id, type, amount, balance_after)
		 VALUES ($1, $2, $3, $4) RETURNING `+pointHistoryColumns,
		args.UserID, args.Type, args.Amount, args.BalanceAfter,
	)
	history, err := scanPointHistory(row)
	if err != nil {
		return nil, convertErr(err, "creating point history for user %d", args.UserID)
	}
	return history, nil
}

// GetByUserID возвращает историю баланса юзера в порядке добавления.
func (r *PointHistoryRepository) GetByUserID(ctx context.Context, userID int64) ([]domain.PointHistory, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+pointHistoryColumns+` FROM point_history WHERE user_id = $1 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, convertErr(err, "getting point history by userID %d", userID)
	}
	defer rows.Close()

	var history []domain.PointHistory
	for rows.Next() {
		entry, scanErr := scanPointHistory(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning point history")
		}
		history = append(history, *entry)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting point history by userID %d", userID)
	}
	return history, nil
}

func scanPointHistory(row pgx.Row) (*domain.PointHistory, error) {
	var h domain.PointHistory
	if err := row.Scan(&h.ID, &h.CreatedAt, &h.UpdatedAt, &h.UserID, &h.Type, &h.Amount, &h.BalanceAfter); err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &h, nil
}
