package pgrepo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/groph-commerce/internal/domain"
	"github.com/fsdevblog/groph-commerce/internal/repository/repoargs"
	"github.com/fsdevblog/groph-commerce/pkg/uow"
)

const userColumns = "id, created_at, updated_at, name, point"

type UserRepository struct {
	db uow.DBTX
}

func NewUserRepository(db uow.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateUser(ctx context.Context, args repoargs.CreateUser) (*domain.User, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO users (name, point) VALUES ($1, $2) RETURNING `+userColumns,
		args.Name, args.Point,
	)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "creating user `%s`", args.Name)
	}
	return user, nil
}

func (r *UserRepository) Find(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "finding user by id %d", id)
	}
	return user, nil
}

// FindForUpdate читает строку пользователя с блокировкой FOR UPDATE. Все
// конкурентные мутации баланса одного юзера сериализуются на этой блокировке;
// она удерживается до конца объемлющей транзакции.
func (r *UserRepository) FindForUpdate(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "locking user by id %d", id)
	}
	return user, nil
}

func (r *UserRepository) UpdatePoint(ctx context.Context, id int64, point int64) (*domain.User, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE users SET point = $2, updated_at = now() WHERE id = $1 RETURNING `+userColumns,
		id, point,
	)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "updating point of user %d", id)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt, &u.Name, &u.Point); err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &u, nil
}
