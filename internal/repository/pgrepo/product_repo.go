package pgrepo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/groph-commerce/internal/domain"
	"github.com/fsdevblog/groph-commerce/internal/repository/repoargs"
	"github.com/fsdevblog/groph-commerce/pkg/uow"
)

const productColumns = "id, created_at, updated_at, name, price, stock"

type ProductRepository struct {
	db uow.DBTX
}

func NewProductRepository(db uow.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) CreateProduct(ctx context.Context, args repoargs.CreateProduct) (*domain.Product, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO products (name, price, stock) VALUES ($1, $2, $3) RETURNING `+productColumns,
		args.Name, args.Price, args.Stock,
	)
	product, err := scanProduct(row)
	if err != nil {
		return nil, convertErr(err, "creating product `%s`", args.Name)
	}
	return product, nil
}

func (r *ProductRepository) Find(ctx context.Context, id int64) (*domain.Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	product, err := scanProduct(row)
	if err != nil {
		return nil, convertErr(err, "finding product by id %d", id)
	}
	return product, nil
}

// FindForUpdate читает строку товара с блокировкой FOR UPDATE. Конкурентные
// списания остатка одного товара встают в очередь на этой блокировке и видят
// остаток после коммита или отката предыдущей транзакции.
func (r *ProductRepository) FindForUpdate(ctx context.Context, id int64) (*domain.Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
	product, err := scanProduct(row)
	if err != nil {
		return nil, convertErr(err, "locking product by id %d", id)
	}
	return product, nil
}

func (r *ProductRepository) GetAll(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, convertErr(err, "getting all products")
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		product, scanErr := scanProduct(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning product")
		}
		products = append(products, *product)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting all products")
	}
	return products, nil
}

func (r *ProductRepository) UpdateStock(ctx context.Context, id int64, stock int64) (*domain.Product, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE products SET stock = $2, updated_at = now() WHERE id = $1 RETURNING `+productColumns,
		id, stock,
	)
	product, err := scanProduct(row)
	if err != nil {
		return nil, convertErr(err, "updating stock of product %d", id)
	}
	return product, nil
}

// IncreaseStock атомарно прибавляет quantity к остатку. Одиночный аддитивный
// UPDATE не конфликтует со списаниями и не требует FOR UPDATE.
func (r *ProductRepository) IncreaseStock(ctx context.Context, id int64, quantity int64) (*domain.Product, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE products SET stock = stock + $2, updated_at = now() WHERE id = $1 RETURNING `+productColumns,
		id, quantity,
	)
	product, err := scanProduct(row)
	if err != nil {
		return nil, convertErr(err, "increasing stock of product %d", id)
	}
	return product, nil
}

func (r *ProductRepository) UpdatePrice(ctx context.Context, id int64, price int64) (*domain.Product, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE products SET price = $2, updated_at = now() WHERE id = $1 RETURNING `+productColumns,
		id, price,
	)
	product, err := scanProduct(row)
	if err != nil {
		return nil, convertErr(err, "updating price of product %d", id)
	}
	return product, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt, &p.Name, &p.Price, &p.Stock); err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &p, nil
}
