package service

import (
	"context"
	"fmt"

	"github.com/fsdevblog/groph-commerce/internal/domain"
	"github.com/fsdevblog/groph-commerce/internal/repository/repoargs"
	"github.com/fsdevblog/groph-commerce/pkg/uow"
)

// ProductService владеет складскими остатками. Списание остатка выполняется
// строго под эксклюзивной блокировкой строки товара: из N конкурентных
// покупателей последней единицы успеет ровно один, остальные детерминированно
// получат domain.ErrInsufficientStock без повторных попыток.
type ProductService struct {
	uow         uow.UOW
	productRepo ProductRepository
}

func NewProductService(u uow.UOW) (*ProductService, error) {
	productRepo, productRepoErr :=
		uow.GetRepositoryAs[ProductRepository](u, uow.RepositoryName(repoargs.ProductRepoName))
	if productRepoErr != nil {
		return nil, productRepoErr
	}
	return &ProductService{
		uow:         u,
		productRepo: productRepo,
	}, nil
}

func (s *ProductService) Create(ctx context.Context, name string, price int64, stock int64) (*domain.Product, error) {
	product, productErr := domain.NewProduct(name, price, stock)
	if productErr != nil {
		return nil, productErr
	}
	created, createErr := s.productRepo.CreateProduct(ctx, repoargs.CreateProduct{
		Name:  product.Name,
		Price: product.Price,
		Stock: product.Stock,
	})
	if createErr != nil {
		return nil, fmt.Errorf("creating product: %w", createErr)
	}
	return created, nil
}

func (s *ProductService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.productRepo.Find(ctx, id)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return product, nil
}

func (s *ProductService) GetAll(ctx context.Context) ([]domain.Product, error) {
	products, err := s.productRepo.GetAll(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return products, nil
}

// UpdatePrice меняет цену товара. Операция не связана с заказами: снимки цен
// в уже созданных заказах не меняются.
func (s *ProductService) UpdatePrice(ctx context.Context, id int64, price int64) (*domain.Product, error) {
	if price < 0 {
		return nil, domain.NewValidationError("product price must not be negative, got %d", price)
	}
	product, err := s.productRepo.UpdatePrice(ctx, id, price)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return product, nil
}

// DecreaseStock списывает остаток товара в отдельной транзакции.
func (s *ProductService) DecreaseStock(ctx context.Context, productID int64, quantity int64) (*domain.Product, error) {
	var product *domain.Product
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		var err error
		product, err = s.DecreaseStockTx(c, tx, productID, quantity)
		return err
	})
	if txErr != nil {
		return nil, fmt.Errorf("decreasing stock: %w", txErr)
	}
	return product, nil
}

// IncreaseStock пополняет остаток товара в отдельной транзакции.
func (s *ProductService) IncreaseStock(ctx context.Context, productID int64, quantity int64) error {
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		return s.IncreaseStockTx(c, tx, productID, quantity)
	})
	if txErr != nil {
		return fmt.Errorf("increasing stock: %w", txErr)
	}
	return nil
}

// DecreaseStockTx списывает остаток внутри транзакции tx. Строка товара
// читается с FOR UPDATE, проверка остатка и запись выполняются под этой
// блокировкой. Частичных списаний не бывает: либо остаток уменьшается ровно
// на quantity, либо возвращается ошибка.
func (s *ProductService) DecreaseStockTx(
	ctx context.Context,
	tx uow.TX,
	productID int64,
	quantity int64,
) (*domain.Product, error) {
	if quantity <= 0 {
		return nil, domain.NewValidationError("decrease quantity must be positive, got %d", quantity)
	}

	productRepo, productRepoErr := uow.GetAs[ProductRepository](tx, uow.RepositoryName(repoargs.ProductRepoName))
	if productRepoErr != nil {
		return nil, productRepoErr //nolint:wrapcheck
	}

	product, findErr := productRepo.FindForUpdate(ctx, productID)
	if findErr != nil {
		return nil, findErr //nolint:wrapcheck
	}
	if decreaseErr := product.DecreaseStock(quantity); decreaseErr != nil {
		return nil, decreaseErr //nolint:wrapcheck
	}

	updated, updateErr := productRepo.UpdateStock(ctx, product.ID, product.Stock)
	if updateErr != nil {
		return nil, updateErr //nolint:wrapcheck
	}
	return updated, nil
}

// IncreaseStockTx пополняет остаток внутри транзакции tx одним аддитивным
// UPDATE. Откат объемлющей транзакции отменяет и пополнение.
func (s *ProductService) IncreaseStockTx(ctx context.Context, tx uow.TX, productID int64, quantity int64) error {
	if quantity <= 0 {
		return domain.NewValidationError("increase quantity must be positive, got %d", quantity)
	}

	productRepo, productRepoErr := uow.GetAs[ProductRepository](tx, uow.RepositoryName(repoargs.ProductRepoName))
	if productRepoErr != nil {
		return productRepoErr //nolint:wrapcheck
	}

	if _, err := productRepo.IncreaseStock(ctx, productID, quantity); err != nil {
		return err //nolint:wrapcheck
	}
	return nil
}
