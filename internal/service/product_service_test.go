package service

import (
	"context"
	"testing"
	"time"

	"github.com/fsdevblog/groph-commerce/internal/domain"
	"github.com/fsdevblog/groph-commerce/internal/repository/repoargs"
	"github.com/fsdevblog/groph-commerce/internal/service/mocks"
	"github.com/fsdevblog/groph-commerce/pkg/uow"
	uowmocks "github.com/fsdevblog/groph-commerce/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

type ProductServiceTestSuite struct {
	suite.Suite
	mockCtrl        *gomock.Controller
	mockUOW         *uowmocks.MockUOW
	mockTX          *uowmocks.MockTX
	mockProductRepo *mocks.MockProductRepository
	productService  *ProductService
}

func TestProductServiceSuite(t *testing.T) {
	suite.Run(t, new(ProductServiceTestSuite))
}

func (s *ProductServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockProductRepo = mocks.NewMockProductRepository(s.mockCtrl)

	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.ProductRepoName)).
		Return(s.mockProductRepo, nil).AnyTimes()

	productService, servErr := NewProductService(s.mockUOW)
	s.Require().NoError(servErr)
	s.productService = productService
}

func (s *ProductServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *ProductServiceTestSuite) expectTx() {
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.ProductRepoName)).
		Return(s.mockProductRepo, nil).AnyTimes()
	s.mockUOW.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(ctx, s.mockTX)
		}).MinTimes(1)
}

func (s *ProductServiceTestSuite) TestCreate() {
	created := domain.Product{
		ID:        1,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Name:      "keyboard",
		Price:     1500,
		Stock:     10,
	}

	s.mockProductRepo.EXPECT().
		CreateProduct(gomock.Any(), repoargs.CreateProduct{Name: "keyboard", Price: 1500, Stock: 10}).
		Return(&created, nil)

	cases := []struct {
		name        string
		productName string
		price       int64
		stock       int64
		wantErrType error
	}{
		{name: "ok", productName: "keyboard", price: 1500, stock: 10},
		{name: "blank name", productName: " ", price: 100, stock: 1, wantErrType: domain.ErrValidation},
		{name: "negative price", productName: "keyboard", price: -1, stock: 1, wantErrType: domain.ErrValidation},
		{name: "negative stock", productName: "keyboard", price: 100, stock: -1, wantErrType: domain.ErrValidation},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			product, err := s.productService.Create(s.T().Context(), t.productName, t.price, t.stock)

			if t.wantErrType != nil {
				s.Require().ErrorIs(err, t.wantErrType)
				return
			}

			s.Require().NoError(err)
			s.Equal(&created, product)
		})
	}
}

func (s *ProductServiceTestSuite) TestDecreaseStock() {
	before := domain.Product{ID: 1, Name: "keyboard", Price: 1500, Stock: 10}
	after := domain.Product{ID: 1, Name: "keyboard", Price: 1500, Stock: 7}

	s.expectTx()

	// Чтение под блокировкой, затем запись нового остатка в той же транзакции.
	s.mockProductRepo.EXPECT().
		FindForUpdate(gomock.Any(), int64(1)).
		Return(&before, nil)
	s.mockProductRepo.EXPECT().
		UpdateStock(gomock.Any(), int64(1), int64(7)).
		Return(&after, nil)

	product, err := s.productService.DecreaseStock(s.T().Context(), 1, 3)

	s.Require().NoError(err)
	s.Equal(int64(7), product.Stock)
}

func (s *ProductServiceTestSuite) TestDecreaseStockInsufficient() {
	before := domain.Product{ID: 1, Name: "keyboard", Price: 1500, Stock: 2}

	s.expectTx()

	s.mockProductRepo.EXPECT().
		FindForUpdate(gomock.Any(), int64(1)).
		Return(&before, nil)

	// UpdateStock не вызывается: остаток остается нетронутым.
	_, err := s.productService.DecreaseStock(s.T().Context(), 1, 3)

	s.Require().ErrorIs(err, domain.ErrInsufficientStock)
}

func (s *ProductServiceTestSuite) TestDecreaseStockValidation() {
	s.mockUOW.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(ctx, s.mockTX)
		}).MinTimes(1)

	// Невалидное количество отклоняется до обращения к репозиторию.
	_, err := s.productService.DecreaseStock(s.T().Context(), 1, 0)
	s.Require().ErrorIs(err, domain.ErrValidation)

	_, err = s.productService.DecreaseStock(s.T().Context(), 1, -2)
	s.Require().ErrorIs(err, domain.ErrValidation)
}

func (s *ProductServiceTestSuite) TestIncreaseStock() {
	after := domain.Product{ID: 1, Name: "keyboard", Price: 1500, Stock: 12}

	s.expectTx()

	// Аддитивное пополнение выполняется одним UPDATE без блокировки строки.
	s.mockProductRepo.EXPECT().
		IncreaseStock(gomock.Any(), int64(1), int64(2)).
		Return(&after, nil)

	err := s.productService.IncreaseStock(s.T().Context(), 1, 2)

	s.Require().NoError(err)
}

func (s *ProductServiceTestSuite) TestGetAll() {
	products := []domain.Product{
		{ID: 1, Name: "keyboard", Price: 1500, Stock: 10},
		{ID: 2, Name: "mouse", Price: 700, Stock: 5},
	}

	s.mockProductRepo.EXPECT().
		GetAll(gomock.Any()).
		Return(products, nil)

	result, err := s.productService.GetAll(s.T().Context())

	s.Require().NoError(err)
	s.Require().Len(result, 2)
}

func (s *ProductServiceTestSuite) TestUpdatePrice() {
	updated := domain.Product{ID: 1, Name: "keyboard", Price: 2000, Stock: 10}

	s.mockProductRepo.EXPECT().
		UpdatePrice(gomock.Any(), int64(1), int64(2000)).
		Return(&updated, nil)

	product, err := s.productService.UpdatePrice(s.T().Context(), 1, 2000)
	s.Require().NoError(err)
	s.Equal(int64(2000), product.Price)

	_, err = s.productService.UpdatePrice(s.T().Context(), 1, -1)
	s.Require().ErrorIs(err, domain.ErrValidation)
}
