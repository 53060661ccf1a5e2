package service

import (
	"fmt"

	"github.com/fsdevblog/groph-commerce/pkg/uow"
)

type AppServices struct {
	UserService    *UserService
	ProductService *ProductService
	OrderService   *OrderService
}

func Factory(unitOfWork uow.UOW) (*AppServices, error) {
	userService, userServiceErr := NewUserService(unitOfWork)
	if userServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", userServiceErr.Error())
	}

	productService, productServiceErr := NewProductService(unitOfWork)
	if productServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", productServiceErr.Error())
	}

	orderService, orderServiceErr := NewOrderService(unitOfWork, productService, userService)
	if orderServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", orderServiceErr.Error())
	}

	return &AppServices{
		UserService:    userService,
		ProductService: productService,
		OrderService:   orderService,
	}, nil
}
