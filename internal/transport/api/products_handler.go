package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/groph-commerce/internal/domain"
)

type ProductsHandler struct {
	svs ProductServicer
}

func NewProductsHandler(svs ProductServicer) *ProductsHandler {
	return &ProductsHandler{
		svs: svs,
	}
}

type ProductResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Stock int64  `json:"stock"`
}

func productResponseFrom(product *domain.Product) *ProductResponse {
	return &ProductResponse{
		ID:    product.ID,
		Name:  product.Name,
		Price: product.Price,
		Stock: product.Stock,
	}
}

type CreateProductParams struct {
	Name  string `json:"name" binding:"required,max_bytes=255"`
	Price int64  `json:"price" binding:"min=0"`
	Stock int64  `json:"stock" binding:"min=0"`
}

// Create POST RouteGroup + ProductsRoute.
func (h *ProductsHandler) Create(c *gin.Context) {
	var params CreateProductParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		abortWithBindError(c, bindErr)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	product, err := h.svs.Create(reqCtx, params.Name, params.Price, params.Stock)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, productResponseFrom(product))
}

// Index GET RouteGroup + ProductsRoute.
func (h *ProductsHandler) Index(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	products, err := h.svs.GetAll(reqCtx)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	response := make([]ProductResponse, len(products))
	for i := range products {
		response[i] = *productResponseFrom(&products[i])
	}
	c.JSON(http.StatusOK, response)
}

// Show GET RouteGroup + ProductRoute.
func (h *ProductsHandler) Show(c *gin.Context) {
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	product, err := h.svs.Get(reqCtx, productID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, productResponseFrom(product))
}

type UpdatePriceParams struct {
	Price int64 `json:"price" binding:"min=0"`
}

// UpdatePrice PUT RouteGroup + ProductPriceRoute.
func (h *ProductsHandler) UpdatePrice(c *gin.Context) {
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}

	var params UpdatePriceParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		abortWithBindError(c, bindErr)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	product, err := h.svs.UpdatePrice(reqCtx, productID, params.Price)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, productResponseFrom(product))
}
