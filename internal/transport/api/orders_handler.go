package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/groph-commerce/internal/domain"
)

type OrdersHandler struct {
	svs OrderServicer
}

func NewOrdersHandler(svs OrderServicer) *OrdersHandler {
	return &OrdersHandler{
		svs: svs,
	}
}

type OrderItemResponse struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int64  `json:"quantity"`
	Price       int64  `json:"price"`
	TotalPrice  int64  `json:"total_price"`
}

type OrderResponse struct {
	ID          int64                  `json:"id"`
	UserID      int64                  `json:"user_id"`
	Status      domain.OrderStatusType `json:"status"`
	TotalAmount int64                  `json:"total_amount"`
	CreatedAt   string                 `json:"created_at"`
	Items       []OrderItemResponse    `json:"items"`
}

func orderResponseFrom(order *domain.Order) *OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
			TotalPrice:  item.TotalPrice(),
		}
	}
	return &OrderResponse{
		ID:          order.ID,
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		CreatedAt:   order.CreatedAt.Format(time.RFC3339),
		Items:       items,
	}
}

type OrderItemParams struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int64 `json:"quantity" binding:"required"`
}

type CreateOrderParams struct {
	UserID int64             `json:"user_id" binding:"required"`
	Items  []OrderItemParams `json:"items" binding:"required,min=1,dive"`
}

// Create POST RouteGroup + OrdersRoute.
func (h *OrdersHandler) Create(c *gin.Context) {
	var params CreateOrderParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		abortWithBindError(c, bindErr)
		return
	}

	// позиции с одинаковым товаром сливаются в одну
	quantities := make(map[int64]int64, len(params.Items))
	for _, item := range params.Items {
		quantities[item.ProductID] += item.Quantity
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, err := h.svs.Create(reqCtx, params.UserID, quantities)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, orderResponseFrom(order))
}

// Show GET RouteGroup + OrderRoute.
func (h *OrdersHandler) Show(c *gin.Context) {
	orderID, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, err := h.svs.Get(reqCtx, orderID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderResponseFrom(order))
}

// IndexByUser GET RouteGroup + OrdersByUserRoute.
func (h *OrdersHandler) IndexByUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	orders, err := h.svs.GetByUserID(reqCtx, userID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	response := make([]OrderResponse, len(orders))
	for i := range orders {
		response[i] = *orderResponseFrom(&orders[i])
	}
	c.JSON(http.StatusOK, response)
}

// Pay POST RouteGroup + OrderPayRoute.
func (h *OrdersHandler) Pay(c *gin.Context) {
	h.transition(c, h.svs.Pay)
}

// Cancel POST RouteGroup + OrderCancelRoute.
func (h *OrdersHandler) Cancel(c *gin.Context) {
	h.transition(c, h.svs.Cancel)
}

func (h *OrdersHandler) transition(
	c *gin.Context,
	fn func(ctx context.Context, orderID int64) (*domain.Order, error),
) {
	orderID, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, err := fn(reqCtx, orderID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderResponseFrom(order))
}
