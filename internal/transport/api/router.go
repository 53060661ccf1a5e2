package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/groph-commerce/internal/transport/api/middlewares"
)

const (
	DefaultServiceTimeout = 3 * time.Second
)

const (
	RouteGroup = "/api/v1"

	UsersRoute       = "/users"
	UserRoute        = "/users/:userId"
	UserChargeRoute  = "/users/:userId/charge"
	UserUseRoute     = "/users/:userId/use"
	UserPointRoute   = "/users/:userId/point"
	UserHistoryRoute = "/users/:userId/history"

	ProductsRoute     = "/products"
	ProductRoute      = "/products/:productId"
	ProductPriceRoute = "/products/:productId/price"

	OrdersRoute       = "/orders"
	OrderRoute        = "/orders/:orderId"
	OrdersByUserRoute = "/orders/users/:userId"
	OrderPayRoute     = "/orders/:orderId/pay"
	OrderCancelRoute  = "/orders/:orderId/cancel"
)

type RouterArgs struct {
	Logger         *logrus.Logger
	UserService    UserServicer
	ProductService ProductServicer
	OrderService   OrderServicer
}

func New(args RouterArgs) *gin.Engine {
	if valErr := registerValidators(); valErr != nil {
		panic(valErr)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())

	usersHandler := NewUsersHandler(args.UserService)
	productsHandler := NewProductsHandler(args.ProductService)
	ordersHandler := NewOrdersHandler(args.OrderService)

	api := r.Group(RouteGroup)

	api.POST(UsersRoute, usersHandler.Create)
	api.GET(UserRoute, usersHandler.Show)
	api.POST(UserChargeRoute, usersHandler.Charge)
	api.POST(UserUseRoute, usersHandler.Use)
	api.GET(UserPointRoute, usersHandler.Point)
	api.GET(UserHistoryRoute, usersHandler.History)

	api.POST(ProductsRoute, productsHandler.Create)
	api.GET(ProductsRoute, productsHandler.Index)
	api.GET(ProductRoute, productsHandler.Show)
	api.PUT(ProductPriceRoute, productsHandler.UpdatePrice)

	api.POST(OrdersRoute, ordersHandler.Create)
	api.GET(OrderRoute, ordersHandler.Show)
	api.GET(OrdersByUserRoute, ordersHandler.IndexByUser)
	api.POST(OrderPayRoute, ordersHandler.Pay)
	api.POST(OrderCancelRoute, ordersHandler.Cancel)

	return r
}
