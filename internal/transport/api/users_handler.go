package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/groph-commerce/internal/domain"
)

type UsersHandler struct {
	svs UserServicer
}

func NewUsersHandler(svs UserServicer) *UsersHandler {
	return &UsersHandler{
		svs: svs,
	}
}

type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Point int64  `json:"point"`
}

func userResponseFrom(user *domain.User) *UserResponse {
	return &UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Point: user.Point,
	}
}

type CreateUserParams struct {
	Name string `json:"name" binding:"required,max_bytes=255"`
}

// Create POST RouteGroup + UsersRoute.
func (h *UsersHandler) Create(c *gin.Context) {
	var params CreateUserParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		abortWithBindError(c, bindErr)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	user, err := h.svs.Create(reqCtx, params.Name)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userResponseFrom(user))
}

// Show GET RouteGroup + UserRoute.
func (h *UsersHandler) Show(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	user, err := h.svs.Get(reqCtx, userID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponseFrom(user))
}

type PointParams struct {
	Amount int64 `json:"amount" binding:"required"`
}

type PointResponse struct {
	UserID int64 `json:"user_id"`
	Point  int64 `json:"point"`
}

// Charge POST RouteGroup + UserChargeRoute.
func (h *UsersHandler) Charge(c *gin.Context) {
	h.applyPoint(c, h.svs.ChargePoint)
}

// Use POST RouteGroup + UserUseRoute.
func (h *UsersHandler) Use(c *gin.Context) {
	h.applyPoint(c, h.svs.UsePoint)
}

func (h *UsersHandler) applyPoint(
	c *gin.Context,
	fn func(ctx context.Context, userID int64, amount int64) (*domain.User, error),
) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	var params PointParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		abortWithBindError(c, bindErr)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	user, err := fn(reqCtx, userID, params.Amount)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, &PointResponse{UserID: user.ID, Point: user.Point})
}

// Point GET RouteGroup + UserPointRoute.
func (h *UsersHandler) Point(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	user, err := h.svs.Get(reqCtx, userID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, &PointResponse{UserID: user.ID, Point: user.Point})
}

type PointHistoryResponseItem struct {
	Type         domain.PointTransactionType `json:"type"`
	Amount       int64                       `json:"amount"`
	BalanceAfter int64                       `json:"balance_after"`
	CreatedAt    string                      `json:"created_at"`
}

// History GET RouteGroup + UserHistoryRoute.
func (h *UsersHandler) History(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	history, err := h.svs.PointHistory(reqCtx, userID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	response := make([]PointHistoryResponseItem, len(history))
	for i, entry := range history {
		response[i] = PointHistoryResponseItem{
			Type:         entry.Type,
			Amount:       entry.Amount,
			BalanceAfter: entry.BalanceAfter,
			CreatedAt:    entry.CreatedAt.Format(time.RFC3339),
		}
	}
	c.JSON(http.StatusOK, response)
}
