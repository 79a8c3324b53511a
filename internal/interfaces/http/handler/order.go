package handler

import (
	orderapp "github.com/charro/storefront/internal/application/order"
	"github.com/charro/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// OrderHandler serves checkout and order history for signed-in users
type OrderHandler struct {
	BaseHandler
	orderService *orderapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *orderapp.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Create godoc
// @Summary      Place an order
// @Description  Prices the cart against the catalog and stores an unpaid order
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Param        request body orderapp.CreateOrderRequest true "Cart contents"
// @Router       /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	var req orderapp.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	order, err := h.orderService.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// List godoc
// @Summary      List my orders
// @Tags         orders
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	var q orderapp.ListOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	orders, total, filter, err := h.orderService.ListByUser(c.Request.Context(), userID, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @Summary      Get an order
// @Description  Owners see their own orders; back-office users see any order
// @Tags         orders
// @Security     BearerAuth
// @Param        id path string true "Order ID"
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.GetByID(c.Request.Context(), id, userID, middleware.IsBackOffice(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
