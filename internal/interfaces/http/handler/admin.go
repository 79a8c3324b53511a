package handler

import (
	"io"
	"net/http"

	catalogapp "github.com/charro/storefront/internal/application/catalog"
	identityapp "github.com/charro/storefront/internal/application/identity"
	orderapp "github.com/charro/storefront/internal/application/order"
	"github.com/charro/storefront/internal/application/report"
	"github.com/gin-gonic/gin"
)

// uploadField is the multipart field carrying an image
const uploadField = "file"

// AdminHandler serves the back-office API
type AdminHandler struct {
	BaseHandler
	dashboard *report.DashboardService
	products  *catalogapp.ProductService
	users     *identityapp.UserService
	orders    *orderapp.OrderService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(
	dashboard *report.DashboardService,
	products *catalogapp.ProductService,
	users *identityapp.UserService,
	orders *orderapp.OrderService,
) *AdminHandler {
	return &AdminHandler{
		dashboard: dashboard,
		products:  products,
		users:     users,
		orders:    orders,
	}
}

// Dashboard godoc
// @Summary      Store counters for the admin dashboard
// @Tags         admin
// @Security     BearerAuth
// @Router       /admin/dashboard [get]
func (h *AdminHandler) Dashboard(c *gin.Context) {
	summary, err := h.dashboard.GetSummary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// ListUsers godoc
// @Summary      List users
// @Tags         admin
// @Security     BearerAuth
// @Router       /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var q identityapp.UserListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	users, total, filter, err := h.users.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, users, total, filter.Page, filter.PageSize)
}

// ChangeUserRole godoc
// @Summary      Change a user's role
// @Tags         admin
// @Security     BearerAuth
// @Param        request body identityapp.ChangeRoleRequest true "User and role"
// @Router       /admin/users [put]
func (h *AdminHandler) ChangeUserRole(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	var req identityapp.ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	user, err := h.users.ChangeRole(c.Request.Context(), actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// ListOrders godoc
// @Summary      List all orders
// @Tags         admin
// @Security     BearerAuth
// @Param        is_paid query bool false "Filter by payment state"
// @Router       /admin/orders [get]
func (h *AdminHandler) ListOrders(c *gin.Context) {
	var q orderapp.ListOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	orders, total, filter, err := h.orders.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// MarkOrderPaid godoc
// @Summary      Record an offline payment
// @Tags         admin
// @Security     BearerAuth
// @Param        id path string true "Order ID"
// @Router       /admin/orders/{id}/pay [post]
func (h *AdminHandler) MarkOrderPaid(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req orderapp.MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	order, err := h.orders.MarkPaid(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// ListProducts godoc
// @Summary      List products with pagination
// @Tags         admin
// @Security     BearerAuth
// @Router       /admin/products [get]
func (h *AdminHandler) ListProducts(c *gin.Context) {
	var q catalogapp.AdminListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	products, total, filter, err := h.products.AdminList(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, products, total, filter.Page, filter.PageSize)
}

// GetProduct godoc
// @Summary      Get a product by ID
// @Tags         admin
// @Security     BearerAuth
// @Router       /admin/products/{id} [get]
func (h *AdminHandler) GetProduct(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	product, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// CreateProduct godoc
// @Summary      Create a product
// @Tags         admin
// @Security     BearerAuth
// @Param        request body catalogapp.CreateProductRequest true "Product"
// @Router       /admin/products [post]
func (h *AdminHandler) CreateProduct(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	product, err := h.products.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// UpdateProduct godoc
// @Summary      Update a product
// @Tags         admin
// @Security     BearerAuth
// @Param        request body catalogapp.UpdateProductRequest true "Changed fields"
// @Router       /admin/products/{id} [put]
func (h *AdminHandler) UpdateProduct(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	product, err := h.products.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// UploadImage godoc
// @Summary      Upload a product image
// @Tags         admin
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Param        file formData file true "Image"
// @Router       /admin/upload [post]
func (h *AdminHandler) UploadImage(c *gin.Context) {
	fh, err := c.FormFile(uploadField)
	if err != nil {
		h.BadRequest(c, "Missing file field")
		return
	}
	if fh.Size > catalogapp.MaxImageBytes {
		h.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "Image exceeds the 5MB limit")
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.BadRequest(c, "Unreadable file")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, catalogapp.MaxImageBytes+1))
	if err != nil {
		h.BadRequest(c, "Unreadable file")
		return
	}

	// Trust the sniffed type over the client's header.
	contentType := http.DetectContentType(data)
	result, err := h.products.UploadImage(c.Request.Context(), fh.Filename, contentType, data)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}
