package handler

import (
	catalogapp "github.com/charro/storefront/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// ProductHandler serves the public catalog
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// List godoc
// @Summary      List products
// @Description  Lists products, optionally restricted to a gender. "all" or an unknown gender lists everything.
// @Tags         products
// @Param        gender query string false "men, women, kid, unisex or all"
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var q catalogapp.ListProductsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	products, err := h.productService.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// GetBySlug godoc
// @Summary      Get a product
// @Tags         products
// @Param        slug path string true "Product slug"
// @Router       /products/{slug} [get]
func (h *ProductHandler) GetBySlug(c *gin.Context) {
	product, err := h.productService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Search godoc
// @Summary      Search products by title or tag
// @Tags         products
// @Param        query path string true "Search text"
// @Router       /search/{query} [get]
func (h *ProductHandler) Search(c *gin.Context) {
	products, err := h.productService.Search(c.Request.Context(), c.Param("query"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}
