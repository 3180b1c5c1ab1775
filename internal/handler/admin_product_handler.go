package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// カタログ管理（商品・カテゴリCRUD）のHTTP。
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	p := e.Group("/admin/products")
	p.Use(middleware.AuthJWT(cfg))
	p.Use(middleware.AdminRoleGuard())
	p.POST("", h.createProduct)
	p.PUT("/:id", h.updateProduct)
	p.DELETE("/:id", h.deleteProduct)

	cg := e.Group("/admin/categories")
	cg.Use(middleware.AuthJWT(cfg))
	cg.Use(middleware.AdminRoleGuard())
	cg.POST("", h.createCategory)
	cg.PUT("/:id", h.updateCategory)
}

// 金額は丸め事故を避けるため文字列で受ける
type AdminProductRequest struct {
	Title             string `json:"title"`
	Slug              string `json:"slug"`
	SKU               string `json:"sku"`
	ShortDescription  string `json:"short_description"`
	DetailDescription string `json:"detail_description"`
	ImagePath         string `json:"image_path"`
	Price             string `json:"price"`
	CategoryID        int64  `json:"category_id"`
	IsActive          bool   `json:"is_active"`
	IsFeatured        bool   `json:"is_featured"`
}

func (r AdminProductRequest) toInput() usecase.AdminProductInput {
	return usecase.AdminProductInput{
		Title:             r.Title,
		Slug:              r.Slug,
		SKU:               r.SKU,
		ShortDescription:  r.ShortDescription,
		DetailDescription: r.DetailDescription,
		ImagePath:         r.ImagePath,
		Price:             r.Price,
		CategoryID:        r.CategoryID,
		IsActive:          r.IsActive,
		IsFeatured:        r.IsFeatured,
	}
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req AdminProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	out, err := h.uc.AdminCreateProduct(c.Request().Context(), adminID, req.toInput())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *AdminProductHandler) updateProduct(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req AdminProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	if err := h.uc.AdminUpdateProduct(c.Request().Context(), adminID, productID, req.toInput()); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "ok"})
}

func (h *AdminProductHandler) deleteProduct(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.AdminDeleteProduct(c.Request().Context(), adminID, productID); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "ok"})
}

type AdminCategoryRequest struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	ImagePath   string `json:"image_path"`
	IsActive    bool   `json:"is_active"`
	IsFeatured  bool   `json:"is_featured"`
}

func (r AdminCategoryRequest) toInput() usecase.AdminCategoryInput {
	return usecase.AdminCategoryInput{
		Title:       r.Title,
		Slug:        r.Slug,
		Description: r.Description,
		ImagePath:   r.ImagePath,
		IsActive:    r.IsActive,
		IsFeatured:  r.IsFeatured,
	}
}

func (h *AdminProductHandler) createCategory(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req AdminCategoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	out, err := h.uc.AdminCreateCategory(c.Request().Context(), adminID, req.toInput())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *AdminProductHandler) updateCategory(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	categoryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req AdminCategoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	if err := h.uc.AdminUpdateCategory(c.Request().Context(), adminID, categoryID, req.toInput()); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "ok"})
}

// AuthJWTが詰めたuser_idを取り出す
func getUserIDFromContext(c echo.Context) (int64, bool) {
	v := c.Get("user_id")
	if v == nil {
		return 0, false
	}

	id, ok := v.(int64)
	if !ok {
		return 0, false
	}

	return id, true
}
