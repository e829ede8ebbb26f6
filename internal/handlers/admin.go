package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kaiunlab/kaiun/internal/store"
)

// AdminStore is the slice of the tabular store the admin surface needs.
type AdminStore interface {
	ListProducts(ctx context.Context) ([]store.ProductRecord, error)
	AppendProduct(ctx context.Context, p store.ProductRecord) (store.ProductRecord, error)
	AdviceCacheStats(ctx context.Context) (store.CacheStats, error)
}

// AdminHandler exposes the operator API: product management and cache
// growth visibility. All routes sit behind the JWT middleware.
type AdminHandler struct {
	logger *slog.Logger
	store  AdminStore
}

// NewAdminHandler creates the admin handler.
func NewAdminHandler(log *slog.Logger, adminStore AdminStore) *AdminHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AdminHandler{
		logger: log.With(slog.String("handler", "admin")),
		store:  adminStore,
	}
}

// Register registers admin routes.
func (h *AdminHandler) Register(e *echo.Echo) {
	e.GET("/admin/products", h.ListProducts)
	e.POST("/admin/products", h.CreateProduct)
	e.GET("/admin/cache/stats", h.CacheStats)
}

// ListProducts returns all product rows in matching priority order.
func (h *AdminHandler) ListProducts(c echo.Context) error {
	items, err := h.store.ListProducts(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []store.ProductRecord{}
	}
	return c.JSON(http.StatusOK, items)
}

type createProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Keywords    string `json:"keywords"`
}

// CreateProduct appends a product row. New rows match with the lowest
// priority since earlier rows win ties.
func (h *AdminHandler) CreateProduct(c echo.Context) error {
	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Name) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	created, err := h.store.AppendProduct(c.Request().Context(), store.ProductRecord{
		Name:        req.Name,
		Description: req.Description,
		URL:         req.URL,
		Keywords:    req.Keywords,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, created)
}

// CacheStats reports advice-cache size and age range. The cache is
// append-only with no eviction, so this is where unbounded growth shows
// up first.
func (h *AdminHandler) CacheStats(c echo.Context) error {
	stats, err := h.store.AdviceCacheStats(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}
