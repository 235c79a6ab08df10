package handlers

import (
	"net/http"
	"strconv"

	"github.com/andresuchdata/retailpulse/internal/domain"
	"github.com/andresuchdata/retailpulse/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	products  *service.ProductService
	analytics *service.AnalyticsService
}

func NewProductHandler(products *service.ProductService, analytics *service.AnalyticsService) *ProductHandler {
	return &ProductHandler{products: products, analytics: analytics}
}

type createProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category" binding:"required"`
	Description *string         `json:"description"`
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	p, err := h.products.Create(c.Request.Context(), &domain.Product{
		Name:        req.Name,
		Price:       req.Price,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) List(c *gin.Context) {
	filter := domain.ProductFilter{Category: c.Query("category")}
	filter.Offset, filter.Limit = pagination(c)

	for name, dst := range map[string]**decimal.Decimal{"min_price": &filter.MinPrice, "max_price": &filter.MaxPrice} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			badRequest(c, name+" must be a number")
			return
		}
		*dst = &v
	}

	products, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var u domain.ProductUpdate
	if err := c.ShouldBindJSON(&u); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	p, err := h.products.Update(c.Request.Context(), id, u)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) Search(c *gin.Context) {
	offset, limit := pagination(c)
	products, err := h.products.Search(c.Request.Context(), c.Query("name"), c.Query("description"), offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) ByCategory(c *gin.Context) {
	groups, err := h.products.ByCategory(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

func (h *ProductHandler) TopSelling(c *gin.Context) {
	r, err := queryRange(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 {
		badRequest(c, "limit must be a positive integer")
		return
	}

	top, err := h.analytics.TopSelling(c.Request.Context(), r, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, top)
}
