package handlers

import (
	"net/http"
	"strconv"

	"github.com/andresuchdata/retailpulse/internal/domain"
	"github.com/andresuchdata/retailpulse/internal/service"
	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	inventory *service.InventoryService
}

func NewInventoryHandler(inventory *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

type createInventoryRequest struct {
	ProductID         int64   `json:"product_id" binding:"required"`
	Quantity          int     `json:"quantity"`
	LowStockThreshold *int    `json:"low_stock_threshold"`
	LastUpdated       *string `json:"last_updated"`
}

type updateInventoryRequest struct {
	Quantity          *int    `json:"quantity"`
	LowStockThreshold *int    `json:"low_stock_threshold"`
	LastUpdated       *string `json:"last_updated"`
}

type inventoryResponse struct {
	ID                int64  `json:"id"`
	ProductID         int64  `json:"product_id"`
	Quantity          int    `json:"quantity"`
	LowStockThreshold int    `json:"low_stock_threshold"`
	LastUpdated       string `json:"last_updated"`
	ProductName       string `json:"product_name,omitempty"`
	Category          string `json:"category,omitempty"`
}

func toInventoryResponse(inv domain.Inventory) inventoryResponse {
	return inventoryResponse{
		ID:                inv.ID,
		ProductID:         inv.ProductID,
		Quantity:          inv.Quantity,
		LowStockThreshold: inv.LowStockThreshold,
		LastUpdated:       formatDate(inv.LastUpdated),
	}
}

func (h *InventoryHandler) Create(c *gin.Context) {
	var req createInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	lastUpdated, err := parseOptionalDate(req.LastUpdated, "last_updated")
	if err != nil {
		respondError(c, err)
		return
	}

	in := domain.NewInventory{
		ProductID:         req.ProductID,
		Quantity:          req.Quantity,
		LowStockThreshold: req.LowStockThreshold,
	}
	if lastUpdated != nil {
		in.LastUpdated = *lastUpdated
	}

	inv, err := h.inventory.CreateInventory(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toInventoryResponse(*inv))
}

func (h *InventoryHandler) List(c *gin.Context) {
	productID, err := queryInt64(c, "product_id")
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	lowStockOnly, _ := strconv.ParseBool(c.DefaultQuery("low_stock", "false"))
	filter := domain.InventoryFilter{ProductID: productID, Category: c.Query("category"), LowStockOnly: lowStockOnly}
	filter.Offset, filter.Limit = pagination(c)

	items, err := h.inventory.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]inventoryResponse, 0, len(items))
	for _, item := range items {
		resp := toInventoryResponse(item.Inventory)
		resp.ProductName = item.ProductName
		resp.Category = item.Category
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, out)
}

func (h *InventoryHandler) Get(c *gin.Context) {
	productID, ok := pathID(c, "product_id")
	if !ok {
		return
	}
	inv, err := h.inventory.Get(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toInventoryResponse(*inv))
}

func (h *InventoryHandler) Update(c *gin.Context) {
	productID, ok := pathID(c, "product_id")
	if !ok {
		return
	}
	var req updateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	lastUpdated, err := parseOptionalDate(req.LastUpdated, "last_updated")
	if err != nil {
		respondError(c, err)
		return
	}

	inv, err := h.inventory.UpdateInventory(c.Request.Context(), productID, domain.InventoryUpdate{
		Quantity:          req.Quantity,
		LowStockThreshold: req.LowStockThreshold,
		LastUpdated:       lastUpdated,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toInventoryResponse(*inv))
}

// Adjust applies ?adjustment=<delta> to the product's quantity.
func (h *InventoryHandler) Adjust(c *gin.Context) {
	productID, ok := pathID(c, "product_id")
	if !ok {
		return
	}
	raw, present := c.GetQuery("adjustment")
	if !present {
		badRequest(c, "adjustment is required")
		return
	}
	delta, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, "adjustment must be an integer")
		return
	}

	inv, err := h.inventory.AdjustInventory(c.Request.Context(), productID, delta)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toInventoryResponse(*inv))
}

func (h *InventoryHandler) LowStock(c *gin.Context) {
	threshold, err := queryInt(c, "threshold")
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if threshold != nil && *threshold < 0 {
		badRequest(c, "threshold must not be negative")
		return
	}

	deficits, err := h.inventory.ScanLowStock(c.Request.Context(), threshold, c.Query("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deficits)
}

func (h *InventoryHandler) Summary(c *gin.Context) {
	summary, err := h.inventory.InventorySummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
