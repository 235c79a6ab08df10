package handlers

import (
	"net/http"
	"time"

	"github.com/andresuchdata/retailpulse/internal/domain"
	"github.com/andresuchdata/retailpulse/internal/period"
	"github.com/andresuchdata/retailpulse/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// compareWindowDays is the length of each default comparison window.
const compareWindowDays = 30

type SaleHandler struct {
	sales     *service.SaleService
	analytics *service.AnalyticsService
	now       func() time.Time
}

func NewSaleHandler(sales *service.SaleService, analytics *service.AnalyticsService) *SaleHandler {
	return &SaleHandler{sales: sales, analytics: analytics, now: time.Now}
}

type createSaleRequest struct {
	ProductID int64           `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity"`
	SaleDate  *string         `json:"sale_date"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type saleResponse struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	SaleDate  string          `json:"sale_date"`
	Revenue   decimal.Decimal `json:"revenue"`
}

func toSaleResponse(s domain.Sale) saleResponse {
	return saleResponse{
		ID:        s.ID,
		ProductID: s.ProductID,
		Quantity:  s.Quantity,
		SaleDate:  formatDate(s.SaleDate),
		Revenue:   s.Revenue,
	}
}

type periodResponse struct {
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalSales   int             `json:"total_sales"`
}

type comparisonResponse struct {
	Period1           periodResponse  `json:"period1"`
	Period2           periodResponse  `json:"period2"`
	RevenueDifference decimal.Decimal `json:"revenue_difference"`
	SalesDifference   int             `json:"sales_difference"`
}

func toPeriodResponse(p domain.PeriodTotals) periodResponse {
	return periodResponse{
		StartDate:    formatDate(p.Start),
		EndDate:      formatDate(p.End),
		TotalRevenue: p.TotalRevenue,
		TotalSales:   p.TotalSales,
	}
}

func (h *SaleHandler) Create(c *gin.Context) {
	var req createSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	saleDate, err := parseOptionalDate(req.SaleDate, "sale_date")
	if err != nil {
		respondError(c, err)
		return
	}

	sale := &domain.Sale{ProductID: req.ProductID, Quantity: req.Quantity, Revenue: req.Revenue}
	if saleDate != nil {
		sale.SaleDate = *saleDate
	}
	created, err := h.sales.Record(c.Request.Context(), sale)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toSaleResponse(*created))
}

func (h *SaleHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	sale, err := h.sales.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSaleResponse(*sale))
}

func (h *SaleHandler) List(c *gin.Context) {
	r, err := queryRange(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	productID, err := queryInt64(c, "product_id")
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	filter := domain.SaleFilter{Range: r, ProductID: productID, Category: c.Query("category")}
	filter.Offset, filter.Limit = pagination(c)

	sales, err := h.sales.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]saleResponse, 0, len(sales))
	for _, s := range sales {
		out = append(out, toSaleResponse(s))
	}
	c.JSON(http.StatusOK, out)
}

// Analysis returns a handler that buckets sales at granularity g.
func (h *SaleHandler) Analysis(g period.Granularity) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, err := queryRange(c)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		buckets, err := h.analytics.Aggregate(c.Request.Context(), g, r, c.Query("category"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, buckets)
	}
}

func (h *SaleHandler) ByCategory(c *gin.Context) {
	r, err := queryRange(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	totals, err := h.analytics.ByCategory(c.Request.Context(), r)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

// Compare contrasts two periods. Omitted bounds default to the 30 days
// ending 30 days ago for period1 and the last 30 days for period2.
func (h *SaleHandler) Compare(c *gin.Context) {
	today := period.Truncate(h.now())
	monthAgo := today.AddDate(0, 0, -compareWindowDays)
	defaults := map[string]time.Time{
		"period1_start": today.AddDate(0, 0, -2*compareWindowDays),
		"period1_end":   monthAgo,
		"period2_start": monthAgo,
		"period2_end":   today,
	}

	bounds := make(map[string]time.Time, len(defaults))
	for name, fallback := range defaults {
		v, err := queryDate(c, name)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		if v == nil {
			bounds[name] = fallback
			continue
		}
		bounds[name] = *v
	}

	p1 := domain.Period{Start: bounds["period1_start"], End: bounds["period1_end"]}
	p2 := domain.Period{Start: bounds["period2_start"], End: bounds["period2_end"]}
	cmp, err := h.analytics.ComparePeriods(c.Request.Context(), p1, p2)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, comparisonResponse{
		Period1:           toPeriodResponse(cmp.Period1),
		Period2:           toPeriodResponse(cmp.Period2),
		RevenueDifference: cmp.RevenueDifference,
		SalesDifference:   cmp.SalesDifference,
	})
}
