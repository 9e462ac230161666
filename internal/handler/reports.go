package handler

import (
	"bytes"
	"net/http"

	"github.com/raw-dani/pos-only/internal/dto"
	"github.com/raw-dani/pos-only/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

// Sales godoc
// @Summary Sales report
// @Tags reports
// @Produce json
// @Param startDate query string false "YYYY-MM-DD or RFC3339"
// @Param endDate query string false "YYYY-MM-DD (inclusive) or RFC3339"
// @Param cashierId query string false "Cashier ID"
// @Param cashier query string false "Cashier name contains"
// @Param status query string false "draft, unpaid, paid (default) or all"
// @Success 200 {object} dto.SalesReportResponse
// @Router /api/reports/sales [get]
func (h *ReportsHandler) Sales(c *gin.Context) {
	var filter dto.SalesReportFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Sales(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportsHandler) SalesPDF(c *gin.Context) {
	var filter dto.SalesReportFilter
	if !bindQuery(c, &filter) {
		return
	}
	var buf bytes.Buffer
	if err := h.svc.WriteSalesPDF(c.Request.Context(), filter, &buf); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="sales-report.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
