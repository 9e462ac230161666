package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/raw-dani/pos-only/internal/dto"
	"github.com/raw-dani/pos-only/internal/service"

	"github.com/gin-gonic/gin"
)

type InvoicesHandler struct{ svc service.InvoiceService }

func NewInvoicesHandler(svc service.InvoiceService) *InvoicesHandler {
	return &InvoicesHandler{svc: svc}
}

// Create godoc
// @Summary Create an invoice
// @Description Prices come from the catalog. Supplying paymentMethodId and paymentAmount pays the invoice in the same transaction.
// @Tags invoices
// @Accept json
// @Produce json
// @Param body body dto.CreateInvoiceRequest true "Cart"
// @Success 201 {object} dto.InvoiceResponse
// @Failure 400 {object} apierror.APIError
// @Failure 403 {object} apierror.APIError
// @Router /api/invoices [post]
func (h *InvoicesHandler) Create(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Pay godoc
// @Summary Confirm payment of a draft invoice
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param body body dto.PayInvoiceRequest true "Payment"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /api/invoices/{id}/pay [put]
func (h *InvoicesHandler) Pay(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.PayInvoiceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ConfirmPayment(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InvoicesHandler) List(c *gin.Context) {
	var filter dto.InvoiceFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InvoicesHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Receipt renders the invoice as a PDF. The document is buffered so a
// rendering failure still produces a JSON error.
func (h *InvoicesHandler) Receipt(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.svc.WriteReceipt(c.Request.Context(), id, &buf); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="receipt_%s.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
