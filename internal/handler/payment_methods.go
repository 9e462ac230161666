package handler

import (
	"net/http"

	"github.com/raw-dani/pos-only/internal/dto"
	"github.com/raw-dani/pos-only/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentMethodsHandler struct{ svc service.PaymentMethodService }

func NewPaymentMethodsHandler(svc service.PaymentMethodService) *PaymentMethodsHandler {
	return &PaymentMethodsHandler{svc: svc}
}

func (h *PaymentMethodsHandler) List(c *gin.Context) {
	resp, err := h.svc.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PaymentMethodsHandler) Create(c *gin.Context) {
	var req dto.CreatePaymentMethodRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PaymentMethodsHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdatePaymentMethodRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PaymentMethodsHandler) Deactivate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Deactivate(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
