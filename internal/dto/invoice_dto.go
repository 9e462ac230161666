package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// InvoiceItemRequest accepts the product reference under either "productId" or
// "product". Price and Total are display hints checked against the catalog.
type InvoiceItemRequest struct {
	ProductID *string          `json:"productId"`
	Product   *string          `json:"product"`
	Quantity  int              `json:"quantity" validate:"required,min=1,max=100000"`
	Price     *decimal.Decimal `json:"price"    validate:"omitempty,min=0,max=9999999999.99"`
	Total     *decimal.Decimal `json:"total"    validate:"omitempty,min=0,max=9999999999.99"`
	Name      string           `json:"name"`
}

// ProductRef returns the product reference, preferring productId.
func (r InvoiceItemRequest) ProductRef() string {
	if r.ProductID != nil && *r.ProductID != "" {
		return *r.ProductID
	}
	if r.Product != nil {
		return *r.Product
	}
	return ""
}

type CreateInvoiceRequest struct {
	Items           []InvoiceItemRequest `json:"items"           validate:"required,min=1,dive"`
	Discount        *decimal.Decimal     `json:"discount"        validate:"omitempty,min=0,max=9999999999.99"`
	CashierID       *string              `json:"cashierId"       validate:"omitempty,uuid"`
	PaymentMethodID *string              `json:"paymentMethodId" validate:"omitempty,uuid"`
	PaymentAmount   *decimal.Decimal     `json:"paymentAmount"   validate:"omitempty,min=0,max=9999999999.99"`
	CustomerEmail   *string              `json:"customerEmail"   validate:"omitempty,email"`
}

type PayInvoiceRequest struct {
	PaymentMethodID string           `json:"paymentMethodId" validate:"required,uuid"`
	Amount          *decimal.Decimal `json:"amount"          validate:"required,min=0,max=9999999999.99"`
	CustomerEmail   *string          `json:"customerEmail"   validate:"omitempty,email"`
}

type InvoiceFilter struct {
	Status string `form:"status" validate:"omitempty,oneof=draft unpaid paid"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CashierSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type ProductSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type InvoiceItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId"`
	Product   *ProductSummary `json:"product,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Total     decimal.Decimal `json:"total"`
}

type PaymentResponse struct {
	ID        string                 `json:"id"`
	MethodID  string                 `json:"methodId"`
	Method    *PaymentMethodResponse `json:"method,omitempty"`
	Amount    decimal.Decimal        `json:"amount"`
	Change    decimal.Decimal        `json:"change"`
	CreatedAt time.Time              `json:"createdAt"`
}

type InvoiceResponse struct {
	ID            string                `json:"id"`
	InvoiceNumber string                `json:"invoiceNumber"`
	CashierID     string                `json:"cashierId"`
	Cashier       *CashierSummary       `json:"cashier,omitempty"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	Discount      decimal.Decimal       `json:"discount"`
	Tax           decimal.Decimal       `json:"tax"`
	Total         decimal.Decimal       `json:"total"`
	Status        string                `json:"status"`
	CustomerEmail *string               `json:"customerEmail,omitempty"`
	Items         []InvoiceItemResponse `json:"items"`
	Payments      []PaymentResponse     `json:"payments"`
	CreatedAt     time.Time             `json:"createdAt"`
}
