package dto

type CreatePaymentMethodRequest struct {
	Name string `json:"name" validate:"required,min=1,max=50"`
	Type string `json:"type" validate:"required,oneof=cash transfer qris"`
}

type UpdatePaymentMethodRequest struct {
	Name   *string `json:"name"   validate:"omitempty,min=1,max=50"`
	Type   *string `json:"type"   validate:"omitempty,oneof=cash transfer qris"`
	Active *bool   `json:"active"`
}

type PaymentMethodResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Active bool   `json:"active"`
}
