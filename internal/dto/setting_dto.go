package dto

import "github.com/shopspring/decimal"

// UpdateSettingRequest is a partial update; nil fields are left unchanged.
type UpdateSettingRequest struct {
	StoreName      *string          `json:"storeName"      validate:"omitempty,min=1,max=100"`
	StoreAddress   *string          `json:"storeAddress"`
	StorePhone     *string          `json:"storePhone"`
	StoreEmail     *string          `json:"storeEmail"     validate:"omitempty,email"`
	StoreWhatsApp  *string          `json:"storeWhatsApp"`
	StoreInstagram *string          `json:"storeInstagram"`
	StoreFacebook  *string          `json:"storeFacebook"`
	StoreTwitter   *string          `json:"storeTwitter"`
	Currency       *string          `json:"currency"       validate:"omitempty,len=3"`
	ReceiptFooter  *string          `json:"receiptFooter"`
	TaxEnabled     *bool            `json:"taxEnabled"`
	TaxRate        *decimal.Decimal `json:"taxRate"        validate:"omitempty,min=0,max=100"`
}

type SettingResponse struct {
	ID             string          `json:"id"`
	StoreName      string          `json:"storeName"`
	StoreAddress   *string         `json:"storeAddress"`
	StorePhone     *string         `json:"storePhone"`
	StoreEmail     *string         `json:"storeEmail"`
	StoreWhatsApp  *string         `json:"storeWhatsApp"`
	StoreInstagram *string         `json:"storeInstagram"`
	StoreFacebook  *string         `json:"storeFacebook"`
	StoreTwitter   *string         `json:"storeTwitter"`
	Currency       string          `json:"currency"`
	ReceiptFooter  *string         `json:"receiptFooter"`
	TaxEnabled     bool            `json:"taxEnabled"`
	TaxRate        decimal.Decimal `json:"taxRate"`
}
