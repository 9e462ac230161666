package dto

import "github.com/shopspring/decimal"

// SalesReportFilter dates accept YYYY-MM-DD or RFC3339. Status defaults to
// "paid"; "all" disables the status predicate.
type SalesReportFilter struct {
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
	CashierID string `form:"cashierId" validate:"omitempty,uuid"`
	Cashier   string `form:"cashier"`
	Status    string `form:"status"    validate:"omitempty,oneof=draft unpaid paid all"`
}

type SalesReportResponse struct {
	TotalSales decimal.Decimal   `json:"totalSales"`
	Count      int               `json:"count"`
	Invoices   []InvoiceResponse `json:"invoices"`
}
