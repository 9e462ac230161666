package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/raw-dani/pos-only/internal/apierror"
	"github.com/raw-dani/pos-only/internal/dto"
	"github.com/raw-dani/pos-only/internal/infra"
	"github.com/raw-dani/pos-only/internal/model"
	"github.com/raw-dani/pos-only/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateOnly = "2006-01-02"

type ReportService interface {
	// Sales aggregates invoices matching filter. Same filter, same data,
	// same result: ordering is by created_at then id.
	Sales(ctx context.Context, filter dto.SalesReportFilter) (*dto.SalesReportResponse, error)
	WriteSalesPDF(ctx context.Context, filter dto.SalesReportFilter, w io.Writer) error
}

type reportService struct {
	invoices repository.InvoiceRepository
	settings SettingService
	loc      *time.Location
}

func NewReportService(invoices repository.InvoiceRepository, settings SettingService) ReportService {
	return &reportService{invoices: invoices, settings: settings, loc: time.Local}
}

type salesResult struct {
	invoices []model.Invoice
	total    decimal.Decimal
	period   string
}

func (s *reportService) Sales(ctx context.Context, filter dto.SalesReportFilter) (*dto.SalesReportResponse, error) {
	res, err := s.collect(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.SalesReportResponse{
		TotalSales: res.total,
		Count:      len(res.invoices),
		Invoices:   make([]dto.InvoiceResponse, len(res.invoices)),
	}
	for i := range res.invoices {
		resp.Invoices[i] = toInvoiceResponse(&res.invoices[i])
	}
	return resp, nil
}

func (s *reportService) WriteSalesPDF(ctx context.Context, filter dto.SalesReportFilter, w io.Writer) error {
	res, err := s.collect(ctx, filter)
	if err != nil {
		return err
	}
	store, err := s.settings.Current(ctx)
	if err != nil {
		return err
	}
	return infra.WriteSalesReportPDF(w, infra.SalesReportDocument{
		StoreName:  store.StoreName,
		Currency:   store.Currency,
		Period:     res.period,
		Invoices:   res.invoices,
		TotalSales: res.total,
	})
}

func (s *reportService) collect(ctx context.Context, filter dto.SalesReportFilter) (*salesResult, error) {
	q := repository.InvoiceQuery{Oldest: true}

	var fields []apierror.FieldMessage
	if filter.StartDate != "" {
		from, err := s.parseBound(filter.StartDate, false)
		if err != nil {
			fields = append(fields, apierror.FieldMessage{Field: "startDate", Message: "use YYYY-MM-DD or RFC3339"})
		} else {
			q.From = &from
		}
	}
	if filter.EndDate != "" {
		to, err := s.parseBound(filter.EndDate, true)
		if err != nil {
			fields = append(fields, apierror.FieldMessage{Field: "endDate", Message: "use YYYY-MM-DD or RFC3339"})
		} else {
			q.To = &to
		}
	}
	if filter.CashierID != "" {
		cid, err := uuid.Parse(filter.CashierID)
		if err != nil {
			fields = append(fields, apierror.FieldMessage{Field: "cashierId", Message: "cashierId must be a valid id"})
		} else {
			q.CashierID = &cid
		}
	}
	if len(fields) > 0 {
		return nil, apierror.Validation("invalid report filter", fields...)
	}
	if q.From != nil && q.To != nil && q.From.After(*q.To) {
		return nil, apierror.Field("endDate", "endDate must not be before startDate")
	}

	switch filter.Status {
	case "":
		q.Status = model.InvoicePaid
	case "all":
	default:
		q.Status = filter.Status
	}

	invoices, err := s.invoices.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("sales report: %w", err)
	}

	if name := strings.ToLower(strings.TrimSpace(filter.Cashier)); name != "" {
		kept := invoices[:0]
		for _, inv := range invoices {
			if inv.Cashier != nil && strings.Contains(strings.ToLower(inv.Cashier.Name), name) {
				kept = append(kept, inv)
			}
		}
		invoices = kept
	}

	total := decimal.Zero
	for _, inv := range invoices {
		total = total.Add(inv.Total)
	}

	return &salesResult{
		invoices: invoices,
		total:    total,
		period:   periodLabel(filter.StartDate, filter.EndDate),
	}, nil
}

// parseBound accepts a calendar date or an RFC3339 instant. A calendar date
// used as an end bound covers the whole day.
func (s *reportService) parseBound(raw string, end bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	d, err := time.ParseInLocation(dateOnly, raw, s.loc)
	if err != nil {
		return time.Time{}, err
	}
	if end {
		return d.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	}
	return d, nil
}

func periodLabel(start, end string) string {
	switch {
	case start != "" && end != "":
		return start + " .. " + end
	case start != "":
		return "from " + start
	case end != "":
		return "until " + end
	default:
		return "all time"
	}
}
