package service

import (
	"context"
	"fmt"
	"io"

	"github.com/raw-dani/pos-only/internal/apierror"
	"github.com/raw-dani/pos-only/internal/dto"
	"github.com/raw-dani/pos-only/internal/infra"
	"github.com/raw-dani/pos-only/internal/model"
	"github.com/raw-dani/pos-only/internal/observability/metrics"
	"github.com/raw-dani/pos-only/internal/rbac"
	"github.com/raw-dani/pos-only/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// maxNumberAttempts bounds how often Create retries after an invoice number collision.
const maxNumberAttempts = 3

var (
	hundred               = decimal.NewFromInt(100)
	errInvoiceNotFound    = apierror.NotFound("invoice not found")
	errInvoiceAlreadyPaid = apierror.Conflict("invoice already paid")
)

// maxAmount is the largest value a decimal(12,2) column holds.
var maxAmount = decimal.RequireFromString("9999999999.99")

// InvoiceNumberer mints invoice numbers; uniqueness is also enforced by the
// storage layer.
type InvoiceNumberer interface {
	Next() string
}

// ReceiptQueue schedules receipt rendering once an invoice is paid.
type ReceiptQueue interface {
	EnqueueReceipt(ctx context.Context, invoiceID uuid.UUID) error
}

type InvoiceService interface {
	// Create prices the cart from the catalog, applies tax and discount, and
	// persists header and items atomically. A supplied payment is recorded in
	// the same transaction.
	Create(ctx context.Context, actor Identity, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	// ConfirmPayment moves a draft invoice to paid exactly once.
	ConfirmPayment(ctx context.Context, id uuid.UUID, req dto.PayInvoiceRequest) (*dto.InvoiceResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.InvoiceResponse, error)
	// Find returns the hydrated model, for rendering.
	Find(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	List(ctx context.Context, filter dto.InvoiceFilter) ([]dto.InvoiceResponse, error)
	WriteReceipt(ctx context.Context, id uuid.UUID, w io.Writer) error
}

type invoiceService struct {
	repo     repository.InvoiceRepository
	products repository.ProductRepository
	users    repository.UserRepository
	methods  repository.PaymentMethodRepository
	settings SettingService
	numbers  InvoiceNumberer
	receipts ReceiptQueue // nil disables receipt jobs
}

func NewInvoiceService(
	repo repository.InvoiceRepository,
	products repository.ProductRepository,
	users repository.UserRepository,
	methods repository.PaymentMethodRepository,
	settings SettingService,
	numbers InvoiceNumberer,
	receipts ReceiptQueue,
) InvoiceService {
	return &invoiceService{
		repo:     repo,
		products: products,
		users:    users,
		methods:  methods,
		settings: settings,
		numbers:  numbers,
		receipts: receipts,
	}
}

// pendingPayment is a validated tender waiting to be recorded.
type pendingPayment struct {
	method *model.PaymentMethod
	amount decimal.Decimal
	email  *string
}

func (s *invoiceService) Create(ctx context.Context, actor Identity, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	items, err := s.priceItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Total)
	}
	tax := subtotal.Mul(s.taxRate(ctx)).Div(hundred).Round(2)
	if subtotal.Add(tax).GreaterThan(maxAmount) {
		return nil, apierror.Field("items", "invoice total exceeds "+maxAmount.StringFixed(2))
	}

	discount := decimal.Zero
	if req.Discount != nil {
		discount = req.Discount.Round(2)
	}
	if discount.IsNegative() {
		return nil, apierror.Field("discount", "discount must not be negative")
	}
	if discount.GreaterThan(subtotal.Add(tax)) {
		return nil, apierror.Field("discount", "discount cannot exceed subtotal plus tax")
	}
	total := subtotal.Sub(discount).Add(tax)

	cashierID, err := s.resolveCashier(ctx, actor, req.CashierID)
	if err != nil {
		return nil, err
	}

	var pay *pendingPayment
	if req.PaymentMethodID != nil || req.PaymentAmount != nil {
		if req.PaymentMethodID == nil || req.PaymentAmount == nil {
			return nil, apierror.Validation("paymentMethodId and paymentAmount must be supplied together",
				apierror.FieldMessage{Field: "paymentMethodId", Message: "required together with paymentAmount"},
				apierror.FieldMessage{Field: "paymentAmount", Message: "required together with paymentMethodId"},
			)
		}
		method, err := s.resolveMethod(ctx, *req.PaymentMethodID, "paymentMethodId")
		if err != nil {
			return nil, err
		}
		if req.PaymentAmount.LessThan(total) {
			return nil, apierror.Field("paymentAmount", "payment amount is less than invoice total "+total.StringFixed(2))
		}
		if req.PaymentAmount.GreaterThan(maxAmount) {
			return nil, apierror.Field("paymentAmount", "payment amount exceeds "+maxAmount.StringFixed(2))
		}
		pay = &pendingPayment{method: method, amount: req.PaymentAmount.Round(2)}
	}

	var inv *model.Invoice
	for attempt := 1; ; attempt++ {
		inv = &model.Invoice{
			ID:            uuid.New(),
			InvoiceNumber: s.numbers.Next(),
			CashierID:     cashierID,
			Subtotal:      subtotal,
			Discount:      discount,
			Tax:           tax,
			Total:         total,
			Status:        model.InvoiceDraft,
			CustomerEmail: req.CustomerEmail,
			Items:         make([]model.InvoiceItem, len(items)),
		}
		for i, it := range items {
			it.ID = uuid.New()
			it.InvoiceID = inv.ID
			inv.Items[i] = it
		}

		err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			if err := s.repo.Create(ctx, tx, inv); err != nil {
				return err
			}
			if pay != nil {
				return s.recordPayment(ctx, tx, inv.ID, pay)
			}
			return nil
		})
		if err == nil {
			break
		}
		if repository.IsDuplicateKey(err) && attempt < maxNumberAttempts {
			metrics.InvoiceNumberRetry()
			log.Warn().Str("invoice_number", inv.InvoiceNumber).Int("attempt", attempt).
				Msg("invoice number collision, retrying")
			continue
		}
		if _, ok := apierror.As(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("create invoice: %w", err)
	}

	metrics.InvoiceCreated(pay != nil)
	log.Info().
		Str("invoice_id", inv.ID.String()).
		Str("invoice_number", inv.InvoiceNumber).
		Str("cashier_id", cashierID.String()).
		Str("total", total.StringFixed(2)).
		Bool("paid", pay != nil).
		Msg("invoice created")

	if pay != nil {
		s.enqueueReceipt(ctx, inv.ID)
	}
	return s.Get(ctx, inv.ID)
}

func (s *invoiceService) ConfirmPayment(ctx context.Context, id uuid.UUID, req dto.PayInvoiceRequest) (*dto.InvoiceResponse, error) {
	inv, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if !inv.IsPayable() {
		metrics.PaymentResult("conflict")
		return nil, errInvoiceAlreadyPaid
	}

	method, err := s.resolveMethod(ctx, req.PaymentMethodID, "paymentMethodId")
	if err != nil {
		metrics.PaymentResult("rejected")
		return nil, err
	}
	if req.Amount.LessThan(inv.Total) {
		metrics.PaymentResult("rejected")
		return nil, apierror.Field("amount", "amount is less than invoice total "+inv.Total.StringFixed(2))
	}
	if req.Amount.GreaterThan(maxAmount) {
		metrics.PaymentResult("rejected")
		return nil, apierror.Field("amount", "amount exceeds "+maxAmount.StringFixed(2))
	}

	pay := &pendingPayment{method: method, amount: req.Amount.Round(2), email: req.CustomerEmail}
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.recordPayment(ctx, tx, id, pay)
	})
	if err != nil {
		if e, ok := apierror.As(err); ok {
			if e.Kind == apierror.KindConflict {
				metrics.PaymentResult("conflict")
			} else {
				metrics.PaymentResult("rejected")
			}
			return nil, err
		}
		metrics.PaymentResult("error")
		return nil, fmt.Errorf("confirm payment: %w", err)
	}

	metrics.PaymentResult("ok")
	log.Info().Str("invoice_id", id.String()).Str("method", method.Name).
		Str("amount", pay.amount.StringFixed(2)).Msg("invoice paid")

	s.enqueueReceipt(ctx, id)
	return s.Get(ctx, id)
}

// recordPayment locks the invoice row, flips it to paid through a
// status-guarded update and inserts the payment, all on tx.
func (s *invoiceService) recordPayment(ctx context.Context, tx *gorm.DB, id uuid.UUID, pay *pendingPayment) error {
	locked, err := s.repo.LockByID(ctx, tx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return errInvoiceNotFound
		}
		return fmt.Errorf("lock invoice: %w", err)
	}
	if !locked.IsPayable() {
		return errInvoiceAlreadyPaid
	}
	if pay.amount.LessThan(locked.Total) {
		return apierror.Field("amount", "amount is less than invoice total "+locked.Total.StringFixed(2))
	}

	ok, err := s.repo.MarkPaid(ctx, tx, id, pay.email)
	if err != nil {
		return fmt.Errorf("mark invoice paid: %w", err)
	}
	if !ok {
		return errInvoiceAlreadyPaid
	}

	change := pay.amount.Sub(locked.Total)
	if change.IsNegative() {
		change = decimal.Zero
	}
	payment := &model.Payment{
		ID:        uuid.New(),
		InvoiceID: id,
		MethodID:  pay.method.ID,
		Amount:    pay.amount,
		Change:    change,
	}
	if err := s.repo.CreatePayment(ctx, tx, payment); err != nil {
		if repository.IsDuplicateKey(err) {
			return errInvoiceAlreadyPaid
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (s *invoiceService) Get(ctx context.Context, id uuid.UUID) (*dto.InvoiceResponse, error) {
	inv, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toInvoiceResponse(inv)
	return &resp, nil
}

func (s *invoiceService) Find(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errInvoiceNotFound
		}
		return nil, fmt.Errorf("find invoice: %w", err)
	}
	return inv, nil
}

func (s *invoiceService) List(ctx context.Context, filter dto.InvoiceFilter) ([]dto.InvoiceResponse, error) {
	invoices, err := s.repo.List(ctx, repository.InvoiceQuery{Status: filter.Status})
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	resp := make([]dto.InvoiceResponse, len(invoices))
	for i := range invoices {
		resp[i] = toInvoiceResponse(&invoices[i])
	}
	return resp, nil
}

func (s *invoiceService) WriteReceipt(ctx context.Context, id uuid.UUID, w io.Writer) error {
	inv, err := s.Find(ctx, id)
	if err != nil {
		return err
	}
	store, err := s.settings.Current(ctx)
	if err != nil {
		return err
	}
	return infra.WriteReceiptPDF(w, inv, store)
}

// priceItems resolves every line against the catalog. Client price and total
// are hints; a mismatch is a validation error, never an override.
func (s *invoiceService) priceItems(ctx context.Context, reqItems []dto.InvoiceItemRequest) ([]model.InvoiceItem, error) {
	if len(reqItems) == 0 {
		return nil, apierror.Field("items", "at least one item is required")
	}

	var fields []apierror.FieldMessage
	fail := func(i int, name, msg string) {
		fields = append(fields, apierror.FieldMessage{Field: fmt.Sprintf("items[%d].%s", i, name), Message: msg})
	}

	ids := make([]uuid.UUID, len(reqItems))
	for i, it := range reqItems {
		ref := it.ProductRef()
		if ref == "" {
			fail(i, "productId", "product reference is required")
			continue
		}
		pid, err := uuid.Parse(ref)
		if err != nil {
			fail(i, "productId", "product reference must be a valid id")
			continue
		}
		ids[i] = pid
		if it.Quantity < 1 {
			fail(i, "quantity", "quantity must be at least 1")
		}
	}
	if len(fields) > 0 {
		return nil, apierror.Validation("invalid invoice items", fields...)
	}

	found, err := s.products.FindByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	byID := make(map[uuid.UUID]*model.Product, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}

	items := make([]model.InvoiceItem, 0, len(reqItems))
	for i, it := range reqItems {
		p, ok := byID[ids[i]]
		if !ok {
			fail(i, "productId", "product not found")
			continue
		}
		if !p.Active {
			fail(i, "productId", "product "+p.Name+" is inactive")
			continue
		}

		price := p.Price.Round(2)
		lineTotal := price.Mul(decimal.NewFromInt(int64(it.Quantity))).Round(2)
		if it.Price != nil && !it.Price.Round(2).Equal(price) {
			fail(i, "price", "price does not match catalog price "+price.StringFixed(2))
		}
		if it.Total != nil && !it.Total.Round(2).Equal(lineTotal) {
			fail(i, "total", "total must equal quantity * price ("+lineTotal.StringFixed(2)+")")
		}
		if lineTotal.GreaterThan(maxAmount) {
			fail(i, "quantity", "line total exceeds "+maxAmount.StringFixed(2))
			continue
		}

		items = append(items, model.InvoiceItem{
			ProductID: p.ID,
			Quantity:  it.Quantity,
			Price:     price,
			Total:     lineTotal,
		})
	}
	if len(fields) > 0 {
		return nil, apierror.Validation("invalid invoice items", fields...)
	}
	return items, nil
}

// taxRate returns the active percentage. A settings failure means no tax.
func (s *invoiceService) taxRate(ctx context.Context) decimal.Decimal {
	st, err := s.settings.Current(ctx)
	if err != nil {
		log.Error().Err(err).Msg("settings unavailable, invoice taxed at 0")
		return decimal.Zero
	}
	return st.EffectiveTaxRate()
}

func (s *invoiceService) resolveCashier(ctx context.Context, actor Identity, raw *string) (uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return actor.UserID, nil
	}
	cid, err := uuid.Parse(*raw)
	if err != nil {
		return uuid.Nil, apierror.Field("cashierId", "cashierId must be a valid id")
	}
	if cid == actor.UserID {
		return cid, nil
	}
	if d := rbac.Authorize(actor.Role, rbac.MinRole(rbac.RoleAdmin)); !d.Allowed {
		return uuid.Nil, apierror.Forbidden("only an Admin may record invoices for another cashier")
	}

	u, err := s.users.FindByID(ctx, cid)
	if err != nil {
		if repository.IsNotFound(err) {
			return uuid.Nil, apierror.Field("cashierId", "cashier not found")
		}
		return uuid.Nil, fmt.Errorf("find cashier: %w", err)
	}
	if !u.Active {
		return uuid.Nil, apierror.Field("cashierId", "cashier is inactive")
	}
	return u.ID, nil
}

func (s *invoiceService) resolveMethod(ctx context.Context, raw, field string) (*model.PaymentMethod, error) {
	mid, err := uuid.Parse(raw)
	if err != nil {
		return nil, apierror.Field(field, "payment method must be a valid id")
	}
	m, err := s.methods.FindByID(ctx, mid)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.Field(field, "payment method not found")
		}
		return nil, fmt.Errorf("find payment method: %w", err)
	}
	if !m.Active {
		return nil, apierror.Field(field, "payment method is inactive")
	}
	return m, nil
}

func (s *invoiceService) enqueueReceipt(ctx context.Context, id uuid.UUID) {
	if s.receipts == nil {
		return
	}
	if err := s.receipts.EnqueueReceipt(ctx, id); err != nil {
		log.Warn().Err(err).Str("invoice_id", id.String()).Msg("receipt job not enqueued")
	}
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func toInvoiceResponse(inv *model.Invoice) dto.InvoiceResponse {
	resp := dto.InvoiceResponse{
		ID:            inv.ID.String(),
		InvoiceNumber: inv.InvoiceNumber,
		CashierID:     inv.CashierID.String(),
		Subtotal:      inv.Subtotal,
		Discount:      inv.Discount,
		Tax:           inv.Tax,
		Total:         inv.Total,
		Status:        inv.Status,
		CustomerEmail: inv.CustomerEmail,
		Items:         make([]dto.InvoiceItemResponse, len(inv.Items)),
		Payments:      make([]dto.PaymentResponse, len(inv.Payments)),
		CreatedAt:     inv.CreatedAt,
	}
	if inv.Cashier != nil {
		resp.Cashier = &dto.CashierSummary{
			ID:       inv.Cashier.ID.String(),
			Username: inv.Cashier.Username,
			Name:     inv.Cashier.Name,
		}
	}
	for i, it := range inv.Items {
		item := dto.InvoiceItemResponse{
			ID:        it.ID.String(),
			ProductID: it.ProductID.String(),
			Quantity:  it.Quantity,
			Price:     it.Price,
			Total:     it.Total,
		}
		if it.Product != nil {
			item.Product = &dto.ProductSummary{ID: it.Product.ID.String(), Name: it.Product.Name}
		}
		resp.Items[i] = item
	}
	for i, p := range inv.Payments {
		pr := dto.PaymentResponse{
			ID:        p.ID.String(),
			MethodID:  p.MethodID.String(),
			Amount:    p.Amount,
			Change:    p.Change,
			CreatedAt: p.CreatedAt,
		}
		if p.Method != nil {
			m := toPaymentMethodResponse(p.Method)
			pr.Method = &m
		}
		resp.Payments[i] = pr
	}
	return resp
}
