package service

import (
	"context"
	"sync"
	"testing"

	"github.com/raw-dani/pos-only/internal/apierror"
	"github.com/raw-dani/pos-only/internal/dto"
	"github.com/raw-dani/pos-only/internal/model"
	"github.com/raw-dani/pos-only/internal/rbac"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type invoiceFixture struct {
	svc      InvoiceService
	invoices *stubInvoiceRepo
	products *stubProductRepo
	users    *stubUserRepo
	methods  *stubMethodRepo
	settings *stubSettingRepo
	queue    *stubReceiptQueue

	cashier Identity
	admin   Identity
	cash    *model.PaymentMethod
}

func newInvoiceFixture(t *testing.T) *invoiceFixture {
	t.Helper()
	f := &invoiceFixture{
		products: newStubProductRepo(),
		users:    newStubUserRepo(),
		methods:  newStubMethodRepo(),
		settings: &stubSettingRepo{},
		queue:    &stubReceiptQueue{},
	}
	f.invoices = newStubInvoiceRepo(f.users)

	c := f.users.add("kasir1", "Kasir Satu", rbac.RoleCashier, true, "")
	a := f.users.add("admin", "Administrator", rbac.RoleAdmin, true, "")
	f.cashier = Identity{UserID: c.ID, Username: c.Username, Name: c.Name, Role: rbac.RoleCashier}
	f.admin = Identity{UserID: a.ID, Username: a.Username, Name: a.Name, Role: rbac.RoleAdmin}
	f.cash = f.methods.add("Cash", model.PaymentCash, true)

	settings := NewSettingService(f.settings, nil)
	f.svc = NewInvoiceService(f.invoices, f.products, f.users, f.methods, settings, &seqNumberer{}, f.queue)
	return f
}

func (f *invoiceFixture) enableTax(rate int64) {
	st := model.DefaultSetting()
	st.ID = uuid.New()
	st.TaxEnabled = true
	st.TaxRate = decimal.NewFromInt(rate)
	f.settings.row = &st
}

func item(p *model.Product, qty int) dto.InvoiceItemRequest {
	id := p.ID.String()
	return dto.InvoiceItemRequest{ProductID: &id, Quantity: qty}
}

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func str(s string) *string { return &s }

func requireKind(t *testing.T, err error, kind apierror.Kind) *apierror.Error {
	t.Helper()
	require.Error(t, err)
	e, ok := apierror.As(err)
	require.True(t, ok, "expected *apierror.Error, got %T: %v", err, err)
	require.Equal(t, kind, e.Kind, e.Message)
	return e
}

// Two lines at 25000 x2 and 5000 x1 without tax come to 55000 and stay draft.
func TestCreate_CashierTwoItemsNoTax(t *testing.T) {
	f := newInvoiceFixture(t)
	a := f.products.add("Nasi Goreng", 25000, true)
	b := f.products.add("Es Teh", 5000, true)

	inv, err := f.svc.Create(context.Background(), f.cashier, dto.CreateInvoiceRequest{
		Items: []dto.InvoiceItemRequest{item(a, 2), item(b, 1)},
	})
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(55000).Equal(inv.Subtotal))
	assert.True(t, inv.Tax.IsZero())
	assert.True(t, decimal.NewFromInt(55000).Equal(inv.Total))
	assert.Equal(t, model.InvoiceDraft, inv.Status)
	assert.Equal(t, f.cashier.UserID.String(), inv.CashierID)
	require.Len(t, inv.Items, 2)
	assert.Empty(t, f.queue.ids, "draft invoices do not produce receipts")
}

func TestConfirmPayment_ComputesChangeAndMarksPaid(t *testing.T) {
	f := newInvoiceFixture(t)
	a := f.products.add("Nasi Goreng", 25000, true)
	b := f.products.add("Es Teh", 5000, true)
	ctx := context.Background()

	inv, err := f.svc.Create(ctx, f.cashier, dto.CreateInvoiceRequest{
		Items: []dto.InvoiceItemRequest{item(a, 2), item(b, 1)},
	})
	require.NoError(t, err)
	id := uuid.MustParse(inv.ID)

	paid, err := f.svc.ConfirmPayment(ctx, id, dto.PayInvoiceRequest{
		PaymentMethodID: f.cash.ID.String(),
		Amount:          dec(60000),
	})
	require.NoError(t, err)
	assert.Equal(t, model.InvoicePaid, paid.Status)
	require.Len(t, paid.Payments, 1)
	assert.True(t, decimal.NewFromInt(5000).Equal(paid.Payments[0].Change))
	assert.Equal(t, []uuid.UUID{id}, f.queue.ids)
}

func TestCreate_TaxApplied(t *testing.T) {
	f := newInvoiceFixture(t)
	f.enableTax(10)
	p := f.products.add("Paket", 100000, true)

	inv, err := f.svc.Create(context.Background(), f.cashier, dto.CreateInvoiceRequest{
		Items: []dto.InvoiceItemRequest{item(p, 1)},
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(10000).Equal(inv.Tax))
	assert.True(t, decimal.NewFromInt(110000).Equal(inv.Total))
}

func TestCreate_TaxRateIgnoredWhenDisabled(t *testing.T) {
	f := newInvoiceFixture(t)
	f.enableTax(10)
	f.settings.row.TaxEnabled = false
	p := f.products.add("Paket", 100000, true)

	inv, err := f.svc.Create(context.Background(), f.cashier, dto.CreateInvoiceRequest{
		Items: []dto.InvoiceItemRequest{item(p, 1)},
	})
	require.NoError(t, err)
	assert.True(t, inv.Tax.IsZero())
}

func TestCreate_SettingsFailureMeansNoTax(t *testing.T) {
	f := newInvoiceFixture(t)
	f.settings.getErr = errStorage
	p := f.products.add("Paket", 100000, true)

	inv, err := f.svc.Create(context.Background(), f.cashier, dto.CreateInvoiceRequest{
		Items: []dto.InvoiceItemRequest{item(p, 1)},
	})
	require.NoError(t, err)
	assert.True(t, inv.Tax.IsZero())
	assert.True(t, decimal.NewFromInt(100000).Equal(inv.Total))
}

func TestCreate_TaxRoundsToTwoPlaces(t *testing.T) {
	f := newInvoiceFixture(t)
	st := model.DefaultSetting()
	st.ID = uuid.New()
	st.TaxEnabled = true
	st.TaxRate = decimal.RequireFromString("11")
	f.settings.row = &st
	p := f.products.add("Permen", 0, true)
	p.Price = decimal.RequireFromString("3.33")

	inv, err := f.svc.Create(context.Background(), f.cashier, dto.CreateInvoiceRequest{
		Items: []dto.InvoiceItemRequest{item(p, 1)},
	})
	require.NoError(t, err)
	assert.Equal(t, "0.37", inv.Tax.StringFixed(2))
	assert.True(t, inv.Total.Equal(inv.Subtotal.Sub(inv.Discount).Add(inv.Tax)))
}

func TestCreate_DiscountBounds(t *testing.T) {
	f := newInvoiceFixture(t)
	p := f.products.add("Kopi", 20000, true)
	ctx := context.Background()

	inv, err := f.svc.Create(ctx, f.cashier, dto.CreateInvoiceRequest{
		Items:    []dto.InvoiceItemRequest{item(p, 1)},
		Discount: dec(20000),
	})
	require.NoError(t, err)
	assert.True(t, inv.Total.IsZero())

	_, err = f.svc.Create(ctx, f.cashier, dto.CreateInvoiceRequest{
		Items:    []dto.InvoiceItemRequest{item(p, 1)},
		Discount: dec(20001),
	})
	e := requireKind(t, err, apierror.KindValidation)
	assert.Equal(t, "discount", e.Fields[0].Field)

	_, err = f.svc.Create(ctx, f.cashier, dto.CreateInvoiceRequest{
		Items:    []dto.InvoiceItemRequest{item(p, 1)},
		Discount: dec(-1),
	})
	requireKind(t, err, apierror.KindValidation)
}

func TestCreate_AcceptsLegacyProductKey(t *testing.T) {
	f := newInvoiceFixture(t)
	p := f.products.add("Roti", 8000, true)
	ref := p.ID.String()

	inv, err := f.svc.Create(context.Background(), f.cashier, dto.CreateInvoiceRequest{
		Items: []dto.InvoiceItemRequest{{Product: &ref, Quantity: 3}},
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(24000).Equal(inv.Total))
}

func TestCreate_RejectsBadItems(t *testing.T) {
	f := newInvoiceFixture(t)
	inactive := f.products.add("Lama", 1000, false)
	active := f.products.add("Baru", 1000, true)
	missing := uuid.New().String()
	ctx := context.Background()

	cases := []struct {
		name  string
		items []dto.InvoiceItemRequest
		field string
	}{
		{"empty cart", nil, "items"},
		{"no product reference", []dto.InvoiceItemRequest{{Quantity: 1}}, "items[0].productId"},
		{"unknown product", []dto.InvoiceItemRequest{{ProductID: &missing, Quantity: 1}}, "items[0].productId"},
		{"inactive product", []dto.InvoiceItemRequest{item(active, 1), item(inactive, 1)}, "items[1].productId"},
		{"zero quantity", []dto.InvoiceItemRequest{item(active, 0)}, "items[0].quantity"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, f.cashier, dto.CreateInvoiceRequest{Items: tc.items})
			e := requireKind(t, err, apierror.KindValidation)
			require.NotEmpty(t, e.Fields)
			assert.Equal(t, tc.field, e.Fields[0].Field)
		})
	}
	assert.Zero(t, f.invoices.createN, "validation happens before any write")
}

func TestCreate_ClientPriceAndTotalAreHintsOnly(t *testing.T) {
	f := newInvoiceFixture(t)
	p := f.products.add("Kopi", 20000, true)
	ctx := context.Background()

	ok := item(p, 2)
	ok.Price = dec(20000)
	ok.Total = dec(40000)
	inv, err := f.svc.Create(ctx, f.cashier, dto.CreateInvoiceRequest{Items: []dto.InvoiceItemRequest{ok}})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(40000).Equal(inv.Total))

	bad := item(p, 2)
	bad.Price = dec(1)
	bad.Total = dec(2)
	_, err = f.svc.Create(ctx, f.cashier, dto.CreateInvoiceRequest{Items: []dto.InvoiceItemRequest{bad}})
	e := requireKind(t, err, apierror.KindValidation)
	require.Len(t, e.Fields, 2)
	assert.Equal(t, "items[0].price", e.Fields[0].Field)
	assert.Equal(t, "items[0].total", e.Fields[1].Field)
}

func TestCreate_PriceSnapshotIgnoresLaterCatalogChanges(t *testing.T) {
	f := newInvoiceFixture(t)
	p := f.products.add("Kopi", 20000, true)
	ctx := context.Background()

	inv, err := f.svc.Create(ctx, f.cashier, dto.CreateInvoiceRequest{Items: []dto.InvoiceItemRequest{item(p, 1)}})
	require.NoError(t, err)

	f.products.products[p.ID].Price = decimal.NewFromInt(99999)
	again, err := f.svc.Get(ctx, uuid.MustParse(inv.ID))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(20000).Equal(again.Items[0].Price))
}

func TestCreate_CashierOverrideRequiresAdmin(t *testing.T) {
	f := newInvoiceFixture(t)
	p := f.products.add("Kopi", 20000, true)
	other := f.users.add("kasir2", "Kasir Dua", rbac.RoleCashier, true, "")
	gone := f.users.add("kasir3", "Kasir Tiga", rbac.RoleCashier, false, "")
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.cashier, dto.CreateInvoiceRequest{
		Items:     []dto.InvoiceItemRequest{item(p, 1)},
		CashierID: str(other.ID.String()),
	})
	requireKind(t, err, apierror.KindForbidden)

	inv, err := f.svc.Create(ctx, f.admin, dto.CreateInvoiceRequest{
		Items:     []dto.InvoiceItemRequest{item(p, 1)},
		CashierID: str(other.ID.String()),
	})
	require.NoError(t, err)
	assert.Equal(t, other.ID.String(), inv.CashierID)

	_, err = f.svc.Create(ctx, f.admin, dto.CreateInvoiceRequest{
		Items:     []dto.InvoiceItemRequest{item(p, 1)},
		CashierID: str(gone.ID.String()),
	})
	requireKind(t, err, apierror.KindValidation)

	// naming yourself is always allowed
	inv, err = f.svc.Create(ctx, f.cashier, dto.CreateInvoiceRequest{
		Items:     []dto.InvoiceItemRequest{item(p, 1)},
		CashierID: str(f.cashier.UserID.String()),
	})
	require.NoError(t, err)
	assert.Equal(t, f.cashier.UserID.String(), inv.CashierID)
}

func TestCreate_WithEmbeddedPayment(t *testing.T) {
	f := newInvoiceFixture(t)
	p := f.products.add("Kopi", 20000, true)

	inv, err := f.svc.Create(context.Background(), f.cashier, dto.CreateInvoiceRequest{
		Items:           []dto.InvoiceItemRequest{item(p, 2)},
		PaymentMethodID: str(f.cash.ID.String()),
		PaymentAmount:   dec(50000),
	})
	require.NoError(t, err)
	assert.Equal(t, model.InvoicePaid, inv.Status)
	require.Len(t, inv.Payments, 1)
	assert.True(t, decimal.NewFromInt(10000).Equal(inv.Payments[0].Change))
	assert.Len(t, f.queue.ids, 1)
}

func TestCreate_EmbeddedPaymentValidatedBeforeWrite(t *testing.T) {
	f := newInvoiceFixture(t)
	p := f.products.add("Kopi", 20000, true)
	off := f.methods.add("Old QRIS", model.PaymentQRIS, false)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.cashier, dto.CreateInvoiceRequest{
		Items:           []dto.InvoiceItemRequest{item(p, 1)},
		PaymentMethodID: str(f.cash.ID.String()),
		PaymentAmount:   dec(19999),
	})
	requireKind(t, err, apierror.KindValidation)

	_, err = f.svc.Create(ctx, f.cashier, dto.CreateInvoiceRequest{
		Items:           []dto.InvoiceItemRequest{item(p, 1)},
		PaymentMethodID: str(off.ID.String()),
		PaymentAmount:   dec(20000),
	})
	requireKind(t, err, apierror.KindValidation)

	_, err = f.svc.Create(ctx, f.cashier, dto.CreateInvoiceRequest{
		Items:         []dto.InvoiceItemRequest{item(p, 1)},
		PaymentAmount: dec(20000),
	})
	requireKind(t, err, apierror.KindValidation)

	assert.Zero(t, f.invoices.createN)
}

func TestCreate_RetriesInvoiceNumberCollision(t *testing.T) {
	f := newInvoiceFixture(t)
	p := f.products.add("Kopi", 20000, true)
	f.invoices.dupFaults = 2

	inv, err := f.svc.Create(context.Background(), f.cashier, dto.CreateInvoiceRequest{
		Items: []dto.InvoiceItemRequest{item(p, 1)},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, f.invoices.createN)
	assert.Equal(t, "INV-TEST-0003", inv.InvoiceNumber)
}

func TestCreate_GivesUpAfterThreeCollisions(t *testing.T) {
	f := newInvoiceFixture(t)
	p := f.products.add("Kopi", 20000, true)
	f.invoices.dupFaults = 3

	_, err := f.svc.Create(context.Background(), f.cashier, dto.CreateInvoiceRequest{
		Items: []dto.InvoiceItemRequest{item(p, 1)},
	})
	require.Error(t, err)
	_, typed := apierror.As(err)
	assert.False(t, typed, "exhausted retries surface as an internal error")
	assert.Equal(t, 3, f.invoices.createN)
}

func TestConfirmPayment_Errors(t *testing.T) {
	f := newInvoiceFixture(t)
	p := f.products.add("Kopi", 20000, true)
	off := f.methods.add("Old QRIS", model.PaymentQRIS, false)
	ctx := context.Background()

	inv, err := f.svc.Create(ctx, f.cashier, dto.CreateInvoiceRequest{Items: []dto.InvoiceItemRequest{item(p, 1)}})
	require.NoError(t, err)
	id := uuid.MustParse(inv.ID)

	_, err = f.svc.ConfirmPayment(ctx, uuid.New(), dto.PayInvoiceRequest{PaymentMethodID: f.cash.ID.String(), Amount: dec(20000)})
	requireKind(t, err, apierror.KindNotFound)

	_, err = f.svc.ConfirmPayment(ctx, id, dto.PayInvoiceRequest{PaymentMethodID: uuid.NewString(), Amount: dec(20000)})
	requireKind(t, err, apierror.KindValidation)

	_, err = f.svc.ConfirmPayment(ctx, id, dto.PayInvoiceRequest{PaymentMethodID: off.ID.String(), Amount: dec(20000)})
	requireKind(t, err, apierror.KindValidation)

	_, err = f.svc.ConfirmPayment(ctx, id, dto.PayInvoiceRequest{PaymentMethodID: f.cash.ID.String(), Amount: dec(19999)})
	requireKind(t, err, apierror.KindValidation)

	assert.Zero(t, f.invoices.paymentCount(id))
}

// Exact tender gives zero change; a second payment on a paid invoice is a conflict.
func TestConfirmPayment_SecondAttemptConflicts(t *testing.T) {
	f := newInvoiceFixture(t)
	p := f.products.add("Kopi", 20000, true)
	ctx := context.Background()

	inv, err := f.svc.Create(ctx, f.cashier, dto.CreateInvoiceRequest{Items: []dto.InvoiceItemRequest{item(p, 1)}})
	require.NoError(t, err)
	id := uuid.MustParse(inv.ID)
	req := dto.PayInvoiceRequest{PaymentMethodID: f.cash.ID.String(), Amount: dec(20000), CustomerEmail: str("buyer@example.com")}

	paid, err := f.svc.ConfirmPayment(ctx, id, req)
	require.NoError(t, err)
	assert.True(t, paid.Payments[0].Change.IsZero())
	require.NotNil(t, paid.CustomerEmail)
	assert.Equal(t, "buyer@example.com", *paid.CustomerEmail)

	_, err = f.svc.ConfirmPayment(ctx, id, req)
	e := requireKind(t, err, apierror.KindConflict)
	assert.Equal(t, "invoice already paid", e.Message)
	assert.Equal(t, 1, f.invoices.paymentCount(id))

	// Paid wins over bad tender or a retired method.
	off := f.methods.add("Old QRIS", model.PaymentQRIS, false)
	for _, retry := range []dto.PayInvoiceRequest{
		{PaymentMethodID: f.cash.ID.String(), Amount: dec(1)},
		{PaymentMethodID: off.ID.String(), Amount: dec(20000)},
	} {
		_, err = f.svc.ConfirmPayment(ctx, id, retry)
		requireKind(t, err, apierror.KindConflict)
	}
	assert.Equal(t, 1, f.invoices.paymentCount(id))

	again, err := f.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.InvoicePaid, again.Status)
}

func TestConfirmPayment_UnpaidIsPayable(t *testing.T) {
	f := newInvoiceFixture(t)
	p := f.products.add("Kopi", 20000, true)
	ctx := context.Background()

	inv, err := f.svc.Create(ctx, f.cashier, dto.CreateInvoiceRequest{Items: []dto.InvoiceItemRequest{item(p, 1)}})
	require.NoError(t, err)
	id := uuid.MustParse(inv.ID)
	f.invoices.invoices[id].Status = model.InvoiceUnpaid

	paid, err := f.svc.ConfirmPayment(ctx, id, dto.PayInvoiceRequest{PaymentMethodID: f.cash.ID.String(), Amount: dec(20000)})
	require.NoError(t, err)
	assert.Equal(t, model.InvoicePaid, paid.Status)
}

// Two concurrent confirmations: exactly one wins, one payment row exists.
func TestConfirmPayment_ConcurrentCallsPayOnce(t *testing.T) {
	f := newInvoiceFixture(t)
	p := f.products.add("Kopi", 20000, true)
	ctx := context.Background()

	inv, err := f.svc.Create(ctx, f.cashier, dto.CreateInvoiceRequest{Items: []dto.InvoiceItemRequest{item(p, 1)}})
	require.NoError(t, err)
	id := uuid.MustParse(inv.ID)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.svc.ConfirmPayment(ctx, id, dto.PayInvoiceRequest{
				PaymentMethodID: f.cash.ID.String(),
				Amount:          dec(50000),
			})
		}(i)
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, apierror.IsKind(err, apierror.KindConflict), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, f.invoices.paymentCount(id))
}

func TestList_FiltersByStatus(t *testing.T) {
	f := newInvoiceFixture(t)
	p := f.products.add("Kopi", 20000, true)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.cashier, dto.CreateInvoiceRequest{Items: []dto.InvoiceItemRequest{item(p, 1)}})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.cashier, dto.CreateInvoiceRequest{
		Items:           []dto.InvoiceItemRequest{item(p, 1)},
		PaymentMethodID: str(f.cash.ID.String()),
		PaymentAmount:   dec(20000),
	})
	require.NoError(t, err)

	all, err := f.svc.List(ctx, dto.InvoiceFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	drafts, err := f.svc.List(ctx, dto.InvoiceFilter{Status: model.InvoiceDraft})
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, model.InvoiceDraft, drafts[0].Status)
}

func TestReceiptEnqueueFailureDoesNotFailPayment(t *testing.T) {
	f := newInvoiceFixture(t)
	f.queue.err = errStorage
	p := f.products.add("Kopi", 20000, true)

	inv, err := f.svc.Create(context.Background(), f.cashier, dto.CreateInvoiceRequest{
		Items:           []dto.InvoiceItemRequest{item(p, 1)},
		PaymentMethodID: str(f.cash.ID.String()),
		PaymentAmount:   dec(20000),
	})
	require.NoError(t, err)
	assert.Equal(t, model.InvoicePaid, inv.Status)
}

// Amounts past the decimal(12,2) columns are rejected before any write.
func TestCreate_RejectsAmountsBeyondColumnRange(t *testing.T) {
	f := newInvoiceFixture(t)
	big := f.products.add("Genset", 6_000_000_000, true)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.cashier, dto.CreateInvoiceRequest{Items: []dto.InvoiceItemRequest{item(big, 2)}})
	e := requireKind(t, err, apierror.KindValidation)
	require.NotEmpty(t, e.Fields)
	assert.Equal(t, "items[0].quantity", e.Fields[0].Field)

	other := f.products.add("Turbin", 6_000_000_000, true)
	_, err = f.svc.Create(ctx, f.cashier, dto.CreateInvoiceRequest{Items: []dto.InvoiceItemRequest{item(big, 1), item(other, 1)}})
	e = requireKind(t, err, apierror.KindValidation)
	assert.Equal(t, "items", e.Fields[0].Field)

	p := f.products.add("Kopi", 20000, true)
	inv, err := f.svc.Create(ctx, f.cashier, dto.CreateInvoiceRequest{Items: []dto.InvoiceItemRequest{item(p, 1)}})
	require.NoError(t, err)
	huge := decimal.RequireFromString("10000000000")
	_, err = f.svc.ConfirmPayment(ctx, uuid.MustParse(inv.ID), dto.PayInvoiceRequest{PaymentMethodID: f.cash.ID.String(), Amount: &huge})
	e = requireKind(t, err, apierror.KindValidation)
	assert.Equal(t, "amount", e.Fields[0].Field)
	assert.Zero(t, f.invoices.paymentCount(uuid.MustParse(inv.ID)))
}
