package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/raw-dani/pos-only/internal/model"
	"github.com/raw-dani/pos-only/internal/rbac"
	"github.com/raw-dani/pos-only/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Invoices ──────────────────────────────────────────────────────────────────

// stubInvoiceRepo is an in-memory InvoiceRepository. The mutex stands in for
// the row lock so concurrent payment tests behave like the database.
type stubInvoiceRepo struct {
	mu        sync.Mutex
	invoices  map[uuid.UUID]*model.Invoice
	payments  []model.Payment
	numbers   map[string]bool
	dupFaults int // Create fails with a duplicate key this many times
	createN   int
	users     *stubUserRepo
}

func newStubInvoiceRepo(users *stubUserRepo) *stubInvoiceRepo {
	return &stubInvoiceRepo{
		invoices: make(map[uuid.UUID]*model.Invoice),
		numbers:  make(map[string]bool),
		users:    users,
	}
}

func (r *stubInvoiceRepo) DB() *gorm.DB { return nil }

func (r *stubInvoiceRepo) Create(_ context.Context, _ *gorm.DB, inv *model.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createN++
	if r.dupFaults > 0 {
		r.dupFaults--
		return fmt.Errorf("insert invoice: %w", gorm.ErrDuplicatedKey)
	}
	if r.numbers[inv.InvoiceNumber] {
		return gorm.ErrDuplicatedKey
	}
	r.numbers[inv.InvoiceNumber] = true
	stored := *inv
	if r.users != nil {
		if u, ok := r.users.byID[inv.CashierID]; ok {
			stored.Cashier = u
		}
	}
	r.invoices[inv.ID] = &stored
	return nil
}

func (r *stubInvoiceRepo) snapshot(id uuid.UUID) (*model.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *inv
	out.Payments = nil
	for _, p := range r.payments {
		if p.InvoiceID == id {
			out.Payments = append(out.Payments, p)
		}
	}
	return &out, nil
}

func (r *stubInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot(id)
}

func (r *stubInvoiceRepo) LockByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*model.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot(id)
}

func (r *stubInvoiceRepo) MarkPaid(_ context.Context, _ *gorm.DB, id uuid.UUID, email *string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok || !inv.IsPayable() {
		return false, nil
	}
	inv.Status = model.InvoicePaid
	if email != nil {
		inv.CustomerEmail = email
	}
	return true, nil
}

func (r *stubInvoiceRepo) CreatePayment(_ context.Context, _ *gorm.DB, p *model.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.payments {
		if existing.InvoiceID == p.InvoiceID {
			return gorm.ErrDuplicatedKey
		}
	}
	r.payments = append(r.payments, *p)
	return nil
}

func (r *stubInvoiceRepo) List(_ context.Context, q repository.InvoiceQuery) ([]model.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Invoice
	for id, inv := range r.invoices {
		if q.From != nil && inv.CreatedAt.Before(*q.From) {
			continue
		}
		if q.To != nil && inv.CreatedAt.After(*q.To) {
			continue
		}
		if q.CashierID != nil && inv.CashierID != *q.CashierID {
			continue
		}
		if q.Status != "" && inv.Status != q.Status {
			continue
		}
		snap, _ := r.snapshot(id)
		out = append(out, *snap)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if q.Oldest {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
		if q.Oldest {
			return a.ID.String() < b.ID.String()
		}
		return a.ID.String() > b.ID.String()
	})
	return out, nil
}

func (r *stubInvoiceRepo) paymentCount(id uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.payments {
		if p.InvoiceID == id {
			n++
		}
	}
	return n
}

var _ repository.InvoiceRepository = (*stubInvoiceRepo)(nil)

// ── Products / categories ─────────────────────────────────────────────────────

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) add(name string, price int64, active bool) *model.Product {
	p := &model.Product{ID: uuid.New(), Name: name, Price: decimal.NewFromInt(price), Active: active}
	r.products[p.ID] = p
	return p
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Product, error) {
	var out []model.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) List(_ context.Context, q repository.ProductQuery) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if !q.IncludeInactive && !p.Active {
			continue
		}
		if q.CategoryID != nil && p.CategoryID != *q.CategoryID {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.Search)) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *stubProductRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Active = active
	return nil
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

type stubCategoryRepo struct {
	cats     map[uuid.UUID]*model.Category
	products  *stubProductRepo
	deleted   []uuid.UUID
	deleteErr error
}

func newStubCategoryRepo(products *stubProductRepo) *stubCategoryRepo {
	return &stubCategoryRepo{cats: make(map[uuid.UUID]*model.Category), products: products}
}

func (r *stubCategoryRepo) Create(_ context.Context, c *model.Category) error {
	for _, existing := range r.cats {
		if strings.EqualFold(existing.Name, c.Name) {
			return gorm.ErrDuplicatedKey
		}
	}
	cp := *c
	r.cats[c.ID] = &cp
	return nil
}

func (r *stubCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Category, error) {
	c, ok := r.cats[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubCategoryRepo) FindByName(_ context.Context, name string) (*model.Category, error) {
	for _, c := range r.cats {
		if strings.EqualFold(c.Name, name) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCategoryRepo) List(_ context.Context) ([]model.Category, error) {
	var out []model.Category
	for _, c := range r.cats {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubCategoryRepo) Update(_ context.Context, c *model.Category) error {
	cp := *c
	r.cats[c.ID] = &cp
	return nil
}

func (r *stubCategoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.cats[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.cats, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *stubCategoryRepo) CountProducts(_ context.Context, id uuid.UUID) (int64, error) {
	var n int64
	if r.products == nil {
		return 0, nil
	}
	for _, p := range r.products.products {
		if p.CategoryID == id {
			n++
		}
	}
	return n, nil
}

var _ repository.CategoryRepository = (*stubCategoryRepo)(nil)

// ── Users / roles ─────────────────────────────────────────────────────────────

type stubUserRepo struct {
	byID map[uuid.UUID]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) add(username, name string, role rbac.Role, active bool, hash string) *model.User {
	u := &model.User{
		ID:           uuid.New(),
		Username:     username,
		Name:         name,
		PasswordHash: hash,
		Active:       active,
		Role:         model.Role{ID: uuid.New(), Name: string(role)},
	}
	u.RoleID = u.Role.ID
	r.byID[u.ID] = u
	return u
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	for _, existing := range r.byID {
		if existing.Username == u.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

func (r *stubUserRepo) FindActiveByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := r.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !u.Active {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.byID {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubUserRepo) List(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range r.byID {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

func (r *stubUserRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	u, ok := r.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Active = active
	return nil
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	u, ok := r.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PasswordHash = hash
	return nil
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

type stubRoleRepo struct {
	roles map[string]*model.Role
}

func newStubRoleRepo(names ...rbac.Role) *stubRoleRepo {
	r := &stubRoleRepo{roles: make(map[string]*model.Role)}
	for _, n := range names {
		r.roles[string(n)] = &model.Role{ID: uuid.New(), Name: string(n)}
	}
	return r
}

func (r *stubRoleRepo) FindByName(_ context.Context, name string) (*model.Role, error) {
	role, ok := r.roles[name]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *role
	return &cp, nil
}

func (r *stubRoleRepo) List(_ context.Context) ([]model.Role, error) {
	var out []model.Role
	for _, role := range r.roles {
		out = append(out, *role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubRoleRepo) Ensure(ctx context.Context, name string) (*model.Role, error) {
	if role, err := r.FindByName(ctx, name); err == nil {
		return role, nil
	}
	role := &model.Role{ID: uuid.New(), Name: name}
	r.roles[name] = role
	return role, nil
}

var _ repository.RoleRepository = (*stubRoleRepo)(nil)

// ── Payment methods ───────────────────────────────────────────────────────────

type stubMethodRepo struct {
	methods map[uuid.UUID]*model.PaymentMethod
}

func newStubMethodRepo() *stubMethodRepo {
	return &stubMethodRepo{methods: make(map[uuid.UUID]*model.PaymentMethod)}
}

func (r *stubMethodRepo) add(name, typ string, active bool) *model.PaymentMethod {
	m := &model.PaymentMethod{ID: uuid.New(), Name: name, Type: typ, Active: active}
	r.methods[m.ID] = m
	return m
}

func (r *stubMethodRepo) Create(_ context.Context, m *model.PaymentMethod) error {
	for _, existing := range r.methods {
		if existing.Name == m.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	cp := *m
	r.methods[m.ID] = &cp
	return nil
}

func (r *stubMethodRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PaymentMethod, error) {
	m, ok := r.methods[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *stubMethodRepo) List(_ context.Context, activeOnly bool) ([]model.PaymentMethod, error) {
	var out []model.PaymentMethod
	for _, m := range r.methods {
		if activeOnly && !m.Active {
			continue
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubMethodRepo) Update(_ context.Context, m *model.PaymentMethod) error {
	cp := *m
	r.methods[m.ID] = &cp
	return nil
}

func (r *stubMethodRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	m, ok := r.methods[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	m.Active = active
	return nil
}

var _ repository.PaymentMethodRepository = (*stubMethodRepo)(nil)

// ── Settings ──────────────────────────────────────────────────────────────────

type stubSettingRepo struct {
	mu      sync.Mutex
	row     *model.Setting
	getErr  error
	creates int
	updates int

	// getHook runs after each Get has read the row, outside the lock.
	getHook func()
}

func (r *stubSettingRepo) Get(_ context.Context) (*model.Setting, error) {
	st, err := r.get()
	if r.getHook != nil {
		r.getHook()
	}
	return st, err
}

func (r *stubSettingRepo) get() (*model.Setting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	if r.row == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r.row
	return &cp, nil
}

// Create mirrors the singleton index: a second insert is silently dropped.
func (r *stubSettingRepo) Create(_ context.Context, s *model.Setting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.row != nil {
		return nil
	}
	r.creates++
	cp := *s
	r.row = &cp
	return nil
}

func (r *stubSettingRepo) Update(_ context.Context, s *model.Setting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
	cp := *s
	r.row = &cp
	return nil
}

var _ repository.SettingRepository = (*stubSettingRepo)(nil)

type stubSettingCache struct {
	row         *model.Setting
	getErr      error
	sets        int
	invalidated int
}

func (c *stubSettingCache) Get(_ context.Context) (*model.Setting, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	if c.row == nil {
		return nil, nil
	}
	cp := *c.row
	return &cp, nil
}

func (c *stubSettingCache) Set(_ context.Context, s *model.Setting) error {
	c.sets++
	cp := *s
	c.row = &cp
	return nil
}

func (c *stubSettingCache) Invalidate(_ context.Context) error {
	c.invalidated++
	c.row = nil
	return nil
}

var _ SettingCache = (*stubSettingCache)(nil)

// ── Invoice numbering / receipts ──────────────────────────────────────────────

type seqNumberer struct {
	mu sync.Mutex
	n  int
}

func (s *seqNumberer) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("INV-TEST-%04d", s.n)
}

type stubReceiptQueue struct {
	mu  sync.Mutex
	ids []uuid.UUID
	err error
}

func (q *stubReceiptQueue) EnqueueReceipt(_ context.Context, id uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.ids = append(q.ids, id)
	return nil
}

var errStorage = errors.New("storage unavailable")
