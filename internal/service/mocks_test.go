package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"mini-mart/internal/domain"
	"mini-mart/internal/initdata"
	"mini-mart/internal/payment"
	"mini-mart/internal/repository"
)

const testBotToken = "123456:test-token"

// Mock repositories for testing
type mockProductRepository struct {
	products map[string]*domain.Product
	err      error
}

func newMockProductRepository() *mockProductRepository {
	m := &mockProductRepository{products: make(map[string]*domain.Product)}
	for _, p := range repository.SeedProducts() {
		m.products[p.ID] = p
	}
	return m
}

func (m *mockProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

func (m *mockProductRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[string]*domain.Product)
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (m *mockProductRepository) List(ctx context.Context, category string) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, p := range m.products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (m *mockProductRepository) Categories(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, p := range m.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *mockProductRepository) Upsert(ctx context.Context, p *domain.Product) error {
	m.products[p.ID] = p
	return nil
}

func (m *mockProductRepository) BulkUpsert(ctx context.Context, products []*domain.Product) (int, error) {
	for _, p := range products {
		m.products[p.ID] = p
	}
	return len(products), nil
}

func (m *mockProductRepository) InsertIfAbsent(ctx context.Context, products []*domain.Product) (int, error) {
	n := 0
	for _, p := range products {
		if _, ok := m.products[p.ID]; !ok {
			m.products[p.ID] = p
			n++
		}
	}
	return n, nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) Count(ctx context.Context) (int, error) {
	return len(m.products), nil
}

func (m *mockProductRepository) LowStock(ctx context.Context, threshold, limit int) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range m.products {
		if p.Stock <= threshold {
			out = append(out, *p)
		}
	}
	return out, nil
}

type mockOrderRepository struct {
	mu        sync.Mutex
	orders    map[int64]*domain.Order
	nextID    int64
	createErr error
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{orders: make(map[int64]*domain.Order), nextID: 1}
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	order.ID = m.nextID
	m.nextID++
	order.CreatedAt = time.Now()
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	stored := *order
	stored.Items = append([]domain.OrderItem(nil), order.Items...)
	m.orders[order.ID] = &stored
	return nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrderRepository) ListByBuyer(ctx context.Context, buyerID int64, limit int) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Order
	for id := m.nextID - 1; id > 0 && len(out) < limit; id-- {
		if o, ok := m.orders[id]; ok && o.BuyerID != nil && *o.BuyerID == buyerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockOrderRepository) List(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Order
	for _, o := range m.orders {
		if filter.Status == "" || o.Status == filter.Status {
			out = append(out, o)
		}
	}
	return out, len(out), nil
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	if o.Status != from {
		return repository.ErrStatusConflict
	}
	o.Status = to
	return nil
}

func (m *mockOrderRepository) Stats(ctx context.Context) (int64, []domain.DailySales, error) {
	var revenue int64
	for _, o := range m.orders {
		if o.Status == domain.StatusPlaced || o.Status == domain.StatusPaid {
			revenue += o.Total
		}
	}
	return revenue, nil, nil
}

func (m *mockOrderRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

type mockProfileRepository struct {
	profiles map[int64]*domain.Profile
	mergeErr error
}

func newMockProfileRepository() *mockProfileRepository {
	return &mockProfileRepository{profiles: make(map[int64]*domain.Profile)}
}

func (m *mockProfileRepository) profile(id int64) *domain.Profile {
	p, ok := m.profiles[id]
	if !ok {
		p = &domain.Profile{BuyerID: id}
		m.profiles[id] = p
	}
	return p
}

func (m *mockProfileRepository) Get(ctx context.Context, id int64) (*domain.Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockProfileRepository) Touch(ctx context.Context, id int64, name, username string) error {
	p := m.profile(id)
	if p.Name == "" {
		p.Name = name
	}
	if username != "" {
		p.Username = username
	}
	return nil
}

func (m *mockProfileRepository) Merge(ctx context.Context, id int64, patch domain.ProfilePatch) error {
	if m.mergeErr != nil {
		return m.mergeErr
	}
	p := m.profile(id)
	if patch.Phone != "" {
		p.Phone = patch.Phone
	}
	if patch.Address != "" {
		p.Address = patch.Address
	}
	if patch.DeliverySlot != "" {
		p.DeliverySlot = patch.DeliverySlot
	}
	if patch.Geo != nil {
		g := *patch.Geo
		p.Geo = &g
	}
	return nil
}

func (m *mockProfileRepository) SetPhone(ctx context.Context, id int64, phone string) error {
	m.profile(id).Phone = phone
	return nil
}

func (m *mockProfileRepository) SetGeo(ctx context.Context, id int64, geo domain.Geo) error {
	m.profile(id).Geo = &geo
	return nil
}

func (m *mockProfileRepository) List(ctx context.Context, q string, page, pageSize int) ([]*domain.Profile, int, error) {
	var out []*domain.Profile
	for _, p := range m.profiles {
		out = append(out, p)
	}
	return out, len(out), nil
}

type mockAdminRepository struct {
	admins map[int64]*domain.Admin
	nextID int64
}

func newMockAdminRepository() *mockAdminRepository {
	return &mockAdminRepository{admins: make(map[int64]*domain.Admin), nextID: 1}
}

func (m *mockAdminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	for _, a := range m.admins {
		if a.Email == admin.Email {
			return repository.ErrAdminAlreadyExists
		}
	}
	admin.ID = m.nextID
	m.nextID++
	admin.CreatedAt = time.Now()
	cp := *admin
	m.admins[admin.ID] = &cp
	return nil
}

func (m *mockAdminRepository) FindByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	for _, a := range m.admins {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrAdminNotFound
}

func (m *mockAdminRepository) FindByID(ctx context.Context, id int64) (*domain.Admin, error) {
	a, ok := m.admins[id]
	if !ok {
		return nil, repository.ErrAdminNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockAdminRepository) List(ctx context.Context) ([]*domain.Admin, error) {
	var out []*domain.Admin
	for _, a := range m.admins {
		out = append(out, a)
	}
	return out, nil
}

func (m *mockAdminRepository) Update(ctx context.Context, admin *domain.Admin) error {
	if _, ok := m.admins[admin.ID]; !ok {
		return repository.ErrAdminNotFound
	}
	cp := *admin
	m.admins[admin.ID] = &cp
	return nil
}

func (m *mockAdminRepository) Disable(ctx context.Context, id int64) error {
	a, ok := m.admins[id]
	if !ok {
		return repository.ErrAdminNotFound
	}
	a.Active = false
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	orders []*domain.Order
}

func (r *recordingNotifier) OrderPlaced(order *domain.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, order)
}

type mockInvoices struct {
	requests []payment.InvoiceRequest
	link     string
	err      error
}

func (m *mockInvoices) CreateInvoiceLink(ctx context.Context, req payment.InvoiceRequest) (string, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return "", m.err
	}
	return m.link, nil
}

var errBoom = errors.New("boom")

func signedInitData(userID int64) string {
	user := initdata.User{ID: userID, FirstName: "Asha", Username: "asha"}
	return initdata.Sign(initdata.NewPayload(user, time.Now()), testBotToken)
}
