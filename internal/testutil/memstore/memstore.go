// Package memstore implementa en memoria los repositorios del dominio para los tests
// de casos de uso. Guarda copias: modificar una entidad devuelta no altera el almacén.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/Compras-api/internal/application/ports"
	"github.com/jhoicas/Compras-api/internal/domain"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
	"github.com/jhoicas/Compras-api/internal/domain/repository"
)

// Store agrupa todos los repositorios en memoria.
type Store struct {
	mu sync.Mutex

	companies  map[string]entity.Company
	modules    map[string][]entity.CompanyModule
	users      map[string]entity.User
	categories map[string]entity.Category
	products   map[string]entity.Product
	suppliers  map[string]entity.Supplier
	requests   map[string]entity.QuotationRequest
	proposals  map[string]entity.Proposal
	orders     map[string]entity.PurchaseOrder
	emails     map[string]entity.EmailMessage
	balances   map[string]int
	usage      []entity.AIUsage

	requestSeq map[string]int
	orderSeq   map[string]int
	seq        int // orden de inserción para listados estables
	order      map[string]int
}

// New crea un almacén vacío.
func New() *Store {
	return &Store{
		companies:  map[string]entity.Company{},
		modules:    map[string][]entity.CompanyModule{},
		users:      map[string]entity.User{},
		categories: map[string]entity.Category{},
		products:   map[string]entity.Product{},
		suppliers:  map[string]entity.Supplier{},
		requests:   map[string]entity.QuotationRequest{},
		proposals:  map[string]entity.Proposal{},
		orders:     map[string]entity.PurchaseOrder{},
		emails:     map[string]entity.EmailMessage{},
		balances:   map[string]int{},
		requestSeq: map[string]int{},
		orderSeq:   map[string]int{},
		order:      map[string]int{},
	}
}

func (s *Store) touch(id string) {
	if _, ok := s.order[id]; !ok {
		s.seq++
		s.order[id] = s.seq
	}
}

func (s *Store) sortByInsertion(ids []string) {
	sort.Slice(ids, func(i, j int) bool { return s.order[ids[i]] < s.order[ids[j]] })
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

// Repositorios

func (s *Store) Companies() repository.CompanyRepository { return companyRepo{s} }
func (s *Store) Users() repository.UserRepository { return userRepo{s} }
func (s *Store) Categories() repository.CategoryRepository { return categoryRepo{s} }
func (s *Store) Products() repository.ProductRepository { return productRepo{s} }
func (s *Store) Suppliers() repository.SupplierRepository { return supplierRepo{s} }
func (s *Store) Requests() repository.QuotationRequestRepository { return requestRepo{s} }
func (s *Store) Proposals() repository.ProposalRepository { return proposalRepo{s} }
func (s *Store) Orders() repository.PurchaseOrderRepository { return orderRepo{s} }
func (s *Store) Emails() repository.EmailMessageRepository { return emailRepo{s} }
func (s *Store) Credits() repository.AICreditRepository { return creditRepo{s} }
func (s *Store) Tx() ports.TxRunner { return txRunner{s} }

// Company

type companyRepo struct{ s *Store }

func (r companyRepo) Create(_ context.Context, c *entity.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.companies {
		if x.TaxID == c.TaxID {
			return domain.ErrDuplicate
		}
	}
	r.s.companies[c.ID] = *c
	r.s.touch(c.ID)
	return nil
}

func (r companyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.companies[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r companyRepo) GetByTaxID(_ context.Context, taxID string) (*entity.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.companies {
		if c.TaxID == taxID {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (r companyRepo) Update(_ context.Context, c *entity.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.companies[c.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.companies[c.ID] = *c
	return nil
}

func (r companyRepo) List(_ context.Context, limit, offset int) ([]*entity.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := make([]string, 0, len(r.s.companies))
	for id := range r.s.companies {
		ids = append(ids, id)
	}
	r.s.sortByInsertion(ids)
	var out []*entity.Company
	for _, id := range page(ids, limit, offset) {
		c := r.s.companies[id]
		out = append(out, &c)
	}
	return out, nil
}

func (r companyRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.companies, id)
	return nil
}

func (r companyRepo) HasActiveModule(_ context.Context, companyID, moduleName string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	for _, m := range r.s.modules[companyID] {
		if m.ModuleName == moduleName && m.IsActive && (m.ExpiresAt == nil || m.ExpiresAt.After(now)) {
			return true, nil
		}
	}
	return false, nil
}

func (r companyRepo) ActivateModule(_ context.Context, m *entity.CompanyModule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := r.s.modules[m.CompanyID]
	for i := range list {
		if list[i].ModuleName == m.ModuleName {
			list[i] = *m
			return nil
		}
	}
	r.s.modules[m.CompanyID] = append(list, *m)
	return nil
}

func (r companyRepo) ListModules(_ context.Context, companyID string) ([]*entity.CompanyModule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.CompanyModule
	for _, m := range r.s.modules[companyID] {
		m := m
		out = append(out, &m)
	}
	return out, nil
}

// User

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.users {
		if strings.EqualFold(x.Email, u.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.s.users[u.ID] = *u
	r.s.touch(u.ID)
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r userRepo) GetByEmailAndCompany(_ context.Context, email, companyID string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.CompanyID == companyID && strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r userRepo) Update(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[u.ID] = *u
	return nil
}

func (r userRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []string
	for id, u := range r.s.users {
		if u.CompanyID == companyID {
			ids = append(ids, id)
		}
	}
	r.s.sortByInsertion(ids)
	var out []*entity.User
	for _, id := range page(ids, limit, offset) {
		u := r.s.users[id]
		out = append(out, &u)
	}
	return out, nil
}

func (r userRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.users, id)
	return nil
}

// Category

type categoryRepo struct{ s *Store }

func (r categoryRepo) Create(_ context.Context, c *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.categories[c.ID] = *c
	r.s.touch(c.ID)
	return nil
}

func (r categoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r categoryRepo) GetByCompanyAndCode(_ context.Context, companyID, code string) (*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.categories {
		if c.CompanyID == companyID && c.Code == code {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (r categoryRepo) Update(_ context.Context, c *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.categories[c.ID] = *c
	return nil
}

func (r categoryRepo) list(match func(entity.Category) bool) []*entity.Category {
	var ids []string
	for id, c := range r.s.categories {
		if match(c) {
			ids = append(ids, id)
		}
	}
	r.s.sortByInsertion(ids)
	out := make([]*entity.Category, 0, len(ids))
	for _, id := range ids {
		c := r.s.categories[id]
		out = append(out, &c)
	}
	return out
}

func (r categoryRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return page(r.list(func(c entity.Category) bool { return c.CompanyID == companyID }), limit, offset), nil
}

func (r categoryRepo) ListByParent(_ context.Context, companyID, parentID string) ([]*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.list(func(c entity.Category) bool { return c.CompanyID == companyID && c.ParentID == parentID }), nil
}

func (r categoryRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.categories, id)
	return nil
}

// Product

type productRepo struct{ s *Store }

func (r productRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.products {
		if x.CompanyID == p.CompanyID && x.SKU == p.SKU {
			return domain.ErrDuplicate
		}
	}
	r.s.products[p.ID] = *p
	r.s.touch(p.ID)
	return nil
}

func (r productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r productRepo) GetByCompanyAndSKU(_ context.Context, companyID, sku string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if p.CompanyID == companyID && p.SKU == sku {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (r productRepo) Update(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.products[p.ID] = *p
	return nil
}

func (r productRepo) ListByCompany(_ context.Context, companyID string, f repository.ProductFilter, limit, offset int) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	search := strings.ToLower(f.Search)
	var ids []string
	for id, p := range r.s.products {
		if p.CompanyID != companyID ||
			(f.CategoryID != "" && p.CategoryID != f.CategoryID) ||
			(f.Status != "" && p.Status != f.Status) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) && !strings.Contains(strings.ToLower(p.SKU), search) {
			continue
		}
		ids = append(ids, id)
	}
	r.s.sortByInsertion(ids)
	var out []*entity.Product
	for _, id := range page(ids, limit, offset) {
		p := r.s.products[id]
		out = append(out, &p)
	}
	return out, nil
}

func (r productRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.products, id)
	return nil
}

// Supplier

type supplierRepo struct{ s *Store }

func (r supplierRepo) Create(_ context.Context, sup *entity.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.suppliers {
		if x.CompanyID == sup.CompanyID && x.TaxID == sup.TaxID {
			return domain.ErrDuplicate
		}
	}
	r.s.suppliers[sup.ID] = *sup
	r.s.touch(sup.ID)
	return nil
}

func (r supplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sup, ok := r.s.suppliers[id]
	if !ok {
		return nil, nil
	}
	return &sup, nil
}

func (r supplierRepo) GetByCompanyAndTaxID(_ context.Context, companyID, taxID string) (*entity.Supplier, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sup := range r.s.suppliers {
		if sup.CompanyID == companyID && sup.TaxID == taxID {
			sup := sup
			return &sup, nil
		}
	}
	return nil, nil
}

func (r supplierRepo) GetByEmail(_ context.Context, companyID, email string) (*entity.Supplier, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sup := range r.s.suppliers {
		if sup.CompanyID == companyID && strings.EqualFold(sup.Email, email) {
			sup := sup
			return &sup, nil
		}
	}
	return nil, nil
}

func (r supplierRepo) Update(_ context.Context, sup *entity.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.suppliers[sup.ID] = *sup
	return nil
}

func (r supplierRepo) ListByCompany(_ context.Context, companyID, search string, limit, offset int) ([]*entity.Supplier, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	search = strings.ToLower(search)
	var ids []string
	for id, sup := range r.s.suppliers {
		if sup.CompanyID != companyID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(sup.Name), search) && !strings.Contains(sup.TaxID, search) {
			continue
		}
		ids = append(ids, id)
	}
	r.s.sortByInsertion(ids)
	var out []*entity.Supplier
	for _, id := range page(ids, limit, offset) {
		sup := r.s.suppliers[id]
		out = append(out, &sup)
	}
	return out, nil
}

func (r supplierRepo) ListByIDs(_ context.Context, companyID string, ids []string) ([]*entity.Supplier, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Supplier
	for _, id := range ids {
		if sup, ok := r.s.suppliers[id]; ok && sup.CompanyID == companyID {
			out = append(out, &sup)
		}
	}
	return out, nil
}

func (r supplierRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.suppliers, id)
	return nil
}

// QuotationRequest

type requestRepo struct{ s *Store }

func copyRequest(q entity.QuotationRequest) *entity.QuotationRequest {
	q.Items = append([]entity.RequestItem(nil), q.Items...)
	q.Suppliers = append([]entity.RequestSupplier(nil), q.Suppliers...)
	return &q
}

func (r requestRepo) NextNumber(_ context.Context, companyID string) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.requestSeq[companyID]++
	return fmt.Sprintf("SC-%06d", r.s.requestSeq[companyID]), nil
}

func (r requestRepo) Create(_ context.Context, q *entity.QuotationRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.requests[q.ID] = *copyRequest(*q)
	r.s.touch(q.ID)
	return nil
}

func (r requestRepo) GetByID(_ context.Context, id string) (*entity.QuotationRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.requests[id]
	if !ok {
		return nil, nil
	}
	return copyRequest(q), nil
}

func (r requestRepo) FindOpenByNumber(_ context.Context, companyID, number string) (*entity.QuotationRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, q := range r.s.requests {
		if q.CompanyID == companyID && q.Number == number && q.AcceptsProposals() {
			return copyRequest(q), nil
		}
	}
	return nil, nil
}

func (r requestRepo) list(match func(entity.QuotationRequest) bool) []*entity.QuotationRequest {
	var ids []string
	for id, q := range r.s.requests {
		if match(q) {
			ids = append(ids, id)
		}
	}
	r.s.sortByInsertion(ids)
	out := make([]*entity.QuotationRequest, 0, len(ids))
	for _, id := range ids {
		out = append(out, copyRequest(r.s.requests[id]))
	}
	return out
}

func (r requestRepo) ListOpen(_ context.Context, companyID string) ([]*entity.QuotationRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.list(func(q entity.QuotationRequest) bool { return q.CompanyID == companyID && q.AcceptsProposals() }), nil
}

func (r requestRepo) Update(_ context.Context, q *entity.QuotationRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.requests[q.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.requests[q.ID] = *copyRequest(*q)
	return nil
}

func (r requestRepo) TransitionStatus(_ context.Context, id, from, to string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.requests[id]
	if !ok {
		return domain.ErrNotFound
	}
	if q.Status != from {
		return fmt.Errorf("%w: la solicitud está en %s, se esperaba %s", domain.ErrInvalidStatus, q.Status, from)
	}
	q.Status = to
	q.UpdatedAt = time.Now()
	r.s.requests[id] = q
	return nil
}

func (r requestRepo) UpdateSupplierStatus(_ context.Context, requestID, supplierID, status string, sentAt *time.Time, lastError string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.requests[requestID]
	if !ok {
		return domain.ErrNotFound
	}
	q = *copyRequest(q)
	for i := range q.Suppliers {
		if q.Suppliers[i].SupplierID == supplierID {
			q.Suppliers[i].Status = status
			if sentAt != nil {
				q.Suppliers[i].SentAt = sentAt
			}
			q.Suppliers[i].LastError = lastError
			r.s.requests[requestID] = q
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r requestRepo) AddSupplier(_ context.Context, requestID, supplierID, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.requests[requestID]
	if !ok {
		return domain.ErrNotFound
	}
	if q.HasSupplier(supplierID) {
		return nil
	}
	q = *copyRequest(q)
	q.Suppliers = append(q.Suppliers, entity.RequestSupplier{RequestID: requestID, SupplierID: supplierID, Status: status})
	r.s.requests[requestID] = q
	return nil
}

func (r requestRepo) ListByCompany(_ context.Context, companyID, status string, limit, offset int) ([]*entity.QuotationRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return page(r.list(func(q entity.QuotationRequest) bool {
		return q.CompanyID == companyID && (status == "" || q.Status == status)
	}), limit, offset), nil
}

func (r requestRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.requests, id)
	return nil
}

// Proposal

type proposalRepo struct{ s *Store }

func copyProposal(p entity.Proposal) *entity.Proposal {
	p.Items = append([]entity.ProposalItem(nil), p.Items...)
	return &p
}

func (r proposalRepo) Create(_ context.Context, p *entity.Proposal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.proposals {
		if x.RequestID == p.RequestID && x.SupplierID == p.SupplierID {
			return domain.ErrDuplicate
		}
	}
	r.s.proposals[p.ID] = *copyProposal(*p)
	r.s.touch(p.ID)
	return nil
}

func (r proposalRepo) GetByID(_ context.Context, id string) (*entity.Proposal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.proposals[id]
	if !ok {
		return nil, nil
	}
	return copyProposal(p), nil
}

func (r proposalRepo) GetByRequestAndSupplier(_ context.Context, requestID, supplierID string) (*entity.Proposal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.proposals {
		if p.RequestID == requestID && p.SupplierID == supplierID {
			return copyProposal(p), nil
		}
	}
	return nil, nil
}

func (r proposalRepo) ListByRequest(_ context.Context, requestID string) ([]*entity.Proposal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []string
	for id, p := range r.s.proposals {
		if p.RequestID == requestID {
			ids = append(ids, id)
		}
	}
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := r.s.proposals[ids[i]], r.s.proposals[ids[j]]
		if !a.ReceivedAt.Equal(b.ReceivedAt) {
			return a.ReceivedAt.Before(b.ReceivedAt)
		}
		return r.s.order[ids[i]] < r.s.order[ids[j]]
	})
	out := make([]*entity.Proposal, 0, len(ids))
	for _, id := range ids {
		out = append(out, copyProposal(r.s.proposals[id]))
	}
	return out, nil
}

func (r proposalRepo) Update(_ context.Context, p *entity.Proposal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.proposals[p.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.proposals[p.ID] = *copyProposal(*p)
	return nil
}

func (r proposalRepo) UpdateStatus(_ context.Context, id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.proposals[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Status = status
	r.s.proposals[id] = p
	return nil
}

func (r proposalRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.proposals, id)
	return nil
}

// PurchaseOrder

type orderRepo struct{ s *Store }

func copyOrder(o entity.PurchaseOrder) *entity.PurchaseOrder {
	o.Items = append([]entity.PurchaseOrderItem(nil), o.Items...)
	return &o
}

func (r orderRepo) NextNumber(_ context.Context, companyID string) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.orderSeq[companyID]++
	return fmt.Sprintf("OC-%06d", r.s.orderSeq[companyID]), nil
}

func (r orderRepo) Create(_ context.Context, o *entity.PurchaseOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.orders[o.ID] = *copyOrder(*o)
	r.s.touch(o.ID)
	return nil
}

func (r orderRepo) GetByID(_ context.Context, id string) (*entity.PurchaseOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	return copyOrder(o), nil
}

func (r orderRepo) list(match func(entity.PurchaseOrder) bool) []*entity.PurchaseOrder {
	var ids []string
	for id, o := range r.s.orders {
		if match(o) {
			ids = append(ids, id)
		}
	}
	r.s.sortByInsertion(ids)
	out := make([]*entity.PurchaseOrder, 0, len(ids))
	for _, id := range ids {
		out = append(out, copyOrder(r.s.orders[id]))
	}
	return out
}

func (r orderRepo) ListByCompany(_ context.Context, companyID string, f repository.PurchaseOrderFilter, limit, offset int) ([]*entity.PurchaseOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return page(r.list(func(o entity.PurchaseOrder) bool {
		return o.CompanyID == companyID &&
			(f.Status == "" || o.Status == f.Status) &&
			(f.RequestID == "" || o.RequestID == f.RequestID) &&
			(f.SupplierID == "" || o.SupplierID == f.SupplierID)
	}), limit, offset), nil
}

func (r orderRepo) ListByRequest(_ context.Context, requestID string) ([]*entity.PurchaseOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.list(func(o entity.PurchaseOrder) bool { return o.RequestID == requestID }), nil
}

func (r orderRepo) UpdateStatus(_ context.Context, id, status string, sentAt *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	if sentAt != nil {
		o.SentAt = sentAt
	}
	r.s.orders[id] = o
	return nil
}

// EmailMessage

type emailRepo struct{ s *Store }

func copyEmail(m entity.EmailMessage) *entity.EmailMessage {
	m.ExtractedItems = append([]entity.ExtractedPrice(nil), m.ExtractedItems...)
	return &m
}

func (r emailRepo) Create(_ context.Context, m *entity.EmailMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.emails {
		if x.CompanyID == m.CompanyID && x.MessageID == m.MessageID {
			return domain.ErrDuplicate
		}
	}
	r.s.emails[m.ID] = *copyEmail(*m)
	r.s.touch(m.ID)
	return nil
}

func (r emailRepo) GetByID(_ context.Context, id string) (*entity.EmailMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.emails[id]
	if !ok {
		return nil, nil
	}
	return copyEmail(m), nil
}

func (r emailRepo) ExistsByMessageID(_ context.Context, companyID, messageID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.emails {
		if m.CompanyID == companyID && m.MessageID == messageID {
			return true, nil
		}
	}
	return false, nil
}

func (r emailRepo) Update(_ context.Context, m *entity.EmailMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.emails[m.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.emails[m.ID] = *copyEmail(*m)
	return nil
}

func (r emailRepo) ListByCompany(_ context.Context, companyID, status string, limit, offset int) ([]*entity.EmailMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []string
	for id, m := range r.s.emails {
		if m.CompanyID == companyID && (status == "" || m.Status == status) {
			ids = append(ids, id)
		}
	}
	r.s.sortByInsertion(ids)
	var out []*entity.EmailMessage
	for _, id := range page(ids, limit, offset) {
		out = append(out, copyEmail(r.s.emails[id]))
	}
	return out, nil
}

// AICredit

type creditRepo struct{ s *Store }

func (r creditRepo) GetBalance(_ context.Context, companyID string) (*entity.AICreditBalance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return &entity.AICreditBalance{CompanyID: companyID, Balance: r.s.balances[companyID]}, nil
}

func (r creditRepo) Consume(_ context.Context, u *entity.AIUsage) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.balances[u.CompanyID] < u.Credits {
		return r.s.balances[u.CompanyID], domain.ErrInsufficientCredits
	}
	r.s.balances[u.CompanyID] -= u.Credits
	r.s.usage = append(r.s.usage, *u)
	return r.s.balances[u.CompanyID], nil
}

func (r creditRepo) Add(_ context.Context, u *entity.AIUsage) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.balances[u.CompanyID] += u.Credits
	r.s.usage = append(r.s.usage, *u)
	return r.s.balances[u.CompanyID], nil
}

func (r creditRepo) ListUsage(_ context.Context, companyID string, limit int) ([]*entity.AIUsage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.AIUsage
	for i := len(r.s.usage) - 1; i >= 0; i-- {
		if r.s.usage[i].CompanyID != companyID {
			continue
		}
		u := r.s.usage[i]
		out = append(out, &u)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Tx

type txRunner struct{ s *Store }

// RunPurchasing ejecuta fn sobre los mismos repositorios. Si fn falla, restaura el
// estado de solicitudes, propuestas, órdenes y correos anterior a la llamada.
func (t txRunner) RunPurchasing(_ context.Context, fn func(repos ports.PurchasingRepos) error) error {
	snap := t.s.snapshot()
	err := fn(ports.PurchasingRepos{
		Requests:  t.s.Requests(),
		Proposals: t.s.Proposals(),
		Orders:    t.s.Orders(),
		Emails:    t.s.Emails(),
	})
	if err != nil {
		t.s.restore(snap)
	}
	return err
}

type snapshot struct {
	requests   map[string]entity.QuotationRequest
	proposals  map[string]entity.Proposal
	orders     map[string]entity.PurchaseOrder
	emails     map[string]entity.EmailMessage
	requestSeq map[string]int
	orderSeq   map[string]int
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		requests:   cloneMap(s.requests),
		proposals:  cloneMap(s.proposals),
		orders:     cloneMap(s.orders),
		emails:     cloneMap(s.emails),
		requestSeq: cloneMap(s.requestSeq),
		orderSeq:   cloneMap(s.orderSeq),
	}
}

func (s *Store) restore(sn snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = sn.requests
	s.proposals = sn.proposals
	s.orders = sn.orders
	s.emails = sn.emails
	s.requestSeq = sn.requestSeq
	s.orderSeq = sn.orderSeq
}

var (
	_ repository.CompanyRepository          = companyRepo{}
	_ repository.UserRepository             = userRepo{}
	_ repository.CategoryRepository         = categoryRepo{}
	_ repository.ProductRepository          = productRepo{}
	_ repository.SupplierRepository         = supplierRepo{}
	_ repository.QuotationRequestRepository = requestRepo{}
	_ repository.ProposalRepository         = proposalRepo{}
	_ repository.PurchaseOrderRepository    = orderRepo{}
	_ repository.EmailMessageRepository     = emailRepo{}
	_ repository.AICreditRepository         = creditRepo{}
	_ ports.TxRunner                        = txRunner{}
)
