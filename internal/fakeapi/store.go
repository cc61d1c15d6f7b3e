package fakeapi

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fjod/papapizza/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrClientNotFound     = errors.New("client not found")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAlreadyCompleted   = errors.New("order is already completed")
)

type client struct {
	id       int64
	name     string
	email    string
	phone    string
	password string // mock API: kept as given
}

type order struct {
	domain.Order
	lines []domain.OrderLine
}

// Store is the in-memory state of the mock vendor API.
type Store struct {
	mu       sync.RWMutex
	vendor   string
	products []domain.Product
	byID     map[domain.ProductID]int

	clients map[int64]*client
	emails  map[string]int64
	tokens  map[string]int64
	orders  map[int64]*order

	nextClientID int64
	nextOrderID  int64
	nextCartID   int64

	now func() time.Time
}

func NewStore(menu Menu) *Store {
	s := &Store{
		vendor:       menu.Vendor,
		products:     make([]domain.Product, len(menu.Products)),
		byID:         make(map[domain.ProductID]int, len(menu.Products)),
		clients:      make(map[int64]*client),
		emails:       make(map[string]int64),
		tokens:       make(map[string]int64),
		orders:       make(map[int64]*order),
		nextClientID: 1,
		nextOrderID:  1,
		nextCartID:   1,
		now:          time.Now,
	}
	copy(s.products, menu.Products)
	for i, p := range s.products {
		s.byID[p.ID] = i
	}
	return s
}

func (s *Store) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out
}

func (s *Store) Product(id domain.ProductID) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}
	return s.products[i], nil
}

func (s *Store) Register(reg domain.Registration) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(reg.Email))
	if _, exists := s.emails[email]; exists {
		return domain.Session{}, ErrEmailTaken
	}

	c := s.addClientLocked(reg.Name, reg.Phone)
	c.email = email
	c.password = reg.Password
	s.emails[email] = c.id
	return s.issueTokenLocked(c.id), nil
}

func (s *Store) Login(creds domain.Credentials) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.emails[strings.ToLower(strings.TrimSpace(creds.Email))]
	if !ok || s.clients[id].password != creds.Password {
		return domain.Session{}, ErrInvalidCredentials
	}
	return s.issueTokenLocked(id), nil
}

// ClientByToken resolves a bearer token to its client id.
func (s *Store) ClientByToken(token string) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.tokens[token]
	return id, ok
}

// CreateOrder records the draft. clientID 0 places a guest order; a guest
// client is created from the draft's name and phone.
func (s *Store) CreateOrder(clientID int64, draft domain.OrderDraft) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make([]domain.OrderLine, 0, len(draft.Items))
	for _, it := range draft.Items {
		i, ok := s.byID[it.ID]
		if !ok {
			return 0, ErrProductNotFound
		}
		p := s.products[i]
		lines = append(lines, domain.OrderLine{ID: p.ID, Name: p.Name, Quantity: it.Quantity, Price: p.Price})
	}

	if clientID == 0 {
		clientID = s.addClientLocked(draft.Name, draft.Phone).id
	} else if _, ok := s.clients[clientID]; !ok {
		return 0, ErrClientNotFound
	}

	now := s.now()
	o := &order{
		Order: domain.Order{
			ID:        s.nextOrderID,
			ClientID:  clientID,
			CartID:    s.nextCartID,
			Address:   draft.Address,
			Comment:   draft.Comment,
			Status:    domain.OrderStatusProcessing,
			CreatedAt: now,
			UpdatedAt: now,
		},
		lines: lines,
	}
	if draft.Status != nil {
		o.Status = *draft.Status
	}
	s.orders[o.ID] = o
	s.nextOrderID++
	s.nextCartID++
	return o.ID, nil
}

// Orders returns the client's orders, oldest first.
func (s *Store) Orders(clientID int64) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.clients[clientID]; !ok {
		return nil, ErrClientNotFound
	}
	out := make([]domain.Order, 0)
	for _, o := range s.orders {
		if o.ClientID == clientID {
			out = append(out, o.Order)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// OrderDetails returns the order and the id of the client that owns it.
func (s *Store) OrderDetails(id int64) (domain.OrderDetails, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return domain.OrderDetails{}, 0, ErrOrderNotFound
	}
	return s.detailsLocked(o), o.ClientID, nil
}

// Advance moves the order to the next status.
func (s *Store) Advance(id int64) (domain.OrderDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return domain.OrderDetails{}, ErrOrderNotFound
	}
	if o.Status.IsTerminal() {
		return domain.OrderDetails{}, ErrAlreadyCompleted
	}
	o.Status++
	o.UpdatedAt = s.now()
	return s.detailsLocked(o), nil
}

func (s *Store) detailsLocked(o *order) domain.OrderDetails {
	c := s.clients[o.ClientID]
	d := domain.OrderDetails{
		ID:      o.ID,
		Address: o.Address,
		Client:  domain.OrderClient{Name: c.name, Phone: c.phone},
		Items:   make([]domain.OrderLine, len(o.lines)),
		Status:  o.Status,
	}
	if o.Comment != "" {
		comment := o.Comment
		d.Comment = &comment
	}
	copy(d.Items, o.lines)
	return d
}

func (s *Store) addClientLocked(name, phone string) *client {
	c := &client{id: s.nextClientID, name: name, phone: phone}
	s.clients[c.id] = c
	s.nextClientID++
	return c
}

func (s *Store) issueTokenLocked(clientID int64) domain.Session {
	token := uuid.NewString()
	s.tokens[token] = clientID
	return domain.Session{Token: token, ClientID: clientID, CreatedAt: s.now()}
}
