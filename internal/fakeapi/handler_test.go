package fakeapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fjod/papapizza/internal/domain"
	"github.com/fjod/papapizza/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (http.Handler, *Store) {
	t.Helper()
	menu, err := DefaultMenu()
	require.NoError(t, err)
	store := NewStore(menu)
	return NewRouter(store, logger.Discard(), RouterOptions{}), store
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func register(t *testing.T, h http.Handler, email string) domain.Session {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/register", "", domain.Registration{
		Name:                 "Ivan Petrov",
		Email:                email,
		Phone:                "+79990001122",
		Password:             "secret1",
		PasswordConfirmation: "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var s domain.Session
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&s))
	return s
}

func TestListProducts(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/pizzas", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var products []domain.Product
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&products))
	assert.Len(t, products, 6)
	assert.Equal(t, "Margherita", products[0].Name)
}

func TestGetProduct_NotFound(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/pizzas/999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "product_not_found", resp.Code)
}

func TestCreateOrder_GuestSuccess(t *testing.T) {
	h, store := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/create-order", "", domain.OrderDraft{
		Name:    "Guest",
		Phone:   "+70000000000",
		Address: "Lenina 1",
		Items:   []domain.OrderDraftItem{{ID: "1", Quantity: 2}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var conf domain.OrderConfirmation
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&conf))
	assert.True(t, conf.Succeeded())

	details, _, err := store.OrderDetails(conf.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "Guest", details.Client.Name)
	assert.Nil(t, details.Comment)
	require.Len(t, details.Items, 1)
	assert.Equal(t, "Margherita", details.Items[0].Name)
}

func TestCreateOrder_Validation(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/create-order", "", domain.OrderDraft{
		Items: []domain.OrderDraftItem{{ID: "1", Quantity: 1}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/create-order", "", domain.OrderDraft{Address: "Lenina 1"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/create-order", "", domain.OrderDraft{
		Address: "Lenina 1",
		Items:   []domain.OrderDraftItem{{ID: "404", Quantity: 1}},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateOrder_InvalidJSON(t *testing.T) {
	h, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/create-order", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrdersRequireToken(t *testing.T) {
	h, _ := newTestRouter(t)

	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/api/clients/1", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/api/orders/1", "bogus", nil).Code)
}

func TestClientOrderFlow(t *testing.T) {
	h, _ := newTestRouter(t)
	s := register(t, h, "ivan@example.com")

	rec := do(t, h, http.MethodPost, "/api/create-order", s.Token, domain.OrderDraft{
		Address: "Lenina 1",
		Comment: "ring twice",
		Items:   []domain.OrderDraftItem{{ID: "2", Quantity: 1}, {ID: "5", Quantity: 3}},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var conf domain.OrderConfirmation
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&conf))

	rec = do(t, h, http.MethodGet, "/api/clients/"+itoa(s.ClientID), s.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list OrdersResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list.Orders, 1)
	assert.Equal(t, conf.OrderID, list.Orders[0].ID)
	assert.Equal(t, domain.OrderStatusProcessing, list.Orders[0].Status)

	rec = do(t, h, http.MethodGet, "/api/orders/"+itoa(conf.OrderID), s.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var details domain.OrderDetails
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&details))
	require.NotNil(t, details.Comment)
	assert.Equal(t, "ring twice", *details.Comment)
	assert.Equal(t, "Ivan Petrov", details.Client.Name)
	assert.Equal(t, "2280", details.Total().String())

	rec = do(t, h, http.MethodPost, "/api/orders/"+itoa(conf.OrderID)+"/advance", s.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&details))
	assert.Equal(t, domain.OrderStatusDelivering, details.Status)
}

func TestOtherClientsOrdersAreForbidden(t *testing.T) {
	h, _ := newTestRouter(t)
	owner := register(t, h, "owner@example.com")
	other := register(t, h, "other@example.com")

	rec := do(t, h, http.MethodPost, "/api/create-order", owner.Token, domain.OrderDraft{
		Address: "Lenina 1",
		Items:   []domain.OrderDraftItem{{ID: "1", Quantity: 1}},
	})
	var conf domain.OrderConfirmation
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&conf))

	assert.Equal(t, http.StatusForbidden, do(t, h, http.MethodGet, "/api/orders/"+itoa(conf.OrderID), other.Token, nil).Code)
	assert.Equal(t, http.StatusForbidden, do(t, h, http.MethodGet, "/api/clients/"+itoa(owner.ClientID), other.Token, nil).Code)
}

func TestLogin(t *testing.T) {
	h, _ := newTestRouter(t)
	reg := register(t, h, "ivan@example.com")

	rec := do(t, h, http.MethodPost, "/api/login", "", domain.Credentials{Email: "IVAN@example.com", Password: "secret1"})
	require.Equal(t, http.StatusOK, rec.Code)
	var s domain.Session
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&s))
	assert.Equal(t, reg.ClientID, s.ClientID)
	assert.NotEqual(t, reg.Token, s.Token)

	rec = do(t, h, http.MethodPost, "/api/login", "", domain.Credentials{Email: "ivan@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegister_Conflicts(t *testing.T) {
	h, _ := newTestRouter(t)
	register(t, h, "ivan@example.com")

	rec := do(t, h, http.MethodPost, "/api/register", "", domain.Registration{
		Name: "Ivan", Email: "ivan@example.com", Password: "secret1", PasswordConfirmation: "secret1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/register", "", domain.Registration{
		Name: "Ivan", Email: "new@example.com", Password: "secret1", PasswordConfirmation: "secret2",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHealth(t *testing.T) {
	h, _ := newTestRouter(t)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "", nil).Code)
}
