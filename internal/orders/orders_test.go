package orders

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fjod/papapizza/internal/api"
	"github.com/fjod/papapizza/internal/domain"
	"github.com/fjod/papapizza/internal/fakeapi"
	"github.com/fjod/papapizza/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store  *fakeapi.Store
	client *Client
	token  string
}

func setup(t *testing.T) *fixture {
	t.Helper()
	menu, err := fakeapi.DefaultMenu()
	require.NoError(t, err)
	store := fakeapi.NewStore(menu)
	srv := httptest.NewServer(fakeapi.NewRouter(store, logger.Discard(), fakeapi.RouterOptions{}))
	t.Cleanup(srv.Close)

	f := &fixture{store: store}
	doer, err := api.New(srv.URL+"/api",
		api.WithHTTPClient(srv.Client()),
		api.WithLogger(logger.Discard()),
		api.WithTokenSource(api.TokenFunc(func(context.Context) (string, error) { return f.token, nil })),
	)
	require.NoError(t, err)
	f.client = NewClient(doer, logger.Discard())
	return f
}

func (f *fixture) login(t *testing.T) int64 {
	t.Helper()
	s, err := f.store.Register(domain.Registration{
		Name:     "Anna",
		Email:    "anna@example.com",
		Phone:    "+79991234567",
		Password: "secret1",
	})
	require.NoError(t, err)
	f.token = s.Token
	return s.ClientID
}

func draft(items ...domain.OrderDraftItem) domain.OrderDraft {
	return domain.OrderDraft{Address: "Lenina 1", Comment: "ring twice", Items: items}
}

func TestSubmit_Success(t *testing.T) {
	f := setup(t)

	conf, err := f.client.Submit(context.Background(), draft(domain.OrderDraftItem{ID: "1", Quantity: 2}))
	require.NoError(t, err)
	assert.True(t, conf.Succeeded())
	assert.Equal(t, int64(1), conf.OrderID)
}

func TestSubmit_RejectedMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"kitchen closed"}`))
	}))
	t.Cleanup(srv.Close)
	doer, err := api.New(srv.URL, api.WithHTTPClient(srv.Client()), api.WithLogger(logger.Discard()))
	require.NoError(t, err)

	_, err = NewClient(doer, logger.Discard()).Submit(context.Background(), draft(domain.OrderDraftItem{ID: "1", Quantity: 1}))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOrderRejected)

	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "kitchen closed", rejected.Message)
}

func TestSubmit_UnknownProduct(t *testing.T) {
	f := setup(t)

	_, err := f.client.Submit(context.Background(), draft(domain.OrderDraftItem{ID: "99", Quantity: 1}))
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestHistory_RequiresLogin(t *testing.T) {
	f := setup(t)

	_, err := f.client.History(context.Background(), 1)
	assert.True(t, api.IsUnauthorized(err))
}

func TestHistory_EmptyIsNonNil(t *testing.T) {
	f := setup(t)
	clientID := f.login(t)

	orders, err := f.client.History(context.Background(), clientID)
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestHistoryDetails_KeepsOrder(t *testing.T) {
	f := setup(t)
	clientID := f.login(t)
	ctx := context.Background()

	for _, id := range []domain.ProductID{"1", "2", "3", "4", "5", "6"} {
		_, err := f.client.Submit(ctx, draft(domain.OrderDraftItem{ID: id, Quantity: 1}))
		require.NoError(t, err)
	}

	details, err := f.client.HistoryDetails(ctx, clientID)
	require.NoError(t, err)
	require.Len(t, details, 6)
	for i, d := range details {
		assert.Equal(t, int64(i+1), d.ID)
		require.Len(t, d.Items, 1)
		assert.Equal(t, "Anna", d.Client.Name)
	}
	assert.Equal(t, "Margherita", details[0].Items[0].Name)
	assert.Equal(t, "California roll", details[5].Items[0].Name)
}

func TestDetails_NotFound(t *testing.T) {
	f := setup(t)
	f.login(t)

	_, err := f.client.Details(context.Background(), 42)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestDetails_StatusAdvances(t *testing.T) {
	f := setup(t)
	f.login(t)
	ctx := context.Background()

	conf, err := f.client.Submit(ctx, draft(domain.OrderDraftItem{ID: "2", Quantity: 3}))
	require.NoError(t, err)
	_, err = f.store.Advance(conf.OrderID)
	require.NoError(t, err)

	d, err := f.client.Details(ctx, conf.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDelivering, d.Status)
	assert.Equal(t, "1350", d.Total().String())
	require.NotNil(t, d.Comment)
	assert.Equal(t, "ring twice", *d.Comment)
}

func TestWatcher_FollowsStatusUntilCompleted(t *testing.T) {
	f := setup(t)
	f.login(t)
	ctx := context.Background()

	conf, err := f.client.Submit(ctx, draft(domain.OrderDraftItem{ID: "1", Quantity: 1}))
	require.NoError(t, err)

	var seen []domain.OrderStatus
	w := NewWatcher(f.client, 10*time.Millisecond)
	last, err := w.Run(ctx, conf.OrderID, func(d domain.OrderDetails) {
		seen = append(seen, d.Status)
		if !d.Status.IsTerminal() {
			_, advErr := f.store.Advance(d.ID)
			assert.NoError(t, advErr)
		}
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCompleted, last.Status)
	assert.Equal(t, []domain.OrderStatus{
		domain.OrderStatusProcessing,
		domain.OrderStatusDelivering,
		domain.OrderStatusCompleted,
	}, seen)
}

func TestWatcher_StopsOnContext(t *testing.T) {
	f := setup(t)
	f.login(t)

	conf, err := f.client.Submit(context.Background(), draft(domain.OrderDraftItem{ID: "1", Quantity: 1}))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	calls := 0
	last, err := NewWatcher(f.client, 10*time.Millisecond).Run(ctx, conf.OrderID, func(domain.OrderDetails) { calls++ })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, domain.OrderStatusProcessing, last.Status)
	assert.Equal(t, 1, calls)
}

func TestWatcher_ForbiddenOrderEndsWatch(t *testing.T) {
	f := setup(t)
	f.login(t)

	conf, err := f.client.Submit(context.Background(), draft(domain.OrderDraftItem{ID: "1", Quantity: 1}))
	require.NoError(t, err)

	other, err := f.store.Register(domain.Registration{
		Name:     "Boris",
		Email:    "boris@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	f.token = other.Token

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = NewWatcher(f.client, 10*time.Millisecond).Run(ctx, conf.OrderID, func(domain.OrderDetails) {
		t.Fatal("no snapshot expected")
	})
	require.Error(t, err)
	assert.NoError(t, ctx.Err(), "watch must stop before the deadline")

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}

func TestWatcher_UnknownOrder(t *testing.T) {
	f := setup(t)
	f.login(t)

	_, err := NewWatcher(f.client, 10*time.Millisecond).Run(context.Background(), 77, func(domain.OrderDetails) {
		t.Fatal("no snapshot expected")
	})
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
