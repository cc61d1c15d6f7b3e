package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/papapizza/internal/api"
	"github.com/fjod/papapizza/internal/domain"
	"github.com/go-playground/validator/v10"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type Client struct {
	api      api.Doer
	store    TokenStore
	validate *validator.Validate
	log      *slog.Logger
	now      func() time.Time
}

func NewClient(doer api.Doer, store TokenStore, log *slog.Logger) *Client {
	return &Client{
		api:      doer,
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log,
		now:      time.Now,
	}
}

func (c *Client) Login(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if err := c.validate.Struct(creds); err != nil {
		return domain.Session{}, fmt.Errorf("login: %w", err)
	}

	var s domain.Session
	if err := c.api.Do(ctx, http.MethodPost, "login", creds, &s); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return domain.Session{}, ErrInvalidCredentials
		}
		return domain.Session{}, fmt.Errorf("login: %w", err)
	}
	return c.keep(ctx, s)
}

func (c *Client) Register(ctx context.Context, reg domain.Registration) (domain.Session, error) {
	reg.Email = strings.TrimSpace(reg.Email)
	reg.Name = strings.TrimSpace(reg.Name)
	if err := c.validate.Struct(reg); err != nil {
		return domain.Session{}, fmt.Errorf("register: %w", err)
	}

	var s domain.Session
	if err := c.api.Do(ctx, http.MethodPost, "register", reg, &s); err != nil {
		return domain.Session{}, fmt.Errorf("register: %w", err)
	}
	return c.keep(ctx, s)
}

func (c *Client) Logout(ctx context.Context) error {
	if err := c.store.Delete(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	c.log.InfoContext(ctx, "session removed")
	return nil
}

func (c *Client) Current(ctx context.Context) (domain.Session, error) {
	return c.store.Load(ctx)
}

// Token implements api.TokenSource. No stored session means anonymous.
func (c *Client) Token(ctx context.Context) (string, error) {
	return StoreTokenSource(c.store).Token(ctx)
}

func (c *Client) keep(ctx context.Context, s domain.Session) (domain.Session, error) {
	if s.Token == "" {
		return domain.Session{}, errors.New("vendor api returned an empty token")
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = c.now()
	}
	if err := c.store.Save(ctx, s); err != nil {
		return domain.Session{}, fmt.Errorf("save session: %w", err)
	}
	c.log.InfoContext(ctx, "session stored", slog.Int64("client_id", s.ClientID))
	return s, nil
}

// StoreTokenSource adapts a TokenStore to api.TokenSource.
func StoreTokenSource(store TokenStore) api.TokenSource {
	return api.TokenFunc(func(ctx context.Context) (string, error) {
		s, err := store.Load(ctx)
		if errors.Is(err, ErrNoSession) {
			return "", nil
		}
		if err != nil {
			return "", err
		}
		return s.Token, nil
	})
}
