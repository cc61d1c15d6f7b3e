package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus int

const (
	OrderStatusProcessing OrderStatus = iota
	OrderStatusDelivering
	OrderStatusCompleted
)

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusProcessing:
		return "processing"
	case OrderStatusDelivering:
		return "delivering"
	case OrderStatusCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted
}

// OrderDraftItem is the {id, quantity} pair sent for every cart line.
type OrderDraftItem struct {
	ID       ProductID `json:"id" validate:"required"`
	Quantity int       `json:"quantity" validate:"min=1"`
}

// OrderDraft is the payload built from the cart at checkout time.
// Wire names follow the vendor API.
type OrderDraft struct {
	Name    string           `json:"fio,omitempty"`
	Phone   string           `json:"phone,omitempty"`
	Address string           `json:"address" validate:"required"`
	Comment string           `json:"comment"`
	Items   []OrderDraftItem `json:"listofpizza" validate:"required,min=1,dive"`
	Status  *OrderStatus     `json:"status,omitempty"`
}

const OrderSubmitSuccess = "success"

type OrderConfirmation struct {
	Message string `json:"message"`
	OrderID int64  `json:"order_id,omitempty"`
}

func (c OrderConfirmation) Succeeded() bool {
	return c.Message == OrderSubmitSuccess
}

// Order is a row of the client's order history.
type Order struct {
	ID        int64       `json:"id"`
	ClientID  int64       `json:"client_id"`
	CartID    int64       `json:"cart_id"`
	Address   string      `json:"address"`
	Comment   string      `json:"comment"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type OrderClient struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type OrderLine struct {
	ID       ProductID       `json:"id"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type OrderDetails struct {
	ID      int64       `json:"id"`
	Address string      `json:"address"`
	Comment *string     `json:"comment"`
	Client  OrderClient `json:"client"`
	Items   []OrderLine `json:"listofpizza"`
	Status  OrderStatus `json:"status"`
}

func (d OrderDetails) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range d.Items {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}
