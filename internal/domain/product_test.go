package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductID_UnmarshalNumberAndString(t *testing.T) {
	var fromNumber, fromString Product
	require.NoError(t, json.Unmarshal([]byte(`{"id":7,"name":"Pepperoni","price":450}`), &fromNumber))
	require.NoError(t, json.Unmarshal([]byte(`{"id":"7","name":"Pepperoni","price":"450"}`), &fromString))

	assert.Equal(t, ProductID("7"), fromNumber.ID)
	assert.Equal(t, fromNumber.ID, fromString.ID)
	assert.True(t, decimal.NewFromInt(450).Equal(fromNumber.Price))
	assert.True(t, fromNumber.Price.Equal(fromString.Price))
}

func TestProductID_RejectsFraction(t *testing.T) {
	var id ProductID
	err := json.Unmarshal([]byte(`1.5`), &id)
	assert.Error(t, err)
}

func TestProductID_MarshalsAsString(t *testing.T) {
	data, err := json.Marshal(OrderDraftItem{ID: "12", Quantity: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"12","quantity":2}`, string(data))
}

func TestLineItem_Subtotal(t *testing.T) {
	item := NewLineItem(Product{ID: "1", Price: decimal.RequireFromString("399.50")}, 3)
	assert.Equal(t, "1198.5", item.Subtotal().String())
}

func TestOrderStatus_String(t *testing.T) {
	assert.Equal(t, "processing", OrderStatusProcessing.String())
	assert.Equal(t, "delivering", OrderStatusDelivering.String())
	assert.Equal(t, "completed", OrderStatusCompleted.String())
	assert.Equal(t, "unknown", OrderStatus(9).String())
}

func TestOrderDetails_Total(t *testing.T) {
	d := OrderDetails{Items: []OrderLine{
		{ID: "1", Quantity: 1, Price: decimal.NewFromInt(300)},
		{ID: "2", Quantity: 2, Price: decimal.NewFromInt(400)},
	}}
	assert.True(t, decimal.NewFromInt(1100).Equal(d.Total()))
}
