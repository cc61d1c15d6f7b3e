package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fjod/papapizza/internal/cart"
	"github.com/fjod/papapizza/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	colorBrand   = lipgloss.Color("#E4572E")
	colorSuccess = lipgloss.Color("#2CD7C7")
	colorWarning = lipgloss.Color("#F4D03F")
	colorError   = lipgloss.Color("#E74C3C")
	colorMuted   = lipgloss.Color("241")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorBrand)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorError)
	totalStyle   = lipgloss.NewStyle().Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorBrand).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func money(d decimal.Decimal) string {
	return d.String() + " ₽"
}

func renderMenu(w io.Writer, products []domain.Product) {
	fmt.Fprintln(w, titleStyle.Render("Menu"))
	if len(products) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("nothing to order yet"))
		return
	}
	t := newTable("ID", "NAME", "PRICE", "DESCRIPTION")
	for _, p := range products {
		t.Row(p.ID.String(), p.Name, money(p.Price), p.Description)
	}
	fmt.Fprintln(w, t.Render())
}

func renderProduct(w io.Writer, p domain.Product) {
	fmt.Fprintln(w, titleStyle.Render(p.Name))
	if p.Description != "" {
		fmt.Fprintln(w, p.Description)
	}
	fmt.Fprintf(w, "price: %s\n", money(p.Price))
	if p.Image != "" {
		fmt.Fprintln(w, mutedStyle.Render(p.Image))
	}
}

func renderCart(w io.Writer, st cart.State) {
	fmt.Fprintln(w, titleStyle.Render("Cart"))
	if st.IsEmpty() {
		fmt.Fprintln(w, mutedStyle.Render("your cart is empty"))
		return
	}
	t := newTable("ID", "NAME", "QTY", "PRICE", "SUBTOTAL")
	for _, it := range st.Items() {
		t.Row(it.ID.String(), it.Name, strconv.Itoa(it.Quantity), money(it.Price), money(it.Subtotal()))
	}
	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, totalStyle.Render(fmt.Sprintf("%d items, total %s", st.TotalQuantity(), money(st.TotalPrice()))))
}

func renderCartSummary(w io.Writer, st cart.State) {
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("cart: %d items, %s", st.TotalQuantity(), money(st.TotalPrice()))))
}

func statusStyle(s domain.OrderStatus) lipgloss.Style {
	switch s {
	case domain.OrderStatusCompleted:
		return successStyle
	case domain.OrderStatusDelivering:
		return warningStyle
	default:
		return mutedStyle
	}
}

func renderOrders(w io.Writer, orders []domain.OrderDetails) {
	fmt.Fprintln(w, titleStyle.Render("Your orders"))
	if len(orders) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("no orders yet"))
		return
	}
	t := newTable("ID", "STATUS", "ADDRESS", "ITEMS", "TOTAL")
	for _, o := range orders {
		qty := 0
		for _, l := range o.Items {
			qty += l.Quantity
		}
		t.Row(strconv.FormatInt(o.ID, 10), statusStyle(o.Status).Render(o.Status.String()), o.Address, strconv.Itoa(qty), money(o.Total()))
	}
	fmt.Fprintln(w, t.Render())
}

func renderOrderDetails(w io.Writer, o domain.OrderDetails) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Order #%d", o.ID)))
	fmt.Fprintf(w, "status:  %s\n", statusStyle(o.Status).Render(o.Status.String()))
	fmt.Fprintf(w, "address: %s\n", o.Address)
	if o.Comment != nil && *o.Comment != "" {
		fmt.Fprintf(w, "comment: %s\n", *o.Comment)
	}
	if o.Client.Name != "" {
		fmt.Fprintf(w, "client:  %s %s\n", o.Client.Name, o.Client.Phone)
	}

	t := newTable("ID", "NAME", "QTY", "PRICE")
	for _, l := range o.Items {
		t.Row(l.ID.String(), l.Name, strconv.Itoa(l.Quantity), money(l.Price))
	}
	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, totalStyle.Render("total "+money(o.Total())))
}

func renderConfirmation(w io.Writer, conf domain.OrderConfirmation) {
	fmt.Fprintln(w, successStyle.Render(fmt.Sprintf("order #%d placed, thank you!", conf.OrderID)))
}
