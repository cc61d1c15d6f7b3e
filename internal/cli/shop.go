package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fjod/papapizza/internal/cart"
	"github.com/fjod/papapizza/internal/checkout"
	"github.com/fjod/papapizza/internal/domain"
	"github.com/spf13/cobra"
)

const shopHelp = `commands:
  menu                          show the menu
  add <id> [qty]                add a product (qty defaults to 1)
  set <id> <qty>                change a quantity, 0 removes the line
  rm <id>                       remove a line
  cart                          show the cart
  checkout <address> [| note]   place the order
  orders                        your order history (needs login)
  clear                         empty the cart
  help                          this text
  quit                          leave`

var errQuit = errors.New("quit")

func newShopCmd(rt *runtime) *cobra.Command {
	var form checkout.Form
	cmd := &cobra.Command{
		Use:   "shop",
		Short: "Interactive shopping session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := &shop{rt: rt, out: cmd.OutOrStdout(), form: form}
			return s.run(cmd.Context(), cmd.InOrStdin())
		},
	}
	cmd.Flags().StringVar(&form.Name, "name", "", "name for guest orders")
	cmd.Flags().StringVar(&form.Phone, "phone", "", "phone for guest orders")
	return cmd
}

type shop struct {
	rt   *runtime
	out  io.Writer
	form checkout.Form
	menu map[domain.ProductID]domain.Product
}

func (s *shop) run(ctx context.Context, in io.Reader) error {
	s.rt.app.Cart.Subscribe(func(st cart.State) { renderCartSummary(s.out, st) })

	fmt.Fprintln(s.out, titleStyle.Render("Papa Pizza"), mutedStyle.Render("type `help` for commands"))
	if err := s.showMenu(ctx); err != nil {
		fmt.Fprintln(s.out, errorStyle.Render("error:"), explain(err))
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		err := s.exec(ctx, line)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(s.out, errorStyle.Render("error:"), explain(err))
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (s *shop) exec(ctx context.Context, line string) error {
	name, rest, _ := strings.Cut(line, " ")
	args := strings.Fields(rest)
	c := s.rt.app.Cart

	switch strings.ToLower(name) {
	case "menu":
		return s.showMenu(ctx)
	case "add":
		if len(args) < 1 || len(args) > 2 {
			return errors.New("usage: add <id> [qty]")
		}
		qty := 1
		if len(args) == 2 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity %q: not a number", args[1])
			}
			qty = n
		}
		p, err := s.product(ctx, domain.ProductID(args[0]))
		if err != nil {
			return err
		}
		_, err = c.AddItem(p, qty)
		return err
	case "set":
		if len(args) != 2 {
			return errors.New("usage: set <id> <qty>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("quantity %q: not a number", args[1])
		}
		_, err = c.UpdateQuantity(domain.ProductID(args[0]), n)
		return err
	case "rm":
		if len(args) != 1 {
			return errors.New("usage: rm <id>")
		}
		c.RemoveItem(domain.ProductID(args[0]))
		return nil
	case "cart":
		renderCart(s.out, c.Snapshot())
		return nil
	case "checkout":
		form := s.form
		form.Address, form.Comment, _ = strings.Cut(rest, "|")
		conf, err := s.rt.app.Checkout.Checkout(ctx, form)
		if err != nil {
			return err
		}
		renderConfirmation(s.out, conf)
		return nil
	case "orders":
		return showOrders(ctx, s.rt, s.out)
	case "clear":
		c.Clear()
		return nil
	case "help", "?":
		fmt.Fprintln(s.out, shopHelp)
		return nil
	case "quit", "exit", "q":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q, try `help`", name)
	}
}

func (s *shop) showMenu(ctx context.Context) error {
	products, err := s.rt.app.Catalog.ListProducts(ctx)
	if err != nil {
		return err
	}
	s.menu = make(map[domain.ProductID]domain.Product, len(products))
	for _, p := range products {
		s.menu[p.ID] = p
	}
	renderMenu(s.out, products)
	return nil
}

// product prefers the menu already on screen and falls back to the API.
func (s *shop) product(ctx context.Context, id domain.ProductID) (domain.Product, error) {
	if p, ok := s.menu[id]; ok {
		return p, nil
	}
	return s.rt.app.Catalog.GetProduct(ctx, id)
}
