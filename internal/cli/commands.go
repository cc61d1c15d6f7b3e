package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/papapizza/internal/checkout"
	"github.com/fjod/papapizza/internal/domain"
	"github.com/fjod/papapizza/internal/orders"
	"github.com/spf13/cobra"
)

func newMenuCmd(rt *runtime) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Show the menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if refresh {
				if err := rt.app.Catalog.Invalidate(ctx); err != nil {
					return err
				}
			}
			products, err := rt.app.Catalog.ListProducts(ctx)
			if err != nil {
				return err
			}
			renderMenu(cmd.OutOrStdout(), products)
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore the cached menu")
	return cmd
}

func newProductCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "product <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := rt.app.Catalog.GetProduct(cmd.Context(), domain.ProductID(args[0]))
			if err != nil {
				return err
			}
			renderProduct(cmd.OutOrStdout(), p)
			return nil
		},
	}
}

func newLoginCmd(rt *runtime) *cobra.Command {
	var creds domain.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to see your orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()
			var err error
			if creds.Email == "" {
				if creds.Email, err = prompt(out, in, "email"); err != nil {
					return err
				}
			}
			if creds.Password == "" {
				if creds.Password, err = prompt(out, in, "password"); err != nil {
					return err
				}
			}

			s, err := rt.app.Auth.Login(cmd.Context(), creds)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("logged in as client #%d", s.ClientID)))
			return nil
		},
	}
	cmd.Flags().StringVar(&creds.Email, "email", "", "account email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "account password (prompted when empty)")
	return cmd
}

func newRegisterCmd(rt *runtime) *cobra.Command {
	var reg domain.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()
			fields := []struct {
				label string
				value *string
			}{
				{"name", &reg.Name},
				{"email", &reg.Email},
				{"password", &reg.Password},
			}
			for _, f := range fields {
				if *f.value != "" {
					continue
				}
				v, err := prompt(out, in, f.label)
				if err != nil {
					return err
				}
				*f.value = v
			}
			if reg.PasswordConfirmation == "" {
				if !cmd.Flags().Changed("password") {
					v, err := prompt(out, in, "repeat password")
					if err != nil {
						return err
					}
					reg.PasswordConfirmation = v
				} else {
					reg.PasswordConfirmation = reg.Password
				}
			}

			s, err := rt.app.Auth.Register(cmd.Context(), reg)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("welcome, client #%d", s.ClientID)))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&reg.Name, "name", "", "your name")
	f.StringVar(&reg.Email, "email", "", "account email")
	f.StringVar(&reg.Phone, "phone", "", "contact phone")
	f.StringVar(&reg.Password, "password", "", "password, at least 6 characters")
	f.StringVar(&reg.PasswordConfirmation, "password-confirmation", "", "repeat the password")
	return cmd
}

func newLogoutCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.app.Auth.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func newOrdersCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "List your orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showOrders(cmd.Context(), rt, cmd.OutOrStdout())
		},
	}
}

func showOrders(ctx context.Context, rt *runtime, out io.Writer) error {
	s, err := rt.app.Auth.Current(ctx)
	if err != nil {
		return err
	}
	details, err := rt.app.Orders.HistoryDetails(ctx, s.ClientID)
	if err != nil {
		return err
	}
	renderOrders(out, details)
	return nil
}

func newOrderCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Place or inspect a single order",
	}
	cmd.AddCommand(newOrderShowCmd(rt), newOrderPlaceCmd(rt), newOrderWatchCmd(rt))
	return cmd
}

func parseOrderID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("order id %q: must be a positive integer", s)
	}
	return id, nil
}

func newOrderShowCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show an order and its status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseOrderID(args[0])
			if err != nil {
				return err
			}
			d, err := rt.app.Orders.Details(cmd.Context(), id)
			if err != nil {
				return err
			}
			renderOrderDetails(cmd.OutOrStdout(), d)
			return nil
		},
	}
}

func newOrderWatchCmd(rt *runtime) *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch <id>",
		Short: "Follow an order until it is delivered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseOrderID(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			w := orders.NewWatcher(rt.app.Orders, interval)
			_, err = w.Run(cmd.Context(), id, func(d domain.OrderDetails) {
				fmt.Fprintf(out, "%s order #%d is %s\n",
					mutedStyle.Render(time.Now().Format(time.TimeOnly)), d.ID, statusStyle(d.Status).Render(d.Status.String()))
			})
			return err
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", orders.DefaultWatchInterval, "poll interval")
	return cmd
}

func newOrderPlaceCmd(rt *runtime) *cobra.Command {
	var (
		items []string
		form  checkout.Form
	)
	cmd := &cobra.Command{
		Use:     "place",
		Short:   "Place an order in one go",
		Example: `  papapizza order place --item 1:2 --item 3 --address "Lenina 1, apt 5"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if strings.TrimSpace(form.Address) == "" {
				return checkout.ErrAddressRequired
			}
			for _, raw := range items {
				spec, err := parseItemSpec(raw)
				if err != nil {
					return err
				}
				p, err := rt.app.Catalog.GetProduct(ctx, spec.ID)
				if err != nil {
					return err
				}
				if _, err := rt.app.Cart.AddItem(p, spec.Quantity); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			renderCart(out, rt.app.Cart.Snapshot())
			conf, err := rt.app.Checkout.Checkout(ctx, form)
			if err != nil {
				return err
			}
			renderConfirmation(out, conf)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringArrayVar(&items, "item", nil, "product id with optional quantity, id[:qty]; repeatable")
	f.StringVar(&form.Address, "address", "", "delivery address")
	f.StringVar(&form.Comment, "comment", "", "note for the courier")
	f.StringVar(&form.Name, "name", "", "name for a guest order")
	f.StringVar(&form.Phone, "phone", "", "phone for a guest order")
	return cmd
}

func prompt(out io.Writer, in *bufio.Reader, label string) (string, error) {
	fmt.Fprintf(out, "%s: ", label)
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read %s: %w", label, err)
	}
	return strings.TrimSpace(line), nil
}
