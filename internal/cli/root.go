package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fjod/papapizza/internal/api"
	"github.com/fjod/papapizza/internal/app"
	"github.com/fjod/papapizza/internal/auth"
	"github.com/fjod/papapizza/internal/cart"
	"github.com/fjod/papapizza/internal/catalog"
	"github.com/fjod/papapizza/internal/checkout"
	"github.com/fjod/papapizza/internal/config"
	"github.com/fjod/papapizza/internal/orders"
	"github.com/spf13/cobra"
)

// runtime is filled in by the root PersistentPreRunE, once flags are parsed.
type runtime struct {
	app *app.App
}

type rootFlags struct {
	configPath   string
	apiURL       string
	logLevel     string
	sessionStore string
}

func (rt *runtime) close() {
	if rt.app != nil {
		rt.app.Close()
		rt.app = nil
	}
}

func newRootCmd(rt *runtime) *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:           "papapizza",
		Short:         "Order pizza from the terminal",
		Long:          "papapizza browses the menu, keeps a cart, places orders and tracks them.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			a, err := app.New(cmd.Context(), cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			rt.app = a
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default ~/.papapizza/config.yaml)")
	pf.StringVar(&flags.apiURL, "api-url", "", "vendor API base URL")
	pf.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&flags.sessionStore, "session-store", "", "memory, file or redis")

	root.AddCommand(
		newMenuCmd(rt),
		newProductCmd(rt),
		newLoginCmd(rt),
		newRegisterCmd(rt),
		newLogoutCmd(rt),
		newOrdersCmd(rt),
		newOrderCmd(rt),
		newShopCmd(rt),
	)
	return root
}

func loadConfig(flags rootFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.apiURL != "" {
		cfg.API.URL = flags.apiURL
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.sessionStore != "" {
		cfg.Session.Store = flags.sessionStore
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Execute runs the storefront CLI and returns the process exit code.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	rt := &runtime{}
	defer rt.close()

	root := newRootCmd(rt)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, errorStyle.Render("error:"), explain(err))
		return 1
	}
	return 0
}

// explain turns the errors a customer can act on into a hint.
func explain(err error) string {
	switch {
	case api.IsUnauthorized(err), errors.Is(err, auth.ErrNoSession):
		return "you are not logged in, run `papapizza login` first"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "wrong email or password"
	case errors.Is(err, checkout.ErrAddressRequired):
		return "a delivery address is required"
	case errors.Is(err, checkout.ErrEmptyCart):
		return "the cart is empty, add something first"
	case errors.Is(err, cart.ErrInvalidQuantity):
		return "quantity must be at least 1"
	case errors.Is(err, catalog.ErrProductNotFound):
		return err.Error()
	case errors.Is(err, orders.ErrOrderNotFound):
		return err.Error()
	case errors.Is(err, orders.ErrOrderRejected):
		return "the pizzeria did not accept the order: " + err.Error()
	case errors.Is(err, api.ErrUnavailable):
		return "the pizzeria is not reachable right now, try again later (" + err.Error() + ")"
	default:
		return err.Error()
	}
}
