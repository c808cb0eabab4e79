package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Allengabo/Yankicks-web/internal/catalog"
	"github.com/Allengabo/Yankicks-web/internal/checkout"
	"github.com/Allengabo/Yankicks-web/internal/domain"
	"github.com/Allengabo/Yankicks-web/internal/session"
	"github.com/spf13/cobra"
)

func newRootCmd(open storeOpener) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "shopper",
		Short:         "Browse YanKicks, keep a cart and place orders from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.apiURL, "api-url", "http://localhost:3000", "storefront API base URL")
	root.PersistentFlags().StringVar(&opts.dataPath, "data", defaultDataPath(), "local snapshot file")
	root.PersistentFlags().StringVar(&opts.redis, "redis", "", "keep snapshots in Redis at this address instead of a local file")
	root.PersistentFlags().StringVar(&opts.mongo, "mongo", "", "keep snapshots in MongoDB at this URI instead of a local file")
	root.PersistentFlags().StringVar(&opts.profile, "profile", "default", "snapshot namespace when using Redis or MongoDB")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "API request timeout")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")

	// run opens the app for one command and maps domain errors to messages.
	run := func(fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts, open)
			if err != nil {
				return err
			}
			defer a.Close()
			return userError("", fn(cmd, a, args))
		}
	}

	root.AddCommand(
		newProductsCmd(run),
		newCartCmd(run),
		newRegisterCmd(run),
		newLoginCmd(run),
		newLogoutCmd(run),
		newAccountCmd(run),
		newCheckoutCmd(run),
		newOrdersCmd(run),
	)
	return root
}

type runner func(fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error

func newProductsCmd(run runner) *cobra.Command {
	var category, order string
	var categories bool
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List the catalog",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			products, err := a.client.Products(cmd.Context())
			if err != nil {
				return err
			}
			if categories {
				for _, c := range catalog.Categories(products) {
					fmt.Fprintln(cmd.OutOrStdout(), c)
				}
				return nil
			}
			products = catalog.SortByPrice(catalog.FilterByCategory(products, category), order)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, p := range products {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					p.ID, p.Name, p.Category, catalog.FormatPeso(p.Price), catalog.Stars(p.Rating), catalog.ImageOrDefault(p))
			}
			return w.Flush()
		}),
	}
	cmd.Flags().StringVar(&category, "category", catalog.CategoryAll, "only show this category")
	cmd.Flags().StringVar(&order, "sort", "", "price order: low-high or high-low")
	cmd.Flags().BoolVar(&categories, "categories", false, "list the categories instead of products")
	return cmd
}

func newCartCmd(run runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show or change the cart",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			printCart(cmd.OutOrStdout(), a)
			return nil
		}),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <product-id>",
		Short: "Add one of a product",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			products, err := a.client.Products(cmd.Context())
			if err != nil {
				return err
			}
			for i := range products {
				if products[i].ID == id {
					if err := a.cart.AddItem(cmd.Context(), &products[i]); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s added to cart!\n", products[i].Name)
					return nil
				}
			}
			return fmt.Errorf("product %d not found", id)
		}),
	})

	quantity := func(use, short string, delta int) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <product-id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				if err := a.cart.UpdateQuantity(cmd.Context(), id, delta); err != nil {
					return err
				}
				printCart(cmd.OutOrStdout(), a)
				return nil
			}),
		}
	}
	cmd.AddCommand(
		quantity("inc", "Increase a line by one", 1),
		quantity("dec", "Decrease a line by one, removing it at zero", -1),
	)

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a line",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.cart.RemoveItem(cmd.Context(), id); err != nil {
				return err
			}
			printCart(cmd.OutOrStdout(), a)
			return nil
		}),
	})
	return cmd
}

func newRegisterCmd(run runner) *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			if err := a.gate.Register(cmd.Context(), name, email, password); err != nil {
				return userError("Registration Failed: ", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Registration successful! Please login.")
			return nil
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

func newLoginCmd(run runner) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in; replaces any current session",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			user, err := a.gate.Login(cmd.Context(), email, password)
			if err != nil {
				return userError("Login Failed: ", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome back, %s!\n", user.Name)
			return nil
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

func newLogoutCmd(run runner) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "End the session; the cart is kept",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			confirm := func() bool {
				if yes {
					return true
				}
				fmt.Fprint(cmd.OutOrStdout(), "Are you sure you want to logout? [y/N] ")
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				answer = strings.ToLower(strings.TrimSpace(answer))
				return answer == "y" || answer == "yes"
			}
			done, err := a.gate.Logout(cmd.Context(), confirm)
			if err != nil {
				return err
			}
			if done {
				fmt.Fprintln(cmd.OutOrStdout(), "Logged out successfully.")
			}
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newAccountCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "account",
		Short: "Show who is logged in",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			greeting, err := a.gate.Account()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), greeting)
			return nil
		}),
	}
}

func newCheckoutCmd(run runner) *cobra.Command {
	var details struct{ name, address, payment string }
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			res, err := a.flow.Submit(cmd.Context(), checkout.ShippingDetails{
				FullName: details.name,
				Address:  details.address,
			}, details.payment)
			if err != nil {
				return checkoutError(err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Order placed successfully!")
			fmt.Fprintf(out, "Order ID: %s\n", res.Code)
			fmt.Fprintf(out, "Total: %s\n", catalog.FormatPeso(res.Total))
			return nil
		}),
	}
	cmd.Flags().StringVar(&details.name, "name", "", "full name for shipping")
	cmd.Flags().StringVar(&details.address, "address", "", "shipping address")
	cmd.Flags().StringVar(&details.payment, "payment", domain.DefaultPaymentMethod, "payment method")
	return cmd
}

func newOrdersCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "Show order history, newest first",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			view, err := a.flow.History(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if view.Empty {
				fmt.Fprintln(out, view.EmptyMessage)
				return nil
			}
			for _, o := range view.Orders {
				fmt.Fprintf(out, "Order #%d  %s\n", o.ID, o.Status)
				fmt.Fprintf(out, "  Date: %s\n", o.CreatedAt.Local().Format("2006-01-02"))
				fmt.Fprintf(out, "  Total: %s\n", catalog.FormatPeso(o.TotalAmount))
				fmt.Fprintf(out, "  Payment: %s\n", o.PaymentMethod)
			}
			return nil
		}),
	}
}

func printCart(out io.Writer, a *app) {
	lines := a.cart.Lines()
	if len(lines) == 0 {
		fmt.Fprintln(out, "Your cart is empty.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, l := range lines {
		fmt.Fprintf(w, "%d\t%s\tx%d\t%s\n", l.ID, l.Name, l.Quantity, catalog.FormatPeso(l.Subtotal()))
	}
	w.Flush()
	fmt.Fprintf(out, "Items: %d\n", a.cart.ItemCount())
	fmt.Fprintf(out, "Total: %s\n", catalog.FormatPeso(a.cart.Total()))
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid product id %q", s)
	}
	return id, nil
}

// checkoutError turns validation fields into the storefront's form messages.
func checkoutError(err error) error {
	var derr *domain.Error
	if errors.As(err, &derr) && derr.Kind == domain.KindValidation {
		if slices.Contains(derr.Fields, "cart") {
			return errors.New("Your cart is empty.")
		}
		if slices.Contains(derr.Fields, "fullName") || slices.Contains(derr.Fields, "address") {
			return errors.New("Please fill in your shipping details.")
		}
	}
	return userError("Checkout failed: ", err)
}

// userError reduces err to something fit for the terminal. Connectivity and
// unknown failures collapse to the generic retry hint; the cause stays in the
// verbose log.
func userError(prefix string, err error) error {
	if err == nil {
		return nil
	}
	var redirect *session.Redirect
	if errors.As(err, &redirect) {
		return fmt.Errorf("%s Run: shopper login", redirect.Message)
	}
	var derr *domain.Error
	if errors.As(err, &derr) {
		return errors.New(prefix + domain.UserMessage(err))
	}
	if prefix == "" {
		return err
	}
	return fmt.Errorf("%s%w", prefix, err)
}
