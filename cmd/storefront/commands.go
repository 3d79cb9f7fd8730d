package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/command"
	"github.com/example/storefront/internal/domain/catalog"
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/domain/settings"
	"github.com/example/storefront/internal/infrastructure/receipt"
)

var errUsage = errors.New("usage")

// errorBody is printed instead of a result when a command fails.
type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// dispatch runs args[0] and prints its result as JSON.
func (a *app) dispatch(ctx context.Context, args []string) int {
	if len(args) == 0 {
		flag.Usage()
		return 2
	}

	result, err := a.exec(ctx, args[0], args[1:])
	switch {
	case errors.Is(err, errUsage):
		fmt.Fprintf(os.Stderr, "invalid arguments for %q\n", args[0])
		flag.Usage()
		return 2
	case err != nil:
		code := apperr.CodeOf(err)
		if code == "" {
			a.logger.Error("command failed", "command", args[0], "error", err)
			code = "INTERNAL"
		}
		a.print(errorBody{Error: string(code), Field: apperr.FieldOf(err)})
		return 1
	}
	a.print(result)
	return 0
}

func (a *app) print(v any) {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		a.logger.Error("failed to write output", "error", err)
	}
}

func (a *app) exec(ctx context.Context, name string, args []string) (any, error) {
	switch name {
	// Customer commands
	case "catalog":
		return a.queries.ListCatalog(categoryArg(args)), nil
	case "cart":
		return a.queries.GetCart(ctx)
	case "add":
		id, err := oneArg(args)
		if err != nil {
			return nil, err
		}
		return a.commands.AddToCart(ctx, command.AddToCart{ProductID: id})
	case "inc", "dec":
		id, err := oneArg(args)
		if err != nil {
			return nil, err
		}
		delta := 1
		if name == "dec" {
			delta = -1
		}
		return a.commands.UpdateQuantity(ctx, command.UpdateQuantity{ProductID: id, Delta: delta})
	case "remove":
		id, err := oneArg(args)
		if err != nil {
			return nil, err
		}
		if err := a.commands.RemoveFromCart(ctx, command.RemoveFromCart{ProductID: id}); err != nil {
			return nil, err
		}
		return a.queries.GetCart(ctx)
	case "clear":
		if err := a.commands.ClearCart(ctx, command.ClearCart{}); err != nil {
			return nil, err
		}
		return a.queries.GetCart(ctx)
	case "ship":
		method, err := oneArg(args)
		if err != nil {
			return nil, err
		}
		if err := a.commands.SetShipping(ctx, command.SetShipping{Method: method}); err != nil {
			return nil, err
		}
		return a.queries.GetCart(ctx)
	case "checkout":
		form, err := parseCheckout(args)
		if err != nil {
			return nil, err
		}
		return a.commands.PlaceOrder(ctx, command.PlaceOrder{Form: form})
	case "receipt":
		return a.writeReceipt(ctx, args)
	case "receipt-verify":
		return a.verifyReceipt(ctx, args)

	// Admin commands
	case "login":
		return a.login(ctx, args)
	case "logout":
		if err := a.sessions.Logout(ctx); err != nil {
			return nil, err
		}
		return a.sessions.Status(ctx)
	case "session":
		return a.sessions.Status(ctx)
	case "orders":
		f, err := parseOrderFilter(args)
		if err != nil {
			return nil, err
		}
		return a.queries.ListOrders(ctx, f)
	case "order":
		id, err := oneArg(args)
		if err != nil {
			return nil, err
		}
		return a.queries.GetOrder(ctx, id)
	case "status":
		if len(args) != 2 {
			return nil, errUsage
		}
		return a.commands.UpdateOrderStatus(ctx, command.UpdateOrderStatus{OrderID: args[0], Status: args[1]})
	case "stats":
		return a.queries.Dashboard(ctx)
	case "products":
		f, err := parseProductFilter(args)
		if err != nil {
			return nil, err
		}
		return a.queries.ListProducts(ctx, f)
	case "product-save":
		p, err := parseProduct(args)
		if err != nil {
			return nil, err
		}
		return a.commands.SaveProduct(ctx, command.SaveProduct{Product: p})
	case "product-delete":
		id, err := oneArg(args)
		if err != nil {
			return nil, err
		}
		if err := a.commands.DeleteProduct(ctx, command.DeleteProduct{ProductID: id}); err != nil {
			return nil, err
		}
		return a.queries.ListProducts(ctx, product.Filter{})
	case "settings":
		return a.queries.GetSettings(ctx)
	case "settings-save":
		s, err := parseSettings(args)
		if err != nil {
			return nil, err
		}
		return a.commands.SaveSettings(ctx, command.SaveSettings{Settings: s})
	case "hash-password":
		password, err := oneArg(args)
		if err != nil {
			return nil, err
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return nil, err
		}
		return map[string]string{"passwordHash": hash}, nil
	default:
		return nil, errUsage
	}
}

func oneArg(args []string) (string, error) {
	if len(args) != 1 || args[0] == "" {
		return "", errUsage
	}
	return args[0], nil
}

func categoryArg(args []string) catalog.Category {
	if len(args) == 0 {
		return catalog.CategoryAll
	}
	return catalog.Category(args[0])
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseCheckout(args []string) (order.CheckoutForm, error) {
	var f order.CheckoutForm
	fs := newFlagSet("checkout")
	fs.StringVar(&f.Customer.Name, "name", "", "full name")
	fs.StringVar(&f.Customer.Email, "email", "", "email address")
	fs.StringVar(&f.Customer.Phone, "phone", "", "phone number")
	fs.StringVar(&f.Address.Address, "address", "", "street address")
	fs.StringVar(&f.Address.Province, "province", "", "province")
	fs.StringVar(&f.Address.City, "city", "", "city")
	fs.StringVar(&f.Address.PostalCode, "postal", "", "postal code")
	fs.StringVar(&f.PaymentMethod, "payment", "", "payment method")
	if err := fs.Parse(args); err != nil {
		return order.CheckoutForm{}, errUsage
	}
	return f, nil
}

func parseOrderFilter(args []string) (order.Filter, error) {
	var status, from, to string
	fs := newFlagSet("orders")
	fs.StringVar(&status, "status", "", "pending|processing|completed|cancelled")
	fs.StringVar(&from, "from", "", "RFC 3339 lower bound on createdAt (inclusive)")
	fs.StringVar(&to, "to", "", "RFC 3339 upper bound on createdAt (exclusive)")
	if err := fs.Parse(args); err != nil {
		return order.Filter{}, errUsage
	}

	f := order.Filter{Status: order.Status(status)}
	var err error
	if from != "" {
		if f.From, err = time.Parse(time.RFC3339, from); err != nil {
			return order.Filter{}, errUsage
		}
	}
	if to != "" {
		if f.To, err = time.Parse(time.RFC3339, to); err != nil {
			return order.Filter{}, errUsage
		}
	}
	return f, nil
}

func parseProductFilter(args []string) (product.Filter, error) {
	var f product.Filter
	fs := newFlagSet("products")
	fs.StringVar(&f.Search, "search", "", "case-insensitive name substring")
	if err := fs.Parse(args); err != nil {
		return product.Filter{}, errUsage
	}
	f.Category = categoryArg(fs.Args())
	return f, nil
}

func parseProduct(args []string) (product.Product, error) {
	var p product.Product
	var category, price string
	fs := newFlagSet("product-save")
	fs.StringVar(&p.ID, "id", "", "product id to update; empty creates")
	fs.StringVar(&p.Name, "name", "", "product name")
	fs.StringVar(&category, "category", "", "fashion|sports|electronics")
	fs.StringVar(&price, "price", "", "price")
	fs.StringVar(&p.Description, "description", "", "description")
	fs.StringVar(&p.Image, "image", "", "image url")
	if err := fs.Parse(args); err != nil {
		return product.Product{}, errUsage
	}
	p.Category = catalog.Category(category)
	if price != "" {
		n, err := strconv.Atoi(price)
		if err != nil {
			return product.Product{}, apperr.ErrInvalidProduct.WithField("price")
		}
		p.Price = n
	}
	return p, nil
}

func parseSettings(args []string) (settings.Settings, error) {
	var s settings.Settings
	fs := newFlagSet("settings-save")
	fs.StringVar(&s.StoreName, "name", "", "store name")
	fs.StringVar(&s.StoreDescription, "description", "", "store description")
	fs.StringVar(&s.ThemeColor, "color", settings.DefaultThemeColor, "theme color")
	if err := fs.Parse(args); err != nil {
		return settings.Settings{}, errUsage
	}
	return s, nil
}

func (a *app) login(ctx context.Context, args []string) (any, error) {
	var username, password string
	var remember bool
	fs := newFlagSet("login")
	fs.StringVar(&username, "user", "", "admin username")
	fs.StringVar(&password, "password", "", "admin password")
	fs.BoolVar(&remember, "remember", false, "remember the username")
	if err := fs.Parse(args); err != nil {
		return nil, errUsage
	}
	if username == "" {
		remembered, err := a.sessions.RememberedUser(ctx)
		if err != nil {
			return nil, err
		}
		username = remembered
	}
	return a.sessions.Login(ctx, username, password, remember)
}

func (a *app) writeReceipt(ctx context.Context, args []string) (any, error) {
	if len(args) != 2 {
		return nil, errUsage
	}
	o, err := a.queries.GetOrder(ctx, args[0])
	if err != nil {
		return nil, err
	}
	png, err := a.receipts.PNG(o)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(args[1], png, 0o644); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(receipt.PayloadOf(o))
	if err != nil {
		return nil, err
	}
	return map[string]string{"orderId": o.ID, "file": args[1], "payload": string(payload)}, nil
}

// receiptCheck is the result of scanning a receipt against the stored order.
type receiptCheck struct {
	OrderID string       `json:"orderId"`
	Status  order.Status `json:"status"`
	Valid   bool         `json:"valid"`
}

func (a *app) verifyReceipt(ctx context.Context, args []string) (any, error) {
	raw, err := oneArg(args)
	if err != nil {
		return nil, err
	}
	p, err := receipt.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	o, err := a.queries.GetOrder(ctx, p.OrderID)
	if err != nil {
		return nil, err
	}
	return receiptCheck{OrderID: o.ID, Status: o.Status, Valid: p.Matches(o)}, nil
}
