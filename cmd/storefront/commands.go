package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/charro/storefront/internal/domain/cart"
	"github.com/charro/storefront/internal/domain/catalog"
	"github.com/charro/storefront/internal/infrastructure/shopapi"
	"github.com/charro/storefront/internal/storefront"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func productsCommand() *cli.Command {
	return &cli.Command{
		Name:  "products",
		Usage: "list the catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "gender", Aliases: []string{"g"}, Usage: "men, women, kid or unisex"},
		},
		Action: action(func(ctx context.Context, c *cli.Context, e *env) error {
			products, err := e.api.ListProducts(ctx, c.String("gender"))
			if err != nil {
				return err
			}
			printProducts(products)
			return nil
		}),
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "search products by title or tag",
		ArgsUsage: "<query>",
		Action: action(func(ctx context.Context, c *cli.Context, e *env) error {
			if c.NArg() == 0 {
				return cli.Exit("usage: storefront search <query>", 1)
			}
			products, err := e.api.SearchProducts(ctx, c.Args().First())
			if err != nil {
				return err
			}
			printProducts(products)
			return nil
		}),
	}
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "add a product to the cart",
		ArgsUsage: "<slug> <size> [quantity]",
		Action: action(func(ctx context.Context, c *cli.Context, e *env) error {
			if c.NArg() < 2 {
				return cli.Exit("usage: storefront add <slug> <size> [quantity]", 1)
			}
			qty, err := quantityArg(c, 2, 1)
			if err != nil {
				return err
			}
			size, err := catalog.ParseSize(c.Args().Get(1))
			if err != nil {
				return err
			}

			p, err := e.api.GetProduct(ctx, c.Args().First())
			if err != nil {
				return err
			}
			item, err := lineFromProduct(p, size, qty)
			if err != nil {
				return err
			}
			if err := e.session.AddProduct(ctx, item); err != nil {
				return err
			}
			printCart(e.session.State())
			return nil
		}),
	}
}

func updateCommand() *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "change the quantity of a cart line",
		ArgsUsage: "<slug> <size> <quantity>",
		Action: action(func(ctx context.Context, c *cli.Context, e *env) error {
			if c.NArg() < 3 {
				return cli.Exit("usage: storefront update <slug> <size> <quantity>", 1)
			}
			qty, err := quantityArg(c, 2, 0)
			if err != nil {
				return err
			}
			line, err := findLine(e.session.State(), c.Args().First(), c.Args().Get(1))
			if err != nil {
				return err
			}
			line.Quantity = qty
			if err := e.session.UpdateQuantity(ctx, line); err != nil {
				return err
			}
			printCart(e.session.State())
			return nil
		}),
	}
}

func removeCommand() *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Usage:     "drop a line from the cart",
		ArgsUsage: "<slug> <size>",
		Action: action(func(ctx context.Context, c *cli.Context, e *env) error {
			if c.NArg() < 2 {
				return cli.Exit("usage: storefront remove <slug> <size>", 1)
			}
			line, err := findLine(e.session.State(), c.Args().First(), c.Args().Get(1))
			if err != nil {
				return err
			}
			if err := e.session.RemoveProduct(ctx, line); err != nil {
				return err
			}
			printCart(e.session.State())
			return nil
		}),
	}
}

func cartCommand() *cli.Command {
	return &cli.Command{
		Name:    "cart",
		Aliases: []string{"summary"},
		Usage:   "show the cart and its totals",
		Action: action(func(_ context.Context, _ *cli.Context, e *env) error {
			state := e.session.State()
			printCart(state)
			if state.HasAddress() {
				a := state.ShippingAddress
				fmt.Printf("\nShip to: %s %s, %s, %s %s, %s\n", a.FirstName, a.LastName, a.Address, a.Zip, a.City, a.Country)
			}
			return nil
		}),
	}
}

func addressCommand() *cli.Command {
	return &cli.Command{
		Name:  "address",
		Usage: "set the shipping address",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "first-name", Required: true},
			&cli.StringFlag{Name: "last-name", Required: true},
			&cli.StringFlag{Name: "address", Required: true},
			&cli.StringFlag{Name: "address2"},
			&cli.StringFlag{Name: "zip", Required: true},
			&cli.StringFlag{Name: "city", Required: true},
			&cli.StringFlag{Name: "country", Required: true},
			&cli.StringFlag{Name: "phone", Required: true},
		},
		Action: action(func(ctx context.Context, c *cli.Context, e *env) error {
			addr := cart.ShippingAddress{
				FirstName: c.String("first-name"),
				LastName:  c.String("last-name"),
				Address:   c.String("address"),
				Address2:  c.String("address2"),
				Zip:       c.String("zip"),
				City:      c.String("city"),
				Country:   c.String("country"),
				Phone:     c.String("phone"),
			}
			if err := e.session.UpdateAddress(ctx, addr); err != nil {
				return err
			}
			fmt.Println("Shipping address saved")
			return nil
		}),
	}
}

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "sign in and remember the token for checkout",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"STOREFRONT_PASSWORD"}},
		},
		Action: action(func(ctx context.Context, c *cli.Context, e *env) error {
			res, err := e.api.Login(ctx, c.String("email"), c.String("password"))
			if err != nil {
				return err
			}
			if err := e.store.Set(ctx, keyToken, res.Token); err != nil {
				return fmt.Errorf("save token: %w", err)
			}
			fmt.Printf("Signed in as %s (%s)\n", res.User.Name, res.User.Role)
			return nil
		}),
	}
}

func checkoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "checkout",
		Usage: "place an order for the cart",
		Action: action(func(ctx context.Context, _ *cli.Context, e *env) error {
			if e.api.Token() == "" {
				return cli.Exit("not signed in: run storefront login first", 1)
			}
			result, err := e.session.CreateOrder(ctx)
			if errors.Is(err, storefront.ErrNoShippingAddress) {
				return cli.Exit("no shipping address: run storefront address first", 1)
			}
			if err != nil {
				e.log.Warn("Order placed but the cart could not be cleared", zap.Error(err))
			}
			if result.HasError {
				return cli.Exit("order failed: "+result.Message, 1)
			}
			fmt.Println("Order placed:", result.Message)
			return nil
		}),
	}
}

func quantityArg(c *cli.Context, index, fallback int) (int, error) {
	raw := c.Args().Get(index)
	if raw == "" {
		if fallback > 0 {
			return fallback, nil
		}
		return 0, cli.Exit("quantity required", 1)
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, cli.Exit("quantity must be a positive number", 1)
	}
	return n, nil
}

func lineFromProduct(p *shopapi.Product, size catalog.Size, qty int) (cart.LineItem, error) {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return cart.LineItem{}, fmt.Errorf("product %s has invalid id: %w", p.Slug, err)
	}
	offered := false
	for _, s := range p.Sizes {
		if s == size.String() {
			offered = true
			break
		}
	}
	if !offered {
		return cart.LineItem{}, fmt.Errorf("%s is not available in size %s", p.Title, size)
	}
	image := ""
	if len(p.Images) > 0 {
		image = p.Images[0]
	}
	return cart.LineItem{
		ProductID: id,
		Slug:      p.Slug,
		Title:     p.Title,
		Image:     image,
		Gender:    catalog.Gender(p.Gender),
		Size:      size,
		Price:     p.Price,
		Quantity:  qty,
	}, nil
}

func findLine(state cart.State, slug, rawSize string) (cart.LineItem, error) {
	size, err := catalog.ParseSize(rawSize)
	if err != nil {
		return cart.LineItem{}, err
	}
	for _, l := range state.Lines {
		if l.Slug == slug && l.Size == size {
			return l, nil
		}
	}
	return cart.LineItem{}, fmt.Errorf("%s in size %s is not in the cart", slug, size)
}

func printProducts(products []shopapi.Product) {
	if len(products) == 0 {
		fmt.Println("No products found")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SLUG\tTITLE\tPRICE\tSTOCK\tSIZES")
	for _, p := range products {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%v\n", p.Slug, p.Title, p.Price.StringFixed(2), p.InStock, p.Sizes)
	}
	_ = w.Flush()
}

func printCart(state cart.State) {
	if len(state.Lines) == 0 {
		fmt.Println("Cart is empty")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SLUG\tSIZE\tQTY\tPRICE")
	for _, l := range state.Lines {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", l.Slug, l.Size, l.Quantity, l.Price.StringFixed(2))
	}
	s := state.Summary
	fmt.Fprintf(w, "\t\tItems\t%d\n", s.NumberOfItems)
	fmt.Fprintf(w, "\t\tSubtotal\t%s\n", s.SubTotal.StringFixed(2))
	fmt.Fprintf(w, "\t\tTax\t%s\n", s.Tax.StringFixed(2))
	fmt.Fprintf(w, "\t\tTotal\t%s\n", s.Total.StringFixed(2))
	_ = w.Flush()
}
