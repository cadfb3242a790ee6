package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/marble-idols/storefront/internal/catalog"
	"github.com/marble-idols/storefront/internal/domain"
	"github.com/marble-idols/storefront/internal/format"
)

func newCatalogCommand() *cobra.Command {
	var (
		query    string
		category string
	)
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the catalog view for a listing query string",
		Example: `  storefront catalog --query "materials=makrana&sort=price-low"
  storefront catalog --category ganesha --query "page=2"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			a, err := newApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.close()

			fetch := func(ctx context.Context) ([]domain.Product, error) {
				if category != "" {
					return a.catalog.ListProductsByCategory(ctx, category)
				}
				return a.catalog.ListProducts(ctx)
			}
			controller, err := catalog.NewController(fetch)
			if err != nil {
				return err
			}
			if err := controller.Load(ctx); err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
			return printView(cmd.OutOrStdout(), controller.View(catalog.FromQueryString(query)))
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "listing query string, e.g. materials=makrana&page=2")
	cmd.Flags().StringVar(&category, "category", "", "restrict to a category slug")
	return cmd
}

func printView(w io.Writer, view catalog.View) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SLUG\tNAME\tMATERIAL\tSTYLE\tPRICE")
	for _, p := range view.Items {
		material := "-"
		if p.Material != nil {
			material = p.Material.Title
		}
		style := string(p.PaintingStyle)
		if style == "" {
			style = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.Slug, p.Name, material, style, format.Price(p.Price))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\npage %d of %d, %d matching, query %q\n", view.State.Page, view.TotalPages, view.Total, view.Query)
	return err
}
