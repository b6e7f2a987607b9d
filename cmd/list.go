package cmd

import (
	"dbdocs/internal/listing"
	"dbdocs/internal/render"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:       "list <page>",
	Short:     "Print a listing, optionally filtered by category",
	Long:      "Print a listing. Pages: " + strings.Join(listing.PageNames(), ", "),
	Args:      cobra.ExactArgs(1),
	ValidArgs: listing.PageNames(),
	RunE:      runList,
}

func init() {
	listCmd.Flags().StringP("filter", "f", "All", "Category to show")
	listCmd.Flags().Bool("categories", false, "Print the category buttons instead of the rows")
}

func runList(cmd *cobra.Command, args []string) error {
	pt, err := listing.ParsePageType(args[0])
	if err != nil {
		return err
	}

	pages, _, err := loadPages()
	if err != nil {
		return err
	}
	page := pages[pt]
	if page == nil {
		return fmt.Errorf("page %s was not built", pt)
	}

	token, _ := cmd.Flags().GetString("filter")
	showCategories, _ := cmd.Flags().GetBool("categories")

	c := page.Controller(nil)
	c.SetFilter(token)

	if showCategories {
		return render.Buttons(cmd.OutOrStdout(), c)
	}
	return render.Listing(cmd.OutOrStdout(), page, c)
}
