package cmd

import (
	"dbdocs/internal/listing"
	"dbdocs/internal/ui/browse"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:       "browse [page]",
	Short:     "Browse the listings interactively",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: listing.PageNames(),
	RunE:      runBrowse,
}

func runBrowse(cmd *cobra.Command, args []string) error {
	var start listing.PageType
	if len(args) == 1 {
		pt, err := listing.ParsePageType(args[0])
		if err != nil {
			return err
		}
		start = pt
	}

	built, _, err := loadPages()
	if err != nil {
		return err
	}

	if start == "" {
		if start, err = pickPage(built); err != nil {
			return err
		}
	}

	pages := make([]*listing.Page, 0, len(listing.PageTypes))
	for _, pt := range listing.PageTypes {
		if p := built[pt]; p != nil {
			pages = append(pages, p)
		}
	}
	if len(pages) == 0 {
		return fmt.Errorf("no listings to browse")
	}

	if _, err := tea.NewProgram(browse.New(pages, start), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("failed to run browser: %w", err)
	}
	return nil
}

func pickPage(pages map[listing.PageType]*listing.Page) (listing.PageType, error) {
	options := make([]huh.Option[listing.PageType], 0, len(listing.PageTypes))
	for _, pt := range listing.PageTypes {
		p := pages[pt]
		if p == nil {
			continue
		}
		options = append(options, huh.NewOption(fmt.Sprintf("%s (%d)", p.Title, p.Data.Len()), pt))
	}

	start := listing.Objects
	err := huh.NewSelect[listing.PageType]().
		Title("Which listing?").
		Options(options...).
		Value(&start).
		Run()
	if err != nil {
		return "", fmt.Errorf("failed to pick a listing: %w", err)
	}
	return start, nil
}
