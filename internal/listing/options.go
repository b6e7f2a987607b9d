package listing

import (
	"dbdocs/pkg/config"
	"fmt"
)

// OptionsFromConfig validates the listing section of the configuration.
func OptionsFromConfig(cfg config.ListingConfig) (Options, error) {
	opts := Options{ObjectLayout: LayoutCurrent}

	switch Layout(cfg.ObjectLayout) {
	case "", LayoutCurrent:
	case LayoutLegacy:
		opts.ObjectLayout = LayoutLegacy
	default:
		return Options{}, fmt.Errorf("invalid object layout '%s'. Valid layouts: %s, %s", cfg.ObjectLayout, LayoutCurrent, LayoutLegacy)
	}

	if len(cfg.Fields) > 0 {
		opts.Fields = make(map[PageType]string, len(cfg.Fields))
		for name, field := range cfg.Fields {
			page, err := ParsePageType(name)
			if err != nil {
				return Options{}, fmt.Errorf("invalid field override: %w", err)
			}
			if !Policies[page].Filterable() {
				return Options{}, fmt.Errorf("page %s has no category filter", page)
			}
			if !hasField(Header(page, opts.ObjectLayout), field) {
				return Options{}, fmt.Errorf("page %s has no column %q", page, field)
			}
			opts.Fields[page] = field
		}
	}

	return opts, nil
}

func hasField(header []string, field string) bool {
	for _, h := range header {
		if h == field {
			return true
		}
	}
	return false
}
