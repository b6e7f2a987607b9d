package filter

import (
	"errors"
	"fmt"
)

// ErrUnknownButton is returned when a click names a button the listing does
// not have.
var ErrUnknownButton = errors.New("unknown filter button")

// Category is a static filter button definition.
type Category struct {
	Label string
	Token string
}

// Policy describes how a listing is filtered.
type Policy struct {
	Locator Locator
	Case    CaseMode
	// Categories are the buttons after All. Ignored when Dynamic is set.
	Categories []Category
	// Dynamic derives the buttons from the values of the designated column.
	Dynamic bool
}

// Filterable reports whether the policy designates a column at all.
func (p Policy) Filterable() bool {
	return !p.Locator.IsZero()
}

// Button is a category button as presented to the user.
type Button struct {
	ID     string
	Label  string
	Token  string
	Active bool
}

// Widget is the table collaborator redrawn on every filter change.
type Widget interface {
	Draw(visible []int)
}

// Controller owns the filter state of one listing: the active token and the
// active button. Its methods are the only mutators of that state. It is not
// safe for concurrent use.
type Controller struct {
	data    Dataset
	policy  Policy
	locator Locator
	widget  Widget

	buttons      []Button
	activeToken  string
	activeButton int
}

// NewController creates a controller in the unfiltered state. widget may be
// nil.
func NewController(data Dataset, policy Policy, widget Widget) *Controller {
	c := &Controller{
		data:         data,
		policy:       policy,
		locator:      policy.Locator.Bind(data.Header),
		widget:       widget,
		activeToken:  All,
		activeButton: -1,
	}
	c.buttons = c.buildButtons()
	return c
}

func (c *Controller) buildButtons() []Button {
	buttons := []Button{{ID: All, Label: All, Token: All}}
	if !c.policy.Filterable() {
		return buttons
	}

	if c.policy.Dynamic {
		for _, token := range DeriveCategories(c.data, c.locator, c.policy.Case)[1:] {
			buttons = append(buttons, Button{ID: token, Label: token, Token: token})
		}
		return buttons
	}

	for _, cat := range c.policy.Categories {
		label := cat.Label
		if label == "" {
			label = cat.Token
		}
		buttons = append(buttons, Button{ID: cat.Token, Label: label, Token: cat.Token})
	}
	return buttons
}

// Data returns the dataset the controller filters.
func (c *Controller) Data() Dataset {
	return c.data
}

// Policy returns the filter policy of the listing.
func (c *Controller) Policy() Policy {
	return c.policy
}

// Buttons returns the buttons of the listing, All first.
func (c *Controller) Buttons() []Button {
	out := make([]Button, len(c.buttons))
	copy(out, c.buttons)
	if c.activeButton >= 0 {
		out[c.activeButton].Active = true
	}
	return out
}

// ActiveToken returns the token currently filtering the listing.
func (c *Controller) ActiveToken() string {
	return c.activeToken
}

// ActiveButton returns the active button, if any. The unfiltered state has
// none.
func (c *Controller) ActiveButton() (Button, bool) {
	if c.activeButton < 0 {
		return Button{}, false
	}
	b := c.buttons[c.activeButton]
	b.Active = true
	return b, true
}

// Visible returns the positions of the rows visible under the active token.
func (c *Controller) Visible() []int {
	return ComputeVisibleRows(c.data, c.activeToken, c.locator, c.policy.Case)
}

// SetFilter replaces the active token and redraws. The button carrying the
// token, if there is one, becomes the active button.
func (c *Controller) SetFilter(token string) {
	c.activeButton = -1
	if !IsAll(token) {
		want := Normalize(token, c.policy.Case)
		for i, b := range c.buttons[1:] {
			if Normalize(b.Token, c.policy.Case) == want {
				c.activeButton = i + 1
				break
			}
		}
	}
	c.apply(token)
}

// Click activates the button with the given id. Clicking All, or clicking the
// already active button, returns the listing to the unfiltered state.
func (c *Controller) Click(id string) error {
	idx := -1
	for i, b := range c.buttons {
		if b.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownButton, id)
	}
	return c.ClickIndex(idx)
}

// ClickIndex activates the n-th button, All being 0.
func (c *Controller) ClickIndex(idx int) error {
	if idx < 0 || idx >= len(c.buttons) {
		return fmt.Errorf("%w: #%d", ErrUnknownButton, idx)
	}

	if idx == 0 || idx == c.activeButton {
		c.activeButton = -1
		c.apply(All)
		return nil
	}

	c.activeButton = idx
	c.apply(c.buttons[idx].Token)
	return nil
}

func (c *Controller) apply(token string) {
	c.activeToken = token
	c.Redraw()
}

// Redraw hands the current visible set to the widget.
func (c *Controller) Redraw() {
	if c.widget != nil {
		c.widget.Draw(c.Visible())
	}
}
