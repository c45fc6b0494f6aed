package controls

import (
	"fmt"
	"sync"
)

// ControlKind is the interaction primitive a control renders as.
type ControlKind string

// Control kinds.
const (
	KindToggle    ControlKind = "toggle"
	KindSlider    ControlKind = "slider"
	KindSelect    ControlKind = "select"
	KindButtonRow ControlKind = "button_row"
	KindReadout   ControlKind = "readout"
	KindImage     ControlKind = "image"
	KindColour    ControlKind = "colour"
)

// Option is one selectable entry of a select or button-row control.
type Option struct {
	Value string
	Label string
	Icon  string
}

// Control is one interactive element of a detail panel.
//
// Value flows two ways: Set carries a user interaction out as a
// command, refresh carries hub state back in. The focus guard sits on
// the inbound path only; a control the user is holding never has its
// value yanked away by a refresh.
type Control struct {
	ID    string
	Kind  ControlKind
	Label string
	Unit  string

	// Slider bounds. Step zero means continuous.
	Min, Max, Step float64

	Options []Option

	mu      sync.Mutex
	value   any
	focused bool
	apply   func(any) error
}

// Value returns the current control value.
func (c *Control) Value() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Focused reports whether the user is interacting with the control.
func (c *Control) Focused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focused
}

// SetFocused marks the start or end of a user interaction. While set,
// refreshes leave the control's value alone.
func (c *Control) SetFocused(focused bool) {
	c.mu.Lock()
	c.focused = focused
	c.mu.Unlock()
}

// Set records a user interaction: the value is applied optimistically
// and the control's action fires. The hub's next state report is the
// authoritative outcome.
func (c *Control) Set(value any) error {
	c.mu.Lock()
	apply := c.apply
	c.value = value
	c.mu.Unlock()

	if apply == nil {
		return fmt.Errorf("%w: %q", ErrReadOnlyControl, c.ID)
	}
	return apply(value)
}

// Nudge moves a stepped numeric control by direction steps (+1/-1),
// clamped to the control's bounds. Taps accumulate on the optimistic
// local value, so bursts land on the intended final figure even while
// the command behind them is still debouncing.
func (c *Control) Nudge(direction int) error {
	c.mu.Lock()
	cur, ok := c.value.(float64)
	step := c.Step
	c.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %q has no numeric value", ErrInvalidValue, c.ID)
	}
	if step == 0 {
		step = 1
	}
	next := cur + float64(direction)*step
	if next < c.Min {
		next = c.Min
	}
	if next > c.Max {
		next = c.Max
	}
	return c.Set(next)
}

// refresh updates the value from hub state unless the user currently
// holds the control.
func (c *Control) refresh(value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.focused {
		return
	}
	c.value = value
}

// Panel is the detail surface for one entity: an ordered list of
// controls the view layer renders without domain knowledge.
type Panel struct {
	EntityID string
	Title    string
	Controls []*Control
}

// Control returns the control with the given id.
func (p *Panel) Control(id string) (*Control, bool) {
	for _, c := range p.Controls {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// refreshValue updates a single control by id, honouring focus.
func (p *Panel) refreshValue(id string, value any) {
	if c, ok := p.Control(id); ok {
		c.refresh(value)
	}
}
