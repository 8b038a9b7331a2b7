// Package irq implements the HuC6280 bus's three-source interrupt
// controller: TIRQ (from the timer), IRQ1 (from the VDC), and IRQ2
// (external, e.g. an expansion device the core does not model).
package irq

import "pcecore/internal/debug"

// Source identifies one of the three interrupt lines.
type Source uint8

const (
	TIRQ Source = iota
	IRQ1
	IRQ2
)

func (s Source) mask() uint8 {
	switch s {
	case IRQ2:
		return 1 << 0
	case IRQ1:
		return 1 << 1
	case TIRQ:
		return 1 << 2
	}
	return 0
}

// Vector returns this source's interrupt vector address.
func (s Source) Vector() uint16 {
	switch s {
	case IRQ2:
		return 0xFFF6
	case IRQ1:
		return 0xFFF8
	case TIRQ:
		return 0xFFFA
	}
	return 0xFFFA
}

func (s Source) String() string {
	switch s {
	case IRQ2:
		return "IRQ2"
	case IRQ1:
		return "IRQ1"
	case TIRQ:
		return "TIRQ"
	}
	return "?"
}

// priority, highest first
var priorityOrder = [3]Source{IRQ2, IRQ1, TIRQ}

// Controller holds the disable (mask) and request bit registers. Bit
// layout for both registers: bit0=IRQ2, bit1=IRQ1, bit2=TIRQ. A set
// disable bit masks that source; a set request bit means that source is
// asserting. Both are exported so a save-state snapshot can copy them
// directly.
type Controller struct {
	Disable uint8
	Request uint8

	logger *debug.Logger
}

// New creates a controller with every source unmasked and idle.
func New(logger *debug.Logger) *Controller {
	return &Controller{logger: logger}
}

// Reset clears disable and request bits (all sources unmasked, idle).
func (c *Controller) Reset() {
	c.Disable = 0
	c.Request = 0
}

// WriteDisable handles a CPU write to the disable (mask) port.
func (c *Controller) WriteDisable(v uint8) {
	c.Disable = v & 0x07
}

// ReadDisable returns the current mask byte.
func (c *Controller) ReadDisable() uint8 {
	return c.Disable
}

// WriteRequestClear handles a CPU write to the request port: any bit set
// in v clears the corresponding request bit. This is the only way TIRQ's
// request bit is cleared; IRQ1 is cleared by the VDC status-port read
// (ClearIRQ1 below) and IRQ2 by AckExternal.
func (c *Controller) WriteRequestClear(v uint8) {
	c.Request &^= v & 0x07
}

// ReadRequest returns the current request byte.
func (c *Controller) ReadRequest() uint8 {
	return c.Request
}

// Set asserts a source's request bit.
func (c *Controller) Set(s Source) {
	c.Request |= s.mask()
	if c.logger != nil {
		c.logger.LogIRQ(debug.LogLevelDebug, "request set: "+s.String(), nil)
	}
}

// ClearIRQ1 clears IRQ1's request bit; called when the VDC status port
// is read (§4.2/§4.4).
func (c *Controller) ClearIRQ1() {
	c.Request &^= IRQ1.mask()
}

// AckExternal clears IRQ2's request bit (an external acknowledge; the
// core has no IRQ2 source of its own, but the plumbing exists for an
// expansion device a future collaborator could drive).
func (c *Controller) AckExternal() {
	c.Request &^= IRQ2.mask()
}

// enabled reports whether a source is unmasked.
func (c *Controller) enabled(s Source) bool {
	return c.Disable&s.mask() == 0
}

// pending reports whether a source's request bit is set and it is
// unmasked, ignoring the CPU's I flag.
func (c *Controller) pending(s Source) bool {
	return c.Request&s.mask() != 0 && c.enabled(s)
}

// AnyPending reports whether any unmasked source is currently
// requesting, regardless of the CPU's I flag. This is the wake
// condition for WAI, which resumes even with I set.
func (c *Controller) AnyPending() bool {
	for _, s := range priorityOrder {
		if c.pending(s) {
			return true
		}
	}
	return false
}

// Next returns the highest-priority source eligible to be taken right
// now: its request bit set, its disable bit clear, and (when iFlagSet is
// true) masked out entirely, since a pending-but-masked-by-I source is
// not taken.
func (c *Controller) Next(iFlagSet bool) (Source, bool) {
	if iFlagSet {
		return 0, false
	}
	for _, s := range priorityOrder {
		if c.pending(s) {
			return s, true
		}
	}
	return 0, false
}
