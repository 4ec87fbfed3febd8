// internal/rules/thing.go
package rules

import (
	"fmt"

	"github.com/mgr01/openhab-js/internal/engine"
)

// ThingOperation is the kind of thing status event a trigger reacts to
type ThingOperation int

const (
	ThingOpNone ThingOperation = iota
	ThingOpChanged
	ThingOpUpdated
)

func (o ThingOperation) String() string {
	switch o {
	case ThingOpNone:
		return "none"
	case ThingOpChanged:
		return "changed"
	case ThingOpUpdated:
		return "updated"
	default:
		return fmt.Sprintf("operation(%d)", int(o))
	}
}

// ThingTriggerConfig triggers on thing status changes or updates
type ThingTriggerConfig struct {
	baseConf
	thingUID string
	op       ThingOperation
	from     optional
	to       optional
}

func (c *ThingTriggerConfig) setOp(op ThingOperation) *ThingTriggerConfig {
	if c.op != ThingOpNone && c.op != op {
		c.fail(fmt.Errorf("%w: %s, cannot switch to %s", ErrOperationAlreadySet, c.op, op))
		return c
	}
	c.op = op
	return c
}

// Changed fires when the thing status changes
func (c *ThingTriggerConfig) Changed() *ThingTriggerConfig {
	return c.setOp(ThingOpChanged)
}

// Updated fires whenever the thing reports a status
func (c *ThingTriggerConfig) Updated() *ThingTriggerConfig {
	return c.setOp(ThingOpUpdated)
}

// To restricts the trigger to a status, e.g. ONLINE
func (c *ThingTriggerConfig) To(status string) *ThingTriggerConfig {
	c.to = some(status)
	return c
}

// From restricts a changed trigger to a previous status
func (c *ThingTriggerConfig) From(status string) *ThingTriggerConfig {
	if c.op != ThingOpChanged {
		c.fail(fmt.Errorf("%w (operation is %s)", ErrFromWithoutChanged, c.op))
		return c
	}
	c.from = some(status)
	return c
}

// Complete reports whether an operation was chosen
func (c *ThingTriggerConfig) Complete() bool {
	return c.op != ThingOpNone
}

// Describe lists the target status before the previous one
func (c *ThingTriggerConfig) Describe(compact bool) string {
	if compact {
		switch c.op {
		case ThingOpChanged:
			if !c.from.set && !c.to.set {
				return c.thingUID + "/Δ"
			}
			return fmt.Sprintf("%s %s=>%s/Δ", c.thingUID, c.from.value, c.to.value)
		case ThingOpUpdated:
			return c.thingUID + "/↻" + bracket(c.to)
		default:
			return c.thingUID + "/?"
		}
	}

	if c.op == ThingOpNone {
		return "thing " + c.thingUID + " (no operation)"
	}
	s := "thing " + c.thingUID + " " + c.op.String()
	if c.to.set {
		s += " to " + c.to.value
	}
	if c.from.set {
		s += " from " + c.from.value
	}
	return s
}

// EngineTriggers returns the thing status trigger for the chosen operation
func (c *ThingTriggerConfig) EngineTriggers() ([]engine.Trigger, error) {
	if c.err != nil {
		return nil, c.err
	}
	if !c.Complete() {
		return nil, c.wrap(ErrIncompleteTrigger)
	}

	switch c.op {
	case ThingOpChanged:
		return []engine.Trigger{engine.ThingStatusChangeTrigger(c.thingUID, c.from.value, c.to.value)}, nil
	case ThingOpUpdated:
		return []engine.Trigger{engine.ThingStatusUpdateTrigger(c.thingUID, c.to.value)}, nil
	default:
		return nil, c.wrap(fmt.Errorf("%w: %s", ErrUnknownOperation, c.op))
	}
}
