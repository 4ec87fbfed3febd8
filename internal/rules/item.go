// internal/rules/item.go
package rules

import (
	"fmt"
	"time"

	"github.com/mgr01/openhab-js/internal/engine"
)

// ItemOperation is the kind of item event a trigger reacts to
type ItemOperation int

const (
	OpNone ItemOperation = iota
	OpChanged
	OpReceivedCommand
	OpReceivedUpdate
)

func (o ItemOperation) String() string {
	switch o {
	case OpNone:
		return "none"
	case OpChanged:
		return "changed"
	case OpReceivedCommand:
		return "received command"
	case OpReceivedUpdate:
		return "received update"
	default:
		return fmt.Sprintf("operation(%d)", int(o))
	}
}

// ItemTriggerConfig triggers on a single item or on the members of a group
type ItemTriggerConfig struct {
	baseConf
	itemName string
	group    bool
	op       ItemOperation
	from     optional
	to       optional
}

// ItemName returns the item or group name
func (c *ItemTriggerConfig) ItemName() string {
	return c.itemName
}

// Operation returns the operation set so far
func (c *ItemTriggerConfig) Operation() ItemOperation {
	return c.op
}

func (c *ItemTriggerConfig) setOp(op ItemOperation) *ItemTriggerConfig {
	if c.op != OpNone && c.op != op {
		c.fail(fmt.Errorf("%w: %s, cannot switch to %s", ErrOperationAlreadySet, c.op, op))
		return c
	}
	c.op = op
	return c
}

// Changed fires when the item state changes
func (c *ItemTriggerConfig) Changed() *ItemTriggerConfig {
	return c.setOp(OpChanged)
}

// ReceivedCommand fires when the item receives a command
func (c *ItemTriggerConfig) ReceivedCommand() *ItemTriggerConfig {
	return c.setOp(OpReceivedCommand)
}

// ReceivedUpdate fires when the item receives a state update
func (c *ItemTriggerConfig) ReceivedUpdate() *ItemTriggerConfig {
	return c.setOp(OpReceivedUpdate)
}

// To restricts the trigger to a target state, command or update value
func (c *ItemTriggerConfig) To(value string) *ItemTriggerConfig {
	c.to = some(value)
	return c
}

// Of is To, reading better after ReceivedCommand
func (c *ItemTriggerConfig) Of(value string) *ItemTriggerConfig {
	return c.To(value)
}

// From restricts a changed trigger to a previous state
func (c *ItemTriggerConfig) From(value string) *ItemTriggerConfig {
	if c.op != OpChanged {
		c.fail(fmt.Errorf("%w (operation is %s)", ErrFromWithoutChanged, c.op))
		return c
	}
	c.from = some(value)
	return c
}

// For commits the trigger and holds the rule until the item has stayed in
// the target state for d.
func (c *ItemTriggerConfig) For(d time.Duration) *TimingOperation {
	if c.op != OpChanged || !c.to.set {
		c.fail(ErrForWithoutState)
	}
	c.builder.commit()
	return &TimingOperation{rule: c.builder.rule, trigger: c, hold: d}
}

// Complete reports whether an operation was chosen
func (c *ItemTriggerConfig) Complete() bool {
	return c.op != OpNone
}

func (c *ItemTriggerConfig) entityType() string {
	if c.group {
		return "member of"
	}
	return "item"
}

// Describe renders "name from=>to/Δ", "name/⌘[v]" or "name/↻[v]" compactly
func (c *ItemTriggerConfig) Describe(compact bool) string {
	if compact {
		switch c.op {
		case OpChanged:
			if !c.from.set && !c.to.set {
				return c.itemName + "/Δ"
			}
			return fmt.Sprintf("%s %s=>%s/Δ", c.itemName, c.from.value, c.to.value)
		case OpReceivedCommand:
			return c.itemName + "/⌘" + bracket(c.to)
		case OpReceivedUpdate:
			return c.itemName + "/↻" + bracket(c.to)
		default:
			return c.itemName + "/?"
		}
	}

	prefix := c.entityType() + " " + c.itemName
	switch c.op {
	case OpChanged:
		s := prefix + " changed"
		if c.from.set {
			s += " from " + c.from.value
		}
		if c.to.set {
			s += " to " + c.to.value
		}
		return s
	case OpReceivedCommand:
		if c.to.set {
			return prefix + " received command " + c.to.value
		}
		return prefix + " received command"
	case OpReceivedUpdate:
		if c.to.set {
			return prefix + " received update " + c.to.value
		}
		return prefix + " received update"
	default:
		return prefix + " (" + c.op.String() + ")"
	}
}

func bracket(o optional) string {
	if !o.set {
		return ""
	}
	return "[" + o.value + "]"
}

// EngineTriggers returns the item or group trigger for the chosen operation
func (c *ItemTriggerConfig) EngineTriggers() ([]engine.Trigger, error) {
	if c.err != nil {
		return nil, c.err
	}
	if !c.Complete() {
		return nil, c.wrap(ErrIncompleteTrigger)
	}

	var t engine.Trigger
	if c.group {
		switch c.op {
		case OpChanged:
			t = engine.GroupStateChangeTrigger(c.itemName, c.from.value, c.to.value)
		case OpReceivedCommand:
			t = engine.GroupCommandTrigger(c.itemName, c.to.value)
		case OpReceivedUpdate:
			t = engine.GroupStateUpdateTrigger(c.itemName, c.to.value)
		default:
			return nil, c.wrap(fmt.Errorf("%w: %s", ErrUnknownOperation, c.op))
		}
	} else {
		switch c.op {
		case OpChanged:
			t = engine.ItemStateChangeTrigger(c.itemName, c.from.value, c.to.value)
		case OpReceivedCommand:
			t = engine.ItemCommandTrigger(c.itemName, c.to.value)
		case OpReceivedUpdate:
			t = engine.ItemStateUpdateTrigger(c.itemName, c.to.value)
		default:
			return nil, c.wrap(fmt.Errorf("%w: %s", ErrUnknownOperation, c.op))
		}
	}
	return []engine.Trigger{t}, nil
}

// ExecuteHook returns middleware that exposes the received command as "it"
// to the rule's condition and action. Only command triggers have one.
func (c *ItemTriggerConfig) ExecuteHook() Middleware {
	if c.op != OpReceivedCommand {
		return nil
	}
	return func(next Callback, args map[string]any) (any, error) {
		merged := make(map[string]any, len(args)+1)
		merged[CommandVar] = args[ReceivedCommandArg]
		for k, v := range args {
			merged[k] = v
		}
		return next(merged)
	}
}
