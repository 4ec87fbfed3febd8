// internal/rules/operation.go
package rules

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mgr01/openhab-js/internal/engine"
)

// Arguments passed to conditions and actions
const (
	// ReceivedCommandArg holds the command that fired a command trigger
	ReceivedCommandArg = "receivedCommand"
	// CommandVar is the shorthand the command hook adds for ReceivedCommandArg
	CommandVar = "it"
)

// Action is the body of a rule
type Action func(args map[string]any) error

// Condition guards the action; the action only runs when it returns true
type Condition func(args map[string]any) bool

// Callback is a condition or action behind the middleware chain
type Callback func(args map[string]any) (any, error)

// Middleware wraps a callback, typically to enrich its arguments
type Middleware func(next Callback, args map[string]any) (any, error)

// OperationBuilder is the action stage of a rule definition
type OperationBuilder struct {
	rule      *RuleBuilder
	action    Action
	condition Condition
	hold      *TimingOperation
}

func newOperationBuilder(rule *RuleBuilder, action Action, condition Condition, hold *TimingOperation) *OperationBuilder {
	return &OperationBuilder{rule: rule, action: action, condition: condition, hold: hold}
}

// ConditionBuilder is the guard stage of a rule definition
type ConditionBuilder struct {
	rule      *RuleBuilder
	condition Condition
}

// Then sets the action run when the condition holds
func (cb *ConditionBuilder) Then(fn Action) *OperationBuilder {
	return newOperationBuilder(cb.rule, fn, cb.condition, nil)
}

// TimingOperation delays the action until an item stays in its target state
type TimingOperation struct {
	rule    *RuleBuilder
	trigger *ItemTriggerConfig
	hold    time.Duration
}

// Then sets the action run once the item held its state long enough
func (t *TimingOperation) Then(fn Action) *OperationBuilder {
	return newOperationBuilder(t.rule, fn, nil, t)
}

// Build validates the committed triggers and produces the engine rule
func (o *OperationBuilder) Build() (*engine.Rule, error) {
	rb := o.rule
	errs := append([]error(nil), rb.errs...)
	if len(rb.triggers) == 0 {
		errs = append(errs, ErrNoTriggers)
	}
	if o.action == nil {
		errs = append(errs, ErrNoAction)
	}

	var (
		triggers []engine.Trigger
		labels   []string
		hooks    []Middleware
	)
	for _, c := range rb.triggers {
		ts, err := c.EngineTriggers()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		triggers = append(triggers, ts...)
		labels = append(labels, c.Describe(true))
		if h, ok := c.(interface{ ExecuteHook() Middleware }); ok {
			if m := h.ExecuteHook(); m != nil {
				hooks = append(hooks, m)
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		rb.logger.Error("rule definition invalid", "rule", rb.name, "error", err)
		return nil, err
	}

	rule := &engine.Rule{
		UID:         rb.uid,
		Name:        rb.name,
		Description: rb.description,
		Tags:        rb.tags,
		Triggers:    triggers,
		Labels:      labels,
		Action:      wrapAction(hooks, o.action),
	}
	if rule.UID == "" {
		rule.UID = uuid.NewString()
	}
	if rule.Name == "" {
		rule.Name = rb.Describe(true)
	}
	if rule.Description == "" {
		rule.Description = rb.Describe(false)
	}
	if o.condition != nil {
		rule.Condition = wrapCondition(hooks, o.condition)
	}
	if o.hold != nil {
		rule.Hold = &engine.Hold{
			Item:  o.hold.trigger.itemName,
			State: o.hold.trigger.to.value,
			For:   o.hold.hold,
		}
	}

	rb.logger.Debug("rule built", "rule", rule.Name, "uid", rule.UID, "triggers", len(rule.Triggers))
	return rule, nil
}

// chain wraps final in hooks; the first hook is the outermost
func chain(hooks []Middleware, final Callback) Callback {
	cb := final
	for i := len(hooks) - 1; i >= 0; i-- {
		hook, next := hooks[i], cb
		cb = func(args map[string]any) (any, error) {
			return hook(next, args)
		}
	}
	return cb
}

func wrapAction(hooks []Middleware, fn Action) func(map[string]any) error {
	cb := chain(hooks, func(args map[string]any) (any, error) {
		return nil, fn(args)
	})
	return func(args map[string]any) error {
		_, err := cb(args)
		return err
	}
}

func wrapCondition(hooks []Middleware, fn Condition) func(map[string]any) (bool, error) {
	cb := chain(hooks, func(args map[string]any) (any, error) {
		return fn(args), nil
	})
	return func(args map[string]any) (bool, error) {
		res, err := cb(args)
		if err != nil {
			return false, err
		}
		ok, isBool := res.(bool)
		if !isBool {
			return false, fmt.Errorf("condition returned %T, want bool", res)
		}
		return ok, nil
	}
}
