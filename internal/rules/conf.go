// internal/rules/conf.go
package rules

import (
	"github.com/mgr01/openhab-js/internal/engine"
)

// TriggerConf is implemented by every trigger configuration the TriggerBuilder
// can produce: channel, cron, item (and member-of), thing and system.
type TriggerConf interface {
	// Complete reports whether enough is set to emit an engine trigger
	Complete() bool
	// Describe renders a label; compact selects the terse symbolic form
	Describe(compact bool) string
	// EngineTriggers converts the configuration into engine-native triggers
	EngineTriggers() ([]engine.Trigger, error)
	// Err returns the first usage error recorded while refining the configuration
	Err() error

	Or() *TriggerBuilder
	Then(fn Action) *OperationBuilder
	If(fn Condition) *ConditionBuilder

	base() *baseConf
}

// baseConf carries what all configurations share: the owning builder,
// a handle to the concrete configuration and the sticky usage error.
type baseConf struct {
	builder *TriggerBuilder
	self    TriggerConf
	err     error
}

func (b *baseConf) base() *baseConf {
	return b
}

func (b *baseConf) Err() error {
	return b.err
}

// fail records err unless an earlier usage error is already recorded
func (b *baseConf) fail(err error) {
	if b.err != nil {
		return
	}
	b.err = b.wrap(err)
	b.builder.rule.logger.Warn("invalid trigger usage", "trigger", b.self.Describe(true), "error", err)
}

func (b *baseConf) wrap(err error) error {
	return &TriggerError{Trigger: b.self.Describe(true), Err: err}
}

// Or commits this trigger and returns the builder to declare an alternative one
func (b *baseConf) Or() *TriggerBuilder {
	b.builder.commit()
	return b.builder
}

// Then commits this trigger and continues with the rule's action
func (b *baseConf) Then(fn Action) *OperationBuilder {
	b.builder.commit()
	return newOperationBuilder(b.builder.rule, fn, nil, nil)
}

// If commits this trigger and continues with a guard evaluated before the action
func (b *baseConf) If(fn Condition) *ConditionBuilder {
	b.builder.commit()
	return &ConditionBuilder{rule: b.builder.rule, condition: fn}
}

// optional is a value that may or may not have been set
type optional struct {
	value string
	set   bool
}

func some(v string) optional {
	return optional{value: v, set: true}
}
