// internal/rules/rule.go
package rules

import (
	"log/slog"
	"strings"
)

// RuleBuilder collects the committed triggers of one rule definition
type RuleBuilder struct {
	uid         string
	name        string
	description string
	tags        []string
	triggers    []TriggerConf
	errs        []error
	logger      *slog.Logger
}

// Option configures a RuleBuilder
type Option func(*RuleBuilder)

// WithUID fixes the rule UID; a random one is generated otherwise
func WithUID(uid string) Option {
	return func(rb *RuleBuilder) { rb.uid = uid }
}

// WithName sets the rule name
func WithName(name string) Option {
	return func(rb *RuleBuilder) { rb.name = name }
}

// WithDescription sets the rule description
func WithDescription(description string) Option {
	return func(rb *RuleBuilder) { rb.description = description }
}

// WithTags sets the rule tags
func WithTags(tags ...string) Option {
	return func(rb *RuleBuilder) { rb.tags = append([]string(nil), tags...) }
}

// WithLogger sets the logger used for usage warnings and build diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(rb *RuleBuilder) {
		if logger != nil {
			rb.logger = logger
		}
	}
}

// When starts a rule definition:
//
//	rules.When().Item("Light").Changed().To("ON").Or().Cron("0 0 * * * ?").Then(fn).Build()
func When(opts ...Option) *TriggerBuilder {
	rb := &RuleBuilder{logger: slog.Default()}
	for _, opt := range opts {
		opt(rb)
	}
	return &TriggerBuilder{rule: rb}
}

// AddTrigger appends a trigger. Completeness is checked when the rule is built.
func (rb *RuleBuilder) AddTrigger(c TriggerConf) {
	rb.triggers = append(rb.triggers, c)
}

// Triggers returns the committed triggers in registration order
func (rb *RuleBuilder) Triggers() []TriggerConf {
	return append([]TriggerConf(nil), rb.triggers...)
}

// Describe joins the descriptions of all committed triggers
func (rb *RuleBuilder) Describe(compact bool) string {
	parts := make([]string, len(rb.triggers))
	for i, t := range rb.triggers {
		parts[i] = t.Describe(compact)
	}
	if compact {
		return strings.Join(parts, " | ")
	}
	return strings.Join(parts, " or ")
}

func (rb *RuleBuilder) fail(err error) {
	rb.errs = append(rb.errs, err)
}
