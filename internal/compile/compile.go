// internal/compile/compile.go
package compile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mgr01/openhab-js/internal/config"
	"github.com/mgr01/openhab-js/internal/engine"
	"github.com/mgr01/openhab-js/internal/logging"
	"github.com/mgr01/openhab-js/internal/rules"
	"github.com/mgr01/openhab-js/internal/security"
	"github.com/mgr01/openhab-js/internal/template"
)

// Rule validates a rule declaration and compiles it through the trigger
// builder into an engine rule. The declared action logs to logger.
func Rule(decl *config.Rule, logger *slog.Logger) (*engine.Rule, error) {
	if err := config.ValidateRule(decl); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Discard()
	}
	logger = logging.WithRule(logger, decl.Name)

	opts := []rules.Option{
		rules.WithName(decl.Name),
		rules.WithDescription(decl.Description),
		rules.WithTags(decl.Tags...),
		rules.WithLogger(logger),
	}
	if decl.UID != "" {
		opts = append(opts, rules.WithUID(decl.UID))
	}

	tb := rules.When(opts...)
	action := actionFor(decl.Action, logger)

	var op *rules.OperationBuilder
	last := len(decl.Triggers) - 1
	for i := range decl.Triggers {
		t := &decl.Triggers[i]
		conf := start(tb, t)
		if i < last {
			conf.Or()
			continue
		}

		switch {
		case t.For != "":
			// validated above, ParseDuration cannot fail here
			d, _ := time.ParseDuration(t.For)
			op = conf.(*rules.ItemTriggerConfig).For(d).Then(action)
		case decl.Condition != nil:
			op = conf.If(conditionFor(decl.Condition)).Then(action)
		default:
			op = conf.Then(action)
		}
	}

	rule, err := op.Build()
	if err != nil {
		return nil, fmt.Errorf("building rule %s: %w", decl.Name, err)
	}
	return rule, nil
}

// start declares one trigger on tb and applies its refinements
func start(tb *rules.TriggerBuilder, t *config.Trigger) rules.TriggerConf {
	switch t.Type {
	case config.TriggerChannel:
		c := tb.Channel(t.Channel)
		if t.Event != nil {
			return c.Triggered(*t.Event)
		}
		return c.Triggered("")
	case config.TriggerCron:
		return tb.Cron(t.Cron)
	case config.TriggerItem:
		return refineItem(tb.Item(t.Item), t)
	case config.TriggerMemberOf:
		return refineItem(tb.MemberOf(t.Group), t)
	case config.TriggerThing:
		c := tb.Thing(t.Thing)
		if t.On == config.OnChanged {
			c.Changed()
		} else {
			c.Updated()
		}
		if t.From != nil {
			c.From(*t.From)
		}
		if t.To != nil {
			c.To(*t.To)
		}
		return c
	case config.TriggerSystem:
		return refineSystem(tb.System(), t)
	default:
		return tb.TimeOfDay(t.Period)
	}
}

func refineItem(c *rules.ItemTriggerConfig, t *config.Trigger) *rules.ItemTriggerConfig {
	switch t.On {
	case config.OnChanged:
		c.Changed()
	case config.OnReceivedCommand:
		c.ReceivedCommand()
	case config.OnReceivedUpdate:
		c.ReceivedUpdate()
	}
	if t.From != nil {
		c.From(*t.From)
	}
	if t.To != nil {
		c.To(*t.To)
	}
	return c
}

func refineSystem(c *rules.SystemTriggerConfig, t *config.Trigger) *rules.SystemTriggerConfig {
	if t.StartLevel != nil {
		return c.StartLevel(*t.StartLevel)
	}
	switch t.Milestone {
	case "rules_loaded":
		return c.RulesLoaded()
	case "rule_engine_started":
		return c.RuleEngineStarted()
	case "user_interfaces_started":
		return c.UserInterfacesStarted()
	case "things_initialized":
		return c.ThingsInitialized()
	default:
		return c.StartupComplete()
	}
}

func actionFor(a config.Action, logger *slog.Logger) rules.Action {
	level := logging.ParseLevel(a.Level)
	return func(args map[string]any) error {
		msg := template.Expand(a.Log, security.SanitizeArgs(args, render))
		logger.Log(context.Background(), level, security.Scrub(msg))
		return nil
	}
}

func render(v any) string { return fmt.Sprint(v) }

func conditionFor(c *config.Condition) rules.Condition {
	return func(args map[string]any) bool {
		for k, want := range c.ArgsEqual {
			got, ok := args[k]
			if !ok || fmt.Sprint(got) != want {
				return false
			}
		}
		return true
	}
}
