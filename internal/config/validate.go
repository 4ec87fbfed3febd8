// internal/config/validate.go
package config

import (
	"fmt"
	"time"

	"github.com/mgr01/openhab-js/internal/engine"
)

// Milestones are the named system start levels a system trigger can use
var Milestones = map[string]bool{
	"rules_loaded":            true,
	"rule_engine_started":     true,
	"user_interfaces_started": true,
	"things_initialized":      true,
	"startup_complete":        true,
}

var logLevels = map[string]bool{"": true, "debug": true, "info": true, "warn": true, "error": true}

// ValidateRule checks a rule declaration before it is compiled
func ValidateRule(rule *Rule) error {
	if rule.Name == "" {
		return fmt.Errorf("rule name is required")
	}
	if len(rule.Triggers) == 0 {
		return fmt.Errorf("rule %s: at least one trigger is required", rule.Name)
	}

	for i := range rule.Triggers {
		t := &rule.Triggers[i]
		if err := validateTrigger(t); err != nil {
			return fmt.Errorf("rule %s: trigger %d: %w", rule.Name, i+1, err)
		}
		if t.For != "" {
			if i != len(rule.Triggers)-1 {
				return fmt.Errorf("rule %s: trigger %d: for is only allowed on the last trigger", rule.Name, i+1)
			}
			if rule.Condition != nil {
				return fmt.Errorf("rule %s: trigger %d: for cannot be combined with a condition", rule.Name, i+1)
			}
		}
	}

	if rule.Action.Log == "" {
		return fmt.Errorf("rule %s: action log message is required", rule.Name)
	}
	if !logLevels[rule.Action.Level] {
		return fmt.Errorf("rule %s: invalid action level %q", rule.Name, rule.Action.Level)
	}

	return nil
}

func validateTrigger(t *Trigger) error {
	switch t.Type {
	case "":
		return fmt.Errorf("trigger type is required")
	case TriggerChannel:
		if t.Channel == "" {
			return fmt.Errorf("channel trigger requires channel")
		}
	case TriggerCron:
		if t.Cron == "" {
			return fmt.Errorf("cron trigger requires cron")
		}
		if _, err := engine.ParseCron(t.Cron); err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
	case TriggerItem, TriggerMemberOf:
		name := t.Item
		if t.Type == TriggerMemberOf {
			name = t.Group
		}
		if name == "" {
			return fmt.Errorf("%s trigger requires %s", t.Type, targetField(t.Type))
		}
		if err := validateOn(t, OnChanged, OnReceivedCommand, OnReceivedUpdate); err != nil {
			return err
		}
	case TriggerThing:
		if t.Thing == "" {
			return fmt.Errorf("thing trigger requires thing")
		}
		if err := validateOn(t, OnChanged, OnUpdated); err != nil {
			return err
		}
	case TriggerSystem:
		if t.StartLevel == nil && t.Milestone == "" {
			return fmt.Errorf("system trigger requires start_level or milestone")
		}
		if t.Milestone != "" && !Milestones[t.Milestone] {
			return fmt.Errorf("unknown milestone %q", t.Milestone)
		}
	case TriggerTimeOfDay:
		if t.Period == "" {
			return fmt.Errorf("time_of_day trigger requires period")
		}
	default:
		return fmt.Errorf("invalid trigger type %q", t.Type)
	}

	if t.For != "" {
		if t.Type != TriggerItem && t.Type != TriggerMemberOf {
			return fmt.Errorf("for is only valid on item triggers")
		}
		if t.On != OnChanged || t.To == nil {
			return fmt.Errorf("for requires on: changed with a to state")
		}
		if _, err := time.ParseDuration(t.For); err != nil {
			return fmt.Errorf("invalid for duration: %w", err)
		}
	}
	return nil
}

func validateOn(t *Trigger, allowed ...string) error {
	if t.On == "" {
		return fmt.Errorf("%s trigger requires on", t.Type)
	}
	ok := false
	for _, a := range allowed {
		if t.On == a {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("invalid on %q for %s trigger", t.On, t.Type)
	}
	if t.From != nil && t.On != OnChanged {
		return fmt.Errorf("from is only valid with on: changed")
	}
	return nil
}

func targetField(triggerType string) string {
	if triggerType == TriggerMemberOf {
		return "group"
	}
	return "item"
}
