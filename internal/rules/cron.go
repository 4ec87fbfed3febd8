// internal/rules/cron.go
package rules

import (
	"fmt"

	"github.com/mgr01/openhab-js/internal/engine"
)

// CronTriggerConfig triggers on a cron schedule
type CronTriggerConfig struct {
	baseConf
	expression string
}

// Complete is always true; the expression itself is checked on conversion
func (c *CronTriggerConfig) Complete() bool {
	return true
}

// Describe renders the expression itself in compact form
func (c *CronTriggerConfig) Describe(compact bool) string {
	if compact {
		return c.expression
	}
	return fmt.Sprintf("matches cron %q", c.expression)
}

// EngineTriggers validates the expression and returns one cron trigger
func (c *CronTriggerConfig) EngineTriggers() ([]engine.Trigger, error) {
	if c.err != nil {
		return nil, c.err
	}
	if _, err := engine.ParseCron(c.expression); err != nil {
		return nil, c.wrap(err)
	}
	return []engine.Trigger{engine.GenericCronTrigger(c.expression)}, nil
}
