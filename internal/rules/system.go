// internal/rules/system.go
package rules

import (
	"fmt"

	"github.com/mgr01/openhab-js/internal/engine"
)

// System start levels
const (
	StartLevelRulesLoaded           = 40
	StartLevelRuleEngineStarted     = 50
	StartLevelUserInterfacesStarted = 70
	StartLevelThingsInitialized     = 80
	StartLevelStartupComplete       = 100
)

var startLevelNames = map[int]string{
	StartLevelRulesLoaded:           "rules loaded",
	StartLevelRuleEngineStarted:     "rule engine started",
	StartLevelUserInterfacesStarted: "user interfaces started",
	StartLevelThingsInitialized:     "things initialized",
	StartLevelStartupComplete:       "startup complete",
}

// SystemTriggerConfig triggers when the system reaches a start level
type SystemTriggerConfig struct {
	baseConf
	level    int
	levelSet bool
}

// StartLevel sets a raw start level
func (c *SystemTriggerConfig) StartLevel(level int) *SystemTriggerConfig {
	c.level = level
	c.levelSet = true
	return c
}

// RulesLoaded fires once rules are loaded (40)
func (c *SystemTriggerConfig) RulesLoaded() *SystemTriggerConfig {
	return c.StartLevel(StartLevelRulesLoaded)
}

// RuleEngineStarted fires once the rule engine has started (50)
func (c *SystemTriggerConfig) RuleEngineStarted() *SystemTriggerConfig {
	return c.StartLevel(StartLevelRuleEngineStarted)
}

// UserInterfacesStarted fires once user interfaces are up (70)
func (c *SystemTriggerConfig) UserInterfacesStarted() *SystemTriggerConfig {
	return c.StartLevel(StartLevelUserInterfacesStarted)
}

// ThingsInitialized fires once things are initialized (80)
func (c *SystemTriggerConfig) ThingsInitialized() *SystemTriggerConfig {
	return c.StartLevel(StartLevelThingsInitialized)
}

// StartupComplete fires once startup has finished (100)
func (c *SystemTriggerConfig) StartupComplete() *SystemTriggerConfig {
	return c.StartLevel(StartLevelStartupComplete)
}

// Level returns the start level and whether one was set
func (c *SystemTriggerConfig) Level() (int, bool) {
	return c.level, c.levelSet
}

// Complete reports whether a start level was set
func (c *SystemTriggerConfig) Complete() bool {
	return c.levelSet
}

// Describe renders "system:N" compactly, naming known levels in the verbose form
func (c *SystemTriggerConfig) Describe(compact bool) string {
	if !c.levelSet {
		if compact {
			return "system:?"
		}
		return "system start level (unset)"
	}
	if compact {
		return fmt.Sprintf("system:%d", c.level)
	}
	s := fmt.Sprintf("system reached start level %d", c.level)
	if name, ok := startLevelNames[c.level]; ok {
		s += " (" + name + ")"
	}
	return s
}

// EngineTriggers returns one start level trigger
func (c *SystemTriggerConfig) EngineTriggers() ([]engine.Trigger, error) {
	if c.err != nil {
		return nil, c.err
	}
	if !c.Complete() {
		return nil, c.wrap(ErrIncompleteTrigger)
	}
	return []engine.Trigger{engine.SystemStartlevelTrigger(c.level)}, nil
}
