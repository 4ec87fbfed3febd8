// internal/config/types.go
package config

// Global configuration loaded from config.yaml
type Global struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Registry RegistryConfig `yaml:"registry"`
	Watch    WatchConfig    `yaml:"watch"`
}

type LoggingConfig struct {
	Format string `yaml:"format"`
	Level  string `yaml:"level"`
}

type RegistryConfig struct {
	Path string `yaml:"path"`
}

type WatchConfig struct {
	RulesDir       string `yaml:"rules_dir"`
	DebounceMillis int    `yaml:"debounce_millis"`
	PruneRemoved   bool   `yaml:"prune_removed_rules"`
}

// Rule declaration loaded from individual YAML files
type Rule struct {
	UID         string     `yaml:"uid"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Tags        []string   `yaml:"tags"`
	Enabled     *bool      `yaml:"enabled"` // nil = enabled
	Triggers    []Trigger  `yaml:"triggers"`
	Condition   *Condition `yaml:"condition"`
	Action      Action     `yaml:"action"`
}

// IsEnabled reports whether the rule should be compiled
func (r *Rule) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// Trigger types
const (
	TriggerChannel   = "channel"
	TriggerCron      = "cron"
	TriggerItem      = "item"
	TriggerMemberOf  = "member_of"
	TriggerThing     = "thing"
	TriggerSystem    = "system"
	TriggerTimeOfDay = "time_of_day"
)

// Trigger operations
const (
	OnChanged         = "changed"
	OnReceivedCommand = "received_command"
	OnReceivedUpdate  = "received_update"
	OnUpdated         = "updated"
)

type Trigger struct {
	Type string `yaml:"type"`
	// Channel
	Channel string  `yaml:"channel"`
	Event   *string `yaml:"event"`
	// Cron
	Cron string `yaml:"cron"`
	// Item, member_of
	Item  string `yaml:"item"`
	Group string `yaml:"group"`
	// Thing
	Thing string `yaml:"thing"`
	// Item, member_of, thing
	On   string  `yaml:"on"`
	From *string `yaml:"from"`
	To   *string `yaml:"to"`
	For  string  `yaml:"for"`
	// System
	StartLevel *int   `yaml:"start_level"`
	Milestone  string `yaml:"milestone"`
	// Time of day
	Period string `yaml:"period"`
}

// Condition only lets the action run when every listed argument matches
type Condition struct {
	ArgsEqual map[string]string `yaml:"args_equal"`
}

// Action logs a message expanded with the invocation arguments
type Action struct {
	Log   string `yaml:"log"`
	Level string `yaml:"level"`
}
