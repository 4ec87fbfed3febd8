// internal/engine/rule.go
package engine

import "time"

// Rule is a complete rule definition handed to the rule engine.
// Condition and Action already include every trigger's execution hooks.
type Rule struct {
	UID         string    `json:"uid" yaml:"uid"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	Triggers    []Trigger `json:"triggers" yaml:"triggers"`
	Labels      []string  `json:"labels,omitempty" yaml:"labels,omitempty"` // compact description per declared trigger
	Hold        *Hold     `json:"hold,omitempty" yaml:"hold,omitempty"`

	Condition func(args map[string]any) (bool, error) `json:"-" yaml:"-"`
	Action    func(args map[string]any) error         `json:"-" yaml:"-"`
}

// Hold delays the action until an item has stayed in a state for a duration
type Hold struct {
	Item  string        `json:"item" yaml:"item"`
	State string        `json:"state" yaml:"state"`
	For   time.Duration `json:"for" yaml:"for"`
}
