// internal/rules/channel.go
package rules

import (
	"fmt"

	"github.com/mgr01/openhab-js/internal/engine"
)

// ChannelTriggerConfig triggers on events of a trigger channel
type ChannelTriggerConfig struct {
	baseConf
	channelUID string
	event      optional
}

// Triggered sets the event to match. An empty event matches any event.
func (c *ChannelTriggerConfig) Triggered(event string) *ChannelTriggerConfig {
	c.event = some(event)
	return c
}

// To is Triggered
func (c *ChannelTriggerConfig) To(event string) *ChannelTriggerConfig {
	return c.Triggered(event)
}

// Complete reports whether an event was chosen, including "any event"
func (c *ChannelTriggerConfig) Complete() bool {
	return c.event.set
}

// Describe renders "uid[event]" compactly; an unset event renders as "uid[?]"
// and "any event" as the bare uid.
func (c *ChannelTriggerConfig) Describe(compact bool) string {
	if !c.event.set {
		if compact {
			return c.channelUID + "[?]"
		}
		return fmt.Sprintf("matches channel %q (event unset)", c.channelUID)
	}
	if compact {
		if c.event.value == "" {
			return c.channelUID
		}
		return fmt.Sprintf("%s[%s]", c.channelUID, c.event.value)
	}
	s := fmt.Sprintf("matches channel %q", c.channelUID)
	if c.event.value != "" {
		s += fmt.Sprintf(" for event %q", c.event.value)
	}
	return s
}

// EngineTriggers returns one channel event trigger
func (c *ChannelTriggerConfig) EngineTriggers() ([]engine.Trigger, error) {
	if c.err != nil {
		return nil, c.err
	}
	if !c.Complete() {
		return nil, c.wrap(ErrIncompleteTrigger)
	}
	return []engine.Trigger{engine.ChannelEventTrigger(c.channelUID, c.event.value)}, nil
}
