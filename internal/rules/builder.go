// internal/rules/builder.go
package rules

// TimeOfDayItem is the item holding the current period of the day
const TimeOfDayItem = "vTimeOfDay"

type slotState int

const (
	slotCommitted slotState = iota
	slotPending
)

// TriggerBuilder starts trigger declarations for one rule. It holds at most one
// pending configuration; Or, Then and If commit it to the RuleBuilder.
type TriggerBuilder struct {
	rule    *RuleBuilder
	current TriggerConf
	state   slotState
}

// Rule returns the rule builder that collects committed triggers
func (tb *TriggerBuilder) Rule() *RuleBuilder {
	return tb.rule
}

// start makes c the pending configuration. A configuration that is still
// pending is not committed; the rule will fail to build.
func (tb *TriggerBuilder) start(c TriggerConf) {
	if tb.state == slotPending {
		prev := tb.current.Describe(true)
		tb.rule.fail(&TriggerError{Trigger: prev, Err: ErrUncommittedTrigger})
		tb.rule.logger.Warn("discarding uncommitted trigger", "trigger", prev)
	}
	tb.current = c
	tb.state = slotPending
}

// commit registers the pending configuration with the rule builder.
// Committing twice is a no-op.
func (tb *TriggerBuilder) commit() {
	if tb.state != slotPending {
		return
	}
	tb.rule.AddTrigger(tb.current)
	tb.state = slotCommitted
}

// Channel starts a trigger on events of a trigger channel
func (tb *TriggerBuilder) Channel(channelUID string) *ChannelTriggerConfig {
	c := &ChannelTriggerConfig{channelUID: channelUID}
	c.baseConf = baseConf{builder: tb, self: c}
	tb.start(c)
	return c
}

// Cron starts a trigger on a cron schedule
func (tb *TriggerBuilder) Cron(expression string) *CronTriggerConfig {
	c := &CronTriggerConfig{expression: expression}
	c.baseConf = baseConf{builder: tb, self: c}
	tb.start(c)
	return c
}

// Item starts a trigger on a single item; use Ref to pass an item value
func (tb *TriggerBuilder) Item(name string) *ItemTriggerConfig {
	return tb.itemTrigger(name, false)
}

// MemberOf starts a trigger on any member of a group
func (tb *TriggerBuilder) MemberOf(group string) *ItemTriggerConfig {
	return tb.itemTrigger(group, true)
}

func (tb *TriggerBuilder) itemTrigger(name string, group bool) *ItemTriggerConfig {
	c := &ItemTriggerConfig{itemName: name, group: group}
	c.baseConf = baseConf{builder: tb, self: c}
	tb.start(c)
	return c
}

// TimeOfDay starts a trigger that fires when the day enters the given period
func (tb *TriggerBuilder) TimeOfDay(period string) *ItemTriggerConfig {
	return tb.Item(TimeOfDayItem).Changed().To(period)
}

// Thing starts a trigger on the status of a thing
func (tb *TriggerBuilder) Thing(thingUID string) *ThingTriggerConfig {
	c := &ThingTriggerConfig{thingUID: thingUID}
	c.baseConf = baseConf{builder: tb, self: c}
	tb.start(c)
	return c
}

// System starts a trigger on a system start level
func (tb *TriggerBuilder) System() *SystemTriggerConfig {
	c := &SystemTriggerConfig{}
	c.baseConf = baseConf{builder: tb, self: c}
	tb.start(c)
	return c
}

// Named is anything that exposes an item name
type Named interface {
	Name() string
}

// Ref returns the name of an item value, for use with Item and MemberOf
func Ref(n Named) string {
	return n.Name()
}
