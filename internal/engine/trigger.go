// internal/engine/trigger.go
package engine

import (
	"github.com/google/uuid"
)

// Trigger type UIDs understood by the rule engine.
const (
	TypeChannelEvent      = "core.ChannelEventTrigger"
	TypeGenericCron       = "timer.GenericCronTrigger"
	TypeItemStateChange   = "core.ItemStateChangeTrigger"
	TypeItemStateUpdate   = "core.ItemStateUpdateTrigger"
	TypeItemCommand       = "core.ItemCommandTrigger"
	TypeGroupStateChange  = "core.GroupStateChangeTrigger"
	TypeGroupStateUpdate  = "core.GroupStateUpdateTrigger"
	TypeGroupCommand      = "core.GroupCommandTrigger"
	TypeThingStatusChange = "core.ThingStatusChangeTrigger"
	TypeThingStatusUpdate = "core.ThingStatusUpdateTrigger"
	TypeSystemStartlevel  = "core.SystemStartlevelTrigger"
)

// Trigger is an engine-native trigger record
type Trigger struct {
	ID            string         `json:"id" yaml:"id"`
	TypeUID       string         `json:"typeUID" yaml:"typeUID"`
	Configuration map[string]any `json:"configuration" yaml:"configuration"`
}

func newTrigger(typeUID string, cfg map[string]any) Trigger {
	return Trigger{
		ID:            uuid.NewString(),
		TypeUID:       typeUID,
		Configuration: cfg,
	}
}

// setIf stores value under key unless it is empty
func setIf(cfg map[string]any, key, value string) {
	if value != "" {
		cfg[key] = value
	}
}

// ChannelEventTrigger fires when a trigger channel emits an event.
// An empty event matches every event of the channel.
func ChannelEventTrigger(channelUID, event string) Trigger {
	cfg := map[string]any{"channelUID": channelUID}
	setIf(cfg, "event", event)
	return newTrigger(TypeChannelEvent, cfg)
}

// GenericCronTrigger fires on a cron schedule
func GenericCronTrigger(expression string) Trigger {
	return newTrigger(TypeGenericCron, map[string]any{"cronExpression": expression})
}

// ItemStateChangeTrigger fires when an item changes state
func ItemStateChangeTrigger(itemName, previousState, state string) Trigger {
	cfg := map[string]any{"itemName": itemName}
	setIf(cfg, "previousState", previousState)
	setIf(cfg, "state", state)
	return newTrigger(TypeItemStateChange, cfg)
}

// ItemStateUpdateTrigger fires when an item receives a state update
func ItemStateUpdateTrigger(itemName, state string) Trigger {
	cfg := map[string]any{"itemName": itemName}
	setIf(cfg, "state", state)
	return newTrigger(TypeItemStateUpdate, cfg)
}

// ItemCommandTrigger fires when an item receives a command
func ItemCommandTrigger(itemName, command string) Trigger {
	cfg := map[string]any{"itemName": itemName}
	setIf(cfg, "command", command)
	return newTrigger(TypeItemCommand, cfg)
}

// GroupStateChangeTrigger fires when any member of a group changes state
func GroupStateChangeTrigger(groupName, previousState, state string) Trigger {
	cfg := map[string]any{"groupName": groupName}
	setIf(cfg, "previousState", previousState)
	setIf(cfg, "state", state)
	return newTrigger(TypeGroupStateChange, cfg)
}

// GroupStateUpdateTrigger fires when any member of a group receives a state update
func GroupStateUpdateTrigger(groupName, state string) Trigger {
	cfg := map[string]any{"groupName": groupName}
	setIf(cfg, "state", state)
	return newTrigger(TypeGroupStateUpdate, cfg)
}

// GroupCommandTrigger fires when any member of a group receives a command
func GroupCommandTrigger(groupName, command string) Trigger {
	cfg := map[string]any{"groupName": groupName}
	setIf(cfg, "command", command)
	return newTrigger(TypeGroupCommand, cfg)
}

// ThingStatusChangeTrigger fires when a thing changes status
func ThingStatusChangeTrigger(thingUID, previousStatus, status string) Trigger {
	cfg := map[string]any{"thingUID": thingUID}
	setIf(cfg, "previousStatus", previousStatus)
	setIf(cfg, "status", status)
	return newTrigger(TypeThingStatusChange, cfg)
}

// ThingStatusUpdateTrigger fires when a thing reports a status
func ThingStatusUpdateTrigger(thingUID, status string) Trigger {
	cfg := map[string]any{"thingUID": thingUID}
	setIf(cfg, "status", status)
	return newTrigger(TypeThingStatusUpdate, cfg)
}

// SystemStartlevelTrigger fires once the system reaches the given start level
func SystemStartlevelTrigger(level int) Trigger {
	return newTrigger(TypeSystemStartlevel, map[string]any{"startlevel": level})
}
