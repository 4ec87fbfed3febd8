package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteAfterConstruction(t *testing.T) {
	tests := []struct {
		name string
		conf TriggerConf
		want bool
	}{
		{"channel", when().Channel("astro:sun:local:rise#event"), false},
		{"item", when().Item("Light"), false},
		{"member of", when().MemberOf("gLights"), false},
		{"thing", when().Thing("hue:bridge:1"), false},
		{"system", when().System(), false},
		{"cron", when().Cron("0 0 * * * ?"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.conf.Complete())
		})
	}
}

func TestChannelTrigger(t *testing.T) {
	t.Run("empty event counts as set", func(t *testing.T) {
		c := when().Channel("astro:sun:local:rise#event").Triggered("")
		assert.True(t, c.Complete())
		assert.Equal(t, "astro:sun:local:rise#event", c.Describe(true))

		ts, err := c.EngineTriggers()
		require.NoError(t, err)
		assert.NotContains(t, ts[0].Configuration, "event")
	})

	t.Run("event", func(t *testing.T) {
		c := when().Channel("astro:sun:local:rise#event").To("START")
		assert.Equal(t, "astro:sun:local:rise#event[START]", c.Describe(true))
		assert.Equal(t, `matches channel "astro:sun:local:rise#event" for event "START"`, c.Describe(false))

		ts, err := c.EngineTriggers()
		require.NoError(t, err)
		assert.Equal(t, "START", ts[0].Configuration["event"])
		assert.Equal(t, "astro:sun:local:rise#event", ts[0].Configuration["channelUID"])
	})

	t.Run("incomplete", func(t *testing.T) {
		c := when().Channel("x")
		assert.Equal(t, "x[?]", c.Describe(true))
		assert.Equal(t, `matches channel "x" (event unset)`, c.Describe(false))
		assert.NotEqual(t, c.Describe(true), when().Channel("x").Triggered("").Describe(true))

		_, err := c.EngineTriggers()
		assert.ErrorIs(t, err, ErrIncompleteTrigger)
	})
}

func TestCronTrigger(t *testing.T) {
	c := when().Cron("0 0 * * * ?")
	assert.Equal(t, "0 0 * * * ?", c.Describe(true))
	assert.Equal(t, `matches cron "0 0 * * * ?"`, c.Describe(false))

	ts, err := c.EngineTriggers()
	require.NoError(t, err)
	assert.Equal(t, "0 0 * * * ?", ts[0].Configuration["cronExpression"])

	_, err = when().Cron("every day").EngineTriggers()
	require.Error(t, err)
	var te *TriggerError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "every day", te.Trigger)
}

func TestCronTrigger_QuartzExpressions(t *testing.T) {
	for _, expr := range []string{
		"0 0 12 ? * 7",
		"0 0 12 L * ?",
		"0 0 12 ? * MON#1",
		"0 0 12 ? * 6L",
		"0 0 12 1 1 ? 2030",
	} {
		t.Run(expr, func(t *testing.T) {
			c := when().Cron(expr)
			assert.True(t, c.Complete())

			ts, err := c.EngineTriggers()
			require.NoError(t, err)
			require.Len(t, ts, 1)
			assert.Equal(t, expr, ts[0].Configuration["cronExpression"])
		})
	}
}

func TestThingTrigger(t *testing.T) {
	t.Run("changed", func(t *testing.T) {
		c := when().Thing("hue:bridge:1").Changed().From("OFFLINE").To("ONLINE")
		assert.True(t, c.Complete())
		assert.Equal(t, "hue:bridge:1 OFFLINE=>ONLINE/Δ", c.Describe(true))
		assert.Equal(t, "thing hue:bridge:1 changed to ONLINE from OFFLINE", c.Describe(false))

		ts, err := c.EngineTriggers()
		require.NoError(t, err)
		assert.Equal(t, "core.ThingStatusChangeTrigger", ts[0].TypeUID)
		assert.Equal(t, "OFFLINE", ts[0].Configuration["previousStatus"])
		assert.Equal(t, "ONLINE", ts[0].Configuration["status"])
	})

	t.Run("updated", func(t *testing.T) {
		c := when().Thing("hue:bridge:1").Updated().To("ONLINE")
		assert.Equal(t, "hue:bridge:1/↻[ONLINE]", c.Describe(true))
		assert.Equal(t, "thing hue:bridge:1 updated to ONLINE", c.Describe(false))

		ts, err := c.EngineTriggers()
		require.NoError(t, err)
		assert.Equal(t, "core.ThingStatusUpdateTrigger", ts[0].TypeUID)
	})

	t.Run("from requires changed", func(t *testing.T) {
		for _, c := range []*ThingTriggerConfig{
			when().Thing("t").From("OFFLINE"),
			when().Thing("t").Updated().From("OFFLINE"),
		} {
			assert.ErrorIs(t, c.Err(), ErrFromWithoutChanged)
		}
	})

	t.Run("operation cannot switch", func(t *testing.T) {
		c := when().Thing("t").Updated().Changed()
		assert.ErrorIs(t, c.Err(), ErrOperationAlreadySet)
	})

	t.Run("unknown operation", func(t *testing.T) {
		c := when().Thing("t")
		c.op = ThingOperation(7)
		_, err := c.EngineTriggers()
		assert.ErrorIs(t, err, ErrUnknownOperation)
	})
}

func TestSystemTrigger(t *testing.T) {
	tests := []struct {
		name string
		set  func(*SystemTriggerConfig) *SystemTriggerConfig
		want int
	}{
		{"rules loaded", (*SystemTriggerConfig).RulesLoaded, 40},
		{"rule engine started", (*SystemTriggerConfig).RuleEngineStarted, 50},
		{"user interfaces started", (*SystemTriggerConfig).UserInterfacesStarted, 70},
		{"things initialized", (*SystemTriggerConfig).ThingsInitialized, 80},
		{"startup complete", (*SystemTriggerConfig).StartupComplete, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.set(when().System())
			level, ok := c.Level()
			require.True(t, ok)
			assert.Equal(t, tt.want, level)
			assert.Contains(t, c.Describe(false), tt.name)

			ts, err := c.EngineTriggers()
			require.NoError(t, err)
			assert.Equal(t, tt.want, ts[0].Configuration["startlevel"])
		})
	}

	raw := when().System().StartLevel(30)
	assert.Equal(t, "system:30", raw.Describe(true))
	assert.Equal(t, "system reached start level 30", raw.Describe(false))

	_, err := when().System().EngineTriggers()
	assert.ErrorIs(t, err, ErrIncompleteTrigger)
}
